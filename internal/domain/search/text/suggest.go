package text

import "strings"

// Suggestion limits.
const (
	MinSuggestPrefix   = 2
	DefaultSuggestions = 5
)

// Suggest returns distinct normalized words that start with prefix, excluding the prefix
// itself, in first-seen order. Words are expected to be normalized already.
func Suggest(groups [][]string, prefix string, limit int) []string {
	p := Normalize(prefix)
	if len([]rune(p)) < MinSuggestPrefix {
		return nil
	}
	if limit <= 0 {
		limit = DefaultSuggestions
	}

	seen := make(map[string]struct{})
	var out []string
	for _, words := range groups {
		for _, w := range words {
			if w == p || !strings.HasPrefix(w, p) {
				continue
			}
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			out = append(out, w)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}
