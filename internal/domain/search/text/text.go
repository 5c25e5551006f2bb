// Package text normalizes free text for matching and computes fuzzy string similarity.
package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Tokenization limits.
const (
	// MaxTokens bounds the cost of downstream fuzzy comparison.
	MaxTokens = 20
	// MinTokenLength is the exclusive lower bound on token length in runes.
	MinTokenLength = 2
)

// Normalize lowercases s, strips diacritics, replaces punctuation with spaces
// and collapses whitespace. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		strings.ToLower(s),
	)
	if err != nil {
		stripped = strings.ToLower(s)
	}

	var b strings.Builder
	b.Grow(len(stripped))
	space := true
	for _, r := range stripped {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Words splits the normalized form of s on spaces without length filtering.
func Words(s string) []string {
	return strings.Fields(Normalize(s))
}

// Tokens returns the normalized words of s longer than MinTokenLength runes,
// truncated to the first MaxTokens.
func Tokens(s string) []string {
	words := Words(s)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if len([]rune(w)) <= MinTokenLength {
			continue
		}
		out = append(out, w)
		if len(out) == MaxTokens {
			break
		}
	}
	return out
}

// Levenshtein returns the rune-wise edit distance between a and b.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Similarity returns 1 - Levenshtein(a, b)/max(|a|, |b|) in [0, 1].
// Two empty strings are identical.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1
	}
	return 1 - float64(Levenshtein(a, b))/float64(longest)
}
