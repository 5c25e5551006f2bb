// Package relevance scores grants against query tokens with weighted fuzzy field matching.
package relevance

import (
	"slices"
	"strings"

	"github.com/kailas-cloud/grantdex/internal/domain/grant"
	"github.com/kailas-cloud/grantdex/internal/domain/search/text"
)

// Scoring constants.
const (
	// DefaultMinScore is the threshold a grant must exceed to appear in query results.
	DefaultMinScore = 0.1
	fuzzyThreshold  = 0.7
	fuzzyDiscount   = 0.8
)

// Field weights.
const (
	WeightTitle          = 10.0
	WeightOrganization   = 7.0
	WeightTags           = 8.0
	WeightDescription    = 3.0
	WeightQualifications = 2.0
)

type field struct {
	text   string
	weight float64
}

// Scorer computes deterministic relevance scores in [0, 1].
type Scorer struct{}

// NewScorer creates a Scorer.
func NewScorer() *Scorer { return &Scorer{} }

// Score returns the weighted relevance of g for tokens. Empty tokens score 0.
func (s *Scorer) Score(g grant.Grant, tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}

	fields := [...]field{
		{g.Title(), WeightTitle},
		{g.Organization(), WeightOrganization},
		{strings.Join(g.Tags(), " "), WeightTags},
		{g.Description(), WeightDescription},
		{g.Qualifications(), WeightQualifications},
	}

	var total, weights float64
	for _, f := range fields {
		weights += f.weight
		total += fieldScore(f.text, tokens) * f.weight
	}
	if weights == 0 {
		return 0
	}
	return total / weights
}

// fieldScore returns the mean best-match value of tokens against raw in [0, 1].
func fieldScore(raw string, tokens []string) float64 {
	if raw == "" {
		return 0
	}
	normalized := text.Normalize(raw)
	words := strings.Fields(normalized)

	var sum float64
	for _, tok := range tokens {
		sum += bestMatch(normalized, words, tok)
	}
	return sum / float64(len(tokens))
}

func bestMatch(normalized string, words []string, tok string) float64 {
	if strings.Contains(normalized, tok) {
		return 1
	}
	var best float64
	for _, w := range words {
		if sim := text.Similarity(tok, w); sim > fuzzyThreshold {
			best = max(best, sim*fuzzyDiscount)
		}
	}
	return best
}

// Scored pairs a grant with its relevance score.
type Scored struct {
	Grant grant.Grant
	Score float64
}

// Rank scores every grant, keeps those above minScore and orders them by score
// descending. Ties keep input order.
func (s *Scorer) Rank(grants []grant.Grant, tokens []string, minScore float64) []Scored {
	out := make([]Scored, 0, len(grants))
	for _, g := range grants {
		if sc := s.Score(g, tokens); sc > minScore {
			out = append(out, Scored{Grant: g, Score: sc})
		}
	}
	slices.SortStableFunc(out, func(a, b Scored) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
	return out
}

// Grants unwraps ranked grants in order.
func Grants(scored []Scored) []grant.Grant {
	out := make([]grant.Grant, len(scored))
	for i := range scored {
		out[i] = scored[i].Grant
	}
	return out
}

// ScoreMap indexes scores by grant ID.
func ScoreMap(scored []Scored) map[string]float64 {
	m := make(map[string]float64, len(scored))
	for _, s := range scored {
		m[s.Grant.ID()] = s.Score
	}
	return m
}
