package result

import "math"

// NeutralScore is assigned to every grant when AI ranking is unavailable.
const NeutralScore = 0.5

// Match is a single AI-ranked grant.
type Match struct {
	grantID string
	score   float64
	reasons []string
}

// NewMatch creates a match. The score is clamped to [0, 1]; NaN becomes 0.
func NewMatch(grantID string, score float64, reasons []string) Match {
	return Match{grantID: grantID, score: Clamp(score), reasons: reasons}
}

// GrantID returns the referenced grant identifier.
func (m Match) GrantID() string { return m.grantID }

// Score returns the relevance score in [0, 1].
func (m Match) Score() float64 { return m.score }

// Reasons returns the matching reasons, if any.
func (m Match) Reasons() []string { return m.reasons }

// Clamp bounds a score to [0, 1].
func Clamp(score float64) float64 {
	switch {
	case math.IsNaN(score), score < 0:
		return 0
	case score > 1:
		return 1
	default:
		return score
	}
}

// Ranking is an ordered AI result set.
type Ranking struct {
	Matches     []Match
	Explanation string
	// Degraded is set when the ranking is a fallback rather than a model answer.
	Degraded bool
}

// Neutral returns the fallback ranking: every id scores NeutralScore in input order.
func Neutral(ids []string, explanation string) Ranking {
	matches := make([]Match, len(ids))
	for i, id := range ids {
		matches[i] = Match{grantID: id, score: NeutralScore}
	}
	return Ranking{Matches: matches, Explanation: explanation, Degraded: true}
}

// IDs returns the grant ids in rank order.
func (r Ranking) IDs() []string {
	ids := make([]string, len(r.Matches))
	for i, m := range r.Matches {
		ids[i] = m.grantID
	}
	return ids
}

// Scores indexes match scores by grant id.
func (r Ranking) Scores() map[string]float64 {
	out := make(map[string]float64, len(r.Matches))
	for _, m := range r.Matches {
		out[m.grantID] = m.score
	}
	return out
}

// Outcome is the result of a fail-open stage: Value is always usable, and Err records
// why the stage fell back to it.
type Outcome[T any] struct {
	Value T
	Err   error
}

// Ok wraps a successful stage value.
func Ok[T any](v T) Outcome[T] { return Outcome[T]{Value: v} }

// Fallback wraps the safe default of a failed stage together with the cause.
func Fallback[T any](v T, err error) Outcome[T] { return Outcome[T]{Value: v, Err: err} }

// Degraded reports whether the stage fell back.
func (o Outcome[T]) Degraded() bool { return o.Err != nil }
