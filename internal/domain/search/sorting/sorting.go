// Package sorting orders grants by a single sort key with stable ties.
package sorting

import (
	"cmp"
	"slices"
	"time"

	"github.com/kailas-cloud/grantdex/internal/domain/grant"
	"github.com/kailas-cloud/grantdex/internal/domain/search/sortkey"
)

// MissingDeadline is the sort position of grants without a deadline:
// last when ascending, first when descending.
var MissingDeadline = time.Date(2099, time.December, 31, 0, 0, 0, 0, time.UTC)

// ScoreFunc returns the relevance score of a grant for the active query.
type ScoreFunc func(grant.Grant) float64

// Sort returns a new slice ordered by key. Ties keep input order.
// Score keys with a nil scoreFn, unknown keys and Default are identity.
func Sort(grants []grant.Grant, key sortkey.Key, scoreFn ScoreFunc) []grant.Grant {
	out := slices.Clone(grants)

	var less func(a, b grant.Grant) int
	switch key {
	case sortkey.DeadlineAsc:
		less = func(a, b grant.Grant) int { return deadlineOf(a).Compare(deadlineOf(b)) }
	case sortkey.DeadlineDesc:
		less = func(a, b grant.Grant) int { return deadlineOf(b).Compare(deadlineOf(a)) }
	case sortkey.AmountAsc:
		less = func(a, b grant.Grant) int { return cmp.Compare(amountOf(a), amountOf(b)) }
	case sortkey.AmountDesc:
		less = func(a, b grant.Grant) int { return cmp.Compare(amountOf(b), amountOf(a)) }
	case sortkey.CreatedDesc:
		less = func(a, b grant.Grant) int { return b.UpdatedAt().Compare(a.UpdatedAt()) }
	case sortkey.Relevance, sortkey.Matching:
		if scoreFn == nil {
			return out
		}
		scores := make(map[string]float64, len(out))
		for _, g := range out {
			scores[g.ID()] = scoreFn(g)
		}
		less = func(a, b grant.Grant) int { return cmp.Compare(scores[b.ID()], scores[a.ID()]) }
	default:
		return out
	}

	slices.SortStableFunc(out, less)
	return out
}

func deadlineOf(g grant.Grant) time.Time {
	if t, ok := g.Deadline().Time(); ok {
		return t
	}
	return MissingDeadline
}

func amountOf(g grant.Grant) float64 {
	v, _ := g.Amount()
	return v
}
