package filter

import (
	"slices"
	"strings"
	"time"

	"github.com/kailas-cloud/grantdex/internal/domain/grant"
)

// Apply returns the grants satisfying every constraint of s, preserving input order.
// An empty set returns the input unchanged.
func Apply(grants []grant.Grant, s Set, now time.Time) []grant.Grant {
	if s.IsEmpty() {
		return slices.Clone(grants)
	}
	today := grant.Today(now)
	out := make([]grant.Grant, 0, len(grants))
	for _, g := range grants {
		if s.Match(g, today) {
			out = append(out, g)
		}
	}
	return out
}

// Match reports whether g satisfies every constraint of s on the given day.
func (s Set) Match(g grant.Grant, today time.Time) bool {
	p := s.p
	if len(p.Organizations) > 0 && !slices.Contains(p.Organizations, g.Organization()) {
		return false
	}
	if !s.matchFunding(g) {
		return false
	}
	if !s.matchDeadline(g, today) {
		return false
	}
	if !matchAny(p.Tags, g.Tags()) ||
		!matchAny(p.Sectors, g.Sectors()) ||
		!matchAny(p.ApplicantTypes, g.ApplicantTypes()) ||
		!matchAny(p.GeographicScope, g.GeographicScope()) {
		return false
	}
	if p.CofinancingRequired != nil && *p.CofinancingRequired != g.CofinancingRequired() {
		return false
	}
	return matchStatus(p.Status, g, today)
}

func (s Set) matchFunding(g grant.Grant) bool {
	if s.p.FundingMin == nil && s.p.FundingMax == nil {
		return true
	}
	amount, ok := g.Amount()
	if !ok {
		return false
	}
	if s.p.FundingMin != nil && amount < *s.p.FundingMin {
		return false
	}
	if s.p.FundingMax != nil && amount > *s.p.FundingMax {
		return false
	}
	return true
}

func (s Set) matchDeadline(g grant.Grant, today time.Time) bool {
	if !s.HasDeadline() {
		return true
	}
	d, ok := g.Deadline().Time()
	if !ok {
		return false
	}

	if s.p.DeadlinePreset != "" {
		end := today.AddDate(0, 0, Preset(s.p.DeadlinePreset).Days())
		return !d.Before(today) && !d.After(end)
	}
	if s.p.DeadlineStart != nil && d.Before(*s.p.DeadlineStart) {
		return false
	}
	if s.p.DeadlineEnd != nil && d.After(*s.p.DeadlineEnd) {
		return false
	}
	return true
}

func matchStatus(st Status, g grant.Grant, today time.Time) bool {
	switch st {
	case StatusOpen:
		opens, okOpen := g.OpensAt().Time()
		closes, okClose := g.Deadline().Time()
		return okOpen && okClose && !opens.After(today) && !closes.Before(today)
	case StatusUpcoming:
		opens, ok := g.OpensAt().Time()
		return ok && opens.After(today)
	default:
		return true
	}
}

// matchAny reports whether any grant value equals any wanted value after label
// normalization. An empty wanted list matches everything.
func matchAny(wanted, values []string) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, v := range values {
		nv := NormalizeLabel(v)
		if nv == "" {
			continue
		}
		for _, w := range wanted {
			if strings.EqualFold(nv, NormalizeLabel(w)) {
				return true
			}
		}
	}
	return false
}

// NormalizeLabel strips legacy bracket wrapping ("[Foo]" -> "Foo") and surrounding space.
func NormalizeLabel(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	return strings.TrimSpace(s)
}

// Organizations returns the distinct non-empty organizations of grants, sorted.
func Organizations(grants []grant.Grant) []string {
	orgs := make([]string, 0, len(grants))
	for _, g := range grants {
		if o := g.Organization(); o != "" {
			orgs = append(orgs, o)
		}
	}
	slices.Sort(orgs)
	return slices.Compact(orgs)
}
