package filter

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/kailas-cloud/grantdex/internal/domain"
)

// MaxValuesPerDimension is the maximum number of values per membership dimension.
const MaxValuesPerDimension = 64

// Status restricts grants by their application window.
type Status string

// Status values.
const (
	// StatusAny applies no window constraint.
	StatusAny Status = ""
	// StatusOpen keeps grants whose opening date has passed and deadline has not.
	StatusOpen     Status = "open"
	StatusUpcoming Status = "upcoming"
)

// IsValid checks if the status is one of the supported values.
func (s Status) IsValid() bool {
	return s == StatusAny || s == StatusOpen || s == StatusUpcoming
}

// Params are the raw filter parameters as received from a caller.
type Params struct {
	Organizations       []string   `json:"organizations,omitempty"`
	FundingMin          *float64   `json:"funding_min,omitempty"`
	FundingMax          *float64   `json:"funding_max,omitempty"`
	DeadlinePreset      string     `json:"deadline_preset,omitempty"`
	DeadlineStart       *time.Time `json:"deadline_start,omitempty"`
	DeadlineEnd         *time.Time `json:"deadline_end,omitempty"`
	Tags                []string   `json:"tags,omitempty"`
	Sectors             []string   `json:"sectors,omitempty"`
	ApplicantTypes      []string   `json:"applicant_types,omitempty"`
	GeographicScope     []string   `json:"geographic_scope,omitempty"`
	CofinancingRequired *bool      `json:"cofinancing_required,omitempty"`
	Status              Status     `json:"status,omitempty"`
}

// Set is a validated, immutable filter set. The zero value applies no constraint.
type Set struct {
	p Params
}

// New validates params and creates a Set. Membership values are trimmed, deduplicated
// and sorted so that equal sets have equal canonical forms.
func New(p Params) (Set, error) {
	if p.FundingMin != nil && !finite(*p.FundingMin) {
		return Set{}, fmt.Errorf("%w: funding min must be a finite number", domain.ErrInvalidFilter)
	}
	if p.FundingMax != nil && !finite(*p.FundingMax) {
		return Set{}, fmt.Errorf("%w: funding max must be a finite number", domain.ErrInvalidFilter)
	}
	if p.FundingMin != nil && p.FundingMax != nil && *p.FundingMin > *p.FundingMax {
		return Set{}, fmt.Errorf("%w: funding min > max", domain.ErrInvalidFilter)
	}

	if p.DeadlinePreset != "" {
		preset, ok := ParsePreset(p.DeadlinePreset)
		if !ok {
			return Set{}, fmt.Errorf("%w: unknown deadline preset %q", domain.ErrInvalidFilter, p.DeadlinePreset)
		}
		if p.DeadlineStart != nil || p.DeadlineEnd != nil {
			return Set{}, fmt.Errorf("%w: deadline preset and custom range are exclusive", domain.ErrInvalidFilter)
		}
		p.DeadlinePreset = string(preset)
	}
	if p.DeadlineStart != nil && p.DeadlineEnd != nil && p.DeadlineStart.After(*p.DeadlineEnd) {
		return Set{}, fmt.Errorf("%w: deadline start after end", domain.ErrInvalidFilter)
	}

	if !p.Status.IsValid() {
		return Set{}, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidFilter, p.Status)
	}

	var err error
	dims := []struct {
		name string
		vals *[]string
	}{
		{"organizations", &p.Organizations},
		{"tags", &p.Tags},
		{"sectors", &p.Sectors},
		{"applicant_types", &p.ApplicantTypes},
		{"geographic_scope", &p.GeographicScope},
	}
	for _, d := range dims {
		if *d.vals, err = canonical(d.name, *d.vals); err != nil {
			return Set{}, err
		}
	}

	p.FundingMin = cloneFloat(p.FundingMin)
	p.FundingMax = cloneFloat(p.FundingMax)
	p.DeadlineStart = dayPtr(p.DeadlineStart)
	p.DeadlineEnd = dayPtr(p.DeadlineEnd)
	if p.CofinancingRequired != nil {
		v := *p.CofinancingRequired
		p.CofinancingRequired = &v
	}

	return Set{p: p}, nil
}

// Params returns the canonical parameters of the set.
func (s Set) Params() Params { return s.p }

// IsEmpty reports whether the set constrains nothing.
func (s Set) IsEmpty() bool {
	p := s.p
	return len(p.Organizations) == 0 &&
		p.FundingMin == nil && p.FundingMax == nil &&
		!s.HasDeadline() &&
		len(p.Tags) == 0 && len(p.Sectors) == 0 &&
		len(p.ApplicantTypes) == 0 && len(p.GeographicScope) == 0 &&
		p.CofinancingRequired == nil &&
		p.Status == StatusAny
}

// HasDeadline reports whether a preset or custom deadline constraint is set.
func (s Set) HasDeadline() bool {
	return s.p.DeadlinePreset != "" || s.p.DeadlineStart != nil || s.p.DeadlineEnd != nil
}

// WithSectors returns a copy of the set whose sector dimension is replaced by sectors.
func (s Set) WithSectors(sectors []string) Set {
	out := s
	out.p.Sectors, _ = canonical("sectors", sectors)
	return out
}

func canonical(name string, vals []string) ([]string, error) {
	if len(vals) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	out = slices.Compact(out)
	if len(out) > MaxValuesPerDimension {
		return nil, fmt.Errorf("%w: too many %s values (max %d)", domain.ErrInvalidFilter, name, MaxValuesPerDimension)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func dayPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}
