package remote

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/grantdex/internal/domain"
	"github.com/kailas-cloud/grantdex/internal/domain/grant"
	"github.com/kailas-cloud/grantdex/internal/domain/search/filter"
	"github.com/kailas-cloud/grantdex/internal/domain/search/page"
)

// SearchRequest is the filtered-grants-search request body.
type SearchRequest struct {
	Filters    Filters     `json:"filters"`
	Sorting    Sorting     `json:"sorting"`
	Pagination PageRequest `json:"pagination"`
	SearchTerm string      `json:"searchTerm"`
}

// Filters is the wire form of a filter set.
type Filters struct {
	Organizations       []string        `json:"organizations,omitempty"`
	FundingRange        *FundingRange   `json:"fundingRange,omitempty"`
	Deadline            *DeadlineFilter `json:"deadline,omitempty"`
	Tags                []string        `json:"tags,omitempty"`
	IndustrySectors     []string        `json:"industrySectors,omitempty"`
	EligibleApplicants  []string        `json:"eligibleApplicants,omitempty"`
	GeographicScope     []string        `json:"geographicScope,omitempty"`
	CofinancingRequired *bool           `json:"cofinancingRequired,omitempty"`
	StatusFilter        string          `json:"statusFilter,omitempty"`
}

// FundingRange bounds the normalized amount.
type FundingRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Deadline filter types.
const (
	DeadlinePreset = "preset"
	DeadlineCustom = "custom"
)

// DeadlineFilter is either a preset window or a custom date range.
type DeadlineFilter struct {
	Type        string     `json:"type"`
	Preset      string     `json:"preset,omitempty"`
	CustomRange *DateRange `json:"customRange,omitempty"`
}

// DateRange holds YYYY-MM-DD bounds.
type DateRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// Sorting selects the server-side order. SearchTerm repeats the query for
// relevance ordering.
type Sorting struct {
	SortBy     string `json:"sortBy"`
	SearchTerm string `json:"searchTerm,omitempty"`
}

// Term returns the query text, falling back to sorting.searchTerm.
func (r SearchRequest) Term() string {
	if r.SearchTerm != "" {
		return r.SearchTerm
	}
	return r.Sorting.SearchTerm
}

// PageRequest selects the requested page.
type PageRequest struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// SearchResponse is the filtered-grants-search reply.
type SearchResponse struct {
	Grants     []Card    `json:"grants"`
	Pagination page.Info `json:"pagination"`
}

// Card is the grant card shape returned by filtered-grants-search.
type Card struct {
	ID                  string   `json:"id"`
	Title               string   `json:"title"`
	Organization        string   `json:"organization"`
	AboutGrant          string   `json:"aboutGrant"`
	FundingAmount       string   `json:"fundingAmount"`
	FundingAmountEUR    *float64 `json:"funding_amount_eur,omitempty"`
	Currency            string   `json:"currency,omitempty"`
	OpensAt             string   `json:"opens_at"`
	Deadline            string   `json:"deadline"`
	Tags                []string `json:"tags"`
	IndustrySectors     []string `json:"industry_sectors"`
	EligibleApplicants  []string `json:"eligible_organisations"`
	GeographicScope     []string `json:"geographic_scope"`
	CofinancingRequired bool     `json:"cofinancing_required"`
	CofinancingLevelMin *float64 `json:"cofinancing_level_min,omitempty"`
	URL                 string   `json:"url,omitempty"`
	UpdatedAt           string   `json:"updated_at,omitempty"`
}

// FiltersOf converts validated filter params to the wire form.
func FiltersOf(p filter.Params) Filters {
	f := Filters{
		Organizations:       p.Organizations,
		Tags:                p.Tags,
		IndustrySectors:     p.Sectors,
		EligibleApplicants:  p.ApplicantTypes,
		GeographicScope:     p.GeographicScope,
		CofinancingRequired: p.CofinancingRequired,
		StatusFilter:        string(p.Status),
	}
	if p.FundingMin != nil || p.FundingMax != nil {
		f.FundingRange = &FundingRange{Min: p.FundingMin, Max: p.FundingMax}
	}
	switch {
	case p.DeadlinePreset != "":
		f.Deadline = &DeadlineFilter{Type: DeadlinePreset, Preset: p.DeadlinePreset}
	case p.DeadlineStart != nil || p.DeadlineEnd != nil:
		r := &DateRange{}
		if p.DeadlineStart != nil {
			r.Start = p.DeadlineStart.Format(time.DateOnly)
		}
		if p.DeadlineEnd != nil {
			r.End = p.DeadlineEnd.Format(time.DateOnly)
		}
		f.Deadline = &DeadlineFilter{Type: DeadlineCustom, CustomRange: r}
	}
	return f
}

// Params converts the wire form to filter params. Validation is left to filter.New.
func (f Filters) Params() (filter.Params, error) {
	p := filter.Params{
		Organizations:       f.Organizations,
		Tags:                f.Tags,
		Sectors:             f.IndustrySectors,
		ApplicantTypes:      f.EligibleApplicants,
		GeographicScope:     f.GeographicScope,
		CofinancingRequired: f.CofinancingRequired,
		Status:              filter.Status(f.StatusFilter),
	}
	if f.FundingRange != nil {
		p.FundingMin, p.FundingMax = f.FundingRange.Min, f.FundingRange.Max
	}
	if f.Deadline == nil {
		return p, nil
	}

	switch f.Deadline.Type {
	case DeadlinePreset:
		p.DeadlinePreset = f.Deadline.Preset
	case DeadlineCustom:
		if r := f.Deadline.CustomRange; r != nil {
			var err error
			if p.DeadlineStart, err = parseDate(r.Start); err != nil {
				return filter.Params{}, err
			}
			if p.DeadlineEnd, err = parseDate(r.End); err != nil {
				return filter.Params{}, err
			}
		}
	default:
		return filter.Params{}, fmt.Errorf("%w: unknown deadline type %q", domain.ErrInvalidFilter, f.Deadline.Type)
	}
	return p, nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("%w: bad date %q", domain.ErrInvalidFilter, s)
	}
	return &t, nil
}

// CardOf renders a grant as a card.
func CardOf(g grant.Grant) Card {
	c := Card{
		ID:                  g.ID(),
		Title:               g.Title(),
		Organization:        g.Organization(),
		AboutGrant:          g.About(),
		FundingAmount:       g.FundingDisplay(),
		Currency:            g.Currency(),
		Tags:                nonNil(g.Tags()),
		IndustrySectors:     nonNil(g.Sectors()),
		EligibleApplicants:  nonNil(g.ApplicantTypes()),
		GeographicScope:     nonNil(g.GeographicScope()),
		CofinancingRequired: g.CofinancingRequired(),
		URL:                 g.URL(),
	}
	if c.FundingAmount == "" {
		c.FundingAmount = grant.FormatFunding(0, 0, 0, g.Currency())
	}
	if v, ok := g.Amount(); ok {
		c.FundingAmountEUR = &v
	}
	if g.OpensAt().Specified() {
		c.OpensAt = g.OpensAt().String()
	}
	if g.Deadline().Specified() {
		c.Deadline = g.Deadline().String()
	}
	if lvl := g.CofinancingLevel(); lvl > 0 {
		c.CofinancingLevelMin = &lvl
	}
	if !g.UpdatedAt().IsZero() {
		c.UpdatedAt = g.UpdatedAt().UTC().Format(time.RFC3339)
	}
	return c
}

// Cards renders grants as cards, keeping order.
func Cards(grants []grant.Grant) []Card {
	out := make([]Card, len(grants))
	for i := range grants {
		out[i] = CardOf(grants[i])
	}
	return out
}

// Grant converts a card back to a grant.
func (c Card) Grant() (grant.Grant, error) {
	var updated time.Time
	if c.UpdatedAt != "" {
		updated, _ = time.Parse(time.RFC3339, c.UpdatedAt)
	}
	return grant.New(grant.Params{
		ID:                  c.ID,
		Title:               c.Title,
		Organization:        c.Organization,
		About:               c.AboutGrant,
		FundingAmount:       c.FundingAmount,
		Currency:            c.Currency,
		Amount:              c.FundingAmountEUR,
		Deadline:            c.Deadline,
		OpensAt:             c.OpensAt,
		Tags:                c.Tags,
		Sectors:             c.IndustrySectors,
		ApplicantTypes:      c.EligibleApplicants,
		GeographicScope:     c.GeographicScope,
		CofinancingRequired: c.CofinancingRequired,
		CofinancingLevel:    deref(c.CofinancingLevelMin),
		UpdatedAt:           updated,
		URL:                 c.URL,
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
