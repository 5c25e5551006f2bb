package grantdex

import (
	"time"

	"github.com/kailas-cloud/grantdex/internal/domain/grant"
	"github.com/kailas-cloud/grantdex/internal/domain/search/filter"
)

// Mode selects the search strategy.
type Mode string

// Search mode constants.
const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
	ModeAI     Mode = "ai"
)

// SortKey selects the result order.
type SortKey string

// Sort key constants.
const (
	SortDefault      SortKey = "default"
	SortDeadlineAsc  SortKey = "deadline-asc"
	SortDeadlineDesc SortKey = "deadline-desc"
	SortAmountAsc    SortKey = "amount-asc"
	SortAmountDesc   SortKey = "amount-desc"
	SortCreatedDesc  SortKey = "created-desc"
	SortRelevance    SortKey = "relevance"
	SortMatching     SortKey = "matching"
)

// Grant is a funding opportunity.
type Grant struct {
	ID             string
	Title          string
	Organization   string
	Description    string
	About          string
	Qualifications string
	// FundingAmount is the display form, e.g. "2,5 MSEK".
	FundingAmount string
	Currency      string
	// Amount is the normalized amount; nil when unknown.
	Amount              *float64
	Deadline            string // YYYY-MM-DD, empty when unspecified
	OpensAt             string
	Tags                []string
	Sectors             []string
	ApplicantTypes      []string
	GeographicScope     []string
	CofinancingRequired bool
	CofinancingLevel    float64
	UpdatedAt           time.Time
	URL                 string
}

// Filters restrict a search. The zero value applies no constraint.
type Filters struct {
	Organizations []string
	FundingMin    *float64
	FundingMax    *float64
	// DeadlinePreset is one of urgent, 2weeks, 1month, 3months, 6months, 1year.
	DeadlinePreset      string
	DeadlineStart       *time.Time
	DeadlineEnd         *time.Time
	Tags                []string
	Sectors             []string
	ApplicantTypes      []string
	GeographicScope     []string
	CofinancingRequired *bool
	// Status is "", "open" or "upcoming".
	Status string
}

// Query is a search request. Zero fields take the defaults: local mode,
// default order, page 1, 15 per page.
type Query struct {
	Text    string
	Mode    Mode
	Filters Filters
	Sort    SortKey
	Page    int
	Limit   int
}

// Hit is one grant of a result page.
type Hit struct {
	Grant Grant
	// Score is the relevance or match score; Scored is false for unranked result sets.
	Score  float64
	Scored bool
}

// Page is one page of search results.
type Page struct {
	Hits        []Hit
	Page        int
	Limit       int
	Total       int
	TotalPages  int
	HasMore     bool
	Mode        Mode
	Sectors     []string
	Explanation string
	// Degraded is set when a fallback produced the page.
	Degraded bool
	CacheHit bool
	AITokens int
}

// SectorMatch is the sector classification of a query.
type SectorMatch struct {
	Sectors     []string
	Explanation string
	// Source is "ai" or "keywords".
	Source   string
	Degraded bool
	AITokens int
}

// RankedGrant is one AI-ranked grant.
type RankedGrant struct {
	GrantID string
	Score   float64
	Reasons []string
}

// Ranking is an ordered set of matched grants.
type Ranking struct {
	Grants      []RankedGrant
	Sectors     []string
	Explanation string
	Degraded    bool
	AITokens    int
}

// BriefMatch is one grant bucketed against a project brief.
type BriefMatch struct {
	GrantID string
	Name    string
	Score   float64
}

// BriefResult buckets every grant of the corpus against a project brief.
type BriefResult struct {
	High        []BriefMatch
	Medium      []BriefMatch
	Low         []BriefMatch
	Explanation string
	Degraded    bool
	AITokens    int
}

func (g Grant) params() grant.Params {
	return grant.Params{
		ID:                  g.ID,
		Title:               g.Title,
		Organization:        g.Organization,
		Description:         g.Description,
		About:               g.About,
		Qualifications:      g.Qualifications,
		FundingAmount:       g.FundingAmount,
		Currency:            g.Currency,
		Amount:              g.Amount,
		Deadline:            g.Deadline,
		OpensAt:             g.OpensAt,
		Tags:                g.Tags,
		Sectors:             g.Sectors,
		ApplicantTypes:      g.ApplicantTypes,
		GeographicScope:     g.GeographicScope,
		CofinancingRequired: g.CofinancingRequired,
		CofinancingLevel:    g.CofinancingLevel,
		UpdatedAt:           g.UpdatedAt,
		URL:                 g.URL,
	}
}

func grantFromDomain(g grant.Grant) Grant {
	out := Grant{
		ID:                  g.ID(),
		Title:               g.Title(),
		Organization:        g.Organization(),
		Description:         g.Description(),
		About:               g.About(),
		Qualifications:      g.Qualifications(),
		FundingAmount:       g.FundingDisplay(),
		Currency:            g.Currency(),
		Tags:                g.Tags(),
		Sectors:             g.Sectors(),
		ApplicantTypes:      g.ApplicantTypes(),
		GeographicScope:     g.GeographicScope(),
		CofinancingRequired: g.CofinancingRequired(),
		CofinancingLevel:    g.CofinancingLevel(),
		UpdatedAt:           g.UpdatedAt(),
		URL:                 g.URL(),
	}
	if v, ok := g.Amount(); ok {
		out.Amount = &v
	}
	if g.Deadline().Specified() {
		out.Deadline = g.Deadline().String()
	}
	if g.OpensAt().Specified() {
		out.OpensAt = g.OpensAt().String()
	}
	return out
}

func (f Filters) params() filter.Params {
	return filter.Params{
		Organizations:       f.Organizations,
		FundingMin:          f.FundingMin,
		FundingMax:          f.FundingMax,
		DeadlinePreset:      f.DeadlinePreset,
		DeadlineStart:       f.DeadlineStart,
		DeadlineEnd:         f.DeadlineEnd,
		Tags:                f.Tags,
		Sectors:             f.Sectors,
		ApplicantTypes:      f.ApplicantTypes,
		GeographicScope:     f.GeographicScope,
		CofinancingRequired: f.CofinancingRequired,
		Status:              filter.Status(f.Status),
	}
}
