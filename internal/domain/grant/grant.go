package grant

import (
	"fmt"
	"math"
	"time"
)

// MaxIDLength is the maximum grant identifier length.
const MaxIDLength = 256

// Grant is a read-only funding opportunity (immutable value object).
type Grant struct {
	id             string
	title          string
	organization   string
	description    string
	about          string
	qualifications string
	fundingDisplay string
	currency       string
	amount         float64
	hasAmount      bool
	deadline       Deadline
	opensAt        Deadline
	tags           []string
	sectors        []string
	applicantTypes []string
	geoScope       []string
	cofinancing    bool
	cofinLevel     float64
	updatedAt      time.Time
	url            string
}

// Params are the raw fields of a grant record as supplied by a grant source.
type Params struct {
	ID             string
	Title          string
	Organization   string
	Description    string
	About          string
	Qualifications string
	// FundingAmount is the display form, e.g. "2,5 MSEK" or "500 000 SEK".
	FundingAmount string
	Currency      string
	// Amount is the normalized amount; nil means "derive from FundingAmount".
	Amount              *float64
	Deadline            string
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

// New validates params and creates a Grant.
// The normalized amount prefers Params.Amount and falls back to parsing FundingAmount.
func New(p Params) (Grant, error) {
	if p.ID == "" {
		return Grant{}, fmt.Errorf("grant ID is required")
	}
	if len(p.ID) > MaxIDLength {
		return Grant{}, fmt.Errorf("grant ID too long (max %d)", MaxIDLength)
	}

	g := Grant{
		id:             p.ID,
		title:          p.Title,
		organization:   p.Organization,
		description:    p.Description,
		about:          p.About,
		qualifications: p.Qualifications,
		fundingDisplay: p.FundingAmount,
		currency:       p.Currency,
		deadline:       ParseDeadline(p.Deadline),
		opensAt:        ParseDeadline(p.OpensAt),
		tags:           cloneStrings(p.Tags),
		sectors:        cloneStrings(p.Sectors),
		applicantTypes: cloneStrings(p.ApplicantTypes),
		geoScope:       cloneStrings(p.GeographicScope),
		cofinancing:    p.CofinancingRequired,
		cofinLevel:     p.CofinancingLevel,
		updatedAt:      p.UpdatedAt,
		url:            p.URL,
	}

	switch {
	case p.Amount != nil && !math.IsNaN(*p.Amount) && !math.IsInf(*p.Amount, 0):
		g.amount, g.hasAmount = *p.Amount, true
	default:
		g.amount, g.hasAmount = ParseAmount(p.FundingAmount)
	}

	return g, nil
}

// ID returns the opaque grant identifier.
func (g Grant) ID() string { return g.id }

// Title returns the grant title.
func (g Grant) Title() string { return g.title }

// Organization returns the funding organization.
func (g Grant) Organization() string { return g.organization }

// Description returns the free-text description.
func (g Grant) Description() string { return g.description }

// About returns the short summary shown on cards.
func (g Grant) About() string { return g.about }

// Qualifications returns who can apply, as free text.
func (g Grant) Qualifications() string { return g.qualifications }

// FundingDisplay returns the funding amount as displayed.
func (g Grant) FundingDisplay() string { return g.fundingDisplay }

// Currency returns the funding currency, if known.
func (g Grant) Currency() string { return g.currency }

// Amount returns the normalized funding amount and whether it is known.
func (g Grant) Amount() (float64, bool) { return g.amount, g.hasAmount }

// Deadline returns the application closing date.
func (g Grant) Deadline() Deadline { return g.deadline }

// OpensAt returns the application opening date.
func (g Grant) OpensAt() Deadline { return g.opensAt }

// Tags returns the keyword tags.
func (g Grant) Tags() []string { return g.tags }

// Sectors returns the industry sector labels.
func (g Grant) Sectors() []string { return g.sectors }

// ApplicantTypes returns the eligible organization types.
func (g Grant) ApplicantTypes() []string { return g.applicantTypes }

// GeographicScope returns the geographic scope values.
func (g Grant) GeographicScope() []string { return g.geoScope }

// CofinancingRequired reports whether the applicant must cofinance.
func (g Grant) CofinancingRequired() bool { return g.cofinancing }

// CofinancingLevel returns the minimum cofinancing share, 0 when unknown.
func (g Grant) CofinancingLevel() float64 { return g.cofinLevel }

// UpdatedAt returns the last modification time of the record.
func (g Grant) UpdatedAt() time.Time { return g.updatedAt }

// URL returns the original announcement URL.
func (g Grant) URL() string { return g.url }

// IDs returns the identifiers of grants in order.
func IDs(grants []Grant) []string {
	ids := make([]string, len(grants))
	for i := range grants {
		ids[i] = grants[i].id
	}
	return ids
}

// Index maps grant IDs to their position in grants. Later duplicates are ignored.
func Index(grants []Grant) map[string]int {
	idx := make(map[string]int, len(grants))
	for i := range grants {
		if _, ok := idx[grants[i].id]; !ok {
			idx[grants[i].id] = i
		}
	}
	return idx
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
