package grant

import (
	"math"
	"time"
)

// Record is the grant-store row shape shared by grant sources and the
// filtered-grants-search protocol.
type Record struct {
	ID             string `json:"id" yaml:"id"`
	Title          string `json:"title" yaml:"title"`
	Organization   string `json:"organisation" yaml:"organisation"`
	Description    string `json:"description,omitempty" yaml:"description"`
	Subtitle       string `json:"subtitle,omitempty" yaml:"subtitle"`
	Eligibility    string `json:"eligibility,omitempty" yaml:"eligibility"`
	FundingAmount  string `json:"funding_amount,omitempty" yaml:"funding_amount"`
	// AmountEUR is the normalized amount when the store has one.
	AmountEUR           *float64  `json:"funding_amount_eur,omitempty" yaml:"funding_amount_eur"`
	MinFunding          float64   `json:"min_funding_per_project,omitempty" yaml:"min_funding_per_project"`
	MaxFunding          float64   `json:"max_funding_per_project,omitempty" yaml:"max_funding_per_project"`
	TotalFunding        float64   `json:"total_funding_per_call,omitempty" yaml:"total_funding_per_call"`
	Currency            string    `json:"currency,omitempty" yaml:"currency"`
	ClosingDate         string    `json:"application_closing_date,omitempty" yaml:"application_closing_date"`
	OpeningDate         string    `json:"application_opening_date,omitempty" yaml:"application_opening_date"`
	Keywords            []string  `json:"keywords,omitempty" yaml:"keywords"`
	IndustrySectors     []string  `json:"industry_sectors,omitempty" yaml:"industry_sectors"`
	EligibleApplicants  []string  `json:"eligible_organisations,omitempty" yaml:"eligible_organisations"`
	GeographicScope     []string  `json:"geographic_scope,omitempty" yaml:"geographic_scope"`
	CofinancingRequired bool      `json:"cofinancing_required,omitempty" yaml:"cofinancing_required"`
	CofinancingLevel    float64   `json:"cofinancing_level_min,omitempty" yaml:"cofinancing_level_min"`
	UpdatedAt           time.Time `json:"updated_at,omitzero" yaml:"updated_at"`
	URL                 string    `json:"original_url,omitempty" yaml:"original_url"`
}

// ToGrant converts the record into a Grant. A missing display amount is
// rendered from the funding bounds.
func (r Record) ToGrant() (Grant, error) {
	display := r.FundingAmount
	if display == "" && (r.MinFunding > 0 || r.MaxFunding > 0 || r.TotalFunding > 0) {
		display = FormatFunding(r.MinFunding, r.MaxFunding, r.TotalFunding, r.Currency)
	}

	amount := r.AmountEUR
	if amount == nil {
		switch {
		case r.MaxFunding > 0:
			amount = &r.MaxFunding
		case r.TotalFunding > 0:
			amount = &r.TotalFunding
		}
	}

	return New(Params{
		ID:                  r.ID,
		Title:               r.Title,
		Organization:        r.Organization,
		Description:         r.Description,
		About:               r.Subtitle,
		Qualifications:      r.Eligibility,
		FundingAmount:       display,
		Currency:            r.Currency,
		Amount:              amount,
		Deadline:            r.ClosingDate,
		OpensAt:             r.OpeningDate,
		Tags:                r.Keywords,
		Sectors:             r.IndustrySectors,
		ApplicantTypes:      r.EligibleApplicants,
		GeographicScope:     r.GeographicScope,
		CofinancingRequired: r.CofinancingRequired,
		CofinancingLevel:    r.CofinancingLevel,
		UpdatedAt:           r.UpdatedAt,
		URL:                 r.URL,
	})
}

// RecordOf converts a Grant back to its record form.
func RecordOf(g Grant) Record {
	r := Record{
		ID:                  g.id,
		Title:               g.title,
		Organization:        g.organization,
		Description:         g.description,
		Subtitle:            g.about,
		Eligibility:         g.qualifications,
		FundingAmount:       g.fundingDisplay,
		Currency:            g.currency,
		Keywords:            cloneStrings(g.tags),
		IndustrySectors:     cloneStrings(g.sectors),
		EligibleApplicants:  cloneStrings(g.applicantTypes),
		GeographicScope:     cloneStrings(g.geoScope),
		CofinancingRequired: g.cofinancing,
		CofinancingLevel:    g.cofinLevel,
		UpdatedAt:           g.updatedAt,
		URL:                 g.url,
	}
	if g.hasAmount && !math.IsNaN(g.amount) {
		v := g.amount
		r.AmountEUR = &v
	}
	if g.deadline.ok {
		r.ClosingDate = g.deadline.String()
	}
	if g.opensAt.ok {
		r.OpeningDate = g.opensAt.String()
	}
	return r
}

// Records converts grants to records, keeping order.
func Records(grants []Grant) []Record {
	out := make([]Record, len(grants))
	for i := range grants {
		out[i] = RecordOf(grants[i])
	}
	return out
}
