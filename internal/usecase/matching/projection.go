package matching

import (
	"github.com/kailas-cloud/grantdex/internal/domain/grant"
)

// MaxDescriptionRunes bounds the description sent to the model per grant.
const MaxDescriptionRunes = 300

// candidate is the compact grant projection sent to the model.
type candidate struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Organization string   `json:"organization,omitempty"`
	Description  string   `json:"description,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Sectors      []string `json:"sectors,omitempty"`
}

func project(grants []grant.Grant) []candidate {
	out := make([]candidate, len(grants))
	for i, g := range grants {
		desc := g.Description()
		if desc == "" {
			desc = g.About()
		}
		out[i] = candidate{
			ID:           g.ID(),
			Title:        g.Title(),
			Organization: g.Organization(),
			Description:  truncate(desc, MaxDescriptionRunes),
			Tags:         g.Tags(),
			Sectors:      g.Sectors(),
		}
	}
	return out
}

// briefCandidate mirrors the grant summary shape the brief prompt describes.
type briefCandidate struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Organization   string   `json:"organization,omitempty"`
	Description    string   `json:"description,omitempty"`
	FundingAmount  string   `json:"fundingAmount,omitempty"`
	Deadline       string   `json:"deadline,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	Qualifications string   `json:"qualifications,omitempty"`
}

func projectBrief(grants []grant.Grant) []briefCandidate {
	out := make([]briefCandidate, len(grants))
	for i, g := range grants {
		out[i] = briefCandidate{
			ID:             g.ID(),
			Title:          g.Title(),
			Organization:   g.Organization(),
			Description:    truncate(g.Description(), MaxDescriptionRunes),
			FundingAmount:  g.FundingDisplay(),
			Deadline:       g.Deadline().String(),
			Tags:           g.Tags(),
			Qualifications: truncate(g.Qualifications(), MaxDescriptionRunes),
		}
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
