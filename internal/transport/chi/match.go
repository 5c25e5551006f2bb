package chi

import (
	"net/http"
	"strings"

	"github.com/kailas-cloud/grantdex/internal/domain"
	"github.com/kailas-cloud/grantdex/internal/domain/grant"
	matchinguc "github.com/kailas-cloud/grantdex/internal/usecase/matching"
)

// MatchSectors handles POST /api/v1/sectors/match.
func (s *Server) MatchSectors(w http.ResponseWriter, r *http.Request) {
	var body QueryRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Query) == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "Query is required")
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	m := s.sectors.Match(ctx, body.Query)

	setAIHeaders(w, usage)
	writeJSON(w, http.StatusOK, SectorMatchResponse{
		RelevantSectors: m.Sectors,
		Explanation:     m.Explanation,
		Source:          m.Source,
		Degraded:        m.Degraded,
	})
}

// MatchGrants handles POST /api/v1/grants/match. Sectors are classified from the
// query when the request carries none.
func (s *Server) MatchGrants(w http.ResponseWriter, r *http.Request) {
	var body GrantMatchRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Query) == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "Query is required")
		return
	}

	grants := s.corpus.All()
	if len(grants) == 0 {
		s.handleDomainError(w, r, domain.ErrEmptyCorpus)
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	sectors := body.Sectors
	degraded := false
	if len(sectors) == 0 {
		m := s.sectors.Match(ctx, body.Query)
		sectors, degraded = m.Sectors, m.Degraded
	}
	ranking := s.matcher.Rank(ctx, body.Query, sectors, grants)

	ranked := make([]RankedGrant, len(ranking.Matches))
	for i, m := range ranking.Matches {
		reasons := m.Reasons()
		if reasons == nil {
			reasons = []string{}
		}
		ranked[i] = RankedGrant{GrantID: m.GrantID(), RelevanceScore: m.Score(), MatchingReasons: reasons}
	}

	setAIHeaders(w, usage)
	writeJSON(w, http.StatusOK, GrantMatchResponse{
		RankedGrants: ranked,
		Sectors:      sectors,
		Explanation:  ranking.Explanation,
		Degraded:     degraded || ranking.Degraded,
	})
}

// MatchBrief handles POST /api/v1/grants/match-brief.
func (s *Server) MatchBrief(w http.ResponseWriter, r *http.Request) {
	var body BriefMatchRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Description) == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "Project description is required")
		return
	}

	grants := s.corpus.All()
	if len(grants) == 0 {
		s.handleDomainError(w, r, domain.ErrEmptyCorpus)
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	ranking := s.matcher.MatchBrief(ctx, body.Description, body.Attachments, grants)

	index := grant.Index(grants)
	resp := BriefMatchResponse{
		HighMatch:   []BriefMatch{},
		MediumMatch: []BriefMatch{},
		LowMatch:    []BriefMatch{},
		Explanation: ranking.Explanation,
		Degraded:    ranking.Degraded,
	}
	for _, m := range ranking.Matches {
		item := BriefMatch{GrantID: m.GrantID(), Score: m.Score()}
		if i, ok := index[m.GrantID()]; ok {
			item.Name = grants[i].Title()
		}
		switch matchinguc.TierOf(m.Score()) {
		case matchinguc.TierHigh:
			resp.HighMatch = append(resp.HighMatch, item)
		case matchinguc.TierMedium:
			resp.MediumMatch = append(resp.MediumMatch, item)
		default:
			resp.LowMatch = append(resp.LowMatch, item)
		}
	}

	setAIHeaders(w, usage)
	writeJSON(w, http.StatusOK, resp)
}
