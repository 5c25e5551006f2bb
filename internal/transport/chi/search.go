package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/grantdex/internal/domain"
	"github.com/kailas-cloud/grantdex/internal/domain/search/mode"
	"github.com/kailas-cloud/grantdex/internal/domain/search/text"
	"github.com/kailas-cloud/grantdex/internal/transport/remote"
)

const (
	defaultSuggestions = 5
	maxSuggestions     = 20
)

// Search handles POST /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var body SearchRequest
	if !decodeBody(w, r, &body) {
		return
	}

	req, err := s.buildRequest(body.Query, body.Mode, body.Filters, body.SortBy, body.Page, body.Limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	out, err := s.search.Search(ctx, req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setAIHeaders(w, usage)
	writeJSON(w, http.StatusOK, SearchResponse{
		Grants:      grantResults(out.Grants, out.Scores),
		Pagination:  out.Page,
		Mode:        string(out.Mode),
		State:       string(out.State),
		Sectors:     out.Sectors,
		Explanation: out.Explanation,
		Degraded:    out.Degraded(),
		CacheHit:    out.CacheHit,
		LatencyMs:   out.Latency.Milliseconds(),
	})
}

// FilteredSearch handles POST /api/v1/grants/search, the filtered-grants-search
// contract served over the local corpus.
func (s *Server) FilteredSearch(w http.ResponseWriter, r *http.Request) {
	var body remote.SearchRequest
	if !decodeBody(w, r, &body) {
		return
	}

	req, err := s.buildRequest(body.Term(), string(mode.Local), &body.Filters,
		body.Sorting.SortBy, body.Pagination.Page, body.Pagination.Limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	grants, info, err := s.search.Filtered(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, remote.SearchResponse{
		Grants:     remote.Cards(grants),
		Pagination: info,
	})
}

// Suggestions handles GET /api/v1/grants/suggestions?q=&limit=.
func (s *Server) Suggestions(w http.ResponseWriter, r *http.Request) {
	var (
		q     string
		limit *int
	)
	if err := runtime.BindQueryParameter("form", true, false, "q", r.URL.Query(), &q); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid q parameter")
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid limit parameter")
		return
	}

	n := defaultSuggestions
	if limit != nil {
		if *limit <= 0 || *limit > maxSuggestions {
			writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "limit must be between 1 and 20")
			return
		}
		n = *limit
	}

	suggestions := []string{}
	if text.Normalize(q) != "" {
		suggestions = append(suggestions, s.search.Suggestions(q, n)...)
	}
	writeJSON(w, http.StatusOK, SuggestionsResponse{Suggestions: suggestions})
}

// Organizations handles GET /api/v1/grants/organizations.
func (s *Server) Organizations(w http.ResponseWriter, _ *http.Request) {
	orgs := s.search.Organizations()
	if orgs == nil {
		orgs = []string{}
	}
	writeJSON(w, http.StatusOK, OrganizationsResponse{Organizations: orgs})
}

// GetGrant handles GET /api/v1/grants/{id}.
func (s *Server) GetGrant(w http.ResponseWriter, r *http.Request) {
	g, err := s.search.Grant(chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, remote.CardOf(g))
}
