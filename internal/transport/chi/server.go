package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/grantdex/internal/domain"
	"github.com/kailas-cloud/grantdex/internal/domain/grant"
	"github.com/kailas-cloud/grantdex/internal/domain/search/filter"
	"github.com/kailas-cloud/grantdex/internal/domain/search/mode"
	"github.com/kailas-cloud/grantdex/internal/domain/search/request"
	"github.com/kailas-cloud/grantdex/internal/domain/search/sortkey"
	"github.com/kailas-cloud/grantdex/internal/logger"
	"github.com/kailas-cloud/grantdex/internal/metrics"
	"github.com/kailas-cloud/grantdex/internal/transport/remote"
	healthuc "github.com/kailas-cloud/grantdex/internal/usecase/health"
	matchinguc "github.com/kailas-cloud/grantdex/internal/usecase/matching"
	searchuc "github.com/kailas-cloud/grantdex/internal/usecase/search"
	sectoruc "github.com/kailas-cloud/grantdex/internal/usecase/sector"
	usageuc "github.com/kailas-cloud/grantdex/internal/usecase/usage"
)

// maxBodyBytes bounds request bodies; briefs are the largest payloads.
const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Corpus lists the loaded grants for the matching endpoints.
type Corpus interface {
	All() []grant.Grant
}

// Services are the use cases served over HTTP.
type Services struct {
	Corpus   Corpus
	Search   *searchuc.Service
	Sessions *searchuc.Sessions
	Sectors  *sectoruc.Service
	Matcher  *matchinguc.Service
	Usage    *usageuc.Service
	Health   *healthuc.Service
}

// Server serves the grantdex JSON API on a chi router.
type Server struct {
	corpus        Corpus
	search        *searchuc.Service
	sessions      *searchuc.Sessions
	sectors       *sectoruc.Service
	matcher       *matchinguc.Service
	usage         *usageuc.Service
	health        *healthuc.Service
	defaultLimit  int
	maxLimit      int
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(svc Services, logger *zap.Logger) *Server {
	s := &Server{
		corpus:       svc.Corpus,
		search:       svc.Search,
		sessions:     svc.Sessions,
		sectors:      svc.Sectors,
		matcher:      svc.Matcher,
		usage:        svc.Usage,
		health:       svc.Health,
		defaultLimit: request.DefaultLimit,
		maxLimit:     request.MaxLimit,
		logger:       logger,
	}
	s.errorHandlers = []errorHandler{
		emptyQueryHandler,
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidFilter, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, ErrorCodeSessionNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrEmptyCorpus, http.StatusServiceUnavailable, ErrorCodeEmptyCorpus),
		sentinelHandler(domain.ErrAIQuotaExceeded, http.StatusPaymentRequired, ErrorCodeAIQuotaExceeded),
		sentinelHandler(domain.ErrAIProviderError, http.StatusBadGateway, ErrorCodeAIProviderError),
		sentinelHandler(domain.ErrAINotConfigured, http.StatusNotImplemented, ErrorCodeAINotConfigured),
		sentinelHandler(domain.ErrTransport, http.StatusBadGateway, ErrorCodeUpstreamError),
		sentinelHandler(domain.ErrSchema, http.StatusBadGateway, ErrorCodeUpstreamError),
	}
	return s
}

// WithPagination overrides the default and maximum page sizes.
func (s *Server) WithPagination(defaultLimit, maxLimit int) *Server {
	if defaultLimit > 0 {
		s.defaultLimit = defaultLimit
	}
	if maxLimit > 0 {
		s.maxLimit = maxLimit
	}
	return s
}

// Mount registers all routes on r.
func (s *Server) Mount(r chi.Router) {
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Get("/usage", s.GetUsage)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.Search)

		r.Route("/grants", func(r chi.Router) {
			r.Post("/search", s.FilteredSearch)
			r.Post("/match", s.MatchGrants)
			r.Post("/match-brief", s.MatchBrief)
			r.Get("/suggestions", s.Suggestions)
			r.Get("/organizations", s.Organizations)
			r.Get("/{id}", s.GetGrant)
		})

		r.Post("/sectors/match", s.MatchSectors)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.CreateSession)
			r.Get("/{id}", s.GetSession)
			r.Delete("/{id}", s.DeleteSession)
			r.Post("/{id}/input", s.SessionInput)
			r.Post("/{id}/more", s.SessionMore)
		})
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// buildRequest validates wire search parameters into a request.
func (s *Server) buildRequest(
	query, m string, wf *remote.Filters, sortBy string, page, limit int,
) (request.Request, error) {
	filters, err := filtersFromWire(wf)
	if err != nil {
		return request.Request{}, err
	}
	if page < 0 {
		return request.Request{}, fmt.Errorf("%w: page must be positive", domain.ErrInvalidRequest)
	}
	if limit < 0 || limit > s.maxLimit {
		return request.Request{}, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrInvalidRequest, s.maxLimit)
	}
	if limit == 0 {
		limit = s.defaultLimit
	}

	req, err := request.New(query, mode.Mode(m), filters, sortkey.Key(sortBy), page, limit)
	if err != nil {
		return request.Request{}, fmt.Errorf("build search request: %w", err)
	}
	return req, nil
}

func filtersFromWire(wf *remote.Filters) (filter.Set, error) {
	if wf == nil {
		return filter.Set{}, nil
	}
	p, err := wf.Params()
	if err != nil {
		return filter.Set{}, fmt.Errorf("parse filters: %w", err)
	}
	set, err := filter.New(p)
	if err != nil {
		return filter.Set{}, fmt.Errorf("parse filters: %w", err)
	}
	return set, nil
}

func grantResults(grants []grant.Grant, scores map[string]float64) []GrantResult {
	out := make([]GrantResult, len(grants))
	for i, g := range grants {
		out[i] = GrantResult{Card: remote.CardOf(g)}
		if v, ok := scores[g.ID()]; ok {
			out[i].RelevanceScore = &v
		}
	}
	return out
}

// decodeBody decodes a JSON body, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func setAIHeaders(w http.ResponseWriter, usage *domain.AIUsage) {
	if usage != nil && usage.Used() {
		w.Header().Set(metrics.AITokensHeader, strconv.Itoa(usage.TotalTokens()))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	// Validation errors carry user-facing detail.
	if errors.Is(err, domain.ErrInvalidRequest) || errors.Is(err, domain.ErrInvalidFilter) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrSessionNotFound,
		domain.ErrNotFound,
		domain.ErrEmptyQuery,
		domain.ErrEmptyCorpus,
		domain.ErrAIQuotaExceeded,
		domain.ErrAIProviderError,
		domain.ErrAINotConfigured,
		domain.ErrTransport,
		domain.ErrSchema,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// emptyQueryHandler reports a blank remote-mode query as "no search performed".
func emptyQueryHandler(w http.ResponseWriter, err error, _ string) bool {
	if !errors.Is(err, domain.ErrEmptyQuery) {
		return false
	}
	writeError(w, http.StatusBadRequest, ErrorCodeNoSearchPerformed, "no search performed")
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.logger
	if l, ok := logger.Lookup(r.Context()); ok {
		log = l
	}
	log.Warn("domain error", zap.String("route", r.URL.Path), zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
