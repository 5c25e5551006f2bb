package chi

import (
	"github.com/kailas-cloud/grantdex/internal/domain/search/page"
	"github.com/kailas-cloud/grantdex/internal/transport/remote"
)

// ErrorCode is the machine-readable error kind in ErrorResponse.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest        ErrorCode = "bad_request"
	ErrorCodeValidationFailed  ErrorCode = "validation_failed"
	ErrorCodeNoSearchPerformed ErrorCode = "no_search_performed"
	ErrorCodeUnauthorized      ErrorCode = "unauthorized"
	ErrorCodeNotFound          ErrorCode = "not_found"
	ErrorCodeSessionNotFound   ErrorCode = "session_not_found"
	ErrorCodeEmptyCorpus       ErrorCode = "empty_corpus"
	ErrorCodeUpstreamError     ErrorCode = "upstream_error"
	ErrorCodeAIQuotaExceeded   ErrorCode = "ai_quota_exceeded"
	ErrorCodeAIProviderError   ErrorCode = "ai_provider_error"
	ErrorCodeAINotConfigured   ErrorCode = "ai_not_configured"
	ErrorCodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchRequest is the body of POST /api/v1/search.
type SearchRequest struct {
	Query   string          `json:"query"`
	Mode    string          `json:"mode,omitempty"`
	Filters *remote.Filters `json:"filters,omitempty"`
	SortBy  string          `json:"sortBy,omitempty"`
	Page    int             `json:"page,omitempty"`
	Limit   int             `json:"limit,omitempty"`
}

// GrantResult is a grant card with its score in a ranked result set.
type GrantResult struct {
	remote.Card
	RelevanceScore *float64 `json:"relevanceScore,omitempty"`
}

// SearchResponse is one page of an orchestrated search.
type SearchResponse struct {
	Grants      []GrantResult `json:"grants"`
	Pagination  page.Info     `json:"pagination"`
	Mode        string        `json:"mode"`
	State       string        `json:"state"`
	Sectors     []string      `json:"sectors,omitempty"`
	Explanation string        `json:"explanation,omitempty"`
	Degraded    bool          `json:"degraded"`
	CacheHit    bool          `json:"cacheHit"`
	LatencyMs   int64         `json:"latencyMs"`
}

// SuggestionsResponse lists prefix completions.
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// OrganizationsResponse lists the distinct grant organizations.
type OrganizationsResponse struct {
	Organizations []string `json:"organizations"`
}

// QueryRequest carries a single free-text query.
type QueryRequest struct {
	Query string `json:"query"`
}

// SectorMatchResponse is the sector-matching reply.
type SectorMatchResponse struct {
	RelevantSectors []string `json:"relevantSectors"`
	Explanation     string   `json:"explanation"`
	Source          string   `json:"source"`
	Degraded        bool     `json:"degraded"`
}

// GrantMatchRequest is the keyword grant-matching request. Sectors are
// classified from the query when omitted.
type GrantMatchRequest struct {
	Query   string   `json:"query"`
	Sectors []string `json:"sectors,omitempty"`
}

// RankedGrant is one grant-matching result.
type RankedGrant struct {
	GrantID         string   `json:"grantId"`
	RelevanceScore  float64  `json:"relevanceScore"`
	MatchingReasons []string `json:"matchingReasons"`
}

// GrantMatchResponse is the keyword grant-matching reply.
type GrantMatchResponse struct {
	RankedGrants []RankedGrant `json:"rankedGrants"`
	Sectors      []string      `json:"sectors"`
	Explanation  string        `json:"explanation"`
	Degraded     bool          `json:"degraded"`
}

// BriefMatchRequest is a project brief to match against all grants.
type BriefMatchRequest struct {
	Description string   `json:"description"`
	Attachments []string `json:"attachments,omitempty"`
}

// BriefMatch is one bucketed brief-matching result.
type BriefMatch struct {
	GrantID string  `json:"grant_id"`
	Name    string  `json:"name"`
	Score   float64 `json:"score"`
}

// BriefMatchResponse buckets grants by match tier.
type BriefMatchResponse struct {
	HighMatch   []BriefMatch `json:"high_match"`
	MediumMatch []BriefMatch `json:"medium_match"`
	LowMatch    []BriefMatch `json:"low_match"`
	Explanation string       `json:"explanation,omitempty"`
	Degraded    bool         `json:"degraded"`
}

// CreateSessionRequest fixes the non-text parameters of a session.
type CreateSessionRequest struct {
	Mode    string          `json:"mode,omitempty"`
	Filters *remote.Filters `json:"filters,omitempty"`
	SortBy  string          `json:"sortBy,omitempty"`
	Limit   int             `json:"limit,omitempty"`
	// Compact selects "load more" accumulation instead of page replacement.
	Compact bool `json:"compact,omitempty"`
}

// SessionInputRequest pushes raw input into a session.
type SessionInputRequest struct {
	Query string `json:"query"`
	// Flush dispatches immediately instead of waiting for the debounce delay.
	Flush bool `json:"flush,omitempty"`
}

// SessionResponse is the visible state of a session.
type SessionResponse struct {
	ID          string        `json:"id"`
	Epoch       uint64        `json:"epoch"`
	Raw         string        `json:"raw"`
	Effective   string        `json:"effective"`
	Pending     bool          `json:"pending"`
	State       string        `json:"state"`
	Grants      []GrantResult `json:"grants"`
	Pagination  page.Info     `json:"pagination"`
	HasMore     bool          `json:"hasMore"`
	Sectors     []string      `json:"sectors,omitempty"`
	Explanation string        `json:"explanation,omitempty"`
	Error       *string       `json:"error,omitempty"`
}

// UsageResponse is the AI token usage report.
type UsageResponse struct {
	Period        string       `json:"period"`
	Provider      string       `json:"provider,omitempty"`
	PeriodStartAt string       `json:"period_start_at,omitempty"`
	PeriodEndAt   string       `json:"period_end_at,omitempty"`
	Usage         UsageMetrics `json:"usage"`
	Budget        BudgetStatus `json:"budget"`
}

// UsageMetrics counts requests and tokens in the period.
type UsageMetrics struct {
	Requests int `json:"requests"`
	Tokens   int `json:"tokens"`
}

// BudgetStatus describes the token budget of the period.
type BudgetStatus struct {
	TokensLimit     int    `json:"tokens_limit"`
	TokensRemaining int    `json:"tokens_remaining"`
	IsExhausted     bool   `json:"is_exhausted"`
	ResetsAt        string `json:"resets_at,omitempty"`
}

// HealthResponse reports component health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Grants  int               `json:"grants"`
	Version string            `json:"version"`
}
