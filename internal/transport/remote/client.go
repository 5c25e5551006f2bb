// Package remote speaks the filtered-grants-search protocol: server-side
// filtering, sorting and pagination over the grant store.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/grantdex/internal/domain"
	"github.com/kailas-cloud/grantdex/internal/domain/grant"
	"github.com/kailas-cloud/grantdex/internal/domain/search/page"
	"github.com/kailas-cloud/grantdex/internal/domain/search/request"
)

const (
	serviceName     = "filtered-grants-search"
	maxResponseSize = 16 << 20
	defaultTimeout  = 15 * time.Second
)

// Config holds the remote search endpoint settings.
type Config struct {
	// URL is the full endpoint URL.
	URL     string
	APIKey  string
	Timeout time.Duration
	Logger  *zap.Logger
}

// Client calls filtered-grants-search over HTTP.
type Client struct {
	url    string
	apiKey string
	http   *http.Client
	logger *zap.Logger
}

// Result is one server-paginated page of grants.
type Result struct {
	Grants []grant.Grant
	Page   page.Info
}

// NewClient creates a remote search client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		http:   &http.Client{Timeout: timeout},
		logger: cfg.Logger,
	}
}

// Search runs the request server-side. Non-2xx replies and empty bodies wrap
// domain.ErrTransport; malformed bodies wrap domain.ErrSchema.
func (c *Client) Search(ctx context.Context, req request.Request) (Result, error) {
	body, err := json.Marshal(SearchRequest{
		Filters:    FiltersOf(req.Filters().Params()),
		Sorting:    Sorting{SortBy: string(req.SortKey()), SearchTerm: req.Raw()},
		Pagination: PageRequest{Page: req.Page(), Limit: req.Limit()},
		SearchTerm: req.Raw(),
	})
	if err != nil {
		return Result{}, fmt.Errorf("marshal search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %w", domain.ErrTransport, serviceName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, domain.NewStatusError(serviceName, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return Result{}, fmt.Errorf("%w: read %s body: %w", domain.ErrTransport, serviceName, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return Result{}, fmt.Errorf("%w: %s returned an empty body", domain.ErrTransport, serviceName)
	}

	return decodeResponse(raw)
}

// wireResponse detects missing required members.
type wireResponse struct {
	Grants     *[]Card `json:"grants"`
	Pagination *struct {
		Page       *int  `json:"page"`
		Limit      *int  `json:"limit"`
		Total      *int  `json:"total"`
		TotalPages *int  `json:"totalPages"`
		HasMore    *bool `json:"hasMore"`
	} `json:"pagination"`
}

func decodeResponse(raw []byte) (Result, error) {
	var w wireResponse
	if err := json.Unmarshal(raw, &w); err != nil {
		return Result{}, fmt.Errorf("%w: decode %s reply: %w", domain.ErrSchema, serviceName, err)
	}
	if w.Grants == nil {
		return Result{}, fmt.Errorf("%w: %s reply missing grants", domain.ErrSchema, serviceName)
	}
	p := w.Pagination
	if p == nil || p.Page == nil || p.Limit == nil || p.Total == nil || p.TotalPages == nil || p.HasMore == nil {
		return Result{}, fmt.Errorf("%w: %s reply missing pagination", domain.ErrSchema, serviceName)
	}

	grants := make([]grant.Grant, 0, len(*w.Grants))
	for i, card := range *w.Grants {
		g, err := card.Grant()
		if err != nil {
			return Result{}, fmt.Errorf("%w: %s grant %d: %w", domain.ErrSchema, serviceName, i, err)
		}
		grants = append(grants, g)
	}

	return Result{
		Grants: grants,
		Page:   page.FromServer(*p.Page, *p.Limit, *p.Total, *p.TotalPages, *p.HasMore, len(grants)),
	}, nil
}

// IsRecoverable reports whether err is a transport or schema failure that callers
// absorb with a fallback.
func IsRecoverable(err error) bool {
	return errors.Is(err, domain.ErrTransport) || errors.Is(err, domain.ErrSchema)
}
