package request

import (
	"fmt"

	"github.com/kailas-cloud/grantdex/internal/domain"
	"github.com/kailas-cloud/grantdex/internal/domain/search/filter"
	"github.com/kailas-cloud/grantdex/internal/domain/search/mode"
	"github.com/kailas-cloud/grantdex/internal/domain/search/sortkey"
	"github.com/kailas-cloud/grantdex/internal/domain/search/text"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	DefaultPage    = 1
	DefaultLimit   = 15
	MaxLimit       = 100
)

// Request is a validated search query. It is derived per call and never mutated.
type Request struct {
	raw        string
	normalized string
	tokens     []string
	searchMode mode.Mode
	filters    filter.Set
	sortKey    sortkey.Key
	page       int
	limit      int
}

// New validates and normalizes search parameters.
// Defaults: mode=local, sort=default, page=1, limit=15.
func New(
	raw string,
	m mode.Mode,
	filters filter.Set,
	key sortkey.Key,
	page, limit int,
) (Request, error) {
	if len(raw) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidRequest, MaxQueryLength)
	}
	if m == "" {
		m = mode.Local
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("%w: invalid search mode: %q", domain.ErrInvalidRequest, m)
	}
	if key == "" {
		key = sortkey.Default
	}
	if !key.IsValid() {
		return Request{}, fmt.Errorf("%w: invalid sort key: %q", domain.ErrInvalidRequest, key)
	}
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Request{
		raw:        raw,
		normalized: text.Normalize(raw),
		tokens:     text.Tokens(raw),
		searchMode: m,
		filters:    filters,
		sortKey:    key,
		page:       page,
		limit:      limit,
	}, nil
}

// Raw returns the query text as typed.
func (r Request) Raw() string { return r.raw }

// Normalized returns the normalized query text.
func (r Request) Normalized() string { return r.normalized }

// Tokens returns the normalized query tokens.
func (r Request) Tokens() []string { return r.tokens }

// HasQuery reports whether the query carries any text after normalization.
func (r Request) HasQuery() bool { return r.normalized != "" }

// Ranked reports whether the query yields tokens to score relevance with.
// Queries of short words only ("AI", "EU") are not ranked.
func (r Request) Ranked() bool { return len(r.tokens) > 0 }

// Mode returns the search strategy.
func (r Request) Mode() mode.Mode { return r.searchMode }

// Filters returns the structured filter set.
func (r Request) Filters() filter.Set { return r.filters }

// SortKey returns the ordering key.
func (r Request) SortKey() sortkey.Key { return r.sortKey }

// Page returns the 1-based page number.
func (r Request) Page() int { return r.page }

// Limit returns the page size.
func (r Request) Limit() int { return r.limit }

// WithPage returns a copy of r for another page.
func (r Request) WithPage(page int) Request {
	if page <= 0 {
		page = DefaultPage
	}
	r.page = page
	return r
}
