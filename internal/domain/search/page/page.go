// Package page implements page/limit bookkeeping for local and server-paginated results.
package page

// Info describes one page of a result set.
type Info struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasMore    bool `json:"hasMore"`

	start, end int
}

// Local computes page bounds over n locally held items.
// Pages beyond the end yield an empty window.
func Local(n, page, limit int) Info {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	if n < 0 {
		n = 0
	}
	totalPages := (n + limit - 1) / limit

	start := min((page-1)*limit, n)
	end := min(page*limit, n)
	return Info{
		Page:       page,
		Limit:      limit,
		Total:      n,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
		start:      start,
		end:        end,
	}
}

// FromServer trusts a server-reported page verbatim. The window covers the items
// the server returned.
func FromServer(page, limit, total, totalPages int, hasMore bool, returned int) Info {
	return Info{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    hasMore,
		start:      0,
		end:        returned,
	}
}

// Bounds returns the [start, end) window into the full result set.
func (i Info) Bounds() (start, end int) { return i.start, i.end }

// Slice returns the items of the page described by info.
func Slice[T any](items []T, info Info) []T {
	start, end := info.Bounds()
	if start >= len(items) || start >= end {
		return []T{}
	}
	end = min(end, len(items))
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}

// Tracker holds the locally requested page and reconciles it with server replies.
type Tracker struct {
	page int
}

// NewTracker creates a tracker starting at page 1.
func NewTracker() *Tracker { return &Tracker{page: 1} }

// Page returns the locally held page.
func (t *Tracker) Page() int { return t.page }

// Set moves the tracker to page p.
func (t *Tracker) Set(p int) {
	if p < 1 {
		p = 1
	}
	t.page = p
}

// Reset returns to page 1.
func (t *Tracker) Reset() { t.page = 1 }

// Resync adopts the server page when it differs from the local one and reports
// whether it did.
func (t *Tracker) Resync(server Info) bool {
	if server.Page < 1 || server.Page == t.page {
		return false
	}
	t.page = server.Page
	return true
}
