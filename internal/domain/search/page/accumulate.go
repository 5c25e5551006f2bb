package page

// Accumulator maintains the visible item set across page fetches.
type Accumulator[T any] interface {
	// Apply merges a fetched page into the visible set.
	Apply(items []T, info Info)
	// Items returns the visible set.
	Items() []T
	// Reset clears the visible set for a new query.
	Reset()
	// HasMore reports whether another page can be fetched.
	HasMore() bool
}

// Replace shows one page at a time: each fetch replaces the visible set.
type Replace[T any] struct {
	items   []T
	hasMore bool
}

// NewReplace creates a page-replace accumulator.
func NewReplace[T any]() *Replace[T] { return &Replace[T]{} }

// Apply implements Accumulator.
func (r *Replace[T]) Apply(items []T, info Info) {
	r.items = append([]T(nil), items...)
	r.hasMore = info.HasMore
}

// Items implements Accumulator.
func (r *Replace[T]) Items() []T { return r.items }

// Reset implements Accumulator.
func (r *Replace[T]) Reset() { r.items, r.hasMore = nil, false }

// HasMore implements Accumulator.
func (r *Replace[T]) HasMore() bool { return r.hasMore }

// Append grows the visible set monotonically ("load more") until the source is exhausted.
// Items already visible are skipped.
type Append[T any] struct {
	items    []T
	seen     map[string]struct{}
	key      func(T) string
	hasMore  bool
	started  bool
	lastPage int
}

// NewAppend creates a page-append accumulator keyed by key.
func NewAppend[T any](key func(T) string) *Append[T] {
	return &Append[T]{key: key, seen: make(map[string]struct{})}
}

// Apply implements Accumulator. Pages arriving after the source reported no more
// items, or repeating an already applied page, are ignored.
func (a *Append[T]) Apply(items []T, info Info) {
	if a.started && (!a.hasMore || info.Page <= a.lastPage) {
		return
	}
	for _, it := range items {
		k := a.key(it)
		if _, dup := a.seen[k]; dup {
			continue
		}
		a.seen[k] = struct{}{}
		a.items = append(a.items, it)
	}
	a.started = true
	a.lastPage = info.Page
	a.hasMore = info.HasMore
}

// Items implements Accumulator.
func (a *Append[T]) Items() []T { return a.items }

// Reset implements Accumulator.
func (a *Append[T]) Reset() {
	a.items = nil
	a.seen = make(map[string]struct{})
	a.hasMore, a.started, a.lastPage = false, false, 0
}

// HasMore implements Accumulator.
func (a *Append[T]) HasMore() bool { return !a.started || a.hasMore }

// NextPage returns the page to request for "load more".
func (a *Append[T]) NextPage() int { return a.lastPage + 1 }
