package search

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/grantdex/internal/domain"
	"github.com/kailas-cloud/grantdex/internal/domain/grant"
	"github.com/kailas-cloud/grantdex/internal/domain/search/filter"
	"github.com/kailas-cloud/grantdex/internal/domain/search/mode"
	"github.com/kailas-cloud/grantdex/internal/domain/search/page"
	"github.com/kailas-cloud/grantdex/internal/domain/search/request"
	"github.com/kailas-cloud/grantdex/internal/domain/search/sortkey"
	"github.com/kailas-cloud/grantdex/internal/metrics"
)

// SessionOptions fix the non-text parameters of a session's searches.
type SessionOptions struct {
	Mode    mode.Mode
	Filters filter.Set
	Sort    sortkey.Key
	Limit   int
	// Compact selects page-append ("load more") instead of page-replace.
	Compact bool
}

// Snapshot is the visible state of a session.
type Snapshot struct {
	ID          string
	Epoch       uint64
	Raw         string
	Effective   string
	Pending     bool
	State       State
	Grants      []grant.Grant
	Scores      map[string]float64
	Page        page.Info
	HasMore     bool
	Sectors     []string
	Explanation string
	// Err is the last user-visible failure, e.g. "no search performed".
	Err error
}

// Session is one client's search state. Each dispatched search is tagged with a
// request epoch; completions whose epoch is no longer current are discarded.
type Session struct {
	id     string
	svc    *Service
	opts   SessionOptions
	ctx    context.Context
	logger *zap.Logger

	debouncer *Debouncer

	mu       sync.Mutex
	epoch    uint64
	state    State
	settled  State
	applied  request.Request
	hasQuery bool
	last     Outcome
	lastErr  error
	tracker  *page.Tracker
	acc      page.Accumulator[grant.Grant]
	touched  time.Time
}

func newSession(ctx context.Context, id string, svc *Service, opts SessionOptions, debounce time.Duration) *Session {
	s := &Session{
		id:      id,
		svc:     svc,
		opts:    opts,
		ctx:     ctx,
		logger:  svc.logger.With(zap.String("session_id", id)),
		state:   StateIdle,
		settled: StateIdle,
		tracker: page.NewTracker(),
		touched: svc.now(),
	}
	if opts.Compact {
		s.acc = page.NewAppend(func(g grant.Grant) string { return g.ID() })
	} else {
		s.acc = page.NewReplace[grant.Grant]()
	}
	s.debouncer = NewDebouncer(debounce, s.onEffective)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Submit pushes raw input. The search runs once input has been quiet for the debounce delay.
func (s *Session) Submit(raw string) {
	s.mu.Lock()
	s.touched = s.svc.now()
	s.state = StateDebouncing
	s.mu.Unlock()

	s.debouncer.Push(raw)
}

// Flush dispatches pending input immediately.
func (s *Session) Flush() { s.debouncer.Flush() }

func (s *Session) onEffective(effective string) {
	req, err := request.New(effective, s.opts.Mode, s.opts.Filters, s.opts.Sort, request.DefaultPage, s.opts.Limit)
	if err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.setState(StateIdle)
		s.mu.Unlock()
		return
	}
	_, _ = s.Dispatch(s.ctx, req)
}

// Dispatch runs req under a new epoch and applies its outcome only if no newer
// request was dispatched meanwhile. It reports whether the outcome was applied.
func (s *Session) Dispatch(ctx context.Context, req request.Request) (bool, error) {
	s.mu.Lock()
	s.epoch++
	epoch := s.epoch
	s.setState(StateFetching)
	s.touched = s.svc.now()
	s.mu.Unlock()

	out, err := s.svc.search(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		metrics.SearchStaleDiscarded.Inc()
		s.logger.Debug("Discarded stale search completion",
			zap.Uint64("epoch", epoch), zap.Uint64("current_epoch", s.epoch))
		return false, nil
	}

	if err != nil {
		s.lastErr = err
		s.setState(StateIdle)
		if errors.Is(err, domain.ErrEmptyQuery) {
			s.acc.Reset()
			s.last = Outcome{}
			s.hasQuery = false
		}
		return true, err
	}

	if req.Page() == request.DefaultPage {
		s.acc.Reset()
		s.tracker.Reset()
	}
	if req.Mode() == mode.Remote {
		if s.tracker.Resync(out.Page) {
			s.logger.Debug("Resynced page with server", zap.Int("page", out.Page.Page))
		}
	} else {
		s.tracker.Set(out.Page.Page)
	}
	s.acc.Apply(out.Grants, out.Page)

	s.applied = req
	s.hasQuery = true
	s.last = out
	s.lastErr = nil
	if out.CacheHit && out.State == StateSucceeded {
		s.setState(StateCacheHit)
	} else {
		s.setState(out.State)
	}
	s.svc.observe(out)
	return true, nil
}

// LoadMore fetches the next page of the applied query. It is a no-op when the
// result set is exhausted.
func (s *Session) LoadMore(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if !s.hasQuery || !s.acc.HasMore() {
		s.mu.Unlock()
		return false, nil
	}
	next := s.tracker.Page() + 1
	if a, ok := s.acc.(*page.Append[grant.Grant]); ok {
		next = a.NextPage()
	}
	req := s.applied.WithPage(next)
	s.mu.Unlock()

	return s.Dispatch(ctx, req)
}

// Snapshot returns the visible state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := s.debouncer.IsPending()
	state := s.state
	if state == StateDebouncing && !pending {
		state = s.settled
	}
	return Snapshot{
		ID:          s.id,
		Epoch:       s.epoch,
		Raw:         s.debouncer.Raw(),
		Effective:   s.debouncer.Effective(),
		Pending:     pending,
		State:       state,
		Grants:      append([]grant.Grant(nil), s.acc.Items()...),
		Scores:      s.last.Scores,
		Page:        s.last.Page,
		HasMore:     s.hasQuery && s.acc.HasMore(),
		Sectors:     s.last.Sectors,
		Explanation: s.last.Explanation,
		Err:         s.lastErr,
	}
}

// setState must be called with mu held.
func (s *Session) setState(st State) {
	s.state = st
	if st != StateDebouncing {
		s.settled = st
	}
}

// idleSince returns the time of the last interaction.
func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// close stops the debouncer. A dispatch already running completes against the
// detached session.
func (s *Session) close() {
	s.debouncer.Stop()
}
