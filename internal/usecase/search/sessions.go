package search

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/grantdex/internal/domain"
	"github.com/kailas-cloud/grantdex/internal/metrics"
)

// DefaultSessionIdleTTL is how long an untouched session is kept.
const DefaultSessionIdleTTL = 30 * time.Minute

// Sessions is the registry of live search sessions.
type Sessions struct {
	svc      *Service
	debounce time.Duration
	idleTTL  time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessions creates a session registry. Debounced searches run under a context
// that Close cancels.
func NewSessions(svc *Service, debounce, idleTTL time.Duration) *Sessions {
	if idleTTL <= 0 {
		idleTTL = DefaultSessionIdleTTL
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Sessions{
		svc:      svc,
		debounce: debounce,
		idleTTL:  idleTTL,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*Session),
	}
}

// Create opens a session.
func (r *Sessions) Create(opts SessionOptions) *Session {
	s := newSession(r.ctx, uuid.NewString(), r.svc, opts, r.debounce)

	r.mu.Lock()
	r.sessions[s.id] = s
	n := len(r.sessions)
	r.mu.Unlock()

	metrics.SearchSessionsActive.Set(float64(n))
	return s
}

// Get returns a live session.
func (r *Sessions) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

// Delete closes and removes a session.
func (r *Sessions) Delete(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return domain.ErrSessionNotFound
	}
	s.close()
	metrics.SearchSessionsActive.Set(float64(n))
	return nil
}

// Len returns the number of live sessions.
func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes sessions idle longer than the TTL and returns how many were removed.
func (r *Sessions) Sweep() int {
	now := r.svc.now()

	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if now.Sub(s.idleSince()) >= r.idleTTL {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	for _, s := range expired {
		s.close()
	}
	if len(expired) > 0 {
		r.svc.logger.Debug("Swept idle search sessions", zap.Int("removed", len(expired)), zap.Int("active", n))
	}
	metrics.SearchSessionsActive.Set(float64(n))
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (r *Sessions) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close cancels in-flight debounced searches and drops every session.
func (r *Sessions) Close() {
	r.cancel()

	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range all {
		s.close()
	}
	metrics.SearchSessionsActive.Set(0)
}
