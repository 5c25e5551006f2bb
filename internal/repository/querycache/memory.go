package querycache

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/grantdex/internal/domain/grant"
)

// Memory is a process-local TTL cache of search result sets.
type Memory struct {
	mu      sync.Mutex
	entries map[string]Entry
	ttl     time.Duration
	now     func() time.Time
	hits    uint64
	lookups uint64
}

// NewMemory creates an in-memory cache. A nil clock uses time.Now.
func NewMemory(ttl time.Duration, now func() time.Time) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Memory{entries: make(map[string]Entry), ttl: ttl, now: now}
}

// Get returns the entry for key if present and younger than the TTL.
func (m *Memory) Get(_ context.Context, key string) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lookups++
	e, ok := m.entries[key]
	if !ok || !fresh(e, m.now(), m.ttl) {
		return Entry{}, false
	}
	m.hits++
	return e, true
}

// Set stores e under key, replacing any previous entry. CreatedAt is stamped now.
func (m *Memory) Set(_ context.Context, key string, e Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.IDs = append([]string(nil), e.IDs...)
	if e.Scores != nil {
		e.Scores = append([]float64(nil), e.Scores...)
	}
	if e.Records != nil {
		e.Records = append([]grant.Record(nil), e.Records...)
	}
	e.CreatedAt = m.now()
	m.entries[key] = e
}

// Sweep removes expired entries and returns how many were dropped.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for k, e := range m.entries {
		if !fresh(e, now, m.ttl) {
			delete(m.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of held entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Stats returns hit and lookup counters.
func (m *Memory) Stats() (hits, lookups uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.lookups
}

// Run sweeps every interval until ctx is done.
func (m *Memory) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
