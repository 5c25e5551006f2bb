package querycache

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/grantdex/internal/db"
)

// kv is the consumer interface for the shared cache (ISP).
type kv interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Store shares result sets between instances through the KV store.
// Store errors are logged and treated as misses.
type Store struct {
	kv      kv
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger
	hits    atomic.Uint64
	lookups atomic.Uint64
}

// NewStore creates a KV-backed cache. A nil clock uses time.Now.
func NewStore(s kv, ttl time.Duration, now func() time.Time, logger *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Store{kv: s, ttl: ttl, now: now, logger: logger}
}

// Get returns the entry for key if present and younger than the TTL.
func (s *Store) Get(ctx context.Context, key string) (Entry, bool) {
	s.lookups.Add(1)

	data, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			s.logger.Warn("Failed to get cached search", zap.String("key", key), zap.Error(err))
		}
		return Entry{}, false
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		s.logger.Warn("Failed to parse cached search", zap.String("key", key), zap.Error(err))
		return Entry{}, false
	}
	if !fresh(e, s.now(), s.ttl) {
		return Entry{}, false
	}
	s.hits.Add(1)
	return e, true
}

// Set stores e under key with the cache TTL.
func (s *Store) Set(ctx context.Context, key string, e Entry) {
	e.CreatedAt = s.now()
	data, err := json.Marshal(e)
	if err != nil {
		s.logger.Warn("Failed to encode search cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.kv.SetWithTTL(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("Failed to cache search", zap.String("key", key), zap.Error(err))
	}
}

// Stats returns hit and lookup counters of this instance.
func (s *Store) Stats() (hits, lookups uint64) {
	return s.hits.Load(), s.lookups.Load()
}
