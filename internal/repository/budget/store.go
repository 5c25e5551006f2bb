package budget

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/grantdex/internal/db"
)

// Retention of budget counters after their period starts.
const (
	DefaultDailyTTL   = 48 * time.Hour
	DefaultMonthlyTTL = 62 * 24 * time.Hour
)

// counters is the consumer interface for budget persistence (ISP).
type counters interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Store persists AI token and request counters as integer keys of the form
// "grantdex:budget:<provider>:<daily|monthly>:<date>[:requests]".
type Store struct {
	kv        counters
	retention map[string]time.Duration
}

// New creates a budget store. Zero TTLs take the defaults.
func New(kv counters, dailyTTL, monthlyTTL time.Duration) *Store {
	if dailyTTL <= 0 {
		dailyTTL = DefaultDailyTTL
	}
	if monthlyTTL <= 0 {
		monthlyTTL = DefaultMonthlyTTL
	}
	return &Store{
		kv:        kv,
		retention: map[string]time.Duration{"daily": dailyTTL, "monthly": monthlyTTL},
	}
}

// IncrBy adds val to the counter. The TTL is set with NX so the first write of a
// period fixes its expiry.
func (s *Store) IncrBy(ctx context.Context, key string, val int64) error {
	if err := s.kv.IncrBy(ctx, key, val); err != nil {
		return fmt.Errorf("incr budget counter %s: %w", key, err)
	}
	if err := s.kv.Expire(ctx, key, s.ttlOf(key), true); err != nil {
		return fmt.Errorf("expire budget counter %s: %w", key, err)
	}
	return nil
}

// Get returns the counter value; missing counters read as zero.
func (s *Store) Get(ctx context.Context, key string) (int64, error) {
	data, err := s.kv.Get(ctx, key)
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("read budget counter %s: %w", key, err)
	}

	val, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("budget counter %s is not an integer: %w", key, err)
	}
	return val, nil
}

// ttlOf picks the retention from the key's period segment; unknown keys keep the monthly one.
func (s *Store) ttlOf(key string) time.Duration {
	for _, seg := range strings.Split(key, ":") {
		if ttl, ok := s.retention[seg]; ok {
			return ttl
		}
	}
	return s.retention["monthly"]
}
