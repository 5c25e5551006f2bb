package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/grantdex/internal/db"
)

var _ db.Store = (*Store)(nil)

const (
	defaultScanCount  = 200
	readyPollInterval = 100 * time.Millisecond
)

// Config holds connection parameters for a Redis store.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
	// ScanCount is the SCAN COUNT hint; 0 uses 200.
	ScanCount int64
}

// Store implements db.Store on rueidis. Redis 8+ (or the JSON module) is required
// for the grant corpus; counters and caches only need plain strings.
type Store struct {
	client    rueidis.Client
	scanCount int64
}

// NewStore connects to Redis. Client-side caching stays off: every value here is
// either a short-lived cache entry or a counter.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("redis: at least one address is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("redis: connect %v: %w", cfg.Addrs, err)
	}

	return newStore(client, cfg.ScanCount), nil
}

// NewStoreForTest wraps an existing client, typically a rueidis mock.
func NewStoreForTest(c rueidis.Client) *Store {
	return newStore(c, 0)
}

func newStore(c rueidis.Client, scanCount int64) *Store {
	if scanCount <= 0 {
		scanCount = defaultScanCount
	}
	return &Store{client: c, scanCount: scanCount}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings immediately, then every 100ms, until Redis answers or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	var last error
	for {
		if last = s.Ping(ctx); last == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("redis not ready after %s: %w", timeout, last)
		case <-ticker.C:
		}
	}
}
