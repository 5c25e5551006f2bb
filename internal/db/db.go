package db

import (
	"context"
	"time"
)

// Store is the KV facade grantdex needs: counters and caches (KVStore),
// the grant corpus (JSONStore, KeyScanner) and lifecycle.
type Store interface {
	Pinger
	KVStore
	JSONStore
	KeyScanner
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KeyScanner enumerates and removes keys.
type KeyScanner interface {
	Scan(ctx context.Context, pattern string) ([]string, error)
	// Del removes keys without blocking the server and returns how many existed.
	Del(ctx context.Context, keys ...string) (int64, error)
}

// JSONSetItem is one document of a pipelined JSON.SET.
type JSONSetItem struct {
	Key  string
	Path string
	Data []byte
}

// JSONStore reads and writes JSON documents (RedisJSON).
type JSONStore interface {
	JSONSetMulti(ctx context.Context, items []JSONSetItem) error
	JSONGet(ctx context.Context, key, path string) ([]byte, error)
	// JSONGetMulti returns one document per key; missing keys yield nil entries.
	JSONGetMulti(ctx context.Context, keys []string, path string) ([][]byte, error)
}

// KVStore holds expiring values and counters.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	IncrBy(ctx context.Context, key string, val int64) error
	// Expire sets a TTL; with nx it only applies to keys that have none yet.
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}
