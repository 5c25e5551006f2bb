package redis

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/grantdex/internal/db"
)

// Get returns the value at key or db.ErrKeyNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Do(ctx, s.client.B().Get().Key(key).Build()).AsBytes()
	switch {
	case rueidis.IsRedisNil(err):
		return nil, db.ErrKeyNotFound
	case err != nil:
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return data, nil
}

// SetWithTTL stores a value that expires after ttl.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	cmd := s.client.B().Set().Key(key).Value(rueidis.BinaryString(value)).Ex(ttl).Build()
	return s.exec(ctx, db.OpSet, cmd)
}

// IncrBy adds val to the counter at key, creating it at zero.
func (s *Store) IncrBy(ctx context.Context, key string, val int64) error {
	return s.exec(ctx, db.OpIncrBy, s.client.B().Incrby().Key(key).Increment(val).Build())
}

// Expire sets a TTL on key. With nx it only applies when the key has no TTL yet,
// so repeated calls keep the first period boundary.
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error {
	secs := s.client.B().Expire().Key(key).Seconds(int64(ttl / time.Second))
	if nx {
		return s.exec(ctx, db.OpExpire, secs.Nx().Build())
	}
	return s.exec(ctx, db.OpExpire, secs.Build())
}

func (s *Store) exec(ctx context.Context, op string, cmd rueidis.Completed) error {
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: op, Err: err}
	}
	return nil
}
