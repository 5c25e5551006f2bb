package grants

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/grantdex/internal/db"
	"github.com/kailas-cloud/grantdex/internal/domain"
	"github.com/kailas-cloud/grantdex/internal/domain/grant"
)

const (
	loadChunkSize   = 200
	loadParallelism = 4
)

// store is the consumer interface for grant documents (ISP).
type store interface {
	Scan(ctx context.Context, pattern string) ([]string, error)
	JSONGet(ctx context.Context, key, path string) ([]byte, error)
	JSONGetMulti(ctx context.Context, keys []string, path string) ([][]byte, error)
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	Del(ctx context.Context, keys ...string) (int64, error)
}

// RedisSource stores grants as JSON documents under "<prefix><id>".
type RedisSource struct {
	store  store
	prefix string
	logger *zap.Logger
}

// NewRedisSource creates a Redis-backed grant source. Empty prefix uses "grantdex:grant:".
func NewRedisSource(s store, prefix string, logger *zap.Logger) *RedisSource {
	if prefix == "" {
		prefix = domain.KeyPrefix + "grant:"
	}
	return &RedisSource{store: s, prefix: prefix, logger: logger}
}

// Load scans all grant keys and fetches documents in parallel chunks.
func (s *RedisSource) Load(ctx context.Context) ([]grant.Grant, error) {
	keys, err := s.store.Scan(ctx, s.prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan grants: %w", err)
	}
	sort.Strings(keys)

	docs := make([][]byte, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadParallelism)
	for start := 0; start < len(keys); start += loadChunkSize {
		end := min(start+loadChunkSize, len(keys))
		g.Go(func() error {
			chunk, err := s.store.JSONGetMulti(gctx, keys[start:end], "$")
			if err != nil {
				return fmt.Errorf("fetch grants %d-%d: %w", start, end, err)
			}
			copy(docs[start:end], chunk)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]grant.Record, 0, len(docs))
	for i, raw := range docs {
		if raw == nil {
			continue
		}
		r, err := decodeDocument(raw)
		if err != nil {
			s.logger.Warn("Skipping unreadable grant document", zap.String("key", keys[i]), zap.Error(err))
			continue
		}
		if r.ID == "" {
			r.ID = strings.TrimPrefix(keys[i], s.prefix)
		}
		records = append(records, r)
	}
	return fromRecords(records, "redis", s.logger), nil
}

// Get fetches a single grant.
func (s *RedisSource) Get(ctx context.Context, id string) (grant.Grant, error) {
	raw, err := s.store.JSONGet(ctx, s.prefix+id, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return grant.Grant{}, domain.ErrNotFound
		}
		return grant.Grant{}, fmt.Errorf("json.get %s: %w", id, err)
	}
	r, err := decodeDocument(raw)
	if err != nil {
		return grant.Grant{}, err
	}
	if r.ID == "" {
		r.ID = id
	}
	return r.ToGrant()
}

// Put writes grants in one pipeline.
func (s *RedisSource) Put(ctx context.Context, grants []grant.Grant) error {
	if len(grants) == 0 {
		return nil
	}
	items := make([]db.JSONSetItem, len(grants))
	for i := range grants {
		data, err := json.Marshal(grant.RecordOf(grants[i]))
		if err != nil {
			return fmt.Errorf("marshal grant %s: %w", grants[i].ID(), err)
		}
		items[i] = db.JSONSetItem{Key: s.prefix + grants[i].ID(), Path: "$", Data: data}
	}
	if err := s.store.JSONSetMulti(ctx, items); err != nil {
		return fmt.Errorf("store grants: %w", err)
	}
	return nil
}

// Prune deletes stored grants whose ids are not in keep and returns how many were removed.
func (s *RedisSource) Prune(ctx context.Context, keep []grant.Grant) (int64, error) {
	keys, err := s.store.Scan(ctx, s.prefix+"*")
	if err != nil {
		return 0, fmt.Errorf("scan grants: %w", err)
	}
	live := make(map[string]struct{}, len(keep))
	for i := range keep {
		live[s.prefix+keep[i].ID()] = struct{}{}
	}
	var stale []string
	for _, k := range keys {
		if _, ok := live[k]; !ok {
			stale = append(stale, k)
		}
	}
	n, err := s.store.Del(ctx, stale...)
	if err != nil {
		return 0, fmt.Errorf("delete stale grants: %w", err)
	}
	if n > 0 {
		s.logger.Info("Pruned stale grants", zap.Int64("count", n))
	}
	return n, nil
}

// decodeDocument accepts both the "$" path form ([{...}]) and a bare object.
func decodeDocument(raw []byte) (grant.Record, error) {
	var wrapped []grant.Record
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		if len(wrapped) == 0 {
			return grant.Record{}, fmt.Errorf("empty grant document")
		}
		return wrapped[0], nil
	}
	var r grant.Record
	if err := json.Unmarshal(raw, &r); err != nil {
		return grant.Record{}, fmt.Errorf("decode grant document: %w", err)
	}
	return r, nil
}
