package aicache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/grantdex/internal/db"
	"github.com/kailas-cloud/grantdex/internal/domain"
)

var cacheKeyPrefix = domain.KeyPrefix + "ai_cache:"

// store is the consumer interface for the completion cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type cachedCompletion struct {
	Content string `json:"content"`
}

// CachedCompleter caches completions in a key-value store.
// Only deterministic stage prompts are cached, keyed by model and prompt.
type CachedCompleter struct {
	inner      domain.Completer
	store      store
	model      string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner domain.Completer,
	s store,
	model string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedCompleter {
	return &CachedCompleter{
		inner:      inner,
		store:      s,
		model:      model,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Complete returns a cached completion or calls the inner completer.
// Cache hit: TotalTokens = 0 (no real tokens consumed).
func (c *CachedCompleter) Complete(ctx context.Context, p domain.Prompt) (domain.Completion, error) {
	key := c.cacheKey(p)

	if content, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return domain.Completion{Content: content, Cached: true}, nil
	}

	c.incCache("miss")

	res, err := c.inner.Complete(ctx, p)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("complete prompt: %w", err)
	}

	c.putToCache(ctx, key, res.Content)
	return res, nil
}

func (c *CachedCompleter) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedCompleter) cacheKey(p domain.Prompt) string {
	h := sha256.Sum256([]byte(c.model + "\x00" + p.CacheKey()))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedCompleter) getFromCache(ctx context.Context, key string) (string, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached completion", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	if len(data) == 0 {
		return "", false
	}

	var cc cachedCompletion
	if err := json.Unmarshal(data, &cc); err != nil || cc.Content == "" {
		c.logger.Warn("Failed to parse cached completion", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return cc.Content, true
}

func (c *CachedCompleter) putToCache(ctx context.Context, key, content string) {
	if content == "" {
		return
	}
	data, err := json.Marshal(cachedCompletion{Content: content})
	if err != nil {
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache completion", zap.String("key", key), zap.Error(err))
	}
}
