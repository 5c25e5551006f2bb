package aicache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/grantdex/internal/db"
	"github.com/kailas-cloud/grantdex/internal/domain"
)

var prompt = domain.Prompt{System: "sys", User: "classify: hav", Temperature: 0.1, MaxTokens: 500}

func TestComplete_CacheMiss(t *testing.T) {
	inner := &mockCompleter{result: domain.Completion{Content: `{"relevantSectors":[]}`, TotalTokens: 120}}
	cc, ms := newTestCachedCompleter(t, inner)

	var stored []byte
	var storedTTL time.Duration
	ms.setFn = func(_ context.Context, key string, value []byte, ttl time.Duration) error {
		if !strings.HasPrefix(key, cacheKeyPrefix) {
			t.Errorf("unexpected key %q", key)
		}
		stored, storedTTL = value, ttl
		return nil
	}

	res, err := cc.Complete(context.Background(), prompt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalTokens != 120 || res.Cached {
		t.Errorf("unexpected result: %+v", res)
	}
	if !strings.Contains(string(stored), "relevantSectors") {
		t.Errorf("expected content to be cached, got %s", stored)
	}
	if storedTTL != time.Hour {
		t.Errorf("ttl = %v, want 1h", storedTTL)
	}
}

func TestComplete_CacheHit(t *testing.T) {
	inner := &mockCompleter{}
	cc, ms := newTestCachedCompleter(t, inner)
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte(`{"content":"[\"x\"]"}`), nil
	}

	res, err := cc.Complete(context.Background(), prompt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Content != `["x"]` || !res.Cached || res.TotalTokens != 0 {
		t.Errorf("unexpected cached result: %+v", res)
	}
	if inner.calls != 0 {
		t.Errorf("inner called %d times on hit", inner.calls)
	}
}

func TestComplete_InnerError(t *testing.T) {
	innerErr := errors.New("provider down")
	inner := &mockCompleter{err: innerErr}
	cc, ms := newTestCachedCompleter(t, inner)
	ms.setFn = func(context.Context, string, []byte, time.Duration) error {
		t.Error("failed completions must not be cached")
		return nil
	}

	_, err := cc.Complete(context.Background(), prompt)
	if !errors.Is(err, innerErr) {
		t.Fatalf("expected wrapped inner error, got %v", err)
	}
}

func TestComplete_StoreFailOpen(t *testing.T) {
	inner := &mockCompleter{result: domain.Completion{Content: "[]", TotalTokens: 5}}
	cc, ms := newTestCachedCompleter(t, inner)
	ms.getFn = func(context.Context, string) ([]byte, error) {
		return nil, &db.Error{Op: db.OpGet, Err: errors.New("connection refused")}
	}
	ms.setFn = func(context.Context, string, []byte, time.Duration) error {
		return &db.Error{Op: db.OpSet, Err: errors.New("connection refused")}
	}

	res, err := cc.Complete(context.Background(), prompt)
	if err != nil {
		t.Fatalf("store errors must not fail the call: %v", err)
	}
	if res.Content != "[]" || inner.calls != 1 {
		t.Errorf("unexpected result %+v, calls=%d", res, inner.calls)
	}
}

func TestComplete_CorruptEntryIsMiss(t *testing.T) {
	inner := &mockCompleter{result: domain.Completion{Content: "fresh"}}
	cc, ms := newTestCachedCompleter(t, inner)
	ms.getFn = func(context.Context, string) ([]byte, error) { return []byte("not json"), nil }

	res, err := cc.Complete(context.Background(), prompt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Content != "fresh" {
		t.Errorf("Content = %q, want fresh", res.Content)
	}
}

func TestComplete_Metrics(t *testing.T) {
	total := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_ai_cache_total"}, []string{"result"})
	inner := &mockCompleter{result: domain.Completion{Content: "x"}}
	ms := &mockKVStore{}
	cc := New(inner, ms, "m", time.Minute, total, zap.NewNop())

	if _, err := cc.Complete(context.Background(), prompt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := testutil.ToFloat64(total.WithLabelValues("miss")); got != 1 {
		t.Errorf("miss counter = %v, want 1", got)
	}
}

func TestCacheKey_DependsOnModel(t *testing.T) {
	a := New(&mockCompleter{}, &mockKVStore{}, "gpt-4o-mini", time.Hour, nil, nil)
	b := New(&mockCompleter{}, &mockKVStore{}, "gemini-2.5-flash", time.Hour, nil, nil)
	if a.cacheKey(prompt) == b.cacheKey(prompt) {
		t.Error("different models must not share cache entries")
	}
}
