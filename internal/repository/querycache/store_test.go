package querycache

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/grantdex/internal/db"
)

type fakeKV struct {
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (f *fakeKV) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	f.ttls[key] = ttl
	return nil
}

func TestStore_RoundTrip(t *testing.T) {
	kv := newFakeKV()
	clock := newClock()
	s := NewStore(kv, 5*time.Minute, clock.now, zap.NewNop())
	ctx := context.Background()

	s.Set(ctx, "k", Entry{IDs: []string{"x", "y"}, Scores: []float64{0.9, 0.4}, Total: 2})
	if kv.ttls["k"] != 5*time.Minute {
		t.Errorf("ttl = %v, want 5m", kv.ttls["k"])
	}

	e, ok := s.Get(ctx, "k")
	if !ok {
		t.Fatal("expected hit")
	}
	if len(e.IDs) != 2 || e.Scores[0] != 0.9 || e.Total != 2 {
		t.Errorf("entry = %+v", e)
	}
	if hits, lookups := s.Stats(); hits != 1 || lookups != 1 {
		t.Errorf("Stats() = %d, %d", hits, lookups)
	}
}

func TestStore_StaleEntryIsMiss(t *testing.T) {
	kv := newFakeKV()
	clock := newClock()
	s := NewStore(kv, 5*time.Minute, clock.now, zap.NewNop())
	ctx := context.Background()

	s.Set(ctx, "k", Entry{IDs: []string{"x"}})
	clock.advance(6 * time.Minute)

	if _, ok := s.Get(ctx, "k"); ok {
		t.Error("expected miss for entry older than TTL")
	}
}

func TestStore_FailOpen(t *testing.T) {
	kv := newFakeKV()
	kv.getErr = errors.New("connection refused")
	kv.setErr = errors.New("connection refused")
	s := NewStore(kv, 0, nil, zap.NewNop())
	ctx := context.Background()

	s.Set(ctx, "k", Entry{IDs: []string{"x"}})
	if _, ok := s.Get(ctx, "k"); ok {
		t.Error("expected miss on store error")
	}
}

func TestStore_CorruptEntryIsMiss(t *testing.T) {
	kv := newFakeKV()
	kv.data["k"] = []byte("{not json")
	s := NewStore(kv, 0, nil, zap.NewNop())

	if _, ok := s.Get(context.Background(), "k"); ok {
		t.Error("expected miss for corrupt entry")
	}
}
