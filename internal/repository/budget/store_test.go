package budget

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/kailas-cloud/grantdex/internal/db"
)

type fakeStore struct {
	values  map[string][]byte
	ttls    map[string]time.Duration
	incrErr error
	getErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.values[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (f *fakeStore) IncrBy(_ context.Context, key string, val int64) error {
	if f.incrErr != nil {
		return f.incrErr
	}
	cur, _ := strconv.ParseInt(string(f.values[key]), 10, 64)
	f.values[key] = []byte(strconv.FormatInt(cur+val, 10))
	return nil
}

func (f *fakeStore) Expire(_ context.Context, key string, ttl time.Duration, nx bool) error {
	if _, set := f.ttls[key]; set && nx {
		return nil
	}
	f.ttls[key] = ttl
	return nil
}

func TestStore_IncrByAndGet(t *testing.T) {
	fs := newFakeStore()
	s := New(fs, 48*time.Hour, 62*24*time.Hour)
	ctx := context.Background()

	daily := "grantdex:budget:openai:daily:2025-03-01"
	monthly := "grantdex:budget:openai:monthly:2025-03"

	for _, key := range []string{daily, monthly} {
		if err := s.IncrBy(ctx, key, 120); err != nil {
			t.Fatalf("IncrBy(%s): %v", key, err)
		}
		if err := s.IncrBy(ctx, key, 30); err != nil {
			t.Fatalf("IncrBy(%s): %v", key, err)
		}
		got, err := s.Get(ctx, key)
		if err != nil {
			t.Fatalf("Get(%s): %v", key, err)
		}
		if got != 150 {
			t.Errorf("Get(%s) = %d, want 150", key, got)
		}
	}

	if fs.ttls[daily] != 48*time.Hour {
		t.Errorf("daily ttl = %v", fs.ttls[daily])
	}
	if fs.ttls[monthly] != 62*24*time.Hour {
		t.Errorf("monthly ttl = %v", fs.ttls[monthly])
	}
}

func TestStore_GetMissingIsZero(t *testing.T) {
	s := New(newFakeStore(), time.Hour, time.Hour)
	got, err := s.Get(context.Background(), "grantdex:budget:openai:daily:2025-01-01")
	if err != nil || got != 0 {
		t.Errorf("Get(missing) = %d, %v; want 0, nil", got, err)
	}
}

func TestStore_Errors(t *testing.T) {
	fs := newFakeStore()
	fs.incrErr = errors.New("down")
	fs.getErr = errors.New("down")
	s := New(fs, time.Hour, time.Hour)

	if err := s.IncrBy(context.Background(), "k:daily:x", 1); !errors.Is(err, fs.incrErr) {
		t.Errorf("IncrBy error = %v", err)
	}
	if _, err := s.Get(context.Background(), "k:daily:x"); !errors.Is(err, fs.getErr) {
		t.Errorf("Get error = %v", err)
	}
}

func TestStore_GetCorrupt(t *testing.T) {
	fs := newFakeStore()
	fs.values["k"] = []byte("NaN")
	s := New(fs, time.Hour, time.Hour)
	if _, err := s.Get(context.Background(), "k"); err == nil {
		t.Error("expected parse error")
	}
}

func TestStore_DefaultRetention(t *testing.T) {
	fs := newFakeStore()
	s := New(fs, 0, 0)
	ctx := context.Background()

	keys := map[string]time.Duration{
		"grantdex:budget:gemini:daily:2025-03-01:requests": DefaultDailyTTL,
		"grantdex:budget:gemini:monthly:2025-03":           DefaultMonthlyTTL,
		"grantdex:budget:gemini:other":                     DefaultMonthlyTTL,
	}
	for key, want := range keys {
		if err := s.IncrBy(ctx, key, 1); err != nil {
			t.Fatalf("IncrBy(%s): %v", key, err)
		}
		if fs.ttls[key] != want {
			t.Errorf("ttl(%s) = %v, want %v", key, fs.ttls[key], want)
		}
	}

	// A later write in the same period keeps the first expiry.
	fs.ttls["grantdex:budget:gemini:monthly:2025-03"] = time.Minute
	_ = s.IncrBy(ctx, "grantdex:budget:gemini:monthly:2025-03", 1)
	if fs.ttls["grantdex:budget:gemini:monthly:2025-03"] != time.Minute {
		t.Error("NX expiry was overwritten")
	}
}
