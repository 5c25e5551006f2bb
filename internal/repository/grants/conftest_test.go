package grants

import (
	"context"
	"testing"

	"github.com/kailas-cloud/grantdex/internal/db"
	"github.com/kailas-cloud/grantdex/internal/domain/grant"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	scanFn         func(ctx context.Context, pattern string) ([]string, error)
	jsonGetFn      func(ctx context.Context, key, path string) ([]byte, error)
	jsonGetMultiFn func(ctx context.Context, keys []string, path string) ([][]byte, error)
	jsonSetMultiFn func(ctx context.Context, items []db.JSONSetItem) error
	deleted        []string
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func (m *mockStore) JSONGet(ctx context.Context, key, path string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, path)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) JSONGetMulti(ctx context.Context, keys []string, path string) ([][]byte, error) {
	if m.jsonGetMultiFn != nil {
		return m.jsonGetMultiFn(ctx, keys, path)
	}
	return make([][]byte, len(keys)), nil
}

func (m *mockStore) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	if m.jsonSetMultiFn != nil {
		return m.jsonSetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) Del(_ context.Context, keys ...string) (int64, error) {
	m.deleted = append(m.deleted, keys...)
	return int64(len(keys)), nil
}

// staticLoader returns fixed grants or an error.
type staticLoader struct {
	grants []grant.Grant
	err    error
}

func (l *staticLoader) Load(context.Context) ([]grant.Grant, error) {
	return l.grants, l.err
}

func testGrant(t *testing.T, id, title string) grant.Grant {
	t.Helper()
	g, err := grant.New(grant.Params{ID: id, Title: title})
	if err != nil {
		t.Fatalf("grant.New: %v", err)
	}
	return g
}
