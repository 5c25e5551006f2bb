package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/grantdex/internal/db"
)

// JSONSetMulti writes documents in a single DoMulti round-trip and
// reports the first failing key.
func (s *Store) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	if len(items) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, len(items))
	for i, item := range items {
		cmds[i] = s.client.B().JsonSet().Key(item.Key).Path(item.Path).Value(rueidis.BinaryString(item.Data)).Build()
	}

	for i, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return db.WithKey(db.OpJSONSet, items[i].Key, err)
		}
	}
	return nil
}

// JSONGet returns the document at key and path or db.ErrKeyNotFound.
func (s *Store) JSONGet(ctx context.Context, key, path string) ([]byte, error) {
	doc, err := jsonReply(s.client.Do(ctx, s.jsonGet(key, path)))
	if err != nil {
		return nil, &db.Error{Op: db.OpJSONGet, Err: err}
	}
	if doc == nil {
		return nil, db.ErrKeyNotFound
	}
	return doc, nil
}

// JSONGetMulti fetches documents for keys in a single DoMulti round-trip.
func (s *Store) JSONGetMulti(ctx context.Context, keys []string, path string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	cmds := make([]rueidis.Completed, len(keys))
	for i, key := range keys {
		cmds[i] = s.jsonGet(key, path)
	}

	out := make([][]byte, len(keys))
	for i, res := range s.client.DoMulti(ctx, cmds...) {
		doc, err := jsonReply(res)
		if err != nil {
			return nil, db.WithKey(db.OpJSONGet, keys[i], err)
		}
		out[i] = doc
	}
	return out, nil
}

func (s *Store) jsonGet(key, path string) rueidis.Completed {
	return s.client.B().JsonGet().Key(key).Path(path).Build()
}

// jsonReply maps nil and empty replies to a nil document.
func jsonReply(res rueidis.RedisResult) ([]byte, error) {
	raw, err := res.ToString()
	if rueidis.IsRedisNil(err) || (err == nil && raw == "") {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(raw), nil
}
