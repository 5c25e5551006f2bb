package search

import (
	"context"

	"github.com/kailas-cloud/grantdex/internal/domain/grant"
	"github.com/kailas-cloud/grantdex/internal/domain/search/request"
	"github.com/kailas-cloud/grantdex/internal/domain/search/result"
	"github.com/kailas-cloud/grantdex/internal/repository/querycache"
	"github.com/kailas-cloud/grantdex/internal/transport/remote"
)

// Corpus is the loaded grant snapshot.
type Corpus interface {
	All() []grant.Grant
	Get(id string) (grant.Grant, error)
	// Lookup returns grants for ids in order, skipping unknown ids.
	Lookup(ids []string) []grant.Grant
}

// Cache stores computed result sets.
type Cache interface {
	Get(ctx context.Context, key string) (querycache.Entry, bool)
	Set(ctx context.Context, key string, e querycache.Entry)
	Stats() (hits, lookups uint64)
}

// Remote runs filtered-grants-search server-side.
type Remote interface {
	Search(ctx context.Context, req request.Request) (remote.Result, error)
}

// Classifier maps a query to sector labels.
type Classifier interface {
	Classify(ctx context.Context, query string) result.Outcome[[]string]
}

// Matcher ranks grants against a query.
type Matcher interface {
	Rank(ctx context.Context, query string, sectors []string, grants []grant.Grant) result.Ranking
}
