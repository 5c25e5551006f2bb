package grantdex

import (
	"context"
	"testing"

	"github.com/kailas-cloud/grantdex/internal/domain"
	"github.com/kailas-cloud/grantdex/internal/domain/grant"
	"github.com/kailas-cloud/grantdex/internal/domain/search/request"
	"github.com/kailas-cloud/grantdex/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/grantdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/grantdex/internal/usecase/search"
	sectoruc "github.com/kailas-cloud/grantdex/internal/usecase/sector"
	usageuc "github.com/kailas-cloud/grantdex/internal/usecase/usage"
)

// --- corpus mock ---

type mockCorpus struct {
	grants    []grant.Grant
	reloadErr error
	reloads   int
}

func (m *mockCorpus) All() []grant.Grant { return m.grants }
func (m *mockCorpus) Len() int           { return len(m.grants) }

func (m *mockCorpus) Reload(context.Context) error {
	m.reloads++
	return m.reloadErr
}

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, req request.Request) (searchuc.Outcome, error)
	suggest  []string
	orgs     []string
	grantFn  func(id string) (grant.Grant, error)
}

func (m *mockSearchUC) Search(ctx context.Context, req request.Request) (searchuc.Outcome, error) {
	return m.searchFn(ctx, req)
}

func (m *mockSearchUC) Suggestions(string, int) []string { return m.suggest }
func (m *mockSearchUC) Organizations() []string          { return m.orgs }

func (m *mockSearchUC) Grant(id string) (grant.Grant, error) { return m.grantFn(id) }

// --- sectorUseCase mock ---

type mockSectorUC struct {
	match  sectoruc.Match
	tokens int // recorded as one completion when set
	calls  int
}

func (m *mockSectorUC) Match(ctx context.Context, _ string) sectoruc.Match {
	m.calls++
	if m.tokens > 0 {
		domain.UsageFromContext(ctx).AddTokens(m.tokens)
	}
	return m.match
}

// --- matchUseCase mock ---

type mockMatchUC struct {
	rankFn  func(query string, sectors []string, grants []grant.Grant) result.Ranking
	briefFn func(description string, attachments []string, grants []grant.Grant) result.Ranking
}

func (m *mockMatchUC) Rank(_ context.Context, query string, sectors []string, grants []grant.Grant) result.Ranking {
	return m.rankFn(query, sectors, grants)
}

func (m *mockMatchUC) MatchBrief(
	_ context.Context, description string, attachments []string, grants []grant.Grant,
) result.Ranking {
	return m.briefFn(description, attachments, grants)
}

// --- helpers ---

func mustGrant(t *testing.T, p grant.Params) grant.Grant {
	t.Helper()
	g, err := grant.New(p)
	if err != nil {
		t.Fatalf("grant.New(%s): %v", p.ID, err)
	}
	return g
}

// testClient builds a Client around fakes. Unset use cases stay nil.
func testClient(t *testing.T, c *mockCorpus, s *mockSearchUC, sec *mockSectorUC, m *mockMatchUC) *Client {
	t.Helper()
	if c == nil {
		c = &mockCorpus{}
	}
	obs, err := newObserver(nil, nil)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	tl := newTally("")
	client := &Client{
		corpus:    c,
		healthSvc: healthuc.New(nil, nil, c),
		usageSvc:  usageuc.New(tl),
		tally:     tl,
		obs:       obs,
	}
	if s != nil {
		client.searchSvc = s
	}
	if sec != nil {
		client.sectorSvc = sec
	}
	if m != nil {
		client.matchSvc = m
	}
	return client
}
