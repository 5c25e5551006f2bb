package grantdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/grantdex/internal/db"
	dbRedis "github.com/kailas-cloud/grantdex/internal/db/redis"
	"github.com/kailas-cloud/grantdex/internal/domain"
	"github.com/kailas-cloud/grantdex/internal/domain/grant"
	"github.com/kailas-cloud/grantdex/internal/domain/search/request"
	"github.com/kailas-cloud/grantdex/internal/domain/search/result"
	"github.com/kailas-cloud/grantdex/internal/repository/grants"
	"github.com/kailas-cloud/grantdex/internal/repository/querycache"
	"github.com/kailas-cloud/grantdex/internal/transport/remote"
	healthuc "github.com/kailas-cloud/grantdex/internal/usecase/health"
	matchinguc "github.com/kailas-cloud/grantdex/internal/usecase/matching"
	searchuc "github.com/kailas-cloud/grantdex/internal/usecase/search"
	sectoruc "github.com/kailas-cloud/grantdex/internal/usecase/sector"
	usageuc "github.com/kailas-cloud/grantdex/internal/usecase/usage"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, swapped for fakes in tests.
type corpus interface {
	All() []grant.Grant
	Len() int
	Reload(ctx context.Context) error
}

type searchUseCase interface {
	Search(ctx context.Context, req request.Request) (searchuc.Outcome, error)
	Suggestions(prefix string, limit int) []string
	Organizations() []string
	Grant(id string) (grant.Grant, error)
}

type sectorUseCase interface {
	Match(ctx context.Context, query string) sectoruc.Match
}

type matchUseCase interface {
	Rank(ctx context.Context, query string, sectors []string, grants []grant.Grant) result.Ranking
	MatchBrief(ctx context.Context, description string, attachments []string, grants []grant.Grant) result.Ranking
}

// Client is the grantdex SDK entry point.
type Client struct {
	store     db.Store
	sqlSource *grants.SQLSource
	corpus    corpus
	searchSvc searchUseCase
	sectorSvc sectorUseCase
	matchSvc  matchUseCase
	healthSvc healthUseCase
	usageSvc  usageUseCase
	tally     *tally
	obs       *observer
}

// New creates a Client and loads the grant corpus.
// The provided context is used for connecting and the initial load.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	switch cfg.sources() {
	case 0:
		return nil, errors.New("grantdex: grant source required (use WithGrantsFile, WithGrants, WithRedis or WithSQL)")
	case 1:
	default:
		return nil, errors.New("grantdex: only one grant source may be configured")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	c := &Client{obs: obs}
	loader, err := c.openSource(ctx, cfg)
	if err != nil {
		c.Close()
		return nil, err
	}

	catalog := grants.NewCatalog(loader, zap.NewNop())
	if err := catalog.Reload(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("grantdex: %w", err)
	}

	c.wire(cfg, catalog)
	return c, nil
}

// openSource connects the configured grant source.
func (c *Client) openSource(ctx context.Context, cfg *clientConfig) (grants.Loader, error) {
	logger := zap.NewNop()
	switch {
	case cfg.hasGrants:
		return newStaticLoader(cfg.grants)
	case cfg.redisAddr != "":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    []string{cfg.redisAddr},
			Password: cfg.redisPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("grantdex: create redis store: %w", err)
		}
		c.store = s
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			return nil, fmt.Errorf("grantdex: database not ready: %w", err)
		}
		return grants.NewRedisSource(s, cfg.keyPrefix, logger), nil
	case cfg.sqlDSN != "":
		conn, err := grants.OpenSQL(cfg.sqlDriver, cfg.sqlDSN)
		if err != nil {
			return nil, fmt.Errorf("grantdex: %w", err)
		}
		c.sqlSource = grants.NewSQLSource(conn, logger)
		return c.sqlSource, nil
	default:
		return grants.NewFileSource(cfg.grantsFile, logger), nil
	}
}

func (c *Client) wire(cfg *clientConfig, catalog *grants.Catalog) {
	logger := zap.NewNop()

	// Completer: nil keeps keyword sectors and neutral rankings.
	var completer domain.Completer
	provider := ""
	if cfg.completer != nil {
		completer = domain.NewUsageRecordingCompleter(&completerAdapter{inner: cfg.completer})
		provider = cfg.provider
	}

	var remoteSearch searchuc.Remote
	if cfg.remoteURL != "" {
		remoteSearch = remote.NewClient(remote.Config{URL: cfg.remoteURL, APIKey: cfg.remoteAPIKey, Logger: logger})
	}

	sectorSvc := sectoruc.New(completer, logger)
	matchSvc := matchinguc.New(completer, logger)
	searchSvc := searchuc.New(searchuc.Config{
		Corpus:       catalog,
		Cache:        querycache.NewMemory(cfg.cacheTTL, nil),
		Remote:       remoteSearch,
		Classifier:   sectorSvc,
		Matcher:      matchSvc,
		MinRelevance: cfg.minRelevance,
		Logger:       logger,
	})

	var pinger healthuc.DBPinger
	switch {
	case c.store != nil:
		pinger = c.store
	case c.sqlSource != nil:
		pinger = c.sqlSource
	}

	c.corpus = catalog
	c.searchSvc = searchSvc
	c.sectorSvc = sectorSvc
	c.matchSvc = matchSvc
	c.healthSvc = healthuc.New(pinger, nil, catalog)
	c.tally = newTally(provider)
	c.usageSvc = usageuc.New(c.tally)
}

// track adds one operation's AI calls to the usage tally.
func (c *Client) track(u *domain.AIUsage) {
	if c.tally != nil {
		c.tally.add(u.Calls(), u.TotalTokens())
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
	if c.sqlSource != nil {
		_ = c.sqlSource.Close()
	}
}

// Reload re-reads the grant corpus. A failed reload keeps the previous corpus.
func (c *Client) Reload(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("reload", start, err) }()

	if err = c.corpus.Reload(ctx); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	return nil
}

// Len returns the number of loaded grants.
func (c *Client) Len() int { return c.corpus.Len() }

// staticLoader serves a fixed corpus.
type staticLoader []grant.Grant

func newStaticLoader(in []Grant) (staticLoader, error) {
	out := make(staticLoader, 0, len(in))
	for _, g := range in {
		dg, err := grant.New(g.params())
		if err != nil {
			return nil, fmt.Errorf("grantdex: grant %q: %w", g.ID, err)
		}
		out = append(out, dg)
	}
	return out, nil
}

func (l staticLoader) Load(context.Context) ([]grant.Grant, error) { return l, nil }
