package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/grantdex/internal/domain"
	"github.com/kailas-cloud/grantdex/internal/domain/grant"
	"github.com/kailas-cloud/grantdex/internal/domain/search/filter"
	"github.com/kailas-cloud/grantdex/internal/domain/search/mode"
	"github.com/kailas-cloud/grantdex/internal/domain/search/page"
	"github.com/kailas-cloud/grantdex/internal/domain/search/relevance"
	"github.com/kailas-cloud/grantdex/internal/domain/search/request"
	"github.com/kailas-cloud/grantdex/internal/domain/search/sorting"
	"github.com/kailas-cloud/grantdex/internal/metrics"
	"github.com/kailas-cloud/grantdex/internal/repository/querycache"
	"github.com/kailas-cloud/grantdex/internal/transport/remote"
)

// DefaultMinRelevance drops grants scoring at or below it when a query is given.
const DefaultMinRelevance = 0.1

// Config wires the orchestrator's collaborators.
type Config struct {
	Corpus     Corpus
	Cache      Cache
	Remote     Remote // nil: remote mode always falls back to the local path
	Classifier Classifier
	Matcher    Matcher
	// MinRelevance defaults to DefaultMinRelevance.
	MinRelevance float64
	Now          func() time.Time
	Logger       *zap.Logger
}

// Outcome is a completed search: one page of grants plus how it was produced.
type Outcome struct {
	Grants []grant.Grant
	// Scores holds relevance or match scores by grant id for ranked result sets.
	Scores      map[string]float64
	Page        page.Info
	Mode        mode.Mode
	Sectors     []string
	Explanation string
	State       State
	CacheHit    bool
	Latency     time.Duration
}

// Degraded reports whether a fallback produced the outcome.
func (o Outcome) Degraded() bool { return o.State == StateDegraded }

// Service orchestrates cache, local scoring, remote search and the AI stages.
type Service struct {
	corpus       Corpus
	cache        Cache
	remote       Remote
	classifier   Classifier
	matcher      Matcher
	scorer       *relevance.Scorer
	minRelevance float64
	now          func() time.Time
	logger       *zap.Logger
	flight       singleflight.Group
}

// New creates a search orchestrator.
func New(cfg Config) *Service {
	s := &Service{
		corpus:       cfg.Corpus,
		cache:        cfg.Cache,
		remote:       cfg.Remote,
		classifier:   cfg.Classifier,
		matcher:      cfg.Matcher,
		scorer:       relevance.NewScorer(),
		minRelevance: cfg.MinRelevance,
		now:          cfg.Now,
		logger:       cfg.Logger,
	}
	if s.minRelevance <= 0 {
		s.minRelevance = DefaultMinRelevance
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Search runs req and records search metrics.
func (s *Service) Search(ctx context.Context, req request.Request) (Outcome, error) {
	out, err := s.search(ctx, req)
	if err != nil {
		return Outcome{}, err
	}
	s.observe(out)
	return out, nil
}

// resultSet is the cacheable, page-independent product of a search miss.
type resultSet struct {
	grants      []grant.Grant
	scores      map[string]float64
	sectors     []string
	explanation string
	degraded    bool
	// server is set when pagination already happened upstream.
	server *page.Info
}

func (s *Service) search(ctx context.Context, req request.Request) (Outcome, error) {
	start := s.now()

	if req.Mode() == mode.Remote && !req.HasQuery() {
		return Outcome{}, fmt.Errorf("%w: no search performed", domain.ErrEmptyQuery)
	}

	key := cacheKey(req)
	if e, ok := s.cache.Get(ctx, key); ok {
		rs := s.rehydrate(e)
		return s.outcome(req, rs, true, start), nil
	}

	v, err, _ := s.flight.Do(key, func() (any, error) {
		rs, err := s.compute(ctx, req)
		if err != nil {
			return nil, err
		}
		if !rs.degraded {
			s.cache.Set(ctx, key, entryOf(rs))
		}
		return rs, nil
	})
	if err != nil {
		return Outcome{}, err
	}
	return s.outcome(req, v.(resultSet), false, start), nil
}

func (s *Service) compute(ctx context.Context, req request.Request) (resultSet, error) {
	switch req.Mode() {
	case mode.Remote:
		return s.searchRemote(ctx, req)
	case mode.AI:
		if !req.HasQuery() {
			return s.searchLocal(req)
		}
		return s.searchAI(ctx, req)
	default:
		return s.searchLocal(req)
	}
}

// searchLocal: tokens -> rank (with a query) -> filter -> sort.
func (s *Service) searchLocal(req request.Request) (resultSet, error) {
	grants := s.corpus.All()
	if len(grants) == 0 {
		return resultSet{}, domain.ErrEmptyCorpus
	}

	var scores map[string]float64
	if req.Ranked() {
		scored := s.scorer.Rank(grants, req.Tokens(), s.minRelevance)
		grants = relevance.Grants(scored)
		scores = relevance.ScoreMap(scored)
	}
	grants = filter.Apply(grants, req.Filters(), s.now())
	grants = sorting.Sort(grants, req.SortKey(), scoreFunc(scores))

	return resultSet{grants: grants, scores: scores}, nil
}

func (s *Service) searchRemote(ctx context.Context, req request.Request) (resultSet, error) {
	var err error
	if s.remote == nil {
		err = fmt.Errorf("%w: remote search not configured", domain.ErrTransport)
	} else {
		var res remote.Result
		if res, err = s.remote.Search(ctx, req); err == nil {
			info := res.Page
			return resultSet{grants: res.Grants, server: &info}, nil
		}
		if !remote.IsRecoverable(err) {
			return resultSet{}, fmt.Errorf("remote search: %w", err)
		}
	}

	s.logger.Warn("Remote search failed, falling back to local search",
		zap.String("query", req.Raw()), zap.Error(err))
	rs, lerr := s.searchLocal(req)
	if lerr != nil {
		return resultSet{}, lerr
	}
	rs.degraded = true
	rs.explanation = "Remote search unavailable, showing local results"
	return rs, nil
}

// searchAI: classify (fail-open) -> filter -> match.
func (s *Service) searchAI(ctx context.Context, req request.Request) (resultSet, error) {
	corpus := s.corpus.All()
	if len(corpus) == 0 {
		return resultSet{}, domain.ErrEmptyCorpus
	}

	sectors := s.classifier.Classify(ctx, req.Raw())
	candidates := filter.Apply(corpus, req.Filters(), s.now())
	ranking := s.matcher.Rank(ctx, req.Raw(), sectors.Value, candidates)

	idx := grant.Index(candidates)
	grants := make([]grant.Grant, 0, len(ranking.Matches))
	for _, id := range ranking.IDs() {
		if i, ok := idx[id]; ok {
			grants = append(grants, candidates[i])
		}
	}
	scores := ranking.Scores()
	grants = sorting.Sort(grants, req.SortKey(), scoreFunc(scores))

	return resultSet{
		grants:      grants,
		scores:      scores,
		sectors:     sectors.Value,
		explanation: ranking.Explanation,
		degraded:    sectors.Degraded() || ranking.Degraded,
	}, nil
}

func (s *Service) outcome(req request.Request, rs resultSet, hit bool, start time.Time) Outcome {
	out := Outcome{
		Scores:      rs.scores,
		Mode:        req.Mode(),
		Sectors:     rs.sectors,
		Explanation: rs.explanation,
		State:       StateSucceeded,
		CacheHit:    hit,
	}
	if rs.degraded {
		out.State = StateDegraded
	}
	if rs.server != nil {
		out.Grants = rs.grants
		out.Page = *rs.server
	} else {
		out.Page = page.Local(len(rs.grants), req.Page(), req.Limit())
		out.Grants = page.Slice(rs.grants, out.Page)
	}
	out.Latency = s.now().Sub(start)
	return out
}

// observe records metrics for an applied outcome.
func (s *Service) observe(out Outcome) {
	cacheLabel := "miss"
	if out.CacheHit {
		cacheLabel = "hit"
	}
	m := string(out.Mode)
	metrics.SearchLatency.WithLabelValues(m, cacheLabel).Observe(out.Latency.Seconds())
	metrics.SearchResultsCount.WithLabelValues(m).Observe(float64(out.Page.Total))
	metrics.SearchCacheTotal.WithLabelValues(cacheLabel).Inc()
	if hits, lookups := s.cache.Stats(); lookups > 0 {
		metrics.SearchCacheHitRate.Set(float64(hits) / float64(lookups))
	}
	if out.Degraded() {
		metrics.SearchDegradedTotal.WithLabelValues(m).Inc()
	}
}

func cacheKey(req request.Request) string {
	parts := querycache.KeyParts{
		Text:    req.Normalized(),
		Mode:    string(req.Mode()),
		Filters: req.Filters().Params(),
		Sort:    string(req.SortKey()),
	}
	if req.Mode() == mode.Remote {
		parts.Page = req.Page()
		parts.Limit = req.Limit()
	}
	return querycache.Key(parts)
}

func entryOf(rs resultSet) querycache.Entry {
	e := querycache.Entry{
		IDs:         grant.IDs(rs.grants),
		Total:       len(rs.grants),
		Explanation: rs.explanation,
		Sectors:     rs.sectors,
	}
	if rs.scores != nil {
		e.Scores = make([]float64, len(rs.grants))
		for i, g := range rs.grants {
			e.Scores[i] = rs.scores[g.ID()]
		}
	}
	if rs.server != nil {
		info := *rs.server
		e.Page = &info
		e.Total = info.Total
		e.Records = grant.Records(rs.grants)
	}
	return e
}

func (s *Service) rehydrate(e querycache.Entry) resultSet {
	rs := resultSet{explanation: e.Explanation, sectors: e.Sectors}
	if e.Scores != nil {
		rs.scores = make(map[string]float64, len(e.IDs))
		for i, id := range e.IDs {
			if i < len(e.Scores) {
				rs.scores[id] = e.Scores[i]
			}
		}
	}

	if e.Page != nil {
		grants := make([]grant.Grant, 0, len(e.Records))
		for _, r := range e.Records {
			if g, err := r.ToGrant(); err == nil {
				grants = append(grants, g)
			}
		}
		info := page.FromServer(e.Page.Page, e.Page.Limit, e.Page.Total, e.Page.TotalPages, e.Page.HasMore, len(grants))
		rs.grants = grants
		rs.server = &info
		return rs
	}

	rs.grants = s.corpus.Lookup(e.IDs)
	return rs
}

func scoreFunc(scores map[string]float64) sorting.ScoreFunc {
	if scores == nil {
		return nil
	}
	return func(g grant.Grant) float64 { return scores[g.ID()] }
}
