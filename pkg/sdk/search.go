package grantdex

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/grantdex/internal/domain"
	"github.com/kailas-cloud/grantdex/internal/domain/grant"
	"github.com/kailas-cloud/grantdex/internal/domain/search/filter"
	"github.com/kailas-cloud/grantdex/internal/domain/search/mode"
	"github.com/kailas-cloud/grantdex/internal/domain/search/request"
	"github.com/kailas-cloud/grantdex/internal/domain/search/sortkey"
	matchinguc "github.com/kailas-cloud/grantdex/internal/usecase/matching"
)

// Search runs one query and returns the requested page.
func (c *Client) Search(ctx context.Context, q Query) (res Page, err error) {
	start := time.Now()
	defer func() {
		c.obs.record("search", start, outcome{err: err, degraded: res.Degraded, tokens: res.AITokens})
	}()

	set, err := filter.New(q.Filters.params())
	if err != nil {
		return Page{}, fmt.Errorf("search: %w", err)
	}
	req, err := request.New(q.Text, mode.Mode(q.Mode), set, sortkey.Key(q.Sort), q.Page, q.Limit)
	if err != nil {
		return Page{}, fmt.Errorf("search: %w", err)
	}

	ctx, usage := domain.NewContextWithUsage(ctx)
	defer c.track(usage)
	out, err := c.searchSvc.Search(ctx, req)
	if err != nil {
		return Page{}, fmt.Errorf("search: %w", err)
	}

	hits := make([]Hit, len(out.Grants))
	for i, g := range out.Grants {
		hits[i] = Hit{Grant: grantFromDomain(g)}
		if s, ok := out.Scores[g.ID()]; ok {
			hits[i].Score, hits[i].Scored = s, true
		}
	}
	return Page{
		Hits:        hits,
		Page:        out.Page.Page,
		Limit:       out.Page.Limit,
		Total:       out.Page.Total,
		TotalPages:  out.Page.TotalPages,
		HasMore:     out.Page.HasMore,
		Mode:        Mode(out.Mode),
		Sectors:     out.Sectors,
		Explanation: out.Explanation,
		Degraded:    out.Degraded(),
		CacheHit:    out.CacheHit,
		AITokens:    usage.TotalTokens(),
	}, nil
}

// Suggestions completes a typed prefix from grant titles, organizations and tags.
func (c *Client) Suggestions(prefix string, limit int) []string {
	start := time.Now()
	defer func() { c.obs.observe("suggestions", start, nil) }()

	if strings.TrimSpace(prefix) == "" {
		return []string{}
	}
	return c.searchSvc.Suggestions(prefix, limit)
}

// Organizations lists the distinct grant-giving organizations.
func (c *Client) Organizations() []string {
	return c.searchSvc.Organizations()
}

// Grant returns one grant by id.
func (c *Client) Grant(id string) (Grant, error) {
	g, err := c.searchSvc.Grant(id)
	if err != nil {
		return Grant{}, fmt.Errorf("get grant %q: %w", id, err)
	}
	return grantFromDomain(g), nil
}

// MatchSectors classifies a query into industry sectors.
func (c *Client) MatchSectors(ctx context.Context, query string) (res SectorMatch, err error) {
	start := time.Now()
	defer func() {
		c.obs.record("match_sectors", start, outcome{err: err, degraded: res.Degraded, tokens: res.AITokens})
	}()

	if strings.TrimSpace(query) == "" {
		return SectorMatch{}, fmt.Errorf("match sectors: %w", domain.ErrEmptyQuery)
	}

	ctx, usage := domain.NewContextWithUsage(ctx)
	defer c.track(usage)
	m := c.sectorSvc.Match(ctx, query)
	return SectorMatch{
		Sectors:     m.Sectors,
		Explanation: m.Explanation,
		Source:      m.Source,
		Degraded:    m.Degraded,
		AITokens:    usage.TotalTokens(),
	}, nil
}

// MatchGrants ranks the corpus against a query. Sectors narrow the candidates;
// when none are given they are classified from the query first.
func (c *Client) MatchGrants(ctx context.Context, query string, sectors ...string) (res Ranking, err error) {
	start := time.Now()
	defer func() {
		c.obs.record("match_grants", start, outcome{err: err, degraded: res.Degraded, tokens: res.AITokens})
	}()

	if strings.TrimSpace(query) == "" {
		return Ranking{}, fmt.Errorf("match grants: %w", domain.ErrEmptyQuery)
	}
	all := c.corpus.All()
	if len(all) == 0 {
		return Ranking{}, fmt.Errorf("match grants: %w", domain.ErrEmptyCorpus)
	}

	ctx, usage := domain.NewContextWithUsage(ctx)
	defer c.track(usage)
	degraded := false
	if len(sectors) == 0 {
		m := c.sectorSvc.Match(ctx, query)
		sectors, degraded = m.Sectors, m.Degraded
	}
	ranking := c.matchSvc.Rank(ctx, query, sectors, all)

	out := Ranking{
		Grants:      make([]RankedGrant, len(ranking.Matches)),
		Sectors:     sectors,
		Explanation: ranking.Explanation,
		Degraded:    degraded || ranking.Degraded,
		AITokens:    usage.TotalTokens(),
	}
	for i, m := range ranking.Matches {
		out.Grants[i] = RankedGrant{GrantID: m.GrantID(), Score: m.Score(), Reasons: m.Reasons()}
	}
	return out, nil
}

// MatchBrief buckets every grant against a project description.
// Attachments are extra document texts appended to the brief.
func (c *Client) MatchBrief(ctx context.Context, description string, attachments ...string) (res BriefResult, err error) {
	start := time.Now()
	defer func() {
		c.obs.record("match_brief", start, outcome{err: err, degraded: res.Degraded, tokens: res.AITokens})
	}()

	if strings.TrimSpace(description) == "" {
		return BriefResult{}, fmt.Errorf("match brief: %w", domain.ErrEmptyQuery)
	}
	all := c.corpus.All()
	if len(all) == 0 {
		return BriefResult{}, fmt.Errorf("match brief: %w", domain.ErrEmptyCorpus)
	}

	ctx, usage := domain.NewContextWithUsage(ctx)
	defer c.track(usage)
	ranking := c.matchSvc.MatchBrief(ctx, description, attachments, all)

	idx := grant.Index(all)
	out := BriefResult{
		High:        []BriefMatch{},
		Medium:      []BriefMatch{},
		Low:         []BriefMatch{},
		Explanation: ranking.Explanation,
		Degraded:    ranking.Degraded,
		AITokens:    usage.TotalTokens(),
	}
	for _, m := range ranking.Matches {
		bm := BriefMatch{GrantID: m.GrantID(), Score: m.Score()}
		if i, ok := idx[m.GrantID()]; ok {
			bm.Name = all[i].Title()
		}
		switch matchinguc.TierOf(m.Score()) {
		case matchinguc.TierHigh:
			out.High = append(out.High, bm)
		case matchinguc.TierMedium:
			out.Medium = append(out.Medium, bm)
		default:
			out.Low = append(out.Low, bm)
		}
	}
	return out, nil
}
