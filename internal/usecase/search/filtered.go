package search

import (
	"context"

	"github.com/kailas-cloud/grantdex/internal/domain"
	"github.com/kailas-cloud/grantdex/internal/domain/grant"
	"github.com/kailas-cloud/grantdex/internal/domain/search/filter"
	"github.com/kailas-cloud/grantdex/internal/domain/search/page"
	"github.com/kailas-cloud/grantdex/internal/domain/search/relevance"
	"github.com/kailas-cloud/grantdex/internal/domain/search/request"
	"github.com/kailas-cloud/grantdex/internal/domain/search/sorting"
	"github.com/kailas-cloud/grantdex/internal/domain/search/text"
)

// Filtered serves filtered-grants-search over the local corpus. Expired grants
// (deadline before today) are hidden; grants without a deadline are kept.
func (s *Service) Filtered(_ context.Context, req request.Request) ([]grant.Grant, page.Info, error) {
	all := s.corpus.All()
	if len(all) == 0 {
		return nil, page.Info{}, domain.ErrEmptyCorpus
	}

	today := grant.Today(s.now())
	grants := make([]grant.Grant, 0, len(all))
	for _, g := range all {
		if d, ok := g.Deadline().Time(); ok && d.Before(today) {
			continue
		}
		grants = append(grants, g)
	}

	var scores map[string]float64
	if req.Ranked() {
		scored := s.scorer.Rank(grants, req.Tokens(), s.minRelevance)
		grants = relevance.Grants(scored)
		scores = relevance.ScoreMap(scored)
	}
	grants = filter.Apply(grants, req.Filters(), s.now())
	grants = sorting.Sort(grants, req.SortKey(), scoreFunc(scores))

	info := page.Local(len(grants), req.Page(), req.Limit())
	return page.Slice(grants, info), info, nil
}

// Suggestions completes prefix from title, organization and tag words.
func (s *Service) Suggestions(prefix string, limit int) []string {
	all := s.corpus.All()
	groups := make([][]string, 0, len(all))
	for _, g := range all {
		words := text.Words(g.Title())
		words = append(words, text.Words(g.Organization())...)
		for _, t := range g.Tags() {
			words = append(words, text.Words(t)...)
		}
		groups = append(groups, words)
	}
	return text.Suggest(groups, prefix, limit)
}

// Grant returns one grant by id.
func (s *Service) Grant(id string) (grant.Grant, error) {
	return s.corpus.Get(id)
}

// Organizations lists the distinct organizations of the corpus.
func (s *Service) Organizations() []string {
	return filter.Organizations(s.corpus.All())
}
