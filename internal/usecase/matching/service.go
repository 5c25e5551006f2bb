package matching

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/grantdex/internal/domain"
	"github.com/kailas-cloud/grantdex/internal/domain/grant"
	"github.com/kailas-cloud/grantdex/internal/domain/search/filter"
	"github.com/kailas-cloud/grantdex/internal/domain/search/result"
	"github.com/kailas-cloud/grantdex/internal/metrics"
)

// NeutralExplanation is reported when the model ranking is unavailable.
const NeutralExplanation = "AI ranking unavailable, showing grants in their original order"

// Service ranks grants against a query or a project brief.
type Service struct {
	completer Completer
	logger    *zap.Logger
}

// New creates a grant matcher.
func New(completer Completer, logger *zap.Logger) *Service {
	return &Service{completer: completer, logger: logger}
}

// Narrow keeps grants tagged with at least one of sectors. An empty sector list or a
// narrowing that leaves nothing returns grants unchanged.
func Narrow(grants []grant.Grant, sectors []string) []grant.Grant {
	if len(sectors) == 0 {
		return grants
	}
	wanted := make(map[string]struct{}, len(sectors))
	for _, s := range sectors {
		wanted[strings.ToLower(filter.NormalizeLabel(s))] = struct{}{}
	}
	var out []grant.Grant
	for _, g := range grants {
		for _, s := range g.Sectors() {
			if _, ok := wanted[strings.ToLower(filter.NormalizeLabel(s))]; ok {
				out = append(out, g)
				break
			}
		}
	}
	if len(out) == 0 {
		return grants
	}
	return out
}

// Rank orders grants by model relevance to query. Any failure yields the neutral
// ranking over the candidate set.
func (s *Service) Rank(ctx context.Context, query string, sectors []string, grants []grant.Grant) result.Ranking {
	candidates := Narrow(grants, sectors)
	ids := grant.IDs(candidates)
	if len(candidates) == 0 {
		return result.Ranking{Matches: []result.Match{}, Explanation: "No grants to rank"}
	}

	ranking, err := s.rank(ctx, query, candidates)
	if err != nil {
		metrics.AIStageOutcomes.WithLabelValues("match", "degraded").Inc()
		s.logger.Warn("Grant matching failed, using neutral ranking",
			zap.Int("candidates", len(candidates)), zap.Error(err))
		return result.Neutral(ids, NeutralExplanation)
	}
	metrics.AIStageOutcomes.WithLabelValues("match", "ok").Inc()
	return ranking
}

type rankedItem struct {
	GrantID         string   `json:"grantId"`
	RelevanceScore  *float64 `json:"relevanceScore"`
	MatchingReasons []string `json:"matchingReasons"`
	Explanation     string   `json:"explanation"`
}

type rankReply struct {
	RankedGrants *[]rankedItem `json:"rankedGrants"`
	Explanation  string        `json:"explanation"`
}

func (s *Service) rank(ctx context.Context, query string, candidates []grant.Grant) (result.Ranking, error) {
	if s.completer == nil {
		return result.Ranking{}, domain.ErrAINotConfigured
	}
	prompt, err := buildRankPrompt(query, candidates)
	if err != nil {
		return result.Ranking{}, err
	}
	cfg := domain.MatchStageConfig()
	res, err := s.completer.Complete(ctx, domain.Prompt{
		System:      cfg.System,
		User:        prompt,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	if err != nil {
		return result.Ranking{}, fmt.Errorf("%w: match completion: %w", domain.ErrTransport, err)
	}

	var reply rankReply
	if err := decodeStrict(res.JSON(), &reply); err != nil {
		return result.Ranking{}, err
	}
	if reply.RankedGrants == nil {
		return result.Ranking{}, fmt.Errorf("%w: match reply missing rankedGrants", domain.ErrSchema)
	}
	items := *reply.RankedGrants

	scale := 1.0
	for i, it := range items {
		if it.GrantID == "" || it.RelevanceScore == nil {
			return result.Ranking{}, fmt.Errorf("%w: ranked grant %d missing grantId or relevanceScore", domain.ErrSchema, i)
		}
		if *it.RelevanceScore > 1 {
			scale = 100
		}
	}

	known := grant.Index(candidates)
	seen := make(map[string]struct{}, len(items))
	matches := make([]result.Match, 0, len(items))
	for _, it := range items {
		if _, ok := known[it.GrantID]; !ok {
			continue
		}
		if _, dup := seen[it.GrantID]; dup {
			continue
		}
		seen[it.GrantID] = struct{}{}
		reasons := it.MatchingReasons
		if len(reasons) == 0 && it.Explanation != "" {
			reasons = []string{it.Explanation}
		}
		matches = append(matches, result.NewMatch(it.GrantID, *it.RelevanceScore/scale, reasons))
	}
	slices.SortStableFunc(matches, func(a, b result.Match) int {
		switch {
		case a.Score() > b.Score():
			return -1
		case a.Score() < b.Score():
			return 1
		default:
			return 0
		}
	})

	explanation := reply.Explanation
	if explanation == "" {
		explanation = fmt.Sprintf("Found %d relevant grants using AI analysis", len(matches))
	}
	return result.Ranking{Matches: matches, Explanation: explanation}, nil
}

func decodeStrict(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: decode reply: %w", domain.ErrSchema, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after reply", domain.ErrSchema)
	}
	return nil
}

func buildRankPrompt(query string, candidates []grant.Grant) (string, error) {
	list, err := json.Marshal(project(candidates))
	if err != nil {
		return "", fmt.Errorf("marshal candidates: %w", err)
	}
	var b strings.Builder
	b.WriteString("Analyze the following grants and rank them by relevance to the user's query.\n\n")
	b.WriteString("USER QUERY: " + strconv.Quote(query) + "\n\n")
	b.WriteString("GRANTS TO ANALYZE (JSON):\n")
	b.Write(list)
	b.WriteString(`

Consider semantic similarity to the query, industry and sector alignment, eligibility
match and funding appropriateness. Only include grants that are relevant.

Respond with a JSON object and no other keys:
{"rankedGrants": [{"grantId": "grant-id-1", "relevanceScore": 85, "matchingReasons": ["Excellent match for AI research funding"]}], "explanation": "short summary"}
relevanceScore is a number from 0 to 100. Use grant ids exactly as given.`)
	return b.String(), nil
}
