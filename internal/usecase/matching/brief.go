package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/grantdex/internal/domain"
	"github.com/kailas-cloud/grantdex/internal/domain/grant"
	"github.com/kailas-cloud/grantdex/internal/domain/search/result"
	"github.com/kailas-cloud/grantdex/internal/metrics"
)

// SummarizeThreshold is the brief length above which the model is asked to summarize
// the project before matching.
const SummarizeThreshold = 3000

// Tier is a project-brief relevance bucket.
type Tier string

// Tiers, best first.
const (
	TierHigh   Tier = "high_match"
	TierMedium Tier = "medium_match"
	TierLow    Tier = "low_match"
)

// TierOf buckets a score with the same thresholds the brief prompt states.
func TierOf(score float64) Tier {
	switch {
	case score >= 0.66:
		return TierHigh
	case score >= 0.33:
		return TierMedium
	default:
		return TierLow
	}
}

type briefItem struct {
	GrantID string   `json:"grant_id"`
	Name    string   `json:"name"`
	Score   *float64 `json:"score"`
}

type briefReply struct {
	High   *[]briefItem `json:"high_match"`
	Medium *[]briefItem `json:"medium_match"`
	Low    *[]briefItem `json:"low_match"`
}

// MatchBrief buckets grants against a project description. The ranking lists high,
// medium then low matches; grants the model left out follow in input order with score 0.
// Any failure yields the neutral ranking.
func (s *Service) MatchBrief(ctx context.Context, description string, attachments []string, grants []grant.Grant) result.Ranking {
	if len(grants) == 0 {
		return result.Ranking{Matches: []result.Match{}, Explanation: "No grants to rank"}
	}
	ranking, err := s.matchBrief(ctx, description, attachments, grants)
	if err != nil {
		metrics.AIStageOutcomes.WithLabelValues("brief", "degraded").Inc()
		s.logger.Warn("Project brief matching failed, using neutral ranking",
			zap.Int("grants", len(grants)), zap.Error(err))
		return result.Neutral(grant.IDs(grants), NeutralExplanation)
	}
	metrics.AIStageOutcomes.WithLabelValues("brief", "ok").Inc()
	return ranking
}

func (s *Service) matchBrief(ctx context.Context, description string, attachments []string, grants []grant.Grant) (result.Ranking, error) {
	if s.completer == nil {
		return result.Ranking{}, domain.ErrAINotConfigured
	}
	prompt, err := buildBriefPrompt(description, attachments, grants)
	if err != nil {
		return result.Ranking{}, err
	}
	cfg := domain.BriefStageConfig()
	res, err := s.completer.Complete(ctx, domain.Prompt{
		System:      cfg.System,
		User:        prompt,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	if err != nil {
		return result.Ranking{}, fmt.Errorf("%w: brief completion: %w", domain.ErrTransport, err)
	}

	var reply briefReply
	if err := decodeStrict(res.JSON(), &reply); err != nil {
		return result.Ranking{}, err
	}
	if reply.High == nil || reply.Medium == nil || reply.Low == nil {
		return result.Ranking{}, fmt.Errorf("%w: brief reply missing a match bucket", domain.ErrSchema)
	}

	known := grant.Index(grants)
	seen := make(map[string]struct{}, len(grants))
	matches := make([]result.Match, 0, len(grants))
	for _, bucket := range [][]briefItem{*reply.High, *reply.Medium, *reply.Low} {
		for i, it := range bucket {
			if it.GrantID == "" {
				return result.Ranking{}, fmt.Errorf("%w: bucket item %d missing grant_id", domain.ErrSchema, i)
			}
			if _, ok := known[it.GrantID]; !ok {
				continue
			}
			if _, dup := seen[it.GrantID]; dup {
				continue
			}
			seen[it.GrantID] = struct{}{}
			var score float64
			if it.Score != nil {
				score = *it.Score
				if score > 1 {
					score /= 100
				}
			}
			matches = append(matches, result.NewMatch(it.GrantID, score, nil))
		}
	}
	matched := len(matches)
	for _, g := range grants {
		if _, ok := seen[g.ID()]; !ok {
			seen[g.ID()] = struct{}{}
			matches = append(matches, result.NewMatch(g.ID(), 0, nil))
		}
	}

	return result.Ranking{
		Matches:     matches,
		Explanation: fmt.Sprintf("Matched %d of %d grants against the project brief", matched, len(grants)),
	}, nil
}

func buildBriefPrompt(description string, attachments []string, grants []grant.Grant) (string, error) {
	list, err := json.Marshal(projectBrief(grants))
	if err != nil {
		return "", fmt.Errorf("marshal grants: %w", err)
	}

	var b strings.Builder
	b.WriteString(`You receive a structured list of funding opportunities (GRANT_LIST) and a project
brief with optional attachments (PROJECT_DATA). Rank each grant as High, Medium or Low
relevance to the project, using fuzzy matching (synonyms, typos, semantic similarity) and
mandatory eligibility filters.

Scoring rules:
1. Any grant failing hard filters (organisation type, geography) is Low.
2. Combine keyword overlap, semantic similarity, domain tags and budget/timeline fit.
3. High >= 0.66 similarity, Medium 0.33-0.65, Low < 0.33 or any filter fail.
`)
	if len([]rune(description)) > SummarizeThreshold {
		b.WriteString("4. PROJECT_DATA is long: first summarize it into its key needs, sector, " +
			"organisation type and budget, then match against the summary.\n")
	}
	b.WriteString(`
Return only valid JSON with exactly this schema and no other keys:
{"high_match": [{"grant_id": "...", "name": "...", "score": 0.84}], "medium_match": [], "low_match": []}
Sort each bucket by score descending.

GRANT_LIST:
`)
	b.Write(list)
	b.WriteString("\n\nPROJECT_DATA:\n")
	b.WriteString(description)
	if len(attachments) > 0 {
		b.WriteString("\nAttachments: " + strings.Join(attachments, ", "))
	}
	return b.String(), nil
}
