package sector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/grantdex/internal/domain"
	domsector "github.com/kailas-cloud/grantdex/internal/domain/sector"
	"github.com/kailas-cloud/grantdex/internal/domain/search/result"
	"github.com/kailas-cloud/grantdex/internal/metrics"
)

// Classification sources.
const (
	SourceAI       = "ai"
	SourceKeywords = "keywords"
)

// Match is a classification with a human-readable explanation.
type Match struct {
	Sectors     []string
	Explanation string
	Source      string
	Degraded    bool
}

// Service maps free-text queries to sector labels.
type Service struct {
	completer Completer
	logger    *zap.Logger
}

// New creates a sector classifier. A nil completer selects the keyword fallback.
func New(completer Completer, logger *zap.Logger) *Service {
	return &Service{completer: completer, logger: logger}
}

// AIEnabled reports whether a model is configured.
func (s *Service) AIEnabled() bool { return s.completer != nil }

// Classify returns the sector labels for query. The outcome value is always safe to use:
// on model or schema failure it is the empty set (no narrowing) with Err set.
func (s *Service) Classify(ctx context.Context, query string) result.Outcome[[]string] {
	query = strings.TrimSpace(query)
	if query == "" {
		return result.Fallback([]string{}, domain.ErrEmptyQuery)
	}
	if s.completer == nil {
		metrics.AIStageOutcomes.WithLabelValues("sector", "keywords").Inc()
		return result.Ok(domsector.Keywords(query))
	}

	labels, err := s.classifyAI(ctx, query)
	if err != nil {
		metrics.AIStageOutcomes.WithLabelValues("sector", "degraded").Inc()
		s.logger.Warn("Sector classification failed, continuing without sector narrowing",
			zap.String("query", query), zap.Error(err))
		return result.Fallback([]string{}, err)
	}

	metrics.AIStageOutcomes.WithLabelValues("sector", "ok").Inc()
	if len(labels) == 0 {
		return result.Ok([]string{domsector.CatchAll})
	}
	return result.Ok(labels)
}

// Match classifies query and explains the outcome.
func (s *Service) Match(ctx context.Context, query string) Match {
	out := s.Classify(ctx, query)
	m := Match{Sectors: out.Value, Degraded: out.Degraded(), Source: SourceAI}
	switch {
	case s.completer == nil:
		m.Source = SourceKeywords
		m.Explanation = fmt.Sprintf("Found %d relevant sectors using keyword matching", len(out.Value))
	case out.Degraded():
		m.Explanation = "Sector matching unavailable, searching all sectors"
	default:
		m.Explanation = fmt.Sprintf("AI identified %d relevant sectors for targeted search", len(out.Value))
	}
	return m
}

func (s *Service) classifyAI(ctx context.Context, query string) ([]string, error) {
	cfg := domain.SectorStageConfig()
	res, err := s.completer.Complete(ctx, domain.Prompt{
		System:      cfg.System,
		User:        buildPrompt(query),
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: sector completion: %w", domain.ErrTransport, err)
	}

	labels, err := decodeLabels(res.JSON())
	if err != nil {
		return nil, err
	}
	return domsector.Filter(labels), nil
}

// decodeLabels accepts {"relevantSectors": [...]} or a bare JSON array of labels.
func decodeLabels(raw []byte) ([]string, error) {
	if bytes.HasPrefix(raw, []byte("[")) {
		var labels []string
		if err := json.Unmarshal(raw, &labels); err != nil {
			return nil, fmt.Errorf("%w: sector array: %w", domain.ErrSchema, err)
		}
		return labels, nil
	}

	var env struct {
		RelevantSectors *[]string `json:"relevantSectors"`
		Explanation     string    `json:"explanation"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: sector object: %w", domain.ErrSchema, err)
	}
	if env.RelevantSectors == nil {
		return nil, fmt.Errorf("%w: sector reply missing relevantSectors", domain.ErrSchema)
	}
	return *env.RelevantSectors, nil
}

func buildPrompt(query string) string {
	var b strings.Builder
	b.WriteString("You are an expert at categorizing business needs and research queries into relevant industry sectors.\n\n")
	b.WriteString("USER QUERY: " + strconv.Quote(query) + "\n\n")
	b.WriteString("AVAILABLE SECTORS:\n")
	for i, l := range domsector.Labels() {
		b.WriteString(strconv.Itoa(i+1) + ". " + l + "\n")
	}
	b.WriteString(`
Instructions:
- Analyze the query and identify ALL potentially relevant sectors
- It's better to include too many sectors than too few
- Consider direct matches, related fields, and cross-sector applications
- Use exact sector names from the list above
- If uncertain, err on the side of inclusion

Respond with a JSON object:
{"relevantSectors": ["Digitalisering, automatisering & AI"], "explanation": "short reason"}`)
	return b.String()
}
