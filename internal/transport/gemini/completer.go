// Package gemini implements domain.Completer on the Gemini generateContent API.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/kailas-cloud/grantdex/internal/domain"
	"github.com/kailas-cloud/grantdex/internal/metrics"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Config holds the Gemini provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// Completer requests JSON responses from Gemini.
type Completer struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewCompleter creates a Gemini completion provider.
func NewCompleter(ctx context.Context, cfg *Config) (*Completer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required: %w", domain.ErrAINotConfigured)
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Completer{client: client, model: model, logger: cfg.Logger}, nil
}

// Model returns the configured model name.
func (c *Completer) Model() string { return c.model }

// Complete implements domain.Completer.
func (c *Completer) Complete(ctx context.Context, p domain.Prompt) (domain.Completion, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: p.User}},
		Role:  "user",
	}}

	temperature := p.Temperature
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      &temperature,
	}
	if p.System != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: p.System}}}
	}
	if p.MaxTokens > 0 {
		config.MaxOutputTokens = int32(p.MaxTokens) //nolint:gosec // bounded by stage config
	}

	start := time.Now()

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)

	duration := time.Since(start)

	if err != nil {
		metrics.AIRequestsTotal.WithLabelValues("gemini", c.model, "error").Inc()
		metrics.AIErrorsTotal.WithLabelValues("gemini", c.model, "api_error").Inc()
		return domain.Completion{}, fmt.Errorf("gemini API call failed: %v: %w", err, domain.ErrAIProviderError)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		metrics.AIRequestsTotal.WithLabelValues("gemini", c.model, "error").Inc()
		metrics.AIErrorsTotal.WithLabelValues("gemini", c.model, "empty_response").Inc()
		return domain.Completion{}, fmt.Errorf("empty gemini response: %w", domain.ErrAIProviderError)
	}

	metrics.AIRequestsTotal.WithLabelValues("gemini", c.model, "success").Inc()
	metrics.AIRequestDuration.WithLabelValues("gemini", c.model).Observe(duration.Seconds())

	var out domain.Completion
	out.Content = text
	if u := resp.UsageMetadata; u != nil {
		out.PromptTokens = int(u.PromptTokenCount)
		out.TotalTokens = int(u.TotalTokenCount)
		metrics.AITokensTotal.WithLabelValues("gemini", c.model, "prompt").Add(float64(u.PromptTokenCount))
		metrics.AITokensTotal.WithLabelValues("gemini", c.model, "total").Add(float64(u.TotalTokenCount))
	}

	c.logger.Debug("Gemini completion",
		zap.String("model", c.model),
		zap.Duration("duration", duration),
		zap.Int("total_tokens", out.TotalTokens),
	)
	return out, nil
}

// HealthCheck verifies the configured model is reachable.
func (c *Completer) HealthCheck(ctx context.Context) error {
	if _, err := c.client.Models.Get(ctx, c.model, nil); err != nil {
		return fmt.Errorf("get model %s: %w", c.model, err)
	}
	return nil
}
