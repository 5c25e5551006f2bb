package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/grantdex/internal/domain"
	"github.com/kailas-cloud/grantdex/internal/metrics"
)

// Completer is a JSON-mode chat completion provider using the OpenAI-compatible API.
type Completer struct {
	client   *openai.Client
	model    string
	user     string
	provider string
	logger   *zap.Logger
}

// Config holds the completion provider settings.
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	User     string
	Provider string
	Logger   *zap.Logger
}

// NewCompleter creates an OpenAI-compatible completion provider.
func NewCompleter(cfg *Config) *Completer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = domain.DefaultModel
	}

	return &Completer{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    model,
		user:     cfg.User,
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// Model returns the configured model name.
func (c *Completer) Model() string { return c.model }

// Complete implements domain.Completer with transport-level metrics.
func (c *Completer) Complete(ctx context.Context, p domain.Prompt) (domain.Completion, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.System},
			{Role: openai.ChatMessageRoleUser, Content: p.User},
		},
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		User: c.user,
	}

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.AIRequestsTotal.WithLabelValues(c.provider, c.model, "error").Inc()
		metrics.AIErrorsTotal.WithLabelValues(c.provider, c.model, "api_error").Inc()
		return domain.Completion{}, parseAPIError(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		metrics.AIRequestsTotal.WithLabelValues(c.provider, c.model, "error").Inc()
		metrics.AIErrorsTotal.WithLabelValues(c.provider, c.model, "empty_response").Inc()
		return domain.Completion{}, fmt.Errorf("empty completion response: %w", domain.ErrAIProviderError)
	}

	metrics.AIRequestsTotal.WithLabelValues(c.provider, c.model, "success").Inc()
	metrics.AIRequestDuration.WithLabelValues(c.provider, c.model).Observe(duration.Seconds())

	totalTokens := resp.Usage.TotalTokens
	promptTokens := resp.Usage.PromptTokens
	if totalTokens > 0 {
		metrics.AITokensTotal.WithLabelValues(c.provider, c.model, "prompt").Add(float64(promptTokens))
		metrics.AITokensTotal.WithLabelValues(c.provider, c.model, "total").Add(float64(totalTokens))
	}

	return domain.Completion{
		Content:      resp.Choices[0].Message.Content,
		PromptTokens: promptTokens,
		TotalTokens:  totalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Completer) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrAIProviderError for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrAIProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("completion API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("completion API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("completion API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("completion request: %w: %w", err, wrap)
	}
	return fmt.Errorf("completion request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
