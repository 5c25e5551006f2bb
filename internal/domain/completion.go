package domain

import (
	"context"
	"fmt"
	"strings"
)

// Completer is the shared chat completion contract between layers.
type Completer interface {
	Complete(ctx context.Context, p Prompt) (Completion, error)
}

// HealthChecker verifies AI provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Prompt is a single JSON-mode completion request.
type Prompt struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

// CacheKey returns the text that identifies a prompt for caching.
func (p Prompt) CacheKey() string {
	return fmt.Sprintf("%s\x00%s\x00%.2f\x00%d", p.System, p.User, p.Temperature, p.MaxTokens)
}

// Completion carries the model reply and token usage through the decorator chain.
type Completion struct {
	Content      string
	PromptTokens int
	TotalTokens  int
	Cached       bool
}

// JSON returns the content with surrounding whitespace and Markdown code fences removed.
func (c Completion) JSON() []byte {
	s := strings.TrimSpace(c.Content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return []byte(s)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, p Prompt) (Completion, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, p Prompt) (Completion, error) {
	return f(ctx, p)
}

// UsageRecordingCompleter reports token usage of each completion to the request collector.
type UsageRecordingCompleter struct {
	inner Completer
}

// NewUsageRecordingCompleter wraps inner so every call lands in AIUsage from context.
func NewUsageRecordingCompleter(inner Completer) *UsageRecordingCompleter {
	return &UsageRecordingCompleter{inner: inner}
}

// Complete delegates to the inner completer and records usage.
func (c *UsageRecordingCompleter) Complete(ctx context.Context, p Prompt) (Completion, error) {
	res, err := c.inner.Complete(ctx, p)
	if err != nil {
		return Completion{}, fmt.Errorf("usage recording complete: %w", err)
	}
	UsageFromContext(ctx).AddTokens(res.TotalTokens)
	return res, nil
}
