package grantdex

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/grantdex/internal/domain"
)

// Completer is a JSON-mode chat model.
// Required for AI sector classification and grant matching; local search works without it.
type Completer interface {
	Complete(ctx context.Context, p Prompt) (Completion, error)
}

// Prompt is a single completion request. The reply must be a JSON document.
type Prompt struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

// Completion carries the model reply and token counts.
type Completion struct {
	Content      string
	PromptTokens int
	TotalTokens  int
}

// completerAdapter wraps public Completer to satisfy internal domain.Completer.
type completerAdapter struct {
	inner Completer
}

func (a *completerAdapter) Complete(ctx context.Context, p domain.Prompt) (domain.Completion, error) {
	r, err := a.inner.Complete(ctx, Prompt{
		System:      p.System,
		User:        p.User,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	})
	if err != nil {
		return domain.Completion{}, fmt.Errorf("complete: %w", err)
	}
	return domain.Completion{
		Content:      r.Content,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}
