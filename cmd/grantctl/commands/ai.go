package commands

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/kailas-cloud/grantdex/cmd/grantctl/ui"
	"github.com/kailas-cloud/grantdex/internal/domain"
	"github.com/kailas-cloud/grantdex/internal/transport/gemini"
	"github.com/kailas-cloud/grantdex/internal/transport/openai"
	grantdex "github.com/kailas-cloud/grantdex/pkg/sdk"
)

// providerName resolves the AI provider from --ai-provider or AI_PROVIDER, default openai.
func providerName() string {
	if p := orEnv(aiProvider, "AI_PROVIDER"); p != "" {
		return p
	}
	return "openai"
}

// buildCompleter returns nil when no API key is available.
func buildCompleter(ctx context.Context) (grantdex.Completer, error) {
	provider := providerName()
	if provider == "none" {
		return nil, nil
	}

	key := aiKey
	if key == "" && provider == "gemini" {
		key = os.Getenv("GEMINI_API_KEY")
	}
	key = orEnv(key, "OPENAI_API_KEY")
	if key == "" {
		ui.Verbosef(os.Stderr, "no AI key, using keyword sectors and neutral rankings")
		return nil, nil
	}
	model := orEnv(aiModel, "AI_MODEL")

	switch provider {
	case "gemini":
		g, err := gemini.NewCompleter(ctx, &gemini.Config{APIKey: key, Model: model, Logger: zap.NewNop()})
		if err != nil {
			return nil, fmt.Errorf("gemini provider: %w", err)
		}
		return sdkCompleter{inner: g}, nil
	case "openai":
		return sdkCompleter{inner: openai.NewCompleter(&openai.Config{
			APIKey:   key,
			Model:    model,
			Provider: provider,
			Logger:   zap.NewNop(),
		})}, nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", provider)
	}
}

// sdkCompleter exposes a provider through the SDK's Completer interface.
type sdkCompleter struct {
	inner domain.Completer
}

func (c sdkCompleter) Complete(ctx context.Context, p grantdex.Prompt) (grantdex.Completion, error) {
	r, err := c.inner.Complete(ctx, domain.Prompt{
		System:      p.System,
		User:        p.User,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	})
	if err != nil {
		return grantdex.Completion{}, err
	}
	return grantdex.Completion{
		Content:      r.Content,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}
