package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/grantdex/internal/config"
	"github.com/kailas-cloud/grantdex/internal/db"
	"github.com/kailas-cloud/grantdex/internal/domain"
	"github.com/kailas-cloud/grantdex/internal/metrics"
	"github.com/kailas-cloud/grantdex/internal/repository/aicache"
	budgetrepo "github.com/kailas-cloud/grantdex/internal/repository/budget"
	"github.com/kailas-cloud/grantdex/internal/transport/gemini"
	"github.com/kailas-cloud/grantdex/internal/transport/openai"
	"github.com/kailas-cloud/grantdex/internal/usecase/completion"
	healthuc "github.com/kailas-cloud/grantdex/internal/usecase/health"
)

// aiStack is the assembled completion chain. All fields are nil when AI is disabled.
type aiStack struct {
	completer domain.Completer
	budget    *completion.BudgetTracker
	health    healthuc.AIChecker
}

// provider is what the composition root needs from a completion provider.
type provider interface {
	domain.Completer
	domain.HealthChecker
	Model() string
}

// buildAI assembles the decorator chain: provider -> Cached -> Instrumented -> UsageRecording.
func buildAI(ctx context.Context, cfg config.AIConfig, store db.Store, logger *zap.Logger) (aiStack, error) {
	if !cfg.Enabled() {
		logger.Info("AI provider not configured, using keyword sector matching and neutral rankings")
		return aiStack{}, nil
	}

	var base provider
	switch cfg.Provider {
	case "gemini":
		g, err := gemini.NewCompleter(ctx, &gemini.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Logger:  logger,
		})
		if err != nil {
			return aiStack{}, fmt.Errorf("gemini provider: %w", err)
		}
		base = g
	default:
		base = openai.NewCompleter(&openai.Config{
			APIKey:   cfg.APIKey,
			BaseURL:  cfg.BaseURL,
			Model:    cfg.Model,
			User:     cfg.User,
			Provider: cfg.Provider,
			Logger:   logger,
		})
	}
	model := base.Model()

	// Single BudgetTracker shared by the completer and the usage service.
	var budget *completion.BudgetTracker
	if b := cfg.Budget; b.DailyTokenLimit > 0 || b.MonthlyTokenLimit > 0 {
		action := completion.BudgetActionWarn
		if b.Action == "reject" {
			action = completion.BudgetActionReject
		}
		budget = completion.NewBudgetTracker(cfg.Provider, b.DailyTokenLimit, b.MonthlyTokenLimit, action, logger)
		if store != nil {
			budget.WithStore(ctx, budgetrepo.New(store, 0, 0))
		}
	}

	// Pass nil interface (not typed nil pointer!) if budget is not configured.
	// Go gotcha: (*BudgetTracker)(nil) wrapped in BudgetChecker != nil.
	var budgetChecker completion.BudgetChecker
	if budget != nil {
		budgetChecker = budget
	}

	var completer domain.Completer = base
	if store != nil {
		completer = aicache.New(base, store, model, time.Duration(cfg.CacheTTLSec)*time.Second,
			metrics.AICacheTotal, logger)
	}
	completer = completion.NewInstrumentedCompleter(completer, cfg.Provider, model, budgetChecker, logger)

	logger.Info("AI provider created",
		zap.String("provider", cfg.Provider),
		zap.String("model", model),
		zap.Bool("cached", store != nil),
	)

	return aiStack{
		// Outermost: every call reports tokens to the per-request collector.
		completer: domain.NewUsageRecordingCompleter(completer),
		budget:    budget,
		health:    &aiHealthChecker{provider: base},
	}, nil
}
