package usage

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/grantdex/internal/domain/usage"
)

// Service handles usage reporting.
type Service struct {
	br BudgetReader
}

// New creates a Service. br can be nil when no AI provider is configured.
func New(br BudgetReader) *Service {
	return &Service{br: br}
}

// GetReport builds a usage report for the given period. Unknown periods report the day.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	now := time.Now().UTC()
	if s.br != nil {
		now = s.br.Now().UTC()
	}

	var start, end time.Time
	var limit, used, requests, remaining int64
	var provider string

	switch period {
	case domusage.PeriodMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, 0)
		if s.br != nil {
			limit = s.br.MonthlyLimit()
			used = s.br.MonthlyUsed()
			requests = s.br.MonthlyRequests()
			remaining = s.br.RemainingMonthly()
		}
	default:
		period = domusage.PeriodDay
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		end = start.Add(24 * time.Hour)
		if s.br != nil {
			limit = s.br.DailyLimit()
			used = s.br.DailyUsed()
			requests = s.br.DailyRequests()
			remaining = s.br.RemainingDaily()
		}
	}
	if s.br != nil {
		provider = s.br.Provider()
	}

	exhausted := limit > 0 && remaining <= 0
	b := domusage.NewBudget(int(limit), int(remaining), exhausted, end.UnixMilli())
	m := domusage.NewMetrics(int(requests), int(used))

	return domusage.NewReport(period, start.UnixMilli(), end.UnixMilli(), provider, m, b)
}
