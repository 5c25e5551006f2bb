package grantdex

import (
	"context"
	"sync"
	"time"

	domusage "github.com/kailas-cloud/grantdex/internal/domain/usage"
)

// UsagePeriod is the window a usage report covers.
type UsagePeriod string

// Report windows, both in UTC.
const (
	PeriodDay   UsagePeriod = "day"
	PeriodMonth UsagePeriod = "month"
)

// UsageReport counts the AI calls this Client made in the current window.
// The SDK enforces no budget; Limit stays zero.
type UsageReport struct {
	Period      UsagePeriod
	PeriodStart time.Time
	PeriodEnd   time.Time
	// Requests counts completions, cached replies included.
	Requests int
	Tokens   int
	Limit    int
}

// Usage reports AI consumption for the current day or month. Unknown periods report the day.
func (c *Client) Usage(ctx context.Context, period UsagePeriod) UsageReport {
	start := time.Now()
	defer func() { c.obs.observe("usage", start, nil) }()

	r := c.usageSvc.GetReport(ctx, domusage.Period(period))
	return UsageReport{
		Period:      UsagePeriod(r.Period()),
		PeriodStart: time.UnixMilli(r.PeriodStart()).UTC(),
		PeriodEnd:   time.UnixMilli(r.PeriodEnd()).UTC(),
		Requests:    r.Metrics().Requests(),
		Tokens:      r.Metrics().Tokens(),
		Limit:       r.Budget().TokensLimit(),
	}
}

// usageUseCase is the internal interface for usage reports.
type usageUseCase interface {
	GetReport(ctx context.Context, period domusage.Period) domusage.Report
}

// window is a token and request count that resets when its period rolls over.
type window struct {
	start    time.Time
	tokens   int64
	requests int64
}

func (w *window) roll(start time.Time) {
	if !w.start.Equal(start) {
		*w = window{start: start}
	}
}

// tally keeps per-process AI usage for the usage report.
// It satisfies the usage service's reader with zero limits.
type tally struct {
	mu       sync.Mutex
	provider string
	now      func() time.Time
	day      window
	month    window
}

func newTally(provider string) *tally {
	return &tally{provider: provider, now: time.Now}
}

// add records the calls and tokens of one SDK operation.
func (t *tally) add(calls, tokens int) {
	if calls == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollLocked()
	for _, w := range []*window{&t.day, &t.month} {
		w.requests += int64(calls)
		w.tokens += int64(tokens)
	}
}

func (t *tally) rollLocked() {
	now := t.now().UTC()
	t.day.roll(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC))
	t.month.roll(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC))
}

func (t *tally) read(f func() int64) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollLocked()
	return f()
}

func (t *tally) Provider() string        { return t.provider }
func (t *tally) Now() time.Time          { return t.now() }
func (t *tally) DailyLimit() int64       { return 0 }
func (t *tally) MonthlyLimit() int64     { return 0 }
func (t *tally) RemainingDaily() int64   { return 0 }
func (t *tally) RemainingMonthly() int64 { return 0 }

func (t *tally) DailyUsed() int64 {
	return t.read(func() int64 { return t.day.tokens })
}

func (t *tally) MonthlyUsed() int64 {
	return t.read(func() int64 { return t.month.tokens })
}

func (t *tally) DailyRequests() int64 {
	return t.read(func() int64 { return t.day.requests })
}

func (t *tally) MonthlyRequests() int64 {
	return t.read(func() int64 { return t.month.requests })
}
