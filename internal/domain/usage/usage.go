package usage

// Period is the aggregation granularity.
type Period string

// Aggregation period constants.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// IsValid checks if the period is supported.
func (p Period) IsValid() bool { return p == PeriodDay || p == PeriodMonth }

// Metrics holds AI completion usage for a time period.
type Metrics struct {
	requests int
	tokens   int
}

// NewMetrics creates a Metrics snapshot.
func NewMetrics(requests, tokens int) Metrics {
	return Metrics{requests: requests, tokens: tokens}
}

// Requests returns the number of completion calls that reached a provider.
func (m Metrics) Requests() int { return m.requests }

// Tokens returns the total tokens consumed.
func (m Metrics) Tokens() int { return m.tokens }

// Budget tracks AI token budget state.
type Budget struct {
	tokensLimit     int
	tokensRemaining int
	isExhausted     bool
	resetsAt        int64 // unix millis, converted to ISO 8601 at transport layer
}

// NewBudget creates a Budget snapshot. A zero limit means unlimited.
func NewBudget(limit, remaining int, isExhausted bool, resetsAt int64) Budget {
	return Budget{
		tokensLimit:     limit,
		tokensRemaining: remaining,
		isExhausted:     isExhausted,
		resetsAt:        resetsAt,
	}
}

// TokensLimit returns the token cap.
func (b Budget) TokensLimit() int { return b.tokensLimit }

// TokensRemaining returns tokens left.
func (b Budget) TokensRemaining() int { return b.tokensRemaining }

// IsExhausted reports whether the budget is spent.
func (b Budget) IsExhausted() bool { return b.isExhausted }

// ResetsAt returns the reset timestamp (unix millis).
func (b Budget) ResetsAt() int64 { return b.resetsAt }

// Report is an AI usage report for a time period.
type Report struct {
	period      Period
	periodStart int64
	periodEnd   int64
	provider    string
	metrics     Metrics
	budget      Budget
}

// NewReport creates a usage report.
func NewReport(period Period, start, end int64, provider string, m Metrics, b Budget) Report {
	return Report{
		period:      period,
		periodStart: start,
		periodEnd:   end,
		provider:    provider,
		metrics:     m,
		budget:      b,
	}
}

// Period returns the aggregation granularity.
func (r *Report) Period() Period { return r.period }

// PeriodStart returns the period start timestamp (unix millis).
func (r *Report) PeriodStart() int64 { return r.periodStart }

// PeriodEnd returns the period end timestamp (unix millis).
func (r *Report) PeriodEnd() int64 { return r.periodEnd }

// Provider returns the configured AI provider name.
func (r *Report) Provider() string { return r.provider }

// Metrics returns the usage metrics.
func (r *Report) Metrics() Metrics { return r.metrics }

// Budget returns the budget status.
func (r *Report) Budget() Budget { return r.budget }
