package metrics

import "github.com/prometheus/client_golang/prometheus"

// AI completion Prometheus metrics.
var (
	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "grantdex",
			Name:      "ai_requests_total",
			Help:      "Total number of AI completion requests",
		},
		[]string{"provider", "model", "status"},
	)

	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "grantdex",
			Name:      "ai_request_duration_seconds",
			Help:      "AI completion request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "model"},
	)

	AITokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "grantdex",
			Name:      "ai_tokens_total",
			Help:      "Total AI tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	AIErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "grantdex",
			Name:      "ai_errors_total",
			Help:      "Total AI completion errors",
		},
		[]string{"provider", "model", "error_type"},
	)

	AIBudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "grantdex",
			Name:      "ai_budget_tokens_remaining",
			Help:      "Remaining AI token budget",
		},
		[]string{"provider", "period"},
	)

	AICacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "grantdex",
			Name:      "ai_cache_total",
			Help:      "AI completion cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	// AIStageOutcomes counts sector/match stage results: ok, degraded.
	AIStageOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "grantdex",
			Name:      "ai_stage_outcomes_total",
			Help:      "AI stage outcomes by stage and result",
		},
		[]string{"stage", "result"},
	)
)

var aiMetricsRegistered bool

// RegisterAIMetrics registers Prometheus AI metrics. Must be called once from main.
func RegisterAIMetrics() {
	if aiMetricsRegistered {
		return
	}
	prometheus.MustRegister(AIRequestsTotal)
	prometheus.MustRegister(AIRequestDuration)
	prometheus.MustRegister(AITokensTotal)
	prometheus.MustRegister(AIErrorsTotal)
	prometheus.MustRegister(AIBudgetTokensRemaining)
	prometheus.MustRegister(AICacheTotal)
	prometheus.MustRegister(AIStageOutcomes)
	aiMetricsRegistered = true
}
