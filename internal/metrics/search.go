package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline Prometheus metrics.
var (
	SearchLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "grantdex",
			Name:      "search_latency_seconds",
			Help:      "Search latency from dispatch to applied result",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"mode", "cache"},
	)

	SearchResultsCount = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "grantdex",
			Name:      "search_results_count",
			Help:      "Number of grants in a search result set",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"mode"},
	)

	SearchCacheHitRate = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "grantdex",
			Name:      "search_cache_hit_rate",
			Help:      "Query cache hits divided by lookups",
		},
	)

	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "grantdex",
			Name:      "search_cache_total",
			Help:      "Query cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	SearchStaleDiscarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "grantdex",
			Name:      "search_stale_discarded_total",
			Help:      "Search completions discarded because a newer request superseded them",
		},
	)

	SearchDegradedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "grantdex",
			Name:      "search_degraded_total",
			Help:      "Searches served from a fallback path",
		},
		[]string{"mode"},
	)

	SearchSessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "grantdex",
			Name:      "search_sessions_active",
			Help:      "Number of live search sessions",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchLatency)
	prometheus.MustRegister(SearchResultsCount)
	prometheus.MustRegister(SearchCacheHitRate)
	prometheus.MustRegister(SearchCacheTotal)
	prometheus.MustRegister(SearchStaleDiscarded)
	prometheus.MustRegister(SearchDegradedTotal)
	prometheus.MustRegister(SearchSessionsActive)
	searchMetricsRegistered = true
}
