package grantdex

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation outcomes recorded in grantdex_sdk_operations_total.
const (
	statusOK       = "ok"
	statusDegraded = "degraded"
	statusError    = "error"
)

// outcome is what an SDK call reports to the observer.
type outcome struct {
	err      error
	degraded bool
	tokens   int
}

func (o outcome) status() string {
	switch {
	case o.err != nil:
		return statusError
	case o.degraded:
		return statusDegraded
	default:
		return statusOK
	}
}

// sdkMetrics holds the SDK collectors.
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	aiTokens   *prometheus.CounterVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	opts := func(name, help string) prometheus.Opts {
		return prometheus.Opts{Namespace: "grantdex", Subsystem: "sdk", Name: name, Help: help}
	}
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts(
			opts("operations_total", "SDK operations by name and outcome (ok, degraded, error).")),
			[]string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "grantdex",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.025, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),
		aiTokens: prometheus.NewCounterVec(prometheus.CounterOpts(
			opts("ai_tokens_total", "AI tokens consumed by SDK operations.")),
			[]string{"operation"}),
	}
	for _, c := range []**prometheus.CounterVec{&m.operations, &m.aiTokens} {
		if err := registerOrReuse(reg, c); err != nil {
			return nil, err
		}
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers c, or swaps in the collector a previous client registered.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("grantdex: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("grantdex: metric already registered with incompatible type: %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// observer logs and measures SDK operations. A nil observer is a no-op.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

// observe records a plain operation.
func (o *observer) observe(op string, start time.Time, err error) {
	o.record(op, start, outcome{err: err})
}

func (o *observer) record(op string, start time.Time, out outcome) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	status := out.status()

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
		if out.tokens > 0 {
			o.metrics.aiTokens.WithLabelValues(op).Add(float64(out.tokens))
		}
	}

	if o.logger == nil {
		return
	}
	attrs := []any{"op", op, "duration", dur}
	if out.tokens > 0 {
		attrs = append(attrs, "ai_tokens", out.tokens)
	}
	switch status {
	case statusError:
		o.logger.Warn("operation failed", append(attrs, "error", out.err)...)
	case statusDegraded:
		o.logger.Info("operation degraded", attrs...)
	default:
		o.logger.Debug("operation completed", attrs...)
	}
}
