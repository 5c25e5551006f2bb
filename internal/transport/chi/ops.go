package chi

import (
	"net/http"
	"time"

	"github.com/oapi-codegen/runtime"

	domusage "github.com/kailas-cloud/grantdex/internal/domain/usage"
	"github.com/kailas-cloud/grantdex/internal/version"
	healthuc "github.com/kailas-cloud/grantdex/internal/usecase/health"
)

// GetUsage handles GET /usage?period=day|month.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	var periodParam *string
	if err := runtime.BindQueryParameter("form", true, false, "period", r.URL.Query(), &periodParam); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid period parameter")
		return
	}

	period := domusage.PeriodMonth
	if periodParam != nil {
		period = domusage.Period(*periodParam)
		if !period.IsValid() {
			writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, `period must be "day" or "month"`)
			return
		}
	}

	report := s.usage.GetReport(r.Context(), period)

	resp := UsageResponse{
		Period:   string(report.Period()),
		Provider: report.Provider(),
		Usage: UsageMetrics{
			Requests: report.Metrics().Requests(),
			Tokens:   report.Metrics().Tokens(),
		},
		Budget: BudgetStatus{
			TokensLimit:     report.Budget().TokensLimit(),
			TokensRemaining: report.Budget().TokensRemaining(),
			IsExhausted:     report.Budget().IsExhausted(),
		},
	}
	if report.PeriodStart() > 0 {
		resp.PeriodStartAt = formatMillis(report.PeriodStart())
		resp.PeriodEndAt = formatMillis(report.PeriodEnd())
	}
	if report.Budget().ResetsAt() > 0 {
		resp.Budget.ResetsAt = formatMillis(report.Budget().ResetsAt())
	}

	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Grants:  report.Grants,
		Version: version.Version,
	})
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
