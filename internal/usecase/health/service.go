package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates that no search can be served.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	Grants int
}

// Service coordinates health checks.
type Service struct {
	db     DBPinger
	ai     AIChecker
	corpus CorpusCounter
}

// New creates a Service. db and ai can be nil when not configured.
func New(db DBPinger, ai AIChecker, corpus CorpusCounter) *Service {
	return &Service{db: db, ai: ai, corpus: corpus}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.db != nil {
		checks["database"] = result(s.db.Ping(ctx))
	}
	if s.ai != nil {
		checks["ai"] = result(s.ai.HealthCheck(ctx))
	}

	grants := s.corpus.Len()
	if grants > 0 {
		checks["corpus"] = CheckOK
	} else {
		checks["corpus"] = CheckError
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if grants == 0 {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks, Grants: grants}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
