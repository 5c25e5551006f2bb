package health

import "context"

// DBPinger checks key-value store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// AIChecker checks AI provider availability.
type AIChecker interface {
	HealthCheck(ctx context.Context) error
}

// CorpusCounter reports how many grants are loaded.
type CorpusCounter interface {
	Len() int
}
