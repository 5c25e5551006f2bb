package grantdex

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	grantsFile string
	grants     []Grant
	hasGrants  bool

	redisAddr     string
	redisPassword string
	keyPrefix     string

	sqlDriver string
	sqlDSN    string

	completer Completer
	provider  string

	remoteURL    string
	remoteAPIKey string

	cacheTTL     time.Duration
	minRelevance float64

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// sources counts the configured grant sources.
func (c *clientConfig) sources() int {
	n := 0
	for _, set := range []bool{c.grantsFile != "", c.hasGrants, c.redisAddr != "", c.sqlDSN != ""} {
		if set {
			n++
		}
	}
	return n
}

// WithGrantsFile loads the corpus from a YAML or JSON file.
func WithGrantsFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.grantsFile = path
	})
}

// WithGrants serves a fixed in-memory corpus.
func WithGrants(grants ...Grant) Option {
	return optionFunc(func(c *clientConfig) {
		c.grants = grants
		c.hasGrants = true
	})
}

// WithRedis loads the corpus from JSON documents in a Redis instance.
// The JSON module is required.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.redisAddr = addr
		c.redisPassword = password
	})
}

// WithKeyPrefix overrides the Redis key prefix of grant documents.
// Default: "grantdex:grant:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithSQL loads the corpus from the grants table of a postgres or sqlite3 database.
func WithSQL(driver, dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.sqlDriver = driver
		c.sqlDSN = dsn
	})
}

// WithCompleter enables AI sector classification and grant matching.
// provider names the model backend in usage reports, e.g. "openai".
func WithCompleter(provider string, comp Completer) Option {
	return optionFunc(func(c *clientConfig) {
		c.provider = provider
		c.completer = comp
	})
}

// WithRemote enables remote mode against a filtered-grants-search endpoint.
func WithRemote(url, apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.remoteURL = url
		c.remoteAPIKey = apiKey
	})
}

// WithCacheTTL sets how long search results are reused. Default: 5 minutes.
func WithCacheTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
	})
}

// WithMinRelevance drops query matches scoring at or below min. Default: 0.1.
func WithMinRelevance(minScore float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.minRelevance = minScore
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
