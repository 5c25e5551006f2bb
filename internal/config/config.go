package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the grantdex API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Corpus   CorpusConfig   `yaml:"corpus"`
	AI       AIConfig       `yaml:"ai"`
	Search   SearchConfig   `yaml:"search"`
	Remote   RemoteConfig   `yaml:"remote"`
	Sessions SessionsConfig `yaml:"sessions"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds key-value store connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis, none (default: none)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a key-value store is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.Driver != "none"
}

// CorpusConfig describes where grants are loaded from.
type CorpusConfig struct {
	Source             string `yaml:"source"` // file, redis, sql (default: file)
	Path               string `yaml:"path"`
	KeyPrefix          string `yaml:"key_prefix"`
	SQLDriver          string `yaml:"sql_driver"` // postgres, sqlite3
	DSN                string `yaml:"dsn"`
	RefreshIntervalSec int    `yaml:"refresh_interval_sec"` // 0 = load once
}

// RefreshInterval returns the reload period, zero when reloading is off.
func (c CorpusConfig) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSec) * time.Second
}

// BudgetConfig holds token budget settings.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// AIConfig holds completion provider settings.
type AIConfig struct {
	Provider    string       `yaml:"provider"` // openai, gemini, none (default: none)
	APIKey      string       `yaml:"api_key"`
	BaseURL     string       `yaml:"base_url"`
	Model       string       `yaml:"model"`
	User        string       `yaml:"user"`
	CacheTTLSec int          `yaml:"cache_ttl_sec"`
	Budget      BudgetConfig `yaml:"budget"`
}

// Enabled reports whether AI stages can call a provider.
func (a AIConfig) Enabled() bool {
	return a.Provider != "none" && a.APIKey != ""
}

// SearchConfig holds orchestrator and query cache settings.
type SearchConfig struct {
	CacheBackend     string  `yaml:"cache_backend"` // memory, store (default: memory)
	CacheTTLSec      int     `yaml:"cache_ttl_sec"`
	SweepIntervalSec int     `yaml:"sweep_interval_sec"`
	DebounceMs       int     `yaml:"debounce_ms"`
	DefaultPageSize  int     `yaml:"default_page_size"`
	MaxPageSize      int     `yaml:"max_page_size"`
	MinRelevance     float64 `yaml:"min_relevance"`
}

// CacheTTL returns the query cache entry lifetime.
func (s SearchConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSec) * time.Second
}

// SweepInterval returns the query cache sweep period.
func (s SearchConfig) SweepInterval() time.Duration {
	return time.Duration(s.SweepIntervalSec) * time.Second
}

// Debounce returns the input debounce delay.
func (s SearchConfig) Debounce() time.Duration {
	return time.Duration(s.DebounceMs) * time.Millisecond
}

// RemoteConfig holds the filtered-grants-search endpoint. An empty URL
// disables remote mode; requests fall back to the local corpus.
type RemoteConfig struct {
	URL        string `yaml:"url"`
	APIKey     string `yaml:"api_key"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// SessionsConfig holds search session settings.
type SessionsConfig struct {
	IdleTTLSec       int `yaml:"idle_ttl_sec"`
	SweepIntervalSec int `yaml:"sweep_interval_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes, defaults and validates a YAML document.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// AI stages can take several seconds
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "none"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Corpus.Source == "" {
		c.Corpus.Source = "file"
	}
	if c.Corpus.KeyPrefix == "" {
		c.Corpus.KeyPrefix = "grantdex:grant:"
	}
	if c.AI.Provider == "" {
		c.AI.Provider = "none"
	}
	if c.AI.CacheTTLSec <= 0 {
		c.AI.CacheTTLSec = 24 * 60 * 60
	}
	if c.Search.CacheBackend == "" {
		c.Search.CacheBackend = "memory"
	}
	if c.Search.CacheTTLSec <= 0 {
		c.Search.CacheTTLSec = 300
	}
	if c.Search.SweepIntervalSec <= 0 {
		c.Search.SweepIntervalSec = 60
	}
	if c.Search.DebounceMs <= 0 {
		c.Search.DebounceMs = 300
	}
	if c.Search.DefaultPageSize <= 0 {
		c.Search.DefaultPageSize = 15
	}
	if c.Search.MaxPageSize <= 0 {
		c.Search.MaxPageSize = 100
	}
	if c.Search.MinRelevance <= 0 {
		c.Search.MinRelevance = 0.1
	}
	if c.Remote.TimeoutSec <= 0 {
		c.Remote.TimeoutSec = 15
	}
	if c.Sessions.IdleTTLSec <= 0 {
		c.Sessions.IdleTTLSec = 30 * 60
	}
	if c.Sessions.SweepIntervalSec <= 0 {
		c.Sessions.SweepIntervalSec = 60
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Database.Driver {
	case "valkey", "redis":
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", c.Database.Driver)
		}
	case "none":
	default:
		return fmt.Errorf("database.driver must be \"valkey\", \"redis\" or \"none\", got %q", c.Database.Driver)
	}

	switch c.Corpus.Source {
	case "file":
		if c.Corpus.Path == "" {
			return fmt.Errorf("corpus.path is required for source \"file\"")
		}
	case "redis":
		if !c.Database.Enabled() {
			return fmt.Errorf("corpus.source \"redis\" requires a database driver")
		}
	case "sql":
		if c.Corpus.SQLDriver != "postgres" && c.Corpus.SQLDriver != "sqlite3" {
			return fmt.Errorf("corpus.sql_driver must be \"postgres\" or \"sqlite3\", got %q", c.Corpus.SQLDriver)
		}
		if c.Corpus.DSN == "" {
			return fmt.Errorf("corpus.dsn is required for source \"sql\"")
		}
	default:
		return fmt.Errorf("corpus.source must be \"file\", \"redis\" or \"sql\", got %q", c.Corpus.Source)
	}

	switch c.AI.Provider {
	case "openai", "gemini", "none":
	default:
		return fmt.Errorf("ai.provider must be \"openai\", \"gemini\" or \"none\", got %q", c.AI.Provider)
	}
	switch c.AI.Budget.Action {
	case "", "warn", "reject":
		// ok
	default:
		return fmt.Errorf("ai.budget.action must be \"warn\" or \"reject\", got %q", c.AI.Budget.Action)
	}

	switch c.Search.CacheBackend {
	case "memory":
	case "store":
		if !c.Database.Enabled() {
			return fmt.Errorf("search.cache_backend \"store\" requires a database driver")
		}
	default:
		return fmt.Errorf("search.cache_backend must be \"memory\" or \"store\", got %q", c.Search.CacheBackend)
	}
	if c.Search.DefaultPageSize > c.Search.MaxPageSize {
		return fmt.Errorf("search.default_page_size %d exceeds max_page_size %d",
			c.Search.DefaultPageSize, c.Search.MaxPageSize)
	}
	if c.Search.MinRelevance > 1 {
		return fmt.Errorf("search.min_relevance must be within (0, 1], got %g", c.Search.MinRelevance)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
