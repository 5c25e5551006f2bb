package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/grantdex/internal/config"
	"github.com/kailas-cloud/grantdex/internal/db"
	dbRedis "github.com/kailas-cloud/grantdex/internal/db/redis"
	"github.com/kailas-cloud/grantdex/internal/domain"
	logpkg "github.com/kailas-cloud/grantdex/internal/logger"
	"github.com/kailas-cloud/grantdex/internal/metrics"
	"github.com/kailas-cloud/grantdex/internal/repository/grants"
	"github.com/kailas-cloud/grantdex/internal/repository/querycache"
	chiTransport "github.com/kailas-cloud/grantdex/internal/transport/chi"
	"github.com/kailas-cloud/grantdex/internal/transport/remote"
	healthuc "github.com/kailas-cloud/grantdex/internal/usecase/health"
	matchinguc "github.com/kailas-cloud/grantdex/internal/usecase/matching"
	searchuc "github.com/kailas-cloud/grantdex/internal/usecase/search"
	sectoruc "github.com/kailas-cloud/grantdex/internal/usecase/sector"
	usageuc "github.com/kailas-cloud/grantdex/internal/usecase/usage"
	"github.com/kailas-cloud/grantdex/internal/version"
)

func main() {
	// Local development keeps secrets in .env; a missing file is fine.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting grantdex API server",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("corpus_source", cfg.Corpus.Source),
		zap.String("ai_provider", cfg.AI.Provider),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	metrics.RegisterSearchMetrics()
	metrics.RegisterAIMetrics()

	// Optional key-value store: shared caches, budget counters, redis corpus.
	var store db.Store
	if cfg.Database.Enabled() {
		rs, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer rs.Close()

		if err := rs.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database", zap.Strings("addrs", cfg.Database.Addrs))
		store = rs
	}

	// Grant corpus
	loader, sqlConn, err := buildLoader(ctx, cfg.Corpus, store, logger)
	if err != nil {
		logger.Fatal("Failed to create grant source", zap.Error(err))
	}
	if sqlConn != nil {
		defer func() { _ = sqlConn.Close() }()
	}

	catalog := grants.NewCatalog(loader, logger)
	if err := catalog.Reload(ctx); err != nil {
		// Serve anyway: health reports the empty corpus and refresh may recover it.
		logger.Error("Initial grant load failed", zap.Error(err))
	}
	go catalog.Run(ctx, cfg.Corpus.RefreshInterval())

	// AI chain
	ai, err := buildAI(ctx, cfg.AI, store, logger)
	if err != nil {
		logger.Fatal("Failed to create AI provider", zap.Error(err))
	}

	sectorSvc := sectoruc.New(ai.completer, logger)
	matchSvc := matchinguc.New(ai.completer, logger)

	// Query cache
	var cache searchuc.Cache
	switch cfg.Search.CacheBackend {
	case "store":
		cache = querycache.NewStore(store, cfg.Search.CacheTTL(), nil, logger)
	default:
		mem := querycache.NewMemory(cfg.Search.CacheTTL(), nil)
		go mem.Run(ctx, cfg.Search.SweepInterval())
		cache = mem
	}

	// Pass nil interface (not typed nil pointer!) when remote search is not configured.
	var remoteSearch searchuc.Remote
	if cfg.Remote.URL != "" {
		remoteSearch = remote.NewClient(remote.Config{
			URL:     cfg.Remote.URL,
			APIKey:  cfg.Remote.APIKey,
			Timeout: time.Duration(cfg.Remote.TimeoutSec) * time.Second,
			Logger:  logger,
		})
	}

	searchSvc := searchuc.New(searchuc.Config{
		Corpus:       catalog,
		Cache:        cache,
		Remote:       remoteSearch,
		Classifier:   sectorSvc,
		Matcher:      matchSvc,
		MinRelevance: cfg.Search.MinRelevance,
		Logger:       logger,
	})

	sessions := searchuc.NewSessions(searchSvc, cfg.Search.Debounce(),
		time.Duration(cfg.Sessions.IdleTTLSec)*time.Second)
	defer sessions.Close()
	go sessions.Run(ctx, time.Duration(cfg.Sessions.SweepIntervalSec)*time.Second)

	// Usage service reads from the shared BudgetTracker.
	var budgetReader usageuc.BudgetReader
	if ai.budget != nil {
		budgetReader = ai.budget
	}
	usageSvc := usageuc.New(budgetReader)

	healthSvc := healthuc.New(dbPinger(store, loader), ai.health, catalog)

	server := chiTransport.NewServer(chiTransport.Services{
		Corpus:   catalog,
		Search:   searchSvc,
		Sessions: sessions,
		Sectors:  sectorSvc,
		Matcher:  matchSvc,
		Usage:    usageSvc,
		Health:   healthSvc,
	}, logger).WithPagination(cfg.Search.DefaultPageSize, cfg.Search.MaxPageSize)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Mount(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr), zap.Int("grants", catalog.Len()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildLoader selects the grant source. The returned *sql.DB is non-nil for the sql source.
func buildLoader(
	ctx context.Context, cfg config.CorpusConfig, store db.Store, logger *zap.Logger,
) (grants.Loader, *sql.DB, error) {
	switch cfg.Source {
	case "redis":
		return grants.NewRedisSource(store, cfg.KeyPrefix, logger), nil, nil
	case "sql":
		conn, err := grants.OpenSQL(cfg.SQLDriver, cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open %s: %w", cfg.SQLDriver, err)
		}
		src := grants.NewSQLSource(conn, logger)
		if err := src.EnsureSchema(ctx); err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("ensure grant schema: %w", err)
		}
		return src, conn, nil
	default:
		return grants.NewFileSource(cfg.Path, logger), nil, nil
	}
}

// dbPinger picks the store to health-check: the key-value store, else the SQL corpus.
func dbPinger(store db.Store, loader grants.Loader) healthuc.DBPinger {
	if store != nil {
		return store
	}
	if p, ok := loader.(healthuc.DBPinger); ok {
		return p
	}
	return nil
}

// aiHealthChecker adapts a provider to health.AIChecker.
type aiHealthChecker struct {
	provider domain.HealthChecker
}

func (h *aiHealthChecker) HealthCheck(ctx context.Context) error {
	if err := h.provider.HealthCheck(ctx); err != nil {
		return fmt.Errorf("ai health check: %w", err)
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorCodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("ai_tokens", ww.Header().Get(metrics.AITokensHeader)),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
