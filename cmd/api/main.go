// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Folio HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Run database migrations (idempotent) and connect to PostgreSQL.
//  4. Connect to Redis when REDIS_URL is set (event publishing).
//  5. Load locale catalogs and the token verifier.
//  6. Wire the user group service and HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/folio/internal/api"
	"github.com/taibuivan/folio/internal/platform/config"
	"github.com/taibuivan/folio/internal/platform/constants"
	"github.com/taibuivan/folio/internal/platform/events"
	"github.com/taibuivan/folio/internal/platform/i18n"
	"github.com/taibuivan/folio/internal/platform/metrics"
	"github.com/taibuivan/folio/internal/platform/middleware"
	"github.com/taibuivan/folio/internal/platform/migration"
	pgstore "github.com/taibuivan/folio/internal/platform/postgres"
	redisstore "github.com/taibuivan/folio/internal/platform/redis"
	"github.com/taibuivan/folio/internal/platform/sec"
	"github.com/taibuivan/folio/internal/usergroup"
	"github.com/taibuivan/folio/internal/workflow"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	log.Info("[Folio] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Any("stages", cfg.ApplicationStages),
	)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Event Bus ──────────────────────────────────────────────────────
	collector := metrics.New()

	var (
		rdb       *goredis.Client
		publisher events.Publisher = events.Nop{}
	)
	if cfg.RedisURL != "" {
		rdb, err = redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()
		publisher = events.NewRedisPublisher(rdb, cfg.EventChannel)
	} else {
		log.Warn("event_publishing_disabled", slog.String("reason", "REDIS_URL is empty"))
	}
	publisher = events.Observed(publisher, collector)

	// ── 5. Locales & Auth ─────────────────────────────────────────────────
	translator, err := i18n.Load(cfg.LocalePath)
	must(log, err, "load locale catalogs")

	var verifier middleware.TokenVerifier
	if cfg.JWTPubKeyPath != "" {
		tokens, verr := sec.NewTokenVerifier(cfg.JWTPubKeyPath, constants.AuthIssuer)
		must(log, verr, "initialize token verifier")
		verifier = tokens
	} else {
		log.Warn("token_verification_disabled", slog.String("reason", "JWT_PUBLIC_KEY_PATH is empty"))
	}

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	policy := usergroup.AllowDuplicates
	if cfg.DeduplicateAssignments {
		policy = usergroup.SkipDuplicates
	}

	groupRepository := usergroup.NewPostgresRepository(pool, usergroup.WithQueryObserver(collector))
	assignmentRepository := usergroup.NewPostgresAssignmentRepository(pool)
	groupService := usergroup.NewService(groupRepository, assignmentRepository, translator, log,
		usergroup.WithPublisher(publisher),
		usergroup.WithStages(workflow.NewRegistry(cfg.ApplicationStages)),
		usergroup.WithAssignmentPolicy(policy),
		usergroup.WithDefaultLocale(cfg.DefaultLocale),
	)

	dependencies := api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
	}
	if rdb != nil {
		dependencies.CheckEventBus = func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }
	}
	liveness, readiness := api.NewHealthHandlers(dependencies, log)

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, api.Options{
		Verifier:      verifier,
		Locales:       translator.Locales(),
		DefaultLocale: cfg.DefaultLocale,
	}, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		UserGroup: usergroup.NewHandler(groupService),
		Metrics:   collector,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	log.Info("shutting down server", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

func newLogger(level slog.Level) *slog.Logger {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))
	slog.SetDefault(log)
	return log
}

// must logs a structured fatal error and terminates the process if err is non-nil.
// It is limited to startup wiring.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
