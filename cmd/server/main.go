// Package main is the entrypoint for the prospector API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coldreach/prospector/internal/api"
	"github.com/coldreach/prospector/internal/api/handler"
	mw "github.com/coldreach/prospector/internal/api/middleware"
	"github.com/coldreach/prospector/internal/api/response"
	"github.com/coldreach/prospector/internal/cache"
	"github.com/coldreach/prospector/internal/config"
	"github.com/coldreach/prospector/internal/engine"
	"github.com/coldreach/prospector/internal/history"
	"github.com/coldreach/prospector/internal/leads"
	"github.com/coldreach/prospector/internal/prospector"
	"github.com/coldreach/prospector/internal/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "env", cfg.Server.Env, "engine", cfg.Engine.BaseURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Create remote clients and stores
	engineClient := engine.NewHTTPClient(cfg.Engine.BaseURL, cfg.Engine.Timeout)
	leadsClient := leads.NewHTTPClient(cfg.Leads.BaseURL, cfg.Leads.Timeout)
	pgStore := store.NewPostgresStore(pool)
	historySvc := history.NewService(pgStore, redisCache, cfg.History.ListLimit, cfg.History.CacheTTL, slog.Default())

	// 6. Create the per-session orchestrator registry
	registry := prospector.NewRegistry(func(sess engine.Session) *prospector.Orchestrator {
		return prospector.New(engineClient, historySvc, redisCache, sess, prospector.Options{
			PollInterval:    cfg.Engine.PollInterval,
			MaxPollAttempts: cfg.Engine.MaxPollAttempts,
			Logger:          slog.Default(),
		})
	})
	defer registry.Close()

	// 7. Build router with dependencies
	deps := api.Dependencies{
		RateLimit: mw.NewRateLimit(redisCache, cfg.Server.RequestsPerMin),

		HealthHandler: healthHandler(pgStore, redisCache),

		SearchHandler:      handler.NewSearchHandler(registry),
		StopHandler:        handler.NewStopHandler(registry),
		JobResultsHandler:  handler.NewJobResultsHandler(registry),
		AcknowledgeHandler: handler.NewAcknowledgeHandler(registry),
		DismissHandler:     handler.NewDismissMessageHandler(registry),

		HistoryHandler:      handler.NewHistoryHandler(historySvc),
		ClearHistoryHandler: handler.NewClearHistoryHandler(historySvc),
		LoadHistoryHandler:  handler.NewLoadHistoryHandler(historySvc, registry),
		HistoryCSVHandler:   handler.NewHistoryCSVHandler(historySvc),

		ExportCSVHandler: handler.NewExportCSVHandler(registry),
		ImportHandler:    handler.NewImportHandler(registry, leadsClient),
	}

	router := api.NewRouter(deps)

	// 8. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// healthHandler checks database and cache connectivity.
func healthHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}

		if err := s.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		degraded := checks["database"] != "ok" || checks["cache"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
