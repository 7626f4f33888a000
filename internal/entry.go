// Package internal provides the main application initialization and runtime logic.
package internal

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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/podlex/internal/api"
	"github.com/starford/podlex/internal/apperr"
	"github.com/starford/podlex/internal/articleservice"
	"github.com/starford/podlex/internal/index"
	"github.com/starford/podlex/internal/report"
	"github.com/starford/podlex/internal/scheduler"
	"github.com/starford/podlex/internal/sse"
)

// Run starts the HTTP server, the index watcher and, when configured, the
// sync scheduler, and blocks until a shutdown signal or ctx cancellation.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg, logger := app.config, app.logger

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("data_path", cfg.Data.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := NewStore(cfg)
	if err != nil {
		return err
	}
	ex := NewExtractor(cfg)

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	if err := index.Sync(db, store, ex, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	loader, err := NewLoader(cfg, logger)
	if err != nil {
		return err
	}
	articles := NewArticleService(cfg, store, loader, logger)

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	svc := api.NewService(articles, db)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := db.Stats(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"index unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var sched *scheduler.Scheduler
	if cfg.Schedule.SyncCron != "" {
		sched, err = scheduler.New("sync", cfg.Schedule.SyncCron, cfg.Schedule.Timezone,
			scheduledSync(cfg, articles, broker, logger), logger)
		if err != nil {
			return err
		}
		logger.Info("Scheduled sync enabled", slog.String("cron", cfg.Schedule.SyncCron))
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Index watcher feeding SSE.
	g.Go(func() error {
		if err := index.Watch(gCtx, db, store, ex, logger, broker.PublishArticleEvent); err != nil {
			logger.Error("watcher failed", slog.String("error", err.Error()))
		}
		return nil
	})

	if sched != nil {
		g.Go(func() error { return sched.Run(gCtx) })
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		// Stop the watcher and scheduler too.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

var errShutdown = errors.New("shutdown")

// scheduledSync fetches every listed episode that is not stored yet, then
// refreshes the report. A run overlapping a CLI sync is skipped.
func scheduledSync(cfg *Config, articles *articleservice.Service, broker *sse.Broker, logger *slog.Logger) scheduler.Job {
	return func(ctx context.Context) error {
		ids, err := articleservice.ReadIdentifiers(cfg.Data.URLsPath())
		if err != nil {
			return err
		}
		res, err := articles.Sync(ctx, ids, false)
		if errors.Is(err, apperr.ErrLocked) {
			logger.Warn("scheduled sync skipped: another run holds the lock")
			return nil
		}
		if err != nil {
			return err
		}
		if res.Written == 0 {
			return nil
		}
		analysis, err := articles.Analyze(ctx)
		if err != nil {
			return err
		}
		broker.Publish(sse.Event{Type: sse.TypeReportUpdated, Data: map[string]int{
			"episodes": len(analysis),
			"words":    report.Total(analysis),
		}})
		return nil
	}
}
