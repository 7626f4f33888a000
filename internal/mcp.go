package internal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/podlex/internal/index"
	"github.com/starford/podlex/internal/mcpserver"
)

// RunMCP serves the MCP tools over stdio until stdin closes. The index is
// synced first and kept current by a watcher while serving.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg, logger := app.config, app.logger

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

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := index.Watch(watchCtx, db, store, ex, logger, nil); err != nil {
			logger.Error("watcher failed", slog.String("error", err.Error()))
		}
	}()

	srv := mcpserver.New(NewArticleService(cfg, store, nil, logger), db, app.version)
	logger.Info("MCP server starting on stdio")
	return srv.ServeStdio()
}
