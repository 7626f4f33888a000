package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/podlex/internal/articleservice"
	"github.com/starford/podlex/internal/extract"
	"github.com/starford/podlex/internal/fetch"
	"github.com/starford/podlex/internal/storage"
)

var errConfigRequired = errors.New("config is required")

// NewLogger returns a JSON logger on stderr, leaving stdout to command output
// and the MCP stdio transport.
func NewLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewExtractor returns the transcript extractor configured in cfg.
func NewExtractor(cfg *Config) *extract.Extractor {
	return extract.New(cfg.Extract.TranscriptMarker)
}

// NewStore opens the article directory, creating it when missing.
func NewStore(cfg *Config) (*storage.FS, error) {
	store, err := storage.NewFS(cfg.Data.ArticlesDir())
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return store, nil
}

// NewLoader builds the HTTP page loader, reading the login cookie from the
// cookie file when one is configured and present.
func NewLoader(cfg *Config, logger *slog.Logger) (*fetch.HTTPLoader, error) {
	cookie := cfg.Fetch.Cookie
	fromFile, err := fetch.ReadCookie(cfg.Fetch.CookieFile)
	if err != nil {
		return nil, err
	}
	if fromFile != "" {
		cookie = fromFile
	}
	if cookie == "" {
		logger.Warn("no login cookie configured; only public pages can be fetched")
	}
	return fetch.NewHTTPLoader(fetch.Options{
		UserAgent:  cfg.Fetch.UserAgent,
		CookieName: cfg.Fetch.CookieName,
		Cookie:     cookie,
		Timeout:    cfg.Fetch.Timeout,
		Delay:      cfg.Fetch.Delay,
	}, logger), nil
}

// NewArticleService wires the article service for cfg. loader may be nil for
// commands that never fetch.
func NewArticleService(cfg *Config, store storage.Provider, loader fetch.Loader, logger *slog.Logger) *articleservice.Service {
	return articleservice.New(store, loader,
		articleservice.WithExtractor(NewExtractor(cfg)),
		articleservice.WithLogger(logger),
		articleservice.WithReportPath(cfg.Data.ReportPath()),
	)
}
