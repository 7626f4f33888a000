// Package fetch loads raw episode pages.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/starford/podlex/internal/storage"
)

var maxPageSize = 16 << 20

// Loader returns the raw page text for an episode identifier.
type Loader interface {
	Load(ctx context.Context, identifier string) (string, error)
}

// Options configure an HTTPLoader.
type Options struct {
	UserAgent  string
	CookieName string
	Cookie     string
	Timeout    time.Duration
	// Delay is the minimum pause between two requests.
	Delay time.Duration
}

// HTTPLoader fetches pages one at a time, optionally authenticated by a
// login cookie.
type HTTPLoader struct {
	client *http.Client
	opts   Options
	logger *slog.Logger
	last   time.Time
}

// NewHTTPLoader creates an HTTPLoader with its own client.
func NewHTTPLoader(opts Options, logger *slog.Logger) *HTTPLoader {
	return NewHTTPLoaderWithClient(&http.Client{Timeout: opts.Timeout}, opts, logger)
}

// NewHTTPLoaderWithClient creates an HTTPLoader with a custom HTTP client (for testing).
func NewHTTPLoaderWithClient(client *http.Client, opts Options, logger *slog.Logger) *HTTPLoader {
	return &HTTPLoader{client: client, opts: opts, logger: logger}
}

// Load fetches the page at identifier, which must be a URL.
func (l *HTTPLoader) Load(ctx context.Context, identifier string) (string, error) {
	if err := l.wait(ctx); err != nil {
		return "", err
	}
	defer func() { l.last = time.Now() }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, identifier, nil)
	if err != nil {
		return "", fmt.Errorf("fetch: create request for %s: %w", identifier, err)
	}
	if l.opts.UserAgent != "" {
		req.Header.Set("User-Agent", l.opts.UserAgent)
	}
	if l.opts.CookieName != "" && l.opts.Cookie != "" {
		req.AddCookie(&http.Cookie{Name: l.opts.CookieName, Value: l.opts.Cookie})
	}

	l.logger.Info("fetch: loading", slog.String("url", identifier))
	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: get %s: %w", identifier, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch: get %s: status %d", identifier, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(maxPageSize)+1))
	if err != nil {
		return "", fmt.Errorf("fetch: read %s: %w", identifier, err)
	}
	if len(body) > maxPageSize {
		return "", fmt.Errorf("fetch: %s: page larger than %d bytes", identifier, maxPageSize)
	}
	return string(body), nil
}

// wait sleeps until Delay has passed since the previous request.
func (l *HTTPLoader) wait(ctx context.Context) error {
	if l.opts.Delay <= 0 || l.last.IsZero() {
		return ctx.Err()
	}
	remaining := l.opts.Delay - time.Since(l.last)
	if remaining <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(remaining)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// StoreLoader returns the page text kept in stored article records. The
// identifier is the record file name.
type StoreLoader struct {
	store storage.Provider
}

// NewStoreLoader creates a StoreLoader reading from store.
func NewStoreLoader(store storage.Provider) *StoreLoader {
	return &StoreLoader{store: store}
}

// Load returns the stored text of the record called identifier.
func (l *StoreLoader) Load(_ context.Context, identifier string) (string, error) {
	r, err := l.store.Read(identifier)
	if err != nil {
		return "", err
	}
	return r.Text, nil
}

// ReadCookie returns the trimmed content of path. A missing file yields ""
// so that public pages can still be fetched.
func ReadCookie(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("fetch: read cookie file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
