package fetch

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/podlex/internal/article"
	"github.com/starford/podlex/internal/storage"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestHTTPLoader_SendsHeadersAndCookie(t *testing.T) {
	var gotUA, gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		if c, err := r.Cookie("wordpress_logged_in"); err == nil {
			gotCookie = c.Value
		}
		_, _ = w.Write([]byte("<section>Transcription de</section>"))
	}))
	defer srv.Close()

	l := NewHTTPLoaderWithClient(srv.Client(), Options{
		UserAgent:  "Mozilla/5.0",
		CookieName: "wordpress_logged_in",
		Cookie:     "secret",
	}, quietLogger())

	body, err := l.Load(context.Background(), srv.URL+"/01-episode/")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !strings.Contains(body, "Transcription de") {
		t.Errorf("body = %q", body)
	}
	if gotUA != "Mozilla/5.0" {
		t.Errorf("user agent = %q", gotUA)
	}
	if gotCookie != "secret" {
		t.Errorf("cookie = %q", gotCookie)
	}
}

func TestHTTPLoader_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	l := NewHTTPLoaderWithClient(srv.Client(), Options{}, quietLogger())
	if _, err := l.Load(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 403")
	}
}

func TestHTTPLoader_Delay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	l := NewHTTPLoaderWithClient(srv.Client(), Options{Delay: 150 * time.Millisecond}, quietLogger())
	start := time.Now()
	for i := 0; i < 2; i++ {
		if _, err := l.Load(context.Background(), srv.URL); err != nil {
			t.Fatalf("Load: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
		t.Errorf("second request not delayed: %v", elapsed)
	}
}

func TestHTTPLoader_CancelledDuringDelay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	l := NewHTTPLoaderWithClient(srv.Client(), Options{Delay: time.Hour}, quietLogger())
	if _, err := l.Load(context.Background(), srv.URL); err != nil {
		t.Fatalf("Load: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := l.Load(ctx, srv.URL); err == nil {
		t.Fatal("expected context error")
	}
}

func TestStoreLoader(t *testing.T) {
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	seq := 6
	_ = store.Write(article.Record{Identifier: "6-six", Text: "<p>six</p>", SequenceNumber: &seq})

	text, err := NewStoreLoader(store).Load(context.Background(), "6.json")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if text != "<p>six</p>" {
		t.Errorf("text = %q", text)
	}
}

func TestReadCookie(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "userdata.txt")
	_ = os.WriteFile(p, []byte("  token-value\n"), 0o600)

	got, err := ReadCookie(p)
	if err != nil || got != "token-value" {
		t.Errorf("ReadCookie = %q, %v", got, err)
	}
	got, err = ReadCookie(filepath.Join(dir, "missing.txt"))
	if err != nil || got != "" {
		t.Errorf("missing file: %q, %v", got, err)
	}
}

func TestHTTPLoader_OversizedPage(t *testing.T) {
	old := maxPageSize
	maxPageSize = 10
	t.Cleanup(func() { maxPageSize = old })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/big" {
			_, _ = w.Write([]byte(strings.Repeat("x", 11)))
			return
		}
		_, _ = w.Write([]byte(strings.Repeat("x", 10)))
	}))
	defer srv.Close()
	l := NewHTTPLoaderWithClient(srv.Client(), Options{}, quietLogger())

	if _, err := l.Load(context.Background(), srv.URL+"/big"); err == nil || !strings.Contains(err.Error(), "larger than") {
		t.Errorf("expected size error, got %v", err)
	}
	page, err := l.Load(context.Background(), srv.URL+"/fits")
	if err != nil || len(page) != 10 {
		t.Errorf("page at the limit: len %d, err %v", len(page), err)
	}
}
