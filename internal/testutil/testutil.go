// Package testutil provides shared test helpers for article stores and
// index databases.
package testutil

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/starford/podlex/internal/article"
	"github.com/starford/podlex/internal/index"
	"github.com/starford/podlex/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "podlex-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestStore creates a temporary article directory with a storage.FS.
func TestStore(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// Page wraps paragraphs in a minimal episode page with a transcript section.
func Page(paragraphs ...string) string {
	body := "<section class=\"nav\"><p>Menu</p></section><section>Transcription de l'épisode"
	for _, p := range paragraphs {
		body += "<p>" + p + "</p>"
	}
	return "<html><body>" + body + "</section></body></html>"
}

// SeedArticle stores an article for episode seq built from paragraphs.
func SeedArticle(t *testing.T, store storage.Provider, seq int, paragraphs ...string) article.Article {
	t.Helper()
	a, err := article.New(fmt.Sprintf("https://example.com/%02d-episode/", seq), Page(paragraphs...))
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Write(a.Record()); err != nil {
		t.Fatal(err)
	}
	return a
}

// QuietLogger discards everything below error level.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}
