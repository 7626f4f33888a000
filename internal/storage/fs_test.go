package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/podlex/internal/apperr"
	"github.com/starford/podlex/internal/article"
)

func tempStore(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(filepath.Join(t.TempDir(), "articles"))
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func record(seq int, text string) article.Record {
	return article.Record{
		Identifier:     "https://example.com/episode/",
		Text:           text,
		SequenceNumber: &seq,
		WordCount:      map[string]int{"mot": 1},
	}
}

func TestWriteAndRead(t *testing.T) {
	s := tempStore(t)
	if err := s.Write(record(4, "<p>page</p>")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("4.json")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Text != "<p>page</p>" || got.SequenceNumber == nil || *got.SequenceNumber != 4 || got.WordCount["mot"] != 1 {
		t.Errorf("unexpected record: %+v", got)
	}
	if !s.Exists(4) || s.Exists(5) {
		t.Error("Exists mismatch")
	}
}

func TestWrite_RequiresSequenceNumber(t *testing.T) {
	s := tempStore(t)
	if err := s.Write(article.Record{Identifier: "x"}); err == nil {
		t.Error("expected error without sequence number")
	}
}

func TestDelete(t *testing.T) {
	s := tempStore(t)
	_ = s.Write(record(1, "bye"))
	if err := s.Delete("1.json"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("1.json"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestList(t *testing.T) {
	s := tempStore(t)
	_ = s.Write(record(1, "a"))
	_ = s.Write(record(2, "b"))
	_ = os.WriteFile(filepath.Join(s.Root(), "readme.txt"), []byte("not a record"), 0o644)
	_ = os.Mkdir(filepath.Join(s.Root(), "sub.json"), 0o755)

	items, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(items), items)
	}
	if items[0].Name != "1.json" || items[0].Checksum == "" {
		t.Errorf("unexpected meta: %+v", items[0])
	}
}

func TestInvalidNamesRejected(t *testing.T) {
	s := tempStore(t)
	for _, name := range []string{"../outside.json", "/etc/passwd", ".hidden.json", "a/b.json", "notes.md", ""} {
		if _, err := s.Read(name); err == nil {
			t.Errorf("expected error reading %q", name)
		}
		if err := s.Delete(name); err == nil {
			t.Errorf("expected error deleting %q", name)
		}
	}
}

func TestAtomicWriteNoLeftovers(t *testing.T) {
	s := tempStore(t)
	_ = s.Write(record(3, "original"))
	if err := s.Write(record(3, "updated")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("3.json")
	if got.Text != "updated" {
		t.Errorf("expected updated content, got %q", got.Text)
	}
	matches, _ := filepath.Glob(filepath.Join(s.Root(), ".podlex-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestDecode_Invalid(t *testing.T) {
	if _, err := Decode("x.json", []byte("{not json")); err == nil {
		t.Error("expected decode error")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "podlex-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	if _, err := NewFS(f.Name()); err == nil {
		t.Error("expected error when root is a file")
	}
}
