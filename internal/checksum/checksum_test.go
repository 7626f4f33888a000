package checksum

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSum(t *testing.T) {
	// sha256("")
	const empty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != empty {
		t.Errorf("Sum(nil) = %s", got)
	}
	if Sum([]byte(`{"sequence_number":1}`)) == Sum([]byte(`{"sequence_number":2}`)) {
		t.Error("different records share a checksum")
	}
}

func TestFile(t *testing.T) {
	data := []byte(`{"identifier":"1.json","text":"bonjour"}`)
	path := filepath.Join(t.TempDir(), "1.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := File(path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if got != Sum(data) {
		t.Errorf("File = %s, want %s", got, Sum(data))
	}
	if _, err := File(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
