package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/starford/podlex/internal/apperr"
	"github.com/starford/podlex/internal/article"
	"github.com/starford/podlex/internal/checksum"
	"github.com/starford/podlex/internal/models"
)

const recordExt = ".json"

// FileName returns the record file name for episode seq.
func FileName(seq int) string {
	return strconv.Itoa(seq) + recordExt
}

// FS implements Provider backed by a flat directory of JSON files.
type FS struct {
	root string // absolute path to the articles directory
}

// NewFS creates a new FS provider rooted at the given directory, creating it
// when missing.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute articles directory.
func (f *FS) Root() string {
	return f.root
}

// safePath resolves a record name inside root. Names are flat: anything with
// a path separator or a leading dot is rejected.
func (f *FS) safePath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("storage: invalid record name %q", name)
	}
	if !strings.HasSuffix(name, recordExt) {
		return "", fmt.Errorf("storage: record name %q must end with %s", name, recordExt)
	}
	return filepath.Join(f.root, name), nil
}

// List returns metadata for every .json file in root, sorted by name.
func (f *FS) List() ([]models.ArticleMeta, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	var out []models.ArticleMeta
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, recordExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("storage: list: %w", err)
		}
		sum, err := checksum.File(filepath.Join(f.root, name))
		if err != nil {
			return nil, fmt.Errorf("storage: list: %w", err)
		}
		out = append(out, models.ArticleMeta{
			Name:      name,
			Checksum:  sum,
			UpdatedAt: info.ModTime(),
		})
	}
	return out, nil
}

// ReadRaw returns the raw bytes of a record file.
func (f *FS) ReadRaw(name string) ([]byte, error) {
	abs, err := f.safePath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("storage: read %s: %w", name, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", name, err)
	}
	return data, nil
}

// Read decodes a record file.
func (f *FS) Read(name string) (article.Record, error) {
	data, err := f.ReadRaw(name)
	if err != nil {
		return article.Record{}, err
	}
	return Decode(name, data)
}

// Decode parses record bytes read from the file called name.
func Decode(name string, data []byte) (article.Record, error) {
	var r article.Record
	if err := json.Unmarshal(data, &r); err != nil {
		return article.Record{}, fmt.Errorf("storage: decode %s: %w", name, err)
	}
	return r, nil
}

// Exists reports whether a record for episode seq is stored.
func (f *FS) Exists(seq int) bool {
	_, err := os.Stat(filepath.Join(f.root, FileName(seq)))
	return err == nil
}

// Write atomically writes the record: tmp file → fsync → rename.
func (f *FS) Write(r article.Record) error {
	if r.SequenceNumber == nil {
		return errors.New("storage: record has no sequence number")
	}
	name := FileName(*r.SequenceNumber)
	abs, err := f.safePath(name)
	if err != nil {
		return err
	}
	content, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(f.root, ".podlex-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes a record file.
func (f *FS) Delete(name string) error {
	abs, err := f.safePath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: delete %s: %w", name, err)
	}
	return nil
}

var _ Provider = (*FS)(nil)
