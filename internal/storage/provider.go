// Package storage persists article records as JSON files.
package storage

import (
	"github.com/starford/podlex/internal/article"
	"github.com/starford/podlex/internal/models"
)

// Provider is the interface for article record storage.
type Provider interface {
	// List returns metadata for every record file.
	List() ([]models.ArticleMeta, error)
	// Read decodes the record file called name.
	Read(name string) (article.Record, error)
	// ReadRaw returns the bytes of the record file called name.
	ReadRaw(name string) ([]byte, error)
	// Write atomically stores r under FileName(*r.SequenceNumber).
	Write(r article.Record) error
	// Delete removes the record file called name.
	Delete(name string) error
	// Exists reports whether a record for episode seq is stored.
	Exists(seq int) bool
	// Root returns the directory holding the records.
	Root() string
}
