package index

import (
	"github.com/starford/podlex/internal/corpus"
	"github.com/starford/podlex/internal/models"
)

// ArticleIndex defines the interface for vocabulary index operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type ArticleIndex interface {
	UpsertArticle(a ArticleRow, body string, counts map[string]int) error
	DeleteArticle(name string) error
	GetChecksum(name string) (string, error)
	AllChecksums() (map[string]string, error)
	ListArticles() ([]models.ArticleSummary, error)
	Occurrences(word string) ([]models.WordOccurrence, error)
	FirstOccurrence(word string) (int, bool, error)
	TopWords(limit int) ([]corpus.WordFrequency, error)
	Search(query string, limit int) ([]SearchResult, error)
	Stats() (Stats, error)
	Close() error
}

// Verify *DB satisfies ArticleIndex at compile time.
var _ ArticleIndex = (*DB)(nil)
