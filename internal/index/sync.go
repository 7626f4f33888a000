package index

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/podlex/internal/article"
	"github.com/starford/podlex/internal/checksum"
	"github.com/starford/podlex/internal/extract"
	"github.com/starford/podlex/internal/storage"
)

// Sync walks the article store and brings the index up to date:
//   - new/changed records are decoded and upserted
//   - records removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, ex *extract.Extractor, logger *slog.Logger) error {
	metas, err := store.List()
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Name] = struct{}{}

		if checksums[m.Name] == m.Checksum {
			continue
		}

		data, err := store.ReadRaw(m.Name)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("name", m.Name), slog.String("error", err.Error()))
			continue
		}
		if err := indexRecord(db, ex, m.Name, data); err != nil {
			logger.Warn("sync: index failed", slog.String("name", m.Name), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("name", m.Name))
		}
	}

	// Remove stale entries.
	for name := range checksums {
		if _, ok := disk[name]; !ok {
			if err := db.DeleteArticle(name); err != nil {
				logger.Warn("sync: delete failed", slog.String("name", name), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("name", name))
			}
		}
	}

	return nil
}

// indexRecord decodes a record file and upserts it into the DB. The stored
// body is the plain transcript, used for search.
func indexRecord(db *DB, ex *extract.Extractor, name string, data []byte) error {
	rec, err := storage.Decode(name, data)
	if err != nil {
		return err
	}
	a, err := article.FromRecordWithExtractor(rec, ex)
	if err != nil {
		return fmt.Errorf("index: %s: %w", name, err)
	}
	if ex == nil {
		ex = extract.New("")
	}
	body := strings.Join(ex.Paragraphs(a.Text()), "\n")

	row := ArticleRow{
		Name:           name,
		SequenceNumber: a.SequenceNumber(),
		Identifier:     a.Identifier(),
		Checksum:       checksum.Sum(data),
		UpdatedAt:      time.Now(),
	}
	return db.UpsertArticle(row, body, a.WordCount())
}
