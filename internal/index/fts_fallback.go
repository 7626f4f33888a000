//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; transcript search uses LIKE fallback on the articles.body column.
	return nil
}

func ftsUpsert(_ *sql.Tx, _ string, _ int, _ string) error {
	// Body is already stored in the articles table; nothing extra to do.
	return nil
}

func ftsDelete(_ *sql.Tx, _ string) {}

// Search performs a LIKE-based transcript search (fallback when FTS5 is not compiled in).
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT name, sequence_number,
		       substr(body, max(1, instr(lower(body), lower(?)) - 60), 160)
		FROM articles
		WHERE body LIKE ?
		ORDER BY sequence_number
		LIMIT ?
	`, query, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return scanSearchResults(rows)
}
