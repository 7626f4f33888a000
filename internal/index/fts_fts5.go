//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS transcripts_fts USING fts5(
			name UNINDEXED,
			sequence_number UNINDEXED,
			body,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, name string, seq int, body string) error {
	_, _ = tx.Exec(`DELETE FROM transcripts_fts WHERE name = ?`, name)
	_, err := tx.Exec(`INSERT INTO transcripts_fts (name, sequence_number, body) VALUES (?, ?, ?)`,
		name, seq, body)
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, name string) {
	_, _ = tx.Exec(`DELETE FROM transcripts_fts WHERE name = ?`, name)
}

// Search performs an FTS5 transcript search and returns matching episodes with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT name,
		       sequence_number,
		       snippet(transcripts_fts, 2, '<b>', '</b>', '...', 32)
		FROM transcripts_fts
		WHERE transcripts_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return scanSearchResults(rows)
}
