package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/podlex/internal/corpus"
	"github.com/starford/podlex/internal/models"
)

// ArticleRow represents a row in the articles table.
type ArticleRow struct {
	Name           string
	SequenceNumber int
	Identifier     string
	Checksum       string
	UpdatedAt      time.Time
}

// SearchResult represents one transcript search hit.
type SearchResult struct {
	Name           string `json:"name"`
	SequenceNumber int    `json:"sequence_number"`
	Snippet        string `json:"snippet"`
}

// Stats summarises the indexed corpus.
type Stats struct {
	Articles   int `json:"articles"`
	Vocabulary int `json:"vocabulary"`
	Tokens     int `json:"tokens"`
}

// UpsertArticle inserts or replaces an article, its FTS entry, and its word
// counts within a transaction.
func (db *DB) UpsertArticle(a ArticleRow, body string, counts map[string]int) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tokens := 0
	for _, n := range counts {
		tokens += n
	}

	_, err = tx.Exec(`
		INSERT INTO articles (name, sequence_number, identifier, checksum, words, tokens, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			sequence_number = excluded.sequence_number,
			identifier      = excluded.identifier,
			checksum        = excluded.checksum,
			words           = excluded.words,
			tokens          = excluded.tokens,
			body            = excluded.body,
			updated_at      = excluded.updated_at
	`, a.Name, a.SequenceNumber, a.Identifier, a.Checksum, len(counts), tokens, body, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert article: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, a.Name, a.SequenceNumber, body); err != nil {
		return err
	}

	// Replace word counts: delete old then bulk insert.
	if _, err := tx.Exec(`DELETE FROM word_counts WHERE name = ?`, a.Name); err != nil {
		return fmt.Errorf("index: clear word counts: %w", err)
	}
	if len(counts) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO word_counts (name, word, count) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare word insert: %w", err)
		}
		defer stmt.Close()
		for w, n := range counts {
			if _, err := stmt.Exec(a.Name, w, n); err != nil {
				return fmt.Errorf("index: insert word: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteArticle removes an article, its FTS entry, and its word counts.
func (db *DB) DeleteArticle(name string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, name)
	_, _ = tx.Exec(`DELETE FROM word_counts WHERE name = ?`, name)
	_, _ = tx.Exec(`DELETE FROM articles WHERE name = ?`, name)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a record file, or empty string if not found.
func (db *DB) GetChecksum(name string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM articles WHERE name = ?`, name).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns the checksum of every indexed record file.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT name, checksum FROM articles`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var name, cs string
		if err := rows.Scan(&name, &cs); err != nil {
			return nil, err
		}
		out[name] = cs
	}
	return out, rows.Err()
}

// ListArticles returns a summary of every indexed article ordered by episode.
func (db *DB) ListArticles() ([]models.ArticleSummary, error) {
	rows, err := db.conn.Query(`
		SELECT sequence_number, identifier, words, tokens, updated_at
		FROM articles
		ORDER BY sequence_number, name
	`)
	if err != nil {
		return nil, fmt.Errorf("index: list articles: %w", err)
	}
	defer rows.Close()

	var out []models.ArticleSummary
	for rows.Next() {
		var s models.ArticleSummary
		if err := rows.Scan(&s.SequenceNumber, &s.Identifier, &s.Words, &s.Tokens, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Occurrences returns the per-episode counts of word, ordered by episode.
func (db *DB) Occurrences(word string) ([]models.WordOccurrence, error) {
	rows, err := db.conn.Query(`
		SELECT a.sequence_number, SUM(w.count)
		FROM word_counts w
		JOIN articles a ON a.name = w.name
		WHERE w.word = ?
		GROUP BY a.sequence_number
		ORDER BY a.sequence_number
	`, word)
	if err != nil {
		return nil, fmt.Errorf("index: occurrences: %w", err)
	}
	defer rows.Close()

	var out []models.WordOccurrence
	for rows.Next() {
		var o models.WordOccurrence
		if err := rows.Scan(&o.Episode, &o.Count); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// FirstOccurrence returns the lowest episode containing word.
func (db *DB) FirstOccurrence(word string) (int, bool, error) {
	var ep sql.NullInt64
	err := db.conn.QueryRow(`
		SELECT MIN(a.sequence_number)
		FROM word_counts w
		JOIN articles a ON a.name = w.name
		WHERE w.word = ?
	`, word).Scan(&ep)
	if err != nil {
		return 0, false, fmt.Errorf("index: first occurrence: %w", err)
	}
	if !ep.Valid {
		return 0, false, nil
	}
	return int(ep.Int64), true, nil
}

// TopWords returns the most frequent words across all articles.
func (db *DB) TopWords(limit int) ([]corpus.WordFrequency, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.Query(`
		SELECT word, SUM(count) AS total
		FROM word_counts
		GROUP BY word
		ORDER BY total DESC, word ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("index: top words: %w", err)
	}
	defer rows.Close()

	var out []corpus.WordFrequency
	for rows.Next() {
		var f corpus.WordFrequency
		if err := rows.Scan(&f.Word, &f.Count); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Stats counts articles, distinct words and tokens.
func (db *DB) Stats() (Stats, error) {
	var s Stats
	err := db.conn.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM articles),
			(SELECT COUNT(DISTINCT word) FROM word_counts),
			(SELECT COALESCE(SUM(tokens), 0) FROM articles)
	`).Scan(&s.Articles, &s.Vocabulary, &s.Tokens)
	if err != nil {
		return Stats{}, fmt.Errorf("index: stats: %w", err)
	}
	return s, nil
}

// scanSearchResults drains rows of (name, sequence_number, snippet).
func scanSearchResults(rows *sql.Rows) ([]SearchResult, error) {
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Name, &r.SequenceNumber, &r.Snippet); err != nil {
			return nil, fmt.Errorf("index: scan search result: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
