//go:build sqlite_fts5

package index

import "testing"

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM transcripts_fts`).Scan(&count); err != nil {
		t.Fatalf("transcripts_fts table missing: %v", err)
	}
}

func TestFTS5_DeleteRemovesFromFTS(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertArticle(row("7.json", 7), "contenu qui disparait", nil)
	_ = db.DeleteArticle("7.json")

	results, _ := db.Search("disparait", 10)
	if len(results) != 0 {
		t.Errorf("deleted article still in FTS index: %+v", results)
	}
}

func TestFTS5_UpsertReplacesContent(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertArticle(row("8.json", 8), "texte original", nil)
	_ = db.UpsertArticle(row("8.json", 8), "texte remplacé", nil)

	if results, _ := db.Search("original", 10); len(results) != 0 {
		t.Error("old FTS content should be gone")
	}
	if results, _ := db.Search("remplacé", 10); len(results) != 1 || results[0].SequenceNumber != 8 {
		t.Errorf("FTS not updated: %+v", results)
	}
}
