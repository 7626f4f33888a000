// Package models defines the shared data types of podlex.
package models

import "time"

// ArticleMeta describes one article record file in the store.
type ArticleMeta struct {
	Name      string    `json:"name"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ArticleSummary is the lightweight view of an article used in listings.
type ArticleSummary struct {
	SequenceNumber int       `json:"sequence_number"`
	Identifier     string    `json:"identifier"`
	Words          int       `json:"words"`
	Tokens         int       `json:"tokens"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
}

// WordOccurrence is the count of a word in one episode.
type WordOccurrence struct {
	Episode int `json:"episode"`
	Count   int `json:"count"`
}

// ItemFailure is a per-item error reported by batch operations.
type ItemFailure struct {
	Identifier string `json:"identifier"`
	Error      string `json:"error"`
}
