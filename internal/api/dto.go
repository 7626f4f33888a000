package api

import (
	"github.com/starford/podlex/internal/corpus"
	"github.com/starford/podlex/internal/index"
	"github.com/starford/podlex/internal/models"
)

// ArticleDetail is the full article response.
type ArticleDetail struct {
	SequenceNumber int                    `json:"sequence_number" example:"4" validate:"required"`
	Identifier     string                 `json:"identifier" example:"https://example.com/04-theorie-genre/" validate:"required"`
	Words          int                    `json:"words" example:"812" validate:"required"`
	Tokens         int                    `json:"tokens" example:"2650" validate:"required"`
	TopWords       []corpus.WordFrequency `json:"top_words" validate:"required"`
	Transcript     []string               `json:"transcript" validate:"required"`
}

// ArticleListResponse wraps article listings.
type ArticleListResponse struct {
	Articles []models.ArticleSummary `json:"articles" validate:"required"`
	Total    int                     `json:"total" example:"42" validate:"required"`
}

// WordDetail describes how one word is used across episodes.
type WordDetail struct {
	Word         string                  `json:"word" example:"bonjour" validate:"required"`
	Found        bool                    `json:"found"`
	FirstEpisode int                     `json:"first_episode,omitempty" example:"1"`
	Total        int                     `json:"total" example:"37"`
	Occurrences  []models.WordOccurrence `json:"occurrences" validate:"required"`
}

// FirstOccurrencesResponse wraps the first-occurrence report.
type FirstOccurrencesResponse struct {
	Episodes []corpus.EpisodeWords `json:"episodes" validate:"required"`
	Total    int                   `json:"total" example:"5120" validate:"required"`
}

// FrequenciesResponse wraps a word ranking.
type FrequenciesResponse struct {
	Words []corpus.WordFrequency `json:"words" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}
