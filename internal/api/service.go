package api

import (
	"context"
	"fmt"

	"github.com/starford/podlex/internal/articleservice"
	"github.com/starford/podlex/internal/corpus"
	"github.com/starford/podlex/internal/index"
	"github.com/starford/podlex/internal/models"
	"github.com/starford/podlex/internal/report"
)

const articleTopWords = 20

// Service answers API queries. Listings and word lookups go to the
// vocabulary index; single articles and the report come from the store.
type Service struct {
	articles *articleservice.Service
	db       index.ArticleIndex
}

// NewService creates a new API service.
func NewService(articles *articleservice.Service, db index.ArticleIndex) *Service {
	return &Service{articles: articles, db: db}
}

// ListArticles returns every indexed article ordered by episode.
func (s *Service) ListArticles(_ context.Context) ([]models.ArticleSummary, error) {
	return s.db.ListArticles()
}

// Article returns one episode with its transcript and most frequent words.
func (s *Service) Article(ctx context.Context, episode int) (*ArticleDetail, error) {
	a, err := s.articles.Article(ctx, episode)
	if err != nil {
		return nil, err
	}
	paragraphs := s.articles.Transcript(a)
	if paragraphs == nil {
		paragraphs = []string{}
	}
	return &ArticleDetail{
		SequenceNumber: a.SequenceNumber(),
		Identifier:     a.Identifier(),
		Words:          len(a.WordCount()),
		Tokens:         a.Tokens(),
		TopWords:       corpus.TopWords(a.WordCount(), articleTopWords),
		Transcript:     paragraphs,
	}, nil
}

// FirstOccurrences computes the current first-occurrence report.
func (s *Service) FirstOccurrences(ctx context.Context) ([]corpus.EpisodeWords, error) {
	res, err := s.articles.FirstOccurrences(ctx)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = []corpus.EpisodeWords{}
	}
	return res, nil
}

// ReportHTML renders the current report as an HTML page.
func (s *Service) ReportHTML(ctx context.Context) (string, error) {
	res, err := s.articles.FirstOccurrences(ctx)
	if err != nil {
		return "", err
	}
	body, err := report.HTML(res)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(htmlPage, body), nil
}

const htmlPage = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>podlex report</title></head>
<body>
%s</body></html>
`

// Frequencies returns the corpus-wide word ranking.
func (s *Service) Frequencies(_ context.Context, limit int) ([]corpus.WordFrequency, error) {
	out, err := s.db.TopWords(limit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []corpus.WordFrequency{}
	}
	return out, nil
}

// Word returns the per-episode usage of word. Found is false when no
// article contains it.
func (s *Service) Word(_ context.Context, word string) (*WordDetail, error) {
	occ, err := s.db.Occurrences(word)
	if err != nil {
		return nil, err
	}
	d := &WordDetail{Word: word, Occurrences: []models.WordOccurrence{}}
	for i, o := range occ {
		if i == 0 {
			d.FirstEpisode = o.Episode
		}
		d.Total += o.Count
		d.Occurrences = append(d.Occurrences, o)
	}
	d.Found = len(occ) > 0
	return d, nil
}

// Search delegates transcript search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	out, err := s.db.Search(query, limit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []index.SearchResult{}
	}
	return out, nil
}

// Stats summarises the indexed corpus.
func (s *Service) Stats(_ context.Context) (index.Stats, error) {
	return s.db.Stats()
}
