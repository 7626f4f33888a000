// Package corpus aggregates word statistics across a series of articles.
package corpus

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/starford/podlex/internal/article"
)

// EpisodeWords lists the words whose first appearance is Episode.
type EpisodeWords struct {
	Episode int      `json:"episode"`
	Count   int      `json:"count"`
	Words   []string `json:"words"`
}

// WordFrequency is one entry of a frequency ranking.
type WordFrequency struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// CumulativePoint is the vocabulary size reached after an episode.
type CumulativePoint struct {
	Episode    int `json:"episode"`
	New        int `json:"new"`
	Vocabulary int `json:"vocabulary"`
}

// SumCounts adds up every article's word counts.
func SumCounts(articles []article.Article) map[string]int {
	counts := make(map[string]int)
	for _, a := range articles {
		for w, n := range a.WordCount() {
			counts[w] += n
		}
	}
	return counts
}

// Vocabulary returns the sorted union of all article vocabularies.
func Vocabulary(articles []article.Article) []string {
	seen := make(map[string]struct{})
	for _, a := range articles {
		for _, w := range a.Vocabulary() {
			seen[w] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// WordOccursFirstIn returns the lowest episode number among articles
// containing word. ok is false when no article contains it.
func WordOccursFirstIn(word string, articles []article.Article) (episode int, ok bool) {
	for _, a := range articles {
		if !a.Contains(word) {
			continue
		}
		if !ok || a.SequenceNumber() < episode {
			episode, ok = a.SequenceNumber(), true
		}
	}
	return episode, ok
}

// AnalyzeArticles assigns every word of the corpus to the episode where it
// first occurs and returns one entry per such episode, ordered by episode,
// words sorted. Each word appears in exactly one entry.
func AnalyzeArticles(articles []article.Article) []EpisodeWords {
	byEpisode := make(map[int][]string)
	for _, w := range Vocabulary(articles) {
		ep, ok := WordOccursFirstIn(w, articles)
		if !ok {
			panic(fmt.Sprintf("corpus: word %q missing from every article", w))
		}
		// Vocabulary is sorted, so appending keeps each list sorted.
		byEpisode[ep] = append(byEpisode[ep], w)
	}

	out := make([]EpisodeWords, 0, len(byEpisode))
	for _, ep := range slices.Sorted(maps.Keys(byEpisode)) {
		words := byEpisode[ep]
		out = append(out, EpisodeWords{Episode: ep, Count: len(words), Words: words})
	}
	return out
}

// TopWords ranks counts by frequency, ties broken alphabetically. n <= 0
// returns the full ranking.
func TopWords(counts map[string]int, n int) []WordFrequency {
	out := make([]WordFrequency, 0, len(counts))
	for w, c := range counts {
		out = append(out, WordFrequency{Word: w, Count: c})
	}
	slices.SortFunc(out, func(a, b WordFrequency) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Word, b.Word)
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// Cumulative turns a first-occurrence report into a running vocabulary size.
func Cumulative(report []EpisodeWords) []CumulativePoint {
	sorted := slices.Clone(report)
	slices.SortFunc(sorted, func(a, b EpisodeWords) int { return cmp.Compare(a.Episode, b.Episode) })

	out := make([]CumulativePoint, len(sorted))
	total := 0
	for i, e := range sorted {
		total += e.Count
		out[i] = CumulativePoint{Episode: e.Episode, New: e.Count, Vocabulary: total}
	}
	return out
}
