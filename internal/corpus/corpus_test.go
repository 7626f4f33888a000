package corpus

import (
	"maps"
	"reflect"
	"slices"
	"testing"

	"github.com/starford/podlex/internal/article"
)

func mustArticle(t *testing.T, seq int, wc map[string]int) article.Article {
	t.Helper()
	a, err := article.FromRecord(article.Record{
		Identifier:     "file",
		SequenceNumber: &seq,
		WordCount:      wc,
	})
	if err != nil {
		t.Fatalf("FromRecord: %v", err)
	}
	return a
}

func TestAnalyzeArticles(t *testing.T) {
	articles := []article.Article{
		mustArticle(t, 1, map[string]int{"occurstwice": 1, "onlyinone": 1}),
		mustArticle(t, 2, map[string]int{"occurstwice": 1, "onlyintwo": 1}),
	}
	got := AnalyzeArticles(articles)
	want := []EpisodeWords{
		{Episode: 1, Count: 2, Words: []string{"occurstwice", "onlyinone"}},
		{Episode: 2, Count: 1, Words: []string{"onlyintwo"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AnalyzeArticles = %+v, want %+v", got, want)
	}
}

func TestAnalyzeArticles_InputOrderIrrelevant(t *testing.T) {
	a := mustArticle(t, 3, map[string]int{"c": 1, "shared": 2})
	b := mustArticle(t, 1, map[string]int{"a": 1, "shared": 1})
	c := mustArticle(t, 2, map[string]int{"b": 4, "a": 1})

	first := AnalyzeArticles([]article.Article{a, b, c})
	second := AnalyzeArticles([]article.Article{c, a, b})
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ by input order: %+v vs %+v", first, second)
	}
	want := []EpisodeWords{
		{Episode: 1, Count: 2, Words: []string{"a", "shared"}},
		{Episode: 2, Count: 1, Words: []string{"b"}},
		{Episode: 3, Count: 1, Words: []string{"c"}},
	}
	if !reflect.DeepEqual(first, want) {
		t.Errorf("AnalyzeArticles = %+v, want %+v", first, want)
	}
}

func TestAnalyzeArticles_EpisodeWithNoNewWordsOmitted(t *testing.T) {
	got := AnalyzeArticles([]article.Article{
		mustArticle(t, 1, map[string]int{"x": 1}),
		mustArticle(t, 2, map[string]int{"x": 5}),
	})
	if len(got) != 1 || got[0].Episode != 1 {
		t.Errorf("AnalyzeArticles = %+v", got)
	}
}

func TestAnalyzeArticles_Empty(t *testing.T) {
	if got := AnalyzeArticles(nil); len(got) != 0 {
		t.Errorf("AnalyzeArticles(nil) = %+v", got)
	}
}

func TestAnalyzeArticles_Partition(t *testing.T) {
	articles := []article.Article{
		mustArticle(t, 4, map[string]int{"le": 3, "chat": 1, "noir": 1}),
		mustArticle(t, 1, map[string]int{"le": 1, "chien": 2}),
		mustArticle(t, 9, map[string]int{"chat": 1, "blanc": 1, "chien": 1}),
		mustArticle(t, 4, map[string]int{"gris": 1}),
	}
	seen := make(map[string]int)
	for _, e := range AnalyzeArticles(articles) {
		if e.Count != len(e.Words) {
			t.Errorf("episode %d: count %d != len(words) %d", e.Episode, e.Count, len(e.Words))
		}
		if !slices.IsSorted(e.Words) {
			t.Errorf("episode %d: words not sorted: %v", e.Episode, e.Words)
		}
		for _, w := range e.Words {
			seen[w]++
			if ep, _ := WordOccursFirstIn(w, articles); ep != e.Episode {
				t.Errorf("word %q reported in %d, first occurs in %d", w, e.Episode, ep)
			}
		}
	}
	vocab := Vocabulary(articles)
	if len(seen) != len(vocab) {
		t.Errorf("partition covers %d words, vocabulary has %d", len(seen), len(vocab))
	}
	for _, w := range vocab {
		if seen[w] != 1 {
			t.Errorf("word %q appears %d times in the report", w, seen[w])
		}
	}
}

func TestWordOccursFirstIn(t *testing.T) {
	articles := []article.Article{
		mustArticle(t, 5, map[string]int{"x": 1}),
		mustArticle(t, 2, map[string]int{"x": 1, "y": 1}),
		mustArticle(t, 8, map[string]int{"z": 1}),
	}
	if ep, ok := WordOccursFirstIn("x", articles); !ok || ep != 2 {
		t.Errorf("x: got %d, %v", ep, ok)
	}
	if ep, ok := WordOccursFirstIn("z", articles); !ok || ep != 8 {
		t.Errorf("z: got %d, %v", ep, ok)
	}
	if _, ok := WordOccursFirstIn("missing", articles); ok {
		t.Error("missing word should not be found")
	}
}

func TestSumCounts(t *testing.T) {
	got := SumCounts([]article.Article{
		mustArticle(t, 1, map[string]int{"a": 2, "b": 1}),
		mustArticle(t, 2, map[string]int{"a": 3, "c": 4}),
	})
	want := map[string]int{"a": 5, "b": 1, "c": 4}
	if !maps.Equal(got, want) {
		t.Errorf("SumCounts = %v, want %v", got, want)
	}
}

func TestTopWords(t *testing.T) {
	counts := map[string]int{"le": 10, "la": 10, "chat": 3, "un": 7}
	got := TopWords(counts, 3)
	want := []WordFrequency{{"la", 10}, {"le", 10}, {"un", 7}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopWords = %v, want %v", got, want)
	}
	if all := TopWords(counts, 0); len(all) != 4 {
		t.Errorf("TopWords(0) len = %d, want 4", len(all))
	}
}

func TestCumulative(t *testing.T) {
	got := Cumulative([]EpisodeWords{
		{Episode: 3, Count: 2},
		{Episode: 1, Count: 5},
	})
	want := []CumulativePoint{
		{Episode: 1, New: 5, Vocabulary: 5},
		{Episode: 3, New: 2, Vocabulary: 7},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Cumulative = %v, want %v", got, want)
	}
}
