// Package tokenizer turns transcript text into lowercase word tokens and
// frequency tables.
package tokenizer

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	numberRe   = regexp.MustCompile(`^[0-9]+$`)
	amountRe   = regexp.MustCompile(`^[0-9]+[€$£%]+$`)
	asterismRe = regexp.MustCompile(`^\*\*\*$`)
)

// SplitWords lowercases text and splits it on whitespace, dropping junk
// tokens (numbers, amounts, "***"). Bracketed annotations are not removed
// here; that happens during markup extraction.
func SplitWords(text string) []string {
	// cases.Caser is stateful, so one per call.
	lower := cases.Lower(language.Und).String(norm.NFC.String(text))

	fields := strings.Fields(lower)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if w := removeJunk(f); w != "" {
			out = append(out, w)
		}
	}
	return out
}

// removeJunk returns "" for non-lexical tokens and the trimmed token otherwise.
func removeJunk(word string) string {
	if amountRe.MatchString(word) || numberRe.MatchString(word) || asterismRe.MatchString(word) {
		return ""
	}
	return strings.TrimSpace(word)
}

// GroupWords counts occurrences of each token.
func GroupWords(tokens []string) map[string]int {
	words := make(map[string]int, len(tokens))
	for _, t := range tokens {
		words[t]++
	}
	return words
}

// GroupWordsInList tokenizes and counts every paragraph independently and
// sums the per-paragraph tables.
func GroupWordsInList(paragraphs []string) map[string]int {
	words := make(map[string]int)
	for _, p := range paragraphs {
		for w, n := range GroupWords(SplitWords(p)) {
			words[w] += n
		}
	}
	return words
}

// Normalize folds a lookup term the same way SplitWords folds transcript
// text, so that user input matches stored words.
func Normalize(word string) string {
	return strings.TrimSpace(cases.Lower(language.Und).String(norm.NFC.String(word)))
}
