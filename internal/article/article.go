// Package article defines the per-episode Article value and the page
// processing pipeline that derives its word counts.
package article

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/starford/podlex/internal/extract"
	"github.com/starford/podlex/internal/tokenizer"
)

// ErrMalformedIdentifier is wrapped by every ParseError.
var ErrMalformedIdentifier = errors.New("malformed identifier")

// ParseError reports an identifier whose episode number cannot be parsed.
type ParseError struct {
	Identifier string
	Segment    string
	Err        error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("article: parse sequence number from %q (segment %q): %v", e.Identifier, e.Segment, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrMalformedIdentifier, e.Err}
}

// Article is one episode transcript. It is built once by New or FromRecord and
// never changes afterwards.
type Article struct {
	identifier     string
	text           string
	sequenceNumber int
	wordCount      map[string]int
}

// Record is the persisted form of an Article.
type Record struct {
	Identifier     string         `json:"identifier"`
	Text           string         `json:"text"`
	SequenceNumber *int           `json:"sequence_number,omitempty"`
	WordCount      map[string]int `json:"word_count"`

	// FileName is the identifier key written by older tooling.
	FileName string `json:"file_name,omitempty"`
}

// New builds an Article from its identifier (URL or file name) and the raw
// page text, deriving the episode number and word counts.
func New(identifier, raw string) (Article, error) {
	return NewWithExtractor(identifier, raw, nil)
}

// NewWithExtractor is New with a custom transcript extractor. A nil extractor
// uses the default marker.
func NewWithExtractor(identifier, raw string, ex *extract.Extractor) (Article, error) {
	seq, err := ParseSequenceNumber(identifier)
	if err != nil {
		return Article{}, err
	}
	return Article{
		identifier:     identifier,
		text:           raw,
		sequenceNumber: seq,
		wordCount:      processPage(raw, ex),
	}, nil
}

// FromRecord restores an Article. Cached fields present in the record are
// trusted; missing ones are derived with the default extractor.
func FromRecord(r Record) (Article, error) {
	return FromRecordWithExtractor(r, nil)
}

// FromRecordWithExtractor is FromRecord deriving a missing word count with ex.
// A nil extractor uses the default marker.
func FromRecordWithExtractor(r Record, ex *extract.Extractor) (Article, error) {
	id := r.Identifier
	if id == "" {
		id = r.FileName
	}

	var seq int
	if r.SequenceNumber != nil {
		seq = *r.SequenceNumber
	} else {
		n, err := ParseSequenceNumber(id)
		if err != nil {
			return Article{}, err
		}
		seq = n
	}

	wc := maps.Clone(r.WordCount)
	if wc == nil {
		wc = processPage(r.Text, ex)
	}

	return Article{identifier: id, text: r.Text, sequenceNumber: seq, wordCount: wc}, nil
}

// Record returns the persisted form of a.
func (a Article) Record() Record {
	seq := a.sequenceNumber
	return Record{
		Identifier:     a.identifier,
		Text:           a.text,
		SequenceNumber: &seq,
		WordCount:      a.WordCount(),
	}
}

func (a Article) Identifier() string  { return a.identifier }
func (a Article) Text() string        { return a.text }
func (a Article) SequenceNumber() int { return a.sequenceNumber }

// WordCount returns a copy of the word frequency table.
func (a Article) WordCount() map[string]int {
	wc := maps.Clone(a.wordCount)
	if wc == nil {
		wc = map[string]int{}
	}
	return wc
}

// Count returns how often word occurs in the transcript.
func (a Article) Count(word string) int {
	return a.wordCount[word]
}

// Contains reports whether word is part of the article's vocabulary.
func (a Article) Contains(word string) bool {
	_, ok := a.wordCount[word]
	return ok
}

// Vocabulary returns the article's distinct words, sorted.
func (a Article) Vocabulary() []string {
	return slices.Sorted(maps.Keys(a.wordCount))
}

// Tokens returns the total number of counted tokens.
func (a Article) Tokens() int {
	n := 0
	for _, c := range a.wordCount {
		n += c
	}
	return n
}

// Equal compares identifier, text and derived fields.
func (a Article) Equal(b Article) bool {
	return a.identifier == b.identifier &&
		a.text == b.text &&
		a.sequenceNumber == b.sequenceNumber &&
		maps.Equal(a.wordCount, b.wordCount)
}

// Compare orders articles by episode number only.
func Compare(a, b Article) int {
	return cmp.Compare(a.sequenceNumber, b.sequenceNumber)
}

// ProcessPage runs markup extraction and tokenization over a raw page and
// returns its word counts. A page without a transcript yields an empty map.
func ProcessPage(raw string) map[string]int {
	return processPage(raw, nil)
}

func processPage(raw string, ex *extract.Extractor) map[string]int {
	var paragraphs []string
	if ex == nil {
		paragraphs = extract.Paragraphs(raw)
	} else {
		paragraphs = ex.Paragraphs(raw)
	}
	return tokenizer.GroupWordsInList(paragraphs)
}

// ParseSequenceNumber derives the episode number from a URL or file name:
// the last path segment up to its first hyphen, without a ".json" suffix,
// parsed as a number and truncated.
func ParseSequenceNumber(identifier string) (int, error) {
	trimmed := strings.Trim(strings.TrimSpace(identifier), "/")
	segment := trimmed[strings.LastIndex(trimmed, "/")+1:]
	head, _, _ := strings.Cut(segment, "-")
	head = strings.TrimSuffix(head, ".json")

	f, err := strconv.ParseFloat(strings.TrimSpace(head), 64)
	if err != nil {
		return 0, &ParseError{Identifier: identifier, Segment: head, Err: err}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0, &ParseError{Identifier: identifier, Segment: head, Err: fmt.Errorf("%q is out of range", head)}
	}
	return int(f), nil
}
