// Package extract isolates transcript paragraphs from a podcast episode page.
//
// The page structure is fixed and narrow, so blocks are located by plain
// marker search rather than an HTML parser. A block runs from its opening
// marker to the next closing marker that follows it textually; nested
// containers of the same kind are therefore cut at the inner closer. That
// behavior is relied upon and must stay as is.
package extract

import "strings"

const (
	sectionOpen    = "<section"
	sectionClose   = "</section>"
	paragraphOpen  = "<p"
	paragraphClose = "</p>"

	// DefaultTranscriptMarker identifies the section holding the transcript.
	DefaultTranscriptMarker = "Transcription de"
)

// Extractor locates the transcript section by a marker phrase.
type Extractor struct {
	marker string
}

// New returns an Extractor matching marker. An empty marker falls back to
// DefaultTranscriptMarker.
func New(marker string) *Extractor {
	if marker == "" {
		marker = DefaultTranscriptMarker
	}
	return &Extractor{marker: marker}
}

// Marker returns the phrase used to recognise the transcript section.
func (e *Extractor) Marker() string {
	return e.marker
}

// TranscriptionSection returns the first section containing the marker, or
// "" when the page has no transcript.
func (e *Extractor) TranscriptionSection(sections []string) string {
	for _, s := range sections {
		if strings.Contains(s, e.marker) {
			return s
		}
	}
	return ""
}

// Paragraphs runs the full extraction on a page and returns the plain text of
// every transcript paragraph, in page order.
func (e *Extractor) Paragraphs(page string) []string {
	section := e.TranscriptionSection(Sections(page))
	return TextFromParagraphs(ParagraphSections(section))
}

var defaultExtractor = New(DefaultTranscriptMarker)

// TranscriptionSection uses DefaultTranscriptMarker.
func TranscriptionSection(sections []string) string {
	return defaultExtractor.TranscriptionSection(sections)
}

// Paragraphs uses DefaultTranscriptMarker.
func Paragraphs(page string) []string {
	return defaultExtractor.Paragraphs(page)
}

// Sections returns every <section> block of page.
func Sections(page string) []string {
	return blocks(page, sectionOpen, sectionClose)
}

// ParagraphSections returns every <p> block of section.
func ParagraphSections(section string) []string {
	return blocks(section, paragraphOpen, paragraphClose)
}

// blocks returns, for each occurrence of open, the substring from it through
// the first close found after it. Without a following close the block runs to
// the end of data.
func blocks(data, open, close string) []string {
	var out []string
	for offset := 0; ; {
		i := strings.Index(data[offset:], open)
		if i < 0 {
			return out
		}
		start := offset + i
		end := len(data)
		if j := strings.Index(data[start:], close); j >= 0 {
			end = start + j + len(close)
		}
		out = append(out, data[start:end])
		offset = start + len(open)
	}
}
