package extract

import (
	"html"
	"regexp"
	"strings"
)

// Step is one named string transformation of a paragraph.
type Step struct {
	Name  string
	Apply func(string) string
}

var (
	wrapperOpenRe = regexp.MustCompile(`<(?:strong|span).*?>`)
	anchorRe      = regexp.MustCompile(`(?s)<a\b.*?</a>`)
	bracketRe     = regexp.MustCompile(`\[.*?\]`)

	inlineTags = strings.NewReplacer(
		"</li>", " ",
		"</i>", " ",
		"<i>", " ",
		"<br/>", " ",
		"<br />", " ",
		"<br>", " ",
		"<p>", " ",
		"</p>", " ",
		"</span>", " ",
		"</strong>", " ",
		"“", "",
	)

	punctuation = strings.NewReplacer(
		"\n", " ",
		".", " ",
		",", " ",
		":", " ",
		"'", " ",
		"(", " ",
		")", " ",
		"?", " ",
		"!", " ",
		"$", " ",
		"€", " ",
		"£", " ",
		"%", " ",
	)
)

// Pipeline is the ordered list of steps TextFromParagraph applies. Entities
// are decoded before any tag is matched, every removal happens before
// punctuation is normalised, and whitespace is collapsed last.
var Pipeline = []Step{
	{Name: "decode-entities", Apply: html.UnescapeString},
	{Name: "strip-inline-tags", Apply: inlineTags.Replace},
	{Name: "strip-wrapper-open-tags", Apply: func(s string) string { return wrapperOpenRe.ReplaceAllString(s, " ") }},
	{Name: "strip-anchors", Apply: func(s string) string { return anchorRe.ReplaceAllString(s, " ") }},
	{Name: "strip-bracket-annotations", Apply: func(s string) string { return bracketRe.ReplaceAllString(s, "") }},
	{Name: "normalize-punctuation", Apply: punctuation.Replace},
	{Name: "collapse-whitespace", Apply: func(s string) string { return strings.Join(strings.Fields(s), " ") }},
}

// TextFromParagraph converts one paragraph's raw markup to plain text.
func TextFromParagraph(markup string) string {
	for _, step := range Pipeline {
		markup = step.Apply(markup)
	}
	return markup
}

// TextFromParagraphs converts every paragraph, preserving order.
func TextFromParagraphs(paragraphs []string) []string {
	out := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		out[i] = TextFromParagraph(p)
	}
	return out
}
