// Package report persists and renders first-occurrence reports.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/starford/podlex/internal/corpus"
)

// Output formats accepted by Render.
const (
	FormatAuto     = "auto"
	FormatTable    = "table"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// Formats lists every accepted format name.
var Formats = []string{FormatAuto, FormatTable, FormatJSON, FormatMarkdown, FormatHTML}

const barWidth = 40

// WriteJSON stores report at path atomically.
func WriteJSON(path string, report []corpus.EpisodeWords) error {
	data, err := Encode(report)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("report: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".podlex-report-*")
	if err != nil {
		return fmt.Errorf("report: create temp: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after rename
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("report: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("report: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("report: rename: %w", err)
	}
	return nil
}

// ReadJSON loads a report written by WriteJSON.
func ReadJSON(path string) ([]corpus.EpisodeWords, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("report: read: %w", err)
	}
	var out []corpus.EpisodeWords
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("report: decode %s: %w", path, err)
	}
	return out, nil
}

// Encode returns the JSON form of report: a list of {episode, count, words}.
func Encode(report []corpus.EpisodeWords) ([]byte, error) {
	if report == nil {
		report = []corpus.EpisodeWords{}
	}
	data, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("report: encode: %w", err)
	}
	return data, nil
}

// Total is the number of distinct words in the report.
func Total(report []corpus.EpisodeWords) int {
	n := 0
	for _, e := range report {
		n += e.Count
	}
	return n
}

// Table renders the report as a rounded terminal table with a bar per
// episode scaled to the largest count.
func Table(report []corpus.EpisodeWords) string {
	points := corpus.Cumulative(report)
	peak := 0
	for _, p := range points {
		peak = max(peak, p.New)
	}

	tw := newTableWriter()
	tw.SetTitle("New words per episode, total: %d", Total(report))
	tw.AppendHeader(table.Row{"Episode", "New", "Cumulative", ""})
	for _, p := range points {
		tw.AppendRow(table.Row{p.Episode, p.New, p.Vocabulary, bar(p.New, peak)})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

// newTableWriter returns a rounded table writer that prints headers as given.
// StyleRounded upper-cases them by default.
func newTableWriter() table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	return tw
}

func bar(n, peak int) string {
	if peak == 0 || n == 0 {
		return ""
	}
	w := n * barWidth / peak
	if w == 0 {
		w = 1
	}
	return strings.Repeat("█", w)
}

// Markdown renders the report as a Markdown document with a summary table
// and the word list of each episode.
func Markdown(report []corpus.EpisodeWords) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# New words per episode\n\nTotal: %d words\n\n", Total(report))
	b.WriteString("| Episode | New | Cumulative |\n|---:|---:|---:|\n")
	for _, p := range corpus.Cumulative(report) {
		fmt.Fprintf(&b, "| %d | %d | %d |\n", p.Episode, p.New, p.Vocabulary)
	}
	for _, e := range report {
		fmt.Fprintf(&b, "\n## Episode %d\n\n%s\n", e.Episode, strings.Join(e.Words, ", "))
	}
	return b.String()
}

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

// HTML renders the Markdown form of the report as an HTML fragment.
func HTML(report []corpus.EpisodeWords) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(Markdown(report)), &buf); err != nil {
		return "", fmt.Errorf("report: render html: %w", err)
	}
	return buf.String(), nil
}

// ResolveFormat turns FormatAuto into table on a terminal and JSON
// otherwise. Other values pass through unchanged.
func ResolveFormat(format string, w io.Writer) string {
	if format != "" && format != FormatAuto {
		return format
	}
	if isTerminal(w) {
		return FormatTable
	}
	return FormatJSON
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Render writes report to w in format.
func Render(w io.Writer, report []corpus.EpisodeWords, format string) error {
	var out string
	switch ResolveFormat(format, w) {
	case FormatTable:
		out = Table(report) + "\n"
	case FormatJSON:
		data, err := Encode(report)
		if err != nil {
			return err
		}
		out = string(data) + "\n"
	case FormatMarkdown:
		out = Markdown(report)
	case FormatHTML:
		html, err := HTML(report)
		if err != nil {
			return err
		}
		out = html
	default:
		return fmt.Errorf("report: unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
	_, err := io.WriteString(w, out)
	return err
}

// FrequencyTable renders a word ranking as a rounded table.
func FrequencyTable(freqs []corpus.WordFrequency) string {
	tw := newTableWriter()
	tw.AppendHeader(table.Row{"#", "Word", "Count"})
	for i, f := range freqs {
		tw.AppendRow(table.Row{strconv.Itoa(i + 1), f.Word, f.Count})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	return tw.Render()
}
