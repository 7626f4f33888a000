package mcpserver

// ReportFormatURI is the resource describing report and record formats.
const ReportFormatURI = "podlex://report-format"

// ReportFormat documents the data podlex produces so that LLM consumers can
// interpret tool results.
const ReportFormat = `# podlex Data Formats

## Words

Transcript text is lowercased and split on whitespace after markup and
punctuation are removed. Numbers, amounts such as "12€" or "100%", and "***"
are not words. Apostrophes other than the ASCII one stay inside words, so
"c’est" is a single word.

## First-occurrence report

` + "`analyze_articles`" + ` returns and stores (as first_occurrences.json) a
JSON list ordered by episode:

` + "```json" + `
[
  {"episode": 1, "count": 2, "words": ["bonjour", "tous"]},
  {"episode": 3, "count": 1, "words": ["chat"]}
]
` + "```" + `

- Every word of the corpus appears in exactly one entry: the lowest episode
  that contains it.
- ` + "`count`" + ` equals the length of ` + "`words`" + `; words are sorted.
- Episodes that introduce no new word are omitted.

## Article records

Each episode is stored as ` + "`<episode>.json`" + `:

` + "```json" + `
{"identifier": "https://example.com/04-theorie-genre/", "text": "<raw page>",
 "sequence_number": 4, "word_count": {"bonjour": 3}}
` + "```" + `

The episode number is taken from the last path segment of the identifier,
up to its first hyphen.
`
