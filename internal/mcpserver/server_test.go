package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/podlex/internal/articleservice"
	"github.com/starford/podlex/internal/corpus"
	"github.com/starford/podlex/internal/index"
	"github.com/starford/podlex/internal/testutil"
)

func testServer(t *testing.T) (*Server, *articleservice.Service) {
	t.Helper()

	_, store := testutil.TestStore(t)
	testutil.SeedArticle(t, store, 1, "Bonjour le monde")
	testutil.SeedArticle(t, store, 3, "Le monde du chat", "Le chat noir")

	db := testutil.TestDB(t)
	if err := index.Sync(db, store, nil, testutil.QuietLogger()); err != nil {
		t.Fatal(err)
	}

	articles := articleservice.New(store, nil,
		articleservice.WithLogger(testutil.QuietLogger()),
		articleservice.WithReportPath(filepath.Join(t.TempDir(), "first_occurrences.json")),
	)
	return New(articles, db, "test"), articles
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper; call the handlers.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "analyze_articles":
		result, err = srv.analyzeArticles(ctx, req)
	case "word_first_occurrence":
		result, err = srv.wordFirstOccurrence(ctx, req)
	case "word_occurrences":
		result, err = srv.wordOccurrences(ctx, req)
	case "top_words":
		result, err = srv.topWords(ctx, req)
	case "search_transcripts":
		result, err = srv.searchTranscripts(ctx, req)
	case "get_article":
		result, err = srv.getArticle(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestAnalyzeArticles(t *testing.T) {
	srv, articles := testServer(t)

	r := callTool(t, srv, "analyze_articles", map[string]any{})
	if r.IsError {
		t.Fatalf("analyze failed: %s", resultText(r))
	}
	var got []corpus.EpisodeWords
	if err := json.Unmarshal([]byte(resultText(r)), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0].Episode != 1 || strings.Join(got[1].Words, ",") != "chat,du,noir" {
		t.Errorf("report = %+v", got)
	}
	if _, err := os.Stat(articles.ReportPath()); err != nil {
		t.Errorf("report file not written: %v", err)
	}
}

func TestWordFirstOccurrence(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "word_first_occurrence", map[string]any{"word": "Chat"})
	if text := resultText(r); text != "chat: episode 3" {
		t.Errorf("result = %q", text)
	}

	r = callTool(t, srv, "word_first_occurrence", map[string]any{"word": "baleine"})
	if !r.IsError {
		t.Error("expected error for unknown word")
	}

	r = callTool(t, srv, "word_first_occurrence", map[string]any{})
	if !r.IsError {
		t.Error("expected error for missing argument")
	}
}

func TestWordOccurrences(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "word_occurrences", map[string]any{"word": "monde"})
	text := resultText(r)
	if !strings.Contains(text, `"episode": 1`) || !strings.Contains(text, `"episode": 3`) {
		t.Errorf("occurrences = %s", text)
	}
}

func TestTopWords(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "top_words", map[string]any{"limit": 1})
	text := resultText(r)
	if !strings.Contains(text, "le") || strings.Contains(text, "monde") {
		t.Errorf("top words = %s", text)
	}
}

func TestSearchTranscripts(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "search_transcripts", map[string]any{"query": "noir"})
	if !strings.Contains(resultText(r), `"sequence_number": 3`) {
		t.Errorf("search = %s", resultText(r))
	}

	r = callTool(t, srv, "search_transcripts", map[string]any{"query": "baleine"})
	if resultText(r) != "no matches" {
		t.Errorf("search miss = %q", resultText(r))
	}
}

func TestGetArticle(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "get_article", map[string]any{"episode": float64(3)})
	if r.IsError {
		t.Fatalf("get_article failed: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "Le chat noir") {
		t.Errorf("article = %s", resultText(r))
	}

	r = callTool(t, srv, "get_article", map[string]any{"episode": float64(42)})
	if !r.IsError {
		t.Error("expected error for missing episode")
	}
}

func TestReportFormatResource(t *testing.T) {
	srv, _ := testServer(t)

	contents, err := srv.readReportFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != ReportFormatURI || !strings.Contains(tc.Text, "first_occurrences.json") {
		t.Errorf("resource = %+v", contents)
	}
}
