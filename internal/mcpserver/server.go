// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes podlex vocabulary tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/podlex/internal/apperr"
	"github.com/starford/podlex/internal/articleservice"
	"github.com/starford/podlex/internal/index"
	"github.com/starford/podlex/internal/report"
	"github.com/starford/podlex/internal/tokenizer"
)

const (
	defaultTopWords = 50
	searchLimit     = 20
)

// Server wraps the MCP server with podlex tools.
type Server struct {
	mcp      *server.MCPServer
	articles *articleservice.Service
	db       index.ArticleIndex
}

// New creates a new MCP server with all podlex tools registered.
func New(articles *articleservice.Service, db index.ArticleIndex, version string) *Server {
	s := &Server{articles: articles, db: db}

	s.mcp = server.NewMCPServer(
		"podlex",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("analyze_articles",
		mcp.WithDescription("Group every word of the corpus by the episode it first appears in. "+
			"Writes first_occurrences.json and returns it. See the "+ReportFormatURI+" resource."),
	), s.analyzeArticles)

	s.mcp.AddTool(mcp.NewTool("word_first_occurrence",
		mcp.WithDescription("Return the first episode in which a word is used."),
		mcp.WithString("word", mcp.Required(), mcp.Description("Word to look up (case-insensitive)")),
	), s.wordFirstOccurrence)

	s.mcp.AddTool(mcp.NewTool("word_occurrences",
		mcp.WithDescription("Return how often a word is used in each episode."),
		mcp.WithString("word", mcp.Required(), mcp.Description("Word to look up (case-insensitive)")),
	), s.wordOccurrences)

	s.mcp.AddTool(mcp.NewTool("top_words",
		mcp.WithDescription("Rank the most frequent words across all episodes."),
		mcp.WithNumber("limit", mcp.Description("Number of words to return (default 50)")),
	), s.topWords)

	s.mcp.AddTool(mcp.NewTool("search_transcripts",
		mcp.WithDescription("Full-text search through episode transcripts."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchTranscripts)

	s.mcp.AddTool(mcp.NewTool("get_article",
		mcp.WithDescription("Read the plain transcript of one episode."),
		mcp.WithNumber("episode", mcp.Required(), mcp.Description("Episode number")),
	), s.getArticle)

	s.mcp.AddResource(
		mcp.NewResource(ReportFormatURI, "Report Format",
			mcp.WithResourceDescription("How words are counted and how reports and records are laid out."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readReportFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) analyzeArticles(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.articles.Analyze(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := report.Encode(res)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) wordFirstOccurrence(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	word, err := req.RequireString("word")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	word = tokenizer.Normalize(word)
	ep, ok, err := s.db.FirstOccurrence(word)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("word not found: %s", word)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s: episode %d", word, ep)), nil
}

func (s *Server) wordOccurrences(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	word, err := req.RequireString("word")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	occ, err := s.db.Occurrences(tokenizer.Normalize(word))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(occ) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("word not found: %s", word)), nil
	}
	return jsonResult(occ)
}

func (s *Server) topWords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	freqs, err := s.db.TopWords(req.GetInt("limit", defaultTopWords))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(report.FrequencyTable(freqs)), nil
}

func (s *Server) searchTranscripts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, searchLimit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no matches"), nil
	}
	return jsonResult(results)
}

func (s *Server) getArticle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	episode, err := req.RequireInt("episode")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a, err := s.articles.Article(ctx, episode)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("episode not found: %d", episode)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"episode":    a.SequenceNumber(),
		"identifier": a.Identifier(),
		"words":      len(a.WordCount()),
		"tokens":     a.Tokens(),
		"transcript": s.articles.Transcript(a),
	})
}

func (s *Server) readReportFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ReportFormatURI,
			MIMEType: "text/markdown",
			Text:     ReportFormat,
		},
	}, nil
}
