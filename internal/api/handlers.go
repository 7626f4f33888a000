package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/podlex/internal/apperr"
	"github.com/starford/podlex/internal/models"
	"github.com/starford/podlex/internal/report"
	"github.com/starford/podlex/internal/tokenizer"
)

// Handler holds API route handlers.
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// urlParam returns a path parameter, undoing percent-encoding that chi
// leaves in place when the request carries a RawPath.
func urlParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListArticles handles GET /api/articles.
//
//	@Summary		List indexed articles ordered by episode
//	@Tags			articles
//	@Produce		json
//	@Success		200	{object}	ArticleListResponse
//	@Security		BearerAuth
//	@Router			/articles [get]
func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListArticles(r.Context())
	if err != nil {
		writeInternalError(w, "list articles failed", err)
		return
	}
	if items == nil {
		items = []models.ArticleSummary{}
	}
	writeJSON(w, http.StatusOK, ArticleListResponse{Articles: items, Total: len(items)})
}

// GetArticle handles GET /api/articles/{episode}.
//
//	@Summary		Get one episode with its transcript
//	@Tags			articles
//	@Produce		json
//	@Param			episode	path		int	true	"Episode number"
//	@Success		200		{object}	ArticleDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/articles/{episode} [get]
func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	episode, err := strconv.Atoi(chi.URLParam(r, "episode"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("episode must be a number"))
		return
	}
	a, err := h.svc.Article(r.Context(), episode)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			writeInternalError(w, "get article failed", err, slog.Int("episode", episode))
		}
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// FirstOccurrences handles GET /api/report/first-occurrences.
//
//	@Summary		Words grouped by the episode they first appear in
//	@Tags			report
//	@Produce		json
//	@Success		200	{object}	FirstOccurrencesResponse
//	@Security		BearerAuth
//	@Router			/report/first-occurrences [get]
func (h *Handler) FirstOccurrences(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.FirstOccurrences(r.Context())
	if err != nil {
		writeInternalError(w, "first occurrences failed", err)
		return
	}
	writeJSON(w, http.StatusOK, FirstOccurrencesResponse{Episodes: res, Total: report.Total(res)})
}

// Frequencies handles GET /api/report/frequencies.
//
//	@Summary		Most frequent words across all episodes
//	@Tags			report
//	@Produce		json
//	@Param			limit	query		int	false	"Max words (default 50)"
//	@Success		200		{object}	FrequenciesResponse
//	@Security		BearerAuth
//	@Router			/report/frequencies [get]
func (h *Handler) Frequencies(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	words, err := h.svc.Frequencies(r.Context(), limit)
	if err != nil {
		writeInternalError(w, "frequencies failed", err)
		return
	}
	writeJSON(w, http.StatusOK, FrequenciesResponse{Words: words})
}

// ReportHTML handles GET /api/report.html.
func (h *Handler) ReportHTML(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.ReportHTML(r.Context())
	if err != nil {
		slog.Error("report html failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}

// Word handles GET /api/words/{word}.
//
//	@Summary		Per-episode usage of one word
//	@Tags			words
//	@Produce		json
//	@Param			word	path		string	true	"Word (case-insensitive)"
//	@Success		200		{object}	WordDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/words/{word} [get]
func (h *Handler) Word(w http.ResponseWriter, r *http.Request) {
	word := tokenizer.Normalize(urlParam(r, "word"))
	if word == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("word is required"))
		return
	}
	d, err := h.svc.Word(r.Context(), word)
	if err != nil {
		writeInternalError(w, "word lookup failed", err, slog.String("word", word))
		return
	}
	if !d.Found {
		writeJSON(w, http.StatusNotFound, errorBody("word not found"))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across transcripts
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeInternalError(w, "search failed", err, slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Stats handles GET /api/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context())
	if err != nil {
		writeInternalError(w, "stats failed", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
