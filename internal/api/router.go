package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/articles", h.ListArticles)
	r.Get("/articles/{episode}", h.GetArticle)

	r.Get("/report/first-occurrences", h.FirstOccurrences)
	r.Get("/report/frequencies", h.Frequencies)
	r.Get("/report.html", h.ReportHTML)

	r.Get("/words/{word}", h.Word)
	r.Get("/search", h.Search)
	r.Get("/stats", h.Stats)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
