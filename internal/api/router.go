package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/brianhealey/booklist/internal/models"
	"github.com/brianhealey/booklist/internal/session"
	"github.com/brianhealey/booklist/internal/view"
)

// NewRouter creates and returns the main HTTP router.
func NewRouter(sessions *session.Registry, renderer *view.Renderer, uploads PosterReader, info func() models.Info) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.CleanPath)

	h := &Handlers{renderer: renderer, uploads: uploads, info: info}

	// No session required
	r.Get("/healthz", h.health)
	r.Get("/api/info", h.getInfo)

	// Session routes
	r.Group(func(r chi.Router) {
		r.Use(sessions.Middleware)

		// HTML page and form posts
		r.Get("/", h.page)
		r.Post("/draft", h.formDraft)
		r.Post("/draft/poster", h.formAttachPoster)
		r.Post("/draft/poster/clear", h.formClearPoster)
		r.Post("/submit", h.formSubmit)
		r.Post("/cancel", h.formCancel)
		r.Post("/books/{id}/edit", h.formEdit)
		r.Post("/books/{id}/delete", h.formDelete)

		// JSON API
		r.Get("/api/view", h.getView)
		r.Patch("/api/draft", h.patchDraft)
		r.Post("/api/draft/poster", h.attachPoster)
		r.Delete("/api/draft/poster", h.clearPoster)
		r.Post("/api/submit", h.submit)
		r.Post("/api/cancel", h.cancel)
		r.Post("/api/books/{id}/edit", h.beginEdit)
		r.Delete("/api/books/{id}", h.deleteBook)

		// SSE
		r.Get("/api/subscribe", h.sseEvents)
	})

	return r
}
