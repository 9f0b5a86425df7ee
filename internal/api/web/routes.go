package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the chat page routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/", h.Page)
	r.Post("/ingest", h.Ingest)
	r.Post("/ask", h.Ask)
	r.Post("/reset", h.Reset)

	r.Route("/fragments", func(r chi.Router) {
		r.Get("/chat", h.ChatFragment)
		r.Get("/ingest", h.IngestFragment)
	})

	r.Get("/export/{format}", h.Export)
}

// RegisterStatic serves the stylesheet; it needs no session.
func RegisterStatic(r chi.Router) {
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFiles()))))
}
