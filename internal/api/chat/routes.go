package chat

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the JSON API routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/ingest", h.Ingest)
		r.Post("/chat", h.Chat)
		r.Get("/conversation", h.GetConversation)
		r.Delete("/conversation", h.ResetConversation)
	})
}
