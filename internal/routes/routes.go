package routes

import (
	"github.com/AnshRaj112/dailymoji-backend/internal/handlers"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(r chi.Router, h *handlers.Handler) {
	// Auth routes (identity token -> session bearer)
	r.Post("/api/auth/session", h.CreateSession)
	r.Post("/api/auth/signout", h.SignOut)
	r.Get("/api/auth/me", h.GetMe)

	// Mood entry routes
	r.Get("/api/entries", h.ListEntries)
	r.Post("/api/entries", h.CreateEntry)
	r.Delete("/api/entries/{id}", h.DeleteEntry)

	// Journal page routes
	r.Get("/api/emojis", h.EmojiPalette)
	r.Get("/api/example", h.Example)
	r.Get("/api/journal/page", h.JournalPage)

	// WebSocket endpoint for live entry snapshots
	r.Get("/ws/entries", h.EntriesWebSocket)
}
