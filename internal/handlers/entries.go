package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AnshRaj112/dailymoji-backend/internal/models"
	"github.com/AnshRaj112/dailymoji-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

type CreateEntryRequest struct {
	Emoji   string `json:"emoji"`
	Context string `json:"context,omitempty"`
}

type EntryResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Entry   *models.Entry `json:"entry,omitempty"`
}

type EntriesResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Entries []models.Entry `json:"entries"`
	Total   int            `json:"total"`
}

// entryErrorStatus maps controller errors to a status and user-facing message.
func entryErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrNotAuthenticated):
		return http.StatusUnauthorized, "Authentication required"
	case errors.Is(err, services.ErrInvalidEmoji):
		return http.StatusBadRequest, "Pick a single emoji"
	case errors.Is(err, services.ErrInvalidContext):
		return http.StatusBadRequest, "Context is too long"
	case errors.Is(err, services.ErrInvalidEntryID):
		return http.StatusBadRequest, "Unknown entry id"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "The journal took too long to respond"
	default:
		return http.StatusInternalServerError, "Something went wrong saving your journal"
	}
}

// ListEntries returns the authenticated user's entries, newest first.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	entries, err := h.Entries.List(ctx, sess)
	if err != nil {
		status, msg := entryErrorStatus(err)
		writeJSON(w, status, EntriesResponse{Success: false, Message: msg, Entries: []models.Entry{}})
		return
	}

	writeJSON(w, http.StatusOK, EntriesResponse{Success: true, Entries: entries, Total: len(entries)})
}

// CreateEntry records an emoji for the authenticated user.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	entry, err := h.Entries.CreateEntry(ctx, sess, services.EntryInput{Emoji: req.Emoji, Context: req.Context})
	if err != nil {
		status, msg := entryErrorStatus(err)
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusCreated, EntryResponse{Success: true, Message: "Entry saved", Entry: &entry})
}

// DeleteEntry removes one of the authenticated user's entries by id.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.Entries.DeleteEntry(ctx, sess, chi.URLParam(r, "id")); err != nil {
		status, msg := entryErrorStatus(err)
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Entry deleted"})
}
