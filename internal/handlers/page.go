package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/AnshRaj112/dailymoji-backend/internal/models"
	"github.com/AnshRaj112/dailymoji-backend/internal/services"
)

type PageResponse struct {
	Success       bool           `json:"success"`
	User          models.Session `json:"user"`
	DateHeader    string         `json:"date_header"`
	FavoriteColor string         `json:"favorite_color"`
	Entries       []models.Entry `json:"entries"`
}

type EmojiPaletteResponse struct {
	Success bool     `json:"success"`
	Emojis  []string `json:"emojis"`
}

// Example is the authenticated props endpoint the journal page renders from.
func (h *Handler) Example(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := h.requireSession(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, services.PageProps{FavoriteColor: h.FavoriteColor})
}

// EmojiPalette lists the emojis the picker offers.
func (h *Handler) EmojiPalette(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, EmojiPaletteResponse{Success: true, Emojis: services.DefaultEmojiPalette})
}

// JournalPage gathers everything the journal page needs for its first render.
// Unauthenticated requests are pointed at the login flow.
func (h *Handler) JournalPage(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	sess, ok := h.authenticate(r.Context(), token)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, MessageResponse{
			Success:  false,
			Message:  "Authentication required",
			Redirect: h.LoginURL,
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	props, err := h.Props.Fetch(ctx, token)
	if err != nil {
		log.Printf("page props fetch failed for user %s: %v", sess.UserID, err)
		var propsErr *services.PropsError
		if errors.As(err, &propsErr) {
			writeError(w, http.StatusBadGateway, propsErr.Error())
			return
		}
		writeError(w, http.StatusBadGateway, "Failed to load page data")
		return
	}

	entries, err := h.Entries.List(ctx, sess)
	if err != nil {
		status, msg := entryErrorStatus(err)
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, PageResponse{
		Success:       true,
		User:          sess,
		DateHeader:    services.TodayHeader(h.now()),
		FavoriteColor: props.FavoriteColor,
		Entries:       entries,
	})
}
