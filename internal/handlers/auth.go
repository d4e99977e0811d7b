package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/AnshRaj112/dailymoji-backend/internal/models"
	"github.com/AnshRaj112/dailymoji-backend/internal/services"
)

type CreateSessionRequest struct {
	IDToken string `json:"id_token"`
}

type SessionResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Token   string          `json:"token,omitempty"`
	User    *models.Session `json:"user,omitempty"`
}

// CreateSession exchanges the auth provider's id token for a session bearer token.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess, err := h.Identity.Verify(req.IDToken)
	if err != nil {
		if errors.Is(err, services.ErrInvalidIdentityToken) {
			writeError(w, http.StatusUnauthorized, "Invalid identity token")
			return
		}
		log.Printf("identity verification unavailable: %v", err)
		writeError(w, http.StatusServiceUnavailable, "Sign-in is not available")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	token, err := h.Sessions.Create(ctx, sess)
	if err != nil {
		log.Printf("failed to create session for user %s: %v", sess.UserID, err)
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	writeJSON(w, http.StatusOK, SessionResponse{
		Success: true,
		Message: "Signed in",
		Token:   token,
		User:    &sess,
	})
}

// SignOut ends the session and tears down its live subscription.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	_, token, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.Sessions.Invalidate(ctx, token); err != nil {
		log.Printf("failed to invalidate session: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to sign out")
		return
	}
	h.Subscriptions.CloseSession(token)

	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Signed out"})
}

// GetMe returns the current session's user.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Success: true, User: &sess})
}
