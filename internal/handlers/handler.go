package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/AnshRaj112/dailymoji-backend/internal/models"
	"github.com/AnshRaj112/dailymoji-backend/internal/services"
)

const requestTimeout = 5 * time.Second

// Handler serves the journal API. Every dependency is explicit so the same
// handler runs against Mongo/Redis in production and memory stores in tests.
type Handler struct {
	Entries       *services.EntryController
	Sessions      services.SessionStore
	Identity      *services.IdentityVerifier
	Subscriptions *services.SubscriptionRegistry
	Props         *services.PagePropsClient

	LoginURL      string
	FavoriteColor string
	Now           func() time.Time
}

type MessageResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, MessageResponse{Success: false, Message: message})
}

func extractBearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// authenticate resolves the bearer token to a session. Returns ok=false when
// the request carries no valid session.
func (h *Handler) authenticate(ctx context.Context, token string) (models.Session, bool) {
	if token == "" {
		return models.Session{}, false
	}
	sess, ok, err := h.Sessions.Validate(ctx, token)
	if err != nil {
		log.Printf("session lookup failed: %v", err)
		return models.Session{}, false
	}
	return sess, ok
}

// requireSession writes a 401 and returns ok=false if the request is not authenticated.
func (h *Handler) requireSession(w http.ResponseWriter, r *http.Request) (models.Session, string, bool) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	sess, ok := h.authenticate(r.Context(), token)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return models.Session{}, "", false
	}
	return sess, token, true
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}
