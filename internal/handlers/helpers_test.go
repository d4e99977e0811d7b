package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AnshRaj112/dailymoji-backend/internal/handlers"
	"github.com/AnshRaj112/dailymoji-backend/internal/models"
	"github.com/AnshRaj112/dailymoji-backend/internal/routes"
	"github.com/AnshRaj112/dailymoji-backend/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

const testProviderSecret = "test-provider-secret-0123456789abcdef"

var alice = models.Session{UserID: "user-alice", DisplayName: "Alice", PhotoURL: "https://example.com/a.png"}

type testEnv struct {
	h        *handlers.Handler
	srv      *httptest.Server
	sessions *services.MemorySessionStore
	token    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ctrl := services.NewEntryController(
		services.NewMemoryEntryStore(nil),
		services.NewLocalFeed(),
		services.UniqueIDGenerator{},
	)
	ctrl.Retry = services.NoRetry

	sessions := services.NewMemorySessionStore(nil)
	h := &handlers.Handler{
		Entries:       ctrl,
		Sessions:      sessions,
		Identity:      services.NewIdentityVerifier(testProviderSecret, ""),
		Subscriptions: services.NewSubscriptionRegistry(),
		LoginURL:      "/auth",
		FavoriteColor: "teal",
		Now:           func() time.Time { return time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC) },
	}

	r := chi.NewRouter()
	routes.SetupRoutes(r, h)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	t.Cleanup(h.Subscriptions.Close)

	props := services.NewPagePropsClient(srv.URL)
	props.Retry = services.NoRetry
	h.Props = props

	token, err := sessions.Create(context.Background(), alice)
	require.NoError(t, err)

	return &testEnv{h: h, srv: srv, sessions: sessions, token: token}
}

// do sends a JSON request and decodes the JSON response into out (if non-nil).
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}, out interface{}) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (e *testEnv) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/ws/entries?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

type frame struct {
	Type      string         `json:"type"`
	Seq       uint64         `json:"seq"`
	Entries   []models.Entry `json:"entries"`
	Op        string         `json:"op"`
	RequestID string         `json:"request_id"`
	ID        string         `json:"id"`
	Success   bool           `json:"success"`
	Error     string         `json:"error"`
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

// readUntil reads frames until match returns true and returns that frame.
func readUntil(t *testing.T, conn *websocket.Conn, match func(frame) bool) frame {
	t.Helper()
	for i := 0; i < 20; i++ {
		if f := readFrame(t, conn); match(f) {
			return f
		}
	}
	require.FailNow(t, "expected frame never arrived")
	return frame{}
}

func signIdentity(t *testing.T, sub string) string {
	t.Helper()
	claims := services.IdentityClaims{
		Name:    "Alice",
		Picture: "https://example.com/a.png",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testProviderSecret))
	require.NoError(t, err)
	return signed
}
