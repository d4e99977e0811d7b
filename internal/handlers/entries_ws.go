package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/dailymoji-backend/internal/models"
	"github.com/AnshRaj112/dailymoji-backend/internal/services"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	wsReadLimit    = 16 * 1024
	wsReadTimeout  = 90 * time.Second
	wsWriteTimeout = 10 * time.Second
)

var entriesUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Here we allow all origins; you can tighten this by checking r.Header["Origin"].
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Frame types sent to the client.
const (
	FrameSnapshot      = "snapshot"
	FrameSnapshotError = "snapshot_error"
	FrameWriteResult   = "write_result"
	FramePong          = "pong"
	FrameError         = "error"
)

// ClientMessage is what the journal page sends over the socket.
type ClientMessage struct {
	Type      string `json:"type"` // "create", "delete", "ping"
	Emoji     string `json:"emoji,omitempty"`
	Context   string `json:"context,omitempty"`
	ID        string `json:"id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type SnapshotFrame struct {
	Type    string         `json:"type"`
	Seq     uint64         `json:"seq"`
	Entries []models.Entry `json:"entries"`
}

type SnapshotErrorFrame struct {
	Type  string `json:"type"`
	Seq   uint64 `json:"seq"`
	Error string `json:"error"`
}

// WriteResultFrame reports the outcome of one create or delete, independently
// of the snapshot that will reflect it.
type WriteResultFrame struct {
	Type      string        `json:"type"`
	Op        string        `json:"op"`
	RequestID string        `json:"request_id,omitempty"`
	ID        string        `json:"id,omitempty"`
	Entry     *models.Entry `json:"entry,omitempty"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

type PongFrame struct {
	Type string `json:"type"`
}

// ErrorFrame answers a client message the gateway could not parse.
type ErrorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// wsConn serialises writes; gorilla allows one concurrent writer.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return c.conn.WriteJSON(v)
}

func (c *wsConn) Close(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(time.Second))
	c.conn.Close()
}

// EntriesWebSocket is the live journal gateway: one subscription per session,
// snapshots pushed on every change, writes acknowledged with write_result.
func (h *Handler) EntriesWebSocket(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		// Browsers can't set Authorization on an upgrade request
		token = r.URL.Query().Get("token")
	}
	sess, ok := h.authenticate(r.Context(), token)
	if !ok {
		http.Error(w, "invalid session token", http.StatusUnauthorized)
		return
	}

	raw, err := entriesUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer raw.Close()
	conn := &wsConn{conn: raw}
	connID := uuid.NewString()[:8]
	log.Printf("entries ws %s connected (user %s)", connID, sess.UserID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := h.Entries.Subscribe(ctx, sess, func(s services.Snapshot) {
		var frame interface{}
		if s.Err != nil {
			frame = SnapshotErrorFrame{Type: FrameSnapshotError, Seq: s.Seq, Error: "failed to load your journal"}
		} else {
			frame = SnapshotFrame{Type: FrameSnapshot, Seq: s.Seq, Entries: s.Entries}
		}
		if err := conn.WriteJSON(frame); err != nil {
			log.Printf("entries ws %s write failed: %v", connID, err)
			cancel()
		}
	})
	if err != nil {
		conn.Close(websocket.CloseInternalServerErr, "subscribe failed")
		return
	}
	h.Subscriptions.Attach(token, sub)
	defer h.Subscriptions.Detach(token, sub)
	defer sub.Cancel()

	// Replaced by a newer connection, signed out, or write failure.
	go closeWhenStopped(ctx, conn, sub, connID)

	raw.SetReadLimit(wsReadLimit)
	_ = raw.SetReadDeadline(time.Now().Add(wsReadTimeout))
	raw.SetPongHandler(func(string) error {
		return raw.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	for {
		_, data, err := raw.ReadMessage()
		if err != nil {
			log.Printf("entries ws %s closed: %v", connID, err)
			return
		}
		_ = raw.SetReadDeadline(time.Now().Add(wsReadTimeout))

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("entries ws %s: malformed message: %v", connID, err)
			_ = conn.WriteJSON(ErrorFrame{Type: FrameError, Error: "malformed message"})
			continue
		}

		switch strings.ToLower(msg.Type) {
		case "create":
			h.handleSocketCreate(ctx, conn, sess, msg)
		case "delete":
			h.handleSocketDelete(ctx, conn, sess, msg)
		case "ping":
			_ = conn.WriteJSON(PongFrame{Type: FramePong})
		default:
			// Ignore unknown types
		}
	}
}

// closeWhenStopped closes conn once the subscription ends or ctx is cancelled,
// whichever is observed first. Either one means no more snapshots will be sent.
func closeWhenStopped(ctx context.Context, conn *wsConn, sub *services.Subscription, connID string) {
	select {
	case <-sub.Done():
		log.Printf("entries ws %s: %v", connID, sub.Err())
	case <-ctx.Done():
	}
	conn.Close(websocket.CloseNormalClosure, "subscription closed")
}

func (h *Handler) handleSocketCreate(ctx context.Context, conn *wsConn, sess models.Session, msg ClientMessage) {
	writeCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	result := WriteResultFrame{Type: FrameWriteResult, Op: models.EntryOpCreate, RequestID: msg.RequestID}
	entry, err := h.Entries.CreateEntry(writeCtx, sess, services.EntryInput{Emoji: msg.Emoji, Context: msg.Context})
	if err != nil {
		_, result.Error = entryErrorStatus(err)
	} else {
		result.Success = true
		result.ID = entry.ID
		result.Entry = &entry
	}
	_ = conn.WriteJSON(result)
}

func (h *Handler) handleSocketDelete(ctx context.Context, conn *wsConn, sess models.Session, msg ClientMessage) {
	writeCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	result := WriteResultFrame{Type: FrameWriteResult, Op: models.EntryOpDelete, RequestID: msg.RequestID, ID: msg.ID}
	if err := h.Entries.DeleteEntry(writeCtx, sess, msg.ID); err != nil {
		_, result.Error = entryErrorStatus(err)
	} else {
		result.Success = true
	}
	_ = conn.WriteJSON(result)
}
