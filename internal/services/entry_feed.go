package services

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/dailymoji-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

const entryChannelPrefix = "mood:user:"

// ChangeFeed carries "collection changed" notifications per user.
// Subscribe returns a signal channel and a function that stops delivery.
type ChangeFeed interface {
	Publish(ctx context.Context, change models.EntryChange) error
	Subscribe(userID string) (<-chan struct{}, func())
}

type feedListener struct {
	ch chan struct{}
}

// EntryHub is the local registry of listeners, keyed by user id.
type EntryHub struct {
	mu        sync.RWMutex
	listeners map[string]map[*feedListener]struct{}
}

func NewEntryHub() *EntryHub {
	return &EntryHub{listeners: make(map[string]map[*feedListener]struct{})}
}

func (h *EntryHub) Subscribe(userID string) (<-chan struct{}, func()) {
	l := &feedListener{ch: make(chan struct{}, 1)}

	h.mu.Lock()
	set, ok := h.listeners[userID]
	if !ok {
		set = make(map[*feedListener]struct{})
		h.listeners[userID] = set
	}
	set[l] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return l.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.listeners[userID], l)
			if len(h.listeners[userID]) == 0 {
				delete(h.listeners, userID)
			}
		})
	}
}

// FanOut signals every local listener of the user. A listener that already
// has a pending signal is skipped, which coalesces bursts into one re-read.
func (h *EntryHub) FanOut(userID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for l := range h.listeners[userID] {
		select {
		case l.ch <- struct{}{}:
		default:
		}
	}
}

// Listeners returns the number of local listeners for a user.
func (h *EntryHub) Listeners(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners[userID])
}

// LocalFeed delivers changes within a single process.
type LocalFeed struct {
	*EntryHub
}

func NewLocalFeed() *LocalFeed {
	return &LocalFeed{EntryHub: NewEntryHub()}
}

func (f *LocalFeed) Publish(_ context.Context, change models.EntryChange) error {
	f.FanOut(change.UserID)
	return nil
}

// RedisFeed publishes changes on mood:user:<id> and fans out what it hears
// to the local hub, so every instance sees writes made by any other.
type RedisFeed struct {
	*EntryHub
	client  *redis.Client
	started sync.Once
}

func NewRedisFeed(client *redis.Client) *RedisFeed {
	return &RedisFeed{EntryHub: NewEntryHub(), client: client}
}

func (f *RedisFeed) Publish(ctx context.Context, change models.EntryChange) error {
	if change.Timestamp.IsZero() {
		change.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(change)
	if err != nil {
		return err
	}
	if err := f.client.Publish(ctx, entryChannelPrefix+change.UserID, data).Err(); err != nil {
		// This instance's subscribers still get the change; other instances catch
		// up on their next event.
		f.FanOut(change.UserID)
		return err
	}
	return nil
}

// Start runs the single shared Redis listener for this instance.
func (f *RedisFeed) Start(ctx context.Context) {
	f.started.Do(func() {
		go f.run(ctx)
	})
}

func (f *RedisFeed) run(ctx context.Context) {
	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		err := f.listen(ctx, func() { backoff = time.Second })
		if ctx.Err() != nil {
			return
		}

		log.Printf("Redis entry feed error: %v", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > 30*time.Second {
			backoff = 30 * time.Second
		}
	}
}

func (f *RedisFeed) listen(ctx context.Context, onMessage func()) error {
	pubsub := f.client.PSubscribe(ctx, entryChannelPrefix+"*")
	defer pubsub.Close()

	log.Println("✅ Entry feed Redis subscriber started (pattern: " + entryChannelPrefix + "*)")

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			return err
		}
		onMessage()

		// Subscribers re-read the collection, so only the channel matters.
		f.FanOut(strings.TrimPrefix(msg.Channel, entryChannelPrefix))
	}
}
