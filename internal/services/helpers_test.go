package services

import (
	"sync"
	"testing"
	"time"

	"github.com/AnshRaj112/dailymoji-backend/internal/models"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, time.October, 14, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

var alice = models.Session{UserID: "user-alice", DisplayName: "Alice"}

func newTestController(clock *fakeClock) (*EntryController, *MemoryEntryStore, *LocalFeed) {
	store := NewMemoryEntryStore(clock.Now)
	feed := NewLocalFeed()
	c := NewEntryController(store, feed, SecondsIDGenerator{Now: clock.Now})
	c.Retry = NoRetry
	return c, store, feed
}

// snapshotRecorder collects deliveries from a subscription.
type snapshotRecorder struct {
	ch chan Snapshot
}

func newSnapshotRecorder() *snapshotRecorder {
	return &snapshotRecorder{ch: make(chan Snapshot, 64)}
}

func (r *snapshotRecorder) record(s Snapshot) {
	r.ch <- s
}

// waitFor returns the first snapshot that satisfies match.
func (r *snapshotRecorder) waitFor(t *testing.T, match func(Snapshot) bool) Snapshot {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case s := <-r.ch:
			if match(s) {
				return s
			}
		case <-timeout:
			require.FailNow(t, "timed out waiting for snapshot")
			return Snapshot{}
		}
	}
}

func (r *snapshotRecorder) next(t *testing.T) Snapshot {
	t.Helper()
	return r.waitFor(t, func(Snapshot) bool { return true })
}

func emojis(entries []models.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Emoji)
	}
	return out
}

func entryFixture(id, emoji, entryContext string) models.Entry {
	return models.Entry{ID: id, Emoji: emoji, Context: entryContext}
}
