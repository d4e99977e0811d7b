package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/AnshRaj112/dailymoji-backend/internal/models"
	"github.com/rivo/uniseg"
)

const (
	maxEmojiBytes   = 64
	maxContextRunes = 280
	publishTimeout  = 3 * time.Second
)

// EntryInput is what a user submits from the emoji picker.
type EntryInput struct {
	Emoji   string
	Context string
}

// Snapshot is the full ordered collection at one point in time, or the
// error that prevented reading it. Seq increases with every delivery.
type Snapshot struct {
	Seq     uint64
	Entries []models.Entry
	Err     error
}

type SnapshotFunc func(Snapshot)

// Subscription is one live view of a user's collection.
type Subscription struct {
	UserID string
	cancel context.CancelFunc
	done   chan struct{}
}

// Cancel stops delivery. It is safe to call more than once.
func (s *Subscription) Cancel() {
	s.cancel()
}

// Done is closed once no further snapshot will be delivered.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Err returns ErrSubscriptionClosed once the subscription has stopped, nil before.
func (s *Subscription) Err() error {
	select {
	case <-s.done:
		return ErrSubscriptionClosed
	default:
		return nil
	}
}

// EntryController mediates every read, write and subscription between the
// journal view and the entry store.
type EntryController struct {
	store EntryStore
	feed  ChangeFeed
	ids   IDGenerator
	Retry RetryPolicy
}

func NewEntryController(store EntryStore, feed ChangeFeed, ids IDGenerator) *EntryController {
	return &EntryController{
		store: store,
		feed:  feed,
		ids:   ids,
		Retry: DefaultRetryPolicy,
	}
}

// NewID returns the id the next entry would be stored under.
func (c *EntryController) NewID() string {
	return c.ids.NewID()
}

// CreateEntry upserts a new entry under a freshly generated id. An entry that
// already holds that id is overwritten. The returned entry is the write's own
// result; subscribers learn about it through the change feed.
func (c *EntryController) CreateEntry(ctx context.Context, sess models.Session, in EntryInput) (models.Entry, error) {
	if !sess.Valid() {
		return models.Entry{}, ErrNotAuthenticated
	}
	emoji, err := normalizeEmoji(in.Emoji)
	if err != nil {
		return models.Entry{}, err
	}
	entryContext := strings.TrimSpace(in.Context)
	if utf8.RuneCountInString(entryContext) > maxContextRunes {
		return models.Entry{}, ErrInvalidContext
	}

	entry := models.Entry{
		ID:      c.ids.NewID(),
		UserID:  sess.UserID,
		Emoji:   emoji,
		Context: entryContext,
	}

	var saved models.Entry
	err = c.Retry.Do(ctx, "create entry", func() error {
		var err error
		saved, err = c.store.Set(ctx, sess.UserID, entry)
		return err
	})
	if err != nil {
		log.Printf("failed to create entry %s for user %s: %v", entry.ID, sess.UserID, err)
		return models.Entry{}, fmt.Errorf("create entry: %w", err)
	}

	c.publish(ctx, models.EntryChange{UserID: sess.UserID, Op: models.EntryOpCreate, EntryID: saved.ID})
	return saved, nil
}

// DeleteEntry removes the entry stored under id. Deleting a missing id succeeds.
func (c *EntryController) DeleteEntry(ctx context.Context, sess models.Session, id string) error {
	if !sess.Valid() {
		return ErrNotAuthenticated
	}
	if !ValidEntryID(id) {
		log.Printf("rejected delete for user %s: %q is not an entry id", sess.UserID, id)
		return fmt.Errorf("%w: %q", ErrInvalidEntryID, id)
	}

	err := c.Retry.Do(ctx, "delete entry", func() error {
		return c.store.Delete(ctx, sess.UserID, id)
	})
	if err != nil {
		log.Printf("failed to delete entry %s for user %s: %v", id, sess.UserID, err)
		return fmt.Errorf("delete entry: %w", err)
	}

	c.publish(ctx, models.EntryChange{UserID: sess.UserID, Op: models.EntryOpDelete, EntryID: id})
	return nil
}

// List returns the current ordered collection once.
func (c *EntryController) List(ctx context.Context, sess models.Session) ([]models.Entry, error) {
	if !sess.Valid() {
		return nil, ErrNotAuthenticated
	}

	var entries []models.Entry
	err := c.Retry.Do(ctx, "list entries", func() error {
		var err error
		entries, err = c.store.List(ctx, sess.UserID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	if entries == nil {
		entries = []models.Entry{}
	}
	return entries, nil
}

// Subscribe delivers the full ordered collection now and again after every
// change, serially on one goroutine, until the subscription is cancelled or
// ctx ends. Changes that arrive while a delivery is in flight are coalesced
// into a single re-read.
func (c *EntryController) Subscribe(ctx context.Context, sess models.Session, fn SnapshotFunc) (*Subscription, error) {
	if !sess.Valid() {
		return nil, ErrNotAuthenticated
	}
	if fn == nil {
		return nil, errors.New("subscribe: nil snapshot func")
	}

	// Register before the first read so no change can fall between the two.
	signals, unsubscribe := c.feed.Subscribe(sess.UserID)

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		UserID: sess.UserID,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go c.deliver(subCtx, sess, sub, signals, unsubscribe, fn)
	return sub, nil
}

func (c *EntryController) deliver(ctx context.Context, sess models.Session, sub *Subscription, signals <-chan struct{}, unsubscribe func(), fn SnapshotFunc) {
	defer close(sub.done)
	defer unsubscribe()

	var seq uint64
	push := func() {
		entries, err := c.List(ctx, sess)
		if ctx.Err() != nil {
			return
		}
		seq++
		if err != nil {
			log.Printf("failed to read snapshot for user %s: %v", sess.UserID, err)
			fn(Snapshot{Seq: seq, Err: err})
			return
		}
		fn(Snapshot{Seq: seq, Entries: entries})
	}

	push()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-signals:
			if !ok {
				return
			}
			push()
		}
	}
}

func (c *EntryController) publish(ctx context.Context, change models.EntryChange) {
	change.Timestamp = time.Now().UTC()

	// The write already happened; don't let a cancelled request drop the event.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := c.feed.Publish(pubCtx, change); err != nil {
		log.Printf("failed to publish %s of entry %s for user %s: %v", change.Op, change.EntryID, change.UserID, err)
	}
}

func normalizeEmoji(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxEmojiBytes || !utf8.ValidString(s) {
		return "", ErrInvalidEmoji
	}
	for _, r := range s {
		if unicode.IsSpace(r) {
			return "", ErrInvalidEmoji
		}
	}
	// One user-perceived glyph: ZWJ sequences, skin tones and flags count once.
	if uniseg.GraphemeClusterCount(s) != 1 {
		return "", ErrInvalidEmoji
	}
	return s, nil
}
