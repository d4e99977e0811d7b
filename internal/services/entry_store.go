package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/AnshRaj112/dailymoji-backend/internal/models"
)

// EntryStore is a per-user collection of entries keyed by entry id.
// Set is an unconditional upsert and assigns CreatedAt itself.
type EntryStore interface {
	Set(ctx context.Context, userID string, e models.Entry) (models.Entry, error)
	Delete(ctx context.Context, userID, entryID string) error
	List(ctx context.Context, userID string) ([]models.Entry, error)
}

// sortEntries orders newest first; equal timestamps fall back to id descending.
func sortEntries(entries []models.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].ID > entries[j].ID
	})
}

// MemoryEntryStore keeps collections in process memory.
type MemoryEntryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]models.Entry
	now         func() time.Time
}

func NewMemoryEntryStore(now func() time.Time) *MemoryEntryStore {
	return &MemoryEntryStore{
		collections: make(map[string]map[string]models.Entry),
		now:         nowOrDefault(now),
	}
}

func (s *MemoryEntryStore) Set(ctx context.Context, userID string, e models.Entry) (models.Entry, error) {
	if err := ctx.Err(); err != nil {
		return models.Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[userID]
	if !ok {
		col = make(map[string]models.Entry)
		s.collections[userID] = col
	}
	e.UserID = userID
	e.CreatedAt = s.now().UTC()
	col[e.ID] = e
	return e, nil
}

func (s *MemoryEntryStore) Delete(ctx context.Context, userID, entryID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections[userID], entryID)
	return nil
}

func (s *MemoryEntryStore) List(ctx context.Context, userID string) ([]models.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	col := s.collections[userID]
	entries := make([]models.Entry, 0, len(col))
	for _, e := range col {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	sortEntries(entries)
	return entries, nil
}
