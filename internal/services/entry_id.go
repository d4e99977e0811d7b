package services

import (
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	EntryIDModeSeconds = "seconds"
	EntryIDModeUnique  = "unique"
)

var entryIDPattern = regexp.MustCompile(`^[0-9]+(-[0-9a-f]{8})?$`)

// IDGenerator mints the key an entry is stored under.
type IDGenerator interface {
	NewID() string
}

// SecondsIDGenerator returns the decimal Unix time in seconds. Two ids minted
// within the same second are equal, so the later write replaces the earlier one.
type SecondsIDGenerator struct {
	Now func() time.Time
}

// NewID returns the current Unix second as a decimal string.
func (g SecondsIDGenerator) NewID() string {
	return strconv.FormatInt(nowOrDefault(g.Now)().Unix(), 10)
}

// UniqueIDGenerator appends a random suffix to the seconds id: "<seconds>-<8 hex>".
type UniqueIDGenerator struct {
	Now func() time.Time
}

// NewID returns "<seconds>-<8 hex>" so ids minted in the same second differ.
func (g UniqueIDGenerator) NewID() string {
	suffix := uuid.NewString()[:8]
	return strconv.FormatInt(nowOrDefault(g.Now)().Unix(), 10) + "-" + suffix
}

// NewIDGenerator picks the generator for ENTRY_ID_MODE.
func NewIDGenerator(mode string, now func() time.Time) IDGenerator {
	if mode == EntryIDModeUnique {
		return UniqueIDGenerator{Now: now}
	}
	return SecondsIDGenerator{Now: now}
}

// ValidEntryID reports whether id has the shape of a generated entry id.
func ValidEntryID(id string) bool {
	return entryIDPattern.MatchString(id)
}

func nowOrDefault(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}
