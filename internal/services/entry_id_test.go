package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSecondsIDGenerator_FloorsToSeconds(t *testing.T) {
	t.Parallel()
	gen := SecondsIDGenerator{Now: func() time.Time { return time.Unix(1760000000, 999_999_999) }}

	assert.Equal(t, "1760000000", gen.NewID())
	assert.Equal(t, gen.NewID(), gen.NewID())
}

func TestSecondsIDGenerator_NonDecreasing(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	gen := SecondsIDGenerator{Now: clock.Now}

	prev := gen.NewID()
	for i := 0; i < 5; i++ {
		clock.Advance(400 * time.Millisecond)
		next := gen.NewID()
		assert.GreaterOrEqual(t, next, prev)
		prev = next
	}
}

func TestUniqueIDGenerator(t *testing.T) {
	t.Parallel()
	gen := UniqueIDGenerator{Now: func() time.Time { return time.Unix(1760000000, 0) }}

	a, b := gen.NewID(), gen.NewID()
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^1760000000-[0-9a-f]{8}$`, a)
	assert.True(t, ValidEntryID(a))
}

func TestNewIDGenerator(t *testing.T) {
	t.Parallel()

	assert.IsType(t, SecondsIDGenerator{}, NewIDGenerator(EntryIDModeSeconds, nil))
	assert.IsType(t, UniqueIDGenerator{}, NewIDGenerator(EntryIDModeUnique, nil))
	assert.IsType(t, SecondsIDGenerator{}, NewIDGenerator("bogus", nil))
}

func TestValidEntryID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id   string
		want bool
	}{
		{"1760000000", true},
		{"1760000000-0a1b2c3d", true},
		{"1760000000-0A1B2C3D", false},
		{"1760000000-", false},
		{"🎉", false},
		{"", false},
		{"abc", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidEntryID(tt.id), tt.id)
	}
}
