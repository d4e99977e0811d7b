package services

import "errors"

var (
	ErrNotAuthenticated     = errors.New("authentication required")
	ErrInvalidEmoji         = errors.New("emoji must be a single non-empty glyph")
	ErrInvalidContext       = errors.New("context is too long")
	ErrInvalidEntryID       = errors.New("not an entry id")
	ErrSubscriptionClosed   = errors.New("subscription closed")
	ErrInvalidIdentityToken = errors.New("invalid identity token")

	// ErrStoreUnavailable marks a store failure worth retrying.
	ErrStoreUnavailable = errors.New("entry store unavailable")
)
