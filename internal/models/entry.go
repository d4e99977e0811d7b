package models

import "time"

// Entry is one mood-log record in a user's collection.
type Entry struct {
	ID        string    `bson:"entry_id" json:"id"`
	UserID    string    `bson:"user_id" json:"-"`
	Emoji     string    `bson:"emoji" json:"emoji"`
	Context   string    `bson:"context,omitempty" json:"context,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// EntryChange is the notification published after a write to a user's collection.
// It carries no entry data; subscribers re-read the collection.
type EntryChange struct {
	UserID    string    `json:"user_id"`
	Op        string    `json:"op"` // "create" or "delete"
	EntryID   string    `json:"entry_id"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	EntryOpCreate = "create"
	EntryOpDelete = "delete"
)
