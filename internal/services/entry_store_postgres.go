package services

import (
	"context"
	"database/sql"

	"github.com/AnshRaj112/dailymoji-backend/internal/models"
)

// PostgresEntryStore keeps entries in the mood_entries table.
type PostgresEntryStore struct {
	db *sql.DB
}

func NewPostgresEntryStore(db *sql.DB) *PostgresEntryStore {
	return &PostgresEntryStore{db: db}
}

const upsertEntrySQL = `
	INSERT INTO mood_entries (user_id, entry_id, emoji, context)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (user_id, entry_id) DO UPDATE
	SET emoji = EXCLUDED.emoji, context = EXCLUDED.context, created_at = NOW()
	RETURNING created_at`

func (s *PostgresEntryStore) Set(ctx context.Context, userID string, e models.Entry) (models.Entry, error) {
	entryContext := sql.NullString{String: e.Context, Valid: e.Context != ""}

	if err := s.db.QueryRowContext(ctx, upsertEntrySQL, userID, e.ID, e.Emoji, entryContext).Scan(&e.CreatedAt); err != nil {
		return models.Entry{}, err
	}
	e.UserID = userID
	e.CreatedAt = e.CreatedAt.UTC()
	return e, nil
}

func (s *PostgresEntryStore) Delete(ctx context.Context, userID, entryID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM mood_entries WHERE user_id = $1 AND entry_id = $2`, userID, entryID)
	return err
}

func (s *PostgresEntryStore) List(ctx context.Context, userID string) ([]models.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT entry_id, emoji, context, created_at
		FROM mood_entries
		WHERE user_id = $1
		ORDER BY created_at DESC, entry_id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.Entry{}
	for rows.Next() {
		var (
			e            models.Entry
			entryContext sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Emoji, &entryContext, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.UserID = userID
		e.Context = entryContext.String
		e.CreatedAt = e.CreatedAt.UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
