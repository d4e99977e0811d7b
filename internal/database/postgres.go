package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

var PostgresDB *sql.DB

// ConnectPostgres connects to PostgreSQL and creates the mood entry table.
func ConnectPostgres(postgresURI string) error {
	db, err := sql.Open("postgres", postgresURI)
	if err != nil {
		return err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}

	PostgresDB = db
	log.Println("✅ Connected to PostgreSQL")

	return InitPostgresTables()
}

// InitPostgresTables creates all necessary tables if they don't exist
func InitPostgresTables() error {
	if err := CreateEntryTables(PostgresDB); err != nil {
		return err
	}
	log.Println("✅ PostgreSQL tables initialized")
	return nil
}

// CreateEntryTables applies the mood entry schema to db.
func CreateEntryTables(db *sql.DB) error {
	queries := []string{
		// entry_id is only unique inside one user's collection
		`CREATE TABLE IF NOT EXISTS mood_entries (
			user_id VARCHAR(128) NOT NULL,
			entry_id VARCHAR(64) NOT NULL,
			emoji VARCHAR(64) NOT NULL,
			context TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, entry_id)
		)`,
		`ALTER TABLE mood_entries ALTER COLUMN emoji TYPE VARCHAR(64)`,
		`CREATE INDEX IF NOT EXISTS idx_mood_entries_user_created
			ON mood_entries (user_id, created_at DESC)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// DisconnectPostgres closes the PostgreSQL connection
func DisconnectPostgres() error {
	if PostgresDB != nil {
		return PostgresDB.Close()
	}
	return nil
}
