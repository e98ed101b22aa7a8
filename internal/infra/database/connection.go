package database

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq" // Postgres driver
)

// NewDBConnection opens the pool and proves it with a ping.
func NewDBConnection(connString string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	return db, nil
}

// EnsureSchema creates the tables on first boot. Idempotent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS leads (
		email TEXT PRIMARY KEY,
		name TEXT,
		status TEXT NOT NULL DEFAULT 'PENDING',
		follow_up_count INT NOT NULL DEFAULT 0,
		last_contacted_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS events (
		id UUID PRIMARY KEY,
		event_type TEXT NOT NULL,
		recipient_email TEXT NOT NULL,
		subject TEXT,
		body TEXT,
		status TEXT NOT NULL,
		processed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_events_pending_replies
		ON events (created_at)
		WHERE event_type = 'reply_received' AND NOT processed;

	CREATE TABLE IF NOT EXISTS meetings (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL,
		meet_time TIMESTAMPTZ NOT NULL,
		meet_link TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`

	_, err := db.ExecContext(ctx, schema)
	return err
}
