package database

import (
	"context"
	"database/sql"

	"github.com/morphius-ai/outreach-engine/internal/entity"
)

type EventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{DB: db}
}

func (r *EventRepository) Append(ctx context.Context, e *entity.Event) error {
	query := `
		INSERT INTO events (id, event_type, recipient_email, subject, body, status, processed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.DB.ExecContext(ctx, query,
		e.ID,
		e.Type,
		e.RecipientEmail,
		nullString(e.Subject),
		nullString(e.Body),
		e.Status,
		e.Processed,
		e.CreatedAt,
	)
	return err
}

// FindUnprocessedReplies returns reply_received rows the engine has not
// handled yet, oldest first.
func (r *EventRepository) FindUnprocessedReplies(ctx context.Context) ([]*entity.Event, error) {
	query := `
		SELECT id, event_type, recipient_email, COALESCE(subject, ''), COALESCE(body, ''), status, processed, created_at
		FROM events
		WHERE event_type = $1 AND NOT processed
		ORDER BY created_at ASC
	`

	rows, err := r.DB.QueryContext(ctx, query, entity.EventReplyReceived)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*entity.Event
	for rows.Next() {
		var e entity.Event
		err := rows.Scan(
			&e.ID,
			&e.Type,
			&e.RecipientEmail,
			&e.Subject,
			&e.Body,
			&e.Status,
			&e.Processed,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

func (r *EventRepository) MarkProcessed(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE events SET processed = TRUE WHERE id = $1`, id)
	return err
}
