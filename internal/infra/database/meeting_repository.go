package database

import (
	"context"
	"database/sql"

	"github.com/morphius-ai/outreach-engine/internal/entity"
)

type MeetingRepository struct {
	DB *sql.DB
}

func NewMeetingRepository(db *sql.DB) *MeetingRepository {
	return &MeetingRepository{DB: db}
}

func (r *MeetingRepository) Create(ctx context.Context, m *entity.Meeting) error {
	query := `
		INSERT INTO meetings (id, email, meet_time, meet_link, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.DB.ExecContext(ctx, query,
		m.ID,
		m.Email,
		m.StartsAt,
		nullString(m.MeetLink),
		m.CreatedAt,
	)
	return err
}
