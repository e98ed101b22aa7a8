package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/morphius-ai/outreach-engine/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) Upsert(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (email, name, status, follow_up_count, last_contacted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (email)
		DO UPDATE SET
			name = COALESCE(EXCLUDED.name, leads.name),
			status = EXCLUDED.status,
			follow_up_count = EXCLUDED.follow_up_count,
			last_contacted_at = COALESCE(EXCLUDED.last_contacted_at, leads.last_contacted_at),
			updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err := r.DB.QueryRowContext(
		ctx,
		query,
		lead.Email,
		nullString(lead.Name),
		lead.Status,
		lead.FollowUpCount,
		lead.LastContactedAt,
	).Scan(
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)

	return err
}

func (r *LeadRepository) GetActive(ctx context.Context) ([]*entity.Lead, error) {
	query := `
		SELECT email, COALESCE(name, ''), status, follow_up_count, last_contacted_at, created_at, updated_at
		FROM leads
		WHERE status NOT IN ($1, $2)
		ORDER BY created_at
	`

	rows, err := r.DB.QueryContext(ctx, query, entity.StatusUnsubscribed, entity.StatusBooked)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

func (r *LeadRepository) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	query := `
		SELECT email, COALESCE(name, ''), status, follow_up_count, last_contacted_at, created_at, updated_at
		FROM leads
		WHERE email = $1
	`

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}
	return lead, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var lead entity.Lead
	var lastContacted sql.NullTime

	err := row.Scan(
		&lead.Email,
		&lead.Name,
		&lead.Status,
		&lead.FollowUpCount,
		&lastContacted,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastContacted.Valid {
		t := lastContacted.Time
		lead.LastContactedAt = &t
	}
	return &lead, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
