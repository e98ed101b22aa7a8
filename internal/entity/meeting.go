package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Meeting struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	StartsAt  time.Time `json:"starts_at"`
	MeetLink  string    `json:"meet_link"`
	CreatedAt time.Time `json:"created_at"`
}

func NewMeeting(email string, startsAt time.Time, meetLink string) *Meeting {
	return &Meeting{
		ID:        uuid.New().String(),
		Email:     email,
		StartsAt:  startsAt,
		MeetLink:  meetLink,
		CreatedAt: time.Now(),
	}
}

type MeetingRepositoryInterface interface {
	Create(ctx context.Context, m *Meeting) error
}
