package entity

import (
	"context"
	"errors"
	"time"
)

// Lead statuses. UNSUBSCRIBED and BOOKED are terminal: once a lead lands
// on one of them, no further automated outbound mail is ever sent.
const (
	StatusPending         = "PENDING"
	StatusAwaitingReply   = "AWAITING_REPLY"
	StatusRepliedPositive = "REPLIED_POSITIVE"
	StatusRepliedNegative = "REPLIED_NEGATIVE"
	StatusRepliedNeutral  = "REPLIED_NEUTRAL"
	StatusBooked          = "BOOKED"
	StatusUnsubscribed    = "UNSUBSCRIBED"
)

var ErrLeadNotFound = errors.New("lead not found")

// Lead is a prospective contact moving through the outreach lifecycle.
// FollowUpCount and LastContactedAt are derived from the event log and
// cached here; the lifecycle engine is the only writer.
type Lead struct {
	Email           string     `json:"email"`
	Name            string     `json:"name,omitempty"`
	Status          string     `json:"status"`
	FollowUpCount   int        `json:"follow_up_count"`
	LastContactedAt *time.Time `json:"last_contacted_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func NewLead(email, name string) *Lead {
	return &Lead{
		Email:     email,
		Name:      name,
		Status:    StatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func (l *Lead) IsTerminal() bool {
	return l.Status == StatusUnsubscribed || l.Status == StatusBooked
}

// DisplayName is what goes into the email greeting.
func (l *Lead) DisplayName() string {
	if l.Name == "" {
		return "there"
	}
	return l.Name
}

type LeadRepositoryInterface interface {
	Upsert(ctx context.Context, lead *Lead) error
	GetActive(ctx context.Context) ([]*Lead, error)
	FindByEmail(ctx context.Context, email string) (*Lead, error)
}
