package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types. reply_received rows carry the Processed flag; everything
// else is written once and never touched again.
const (
	EventInitialOutreach       = "initial_outreach"
	EventFollowUpSent          = "follow_up_sent"
	EventReplyReceived         = "reply_received"
	EventRepliedNeutral        = "replied_neutral"
	EventRepliedUnknown        = "replied_unknown"
	EventAutoReplyPositive     = "auto_reply_positive"
	EventAutoReplyNegative     = "auto_reply_negative"
	EventAutoUnsubFromReply    = "auto_unsubscribe_from_reply"
	EventUnsubscribedAutomated = "unsubscribed_automated"
	EventUnsubscribedViaLink   = "unsubscribed_via_link"
	EventMeetingBooked         = "meeting_booked"
)

const (
	EventStatusSuccess = "SUCCESS"
	EventStatusFailed  = "FAILED"
)

// Event is an append-only audit record. The lead table can be rebuilt
// from these rows; the reverse is not true.
type Event struct {
	ID             string    `json:"id"`
	Type           string    `json:"event_type"`
	RecipientEmail string    `json:"recipient_email"`
	Subject        string    `json:"subject,omitempty"`
	Body           string    `json:"body,omitempty"`
	Status         string    `json:"status"`
	Processed      bool      `json:"processed"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewEvent(eventType, recipient, subject, body, status string) *Event {
	return &Event{
		ID:             uuid.New().String(),
		Type:           eventType,
		RecipientEmail: recipient,
		Subject:        subject,
		Body:           body,
		Status:         status,
		CreatedAt:      time.Now(),
	}
}

type EventLogInterface interface {
	Append(ctx context.Context, e *Event) error
	FindUnprocessedReplies(ctx context.Context) ([]*Event, error)
	MarkProcessed(ctx context.Context, id string) error
}
