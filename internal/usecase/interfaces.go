package usecase

import (
	"context"
	"time"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNegative Sentiment = "NEGATIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
	SentimentUnknown  Sentiment = "UNKNOWN"
)

// SentimentClassifier maps a reply body to a sentiment. Implementations
// must not fail the caller: on any internal error they return
// SentimentUnknown instead of an error value.
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) Sentiment
}

// NotificationDispatcher sends one email. Synchronous, no implicit retry;
// an error means the message did not go out.
type NotificationDispatcher interface {
	Send(ctx context.Context, to, subject, body string) error
}

type Clock interface {
	Now() time.Time
}

// RealClock is what production wiring injects; tests pin their own.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// EngineConfig is the full knob surface of the lifecycle engine. It is
// passed in at construction; the engine reads no ambient state.
type EngineConfig struct {
	GracePeriodMinutes  int
	MaxFollowUps        int
	UnsubscribeKeywords []string

	// Links dropped into automated responses.
	BookingURL      string
	ServicesURL     string
	SenderName      string
	CampaignSubject string
}

const (
	DefaultGracePeriodMinutes = 1440
	DefaultMaxFollowUps       = 4
	DefaultCampaignSubject    = "Exploring Collaboration Opportunities with Morphius AI"
)

func (c EngineConfig) withDefaults() EngineConfig {
	if c.GracePeriodMinutes <= 0 {
		c.GracePeriodMinutes = DefaultGracePeriodMinutes
	}
	if c.MaxFollowUps <= 0 {
		c.MaxFollowUps = DefaultMaxFollowUps
	}
	if len(c.UnsubscribeKeywords) == 0 {
		c.UnsubscribeKeywords = []string{"unsubscribe", "remove me", "opt out"}
	}
	if c.SenderName == "" {
		c.SenderName = "Morphius AI"
	}
	if c.CampaignSubject == "" {
		c.CampaignSubject = DefaultCampaignSubject
	}
	return c
}

// CycleReport summarizes one engine run for the operator.
type CycleReport struct {
	LeadsSeen         int `json:"leads_seen"`
	RepliesProcessed  int `json:"replies_processed"`
	FollowUpsSent     int `json:"follow_ups_sent"`
	MeetingLinksSent  int `json:"meeting_links_sent"`
	AlternativeOffers int `json:"alternative_offers_sent"`
	Unsubscribed      int `json:"unsubscribed"`
	Failures          int `json:"failures"`
}

// InboundReply is a raw message pulled from the mailbox, before it is
// matched against a lead.
type InboundReply struct {
	From    string
	Subject string
	Body    string
}
