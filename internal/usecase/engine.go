package usecase

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/morphius-ai/outreach-engine/internal/entity"
)

// OutreachEngine is the single authority over lead state. Per cycle it
// decides, for every active lead, whether to answer a reply, send a
// follow-up, unsubscribe, or do nothing — at most one action per lead.
type OutreachEngine struct {
	Leads      entity.LeadRepositoryInterface
	Events     entity.EventLogInterface
	Classifier SentimentClassifier
	Dispatcher NotificationDispatcher
	Clock      Clock
	Config     EngineConfig

	// Cycles never overlap; together with the sequential per-lead loop
	// this serializes all reads/writes for a single lead.
	mu sync.Mutex
}

func NewOutreachEngine(
	leads entity.LeadRepositoryInterface,
	events entity.EventLogInterface,
	classifier SentimentClassifier,
	dispatcher NotificationDispatcher,
	clock Clock,
	cfg EngineConfig,
) *OutreachEngine {
	if clock == nil {
		clock = RealClock{}
	}
	return &OutreachEngine{
		Leads:      leads,
		Events:     events,
		Classifier: classifier,
		Dispatcher: dispatcher,
		Clock:      clock,
		Config:     cfg.withDefaults(),
	}
}

// RunCycle processes every active lead once. A lead that fails is logged
// and skipped; it never aborts the rest of the cycle. With no new replies
// and no elapsed grace period the cycle is a pure no-op.
func (e *OutreachEngine) RunCycle(ctx context.Context) (*CycleReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.Clock.Now()
	report := &CycleReport{}

	replies, err := e.Events.FindUnprocessedReplies(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading unprocessed replies: %w", err)
	}

	// Oldest unprocessed reply per lead; at most one is handled per cycle.
	pending := make(map[string]*entity.Event)
	for _, r := range replies {
		if _, ok := pending[r.RecipientEmail]; !ok {
			pending[r.RecipientEmail] = r
		}
	}

	leads, err := e.Leads.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading active leads: %w", err)
	}
	report.LeadsSeen = len(leads)

	// A reply whose lead went terminal after ingestion matches no active
	// lead and would be re-fetched forever. Retire it now.
	active := make(map[string]bool, len(leads))
	for _, l := range leads {
		active[l.Email] = true
	}
	for email, r := range pending {
		if active[email] {
			continue
		}
		log.Printf("engine: dropping reply from inactive lead %s", email)
		if err := e.Events.MarkProcessed(ctx, r.ID); err != nil {
			report.Failures++
			log.Printf("engine: retiring reply %s: %v", r.ID, err)
		}
	}

	for _, lead := range leads {
		select {
		case <-ctx.Done():
			// Committed leads stay committed; the rest wait for the next cycle.
			return report, ctx.Err()
		default:
		}

		if err := e.processLead(ctx, lead, pending[lead.Email], now, report); err != nil {
			report.Failures++
			log.Printf("engine: lead %s skipped: %v", lead.Email, err)
		}
	}

	return report, nil
}

func (e *OutreachEngine) processLead(ctx context.Context, lead *entity.Lead, reply *entity.Event, now time.Time, report *CycleReport) error {
	// Replies always win over follow-up timing for the same lead.
	if reply != nil {
		return e.handleReply(ctx, lead, reply, now, report)
	}
	return e.evaluateFollowUp(ctx, lead, now, report)
}

func (e *OutreachEngine) handleReply(ctx context.Context, lead *entity.Lead, reply *entity.Event, now time.Time, report *CycleReport) error {
	report.RepliesProcessed++

	// Keyword check is a hard override of whatever the classifier would say.
	if e.containsUnsubscribeKeyword(reply.Body) {
		lead.Status = entity.StatusUnsubscribed
		lead.UpdatedAt = now
		if err := e.Leads.Upsert(ctx, lead); err != nil {
			return fmt.Errorf("unsubscribing from reply: %w", err)
		}
		e.appendEvent(ctx, entity.EventAutoUnsubFromReply, lead.Email, reply.Subject, "unsubscribe keyword in reply", entity.EventStatusSuccess)
		report.Unsubscribed++
		return e.Events.MarkProcessed(ctx, reply.ID)
	}

	sentiment := e.Classifier.Classify(ctx, reply.Body)

	switch sentiment {
	case SentimentPositive:
		subject := "Let's schedule a call"
		body := e.meetingInviteBody(lead)
		if err := e.Dispatcher.Send(ctx, lead.Email, subject, body); err != nil {
			// Reply stays unprocessed so the next cycle retries the invite.
			e.appendEvent(ctx, entity.EventAutoReplyPositive, lead.Email, subject, body, entity.EventStatusFailed)
			return fmt.Errorf("meeting invite dispatch: %w", err)
		}
		// The email is out; the audit record must exist even when the
		// state save below fails.
		e.appendEvent(ctx, entity.EventAutoReplyPositive, lead.Email, subject, body, entity.EventStatusSuccess)
		lead.Status = entity.StatusRepliedPositive
		lead.LastContactedAt = &now
		lead.UpdatedAt = now
		if err := e.Leads.Upsert(ctx, lead); err != nil {
			return fmt.Errorf("saving positive reply state: %w", err)
		}
		report.MeetingLinksSent++

	case SentimentNegative:
		subject := "No problem — maybe one of these fits better"
		body := e.alternativeOfferBody(lead)
		if err := e.Dispatcher.Send(ctx, lead.Email, subject, body); err != nil {
			e.appendEvent(ctx, entity.EventAutoReplyNegative, lead.Email, subject, body, entity.EventStatusFailed)
			return fmt.Errorf("alternative offer dispatch: %w", err)
		}
		e.appendEvent(ctx, entity.EventAutoReplyNegative, lead.Email, subject, body, entity.EventStatusSuccess)
		lead.Status = entity.StatusRepliedNegative
		lead.LastContactedAt = &now
		lead.UpdatedAt = now
		if err := e.Leads.Upsert(ctx, lead); err != nil {
			return fmt.Errorf("saving negative reply state: %w", err)
		}
		report.AlternativeOffers++

	default:
		// Neutral or unknown: record the classification, dispatch nothing.
		// The lead stays in the follow-up rotation.
		lead.Status = entity.StatusRepliedNeutral
		lead.UpdatedAt = now
		if err := e.Leads.Upsert(ctx, lead); err != nil {
			return fmt.Errorf("saving neutral reply state: %w", err)
		}
		eventType := entity.EventRepliedNeutral
		if sentiment == SentimentUnknown {
			eventType = entity.EventRepliedUnknown
		}
		e.appendEvent(ctx, eventType, lead.Email, reply.Subject, "no automated response for this sentiment", entity.EventStatusSuccess)
	}

	return e.Events.MarkProcessed(ctx, reply.ID)
}

func (e *OutreachEngine) evaluateFollowUp(ctx context.Context, lead *entity.Lead, now time.Time, report *CycleReport) error {
	if lead.LastContactedAt == nil {
		// Never contacted outbound; the campaign owns the first touch.
		return nil
	}

	elapsed := int(now.Sub(*lead.LastContactedAt).Minutes())
	if elapsed < e.Config.GracePeriodMinutes {
		return nil
	}

	if lead.FollowUpCount >= e.Config.MaxFollowUps {
		lead.Status = entity.StatusUnsubscribed
		lead.UpdatedAt = now
		if err := e.Leads.Upsert(ctx, lead); err != nil {
			return fmt.Errorf("auto-unsubscribing exhausted lead: %w", err)
		}
		e.appendEvent(ctx, entity.EventUnsubscribedAutomated, lead.Email, "", "max follow-ups reached", entity.EventStatusSuccess)
		report.Unsubscribed++
		return nil
	}

	sequence := lead.FollowUpCount + 1
	subject := "Re: " + e.Config.CampaignSubject
	body := e.followUpBody(lead, sequence)
	if err := e.Dispatcher.Send(ctx, lead.Email, subject, body); err != nil {
		// Nothing advances: the same lead is due again next cycle.
		e.appendEvent(ctx, entity.EventFollowUpSent, lead.Email, subject, body, entity.EventStatusFailed)
		return fmt.Errorf("follow-up dispatch: %w", err)
	}

	// Audit the send first: a failed state save must not erase the fact
	// that the follow-up went out.
	e.appendEvent(ctx, entity.EventFollowUpSent, lead.Email, subject, body, entity.EventStatusSuccess)

	lead.FollowUpCount = sequence
	lead.LastContactedAt = &now
	if lead.Status == entity.StatusPending {
		lead.Status = entity.StatusAwaitingReply
	}
	lead.UpdatedAt = now
	if err := e.Leads.Upsert(ctx, lead); err != nil {
		return fmt.Errorf("saving follow-up state: %w", err)
	}
	report.FollowUpsSent++
	return nil
}

func (e *OutreachEngine) containsUnsubscribeKeyword(body string) bool {
	lower := strings.ToLower(body)
	for _, kw := range e.Config.UnsubscribeKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// appendEvent never fails the lead: the action already happened, so a
// broken audit write is logged loudly and life goes on.
func (e *OutreachEngine) appendEvent(ctx context.Context, eventType, recipient, subject, body, status string) {
	ev := entity.NewEvent(eventType, recipient, subject, body, status)
	if err := e.Events.Append(ctx, ev); err != nil {
		log.Printf("engine: CRITICAL: event %s for %s not recorded: %v", eventType, recipient, err)
	}
}

func (e *OutreachEngine) meetingInviteBody(lead *entity.Lead) string {
	link := e.Config.BookingURL
	if link != "" {
		link += "?email=" + url.QueryEscape(lead.Email)
	}
	return fmt.Sprintf(
		"<p>Hi %s,</p><p>Great to hear back from you! You can pick a slot that works for you here:</p><p><a href=\"%s\">%s</a></p><p>Talk soon,<br>%s</p>",
		lead.DisplayName(), link, link, e.Config.SenderName,
	)
}

func (e *OutreachEngine) alternativeOfferBody(lead *entity.Lead) string {
	return fmt.Sprintf(
		"<p>Hi %s,</p><p>Thanks for the honest answer — no hard feelings. In case something else is a better fit, here is what we offer:</p><p><a href=\"%s\">%s</a></p><p>All the best,<br>%s</p>",
		lead.DisplayName(), e.Config.ServicesURL, e.Config.ServicesURL, e.Config.SenderName,
	)
}

func (e *OutreachEngine) followUpBody(lead *entity.Lead, sequence int) string {
	return fmt.Sprintf(
		"<p>Hi %s,</p><p>Just floating my earlier note (\"%s\") back to the top of your inbox — I'd still love to hear your thoughts.</p><p>This is follow-up %d; reply \"unsubscribe\" any time and you won't hear from us again.</p><p>Best,<br>%s</p>",
		lead.DisplayName(), e.Config.CampaignSubject, sequence, e.Config.SenderName,
	)
}
