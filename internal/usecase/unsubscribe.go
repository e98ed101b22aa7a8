package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/morphius-ai/outreach-engine/internal/entity"
)

// UnsubscribeUseCase backs the public unsubscribe link. Repeated calls
// with the same email change nothing after the first.
type UnsubscribeUseCase struct {
	Leads  entity.LeadRepositoryInterface
	Events entity.EventLogInterface
	Clock  Clock
}

func NewUnsubscribeUseCase(leads entity.LeadRepositoryInterface, events entity.EventLogInterface, clock Clock) *UnsubscribeUseCase {
	if clock == nil {
		clock = RealClock{}
	}
	return &UnsubscribeUseCase{Leads: leads, Events: events, Clock: clock}
}

// Execute returns true when the email was already unsubscribed.
func (uc *UnsubscribeUseCase) Execute(ctx context.Context, email string) (bool, error) {
	lead, err := uc.Leads.FindByEmail(ctx, email)
	if errors.Is(err, entity.ErrLeadNotFound) {
		// Unknown address: record it as unsubscribed anyway so a future
		// campaign upload can never mail it.
		lead = entity.NewLead(email, "")
	} else if err != nil {
		return false, fmt.Errorf("lead lookup: %w", err)
	}

	if lead.Status == entity.StatusUnsubscribed {
		return true, nil
	}

	now := uc.Clock.Now()
	lead.Status = entity.StatusUnsubscribed
	lead.UpdatedAt = now
	if err := uc.Leads.Upsert(ctx, lead); err != nil {
		return false, fmt.Errorf("saving unsubscribe: %w", err)
	}

	ev := entity.NewEvent(entity.EventUnsubscribedViaLink, email, "", "unsubscribed via link", entity.EventStatusSuccess)
	if err := uc.Events.Append(ctx, ev); err != nil {
		return false, fmt.Errorf("recording unsubscribe: %w", err)
	}
	return false, nil
}
