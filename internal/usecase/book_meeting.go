package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/morphius-ai/outreach-engine/internal/entity"
)

type CalendarService interface {
	AvailableSlots(ctx context.Context) ([]time.Time, error)
	CreateMeeting(ctx context.Context, email string, start time.Time) (string, error)
}

// BookMeetingUseCase confirms a demo slot picked on the booking page and
// moves the lead into its BOOKED terminal state.
type BookMeetingUseCase struct {
	Leads    entity.LeadRepositoryInterface
	Events   entity.EventLogInterface
	Meetings entity.MeetingRepositoryInterface
	Calendar CalendarService
	Clock    Clock
}

func NewBookMeetingUseCase(
	leads entity.LeadRepositoryInterface,
	events entity.EventLogInterface,
	meetings entity.MeetingRepositoryInterface,
	cal CalendarService,
	clock Clock,
) *BookMeetingUseCase {
	if clock == nil {
		clock = RealClock{}
	}
	return &BookMeetingUseCase{Leads: leads, Events: events, Meetings: meetings, Calendar: cal, Clock: clock}
}

func (uc *BookMeetingUseCase) Slots(ctx context.Context) ([]time.Time, error) {
	slots, err := uc.Calendar.AvailableSlots(ctx)
	if err != nil {
		return nil, &TechnicalError{Code: "CALENDAR_ERROR", Message: "listing slots: " + err.Error()}
	}
	return slots, nil
}

func (uc *BookMeetingUseCase) Execute(ctx context.Context, email string, start time.Time) (*entity.Meeting, error) {
	lead, err := uc.Leads.FindByEmail(ctx, email)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return nil, &DomainError{Code: "LEAD_NOT_FOUND", Message: "no outreach on record for " + email}
	}
	if err != nil {
		return nil, fmt.Errorf("lead lookup: %w", err)
	}
	if lead.Status == entity.StatusUnsubscribed {
		return nil, &DomainError{Code: "LEAD_UNSUBSCRIBED", Message: "this address has unsubscribed"}
	}

	link, err := uc.Calendar.CreateMeeting(ctx, email, start)
	if err != nil {
		return nil, &TechnicalError{Code: "CALENDAR_ERROR", Message: "creating meeting: " + err.Error()}
	}

	meeting := entity.NewMeeting(email, start, link)
	if err := uc.Meetings.Create(ctx, meeting); err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "saving meeting: " + err.Error()}
	}

	now := uc.Clock.Now()
	lead.Status = entity.StatusBooked
	lead.UpdatedAt = now
	if err := uc.Leads.Upsert(ctx, lead); err != nil {
		return nil, fmt.Errorf("saving booked state: %w", err)
	}

	ev := entity.NewEvent(entity.EventMeetingBooked, email, "Meeting booked", link, entity.EventStatusSuccess)
	if err := uc.Events.Append(ctx, ev); err != nil {
		return nil, fmt.Errorf("recording booking: %w", err)
	}
	return meeting, nil
}
