package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/morphius-ai/outreach-engine/internal/entity"
	"github.com/morphius-ai/outreach-engine/internal/usecase"
)

type MockCalendarService struct {
	mock.Mock
}

func (m *MockCalendarService) AvailableSlots(ctx context.Context) ([]time.Time, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}

func (m *MockCalendarService) CreateMeeting(ctx context.Context, email string, start time.Time) (string, error) {
	args := m.Called(ctx, email, start)
	return args.String(0), args.Error(1)
}

type MockMeetingRepository struct {
	mock.Mock
}

func (m *MockMeetingRepository) Create(ctx context.Context, meeting *entity.Meeting) error {
	args := m.Called(ctx, meeting)
	return args.Error(0)
}

func TestBookMeetingMarksLeadBooked(t *testing.T) {
	leads := new(MockLeadRepository)
	events := new(MockEventLog)
	meetings := new(MockMeetingRepository)
	cal := new(MockCalendarService)
	uc := usecase.NewBookMeetingUseCase(leads, events, meetings, cal, nil)

	start := time.Date(2025, 6, 3, 10, 30, 0, 0, time.UTC)
	lead := &entity.Lead{Email: "ana@example.com", Status: entity.StatusRepliedPositive}

	leads.On("FindByEmail", mock.Anything, "ana@example.com").Return(lead, nil)
	cal.On("CreateMeeting", mock.Anything, "ana@example.com", start).Return("https://meet.google.com/abc-defg-hij", nil)
	meetings.On("Create", mock.Anything, mock.MatchedBy(func(m *entity.Meeting) bool {
		return m.Email == "ana@example.com" && m.StartsAt.Equal(start)
	})).Return(nil).Once()
	leads.On("Upsert", mock.Anything, lead).Return(nil).Once()
	events.On("Append", mock.Anything, mock.MatchedBy(func(e *entity.Event) bool {
		return e.Type == entity.EventMeetingBooked
	})).Return(nil).Once()

	meeting, err := uc.Execute(context.Background(), "ana@example.com", start)

	assert.NoError(t, err)
	assert.Equal(t, "https://meet.google.com/abc-defg-hij", meeting.MeetLink)
	assert.Equal(t, entity.StatusBooked, lead.Status)
	leads.AssertExpectations(t)
	meetings.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestBookMeetingRejectsUnknownLead(t *testing.T) {
	leads := new(MockLeadRepository)
	cal := new(MockCalendarService)
	uc := usecase.NewBookMeetingUseCase(leads, new(MockEventLog), new(MockMeetingRepository), cal, nil)

	leads.On("FindByEmail", mock.Anything, "stranger@example.com").Return(nil, entity.ErrLeadNotFound)

	_, err := uc.Execute(context.Background(), "stranger@example.com", time.Now())

	assert.Error(t, err)
	assert.True(t, usecase.IsDomainError(err))
	cal.AssertNotCalled(t, "CreateMeeting", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookMeetingRejectsUnsubscribedLead(t *testing.T) {
	leads := new(MockLeadRepository)
	cal := new(MockCalendarService)
	uc := usecase.NewBookMeetingUseCase(leads, new(MockEventLog), new(MockMeetingRepository), cal, nil)

	lead := &entity.Lead{Email: "gone@example.com", Status: entity.StatusUnsubscribed}
	leads.On("FindByEmail", mock.Anything, "gone@example.com").Return(lead, nil)

	_, err := uc.Execute(context.Background(), "gone@example.com", time.Now())

	assert.Error(t, err)
	assert.True(t, usecase.IsDomainError(err))
	cal.AssertNotCalled(t, "CreateMeeting", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookMeetingCalendarFailureLeavesLeadUntouched(t *testing.T) {
	leads := new(MockLeadRepository)
	cal := new(MockCalendarService)
	uc := usecase.NewBookMeetingUseCase(leads, new(MockEventLog), new(MockMeetingRepository), cal, nil)

	lead := &entity.Lead{Email: "ana@example.com", Status: entity.StatusRepliedPositive}
	leads.On("FindByEmail", mock.Anything, "ana@example.com").Return(lead, nil)
	cal.On("CreateMeeting", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("quota exceeded"))

	_, err := uc.Execute(context.Background(), "ana@example.com", time.Now())

	assert.Error(t, err)
	assert.True(t, usecase.IsTechnicalError(err))
	assert.Equal(t, entity.StatusRepliedPositive, lead.Status)
	leads.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestBookMeetingSlotsWrapCalendarErrors(t *testing.T) {
	cal := new(MockCalendarService)
	uc := usecase.NewBookMeetingUseCase(new(MockLeadRepository), new(MockEventLog), new(MockMeetingRepository), cal, nil)

	cal.On("AvailableSlots", mock.Anything).Return(nil, errors.New("token expired"))

	_, err := uc.Slots(context.Background())

	assert.Error(t, err)
	assert.True(t, usecase.IsTechnicalError(err))
}
