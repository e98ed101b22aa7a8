package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/morphius-ai/outreach-engine/internal/entity"
)

// MockCampaignMailer
type MockCampaignMailer struct {
	mock.Mock
}

func (m *MockCampaignMailer) SendOutreach(ctx context.Context, to, name, subject string) error {
	args := m.Called(ctx, to, name, subject)
	return args.Error(0)
}

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Upsert(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) GetActive(ctx context.Context) ([]*entity.Lead, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

// MockEventLog
type MockEventLog struct {
	mock.Mock
}

func (m *MockEventLog) Append(ctx context.Context, e *entity.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEventLog) FindUnprocessedReplies(ctx context.Context) ([]*entity.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Event), args.Error(1)
}

func (m *MockEventLog) MarkProcessed(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestProcessMessageSendsAndAdvancesLead(t *testing.T) {
	mailer := new(MockCampaignMailer)
	leads := new(MockLeadRepository)
	events := new(MockEventLog)
	w := NewWorker(nil, mailer, leads, events)

	leads.On("FindByEmail", mock.Anything, "ana@example.com").Return(nil, entity.ErrLeadNotFound)
	mailer.On("SendOutreach", mock.Anything, "ana@example.com", "Ana", "Hello").Return(nil).Once()
	events.On("Append", mock.Anything, mock.MatchedBy(func(e *entity.Event) bool {
		return e.Type == entity.EventInitialOutreach && e.Status == entity.EventStatusSuccess
	})).Return(nil).Once()
	leads.On("Upsert", mock.Anything, mock.MatchedBy(func(l *entity.Lead) bool {
		return l.Status == entity.StatusAwaitingReply && l.LastContactedAt != nil
	})).Return(nil).Once()

	err := w.processMessage(context.Background(), CampaignMessage{Email: "ana@example.com", Name: "Ana", Subject: "Hello"})

	assert.NoError(t, err)
	mailer.AssertExpectations(t)
	leads.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestProcessMessageSuppressesTerminalLead(t *testing.T) {
	mailer := new(MockCampaignMailer)
	leads := new(MockLeadRepository)
	events := new(MockEventLog)
	w := NewWorker(nil, mailer, leads, events)

	gone := &entity.Lead{Email: "gone@example.com", Status: entity.StatusUnsubscribed}
	leads.On("FindByEmail", mock.Anything, "gone@example.com").Return(gone, nil)

	err := w.processMessage(context.Background(), CampaignMessage{Email: "gone@example.com", Subject: "Hello"})

	assert.NoError(t, err)
	mailer.AssertNotCalled(t, "SendOutreach", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessMessageRecordsFailedSend(t *testing.T) {
	mailer := new(MockCampaignMailer)
	leads := new(MockLeadRepository)
	events := new(MockEventLog)
	w := NewWorker(nil, mailer, leads, events)

	leads.On("FindByEmail", mock.Anything, "ana@example.com").Return(nil, entity.ErrLeadNotFound)
	mailer.On("SendOutreach", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("smtp unavailable"))
	events.On("Append", mock.Anything, mock.MatchedBy(func(e *entity.Event) bool {
		return e.Type == entity.EventInitialOutreach && e.Status == entity.EventStatusFailed
	})).Return(nil).Once()

	err := w.processMessage(context.Background(), CampaignMessage{Email: "ana@example.com", Subject: "Hello"})

	assert.Error(t, err)
	leads.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	events.AssertExpectations(t)
}

func TestProcessMessageAuditsSendWhenSaveFails(t *testing.T) {
	mailer := new(MockCampaignMailer)
	leads := new(MockLeadRepository)
	events := new(MockEventLog)
	w := NewWorker(nil, mailer, leads, events)

	leads.On("FindByEmail", mock.Anything, "ana@example.com").Return(nil, entity.ErrLeadNotFound)
	mailer.On("SendOutreach", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	events.On("Append", mock.Anything, mock.MatchedBy(func(e *entity.Event) bool {
		return e.Type == entity.EventInitialOutreach && e.Status == entity.EventStatusSuccess
	})).Return(nil).Once()
	leads.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("constraint violation"))

	err := w.processMessage(context.Background(), CampaignMessage{Email: "ana@example.com", Subject: "Hello"})

	assert.Error(t, err)
	events.AssertExpectations(t)
}
