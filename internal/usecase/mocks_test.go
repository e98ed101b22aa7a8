package usecase_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/morphius-ai/outreach-engine/internal/entity"
	"github.com/morphius-ai/outreach-engine/internal/infra/queue"
	"github.com/morphius-ai/outreach-engine/internal/usecase"
)

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

// MockDispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

// MockClassifier
type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, text string) usecase.Sentiment {
	args := m.Called(ctx, text)
	return args.Get(0).(usecase.Sentiment)
}

// MockCampaignQueue
type MockCampaignQueue struct {
	mock.Mock
}

func (m *MockCampaignQueue) PublishCampaignSend(ctx context.Context, msg queue.CampaignMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// fixedClock pins the engine's notion of now; tests move it by hand.
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) advance(d time.Duration) { c.now = c.now.Add(d) }

// In-memory fakes for the stateful end-to-end scenarios, where testify
// call assertions would obscure what actually accumulated.

type fakeLeadStore struct {
	mu    sync.Mutex
	leads map[string]*entity.Lead
}

func newFakeLeadStore(leads ...*entity.Lead) *fakeLeadStore {
	s := &fakeLeadStore{leads: make(map[string]*entity.Lead)}
	for _, l := range leads {
		copied := *l
		s.leads[l.Email] = &copied
	}
	return s
}

func (s *fakeLeadStore) Upsert(ctx context.Context, lead *entity.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *lead
	s.leads[lead.Email] = &copied
	return nil
}

func (s *fakeLeadStore) GetActive(ctx context.Context) ([]*entity.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Lead
	for _, l := range s.leads {
		if !l.IsTerminal() {
			copied := *l
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakeLeadStore) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[email]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	copied := *l
	return &copied, nil
}

func (s *fakeLeadStore) get(email string) *entity.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leads[email]
}

type fakeEventLog struct {
	mu     sync.Mutex
	events []*entity.Event
}

func (l *fakeEventLog) Append(ctx context.Context, e *entity.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	copied := *e
	l.events = append(l.events, &copied)
	return nil
}

func (l *fakeEventLog) FindUnprocessedReplies(ctx context.Context) ([]*entity.Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*entity.Event
	for _, e := range l.events {
		if e.Type == entity.EventReplyReceived && !e.Processed {
			out = append(out, e)
		}
	}
	return out, nil
}

func (l *fakeEventLog) MarkProcessed(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.events {
		if e.ID == id {
			e.Processed = true
			return nil
		}
	}
	return errors.New("event not found")
}

func (l *fakeEventLog) ofType(eventType string) []*entity.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*entity.Event
	for _, e := range l.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fakeDispatcher struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (d *fakeDispatcher) Send(ctx context.Context, to, subject, body string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return errors.New("smtp unavailable")
	}
	d.sent = append(d.sent, to+": "+subject)
	return nil
}

type stubClassifier struct {
	sentiment usecase.Sentiment
}

func (c stubClassifier) Classify(ctx context.Context, text string) usecase.Sentiment {
	return c.sentiment
}
