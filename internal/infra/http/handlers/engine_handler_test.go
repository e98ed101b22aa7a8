package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/morphius-ai/outreach-engine/internal/infra/http/handlers"
	"github.com/morphius-ai/outreach-engine/internal/usecase"
)

type MockCycleRunner struct {
	mock.Mock
}

func (m *MockCycleRunner) RunCycle(ctx context.Context) (*usecase.CycleReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.CycleReport), args.Error(1)
}

func TestEngineHandlerReturnsReport(t *testing.T) {
	runner := new(MockCycleRunner)
	runner.On("RunCycle", mock.Anything).Return(&usecase.CycleReport{
		LeadsSeen:     3,
		FollowUpsSent: 2,
	}, nil)
	handler := handlers.NewEngineHandler(runner)

	req := httptest.NewRequest(http.MethodPost, "/engine/run", nil)
	rec := httptest.NewRecorder()

	handler.HandleRun(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"leads_seen":3`)
	assert.Contains(t, rec.Body.String(), `"follow_ups_sent":2`)
	runner.AssertExpectations(t)
}

func TestEngineHandlerReportsCycleFailure(t *testing.T) {
	runner := new(MockCycleRunner)
	runner.On("RunCycle", mock.Anything).Return(nil, errors.New("loading active leads: connection refused"))
	handler := handlers.NewEngineHandler(runner)

	req := httptest.NewRequest(http.MethodPost, "/engine/run", nil)
	rec := httptest.NewRecorder()

	handler.HandleRun(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "cycle failed")
}
