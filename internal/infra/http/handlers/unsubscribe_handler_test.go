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
)

type MockUnsubscribeService struct {
	mock.Mock
}

func (m *MockUnsubscribeService) Execute(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func TestUnsubscribeHandlerSuccess(t *testing.T) {
	service := new(MockUnsubscribeService)
	service.On("Execute", mock.Anything, "ana@example.com").Return(false, nil)
	handler := handlers.NewUnsubscribeHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/unsubscribe?email=ana%40example.com", nil)
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsubscribed successfully")
	service.AssertExpectations(t)
}

func TestUnsubscribeHandlerAlreadyUnsubscribed(t *testing.T) {
	service := new(MockUnsubscribeService)
	service.On("Execute", mock.Anything, "ana@example.com").Return(true, nil)
	handler := handlers.NewUnsubscribeHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/unsubscribe?email=ana%40example.com", nil)
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "already unsubscribed")
}

func TestUnsubscribeHandlerMissingEmail(t *testing.T) {
	service := new(MockUnsubscribeService)
	handler := handlers.NewUnsubscribeHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/unsubscribe", nil)
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	service.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestUnsubscribeHandlerServiceFailure(t *testing.T) {
	service := new(MockUnsubscribeService)
	service.On("Execute", mock.Anything, "ana@example.com").Return(false, errors.New("db down"))
	handler := handlers.NewUnsubscribeHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/unsubscribe?email=ana%40example.com", nil)
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
