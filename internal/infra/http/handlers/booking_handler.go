package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/morphius-ai/outreach-engine/internal/usecase"
)

// BookingHandler backs the meeting-scheduler page linked from positive
// reply emails. Booking may be disabled when no calendar is configured.
type BookingHandler struct {
	booking *usecase.BookMeetingUseCase
}

func NewBookingHandler(booking *usecase.BookMeetingUseCase) *BookingHandler {
	return &BookingHandler{booking: booking}
}

type bookMeetingRequest struct {
	Email     string `json:"email"`
	StartTime string `json:"start_time"` // RFC3339
}

func (h *BookingHandler) HandleSlots(w http.ResponseWriter, r *http.Request) {
	if h.booking == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "meeting booking is not configured")
		return
	}

	slots, err := h.booking.Slots(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusBadGateway, err.Error())
		return
	}

	formatted := make([]string, 0, len(slots))
	for _, s := range slots {
		formatted = append(formatted, s.Format(time.RFC3339))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string][]string{"slots": formatted})
}

func (h *BookingHandler) HandleBook(w http.ResponseWriter, r *http.Request) {
	if h.booking == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "meeting booking is not configured")
		return
	}

	var req bookMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Email == "" {
		writeJSONError(w, http.StatusBadRequest, "email is required")
		return
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "start_time must be RFC3339")
		return
	}

	meeting, err := h.booking.Execute(r.Context(), req.Email, start)
	if err != nil {
		if usecase.IsDomainError(err) {
			writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeJSONError(w, http.StatusBadGateway, "booking failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(meeting)
}
