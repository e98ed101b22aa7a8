package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/morphius-ai/outreach-engine/internal/usecase"
)

const maxContactListBytes = 10 << 20 // 10 MiB

type CampaignService interface {
	Execute(ctx context.Context, contacts io.Reader) (*usecase.CampaignResult, error)
}

// CampaignHandler accepts a contact CSV upload and queues the initial
// outreach sends.
type CampaignHandler struct {
	service CampaignService
}

func NewCampaignHandler(service CampaignService) *CampaignHandler {
	return &CampaignHandler{service: service}
}

func (h *CampaignHandler) Handle(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxContactListBytes)

	if err := r.ParseMultipartForm(maxContactListBytes); err != nil {
		writeJSONError(w, http.StatusBadRequest, "expected a multipart upload with a 'contacts' file")
		return
	}

	file, _, err := r.FormFile("contacts")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "missing 'contacts' file")
		return
	}
	defer file.Close()

	result, err := h.service.Execute(r.Context(), file)
	if err != nil {
		if usecase.IsDomainError(err) {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "failed to process contact list")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(result)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
