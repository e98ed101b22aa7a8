package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/morphius-ai/outreach-engine/internal/infra/http/middleware"
	"github.com/morphius-ai/outreach-engine/internal/usecase"
)

type CycleRunner interface {
	RunCycle(ctx context.Context) (*usecase.CycleReport, error)
}

// EngineHandler exposes a manual trigger for the lifecycle engine, the
// same entry point the scheduler uses.
type EngineHandler struct {
	engine CycleRunner
}

func NewEngineHandler(engine CycleRunner) *EngineHandler {
	return &EngineHandler{engine: engine}
}

func (h *EngineHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	report, err := h.engine.RunCycle(r.Context())
	if err != nil {
		log.Printf("engine run: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "cycle failed: "+err.Error())
		return
	}
	middleware.RecordCycle(middleware.CycleStats{
		FollowUpsSent:     report.FollowUpsSent,
		MeetingLinksSent:  report.MeetingLinksSent,
		AlternativeOffers: report.AlternativeOffers,
		Unsubscribed:      report.Unsubscribed,
		Failures:          report.Failures,
	}, time.Since(start).Seconds())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(report)
}
