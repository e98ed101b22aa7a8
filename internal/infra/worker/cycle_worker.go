package worker

import (
	"context"
	"log"
	"time"

	"github.com/morphius-ai/outreach-engine/internal/infra/http/middleware"
	"github.com/morphius-ai/outreach-engine/internal/usecase"
)

type CycleRunner interface {
	RunCycle(ctx context.Context) (*usecase.CycleReport, error)
}

// CycleWorker triggers the lifecycle engine on a fixed interval. The
// engine itself carries all the decision logic; this is just the clock.
type CycleWorker struct {
	engine       CycleRunner
	tickInterval time.Duration
}

func NewCycleWorker(engine CycleRunner, tickInterval time.Duration) *CycleWorker {
	return &CycleWorker{
		engine:       engine,
		tickInterval: tickInterval,
	}
}

func (w *CycleWorker) Start(ctx context.Context) {
	log.Printf("cycle worker: started (every %s)", w.tickInterval)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("cycle worker: stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *CycleWorker) runOnce(ctx context.Context) {
	start := time.Now()
	report, err := w.engine.RunCycle(ctx)
	if err != nil {
		log.Printf("cycle worker: cycle aborted: %v", err)
		return
	}

	middleware.RecordCycle(middleware.CycleStats{
		FollowUpsSent:     report.FollowUpsSent,
		MeetingLinksSent:  report.MeetingLinksSent,
		AlternativeOffers: report.AlternativeOffers,
		Unsubscribed:      report.Unsubscribed,
		Failures:          report.Failures,
	}, time.Since(start).Seconds())
	if report.FollowUpsSent+report.MeetingLinksSent+report.AlternativeOffers+report.Unsubscribed+report.Failures > 0 {
		log.Printf("cycle worker: leads=%d replies=%d follow-ups=%d invites=%d offers=%d unsubscribed=%d failures=%d",
			report.LeadsSeen, report.RepliesProcessed, report.FollowUpsSent,
			report.MeetingLinksSent, report.AlternativeOffers, report.Unsubscribed, report.Failures)
	}
}
