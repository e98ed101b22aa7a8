package usecase

import (
	"context"
	"errors"
	"log"

	"github.com/morphius-ai/outreach-engine/internal/entity"
)

// IngestRepliesUseCase turns raw inbound mail into unprocessed
// reply_received events for the engine to pick up. Unknown senders get a
// lead record; terminal leads are ignored so nothing ever answers them.
type IngestRepliesUseCase struct {
	Leads  entity.LeadRepositoryInterface
	Events entity.EventLogInterface
}

func NewIngestRepliesUseCase(leads entity.LeadRepositoryInterface, events entity.EventLogInterface) *IngestRepliesUseCase {
	return &IngestRepliesUseCase{Leads: leads, Events: events}
}

func (uc *IngestRepliesUseCase) Execute(ctx context.Context, replies []InboundReply) (int, error) {
	ingested := 0
	for _, reply := range replies {
		if reply.From == "" {
			continue
		}

		lead, err := uc.Leads.FindByEmail(ctx, reply.From)
		if errors.Is(err, entity.ErrLeadNotFound) {
			lead = entity.NewLead(reply.From, "")
			lead.Status = entity.StatusAwaitingReply
			if err := uc.Leads.Upsert(ctx, lead); err != nil {
				log.Printf("ingest: creating lead for %s: %v", reply.From, err)
				continue
			}
		} else if err != nil {
			log.Printf("ingest: lead lookup for %s: %v", reply.From, err)
			continue
		}

		if lead.IsTerminal() {
			log.Printf("ingest: dropping reply from terminal lead %s", reply.From)
			continue
		}

		ev := entity.NewEvent(entity.EventReplyReceived, reply.From, reply.Subject, reply.Body, entity.EventStatusSuccess)
		if err := uc.Events.Append(ctx, ev); err != nil {
			log.Printf("ingest: recording reply from %s: %v", reply.From, err)
			continue
		}
		ingested++
	}
	return ingested, nil
}
