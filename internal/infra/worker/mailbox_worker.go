package worker

import (
	"context"
	"log"
	"time"

	"github.com/morphius-ai/outreach-engine/internal/usecase"
)

type MailboxSource interface {
	FetchUnseen() ([]usecase.InboundReply, error)
}

type ReplyIngester interface {
	Execute(ctx context.Context, replies []usecase.InboundReply) (int, error)
}

// MailboxWorker polls the IMAP inbox and feeds new replies to the
// ingestion use case. A failed poll is logged and retried next tick.
type MailboxWorker struct {
	source       MailboxSource
	ingester     ReplyIngester
	tickInterval time.Duration
}

func NewMailboxWorker(source MailboxSource, ingester ReplyIngester, tickInterval time.Duration) *MailboxWorker {
	return &MailboxWorker{
		source:       source,
		ingester:     ingester,
		tickInterval: tickInterval,
	}
}

func (w *MailboxWorker) Start(ctx context.Context) {
	log.Printf("mailbox worker: started (every %s)", w.tickInterval)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.pollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("mailbox worker: stopped")
			return
		case <-ticker.C:
			w.pollOnce(ctx)
		}
	}
}

func (w *MailboxWorker) pollOnce(ctx context.Context) {
	replies, err := w.source.FetchUnseen()
	if err != nil {
		log.Printf("mailbox worker: poll failed: %v", err)
		return
	}
	if len(replies) == 0 {
		return
	}

	ingested, err := w.ingester.Execute(ctx, replies)
	if err != nil {
		log.Printf("mailbox worker: ingest failed: %v", err)
		return
	}
	log.Printf("mailbox worker: ingested %d of %d replies", ingested, len(replies))
}
