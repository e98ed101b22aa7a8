package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/morphius-ai/outreach-engine/internal/entity"
	"github.com/morphius-ai/outreach-engine/internal/infra/http/middleware"
)

// CampaignMailer renders and sends the initial outreach email.
type CampaignMailer interface {
	SendOutreach(ctx context.Context, to, name, subject string) error
}

// Worker drains the campaign queue: one message, one SMTP send, one
// lead/event update. Manual acks; failed sends go to the DLQ.
type Worker struct {
	Channel *amqp.Channel
	Mailer  CampaignMailer
	Leads   entity.LeadRepositoryInterface
	Events  entity.EventLogInterface
}

func NewWorker(ch *amqp.Channel, mailer CampaignMailer, leads entity.LeadRepositoryInterface, events entity.EventLogInterface) *Worker {
	return &Worker{
		Channel: ch,
		Mailer:  mailer,
		Leads:   leads,
		Events:  events,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack off, we ack by hand
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		log.Fatalf("campaign worker: registering consumer: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var msg CampaignMessage
			if err := json.Unmarshal(d.Body, &msg); err != nil {
				log.Printf("campaign worker: malformed message dropped: %s", err)
				d.Nack(false, false)
				continue
			}

			if err := w.processMessage(context.Background(), msg); err != nil {
				log.Printf("campaign worker: send to %s failed: %s", msg.Email, err)
				d.Nack(false, false)
			} else {
				d.Ack(false)
			}
		}
	}()

	log.Printf("campaign worker: waiting on queue '%s'", queueName)
	<-forever
}

func (w *Worker) processMessage(ctx context.Context, msg CampaignMessage) error {
	lead, err := w.Leads.FindByEmail(ctx, msg.Email)
	if errors.Is(err, entity.ErrLeadNotFound) {
		lead = entity.NewLead(msg.Email, msg.Name)
	} else if err != nil {
		return fmt.Errorf("lead lookup: %w", err)
	}

	// The lead may have unsubscribed between upload and send.
	if lead.IsTerminal() {
		log.Printf("campaign worker: suppressing send to %s (status %s)", lead.Email, lead.Status)
		return nil
	}

	if err := w.Mailer.SendOutreach(ctx, msg.Email, msg.Name, msg.Subject); err != nil {
		middleware.RecordEmailSent("initial_outreach", "failed")
		w.appendEvent(ctx, msg, entity.EventStatusFailed)
		return err
	}
	middleware.RecordEmailSent("initial_outreach", "success")
	// Audit the send before touching lead state so a failed save still
	// leaves a record of the email that went out.
	w.appendEvent(ctx, msg, entity.EventStatusSuccess)

	now := time.Now()
	lead.Status = entity.StatusAwaitingReply
	lead.LastContactedAt = &now
	lead.UpdatedAt = now
	if err := w.Leads.Upsert(ctx, lead); err != nil {
		return fmt.Errorf("saving contacted state: %w", err)
	}
	return nil
}

func (w *Worker) appendEvent(ctx context.Context, msg CampaignMessage, status string) {
	ev := entity.NewEvent(entity.EventInitialOutreach, msg.Email, msg.Subject, "", status)
	if err := w.Events.Append(ctx, ev); err != nil {
		log.Printf("campaign worker: CRITICAL: outreach event for %s not recorded: %v", msg.Email, err)
	}
}
