package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/morphius-ai/outreach-engine/internal/entity"
	"github.com/morphius-ai/outreach-engine/internal/infra/queue"
)

type CampaignQueueInterface interface {
	PublishCampaignSend(ctx context.Context, msg queue.CampaignMessage) error
}

// RunCampaignUseCase turns an uploaded contact CSV (Name,Email columns)
// into one queued outreach send per new contact. Sending itself happens
// in the queue consumer so a big list never blocks the upload request.
type RunCampaignUseCase struct {
	Leads   entity.LeadRepositoryInterface
	Queue   CampaignQueueInterface
	Subject string
}

func NewRunCampaignUseCase(leads entity.LeadRepositoryInterface, q CampaignQueueInterface, subject string) *RunCampaignUseCase {
	if subject == "" {
		subject = DefaultCampaignSubject
	}
	return &RunCampaignUseCase{Leads: leads, Queue: q, Subject: subject}
}

type CampaignResult struct {
	Total   int      `json:"total"`
	Queued  int      `json:"queued"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

func (uc *RunCampaignUseCase) Execute(ctx context.Context, contacts io.Reader) (*CampaignResult, error) {
	reader := csv.NewReader(contacts)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, &DomainError{Code: "INVALID_CSV", Message: "contact list is empty or not a CSV"}
	}

	nameIdx, emailIdx := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "name":
			nameIdx = i
		case "email":
			emailIdx = i
		}
	}
	if emailIdx == -1 {
		return nil, &DomainError{Code: "INVALID_CSV", Message: "contact list is missing an Email column"}
	}

	result := &CampaignResult{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			result.Skipped++
			continue
		}
		result.Total++

		contact := ContactInput{Email: field(record, emailIdx), Name: field(record, nameIdx)}
		if verrs := ValidateContactInput(contact); len(verrs) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, verrs[0]))
			result.Skipped++
			continue
		}

		existing, err := uc.Leads.FindByEmail(ctx, contact.Email)
		if err != nil && !errors.Is(err, entity.ErrLeadNotFound) {
			return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "lead lookup failed: " + err.Error()}
		}
		if existing != nil {
			// Already in the pipeline (or unsubscribed). Never re-mail.
			result.Skipped++
			continue
		}

		if err := uc.Leads.Upsert(ctx, entity.NewLead(contact.Email, contact.Name)); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: saving lead: %v", line, err))
			result.Skipped++
			continue
		}

		msg := queue.CampaignMessage{Email: contact.Email, Name: contact.Name, Subject: uc.Subject}
		if err := uc.Queue.PublishCampaignSend(ctx, msg); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: queueing send: %v", line, err))
			result.Skipped++
			continue
		}
		result.Queued++
	}

	return result, nil
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
