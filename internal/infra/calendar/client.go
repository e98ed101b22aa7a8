package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Client books demo meetings on the team's Google Calendar.
type Client struct {
	svc        *gcal.Service
	cfg        SlotConfig
	calendarID string
	timeZone   string
	summary    string
	organizer  string
}

// NewClient authenticates with a previously authorized OAuth token file
// (the interactive consent flow is run once, outside the service).
func NewClient(ctx context.Context, credentialsFile, tokenFile, organizerEmail string, cfg SlotConfig) (*Client, error) {
	creds, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading calendar credentials: %w", err)
	}

	oauthCfg, err := google.ConfigFromJSON(creds, gcal.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("parsing calendar credentials: %w", err)
	}

	tokenBytes, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("reading calendar token: %w", err)
	}
	token := &oauth2.Token{}
	if err := json.Unmarshal(tokenBytes, token); err != nil {
		return nil, fmt.Errorf("parsing calendar token: %w", err)
	}

	svc, err := gcal.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("building calendar service: %w", err)
	}

	return &Client{
		svc:        svc,
		cfg:        cfg,
		calendarID: "primary",
		timeZone:   "Asia/Kolkata",
		summary:    "Morphius AI Demo",
		organizer:  organizerEmail,
	}, nil
}

func (c *Client) AvailableSlots(ctx context.Context) ([]time.Time, error) {
	now := time.Now().UTC()
	until := now.AddDate(0, 0, c.cfg.DaysAhead)

	events, err := c.svc.Events.List(c.calendarID).
		TimeMin(now.Format(time.RFC3339)).
		TimeMax(until.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("listing calendar events: %w", err)
	}

	var busy []BusyRange
	for _, e := range events.Items {
		// All-day events have Date instead of DateTime; they don't block slots.
		if e.Start == nil || e.End == nil || e.Start.DateTime == "" || e.End.DateTime == "" {
			continue
		}
		start, err1 := time.Parse(time.RFC3339, e.Start.DateTime)
		end, err2 := time.Parse(time.RFC3339, e.End.DateTime)
		if err1 != nil || err2 != nil {
			continue
		}
		busy = append(busy, BusyRange{Start: start, End: end})
	}

	return FreeSlots(now, until, busy, c.cfg), nil
}

func (c *Client) CreateMeeting(ctx context.Context, email string, start time.Time) (string, error) {
	end := start.Add(time.Duration(c.cfg.SlotMinutes) * time.Minute)

	event := &gcal.Event{
		Summary:     fmt.Sprintf("%s with %s", c.summary, email),
		Description: "Discussion about AI automation solutions.",
		Start:       &gcal.EventDateTime{DateTime: start.Format(time.RFC3339), TimeZone: c.timeZone},
		End:         &gcal.EventDateTime{DateTime: end.Format(time.RFC3339), TimeZone: c.timeZone},
		Attendees: []*gcal.EventAttendee{
			{Email: email},
			{Email: c.organizer},
		},
		ConferenceData: &gcal.ConferenceData{
			CreateRequest: &gcal.CreateConferenceRequest{
				RequestId: fmt.Sprintf("meet-%d", time.Now().UnixNano()),
			},
		},
	}

	created, err := c.svc.Events.Insert(c.calendarID, event).
		ConferenceDataVersion(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("inserting calendar event: %w", err)
	}

	return created.HangoutLink, nil
}
