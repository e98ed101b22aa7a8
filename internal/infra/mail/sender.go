package mail

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"text/template"
	"time"

	"gopkg.in/gomail.v2"
)

const sendTimeout = 15 * time.Second

func NewEmailSender(host string, port int, user, password, fromAddress string) *EmailSender {
	return &EmailSender{
		Host:        host,
		Port:        port,
		User:        user,
		Password:    password,
		FromAddress: fromAddress,
	}
}

// Send satisfies the engine's dispatcher port: the body arrives already
// composed. SMTP has no native context support, so the dial-and-send
// runs under a deadline on the side.
func (s *EmailSender) Send(ctx context.Context, to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.FromAddress)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- d.DialAndSend(m) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("sending via SMTP: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("sending via SMTP: %w", ctx.Err())
	}
}

// SendOutreach renders the campaign template and sends the first touch.
func (s *EmailSender) SendOutreach(ctx context.Context, to, name, subject string) error {
	if name == "" {
		name = "there"
	}
	data := OutreachEmailData{
		Name:            name,
		SenderName:      s.FromName,
		ContactLink:     s.ContactURL,
		UnsubscribeLink: fmt.Sprintf("%s/unsubscribe?email=%s", s.UnsubscribeBaseURL, url.QueryEscape(to)),
	}

	tmplPath := filepath.Join("templates", "outreach.html")
	t, err := template.ParseFiles(tmplPath)
	if err != nil {
		return fmt.Errorf("reading outreach template: %w", err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return fmt.Errorf("rendering outreach template: %w", err)
	}

	return s.Send(ctx, to, subject, body.String())
}
