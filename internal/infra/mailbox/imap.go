package mailbox

import (
	"fmt"
	"log"

	imap "github.com/BrianLeishman/go-imap"

	"github.com/morphius-ai/outreach-engine/internal/usecase"
)

// Client polls an IMAP inbox for replies. Each poll opens a fresh
// connection; at the polling intervals involved that is cheaper than
// babysitting a long-lived session.
type Client struct {
	Host     string
	Port     int
	User     string
	Password string
	Folder   string
}

func NewClient(host string, port int, user, password string) *Client {
	return &Client{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		Folder:   "INBOX",
	}
}

// FetchUnseen pulls every UNSEEN message and marks it seen so the next
// poll does not hand it back.
func (c *Client) FetchUnseen() ([]usecase.InboundReply, error) {
	im, err := imap.New(c.User, c.Password, c.Host, c.Port)
	if err != nil {
		return nil, fmt.Errorf("imap connect: %w", err)
	}
	defer im.Close()

	if err := im.SelectFolder(c.Folder); err != nil {
		return nil, fmt.Errorf("selecting %s: %w", c.Folder, err)
	}

	uids, err := im.GetUIDs("UNSEEN")
	if err != nil {
		return nil, fmt.Errorf("searching unseen: %w", err)
	}
	if len(uids) == 0 {
		return nil, nil
	}

	emails, err := im.GetEmails(uids...)
	if err != nil {
		return nil, fmt.Errorf("fetching messages: %w", err)
	}

	var replies []usecase.InboundReply
	for uid, e := range emails {
		body := e.Text
		if body == "" {
			body = e.HTML
		}
		replies = append(replies, usecase.InboundReply{
			From:    firstAddress(e.From),
			Subject: e.Subject,
			Body:    body,
		})

		if err := im.MarkSeen(uid); err != nil {
			log.Printf("mailbox: marking uid %d seen: %v", uid, err)
		}
	}
	return replies, nil
}

func firstAddress(addresses imap.EmailAddresses) string {
	for addr := range addresses {
		return addr
	}
	return ""
}
