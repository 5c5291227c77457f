package mailer

import (
	"context"
	"fmt"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Mailgun wraps Mailgun client configuration. FromName is the human-facing
// display name prepended to the sender address.
type Mailgun struct {
	Domain   string
	APIKey   string
	Sender   string
	FromName string
}

func NewMailgun(domain, apiKey, sender, fromName string) *Mailgun {
	return &Mailgun{Domain: domain, APIKey: apiKey, Sender: sender, FromName: fromName}
}

// From returns the formatted sender, e.g. `GymBro <no-reply@example.com>`.
func (m *Mailgun) From() string {
	if m.FromName == "" {
		return m.Sender
	}
	return fmt.Sprintf("%s <%s>", m.FromName, m.Sender)
}

// Send sends an email via Mailgun. html is optional; if provided it will be used as HTML body.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	client := mg.NewMailgun(m.Domain, m.APIKey)
	msg := client.NewMessage(m.From(), subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, err := client.Send(c, msg)
	return err
}
