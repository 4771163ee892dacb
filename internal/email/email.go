// Package email abstracts outbound delivery so services depend on an
// interface instead of the Resend client directly.
package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v3"
)

type Sender interface {
	// SendContactNotification forwards a contact-form submission to the
	// site owner.
	SendContactNotification(ctx context.Context, fromName, fromEmail, subject, body string) error
}

type resendSender struct {
	client *resend.Client
	from   string
	to     string
}

func NewResendSender(apiKey, from, to string) Sender {
	return &resendSender{
		client: resend.NewClient(apiKey),
		from:   from,
		to:     to,
	}
}

func (s *resendSender) SendContactNotification(ctx context.Context, fromName, fromEmail, subject, body string) error {
	if subject == "" {
		subject = "New contact form message"
	}

	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{s.to},
		ReplyTo: fromEmail,
		Subject: fmt.Sprintf("[portfolio] %s", subject),
		Text:    fmt.Sprintf("From: %s <%s>\n\n%s", fromName, fromEmail, body),
	})
	if err != nil {
		return fmt.Errorf("send contact notification: %w", err)
	}

	return nil
}

// NoopSender is used when no API key is configured; messages are still
// persisted, only the notification is skipped.
type NoopSender struct{}

func (NoopSender) SendContactNotification(_ context.Context, fromName, fromEmail, subject, _ string) error {
	slog.Info("email delivery disabled; contact notification skipped",
		"from_name", fromName, "from_email", fromEmail, "subject", subject)
	return nil
}
