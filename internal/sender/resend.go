package sender

import (
	"context"

	"github.com/resend/resend-go/v3"
)

// Resend sends through the Resend API using the official SDK.
//
// See: https://resend.com.
type Resend struct {
	*Config

	client *resend.Client
}

// NewResend constructs the Resend variant.
func NewResend(cfg *Config) Sender {
	return &Resend{
		Config: cfg,
		client: resend.NewClient(cfg.APIToken),
	}
}

// Send delivers one plain-text message via the Resend SDK. SDK errors cover
// both rejection and transport problems; Resend attributes all of them to
// the request and never retries.
func (r *Resend) Send(ctx context.Context, body, recipient, subject, correlationID string) error {
	req := &resend.SendEmailRequest{
		From:    r.SenderEmail,
		To:      []string{recipient},
		Subject: subject,
		Text:    body,
	}

	if _, err := r.client.Emails.SendWithContext(ctx, req); err != nil {
		return &MailSendingFailureError{CorrelationID: correlationID, Err: err}
	}
	return nil
}
