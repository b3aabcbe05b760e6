package sender

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// defaultMailGunBaseURL is the MailGun v3 API root. The sending domain and
// the messages path are appended per request.
const defaultMailGunBaseURL = "https://api.mailgun.net/v3"

// MailGun sends through the MailGun HTTP API.
//
// See: https://www.mailgun.com.
type MailGun struct {
	*Config

	httpClient *http.Client
	baseURL    string
}

// NewMailGun constructs the MailGun variant.
func NewMailGun(cfg *Config) Sender {
	return &MailGun{
		Config:     cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultMailGunBaseURL,
	}
}

// domain returns the sending domain, the part of the sender address after
// the first "@". MailGun's API URL is templated on it.
func (m *MailGun) domain() string {
	_, domain, _ := strings.Cut(m.SenderEmail, "@")
	return domain
}

func (m *MailGun) messagesURL() string {
	return fmt.Sprintf("%s/%s/messages", m.baseURL, m.domain())
}

// Send posts a form-encoded message to MailGun. A non-2xx response is a
// MailSendingFailureError (client-attributed, never retried); a transport
// failure surfaces as-is and stays eligible for the dispatcher's retry.
func (m *MailGun) Send(ctx context.Context, body, recipient, subject, correlationID string) error {
	form := url.Values{}
	form.Set("from", m.SenderEmail)
	form.Set("to", recipient)
	form.Set("subject", subject)
	form.Set("text", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.messagesURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("mailgun: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("api", m.APIToken)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mailgun: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &MailSendingFailureError{
			CorrelationID: correlationID,
			Err:           fmt.Errorf("%s returned %s: %s", m.messagesURL(), resp.Status, strings.TrimSpace(string(detail))),
		}
	}
	return nil
}
