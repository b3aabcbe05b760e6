package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// defaultMailerSendBaseURL is the MailerSend v1 API root.
const defaultMailerSendBaseURL = "https://api.mailersend.com/v1"

// MailerSend sends through the MailerSend HTTP API.
//
// The provider call yields a result string: the numeric HTTP status for
// accepted requests, the response body otherwise. A result is a success iff
// it parses as an integer; anything else, and any transport failure, is a
// MailSendingFailureError.
//
// See: https://www.mailersend.com.
type MailerSend struct {
	*Config

	httpClient *http.Client
	baseURL    string
}

// NewMailerSend constructs the MailerSend variant.
func NewMailerSend(cfg *Config) Sender {
	return &MailerSend{
		Config:     cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultMailerSendBaseURL,
	}
}

type mailerSendAddress struct {
	Email string `json:"email"`
}

type mailerSendMessage struct {
	From    mailerSendAddress   `json:"from"`
	To      []mailerSendAddress `json:"to"`
	Subject string              `json:"subject"`
	Text    string              `json:"text"`
}

// Send posts a JSON message to MailerSend and classifies the result.
func (m *MailerSend) Send(ctx context.Context, body, recipient, subject, correlationID string) error {
	msg := mailerSendMessage{
		From:    mailerSendAddress{Email: m.SenderEmail},
		To:      []mailerSendAddress{{Email: recipient}},
		Subject: subject,
		Text:    body,
	}

	result, err := m.post(ctx, msg)
	if err != nil {
		return &MailSendingFailureError{CorrelationID: correlationID, Err: err}
	}

	if !resultOK(result) {
		return &MailSendingFailureError{CorrelationID: correlationID, Reason: result}
	}
	return nil
}

// post issues the send call and returns the provider's result string: the
// numeric status code when the request was accepted, the response body (or
// status line) when it was not.
func (m *MailerSend) post(ctx context.Context, msg mailerSendMessage) (string, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("mailersend: failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/email", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("mailersend: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.APIToken)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("mailersend: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return strconv.Itoa(resp.StatusCode), nil
	}

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	result := strings.TrimSpace(string(detail))
	if result == "" {
		result = resp.Status
	}
	return result, nil
}

// resultOK is the MailerSend success predicate: the result must parse as an
// integer.
func resultOK(result string) bool {
	_, err := strconv.Atoi(strings.TrimSpace(result))
	return err == nil
}
