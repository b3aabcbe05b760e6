package sender

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMailGun(baseURL string) *MailGun {
	return &MailGun{
		Config: &Config{
			APIToken:    "mg-token",
			SenderEmail: "ops@example.com",
		},
		httpClient: http.DefaultClient,
		baseURL:    baseURL,
	}
}

func TestMailGun_MessagesURL(t *testing.T) {
	m := newTestMailGun(defaultMailGunBaseURL)
	assert.Equal(t, "https://api.mailgun.net/v3/example.com/messages", m.messagesURL())
}

func TestMailGun_DomainAfterFirstAt(t *testing.T) {
	m := newTestMailGun(defaultMailGunBaseURL)
	m.SenderEmail = "weird@name@example.com"
	assert.Equal(t, "name@example.com", m.domain())
}

func TestMailGun_SendSuccess(t *testing.T) {
	var gotReq *http.Request
	var gotForm map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotReq = r
		gotForm = map[string]string{
			"from":    r.PostFormValue("from"),
			"to":      r.PostFormValue("to"),
			"subject": r.PostFormValue("subject"),
			"text":    r.PostFormValue("text"),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := newTestMailGun(srv.URL)
	err := m.Send(context.Background(), "hi", "a@b.com", "s", "uid-1")
	require.NoError(t, err)

	assert.Equal(t, "/example.com/messages", gotReq.URL.Path)

	username, password, ok := gotReq.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "api", username)
	assert.Equal(t, "mg-token", password)

	assert.Equal(t, map[string]string{
		"from":    "ops@example.com",
		"to":      "a@b.com",
		"subject": "s",
		"text":    "hi",
	}, gotForm)
}

func TestMailGun_SendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Forbidden", http.StatusUnauthorized)
	}))
	defer srv.Close()

	m := newTestMailGun(srv.URL)
	err := m.Send(context.Background(), "hi", "a@b.com", "s", "uid-1")
	require.Error(t, err)

	assert.True(t, IsMailSendingFailure(err))
	assert.Contains(t, err.Error(), "uid-1")
}

func TestMailGun_SendTransportFailureIsRetriable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused

	m := newTestMailGun(srv.URL)
	err := m.Send(context.Background(), "hi", "a@b.com", "s", "uid-1")
	require.Error(t, err)

	// An unreachable provider is infrastructure trouble, not a client
	// rejection.
	assert.False(t, IsMailSendingFailure(err))
}
