package sender

import (
	"context"
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"emailsender/internal/cluster"
	"emailsender/internal/resource"
	emailsenderv1 "emailsender/pkg/apis/emailsender/v1"
)

// secretTokenKey is the Secret data key carrying the provider API token.
// The Secret is addressed by the same namespace and name as the
// EmailSenderConfig resource.
const secretTokenKey = "apiToken"

// Sender sends a single plain-text email through one external provider.
// Implementations are exclusively owned by the reconciliation that resolved
// them and are never cached across invocations.
type Sender interface {
	// Send delivers one message. correlationID is the owning Email
	// resource's cluster-assigned UID, threaded through provider calls
	// and logs for traceability.
	Send(ctx context.Context, body, recipient, subject, correlationID string) error
}

// Config carries the attributes common to all provider variants: the
// EmailSenderConfig resource handle, the API token loaded from the companion
// Secret, and the sending address from the resource spec.
type Config struct {
	*resource.Handle

	APIToken    string
	SenderEmail string
}

// loadConfig resolves the shared construction contract for every variant.
func loadConfig(ctx context.Context, c cluster.Client, namespace, name string) (*Config, error) {
	h, err := resource.NewHandle(ctx, c, emailsenderv1.EmailSenderConfigResource, namespace, name)
	if err != nil {
		return nil, err
	}

	obj, err := h.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	senderEmail, found, err := unstructured.NestedString(obj.Object, "spec", "senderEmail")
	if err != nil || !found {
		return nil, fmt.Errorf("emailsenderconfig %s/%s has no spec.senderEmail", namespace, name)
	}

	token, err := c.GetSecretValue(ctx, namespace, name, secretTokenKey)
	if err != nil {
		return nil, err
	}

	return &Config{
		Handle:      h,
		APIToken:    token,
		SenderEmail: senderEmail,
	}, nil
}
