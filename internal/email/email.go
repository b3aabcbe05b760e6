// Package email implements the Email custom resource entity and its
// delivery-status lifecycle.
//
// An Email starts UNSENT, set and persisted the first time the resource is
// observed without a status, and transitions to exactly one of SENT or
// FAILED. Terminal states are sticky: nothing moves a resource back to
// UNSENT, and an already-terminal resource is never re-sent.
//
// All durable state lives in the cluster resource's status subresource; the
// in-memory entity exists only for the duration of one reconciliation.
package email

import (
	"context"

	"emailsender/internal/cluster"
	"emailsender/internal/resource"
	"emailsender/internal/sender"
	emailsenderv1 "emailsender/pkg/apis/emailsender/v1"
	"emailsender/pkg/logging"
)

// DeliveryStatus enumerates the delivery lifecycle states.
type DeliveryStatus string

const (
	StatusUnsent DeliveryStatus = "UNSENT"
	StatusFailed DeliveryStatus = "FAILED"
	StatusSent   DeliveryStatus = "SENT"
)

// Terminal reports whether the status admits no further transition.
func (s DeliveryStatus) Terminal() bool {
	return s == StatusSent || s == StatusFailed
}

// Status is the Email resource's status payload.
type Status struct {
	DeliveryStatus DeliveryStatus

	// MessageID equals the owning resource's cluster-assigned UID.
	// Provider-side message identifiers are not persisted.
	MessageID string
}

// StatusMap satisfies the resource status contract.
func (s Status) StatusMap() map[string]interface{} {
	return map[string]interface{}{
		"deliveryStatus": string(s.DeliveryStatus),
		"messageId":      s.MessageID,
	}
}

// Email represents one namespaced Email custom resource for the duration of
// a single reconciliation.
type Email struct {
	*resource.Handle

	// snd is the provider resolved earlier in the same reconciliation.
	// It may be nil when the referenced provider is unknown; Send then
	// degrades to a no-op.
	snd sender.Sender

	body      string
	recipient string
	subject   string

	status Status
}

// New constructs the entity against the remote resource. If the resource
// carries no status yet, the status is initialized to UNSENT and persisted
// immediately; an already-initialized resource keeps whatever status it has,
// so duplicate construction never resets a terminal state.
func New(ctx context.Context, c cluster.Client, namespace, name string, snd sender.Sender, body, recipient, subject string) (*Email, error) {
	h, err := resource.NewHandle(ctx, c, emailsenderv1.EmailResource, namespace, name)
	if err != nil {
		return nil, err
	}

	e := &Email{
		Handle:    h,
		snd:       snd,
		body:      body,
		recipient: recipient,
		subject:   subject,
	}

	remote, err := h.ReadStatus(ctx)
	if err != nil {
		return nil, err
	}

	if remote == nil {
		// First observation of this resource. It has never been sent.
		e.status = Status{DeliveryStatus: StatusUnsent, MessageID: h.UID()}
		if err := h.SetStatus(ctx, e.status); err != nil {
			return nil, err
		}
		return e, nil
	}

	ds, _ := remote["deliveryStatus"].(string)
	mid, _ := remote["messageId"].(string)
	e.status = Status{DeliveryStatus: DeliveryStatus(ds), MessageID: mid}
	return e, nil
}

// Status returns the entity's current in-memory status.
func (e *Email) Status() Status {
	return e.status
}

// SetDeliveryStatus transitions the delivery status and persists it through
// the status subresource.
func (e *Email) SetDeliveryStatus(ctx context.Context, ds DeliveryStatus) error {
	st := Status{DeliveryStatus: ds, MessageID: e.UID()}
	if err := e.Handle.SetStatus(ctx, st); err != nil {
		return err
	}
	e.status = st
	return nil
}

// Send delivers the message through the resolved provider. A nil provider
// is a no-op, not a crash.
func (e *Email) Send(ctx context.Context) error {
	if e.snd == nil {
		logging.Warn("Email", "(%s/%s) sender unset, nothing to do", e.Namespace(), e.Name())
		return nil
	}
	return e.snd.Send(ctx, e.body, e.recipient, e.subject, e.UID())
}
