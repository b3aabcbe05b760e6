package sender

import (
	"errors"
	"fmt"
)

// UnknownProviderError denotes that a provider-config name does not map to
// any registered variant. The operator does not manage this kind of provider
// and the condition is never retried.
type UnknownProviderError struct {
	Name string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("%s is not a known email sender", e.Name)
}

// Permanent marks the condition as non-retriable for the dispatcher.
func (e *UnknownProviderError) Permanent() bool {
	return true
}

// MailSendingFailureError denotes that a provider rejected or failed a send.
// The error is attributed to the client's request and never retried.
type MailSendingFailureError struct {
	// CorrelationID is the owning resource's cluster-assigned UID.
	CorrelationID string

	// Reason carries the provider's response when the call completed but
	// was not a success.
	Reason string

	// Err carries the underlying call error, if any.
	Err error
}

func (e *MailSendingFailureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to send email with id %s (reason: %v)", e.CorrelationID, e.Err)
	}
	return fmt.Sprintf("failed to send email with id %s (result: %s)", e.CorrelationID, e.Reason)
}

func (e *MailSendingFailureError) Unwrap() error {
	return e.Err
}

// Permanent marks the condition as non-retriable for the dispatcher.
func (e *MailSendingFailureError) Permanent() bool {
	return true
}

// IsUnknownProvider reports whether err is an UnknownProviderError.
func IsUnknownProvider(err error) bool {
	var up *UnknownProviderError
	return errors.As(err, &up)
}

// IsMailSendingFailure reports whether err is a MailSendingFailureError.
func IsMailSendingFailure(err error) bool {
	var mf *MailSendingFailureError
	return errors.As(err, &mf)
}
