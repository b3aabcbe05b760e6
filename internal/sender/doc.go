// Package sender implements the polymorphic mail-provider abstraction.
//
// Each provider variant (MailGun, MailerSend, Resend) implements the Sender
// interface: a single Send operation against the provider's protocol. All
// variants share the same construction contract — the provider API token is
// read from a Secret with the same namespace and name as the EmailSenderConfig
// resource (key "apiToken"), and the sending address comes from the resource's
// spec.senderEmail field.
//
// The Registry maps canonical provider keys to variant constructors. The key
// is derived from the config resource's name by capitalizing each
// hyphen-delimited token ("mail-gun" becomes "MailGun"), so new variants are
// picked up purely by registering under the matching key. Unregistered names
// yield UnknownProviderError, a terminal condition: the operator simply does
// not manage that kind of provider.
//
// Failure taxonomy: MailSendingFailureError is terminal and attributed to the
// client's request (bad recipient, invalid credentials, provider rejection);
// it is never retried. Infrastructure failures reaching the cluster API
// surface as the cluster package's errors and stay retriable.
package sender
