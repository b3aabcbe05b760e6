// Package v1 contains API Schema definitions for the email-sender v1 API group.
//
// This package defines the Kubernetes Custom Resource Definitions (CRDs) the
// email-sender operator reconciles: EmailSenderConfig, which declares a mail
// provider account, and Email, which requests delivery of a single message.
//
// # API Group: stable.email-sender-operator.dev/v1
//
// ## EmailSenderConfig
//
// EmailSenderConfig declares one mail-provider account the operator may send
// through. The resource name selects the provider implementation (for example
// "mail-gun" or "mailer-send"), and a Secret with the same name and namespace
// carries the provider API token under the "apiToken" key.
//
// Example:
//
//	apiVersion: stable.email-sender-operator.dev/v1
//	kind: EmailSenderConfig
//	metadata:
//	  name: mail-gun
//	  namespace: default
//	spec:
//	  senderEmail: ops@example.com
//
// ## Email
//
// Email requests delivery of a single plain-text message through a named
// EmailSenderConfig. The operator records the delivery outcome in the status
// subresource and never re-sends a message once a terminal status has been
// reached.
//
// Example:
//
//	apiVersion: stable.email-sender-operator.dev/v1
//	kind: Email
//	metadata:
//	  name: welcome-mail
//	  namespace: default
//	spec:
//	  senderConfigRef: mail-gun
//	  recipientEmail: a@b.com
//	  subject: Welcome
//	  body: Hello there.
//
// +kubebuilder:object:generate=true
// +groupName=stable.email-sender-operator.dev
package v1
