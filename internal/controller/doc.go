// Package controller dispatches cluster events to the two reconciliation
// handlers and applies the retry policy around them.
//
// # Components
//
//   - KubernetesDetector: watches EmailSenderConfig and Email resources via
//     controller-runtime informers and emits change events.
//   - work queue: deduplicating FIFO with delayed re-add, feeding a small
//     worker pool.
//   - Manager: routes events to the registered reconcilers, wraps each
//     invocation in the configured timeout, and retries failed invocations a
//     bounded number of times at a fixed backoff interval.
//   - SenderConfigReconciler / EmailReconciler: the event handlers.
//
// # Event policy
//
// EmailSenderConfig resources are reconciled on create and update; Email
// resources on create only. Deletes are ignored for both kinds: the operator
// holds no state to clean up.
//
// # Error policy
//
// Only errors that indicate the call itself did not complete (cluster or
// provider transport trouble) escalate out of a reconciler and trigger a
// retry. Domain-terminal conditions (unknown provider, provider rejection)
// are absorbed inside the handlers, leaving either a log line or a FAILED
// status. An error implementing Permanent() bool additionally short-circuits
// the manager's retry loop.
package controller
