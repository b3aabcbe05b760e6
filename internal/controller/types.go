package controller

import (
	"context"
	"errors"
	"time"
)

// ResourceType represents the kind of resource being reconciled.
type ResourceType string

const (
	// ResourceTypeSenderConfig represents EmailSenderConfig resources.
	ResourceTypeSenderConfig ResourceType = "EmailSenderConfig"

	// ResourceTypeEmail represents Email resources.
	ResourceTypeEmail ResourceType = "Email"
)

// ChangeOperation represents the type of change detected.
type ChangeOperation string

const (
	// OperationCreate indicates a new resource was created.
	OperationCreate ChangeOperation = "Create"

	// OperationUpdate indicates an existing resource was modified.
	OperationUpdate ChangeOperation = "Update"

	// OperationDelete indicates a resource was deleted.
	OperationDelete ChangeOperation = "Delete"
)

// ChangeEvent represents a detected change in a watched resource.
type ChangeEvent struct {
	// Type is the kind of resource that changed.
	Type ResourceType

	// Name is the name of the resource that changed.
	Name string

	// Namespace is the resource's Kubernetes namespace.
	Namespace string

	// Operation describes what kind of change occurred.
	Operation ChangeOperation

	// Timestamp is when the change was detected.
	Timestamp time.Time
}

// ReconcileRequest represents a request to reconcile a specific resource.
type ReconcileRequest struct {
	// Type is the kind of resource to reconcile.
	Type ResourceType

	// Name is the name of the resource.
	Name string

	// Namespace is the resource's Kubernetes namespace.
	Namespace string

	// Operation is the change that triggered this request.
	Operation ChangeOperation

	// Attempt is the current attempt number (starts at 1).
	Attempt int

	// LastError is the error from the previous attempt, if any.
	LastError error
}

// ReconcileResult represents the outcome of a reconciliation attempt.
type ReconcileResult struct {
	// Error is any retriable error that occurred during reconciliation.
	// Domain-terminal conditions are absorbed by the reconcilers and
	// never appear here unless they implement Permanent.
	Error error
}

// Reconciler is the interface resource-specific reconcilers implement.
type Reconciler interface {
	// Reconcile processes a single reconciliation request. It must be
	// idempotent: the dispatcher may deliver the same request more than
	// once.
	Reconcile(ctx context.Context, req ReconcileRequest) ReconcileResult

	// GetResourceType returns the kind of resource this reconciler
	// handles.
	GetResourceType() ResourceType
}

// ManagerConfig holds configuration for the Manager.
type ManagerConfig struct {
	// Namespace is the Kubernetes namespace to watch. Empty watches all
	// namespaces.
	Namespace string

	// WorkerCount is the number of concurrent reconciliation workers.
	// Defaults to 2 if not specified.
	WorkerCount int

	// MaxRetries is the maximum number of attempts for a failed
	// reconciliation. Defaults to 3 if not specified.
	MaxRetries int

	// RetryBackoff is the fixed interval between retry attempts.
	// Defaults to 30 seconds if not specified.
	RetryBackoff time.Duration

	// ReconcileTimeout caps a single handler invocation. Defaults to 60
	// seconds if not specified.
	ReconcileTimeout time.Duration
}

// ReconcileState represents the state of a resource's reconciliation.
type ReconcileState string

const (
	// StatePending means the resource is awaiting reconciliation.
	StatePending ReconcileState = "Pending"

	// StateReconciling means reconciliation is in progress.
	StateReconciling ReconcileState = "Reconciling"

	// StateSynced means the resource was successfully reconciled.
	StateSynced ReconcileState = "Synced"

	// StateError means reconciliation failed and will be retried.
	StateError ReconcileState = "Error"

	// StateFailed means reconciliation failed permanently.
	StateFailed ReconcileState = "Failed"
)

// ReconcileStatus tracks the dispatcher-side reconciliation state of one
// resource. It is in-memory bookkeeping only and is never written to the
// cluster.
type ReconcileStatus struct {
	ResourceType ResourceType
	Name         string
	Namespace    string

	// LastReconcileTime is when the resource was last successfully
	// reconciled.
	LastReconcileTime *time.Time

	// LastError is the most recent error message, if any.
	LastError string

	// RetryCount is the number of retry attempts.
	RetryCount int

	// State describes the current reconciliation state.
	State ReconcileState
}

// permanent is implemented by errors that must never be retried.
type permanent interface {
	Permanent() bool
}

// IsPermanent reports whether err carries a non-retriable classification.
func IsPermanent(err error) bool {
	var p permanent
	return errors.As(err, &p) && p.Permanent()
}
