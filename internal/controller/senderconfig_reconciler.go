package controller

import (
	"context"

	"emailsender/internal/sender"
	"emailsender/pkg/logging"
)

// SenderConfigReconciler reconciles EmailSenderConfig resources by resolving
// them through the provider registry. It performs no provider-side calls;
// successful resolution is the acknowledgment that the config is usable.
type SenderConfigReconciler struct {
	registry *sender.Registry
}

// NewSenderConfigReconciler creates a reconciler for EmailSenderConfig
// resources.
func NewSenderConfigReconciler(registry *sender.Registry) *SenderConfigReconciler {
	return &SenderConfigReconciler{registry: registry}
}

// GetResourceType returns the resource type this reconciler handles.
func (r *SenderConfigReconciler) GetResourceType() ResourceType {
	return ResourceTypeSenderConfig
}

// Reconcile resolves the named config against the registry. An unknown
// provider name is logged and absorbed: retrying cannot make the name known,
// and the config carries no status to record the failure in.
func (r *SenderConfigReconciler) Reconcile(ctx context.Context, req ReconcileRequest) ReconcileResult {
	snd, err := r.registry.Create(ctx, req.Namespace, req.Name)
	if err != nil {
		if sender.IsUnknownProvider(err) {
			logging.Error("SenderConfigReconciler", err,
				"Unknown sender config %s/%s, ignoring", req.Namespace, req.Name)
			return ReconcileResult{}
		}
		// NotFound and transport errors are transient from the
		// dispatcher's point of view.
		return ReconcileResult{Error: err}
	}

	logging.Info("SenderConfigReconciler", "Known sender %s/%s (%T) acknowledged on %s",
		req.Namespace, req.Name, snd, req.Operation)
	return ReconcileResult{}
}
