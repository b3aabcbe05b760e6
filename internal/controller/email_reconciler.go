package controller

import (
	"context"
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"emailsender/internal/cluster"
	"emailsender/internal/email"
	"emailsender/internal/sender"
	emailsenderv1 "emailsender/pkg/apis/emailsender/v1"
	"emailsender/pkg/logging"
)

// EmailReconciler reconciles Email resources: it resolves the referenced
// sender config, drives the delivery-status lifecycle, and performs at most
// one send attempt per resource.
type EmailReconciler struct {
	client   cluster.Client
	registry *sender.Registry
}

// NewEmailReconciler creates a reconciler for Email resources.
func NewEmailReconciler(c cluster.Client, registry *sender.Registry) *EmailReconciler {
	return &EmailReconciler{client: c, registry: registry}
}

// GetResourceType returns the resource type this reconciler handles.
func (r *EmailReconciler) GetResourceType() ResourceType {
	return ResourceTypeEmail
}

// Reconcile processes one Email resource. Terminal conditions (unknown
// provider, rejected send) are absorbed after being recorded; only transient
// cluster or transport failures surface as retriable errors.
func (r *EmailReconciler) Reconcile(ctx context.Context, req ReconcileRequest) ReconcileResult {
	obj, err := r.client.GetResource(ctx, emailsenderv1.EmailResource, req.Namespace, req.Name)
	if err != nil {
		if cluster.IsNotFound(err) {
			// Deleted between the event and this invocation.
			logging.Info("EmailReconciler", "Email %s/%s no longer exists, ignoring", req.Namespace, req.Name)
			return ReconcileResult{}
		}
		return ReconcileResult{Error: err}
	}

	configRef, found, err := unstructured.NestedString(obj.Object, "spec", "senderConfigRef")
	if err != nil || !found || configRef == "" {
		return ReconcileResult{Error: fmt.Errorf("email %s/%s has no spec.senderConfigRef", req.Namespace, req.Name)}
	}
	recipient, _, _ := unstructured.NestedString(obj.Object, "spec", "recipientEmail")
	subject, _, _ := unstructured.NestedString(obj.Object, "spec", "subject")
	body, _, _ := unstructured.NestedString(obj.Object, "spec", "body")

	snd, err := r.registry.Create(ctx, req.Namespace, configRef)
	if err != nil {
		if sender.IsUnknownProvider(err) {
			// The resource stays untouched. Email updates are not
			// watched, so it is only seen again via an informer
			// re-sync after a restart.
			logging.Error("EmailReconciler", err,
				"Email %s/%s references unknown sender config %q", req.Namespace, req.Name, configRef)
			logging.Warn("EmailReconciler", "Email %s/%s will not be managed", req.Namespace, req.Name)
			return ReconcileResult{}
		}
		return ReconcileResult{Error: err}
	}

	e, err := email.New(ctx, r.client, req.Namespace, req.Name, snd, body, recipient, subject)
	if err != nil {
		return ReconcileResult{Error: err}
	}

	if e.Status().DeliveryStatus.Terminal() {
		logging.Info("EmailReconciler", "Email %s/%s already %s, skipping send (id %s)",
			req.Namespace, req.Name, e.Status().DeliveryStatus, e.UID())
		return ReconcileResult{}
	}

	if err := e.Send(ctx); err != nil {
		if sender.IsMailSendingFailure(err) {
			logging.Error("EmailReconciler", err,
				"Email %s/%s rejected by provider (id %s)", req.Namespace, req.Name, e.UID())
			if serr := e.SetDeliveryStatus(ctx, email.StatusFailed); serr != nil {
				return ReconcileResult{Error: serr}
			}
			logging.Info("EmailReconciler", "Email %s/%s marked %s (id %s)",
				req.Namespace, req.Name, email.StatusFailed, e.UID())
			return ReconcileResult{}
		}
		// Transport-level failure before a provider verdict: the send
		// may not have happened, retry is safe.
		return ReconcileResult{Error: err}
	}

	if err := e.SetDeliveryStatus(ctx, email.StatusSent); err != nil {
		return ReconcileResult{Error: err}
	}

	logging.Info("EmailReconciler", "Email %s/%s sent to %s (id %s)",
		req.Namespace, req.Name, recipient, e.UID())
	return ReconcileResult{}
}
