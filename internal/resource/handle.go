// Package resource provides the generic accessor for one namespaced custom
// resource instance. Concrete entities (sender configs, emails) embed a
// Handle and layer their own spec and status semantics on top of it.
package resource

import (
	"context"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"emailsender/internal/cluster"
)

// Status is the capability any status payload must satisfy: production of a
// wire-representable mapping. Nothing else is assumed of it.
type Status interface {
	StatusMap() map[string]interface{}
}

// Handle is a typed accessor for one namespaced custom resource instance.
// The GroupVersionResource is fixed per concrete kind; namespace and name
// address exactly one object. A Handle is exclusively owned by a single
// in-flight reconciliation and never shared.
type Handle struct {
	client    cluster.Client
	gvr       schema.GroupVersionResource
	namespace string
	name      string

	// uid is cluster-assigned and immutable once resolved.
	uid string

	// status caches the last status written through SetStatus.
	status Status
}

// NewHandle constructs a Handle and resolves the object's UID, failing with
// a not-found error if the resource does not exist.
func NewHandle(ctx context.Context, c cluster.Client, gvr schema.GroupVersionResource, namespace, name string) (*Handle, error) {
	h := &Handle{
		client:    c,
		gvr:       gvr,
		namespace: namespace,
		name:      name,
	}

	if _, err := h.ResolveUID(ctx); err != nil {
		return nil, err
	}
	return h, nil
}

// Namespace returns the resource's namespace.
func (h *Handle) Namespace() string {
	return h.namespace
}

// Name returns the resource's name.
func (h *Handle) Name() string {
	return h.name
}

// UID returns the cluster-assigned identifier resolved at construction.
func (h *Handle) UID() string {
	return h.uid
}

// Status returns the last status written through SetStatus, or nil.
func (h *Handle) Status() Status {
	return h.status
}

// Fetch returns the full remote representation of the addressed resource.
func (h *Handle) Fetch(ctx context.Context) (*unstructured.Unstructured, error) {
	return h.client.GetResource(ctx, h.gvr, h.namespace, h.name)
}

// ReadStatus returns the current remote status mapping, or nil if the
// status subresource has never been written.
func (h *Handle) ReadStatus(ctx context.Context) (map[string]interface{}, error) {
	obj, err := h.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	status, found, err := unstructured.NestedMap(obj.Object, "status")
	if err != nil || !found {
		return nil, err
	}
	return status, nil
}

// SetStatus serializes status, merge-patches the remote status subresource,
// and on success updates the locally cached status. Every call is a
// synchronous write-through; there is no local-only mutation.
func (h *Handle) SetStatus(ctx context.Context, status Status) error {
	if err := h.client.PatchResourceStatus(ctx, h.gvr, h.namespace, h.name, status.StatusMap()); err != nil {
		return err
	}
	h.status = status
	return nil
}

// ResolveUID fetches the resource and returns its cluster-assigned
// identifier, caching it for the lifetime of the handle.
func (h *Handle) ResolveUID(ctx context.Context) (string, error) {
	if h.uid != "" {
		return h.uid, nil
	}

	obj, err := h.Fetch(ctx)
	if err != nil {
		return "", err
	}
	h.uid = string(obj.GetUID())
	return h.uid, nil
}
