package cluster

import (
	"context"
	"encoding/json"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	ctrl "sigs.k8s.io/controller-runtime"
)

// Client is the operator's view of the cluster API. Every method is a single
// round-trip; retry is the dispatcher's responsibility.
type Client interface {
	// GetResource fetches one namespaced custom resource.
	GetResource(ctx context.Context, gvr schema.GroupVersionResource, namespace, name string) (*unstructured.Unstructured, error)

	// PatchResourceStatus merge-patches the status subresource of one
	// namespaced custom resource with the given status mapping.
	PatchResourceStatus(ctx context.Context, gvr schema.GroupVersionResource, namespace, name string, status map[string]interface{}) error

	// GetSecretValue reads one key of a namespaced Secret and returns its
	// decoded value.
	GetSecretValue(ctx context.Context, namespace, name, key string) (string, error)
}

// apiClient implements Client on top of the dynamic client (custom
// resources) and the typed clientset (Secrets).
type apiClient struct {
	dynamic dynamic.Interface
	core    kubernetes.Interface
}

// New creates a cluster client from a REST configuration.
func New(config *rest.Config) (Client, error) {
	dyn, err := dynamic.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	return &apiClient{dynamic: dyn, core: clientset}, nil
}

// NewFromInterfaces creates a cluster client from already-built API
// interfaces. Used by tests with fake clients.
func NewFromInterfaces(dyn dynamic.Interface, core kubernetes.Interface) Client {
	return &apiClient{dynamic: dyn, core: core}
}

// GetRestConfig resolves the REST config via controller-runtime's detection:
// in-cluster service account first, kubeconfig fallback.
func GetRestConfig() (*rest.Config, error) {
	return ctrl.GetConfig()
}

func (c *apiClient) GetResource(ctx context.Context, gvr schema.GroupVersionResource, namespace, name string) (*unstructured.Unstructured, error) {
	obj, err := c.dynamic.Resource(gvr).Namespace(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return nil, &NotFoundError{Resource: gvr.Resource, Namespace: namespace, Name: name}
		}
		return nil, &TransportError{Op: fmt.Sprintf("get %s %s/%s", gvr.Resource, namespace, name), Err: err}
	}
	return obj, nil
}

func (c *apiClient) PatchResourceStatus(ctx context.Context, gvr schema.GroupVersionResource, namespace, name string, status map[string]interface{}) error {
	patch, err := json.Marshal(map[string]interface{}{"status": status})
	if err != nil {
		return fmt.Errorf("failed to encode status patch: %w", err)
	}

	_, err = c.dynamic.Resource(gvr).Namespace(namespace).Patch(ctx, name, types.MergePatchType, patch, metav1.PatchOptions{}, "status")
	if err != nil {
		if apierrors.IsNotFound(err) {
			return &NotFoundError{Resource: gvr.Resource, Namespace: namespace, Name: name}
		}
		return &TransportError{Op: fmt.Sprintf("patch status of %s %s/%s", gvr.Resource, namespace, name), Err: err}
	}
	return nil
}

func (c *apiClient) GetSecretValue(ctx context.Context, namespace, name, key string) (string, error) {
	secret, err := c.core.CoreV1().Secrets(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return "", &NotFoundError{Resource: "secrets", Namespace: namespace, Name: name}
		}
		return "", &TransportError{Op: fmt.Sprintf("get secret %s/%s", namespace, name), Err: err}
	}

	// Data values arrive base64-encoded on the wire; client-go hands them
	// back decoded.
	value, ok := secret.Data[key]
	if !ok {
		return "", fmt.Errorf("secret %s/%s has no %q key", namespace, name, key)
	}
	return string(value), nil
}
