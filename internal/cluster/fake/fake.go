// Package fake provides an in-memory cluster.Client for tests.
package fake

import (
	"context"
	"fmt"
	"sync"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"emailsender/internal/cluster"
)

// StatusPatch records one PatchResourceStatus call.
type StatusPatch struct {
	Resource  string
	Namespace string
	Name      string
	Status    map[string]interface{}
}

// Client is an in-memory cluster.Client. It stores unstructured objects and
// secret data, applies status patches to the stored objects, and records
// every patch for assertions.
type Client struct {
	mu sync.Mutex

	objects map[string]*unstructured.Unstructured
	secrets map[string]map[string]string

	// StatusPatches is the ordered record of status patches applied.
	StatusPatches []StatusPatch

	// GetErr, PatchErr and SecretErr, when set, are returned by the
	// corresponding method instead of touching the store.
	GetErr    error
	PatchErr  error
	SecretErr error
}

// NewClient creates an empty fake client.
func NewClient() *Client {
	return &Client{
		objects: make(map[string]*unstructured.Unstructured),
		secrets: make(map[string]map[string]string),
	}
}

func objectKey(resource, namespace, name string) string {
	return resource + "/" + namespace + "/" + name
}

// AddObject stores a custom resource under the given GroupVersionResource.
func (c *Client) AddObject(gvr schema.GroupVersionResource, obj *unstructured.Unstructured) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.objects[objectKey(gvr.Resource, obj.GetNamespace(), obj.GetName())] = obj.DeepCopy()
}

// AddSecret stores secret data addressed by namespace and name.
func (c *Client) AddSecret(namespace, name string, data map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.secrets[namespace+"/"+name] = data
}

// Object returns a deep copy of a stored object, or nil.
func (c *Client) Object(gvr schema.GroupVersionResource, namespace, name string) *unstructured.Unstructured {
	c.mu.Lock()
	defer c.mu.Unlock()
	obj, ok := c.objects[objectKey(gvr.Resource, namespace, name)]
	if !ok {
		return nil
	}
	return obj.DeepCopy()
}

func (c *Client) GetResource(ctx context.Context, gvr schema.GroupVersionResource, namespace, name string) (*unstructured.Unstructured, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.GetErr != nil {
		return nil, c.GetErr
	}

	obj, ok := c.objects[objectKey(gvr.Resource, namespace, name)]
	if !ok {
		return nil, &cluster.NotFoundError{Resource: gvr.Resource, Namespace: namespace, Name: name}
	}
	return obj.DeepCopy(), nil
}

func (c *Client) PatchResourceStatus(ctx context.Context, gvr schema.GroupVersionResource, namespace, name string, status map[string]interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.PatchErr != nil {
		return c.PatchErr
	}

	obj, ok := c.objects[objectKey(gvr.Resource, namespace, name)]
	if !ok {
		return &cluster.NotFoundError{Resource: gvr.Resource, Namespace: namespace, Name: name}
	}

	obj.Object["status"] = status
	c.StatusPatches = append(c.StatusPatches, StatusPatch{
		Resource:  gvr.Resource,
		Namespace: namespace,
		Name:      name,
		Status:    status,
	})
	return nil
}

func (c *Client) GetSecretValue(ctx context.Context, namespace, name, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.SecretErr != nil {
		return "", c.SecretErr
	}

	data, ok := c.secrets[namespace+"/"+name]
	if !ok {
		return "", &cluster.NotFoundError{Resource: "secrets", Namespace: namespace, Name: name}
	}
	value, ok := data[key]
	if !ok {
		return "", fmt.Errorf("secret %s/%s has no %q key", namespace, name, key)
	}
	return value, nil
}
