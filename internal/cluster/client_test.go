package cluster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynfake "k8s.io/client-go/dynamic/fake"
	k8sfake "k8s.io/client-go/kubernetes/fake"
)

var emailGVR = schema.GroupVersionResource{
	Group:    "stable.email-sender-operator.dev",
	Version:  "v1",
	Resource: "emails",
}

func newEmailObject(namespace, name, uid string) *unstructured.Unstructured {
	return &unstructured.Unstructured{
		Object: map[string]interface{}{
			"apiVersion": "stable.email-sender-operator.dev/v1",
			"kind":       "Email",
			"metadata": map[string]interface{}{
				"namespace": namespace,
				"name":      name,
				"uid":       uid,
			},
			"spec": map[string]interface{}{
				"senderConfigRef": "mail-gun",
				"recipientEmail":  "a@b.com",
				"subject":         "s",
				"body":            "hi",
			},
		},
	}
}

func newFakeClient(t *testing.T, objects ...runtime.Object) Client {
	t.Helper()
	scheme := runtime.NewScheme()
	dyn := dynfake.NewSimpleDynamicClientWithCustomListKinds(scheme,
		map[schema.GroupVersionResource]string{emailGVR: "EmailList"}, objects...)
	return NewFromInterfaces(dyn, k8sfake.NewSimpleClientset())
}

func TestGetResource(t *testing.T) {
	c := newFakeClient(t, newEmailObject("default", "welcome", "uid-1"))

	obj, err := c.GetResource(context.Background(), emailGVR, "default", "welcome")
	require.NoError(t, err)
	assert.Equal(t, "welcome", obj.GetName())
	assert.Equal(t, "uid-1", string(obj.GetUID()))

	ref, found, err := unstructured.NestedString(obj.Object, "spec", "senderConfigRef")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "mail-gun", ref)
}

func TestGetResource_NotFound(t *testing.T) {
	c := newFakeClient(t)

	_, err := c.GetResource(context.Background(), emailGVR, "default", "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsTransport(err))
}

func TestPatchResourceStatus(t *testing.T) {
	c := newFakeClient(t, newEmailObject("default", "welcome", "uid-1"))

	status := map[string]interface{}{
		"deliveryStatus": "SENT",
		"messageId":      "uid-1",
	}
	err := c.PatchResourceStatus(context.Background(), emailGVR, "default", "welcome", status)
	require.NoError(t, err)

	obj, err := c.GetResource(context.Background(), emailGVR, "default", "welcome")
	require.NoError(t, err)

	got, found, err := unstructured.NestedString(obj.Object, "status", "deliveryStatus")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "SENT", got)
}

func TestPatchResourceStatus_NotFound(t *testing.T) {
	c := newFakeClient(t)

	err := c.PatchResourceStatus(context.Background(), emailGVR, "default", "missing",
		map[string]interface{}{"deliveryStatus": "SENT"})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestGetSecretValue(t *testing.T) {
	scheme := runtime.NewScheme()
	dyn := dynfake.NewSimpleDynamicClientWithCustomListKinds(scheme,
		map[schema.GroupVersionResource]string{emailGVR: "EmailList"})
	core := k8sfake.NewSimpleClientset(&corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Namespace: "default", Name: "mail-gun"},
		Data:       map[string][]byte{"apiToken": []byte("s3cr3t")},
	})
	c := NewFromInterfaces(dyn, core)

	value, err := c.GetSecretValue(context.Background(), "default", "mail-gun", "apiToken")
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", value)

	_, err = c.GetSecretValue(context.Background(), "default", "mail-gun", "other")
	require.Error(t, err)
	assert.False(t, IsNotFound(err))

	_, err = c.GetSecretValue(context.Background(), "default", "missing", "apiToken")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestErrorClassification(t *testing.T) {
	nf := &NotFoundError{Resource: "emails", Namespace: "default", Name: "x"}
	assert.True(t, IsNotFound(nf))
	assert.False(t, IsTransport(nf))
	assert.Contains(t, nf.Error(), "emails default/x")

	te := &TransportError{Op: "get emails default/x", Err: assert.AnError}
	assert.True(t, IsTransport(te))
	assert.False(t, IsNotFound(te))
	assert.ErrorIs(t, te, assert.AnError)
}
