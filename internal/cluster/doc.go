// Package cluster provides the operator's cluster API client abstraction.
//
// The Client interface covers the three cluster interactions the operator
// needs: reading a namespaced custom resource, merge-patching its status
// subresource, and reading a field from a companion Secret. Custom resources
// are addressed by GroupVersionResource plural so callers stay schema-driven;
// Secrets go through the typed CoreV1 client.
//
// Errors are classified into the two infrastructure conditions the rest of
// the operator distinguishes: NotFoundError (the addressed object does not
// exist) and TransportError (the call itself did not complete). Callers use
// IsNotFound and IsTransport rather than inspecting apierrors directly.
//
// REST configuration resolution follows controller-runtime's detection:
// in-cluster service account first, kubeconfig fallback for out-of-cluster
// development.
package cluster
