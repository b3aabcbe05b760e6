package v1

import (
	"k8s.io/apimachinery/pkg/runtime/schema"
	"sigs.k8s.io/controller-runtime/pkg/scheme"
)

var (
	// GroupVersion is group version used to register these objects.
	GroupVersion = schema.GroupVersion{Group: "stable.email-sender-operator.dev", Version: "v1"}

	// SchemeBuilder is used to add go types to the GroupVersionKind scheme.
	SchemeBuilder = &scheme.Builder{GroupVersion: GroupVersion}

	// AddToScheme adds the types in this group-version to the given scheme.
	AddToScheme = SchemeBuilder.AddToScheme
)

var (
	// EmailSenderConfigResource is the GroupVersionResource addressing
	// EmailSenderConfig objects through the dynamic client.
	EmailSenderConfigResource = GroupVersion.WithResource("emailsenderconfigs")

	// EmailResource is the GroupVersionResource addressing Email objects
	// through the dynamic client.
	EmailResource = GroupVersion.WithResource("emails")
)
