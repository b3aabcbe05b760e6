package v1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// EmailSenderConfigSpec defines the desired state of EmailSenderConfig
type EmailSenderConfigSpec struct {
	// SenderEmail is the address outgoing mail is sent from. For providers
	// that derive an API endpoint from the sending domain (MailGun), the
	// domain part of this address is used.
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:MinLength=3
	SenderEmail string `json:"senderEmail" yaml:"senderEmail"`
}

// EmailSenderConfigStatus defines the observed state of EmailSenderConfig.
//
// EmailSenderConfig carries no observed state today; the operator only
// acknowledges configs it recognizes in its log stream.
type EmailSenderConfigStatus struct {
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status

// EmailSenderConfig declares a mail-provider account the operator may send
// through. The resource name selects the provider implementation; the API
// token is read from a Secret with the same name and namespace.
type EmailSenderConfig struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   EmailSenderConfigSpec   `json:"spec,omitempty"`
	Status EmailSenderConfigStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// EmailSenderConfigList contains a list of EmailSenderConfig
type EmailSenderConfigList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []EmailSenderConfig `json:"items"`
}

func init() {
	SchemeBuilder.Register(&EmailSenderConfig{}, &EmailSenderConfigList{})
}
