package v1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// EmailSpec defines the desired state of Email
type EmailSpec struct {
	// SenderConfigRef names the EmailSenderConfig (in the same namespace)
	// to deliver this message through.
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:MinLength=1
	SenderConfigRef string `json:"senderConfigRef" yaml:"senderConfigRef"`

	// RecipientEmail is the address the message is delivered to.
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:MinLength=3
	RecipientEmail string `json:"recipientEmail" yaml:"recipientEmail"`

	// Subject is the message subject line.
	Subject string `json:"subject,omitempty" yaml:"subject,omitempty"`

	// Body is the plain-text message content.
	Body string `json:"body,omitempty" yaml:"body,omitempty"`
}

// EmailStatus defines the observed state of Email
type EmailStatus struct {
	// DeliveryStatus tracks the delivery lifecycle. A resource starts as
	// UNSENT and moves to exactly one of SENT or FAILED.
	// +kubebuilder:validation:Enum=UNSENT;FAILED;SENT
	DeliveryStatus string `json:"deliveryStatus,omitempty" yaml:"deliveryStatus,omitempty"`

	// MessageId is the correlation identifier for this message. It equals
	// the resource's cluster-assigned UID.
	MessageId string `json:"messageId,omitempty" yaml:"messageId,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="Status",type=string,JSONPath=`.status.deliveryStatus`

// Email requests delivery of a single plain-text message through a named
// EmailSenderConfig.
type Email struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   EmailSpec   `json:"spec,omitempty"`
	Status EmailStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// EmailList contains a list of Email
type EmailList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []Email `json:"items"`
}

func init() {
	SchemeBuilder.Register(&Email{}, &EmailList{})
}
