// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Account Inttest Authors

package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ClaimStatus describes the lifecycle state of an AccountClaim
type ClaimStatus string

const (
	// ClaimStatusPending means the claim has not been matched to an account yet
	ClaimStatusPending ClaimStatus = "Pending"
	// ClaimStatusReady means the claim is bound to a ready account
	ClaimStatusReady ClaimStatus = "Ready"
	// ClaimStatusError means the operator gave up reconciling the claim
	ClaimStatusError ClaimStatus = "Error"
)

// LegalEntity identifies the organization a claimed account is billed to
type LegalEntity struct {
	// Name is the display name of the legal entity
	// +kubebuilder:validation:Required
	Name string `json:"name"`

	// ID is the unique identifier of the legal entity
	// +kubebuilder:validation:Required
	ID string `json:"id"`
}

// SecretRef points at a secret by name and namespace
type SecretRef struct {
	// Name of the secret
	// +kubebuilder:validation:Required
	Name string `json:"name"`

	// Namespace of the secret
	// +kubebuilder:validation:Required
	Namespace string `json:"namespace"`
}

// AwsRegions is a single AWS region requested by a claim
type AwsRegions struct {
	// Name is the AWS region name, e.g. us-east-1
	// +kubebuilder:validation:Required
	Name string `json:"name"`
}

// Aws holds AWS-specific claim settings
type Aws struct {
	// Regions the claimed account must support
	// +kubebuilder:validation:Optional
	Regions []AwsRegions `json:"regions,omitempty"`
}

// Tag is a key/value label propagated onto the provisioned account
type Tag struct {
	// Key of the tag
	// +kubebuilder:validation:Required
	Key string `json:"key"`

	// Value of the tag
	// +kubebuilder:validation:Required
	Value string `json:"value"`
}

// AccountClaimSpec defines the desired state of AccountClaim
type AccountClaimSpec struct {
	// LegalEntity the claimed account belongs to
	// +kubebuilder:validation:Required
	LegalEntity LegalEntity `json:"legalEntity"`

	// AccountLink is the name of the Account bound to this claim,
	// filled in by the operator once matching succeeds
	// +kubebuilder:validation:Optional
	AccountLink string `json:"accountLink,omitempty"`

	// AwsCredentialSecret is where the operator publishes IAM
	// credentials for the claimed account
	// +kubebuilder:validation:Required
	AwsCredentialSecret SecretRef `json:"awsCredentialSecret"`

	// Aws holds region requirements
	// +kubebuilder:validation:Optional
	Aws Aws `json:"aws,omitempty"`

	// BYOC marks the claim as bring-your-own-cloud; the caller
	// supplies account credentials instead of drawing from the pool
	// +kubebuilder:validation:Optional
	BYOC bool `json:"byoc,omitempty"`

	// BYOCAWSAccountID is the caller-owned AWS account id for BYOC claims
	// +kubebuilder:validation:Optional
	BYOCAWSAccountID string `json:"byocAWSAccountID,omitempty"`

	// BYOCSecretRef references the caller-supplied credentials for BYOC claims
	// +kubebuilder:validation:Optional
	BYOCSecretRef SecretRef `json:"byocSecretRef,omitempty"`

	// CustomTags are propagated verbatim onto the provisioned account
	// +kubebuilder:validation:Optional
	CustomTags []Tag `json:"customTags,omitempty"`
}

// AccountClaimStatus defines the observed state of AccountClaim
type AccountClaimStatus struct {
	// State is the coarse lifecycle state of the claim
	// +optional
	State ClaimStatus `json:"state,omitempty"`

	// Conditions represent the latest available observations
	// +optional
	Conditions []metav1.Condition `json:"conditions,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="State",type=string,JSONPath=`.status.state`
// +kubebuilder:printcolumn:name="Account",type=string,JSONPath=`.spec.accountLink`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`

// AccountClaim is the Schema for a user-facing AWS account request
type AccountClaim struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   AccountClaimSpec   `json:"spec,omitempty"`
	Status AccountClaimStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// AccountClaimList contains a list of AccountClaim
type AccountClaimList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []AccountClaim `json:"items"`
}

func init() {
	SchemeBuilder.Register(&AccountClaim{}, &AccountClaimList{})
}
