// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Account Inttest Authors

package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	// AccountStateCreating means the operator is still provisioning the account
	AccountStateCreating = "Creating"
	// AccountStateReady means the account finished provisioning and is claimable
	AccountStateReady = "Ready"
	// AccountStateFailed means provisioning failed terminally
	AccountStateFailed = "Failed"

	// AccountCrNamespace is the namespace the operator manages Account resources in
	AccountCrNamespace = "aws-account-operator"
)

// AccountSpec defines the desired state of Account
type AccountSpec struct {
	// AwsAccountID is the numeric AWS account id backing this resource
	// +kubebuilder:validation:Required
	AwsAccountID string `json:"awsAccountID"`

	// IAMUserSecret names the secret holding the account's IAM user credentials
	// +kubebuilder:validation:Optional
	IAMUserSecret string `json:"iamUserSecret,omitempty"`

	// BYOC marks the account as caller-owned rather than pool-managed
	// +kubebuilder:validation:Optional
	BYOC bool `json:"byoc,omitempty"`

	// ClaimLink is the name of the AccountClaim bound to this account
	// +kubebuilder:validation:Optional
	ClaimLink string `json:"claimLink,omitempty"`

	// ClaimLinkNamespace is the namespace of the bound AccountClaim
	// +kubebuilder:validation:Optional
	ClaimLinkNamespace string `json:"claimLinkNamespace,omitempty"`

	// LegalEntity copied from the claim at bind time
	// +kubebuilder:validation:Optional
	LegalEntity LegalEntity `json:"legalEntity,omitempty"`

	// CustomTags copied from the claim at bind time
	// +kubebuilder:validation:Optional
	CustomTags []Tag `json:"customTags,omitempty"`
}

// AccountStatus defines the observed state of Account
type AccountStatus struct {
	// State is the coarse lifecycle state of the account
	// +optional
	State string `json:"state,omitempty"`

	// Claimed indicates the account is bound to a claim
	// +optional
	Claimed bool `json:"claimed,omitempty"`

	// SupportCaseID of the limit-increase case opened during provisioning
	// +optional
	SupportCaseID string `json:"supportCaseID,omitempty"`

	// Conditions represent the latest available observations
	// +optional
	Conditions []metav1.Condition `json:"conditions,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="State",type=string,JSONPath=`.status.state`
// +kubebuilder:printcolumn:name="Claimed",type=boolean,JSONPath=`.status.claimed`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`

// Account is the Schema for the operator-managed backing resource of a claim
type Account struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   AccountSpec   `json:"spec,omitempty"`
	Status AccountStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// AccountList contains a list of Account
type AccountList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []Account `json:"items"`
}

func init() {
	SchemeBuilder.Register(&Account{}, &AccountList{})
}
