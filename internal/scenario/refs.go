// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Account Inttest Authors

package scenario

import (
	"k8s.io/apimachinery/pkg/runtime/schema"

	awsv1alpha1 "github.com/osd-sre/account-inttest/api/v1alpha1"
	"github.com/osd-sre/account-inttest/internal/orchestrator"
)

var (
	namespaceGVK = schema.GroupVersionKind{Version: "v1", Kind: "Namespace"}
	secretGVK    = schema.GroupVersionKind{Version: "v1", Kind: "Secret"}
	claimGVK     = awsv1alpha1.GroupVersion.WithKind("AccountClaim")
	accountGVK   = awsv1alpha1.GroupVersion.WithKind("Account")
)

func claimRef(name, namespace string) orchestrator.Reference {
	return orchestrator.Reference{GroupVersionKind: claimGVK, Name: name, Namespace: namespace}
}

// accountRef points into the operator's namespace; Account resources
// always live there.
func accountRef(name string) orchestrator.Reference {
	return orchestrator.Reference{
		GroupVersionKind: accountGVK,
		Name:             name,
		Namespace:        awsv1alpha1.AccountCrNamespace,
	}
}

func secretRef(name, namespace string) orchestrator.Reference {
	return orchestrator.Reference{GroupVersionKind: secretGVK, Name: name, Namespace: namespace}
}

// claimProbe is the readiness probe shared by every scenario: Ready on
// a bound claim, Failed as soon as the operator marks the claim Error.
func claimProbe() orchestrator.ReadinessProbe {
	return orchestrator.StateProbe(
		[]string{string(awsv1alpha1.ClaimStatusReady)},
		[]string{string(awsv1alpha1.ClaimStatusError)},
		"status", "state",
	)
}
