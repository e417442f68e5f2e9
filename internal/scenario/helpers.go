// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Account Inttest Authors

package scenario

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/osd-sre/account-inttest/internal/awsclient"
	"github.com/osd-sre/account-inttest/internal/checks"
	"github.com/osd-sre/account-inttest/internal/exitcode"
	"github.com/osd-sre/account-inttest/internal/orchestrator"
	"github.com/osd-sre/account-inttest/internal/query"
)

// waitForClaim blocks until the claim reaches a terminal state and maps
// the three wait outcomes onto the scenario's codes: TimedOut and
// Failed stay distinguishable so operators can tell "never reached
// ready" from "operator marked it failed".
func waitForClaim(ctx context.Context, d Deps, ref orchestrator.Reference, notReady, errored exitcode.Code) exitcode.Outcome {
	outcome, err := d.Orchestrator.WaitForReady(ctx, ref, claimProbe(), d.Config.ReadyTimeout)
	if err != nil {
		return exitcode.Unexpected(err)
	}
	switch outcome {
	case orchestrator.Ready:
		return exitcode.OK()
	case orchestrator.Failed:
		return exitcode.Fail(errored, fmt.Errorf("%s reported a failed state", ref.String()))
	default:
		return exitcode.Fail(notReady, fmt.Errorf("%s still pending after %s", ref.String(), d.Config.ReadyTimeout))
	}
}

// secretKeyPair pulls the base64-encoded IAM access key pair out of an
// unstructured secret document. ok is false when either key is absent
// or not decodable.
func secretKeyPair(secret *unstructured.Unstructured) (keyID, secretKey string, ok bool) {
	if secret == nil {
		return "", "", false
	}
	keyID, idOK := checks.Base64String(query.Path(secret.Object, "data", secretKeyAccessKeyID))
	secretKey, secretOK := checks.Base64String(query.Path(secret.Object, "data", secretKeySecretAccessKey))
	if !idOK || !secretOK || keyID == "" || secretKey == "" {
		return "", "", false
	}
	return keyID, secretKey, true
}

// verifyCredentials confirms a harvested key pair is live.
func verifyCredentials(ctx context.Context, api awsclient.IdentityAPI) (string, error) {
	return awsclient.VerifyIdentity(ctx, api)
}

// deleteSecret removes a secret without waiting.
func deleteSecret(ctx context.Context, d Deps, name, namespace string) error {
	secret := &corev1.Secret{}
	secret.Name = name
	secret.Namespace = namespace
	return d.Orchestrator.DeleteIfExists(ctx, secret, 0, false)
}
