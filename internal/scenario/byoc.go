// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Account Inttest Authors

package scenario

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	awsv1alpha1 "github.com/osd-sre/account-inttest/api/v1alpha1"
	"github.com/osd-sre/account-inttest/internal/checks"
	"github.com/osd-sre/account-inttest/internal/exitcode"
	"github.com/osd-sre/account-inttest/internal/query"
)

// Failure codes of the BYOC scenario.
const (
	byocClaimNotReady exitcode.Code = iota + 1
	byocClaimErrored
	byocNoAccountLink
	byocAccountMissing
	byocAccountNotFlagged
	byocWrongAccountID
	byocLegalEntityNotPropagated
	byocSecretMissingKeys
	byocCredentialsRejected
)

func newBYOCRegistry() *exitcode.Registry {
	return exitcode.NewRegistry(
		exitcode.Entry{Code: byocClaimNotReady, Explanation: "BYOC AccountClaim did not reach Ready state before the readiness timeout"},
		exitcode.Entry{Code: byocClaimErrored, Explanation: "BYOC AccountClaim entered Error state"},
		exitcode.Entry{Code: byocNoAccountLink, Explanation: "BYOC AccountClaim carries no account link"},
		exitcode.Entry{Code: byocAccountMissing, Explanation: "Account linked by the BYOC claim does not exist"},
		exitcode.Entry{Code: byocAccountNotFlagged, Explanation: "Account linked by the BYOC claim is not marked BYOC"},
		exitcode.Entry{Code: byocWrongAccountID, Explanation: "Account does not carry the caller-supplied AWS account id"},
		exitcode.Entry{Code: byocLegalEntityNotPropagated, Explanation: "legal entity did not propagate from the claim to the Account"},
		exitcode.Entry{Code: byocSecretMissingKeys, Explanation: "caller-supplied BYOC credentials are incomplete"},
		exitcode.Entry{Code: byocCredentialsRejected, Explanation: "caller-supplied BYOC credentials were rejected by AWS"},
	)
}

// BYOCConfig is the immutable configuration of a BYOC scenario
// instance. The access key pair identifies the caller-owned account the
// operator should adopt instead of drawing from the pool.
type BYOCConfig struct {
	ClaimName       string
	Namespace       string
	SecretName      string
	BYOCSecretName  string
	LegalEntityName string
	LegalEntityID   string
	Region          string
	AWSAccountID    string
	AccessKeyID     string
	SecretAccessKey string
}

// DefaultBYOCConfig returns the configuration used by CI; the account
// id and key pair must still be filled in from the environment.
func DefaultBYOCConfig() BYOCConfig {
	return BYOCConfig{
		ClaimName:       "inttest-byoc-claim",
		Namespace:       "inttest-byoc-namespace",
		SecretName:      "inttest-byoc-claim-secret",
		BYOCSecretName:  "inttest-byoc-creds",
		LegalEntityName: "LegalCorp. Inc.",
		LegalEntityID:   "abcdefg123456",
		Region:          "us-east-1",
	}
}

// BYOCScenario exercises the bring-your-own-cloud path: the caller
// supplies account credentials, the operator adopts the account rather
// than allocating one, and claim fields must propagate to the adopted
// Account.
type BYOCScenario struct {
	deps     Deps
	cfg      BYOCConfig
	registry *exitcode.Registry
}

// NewBYOC builds the BYOC scenario.
func NewBYOC(deps Deps, cfg BYOCConfig) *BYOCScenario {
	return &BYOCScenario{deps: deps, cfg: cfg, registry: newBYOCRegistry()}
}

func (s *BYOCScenario) Name() string { return "byoc" }
func (s *BYOCScenario) Registry() *exitcode.Registry { return s.registry }

// Setup validates the caller-supplied credentials, publishes them as
// the BYOC secret and stands up the claim.
func (s *BYOCScenario) Setup(ctx context.Context) exitcode.Outcome {
	if err := s.deps.precheck(ctx); err != nil {
		return exitcode.Unexpected(err)
	}
	if s.cfg.AccessKeyID == "" || s.cfg.SecretAccessKey == "" || s.cfg.AWSAccountID == "" {
		return exitcode.Fail(byocSecretMissingKeys,
			fmt.Errorf("BYOC scenario needs an AWS account id and access key pair"))
	}

	// Reject revoked credentials before the operator ever sees them.
	api, err := s.deps.BuildSTS(ctx, s.cfg.AccessKeyID, s.cfg.SecretAccessKey, "", s.deps.Config.AWSRegion)
	if err != nil {
		return exitcode.Unexpected(err)
	}
	if _, err := verifyCredentials(ctx, api); err != nil {
		return exitcode.Fail(byocCredentialsRejected, err)
	}

	if err := s.deps.Orchestrator.EnsureNamespace(ctx, s.cfg.Namespace); err != nil {
		return exitcode.Unexpected(err)
	}

	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      s.cfg.BYOCSecretName,
			Namespace: s.cfg.Namespace,
		},
		StringData: map[string]string{
			secretKeyAccessKeyID:     s.cfg.AccessKeyID,
			secretKeySecretAccessKey: s.cfg.SecretAccessKey,
		},
	}
	if err := s.deps.Orchestrator.CreateIfNotExists(ctx, secret); err != nil {
		return exitcode.Unexpected(err)
	}

	claim := &awsv1alpha1.AccountClaim{
		ObjectMeta: metav1.ObjectMeta{
			Name:      s.cfg.ClaimName,
			Namespace: s.cfg.Namespace,
		},
		Spec: awsv1alpha1.AccountClaimSpec{
			LegalEntity: awsv1alpha1.LegalEntity{
				Name: s.cfg.LegalEntityName,
				ID:   s.cfg.LegalEntityID,
			},
			AwsCredentialSecret: awsv1alpha1.SecretRef{
				Name:      s.cfg.SecretName,
				Namespace: s.cfg.Namespace,
			},
			Aws: awsv1alpha1.Aws{
				Regions: []awsv1alpha1.AwsRegions{{Name: s.cfg.Region}},
			},
			BYOC:             true,
			BYOCAWSAccountID: s.cfg.AWSAccountID,
			BYOCSecretRef: awsv1alpha1.SecretRef{
				Name:      s.cfg.BYOCSecretName,
				Namespace: s.cfg.Namespace,
			},
		},
	}
	if err := s.deps.Orchestrator.CreateIfNotExists(ctx, claim); err != nil {
		return exitcode.Unexpected(err)
	}

	return waitForClaim(ctx, s.deps, claimRef(s.cfg.ClaimName, s.cfg.Namespace), byocClaimNotReady, byocClaimErrored)
}

// Test asserts the adopted account mirrors the claim.
func (s *BYOCScenario) Test(ctx context.Context) exitcode.Outcome {
	var (
		claim       *unstructured.Unstructured
		account     *unstructured.Unstructured
		accountName string
	)

	list := []checks.Check{
		{
			Subject: "byoc accountclaim is ready",
			Code:    byocClaimNotReady,
			Eval: func(ctx context.Context) (bool, string, error) {
				doc, err := s.deps.Orchestrator.Get(ctx, claimRef(s.cfg.ClaimName, s.cfg.Namespace))
				if err != nil {
					return false, "", err
				}
				claim = doc
				ok, detail := checks.EqualString(
					query.Path(claim.Object, "status", "state"),
					string(awsv1alpha1.ClaimStatusReady),
				)
				return ok, detail, nil
			},
		},
		{
			Subject: "byoc accountclaim links an account",
			Code:    byocNoAccountLink,
			Eval: func(context.Context) (bool, string, error) {
				res := query.Path(claim.Object, "spec", "accountLink")
				ok, detail := checks.NonEmptyString(res)
				if ok {
					accountName, _ = res.String()
				}
				return ok, detail, nil
			},
		},
		{
			Subject: "adopted account exists",
			Code:    byocAccountMissing,
			Eval: func(ctx context.Context) (bool, string, error) {
				doc, err := s.deps.Orchestrator.Get(ctx, accountRef(accountName))
				if apierrors.IsNotFound(err) {
					return false, fmt.Sprintf("account %q not found", accountName), nil
				}
				if err != nil {
					return false, "", err
				}
				account = doc
				return true, fmt.Sprintf("account %q", accountName), nil
			},
		},
		{
			Subject: "adopted account is marked byoc",
			Code:    byocAccountNotFlagged,
			Eval: func(context.Context) (bool, string, error) {
				ok, detail := checks.EqualBool(query.Path(account.Object, "spec", "byoc"), true)
				return ok, detail, nil
			},
		},
		{
			Subject: "adopted account keeps the caller's aws account id",
			Code:    byocWrongAccountID,
			Eval: func(context.Context) (bool, string, error) {
				ok, detail := checks.EqualString(
					query.Path(account.Object, "spec", "awsAccountID"),
					s.cfg.AWSAccountID,
				)
				return ok, detail, nil
			},
		},
		{
			Subject: "legal entity propagates from claim to account",
			Code:    byocLegalEntityNotPropagated,
			Eval: func(context.Context) (bool, string, error) {
				want, ok := query.Path(claim.Object, "spec", "legalEntity", "id").String()
				if !ok {
					return false, "claim carries no legal entity id", nil
				}
				okEq, detail := checks.EqualString(
					query.Path(account.Object, "spec", "legalEntity", "id"),
					want,
				)
				return okEq, detail, nil
			},
		},
	}

	return s.deps.Engine.Run(ctx, list)
}

// Cleanup tears down the claim, both secrets and the namespace,
// attempting every step regardless of earlier failures.
func (s *BYOCScenario) Cleanup(ctx context.Context) exitcode.Outcome {
	td := NewTeardown(s.deps.Log)
	td.Add("delete byoc accountclaim", func(ctx context.Context) error {
		claim := &awsv1alpha1.AccountClaim{}
		claim.Name = s.cfg.ClaimName
		claim.Namespace = s.cfg.Namespace
		return s.deps.Orchestrator.DeleteIfExists(ctx, claim, s.deps.Config.DeleteTimeout, false)
	})
	td.Add("delete credential secret", func(ctx context.Context) error {
		return deleteSecret(ctx, s.deps, s.cfg.SecretName, s.cfg.Namespace)
	})
	td.Add("delete byoc secret", func(ctx context.Context) error {
		return deleteSecret(ctx, s.deps, s.cfg.BYOCSecretName, s.cfg.Namespace)
	})
	td.Add("delete namespace", func(ctx context.Context) error {
		return s.deps.Orchestrator.DeleteNamespace(ctx, s.cfg.Namespace, false)
	})
	return td.Run(ctx)
}
