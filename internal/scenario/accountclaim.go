// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Account Inttest Authors

package scenario

import (
	"context"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	awsv1alpha1 "github.com/osd-sre/account-inttest/api/v1alpha1"
	"github.com/osd-sre/account-inttest/internal/checks"
	"github.com/osd-sre/account-inttest/internal/exitcode"
	"github.com/osd-sre/account-inttest/internal/query"
	"github.com/osd-sre/account-inttest/internal/template"
)

// Secret keys the operator publishes IAM credentials under.
const (
	secretKeyAccessKeyID     = "aws_access_key_id"
	secretKeySecretAccessKey = "aws_secret_access_key"
)

// Failure codes of the standard account claim scenario.
const (
	claimNotReady exitcode.Code = iota + 1
	claimErrored
	claimNoAccountLink
	claimAccountMissing
	claimAccountNotReady
	claimAccountNotClaimed
	claimSecretMissing
	claimSecretNoKeys
	claimCredentialsRejected
)

func newClaimRegistry() *exitcode.Registry {
	return exitcode.NewRegistry(
		exitcode.Entry{Code: claimNotReady, Explanation: "AccountClaim did not reach Ready state before the readiness timeout"},
		exitcode.Entry{Code: claimErrored, Explanation: "AccountClaim entered Error state"},
		exitcode.Entry{Code: claimNoAccountLink, Explanation: "AccountClaim carries no account link"},
		exitcode.Entry{Code: claimAccountMissing, Explanation: "Account linked by the claim does not exist"},
		exitcode.Entry{Code: claimAccountNotReady, Explanation: "Account linked by the claim is not in Ready state"},
		exitcode.Entry{Code: claimAccountNotClaimed, Explanation: "Account linked by the claim is not marked claimed"},
		exitcode.Entry{Code: claimSecretMissing, Explanation: "credential secret referenced by the claim does not exist"},
		exitcode.Entry{Code: claimSecretNoKeys, Explanation: "credential secret lacks aws_access_key_id or aws_secret_access_key"},
		exitcode.Entry{Code: claimCredentialsRejected, Explanation: "generated IAM credentials were rejected by AWS"},
	)
}

// ClaimConfig is the immutable configuration of a standard claim
// scenario instance. Separate instances with disjoint namespaces can
// run in the same process.
type ClaimConfig struct {
	ClaimName       string
	Namespace       string
	SecretName      string
	LegalEntityName string
	LegalEntityID   string
	Region          string
}

// DefaultClaimConfig returns the configuration used by CI.
func DefaultClaimConfig() ClaimConfig {
	return ClaimConfig{
		ClaimName:       "inttest-claim",
		Namespace:       "inttest-claim-namespace",
		SecretName:      "inttest-claim-secret",
		LegalEntityName: "LegalCorp. Inc.",
		LegalEntityID:   "abcdefg123456",
		Region:          "us-east-1",
	}
}

// AccountClaimScenario exercises the operator's pooled provisioning
// path end to end: claim a pooled account, follow the link to the
// Account, and prove the published IAM credentials are live.
type AccountClaimScenario struct {
	deps     Deps
	cfg      ClaimConfig
	registry *exitcode.Registry
}

// NewAccountClaim builds the standard scenario.
func NewAccountClaim(deps Deps, cfg ClaimConfig) *AccountClaimScenario {
	return &AccountClaimScenario{deps: deps, cfg: cfg, registry: newClaimRegistry()}
}

func (s *AccountClaimScenario) Name() string { return "accountclaim" }
func (s *AccountClaimScenario) Registry() *exitcode.Registry { return s.registry }

// Setup stands up the claim and blocks until the operator binds it.
func (s *AccountClaimScenario) Setup(ctx context.Context) exitcode.Outcome {
	if err := s.deps.precheck(ctx); err != nil {
		return exitcode.Unexpected(err)
	}
	if err := s.deps.Orchestrator.EnsureNamespace(ctx, s.cfg.Namespace); err != nil {
		return exitcode.Unexpected(err)
	}

	claim, err := template.Render("accountclaim", map[string]string{
		"NAME":              s.cfg.ClaimName,
		"NAMESPACE":         s.cfg.Namespace,
		"LEGAL_ENTITY_NAME": s.cfg.LegalEntityName,
		"LEGAL_ENTITY_ID":   s.cfg.LegalEntityID,
		"SECRET_NAME":       s.cfg.SecretName,
		"REGION":            s.cfg.Region,
	})
	if err != nil {
		return exitcode.Unexpected(err)
	}
	if err := s.deps.Orchestrator.CreateIfNotExists(ctx, claim); err != nil {
		return exitcode.Unexpected(err)
	}

	return waitForClaim(ctx, s.deps, claimRef(s.cfg.ClaimName, s.cfg.Namespace), claimNotReady, claimErrored)
}

// Test asserts on the provisioned state without mutating it.
func (s *AccountClaimScenario) Test(ctx context.Context) exitcode.Outcome {
	var (
		claim       *unstructured.Unstructured
		account     *unstructured.Unstructured
		secret      *unstructured.Unstructured
		accountName string
	)

	list := []checks.Check{
		{
			Subject: "accountclaim is ready",
			Code:    claimNotReady,
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
			Subject: "accountclaim links an account",
			Code:    claimNoAccountLink,
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
			Subject: "linked account exists",
			Code:    claimAccountMissing,
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
			Subject: "linked account is ready",
			Code:    claimAccountNotReady,
			Eval: func(context.Context) (bool, string, error) {
				ok, detail := checks.EqualString(
					query.Path(account.Object, "status", "state"),
					awsv1alpha1.AccountStateReady,
				)
				return ok, detail, nil
			},
		},
		{
			Subject: "linked account is claimed",
			Code:    claimAccountNotClaimed,
			Eval: func(context.Context) (bool, string, error) {
				ok, detail := checks.EqualBool(
					query.Path(account.Object, "status", "claimed"),
					true,
				)
				return ok, detail, nil
			},
		},
		{
			Subject: "credential secret exists",
			Code:    claimSecretMissing,
			Eval: func(ctx context.Context) (bool, string, error) {
				doc, err := s.deps.Orchestrator.Get(ctx, secretRef(s.cfg.SecretName, s.cfg.Namespace))
				if apierrors.IsNotFound(err) {
					return false, fmt.Sprintf("secret %s/%s not found", s.cfg.Namespace, s.cfg.SecretName), nil
				}
				if err != nil {
					return false, "", err
				}
				secret = doc
				return true, fmt.Sprintf("secret %s/%s", s.cfg.Namespace, s.cfg.SecretName), nil
			},
		},
		{
			Subject: "credential secret carries access keys",
			Code:    claimSecretNoKeys,
			Eval: func(context.Context) (bool, string, error) {
				_, _, ok := secretKeyPair(secret)
				if !ok {
					return false, "access key pair absent or not decodable", nil
				}
				return true, "access key pair present", nil
			},
		},
		{
			Subject: "credentials are accepted by AWS",
			Code:    claimCredentialsRejected,
			Eval: func(ctx context.Context) (bool, string, error) {
				keyID, secretKey, _ := secretKeyPair(secret)
				api, err := s.deps.BuildSTS(ctx, keyID, secretKey, "", s.deps.Config.AWSRegion)
				if err != nil {
					return false, "", err
				}
				accountID, err := verifyCredentials(ctx, api)
				if err != nil {
					return false, fmt.Sprintf("sts rejected credentials: %v", err), nil
				}
				return true, fmt.Sprintf("caller identity account %s", accountID), nil
			},
		},
	}

	return s.deps.Engine.Run(ctx, list)
}

// Cleanup tears down everything setup creates, attempting every step
// even when earlier ones fail or setup never finished.
func (s *AccountClaimScenario) Cleanup(ctx context.Context) exitcode.Outcome {
	td := NewTeardown(s.deps.Log)
	td.Add("delete accountclaim", func(ctx context.Context) error {
		claim := &awsv1alpha1.AccountClaim{}
		claim.Name = s.cfg.ClaimName
		claim.Namespace = s.cfg.Namespace
		return s.deps.Orchestrator.DeleteIfExists(ctx, claim, s.deps.Config.DeleteTimeout, false)
	})
	td.Add("delete credential secret", func(ctx context.Context) error {
		return deleteSecret(ctx, s.deps, s.cfg.SecretName, s.cfg.Namespace)
	})
	td.Add("delete namespace", func(ctx context.Context) error {
		return s.deps.Orchestrator.DeleteNamespace(ctx, s.cfg.Namespace, false)
	})
	return td.Run(ctx)
}
