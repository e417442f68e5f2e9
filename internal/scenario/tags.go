// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Account Inttest Authors

package scenario

import (
	"context"
	"fmt"
	"sort"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	awsv1alpha1 "github.com/osd-sre/account-inttest/api/v1alpha1"
	"github.com/osd-sre/account-inttest/internal/checks"
	"github.com/osd-sre/account-inttest/internal/exitcode"
	"github.com/osd-sre/account-inttest/internal/query"
	"github.com/osd-sre/account-inttest/internal/template"
)

// Failure codes of the tag propagation scenario.
const (
	tagsClaimNotReady exitcode.Code = iota + 1
	tagsClaimErrored
	tagsNoAccountLink
	tagsClaimNoCustomTags
	tagsClaimTagsWrong
	tagsAccountMissing
	tagsNotPropagated
	tagsMismatch
)

func newTagsRegistry() *exitcode.Registry {
	return exitcode.NewRegistry(
		exitcode.Entry{Code: tagsClaimNotReady, Explanation: "tagged AccountClaim did not reach Ready state before the readiness timeout"},
		exitcode.Entry{Code: tagsClaimErrored, Explanation: "tagged AccountClaim entered Error state"},
		exitcode.Entry{Code: tagsNoAccountLink, Explanation: "tagged AccountClaim carries no account link"},
		exitcode.Entry{Code: tagsClaimNoCustomTags, Explanation: "AccountClaim carries no custom tags"},
		exitcode.Entry{Code: tagsClaimTagsWrong, Explanation: "AccountClaim does not carry the expected custom tags"},
		exitcode.Entry{Code: tagsAccountMissing, Explanation: "Account linked by the tagged claim does not exist"},
		exitcode.Entry{Code: tagsNotPropagated, Explanation: "custom tags did not propagate to the Account"},
		exitcode.Entry{Code: tagsMismatch, Explanation: "a custom tag propagated to the Account with the wrong value"},
	)
}

// TagsConfig is the immutable configuration of a tag propagation
// scenario instance. ExpectedTags is the table every linked resource
// must carry; MinTagCount guards against an empty tag list sneaking
// through the per-key checks.
type TagsConfig struct {
	ClaimName       string
	Namespace       string
	SecretName      string
	LegalEntityName string
	LegalEntityID   string
	Region          string
	ExpectedTags    map[string]string
	MinTagCount     int
}

// DefaultTagsConfig returns the configuration used by CI.
func DefaultTagsConfig() TagsConfig {
	return TagsConfig{
		ClaimName:       "inttest-tags-claim",
		Namespace:       "inttest-tags-namespace",
		SecretName:      "inttest-tags-claim-secret",
		LegalEntityName: "LegalCorp. Inc.",
		LegalEntityID:   "abcdefg123456",
		Region:          "us-east-1",
		ExpectedTags: map[string]string{
			"test-team":        "platform-engineering",
			"test-environment": "integration-test",
			"test-cost-center": "12345",
		},
		MinTagCount: 1,
	}
}

// TagsScenario exercises custom tag propagation: tags declared on the
// claim must reappear unchanged on the Account the operator binds. A
// tag that is absent and a tag that propagated with the wrong value are
// reported as different failures.
type TagsScenario struct {
	deps     Deps
	cfg      TagsConfig
	registry *exitcode.Registry
}

// NewTags builds the tag propagation scenario.
func NewTags(deps Deps, cfg TagsConfig) *TagsScenario {
	return &TagsScenario{deps: deps, cfg: cfg, registry: newTagsRegistry()}
}

func (s *TagsScenario) Name() string { return "tags" }
func (s *TagsScenario) Registry() *exitcode.Registry { return s.registry }

// Setup stands up a claim carrying the expected tag table.
func (s *TagsScenario) Setup(ctx context.Context) exitcode.Outcome {
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
	if err := unstructured.SetNestedSlice(claim.Object, tagList(s.cfg.ExpectedTags), "spec", "customTags"); err != nil {
		return exitcode.Unexpected(fmt.Errorf("attach custom tags: %w", err))
	}
	if err := s.deps.Orchestrator.CreateIfNotExists(ctx, claim); err != nil {
		return exitcode.Unexpected(err)
	}

	return waitForClaim(ctx, s.deps, claimRef(s.cfg.ClaimName, s.cfg.Namespace), tagsClaimNotReady, tagsClaimErrored)
}

// Test asserts on the claim's and the account's tag sets. Check order
// matters: presence is checked before per-key values, so a partially
// propagated tag set reports "not propagated" and only a fully present
// set with a diverging value reports a mismatch.
func (s *TagsScenario) Test(ctx context.Context) exitcode.Outcome {
	var (
		claim       *unstructured.Unstructured
		account     *unstructured.Unstructured
		accountName string
	)

	claimTags := func() query.Result {
		return query.KeyedList(claim.Object, "key", "value", "spec", "customTags")
	}
	accountTags := func() query.Result {
		return query.KeyedList(account.Object, "key", "value", "spec", "customTags")
	}

	list := []checks.Check{
		{
			Subject: "tagged accountclaim is ready",
			Code:    tagsClaimNotReady,
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
			Subject: "claim carries custom tags",
			Code:    tagsClaimNoCustomTags,
			Eval: func(context.Context) (bool, string, error) {
				ok, detail := checks.MinCount(
					query.Path(claim.Object, "spec", "customTags"),
					s.cfg.MinTagCount,
				)
				return ok, detail, nil
			},
		},
		{
			Subject: "claim carries the expected tag table",
			Code:    tagsClaimTagsWrong,
			Eval: func(context.Context) (bool, string, error) {
				verdict, detail := checks.CompareTags(s.cfg.ExpectedTags, claimTags())
				return verdict == checks.TagsPropagated, detail, nil
			},
		},
		{
			Subject: "tagged accountclaim links an account",
			Code:    tagsNoAccountLink,
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
			Code:    tagsAccountMissing,
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
			Subject: "custom tags propagated to the account",
			Code:    tagsNotPropagated,
			Eval: func(context.Context) (bool, string, error) {
				verdict, detail := checks.CompareTags(s.cfg.ExpectedTags, accountTags())
				// Value divergence is the next check's failure, not this one's.
				ok := verdict != checks.TagsAbsent && verdict != checks.TagMissing
				return ok, detail, nil
			},
		},
		{
			Subject: "propagated tag values match the claim",
			Code:    tagsMismatch,
			Eval: func(context.Context) (bool, string, error) {
				verdict, detail := checks.CompareTags(s.cfg.ExpectedTags, accountTags())
				return verdict == checks.TagsPropagated, detail, nil
			},
		},
	}

	return s.deps.Engine.Run(ctx, list)
}

// Cleanup tears down the claim, its secret and the namespace.
func (s *TagsScenario) Cleanup(ctx context.Context) exitcode.Outcome {
	td := NewTeardown(s.deps.Log)
	td.Add("delete tagged accountclaim", func(ctx context.Context) error {
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

// tagList renders an expected-tag table as the {key,value} list shape
// the CRD uses, in sorted key order for deterministic specs.
func tagList(tags map[string]string) []interface{} {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]interface{}, 0, len(keys))
	for _, k := range keys {
		out = append(out, map[string]interface{}{"key": k, "value": tags[k]})
	}
	return out
}
