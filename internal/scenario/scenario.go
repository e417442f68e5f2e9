// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Account Inttest Authors

// Package scenario drives integration-test scenarios against the
// account operator through three independently invocable phases:
// setup, test and cleanup. Phases never chain into each other; an
// external command decides what runs, so cleanup can be invoked after
// an aborted setup and test can be re-run against provisioned state.
package scenario

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	apierrors "k8s.io/apimachinery/pkg/api/errors"

	awsv1alpha1 "github.com/osd-sre/account-inttest/api/v1alpha1"
	"github.com/osd-sre/account-inttest/internal/awsclient"
	"github.com/osd-sre/account-inttest/internal/checks"
	"github.com/osd-sre/account-inttest/internal/envconfig"
	"github.com/osd-sre/account-inttest/internal/exitcode"
	"github.com/osd-sre/account-inttest/internal/orchestrator"
)

// Scenario is a named integration test with an exit-code registry and
// three phases, each returning a tagged outcome.
type Scenario interface {
	Name() string
	Registry() *exitcode.Registry
	Setup(ctx context.Context) exitcode.Outcome
	Test(ctx context.Context) exitcode.Outcome
	Cleanup(ctx context.Context) exitcode.Outcome
}

// STSBuilder turns a harvested access key pair into an identity API.
type STSBuilder func(ctx context.Context, accessKeyID, secretAccessKey, sessionToken, region string) (awsclient.IdentityAPI, error)

// Deps bundles the collaborators every scenario needs. Scenarios hold
// their own immutable configuration; nothing here is process-global.
type Deps struct {
	Orchestrator *orchestrator.Orchestrator
	Engine       *checks.Engine
	Config       envconfig.Config
	Log          logr.Logger
	BuildSTS     STSBuilder
}

// DefaultSTSBuilder builds a real STS client.
func DefaultSTSBuilder(ctx context.Context, accessKeyID, secretAccessKey, sessionToken, region string) (awsclient.IdentityAPI, error) {
	return awsclient.NewSTSClient(ctx, accessKeyID, secretAccessKey, sessionToken, region)
}

// precheck verifies the control plane is reachable and the operator is
// installed before a scenario provisions anything. Skipped when the
// environment opts out.
func (d Deps) precheck(ctx context.Context) error {
	if d.Config.SkipPrechecks {
		d.Log.Info("environment prechecks skipped")
		return nil
	}
	_, err := d.Orchestrator.Get(ctx, orchestrator.Reference{
		GroupVersionKind: namespaceGVK,
		Name:             awsv1alpha1.AccountCrNamespace,
	})
	if apierrors.IsNotFound(err) {
		return fmt.Errorf("operator namespace %q not found, is the account operator installed", awsv1alpha1.AccountCrNamespace)
	}
	if err != nil {
		return fmt.Errorf("control plane precheck: %w", err)
	}
	return nil
}
