// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Account Inttest Authors

package scenario

import (
	"context"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	awsv1alpha1 "github.com/osd-sre/account-inttest/api/v1alpha1"
	"github.com/osd-sre/account-inttest/internal/awsclient"
	"github.com/osd-sre/account-inttest/internal/checks"
	"github.com/osd-sre/account-inttest/internal/envconfig"
	"github.com/osd-sre/account-inttest/internal/exitcode"
	"github.com/osd-sre/account-inttest/internal/orchestrator"
)

func newTestClient(objs ...client.Object) client.Client {
	s := runtime.NewScheme()
	utilruntime.Must(clientgoscheme.AddToScheme(s))
	utilruntime.Must(awsv1alpha1.AddToScheme(s))
	return fake.NewClientBuilder().WithScheme(s).WithObjects(objs...).Build()
}

// newTestDeps wires scenario collaborators against a fake cluster with
// timeouts short enough for table tests to exercise the timeout paths.
func newTestDeps(c client.Client, build STSBuilder) Deps {
	log := logr.Discard()
	cfg := envconfig.Default()
	cfg.ReadyTimeout = 500 * time.Millisecond
	cfg.DeleteTimeout = 2 * time.Second
	return Deps{
		Orchestrator: orchestrator.New(c, log, 20*time.Millisecond),
		Engine:       checks.NewEngine(log),
		Config:       cfg,
		Log:          log,
		BuildSTS:     build,
	}
}

// identityBuilder wraps a pre-built identity API, usually a mock, so
// scenarios never reach a real STS endpoint in tests.
func identityBuilder(api awsclient.IdentityAPI) STSBuilder {
	return func(context.Context, string, string, string, string) (awsclient.IdentityAPI, error) {
		return api, nil
	}
}

func operatorNamespace() *corev1.Namespace {
	return &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{Name: awsv1alpha1.AccountCrNamespace},
	}
}

func TestPrecheckRequiresOperatorNamespace(t *testing.T) {
	deps := newTestDeps(newTestClient(), nil)

	err := deps.precheck(context.Background())
	assert.ErrorContains(t, err, awsv1alpha1.AccountCrNamespace)
}

func TestPrecheckPassesWhenOperatorInstalled(t *testing.T) {
	deps := newTestDeps(newTestClient(operatorNamespace()), nil)

	assert.NoError(t, deps.precheck(context.Background()))
}

func TestPrecheckSkippable(t *testing.T) {
	deps := newTestDeps(newTestClient(), nil)
	deps.Config.SkipPrechecks = true

	assert.NoError(t, deps.precheck(context.Background()))
}

func TestSetupWithoutOperatorIsUnexpected(t *testing.T) {
	deps := newTestDeps(newTestClient(), nil)
	s := NewAccountClaim(deps, DefaultClaimConfig())

	outcome := s.Setup(context.Background())
	assert.Equal(t, exitcode.UnexpectedError, outcome.Resolve(s.Registry()))
}
