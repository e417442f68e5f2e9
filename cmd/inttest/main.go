// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Account Inttest Authors

// inttest runs integration-test scenarios against a cluster running the
// account operator. Each scenario is a subcommand taking exactly one
// verb: setup provisions, test asserts, cleanup tears down, and explain
// translates an exit code into human-readable text without touching the
// cluster.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	crzap "sigs.k8s.io/controller-runtime/pkg/log/zap"

	// Import all Kubernetes client auth plugins (e.g. Azure, GCP, OIDC, etc.)
	// to ensure that exec-entrypoint and run can make use of them.
	_ "k8s.io/client-go/plugin/pkg/client/auth"

	awsv1alpha1 "github.com/osd-sre/account-inttest/api/v1alpha1"
	"github.com/osd-sre/account-inttest/internal/checks"
	"github.com/osd-sre/account-inttest/internal/envconfig"
	"github.com/osd-sre/account-inttest/internal/exitcode"
	"github.com/osd-sre/account-inttest/internal/orchestrator"
	"github.com/osd-sre/account-inttest/internal/scenario"
)

// Environment variables supplying the caller-owned account for the BYOC
// scenario. They have no defaults; the scenario reports incomplete
// credentials when they are unset.
const (
	envBYOCAccountID       = "BYOC_AWS_ACCOUNT_ID"
	envBYOCAccessKeyID     = "BYOC_AWS_ACCESS_KEY_ID"
	envBYOCSecretAccessKey = "BYOC_AWS_SECRET_ACCESS_KEY"
)

var scheme = runtime.NewScheme()

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(awsv1alpha1.AddToScheme(scheme))
}

func main() {
	os.Exit(int(run()))
}

func run() exitcode.Code {
	var code exitcode.Code

	zapOpts := crzap.Options{Development: true}
	zapFlags := flag.NewFlagSet("zap", flag.ContinueOnError)
	zapOpts.BindFlags(zapFlags)

	root := &cobra.Command{
		Use:           "inttest",
		Short:         "Integration tests for the account operator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			ctrl.SetLogger(crzap.New(crzap.UseFlagOptions(&zapOpts)))
		},
	}
	root.PersistentFlags().AddGoFlagSet(zapFlags)

	root.AddCommand(
		scenarioCommand("accountclaim", "Claim a pooled account and verify the provisioned state", &code,
			func(deps scenario.Deps) scenario.Scenario {
				return scenario.NewAccountClaim(deps, scenario.DefaultClaimConfig())
			}),
		scenarioCommand("byoc", "Adopt a caller-owned account and verify field propagation", &code,
			func(deps scenario.Deps) scenario.Scenario {
				return scenario.NewBYOC(deps, byocConfigFromEnv())
			}),
		scenarioCommand("tags", "Verify custom tags propagate from the claim to the account", &code,
			func(deps scenario.Deps) scenario.Scenario {
				return scenario.NewTags(deps, scenario.DefaultTagsConfig())
			}),
	)

	if err := root.ExecuteContext(ctrl.SetupSignalHandler()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitcode.Usage
	}
	return code
}

func scenarioCommand(name, short string, code *exitcode.Code, build func(scenario.Deps) scenario.Scenario) *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("%s {setup|test|cleanup|explain <code>}", name),
		Short: short,
		Args:  cobra.RangeArgs(1, 2),
		Run: func(cmd *cobra.Command, args []string) {
			log := ctrl.Log.WithName(name)
			verb := args[0]

			deps, err := buildDeps(log, verb)
			if err != nil {
				log.Error(err, "could not set up scenario dependencies")
				*code = exitcode.UnexpectedError
				return
			}

			runner := scenario.NewRunner(log, cmd.OutOrStdout())
			*code = runner.Run(cmd.Context(), build(deps), verb, args[1:])
		},
	}
}

// buildDeps wires the scenario collaborators. The explain verb is a
// pure registry lookup, so no cluster client is built for it and it
// works without a kubeconfig.
func buildDeps(log logr.Logger, verb string) (scenario.Deps, error) {
	deps := scenario.Deps{
		Engine:   checks.NewEngine(log),
		Config:   envconfig.Load(log),
		Log:      log,
		BuildSTS: scenario.DefaultSTSBuilder,
	}
	if verb == scenario.VerbExplain {
		return deps, nil
	}

	restCfg, err := ctrl.GetConfig()
	if err != nil {
		return deps, fmt.Errorf("load kubeconfig: %w", err)
	}
	c, err := client.New(restCfg, client.Options{Scheme: scheme})
	if err != nil {
		return deps, fmt.Errorf("build cluster client: %w", err)
	}
	deps.Orchestrator = orchestrator.New(c, log, deps.Config.PollInterval)
	return deps, nil
}

func byocConfigFromEnv() scenario.BYOCConfig {
	cfg := scenario.DefaultBYOCConfig()
	cfg.AWSAccountID = os.Getenv(envBYOCAccountID)
	cfg.AccessKeyID = os.Getenv(envBYOCAccessKeyID)
	cfg.SecretAccessKey = os.Getenv(envBYOCSecretAccessKey)
	return cfg
}
