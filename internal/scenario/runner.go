// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Account Inttest Authors

package scenario

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/go-logr/logr"

	"github.com/osd-sre/account-inttest/internal/exitcode"
)

// Verbs accepted by the runner.
const (
	VerbSetup   = "setup"
	VerbTest    = "test"
	VerbCleanup = "cleanup"
	VerbExplain = "explain"
)

// Runner dispatches a single verb against a scenario and serializes the
// phase outcome to a process exit code through the scenario's registry.
type Runner struct {
	log logr.Logger
	out io.Writer
}

// NewRunner creates a Runner writing explain output to out.
func NewRunner(log logr.Logger, out io.Writer) *Runner {
	return &Runner{log: log, out: out}
}

// Run executes one verb. The returned code is what the process should
// exit with: 0 for success, a registered scenario code for an assertion
// failure, the shared unexpected-error code for infrastructure
// failures, and the usage code for a bad invocation. The registry
// invariant holds here: a phase returning an unregistered non-zero code
// is collapsed to the unexpected-error code, never emitted raw.
func (r *Runner) Run(ctx context.Context, s Scenario, verb string, args []string) exitcode.Code {
	switch verb {
	case VerbSetup:
		return r.phase(ctx, s, verb, s.Setup)
	case VerbTest:
		return r.phase(ctx, s, verb, s.Test)
	case VerbCleanup:
		return r.phase(ctx, s, verb, s.Cleanup)
	case VerbExplain:
		return r.explain(s, args)
	default:
		r.log.Info("unrecognized verb", "scenario", s.Name(), "verb", verb)
		return exitcode.Usage
	}
}

func (r *Runner) phase(ctx context.Context, s Scenario, verb string, fn func(context.Context) exitcode.Outcome) exitcode.Code {
	r.log.Info("phase starting", "scenario", s.Name(), "phase", verb)
	outcome := fn(ctx)
	code := outcome.Resolve(s.Registry())

	if outcome.Ok() {
		r.log.Info("phase succeeded", "scenario", s.Name(), "phase", verb)
		return code
	}
	keyvals := []interface{}{
		"scenario", s.Name(),
		"phase", verb,
		"code", int(code),
		"explanation", s.Registry().Explain(code),
	}
	if cause := outcome.Cause(); cause != nil {
		r.log.Error(cause, "phase failed", keyvals...)
	} else {
		r.log.Info("phase failed", keyvals...)
	}
	return code
}

// explain is a pure query: it writes one explanation line to the output
// and succeeds even for an unknown code (empty output in that case).
func (r *Runner) explain(s Scenario, args []string) exitcode.Code {
	if len(args) != 1 {
		r.log.Info("explain requires exactly one code argument", "scenario", s.Name())
		return exitcode.Usage
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		r.log.Info("explain requires a numeric code", "scenario", s.Name(), "argument", args[0])
		return exitcode.Usage
	}
	fmt.Fprintln(r.out, s.Registry().Explain(exitcode.Code(n)))
	return exitcode.Success
}
