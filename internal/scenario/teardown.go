// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Account Inttest Authors

package scenario

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"go.uber.org/multierr"

	"github.com/osd-sre/account-inttest/internal/exitcode"
)

// Teardown runs best-effort cleanup steps in order. It never
// short-circuits: every step is attempted regardless of earlier
// failures, and the failures are aggregated into a single outcome.
// Cleanup prioritizes maximal resource removal over precise diagnosis,
// so the aggregate maps to the shared unexpected-error code; the
// per-step causes are logged.
type Teardown struct {
	log   logr.Logger
	steps []teardownStep
}

type teardownStep struct {
	desc string
	fn   func(ctx context.Context) error
}

// NewTeardown creates an empty teardown sequence.
func NewTeardown(log logr.Logger) *Teardown {
	return &Teardown{log: log}
}

// Add appends a cleanup step.
func (t *Teardown) Add(desc string, fn func(ctx context.Context) error) {
	t.steps = append(t.steps, teardownStep{desc: desc, fn: fn})
}

// Run attempts every step and returns success only if all succeeded.
func (t *Teardown) Run(ctx context.Context) exitcode.Outcome {
	var errs error
	for _, step := range t.steps {
		if err := step.fn(ctx); err != nil {
			t.log.Error(err, "teardown step failed, continuing", "step", step.desc)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", step.desc, err))
			continue
		}
		t.log.Info("teardown step finished", "step", step.desc)
	}
	if errs != nil {
		return exitcode.Unexpected(errs)
	}
	return exitcode.OK()
}
