// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Account Inttest Authors

package scenario

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osd-sre/account-inttest/internal/exitcode"
)

type stubScenario struct {
	registry *exitcode.Registry
	setup    func(ctx context.Context) exitcode.Outcome
	test     func(ctx context.Context) exitcode.Outcome
	cleanup  func(ctx context.Context) exitcode.Outcome
}

func (s *stubScenario) Name() string { return "stub" }
func (s *stubScenario) Registry() *exitcode.Registry { return s.registry }

func (s *stubScenario) Setup(ctx context.Context) exitcode.Outcome {
	if s.setup == nil {
		return exitcode.OK()
	}
	return s.setup(ctx)
}

func (s *stubScenario) Test(ctx context.Context) exitcode.Outcome {
	if s.test == nil {
		return exitcode.OK()
	}
	return s.test(ctx)
}

func (s *stubScenario) Cleanup(ctx context.Context) exitcode.Outcome {
	if s.cleanup == nil {
		return exitcode.OK()
	}
	return s.cleanup(ctx)
}

func stubRegistry() *exitcode.Registry {
	return exitcode.NewRegistry(
		exitcode.Entry{Code: 1, Explanation: "first assertion failed"},
		exitcode.Entry{Code: 2, Explanation: "second assertion failed"},
	)
}

func TestRunnerDispatchesVerbs(t *testing.T) {
	var ran []string
	record := func(phase string) func(context.Context) exitcode.Outcome {
		return func(context.Context) exitcode.Outcome {
			ran = append(ran, phase)
			return exitcode.OK()
		}
	}
	s := &stubScenario{
		registry: stubRegistry(),
		setup:    record("setup"),
		test:     record("test"),
		cleanup:  record("cleanup"),
	}
	r := NewRunner(logr.Discard(), &bytes.Buffer{})

	for _, verb := range []string{VerbSetup, VerbTest, VerbCleanup} {
		code := r.Run(context.Background(), s, verb, nil)
		assert.Equal(t, exitcode.Success, code)
	}
	assert.Equal(t, []string{"setup", "test", "cleanup"}, ran)
}

func TestRunnerReturnsRegisteredFailureCode(t *testing.T) {
	s := &stubScenario{
		registry: stubRegistry(),
		test: func(context.Context) exitcode.Outcome {
			return exitcode.Fail(2, errors.New("assertion did not hold"))
		},
	}
	r := NewRunner(logr.Discard(), &bytes.Buffer{})

	code := r.Run(context.Background(), s, VerbTest, nil)
	assert.Equal(t, exitcode.Code(2), code)
}

func TestRunnerCollapsesUnregisteredCode(t *testing.T) {
	s := &stubScenario{
		registry: stubRegistry(),
		test: func(context.Context) exitcode.Outcome {
			return exitcode.Fail(55, errors.New("code nobody registered"))
		},
	}
	r := NewRunner(logr.Discard(), &bytes.Buffer{})

	code := r.Run(context.Background(), s, VerbTest, nil)
	assert.Equal(t, exitcode.UnexpectedError, code)
}

func TestRunnerRejectsUnknownVerb(t *testing.T) {
	s := &stubScenario{registry: stubRegistry()}
	r := NewRunner(logr.Discard(), &bytes.Buffer{})

	code := r.Run(context.Background(), s, "provision", nil)
	assert.Equal(t, exitcode.Usage, code)
}

func TestRunnerExplainWritesExplanation(t *testing.T) {
	s := &stubScenario{registry: stubRegistry()}
	out := &bytes.Buffer{}
	r := NewRunner(logr.Discard(), out)

	code := r.Run(context.Background(), s, VerbExplain, []string{"1"})
	require.Equal(t, exitcode.Success, code)
	assert.Equal(t, "first assertion failed\n", out.String())
}

func TestRunnerExplainUnknownCodeStillSucceeds(t *testing.T) {
	s := &stubScenario{registry: stubRegistry()}
	out := &bytes.Buffer{}
	r := NewRunner(logr.Discard(), out)

	code := r.Run(context.Background(), s, VerbExplain, []string{"42"})
	assert.Equal(t, exitcode.Success, code)
	assert.Empty(t, strings.TrimSpace(out.String()))
}

func TestRunnerExplainArgumentValidation(t *testing.T) {
	s := &stubScenario{registry: stubRegistry()}
	r := NewRunner(logr.Discard(), &bytes.Buffer{})

	tests := []struct {
		name string
		args []string
	}{
		{name: "no arguments", args: nil},
		{name: "too many arguments", args: []string{"1", "2"}},
		{name: "non-numeric argument", args: []string{"ready"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := r.Run(context.Background(), s, VerbExplain, tt.args)
			assert.Equal(t, exitcode.Usage, code)
		})
	}
}
