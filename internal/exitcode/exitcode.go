// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Account Inttest Authors

// Package exitcode maps scenario failure reasons to process exit codes.
// Phases pass a tagged Outcome around internally; the numeric code only
// materializes at the process boundary via Outcome.Resolve.
package exitcode

import "fmt"

// Code is a process exit code. 0 always means success and is never
// registered with an explanation.
type Code int

const (
	// Success is the reserved success code.
	Success Code = 0

	// Usage is returned for a missing or unrecognized CLI verb,
	// distinct from every test-failure code (EX_USAGE).
	Usage Code = 64

	// UnexpectedError is shared across all scenarios for
	// infrastructure-level failures: cluster unreachable, malformed
	// responses, anything that is not a registered assertion failure.
	UnexpectedError Code = 99
)

// Entry associates a code with its human-readable explanation.
type Entry struct {
	Code        Code
	Explanation string
}

// Registry is the immutable per-scenario table of failure codes.
type Registry struct {
	explanations map[Code]string
	order        []Code
}

// NewRegistry builds a registry from ordered entries. Reserved codes,
// duplicates, and empty explanations are registry bugs, not runtime
// faults, so they panic at construction.
func NewRegistry(entries ...Entry) *Registry {
	r := &Registry{explanations: make(map[Code]string, len(entries))}
	for _, e := range entries {
		switch e.Code {
		case Success, Usage, UnexpectedError:
			panic(fmt.Sprintf("exitcode: %d is reserved", e.Code))
		}
		if e.Code < 0 {
			panic(fmt.Sprintf("exitcode: %d is not a valid failure code", e.Code))
		}
		if _, dup := r.explanations[e.Code]; dup {
			panic(fmt.Sprintf("exitcode: %d registered twice", e.Code))
		}
		if e.Explanation == "" {
			panic(fmt.Sprintf("exitcode: %d registered without explanation", e.Code))
		}
		r.explanations[e.Code] = e.Explanation
		r.order = append(r.order, e.Code)
	}
	return r
}

// Explain returns the explanation for code, or an empty string for an
// unregistered one. The shared UnexpectedError code is explained for
// every scenario.
func (r *Registry) Explain(code Code) string {
	if code == UnexpectedError {
		return "unexpected error: infrastructure failure outside the registered assertion set, see logs"
	}
	return r.explanations[code]
}

// Known reports whether code is registered.
func (r *Registry) Known(code Code) bool {
	_, ok := r.explanations[code]
	return ok
}

// Codes returns the registered codes in registration order.
func (r *Registry) Codes() []Code {
	out := make([]Code, len(r.order))
	copy(out, r.order)
	return out
}

// Outcome is the tagged result of a phase: Success or Failure with a
// reason code and optional cause.
type Outcome struct {
	code  Code
	cause error
}

// OK is the success outcome.
func OK() Outcome {
	return Outcome{}
}

// Fail builds a failure outcome for a registered reason code.
func Fail(code Code, cause error) Outcome {
	return Outcome{code: code, cause: cause}
}

// Unexpected builds a failure outcome for an infrastructure error.
func Unexpected(cause error) Outcome {
	return Outcome{code: UnexpectedError, cause: cause}
}

// Ok reports whether the outcome is success.
func (o Outcome) Ok() bool {
	return o.code == Success
}

// Code returns the raw reason code.
func (o Outcome) Code() Code {
	return o.code
}

// Cause returns the underlying error, if any.
func (o Outcome) Cause() error {
	return o.cause
}

// Resolve serializes the outcome against a registry. A non-zero code
// without a registry entry collapses to UnexpectedError so the process
// never emits an unregistered code silently.
func (o Outcome) Resolve(r *Registry) Code {
	if o.code == Success || o.code == UnexpectedError {
		return o.code
	}
	if !r.Known(o.code) {
		return UnexpectedError
	}
	return o.code
}
