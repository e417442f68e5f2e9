// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Account Inttest Authors

// Package checks sequences field-level assertions against cluster and
// cloud state. The engine is fail-fast: the first failing check decides
// the scenario's exit code, so each failure reason maps to exactly one
// code and `explain` can name one precise cause.
package checks

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"

	"github.com/go-logr/logr"

	"github.com/osd-sre/account-inttest/internal/exitcode"
	"github.com/osd-sre/account-inttest/internal/query"
)

// Check is a single assertion. Eval returns whether the check held, a
// short detail for the audit log, and an error only for infrastructure
// failures (which are not assertion failures and resolve to the shared
// unexpected-error code).
type Check struct {
	Subject string
	Code    exitcode.Code
	Eval    func(ctx context.Context) (ok bool, detail string, err error)
}

// Engine runs ordered checks and short-circuits on the first failure.
type Engine struct {
	log logr.Logger
}

// NewEngine creates an Engine logging verdicts through log.
func NewEngine(log logr.Logger) *Engine {
	return &Engine{log: log}
}

// Run evaluates checks in order. Every executed check logs its subject
// and verdict; the first failing check's code becomes the outcome.
func (e *Engine) Run(ctx context.Context, list []Check) exitcode.Outcome {
	for _, c := range list {
		ok, detail, err := c.Eval(ctx)
		if err != nil {
			e.log.Error(err, "check could not be evaluated", "subject", c.Subject)
			return exitcode.Unexpected(fmt.Errorf("%s: %w", c.Subject, err))
		}
		if !ok {
			e.log.Info("check failed", "subject", c.Subject, "detail", detail)
			return exitcode.Fail(c.Code, errors.New(detail))
		}
		e.log.Info("check passed", "subject", c.Subject, "detail", detail)
	}
	return exitcode.OK()
}

// EqualString asserts a present string result exactly matches want.
func EqualString(res query.Result, want string) (bool, string) {
	got, ok := res.String()
	if !ok {
		return false, fmt.Sprintf("field absent, expected %q", want)
	}
	if got != want {
		return false, fmt.Sprintf("expected %q, got %q", want, got)
	}
	return true, fmt.Sprintf("value %q", got)
}

// EqualBool asserts a present bool result matches want.
func EqualBool(res query.Result, want bool) (bool, string) {
	got, ok := res.Bool()
	if !ok {
		return false, fmt.Sprintf("field absent, expected %t", want)
	}
	if got != want {
		return false, fmt.Sprintf("expected %t, got %t", want, got)
	}
	return true, fmt.Sprintf("value %t", got)
}

// NonEmptyString asserts a present, non-empty string.
func NonEmptyString(res query.Result) (bool, string) {
	got, ok := res.String()
	if !ok {
		return false, "field absent"
	}
	if got == "" {
		return false, "field present but empty"
	}
	return true, fmt.Sprintf("value %q", got)
}

// MinCount asserts the result is a list of at least min elements.
func MinCount(res query.Result, min int) (bool, string) {
	list, ok := res.Slice()
	if !ok {
		return false, fmt.Sprintf("list absent, expected at least %d elements", min)
	}
	if len(list) < min {
		return false, fmt.Sprintf("expected at least %d elements, got %d", min, len(list))
	}
	return true, fmt.Sprintf("%d elements", len(list))
}

// Base64String decodes a base64-encoded string result, as found in
// secret documents fetched unstructured.
func Base64String(res query.Result) (string, bool) {
	raw, ok := res.String()
	if !ok {
		return "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", false
	}
	return string(decoded), true
}

// TagVerdict classifies a propagation comparison.
type TagVerdict int

const (
	// TagsPropagated means every expected key is present with the exact value.
	TagsPropagated TagVerdict = iota
	// TagsAbsent means the actual tag list did not resolve at all.
	TagsAbsent
	// TagMissing means at least one expected key is absent from the actual set.
	TagMissing
	// TagMismatch means an expected key is present with a different value.
	TagMismatch
)

// CompareTags checks that every key of the expected table reappears in
// the actual keyed-list result with an identical value. The actual set
// may carry extra keys; only the expected keys must be covered. A
// missing key and a wrong value are reported as distinct verdicts, and
// keys are visited in sorted order so the verdict is deterministic when
// several keys fail.
func CompareTags(expected map[string]string, actual query.Result) (TagVerdict, string) {
	tags, ok := actual.StringMap()
	if !ok {
		return TagsAbsent, "no tags found on resource"
	}

	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		got, present := tags[k]
		if !present {
			return TagMissing, fmt.Sprintf("tag %q not propagated", k)
		}
		if got != expected[k] {
			return TagMismatch, fmt.Sprintf("tag %q expected %q, got %q", k, expected[k], got)
		}
	}
	return TagsPropagated, fmt.Sprintf("%d tags propagated", len(expected))
}
