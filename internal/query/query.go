// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Account Inttest Authors

// Package query extracts fields from nested unstructured documents.
// Every lookup returns a Result that keeps "path did not resolve"
// distinct from "path resolved to an empty or zero value"; callers use
// that distinction to tell a missing tag from a wrong one.
package query

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Result is the outcome of a lookup: either a present value or the
// absent sentinel. The zero Result is Absent.
type Result struct {
	value   interface{}
	present bool
}

// Absent is the sentinel for a path that did not resolve.
var Absent = Result{}

// Of wraps a value in a present Result.
func Of(v interface{}) Result {
	return Result{value: v, present: true}
}

// Present reports whether the path resolved at all.
func (r Result) Present() bool {
	return r.present
}

// Value returns the raw value and whether it is present.
func (r Result) Value() (interface{}, bool) {
	return r.value, r.present
}

// String returns the value as a string. ok is false when the result is
// absent or the value is not a string; an empty string with ok true is
// a legitimate present value.
func (r Result) String() (string, bool) {
	if !r.present {
		return "", false
	}
	s, ok := r.value.(string)
	return s, ok
}

// Bool returns the value as a bool.
func (r Result) Bool() (bool, bool) {
	if !r.present {
		return false, false
	}
	b, ok := r.value.(bool)
	return b, ok
}

// Int64 returns the value as an int64, converting the float64 that
// JSON decoding produces for numbers.
func (r Result) Int64() (int64, bool) {
	if !r.present {
		return 0, false
	}
	switch n := r.value.(type) {
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

// Slice returns the value as a generic slice.
func (r Result) Slice() ([]interface{}, bool) {
	if !r.present {
		return nil, false
	}
	s, ok := r.value.([]interface{})
	return s, ok
}

// StringMap returns the value as a map of strings.
func (r Result) StringMap() (map[string]string, bool) {
	if !r.present {
		return nil, false
	}
	m, ok := r.value.(map[string]string)
	return m, ok
}

// Path resolves a nested field in doc. It never panics: an unresolvable
// or mistyped intermediate step yields Absent.
func Path(doc map[string]interface{}, fields ...string) Result {
	v, found, err := unstructured.NestedFieldNoCopy(doc, fields...)
	if err != nil || !found {
		return Absent
	}
	return Of(v)
}

// Match selects the element of the list at fields whose keyField equals
// key and returns that element's returnField. Absent when the list path
// does not resolve, no element matches, or the matched element lacks
// returnField.
func Match(doc map[string]interface{}, keyField, key, returnField string, fields ...string) Result {
	list, ok := Path(doc, fields...).Slice()
	if !ok {
		return Absent
	}
	for _, item := range list {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if k, ok := entry[keyField].(string); !ok || k != key {
			continue
		}
		v, ok := entry[returnField]
		if !ok {
			return Absent
		}
		return Of(v)
	}
	return Absent
}

// KeyedList flattens a list of {keyField, valueField} objects at fields
// into a string map. Absent when the list path does not resolve; a
// resolvable but empty list is a present empty map. Malformed entries
// are skipped.
func KeyedList(doc map[string]interface{}, keyField, valueField string, fields ...string) Result {
	list, ok := Path(doc, fields...).Slice()
	if !ok {
		return Absent
	}
	out := make(map[string]string, len(list))
	for _, item := range list {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		k, kok := entry[keyField].(string)
		v, vok := entry[valueField].(string)
		if !kok || !vok {
			continue
		}
		out[k] = v
	}
	return Of(out)
}
