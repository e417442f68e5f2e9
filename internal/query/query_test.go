// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Account Inttest Authors

package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func claimDoc() map[string]interface{} {
	return map[string]interface{}{
		"spec": map[string]interface{}{
			"accountLink": "osd-creds-mgmt-aaabbb",
			"byoc":        false,
			"customTags": []interface{}{
				map[string]interface{}{"key": "test-team", "value": "platform-engineering"},
				map[string]interface{}{"key": "test-environment", "value": "integration-test"},
			},
		},
		"status": map[string]interface{}{
			"state": "Ready",
		},
	}
}

func TestPath(t *testing.T) {
	doc := claimDoc()

	state, ok := Path(doc, "status", "state").String()
	require.True(t, ok)
	assert.Equal(t, "Ready", state)

	byoc, ok := Path(doc, "spec", "byoc").Bool()
	require.True(t, ok)
	assert.False(t, byoc)

	assert.False(t, Path(doc, "status", "missing").Present())
	assert.False(t, Path(doc, "no", "such", "path").Present())
	// Intermediate step is a scalar, not a map.
	assert.False(t, Path(doc, "status", "state", "deeper").Present())
}

func TestPathDistinguishesEmptyFromAbsent(t *testing.T) {
	doc := map[string]interface{}{
		"spec": map[string]interface{}{"accountLink": ""},
	}

	link := Path(doc, "spec", "accountLink")
	require.True(t, link.Present())
	s, ok := link.String()
	require.True(t, ok)
	assert.Empty(t, s)

	assert.False(t, Path(doc, "spec", "iamUserSecret").Present())
}

func TestMatch(t *testing.T) {
	doc := claimDoc()

	v, ok := Match(doc, "key", "test-team", "value", "spec", "customTags").String()
	require.True(t, ok)
	assert.Equal(t, "platform-engineering", v)

	assert.False(t, Match(doc, "key", "test-cost-center", "value", "spec", "customTags").Present())
	assert.False(t, Match(doc, "key", "test-team", "value", "spec", "missing").Present())
}

func TestKeyedList(t *testing.T) {
	doc := claimDoc()

	tags, ok := KeyedList(doc, "key", "value", "spec", "customTags").StringMap()
	require.True(t, ok)
	assert.Equal(t, map[string]string{
		"test-team":        "platform-engineering",
		"test-environment": "integration-test",
	}, tags)
}

func TestKeyedListAbsentVsEmpty(t *testing.T) {
	// No tag list at all: absent.
	doc := map[string]interface{}{"spec": map[string]interface{}{}}
	assert.False(t, KeyedList(doc, "key", "value", "spec", "customTags").Present())

	// Tag list present but empty: present empty map.
	doc["spec"].(map[string]interface{})["customTags"] = []interface{}{}
	res := KeyedList(doc, "key", "value", "spec", "customTags")
	require.True(t, res.Present())
	tags, ok := res.StringMap()
	require.True(t, ok)
	assert.Empty(t, tags)
}

func TestKeyedListSkipsMalformedEntries(t *testing.T) {
	doc := map[string]interface{}{
		"spec": map[string]interface{}{
			"customTags": []interface{}{
				map[string]interface{}{"key": "good", "value": "v"},
				map[string]interface{}{"key": 7, "value": "dropped"},
				"not an object",
			},
		},
	}

	tags, ok := KeyedList(doc, "key", "value", "spec", "customTags").StringMap()
	require.True(t, ok)
	assert.Equal(t, map[string]string{"good": "v"}, tags)
}

func TestResultTypedAccessors(t *testing.T) {
	_, ok := Absent.String()
	assert.False(t, ok)

	n, ok := Of(float64(3)).Int64()
	require.True(t, ok)
	assert.EqualValues(t, 3, n)

	// Wrong type under a present result.
	_, ok = Of(42).String()
	assert.False(t, ok)
}
