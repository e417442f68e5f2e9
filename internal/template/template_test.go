// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Account Inttest Authors

package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osd-sre/account-inttest/internal/query"
)

func claimParams() map[string]string {
	return map[string]string{
		"NAME":              "inttest-claim",
		"NAMESPACE":         "inttest-claim-namespace",
		"LEGAL_ENTITY_NAME": "LegalCorp. Inc.",
		"LEGAL_ENTITY_ID":   "abcdefg123456",
		"SECRET_NAME":       "inttest-claim-secret",
		"REGION":            "us-east-1",
	}
}

func TestRenderAccountClaim(t *testing.T) {
	doc, err := Render("accountclaim", claimParams())
	require.NoError(t, err)

	assert.Equal(t, "AccountClaim", doc.GetKind())
	assert.Equal(t, "inttest-claim", doc.GetName())
	assert.Equal(t, "inttest-claim-namespace", doc.GetNamespace())

	name, ok := query.Path(doc.Object, "spec", "legalEntity", "name").String()
	require.True(t, ok)
	assert.Equal(t, "LegalCorp. Inc.", name)

	region, ok := query.Match(doc.Object, "name", "us-east-1", "name", "spec", "aws", "regions").String()
	require.True(t, ok)
	assert.Equal(t, "us-east-1", region)
}

func TestRenderMissingParameter(t *testing.T) {
	params := claimParams()
	delete(params, "REGION")

	_, err := Render("accountclaim", params)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REGION")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := Render("no-such-template", nil)
	assert.Error(t, err)
}
