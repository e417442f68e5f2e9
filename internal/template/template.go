// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Account Inttest Authors

// Package template renders embedded declarative resource templates.
// The output is an opaque unstructured document; the orchestrator does
// not care how it was produced.
package template

import (
	"embed"
	"fmt"
	"os"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/yaml"
)

//go:embed templates/*.yaml
var templates embed.FS

// Render loads the named template, substitutes ${PARAM} references from
// params, and decodes the result into an unstructured document. Every
// parameter the template references must be supplied.
func Render(name string, params map[string]string) (*unstructured.Unstructured, error) {
	raw, err := templates.ReadFile("templates/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown template %q: %w", name, err)
	}

	var missing []string
	expanded := os.Expand(string(raw), func(key string) string {
		v, ok := params[key]
		if !ok {
			missing = append(missing, key)
		}
		return v
	})
	if len(missing) > 0 {
		return nil, fmt.Errorf("template %q references unset parameters %v", name, missing)
	}

	obj := map[string]interface{}{}
	if err := yaml.Unmarshal([]byte(expanded), &obj); err != nil {
		return nil, fmt.Errorf("decode template %q: %w", name, err)
	}
	return &unstructured.Unstructured{Object: obj}, nil
}
