// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// no-cloc
package driller

import (
	"embed"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

//go:embed testdata/*.yaml
var testDataFS embed.FS

// drillerTestCase represents a single test case for TestDriller.
type drillerTestCase struct {
	Name        string         `yaml:"name"`
	JSON        map[string]any `yaml:"json"`
	Path        string         `yaml:"path"`
	ExpectedStr string         `yaml:"expectedStr"`
	IsNil       bool           `yaml:"isNil"`
	IsArray     bool           `yaml:"isArray"`
}

func loadTestData(filename string, v any) error {
	data, err := testDataFS.ReadFile("testdata/" + filename)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, v)
}

func TestDriller(t *testing.T) {
	var tests []drillerTestCase
	require.NoError(t, loadTestData("driller_cases.yaml", &tests))
	require.NotEmpty(t, tests)

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			jsonBytes, err := json.Marshal(tt.JSON)
			require.NoError(t, err)
			result := Driller(string(jsonBytes), tt.Path)

			if tt.IsNil {
				assert.False(t, result.Exists() && result.Type.String() != "Null", "got %v", result.Value())
				return
			}

			require.True(t, result.Exists())
			if tt.IsArray {
				assert.True(t, result.IsArray(), "got %v", result.Value())
				return
			}
			assert.Equal(t, tt.ExpectedStr, result.String())
		})
	}
}

func TestDrillerEmptyPath(t *testing.T) {
	r := Driller(`{"id":1}`, "")
	assert.True(t, r.IsObject())
}
