// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package checks

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type perfData struct {
	Horizon int     `json:"horizon"`
	Reached bool    `json:"reached"`
	Seconds float64 `json:"seconds"`
}

func TestOpenapiFromPerfData(t *testing.T) {
	ref, err := OpenapiFromPerfData(map[string]perfData{})
	require.NoError(t, err)
	require.NotNil(t, ref.Value)

	schema := ref.Value
	assert.True(t, schema.Type.Is(openapi3.TypeObject))
	assert.ElementsMatch(t, []string{"data", "timestamp"}, schema.Required)
	require.Contains(t, schema.Properties, "timestamp")
	assert.Equal(t, "date-time", schema.Properties["timestamp"].Value.Format)

	data := schema.Properties["data"]
	require.NotNil(t, data)
	require.NotNil(t, data.Value.AdditionalProperties.Schema, "map values must be described")
	values := data.Value.AdditionalProperties.Schema.Value
	assert.Contains(t, values.Properties, "horizon")
	assert.Contains(t, values.Properties, "reached")
	assert.Contains(t, values.Properties, "seconds")
}

func TestErrors(t *testing.T) {
	assert.EqualError(t, ErrConfigMismatch{Expected: "horizon", Current: "dns"},
		`config mismatch: expected config for "horizon", got "dns"`)
	assert.EqualError(t, ErrInvalidConfig{CheckName: "horizon", Field: "interval", Reason: "must be greater than 0"},
		`invalid configuration field "interval" in check "horizon": must be greater than 0`)
	assert.EqualError(t, ErrMetricNotFound{Label: "example.com:443"}, `no metric with target label "example.com:443"`)
}
