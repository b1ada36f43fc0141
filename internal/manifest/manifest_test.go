package manifest_test

import (
	"testing"

	"github.com/bahimpro2011-code/vixc/internal/manifest"
	"github.com/bahimpro2011-code/vixc/internal/vixtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{
	"name": "mathlib",
	"version": "1.4.0",
	"include": { "clang": ["mathlib.h", "mathlib_simd.h"] },
	"functions": [
		{"name": "mathlib_sqrt", "params": ["f64"], "return": "f64"},
		{"name": "mathlib_log", "params": ["f64", "i32"], "return": "f64"}
	]
}`

func TestParseExtractsIncludesAndFunctions(t *testing.T) {
	m, err := manifest.Parse([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, "mathlib", m.Name)
	assert.Equal(t, "1.4.0", m.Version)
	assert.Equal(t, []string{"mathlib.h", "mathlib_simd.h"}, m.Includes)
	require.Len(t, m.Functions, 2)
	assert.Equal(t, "mathlib_sqrt", m.Functions[0].Name)
	assert.Equal(t, vixtypes.F64(), m.Functions[0].ReturnType)
	require.Len(t, m.Functions[1].ParamTypes, 2)
}

func TestParseRejectsInvalidVersion(t *testing.T) {
	_, err := manifest.Parse([]byte(`{"name": "bad", "version": "not-a-version"}`))
	assert.Error(t, err)
}

func TestParseRejectsMissingName(t *testing.T) {
	_, err := manifest.Parse([]byte(`{"version": "1.0.0"}`))
	assert.Error(t, err)
}

func TestUnknownReturnTypeFallsBackToAny(t *testing.T) {
	m, err := manifest.Parse([]byte(`{
		"name": "weird", "version": "0.1.0",
		"functions": [{"name": "f", "params": ["FancyStruct"], "return": "FancyStruct"}]
	}`))
	require.NoError(t, err)
	require.Len(t, m.Functions, 1)
	assert.Equal(t, vixtypes.Any{}, m.Functions[0].ReturnType)
}
