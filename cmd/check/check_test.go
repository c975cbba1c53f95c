package check

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"path/filepath"
	"testing"

	"cpuid/internal/common"
	"cpuid/internal/cpuid"
	"cpuid/internal/dump"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// icxLeaves report SSE4.2, AVX2 and a 48 KB L1D cache.
func icxLeaves() []cpuid.RawLeaf {
	return []cpuid.RawLeaf{
		{Leaf: 0x0, EAX: 0x7, EBX: 0x756e6547, ECX: 0x6c65746e, EDX: 0x49656e69},
		{Leaf: 0x1, EAX: 0x000606A6, ECX: 1 << 20, EDX: 0x1},
		{Leaf: 0x4, Subleaf: 0, EAX: 0x121, EBX: 11<<22 | 63, ECX: 63},
		{Leaf: 0x4, Subleaf: 1},
		{Leaf: 0x7, EBX: 1 << 5},
	}
}

func icxCapture(t *testing.T) *cpuid.Capture {
	c, err := cpuid.NewCapture(icxLeaves())
	require.NoError(t, err)
	return c
}

func TestParameters(t *testing.T) {
	params := parameters(icxCapture(t))
	assert.Equal(t, true, params["AVX2"])
	assert.Equal(t, false, params["SHA"])
	assert.Equal(t, "Intel", params["vendor"])
	assert.Equal(t, float64(6), params["family"])
	assert.Equal(t, float64(106), params["model"])
	assert.Equal(t, float64(48), params["l1d_kb"])
	assert.Equal(t, float64(0), params["l3_kb"])
	assert.Equal(t, float64(1), params["logical_per_core"])
}

func TestCheckCapture(t *testing.T) {
	c := icxCapture(t)
	tests := []struct {
		expression string
		expected   bool
	}{
		{"AVX2 && family == 6 && model == 106", true},
		{"l1d_kb >= 48 && l1d_kb < 64", true},
		{"[SSE4.2] && !SHA", true},
		{`has("SSE4.2") && has("AES-NI")`, false},
		{`vendor == "AMD" || stepping == 6`, true},
		{"SHA", false},
	}
	for _, test := range tests {
		result, err := checkCapture(0, c, test.expression, nil)
		require.NoError(t, err, test.expression)
		assert.Equal(t, test.expected, result.Value, test.expression)
		assert.Equal(t, test.expected, result.Passed(), test.expression)
	}
}

func TestCheckCaptureErrors(t *testing.T) {
	c := icxCapture(t)
	_, err := checkCapture(0, c, "family + 1", nil)
	assert.ErrorContains(t, err, "not boolean")
	_, err = checkCapture(0, c, "NOT_A_FEATURE", nil)
	assert.Error(t, err)
	_, err = checkCapture(0, c, "AVX2 &&", nil)
	assert.Error(t, err)
}

func TestCheckCaptureRequired(t *testing.T) {
	result, err := checkCapture(3, icxCapture(t), "", []string{"SHA", "AVX2", "AES-NI"})
	require.NoError(t, err)
	assert.True(t, result.Value)
	assert.Equal(t, []string{"AES-NI", "SHA"}, result.Missing)
	assert.False(t, result.Passed())
}

func TestRenderResults(t *testing.T) {
	out := renderResults([]Result{{CPU: 0, Value: true}, {CPU: 1, Value: true, Missing: []string{"SHA"}}}, "AVX2")
	assert.Contains(t, out, "Expression: AVX2\n")
	assert.Contains(t, out, "PASS")
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "SHA")
}

func TestCheckCommand(t *testing.T) {
	defer func() {
		flagCPUs, flagRequire = "0", []string{}
		common.FlagInput = ""
	}()
	path := filepath.Join(t.TempDir(), "icx.json")
	d := dump.Dump{CPUs: []dump.Processor{{CPU: 0, Leaves: icxLeaves()}, {CPU: 1, Leaves: icxLeaves()}}}
	require.NoError(t, dump.WriteFile(path, d, dump.FormatJSON))

	var out bytes.Buffer
	Cmd.SetOut(&out)
	defer Cmd.SetOut(nil)

	Cmd.SetArgs([]string{"--input", path, "--cpu", "all", "AVX2 && l1d_kb == 48"})
	require.NoError(t, Cmd.Execute())
	assert.Contains(t, out.String(), "PASS")

	out.Reset()
	Cmd.SetArgs([]string{"--input", path, "--require", "SHA"})
	assert.ErrorIs(t, Cmd.Execute(), ErrCheckFailed)
	assert.Contains(t, out.String(), "FAIL")

	Cmd.SetArgs([]string{"--input", path, "--require", "NOPE"})
	assert.ErrorContains(t, Cmd.Execute(), "unknown feature name(s): NOPE")
}
