package decode

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"cpuid/internal/common"
	"cpuid/internal/cpuid"
	"cpuid/internal/dump"
	"cpuid/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeInput writes two processors whose only cache description comes from leaf 2.
func writeInput(t *testing.T) string {
	leaves := []cpuid.RawLeaf{
		{Leaf: 0x0, EAX: 0x2, EBX: 0x756e6547, ECX: 0x6c65746e, EDX: 0x49656e69},
		{Leaf: 0x1, EAX: 0x000306C3, EDX: 0x1},
		{Leaf: 0x2, EAX: 0x00000001, EBX: 0x0000005A},
	}
	d := dump.Dump{CPUs: []dump.Processor{{CPU: 0, Leaves: leaves}, {CPU: 1, Leaves: leaves}}}
	path := filepath.Join(t.TempDir(), "haswell.txt")
	require.NoError(t, dump.WriteFile(path, d, dump.FormatText))
	return path
}

func resetFlags() {
	flagCPUs, flagFormat, flagNoLegacy, flagRaw = "0", []string{report.FormatTxt}, false, false
	common.FlagInput = ""
}

func TestDecodeText(t *testing.T) {
	defer resetFlags()
	var out bytes.Buffer
	Cmd.SetOut(&out)
	defer Cmd.SetOut(nil)
	Cmd.SetArgs([]string{"--input", writeInput(t), "--raw"})
	require.NoError(t, Cmd.Execute())
	text := out.String()
	assert.Contains(t, text, "Processor\n=========\n")
	assert.Contains(t, text, "HSW")
	assert.Contains(t, text, "Data")
	assert.Contains(t, text, "Raw Leaves")
	assert.NotContains(t, text, "CPU 1\n")
}

func TestDecodeNoLegacy(t *testing.T) {
	defer resetFlags()
	var out bytes.Buffer
	Cmd.SetOut(&out)
	defer Cmd.SetOut(nil)
	Cmd.SetArgs([]string{"--input", writeInput(t), "--no-legacy"})
	require.NoError(t, Cmd.Execute())
	assert.Contains(t, out.String(), "TLB\n===\n"+report.NoDataFound)
}

func TestDecodeJsonToOutputDir(t *testing.T) {
	defer resetFlags()
	outputDir := t.TempDir()
	Cmd.SetContext(context.WithValue(context.Background(), common.AppContext{}, common.AppContext{OutputDir: outputDir}))
	defer Cmd.SetContext(context.Background())
	Cmd.SetArgs([]string{"--input", writeInput(t), "--cpu", "all", "--format", "json"})
	require.NoError(t, Cmd.Execute())

	data, err := os.ReadFile(filepath.Join(outputDir, "haswell_decode.json"))
	require.NoError(t, err)
	var parsed map[string]map[string][]map[string]string
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Contains(t, parsed, "CPU 0")
	assert.Contains(t, parsed, "CPU 1")
	tlbs := parsed["CPU 1"][report.TLBTableName]
	require.NotEmpty(t, tlbs)
	assert.Equal(t, "00000002:00", tlbs[0]["Source"])
}

func TestDecodeUnknownCPU(t *testing.T) {
	defer resetFlags()
	Cmd.SetArgs([]string{"--input", writeInput(t), "--cpu", "7"})
	assert.ErrorContains(t, Cmd.Execute(), "CPU 7 is not in the capture")
}

func TestFormats(t *testing.T) {
	defer resetFlags()
	flagFormat = []string{report.FormatJson, report.FormatTxt, report.FormatJson}
	assert.Equal(t, []string{report.FormatJson, report.FormatTxt}, formats())
	flagFormat = []string{report.FormatAll}
	assert.Equal(t, report.FormatOptions, formats())
}
