package dump

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

func writeInput(t *testing.T) string {
	leaves := []cpuid.RawLeaf{
		{Leaf: 0x0, EAX: 0x1, EBX: 0x756e6547, ECX: 0x6c65746e, EDX: 0x49656e69},
		{Leaf: 0x1, EAX: 0x000606A6},
	}
	d := dump.Dump{CPUs: []dump.Processor{{CPU: 0, Leaves: leaves}, {CPU: 2, Leaves: leaves}}}
	path := filepath.Join(t.TempDir(), "cpus.txt")
	require.NoError(t, dump.WriteFile(path, d, dump.FormatText))
	return path
}

func resetFlags() {
	flagCPUs, flagFormat, flagFile = "", "", ""
	common.FlagInput = ""
}

func TestConvertInputToJSON(t *testing.T) {
	defer resetFlags()
	in := writeInput(t)
	out := filepath.Join(t.TempDir(), "cpus.json")
	Cmd.SetArgs([]string{"--input", in, "--file", out, "--cpu", "2"})
	require.NoError(t, Cmd.Execute())

	assert.Equal(t, dump.FormatJSON, outputFormat())
	d, err := dump.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, d.CPUNumbers())
}

func TestDumpToStdout(t *testing.T) {
	defer resetFlags()
	in := writeInput(t)
	var buf bytes.Buffer
	Cmd.SetOut(&buf)
	defer Cmd.SetOut(nil)
	Cmd.SetArgs([]string{"--input", in})
	require.NoError(t, Cmd.Execute())
	assert.Contains(t, buf.String(), "CPU 0:\n")
	assert.Contains(t, buf.String(), "CPU 2:\n")
	assert.Contains(t, buf.String(), "CPUID 00000001:00 = 000606a6 00000000 00000000 00000000")
}

func TestDumpRejectsBadFlags(t *testing.T) {
	defer resetFlags()
	in := writeInput(t)
	Cmd.SetArgs([]string{"--input", in, "--format", "xml"})
	assert.Error(t, Cmd.Execute())
	flagFormat = ""
	Cmd.SetArgs([]string{"--input", in, "--cpu", "3"})
	assert.ErrorContains(t, Cmd.Execute(), "CPU 3 is not in the capture")
}
