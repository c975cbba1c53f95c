package common

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"context"
	"path/filepath"
	"testing"

	"cpuid/internal/cpuid"
	"cpuid/internal/dump"
	"cpuid/internal/source"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDump() dump.Dump {
	leaves := func(apic uint32) []cpuid.RawLeaf {
		return []cpuid.RawLeaf{
			{Leaf: 0x0, EAX: 0x1, EBX: 0x756e6547, ECX: 0x6c65746e, EDX: 0x49656e69},
			{Leaf: 0x1, EAX: 0x000606A6, EBX: apic << 24, EDX: 0x1},
		}
	}
	return dump.Dump{CPUs: []dump.Processor{
		{CPU: 0, Leaves: leaves(0)},
		{CPU: 1, Leaves: leaves(2)},
		{CPU: 4, Leaves: leaves(8)},
	}}
}

func TestParseCPUList(t *testing.T) {
	cpus, err := ParseCPUList("")
	require.NoError(t, err)
	assert.Nil(t, cpus)
	cpus, err = ParseCPUList("0-2,8")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 8}, cpus)
	_, err = ParseCPUList("0-")
	assert.Error(t, err)
	cpus, err = ParseCPUList("all")
	require.NoError(t, err)
	assert.Nil(t, cpus)
	cpus, err = ParseCPUList("8,0-2,1")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 8}, cpus)
}

func TestSelectCPUs(t *testing.T) {
	d := testDump()
	all, err := SelectCPUs(d, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 4}, all.CPUNumbers())

	selected, err := SelectCPUs(d, []int{4, 0, 4})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 4}, selected.CPUNumbers())

	_, err = SelectCPUs(d, []int{2})
	assert.ErrorContains(t, err, "CPU 2 is not in the capture")
}

func TestAcquireFromInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.yaml")
	require.NoError(t, dump.WriteFile(path, testDump(), dump.FormatYAML))
	FlagInput = path
	defer func() { FlagInput = "" }()

	acquisition, err := Acquire(context.Background(), []int{0})
	require.NoError(t, err)
	assert.False(t, acquisition.Live)
	assert.Equal(t, []int{0, 1, 4}, acquisition.Dump.CPUNumbers())

	system, err := acquisition.NewSystem()
	require.NoError(t, err)
	require.Len(t, system.CPUs(), 3)
	c, ok := system.CPU(4)
	require.True(t, ok)
	assert.Equal(t, cpuid.VendorIntel, c.Vendor())
	assert.Equal(t, uint32(8), c.X2APICID())
}

func TestNewSystemRejectsDuplicateLeaves(t *testing.T) {
	d := dump.Dump{CPUs: []dump.Processor{{CPU: 0, Leaves: []cpuid.RawLeaf{{Leaf: 0}, {Leaf: 0}}}}}
	_, err := Acquisition{Dump: d}.NewSystem()
	assert.ErrorContains(t, err, "CPU 0")
}

func TestValidateCaptureFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	FlagSource = string(source.KindDevice)
	FlagParallel = 0
	FlagInput = ""
	assert.NoError(t, ValidateCaptureFlags(cmd))

	FlagSource = "msr"
	assert.Error(t, ValidateCaptureFlags(cmd))
	FlagSource = string(source.KindAuto)

	FlagParallel = -1
	assert.Error(t, ValidateCaptureFlags(cmd))
	FlagParallel = 0

	FlagInput = filepath.Join(t.TempDir(), "missing.txt")
	assert.Error(t, ValidateCaptureFlags(cmd))
	FlagInput = ""
}

func TestGetAppContext(t *testing.T) {
	root := &cobra.Command{Use: "root"}
	child := &cobra.Command{Use: "child"}
	root.AddCommand(child)
	root.SetContext(context.WithValue(context.Background(), AppContext{}, AppContext{Version: "1.2.3"}))
	assert.Equal(t, "1.2.3", GetAppContext(child).Version)
	assert.Equal(t, AppContext{}, GetAppContext(&cobra.Command{Use: "orphan"}))
}
