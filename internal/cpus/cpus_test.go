// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package cpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIdentifier(t *testing.T) {
	id := NewIdentifier(IntelVendor, 6, 143, 4)
	assert.Equal(t, IntelVendor, id.Vendor)
	assert.Equal(t, 6, id.Family)
	assert.Equal(t, 143, id.Model)
	assert.Equal(t, 4, id.Stepping)
}

func TestGetCPU_ICX(t *testing.T) {
	// Ice Lake (ICX) - Family 6, Model 106
	cpu, err := GetCPU(NewIdentifier(IntelVendor, 6, 106, 6))
	require.NoError(t, err)
	assert.Equal(t, UarchICX, cpu.MicroArchitecture)
	assert.Equal(t, "Ice Lake", cpu.CodeName)
	assert.Equal(t, 2, cpu.LogicalThreadCount)
	assert.Equal(t, 12, cpu.CacheWayCount)
}

func TestGetCPU_SteppingSelectsVariant(t *testing.T) {
	tests := []struct {
		stepping int
		uarch    string
	}{
		{4, UarchSKX},
		{7, UarchCLX},
		{11, UarchCPX},
	}
	for _, tt := range tests {
		cpu, err := GetCPU(NewIdentifier(IntelVendor, 6, 85, tt.stepping))
		require.NoError(t, err)
		assert.Equal(t, tt.uarch, cpu.MicroArchitecture, "stepping %d", tt.stepping)
	}
	_, err := GetCPU(NewIdentifier(IntelVendor, 6, 85, 9))
	assert.Error(t, err)
}

func TestGetCPU_ModelMatchesWholeNumber(t *testing.T) {
	// model 1 is Naples, model 17 must not match the "1" pattern
	cpu, err := GetCPU(NewIdentifier(AMDVendor, 23, 1, 2))
	require.NoError(t, err)
	assert.Equal(t, UarchNaples, cpu.MicroArchitecture)

	cpu, err = GetCPU(NewIdentifier(AMDVendor, 26, 17, 0))
	require.NoError(t, err)
	assert.Equal(t, UarchTurinZen5c, cpu.MicroArchitecture)

	_, err = GetCPU(NewIdentifier(AMDVendor, 23, 17, 0))
	assert.Error(t, err)
}

func TestGetCPU_AMDRanges(t *testing.T) {
	cpu, err := GetCPU(NewIdentifier(AMDVendor, 25, 17, 1))
	require.NoError(t, err)
	assert.Equal(t, UarchGenoa, cpu.MicroArchitecture)

	cpu, err = GetCPU(NewIdentifier(AMDVendor, 25, 160, 2))
	require.NoError(t, err)
	assert.Equal(t, UarchBergamo, cpu.MicroArchitecture)
}

func TestGetCPU_VendorMustMatch(t *testing.T) {
	_, err := GetCPU(NewIdentifier(AMDVendor, 6, 106, 6))
	assert.Error(t, err)

	cpu, err := GetCPU(NewIdentifier(HygonVendor, 24, 2, 2))
	require.NoError(t, err)
	assert.Equal(t, UarchDhyana, cpu.MicroArchitecture)
}

func TestGetCPU_Unknown(t *testing.T) {
	_, err := GetCPU(NewIdentifier(IntelVendor, 99, 999, 0))
	assert.Error(t, err)
}

func TestGetCPUByMicroArchitecture(t *testing.T) {
	cpu, err := GetCPUByMicroArchitecture("spr")
	require.NoError(t, err)
	assert.Equal(t, UarchSPR, cpu.MicroArchitecture)

	_, err = GetCPUByMicroArchitecture("nonesuch")
	assert.Error(t, err)
}

func TestIsIntelCPUFamily(t *testing.T) {
	assert.True(t, IsIntelCPUFamily(6))
	assert.True(t, IsIntelCPUFamily(19))
	assert.False(t, IsIntelCPUFamily(25))
}
