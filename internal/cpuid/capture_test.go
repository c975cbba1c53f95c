// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package cpuid

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var captureCmpOpts = cmp.AllowUnexported(Capture{}, leafIndex{}, leafKey{})

func featureNames(flags []FeatureFlag) []string {
	names := make([]string, 0, len(flags))
	for _, f := range flags {
		names = append(names, f.Name)
	}
	return names
}

func TestNewCaptureRejectsDuplicatePairs(t *testing.T) {
	_, err := NewCapture(intelLeaves(RawLeaf{Leaf: 1}, RawLeaf{Leaf: 1, EAX: 1}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "00000001:00")
}

func TestVendorAndHypervisor(t *testing.T) {
	tests := []struct {
		id     string
		vendor Vendor
	}{
		{"GenuineIntel", VendorIntel},
		{"GenuineIotel", VendorIntel},
		{"AuthenticAMD", VendorAMD},
		{"HygonGenuine", VendorHygon},
		{"CentaurHauls", VendorCentaur},
		{"  Shanghai  ", VendorZhaoxin},
		{"SomethingNew", VendorUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			c, err := NewCapture([]RawLeaf{vendorLeaf(1, tt.id)})
			require.NoError(t, err)
			assert.Equal(t, tt.vendor, c.Vendor())
			assert.Equal(t, tt.id, c.VendorID())
			assert.Equal(t, HypervisorNone, c.Hypervisor())
		})
	}

	c, err := NewCapture(intelLeaves(hypervisorLeaf(0x4000_0001, "Microsoft Hv")))
	require.NoError(t, err)
	assert.Equal(t, HypervisorHyperV, c.Hypervisor())
	assert.Equal(t, "Microsoft Hyper-V", c.Hypervisor().String())
}

func TestSignature(t *testing.T) {
	tests := []struct {
		name     string
		vendor   string
		eax      uint32
		family   int
		model    int
		stepping int
	}{
		{"intel family 6 folds extended model", IntelVendorID, 0x000806F8, 0x6, 0x8F, 0x8},
		{"amd family 6 keeps base model", AMDVendorID, 0x000106A5, 0x6, 0xA, 0x5},
		{"amd family f folds both", AMDVendorID, 0x00A20F10, 0x19, 0x21, 0x0},
		{"intel family f folds both", IntelVendorID, 0x00000F43, 0xF, 0x4, 0x3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCapture([]RawLeaf{vendorLeaf(1, tt.vendor), {Leaf: 1, EAX: tt.eax}})
			require.NoError(t, err)
			sig := c.Signature()
			assert.Equal(t, tt.family, sig.Family)
			assert.Equal(t, tt.model, sig.Model)
			assert.Equal(t, tt.stepping, sig.Stepping)
		})
	}
}

func TestBrandStringSqueezesWhitespace(t *testing.T) {
	c, err := NewCapture(intelLeaves(brandLeaves("      Intel(R) Xeon(R)   Platinum  8480+ CPU ")...))
	require.NoError(t, err)
	assert.Equal(t, "Intel(R) Xeon(R) Platinum 8480+ CPU", c.BrandString())

	c, err = NewCapture(intelLeaves(brandLeaves("partial")[:2]...))
	require.NoError(t, err)
	assert.Empty(t, c.BrandString())
}

func TestAddressSizes(t *testing.T) {
	c, err := NewCapture(intelLeaves(RawLeaf{Leaf: 0x8000_0008, EAX: 0x0000_3934}))
	require.NoError(t, err)
	assert.Equal(t, AddressSizes{Physical: 52, Linear: 57}, c.AddressSizes())
}

func TestFeatureVendorGating(t *testing.T) {
	leaves := func(vendor string) []RawLeaf {
		return []RawLeaf{
			vendorLeaf(0x7, vendor),
			{Leaf: 1, EDX: 1 << 0, ECX: 1 << 31},
			{Leaf: 7, EBX: 1<<2 | 1<<5},
			{Leaf: 0x8000_0001, EDX: 1<<0 | 1<<11 | 1<<20},
		}
	}

	intel, err := NewCapture(leaves(IntelVendorID))
	require.NoError(t, err)
	assert.Equal(t, []string{"FPU", "HYPERVISOR", "SGX", "AVX2", "SYSCALL", "XD"}, featureNames(intel.Features()))

	amd, err := NewCapture(leaves(AMDVendorID))
	require.NoError(t, err)
	assert.Equal(t, []string{"FPU", "HYPERVISOR", "AVX2", "SYSCALL", "NX"}, featureNames(amd.Features()))
	assert.False(t, amd.HasFeature("SGX"))
	assert.True(t, amd.HasFeature("NX"))

	f, ok := amd.Feature("NX")
	require.True(t, ok)
	assert.Equal(t, FeatureFlag{
		Name:        "NX",
		Description: "No eXecute page attribute bit",
		Leaf:        0x8000_0001,
		Register:    EDX,
		Bit:         20,
		Group:       "Extended Feature Identifiers",
	}, f)
	assert.True(t, amd.FeatureNames().Contains("FPU", "AVX2", "NX"))
	assert.Equal(t, 5, amd.FeatureNames().Cardinality())
}

func TestKVMFeaturesNeedKVM(t *testing.T) {
	kvm, err := NewCapture(intelLeaves(
		hypervisorLeaf(0x4000_0001, "KVMKVMKVM\x00\x00\x00"),
		RawLeaf{Leaf: 0x4000_0001, EAX: 1<<3 | 1<<24},
	))
	require.NoError(t, err)
	assert.Equal(t, HypervisorKVM, kvm.Hypervisor())
	assert.Equal(t, []string{"KVM_CLOCKSOURCE2", "KVM_CLOCKSOURCE_STABLE"}, featureNames(kvm.Features()))

	xen, err := NewCapture(intelLeaves(
		hypervisorLeaf(0x4000_0001, "XenVMMXenVMM"),
		RawLeaf{Leaf: 0x4000_0001, EAX: 1<<3 | 1<<24},
	))
	require.NoError(t, err)
	assert.Empty(t, xen.Features())
}

func TestDeterministicCacheStopsAtTerminator(t *testing.T) {
	c, err := NewCapture(intelLeaves(
		cacheLeaf(4, 0, 1, 1, 12, 1, 64, 64),
		cacheLeaf(4, 1, 2, 1, 8, 1, 64, 64),
		RawLeaf{Leaf: 4, Subleaf: 2},
		cacheLeaf(4, 3, 3, 2, 16, 1, 64, 2048),
	))
	require.NoError(t, err)
	caches := c.Caches()
	require.Len(t, caches, 2)
	assert.Equal(t, CacheDescriptor{
		Level:         1,
		Type:          CacheData,
		Size:          48 * 1024,
		LineSize:      64,
		Associativity: nway(12),
		Sets:          64,
		Partitions:    1,
		SharedBy:      1,
		Flags:         CacheSelfInitializing,
		SourceLeaf:    4,
		SourceSubleaf: 0,
	}, caches[0])
	assert.Equal(t, CacheInstruction, caches[1].Type)
	_, ok := c.Cache(2, CacheUnified)
	assert.False(t, ok)
}

func TestIntelPriorityAndFallback(t *testing.T) {
	c, err := NewCapture(intelLeaves(
		RawLeaf{Leaf: 2, EAX: 0x0000_0001, EBX: 0x7D2C_0000},
		cacheLeaf(4, 0, 1, 1, 12, 1, 64, 64),
		RawLeaf{Leaf: 4, Subleaf: 1},
	))
	require.NoError(t, err)

	l1d, ok := c.Cache(1, CacheData)
	require.True(t, ok)
	assert.Equal(t, uint32(4), l1d.SourceLeaf)
	assert.Equal(t, uint64(48*1024), l1d.Size)

	l2, ok := c.Cache(2, CacheUnified)
	require.True(t, ok)
	assert.Equal(t, uint32(2), l2.SourceLeaf)
	assert.Equal(t, uint64(2048*1024), l2.Size)
	assert.Equal(t, nway(8), l2.Associativity)

	noLegacy, err := NewCapture(c.Leaves(), WithLegacyDescriptors(false))
	require.NoError(t, err)
	assert.Len(t, noLegacy.Caches(), 1)
}

func TestLegacyDescriptorSplitsPageSizes(t *testing.T) {
	want := []TLBDescriptor{
		{Level: 1, Type: TLBData, PageSize: Page2M, Entries: 32, Associativity: nway(4), SourceLeaf: 2},
		{Level: 1, Type: TLBData, PageSize: Page4M, Entries: 32, Associativity: nway(4), SourceLeaf: 2},
	}

	once, err := NewCapture(intelLeaves(RawLeaf{Leaf: 2, EAX: 0x0000_0001, EBX: 0x0000_005A}))
	require.NoError(t, err)
	assert.Equal(t, want, once.TLBs())

	repeated, err := NewCapture(intelLeaves(RawLeaf{Leaf: 2, EAX: 0x5A5A_5A01, EBX: 0x005A_5A00, ECX: 0x0000_005A}))
	require.NoError(t, err)
	assert.Equal(t, want, repeated.TLBs())
	assert.Empty(t, repeated.Caches())
}

func TestLegacyDescriptorSkipsInvalidRegisters(t *testing.T) {
	c, err := NewCapture(intelLeaves(RawLeaf{Leaf: 2, EAX: 0x0000_2C01, EDX: 0x8000_0030}))
	require.NoError(t, err)
	caches := c.Caches()
	require.Len(t, caches, 1)
	assert.Equal(t, CacheData, caches[0].Type)

	multi, err := NewCapture(intelLeaves(RawLeaf{Leaf: 2, EAX: 0x0000_0001, EBX: 0x0000_C3FF, ECX: 0x40}))
	require.NoError(t, err)
	tlbs := multi.TLBs()
	require.Len(t, tlbs, 3)
	assert.Equal(t, []PageSize{Page4K, Page2M, Page1G}, []PageSize{tlbs[0].PageSize, tlbs[1].PageSize, tlbs[2].PageSize})
	assert.Equal(t, 1536, tlbs[0].Entries)
	assert.Equal(t, 16, tlbs[2].Entries)
	assert.Empty(t, multi.Caches())
}

func TestAddressTranslationSplitsPageSizes(t *testing.T) {
	c, err := NewCapture(intelLeaves(
		RawLeaf{Leaf: 0x18, EAX: 1},
		RawLeaf{Leaf: 0x18, Subleaf: 1, EBX: 4<<16 | 0b0111, ECX: 16, EDX: 1 | 1<<5},
	))
	require.NoError(t, err)
	tlbs := c.TLBs()
	require.Len(t, tlbs, 3)
	for i, ps := range []PageSize{Page4K, Page2M, Page4M} {
		assert.Equal(t, TLBDescriptor{
			Level:         1,
			Type:          TLBData,
			PageSize:      ps,
			Entries:       64,
			Associativity: nway(4),
			SharedBy:      1,
			SourceLeaf:    0x18,
			SourceSubleaf: 1,
		}, tlbs[i])
	}
}

func TestAMDLegacyLeaves(t *testing.T) {
	c, err := NewCapture(amdLeaves(
		RawLeaf{Leaf: 0x8000_0005, EAX: 0xFF40_FF40, EBX: 0xFF40_FF40, ECX: 0x2008_0140, EDX: 0x2008_0140},
		RawLeaf{Leaf: 0x8000_0006, EAX: 0x0000_6400, EBX: 0x6800_4200, ECX: 0x0200_6140, EDX: 0x0080_8140},
	))
	require.NoError(t, err)
	assert.Empty(t, c.Anomalies())

	l1d, ok := c.Cache(1, CacheData)
	require.True(t, ok)
	assert.Equal(t, uint64(32*1024), l1d.Size)
	assert.Equal(t, nway(8), l1d.Associativity)
	assert.Equal(t, 64, l1d.Sets)

	l2, ok := c.Cache(2, CacheUnified)
	require.True(t, ok)
	assert.Equal(t, uint64(512*1024), l2.Size)
	assert.Equal(t, nway(8), l2.Associativity)

	l3, ok := c.Cache(3, CacheUnified)
	require.True(t, ok)
	assert.Equal(t, uint64(16*1024*1024), l3.Size)
	assert.Equal(t, nway(16), l3.Associativity)

	var l2tlbs []TLBDescriptor
	for _, tlb := range c.TLBs() {
		if tlb.Level == 2 {
			l2tlbs = append(l2tlbs, tlb)
		}
	}
	assert.Equal(t, []TLBDescriptor{
		{Level: 2, Type: TLBData, PageSize: Page4K, Entries: 2048, Associativity: nway(8), SourceLeaf: 0x8000_0006},
		{Level: 2, Type: TLBInstruction, PageSize: Page4K, Entries: 512, Associativity: nway(4), SourceLeaf: 0x8000_0006},
		{Level: 2, Type: TLBUnified, PageSize: Page2M, Entries: 1024, Associativity: nway(8), SourceLeaf: 0x8000_0006},
		{Level: 2, Type: TLBUnified, PageSize: Page4M, Entries: 512, Associativity: nway(8), SourceLeaf: 0x8000_0006},
	}, l2tlbs)
}

func TestNibbleAssociativity(t *testing.T) {
	tests := map[uint32]Associativity{
		0x0: assocNone,
		0x1: assocDirect,
		0x5: nway(6),
		0x6: nway(8),
		0x8: nway(16),
		0xA: nway(32),
		0xE: nway(128),
		0xF: assocFull,
		0x7: assocUnknown,
		0x9: assocUnknown,
	}
	for v, want := range tests {
		assert.Equal(t, want, nibbleAssociativity(v), "nibble %#x", v)
	}
}

func TestAMDExtendedTopologyBeatsLegacy(t *testing.T) {
	c, err := NewCapture(amdLeaves(
		RawLeaf{Leaf: 0x8000_0005, ECX: 0x2008_0140, EDX: 0x2008_0140},
		cacheLeaf(0x8000_001D, 0, 1, 1, 12, 1, 64, 64),
		RawLeaf{Leaf: 0x8000_001D, Subleaf: 1},
	))
	require.NoError(t, err)
	l1d, ok := c.Cache(1, CacheData)
	require.True(t, ok)
	assert.Equal(t, uint32(0x8000_001D), l1d.SourceLeaf)
	l1i, ok := c.Cache(1, CacheInstruction)
	require.True(t, ok)
	assert.Equal(t, uint32(0x8000_0005), l1i.SourceLeaf)
}

func TestAMDCacheTopologyStopsAtTerminator(t *testing.T) {
	c, err := NewCapture(amdLeaves(
		cacheLeaf(0x8000_001D, 0, 1, 1, 12, 1, 64, 64),
		cacheLeaf(0x8000_001D, 1, 3, 2, 8, 1, 64, 2048),
		RawLeaf{Leaf: 0x8000_001D, Subleaf: 2},
		cacheLeaf(0x8000_001D, 3, 3, 3, 16, 1, 64, 32768),
	))
	require.NoError(t, err)
	caches := c.Caches()
	require.Len(t, caches, 2)
	for _, cache := range caches {
		assert.Less(t, cache.SourceSubleaf, uint32(2))
	}
	_, ok := c.Cache(3, CacheUnified)
	assert.False(t, ok)
}

func TestAMDLargePageTLBRoundsUp(t *testing.T) {
	// one fully associative 2M data entry, eight 2M instruction entries
	c, err := NewCapture(amdLeaves(RawLeaf{Leaf: 0x8000_0005, EAX: 0xFF01_FF08}))
	require.NoError(t, err)
	assert.Empty(t, c.Anomalies())

	var large []TLBDescriptor
	for _, tlb := range c.TLBs() {
		if tlb.Level == 1 && tlb.PageSize == Page4M {
			large = append(large, tlb)
		}
	}
	assert.Equal(t, []TLBDescriptor{
		{Level: 1, Type: TLBData, PageSize: Page4M, Entries: 1, Associativity: assocFull, SourceLeaf: 0x8000_0005},
		{Level: 1, Type: TLBInstruction, PageSize: Page4M, Entries: 4, Associativity: assocFull, SourceLeaf: 0x8000_0005},
	}, large)
}

func TestAMDLargePageTLBReportsInconsistencyOnce(t *testing.T) {
	// fully associative 2M data TLB without entries
	c, err := NewCapture(amdLeaves(RawLeaf{Leaf: 0x8000_0005, EAX: 0xFF00_FF08}))
	require.NoError(t, err)
	anomalies := c.Anomalies()
	require.Len(t, anomalies, 1)
	assert.Equal(t, uint32(0x8000_0005), anomalies[0].Leaf)
	assert.Contains(t, anomalies[0].Message, "2M")

	for _, tlb := range c.TLBs() {
		if tlb.Level == 1 && tlb.Type == TLBData {
			assert.NotEqual(t, Page4M, tlb.PageSize)
		}
	}
}

func TestInconsistentRecordIsAnomaly(t *testing.T) {
	c, err := NewCapture(amdLeaves(
		RawLeaf{Leaf: 0x8000_0006, ECX: 0x0200_6140, EDX: 0x0000_8140},
	))
	require.NoError(t, err)
	_, ok := c.Cache(3, CacheUnified)
	assert.False(t, ok)
	anomalies := c.Anomalies()
	require.Len(t, anomalies, 1)
	assert.Equal(t, uint32(0x8000_0006), anomalies[0].Leaf)
}

func TestAMDLegacyLeavesIgnoredOnIntel(t *testing.T) {
	c, err := NewCapture(intelLeaves(
		RawLeaf{Leaf: 0x8000_0006, ECX: 0x0200_6140},
	))
	require.NoError(t, err)
	assert.Empty(t, c.Caches())
}

func TestTopologyLevels(t *testing.T) {
	ordered, err := NewCapture(intelLeaves(
		topologySubleaf(0x1F, 0, 1, 0, 1, 7),
		topologySubleaf(0x1F, 1, 2, 1, 2, 7),
		topologySubleaf(0x1F, 2, 5, 4, 16, 7),
		RawLeaf{Leaf: 0x1F, Subleaf: 3, ECX: 3},
	))
	require.NoError(t, err)
	levels := ordered.Topology()
	require.Len(t, levels, 3)
	assert.Equal(t, []TopologyType{TopologySMT, TopologyCore, TopologyDie}, []TopologyType{levels[0].Type, levels[1].Type, levels[2].Type})
	assert.Equal(t, uint(4), levels[2].Shift)
	assert.Equal(t, uint32(0x1F), levels[0].SourceLeaf)
	assert.Empty(t, ordered.Anomalies())
	assert.Equal(t, uint32(7), ordered.X2APICID())

	swapped, err := NewCapture(intelLeaves(
		topologySubleaf(0x1F, 0, 1, 0, 1, 7),
		topologySubleaf(0x1F, 1, 2, 4, 16, 7),
		topologySubleaf(0x1F, 2, 5, 1, 2, 7),
	))
	require.NoError(t, err)
	assert.Len(t, swapped.Topology(), 3)
	anomalies := swapped.Anomalies()
	require.Len(t, anomalies, 1)
	assert.Equal(t, uint32(2), anomalies[0].Subleaf)
}

func TestTopologyFallsBackToLeafB(t *testing.T) {
	c, err := NewCapture(intelLeaves(
		RawLeaf{Leaf: 0x1F},
		topologySubleaf(0xB, 0, 1, 1, 2, 3),
		topologySubleaf(0xB, 1, 2, 6, 32, 3),
	))
	require.NoError(t, err)
	levels := c.Topology()
	require.Len(t, levels, 2)
	assert.Equal(t, uint32(0xB), levels[0].SourceLeaf)
}

func TestDecodeIsIdempotent(t *testing.T) {
	leaves := intelLeaves(
		RawLeaf{Leaf: 1, EAX: 0x000806F8, ECX: 1 << 31, EDX: 1},
		RawLeaf{Leaf: 2, EAX: 0x0000_0001, EBX: 0x0000_005A},
		cacheLeaf(4, 0, 1, 1, 12, 1, 64, 64),
		RawLeaf{Leaf: 4, Subleaf: 1},
		topologySubleaf(0xB, 0, 1, 1, 2, 3),
		topologySubleaf(0xB, 1, 2, 6, 32, 3),
	)
	a, err := NewCapture(leaves)
	require.NoError(t, err)
	b, err := NewCapture(leaves)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(a, b, captureCmpOpts))

	leaves[1].EAX = 0
	assert.Equal(t, uint32(0x000806F8), a.Leaves()[1].EAX)
}

func TestKnownFeatureNames(t *testing.T) {
	names := KnownFeatureNames()
	assert.True(t, slices.IsSorted(names))
	assert.Equal(t, names, slices.Compact(slices.Clone(names)))
	for _, name := range []string{"FPU", "SSE4.2", "AVX2", "NX", "SYSCALL"} {
		assert.Contains(t, names, name)
	}
}
