// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package cpuid

import (
	"github.com/pkg/errors"
)

// fakeSource answers from a fixed set of leaves and returns zeros for anything else,
// the way hardware answers for unimplemented subleaves.
type fakeSource struct {
	leaves  map[leafKey]RawLeaf
	fail    map[leafKey]bool
	queries map[leafKey]int
}

func newFakeSource(leaves ...RawLeaf) *fakeSource {
	f := &fakeSource{
		leaves:  make(map[leafKey]RawLeaf),
		fail:    make(map[leafKey]bool),
		queries: make(map[leafKey]int),
	}
	for _, l := range leaves {
		f.leaves[l.key()] = l
	}
	return f
}

func (f *fakeSource) Query(leaf, subleaf uint32) (RawLeaf, error) {
	key := leafKey{leaf, subleaf}
	f.queries[key]++
	if f.fail[key] {
		return RawLeaf{}, errors.New("device went away")
	}
	if l, ok := f.leaves[key]; ok {
		return l, nil
	}
	return RawLeaf{Leaf: leaf, Subleaf: subleaf}, nil
}

func le32(s string) uint32 {
	b := []byte(s)
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func vendorLeaf(max uint32, id string) RawLeaf {
	return RawLeaf{Leaf: 0, EAX: max, EBX: le32(id[0:4]), EDX: le32(id[4:8]), ECX: le32(id[8:12])}
}

func hypervisorLeaf(max uint32, id string) RawLeaf {
	return RawLeaf{Leaf: HypervisorBase, EAX: max, EBX: le32(id[0:4]), ECX: le32(id[4:8]), EDX: le32(id[8:12])}
}

// cacheLeaf builds a deterministic cache parameters subleaf.
func cacheLeaf(leaf, sub, typ, level, ways, partitions, line, sets uint32) RawLeaf {
	return RawLeaf{
		Leaf:    leaf,
		Subleaf: sub,
		EAX:     typ | level<<5 | 1<<8,
		EBX:     (ways-1)<<22 | (partitions-1)<<12 | (line - 1),
		ECX:     sets - 1,
	}
}

func topologySubleaf(leaf, sub, typ, shift, count, x2apic uint32) RawLeaf {
	return RawLeaf{Leaf: leaf, Subleaf: sub, EAX: shift, EBX: count, ECX: typ<<8 | sub, EDX: x2apic}
}

func brandLeaves(brand string) []RawLeaf {
	b := make([]byte, 48)
	copy(b, brand)
	var leaves []RawLeaf
	for i := 0; i < 3; i++ {
		chunk := b[i*16 : i*16+16]
		leaves = append(leaves, RawLeaf{
			Leaf: 0x8000_0002 + uint32(i),
			EAX:  le32(string(chunk[0:4])),
			EBX:  le32(string(chunk[4:8])),
			ECX:  le32(string(chunk[8:12])),
			EDX:  le32(string(chunk[12:16])),
		})
	}
	return leaves
}

func intelLeaves(extra ...RawLeaf) []RawLeaf {
	return append([]RawLeaf{vendorLeaf(0x1F, IntelVendorID)}, extra...)
}

func amdLeaves(extra ...RawLeaf) []RawLeaf {
	return append([]RawLeaf{vendorLeaf(0x10, AMDVendorID)}, extra...)
}
