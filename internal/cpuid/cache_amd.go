// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package cpuid

// byteAssociativity decodes the 8 bit associativity fields of leaf 0x80000005.
func byteAssociativity(v uint32) Associativity {
	switch v {
	case 0:
		return assocNone
	case 1:
		return assocDirect
	case 0xFF:
		return assocFull
	}
	return nway(int(v))
}

var nibbleWays = map[uint32]int{
	0x2: 2,
	0x3: 3,
	0x4: 4,
	0x5: 6,
	0x6: 8,
	0x8: 16,
	0xA: 32,
	0xB: 48,
	0xC: 64,
	0xD: 96,
	0xE: 128,
}

// nibbleAssociativity decodes the 4 bit associativity fields of leaves 0x80000006 and
// 0x80000019.
func nibbleAssociativity(v uint32) Associativity {
	switch v {
	case 0x0:
		return assocNone
	case 0x1:
		return assocDirect
	case 0xF:
		return assocFull
	}
	if ways, ok := nibbleWays[v]; ok {
		return nway(ways)
	}
	return assocUnknown
}

// decodeAMDL1 decodes leaf 0x80000005: L1 caches and L1 TLBs.
func decodeAMDL1(l RawLeaf) ([]CacheDescriptor, []TLBDescriptor) {
	var caches []CacheDescriptor
	for _, c := range []struct {
		reg uint32
		typ CacheType
	}{{l.ECX, CacheData}, {l.EDX, CacheInstruction}} {
		caches = append(caches, legacyCache(l, 1, c.typ,
			uint64(bits(c.reg, 31, 24))*1024,
			int(bits(c.reg, 7, 0)),
			int(bits(c.reg, 15, 8)),
			byteAssociativity(bits(c.reg, 23, 16))))
	}
	var tlbs []TLBDescriptor
	// eax describes 2M pages; a 4M page takes two of those entries.
	tlbs = append(tlbs, l1TLBs(l, l.EAX, Page2M, 1)...)
	tlbs = append(tlbs, derivedTLBs(l1TLBs(l, l.EAX, Page4M, 2))...)
	tlbs = append(tlbs, l1TLBs(l, l.EBX, Page4K, 1)...)
	return caches, tlbs
}

func l1TLBs(l RawLeaf, reg uint32, ps PageSize, divisor int) []TLBDescriptor {
	return []TLBDescriptor{
		legacyTLB(l, 1, TLBData, ps, scaledEntries(bits(reg, 23, 16), divisor), byteAssociativity(bits(reg, 31, 24))),
		legacyTLB(l, 1, TLBInstruction, ps, scaledEntries(bits(reg, 7, 0), divisor), byteAssociativity(bits(reg, 15, 8))),
	}
}

// decodeAMDL2 decodes leaf 0x80000006: L2 and L3 caches and L2 TLBs.
func decodeAMDL2(l RawLeaf) ([]CacheDescriptor, []TLBDescriptor) {
	caches := []CacheDescriptor{
		legacyCache(l, 2, CacheUnified,
			uint64(bits(l.ECX, 31, 16))*1024,
			int(bits(l.ECX, 7, 0)),
			int(bits(l.ECX, 11, 8)),
			nibbleAssociativity(bits(l.ECX, 15, 12))),
		legacyCache(l, 3, CacheUnified,
			uint64(bits(l.EDX, 31, 18))*512*1024,
			int(bits(l.EDX, 7, 0)),
			int(bits(l.EDX, 11, 8)),
			nibbleAssociativity(bits(l.EDX, 15, 12))),
	}
	var tlbs []TLBDescriptor
	tlbs = append(tlbs, l2TLBs(l, 2, l.EAX, Page2M, 1)...)
	tlbs = append(tlbs, derivedTLBs(l2TLBs(l, 2, l.EAX, Page4M, 2))...)
	tlbs = append(tlbs, l2TLBs(l, 2, l.EBX, Page4K, 1)...)
	return caches, tlbs
}

// decodeAMD1GTLB decodes leaf 0x80000019: L1 and L2 TLBs for 1G pages.
func decodeAMD1GTLB(l RawLeaf) []TLBDescriptor {
	var tlbs []TLBDescriptor
	tlbs = append(tlbs, l2TLBs(l, 1, l.EAX, Page1G, 1)...)
	tlbs = append(tlbs, l2TLBs(l, 2, l.EBX, Page1G, 1)...)
	return tlbs
}

// l2TLBs decodes a register laid out as dtlb assoc [31:28], dtlb entries [27:16],
// itlb assoc [15:12], itlb entries [11:0]. At level 2 a zero dtlb half marks the itlb
// half as a unified TLB.
func l2TLBs(l RawLeaf, level int, reg uint32, ps PageSize, divisor int) []TLBDescriptor {
	dAssoc, dEntries := bits(reg, 31, 28), bits(reg, 27, 16)
	iAssoc, iEntries := bits(reg, 15, 12), bits(reg, 11, 0)
	if level == 2 && dAssoc == 0 && dEntries == 0 {
		return []TLBDescriptor{
			legacyTLB(l, level, TLBUnified, ps, scaledEntries(iEntries, divisor), nibbleAssociativity(iAssoc)),
		}
	}
	return []TLBDescriptor{
		legacyTLB(l, level, TLBData, ps, scaledEntries(dEntries, divisor), nibbleAssociativity(dAssoc)),
		legacyTLB(l, level, TLBInstruction, ps, scaledEntries(iEntries, divisor), nibbleAssociativity(iAssoc)),
	}
}

// scaledEntries divides an entry count, rounding up so one 2M entry still maps a 4M page.
func scaledEntries(entries uint32, divisor int) int {
	return (int(entries) + divisor - 1) / divisor
}

// derivedTLBs drops computed records with no entries. Their source record already carries
// any inconsistency the hardware reported.
func derivedTLBs(tlbs []TLBDescriptor) []TLBDescriptor {
	var kept []TLBDescriptor
	for _, t := range tlbs {
		if t.Entries > 0 {
			kept = append(kept, t)
		}
	}
	return kept
}

func legacyCache(l RawLeaf, level int, typ CacheType, size uint64, line, linesPerTag int, assoc Associativity) CacheDescriptor {
	c := CacheDescriptor{
		Level:         level,
		Type:          typ,
		Size:          size,
		LineSize:      line,
		LinesPerTag:   linesPerTag,
		Associativity: assoc,
		SourceLeaf:    l.Leaf,
		SourceSubleaf: l.Subleaf,
	}
	if assoc.Kind == AssocFull {
		c.Flags |= CacheFullyAssociative
	}
	if ways := assocWays(assoc); ways > 0 && line > 0 {
		c.Sets = int(size / uint64(ways*line))
	}
	return c
}

func legacyTLB(l RawLeaf, level int, typ TLBType, ps PageSize, entries int, assoc Associativity) TLBDescriptor {
	return TLBDescriptor{
		Level:         level,
		Type:          typ,
		PageSize:      ps,
		Entries:       entries,
		Associativity: assoc,
		SourceLeaf:    l.Leaf,
		SourceSubleaf: l.Subleaf,
	}
}

func assocWays(a Associativity) int {
	switch a.Kind {
	case AssocDirect:
		return 1
	case AssocNWay:
		return a.Ways
	}
	return 0
}
