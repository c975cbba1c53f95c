// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package cpuid

import (
	"log/slog"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

// legacyDescriptor is one record of a leaf 0x2 descriptor byte. Sizes are in KB for
// caches (K micro-ops for trace caches) and in entries for TLBs.
type legacyDescriptor struct {
	tlb       bool
	level     int
	cacheType CacheType
	tlbType   TLBType
	size      int
	line      int
	assoc     Associativity
	pages     []PageSize
	flags     CacheFlags
}

func cacheEntry(level int, typ CacheType, kb, line int, assoc Associativity, flags CacheFlags) legacyDescriptor {
	return legacyDescriptor{level: level, cacheType: typ, size: kb, line: line, assoc: assoc, flags: flags}
}

func tlbEntry(level int, typ TLBType, entries int, assoc Associativity, pages ...PageSize) legacyDescriptor {
	return legacyDescriptor{tlb: true, level: level, tlbType: typ, size: entries, assoc: assoc, pages: pages}
}

// Descriptor bytes that carry no record.
const (
	descriptorNull          byte = 0x00
	descriptorNoHigherCache byte = 0x40
	descriptorPrefetch64    byte = 0xF0
	descriptorPrefetch128   byte = 0xF1
	descriptorUseLeaf4      byte = 0xFF
)

// leaf2Descriptors maps descriptor bytes to their records. TLBs documented without a
// level are level 1.
var leaf2Descriptors = map[byte][]legacyDescriptor{
	0x01: {tlbEntry(1, TLBInstruction, 32, nway(4), Page4K)},
	0x02: {tlbEntry(1, TLBInstruction, 2, assocFull, Page4M)},
	0x03: {tlbEntry(1, TLBData, 64, nway(4), Page4K)},
	0x04: {tlbEntry(1, TLBData, 8, nway(4), Page4M)},
	0x05: {tlbEntry(1, TLBData, 32, nway(4), Page4M)},
	0x06: {cacheEntry(1, CacheInstruction, 8, 32, nway(4), 0)},
	0x08: {cacheEntry(1, CacheInstruction, 16, 32, nway(4), 0)},
	0x09: {cacheEntry(1, CacheInstruction, 32, 64, nway(4), 0)},
	0x0A: {cacheEntry(1, CacheData, 8, 32, nway(2), 0)},
	0x0B: {tlbEntry(1, TLBInstruction, 4, nway(4), Page4M)},
	0x0C: {cacheEntry(1, CacheData, 16, 32, nway(4), 0)},
	0x0D: {cacheEntry(1, CacheData, 16, 64, nway(4), CacheECC)},
	0x0E: {cacheEntry(1, CacheData, 24, 64, nway(6), 0)},
	0x10: {cacheEntry(1, CacheData, 16, 32, nway(4), 0)},
	0x15: {cacheEntry(1, CacheInstruction, 16, 32, nway(4), 0)},
	0x1A: {cacheEntry(2, CacheUnified, 96, 64, nway(6), 0)},
	0x1D: {cacheEntry(2, CacheUnified, 128, 64, nway(2), 0)},
	0x21: {cacheEntry(2, CacheUnified, 256, 64, nway(8), 0)},
	0x22: {cacheEntry(3, CacheUnified, 512, 64, nway(4), CacheSectored)},
	0x23: {cacheEntry(3, CacheUnified, 1024, 64, nway(8), CacheSectored)},
	0x24: {cacheEntry(2, CacheUnified, 1024, 64, nway(16), 0)},
	0x25: {cacheEntry(3, CacheUnified, 2048, 64, nway(8), CacheSectored)},
	0x29: {cacheEntry(3, CacheUnified, 4096, 64, nway(8), CacheSectored)},
	0x2C: {cacheEntry(1, CacheData, 32, 64, nway(8), 0)},
	0x30: {cacheEntry(1, CacheInstruction, 32, 64, nway(8), 0)},
	0x39: {cacheEntry(2, CacheUnified, 128, 64, nway(4), CacheSectored)},
	0x3A: {cacheEntry(2, CacheUnified, 192, 64, nway(6), CacheSectored)},
	0x3B: {cacheEntry(2, CacheUnified, 128, 64, nway(2), CacheSectored)},
	0x3C: {cacheEntry(2, CacheUnified, 256, 64, nway(4), CacheSectored)},
	0x3D: {cacheEntry(2, CacheUnified, 384, 64, nway(6), CacheSectored)},
	0x3E: {cacheEntry(2, CacheUnified, 512, 64, nway(4), CacheSectored)},
	0x41: {cacheEntry(2, CacheUnified, 128, 32, nway(4), 0)},
	0x42: {cacheEntry(2, CacheUnified, 256, 32, nway(4), 0)},
	0x43: {cacheEntry(2, CacheUnified, 512, 32, nway(4), 0)},
	0x44: {cacheEntry(2, CacheUnified, 1024, 32, nway(4), 0)},
	0x45: {cacheEntry(2, CacheUnified, 2048, 32, nway(4), 0)},
	0x46: {cacheEntry(3, CacheUnified, 4096, 64, nway(4), 0)},
	0x47: {cacheEntry(3, CacheUnified, 8192, 64, nway(8), 0)},
	0x48: {cacheEntry(2, CacheUnified, 3072, 64, nway(12), 0)},
	0x49: {cacheEntry(2, CacheUnified, 4096, 64, nway(16), 0)},
	0x4A: {cacheEntry(3, CacheUnified, 6144, 64, nway(12), 0)},
	0x4B: {cacheEntry(3, CacheUnified, 8192, 64, nway(16), 0)},
	0x4C: {cacheEntry(3, CacheUnified, 12288, 64, nway(12), 0)},
	0x4D: {cacheEntry(3, CacheUnified, 16384, 64, nway(16), 0)},
	0x4E: {cacheEntry(2, CacheUnified, 6144, 64, nway(24), 0)},
	0x4F: {tlbEntry(1, TLBInstruction, 32, assocUnknown, Page4K)},
	0x50: {tlbEntry(1, TLBInstruction, 64, assocUnknown, Page4K, Page2M, Page4M)},
	0x51: {tlbEntry(1, TLBInstruction, 128, assocUnknown, Page4K, Page2M, Page4M)},
	0x52: {tlbEntry(1, TLBInstruction, 256, assocUnknown, Page4K, Page2M, Page4M)},
	0x55: {tlbEntry(1, TLBInstruction, 256, assocFull, Page2M, Page4M)},
	0x56: {tlbEntry(0, TLBData, 16, nway(4), Page4M)},
	0x57: {tlbEntry(0, TLBData, 16, nway(4), Page4K)},
	0x59: {tlbEntry(0, TLBData, 16, assocFull, Page4K)},
	0x5A: {tlbEntry(1, TLBData, 32, nway(4), Page2M, Page4M)},
	0x5B: {tlbEntry(1, TLBData, 64, assocFull, Page4K, Page4M)},
	0x5C: {tlbEntry(1, TLBData, 128, assocFull, Page4K, Page4M)},
	0x5D: {tlbEntry(1, TLBData, 256, assocFull, Page4K, Page4M)},
	0x60: {cacheEntry(1, CacheData, 16, 64, nway(8), CacheSectored)},
	0x61: {tlbEntry(1, TLBInstruction, 48, assocFull, Page4K)},
	0x63: {tlbEntry(1, TLBData, 32, nway(4), Page2M, Page4M), tlbEntry(1, TLBData, 4, nway(4), Page1G)},
	0x64: {tlbEntry(1, TLBData, 512, nway(4), Page4K)},
	0x66: {cacheEntry(1, CacheData, 8, 64, nway(4), CacheSectored)},
	0x67: {cacheEntry(1, CacheData, 16, 64, nway(4), CacheSectored)},
	0x68: {cacheEntry(1, CacheData, 32, 64, nway(4), CacheSectored)},
	0x6A: {tlbEntry(0, TLBData, 64, nway(8), Page4K)},
	0x6B: {tlbEntry(1, TLBData, 256, nway(8), Page4K)},
	0x6C: {tlbEntry(1, TLBData, 128, nway(8), Page2M, Page4M)},
	0x6D: {tlbEntry(1, TLBData, 16, assocFull, Page1G)},
	0x70: {cacheEntry(1, CacheTrace, 12, 0, nway(8), 0)},
	0x71: {cacheEntry(1, CacheTrace, 16, 0, nway(8), 0)},
	0x72: {cacheEntry(1, CacheTrace, 32, 0, nway(8), 0)},
	0x73: {cacheEntry(1, CacheTrace, 64, 0, nway(8), 0)},
	0x76: {tlbEntry(1, TLBInstruction, 8, assocFull, Page2M, Page4M)},
	0x77: {cacheEntry(1, CacheInstruction, 16, 64, nway(4), CacheSectored)},
	0x78: {cacheEntry(2, CacheUnified, 1024, 64, nway(4), 0)},
	0x79: {cacheEntry(2, CacheUnified, 128, 64, nway(8), CacheSectored)},
	0x7A: {cacheEntry(2, CacheUnified, 256, 64, nway(4), CacheSectored)},
	0x7B: {cacheEntry(2, CacheUnified, 512, 64, nway(4), CacheSectored)},
	0x7C: {cacheEntry(2, CacheUnified, 1024, 64, nway(4), CacheSectored)},
	0x7D: {cacheEntry(2, CacheUnified, 2048, 64, nway(8), 0)},
	0x7E: {cacheEntry(2, CacheUnified, 256, 128, nway(8), CacheSectored)},
	0x7F: {cacheEntry(2, CacheUnified, 512, 64, nway(2), 0)},
	0x80: {cacheEntry(2, CacheUnified, 512, 64, nway(8), 0)},
	0x81: {cacheEntry(2, CacheUnified, 128, 32, nway(8), 0)},
	0x82: {cacheEntry(2, CacheUnified, 256, 32, nway(8), 0)},
	0x83: {cacheEntry(2, CacheUnified, 512, 32, nway(8), 0)},
	0x84: {cacheEntry(2, CacheUnified, 1024, 32, nway(8), 0)},
	0x85: {cacheEntry(2, CacheUnified, 2048, 32, nway(8), 0)},
	0x86: {cacheEntry(2, CacheUnified, 512, 64, nway(4), 0)},
	0x87: {cacheEntry(2, CacheUnified, 1024, 64, nway(8), 0)},
	0x88: {cacheEntry(3, CacheUnified, 2048, 64, nway(4), 0)},
	0x89: {cacheEntry(3, CacheUnified, 4096, 64, nway(4), 0)},
	0x8A: {cacheEntry(3, CacheUnified, 8192, 64, nway(4), 0)},
	0x8D: {cacheEntry(3, CacheUnified, 3072, 128, nway(12), 0)},
	0xA0: {tlbEntry(1, TLBData, 32, assocFull, Page4K)},
	0xB0: {tlbEntry(1, TLBInstruction, 128, nway(4), Page4K)},
	0xB1: {tlbEntry(1, TLBInstruction, 8, nway(4), Page2M), tlbEntry(1, TLBInstruction, 4, nway(4), Page4M)},
	0xB2: {tlbEntry(1, TLBData, 64, nway(4), Page4K)},
	0xB3: {tlbEntry(1, TLBData, 128, nway(4), Page4K)},
	0xB4: {tlbEntry(1, TLBData, 256, nway(4), Page4K)},
	0xB5: {tlbEntry(1, TLBInstruction, 64, nway(8), Page4K)},
	0xB6: {tlbEntry(1, TLBInstruction, 128, nway(8), Page4K)},
	0xBA: {tlbEntry(1, TLBData, 64, nway(4), Page4K)},
	0xC0: {tlbEntry(1, TLBData, 8, nway(4), Page4K, Page4M)},
	0xC1: {tlbEntry(2, TLBUnified, 1024, nway(8), Page4K, Page2M)},
	0xC2: {tlbEntry(1, TLBData, 16, nway(4), Page2M, Page4M)},
	0xC3: {tlbEntry(2, TLBUnified, 1536, nway(6), Page4K, Page2M), tlbEntry(2, TLBUnified, 16, nway(4), Page1G)},
	0xC4: {tlbEntry(1, TLBData, 32, nway(4), Page2M, Page4M)},
	0xCA: {tlbEntry(2, TLBUnified, 512, nway(4), Page4K)},
	0xD0: {cacheEntry(3, CacheUnified, 512, 64, nway(4), 0)},
	0xD1: {cacheEntry(3, CacheUnified, 1024, 64, nway(4), 0)},
	0xD2: {cacheEntry(3, CacheUnified, 2048, 64, nway(4), 0)},
	0xD6: {cacheEntry(3, CacheUnified, 1024, 64, nway(8), 0)},
	0xD7: {cacheEntry(3, CacheUnified, 2048, 64, nway(8), 0)},
	0xD8: {cacheEntry(3, CacheUnified, 4096, 64, nway(8), 0)},
	0xDC: {cacheEntry(3, CacheUnified, 1536, 64, nway(12), 0)},
	0xDD: {cacheEntry(3, CacheUnified, 3072, 64, nway(12), 0)},
	0xDE: {cacheEntry(3, CacheUnified, 6144, 64, nway(12), 0)},
	0xE2: {cacheEntry(3, CacheUnified, 2048, 64, nway(16), 0)},
	0xE3: {cacheEntry(3, CacheUnified, 4096, 64, nway(16), 0)},
	0xE4: {cacheEntry(3, CacheUnified, 8192, 64, nway(16), 0)},
	0xEA: {cacheEntry(3, CacheUnified, 12288, 64, nway(24), 0)},
	0xEB: {cacheEntry(3, CacheUnified, 18432, 64, nway(24), 0)},
	0xEC: {cacheEntry(3, CacheUnified, 24576, 64, nway(24), 0)},
}

// leaf2Bytes collects the descriptor bytes of leaf 0x2 outputs. The low byte of eax is
// the iteration count and registers with bit 31 set carry no descriptors.
func leaf2Bytes(leaves []RawLeaf) mapset.Set[byte] {
	set := mapset.NewThreadUnsafeSet[byte]()
	for _, l := range leaves {
		for i, reg := range []uint32{l.EAX, l.EBX, l.ECX, l.EDX} {
			if bit(reg, 31) {
				continue
			}
			b := regBytes(reg)
			if i == 0 {
				b = b[1:]
			}
			for _, c := range b {
				set.Add(c)
			}
		}
	}
	return set
}

// decodeLegacyDescriptors decodes leaf 0x2. Each distinct byte is decoded once, in
// ascending order, so repeated bytes never produce repeated records.
func decodeLegacyDescriptors(leaves []RawLeaf) ([]CacheDescriptor, []TLBDescriptor) {
	codes := leaf2Bytes(leaves).ToSlice()
	slices.Sort(codes)
	var caches []CacheDescriptor
	var tlbs []TLBDescriptor
	for _, code := range codes {
		switch code {
		case descriptorNull, descriptorNoHigherCache, descriptorPrefetch64, descriptorPrefetch128, descriptorUseLeaf4:
			continue
		}
		entries, ok := leaf2Descriptors[code]
		if !ok {
			slog.Debug("unknown leaf 2 descriptor", slog.String("code", hex32(uint32(code))))
			continue
		}
		for _, e := range entries {
			if !e.tlb {
				caches = append(caches, CacheDescriptor{
					Level:         e.level,
					Type:          e.cacheType,
					Size:          uint64(e.size) * 1024,
					LineSize:      e.line,
					Associativity: e.assoc,
					Flags:         e.flags,
					SourceLeaf:    0x2,
				})
				continue
			}
			for _, ps := range e.pages {
				tlbs = append(tlbs, TLBDescriptor{
					Level:         e.level,
					Type:          e.tlbType,
					PageSize:      ps,
					Entries:       e.size,
					Associativity: e.assoc,
					SourceLeaf:    0x2,
				})
			}
		}
	}
	return caches, tlbs
}
