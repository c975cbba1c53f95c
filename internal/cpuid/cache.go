// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package cpuid

import (
	"fmt"
	"strings"
)

// CacheType classifies a cache by what it holds.
type CacheType int

const (
	CacheData CacheType = iota + 1
	CacheInstruction
	CacheUnified
	CacheTrace
)

func (t CacheType) String() string {
	switch t {
	case CacheData:
		return "Data"
	case CacheInstruction:
		return "Instruction"
	case CacheUnified:
		return "Unified"
	case CacheTrace:
		return "Trace"
	}
	return "Unknown"
}

// TLBType classifies a TLB by the accesses it translates.
type TLBType int

const (
	TLBData TLBType = iota + 1
	TLBInstruction
	TLBUnified
	TLBLoadOnly
	TLBStoreOnly
)

func (t TLBType) String() string {
	switch t {
	case TLBData:
		return "Data"
	case TLBInstruction:
		return "Instruction"
	case TLBUnified:
		return "Unified"
	case TLBLoadOnly:
		return "Load Only"
	case TLBStoreOnly:
		return "Store Only"
	}
	return "Unknown"
}

// PageSize is the page size class a TLB descriptor covers.
type PageSize int

const (
	Page4K PageSize = iota + 1
	Page2M
	Page4M
	Page1G
)

func (p PageSize) String() string {
	switch p {
	case Page4K:
		return "4K"
	case Page2M:
		return "2M"
	case Page4M:
		return "4M"
	case Page1G:
		return "1G"
	}
	return "Unknown"
}

// AssocKind is the shape of an associativity value.
type AssocKind int

const (
	// AssocNone is the zero or disabled encoding.
	AssocNone AssocKind = iota
	AssocDirect
	AssocNWay
	AssocFull
	// AssocUnknown means present, with unspecified associativity.
	AssocUnknown
)

// Associativity describes how a cache or TLB maps addresses to entries. Ways is set
// only for AssocNWay.
type Associativity struct {
	Kind AssocKind `json:"kind"`
	Ways int       `json:"ways,omitempty"`
}

var (
	assocNone    = Associativity{Kind: AssocNone}
	assocDirect  = Associativity{Kind: AssocDirect}
	assocFull    = Associativity{Kind: AssocFull}
	assocUnknown = Associativity{Kind: AssocUnknown}
)

func nway(n int) Associativity {
	return Associativity{Kind: AssocNWay, Ways: n}
}

// waysAssociativity maps a plain way count as reported by the deterministic leaves.
func waysAssociativity(ways uint32, full bool) Associativity {
	switch {
	case full:
		return assocFull
	case ways == 0:
		return assocNone
	case ways == 1:
		return assocDirect
	}
	return nway(int(ways))
}

// IsZero reports the disabled encoding.
func (a Associativity) IsZero() bool {
	return a.Kind == AssocNone
}

func (a Associativity) String() string {
	switch a.Kind {
	case AssocNone:
		return "none"
	case AssocDirect:
		return "direct-mapped"
	case AssocNWay:
		return fmt.Sprintf("%d-way", a.Ways)
	case AssocFull:
		return "fully associative"
	}
	return "unknown"
}

// CacheFlags are properties reported alongside a cache descriptor.
type CacheFlags uint

const (
	CacheSelfInitializing CacheFlags = 1 << iota
	CacheFullyAssociative
	CacheInclusive
	// CacheWBINVDNotInclusive means WBINVD does not guarantee lower level invalidation.
	CacheWBINVDNotInclusive
	CacheComplexIndexing
	CacheSectored
	CacheECC
)

var cacheFlagNames = []struct {
	flag CacheFlags
	name string
}{
	{CacheSelfInitializing, "self-initializing"},
	{CacheFullyAssociative, "fully associative"},
	{CacheInclusive, "inclusive"},
	{CacheWBINVDNotInclusive, "wbinvd not inclusive"},
	{CacheComplexIndexing, "complex indexing"},
	{CacheSectored, "sectored"},
	{CacheECC, "ECC"},
}

func (f CacheFlags) String() string {
	var names []string
	for _, fn := range cacheFlagNames {
		if f&fn.flag != 0 {
			names = append(names, fn.name)
		}
	}
	return strings.Join(names, ", ")
}

// CacheDescriptor describes one cache. Size is in bytes, except for trace caches where it
// counts micro-ops. Zero valued geometry fields mean the source leaf does not report them.
type CacheDescriptor struct {
	Level         int           `json:"level"`
	Type          CacheType     `json:"type"`
	Size          uint64        `json:"size"`
	LineSize      int           `json:"line_size"`
	LinesPerTag   int           `json:"lines_per_tag,omitempty"`
	Associativity Associativity `json:"associativity"`
	Sets          int           `json:"sets,omitempty"`
	Partitions    int           `json:"partitions,omitempty"`
	SharedBy      int           `json:"shared_by,omitempty"`
	Flags         CacheFlags    `json:"flags"`
	SourceLeaf    uint32        `json:"source_leaf"`
	SourceSubleaf uint32        `json:"source_subleaf"`
}

// TLBDescriptor describes one TLB for a single page size class.
type TLBDescriptor struct {
	Level         int           `json:"level"`
	Type          TLBType       `json:"type"`
	PageSize      PageSize      `json:"page_size"`
	Entries       int           `json:"entries"`
	Associativity Associativity `json:"associativity"`
	SharedBy      int           `json:"shared_by,omitempty"`
	SourceLeaf    uint32        `json:"source_leaf"`
	SourceSubleaf uint32        `json:"source_subleaf"`
}

func (c CacheDescriptor) empty() bool {
	return c.Size == 0 && c.Associativity.IsZero()
}

func (c CacheDescriptor) inconsistent() bool {
	return (c.Size == 0) != c.Associativity.IsZero()
}

func (t TLBDescriptor) empty() bool {
	return t.Entries == 0 && t.Associativity.IsZero()
}

func (t TLBDescriptor) inconsistent() bool {
	return (t.Entries == 0) != t.Associativity.IsZero()
}

var deterministicCacheTypes = map[uint32]CacheType{
	1: CacheData,
	2: CacheInstruction,
	3: CacheUnified,
}

// decodeDeterministicCache decodes the subleaves of leaf 0x4 or 0x8000001D, which share a
// layout. Decoding stops at the first null cache type.
func decodeDeterministicCache(subleaves []RawLeaf) []CacheDescriptor {
	var caches []CacheDescriptor
	for _, l := range subleaves {
		code := bits(l.EAX, 4, 0)
		if code == 0 {
			break
		}
		typ, ok := deterministicCacheTypes[code]
		if !ok {
			continue
		}
		ways := bits(l.EBX, 31, 22) + 1
		partitions := bits(l.EBX, 21, 12) + 1
		line := bits(l.EBX, 11, 0) + 1
		sets := l.ECX + 1
		var flags CacheFlags
		if bit(l.EAX, 8) {
			flags |= CacheSelfInitializing
		}
		full := bit(l.EAX, 9)
		if full {
			flags |= CacheFullyAssociative
		}
		if bit(l.EDX, 0) {
			flags |= CacheWBINVDNotInclusive
		}
		if bit(l.EDX, 1) {
			flags |= CacheInclusive
		}
		if bit(l.EDX, 2) {
			flags |= CacheComplexIndexing
		}
		caches = append(caches, CacheDescriptor{
			Level:         int(bits(l.EAX, 7, 5)),
			Type:          typ,
			Size:          uint64(ways) * uint64(partitions) * uint64(line) * uint64(sets),
			LineSize:      int(line),
			Associativity: waysAssociativity(ways, full),
			Sets:          int(sets),
			Partitions:    int(partitions),
			SharedBy:      int(bits(l.EAX, 25, 14)) + 1,
			Flags:         flags,
			SourceLeaf:    l.Leaf,
			SourceSubleaf: l.Subleaf,
		})
	}
	return caches
}

var translationTLBTypes = map[uint32]TLBType{
	1: TLBData,
	2: TLBInstruction,
	3: TLBUnified,
	4: TLBLoadOnly,
	5: TLBStoreOnly,
}

var translationPageSizes = []struct {
	bit  uint
	size PageSize
}{
	{0, Page4K},
	{1, Page2M},
	{2, Page4M},
	{3, Page1G},
}

// decodeAddressTranslation decodes leaf 0x18. Invalid subleaves are skipped, not
// terminating, since valid ones may follow.
func decodeAddressTranslation(subleaves []RawLeaf) []TLBDescriptor {
	var tlbs []TLBDescriptor
	for _, l := range subleaves {
		typ, ok := translationTLBTypes[bits(l.EDX, 4, 0)]
		if !ok {
			continue
		}
		ways := bits(l.EBX, 31, 16)
		full := bit(l.EDX, 8)
		for _, ps := range translationPageSizes {
			if !bit(l.EBX, ps.bit) {
				continue
			}
			tlbs = append(tlbs, TLBDescriptor{
				Level:         int(bits(l.EDX, 7, 5)),
				Type:          typ,
				PageSize:      ps.size,
				Entries:       int(ways * l.ECX),
				Associativity: waysAssociativity(ways, full),
				SharedBy:      int(bits(l.EDX, 25, 14)) + 1,
				SourceLeaf:    l.Leaf,
				SourceSubleaf: l.Subleaf,
			})
		}
	}
	return tlbs
}
