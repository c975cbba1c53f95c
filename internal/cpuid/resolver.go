// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package cpuid

import (
	"cmp"
	"fmt"
	"slices"
)

const (
	leafLegacyDescriptors uint32 = 0x0000_0002
	leafDeterministic     uint32 = 0x0000_0004
	leafAddressTranslate  uint32 = 0x0000_0018
	leafAMDL1             uint32 = 0x8000_0005
	leafAMDL2             uint32 = 0x8000_0006
	leafAMD1GTLB          uint32 = 0x8000_0019
	leafAMDCacheTopology  uint32 = 0x8000_001D
)

// tier is a set of source leaves of equal priority, decoded in listed order.
type tier []uint32

// resolverTiers holds, per vendor, the cache and TLB sources from highest to lowest priority.
var resolverTiers = map[Vendor][]tier{
	VendorIntel: {
		{leafAddressTranslate},
		{leafDeterministic},
		{leafLegacyDescriptors},
	},
	VendorAMD: {
		{leafAMDCacheTopology},
		{leafAMDL1, leafAMDL2, leafAMD1GTLB},
		{leafLegacyDescriptors},
	},
	VendorHygon: {
		{leafAMDCacheTopology},
		{leafAMDL1, leafAMDL2, leafAMD1GTLB},
		{leafLegacyDescriptors},
	},
	VendorCentaur: {
		{leafDeterministic},
		{leafAMDL1, leafAMDL2},
		{leafLegacyDescriptors},
	},
	VendorZhaoxin: {
		{leafDeterministic},
		{leafAMDL1, leafAMDL2},
		{leafLegacyDescriptors},
	},
}

var fallbackTiers = []tier{
	{leafDeterministic},
	{leafAMDCacheTopology},
	{leafAMDL1, leafAMDL2, leafAMD1GTLB},
	{leafLegacyDescriptors},
}

// tiersFor returns the priority tiers of a vendor. Without legacy descriptors the leaf 0x2
// source is left out entirely.
func tiersFor(v Vendor, legacy bool) []tier {
	tiers, ok := resolverTiers[v]
	if !ok {
		tiers = fallbackTiers
	}
	out := make([]tier, 0, len(tiers))
	for _, t := range tiers {
		var kept tier
		for _, leaf := range t {
			if leaf == leafLegacyDescriptors && !legacy {
				continue
			}
			kept = append(kept, leaf)
		}
		if len(kept) > 0 {
			out = append(out, kept)
		}
	}
	return out
}

type sourceDecoder func(idx *leafIndex, leaf uint32) ([]CacheDescriptor, []TLBDescriptor)

var sourceDecoders = map[uint32]sourceDecoder{
	leafLegacyDescriptors: func(idx *leafIndex, leaf uint32) ([]CacheDescriptor, []TLBDescriptor) {
		return decodeLegacyDescriptors(idx.subleaves(leaf))
	},
	leafDeterministic: func(idx *leafIndex, leaf uint32) ([]CacheDescriptor, []TLBDescriptor) {
		return decodeDeterministicCache(idx.subleaves(leaf)), nil
	},
	leafAMDCacheTopology: func(idx *leafIndex, leaf uint32) ([]CacheDescriptor, []TLBDescriptor) {
		return decodeDeterministicCache(idx.subleaves(leaf)), nil
	},
	leafAddressTranslate: func(idx *leafIndex, leaf uint32) ([]CacheDescriptor, []TLBDescriptor) {
		return nil, decodeAddressTranslation(idx.subleaves(leaf))
	},
	leafAMDL1: func(idx *leafIndex, leaf uint32) ([]CacheDescriptor, []TLBDescriptor) {
		if l, ok := idx.get(leaf, 0); ok {
			return decodeAMDL1(l)
		}
		return nil, nil
	},
	leafAMDL2: func(idx *leafIndex, leaf uint32) ([]CacheDescriptor, []TLBDescriptor) {
		if l, ok := idx.get(leaf, 0); ok {
			return decodeAMDL2(l)
		}
		return nil, nil
	},
	leafAMD1GTLB: func(idx *leafIndex, leaf uint32) ([]CacheDescriptor, []TLBDescriptor) {
		if l, ok := idx.get(leaf, 0); ok {
			return nil, decodeAMD1GTLB(l)
		}
		return nil, nil
	},
}

type cacheKey struct {
	level int
	typ   CacheType
}

type tlbKey struct {
	level int
	typ   TLBType
	page  PageSize
}

// resolveHierarchy decodes the vendor's sources in priority order and keeps, for every key,
// the first usable record. Fields are never merged across records.
func resolveHierarchy(idx *leafIndex, vendor Vendor, legacy bool) ([]CacheDescriptor, []TLBDescriptor, []DecodeAnomaly) {
	var caches []CacheDescriptor
	var tlbs []TLBDescriptor
	var anomalies []DecodeAnomaly
	seenCaches := make(map[cacheKey]bool)
	seenTLBs := make(map[tlbKey]bool)
	for _, t := range tiersFor(vendor, legacy) {
		for _, leaf := range t {
			if !idx.has(leaf) {
				continue
			}
			cs, ts := sourceDecoders[leaf](idx, leaf)
			for _, c := range cs {
				key := cacheKey{c.Level, c.Type}
				if seenCaches[key] || c.empty() {
					continue
				}
				if c.inconsistent() {
					anomalies = append(anomalies, DecodeAnomaly{
						Leaf:    c.SourceLeaf,
						Subleaf: c.SourceSubleaf,
						Message: fmt.Sprintf("L%d %s cache has size %d with %s associativity", c.Level, c.Type, c.Size, c.Associativity),
					})
					continue
				}
				seenCaches[key] = true
				caches = append(caches, c)
			}
			for _, tl := range ts {
				key := tlbKey{tl.Level, tl.Type, tl.PageSize}
				if seenTLBs[key] || tl.empty() {
					continue
				}
				if tl.inconsistent() {
					anomalies = append(anomalies, DecodeAnomaly{
						Leaf:    tl.SourceLeaf,
						Subleaf: tl.SourceSubleaf,
						Message: fmt.Sprintf("L%d %s %s TLB has %d entries with %s associativity", tl.Level, tl.Type, tl.PageSize, tl.Entries, tl.Associativity),
					})
					continue
				}
				seenTLBs[key] = true
				tlbs = append(tlbs, tl)
			}
		}
	}
	slices.SortStableFunc(caches, func(a, b CacheDescriptor) int {
		return cmp.Or(cmp.Compare(a.Level, b.Level), cmp.Compare(a.Type, b.Type))
	})
	slices.SortStableFunc(tlbs, func(a, b TLBDescriptor) int {
		return cmp.Or(cmp.Compare(a.Level, b.Level), cmp.Compare(a.Type, b.Type), cmp.Compare(a.PageSize, b.PageSize))
	})
	return caches, tlbs, anomalies
}
