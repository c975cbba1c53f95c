// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package cpuid

import (
	"log/slog"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

// FeatureFlag is one set feature bit.
type FeatureFlag struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Leaf        uint32   `json:"leaf"`
	Subleaf     uint32   `json:"subleaf"`
	Register    Register `json:"register"`
	Bit         uint     `json:"bit"`
	Group       string   `json:"group"`
}

type featureBit struct {
	bit         uint
	vendors     vendorSet
	name        string
	description string
}

type featureTable struct {
	leaf       uint32
	subleaf    uint32
	register   Register
	title      string
	hypervisor Hypervisor
	mask       uint32
	bits       []featureBit
}

// decodeFeatures scans every feature table against the leaves present in the capture.
func decodeFeatures(leaves map[leafKey]RawLeaf, vendor Vendor, hv Hypervisor) []FeatureFlag {
	var flags []FeatureFlag
	for _, table := range featureTables {
		if table.hypervisor != HypervisorNone && table.hypervisor != hv {
			continue
		}
		l, ok := leaves[leafKey{table.leaf, table.subleaf}]
		if !ok {
			continue
		}
		flags = append(flags, table.decode(l, vendor)...)
	}
	return flags
}

func (t featureTable) decode(l RawLeaf, vendor Vendor) []FeatureFlag {
	value := l.Register(t.register) &^ t.mask
	var flags []FeatureFlag
	var accounted uint32
	for _, fb := range t.bits {
		if !bit(value, fb.bit) {
			continue
		}
		accounted |= 1 << fb.bit
		if !fb.vendors.has(vendor) {
			continue
		}
		flags = append(flags, FeatureFlag{
			Name:        fb.name,
			Description: fb.description,
			Leaf:        t.leaf,
			Subleaf:     t.subleaf,
			Register:    t.register,
			Bit:         fb.bit,
			Group:       t.title,
		})
	}
	if unaccounted := value &^ accounted; unaccounted != 0 {
		slog.Debug("unaccounted feature bits",
			slog.String("leaf", hex32(t.leaf)),
			slog.Uint64("subleaf", uint64(t.subleaf)),
			slog.String("register", t.register.String()),
			slog.String("bits", hex32(unaccounted)))
	}
	return flags
}

// KnownFeatureNames returns the short name of every flag any table can report, sorted.
func KnownFeatureNames() []string {
	names := mapset.NewThreadUnsafeSet[string]()
	for _, table := range featureTables {
		for _, fb := range table.bits {
			names.Add(fb.name)
		}
	}
	sorted := names.ToSlice()
	slices.Sort(sorted)
	return sorted
}
