// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package cpuid

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
)

// DecodeAnomaly is a non-fatal inconsistency found while decoding.
type DecodeAnomaly struct {
	Leaf    uint32 `json:"leaf"`
	Subleaf uint32 `json:"subleaf"`
	Message string `json:"message"`
}

func (a DecodeAnomaly) String() string {
	return fmt.Sprintf("%08x:%02x: %s", a.Leaf, a.Subleaf, a.Message)
}

// Signature is the processor identification from leaf 1 eax. Family and Model hold the
// displayed values with the extended fields folded in.
type Signature struct {
	Family         int `json:"family"`
	Model          int `json:"model"`
	Stepping       int `json:"stepping"`
	BaseFamily     int `json:"base_family"`
	BaseModel      int `json:"base_model"`
	ExtendedFamily int `json:"extended_family"`
	ExtendedModel  int `json:"extended_model"`
	ProcessorType  int `json:"processor_type"`
}

func (s Signature) String() string {
	return fmt.Sprintf("family %#x, model %#x, stepping %#x", s.Family, s.Model, s.Stepping)
}

func decodeSignature(eax uint32, vendor Vendor) Signature {
	s := Signature{
		Stepping:       int(bits(eax, 3, 0)),
		BaseModel:      int(bits(eax, 7, 4)),
		BaseFamily:     int(bits(eax, 11, 8)),
		ProcessorType:  int(bits(eax, 13, 12)),
		ExtendedModel:  int(bits(eax, 19, 16)),
		ExtendedFamily: int(bits(eax, 27, 20)),
	}
	s.Family = s.BaseFamily
	if s.BaseFamily == 0xF {
		s.Family += s.ExtendedFamily
	}
	s.Model = s.BaseModel
	if s.BaseFamily == 0xF || (vendor == VendorIntel && s.BaseFamily == 0x6) {
		s.Model += s.ExtendedModel << 4
	}
	return s
}

// AddressSizes are the address widths from leaf 0x80000008 eax, in bits.
type AddressSizes struct {
	Physical      int `json:"physical"`
	Linear        int `json:"linear"`
	GuestPhysical int `json:"guest_physical,omitempty"`
}

// decodeBrandString assembles the 48 byte brand string. NULs are dropped and runs of
// whitespace collapse to one space.
func decodeBrandString(idx *leafIndex) string {
	var raw []byte
	for leaf := uint32(0x8000_0002); leaf <= 0x8000_0004; leaf++ {
		l, ok := idx.get(leaf, 0)
		if !ok {
			return ""
		}
		raw = append(raw, l.Bytes()...)
	}
	return strings.Join(strings.Fields(bytesToASCII(raw)), " ")
}

// leafIndex gives keyed and per-leaf access to a capture's raw leaves.
type leafIndex struct {
	byKey  map[leafKey]RawLeaf
	byLeaf map[uint32][]RawLeaf
}

func newLeafIndex(leaves []RawLeaf) (*leafIndex, error) {
	idx := &leafIndex{
		byKey:  make(map[leafKey]RawLeaf, len(leaves)),
		byLeaf: make(map[uint32][]RawLeaf),
	}
	for _, l := range leaves {
		if _, dup := idx.byKey[l.key()]; dup {
			return nil, errors.Errorf("duplicate leaf %08x:%02x", l.Leaf, l.Subleaf)
		}
		idx.byKey[l.key()] = l
		idx.byLeaf[l.Leaf] = append(idx.byLeaf[l.Leaf], l)
	}
	for _, subs := range idx.byLeaf {
		slices.SortFunc(subs, func(a, b RawLeaf) int {
			return int(int64(a.Subleaf) - int64(b.Subleaf))
		})
	}
	return idx, nil
}

func (idx *leafIndex) get(leaf, subleaf uint32) (RawLeaf, bool) {
	l, ok := idx.byKey[leafKey{leaf, subleaf}]
	return l, ok
}

func (idx *leafIndex) has(leaf uint32) bool {
	return len(idx.byLeaf[leaf]) > 0
}

func (idx *leafIndex) subleaves(leaf uint32) []RawLeaf {
	return idx.byLeaf[leaf]
}

type captureOptions struct {
	legacyDescriptors bool
}

// Option configures NewCapture.
type Option func(*captureOptions)

// WithLegacyDescriptors enables or disables decoding of leaf 0x2 descriptor bytes. They are
// enabled by default.
func WithLegacyDescriptors(enabled bool) Option {
	return func(o *captureOptions) {
		o.legacyDescriptors = enabled
	}
}

// Capture is the decoded description of one logical processor. It is immutable: every
// accessor returns a copy.
type Capture struct {
	vendor       Vendor
	vendorID     string
	hypervisor   Hypervisor
	signature    Signature
	brand        string
	addressSizes AddressSizes
	leaves       []RawLeaf
	index        *leafIndex
	features     []FeatureFlag
	featureIndex map[string]int
	caches       []CacheDescriptor
	tlbs         []TLBDescriptor
	topology     []TopologyLevel
	anomalies    []DecodeAnomaly
}

// NewCapture decodes a sequence of raw leaves. The only error is a repeated
// (leaf, subleaf) pair.
func NewCapture(leaves []RawLeaf, opts ...Option) (*Capture, error) {
	options := captureOptions{legacyDescriptors: true}
	for _, opt := range opts {
		opt(&options)
	}
	idx, err := newLeafIndex(leaves)
	if err != nil {
		return nil, err
	}
	c := &Capture{
		vendor:     VendorUnknown,
		hypervisor: HypervisorNone,
		leaves:     slices.Clone(leaves),
		index:      idx,
	}
	if l, ok := idx.get(0, 0); ok {
		c.vendorID = vendorFromLeaf0(l)
		c.vendor = ParseVendor(c.vendorID)
	}
	if l, ok := idx.get(1, 0); ok {
		c.signature = decodeSignature(l.EAX, c.vendor)
	}
	if l, ok := idx.get(HypervisorBase, 0); ok {
		c.hypervisor = hypervisorFromLeaf(l)
	}
	c.brand = decodeBrandString(idx)
	if l, ok := idx.get(0x8000_0008, 0); ok {
		c.addressSizes = AddressSizes{
			Physical:      int(bits(l.EAX, 7, 0)),
			Linear:        int(bits(l.EAX, 15, 8)),
			GuestPhysical: int(bits(l.EAX, 23, 16)),
		}
	}

	c.features = decodeFeatures(idx.byKey, c.vendor, c.hypervisor)
	c.featureIndex = make(map[string]int, len(c.features))
	for i, f := range c.features {
		if _, ok := c.featureIndex[f.Name]; !ok {
			c.featureIndex[f.Name] = i
		}
	}

	var cacheAnomalies, topologyAnomalies []DecodeAnomaly
	c.caches, c.tlbs, cacheAnomalies = resolveHierarchy(idx, c.vendor, options.legacyDescriptors)
	c.topology, topologyAnomalies = decodeTopology(idx)
	c.anomalies = append(cacheAnomalies, topologyAnomalies...)
	for _, a := range c.anomalies {
		slog.Warn("cpuid decode anomaly", slog.String("leaf", hex32(a.Leaf)), slog.Uint64("subleaf", uint64(a.Subleaf)), slog.String("message", a.Message))
	}
	return c, nil
}

// Vendor returns the decoded vendor.
func (c *Capture) Vendor() Vendor { return c.vendor }

// VendorID returns the raw leaf 0 vendor string.
func (c *Capture) VendorID() string { return c.vendorID }

func (c *Capture) Hypervisor() Hypervisor { return c.hypervisor }

func (c *Capture) Signature() Signature { return c.signature }

func (c *Capture) BrandString() string { return c.brand }

func (c *Capture) AddressSizes() AddressSizes { return c.addressSizes }

// Leaves returns the raw leaves in enumeration order.
func (c *Capture) Leaves() []RawLeaf { return slices.Clone(c.leaves) }

// Leaf returns one raw leaf.
func (c *Capture) Leaf(leaf, subleaf uint32) (RawLeaf, bool) {
	return c.index.get(leaf, subleaf)
}

// Subleaves returns every recorded subleaf of leaf, ordered by subleaf.
func (c *Capture) Subleaves(leaf uint32) []RawLeaf {
	return slices.Clone(c.index.subleaves(leaf))
}

// Features returns the set feature flags in leaf scan order.
func (c *Capture) Features() []FeatureFlag { return slices.Clone(c.features) }

// HasFeature reports whether a feature with the given short name is set.
func (c *Capture) HasFeature(name string) bool {
	_, ok := c.featureIndex[name]
	return ok
}

// Feature returns the first flag with the given short name.
func (c *Capture) Feature(name string) (FeatureFlag, bool) {
	i, ok := c.featureIndex[name]
	if !ok {
		return FeatureFlag{}, false
	}
	return c.features[i], true
}

// FeatureNames returns the short names of all set features.
func (c *Capture) FeatureNames() mapset.Set[string] {
	names := mapset.NewThreadUnsafeSetWithSize[string](len(c.featureIndex))
	for name := range c.featureIndex {
		names.Add(name)
	}
	return names
}

// Caches returns the resolved caches ordered by level then type.
func (c *Capture) Caches() []CacheDescriptor { return slices.Clone(c.caches) }

// TLBs returns the resolved TLBs ordered by level, type, then page size.
func (c *Capture) TLBs() []TLBDescriptor { return slices.Clone(c.tlbs) }

// Cache returns the resolved cache for a level and type.
func (c *Capture) Cache(level int, typ CacheType) (CacheDescriptor, bool) {
	for _, cache := range c.caches {
		if cache.Level == level && cache.Type == typ {
			return cache, true
		}
	}
	return CacheDescriptor{}, false
}

// Topology returns the x2APIC topology levels in subleaf order.
func (c *Capture) Topology() []TopologyLevel { return slices.Clone(c.topology) }

func (c *Capture) Anomalies() []DecodeAnomaly { return slices.Clone(c.anomalies) }

// X2APICID returns the processor's x2APIC ID from the topology leaf, falling back to the
// initial APIC ID of leaf 1.
func (c *Capture) X2APICID() uint32 {
	if len(c.topology) > 0 {
		return c.topology[0].X2APICID
	}
	if l, ok := c.index.get(1, 0); ok {
		return bits(l.EBX, 31, 24)
	}
	return 0
}
