// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package cpuid

import (
	"log/slog"

	"github.com/pkg/errors"
)

// Range bases. A base is valid when its leaf reports a maximum within base..base+0xFFFF.
const (
	StandardBase   uint32 = 0x0000_0000
	HypervisorBase uint32 = 0x4000_0000
	ExtendedBase   uint32 = 0x8000_0000
	TransmetaBase  uint32 = 0x8086_0000
	CentaurBase    uint32 = 0xC000_0000

	rangeSpan = 0xFFFF
)

// DefaultSubleafCap bounds subleaf iteration for leaves whose terminator might never appear.
const DefaultSubleafCap = 64

type subleafPolicy func(w *Walker, leaf uint32) error

// subleafPolicies lists the subleaf-indexed leaves and how to find their last subleaf.
// Leaves not listed are queried at subleaf 0 only.
var subleafPolicies = map[uint32]subleafPolicy{
	0x0000_0004: walkCacheLeaf(true),
	0x0000_0007: walkIndexed,
	0x0000_000B: walkTopologyLeaf,
	0x0000_000D: walkXSaveLeaf,
	0x0000_000F: walkBitLimited(EDX),
	0x0000_0010: walkBitLimited(EBX),
	0x0000_0012: walkSGXLeaf,
	0x0000_0014: walkIndexed,
	0x0000_0017: walkIndexed,
	0x0000_0018: walkIndexed,
	0x0000_001B: walkPCONFIGLeaf,
	0x0000_001D: walkIndexed,
	0x0000_001F: walkTopologyLeaf,
	0x0000_0020: walkIndexed,
	0x0000_0023: walkUntilZero,
	0x8000_001D: walkCacheLeaf(false),
	0x8000_0020: walkFixed(1),
	0x8000_0026: walkTopologyLeaf,
}

// Walker enumerates every leaf and subleaf a processor reports through a Source.
// A Walker is single use and not safe for concurrent use.
type Walker struct {
	source     Source
	subleafCap uint32
	queried    map[leafKey]RawLeaf
	recorded   map[leafKey]bool
	leaves     []RawLeaf
	vendor     Vendor
}

// NewWalker returns a Walker reading from src.
func NewWalker(src Source) *Walker {
	return &Walker{
		source:     src,
		subleafCap: DefaultSubleafCap,
		queried:    make(map[leafKey]RawLeaf),
		recorded:   make(map[leafKey]bool),
	}
}

// Walk queries the source and returns the leaves in enumeration order.
func Walk(src Source) ([]RawLeaf, error) {
	return NewWalker(src).Walk()
}

// Walk runs the enumeration. It aborts on the first QueryFailure.
func (w *Walker) Walk() ([]RawLeaf, error) {
	leaf0, err := w.query(StandardBase, 0)
	if err != nil {
		return nil, err
	}
	w.vendor = ParseVendor(vendorFromLeaf0(leaf0))
	if err := w.walkRange(StandardBase); err != nil {
		return nil, err
	}
	if w.hypervisorPresent() {
		if err := w.walkRange(HypervisorBase); err != nil {
			return nil, err
		}
	}
	if err := w.walkRange(ExtendedBase); err != nil {
		return nil, err
	}
	switch w.vendor {
	case VendorTransmeta:
		if err := w.walkRange(TransmetaBase); err != nil {
			return nil, err
		}
	case VendorCentaur, VendorZhaoxin:
		if err := w.walkRange(CentaurBase); err != nil {
			return nil, err
		}
	}
	slog.Debug("cpuid walk complete", slog.String("vendor", w.vendor.String()), slog.Int("leaves", len(w.leaves)))
	return w.leaves, nil
}

func (w *Walker) walkRange(base uint32) error {
	baseLeaf, err := w.query(base, 0)
	if err != nil {
		return err
	}
	max := baseLeaf.EAX
	if !validRange(base, max) {
		// the base is kept so the dump shows what the processor answered
		slog.Debug("cpuid range not supported", slog.String("base", hex32(base)), slog.String("max", hex32(max)))
		w.record(baseLeaf)
		return nil
	}
	for leaf := base; ; leaf++ {
		if policy, ok := subleafPolicies[leaf]; ok {
			if err := policy(w, leaf); err != nil {
				return err
			}
		} else if _, err := w.queryRecord(leaf, 0); err != nil {
			return err
		}
		if leaf == max {
			break
		}
	}
	return nil
}

func validRange(base, max uint32) bool {
	return max >= base && max <= base+rangeSpan
}

func (w *Walker) hypervisorPresent() bool {
	l, ok := w.queried[leafKey{1, 0}]
	return ok && bit(l.ECX, 31)
}

// query runs a query once; repeated queries are answered from the first result.
func (w *Walker) query(leaf, subleaf uint32) (RawLeaf, error) {
	key := leafKey{leaf, subleaf}
	if l, ok := w.queried[key]; ok {
		return l, nil
	}
	l, err := w.source.Query(leaf, subleaf)
	if err != nil {
		var qf *QueryFailure
		if errors.As(err, &qf) {
			return RawLeaf{}, err
		}
		return RawLeaf{}, &QueryFailure{Leaf: leaf, Subleaf: subleaf, Err: err}
	}
	l.Leaf, l.Subleaf = leaf, subleaf
	w.queried[key] = l
	return l, nil
}

func (w *Walker) record(l RawLeaf) {
	if w.recorded[l.key()] {
		return
	}
	w.recorded[l.key()] = true
	w.leaves = append(w.leaves, l)
}

func (w *Walker) queryRecord(leaf, subleaf uint32) (RawLeaf, error) {
	l, err := w.query(leaf, subleaf)
	if err != nil {
		return l, err
	}
	w.record(l)
	return l, nil
}

// featureBit checks a bit of an already enumerated leaf without issuing a new query.
func (w *Walker) featureBit(leaf uint32, reg Register, n uint) bool {
	l, ok := w.queried[leafKey{leaf, 0}]
	return ok && bit(l.Register(reg), n)
}

// walkCacheLeaf handles leaves 0x4 and 0x8000001D, terminated by a zero cache type.
func walkCacheLeaf(recordTerminator bool) subleafPolicy {
	return func(w *Walker, leaf uint32) error {
		if leaf == 0x8000_001D && !w.featureBit(0x8000_0001, ECX, 22) {
			_, err := w.queryRecord(leaf, 0)
			return err
		}
		for sub := uint32(0); sub < w.subleafCap; sub++ {
			l, err := w.query(leaf, sub)
			if err != nil {
				return err
			}
			if bits(l.EAX, 4, 0) == 0 {
				if recordTerminator || sub == 0 {
					w.record(l)
				}
				return nil
			}
			w.record(l)
		}
		slog.Warn("cpuid subleaf cap reached", slog.String("leaf", hex32(leaf)))
		return nil
	}
}

// walkIndexed handles leaves whose subleaf 0 eax holds the last valid subleaf.
func walkIndexed(w *Walker, leaf uint32) error {
	first, err := w.queryRecord(leaf, 0)
	if err != nil {
		return err
	}
	last := first.EAX
	if last >= w.subleafCap {
		slog.Warn("cpuid subleaf count capped", slog.String("leaf", hex32(leaf)), slog.Uint64("reported", uint64(last)))
		last = w.subleafCap - 1
	}
	for sub := uint32(1); sub <= last; sub++ {
		if _, err := w.queryRecord(leaf, sub); err != nil {
			return err
		}
	}
	return nil
}

// walkTopologyLeaf handles x2APIC topology leaves, terminated by a zero level type.
func walkTopologyLeaf(w *Walker, leaf uint32) error {
	if _, err := w.queryRecord(leaf, 0); err != nil {
		return err
	}
	for sub := uint32(1); sub < w.subleafCap; sub++ {
		l, err := w.query(leaf, sub)
		if err != nil {
			return err
		}
		if bits(l.ECX, 15, 8) == 0 {
			return nil
		}
		w.record(l)
	}
	slog.Warn("cpuid subleaf cap reached", slog.String("leaf", hex32(leaf)))
	return nil
}

func walkXSaveLeaf(w *Walker, leaf uint32) error {
	first, err := w.queryRecord(leaf, 0)
	if err != nil {
		return err
	}
	if first.EAX == 0 {
		return nil
	}
	return walkZeroTerminated(w, leaf, 1)
}

func walkUntilZero(w *Walker, leaf uint32) error {
	if _, err := w.queryRecord(leaf, 0); err != nil {
		return err
	}
	return walkZeroTerminated(w, leaf, 1)
}

func walkZeroTerminated(w *Walker, leaf, start uint32) error {
	for sub := start; sub < w.subleafCap; sub++ {
		l, err := w.query(leaf, sub)
		if err != nil {
			return err
		}
		if l.IsZero() {
			return nil
		}
		w.record(l)
	}
	return nil
}

// walkBitLimited reports subleaf 1 only when bit 1 of reg in subleaf 0 is set.
func walkBitLimited(reg Register) subleafPolicy {
	return func(w *Walker, leaf uint32) error {
		first, err := w.queryRecord(leaf, 0)
		if err != nil {
			return err
		}
		if bit(first.Register(reg), 1) {
			_, err = w.queryRecord(leaf, 1)
		}
		return err
	}
}

func walkFixed(last uint32) subleafPolicy {
	return func(w *Walker, leaf uint32) error {
		for sub := uint32(0); sub <= last; sub++ {
			if _, err := w.queryRecord(leaf, sub); err != nil {
				return err
			}
		}
		return nil
	}
}

func walkSGXLeaf(w *Walker, leaf uint32) error {
	if _, err := w.queryRecord(leaf, 0); err != nil {
		return err
	}
	if !w.featureBit(0x7, EBX, 2) {
		return nil
	}
	for sub := uint32(1); sub < w.subleafCap; sub++ {
		l, err := w.query(leaf, sub)
		if err != nil {
			return err
		}
		if sub > 1 && bits(l.EAX, 3, 0) == 0 {
			return nil
		}
		w.record(l)
	}
	return nil
}

func walkPCONFIGLeaf(w *Walker, leaf uint32) error {
	if _, err := w.queryRecord(leaf, 0); err != nil {
		return err
	}
	if !w.featureBit(0x7, EDX, 18) {
		return nil
	}
	for sub := uint32(1); sub < w.subleafCap; sub++ {
		l, err := w.query(leaf, sub)
		if err != nil {
			return err
		}
		if bits(l.EAX, 11, 0) == 0 {
			return nil
		}
		w.record(l)
	}
	return nil
}
