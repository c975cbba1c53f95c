// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package source

import (
	"cpuid/internal/cpuid"
	"cpuid/internal/dump"

	"github.com/pkg/errors"
)

// ErrNotCaptured is the cause of a replay QueryFailure for a leaf the dump does not hold.
var ErrNotCaptured = errors.New("leaf not present in dump")

type replayKey struct {
	leaf, subleaf uint32
}

// ReplaySource answers queries from the leaves captured for one processor.
type ReplaySource struct {
	cpu    int
	leaves map[replayKey]cpuid.RawLeaf
}

// NewReplaySource indexes the leaves of p.
func NewReplaySource(p dump.Processor) *ReplaySource {
	r := &ReplaySource{cpu: p.CPU, leaves: make(map[replayKey]cpuid.RawLeaf, len(p.Leaves))}
	for _, l := range p.Leaves {
		r.leaves[replayKey{l.Leaf, l.Subleaf}] = l
	}
	return r
}

// Query returns the captured leaf, or a QueryFailure wrapping ErrNotCaptured.
func (r *ReplaySource) Query(leaf, subleaf uint32) (cpuid.RawLeaf, error) {
	if l, ok := r.leaves[replayKey{leaf, subleaf}]; ok {
		return l, nil
	}
	return cpuid.RawLeaf{}, &cpuid.QueryFailure{Leaf: leaf, Subleaf: subleaf, Err: ErrNotCaptured}
}

// ReplayOpener opens replay sources over the processors of d.
func ReplayOpener(d dump.Dump) Opener {
	return func(cpu int) (cpuid.Source, func(), error) {
		p, ok := d.Processor(cpu)
		if !ok {
			return nil, nil, errors.Errorf("CPU %d not present in dump", cpu)
		}
		return NewReplaySource(p), func() {}, nil
	}
}
