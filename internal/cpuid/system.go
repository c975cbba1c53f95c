// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package cpuid

import (
	"slices"

	"github.com/pkg/errors"
)

// CPU is the capture of one logical processor.
type CPU struct {
	ID      int
	Capture *Capture
}

// System is the set of captured logical processors, ordered by CPU number.
type System struct {
	cpus     []CPU
	topology PackageTopology
	inferred bool
}

// NewSystem orders the processors and infers the package topology from the first one.
func NewSystem(cpus []CPU) (*System, error) {
	if len(cpus) == 0 {
		return nil, errors.New("no processors captured")
	}
	sorted := slices.Clone(cpus)
	slices.SortFunc(sorted, func(a, b CPU) int { return a.ID - b.ID })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].ID == sorted[i-1].ID {
			return nil, errors.Errorf("CPU %d captured more than once", sorted[i].ID)
		}
	}
	s := &System{cpus: sorted}
	s.topology, s.inferred = inferPackageTopology(sorted[0].Capture, len(sorted))
	return s, nil
}

// CPUs returns the processors ordered by CPU number.
func (s *System) CPUs() []CPU { return slices.Clone(s.cpus) }

// CPU returns the capture of one processor.
func (s *System) CPU(id int) (*Capture, bool) {
	for _, c := range s.cpus {
		if c.ID == id {
			return c.Capture, true
		}
	}
	return nil, false
}

// Topology returns the inferred package topology. The second value is false when the
// topology leaves do not allow an inference.
func (s *System) Topology() (PackageTopology, bool) {
	return s.topology, s.inferred
}
