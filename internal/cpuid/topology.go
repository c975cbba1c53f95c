// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package cpuid

import (
	"fmt"
)

// TopologyType is the domain a topology level describes.
type TopologyType int

const (
	TopologySMT TopologyType = iota + 1
	TopologyCore
	TopologyModule
	TopologyTile
	TopologyDie
	TopologyDieGroup
)

func (t TopologyType) String() string {
	switch t {
	case TopologySMT:
		return "SMT"
	case TopologyCore:
		return "Core"
	case TopologyModule:
		return "Module"
	case TopologyTile:
		return "Tile"
	case TopologyDie:
		return "Die"
	case TopologyDieGroup:
		return "DieGroup"
	}
	return fmt.Sprintf("Reserved(%d)", int(t))
}

// TopologyLevel is one subleaf of an x2APIC topology leaf. Shift is the number of x2APIC
// ID bits to shift right to reach the next level.
type TopologyLevel struct {
	Level        int          `json:"level"`
	Type         TopologyType `json:"type"`
	Shift        uint         `json:"shift"`
	LogicalCount int          `json:"logical_count"`
	X2APICID     uint32       `json:"x2apic_id"`
	SourceLeaf   uint32       `json:"source_leaf"`
}

// topologyLeaf picks the V2 extended topology leaf when it reports levels.
func topologyLeaf(idx *leafIndex) uint32 {
	if l, ok := idx.get(0x1F, 0); ok && bits(l.ECX, 15, 8) != 0 {
		return 0x1F
	}
	return 0xB
}

// decodeTopology decodes leaf 0x1F or 0xB. Levels whose shift decreases are kept and
// reported as anomalies.
func decodeTopology(idx *leafIndex) ([]TopologyLevel, []DecodeAnomaly) {
	leaf := topologyLeaf(idx)
	var levels []TopologyLevel
	var anomalies []DecodeAnomaly
	for _, l := range idx.subleaves(leaf) {
		typ := bits(l.ECX, 15, 8)
		if typ == 0 {
			break
		}
		level := TopologyLevel{
			Level:        int(bits(l.ECX, 7, 0)),
			Type:         TopologyType(typ),
			Shift:        uint(bits(l.EAX, 4, 0)),
			LogicalCount: int(bits(l.EBX, 15, 0)),
			X2APICID:     l.EDX,
			SourceLeaf:   leaf,
		}
		if n := len(levels); n > 0 && level.Shift < levels[n-1].Shift {
			anomalies = append(anomalies, DecodeAnomaly{
				Leaf:    leaf,
				Subleaf: l.Subleaf,
				Message: fmt.Sprintf("%s level shift %d is below the previous level shift %d", level.Type, level.Shift, levels[n-1].Shift),
			})
		}
		levels = append(levels, level)
	}
	return levels, anomalies
}

// PackageTopology is the socket/core/thread arrangement inferred for a whole system.
type PackageTopology struct {
	Sockets        int `json:"sockets"`
	CoresPerSocket int `json:"cores_per_socket"`
	ThreadsPerCore int `json:"threads_per_core"`

	threadShift uint
	coreShift   uint
}

// Valid reports whether every count could be inferred.
func (t PackageTopology) Valid() bool {
	return t.Sockets != 0 && t.CoresPerSocket != 0 && t.ThreadsPerCore != 0
}

func (t PackageTopology) String() string {
	return fmt.Sprintf("%d logical CPUs (%d sockets, %d cores per socket, %d threads per core)",
		t.Sockets*t.CoresPerSocket*t.ThreadsPerCore, t.Sockets, t.CoresPerSocket, t.ThreadsPerCore)
}

// Location splits an x2APIC ID into socket, core and thread numbers.
func (t PackageTopology) Location(x2apicID uint32) (socket, core, thread uint32) {
	thread = x2apicID & ^(^uint32(0) << t.threadShift)
	core = (x2apicID & ^(^uint32(0) << t.coreShift)) >> t.threadShift
	socket = x2apicID >> t.coreShift
	return socket, core, thread
}

// inferPackageTopology derives the package arrangement from one processor's leaf 0xB levels
// and the number of logical processors in the system.
func inferPackageTopology(c *Capture, cpuCount int) (PackageTopology, bool) {
	first, ok := c.Leaf(0xB, 0)
	if !ok || (first.EAX == 0 && first.EBX == 0) {
		return PackageTopology{}, false
	}
	var threads, cores int
	var threadShift, coreShift uint
	var sawThread, sawCore bool
	for _, l := range c.Subleaves(0xB) {
		if l.EAX == 0 && l.EBX == 0 {
			continue
		}
		switch bits(l.ECX, 15, 8) {
		case uint32(TopologySMT):
			threads = int(bits(l.EBX, 15, 0))
			threadShift = uint(bits(l.EAX, 4, 0))
			sawThread = true
		case uint32(TopologyCore):
			cores = int(bits(l.EBX, 15, 0))
			coreShift = uint(bits(l.EAX, 4, 0))
			sawCore = true
		}
	}
	if sawThread && !sawCore {
		cores = 1
		coreShift = threadShift
	}
	if cores == 0 || threads == 0 {
		return PackageTopology{}, false
	}
	if cores > threads {
		cores /= threads
	}
	t := PackageTopology{
		Sockets:        cpuCount / (cores * threads),
		CoresPerSocket: cores,
		ThreadsPerCore: threads,
		threadShift:    threadShift,
		coreShift:      coreShift,
	}
	return t, t.Valid()
}
