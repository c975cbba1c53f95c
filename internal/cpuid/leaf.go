// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package cpuid enumerates CPUID leaves from a raw leaf source and decodes them into a
// vendor-normalized description of a processor: feature flags, the cache and TLB
// hierarchy, and the x2APIC topology.
package cpuid

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Register names one of the four CPUID output registers.
type Register int

const (
	EAX Register = iota
	EBX
	ECX
	EDX
)

func (r Register) String() string {
	switch r {
	case EAX:
		return "EAX"
	case EBX:
		return "EBX"
	case ECX:
		return "ECX"
	case EDX:
		return "EDX"
	}
	return fmt.Sprintf("Register(%d)", int(r))
}

// RawLeaf is the output of one CPUID query.
type RawLeaf struct {
	Leaf    uint32 `json:"leaf" yaml:"leaf"`
	Subleaf uint32 `json:"subleaf" yaml:"subleaf"`
	EAX     uint32 `json:"eax" yaml:"eax"`
	EBX     uint32 `json:"ebx" yaml:"ebx"`
	ECX     uint32 `json:"ecx" yaml:"ecx"`
	EDX     uint32 `json:"edx" yaml:"edx"`
}

// Register returns the value of the named output register.
func (l RawLeaf) Register(r Register) uint32 {
	switch r {
	case EAX:
		return l.EAX
	case EBX:
		return l.EBX
	case ECX:
		return l.ECX
	case EDX:
		return l.EDX
	}
	return 0
}

// IsZero reports whether all four output registers are zero.
func (l RawLeaf) IsZero() bool {
	return l.EAX == 0 && l.EBX == 0 && l.ECX == 0 && l.EDX == 0
}

// Bytes returns the 16 output bytes in eax, ebx, ecx, edx order, little-endian.
func (l RawLeaf) Bytes() []byte {
	return regBytes(l.EAX, l.EBX, l.ECX, l.EDX)
}

// String formats the leaf the way the text dump records it, without the ascii column.
func (l RawLeaf) String() string {
	return fmt.Sprintf("CPUID %08x:%02x = %08x %08x %08x %08x", l.Leaf, l.Subleaf, l.EAX, l.EBX, l.ECX, l.EDX)
}

type leafKey struct {
	leaf    uint32
	subleaf uint32
}

func (l RawLeaf) key() leafKey {
	return leafKey{l.Leaf, l.Subleaf}
}

// Source executes CPUID queries. Implementations may read hardware or replay a dump.
type Source interface {
	Query(leaf, subleaf uint32) (RawLeaf, error)
}

// QueryFailure reports that a source could not execute a query at all. It aborts the
// capture of the processor the source belongs to.
type QueryFailure struct {
	Leaf    uint32
	Subleaf uint32
	Err     error
}

func (e *QueryFailure) Error() string {
	return fmt.Sprintf("cpuid query %08x:%02x failed: %v", e.Leaf, e.Subleaf, e.Err)
}

func (e *QueryFailure) Unwrap() error {
	return e.Err
}

// IsQueryFailure reports whether err, or any error it wraps, is a QueryFailure.
func IsQueryFailure(err error) bool {
	var qf *QueryFailure
	return errors.As(err, &qf)
}

// bytesToASCII turns register bytes into a string, dropping NULs.
func bytesToASCII(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		if c == 0 {
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

func regBytes(regs ...uint32) []byte {
	out := make([]byte, 0, 4*len(regs))
	for _, reg := range regs {
		out = append(out, byte(reg), byte(reg>>8), byte(reg>>16), byte(reg>>24))
	}
	return out
}

// bits extracts the field [lo, hi] of v.
func bits(v uint32, hi, lo uint) uint32 {
	return (v >> lo) & ((1 << (hi - lo + 1)) - 1)
}

func bit(v uint32, n uint) bool {
	return v&(1<<n) != 0
}

func hex32(v uint32) string {
	return fmt.Sprintf("%#08x", v)
}
