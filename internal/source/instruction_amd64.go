// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package source

import "cpuid/internal/cpuid"

func cpuidex(leaf, subleaf uint32) (eax, ebx, ecx, edx uint32)

const instructionSupported = true

func execute(leaf, subleaf uint32) (cpuid.RawLeaf, error) {
	eax, ebx, ecx, edx := cpuidex(leaf, subleaf)
	return cpuid.RawLeaf{Leaf: leaf, Subleaf: subleaf, EAX: eax, EBX: ebx, ECX: ecx, EDX: edx}, nil
}
