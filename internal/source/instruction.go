// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package source

import (
	"log/slog"
	"runtime"

	"cpuid/internal/cpuid"

	kcpuid "github.com/klauspost/cpuid"
	"github.com/pkg/errors"
)

// InstructionSource executes the CPUID instruction on the calling thread. Callers pin
// the thread with PinThread first so that every query runs on the same processor.
type InstructionSource struct {
	cpu int
}

// Query executes CPUID with eax=leaf and ecx=subleaf.
func (s InstructionSource) Query(leaf, subleaf uint32) (cpuid.RawLeaf, error) {
	return execute(leaf, subleaf)
}

func openInstruction(cpu int) (cpuid.Source, func(), error) {
	if !instructionSupported {
		return nil, nil, errors.Errorf("the cpuid instruction is not available on %s", runtime.GOARCH)
	}
	release, err := PinThread(cpu)
	if err != nil {
		return nil, nil, err
	}
	return InstructionSource{cpu: cpu}, release, nil
}

// CrossCheckBrand compares the decoded brand string with the one the runtime detected at
// start up and logs a warning when they differ.
func CrossCheckBrand(c *cpuid.Capture) bool {
	detected := kcpuid.CPU.BrandName
	if detected == "" || c.BrandString() == "" {
		return true
	}
	if detected != c.BrandString() {
		slog.Warn("brand string differs from runtime detection",
			slog.String("decoded", c.BrandString()),
			slog.String("detected", detected))
		return false
	}
	return true
}
