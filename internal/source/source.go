// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package source provides raw CPUID leaf sources: the Linux cpuid device, the CPUID
// instruction pinned to a processor, and replay of a captured dump. It also collects
// walks from many processors concurrently.
package source

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"cpuid/internal/cpuid"
	"cpuid/internal/util"

	"github.com/pkg/errors"
)

// Kind selects how leaves are read from a live processor.
type Kind string

const (
	KindAuto        Kind = "auto"
	KindDevice      Kind = "device"
	KindInstruction Kind = "instruction"
)

// Kinds lists the accepted source kinds.
var Kinds = []string{string(KindAuto), string(KindDevice), string(KindInstruction)}

// Opener binds a source to one logical processor. The returned release func undoes the
// binding. Both must be called on the same goroutine.
type Opener func(cpu int) (cpuid.Source, func(), error)

const (
	deviceTemplate = "/dev/cpu/%d/cpuid"
	onlineCPUsPath = "/sys/devices/system/cpu/online"
)

// OpenerFor returns the opener for a source kind. KindAuto prefers the cpuid device and
// falls back to the instruction when the device is not available.
func OpenerFor(kind Kind) (Opener, error) {
	switch kind {
	case KindDevice:
		return openDevice, nil
	case KindInstruction:
		return openInstruction, nil
	case KindAuto:
		if exists, _ := util.FileExists(fmt.Sprintf(deviceTemplate, 0)); exists {
			slog.Debug("using cpuid device", slog.String("path", fmt.Sprintf(deviceTemplate, 0)))
			return openDevice, nil
		}
		slog.Debug("cpuid device not found, using the cpuid instruction")
		return openInstruction, nil
	}
	return nil, fmt.Errorf("unsupported source kind: %s, expected one of %s", kind, strings.Join(Kinds, ", "))
}

// OnlineCPUs lists the logical processors the kernel reports as online.
func OnlineCPUs() ([]int, error) {
	return readCPUList(onlineCPUsPath)
}

func readCPUList(path string) ([]int, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, errors.Wrap(err, "failed to read online CPU list")
	}
	cpus, err := util.ParseCPUList(string(data))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return cpus, nil
}
