// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

//go:build !linux

package source

import (
	"runtime"

	"cpuid/internal/cpuid"

	"github.com/pkg/errors"
)

func openDevice(cpu int) (cpuid.Source, func(), error) {
	return nil, nil, errors.Errorf("the cpuid device of CPU %d is not available on %s", cpu, runtime.GOOS)
}
