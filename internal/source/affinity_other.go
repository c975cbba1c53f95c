// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

//go:build !linux

package source

import (
	"runtime"

	"github.com/pkg/errors"
)

// PinThread is only implemented on Linux.
func PinThread(cpu int) (func(), error) {
	return nil, errors.Errorf("pinning a thread to CPU %d is not supported on %s", cpu, runtime.GOOS)
}
