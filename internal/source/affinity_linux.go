// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package source

import (
	"log/slog"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// PinThread locks the calling goroutine to its OS thread and restricts that thread to
// cpu. The returned func restores the previous affinity and unlocks the thread.
func PinThread(cpu int) (func(), error) {
	runtime.LockOSThread()
	var previous unix.CPUSet
	if err := unix.SchedGetaffinity(0, &previous); err != nil {
		runtime.UnlockOSThread()
		return nil, errors.Wrap(err, "failed to read thread affinity")
	}
	var set unix.CPUSet
	set.Set(cpu)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		runtime.UnlockOSThread()
		return nil, errors.Wrapf(err, "failed to pin thread to CPU %d", cpu)
	}
	return func() {
		if err := unix.SchedSetaffinity(0, &previous); err != nil {
			slog.Warn("failed to restore thread affinity", slog.Int("cpu", cpu), slog.String("error", err.Error()))
		}
		runtime.UnlockOSThread()
	}, nil
}
