// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestPinThreadRestoresAffinity(t *testing.T) {
	var allowed unix.CPUSet
	require.NoError(t, unix.SchedGetaffinity(0, &allowed))
	cpu := -1
	for i := 0; i < len(allowed)*64; i++ {
		if allowed.IsSet(i) {
			cpu = i
			break
		}
	}
	require.GreaterOrEqual(t, cpu, 0)

	release, err := PinThread(cpu)
	require.NoError(t, err)
	var pinned unix.CPUSet
	require.NoError(t, unix.SchedGetaffinity(0, &pinned))
	assert.Equal(t, 1, pinned.Count())
	assert.True(t, pinned.IsSet(cpu))
	release()

	var restored unix.CPUSet
	require.NoError(t, unix.SchedGetaffinity(0, &restored))
	assert.Equal(t, allowed, restored)
}

func TestPinThreadUnknownCPU(t *testing.T) {
	_, err := PinThread(1 << 20)
	assert.ErrorContains(t, err, "failed to pin thread to CPU 1048576")
}
