package progress

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lockedBuffer lets the ticker goroutine and the test share a buffer.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestMultiSpinner(t *testing.T) {
	out := &lockedBuffer{}
	spinner := NewMultiSpinnerTo(out)
	require.NotNil(t, spinner)
	require.NoError(t, spinner.AddSpinner("CPU 0"))
	require.NoError(t, spinner.AddSpinner("CPU 1"))
	assert.Error(t, spinner.AddSpinner("CPU 0"))
	spinner.Start()

	assert.NoError(t, spinner.Status("CPU 0", "collecting"))
	assert.NoError(t, spinner.Status("CPU 1", "collection complete"))
	assert.Error(t, spinner.Status("CPU 2", "collecting"))
	spinner.Finish()

	assert.Contains(t, out.String(), "collecting")
	assert.Contains(t, out.String(), "collection complete")
	assert.NotContains(t, out.String(), "\x1b[1A")
}

func TestMultiSpinnerConcurrentStatus(t *testing.T) {
	spinner := NewMultiSpinnerTo(&lockedBuffer{})
	for i := range 8 {
		require.NoError(t, spinner.AddSpinner(fmt.Sprintf("CPU %d", i)))
	}
	spinner.Start()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, spinner.Status(fmt.Sprintf("CPU %d", i), "collection complete"))
		}()
	}
	wg.Wait()
	spinner.Finish()
	spinner.Finish()
}
