package serve

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"cpuid/internal/cpuid"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSystem(t *testing.T) *cpuid.System {
	leaves := []cpuid.RawLeaf{
		{Leaf: 0x0, EAX: 0xB, EBX: 0x756e6547, ECX: 0x6c65746e, EDX: 0x49656e69},
		{Leaf: 0x1, EAX: 0x000606A6, EDX: 0x1},
		{Leaf: 0x2, EAX: 0x00000001, EBX: 0x0000005A},
		{Leaf: 0x4, Subleaf: 0, EAX: 0x121, EBX: 11<<22 | 63, ECX: 63},
		{Leaf: 0x4, Subleaf: 1},
		{Leaf: 0xB, Subleaf: 0, EAX: 1, EBX: 2, ECX: 0x100, EDX: 3},
		{Leaf: 0xB, Subleaf: 1, EAX: 6, EBX: 32, ECX: 0x201, EDX: 3},
		{Leaf: 0xB, Subleaf: 2, ECX: 2, EDX: 3},
	}
	c, err := cpuid.NewCapture(leaves)
	require.NoError(t, err)
	system, err := cpuid.NewSystem([]cpuid.CPU{{ID: 3, Capture: c}})
	require.NoError(t, err)
	return system
}

func scrape(t *testing.T, registry *prometheus.Registry) string {
	server := newServer(":0", registry)
	recorder := httptest.NewRecorder()
	server.Handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	body, err := io.ReadAll(recorder.Body)
	require.NoError(t, err)
	return string(body)
}

func TestExporterUpdate(t *testing.T) {
	registry := prometheus.NewRegistry()
	e := newExporter(registry)
	e.update(testSystem(t), 1700000000)

	body := scrape(t, registry)
	assert.Contains(t, body, `cpuid_cache_size_bytes{cpu="3",level="1",source="00000004:00",type="Data"} 49152`)
	assert.Contains(t, body, `cpuid_tlb_entries{cpu="3",level="1",page_size="2M",source="00000002:00",type="Data"} 32`)
	assert.Contains(t, body, `cpuid_feature{cpu="3",leaf="00000001:00",name="FPU",register="EDX"} 1`)
	assert.Contains(t, body, `cpuid_topology_shift{cpu="3",level="0",type="SMT"} 1`)
	assert.Contains(t, body, `cpuid_topology_shift{cpu="3",level="1",type="Core"} 6`)
	assert.Contains(t, body, `cpuid_decode_anomalies{cpu="3"} 0`)
	assert.Contains(t, body, "cpuid_last_refresh_timestamp_seconds 1.7e+09")
}

func TestExporterUpdateReplacesValues(t *testing.T) {
	registry := prometheus.NewRegistry()
	e := newExporter(registry)
	e.update(testSystem(t), 1)

	c, err := cpuid.NewCapture([]cpuid.RawLeaf{
		{Leaf: 0x0, EAX: 0x1, EBX: 0x756e6547, ECX: 0x6c65746e, EDX: 0x49656e69},
		{Leaf: 0x1, EAX: 0x000606A6},
	})
	require.NoError(t, err)
	system, err := cpuid.NewSystem([]cpuid.CPU{{ID: 0, Capture: c}})
	require.NoError(t, err)
	e.update(system, 2)

	body := scrape(t, registry)
	assert.NotContains(t, body, `cpu="3"`)
	assert.Contains(t, body, `cpuid_decode_anomalies{cpu="0"} 0`)
}

func TestNewExporterAlreadyRegistered(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := newExporter(registry)
	second := newExporter(registry)
	assert.Same(t, first.cacheSize, second.cacheSize)
	assert.Same(t, first.anomalies, second.anomalies)
}
