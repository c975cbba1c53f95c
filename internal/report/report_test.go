package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"encoding/json"
	"testing"

	"cpuid/internal/cpuid"
	"cpuid/internal/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// icxCapture is an Ice Lake server signature with a 48 KB L1D and a 16-way 32 MB L3.
func icxCapture(t *testing.T) *cpuid.Capture {
	leaves := []cpuid.RawLeaf{
		{Leaf: 0x0, EAX: 0x4, EBX: 0x756e6547, ECX: 0x6c65746e, EDX: 0x49656e69},
		{Leaf: 0x1, EAX: 0x000606A6, EDX: 0x1},
		{Leaf: 0x4, Subleaf: 0, EAX: 0x121, EBX: 11<<22 | 63, ECX: 63},
		{Leaf: 0x4, Subleaf: 1, EAX: 0x163, EBX: 15<<22 | 63, ECX: 32767},
		{Leaf: 0x4, Subleaf: 2},
	}
	c, err := cpuid.NewCapture(leaves)
	require.NoError(t, err)
	return c
}

func decodeTables(t *testing.T, cpu int) CPUTables {
	data := table.Data{CPU: cpu, Capture: icxCapture(t)}
	return CPUTables{CPU: cpu, Tables: table.ProcessTables(GetTables(DecodeTableNames), data)}
}

func TestCreateTextReport(t *testing.T) {
	out, err := Create(FormatTxt, []CPUTables{decodeTables(t, 0)})
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "Processor\n=========\n")
	assert.Contains(t, text, "Microarchitecture")
	assert.Contains(t, text, "ICX")
	assert.Contains(t, text, "48 KB")
	assert.Contains(t, text, "32 MB")
	assert.Contains(t, text, "16-way")
	assert.Contains(t, text, "The L3 cache reports 16 ways, ICX parts have 12.")
	assert.Contains(t, text, "No decode anomalies.")
	assert.Contains(t, text, "The topology leaves do not describe the package.")
	assert.NotContains(t, text, "CPU 0\n#####")
}

func TestCreateTextReportMultipleCPUs(t *testing.T) {
	out, err := Create(FormatTxt, []CPUTables{decodeTables(t, 0), decodeTables(t, 1)})
	require.NoError(t, err)
	assert.Contains(t, string(out), "CPU 0\n#####\n")
	assert.Contains(t, string(out), "CPU 1\n#####\n")
}

func TestCreateJsonReport(t *testing.T) {
	out, err := Create(FormatJson, []CPUTables{decodeTables(t, 3)})
	require.NoError(t, err)
	var parsed map[string]map[string][]map[string]string
	require.NoError(t, json.Unmarshal(out, &parsed))
	caches := parsed["CPU 3"][CacheTableName]
	require.Len(t, caches, 2)
	assert.Equal(t, "L1", caches[0]["Level"])
	assert.Equal(t, "Data", caches[0]["Type"])
	assert.Equal(t, "48 KB", caches[0]["Size"])
	assert.Equal(t, "00000004:00", caches[0]["Source"])
	assert.Equal(t, "FPU", parsed["CPU 3"][FeatureTableName][0]["Name"])
}

func TestCreateXlsxReport(t *testing.T) {
	out, err := Create(FormatXlsx, []CPUTables{decodeTables(t, 0), decodeTables(t, 2)})
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"CPU 0", "CPU 2"}, f.GetSheetList())
	name, err := f.GetCellValue("CPU 2", "A1")
	require.NoError(t, err)
	assert.Equal(t, ProcessorTableName, name)
	vendor, err := f.GetCellValue("CPU 2", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Intel", vendor)
}

func TestCreateRejectsUnevenFields(t *testing.T) {
	bad := table.TableValues{
		TableDefinition: table.TableDefinition{Name: "bad"},
		Fields:          []table.Field{{Name: "a", Values: []string{"1"}}, {Name: "b"}},
	}
	_, err := Create(FormatTxt, []CPUTables{{Tables: []table.TableValues{bad}}})
	assert.Error(t, err)
}

func TestCreateUnknownFormat(t *testing.T) {
	_, err := Create("html", nil)
	assert.Error(t, err)
}

func TestRawLeafTable(t *testing.T) {
	values := table.GetValuesForTable(GetTableByName(RawLeafTableName), table.Data{Capture: icxCapture(t)})
	require.Len(t, values.Fields, 5)
	assert.Equal(t, "00000001:00", values.Fields[0].Values[1])
	assert.Equal(t, "0x000606A6", values.Fields[1].Values[1])
}

func TestPackageTopologyTable(t *testing.T) {
	leaves := []cpuid.RawLeaf{
		{Leaf: 0x0, EAX: 0xB, EBX: 0x756e6547, ECX: 0x6c65746e, EDX: 0x49656e69},
		{Leaf: 0xB, Subleaf: 0, EAX: 1, EBX: 2, ECX: 1<<8 | 0, EDX: 0x45},
		{Leaf: 0xB, Subleaf: 1, EAX: 6, EBX: 32, ECX: 2<<8 | 1, EDX: 0x45},
	}
	c, err := cpuid.NewCapture(leaves)
	require.NoError(t, err)
	var all []cpuid.CPU
	for i := range 64 {
		all = append(all, cpuid.CPU{ID: i, Capture: c})
	}
	system, err := cpuid.NewSystem(all)
	require.NoError(t, err)

	values := table.GetValuesForTable(GetTableByName(PackageTopologyTableName), table.Data{CPU: 0, Capture: c, System: system})
	index, err := table.GetFieldIndex("Location", values)
	require.NoError(t, err)
	assert.Equal(t, "socket 1, core 2, thread 1", values.Fields[index].Values[0])
	index, err = table.GetFieldIndex("Sockets", values)
	require.NoError(t, err)
	assert.Equal(t, "2", values.Fields[index].Values[0])
}

func TestBorderedTable(t *testing.T) {
	out := BorderedTable([]string{"Name", "Value"}, [][]string{{"a", "1"}})
	assert.Contains(t, out, "Name")
	assert.Contains(t, out, "|")
}
