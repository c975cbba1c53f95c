package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// table_defs.go defines the tables used for generating reports

import (
	"fmt"
	"log/slog"
	"strconv"

	"cpuid/internal/cpuid"
	"cpuid/internal/cpus"
	"cpuid/internal/table"
)

const (
	ProcessorTableName       = "Processor"
	PackageTopologyTableName = "Package Topology"
	TopologyTableName        = "Topology Levels"
	CacheTableName           = "Cache"
	TLBTableName             = "TLB"
	FeatureTableName         = "Features"
	AnomalyTableName         = "Decode Anomalies"
	RawLeafTableName         = "Raw Leaves"
)

var tableDefinitions = map[string]table.TableDefinition{
	ProcessorTableName: {
		Name:         ProcessorTableName,
		HasRows:      false,
		FieldsFunc:   processorTableValues,
		InsightsFunc: processorTableInsights},
	PackageTopologyTableName: {
		Name:        PackageTopologyTableName,
		HasRows:     false,
		NoDataFound: "The topology leaves do not describe the package.",
		FieldsFunc:  packageTopologyTableValues},
	TopologyTableName: {
		Name:        TopologyTableName,
		HasRows:     true,
		NoDataFound: "Leaves 0x0B and 0x1F are not reported.",
		FieldsFunc:  topologyTableValues},
	CacheTableName: {
		Name:       CacheTableName,
		HasRows:    true,
		FieldsFunc: cacheTableValues},
	TLBTableName: {
		Name:       TLBTableName,
		HasRows:    true,
		FieldsFunc: tlbTableValues},
	FeatureTableName: {
		Name:       FeatureTableName,
		HasRows:    true,
		FieldsFunc: featureTableValues},
	AnomalyTableName: {
		Name:        AnomalyTableName,
		HasRows:     true,
		NoDataFound: "No decode anomalies.",
		FieldsFunc:  anomalyTableValues},
	RawLeafTableName: {
		Name:       RawLeafTableName,
		HasRows:    true,
		FieldsFunc: rawLeafTableValues},
}

// DecodeTableNames lists the tables of a decode report, in report order.
var DecodeTableNames = []string{
	ProcessorTableName,
	PackageTopologyTableName,
	TopologyTableName,
	CacheTableName,
	TLBTableName,
	FeatureTableName,
	AnomalyTableName,
}

// GetTableByName retrieves a table definition by its name.
func GetTableByName(name string) table.TableDefinition {
	if t, ok := tableDefinitions[name]; ok {
		return t
	}
	panic(fmt.Sprintf("table not found: %s", name))
}

// GetTables returns the definitions of the named tables, in the given order.
func GetTables(names []string) []table.TableDefinition {
	tables := make([]table.TableDefinition, 0, len(names))
	for _, name := range names {
		tables = append(tables, GetTableByName(name))
	}
	return tables
}

//
// define the fieldsFunc for each table
//

func processorTableValues(data table.Data) []table.Field {
	c := data.Capture
	sig := c.Signature()
	var eax uint32
	if l, ok := c.Leaf(1, 0); ok {
		eax = l.EAX
	}
	uarch, codeName := "", ""
	if cpu, err := cpus.GetCPU(cpus.NewIdentifier(c.VendorID(), sig.Family, sig.Model, sig.Stepping)); err == nil {
		uarch = cpu.MicroArchitecture
		codeName = cpu.CodeName
	} else {
		slog.Debug("microarchitecture not identified", slog.String("error", err.Error()))
	}
	sizes := c.AddressSizes()
	return []table.Field{
		{Name: "Vendor", Values: []string{c.Vendor().String()}},
		{Name: "Vendor ID", Values: []string{c.VendorID()}},
		{Name: "Brand", Values: []string{c.BrandString()}},
		{Name: "Signature", Values: []string{table.Hex(eax)}},
		{Name: "Family", Values: []string{strconv.Itoa(sig.Family)}},
		{Name: "Model", Values: []string{strconv.Itoa(sig.Model)}},
		{Name: "Stepping", Values: []string{strconv.Itoa(sig.Stepping)}},
		{Name: "Microarchitecture", Values: []string{uarch}},
		{Name: "Code Name", Values: []string{codeName}},
		{Name: "Hypervisor", Values: []string{c.Hypervisor().String()}},
		{Name: "Maximum Standard Leaf", Values: []string{maxLeaf(c, cpuid.StandardBase)}},
		{Name: "Maximum Extended Leaf", Values: []string{maxLeaf(c, cpuid.ExtendedBase)}},
		{Name: "Physical Address Bits", Values: []string{table.Optional(sizes.Physical)}},
		{Name: "Linear Address Bits", Values: []string{table.Optional(sizes.Linear)}},
		{Name: "Guest Physical Address Bits", Values: []string{table.Optional(sizes.GuestPhysical)}},
		{Name: "x2APIC ID", Values: []string{strconv.FormatUint(uint64(c.X2APICID()), 10)}},
	}
}

func processorTableInsights(data table.Data, tableValues table.TableValues) []table.Insight {
	insights := []table.Insight{}
	c := data.Capture
	if c.Hypervisor() != cpuid.HypervisorNone {
		insights = append(insights, table.Insight{
			Recommendation: "Compare with a bare metal capture before drawing conclusions about the hardware.",
			Justification:  fmt.Sprintf("The leaves were reported by the %s hypervisor.", c.Hypervisor()),
		})
	}
	uarchIndex, err := table.GetFieldIndex("Microarchitecture", tableValues)
	if err != nil || tableValues.Fields[uarchIndex].Values[0] == "" {
		return insights
	}
	cpu, err := cpus.GetCPUByMicroArchitecture(tableValues.Fields[uarchIndex].Values[0])
	if err != nil || cpu.CacheWayCount == 0 {
		return insights
	}
	if l3, ok := c.Cache(3, cpuid.CacheUnified); ok && l3.Associativity.Kind == cpuid.AssocNWay && l3.Associativity.Ways != cpu.CacheWayCount {
		insights = append(insights, table.Insight{
			Recommendation: "Check whether cache allocation or virtualization alters the reported L3 geometry.",
			Justification:  fmt.Sprintf("The L3 cache reports %d ways, %s parts have %d.", l3.Associativity.Ways, cpu.MicroArchitecture, cpu.CacheWayCount),
		})
	}
	return insights
}

func packageTopologyTableValues(data table.Data) []table.Field {
	if data.System == nil {
		return []table.Field{}
	}
	topo, ok := data.System.Topology()
	if !ok {
		return []table.Field{}
	}
	socket, core, thread := topo.Location(data.Capture.X2APICID())
	return []table.Field{
		{Name: "Logical CPUs", Values: []string{table.Count(len(data.System.CPUs()))}},
		{Name: "Sockets", Values: []string{strconv.Itoa(topo.Sockets)}},
		{Name: "Cores per Socket", Values: []string{strconv.Itoa(topo.CoresPerSocket)}},
		{Name: "Threads per Core", Values: []string{strconv.Itoa(topo.ThreadsPerCore)}},
		{Name: "Location", Values: []string{fmt.Sprintf("socket %d, core %d, thread %d", socket, core, thread)}},
	}
}

func topologyTableValues(data table.Data) []table.Field {
	fields := []table.Field{
		{Name: "Level"},
		{Name: "Type"},
		{Name: "Shift"},
		{Name: "Logical Processors"},
		{Name: "x2APIC ID"},
		{Name: "Source"},
	}
	for _, level := range data.Capture.Topology() {
		fields[0].Values = append(fields[0].Values, strconv.Itoa(level.Level))
		fields[1].Values = append(fields[1].Values, level.Type.String())
		fields[2].Values = append(fields[2].Values, strconv.FormatUint(uint64(level.Shift), 10))
		fields[3].Values = append(fields[3].Values, strconv.Itoa(level.LogicalCount))
		fields[4].Values = append(fields[4].Values, strconv.FormatUint(uint64(level.X2APICID), 10))
		fields[5].Values = append(fields[5].Values, table.LeafID(level.SourceLeaf, uint32(level.Level))) // #nosec G115
	}
	return fields
}

func cacheTableValues(data table.Data) []table.Field {
	fields := []table.Field{
		{Name: "Level"},
		{Name: "Type"},
		{Name: "Size"},
		{Name: "Line Size"},
		{Name: "Associativity"},
		{Name: "Sets"},
		{Name: "Partitions"},
		{Name: "Shared By"},
		{Name: "Flags"},
		{Name: "Source"},
	}
	for _, cache := range data.Capture.Caches() {
		fields[0].Values = append(fields[0].Values, "L"+strconv.Itoa(cache.Level))
		fields[1].Values = append(fields[1].Values, cache.Type.String())
		fields[2].Values = append(fields[2].Values, cacheSize(cache))
		fields[3].Values = append(fields[3].Values, table.Optional(cache.LineSize))
		fields[4].Values = append(fields[4].Values, cache.Associativity.String())
		fields[5].Values = append(fields[5].Values, table.Optional(cache.Sets))
		fields[6].Values = append(fields[6].Values, table.Optional(cache.Partitions))
		fields[7].Values = append(fields[7].Values, table.Optional(cache.SharedBy))
		fields[8].Values = append(fields[8].Values, cache.Flags.String())
		fields[9].Values = append(fields[9].Values, table.LeafID(cache.SourceLeaf, cache.SourceSubleaf))
	}
	return fields
}

func tlbTableValues(data table.Data) []table.Field {
	fields := []table.Field{
		{Name: "Level"},
		{Name: "Type"},
		{Name: "Page Size"},
		{Name: "Entries"},
		{Name: "Associativity"},
		{Name: "Shared By"},
		{Name: "Source"},
	}
	for _, tlb := range data.Capture.TLBs() {
		fields[0].Values = append(fields[0].Values, "L"+strconv.Itoa(tlb.Level))
		fields[1].Values = append(fields[1].Values, tlb.Type.String())
		fields[2].Values = append(fields[2].Values, tlb.PageSize.String())
		fields[3].Values = append(fields[3].Values, table.Count(tlb.Entries))
		fields[4].Values = append(fields[4].Values, tlb.Associativity.String())
		fields[5].Values = append(fields[5].Values, table.Optional(tlb.SharedBy))
		fields[6].Values = append(fields[6].Values, table.LeafID(tlb.SourceLeaf, tlb.SourceSubleaf))
	}
	return fields
}

func featureTableValues(data table.Data) []table.Field {
	fields := []table.Field{
		{Name: "Name"},
		{Name: "Group"},
		{Name: "Leaf"},
		{Name: "Register"},
		{Name: "Bit"},
		{Name: "Description"},
	}
	for _, flag := range data.Capture.Features() {
		fields[0].Values = append(fields[0].Values, flag.Name)
		fields[1].Values = append(fields[1].Values, flag.Group)
		fields[2].Values = append(fields[2].Values, table.LeafID(flag.Leaf, flag.Subleaf))
		fields[3].Values = append(fields[3].Values, flag.Register.String())
		fields[4].Values = append(fields[4].Values, strconv.FormatUint(uint64(flag.Bit), 10))
		fields[5].Values = append(fields[5].Values, flag.Description)
	}
	return fields
}

func anomalyTableValues(data table.Data) []table.Field {
	fields := []table.Field{
		{Name: "Leaf"},
		{Name: "Message"},
	}
	for _, a := range data.Capture.Anomalies() {
		fields[0].Values = append(fields[0].Values, table.LeafID(a.Leaf, a.Subleaf))
		fields[1].Values = append(fields[1].Values, a.Message)
	}
	return fields
}

func rawLeafTableValues(data table.Data) []table.Field {
	fields := []table.Field{
		{Name: "Leaf"},
		{Name: "EAX"},
		{Name: "EBX"},
		{Name: "ECX"},
		{Name: "EDX"},
	}
	for _, l := range data.Capture.Leaves() {
		fields[0].Values = append(fields[0].Values, table.LeafID(l.Leaf, l.Subleaf))
		fields[1].Values = append(fields[1].Values, table.Hex(l.EAX))
		fields[2].Values = append(fields[2].Values, table.Hex(l.EBX))
		fields[3].Values = append(fields[3].Values, table.Hex(l.ECX))
		fields[4].Values = append(fields[4].Values, table.Hex(l.EDX))
	}
	return fields
}

// maxLeaf is the maximum leaf reported for a range, empty when the range is absent.
func maxLeaf(c *cpuid.Capture, base uint32) string {
	if l, ok := c.Leaf(base, 0); ok {
		return table.Hex(l.EAX)
	}
	return ""
}

func cacheSize(cache cpuid.CacheDescriptor) string {
	if cache.Type == cpuid.CacheTrace {
		return table.Count(int(cache.Size)) + " µops" // #nosec G115
	}
	return table.Size(cache.Size)
}
