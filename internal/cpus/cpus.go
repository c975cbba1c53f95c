// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package cpus maps a decoded processor signature (vendor, family, model and stepping)
// to a microarchitecture and its known characteristics.
package cpus

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

const IntelVendor = "GenuineIntel"
const AMDVendor = "AuthenticAMD"
const HygonVendor = "HygonGenuine"

var IntelFamilies = []int{6, 19}

// Microarchitecture constants
const (
	// Intel Core CPUs
	UarchHSW = "HSW"
	UarchBDW = "BDW"
	UarchSKL = "SKL"
	UarchKBL = "KBL"
	UarchCFL = "CFL"
	UarchICL = "ICL"
	UarchRKL = "RKL"
	UarchTGL = "TGL"
	UarchADL = "ADL"
	UarchRPL = "RPL"
	UarchMTL = "MTL"
	UarchLNL = "LNL"
	UarchARL = "ARL"
	// Intel Atom CPUs
	UarchGLM = "GLM"
	UarchTNT = "TNT"
	// Intel Xeon CPUs
	UarchHSX   = "HSX"
	UarchBDX   = "BDX"
	UarchSKX   = "SKX"
	UarchCLX   = "CLX"
	UarchCPX   = "CPX"
	UarchICX   = "ICX"
	UarchSPR   = "SPR"
	UarchEMR   = "EMR"
	UarchSRF   = "SRF"
	UarchGNR   = "GNR"
	UarchGNR_D = "GNR-D" //lint:ignore ST1003 microarchitecture names use underscores to match Intel specifications
	UarchCWF   = "CWF"
	UarchDMR   = "DMR"
	// AMD CPUs
	UarchNaples     = "Naples"
	UarchRome       = "Rome"
	UarchMilan      = "Milan"
	UarchGenoa      = "Genoa"
	UarchBergamo    = "Bergamo"
	UarchTurinZen5  = "Turin (Zen 5)"
	UarchTurinZen5c = "Turin (Zen 5c)"
	UarchZen2Client = "Zen 2"
	UarchZen3Client = "Zen 3"
	UarchZen4Client = "Zen 4"
	// Hygon CPUs
	UarchDhyana = "Dhyana"
)

type CPUCharacteristics struct {
	MicroArchitecture  string
	CodeName           string
	LogicalThreadCount int // hardware threads per core
	CacheWayCount      int // last level cache ways, 0 when unknown
}

// CPUIdentifier holds the decoded processor signature. Family and Model are the display
// values, with the extended fields already folded in.
type CPUIdentifier struct {
	Vendor   string
	Family   int
	Model    int
	Stepping int
}

// cpuCharacteristicsMap maps microarchitecture name to CPU characteristics
var cpuCharacteristicsMap = map[string]CPUCharacteristics{
	// Intel Core CPUs
	UarchHSW: {MicroArchitecture: UarchHSW, CodeName: "Haswell", LogicalThreadCount: 2},
	UarchBDW: {MicroArchitecture: UarchBDW, CodeName: "Broadwell", LogicalThreadCount: 2},
	UarchSKL: {MicroArchitecture: UarchSKL, CodeName: "Skylake", LogicalThreadCount: 2},
	UarchKBL: {MicroArchitecture: UarchKBL, CodeName: "Kaby Lake", LogicalThreadCount: 2},
	UarchCFL: {MicroArchitecture: UarchCFL, CodeName: "Coffee Lake", LogicalThreadCount: 2},
	UarchICL: {MicroArchitecture: UarchICL, CodeName: "Ice Lake", LogicalThreadCount: 2},
	UarchRKL: {MicroArchitecture: UarchRKL, CodeName: "Rocket Lake", LogicalThreadCount: 2},
	UarchTGL: {MicroArchitecture: UarchTGL, CodeName: "Tiger Lake", LogicalThreadCount: 2},
	UarchADL: {MicroArchitecture: UarchADL, CodeName: "Alder Lake", LogicalThreadCount: 2},
	UarchRPL: {MicroArchitecture: UarchRPL, CodeName: "Raptor Lake", LogicalThreadCount: 2},
	UarchMTL: {MicroArchitecture: UarchMTL, CodeName: "Meteor Lake", LogicalThreadCount: 2},
	UarchLNL: {MicroArchitecture: UarchLNL, CodeName: "Lunar Lake", LogicalThreadCount: 1},
	UarchARL: {MicroArchitecture: UarchARL, CodeName: "Arrow Lake", LogicalThreadCount: 1},
	// Intel Atom CPUs
	UarchGLM: {MicroArchitecture: UarchGLM, CodeName: "Goldmont", LogicalThreadCount: 1},
	UarchTNT: {MicroArchitecture: UarchTNT, CodeName: "Tremont", LogicalThreadCount: 1},
	// Intel Xeon CPUs
	UarchHSX:   {MicroArchitecture: UarchHSX, CodeName: "Haswell", LogicalThreadCount: 2, CacheWayCount: 20},
	UarchBDX:   {MicroArchitecture: UarchBDX, CodeName: "Broadwell", LogicalThreadCount: 2, CacheWayCount: 20},
	UarchSKX:   {MicroArchitecture: UarchSKX, CodeName: "Skylake", LogicalThreadCount: 2, CacheWayCount: 11},
	UarchCLX:   {MicroArchitecture: UarchCLX, CodeName: "Cascade Lake", LogicalThreadCount: 2, CacheWayCount: 11},
	UarchCPX:   {MicroArchitecture: UarchCPX, CodeName: "Cooper Lake", LogicalThreadCount: 2, CacheWayCount: 11},
	UarchICX:   {MicroArchitecture: UarchICX, CodeName: "Ice Lake", LogicalThreadCount: 2, CacheWayCount: 12},
	UarchSPR:   {MicroArchitecture: UarchSPR, CodeName: "Sapphire Rapids", LogicalThreadCount: 2, CacheWayCount: 15},
	UarchEMR:   {MicroArchitecture: UarchEMR, CodeName: "Emerald Rapids", LogicalThreadCount: 2, CacheWayCount: 15},
	UarchSRF:   {MicroArchitecture: UarchSRF, CodeName: "Sierra Forest", LogicalThreadCount: 1, CacheWayCount: 12},
	UarchGNR:   {MicroArchitecture: UarchGNR, CodeName: "Granite Rapids", LogicalThreadCount: 2, CacheWayCount: 16},
	UarchGNR_D: {MicroArchitecture: UarchGNR_D, CodeName: "Granite Rapids D", LogicalThreadCount: 2, CacheWayCount: 16},
	UarchCWF:   {MicroArchitecture: UarchCWF, CodeName: "Clearwater Forest", LogicalThreadCount: 1},
	UarchDMR:   {MicroArchitecture: UarchDMR, CodeName: "Diamond Rapids", LogicalThreadCount: 1},
	// AMD CPUs
	UarchNaples:     {MicroArchitecture: UarchNaples, CodeName: "Zen", LogicalThreadCount: 2},
	UarchRome:       {MicroArchitecture: UarchRome, CodeName: "Zen 2", LogicalThreadCount: 2},
	UarchMilan:      {MicroArchitecture: UarchMilan, CodeName: "Zen 3", LogicalThreadCount: 2},
	UarchGenoa:      {MicroArchitecture: UarchGenoa, CodeName: "Zen 4", LogicalThreadCount: 2},
	UarchBergamo:    {MicroArchitecture: UarchBergamo, CodeName: "Zen 4c", LogicalThreadCount: 2},
	UarchTurinZen5:  {MicroArchitecture: UarchTurinZen5, CodeName: "Zen 5", LogicalThreadCount: 2},
	UarchTurinZen5c: {MicroArchitecture: UarchTurinZen5c, CodeName: "Zen 5c", LogicalThreadCount: 2},
	UarchZen2Client: {MicroArchitecture: UarchZen2Client, CodeName: "Zen 2", LogicalThreadCount: 2},
	UarchZen3Client: {MicroArchitecture: UarchZen3Client, CodeName: "Zen 3", LogicalThreadCount: 2},
	UarchZen4Client: {MicroArchitecture: UarchZen4Client, CodeName: "Zen 4", LogicalThreadCount: 2},
	// Hygon CPUs
	UarchDhyana: {MicroArchitecture: UarchDhyana, CodeName: "Dhyana", LogicalThreadCount: 2},
}

type identifierPattern struct {
	Vendor   string
	Family   int
	Model    string // regex, must match the whole decimal model
	Stepping string // regex, empty field means 'any' stepping
}

// cpuIdentifiers maps signatures to microarchitecture names. The first match wins.
var cpuIdentifiers = []struct {
	Identifier        identifierPattern
	MicroArchitecture string
}{
	// Intel Core CPUs
	{identifierPattern{IntelVendor, 6, "(60|69|70)", ""}, UarchHSW},
	{identifierPattern{IntelVendor, 6, "(61|71)", ""}, UarchBDW},
	{identifierPattern{IntelVendor, 6, "(78|94)", ""}, UarchSKL},
	{identifierPattern{IntelVendor, 6, "(142|158)", "9"}, UarchKBL},
	{identifierPattern{IntelVendor, 6, "(142|158)", "(10|11|12|13)"}, UarchCFL},
	{identifierPattern{IntelVendor, 6, "(125|126)", ""}, UarchICL},
	{identifierPattern{IntelVendor, 6, "167", ""}, UarchRKL},
	{identifierPattern{IntelVendor, 6, "(140|141)", ""}, UarchTGL},
	{identifierPattern{IntelVendor, 6, "(151|154)", ""}, UarchADL},
	{identifierPattern{IntelVendor, 6, "(183|186|191)", ""}, UarchRPL},
	{identifierPattern{IntelVendor, 6, "(170|172)", ""}, UarchMTL},
	{identifierPattern{IntelVendor, 6, "189", ""}, UarchLNL},
	{identifierPattern{IntelVendor, 6, "(197|198)", ""}, UarchARL},
	// Intel Atom CPUs
	{identifierPattern{IntelVendor, 6, "(92|95)", ""}, UarchGLM},
	{identifierPattern{IntelVendor, 6, "(134|150|156)", ""}, UarchTNT},
	// Intel Xeon CPUs
	{identifierPattern{IntelVendor, 6, "63", ""}, UarchHSX},
	{identifierPattern{IntelVendor, 6, "(79|86)", ""}, UarchBDX},
	{identifierPattern{IntelVendor, 6, "85", "(0|1|2|3|4)"}, UarchSKX},
	{identifierPattern{IntelVendor, 6, "85", "(5|6|7)"}, UarchCLX},
	{identifierPattern{IntelVendor, 6, "85", "11"}, UarchCPX},
	{identifierPattern{IntelVendor, 6, "(106|108)", ""}, UarchICX},
	{identifierPattern{IntelVendor, 6, "143", ""}, UarchSPR},
	{identifierPattern{IntelVendor, 6, "207", ""}, UarchEMR},
	{identifierPattern{IntelVendor, 6, "175", ""}, UarchSRF},
	{identifierPattern{IntelVendor, 6, "173", ""}, UarchGNR},
	{identifierPattern{IntelVendor, 6, "174", ""}, UarchGNR_D},
	{identifierPattern{IntelVendor, 6, "221", ""}, UarchCWF},
	{identifierPattern{IntelVendor, 19, "1", ""}, UarchDMR},
	// AMD CPUs
	{identifierPattern{AMDVendor, 23, "1", ""}, UarchNaples},
	{identifierPattern{AMDVendor, 23, "49", ""}, UarchRome},
	{identifierPattern{AMDVendor, 23, "(96|104|113|144)", ""}, UarchZen2Client},
	{identifierPattern{AMDVendor, 25, "1", ""}, UarchMilan},
	{identifierPattern{AMDVendor, 25, "(33|80)", ""}, UarchZen3Client},
	{identifierPattern{AMDVendor, 25, "(1[6-9]|2[0-9]|3[01])", ""}, UarchGenoa},
	{identifierPattern{AMDVendor, 25, "(97|116|117)", ""}, UarchZen4Client},
	{identifierPattern{AMDVendor, 25, "(16[0-9]|17[0-5])", ""}, UarchBergamo},
	{identifierPattern{AMDVendor, 26, "2", ""}, UarchTurinZen5},
	{identifierPattern{AMDVendor, 26, "17", ""}, UarchTurinZen5c},
	// Hygon CPUs
	{identifierPattern{HygonVendor, 24, "[0-9]+", ""}, UarchDhyana},
}

// NewIdentifier creates a CPUIdentifier from decoded signature fields
func NewIdentifier(vendor string, family, model, stepping int) CPUIdentifier {
	return CPUIdentifier{Vendor: vendor, Family: family, Model: model, Stepping: stepping}
}

// GetCPU retrieves the characteristics of the microarchitecture matching id
func GetCPU(id CPUIdentifier) (cpu CPUCharacteristics, err error) {
	model := strconv.Itoa(id.Model)
	stepping := strconv.Itoa(id.Stepping)
	for _, entry := range cpuIdentifiers {
		pattern := entry.Identifier
		if pattern.Vendor != id.Vendor || pattern.Family != id.Family {
			continue
		}
		var reModel *regexp.Regexp
		reModel, err = regexp.Compile("^" + pattern.Model + "$")
		if err != nil {
			return
		}
		if !reModel.MatchString(model) {
			continue
		}
		// if there is a stepping, it must match too
		if pattern.Stepping != "" {
			var reStepping *regexp.Regexp
			reStepping, err = regexp.Compile("^" + pattern.Stepping + "$")
			if err != nil {
				return
			}
			if !reStepping.MatchString(stepping) {
				continue
			}
		}
		var ok bool
		cpu, ok = cpuCharacteristicsMap[entry.MicroArchitecture]
		if !ok {
			err = fmt.Errorf("CPU characteristics not found for microarchitecture %s", entry.MicroArchitecture)
		}
		return
	}
	err = fmt.Errorf("CPU match not found for vendor %s, family %d, model %d, stepping %d", id.Vendor, id.Family, id.Model, id.Stepping)
	return
}

// GetCPUByMicroArchitecture looks up characteristics by microarchitecture name, ignoring case
func GetCPUByMicroArchitecture(uarch string) (cpu CPUCharacteristics, err error) {
	// Try exact match first
	if chars, ok := cpuCharacteristicsMap[uarch]; ok {
		cpu = chars
		return
	}
	for key, chars := range cpuCharacteristicsMap {
		if strings.EqualFold(key, uarch) {
			cpu = chars
			return
		}
	}
	err = fmt.Errorf("CPU match not found for uarch %s", uarch)
	return
}

// IsIntelCPUFamily checks if the CPU family corresponds to Intel CPUs.
func IsIntelCPUFamily(family int) bool {
	return slices.Contains(IntelFamilies, family)
}
