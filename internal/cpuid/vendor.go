// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package cpuid

// Vendor identifies the processor manufacturer from the leaf 0 vendor string.
type Vendor int

const (
	VendorUnknown Vendor = iota
	VendorIntel
	VendorAMD
	VendorCentaur
	VendorHygon
	VendorZhaoxin
	VendorCyrix
	VendorTransmeta
)

const (
	IntelVendorID = "GenuineIntel"
	AMDVendorID   = "AuthenticAMD"
)

var vendorIDs = map[string]Vendor{
	IntelVendorID:  VendorIntel,
	"GenuineIotel": VendorIntel,
	AMDVendorID:    VendorAMD,
	"CentaurHauls": VendorCentaur,
	"HygonGenuine": VendorHygon,
	"  Shanghai  ": VendorZhaoxin,
	"CyrixInstead": VendorCyrix,
	"GenuineTMx86": VendorTransmeta,
	"TransmetaCPU": VendorTransmeta,
}

var vendorNames = map[Vendor]string{
	VendorUnknown:   "Unknown",
	VendorIntel:     "Intel",
	VendorAMD:       "AMD",
	VendorCentaur:   "Centaur",
	VendorHygon:     "Hygon",
	VendorZhaoxin:   "Zhaoxin",
	VendorCyrix:     "Cyrix",
	VendorTransmeta: "Transmeta",
}

// ParseVendor maps a 12 byte vendor identification string to a Vendor.
func ParseVendor(id string) Vendor {
	if v, ok := vendorIDs[id]; ok {
		return v
	}
	return VendorUnknown
}

func (v Vendor) String() string {
	if name, ok := vendorNames[v]; ok {
		return name
	}
	return vendorNames[VendorUnknown]
}

// vendorFromLeaf0 assembles the vendor string from ebx, edx, ecx.
func vendorFromLeaf0(l RawLeaf) string {
	return bytesToASCII(regBytes(l.EBX, l.EDX, l.ECX))
}

// vendorSet is a set of vendors, used to gate table entries.
type vendorSet uint32

func vendors(vs ...Vendor) vendorSet {
	var s vendorSet
	for _, v := range vs {
		s |= 1 << uint(v)
	}
	return s
}

func (s vendorSet) has(v Vendor) bool {
	return s&(1<<uint(v)) != 0
}

var (
	anyVendor = vendorSet(0xFFFFFFFF)
	intelOnly = vendors(VendorIntel)
	amdOnly   = vendors(VendorAMD, VendorHygon)
	intelAMD  = vendors(VendorIntel, VendorAMD, VendorHygon)
	viaOnly   = vendors(VendorCentaur, VendorZhaoxin)
)

// Hypervisor identifies the hypervisor from the leaf 0x40000000 signature.
type Hypervisor int

const (
	HypervisorNone Hypervisor = iota
	HypervisorUnknown
	HypervisorHyperV
	HypervisorKVM
	HypervisorTCG
	HypervisorXen
	HypervisorParallels
	HypervisorVMware
	HypervisorBhyve
	HypervisorACRN
	HypervisorQNX
)

var hypervisorIDs = map[string]Hypervisor{
	"Microsoft Hv": HypervisorHyperV,
	"KVMKVMKVM":    HypervisorKVM,
	"TCGTCGTCGTCG": HypervisorTCG,
	"XenVMMXenVMM": HypervisorXen,
	" lrpepyh  vr": HypervisorParallels,
	"VMwareVMware": HypervisorVMware,
	"bhyve bhyve ": HypervisorBhyve,
	"ACRNACRNACRN": HypervisorACRN,
	"QNXQVMBSQG":   HypervisorQNX,
}

var hypervisorNames = map[Hypervisor]string{
	HypervisorNone:      "None",
	HypervisorUnknown:   "Unknown",
	HypervisorHyperV:    "Microsoft Hyper-V",
	HypervisorKVM:       "KVM",
	HypervisorTCG:       "QEMU TCG",
	HypervisorXen:       "Xen",
	HypervisorParallels: "Parallels",
	HypervisorVMware:    "VMware",
	HypervisorBhyve:     "bhyve",
	HypervisorACRN:      "ACRN",
	HypervisorQNX:       "QNX",
}

func (h Hypervisor) String() string {
	if name, ok := hypervisorNames[h]; ok {
		return name
	}
	return hypervisorNames[HypervisorUnknown]
}

// hypervisorFromLeaf uses ebx, ecx, edx order, unlike leaf 0.
func hypervisorFromLeaf(l RawLeaf) Hypervisor {
	id := bytesToASCII(regBytes(l.EBX, l.ECX, l.EDX))
	if h, ok := hypervisorIDs[id]; ok {
		return h
	}
	return HypervisorUnknown
}
