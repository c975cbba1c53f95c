// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package cpuid

// mirroredLeaf1EDX covers the 0x80000001 edx bits that repeat leaf 1 edx on AMD parts.
// Bit 11 is SYSCALL there, not a copy of SEP.
const mirroredLeaf1EDX uint32 = 0x0183_F7FF

// featureTables are scanned in order; a flag is emitted when its bit is set and the
// capture vendor is in the entry vendor set.
var featureTables = []featureTable{
	{
		leaf: 0x0000_0001, subleaf: 0, register: EDX,
		title: "Feature Identifiers",
		bits: []featureBit{
			{0, anyVendor, "FPU", "x87 FPU on chip"},
			{1, anyVendor, "VME", "Virtual-8086 Mode Enhancement"},
			{2, anyVendor, "DE", "Debugging Extensions"},
			{3, anyVendor, "PSE", "Page Size Extensions"},
			{4, anyVendor, "TSC", "Time Stamp Counter"},
			{5, anyVendor, "MSR", "RDMSR and WRMSR support"},
			{6, anyVendor, "PAE", "Physical Address Extensions"},
			{7, anyVendor, "MCE", "Machine Check Exception"},
			{8, anyVendor, "CX8", "CMPXCHG8B instruction"},
			{9, anyVendor, "APIC", "APIC on chip"},
			{11, anyVendor, "SEP", "SYSENTER and SYSEXIT instructions"},
			{12, anyVendor, "MTRR", "Memory Type Range Registers"},
			{13, anyVendor, "PGE", "PTE Global Bit"},
			{14, anyVendor, "MCA", "Machine Check Architecture"},
			{15, anyVendor, "CMOV", "Conditional Move/Compare Instruction"},
			{16, anyVendor, "PAT", "Page Attribute Table"},
			{17, anyVendor, "PSE-36", "Page Size Extension"},
			{18, anyVendor, "PSN", "Processor Serial Number"},
			{19, anyVendor, "CLFSH", "CLFLUSH instruction"},
			{21, anyVendor, "DS", "Debug Store"},
			{22, anyVendor, "ACPI", "Thermal Monitor and Clock Control"},
			{23, anyVendor, "MMX", "MMX instruction set"},
			{24, anyVendor, "FXSR", "FXSAVE/FXRSTOR instructions"},
			{25, anyVendor, "SSE", "SSE instructions"},
			{26, anyVendor, "SSE2", "SSE2 instructions"},
			{27, anyVendor, "SS", "Self Snoop"},
			{28, anyVendor, "HTT", "Hyperthreading"},
			{29, anyVendor, "TM", "Thermal Monitor"},
			{31, anyVendor, "PBE", "Pending Break Enable"},
		},
	},
	{
		leaf: 0x0000_0001, subleaf: 0, register: ECX,
		title: "Feature Identifiers",
		bits: []featureBit{
			{0, anyVendor, "SSE3", "SSE3 instructions"},
			{1, anyVendor, "PCLMULQDQ", "PCLMULQDQ instruction"},
			{2, anyVendor, "DTES64", "64-bit DS area"},
			{3, anyVendor, "MONITOR", "MONITOR/MWAIT instructions"},
			{4, anyVendor, "DS-CPL", "CPL qualified debug store"},
			{5, anyVendor, "VMX", "Virtual Machine Extensions"},
			{6, anyVendor, "SMX", "Safer Mode Extensions"},
			{7, anyVendor, "EIST", "Enhanced Intel SpeedStep Technology"},
			{8, anyVendor, "TM2", "Thermal Monitor 2"},
			{9, anyVendor, "SSSE3", "SSSE3 instructions"},
			{10, anyVendor, "CNXT-ID", "L1 context ID"},
			{11, anyVendor, "SDBG", "Silicon debug via IA32_DEBUG_INTERFACE MSR"},
			{12, anyVendor, "FMA", "Fused Multiply-Add AVX instructions"},
			{13, anyVendor, "CMPXCHG16B", "CMPXCHG16B instruction available"},
			{14, anyVendor, "xTPR", "xTPR Update Control"},
			{15, anyVendor, "PDCM", "Perfmon and Debug Capability"},
			{17, anyVendor, "PCID", "Process-context identifiers"},
			{18, anyVendor, "DCA", "Prefetch from memory-mapped device, direct cache access"},
			{19, anyVendor, "SSE4.1", "SSE4.1 instructions"},
			{20, anyVendor, "SSE4.2", "SSE4.2 instructions"},
			{21, anyVendor, "x2APIC", "x2APIC"},
			{22, anyVendor, "MOVBE", "MOVBE instruction"},
			{23, anyVendor, "POPCNT", "POPCNT instruction"},
			{24, anyVendor, "TSC-Deadline", "APIC supports one-shot using TSC deadline"},
			{25, anyVendor, "AES-NI", "AES-NI instruction set"},
			{26, anyVendor, "XSAVE", "XSAVE/XRSTOR extended state instructions"},
			{27, anyVendor, "OSXSAVE", "OS enabled XSAVE support"},
			{28, anyVendor, "AVX", "AVX instructions"},
			{29, anyVendor, "F16C", "16-bit floating-point conversion instructions"},
			{30, anyVendor, "RDRAND", "RDRAND instruction"},
			{31, anyVendor, "HYPERVISOR", "Running under a hypervisor"},
		},
	},
	{
		leaf: 0x0000_0006, subleaf: 0, register: EAX,
		title: "Thermal and Power Management",
		bits: []featureBit{
			{0, anyVendor, "DTS", "Digital temperature sensor"},
			{1, intelOnly, "TURBO", "Intel Turbo Boost Technology"},
			{2, anyVendor, "ARAT", "Always running APIC timer"},
			{4, intelOnly, "PLN", "Power limit notification controls"},
			{5, intelOnly, "ECMD", "Clock modulation duty cycle extension"},
			{6, intelOnly, "PTM", "Package thermal management"},
			{7, intelOnly, "HWP", "Hardware-managed P-state base support"},
			{13, intelOnly, "HDC", "Hardware duty cycle programming"},
		},
	},
	{
		leaf: 0x0000_0006, subleaf: 0, register: ECX,
		title: "Thermal and Power Management",
		bits: []featureBit{
			{0, anyVendor, "HCF", "Hardware coordination feedback capability"},
			{3, anyVendor, "ENERGY_PERF_BIAS", "Performance-energy bias preference"},
		},
	},
	{
		leaf: 0x0000_0007, subleaf: 0, register: EBX,
		title: "Structured Extended Feature Identifiers",
		bits: []featureBit{
			{0, intelAMD, "FSGSBASE", "FSGSBASE instructions"},
			{1, intelOnly, "TSC_ADJUST", "IA32_TSC_ADJUST MSR is supported"},
			{2, intelOnly, "SGX", "Software Guard Extensions"},
			{3, intelAMD, "BMI1", "Bit Manipulation Instructions"},
			{4, intelOnly, "HLE", "Hardware Lock Elision"},
			{5, intelAMD, "AVX2", "Advanced Vector Extensions 2.0"},
			{6, intelOnly, "FDP_EXCPTN_ONLY", "x87 FPU data pointer updated only on x87 exception"},
			{7, intelAMD, "SMEP", "Supervisor Mode Execution Protection"},
			{8, intelAMD, "BMI2", "Bit Manipulation Instructions 2"},
			{10, intelAMD, "INVPCID", "INVPCID instruction"},
			{11, intelOnly, "RTM", "Restricted Transactional Memory"},
			{12, intelAMD, "PQM", "Platform QoS Monitoring"},
			{14, intelOnly, "MPX", "Memory Protection Extensions"},
			{15, intelAMD, "PQE", "Platform QoS Enforcement"},
			{16, intelOnly, "AVX512F", "AVX512 foundation"},
			{17, intelOnly, "AVX512DQ", "AVX512 double/quadword instructions"},
			{18, intelAMD, "RDSEED", "RDSEED instruction"},
			{19, intelAMD, "ADX", "Multi-Precision Add-Carry Instructions"},
			{20, intelAMD, "SMAP", "Supervisor Mode Access Prevention"},
			{21, intelOnly, "AVX512IFMA", "AVX512 integer FMA instructions"},
			{22, intelOnly, "PCOMMIT", "Persistent commit instruction"},
			{23, intelAMD, "CLFLUSHOPT", "CLFLUSHOPT instruction"},
			{24, intelAMD, "CLWB", "Cache line write-back instruction"},
			{26, intelOnly, "AVX512PF", "AVX512 prefetch instructions"},
			{27, intelOnly, "AVX512ER", "AVX512 exponent/reciprocal instructions"},
			{28, intelOnly, "AVX512CD", "AVX512 conflict detection instructions"},
			{29, intelAMD, "SHA", "SHA-1/SHA-256 instructions"},
			{30, intelOnly, "AVX512BW", "AVX512 byte/word instructions"},
			{31, intelOnly, "AVX512VL", "AVX512 vector length instructions"},
		},
	},
	{
		leaf: 0x0000_0007, subleaf: 0, register: ECX,
		title: "Structured Extended Feature Identifiers",
		bits: []featureBit{
			{0, intelOnly, "PREFETCHWT1", "PREFETCHWT1 instruction"},
			{1, intelOnly, "AVX512_VBMI", "AVX512 vector byte manipulation instructions"},
			{2, intelAMD, "UMIP", "User Mode Instruction Prevention"},
			{3, intelAMD, "PKU", "Protection Keys for User-mode pages"},
			{4, intelAMD, "OSPKE", "OS-enabled protection keys"},
			{5, intelOnly, "WAITPKG", "Wait and Pause Enhancements"},
			{6, intelOnly, "AVX512_VBMI2", "AVX512 vector byte manipulation instructions 2"},
			{7, intelAMD, "CET_SS", "CET shadow stack"},
			{8, intelOnly, "GFNI", "Galois Field NI / Galois Field Affine Transformation"},
			{9, intelAMD, "VAES", "VEX-encoded AES-NI"},
			{10, intelAMD, "VPCL", "VEX-encoded PCLMUL"},
			{11, intelOnly, "AVX512_VNNI", "AVX512 Vector Neural Network instructions"},
			{12, intelOnly, "AVX512_BITALG", "AVX512 Bitwise Algorithms"},
			{14, intelOnly, "AVX512_VPOPCNTDQ", "AVX512 VPOPCNTDQ instruction"},
			{16, intelOnly, "VA57", "5-level paging"},
			{22, intelAMD, "RDPID", "Read Processor ID"},
			{23, intelOnly, "KL", "Key Locker"},
			{25, intelOnly, "CLDEMOTE", "Cache Line Demote"},
			{27, intelOnly, "MOVDIRI", "32-bit Direct Stores"},
			{28, intelOnly, "MOVDIRI64B", "64-bit Direct Stores"},
			{29, intelOnly, "ENQCMD", "Enqueue Stores"},
			{30, intelOnly, "SGX_LC", "SGX Launch Configuration"},
			{31, intelOnly, "PKS", "Protection keys for supervisor-mode pages"},
		},
	},
	{
		leaf: 0x0000_0007, subleaf: 0, register: EDX,
		title: "Structured Extended Feature Identifiers",
		bits: []featureBit{
			{2, intelOnly, "AVX512_4VNNIW", "AVX512 Neural Network Instructions"},
			{3, intelOnly, "AVX512_4FMAPS", "AVX512 Multiply Accumulation single precision"},
			{8, intelOnly, "AVX512_VP2INTERSECT", "AVX512 Vector Intersection instructions"},
			{20, intelOnly, "CET_IBT", "CET indirect branch tracking"},
			{22, intelOnly, "AMX-BF16", "Tile computation on bfloat16"},
			{23, intelOnly, "AVX512-FP16", "AVX512 16-bit FP support"},
			{24, intelOnly, "AMX-TILE", "Tile architecture"},
			{25, intelOnly, "AMX-INT8", "Tile computation on 8-bit integers"},
			{26, intelOnly, "SPEC_CTRL", "IBRS and IBPB speculation control instructions"},
			{27, intelOnly, "STIBP", "Single Thread Indirect Branch Predictors"},
			{28, intelOnly, "L1D_FLUSH", "L1 Data Cache Flush"},
			{31, intelOnly, "SSBD", "Speculative Store Bypass Disable"},
		},
	},
	{
		leaf: 0x0000_0007, subleaf: 1, register: EAX,
		title: "Structured Extended Feature Identifiers",
		bits: []featureBit{
			{4, intelOnly, "AVX_VNNI", "AVX Vector Neural Network Instructions"},
			{5, intelOnly, "AVX512_BF16", "AVX512 Vector Neural Network BFLOAT16"},
			{22, intelOnly, "HRESET", "History Reset"},
			{26, intelOnly, "LAM", "Linear Address Masking"},
		},
	},
	{
		leaf: 0x0000_0014, subleaf: 0, register: EBX,
		title: "Intel Processor Trace Enumeration",
		bits: []featureBit{
			{0, intelOnly, "CR3Filter", "CR3 filtering"},
			{1, intelOnly, "PSB_CYC", "Configurable PSB and cycle-accurate mode"},
			{2, intelOnly, "IPFilter", "IP filtering and TraceStop"},
			{3, intelOnly, "MTC", "MTC timing packets"},
			{4, intelOnly, "PTWRITE", "PTWRITE instruction"},
			{5, intelOnly, "PowerEvent", "Power event trace"},
		},
	},
	{
		leaf: 0x0000_0014, subleaf: 0, register: ECX,
		title: "Intel Processor Trace Enumeration",
		bits: []featureBit{
			{0, intelOnly, "ToPA", "ToPA output scheme"},
			{1, intelOnly, "ToPA_MULTI", "ToPA tables with multiple output entries"},
			{2, intelOnly, "SingleRange", "Single-range output scheme"},
			{3, intelOnly, "TraceTransport", "Output to trace transport subsystem"},
			{31, intelOnly, "LIP", "IP payloads carry linear addresses"},
		},
	},
	{
		leaf: 0x4000_0001, subleaf: 0, register: EAX,
		title: "KVM Paravirtual Features",
		hypervisor: HypervisorKVM,
		bits: []featureBit{
			{0, anyVendor, "KVM_CLOCKSOURCE", "kvmclock at MSR 0x11"},
			{1, anyVendor, "KVM_NOP_IO_DELAY", "Port 0x80 delays not needed"},
			{2, anyVendor, "KVM_MMU_OP", "Paravirtual MMU operations"},
			{3, anyVendor, "KVM_CLOCKSOURCE2", "kvmclock at MSR 0x4b564d00"},
			{4, anyVendor, "KVM_ASYNC_PF", "Asynchronous page faults"},
			{5, anyVendor, "KVM_STEAL_TIME", "Steal time accounting"},
			{6, anyVendor, "KVM_PV_EOI", "Paravirtual end of interrupt"},
			{7, anyVendor, "KVM_PV_UNHALT", "Paravirtual spinlock unhalt"},
			{9, anyVendor, "KVM_PV_TLB_FLUSH", "Paravirtual TLB flush"},
			{10, anyVendor, "KVM_ASYNC_PF_VMEXIT", "Asynchronous page fault VM exits"},
			{11, anyVendor, "KVM_PV_SEND_IPI", "Paravirtual send IPI"},
			{12, anyVendor, "KVM_POLL_CONTROL", "Host-side halt polling control"},
			{13, anyVendor, "KVM_PV_SCHED_YIELD", "Paravirtual sched yield"},
			{14, anyVendor, "KVM_ASYNC_PF_INT", "Asynchronous page faults delivered as interrupts"},
			{15, anyVendor, "KVM_MSI_EXT_DEST_ID", "Extended destination ID in MSI address"},
			{16, anyVendor, "KVM_HC_MAP_GPA_RANGE", "MAP_GPA_RANGE hypercall"},
			{17, anyVendor, "KVM_MIGRATION_CONTROL", "Migration control MSR"},
			{24, anyVendor, "KVM_CLOCKSOURCE_STABLE", "kvmclock is stable"},
		},
	},
	{
		leaf: 0x8000_0001, subleaf: 0, register: EDX,
		title: "Extended Feature Identifiers",
		mask: mirroredLeaf1EDX,
		bits: []featureBit{
			{11, anyVendor, "SYSCALL", "SYSCALL and SYSRET instructions"},
			{20, intelOnly, "XD", "eXecute Disable page attribute bit"},
			{20, amdOnly, "NX", "No eXecute page attribute bit"},
			{22, amdOnly, "MMXExt", "AMD extensions to MMX instructions"},
			{25, amdOnly, "FFXSR", "FXSAVE/FXRSTOR instruction optimizations"},
			{26, anyVendor, "Page1GB", "1GB page support"},
			{27, anyVendor, "RDTSCP", "RDTSCP instruction and IA32_TSC_AUX MSR"},
			{29, anyVendor, "LM", "Long Mode, EM64T"},
			{30, amdOnly, "3DNowExt", "AMD extensions to 3DNow! instructions"},
			{31, amdOnly, "3DNow", "3DNow! instructions"},
		},
	},
	{
		leaf: 0x8000_0001, subleaf: 0, register: ECX,
		title: "Extended Feature Identifiers",
		bits: []featureBit{
			{0, anyVendor, "LahfSahf", "LAHF/SAHF instruction support in 64-bit mode"},
			{1, amdOnly, "CmpLegacy", "Core multi-processing legacy mode"},
			{2, amdOnly, "SVM", "Secure Virtual Machine"},
			{3, amdOnly, "ExtApicSpace", "extended APIC space"},
			{4, amdOnly, "AltMovCr8", "LOCK MOV CR0 means MOV CR8"},
			{5, anyVendor, "LZCNT", "LZCNT instruction"},
			{6, amdOnly, "SSE4A", "SSE4A instructions"},
			{7, amdOnly, "MisAlignSse", "misaligned SSE support"},
			{8, anyVendor, "3DNowPrefetch", "PREFETCH and PREFETCHW instruction support"},
			{9, amdOnly, "OSVW", "OS-visible workaround support"},
			{10, amdOnly, "IBS", "Instruction based sampling"},
			{11, amdOnly, "XOP", "Extended operation support"},
			{12, amdOnly, "SKINIT", "SKINIT/STGI instructions"},
			{13, amdOnly, "WDT", "Watchdog timer"},
			{15, amdOnly, "LWP", "Lightweight profiling"},
			{16, amdOnly, "FMA4", "4-operand FMA instructions"},
			{17, amdOnly, "TCE", "Translation cache extension"},
			{23, amdOnly, "PerfCtrExtCore", "core performance counter extensions"},
			{24, amdOnly, "PerfCtrExtDF", "data fabric performance counter extensions"},
			{26, amdOnly, "DataBreakpointExtension", "data access breakpoint extensions"},
			{27, amdOnly, "PerfTsc", "performance timestamp counter"},
			{28, amdOnly, "PerfCtrExtLLC", "Last Level Cache performance counter extensions"},
			{29, amdOnly, "MwaitExtended", "MONITORX/MWAITX instructions"},
			{30, amdOnly, "AdMskExtn", "address mask extension for instruction breakpoint"},
		},
	},
	{
		leaf: 0x8000_0007, subleaf: 0, register: EBX,
		title: "RAS Capabilities",
		bits: []featureBit{
			{0, amdOnly, "McaOverflowRecov", "MCA overflow recovery support"},
			{1, amdOnly, "SUCCOR", "Software uncorrectable error containment and recovery"},
			{2, amdOnly, "HWA", "Hardware assert"},
			{3, amdOnly, "ScalableMca", "Scalable machine check architecture"},
			{4, amdOnly, "PFEH", "Platform first error handling"},
		},
	},
	{
		leaf: 0x8000_0007, subleaf: 0, register: EDX,
		title: "Advanced Power Management Information",
		bits: []featureBit{
			{0, amdOnly, "TS", "Temperature sensor"},
			{1, amdOnly, "FID", "Frequency ID control"},
			{2, amdOnly, "VID", "Voltage ID control"},
			{3, amdOnly, "TTP", "THERMTRIP"},
			{4, amdOnly, "HTC", "Hardware thermal control"},
			{7, amdOnly, "TscInvariant", "TSC rate is invariant"},
			{8, amdOnly, "CPB", "Core performance boost"},
			{9, amdOnly, "EffFreqRO", "Read-only effective frequency interface, APERF/MPERF"},
			{13, amdOnly, "RAPL", "Running average power limit"},
		},
	},
	{
		leaf: 0x8000_0008, subleaf: 0, register: EBX,
		title: "Extended Feature Extensions ID",
		bits: []featureBit{
			{0, amdOnly, "CLZERO", "Clear zero instruction"},
			{1, amdOnly, "InstRetCntMsr", "Instructions retired count support"},
			{2, amdOnly, "RstrFpErrPtrs", "XSAVE always saves/restores error pointers"},
			{4, amdOnly, "RDPRU", "RDPRU instruction"},
			{6, amdOnly, "MBE", "Memory bandwidth enforcement"},
			{8, amdOnly, "MCOMMIT", "Memory commit instruction"},
			{9, anyVendor, "WBNOINVD", "Write back and invalidate cache"},
			{10, amdOnly, "LBR", "Last branch extensions"},
			{12, amdOnly, "IBPB", "Indirect Branch Prediction Barrier"},
			{13, amdOnly, "INT_WBINVD", "Interruptible WBINVD,WBNOINVD"},
			{14, amdOnly, "IBRS", "Indirect Branch Restricted Speculation"},
			{15, amdOnly, "STIBP", "Single Thread Indirect Branch Prediction"},
			{17, amdOnly, "StibpAlwaysOn", "STIBP always enabled"},
			{18, amdOnly, "IbrsPreferred", "IBRS preferred over software solution"},
			{19, amdOnly, "IbrsSameMode", "IBRS provides Same Mode Protection"},
			{23, amdOnly, "PPIN", "Protected Processor Inventory Number"},
			{24, amdOnly, "SSBD", "Speculative Store Bypass Disable"},
			{25, amdOnly, "VIRT_SPEC_CTL", "Speculation control for virtual machines"},
			{26, amdOnly, "SsbdNotNeeded", "SSBD no longer needed"},
		},
	},
	{
		leaf: 0x8000_000A, subleaf: 0, register: EDX,
		title: "SVM Feature Identifiers",
		bits: []featureBit{
			{0, amdOnly, "NP", "Nested paging"},
			{1, amdOnly, "LbrVit", "LBR virtualization"},
			{2, amdOnly, "SVML", "SVM lock"},
			{3, amdOnly, "NRIPS", "NRIP save"},
			{4, amdOnly, "TscRateMsr", "MSR-based TSC rate control"},
			{12, amdOnly, "AVIC", "AMD virtual interrupt controller"},
			{16, amdOnly, "GMET", "Guest mode execution trap"},
			{19, amdOnly, "GuestSpecCtl", "SPEC_CTRL virtualization"},
		},
	},
	{
		leaf: 0x8000_001A, subleaf: 0, register: EAX,
		title: "Performance Optimization Identifiers",
		bits: []featureBit{
			{0, amdOnly, "FP128", "128-bit SSE full-width pipelines"},
			{1, amdOnly, "MOVU", "Efficient MOVU SSE instructions"},
			{2, amdOnly, "FP256", "256-bit AVX full-width pipelines"},
		},
	},
	{
		leaf: 0x8000_001B, subleaf: 0, register: EAX,
		title: "Instruction Based Sampling Identifiers",
		bits: []featureBit{
			{0, amdOnly, "IBSFFV", "IBS feature flags valid"},
			{1, amdOnly, "FetchSam", "IBS fetch sampling"},
			{2, amdOnly, "OpSam", "IBS execution sampling"},
			{3, amdOnly, "RdWrOpCnt", "Read/write of op counter"},
			{4, amdOnly, "OpCnt", "Op counting mode"},
			{5, amdOnly, "BrnTrgt", "Branch target address reporting"},
			{6, amdOnly, "OpCntExt", "IBS op cur/max count extended by 7 bits"},
			{7, amdOnly, "RipInvalidChk", "IBS RIP invalid indication"},
			{8, amdOnly, "OpBrnFuse", "IBS fused branch micro-op indication"},
			{9, amdOnly, "IbsFetchCtlExtd", "IBS fetch control extended MSR"},
			{10, amdOnly, "IbsOpData4", "IBS op data 4 MSR"},
		},
	},
	{
		leaf: 0xC000_0001, subleaf: 0, register: EDX,
		title: "Centaur Feature Identifiers",
		bits: []featureBit{
			{2, viaOnly, "RNG", "Random number generator present"},
			{3, viaOnly, "RNG_EN", "Random number generator enabled"},
			{6, viaOnly, "ACE", "Advanced cryptography engine present"},
			{7, viaOnly, "ACE_EN", "Advanced cryptography engine enabled"},
			{8, viaOnly, "ACE2", "Advanced cryptography engine 2 present"},
			{9, viaOnly, "ACE2_EN", "Advanced cryptography engine 2 enabled"},
			{10, viaOnly, "PHE", "PadLock hash engine present"},
			{11, viaOnly, "PHE_EN", "PadLock hash engine enabled"},
			{12, viaOnly, "PMM", "PadLock Montgomery multiplier present"},
			{13, viaOnly, "PMM_EN", "PadLock Montgomery multiplier enabled"},
		},
	},
}
