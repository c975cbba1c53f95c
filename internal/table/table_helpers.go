// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// table_helpers.go contains helpers that format decoded values for table cells.

package table

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Count formats an integer with thousands separators.
func Count(n int) string {
	return printer.Sprintf("%d", n)
}

// Size formats a byte count with the largest binary unit that divides it exactly.
func Size(bytes uint64) string {
	units := []string{"B", "KB", "MB", "GB"}
	unit := 0
	for bytes != 0 && bytes%1024 == 0 && unit < len(units)-1 {
		bytes /= 1024
		unit++
	}
	return printer.Sprintf("%d %s", bytes, units[unit])
}

// Hex formats a 32 bit value the way leaf numbers are shown in reports.
func Hex(v uint32) string {
	return fmt.Sprintf("0x%08X", v)
}

// LeafID formats a leaf and subleaf pair.
func LeafID(leaf, subleaf uint32) string {
	return fmt.Sprintf("%08X:%02X", leaf, subleaf)
}

// Optional formats n, or an empty string when n is zero.
func Optional(n int) string {
	if n == 0 {
		return ""
	}
	return Count(n)
}

// YesNo formats a boolean.
func YesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
