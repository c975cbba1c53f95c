// Package report provides functions to generate reports in various formats such as txt, json, xlsx.
package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strings"

	"cpuid/internal/table"
)

const (
	FormatXlsx = "xlsx"
	FormatJson = "json"
	FormatTxt  = "txt"
	FormatAll  = "all"
)

const NoDataFound = "No data found."

var FormatOptions = []string{FormatTxt, FormatJson, FormatXlsx}

// CPUTables are the populated tables of one decoded processor.
type CPUTables struct {
	CPU    int
	Tables []table.TableValues
}

// Create generates a report in the specified format from the tables of one or more
// processors. All fields of a table must have the same number of values.
//
// Parameters:
// - format: The desired format of the report (txt, json, xlsx).
// - cpuTables: The populated tables of each processor, in report order.
//
// Returns:
// - out: The generated report as a byte slice.
// - err: An error, if any occurred during report generation.
func Create(format string, cpuTables []CPUTables) (out []byte, err error) {
	// make sure that all fields have the same number of values
	for _, cpu := range cpuTables {
		for _, tableValue := range cpu.Tables {
			numRows := -1
			for _, fieldValues := range tableValue.Fields {
				if numRows == -1 {
					numRows = len(fieldValues.Values)
					continue
				}
				if len(fieldValues.Values) != numRows {
					return nil, fmt.Errorf("table %s, expected %d value(s) for field, found %d", tableValue.Name, numRows, len(fieldValues.Values))
				}
			}
		}
	}
	switch format {
	case FormatTxt:
		return createTextReport(cpuTables)
	case FormatJson:
		return createJsonReport(cpuTables)
	case FormatXlsx:
		return createXlsxReport(cpuTables)
	}
	return nil, fmt.Errorf("expected one of %s, got %s", strings.Join(FormatOptions, ", "), format)
}

func cpuTitle(cpu int) string {
	return fmt.Sprintf("CPU %d", cpu)
}
