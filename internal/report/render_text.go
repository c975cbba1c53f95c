package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"fmt"
	"strings"

	"cpuid/internal/table"

	"github.com/olekukonko/tablewriter"
)

// Package-level map for custom text renderers
var customTextRenderers = map[string]table.TextTableRenderer{}

// getCustomTextRenderer returns the custom text renderer for a table, or nil if no custom renderer exists
func getCustomTextRenderer(tableName string) table.TextTableRenderer {
	return customTextRenderers[tableName]
}

// RegisterTextRenderer allows external packages to register custom text renderers for specific tables
func RegisterTextRenderer(tableName string, renderer table.TextTableRenderer) {
	customTextRenderers[tableName] = renderer
}

func init() {
	RegisterTextRenderer(CacheTableName, BorderedTextTableRendererFunc)
	RegisterTextRenderer(TLBTableName, BorderedTextTableRendererFunc)
	RegisterTextRenderer(TopologyTableName, BorderedTextTableRendererFunc)
}

func createTextReport(cpuTables []CPUTables) (out []byte, err error) {
	var sb strings.Builder
	for _, cpu := range cpuTables {
		if len(cpuTables) > 1 {
			title := cpuTitle(cpu.CPU)
			sb.WriteString(title + "\n")
			sb.WriteString(strings.Repeat("#", len(title)) + "\n\n")
		}
		for _, tableValues := range cpu.Tables {
			writeTextTable(&sb, tableValues)
		}
	}
	out = []byte(sb.String())
	return
}

func writeTextTable(sb *strings.Builder, tableValues table.TableValues) {
	sb.WriteString(fmt.Sprintf("%s\n", tableValues.Name))
	for range len(tableValues.Name) {
		sb.WriteString("=")
	}
	sb.WriteString("\n")
	if len(tableValues.Fields) == 0 || len(tableValues.Fields[0].Values) == 0 {
		msg := NoDataFound
		if tableValues.NoDataFound != "" {
			msg = tableValues.NoDataFound
		}
		sb.WriteString(msg + "\n\n")
		return
	}
	// custom renderer defined?
	if renderer := getCustomTextRenderer(tableValues.Name); renderer != nil {
		sb.WriteString(renderer(tableValues))
	} else {
		sb.WriteString(DefaultTextTableRendererFunc(tableValues))
	}
	for _, insight := range tableValues.Insights {
		sb.WriteString(fmt.Sprintf("* %s %s\n", insight.Recommendation, insight.Justification))
	}
	sb.WriteString("\n")
}

func DefaultTextTableRendererFunc(tableValues table.TableValues) string {
	var sb strings.Builder
	if tableValues.HasRows { // print the field names as column headings across the top of the table
		// find the longest item per column -- can be the field name (column header) or a value
		maxFieldLen := make(map[string]int)
		for i, field := range tableValues.Fields {
			// the last column shouldn't occupy more space than the value
			if i == len(tableValues.Fields)-1 {
				maxFieldLen[field.Name] = 0
				continue
			}
			maxFieldLen[field.Name] = len(field.Name)
			for _, val := range field.Values {
				if len(val) > maxFieldLen[field.Name] {
					maxFieldLen[field.Name] = len(val)
				}
			}
		}
		columnSpacing := 3
		// print the field names
		for _, field := range tableValues.Fields {
			sb.WriteString(fmt.Sprintf("%-*s", maxFieldLen[field.Name]+columnSpacing, field.Name))
		}
		sb.WriteString("\n")
		// underline the field names
		for _, field := range tableValues.Fields {
			sb.WriteString(fmt.Sprintf("%-*s", maxFieldLen[field.Name]+columnSpacing, strings.Repeat("-", len(field.Name))))
		}
		sb.WriteString("\n")
		// print the rows
		numRows := len(tableValues.Fields[0].Values)
		for row := range numRows {
			for _, field := range tableValues.Fields {
				sb.WriteString(fmt.Sprintf("%-*s", maxFieldLen[field.Name]+columnSpacing, field.Values[row]))
			}
			sb.WriteString("\n")
		}
	} else {
		// get the longest field name to format the table nicely
		maxFieldNameLen := 0
		for _, field := range tableValues.Fields {
			if len(field.Name) > maxFieldNameLen {
				maxFieldNameLen = len(field.Name)
			}
		}
		// print the field names followed by their value
		for _, field := range tableValues.Fields {
			var value string
			if len(field.Values) > 0 {
				value = field.Values[0]
			}
			sb.WriteString(fmt.Sprintf("%s%-*s %s\n", field.Name, maxFieldNameLen-len(field.Name)+1, ":", value))
		}
	}
	return sb.String()
}

// BorderedTextTableRendererFunc draws a row table with borders.
func BorderedTextTableRendererFunc(tableValues table.TableValues) string {
	headers := make([]string, 0, len(tableValues.Fields))
	for _, field := range tableValues.Fields {
		headers = append(headers, field.Name)
	}
	var rows [][]string
	for row := range len(tableValues.Fields[0].Values) {
		var r []string
		for _, field := range tableValues.Fields {
			r = append(r, field.Values[row])
		}
		rows = append(rows, r)
	}
	return BorderedTable(headers, rows)
}

// BorderedTable renders headers and rows as a bordered text table.
func BorderedTable(headers []string, rows [][]string) string {
	b := new(bytes.Buffer)
	t := tablewriter.NewWriter(b)
	t.SetHeader(headers)
	t.SetAutoFormatHeaders(false)
	t.SetBorders(tablewriter.Border{Left: true, Top: true, Right: true, Bottom: true})
	t.SetCenterSeparator("|")
	t.AppendBulk(rows)
	t.Render()
	return b.String()
}
