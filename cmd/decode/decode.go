// Package decode is a subcommand of the root command. It decodes captured leaves into
// processor, topology, cache, TLB and feature tables.
package decode

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"cpuid/internal/common"
	"cpuid/internal/cpuid"
	"cpuid/internal/report"
	"cpuid/internal/table"
	"cpuid/internal/util"

	"github.com/spf13/cobra"
)

const cmdName = "decode"

var examples = []string{
	fmt.Sprintf("  Decode processor 0:                $ %s %s", common.AppName, cmdName),
	fmt.Sprintf("  Decode every processor to xlsx:    $ %s %s --cpu all --format xlsx", common.AppName, cmdName),
	fmt.Sprintf("  Decode a dump, include raw leaves: $ %s %s --input cpus.txt --raw", common.AppName, cmdName),
	fmt.Sprintf("  Ignore leaf 2 descriptors:         $ %s %s --no-legacy", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Decode features, topology, caches and TLBs",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

var (
	flagCPUs     string
	flagFormat   []string
	flagNoLegacy bool
	flagRaw      bool
)

const (
	flagNoLegacyName = "no-legacy"
	flagRawName      = "raw"
)

func init() {
	Cmd.Flags().StringVar(&flagCPUs, common.FlagCPUName, "0", "")
	Cmd.Flags().StringSliceVar(&flagFormat, common.FlagFormatName, []string{report.FormatTxt}, "")
	Cmd.Flags().BoolVar(&flagNoLegacy, flagNoLegacyName, false, "")
	Cmd.Flags().BoolVar(&flagRaw, flagRawName, false, "")
	common.AddCaptureFlags(Cmd)

	Cmd.SetUsageFunc(common.UsageFunc(getFlagGroups))
}

func getFlagGroups() []common.FlagGroup {
	var groups []common.FlagGroup
	flags := []common.Flag{
		{
			Name: common.FlagCPUName,
			Help: fmt.Sprintf("processors to decode, e.g., 0-3,8, or %s", util.AllCPUs),
		},
		{
			Name: common.FlagFormatName,
			Help: fmt.Sprintf("choose output format(s) from: %s", strings.Join(append([]string{report.FormatAll}, report.FormatOptions...), ", ")),
		},
		{
			Name: flagNoLegacyName,
			Help: "do not decode the leaf 2 cache and TLB descriptors",
		},
		{
			Name: flagRawName,
			Help: "include a table of the raw leaves",
		},
	}
	groups = append(groups, common.FlagGroup{
		GroupName: "Options",
		Flags:     flags,
	})
	groups = append(groups, common.GetCaptureFlagGroup())
	return groups
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if err := common.ValidateFormat(flagFormat, append([]string{report.FormatAll}, report.FormatOptions...)); err != nil {
		return err
	}
	if _, err := common.ParseCPUList(flagCPUs); err != nil {
		return common.FlagValidationError(cmd, err.Error())
	}
	if err := common.ValidateCaptureFlags(cmd); err != nil {
		return common.FlagValidationError(cmd, err.Error())
	}
	return nil
}

// selectedCPUs resolves --cpu against the decoded system.
func selectedCPUs(system *cpuid.System) ([]int, error) {
	ids, err := common.ParseCPUList(flagCPUs)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		for _, c := range system.CPUs() {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

// formats expands "all" and keeps the order requested.
func formats() []string {
	if slices.Contains(flagFormat, report.FormatAll) {
		return report.FormatOptions
	}
	var result []string
	for _, format := range flagFormat {
		if !slices.Contains(result, format) {
			result = append(result, format)
		}
	}
	return result
}

// reportBaseName names report files after the dump they came from, or the host.
func reportBaseName() string {
	if common.FlagInput != "" {
		base := filepath.Base(common.FlagInput)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		return hostname
	}
	return common.AppName
}

// decodeTables populates the report tables of the selected processors.
func decodeTables(system *cpuid.System, cpus []int, tableNames []string) ([]report.CPUTables, error) {
	var cpuTables []report.CPUTables
	for _, id := range cpus {
		c, ok := system.CPU(id)
		if !ok {
			return nil, fmt.Errorf("CPU %d is not in the capture", id)
		}
		data := table.Data{CPU: id, Capture: c, System: system}
		cpuTables = append(cpuTables, report.CPUTables{
			CPU:    id,
			Tables: table.ProcessTables(report.GetTables(tableNames), data),
		})
	}
	return cpuTables, nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	appContext := common.GetAppContext(cmd)
	ctx, stop := common.SignalContext(cmd)
	defer stop()
	// walk every processor so the package topology can be inferred
	acquisition, err := common.Acquire(ctx, nil)
	if err != nil {
		return common.CommandError(cmd, err)
	}
	system, err := acquisition.NewSystem(cpuid.WithLegacyDescriptors(!flagNoLegacy))
	if err != nil {
		return common.CommandError(cmd, err)
	}
	cpus, err := selectedCPUs(system)
	if err != nil {
		return common.CommandError(cmd, err)
	}
	tableNames := slices.Clone(report.DecodeTableNames)
	if flagRaw {
		tableNames = append(tableNames, report.RawLeafTableName)
	}
	cpuTables, err := decodeTables(system, cpus, tableNames)
	if err != nil {
		return common.CommandError(cmd, err)
	}
	var reportFilePaths []string
	for _, format := range formats() {
		reportBytes, err := report.Create(format, cpuTables)
		if err != nil {
			return common.CommandError(cmd, fmt.Errorf("failed to create report: %w", err))
		}
		if format == report.FormatTxt {
			fmt.Fprint(cmd.OutOrStdout(), string(reportBytes))
			continue
		}
		outputDir := appContext.OutputDir
		if outputDir == "" {
			outputDir = "."
		}
		if err := common.CreateOutputDir(outputDir); err != nil {
			return common.CommandError(cmd, err)
		}
		reportPath := filepath.Join(outputDir, fmt.Sprintf("%s_%s.%s", reportBaseName(), cmdName, format))
		if err := common.WriteReport(reportBytes, reportPath); err != nil {
			return common.CommandError(cmd, err)
		}
		slog.Info("wrote report", slog.String("path", reportPath))
		reportFilePaths = append(reportFilePaths, reportPath)
	}
	if len(reportFilePaths) > 0 {
		fmt.Println("Report files:")
	}
	for _, reportFilePath := range reportFilePaths {
		fmt.Printf("  %s\n", reportFilePath)
	}
	return nil
}
