// Package dump is a subcommand of the root command. It writes the raw leaves of the local
// processors, or of an existing dump, in one of the dump formats.
package dump

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"cpuid/internal/common"
	"cpuid/internal/dump"

	"github.com/spf13/cobra"
)

const cmdName = "dump"

var examples = []string{
	fmt.Sprintf("  Dump every online processor:       $ %s %s", common.AppName, cmdName),
	fmt.Sprintf("  Dump processors 0-3 to YAML:       $ %s %s --cpu 0-3 --file cpus.yaml", common.AppName, cmdName),
	fmt.Sprintf("  Use the CPUID instruction:         $ %s %s --source instruction", common.AppName, cmdName),
	fmt.Sprintf("  Convert an existing dump to JSON:  $ %s %s --input cpus.txt --format json", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Write the raw CPUID leaves of each processor",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

var (
	flagCPUs   string
	flagFormat string
	flagFile   string
)

const (
	flagFileName = "file"
)

func init() {
	Cmd.Flags().StringVar(&flagCPUs, common.FlagCPUName, "", "")
	Cmd.Flags().StringVar(&flagFormat, common.FlagFormatName, "", "")
	Cmd.Flags().StringVar(&flagFile, flagFileName, "", "")
	common.AddCaptureFlags(Cmd)

	Cmd.SetUsageFunc(common.UsageFunc(getFlagGroups))
}

func getFlagGroups() []common.FlagGroup {
	var groups []common.FlagGroup
	flags := []common.Flag{
		{
			Name: common.FlagCPUName,
			Help: "processors to dump, e.g., 0-3,8, all online processors when not set",
		},
		{
			Name: common.FlagFormatName,
			Help: fmt.Sprintf("choose the dump format from: %s, chosen from the file extension when not set", strings.Join(dump.Formats, ", ")),
		},
		{
			Name: flagFileName,
			Help: "write the dump to this file instead of stdout",
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
	if flagFormat != "" {
		if err := common.ValidateFormat([]string{flagFormat}, dump.Formats); err != nil {
			return err
		}
	}
	if _, err := common.ParseCPUList(flagCPUs); err != nil {
		return common.FlagValidationError(cmd, err.Error())
	}
	if err := common.ValidateCaptureFlags(cmd); err != nil {
		return common.FlagValidationError(cmd, err.Error())
	}
	return nil
}

// outputFormat is the --format value, else the format implied by --file, else text.
func outputFormat() string {
	if flagFormat != "" {
		return flagFormat
	}
	if flagFile != "" {
		return dump.FormatFromPath(flagFile)
	}
	return dump.FormatText
}

func runCmd(cmd *cobra.Command, args []string) error {
	ctx, stop := common.SignalContext(cmd)
	defer stop()
	cpus, err := common.ParseCPUList(flagCPUs)
	if err != nil {
		return common.CommandError(cmd, err)
	}
	acquisition, err := common.Acquire(ctx, cpus)
	if err != nil {
		return common.CommandError(cmd, err)
	}
	selected, err := common.SelectCPUs(acquisition.Dump, cpus)
	if err != nil {
		return common.CommandError(cmd, err)
	}
	format := outputFormat()
	if flagFile == "" {
		if err := dump.Write(cmd.OutOrStdout(), selected, format); err != nil {
			return common.CommandError(cmd, err)
		}
		return nil
	}
	if err := dump.WriteFile(flagFile, selected, format); err != nil {
		return common.CommandError(cmd, err)
	}
	slog.Info("wrote dump", slog.String("file", flagFile), slog.String("format", format), slog.Int("processors", len(selected.CPUs)))
	fmt.Fprintf(os.Stderr, "Dump file:\n  %s\n", flagFile)
	return nil
}
