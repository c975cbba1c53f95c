package common

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"cpuid/internal/source"
	"cpuid/internal/util"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// capture flags
var (
	FlagInput    string
	FlagSource   string
	FlagParallel int
)

// capture flag names
const (
	FlagInputName    = "input"
	FlagSourceName   = "source"
	FlagParallelName = "parallel"
	FlagCPUName      = "cpu"
)

var captureFlags = []Flag{
	{Name: FlagInputName, Help: "read leaves from a dump file instead of the local processors"},
	{Name: FlagSourceName, Help: fmt.Sprintf("how leaves are read from local processors, one of: %s", strings.Join(source.Kinds, ", "))},
	{Name: FlagParallelName, Help: "maximum number of processors walked at once, 0 for one per available thread"},
}

// AddCaptureFlags adds the flags that select where leaves come from.
func AddCaptureFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&FlagInput, FlagInputName, "", captureFlags[0].Help)
	cmd.Flags().StringVar(&FlagSource, FlagSourceName, string(source.KindAuto), captureFlags[1].Help)
	cmd.Flags().IntVar(&FlagParallel, FlagParallelName, 0, captureFlags[2].Help)

	cmd.MarkFlagsMutuallyExclusive(FlagInputName, FlagSourceName)
	cmd.MarkFlagsMutuallyExclusive(FlagInputName, FlagParallelName)
}

func GetCaptureFlagGroup() FlagGroup {
	return FlagGroup{
		GroupName: "Capture Options",
		Flags:     captureFlags,
	}
}

// ValidateCaptureFlags checks the capture flags. The input file must exist.
func ValidateCaptureFlags(cmd *cobra.Command) error {
	if FlagInput != "" {
		exists, err := util.FileExists(FlagInput)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("input file %s does not exist", FlagInput)
		}
	}
	if !slices.Contains(source.Kinds, FlagSource) {
		return fmt.Errorf("source options are: %s", strings.Join(source.Kinds, ", "))
	}
	if FlagParallel < 0 {
		return fmt.Errorf("parallel must be 0 or greater")
	}
	return nil
}

// ParseCPUList expands a CPU list such as "0-3,8". An empty list or "all" returns nil,
// meaning every processor.
func ParseCPUList(cpuList string) ([]int, error) {
	cpus, err := util.ParseCPUList(cpuList)
	if err != nil {
		return nil, fmt.Errorf("invalid CPU list %q: %v", cpuList, err)
	}
	return cpus, nil
}

// UsageFunc prints the command's flags in groups, followed by the global flags.
func UsageFunc(getFlagGroups func() []FlagGroup) func(*cobra.Command) error {
	return func(cmd *cobra.Command) error {
		cmd.Printf("Usage: %s\n\n", cmd.UseLine())
		cmd.Printf("Examples:\n%s\n\n", cmd.Example)
		cmd.Println("Flags:")
		for _, group := range getFlagGroups() {
			cmd.Printf("  %s:\n", group.GroupName)
			for _, flag := range group.Flags {
				flagDefault := ""
				if f := cmd.Flags().Lookup(flag.Name); f != nil && f.DefValue != "" && f.DefValue != "[]" {
					flagDefault = fmt.Sprintf(" (default: %s)", f.DefValue)
				}
				cmd.Printf("    --%-20s %s%s\n", flag.Name, flag.Help, flagDefault)
			}
		}
		cmd.Println("\nGlobal Flags:")
		cmd.Root().PersistentFlags().VisitAll(func(pf *pflag.Flag) {
			flagDefault := ""
			if pf.DefValue != "" {
				flagDefault = fmt.Sprintf(" (default: %s)", pf.DefValue)
			}
			cmd.Printf("  --%-20s %s%s\n", pf.Name, pf.Usage, flagDefault)
		})
		return nil
	}
}

// ValidateFormat checks that every requested format is one of options.
func ValidateFormat(formats []string, options []string) error {
	for _, format := range formats {
		if !slices.Contains(options, format) {
			err := fmt.Errorf("format options are: %s", strings.Join(options, ", "))
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
	}
	return nil
}
