// Package check is a subcommand of the root command. It evaluates a boolean expression over
// the decoded features, signature, caches and topology of each processor.
package check

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"cpuid/internal/common"
	"cpuid/internal/cpuid"
	"cpuid/internal/report"
	"cpuid/internal/util"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const cmdName = "check"

var examples = []string{
	fmt.Sprintf("  Require AVX2 and a 1 MB L2:          $ %s %s 'AVX2 && l2_kb >= 1024'", common.AppName, cmdName),
	fmt.Sprintf("  Names with dashes or dots:           $ %s %s '[AVX512-FP16] || has(\"SSE4.2\")'", common.AppName, cmdName),
	fmt.Sprintf("  Require features on every processor: $ %s %s --cpu all --require AES-NI,SHA", common.AppName, cmdName),
	fmt.Sprintf("  Check a dump:                        $ %s %s --input cpus.txt 'vendor == \"AMD\" && family >= 25'", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName + " [expression]",
	Short:         "Check processors against a feature expression",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.MaximumNArgs(1),
	SilenceErrors: true,
}

var (
	flagCPUs    string
	flagRequire []string
)

const (
	flagRequireName = "require"
)

// ErrCheckFailed is returned when a processor does not satisfy the check.
var ErrCheckFailed = errors.New("check failed")

func init() {
	Cmd.Flags().StringVar(&flagCPUs, common.FlagCPUName, "0", "")
	Cmd.Flags().StringSliceVar(&flagRequire, flagRequireName, []string{}, "")
	common.AddCaptureFlags(Cmd)

	Cmd.SetUsageFunc(common.UsageFunc(getFlagGroups))
}

func getFlagGroups() []common.FlagGroup {
	var groups []common.FlagGroup
	flags := []common.Flag{
		{
			Name: common.FlagCPUName,
			Help: fmt.Sprintf("processors to check, e.g., 0-3,8, or %s", util.AllCPUs),
		},
		{
			Name: flagRequireName,
			Help: "feature short names that must all be present",
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
	if len(args) == 0 && len(flagRequire) == 0 {
		return common.FlagValidationError(cmd, fmt.Sprintf("an expression or --%s is required", flagRequireName))
	}
	if len(args) == 1 {
		if _, err := newExpression(args[0], nil); err != nil {
			return common.FlagValidationError(cmd, err.Error())
		}
	}
	known := mapset.NewThreadUnsafeSet(cpuid.KnownFeatureNames()...)
	if unknown := mapset.NewThreadUnsafeSet(flagRequire...).Difference(known); unknown.Cardinality() > 0 {
		names := unknown.ToSlice()
		slices.Sort(names)
		return common.FlagValidationError(cmd, fmt.Sprintf("unknown feature name(s): %s", strings.Join(names, ", ")))
	}
	if _, err := common.ParseCPUList(flagCPUs); err != nil {
		return common.FlagValidationError(cmd, err.Error())
	}
	if err := common.ValidateCaptureFlags(cmd); err != nil {
		return common.FlagValidationError(cmd, err.Error())
	}
	return nil
}

// Result is the outcome of the check on one processor.
type Result struct {
	CPU     int
	Value   bool
	Missing []string
}

// Passed reports whether the expression held and no required feature was missing.
func (r Result) Passed() bool {
	return r.Value && len(r.Missing) == 0
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
	acquisition.Dump = selected
	system, err := acquisition.NewSystem()
	if err != nil {
		return common.CommandError(cmd, err)
	}
	expressionText := ""
	if len(args) == 1 {
		expressionText = args[0]
	}
	var results []Result
	for _, c := range system.CPUs() {
		result, err := checkCapture(c.ID, c.Capture, expressionText, flagRequire)
		if err != nil {
			return common.CommandError(cmd, err)
		}
		results = append(results, result)
	}
	fmt.Fprint(cmd.OutOrStdout(), renderResults(results, expressionText))
	for _, r := range results {
		if !r.Passed() {
			slog.Info("check failed", slog.Int("cpu", r.CPU), slog.String("expression", expressionText), slog.String("missing", strings.Join(r.Missing, ",")))
			cmd.SilenceUsage = true
			return ErrCheckFailed
		}
	}
	return nil
}

// checkCapture evaluates expression, when set, and the required features against one capture.
func checkCapture(cpu int, c *cpuid.Capture, expression string, required []string) (Result, error) {
	result := Result{CPU: cpu, Value: true}
	if expression != "" {
		features := make(map[string]bool)
		for _, f := range c.Features() {
			features[f.Name] = true
		}
		evaluable, err := newExpression(expression, features)
		if err != nil {
			return Result{}, err
		}
		value, err := evaluateExpression(evaluable, parameters(c))
		if err != nil {
			return Result{}, errors.Wrapf(err, "CPU %d", cpu)
		}
		b, ok := value.(bool)
		if !ok {
			return Result{}, errors.Errorf("expression %q is not boolean, it evaluates to %v", expression, value)
		}
		result.Value = b
	}
	missing := mapset.NewThreadUnsafeSet(required...).Difference(c.FeatureNames()).ToSlice()
	slices.Sort(missing)
	result.Missing = missing
	return result, nil
}

func renderResults(results []Result, expression string) string {
	var rows [][]string
	for _, r := range results {
		status := "PASS"
		if !r.Passed() {
			status = "FAIL"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.CPU),
			fmt.Sprintf("%t", r.Value),
			strings.Join(r.Missing, ", "),
			status,
		})
	}
	var sb strings.Builder
	if expression != "" {
		sb.WriteString(fmt.Sprintf("Expression: %s\n", expression))
	}
	sb.WriteString(report.BorderedTable([]string{"CPU", "Expression", "Missing Features", "Result"}, rows))
	return sb.String()
}
