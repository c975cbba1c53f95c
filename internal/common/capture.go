package common

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"cpuid/internal/cpuid"
	"cpuid/internal/dump"
	"cpuid/internal/progress"
	"cpuid/internal/source"
	"cpuid/internal/util"

	"github.com/pkg/errors"
)

// Acquisition is the raw data a command works from.
type Acquisition struct {
	Dump dump.Dump
	// Live is true when the leaves were read from the local processors.
	Live bool
}

// Acquire reads the dump named by --input or walks the local processors. cpus limits the
// processors walked; nil walks every online processor. A dump file is returned whole.
func Acquire(ctx context.Context, cpus []int) (Acquisition, error) {
	if FlagInput != "" {
		d, err := dump.ReadFile(FlagInput)
		if err != nil {
			return Acquisition{}, err
		}
		slog.Info("read dump", slog.String("file", FlagInput), slog.Int("processors", len(d.CPUs)))
		return Acquisition{Dump: d}, nil
	}
	opener, err := source.OpenerFor(source.Kind(FlagSource))
	if err != nil {
		return Acquisition{}, err
	}
	if len(cpus) == 0 {
		cpus, err = source.OnlineCPUs()
		if err != nil {
			return Acquisition{}, err
		}
	}
	processors, err := collectWithProgress(ctx, cpus, opener)
	if err != nil {
		return Acquisition{}, err
	}
	return Acquisition{Dump: dump.Dump{CPUs: processors}, Live: true}, nil
}

func collectWithProgress(ctx context.Context, cpus []int, opener source.Opener) ([]dump.Processor, error) {
	multiSpinner := progress.NewMultiSpinner()
	ordered := slices.Clone(cpus)
	slices.Sort(ordered)
	ordered = slices.Compact(ordered)
	for _, cpu := range ordered {
		if err := multiSpinner.AddSpinner(spinnerLabel(cpu)); err != nil {
			return nil, err
		}
	}
	multiSpinner.Start()
	slog.Info("collecting leaves", slog.String("cpus", util.FormatCPUList(ordered)), slog.Int("parallel", FlagParallel))
	processors, err := source.Collect(ctx, ordered, source.CollectOptions{
		Opener:   opener,
		Parallel: FlagParallel,
		Status: func(cpu int, status string) {
			_ = multiSpinner.Status(spinnerLabel(cpu), status)
		},
	})
	multiSpinner.Finish()
	return processors, err
}

func spinnerLabel(cpu int) string {
	return fmt.Sprintf("CPU %d", cpu)
}

// SelectCPUs keeps the processors named in cpus, in CPU order. nil keeps all of them.
func SelectCPUs(d dump.Dump, cpus []int) (dump.Dump, error) {
	if len(cpus) == 0 {
		return d, nil
	}
	ordered := slices.Clone(cpus)
	slices.Sort(ordered)
	ordered = slices.Compact(ordered)
	var selected dump.Dump
	for _, cpu := range ordered {
		p, ok := d.Processor(cpu)
		if !ok {
			return dump.Dump{}, errors.Errorf("CPU %d is not in the capture, available: %v", cpu, d.CPUNumbers())
		}
		selected.CPUs = append(selected.CPUs, p)
	}
	return selected, nil
}

// NewSystem decodes every processor of the acquisition. A live capture has its brand
// string compared against the running processor.
func (a Acquisition) NewSystem(opts ...cpuid.Option) (*cpuid.System, error) {
	cpus := make([]cpuid.CPU, 0, len(a.Dump.CPUs))
	for _, p := range a.Dump.CPUs {
		c, err := cpuid.NewCapture(p.Leaves, opts...)
		if err != nil {
			return nil, errors.Wrapf(err, "CPU %d", p.CPU)
		}
		cpus = append(cpus, cpuid.CPU{ID: p.CPU, Capture: c})
	}
	system, err := cpuid.NewSystem(cpus)
	if err != nil {
		return nil, err
	}
	if a.Live {
		source.CrossCheckBrand(system.CPUs()[0].Capture)
	}
	return system, nil
}
