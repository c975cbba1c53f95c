// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package source

import (
	"context"
	"log/slog"
	"runtime"
	"slices"

	"cpuid/internal/cpuid"
	"cpuid/internal/dump"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// StatusFunc receives progress updates for one processor.
type StatusFunc func(cpu int, status string)

// CollectOptions configures Collect.
type CollectOptions struct {
	Opener Opener
	// Parallel bounds the number of processors walked at once. Zero means one per
	// available thread.
	Parallel int
	Status   StatusFunc
}

// Collect walks every requested processor and returns the captured leaves ordered by CPU
// number. The first failure cancels the processors that have not started yet.
func Collect(ctx context.Context, cpus []int, opts CollectOptions) ([]dump.Processor, error) {
	if opts.Opener == nil {
		return nil, errors.New("no source opener")
	}
	if len(cpus) == 0 {
		return nil, errors.New("no processors requested")
	}
	ordered := slices.Clone(cpus)
	slices.Sort(ordered)
	ordered = slices.Compact(ordered)

	status := opts.Status
	if status == nil {
		status = func(int, string) {}
	}
	parallel := opts.Parallel
	if parallel <= 0 {
		parallel = runtime.NumCPU()
	}

	results := make([]dump.Processor, len(ordered))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, cpu := range ordered {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				status(cpu, "canceled")
				return err
			}
			status(cpu, "collecting")
			leaves, err := walkCPU(opts.Opener, cpu)
			if err != nil {
				status(cpu, "error")
				return err
			}
			results[i] = dump.Processor{CPU: cpu, Leaves: leaves}
			status(cpu, "collection complete")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// walkCPU opens, walks and releases the source on one goroutine, which the instruction
// source needs for its thread pinning.
func walkCPU(open Opener, cpu int) ([]cpuid.RawLeaf, error) {
	src, release, err := open(cpu)
	if err != nil {
		return nil, errors.Wrapf(err, "CPU %d", cpu)
	}
	defer release()
	leaves, err := cpuid.Walk(src)
	if err != nil {
		return nil, errors.Wrapf(err, "CPU %d", cpu)
	}
	slog.Debug("walked processor", slog.Int("cpu", cpu), slog.Int("leaves", len(leaves)))
	return leaves, nil
}
