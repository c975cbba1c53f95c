// Package serve is a subcommand of the root command. It exposes decoded processor data as
// Prometheus gauges.
package serve

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"cpuid/internal/common"
	"cpuid/internal/cpuid"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const cmdName = "serve"

var examples = []string{
	fmt.Sprintf("  Serve decoded data on :9101:        $ %s %s", common.AppName, cmdName),
	fmt.Sprintf("  Re-walk the processors every 5m:    $ %s %s --listen :9200 --refresh 5m", common.AppName, cmdName),
	fmt.Sprintf("  Serve a dump:                       $ %s %s --input cpus.yaml", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Expose decoded data as Prometheus metrics",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

var (
	flagListen  string
	flagRefresh time.Duration
)

const (
	flagListenName  = "listen"
	flagRefreshName = "refresh"
)

func init() {
	Cmd.Flags().StringVar(&flagListen, flagListenName, ":9101", "")
	Cmd.Flags().DurationVar(&flagRefresh, flagRefreshName, 0, "")
	common.AddCaptureFlags(Cmd)

	Cmd.SetUsageFunc(common.UsageFunc(getFlagGroups))
}

func getFlagGroups() []common.FlagGroup {
	var groups []common.FlagGroup
	flags := []common.Flag{
		{
			Name: flagListenName,
			Help: "address the metrics server listens on",
		},
		{
			Name: flagRefreshName,
			Help: "interval between captures of the local processors, e.g., 10m. 0 captures once",
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
	if flagListen == "" {
		return common.FlagValidationError(cmd, fmt.Sprintf("--%s must not be empty", flagListenName))
	}
	if flagRefresh < 0 {
		return common.FlagValidationError(cmd, fmt.Sprintf("--%s must not be negative", flagRefreshName))
	}
	if flagRefresh > 0 && cmd.Flags().Changed(common.FlagInputName) {
		return common.FlagValidationError(cmd, fmt.Sprintf("--%s applies to the local processors, not to --%s", flagRefreshName, common.FlagInputName))
	}
	if err := common.ValidateCaptureFlags(cmd); err != nil {
		return common.FlagValidationError(cmd, err.Error())
	}
	return nil
}

// capture acquires and decodes every processor.
func capture(ctx context.Context) (*cpuid.System, error) {
	acquisition, err := common.Acquire(ctx, nil)
	if err != nil {
		return nil, err
	}
	return acquisition.NewSystem()
}

// refresh captures and updates the exporter.
func refresh(ctx context.Context, e *exporter) error {
	system, err := capture(ctx)
	if err != nil {
		return err
	}
	e.update(system, float64(time.Now().Unix()))
	slog.Info("updated metrics", slog.Int("processors", len(system.CPUs())))
	return nil
}

func newServer(listenAddr string, gatherer prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              listenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

func runCmd(cmd *cobra.Command, args []string) error {
	ctx, stop := common.SignalContext(cmd)
	defer stop()
	registry := prometheus.NewRegistry()
	e := newExporter(registry)
	if err := refresh(ctx, e); err != nil {
		return common.CommandError(cmd, err)
	}
	server := newServer(flagListen, registry)
	serverErr := make(chan error, 1)
	slog.Info("Starting Prometheus metrics server", slog.String("address", flagListen))
	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()
	fmt.Fprintf(cmd.OutOrStdout(), "Serving metrics on %s/metrics\n", flagListen)

	var ticks <-chan time.Time
	if flagRefresh > 0 {
		ticker := time.NewTicker(flagRefresh)
		defer ticker.Stop()
		ticks = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			slog.Info("stopping metrics server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return common.CommandError(cmd, errors.Wrap(err, "failed to stop metrics server"))
			}
			return nil
		case err, ok := <-serverErr:
			if ok {
				return common.CommandError(cmd, errors.Wrap(err, "metrics server failed"))
			}
			return nil
		case <-ticks:
			// a failed refresh keeps the previous values
			if err := refresh(ctx, e); err != nil {
				slog.Error("failed to refresh metrics", slog.String("error", err.Error()))
			}
		}
	}
}
