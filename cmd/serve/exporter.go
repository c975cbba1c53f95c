package serve

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"log/slog"
	"strconv"

	"cpuid/internal/cpuid"
	"cpuid/internal/table"

	"github.com/prometheus/client_golang/prometheus"
)

const promMetricPrefix = "cpuid_"

// exporter holds the gauges populated from a decoded system.
type exporter struct {
	cacheSize   *prometheus.GaugeVec
	tlbEntries  *prometheus.GaugeVec
	feature     *prometheus.GaugeVec
	topology    *prometheus.GaugeVec
	anomalies   *prometheus.GaugeVec
	lastRefresh prometheus.Gauge
}

func newExporter(registerer prometheus.Registerer) *exporter {
	e := &exporter{
		cacheSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: promMetricPrefix + "cache_size_bytes",
				Help: "Cache size in bytes",
			},
			[]string{"cpu", "level", "type", "source"},
		),
		tlbEntries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: promMetricPrefix + "tlb_entries",
				Help: "TLB entry count",
			},
			[]string{"cpu", "level", "type", "page_size", "source"},
		),
		feature: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: promMetricPrefix + "feature",
				Help: "Feature flag reported by the processor, always 1",
			},
			[]string{"cpu", "name", "leaf", "register"},
		),
		topology: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: promMetricPrefix + "topology_shift",
				Help: "x2APIC ID shift of a topology level",
			},
			[]string{"cpu", "level", "type"},
		),
		anomalies: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: promMetricPrefix + "decode_anomalies",
				Help: "Number of anomalies recorded while decoding",
			},
			[]string{"cpu"},
		),
		lastRefresh: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: promMetricPrefix + "last_refresh_timestamp_seconds",
				Help: "Unix time of the last capture",
			},
		),
	}
	e.cacheSize = registerGaugeVec(registerer, e.cacheSize)
	e.tlbEntries = registerGaugeVec(registerer, e.tlbEntries)
	e.feature = registerGaugeVec(registerer, e.feature)
	e.topology = registerGaugeVec(registerer, e.topology)
	e.anomalies = registerGaugeVec(registerer, e.anomalies)
	if err := registerer.Register(e.lastRefresh); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			e.lastRefresh = are.ExistingCollector.(prometheus.Gauge)
		} else {
			slog.Error("Failed to register Prometheus metric", slog.String("error", err.Error()))
		}
	}
	return e
}

// registerGaugeVec registers gauge, returning the collector already registered under the
// same name when there is one.
func registerGaugeVec(registerer prometheus.Registerer, gauge *prometheus.GaugeVec) *prometheus.GaugeVec {
	if err := registerer.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.GaugeVec)
		}
		slog.Error("Failed to register Prometheus metric", slog.String("error", err.Error()))
	}
	return gauge
}

// update replaces every gauge value with those of system.
func (e *exporter) update(system *cpuid.System, timestamp float64) {
	e.cacheSize.Reset()
	e.tlbEntries.Reset()
	e.feature.Reset()
	e.topology.Reset()
	e.anomalies.Reset()
	for _, c := range system.CPUs() {
		cpu := strconv.Itoa(c.ID)
		for _, cache := range c.Capture.Caches() {
			e.cacheSize.WithLabelValues(
				cpu,
				strconv.Itoa(cache.Level),
				cache.Type.String(),
				table.LeafID(cache.SourceLeaf, cache.SourceSubleaf),
			).Set(float64(cache.Size))
		}
		for _, tlb := range c.Capture.TLBs() {
			e.tlbEntries.WithLabelValues(
				cpu,
				strconv.Itoa(tlb.Level),
				tlb.Type.String(),
				tlb.PageSize.String(),
				table.LeafID(tlb.SourceLeaf, tlb.SourceSubleaf),
			).Set(float64(tlb.Entries))
		}
		for _, f := range c.Capture.Features() {
			e.feature.WithLabelValues(
				cpu,
				f.Name,
				table.LeafID(f.Leaf, f.Subleaf),
				f.Register.String(),
			).Set(1)
		}
		for _, level := range c.Capture.Topology() {
			e.topology.WithLabelValues(
				cpu,
				strconv.Itoa(level.Level),
				level.Type.String(),
			).Set(float64(level.Shift))
		}
		e.anomalies.WithLabelValues(cpu).Set(float64(len(c.Capture.Anomalies())))
	}
	e.lastRefresh.Set(timestamp)
}
