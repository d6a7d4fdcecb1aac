// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metrics exposes inference counters and latencies to Prometheus.
//
// A nil *Metrics is valid and records nothing, so callers do not need to check
// whether metrics are enabled.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fuzzy"

// Status label values of process_total.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics holds the collectors of the inference service.
type Metrics struct {
	registry        *prometheus.Registry
	processTotal    *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	rulesTriggered  *prometheus.CounterVec
	outputFallback  *prometheus.CounterVec
	enginesLoaded   prometheus.Gauge
}

// New creates the collectors and registers them, together with the Go runtime
// and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		processTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "process_total",
			Help:      "Total number of inference passes",
		}, []string{"engine", "status"}),
		processDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "process_duration_seconds",
			Help:      "Inference pass duration in seconds",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"engine"}),
		rulesTriggered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rules_triggered_total",
			Help:      "Total number of rules triggered, by rule block",
		}, []string{"engine", "block"}),
		outputFallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "output_fallback_total",
			Help:      "Total number of non-finite defuzzifications replaced by a fallback value",
		}, []string{"engine", "variable"}),
		enginesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "engines_loaded",
			Help:      "Number of engines currently served",
		}),
	}

	m.registry.MustRegister(
		m.processTotal,
		m.processDuration,
		m.rulesTriggered,
		m.outputFallback,
		m.enginesLoaded,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// ObserveProcess records one inference pass.
func (m *Metrics) ObserveProcess(engine string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.processTotal.WithLabelValues(engine, status).Inc()
	m.processDuration.WithLabelValues(engine).Observe(elapsed.Seconds())
}

// RulesTriggered adds n to the rules triggered by a block.
func (m *Metrics) RulesTriggered(engine, block string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rulesTriggered.WithLabelValues(engine, block).Add(float64(n))
}

// OutputFallback counts a fallback value used by an output variable.
func (m *Metrics) OutputFallback(engine, variable string) {
	if m == nil {
		return
	}
	m.outputFallback.WithLabelValues(engine, variable).Inc()
}

// SetEnginesLoaded sets the number of engines served.
func (m *Metrics) SetEnginesLoaded(n int) {
	if m == nil {
		return
	}
	m.enginesLoaded.Set(float64(n))
}
