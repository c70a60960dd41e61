// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package metrics exposes Prometheus collectors for the extraction pool.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the pool collectors. It satisfies xtract.Metrics.
type Metrics struct {
	JobsTotal    *prometheus.CounterVec
	JobsInFlight prometheus.Gauge
	JobDuration  prometheus.Histogram
}

// New creates the collectors and registers them with reg. A nil reg uses
// the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		JobsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xtract_jobs_total",
				Help: "Extraction jobs processed by outcome.",
			},
			[]string{"outcome"},
		),
		JobsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "xtract_jobs_in_flight",
				Help: "Extraction jobs currently running.",
			},
		),
		JobDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "xtract_job_duration_seconds",
				Help:    "Extraction job latency in seconds.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
	}
	reg.MustRegister(m.JobsTotal, m.JobsInFlight, m.JobDuration)
	return m
}

func (m *Metrics) JobStarted() {
	m.JobsInFlight.Inc()
}

func (m *Metrics) JobFinished(d time.Duration, err error) {
	m.JobsInFlight.Dec()
	m.JobDuration.Observe(d.Seconds())
	if err != nil {
		m.JobsTotal.WithLabelValues(OutcomeFailure).Inc()
		return
	}
	m.JobsTotal.WithLabelValues(OutcomeSuccess).Inc()
}
