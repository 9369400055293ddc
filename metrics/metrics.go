// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics instruments the upload relay with prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission outcomes
const (
	OutcomeStored        = "stored"
	OutcomeDuplicate     = "duplicate"
	OutcomeInvalid       = "invalid"
	OutcomeMisconfigured = "misconfigured"
	OutcomeUpstreamError = "upstream_error"
)

// Metrics owns a private registry so tests and multiple relays never collide.
type Metrics struct {
	registry    *prometheus.Registry
	submissions *prometheus.CounterVec
	uploads     *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "survey_submissions_total",
			Help: "Submission attempts by outcome.",
		}, []string{"outcome"}),
		uploads: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "survey_upload_duration_seconds",
			Help:    "Time spent writing a submission to the content store.",
			Buckets: prometheus.DefBuckets,
		}, []string{"driver"}),
	}
	m.registry.MustRegister(
		m.submissions,
		m.uploads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	// Outcomes show up as zero before the first submission.
	for _, o := range []string{OutcomeStored, OutcomeDuplicate, OutcomeInvalid, OutcomeMisconfigured, OutcomeUpstreamError} {
		m.submissions.WithLabelValues(o)
	}
	return m
}

// Submission counts one submission attempt. Nil-safe.
func (m *Metrics) Submission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

// ObserveUpload records how long a store write took. Nil-safe.
func (m *Metrics) ObserveUpload(driver string, d time.Duration) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(driver).Observe(d.Seconds())
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
