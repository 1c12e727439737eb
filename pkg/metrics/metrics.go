// Package metrics exposes Prometheus collectors for generation runs and the
// HTTP API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "genui"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "path"},
	)

	GenerationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_total",
			Help:      "Total number of pipeline runs",
		},
		[]string{"mode", "status"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Pipeline run duration in seconds",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
		},
		[]string{"mode"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Stage duration in seconds",
			Buckets:   []float64{.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"stage", "status"},
	)
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ObserveGeneration records one pipeline run.
func ObserveGeneration(mode string, ok bool, d time.Duration) {
	GenerationTotal.WithLabelValues(mode, status(ok)).Inc()
	GenerationDuration.WithLabelValues(mode).Observe(d.Seconds())
}

// ObserveStage records one stage execution.
func ObserveStage(stage string, ok bool, d time.Duration) {
	StageDuration.WithLabelValues(stage, status(ok)).Observe(d.Seconds())
}

func status(ok bool) string {
	if ok {
		return StatusSuccess
	}
	return StatusError
}
