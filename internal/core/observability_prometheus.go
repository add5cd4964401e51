package core

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements MetricsRecorder with an operation counter
// and latency histogram on its own registry. Entry-level counters are fed
// by the service through RecordEntries.
type PrometheusRecorder struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	entries    *prometheus.CounterVec
}

// NewPrometheusRecorder registers the psibridge collectors on a fresh registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	r := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "psibridge",
				Subsystem: "service",
				Name:      "operations_total",
				Help:      "Total number of service operations by status",
			},
			[]string{"operation", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "psibridge",
				Subsystem: "service",
				Name:      "operation_duration_seconds",
				Help:      "Duration of service operations in seconds",
				Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
			},
			[]string{"operation"},
		),
		entries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "psibridge",
				Subsystem: "entries",
				Name:      "processed_total",
				Help:      "Total number of entries processed by operation",
			},
			[]string{"operation"},
		),
	}
	r.registry.MustRegister(r.operations, r.duration, r.entries)
	return r
}

// Observe implements MetricsRecorder.
func (r *PrometheusRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	r.operations.WithLabelValues(operation, statusOf(success)).Inc()
	r.duration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordEntries counts n entries handled by operation.
func (r *PrometheusRecorder) RecordEntries(operation string, n int) {
	if n > 0 {
		r.entries.WithLabelValues(operation).Add(float64(n))
	}
}

// Registry exposes the registry for scraping or inspection.
func (r *PrometheusRecorder) Registry() *prometheus.Registry { return r.registry }

// WriteTextfile writes the current metrics in the node exporter textfile
// format, for batch runs that cannot be scraped.
func (r *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// entryCounter is implemented by recorders that also count entries.
type entryCounter interface {
	RecordEntries(operation string, n int)
}
