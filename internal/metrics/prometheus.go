// Package metrics provides a Prometheus-backed implementation of the
// transfer engine's MetricsCollector.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusCollector records transfer engine activity in a dedicated
// registry.
type PrometheusCollector struct {
	registry *prometheus.Registry

	transfers *prometheus.CounterVec
	volume    *prometheus.CounterVec
	errors    *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewPrometheusCollector creates and registers the engine metrics.
func NewPrometheusCollector(namespace string) (*PrometheusCollector, error) {
	pc := &PrometheusCollector{
		registry: prometheus.NewRegistry(),
		transfers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transfers_total",
				Help:      "Total number of transfer attempts per terminal status",
			},
			[]string{"status"},
		),
		volume: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transfer_amount_total",
				Help:      "Sum of transfer amounts per terminal status",
			},
			[]string{"status"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of errors per operation and type",
			},
			[]string{"operation", "type"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Operation latency per operation",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}

	collectors := []prometheus.Collector{
		pc.transfers,
		pc.volume,
		pc.errors,
		pc.duration,
	}
	for _, c := range collectors {
		if err := pc.registry.Register(c); err != nil {
			return nil, err
		}
	}
	return pc, nil
}

func (pc *PrometheusCollector) RecordTransfer(status string, amount float64) {
	pc.transfers.WithLabelValues(status).Inc()
	pc.volume.WithLabelValues(status).Add(amount)
}

func (pc *PrometheusCollector) RecordError(operation, errType string) {
	pc.errors.WithLabelValues(operation, errType).Inc()
}

func (pc *PrometheusCollector) RecordDuration(operation string, d time.Duration) {
	pc.duration.WithLabelValues(operation).Observe(d.Seconds())
}

// Handler exposes the registry for scraping.
func (pc *PrometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(pc.registry, promhttp.HandlerOpts{})
}
