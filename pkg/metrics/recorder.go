// Package metrics records resolve, download and verification statistics
// with Prometheus collectors on a private registry. The registry can be
// written to a node_exporter textfile after a CLI run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Resolve outcomes.
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"
)

// Recorder collects ggufy metrics. A nil *Recorder is valid and records
// nothing.
type Recorder struct {
	registry *prometheus.Registry

	resolveTotal       *prometheus.CounterVec
	downloadBytes      prometheus.Counter
	downloadDuration   prometheus.Histogram
	downloadRestarts   prometheus.Counter
	integrityChecks    *prometheus.CounterVec
	hubRequestDuration *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		resolveTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ggufy_resolve_total",
				Help: "Total number of model reference resolutions by outcome",
			},
			[]string{"result"},
		),
		downloadBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ggufy_download_bytes_total",
				Help: "Total number of artifact bytes written to the cache",
			},
		),
		downloadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ggufy_download_duration_seconds",
				Help:    "Duration of artifact downloads in seconds",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
			},
		),
		downloadRestarts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ggufy_download_restarts_total",
				Help: "Total number of partial downloads rewritten from the start",
			},
		),
		integrityChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ggufy_integrity_checks_total",
				Help: "Total number of integrity checks by status",
			},
			[]string{"status"},
		),
		hubRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ggufy_hub_request_duration_seconds",
				Help:    "Duration of hub metadata requests in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation", "success"},
		),
	}

	r.registry.MustRegister(
		r.resolveTotal,
		r.downloadBytes,
		r.downloadDuration,
		r.downloadRestarts,
		r.integrityChecks,
		r.hubRequestDuration,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// RecordResolve counts one resolution with result hit, miss or error.
func (r *Recorder) RecordResolve(result string) {
	if r == nil {
		return
	}
	r.resolveTotal.WithLabelValues(result).Inc()
}

// RecordDownload records a finished transfer.
func (r *Recorder) RecordDownload(bytes int64, restarted bool, duration time.Duration) {
	if r == nil {
		return
	}
	r.downloadBytes.Add(float64(bytes))
	r.downloadDuration.Observe(duration.Seconds())
	if restarted {
		r.downloadRestarts.Inc()
	}
}

// RecordIntegrity counts a verification outcome.
func (r *Recorder) RecordIntegrity(status string) {
	if r == nil {
		return
	}
	r.integrityChecks.WithLabelValues(status).Inc()
}

// RecordHubRequest records the latency of a hub metadata call.
func (r *Recorder) RecordHubRequest(operation string, success bool, duration time.Duration) {
	if r == nil {
		return
	}
	successLabel := "false"
	if success {
		successLabel = "true"
	}
	r.hubRequestDuration.WithLabelValues(operation, successLabel).Observe(duration.Seconds())
}

// WriteTextfile writes all metrics in the text exposition format to path,
// atomically, for the node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
