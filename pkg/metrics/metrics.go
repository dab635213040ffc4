// Package metrics exposes Prometheus metrics for array decode activity
// and the IPC message channel. Metrics are registered once at package
// load; components record through the shared vectors with their own
// labels.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DecodeOps counts full decompressions (IntoCanonical) by encoding.
	DecodeOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vortex_decode_operations_total",
			Help: "Total number of array decompressions by encoding",
		},
		[]string{"encoding"},
	)

	// DecodeDuration tracks decompression latency by encoding.
	DecodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vortex_decode_duration_seconds",
			Help:    "Array decompression latency by encoding",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
		},
		[]string{"encoding"},
	)

	// MessagesRead counts IPC messages consumed, labeled by kind.
	MessagesRead = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vortex_ipc_messages_read_total",
			Help: "Total number of IPC messages read by message kind",
		},
		[]string{"kind"},
	)

	// MessagesWritten counts IPC messages produced, labeled by kind.
	MessagesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vortex_ipc_messages_written_total",
			Help: "Total number of IPC messages written by message kind",
		},
		[]string{"kind"},
	)

	// BytesRead counts bytes consumed from IPC transports, split into
	// header and body bytes.
	BytesRead = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vortex_ipc_bytes_read_total",
			Help: "Total bytes read from IPC transports",
		},
		[]string{"section"},
	)

	// BytesWritten counts bytes written to IPC transports, split into
	// header and body bytes.
	BytesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vortex_ipc_bytes_written_total",
			Help: "Total bytes written to IPC transports",
		},
		[]string{"section"},
	)
)

// Sections for the byte counters.
const (
	SectionHeader = "header"
	SectionBody   = "body"
)

// Timer measures one operation's wall time into a histogram.
type Timer struct {
	start time.Time
	obs   prometheus.Observer
}

// NewDecodeTimer starts a timer for one decode of the given encoding.
func NewDecodeTimer(encoding string) *Timer {
	DecodeOps.WithLabelValues(encoding).Inc()
	return &Timer{start: time.Now(), obs: DecodeDuration.WithLabelValues(encoding)}
}

// Stop records the elapsed time and returns it.
func (t *Timer) Stop() time.Duration {
	d := time.Since(t.start)
	t.obs.Observe(d.Seconds())
	return d
}
