// Package observability exposes the pipeline counters as prometheus metrics.
// The writer's periodic log line stays the primary throughput report; the
// collectors here mirror it for scraping.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the pipeline collectors behind one registry. A nil *Metrics
// is valid and turns every recording method into a no-op, so components can
// take it optionally.
type Metrics struct {
	registry *prometheus.Registry

	blocksCaptured prometheus.Counter
	captureErrors  prometheus.Counter
	blocksSent     prometheus.Counter
	sendErrors     prometheus.Counter
	bytesWritten   prometheus.Counter
	handoffDrops   prometheus.Counter
	queueDepth     prometheus.Gauge
}

// NewMetrics builds a registry with all pipeline collectors registered.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.blocksCaptured = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audio_blocks_captured_total",
		Help: "Sample blocks successfully captured by the acquisition engine.",
	})
	m.captureErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audio_capture_errors_total",
		Help: "Failed conversion attempts.",
	})
	m.blocksSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audio_blocks_sent_total",
		Help: "Sample blocks fully written to the link.",
	})
	m.sendErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audio_send_errors_total",
		Help: "Sample blocks abandoned because a chunk write failed.",
	})
	m.bytesWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audio_link_bytes_total",
		Help: "Bytes written to the link.",
	})
	m.handoffDrops = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audio_handoff_drops_total",
		Help: "Unread blocks overwritten in the double-buffer handoff.",
	})
	m.queueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "audio_handoff_depth",
		Help: "Blocks currently pending in the handoff buffer.",
	})

	m.registry.MustRegister(
		m.blocksCaptured, m.captureErrors,
		m.blocksSent, m.sendErrors, m.bytesWritten,
		m.handoffDrops, m.queueDepth,
	)
	return m
}

// Handler serves the registry in prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) IncBlocksCaptured() {
	if m != nil {
		m.blocksCaptured.Inc()
	}
}

func (m *Metrics) IncCaptureErrors() {
	if m != nil {
		m.captureErrors.Inc()
	}
}

func (m *Metrics) IncBlocksSent() {
	if m != nil {
		m.blocksSent.Inc()
	}
}

func (m *Metrics) IncSendErrors() {
	if m != nil {
		m.sendErrors.Inc()
	}
}

func (m *Metrics) AddBytesWritten(n int) {
	if m != nil {
		m.bytesWritten.Add(float64(n))
	}
}

func (m *Metrics) IncHandoffDrops() {
	if m != nil {
		m.handoffDrops.Inc()
	}
}

func (m *Metrics) SetQueueDepth(n int) {
	if m != nil {
		m.queueDepth.Set(float64(n))
	}
}
