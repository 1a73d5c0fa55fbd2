package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	ingested         *prometheus.CounterVec
	fallbacks        *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	fetchLatency     *prometheus.HistogramVec
	websocketClients prometheus.Gauge
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		ingested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_signals_ingested_total",
				Help: "Total number of signals ingested per source",
			},
			[]string{"source"},
		),
		fallbacks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_fallback_activations_total",
				Help: "Cycles in which a source served fallback data",
			},
			[]string{"source"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		fetchLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marketpulse_fetch_duration_seconds",
				Help:    "Duration of source fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		websocketClients: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "marketpulse_websocket_clients",
				Help: "Currently connected websocket clients",
			},
		),
	}
}

// RecordIngested counts signals stored from a source.
func (r *Recorder) RecordIngested(source string, count int) {
	r.ingested.WithLabelValues(source).Add(float64(count))
}

// RecordFallback counts a fallback activation for a source.
func (r *Recorder) RecordFallback(source string) {
	r.fallbacks.WithLabelValues(source).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordFetchLatency records a source fetch duration in seconds.
func (r *Recorder) RecordFetchLatency(source string, seconds float64) {
	r.fetchLatency.WithLabelValues(source).Observe(seconds)
}

// SetWebsocketClients records the connected client count.
func (r *Recorder) SetWebsocketClients(n int) {
	r.websocketClients.Set(float64(n))
}
