package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus collectors for encoding and transcription.
type Metrics struct {
	// Encoding
	FilesPrepared    prometheus.Counter
	PrepareFailures  prometheus.Counter
	PrepareDuration  prometheus.Histogram
	PreparedFileSize prometheus.Histogram

	// Transcription
	TranscriptionRequests  prometheus.Counter
	TranscriptionSuccesses prometheus.Counter
	TranscriptionFailures  *prometheus.CounterVec
	TranscriptionDuration  prometheus.Histogram
	PayloadSize            prometheus.Histogram

	// Orchestration
	RejectedActions *prometheus.CounterVec

	// HTTP binding
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPErrors   *prometheus.CounterVec
	WSClients    prometheus.Gauge
}

// NewMetrics creates all collectors and registers them with reg.
// A nil reg registers nothing, which keeps tests and embedded uses isolated.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		FilesPrepared: factory.NewCounter(prometheus.CounterOpts{
			Name: "scribe_files_prepared_total",
			Help: "Total number of media files encoded successfully",
		}),
		PrepareFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "scribe_prepare_failures_total",
			Help: "Total number of media files that failed validation or encoding",
		}),
		PrepareDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "scribe_prepare_duration_seconds",
			Help:    "Time spent encoding a selected media file",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}),
		PreparedFileSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "scribe_prepared_file_bytes",
			Help:    "Size of prepared media files",
			Buckets: prometheus.ExponentialBuckets(64*1024, 4, 8), // 64KB to ~1GB
		}),
		TranscriptionRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "scribe_transcription_requests_total",
			Help: "Total number of transcription requests sent to the remote model",
		}),
		TranscriptionSuccesses: factory.NewCounter(prometheus.CounterOpts{
			Name: "scribe_transcription_successes_total",
			Help: "Total number of transcriptions that returned text",
		}),
		TranscriptionFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scribe_transcription_failures_total",
			Help: "Total number of failed transcriptions by error kind",
		}, []string{"kind"}),
		TranscriptionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "scribe_transcription_duration_seconds",
			Help:    "Remote transcription round trip time",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 12), // 250ms to ~8.5 minutes
		}),
		PayloadSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "scribe_transcription_payload_bytes",
			Help:    "Base64 payload size of transcription requests",
			Buckets: prometheus.ExponentialBuckets(64*1024, 4, 8),
		}),
		RejectedActions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scribe_rejected_actions_total",
			Help: "Session actions rejected by the state machine guard",
		}, []string{"action"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scribe_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scribe_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		HTTPErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scribe_http_errors_total",
			Help: "Total number of HTTP responses with status >= 400",
		}, []string{"method", "route", "type"}),
		WSClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "scribe_ws_clients",
			Help: "Number of connected event stream clients",
		}),
	}
}

// RecordPrepared records one successful encoding.
func (m *Metrics) RecordPrepared(durationSeconds float64, sizeBytes int64) {
	if m == nil {
		return
	}
	m.FilesPrepared.Inc()
	m.PrepareDuration.Observe(durationSeconds)
	m.PreparedFileSize.Observe(float64(sizeBytes))
}

// RecordPrepareFailure records one rejected or failed preparation.
func (m *Metrics) RecordPrepareFailure() {
	if m == nil {
		return
	}
	m.PrepareFailures.Inc()
}

// RecordTranscriptionRequest records an outbound request and its payload size.
func (m *Metrics) RecordTranscriptionRequest(payloadBytes int) {
	if m == nil {
		return
	}
	m.TranscriptionRequests.Inc()
	m.PayloadSize.Observe(float64(payloadBytes))
}

// RecordTranscriptionSuccess records a completed transcription.
func (m *Metrics) RecordTranscriptionSuccess(durationSeconds float64) {
	if m == nil {
		return
	}
	m.TranscriptionSuccesses.Inc()
	m.TranscriptionDuration.Observe(durationSeconds)
}

// RecordTranscriptionFailure records a failed transcription by kind.
// Precondition failures pass durationSeconds < 0 and skip the histogram.
func (m *Metrics) RecordTranscriptionFailure(kind string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.TranscriptionFailures.WithLabelValues(kind).Inc()
	if durationSeconds >= 0 {
		m.TranscriptionDuration.Observe(durationSeconds)
	}
}

// RecordRejectedAction records a guarded action such as a second selection
// while a request is in flight.
func (m *Metrics) RecordRejectedAction(action string) {
	if m == nil {
		return
	}
	m.RejectedActions.WithLabelValues(action).Inc()
}

// RecordHTTPRequest records one HTTP response.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, durationSeconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(durationSeconds)

	if status >= 400 {
		errorType := "client_error"
		if status >= 500 {
			errorType = "server_error"
		}
		m.HTTPErrors.WithLabelValues(method, route, errorType).Inc()
	}
}

// WSClientConnected tracks an event stream connection; call the returned
// function on disconnect.
func (m *Metrics) WSClientConnected() func() {
	if m == nil {
		return func() {}
	}
	m.WSClients.Inc()
	return m.WSClients.Dec
}
