package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestMetricsRecordTranscription checks counters move with Record calls.
func TestMetricsRecordTranscription(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordTranscriptionRequest(1024)
	m.RecordTranscriptionSuccess(1.5)
	m.RecordTranscriptionFailure("media_rejected", 0.2)
	m.RecordTranscriptionFailure("configuration", -1)

	if got := testutil.ToFloat64(m.TranscriptionRequests); got != 1 {
		t.Fatalf("requests = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.TranscriptionSuccesses); got != 1 {
		t.Fatalf("successes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.TranscriptionFailures.WithLabelValues("media_rejected")); got != 1 {
		t.Fatalf("media_rejected failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.TranscriptionFailures.WithLabelValues("configuration")); got != 1 {
		t.Fatalf("configuration failures = %v, want 1", got)
	}
}

// TestMetricsNilSafe verifies Record methods tolerate a nil receiver.
func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.RecordPrepared(1, 1)
	m.RecordPrepareFailure()
	m.RecordTranscriptionRequest(1)
	m.RecordTranscriptionSuccess(1)
	m.RecordTranscriptionFailure("x", 1)
	m.RecordRejectedAction("select")
}

// TestNewMetricsTwiceOnSeparateRegistries guards against duplicate registration panics.
func TestNewMetricsTwiceOnSeparateRegistries(t *testing.T) {
	NewMetrics(prometheus.NewRegistry())
	NewMetrics(prometheus.NewRegistry())
	NewMetrics(nil)
}

// TestMetricsRecordHTTPRequest splits client and server errors.
func TestMetricsRecordHTTPRequest(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordHTTPRequest("GET", "/api/v1/state", 200, 0.01)
	m.RecordHTTPRequest("POST", "/api/v1/file", 409, 0.01)
	m.RecordHTTPRequest("POST", "/api/v1/transcribe", 502, 2)

	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/v1/state", "200")); got != 1 {
		t.Fatalf("state requests = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.HTTPErrors.WithLabelValues("POST", "/api/v1/file", "client_error")); got != 1 {
		t.Fatalf("client errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.HTTPErrors.WithLabelValues("POST", "/api/v1/transcribe", "server_error")); got != 1 {
		t.Fatalf("server errors = %v, want 1", got)
	}

	done := m.WSClientConnected()
	if got := testutil.ToFloat64(m.WSClients); got != 1 {
		t.Fatalf("ws clients = %v, want 1", got)
	}
	done()
	if got := testutil.ToFloat64(m.WSClients); got != 0 {
		t.Fatalf("ws clients = %v, want 0", got)
	}
}
