package observability

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics

	m.IncBlocksCaptured()
	m.IncCaptureErrors()
	m.IncBlocksSent()
	m.IncSendErrors()
	m.AddBytesWritten(64)
	m.IncHandoffDrops()
	m.SetQueueDepth(3)
	assert.NotNil(t, m.Handler())
}

func TestMetrics_CountersShowUpInHandler(t *testing.T) {
	m := NewMetrics()
	m.IncBlocksCaptured()
	m.IncBlocksCaptured()
	m.AddBytesWritten(128)
	m.SetQueueDepth(2)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	assert.Contains(t, body, "audio_blocks_captured_total 2")
	assert.Contains(t, body, "audio_link_bytes_total 128")
	assert.Contains(t, body, "audio_handoff_depth 2")
}
