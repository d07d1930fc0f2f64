package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuccessPercent(t *testing.T) {
	tests := []struct {
		name     string
		ok       uint64
		errs     uint64
		expected float64
	}{
		{"nothing sent yet", 0, 0, 100},
		{"all ok", 10, 0, 100},
		{"three of four", 3, 1, 75},
		{"half", 5, 5, 50},
		{"all failed", 0, 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, SuccessPercent(tt.ok, tt.errs), 0.001)
		})
	}
}

func TestStats_CountsAndResets(t *testing.T) {
	var s Stats

	s.RecordOK(1024)
	s.RecordOK(1024)
	s.RecordError()

	r := s.Snapshot()
	assert.Equal(t, uint64(2), r.OK)
	assert.Equal(t, uint64(1), r.Errors)
	assert.Equal(t, uint64(2048), r.Bytes)
	assert.InDelta(t, 66.67, r.Percent, 0.01)

	s.Reset()

	r = s.Snapshot()
	assert.Zero(t, r.OK)
	assert.Zero(t, r.Errors)
	assert.Zero(t, r.Bytes)
	assert.InDelta(t, 100, r.Percent, 0.001)
}
