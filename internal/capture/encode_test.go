package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleBytes_LittleEndianLayout(t *testing.T) {
	samples := []uint16{0x0000, 0x0102, 0x0FFF, 0xFFFF}

	data := SampleBytes(samples)

	require.Len(t, data, len(samples)*2)
	assert.Equal(t, []byte{
		0x00, 0x00,
		0x02, 0x01,
		0xFF, 0x0F,
		0xFF, 0xFF,
	}, data)
}

func TestAppendSamples_ExtendsDst(t *testing.T) {
	dst := []byte{0xAA}

	dst = AppendSamples(dst, []uint16{0x0102})

	assert.Equal(t, []byte{0xAA, 0x02, 0x01}, dst)
}

func TestDecodeSamples_RoundTrip(t *testing.T) {
	samples := []uint16{0, 1, 2048, 4095, 65535}

	decoded, err := DecodeSamples(SampleBytes(samples))

	require.NoError(t, err)
	assert.Equal(t, samples, decoded)
}

func TestDecodeSamples_OddLength(t *testing.T) {
	_, err := DecodeSamples([]byte{0x01, 0x02, 0x03})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "whole number of samples")
}

func TestDecodeSamples_Empty(t *testing.T) {
	decoded, err := DecodeSamples(nil)

	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestCentreSamples(t *testing.T) {
	tests := []struct {
		name     string
		raw      uint16
		expected int16
	}{
		{"mid scale maps to zero", 2048, 0},
		{"zero maps to most negative", 0, -2048},
		{"full scale maps to most positive", 4095, 2047},
		{"just above mid", 2049, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			centred := CentreSamples([]uint16{tt.raw})
			assert.Equal(t, []int16{tt.expected}, centred)
		})
	}
}

func TestBlockByteLen(t *testing.T) {
	b := Block{Samples: make([]uint16, 512)}

	assert.Equal(t, 1024, b.ByteLen())
}
