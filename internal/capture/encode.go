package capture

import (
	"encoding/binary"
	"fmt"
)

// The wire format is the samples and nothing else: each uint16 reading as two
// little-endian bytes, in sample order. Block id and timestamp stay on the
// device for logging. This matches what the host clients decode (s16le).

// midScale is the centre of the 12-bit conversion range.
const midScale = 2048

// AppendSamples appends the little-endian byte representation of samples to
// dst and returns the extended slice.
func AppendSamples(dst []byte, samples []uint16) []byte {
	for _, s := range samples {
		dst = binary.LittleEndian.AppendUint16(dst, s)
	}
	return dst
}

// SampleBytes serializes samples into a fresh byte slice of len(samples)*2.
func SampleBytes(samples []uint16) []byte {
	return AppendSamples(make([]byte, 0, len(samples)*2), samples)
}

// DecodeSamples is the inverse of SampleBytes. The payload length must be
// even; anything else means the stream lost a byte somewhere.
func DecodeSamples(data []byte) ([]uint16, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("sample payload length %d is not a whole number of samples", len(data))
	}
	samples := make([]uint16, len(data)/2)
	for i := range samples {
		samples[i] = binary.LittleEndian.Uint16(data[i*2:])
	}
	return samples, nil
}

// CentreSamples shifts raw unsigned readings to signed PCM centred on zero.
func CentreSamples(samples []uint16) []int16 {
	centred := make([]int16, len(samples))
	for i, s := range samples {
		centred[i] = int16(int32(s) - midScale)
	}
	return centred
}
