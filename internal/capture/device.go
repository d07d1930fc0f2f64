package capture

import (
	"context"
	"math"
	"time"

	"sleepywoodpecker/rp-goes-audio/internal/conf"
)

// Converter is the acquisition hardware: one call converts a full block of
// samples into dst at the rate selected by divisor, returning only once the
// transfer completed or failed. On error dst contents are undefined and the
// caller must not publish them.
type Converter interface {
	ConvertBlock(ctx context.Context, divisor uint16, dst []uint16) error
}

// RateDivisor maps a target sample rate to the converter clock divisor
// (clock/rate - 1).
func RateDivisor(sampleRate int) uint16 {
	return uint16(conf.AdcClockHz/sampleRate - 1)
}

// divisorRate is the inverse of RateDivisor.
func divisorRate(divisor uint16) int {
	return conf.AdcClockHz / (int(divisor) + 1)
}

// SineSource is a software converter producing a pure tone in the 12-bit
// range, paced to real time so the pipeline behaves the way it does against
// hardware. Phase is continuous across blocks.
type SineSource struct {
	freqHz float64
	phase  float64
}

// NewSineSource returns a source emitting a tone at freqHz.
func NewSineSource(freqHz float64) *SineSource {
	return &SineSource{freqHz: freqHz}
}

func (s *SineSource) ConvertBlock(ctx context.Context, divisor uint16, dst []uint16) error {
	rate := divisorRate(divisor)
	step := 2 * math.Pi * s.freqHz / float64(rate)
	for i := range dst {
		dst[i] = uint16(midScale + 1500*math.Sin(s.phase))
		s.phase += step
	}
	if s.phase > 2*math.Pi {
		s.phase = math.Mod(s.phase, 2*math.Pi)
	}

	// a real converter suspends for the duration of the block transfer
	blockTime := time.Duration(len(dst)) * time.Second / time.Duration(rate)
	select {
	case <-time.After(blockTime):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
