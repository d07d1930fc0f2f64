package capture

import "math"

// Loudness computes the RMS amplitude of a block's centred samples,
// normalised so a full-scale 12-bit swing reports 1.0.
func Loudness(samples []uint16) float32 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		c := float64(int32(s) - midScale)
		sum += c * c
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	return float32(rms / midScale)
}
