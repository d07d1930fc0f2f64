package recorder

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"sleepywoodpecker/rp-goes-audio/internal/capture"
)

const (
	wavBitDepth = 16
	wavChannels = 1
)

// WriteWAV renders a raw little-endian sample stream to a mono 16-bit WAV
// file. Samples are centred before writing, removing the converter's
// mid-scale offset so the result plays as proper signed audio. A dangling
// byte from a truncated final sample is dropped.
func WriteWAV(filePath string, raw []byte, sampleRate int) error {
	raw = raw[:len(raw)&^1]
	samples, err := capture.DecodeSamples(raw)
	if err != nil {
		return fmt.Errorf("decoding sample stream: %w", err)
	}

	centred := capture.CentreSamples(samples)
	data := make([]int, len(centred))
	for i, s := range centred {
		data[i] = int(s)
	}

	if err := os.MkdirAll(filepath.Dir(filePath), os.ModePerm); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	outFile, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer outFile.Close()

	enc := wav.NewEncoder(outFile, sampleRate, wavBitDepth, wavChannels, 1)
	buf := &audio.IntBuffer{
		Data:   data,
		Format: &audio.Format{SampleRate: sampleRate, NumChannels: wavChannels},
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("writing wav data: %w", err)
	}
	return enc.Close()
}
