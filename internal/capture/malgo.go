package capture

import (
	"context"
	"encoding/binary"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/smallnest/ringbuffer"
	"go.uber.org/zap"
)

// micRingBlocks sizes the callback ring buffer in blocks of the configured
// block size; the consumer drains it one block per ConvertBlock call.
const micRingBlocks = 8

// micPollInterval is how long ConvertBlock waits between ring buffer checks
// while a block's worth of bytes has not arrived yet.
const micPollInterval = time.Millisecond

// MicSource captures from a real microphone through malgo. The device
// callback deposits raw S16 frames into a ring buffer; ConvertBlock drains
// one block at a time and rescales the 16-bit signed samples into the 12-bit
// unsigned range the rest of the pipeline speaks.
type MicSource struct {
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device

	mu   sync.Mutex
	ring *ringbuffer.RingBuffer

	overruns atomic.Uint64
	scratch  []byte
	log      *zap.Logger
}

// NewMicSource opens and starts the capture device. deviceName selects a
// device by substring match against the enumerated capture devices; empty
// picks the system default.
func NewMicSource(sampleRate, blockSize int, deviceName string, log *zap.Logger) (*MicSource, error) {
	var backends []malgo.Backend
	switch runtime.GOOS {
	case "linux":
		backends = []malgo.Backend{malgo.BackendAlsa}
	case "windows":
		backends = []malgo.Backend{malgo.BackendWasapi}
	case "darwin":
		backends = []malgo.Backend{malgo.BackendCoreaudio}
	}

	malgoCtx, err := malgo.InitContext(backends, malgo.ContextConfig{}, func(message string) {
		log.Debug("[mic] " + strings.TrimSpace(message))
	})
	if err != nil {
		return nil, fmt.Errorf("initializing audio context: %w", err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = uint32(sampleRate)
	deviceConfig.Alsa.NoMMap = 1

	if deviceName != "" {
		infos, err := malgoCtx.Devices(malgo.Capture)
		if err != nil {
			malgoCtx.Uninit()
			return nil, fmt.Errorf("listing capture devices: %w", err)
		}
		found := false
		for i := range infos {
			if strings.Contains(infos[i].Name(), deviceName) {
				deviceConfig.Capture.DeviceID = infos[i].ID.Pointer()
				log.Info("[mic] selected capture device", zap.String("name", infos[i].Name()))
				found = true
				break
			}
		}
		if !found {
			malgoCtx.Uninit()
			return nil, fmt.Errorf("no capture device matching %q", deviceName)
		}
	}

	m := &MicSource{
		malgoCtx: malgoCtx,
		ring:     ringbuffer.New(blockSize * 2 * micRingBlocks),
		scratch:  make([]byte, blockSize*2),
		log:      log,
	}

	onReceiveFrames := func(pOutput, pInput []byte, frameCount uint32) {
		m.mu.Lock()
		n, _ := m.ring.Write(pInput)
		m.mu.Unlock()
		if n < len(pInput) {
			m.overruns.Add(1)
		}
	}

	device, err := malgo.InitDevice(malgoCtx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onReceiveFrames,
	})
	if err != nil {
		malgoCtx.Uninit()
		return nil, fmt.Errorf("initializing capture device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		malgoCtx.Uninit()
		return nil, fmt.Errorf("starting capture device: %w", err)
	}
	m.device = device
	return m, nil
}

// ConvertBlock waits until a full block of microphone bytes is buffered,
// then rescales them into dst. The divisor is ignored: the microphone clock
// is fixed at device init, not divisor-driven.
func (m *MicSource) ConvertBlock(ctx context.Context, divisor uint16, dst []uint16) error {
	need := len(dst) * 2
	if cap(m.scratch) < need {
		m.scratch = make([]byte, need)
	}
	buf := m.scratch[:need]

	for {
		m.mu.Lock()
		ready := m.ring.Length() >= need
		if ready {
			_, err := m.ring.Read(buf)
			m.mu.Unlock()
			if err != nil {
				return fmt.Errorf("reading capture ring: %w", err)
			}
			break
		}
		m.mu.Unlock()

		select {
		case <-time.After(micPollInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for i := range dst {
		s := int16(binary.LittleEndian.Uint16(buf[i*2:]))
		// 16-bit signed to 12-bit-range unsigned, centre 2048
		dst[i] = uint16(int32(s)>>4 + midScale)
	}
	return nil
}

// Overruns reports how many callback deliveries found the ring buffer full.
func (m *MicSource) Overruns() uint64 {
	return m.overruns.Load()
}

// Close stops the device and tears down the audio context.
func (m *MicSource) Close() error {
	if m.device != nil {
		m.device.Uninit()
	}
	if m.malgoCtx != nil {
		return m.malgoCtx.Uninit()
	}
	return nil
}
