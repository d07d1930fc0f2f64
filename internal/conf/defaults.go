// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

const (
	// AdcClockHz is the ADC reference clock the sample-rate divisor is
	// derived from (divisor = clock/rate - 1).
	AdcClockHz = 48_000_000

	// DefaultSampleRate matches the firmware capture rate.
	DefaultSampleRate = 44100
	// DefaultBlockSize is the number of samples captured per block.
	DefaultBlockSize = 512
	// DefaultQueueSize is the handoff queue capacity in blocks.
	DefaultQueueSize = 4
	// DefaultChunkSize is the CDC full-speed packet size.
	DefaultChunkSize = 64
	// DefaultUDPChunk is the max datagram payload for the UDP stream.
	DefaultUDPChunk = 1024
	// DefaultUDPBlockSize is the samples-per-block used on the UDP path,
	// which streams larger blocks than the serial one.
	DefaultUDPBlockSize = 1024

	// DefaultLogPath is where the file logger writes next to stdout.
	DefaultLogPath = "rp-goes-audio.log"

	HandoffQueue  = "queue"
	HandoffDouble = "double"

	SourceSine  = "sine"
	SourceMalgo = "malgo"
)

func setDefaults() {
	viper.SetDefault("debug", false)
	viper.SetDefault("logpath", DefaultLogPath)

	viper.SetDefault("capture.source", SourceSine)
	viper.SetDefault("capture.device", "")
	viper.SetDefault("capture.samplerate", DefaultSampleRate)
	viper.SetDefault("capture.blocksize", DefaultBlockSize)
	viper.SetDefault("capture.handoff", HandoffQueue)
	viper.SetDefault("capture.queuesize", DefaultQueueSize)

	viper.SetDefault("transport.port", "/dev/ttyACM0")
	viper.SetDefault("transport.baud", 460800)
	viper.SetDefault("transport.chunksize", DefaultChunkSize)
	viper.SetDefault("transport.statsinterval", 2*time.Second)

	viper.SetDefault("udp.target", "255.255.255.255:1234")
	viper.SetDefault("udp.chunk", DefaultUDPChunk)
	viper.SetDefault("udp.pace", 100*time.Microsecond)
	viper.SetDefault("udp.blocksize", DefaultUDPBlockSize)

	viper.SetDefault("sensor.interval", 30*time.Second)
	viper.SetDefault("sensor.mininterval", 2*time.Second)

	viper.SetDefault("supabase.url", "")
	viper.SetDefault("supabase.key", "")

	viper.SetDefault("web.enabled", true)
	viper.SetDefault("web.listen", ":8080")
}
