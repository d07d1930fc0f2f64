// Package conf holds the runtime settings for the audio rig. Defaults mirror
// the firmware build-time constants; a config.yaml and environment variables
// can override them.
package conf

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// CaptureSettings configures the acquisition engine.
type CaptureSettings struct {
	Source     string // "sine" or "malgo"
	Device     string // capture device name for the malgo source, empty for default
	SampleRate int    // target sample rate in Hz
	BlockSize  int    // samples per block
	Handoff    string // "queue" or "double"
	QueueSize  int    // queue variant capacity
}

// TransportSettings configures the serial link used by the stream command.
type TransportSettings struct {
	Port          string        // serial device path
	Baud          int           // serial baudrate
	ChunkSize     int           // max bytes per serial write
	StatsInterval time.Duration // period of throughput reports
}

// UDPSettings configures the broadcast link used by the serve command.
type UDPSettings struct {
	Target    string        // destination address, usually a broadcast address
	Chunk     int           // max bytes per datagram
	Pace      time.Duration // delay between datagrams
	BlockSize int           // samples per block on the UDP path
}

// SensorSettings configures the climate sensor poller.
type SensorSettings struct {
	Interval    time.Duration // poll period
	MinInterval time.Duration // minimum spacing between physical sensor reads
}

// SupabaseSettings configures the readings push. Disabled while URL or Key is
// empty.
type SupabaseSettings struct {
	URL string
	Key string
}

// WebSettings configures the sensor web server.
type WebSettings struct {
	Enabled bool
	Listen  string
}

// Settings is the root configuration object, populated by Load and handed to
// the subcommands.
type Settings struct {
	Debug   bool
	LogPath string

	Capture   CaptureSettings
	Transport TransportSettings
	UDP       UDPSettings
	Sensor    SensorSettings
	Supabase  SupabaseSettings
	Web       WebSettings
}

// Load fills settings from defaults, an optional config.yaml and the
// environment. cfgFile overrides the config search path when non-empty.
func Load(settings *Settings, cfgFile string) error {
	setDefaults()
	bindEnvironment()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/rp-goes-audio")
	}

	if err := viper.ReadInConfig(); err != nil {
		// running without a config file is fine, everything has a default
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := viper.Unmarshal(settings); err != nil {
		return fmt.Errorf("unmarshaling config: %w", err)
	}
	return Validate(settings)
}

// Validate rejects settings the pipeline cannot run with.
func Validate(s *Settings) error {
	if s.Capture.SampleRate <= 0 || s.Capture.SampleRate > AdcClockHz {
		return fmt.Errorf("capture.samplerate %d out of range", s.Capture.SampleRate)
	}
	if s.Capture.BlockSize <= 0 {
		return fmt.Errorf("capture.blocksize must be positive, got %d", s.Capture.BlockSize)
	}
	if s.Capture.QueueSize <= 0 {
		return fmt.Errorf("capture.queuesize must be positive, got %d", s.Capture.QueueSize)
	}
	switch s.Capture.Handoff {
	case HandoffQueue, HandoffDouble:
	default:
		return fmt.Errorf("capture.handoff must be %q or %q, got %q", HandoffQueue, HandoffDouble, s.Capture.Handoff)
	}
	switch s.Capture.Source {
	case SourceSine, SourceMalgo:
	default:
		return fmt.Errorf("capture.source must be %q or %q, got %q", SourceSine, SourceMalgo, s.Capture.Source)
	}
	if s.Transport.ChunkSize <= 0 {
		return fmt.Errorf("transport.chunksize must be positive, got %d", s.Transport.ChunkSize)
	}
	if s.UDP.Chunk <= 0 {
		return fmt.Errorf("udp.chunk must be positive, got %d", s.UDP.Chunk)
	}
	if s.UDP.BlockSize <= 0 {
		return fmt.Errorf("udp.blocksize must be positive, got %d", s.UDP.BlockSize)
	}
	return nil
}

// bindEnvironment wires the env variable names the firmware read from its
// .env file, plus an RPGA_ prefix for everything else.
func bindEnvironment() {
	viper.SetEnvPrefix("RPGA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// legacy .env names
	viper.BindEnv("supabase.url", "SUPABASE_URL")
	viper.BindEnv("supabase.key", "SUPABASE_KEY")
	viper.BindEnv("transport.port", "SERIAL_PORT")
}
