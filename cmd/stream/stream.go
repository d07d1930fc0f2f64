// Package stream wires the serial streaming pipeline: capture engine,
// handoff buffer and transport writer.
package stream

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"sleepywoodpecker/rp-goes-audio/internal/capture"
	"sleepywoodpecker/rp-goes-audio/internal/conf"
	"sleepywoodpecker/rp-goes-audio/internal/handoff"
	"sleepywoodpecker/rp-goes-audio/internal/logger"
	"sleepywoodpecker/rp-goes-audio/internal/observability"
	"sleepywoodpecker/rp-goes-audio/internal/transport"
)

const SHUTDOWN_GRACE = 500 * time.Millisecond

// HandoffBuffer is what both handoff variants provide: the capture side's
// sink and the transport side's source.
type HandoffBuffer interface {
	capture.Sink
	transport.Source
}

func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Stream captured audio over the serial link",
		Long:  "Capture fixed-size sample blocks at the configured rate and stream them over the serial port in packet-sized chunks.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStream(settings)
		},
	}
	setupFlags(cmd)
	return cmd
}

func setupFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("port", "/dev/ttyACM0", "serial device to write the stream to")
	flags.Int("baud", 460800, "serial baudrate")
	flags.String("source", conf.SourceSine, `capture source ("sine" or "malgo")`)
	flags.String("device", "", "capture device name for the malgo source")
	flags.String("handoff", conf.HandoffQueue, `handoff variant ("queue" or "double")`)
	flags.Int("rate", conf.DefaultSampleRate, "sample rate in Hz")
	flags.Int("block", conf.DefaultBlockSize, "samples per block")
	flags.Int("queue", conf.DefaultQueueSize, "handoff queue capacity in blocks")
	flags.Int("chunk", conf.DefaultChunkSize, "max bytes per serial write")

	viper.BindPFlag("transport.port", flags.Lookup("port"))
	viper.BindPFlag("transport.baud", flags.Lookup("baud"))
	viper.BindPFlag("capture.source", flags.Lookup("source"))
	viper.BindPFlag("capture.device", flags.Lookup("device"))
	viper.BindPFlag("capture.handoff", flags.Lookup("handoff"))
	viper.BindPFlag("capture.samplerate", flags.Lookup("rate"))
	viper.BindPFlag("capture.blocksize", flags.Lookup("block"))
	viper.BindPFlag("capture.queuesize", flags.Lookup("queue"))
	viper.BindPFlag("transport.chunksize", flags.Lookup("chunk"))
}

func runStream(settings *conf.Settings) (err error) {
	// context handler for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	zlog, err := logger.FromSettings(settings.Debug, settings.LogPath)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer zlog.Sync()

	metrics := observability.NewMetrics()

	dev, closeDev, err := BuildDevice(&settings.Capture, settings.Capture.BlockSize, zlog)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, closeDev())
	}()

	buffer := BuildHandoff(&settings.Capture, settings.Capture.BlockSize, metrics)

	engine := capture.NewEngine(dev, buffer, settings.Capture.SampleRate, settings.Capture.BlockSize, zlog)
	engine.Metrics = metrics

	link := transport.NewSerialLink(settings.Transport.Port, settings.Transport.Baud, settings.Transport.ChunkSize, zlog)
	defer func() {
		err = multierr.Append(err, link.Close())
	}()
	writer := transport.NewWriter(buffer, link, settings.Transport.StatsInterval, zlog)
	writer.Metrics = metrics

	zlog.Info(
		"[stream] starting pipeline",
		zap.String("source", settings.Capture.Source),
		zap.String("handoff", settings.Capture.Handoff),
		zap.Int("sampleRate", settings.Capture.SampleRate),
		zap.Int("blockSize", settings.Capture.BlockSize),
		zap.String("portName", settings.Transport.Port),
	)

	// run everything
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		engine.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		writer.Run(ctx)
	}()

	<-sigCh
	cancel()
	wg.Wait()

	time.Sleep(SHUTDOWN_GRACE)
	return nil
}

// BuildDevice constructs the configured capture source. The returned
// closer tears down real devices and is a no-op for synthetic ones.
func BuildDevice(cs *conf.CaptureSettings, blockSize int, zlog *zap.Logger) (capture.Converter, func() error, error) {
	switch cs.Source {
	case conf.SourceMalgo:
		mic, err := capture.NewMicSource(cs.SampleRate, blockSize, cs.Device, zlog)
		if err != nil {
			return nil, nil, fmt.Errorf("opening capture device: %w", err)
		}
		return mic, mic.Close, nil
	default:
		return capture.NewSineSource(440), func() error { return nil }, nil
	}
}

// BuildHandoff constructs the configured handoff variant for blocks of
// blockSize samples.
func BuildHandoff(cs *conf.CaptureSettings, blockSize int, metrics *observability.Metrics) HandoffBuffer {
	if cs.Handoff == conf.HandoffDouble {
		d := handoff.NewDoubleBuffer(blockSize)
		d.Metrics = metrics
		return d
	}
	q := handoff.NewBlockQueue(cs.QueueSize, blockSize)
	q.Metrics = metrics
	return q
}
