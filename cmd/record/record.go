// Package record captures the raw stream off the link for a while and
// renders it to a WAV file, standing in for the listening host.
package record

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"sleepywoodpecker/rp-goes-audio/internal/conf"
	"sleepywoodpecker/rp-goes-audio/internal/logger"
	"sleepywoodpecker/rp-goes-audio/internal/recorder"
)

func Command(settings *conf.Settings) *cobra.Command {
	var (
		duration time.Duration
		listen   string
		port     string
		baud     int
		outFile  string
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record the audio stream to a WAV file",
		Long:  "Listen for the raw sample stream on UDP (or read it from a serial port) for a fixed duration, then write the result as a mono 16-bit WAV file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(settings, duration, listen, port, baud, outFile)
		},
	}

	flags := cmd.Flags()
	flags.DurationVar(&duration, "duration", 5*time.Second, "how long to record")
	flags.StringVar(&listen, "listen", "0.0.0.0:1234", "UDP listen address for the stream")
	flags.StringVar(&port, "port", "", "read the stream from this serial port instead of UDP")
	flags.IntVar(&baud, "baud", 460800, "serial baudrate when reading from a port")
	flags.StringVar(&outFile, "out", "output.wav", "output WAV file path")

	return cmd
}

func runRecord(settings *conf.Settings, duration time.Duration, listen, port string, baud int, outFile string) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zlog, err := logger.FromSettings(settings.Debug, settings.LogPath)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer zlog.Sync()

	var src recorder.Source
	if port != "" {
		if src, err = recorder.OpenSerial(port, baud); err != nil {
			return err
		}
		zlog.Info("[record] reading from serial", zap.String("portName", port))
	} else {
		if src, err = recorder.ListenUDP(listen); err != nil {
			return err
		}
		zlog.Info("[record] listening for datagrams", zap.String("listen", listen))
	}
	defer func() {
		err = multierr.Append(err, src.Close())
	}()

	data, err := recorder.Collect(ctx, src, duration, zlog)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("no stream data received")
	}

	if err := recorder.WriteWAV(outFile, data, settings.Capture.SampleRate); err != nil {
		return err
	}
	zlog.Info(
		"[record] wrote wav file",
		zap.String("outputFile", outFile),
		zap.Int("rawBytes", len(data)),
		zap.Int("sampleRate", settings.Capture.SampleRate),
	)
	return nil
}
