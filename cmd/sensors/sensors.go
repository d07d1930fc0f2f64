// Package sensors reads the climate sensor on a loop and logs the values,
// which is handy for checking a rig without starting the full pipeline.
package sensors

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sleepywoodpecker/rp-goes-audio/internal/conf"
	"sleepywoodpecker/rp-goes-audio/internal/logger"
	"sleepywoodpecker/rp-goes-audio/internal/sensor"
)

func Command(settings *conf.Settings) *cobra.Command {
	var (
		once     bool
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "sensors",
		Short: "Read the climate sensor and log the values",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSensors(settings, once, interval)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&once, "once", false, "read once and exit")
	flags.DurationVar(&interval, "interval", time.Second, "time between reads")

	return cmd
}

func runSensors(settings *conf.Settings, once bool, interval time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zlog, err := logger.FromSettings(settings.Debug, settings.LogPath)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer zlog.Sync()

	reader := sensor.NewCachedReader(&sensor.HostReader{}, settings.Sensor.MinInterval)

	read := func() {
		reading, err := reader.Read(ctx)
		if err != nil {
			zlog.Warn("[sensors] error reading climate sensor", zap.Error(err))
			return
		}
		zlog.Info(
			"[sensors] climate reading",
			zap.Float32p("temperature", reading.Temperature),
			zap.Float32p("humidity", reading.Humidity),
		)
	}

	read()
	if once {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			read()
		}
	}
}
