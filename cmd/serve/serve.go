// Package serve wires the UDP broadcast pipeline together with the sensor
// poller and the web server.
package serve

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

	"sleepywoodpecker/rp-goes-audio/cmd/stream"
	"sleepywoodpecker/rp-goes-audio/internal/capture"
	"sleepywoodpecker/rp-goes-audio/internal/conf"
	"sleepywoodpecker/rp-goes-audio/internal/logger"
	"sleepywoodpecker/rp-goes-audio/internal/observability"
	"sleepywoodpecker/rp-goes-audio/internal/sensor"
	"sleepywoodpecker/rp-goes-audio/internal/supabase"
	"sleepywoodpecker/rp-goes-audio/internal/transport"
	"sleepywoodpecker/rp-goes-audio/internal/webserver"
)

const SHUTDOWN_GRACE = 500 * time.Millisecond

func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Broadcast audio over UDP and serve the sensor endpoints",
		Long:  "Stream captured audio as UDP datagrams, poll the climate sensor, and expose the sensor state and LED control over HTTP.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(settings)
		},
	}
	setupFlags(cmd)
	return cmd
}

func setupFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("target", "255.255.255.255:1234", "destination address for the audio datagrams")
	flags.Int("block", conf.DefaultUDPBlockSize, "samples per block")
	flags.String("source", conf.SourceSine, `capture source ("sine" or "malgo")`)
	flags.String("listen", ":8080", "web server listen address")
	flags.Bool("web", true, "enable the web server")
	flags.Duration("interval", 30*time.Second, "climate sensor poll period")

	viper.BindPFlag("udp.target", flags.Lookup("target"))
	viper.BindPFlag("udp.blocksize", flags.Lookup("block"))
	viper.BindPFlag("capture.source", flags.Lookup("source"))
	viper.BindPFlag("web.listen", flags.Lookup("listen"))
	viper.BindPFlag("web.enabled", flags.Lookup("web"))
	viper.BindPFlag("sensor.interval", flags.Lookup("interval"))
}

func runServe(settings *conf.Settings) (err error) {
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
	state := &sensor.State{}

	dev, closeDev, err := stream.BuildDevice(&settings.Capture, settings.UDP.BlockSize, zlog)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, closeDev())
	}()

	buffer := stream.BuildHandoff(&settings.Capture, settings.UDP.BlockSize, metrics)

	engine := capture.NewEngine(dev, buffer, settings.Capture.SampleRate, settings.UDP.BlockSize, zlog)
	engine.Metrics = metrics
	engine.Levels = state

	link := transport.NewUDPLink(settings.UDP.Target, settings.UDP.Chunk, settings.UDP.Pace, zlog)
	defer func() {
		err = multierr.Append(err, link.Close())
	}()
	writer := transport.NewWriter(buffer, link, settings.Transport.StatsInterval, zlog)
	writer.Metrics = metrics

	reader := sensor.NewCachedReader(&sensor.HostReader{}, settings.Sensor.MinInterval)

	var push sensor.Pusher
	if settings.Supabase.URL != "" && settings.Supabase.Key != "" {
		push = supabase.NewClient(settings.Supabase.URL, settings.Supabase.Key, zlog)
		zlog.Info("[serve] readings push enabled")
	}
	poller := sensor.NewPoller(reader, state, push, settings.Sensor.Interval, zlog)

	led := &webserver.LogLED{Logger: zlog}

	zlog.Info(
		"[serve] starting",
		zap.String("target", settings.UDP.Target),
		zap.Int("blockSize", settings.UDP.BlockSize),
		zap.Bool("web", settings.Web.Enabled),
	)

	// run everything
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		engine.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		writer.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		poller.Run(ctx)
	}()

	if settings.Web.Enabled {
		srv := webserver.New(state, reader, led, settings.Web.Listen, metrics, zlog)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Run(ctx); err != nil {
				zlog.Error("[serve] web server failed", zap.Error(err))
			}
		}()
	}

	// startup heartbeat the board used to blink out on its LED
	if err := webserver.Blink(ctx, led, 1); err != nil {
		return err
	}

	<-sigCh
	cancel()
	wg.Wait()

	time.Sleep(SHUTDOWN_GRACE)
	return nil
}
