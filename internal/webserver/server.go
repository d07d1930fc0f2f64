// Package webserver exposes the rig's sensor state and LED control over
// HTTP, mirroring the routes the board's on-device server answered.
package webserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"sleepywoodpecker/rp-goes-audio/internal/observability"
	"sleepywoodpecker/rp-goes-audio/internal/sensor"
)

const shutdownTimeout = 5 * time.Second

// Server wraps the echo instance and the state it serves.
type Server struct {
	Echo    *echo.Echo
	state   *sensor.State
	reader  sensor.Reader
	led     LED
	listen  string
	logger  *zap.Logger
	metrics *observability.Metrics
}

// New builds the server and registers its routes.
func New(state *sensor.State, reader sensor.Reader, led LED, listen string, metrics *observability.Metrics, logger *zap.Logger) *Server {
	s := &Server{
		Echo:    echo.New(),
		state:   state,
		reader:  reader,
		led:     led,
		listen:  listen,
		logger:  logger,
		metrics: metrics,
	}

	s.Echo.HideBanner = true
	s.Echo.JSONSerializer = sonnetJSONSerializer{}
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Info(
				"[web] request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Error(v.Error),
			)
			return nil
		},
	}))

	s.initRoutes()
	return s
}

func (s *Server) initRoutes() {
	s.Echo.GET("/", s.handleRoot)
	s.Echo.GET("/set_led/:state", s.handleSetLED)
	s.Echo.GET("/read_sensor", s.handleReadSensor)
	s.Echo.GET("/healthz", s.handleHealthz)
	if s.metrics != nil {
		s.Echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}
}

func (s *Server) handleRoot(c echo.Context) error {
	return c.String(http.StatusOK, "Hello world 2.")
}

// handleSetLED parses the path segment as a bool and drives the LED.
func (s *Server) handleSetLED(c echo.Context) error {
	on, err := strconv.ParseBool(c.Param("state"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "state must be a boolean").SetInternal(err)
	}
	if err := s.led.Set(on); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "setting led failed").SetInternal(err)
	}
	return c.JSON(http.StatusOK, on)
}

// handleReadSensor triggers a fresh climate read, folds it into the shared
// state on success and returns the state either way. Failed reads only cost
// freshness, never the response.
func (s *Server) handleReadSensor(c echo.Context) error {
	reading, err := s.reader.Read(c.Request().Context())
	if err != nil {
		s.logger.Warn("[web] error reading sensor, likely two reads too close together", zap.Error(err))
	} else {
		s.state.ApplyReading(reading)
	}
	return c.JSON(http.StatusOK, s.state.Snapshot())
}

func (s *Server) handleHealthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Run serves until ctx ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.Echo.Start(s.listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.logger.Info("[web] server starting", zap.String("listen", s.listen))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("[web] shutting down")
	return s.Echo.Shutdown(shutdownCtx)
}
