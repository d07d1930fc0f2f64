package sensor

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Pusher forwards a completed reading to an external store.
type Pusher interface {
	PushReading(ctx context.Context, r Reading) error
}

// Poller reads the climate sensor on a fixed period, updates the shared
// state and optionally pushes complete readings out. Read and push errors
// are logged and the loop keeps going.
type Poller struct {
	reader   Reader
	state    *State
	push     Pusher // nil disables pushing
	interval time.Duration
	logger   *zap.Logger
}

func NewPoller(reader Reader, state *State, push Pusher, interval time.Duration, logger *zap.Logger) *Poller {
	return &Poller{
		reader:   reader,
		state:    state,
		push:     push,
		interval: interval,
		logger:   logger,
	}
}

func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("[sensor] exiting from poll loop")
			return
		case <-ticker.C:
			p.sample(ctx)
		}
	}
}

func (p *Poller) sample(ctx context.Context) {
	reading, err := p.reader.Read(ctx)
	if err != nil {
		p.logger.Warn("[sensor] error reading climate sensor", zap.Error(err))
		return
	}

	p.state.ApplyReading(reading)
	p.logger.Info(
		"[sensor] collected sample",
		zap.Float32p("temperature", reading.Temperature),
		zap.Float32p("humidity", reading.Humidity),
	)

	if p.push == nil || reading.Temperature == nil || reading.Humidity == nil {
		return
	}
	if err := p.push.PushReading(ctx, reading); err != nil {
		p.logger.Warn("[sensor] error pushing reading", zap.Error(err))
	}
}
