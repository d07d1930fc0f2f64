package capture

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"sleepywoodpecker/rp-goes-audio/internal/observability"
)

const (
	// captureBackoff is the wait after a failed conversion before retrying.
	captureBackoff = time.Millisecond
	// progressLogEvery spaces out the capture progress logs.
	progressLogEvery = 100
)

// Sink is the handoff boundary the engine publishes into. Borrow hands out
// the buffer the next conversion fills; Commit publishes that buffer as a
// completed block and may suspend the caller for backpressure, depending on
// the handoff variant behind it.
type Sink interface {
	Borrow() []uint16
	Commit(ctx context.Context, id, timestampMicros uint64) error
}

// LevelSink receives the loudness of each captured block.
type LevelSink interface {
	SetLoudness(level float32)
}

// Engine drives the converter in a permanent capture loop: one block per
// cycle, ids contiguous across successes, a fixed backoff after failures.
// There is no steady-state cancellation; the loop ends only when the process
// context does.
type Engine struct {
	// Metrics and Levels are optional and may be set before Run.
	Metrics *observability.Metrics
	Levels  LevelSink

	dev       Converter
	sink      Sink
	divisor   uint16
	blockSize int
	log       *zap.Logger

	start time.Time
	count uint64
}

// NewEngine wires a converter to a sink at the given rate.
func NewEngine(dev Converter, sink Sink, sampleRate, blockSize int, log *zap.Logger) *Engine {
	return &Engine{
		dev:       dev,
		sink:      sink,
		divisor:   RateDivisor(sampleRate),
		blockSize: blockSize,
		log:       log,
	}
}

// Run captures blocks until ctx is cancelled. Conversion failures are logged
// and retried after a fixed backoff without consuming a block id, so ids stay
// contiguous across the blocks that are actually delivered.
func (e *Engine) Run(ctx context.Context) error {
	e.start = time.Now()
	e.log.Info("[engine] starting",
		zap.Int("blockSize", e.blockSize),
		zap.Uint16("divisor", e.divisor),
	)

	for {
		if ctx.Err() != nil {
			e.log.Info("[engine] exiting from capture loop")
			return nil
		}

		dst := e.sink.Borrow()
		if err := e.dev.ConvertBlock(ctx, e.divisor, dst); err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				e.log.Info("[engine] exiting from capture loop")
				return nil
			}
			e.log.Error("[engine] conversion failed", zap.Error(err))
			e.Metrics.IncCaptureErrors()
			select {
			case <-time.After(captureBackoff):
			case <-ctx.Done():
				return nil
			}
			continue
		}

		e.count++
		timestamp := uint64(time.Since(e.start).Microseconds())

		// read the buffer before Commit: afterwards it belongs to the handoff
		if e.Levels != nil {
			e.Levels.SetLoudness(Loudness(dst))
		}

		if err := e.sink.Commit(ctx, e.count, timestamp); err != nil {
			e.log.Info("[engine] exiting from capture loop")
			return nil
		}
		e.Metrics.IncBlocksCaptured()

		if e.count%progressLogEvery == 0 {
			e.log.Info("[engine] captured block", zap.Uint64("blockID", e.count))
		}
	}
}
