package transport

import (
	"context"
	"time"

	"go.uber.org/zap"

	"sleepywoodpecker/rp-goes-audio/internal/capture"
	"sleepywoodpecker/rp-goes-audio/internal/observability"
)

// defaultStatsInterval is used when the caller passes a non-positive
// reporting interval.
const defaultStatsInterval = 2 * time.Second

// Source yields sample blocks in the order the writer should send them.
// Both handoff variants satisfy it.
type Source interface {
	Next(ctx context.Context) (capture.Block, error)
}

// Writer drains blocks from a source and delivers each one to the link as a
// run of in-order chunks. It cycles between waiting for the link and
// draining: any chunk failure abandons the rest of that block, counts one
// block error, and sends the writer back to waiting.
type Writer struct {
	src      Source
	link     Link
	stats    Stats
	interval time.Duration
	payload  []byte
	log      *zap.Logger

	Metrics *observability.Metrics
}

func NewWriter(src Source, link Link, statsInterval time.Duration, logger *zap.Logger) *Writer {
	if statsInterval <= 0 {
		statsInterval = defaultStatsInterval
	}
	return &Writer{
		src:      src,
		link:     link,
		interval: statsInterval,
		log:      logger,
	}
}

// Run executes the writer loop until ctx ends. Counters reset on every
// reconnect, so each connection's stats stand alone.
func (w *Writer) Run(ctx context.Context) error {
	for {
		if err := w.link.WaitConnected(ctx); err != nil {
			w.log.Info("[writer] exiting from transport loop")
			return err
		}
		w.log.Info("[writer] link connected", zap.Int("maxPayload", w.link.MaxPayload()))
		w.stats.Reset()

		if err := w.drain(ctx); err != nil {
			w.log.Info("[writer] exiting from transport loop")
			return err
		}
	}
}

// drain sends blocks until the link fails (returns nil, caller reconnects)
// or ctx ends (returns the ctx error).
func (w *Writer) drain(ctx context.Context) error {
	lastReport := time.Now()

	for {
		block, err := w.src.Next(ctx)
		if err != nil {
			return err
		}

		if err := w.writeBlock(ctx, block); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.stats.RecordError()
			w.Metrics.IncSendErrors()
			w.log.Warn("[writer] block send failed, resyncing link", zap.Error(err), zap.Uint64("blockID", block.ID))
			return nil
		}

		w.stats.RecordOK(block.ByteLen())
		w.Metrics.IncBlocksSent()
		w.Metrics.AddBytesWritten(block.ByteLen())

		if time.Since(lastReport) >= w.interval {
			w.report()
			lastReport = time.Now()
		}
	}
}

// writeBlock serializes the block and writes it as sequential chunks,
// re-confirming the link before each one.
func (w *Writer) writeBlock(ctx context.Context, block capture.Block) error {
	w.payload = capture.AppendSamples(w.payload[:0], block.Samples)

	for _, chunk := range SplitChunks(w.payload, w.link.MaxPayload()) {
		if err := w.link.WaitConnected(ctx); err != nil {
			return err
		}
		if err := w.link.Write(chunk); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) report() {
	r := w.stats.Snapshot()
	w.log.Info(
		"[writer] link stats",
		zap.Uint64("blocksOk", r.OK),
		zap.Uint64("blocksErr", r.Errors),
		zap.Float64("pctOk", r.Percent),
		zap.Uint64("bytesSent", r.Bytes),
	)
}

// Stats exposes the current connection's counters, mainly for tests.
func (w *Writer) Stats() Report {
	return w.stats.Snapshot()
}
