// Package handoff carries sample blocks from the acquisition engine to the
// transport writer. Two variants exist: BlockQueue, a bounded FIFO that
// applies backpressure to the producer, and DoubleBuffer, a lossy pair of
// swap buffers that always holds the newest block and drops unread ones.
package handoff

import (
	"context"

	"sleepywoodpecker/rp-goes-audio/internal/capture"
	"sleepywoodpecker/rp-goes-audio/internal/observability"
)

// BlockQueue is a bounded FIFO of sample blocks. Push blocks while the queue
// is full and Pop blocks while it is empty, so a slow consumer throttles the
// producer instead of losing data.
type BlockQueue struct {
	ch        chan capture.Block
	blockSize int
	pending   []uint16

	Metrics *observability.Metrics
}

// NewBlockQueue returns a queue holding at most capacity blocks of blockSize
// samples each.
func NewBlockQueue(capacity, blockSize int) *BlockQueue {
	return &BlockQueue{
		ch:        make(chan capture.Block, capacity),
		blockSize: blockSize,
	}
}

// Push appends a block to the queue, waiting for space if it is full.
func (q *BlockQueue) Push(ctx context.Context, b capture.Block) error {
	select {
	case q.ch <- b:
		q.Metrics.SetQueueDepth(len(q.ch))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pop removes and returns the oldest block, waiting for one if the queue is
// empty.
func (q *BlockQueue) Pop(ctx context.Context) (capture.Block, error) {
	select {
	case b := <-q.ch:
		q.Metrics.SetQueueDepth(len(q.ch))
		return b, nil
	case <-ctx.Done():
		return capture.Block{}, ctx.Err()
	}
}

// Borrow hands out a fresh sample slice for the producer to fill. Queued
// blocks keep their slices until the consumer is done with them, so every
// capture cycle gets its own.
func (q *BlockQueue) Borrow() []uint16 {
	q.pending = make([]uint16, q.blockSize)
	return q.pending
}

// Commit wraps the borrowed samples into a block and pushes it, waiting for
// queue space if necessary.
func (q *BlockQueue) Commit(ctx context.Context, id, timestampMicros uint64) error {
	b := capture.Block{
		Samples:   q.pending,
		ID:        id,
		Timestamp: timestampMicros,
	}
	q.pending = nil
	return q.Push(ctx, b)
}

// Next returns the next block in arrival order. It satisfies the transport
// writer's source contract.
func (q *BlockQueue) Next(ctx context.Context) (capture.Block, error) {
	return q.Pop(ctx)
}

// Depth reports how many blocks are currently queued.
func (q *BlockQueue) Depth() int {
	return len(q.ch)
}

// Cap reports the maximum number of queued blocks.
func (q *BlockQueue) Cap() int {
	return cap(q.ch)
}
