package handoff

import (
	"context"
	"sync"
	"time"

	"sleepywoodpecker/rp-goes-audio/internal/capture"
	"sleepywoodpecker/rp-goes-audio/internal/observability"
)

// takePollInterval is how long a blocked reader waits between checks for a
// ready block.
const takePollInterval = time.Millisecond

// DoubleBuffer hands off blocks through a pair of swap buffers. The producer
// always fills one half while the other holds the most recently committed
// block. Committing over an unread block replaces it and counts a drop, so
// the producer never waits and the reader always sees the newest block.
type DoubleBuffer struct {
	mu       sync.Mutex
	halves   [2][]uint16
	writeIdx int
	ready    bool
	readyID  uint64
	readyTS  uint64
	drops    uint64

	Metrics *observability.Metrics
}

// NewDoubleBuffer returns a double buffer for blocks of blockSize samples.
// Both halves are allocated up front; no allocation happens on the capture
// path.
func NewDoubleBuffer(blockSize int) *DoubleBuffer {
	d := &DoubleBuffer{}
	d.halves[0] = make([]uint16, blockSize)
	d.halves[1] = make([]uint16, blockSize)
	return d
}

// Borrow returns the half the producer should fill next. Only the producer
// goroutine may call Borrow and Commit; the returned slice is valid until
// Commit.
func (d *DoubleBuffer) Borrow() []uint16 {
	return d.halves[d.writeIdx]
}

// Commit publishes the filled half as the ready block and flips the halves.
// If the previous block was never taken it is silently replaced and the drop
// counter advances.
func (d *DoubleBuffer) Commit(_ context.Context, id, timestampMicros uint64) error {
	d.mu.Lock()
	dropped := d.ready
	if dropped {
		d.drops++
	}
	d.readyID = id
	d.readyTS = timestampMicros
	d.ready = true
	d.writeIdx = 1 - d.writeIdx
	d.mu.Unlock()

	if dropped {
		d.Metrics.IncHandoffDrops()
	}
	return nil
}

// TryTakeReady returns a copy of the ready block, or false if no block has
// been committed since the last take. Copying under the lock keeps the
// returned samples stable while the producer reuses the half.
func (d *DoubleBuffer) TryTakeReady() (capture.Block, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.ready {
		return capture.Block{}, false
	}
	src := d.halves[1-d.writeIdx]
	b := capture.Block{
		Samples:   append([]uint16(nil), src...),
		ID:        d.readyID,
		Timestamp: d.readyTS,
	}
	d.ready = false
	return b, true
}

// Next blocks until a block is ready and returns it. It satisfies the
// transport writer's source contract.
func (d *DoubleBuffer) Next(ctx context.Context) (capture.Block, error) {
	for {
		if b, ok := d.TryTakeReady(); ok {
			return b, nil
		}
		select {
		case <-time.After(takePollInterval):
		case <-ctx.Done():
			return capture.Block{}, ctx.Err()
		}
	}
}

// Drops reports how many committed blocks were replaced before being taken.
func (d *DoubleBuffer) Drops() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.drops
}
