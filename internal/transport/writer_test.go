package transport

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sleepywoodpecker/rp-goes-audio/internal/capture"
)

// fakeLink records every chunk it is handed. Individual write or connect
// attempts can be scripted to fail by 1-based attempt number.
type fakeLink struct {
	maxPayload    int
	writes        [][]byte
	writeAttempts int
	failWriteAt   map[int]error
	connects      int
	failConnectAt map[int]error
}

func (l *fakeLink) WaitConnected(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	l.connects++
	if err := l.failConnectAt[l.connects]; err != nil {
		return err
	}
	return nil
}

func (l *fakeLink) Write(p []byte) error {
	l.writeAttempts++
	if err := l.failWriteAt[l.writeAttempts]; err != nil {
		return err
	}
	l.writes = append(l.writes, append([]byte(nil), p...))
	return nil
}

func (l *fakeLink) MaxPayload() int {
	return l.maxPayload
}

// sliceSource yields its blocks in order, then cancels the run and parks
// until the context ends.
type sliceSource struct {
	blocks []capture.Block
	idx    int
	cancel context.CancelFunc
}

func (s *sliceSource) Next(ctx context.Context) (capture.Block, error) {
	if s.idx < len(s.blocks) {
		b := s.blocks[s.idx]
		s.idx++
		return b, nil
	}
	s.cancel()
	<-ctx.Done()
	return capture.Block{}, ctx.Err()
}

func rampBlock(id uint64, samples int) capture.Block {
	b := capture.Block{ID: id, Samples: make([]uint16, samples)}
	for i := range b.Samples {
		b.Samples[i] = uint16(i) + uint16(id)*1000
	}
	return b
}

func TestWriter_SplitsBlocksIntoOrderedChunks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	blocks := []capture.Block{rampBlock(1, 512), rampBlock(2, 512)}
	src := &sliceSource{blocks: blocks, cancel: cancel}
	link := &fakeLink{maxPayload: 64}
	w := NewWriter(src, link, 0, zap.NewNop())

	err := w.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	// 1024 payload bytes per block, 16 chunks of 64 each
	require.Len(t, link.writes, 32)
	for i, chunk := range link.writes {
		assert.Len(t, chunk, 64, "chunk %d", i)
	}

	var sent []byte
	for _, chunk := range link.writes {
		sent = append(sent, chunk...)
	}
	want := capture.SampleBytes(blocks[0].Samples)
	want = append(want, capture.SampleBytes(blocks[1].Samples)...)
	assert.Equal(t, want, sent, "chunks must reassemble into the blocks in order")

	// one connect up front plus one re-confirm per chunk
	assert.Equal(t, 33, link.connects)

	r := w.Stats()
	assert.Equal(t, uint64(2), r.OK)
	assert.Zero(t, r.Errors)
	assert.Equal(t, uint64(2048), r.Bytes)
}

func TestWriter_ChunkFailureAbandonsBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	linkErr := errors.New("link dropped")
	stop := errors.New("stop the run")

	src := &sliceSource{blocks: []capture.Block{rampBlock(1, 256)}, cancel: cancel}
	link := &fakeLink{
		maxPayload:  64,
		failWriteAt: map[int]error{3: linkErr},
		// connects 1..4 precede write attempts 1..3; failing connect 5 ends
		// the run at the reconnect, before the counters reset
		failConnectAt: map[int]error{5: stop},
	}
	w := NewWriter(src, link, 0, zap.NewNop())

	err := w.Run(ctx)
	require.ErrorIs(t, err, stop)

	// chunks 1 and 2 went out, chunk 3 failed, chunks 4..8 were abandoned
	assert.Len(t, link.writes, 2)
	assert.Equal(t, 3, link.writeAttempts)

	r := w.Stats()
	assert.Zero(t, r.OK)
	assert.Equal(t, uint64(1), r.Errors, "a failed block counts one error, not one per chunk")
	assert.InDelta(t, 0, r.Percent, 0.001)
}

func TestWriter_ResyncsAndResetsCountersOnReconnect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	linkErr := errors.New("link dropped")
	blocks := []capture.Block{rampBlock(1, 256), rampBlock(2, 256)}
	src := &sliceSource{blocks: blocks, cancel: cancel}
	link := &fakeLink{
		maxPayload:  64,
		failWriteAt: map[int]error{1: linkErr},
	}
	w := NewWriter(src, link, 0, zap.NewNop())

	err := w.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	// block 1 died on its first chunk, block 2 went out whole after resync
	require.Len(t, link.writes, 8)
	assert.Equal(t, capture.SampleBytes(blocks[1].Samples)[:64], link.writes[0])

	r := w.Stats()
	assert.Equal(t, uint64(1), r.OK)
	assert.Zero(t, r.Errors, "counters start over on reconnect")
}

func TestNewWriter_DefaultInterval(t *testing.T) {
	w := NewWriter(nil, nil, 0, zap.NewNop())

	assert.Equal(t, defaultStatsInterval, w.interval)
}
