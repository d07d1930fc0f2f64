package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSerialLink_WriteBeforeConnect(t *testing.T) {
	link := NewSerialLink("/dev/null-port", 460800, 64, zap.NewNop())

	err := link.Write([]byte{1, 2, 3})

	require.ErrorIs(t, err, errNotConnected)
	assert.Equal(t, 64, link.MaxPayload())
	assert.NoError(t, link.Close())
}

func TestSerialLink_WaitConnectedHonoursContext(t *testing.T) {
	link := NewSerialLink("/dev/does-not-exist", 460800, 64, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := link.WaitConnected(ctx)

	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestUDPLink_WriteBeforeConnect(t *testing.T) {
	link := NewUDPLink("127.0.0.1:9", 1024, 0, zap.NewNop())

	err := link.Write([]byte{1, 2, 3})

	require.ErrorIs(t, err, errNotConnected)
	assert.Equal(t, 1024, link.MaxPayload())
	assert.NoError(t, link.Close())
}

func TestUDPLink_WaitConnectedHonoursContext(t *testing.T) {
	link := NewUDPLink("not-a-real-address", 1024, 0, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := link.WaitConnected(ctx)

	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestUDPLink_ConnectsAndCloses(t *testing.T) {
	link := NewUDPLink("127.0.0.1:9", 1024, 0, zap.NewNop())

	require.NoError(t, link.WaitConnected(context.Background()))
	require.NoError(t, link.Write([]byte{1, 2, 3}))
	assert.NoError(t, link.Close())
}
