// Package transport drains sample blocks from a handoff buffer and writes
// them to a host link in bounded chunks, resynchronizing whenever the link
// drops mid-block.
package transport

import (
	"context"
	"errors"
	"time"
)

// connectRetryInterval is how long a link waits between connection attempts.
const connectRetryInterval = 500 * time.Millisecond

var errNotConnected = errors.New("link not connected")

// Link is a one-way byte transport to the host. Implementations reconnect
// lazily: a Write failure tears the link down and the next WaitConnected
// call re-establishes it.
type Link interface {
	// WaitConnected blocks until the link is ready to accept writes.
	WaitConnected(ctx context.Context) error
	// Write sends one chunk of at most MaxPayload bytes.
	Write(p []byte) error
	// MaxPayload reports the largest chunk a single Write may carry.
	MaxPayload() int
}
