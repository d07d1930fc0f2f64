// Package recorder is the host-side counterpart of the streamer: it
// collects the raw sample stream off the link for a while and renders it to
// a WAV file.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"
)

// readBufferSize bounds a single stream read. Datagrams are at most one
// chunk, well under this.
const readBufferSize = 4096

// Source is a raw byte stream whose reads can be bounded by a deadline.
// *net.UDPConn satisfies it directly.
type Source interface {
	io.Reader
	io.Closer
	SetReadDeadline(t time.Time) error
}

// ListenUDP opens the receive side of the UDP stream.
func ListenUDP(listen string) (*net.UDPConn, error) {
	addr, err := net.ResolveUDPAddr("udp", listen)
	if err != nil {
		return nil, fmt.Errorf("resolving listen address: %w", err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("opening udp listener: %w", err)
	}
	return conn, nil
}

// SerialSource adapts a serial port to the Source contract. The port's
// timeout model is a per-read duration rather than an absolute deadline.
type SerialSource struct {
	port serial.Port
}

// OpenSerial opens the stream side of the serial link and discards whatever
// is sitting in the OS input buffer, so the capture starts mid-stream
// rather than with stale bytes.
func OpenSerial(portName string, baudrate int) (*SerialSource, error) {
	mode := &serial.Mode{
		BaudRate: baudrate,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("opening serial port: %w", err)
	}
	if err := port.ResetInputBuffer(); err != nil {
		port.Close()
		return nil, fmt.Errorf("flushing serial input: %w", err)
	}
	return &SerialSource{port: port}, nil
}

func (s *SerialSource) Read(p []byte) (int, error) {
	return s.port.Read(p)
}

func (s *SerialSource) SetReadDeadline(t time.Time) error {
	return s.port.SetReadTimeout(time.Until(t))
}

func (s *SerialSource) Close() error {
	return s.port.Close()
}

// Collect reads the stream until the duration elapses and returns every
// byte received. A read timeout or EOF ends the capture early with whatever
// arrived; other errors abort it.
func Collect(ctx context.Context, src Source, duration time.Duration, logger *zap.Logger) ([]byte, error) {
	deadline := time.Now().Add(duration)
	buf := make([]byte, readBufferSize)
	var out []byte

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		default:
		}

		if err := src.SetReadDeadline(deadline); err != nil {
			return out, fmt.Errorf("setting read deadline: %w", err)
		}

		n, err := src.Read(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}
		if err != nil {
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				break
			}
			if errors.Is(err, io.EOF) {
				break
			}
			return out, fmt.Errorf("reading stream: %w", err)
		}
	}

	logger.Info("[recorder] capture finished", zap.Int("rawBytes", len(out)))
	return out, nil
}
