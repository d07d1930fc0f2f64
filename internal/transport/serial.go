package transport

import (
	"context"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"
)

// SerialLink writes chunks to a serial port, typically the USB CDC device a
// host opens on the other side. The port is opened on the first
// WaitConnected call and reopened after any write failure, so the device
// may enumerate late or disappear mid-stream.
type SerialLink struct {
	portName  string
	mode      *serial.Mode
	chunkSize int
	port      serial.Port
	log       *zap.Logger
}

func NewSerialLink(portName string, baudrate, chunkSize int, logger *zap.Logger) *SerialLink {
	return &SerialLink{
		portName: portName,
		mode: &serial.Mode{
			BaudRate: baudrate,
		},
		chunkSize: chunkSize,
		log:       logger,
	}
}

// WaitConnected returns immediately while the port is open; otherwise it
// retries opening the port until it succeeds or ctx ends.
func (l *SerialLink) WaitConnected(ctx context.Context) error {
	if l.port != nil {
		return nil
	}

	for {
		port, err := serial.Open(l.portName, l.mode)
		if err == nil {
			l.port = port
			l.log.Info("[serial] port connected", zap.String("portName", l.portName))
			return nil
		}
		l.log.Debug("[serial] port not ready", zap.Error(err), zap.String("portName", l.portName))

		select {
		case <-time.After(connectRetryInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Write sends p in full, looping over short writes. Any error closes the
// port so the next WaitConnected call reopens it.
func (l *SerialLink) Write(p []byte) error {
	if l.port == nil {
		return errNotConnected
	}

	for off := 0; off < len(p); {
		n, err := l.port.Write(p[off:])
		if err != nil {
			l.log.Warn("[serial] port lost", zap.Error(err), zap.String("portName", l.portName))
			l.port.Close()
			l.port = nil
			return err
		}
		off += n
	}
	return nil
}

func (l *SerialLink) MaxPayload() int {
	return l.chunkSize
}

func (l *SerialLink) Close() error {
	if l.port == nil {
		return nil
	}
	err := l.port.Close()
	l.port = nil
	return err
}
