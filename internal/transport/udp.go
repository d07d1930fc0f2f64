package transport

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
)

// UDPLink broadcasts chunks as UDP datagrams. There is no peer handshake:
// WaitConnected only makes sure the socket exists, and a failed send tears
// it down so the writer re-enters its connection wait. A short pause after each
// datagram keeps a burst of chunks from flooding the receiver.
type UDPLink struct {
	target    string
	chunkSize int
	pace      time.Duration
	conn      *net.UDPConn
	log       *zap.Logger
}

func NewUDPLink(target string, chunkSize int, pace time.Duration, logger *zap.Logger) *UDPLink {
	return &UDPLink{
		target:    target,
		chunkSize: chunkSize,
		pace:      pace,
		log:       logger,
	}
}

func (l *UDPLink) WaitConnected(ctx context.Context) error {
	if l.conn != nil {
		return nil
	}

	for {
		addr, err := net.ResolveUDPAddr("udp", l.target)
		if err == nil {
			var conn *net.UDPConn
			conn, err = net.DialUDP("udp", nil, addr)
			if err == nil {
				l.conn = conn
				l.log.Info("[udp] socket ready", zap.String("target", l.target))
				return nil
			}
		}
		l.log.Debug("[udp] socket not ready", zap.Error(err), zap.String("target", l.target))

		select {
		case <-time.After(connectRetryInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (l *UDPLink) Write(p []byte) error {
	if l.conn == nil {
		return errNotConnected
	}

	if _, err := l.conn.Write(p); err != nil {
		l.log.Warn("[udp] send failed", zap.Error(err), zap.String("target", l.target))
		l.conn.Close()
		l.conn = nil
		return err
	}

	if l.pace > 0 {
		time.Sleep(l.pace)
	}
	return nil
}

func (l *UDPLink) MaxPayload() int {
	return l.chunkSize
}

func (l *UDPLink) Close() error {
	if l.conn == nil {
		return nil
	}
	err := l.conn.Close()
	l.conn = nil
	return err
}
