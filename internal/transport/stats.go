package transport

import "sync"

// Stats counts block delivery outcomes for one link connection. Counters
// accumulate while the connection lasts and are reset when the writer
// reconnects.
type Stats struct {
	mu    sync.Mutex
	ok    uint64
	errs  uint64
	bytes uint64
}

// Report is a point-in-time view of the counters.
type Report struct {
	OK      uint64
	Errors  uint64
	Bytes   uint64
	Percent float64
}

// RecordOK counts one fully delivered block of n payload bytes.
func (s *Stats) RecordOK(n int) {
	s.mu.Lock()
	s.ok++
	s.bytes += uint64(n)
	s.mu.Unlock()
}

// RecordError counts one abandoned block.
func (s *Stats) RecordError() {
	s.mu.Lock()
	s.errs++
	s.mu.Unlock()
}

// Reset zeroes all counters.
func (s *Stats) Reset() {
	s.mu.Lock()
	s.ok = 0
	s.errs = 0
	s.bytes = 0
	s.mu.Unlock()
}

// Snapshot returns the current counters and success percentage.
func (s *Stats) Snapshot() Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Report{
		OK:      s.ok,
		Errors:  s.errs,
		Bytes:   s.bytes,
		Percent: SuccessPercent(s.ok, s.errs),
	}
}

// SuccessPercent reports ok as a percentage of all outcomes. With no
// outcomes recorded yet it reports 100.
func SuccessPercent(ok, errs uint64) float64 {
	total := ok + errs
	if total == 0 {
		return 100
	}
	return float64(ok) / float64(total) * 100
}
