// Package capture produces fixed-size sample blocks from an analog source at
// a fixed rate, one block per conversion cycle.
package capture

// Block is one completed capture: a fixed-length run of 12-bit-range readings
// widened to uint16, stamped with a sequence id and a capture-completion
// timestamp. A Block only exists after a fully successful conversion; the
// engine never hands out partially filled buffers.
type Block struct {
	// Samples are raw converter readings, 0..4095 centred on 2048.
	Samples []uint16
	// ID starts at 1 and increases by exactly one per successful capture.
	// Failed conversions do not consume ids.
	ID uint64
	// Timestamp is microseconds since the engine started.
	Timestamp uint64
}

// ByteLen returns the serialized payload size of the block.
func (b Block) ByteLen() int {
	return len(b.Samples) * 2
}
