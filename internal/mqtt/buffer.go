package mqtt

import "log/slog"

// bufferedMsg is a formatted message waiting for the broker to come back.
type bufferedMsg struct {
	topic    string
	payload  []byte
	retained bool
}

// ringBuffer is a fixed-capacity FIFO of messages held while disconnected.
// The oldest message is overwritten when full.
// Not safe for concurrent use.
type ringBuffer struct {
	buf      []bufferedMsg
	head     int // next write position
	count    int
	overflow bool // reset by drainAll
	logger   *slog.Logger
}

func newRingBuffer(capacity int, logger *slog.Logger) *ringBuffer {
	return &ringBuffer{
		buf:    make([]bufferedMsg, capacity),
		logger: logger,
	}
}

// push appends msg and reports whether the oldest message was evicted to
// make room.
func (r *ringBuffer) push(msg bufferedMsg) (evicted bool) {
	capacity := len(r.buf)
	r.buf[r.head] = msg
	r.head = (r.head + 1) % capacity
	if r.count < capacity {
		r.count++
		return false
	}
	if !r.overflow {
		r.logger.Warn("mqtt buffer full, dropping oldest", "capacity", capacity)
		r.overflow = true
	}
	return true
}

// drainAll returns the buffered messages oldest first and empties the buffer.
func (r *ringBuffer) drainAll() []bufferedMsg {
	if r.count == 0 {
		return nil
	}

	capacity := len(r.buf)
	out := make([]bufferedMsg, r.count)
	start := (r.head - r.count + capacity) % capacity
	for i := range out {
		out[i] = r.buf[(start+i)%capacity]
	}

	r.count = 0
	r.head = 0
	r.overflow = false
	return out
}

func (r *ringBuffer) len() int {
	return r.count
}
