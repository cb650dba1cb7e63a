package session

import "github.com/spiralogic/elemental/pkg/types"

// HistoryRing is a fixed-capacity ring buffer of recent turns. Insertion at
// capacity evicts the oldest entry. The zero value is not usable; construct
// with NewHistoryRing.
type HistoryRing struct {
	buf   []types.Turn
	head  int // index of the oldest entry
	count int
}

// NewHistoryRing returns a ring holding at most capacity turns.
// Capacity values below 1 are coerced to 1.
func NewHistoryRing(capacity int) *HistoryRing {
	if capacity < 1 {
		capacity = 1
	}
	return &HistoryRing{buf: make([]types.Turn, capacity)}
}

// Record appends a turn, evicting the oldest entry when full.
func (r *HistoryRing) Record(turn types.Turn) {
	if r.count < len(r.buf) {
		r.buf[(r.head+r.count)%len(r.buf)] = turn
		r.count++
		return
	}
	r.buf[r.head] = turn
	r.head = (r.head + 1) % len(r.buf)
}

// Window returns up to size turns, oldest first and most recent last.
// It never returns more than size entries and never blocks.
func (r *HistoryRing) Window(size int) []types.Turn {
	if size > r.count {
		size = r.count
	}
	if size <= 0 {
		return nil
	}
	out := make([]types.Turn, size)
	start := r.count - size
	for i := 0; i < size; i++ {
		out[i] = r.buf[(r.head+start+i)%len(r.buf)]
	}
	return out
}

// Len returns the number of stored turns.
func (r *HistoryRing) Len() int { return r.count }

// Cap returns the ring capacity.
func (r *HistoryRing) Cap() int { return len(r.buf) }
