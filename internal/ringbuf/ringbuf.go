// Package ringbuf provides a fixed-capacity, insertion-ordered rolling
// buffer of model.Sample. When full, Append evicts the oldest entry
// (FIFO eviction), so an append never fails. A mutex guards the buffer:
// the polling goroutine appends while HTTP and WebSocket handlers read.
package ringbuf

import (
	"sync"

	"nav-tracker/internal/model"
)

// Ring is a FIFO-evicting rolling buffer of Samples.
type Ring struct {
	mu      sync.RWMutex
	buf     []model.Sample
	start   int // index of oldest entry
	length  int
	evicted uint64
}

// New creates a ring buffer with the given capacity. Minimum capacity is 1.
func New(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{
		buf: make([]model.Sample, capacity),
	}
}

// Append adds a sample, evicting the oldest entry if the buffer is full.
// The length invariant len <= cap holds after every call. Returns true if
// an entry was evicted to make room.
func (r *Ring) Append(s model.Sample) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.length == len(r.buf) {
		// Full: overwrite the oldest slot and advance start.
		r.buf[r.start] = s
		r.start = (r.start + 1) % len(r.buf)
		r.evicted++
		return true
	}

	r.buf[(r.start+r.length)%len(r.buf)] = s
	r.length++
	return false
}

// Snapshot returns a copy of the buffer contents, oldest first.
func (r *Ring) Snapshot() []model.Sample {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Sample, r.length)
	for i := 0; i < r.length; i++ {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}

// Tail returns a copy of the most recent n entries, oldest first.
// If n exceeds the current length, the whole buffer is returned;
// n <= 0 yields an empty slice.
func (r *Ring) Tail(n int) []model.Sample {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n < 0 {
		n = 0
	}
	if n > r.length {
		n = r.length
	}
	out := make([]model.Sample, n)
	offset := r.length - n
	for i := 0; i < n; i++ {
		out[i] = r.buf[(r.start+offset+i)%len(r.buf)]
	}
	return out
}

// Last returns the most recent sample. ok is false when the buffer is empty.
func (r *Ring) Last() (model.Sample, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.length == 0 {
		return model.Sample{}, false
	}
	return r.buf[(r.start+r.length-1)%len(r.buf)], true
}

// Len returns the current number of samples.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.length
}

// Cap returns the buffer capacity.
func (r *Ring) Cap() int {
	return len(r.buf)
}

// Evicted returns the total number of entries dropped to stay within capacity.
func (r *Ring) Evicted() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.evicted
}
