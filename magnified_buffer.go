package magnify

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/magnify/frame"
)

// MagnifiedBuffer is the bounded FIFO of finished output frames.
//
// Push never evicts: when the consumer falls behind and the buffer is full,
// the new frame is refused and counted as dropped. All methods are safe for
// one producer and one consumer running concurrently.
type MagnifiedBuffer struct {
	mu      sync.Mutex
	frames  []*frame.Frame
	head    int
	count   int
	dropped uint64
}

// NewMagnifiedBuffer creates a buffer holding up to capacity frames. A
// capacity below 1 is raised to 1.
func NewMagnifiedBuffer(capacity int) *MagnifiedBuffer {
	return &MagnifiedBuffer{frames: make([]*frame.Frame, max(1, capacity))}
}

// Push appends f as the newest frame and reports whether it was stored.
func (b *MagnifiedBuffer) Push(f *frame.Frame) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.frames)
	if b.count == n {
		b.dropped++
		logrus.WithFields(logrus.Fields{
			"function": "MagnifiedBuffer.Push",
			"capacity": n,
			"dropped":  b.dropped,
		}).Warn("Magnified buffer full, dropping frame")
		return false
	}
	b.frames[(b.head+b.count)%n] = f
	b.count++
	return true
}

// PopOldest removes and returns the oldest frame.
func (b *MagnifiedBuffer) PopOldest() (*frame.Frame, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == 0 {
		return nil, false
	}
	f := b.frames[b.head]
	b.frames[b.head] = nil
	b.head = (b.head + 1) % len(b.frames)
	b.count--
	return f, true
}

// PopNewest removes and returns the newest frame.
func (b *MagnifiedBuffer) PopNewest() (*frame.Frame, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == 0 {
		return nil, false
	}
	idx := (b.head + b.count - 1) % len(b.frames)
	f := b.frames[idx]
	b.frames[idx] = nil
	b.count--
	return f, true
}

// PeekAt returns the i-th oldest frame without removing it.
func (b *MagnifiedBuffer) PeekAt(i int) (*frame.Frame, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i < 0 || i >= b.count {
		return nil, false
	}
	return b.frames[(b.head+i)%len(b.frames)], true
}

// Size returns the number of stored frames.
func (b *MagnifiedBuffer) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Cap returns the capacity.
func (b *MagnifiedBuffer) Cap() int {
	return len(b.frames)
}

// Dropped returns how many frames were refused because the buffer was full.
func (b *MagnifiedBuffer) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Clear removes every stored frame. The drop counter is kept.
func (b *MagnifiedBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.frames)
	b.head = 0
	b.count = 0
}
