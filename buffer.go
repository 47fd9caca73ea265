package magnify

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/magnify/frame"
	"github.com/opd-ai/magnify/limits"
)

// ProcessingBuffer is the history of raw input frames the engine reads from.
// It is owned by the caller; the engine never modifies or resizes it.
//
// At(0) is the oldest frame and At(Len()-1) the newest. Frames returned by At
// must not be mutated afterwards by the owner, since the engine may still
// hold them for the current cycle.
type ProcessingBuffer interface {
	Len() int
	Cap() int
	At(i int) *frame.Frame
}

// RingBuffer is a fixed-capacity ProcessingBuffer. Appending to a full buffer
// evicts the oldest frame. It is safe for one appender running concurrently
// with the engine.
type RingBuffer struct {
	mu     sync.RWMutex
	frames []*frame.Frame
	head   int
	count  int
}

// NewRingBuffer creates a buffer holding up to capacity frames. capacity
// must lie in [limits.MinProcessingBuffer, limits.MaxTemporalWindow].
func NewRingBuffer(capacity int) (*RingBuffer, error) {
	if err := limits.ValidateTemporalWindow(capacity); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCapacity, err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "NewRingBuffer",
		"capacity": capacity,
	}).Debug("Creating processing buffer")

	return &RingBuffer{frames: make([]*frame.Frame, capacity)}, nil
}

// Append adds f as the newest frame. The buffer keeps a reference to f.
func (b *RingBuffer) Append(f *frame.Frame) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFrame, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.frames)
	if b.count < n {
		b.frames[(b.head+b.count)%n] = f
		b.count++
		return nil
	}
	b.frames[b.head] = f
	b.head = (b.head + 1) % n
	return nil
}

// Len returns the number of buffered frames.
func (b *RingBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}

// Cap returns the fixed capacity.
func (b *RingBuffer) Cap() int {
	return len(b.frames)
}

// At returns the i-th oldest frame, or nil when i is out of range.
func (b *RingBuffer) At(i int) *frame.Frame {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if i < 0 || i >= b.count {
		return nil
	}
	return b.frames[(b.head+i)%len(b.frames)]
}

// Newest returns the most recently appended frame, or nil.
func (b *RingBuffer) Newest() *frame.Frame {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.count == 0 {
		return nil
	}
	return b.frames[(b.head+b.count-1)%len(b.frames)]
}

// Reset drops every frame.
func (b *RingBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.frames)
	b.head = 0
	b.count = 0
}
