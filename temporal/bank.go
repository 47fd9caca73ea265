// Package temporal holds the per-pixel temporal filters of the magnification
// pipeline.
//
// Bank is the causal two-pole filter used by the motion paths: two first
// order low-pass filters with different weights whose difference is an
// approximate bandpass. Ideal is the frequency-domain bandpass used by the
// colour path over a window of flattened frames.
package temporal

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/magnify/frame"
)

var (
	// ErrSlotShape indicates an update whose frame shape differs from the
	// state held for that slot.
	ErrSlotShape = errors.New("frame shape does not match filter slot")

	// ErrRowWidth indicates a sample row of the wrong length.
	ErrRowWidth = errors.New("sample row width mismatch")

	// ErrNotFull indicates a frequency-domain filter run before its window
	// was filled.
	ErrNotFull = errors.New("temporal window not full")

	// ErrInvalidRate indicates a non-positive frame rate.
	ErrInvalidRate = errors.New("frame rate must be positive")
)

type slot struct {
	hi *frame.Frame
	lo *frame.Frame
}

// Bank keeps one pair of running low-pass states per slot. A slot is one
// pyramid level or one wavelet subband; callers pick a stable index for each.
//
// Each update computes
//
//	hi = (1-high)*hi + high*x
//	lo = (1-low)*lo + low*x
//
// and returns hi-lo. A larger weight tracks the input faster, so high sets
// the upper edge of the passband and low the lower one.
type Bank struct {
	low   float64
	high  float64
	slots []slot
}

// NewBank creates a filter bank with the given weights, each clamped to
// [0, 1].
func NewBank(low, high float64) *Bank {
	b := &Bank{}
	b.SetCutoffs(low, high)
	return b
}

// SetCutoffs replaces the filter weights. Running state is kept, so a
// settings change takes effect on the next update without a reset.
func (b *Bank) SetCutoffs(low, high float64) {
	b.low = clampUnit(low)
	b.high = clampUnit(high)
}

// Cutoffs returns the current weights.
func (b *Bank) Cutoffs() (low, high float64) {
	return b.low, b.high
}

func clampUnit(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Len returns the number of slots that hold state.
func (b *Bank) Len() int {
	return len(b.slots)
}

// Primed reports whether the slot has received at least one sample.
func (b *Bank) Primed(i int) bool {
	return i >= 0 && i < len(b.slots) && b.slots[i].hi != nil
}

// Reset drops every slot's running state.
func (b *Bank) Reset() {
	if len(b.slots) > 0 {
		logrus.WithFields(logrus.Fields{
			"function": "Bank.Reset",
			"slots":    len(b.slots),
		}).Debug("Resetting filter bank")
	}
	clear(b.slots)
	b.slots = b.slots[:0]
}

// Update feeds src into slot i and writes the band into dst. The first
// sample of a slot primes both states with src and yields a zero band.
func (b *Bank) Update(i int, src, dst *frame.Frame) (*frame.Frame, error) {
	if src == nil {
		return nil, frame.ErrNilFrame
	}
	if i < 0 {
		return nil, fmt.Errorf("invalid slot %d", i)
	}
	for len(b.slots) <= i {
		b.slots = append(b.slots, slot{})
	}

	s := &b.slots[i]
	dst = frame.EnsureLike(dst, src)
	if s.hi == nil {
		s.hi = src.Clone()
		s.lo = src.Clone()
		dst.Zero()
		return dst, nil
	}
	if !s.hi.SameShape(src) {
		return nil, fmt.Errorf("%w: slot %d holds %dx%dx%d, got %dx%dx%d", ErrSlotShape, i,
			s.hi.Width, s.hi.Height, s.hi.Channels(), src.Width, src.Height, src.Channels())
	}

	kh, kl := b.high, b.low
	for c := range src.Planes {
		x := src.Planes[c]
		hi, lo, out := s.hi.Planes[c], s.lo.Planes[c], dst.Planes[c]
		for p, v := range x {
			hi[p] += kh * (v - hi[p])
			lo[p] += kl * (v - lo[p])
			out[p] = hi[p] - lo[p]
		}
	}
	return dst, nil
}
