// Package frame provides the planar floating point image used by every stage
// of the magnification pipeline.
//
// A Frame stores one plane per channel. Grayscale frames carry a single
// plane, colour frames carry three (RGB at the pipeline boundary, YCbCr
// inside the magnification algorithms). Sample values are normalised so that
// 0 is black and 1 is full intensity; intermediate residual frames may hold
// negative values.
package frame

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNilFrame indicates a nil frame was passed where one is required.
	ErrNilFrame = errors.New("frame cannot be nil")

	// ErrInvalidDimensions indicates a frame with a zero or negative size.
	ErrInvalidDimensions = errors.New("invalid frame dimensions")

	// ErrInvalidChannels indicates a channel count other than 1 or 3.
	ErrInvalidChannels = errors.New("invalid channel count")

	// ErrPlaneSize indicates a plane whose length does not match Width*Height.
	ErrPlaneSize = errors.New("plane size does not match dimensions")

	// ErrShapeMismatch indicates two frames that should share a shape do not.
	ErrShapeMismatch = errors.New("frame shapes do not match")
)

// Frame is a planar image with float64 samples.
type Frame struct {
	Width  int
	Height int
	Planes [][]float64
}

// New allocates a zeroed frame with the given size and channel count.
func New(width, height, channels int) *Frame {
	f := &Frame{
		Width:  width,
		Height: height,
		Planes: make([][]float64, channels),
	}
	for c := range f.Planes {
		f.Planes[c] = make([]float64, width*height)
	}
	return f
}

// Ensure returns dst if it already has the requested shape, otherwise a newly
// allocated frame. Callers use it to keep per-level buffers alive across
// frames.
func Ensure(dst *Frame, width, height, channels int) *Frame {
	if dst != nil && dst.Width == width && dst.Height == height && len(dst.Planes) == channels {
		return dst
	}
	return New(width, height, channels)
}

// EnsureLike is Ensure with the shape taken from ref.
func EnsureLike(dst, ref *Frame) *Frame {
	return Ensure(dst, ref.Width, ref.Height, ref.Channels())
}

// Channels returns the number of planes.
func (f *Frame) Channels() int {
	return len(f.Planes)
}

// Pixels returns Width*Height.
func (f *Frame) Pixels() int {
	return f.Width * f.Height
}

// SameShape reports whether f and o have identical size and channel count.
func (f *Frame) SameShape(o *Frame) bool {
	if f == nil || o == nil {
		return false
	}
	return f.Width == o.Width && f.Height == o.Height && len(f.Planes) == len(o.Planes)
}

// Validate checks that the frame is internally consistent.
func (f *Frame) Validate() error {
	if f == nil {
		return ErrNilFrame
	}
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, f.Width, f.Height)
	}
	if n := len(f.Planes); n != 1 && n != 3 {
		return fmt.Errorf("%w: %d", ErrInvalidChannels, n)
	}
	want := f.Width * f.Height
	for c, p := range f.Planes {
		if len(p) != want {
			return fmt.Errorf("%w: plane %d has %d samples, want %d", ErrPlaneSize, c, len(p), want)
		}
	}
	return nil
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	if f == nil {
		return nil
	}
	out := &Frame{
		Width:  f.Width,
		Height: f.Height,
		Planes: make([][]float64, len(f.Planes)),
	}
	for c, p := range f.Planes {
		out.Planes[c] = append([]float64(nil), p...)
	}
	return out
}

// CopyInto copies f into dst, reallocating dst if its shape differs.
func (f *Frame) CopyInto(dst *Frame) *Frame {
	dst = EnsureLike(dst, f)
	for c, p := range f.Planes {
		copy(dst.Planes[c], p)
	}
	return dst
}

// Zero sets every sample to 0.
func (f *Frame) Zero() {
	for _, p := range f.Planes {
		clear(p)
	}
}

// Scale multiplies every sample by k.
func (f *Frame) Scale(k float64) {
	if k == 1 {
		return
	}
	if k == 0 {
		f.Zero()
		return
	}
	for _, p := range f.Planes {
		for i := range p {
			p[i] *= k
		}
	}
}

// ScalePlane multiplies a single plane by k.
func (f *Frame) ScalePlane(c int, k float64) {
	p := f.Planes[c]
	for i := range p {
		p[i] *= k
	}
}

// Clip limits every sample to [lo, hi].
func (f *Frame) Clip(lo, hi float64) {
	for _, p := range f.Planes {
		for i, v := range p {
			if v < lo {
				p[i] = lo
			} else if v > hi {
				p[i] = hi
			}
		}
	}
}

// Add writes a+b into dst and returns it. dst may alias a or b.
func Add(dst, a, b *Frame) (*Frame, error) {
	if !a.SameShape(b) {
		return nil, fmt.Errorf("%w: %dx%dx%d vs %dx%dx%d", ErrShapeMismatch,
			a.Width, a.Height, a.Channels(), b.Width, b.Height, b.Channels())
	}
	dst = EnsureLike(dst, a)
	for c := range a.Planes {
		pa, pb, pd := a.Planes[c], b.Planes[c], dst.Planes[c]
		for i := range pd {
			pd[i] = pa[i] + pb[i]
		}
	}
	return dst, nil
}

// Sub writes a-b into dst and returns it. dst may alias a or b.
func Sub(dst, a, b *Frame) (*Frame, error) {
	if !a.SameShape(b) {
		return nil, fmt.Errorf("%w: %dx%dx%d vs %dx%dx%d", ErrShapeMismatch,
			a.Width, a.Height, a.Channels(), b.Width, b.Height, b.Channels())
	}
	dst = EnsureLike(dst, a)
	for c := range a.Planes {
		pa, pb, pd := a.Planes[c], b.Planes[c], dst.Planes[c]
		for i := range pd {
			pd[i] = pa[i] - pb[i]
		}
	}
	return dst, nil
}

// Flatten appends all planes, plane after plane, to dst[:0].
func (f *Frame) Flatten(dst []float64) []float64 {
	dst = dst[:0]
	for _, p := range f.Planes {
		dst = append(dst, p...)
	}
	return dst
}

// Unflatten is the inverse of Flatten. src must hold exactly Pixels()*Channels()
// samples.
func (f *Frame) Unflatten(src []float64) error {
	n := f.Pixels()
	if len(src) != n*len(f.Planes) {
		return fmt.Errorf("%w: got %d samples, want %d", ErrPlaneSize, len(src), n*len(f.Planes))
	}
	for c, p := range f.Planes {
		copy(p, src[c*n:(c+1)*n])
	}
	return nil
}

// MeanAbs returns the mean absolute value of plane c.
func (f *Frame) MeanAbs(c int) float64 {
	p := f.Planes[c]
	if len(p) == 0 {
		return 0
	}
	var sum float64
	for _, v := range p {
		sum += math.Abs(v)
	}
	return sum / float64(len(p))
}

// MaxAbsDiff returns the largest absolute sample difference between two
// frames of the same shape, or +Inf when the shapes differ.
func MaxAbsDiff(a, b *Frame) float64 {
	if !a.SameShape(b) {
		return math.Inf(1)
	}
	var worst float64
	for c := range a.Planes {
		pa, pb := a.Planes[c], b.Planes[c]
		for i := range pa {
			if d := math.Abs(pa[i] - pb[i]); d > worst {
				worst = d
			}
		}
	}
	return worst
}
