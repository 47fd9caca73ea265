package temporal

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/brettbuddin/fourier"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/magnify/limits"
)

// Ideal is a frequency-domain bandpass over a sliding window of sample rows.
// Each row is one flattened frame; the filter runs along the time axis of
// every column independently and yields the filtered newest row.
//
// The window holds exactly Height rows. Transforms run over the next power
// of two at or above Height, with the missing samples zero padded.
type Ideal struct {
	height int
	width  int
	rows   [][]float64
	head   int
	count  int

	n     int
	norm  float64
	coeff []complex128
}

// NewIdeal creates a filter with a window of height rows. height must lie in
// [limits.MinProcessingBuffer, limits.MaxTemporalWindow].
func NewIdeal(height int) (*Ideal, error) {
	if err := limits.ValidateTemporalWindow(height); err != nil {
		return nil, err
	}

	n := nextPowerOfTwo(height)
	f := &Ideal{
		height: height,
		rows:   make([][]float64, height),
		n:      n,
		coeff:  make([]complex128, n),
	}
	if err := f.calibrate(); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function":       "NewIdeal",
		"height":         height,
		"transform_size": n,
	}).Debug("Created frequency-domain filter")
	return f, nil
}

// calibrate measures the gain of the forward transform on an impulse, so
// the inverse can be built from the forward transform regardless of the
// normalisation it applies.
func (f *Ideal) calibrate() error {
	clear(f.coeff)
	f.coeff[0] = 1
	if err := fourier.Forward(f.coeff); err != nil {
		return fmt.Errorf("calibrate transform: %w", err)
	}
	s := real(f.coeff[0])
	if s == 0 {
		return fmt.Errorf("calibrate transform: zero gain")
	}
	f.norm = s * s * float64(f.n)
	return nil
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// Height returns the window size.
func (f *Ideal) Height() int {
	return f.height
}

// Width returns the row length, or 0 before the first push.
func (f *Ideal) Width() int {
	return f.width
}

// Len returns the number of rows currently held.
func (f *Ideal) Len() int {
	return f.count
}

// Full reports whether the window is filled.
func (f *Ideal) Full() bool {
	return f.count == f.height
}

// Reset empties the window. The next push may use a different row width.
func (f *Ideal) Reset() {
	f.head = 0
	f.count = 0
	f.width = 0
}

// Push appends a copy of row as the newest sample, discarding the oldest one
// when the window is full.
func (f *Ideal) Push(row []float64) error {
	if len(row) == 0 {
		return fmt.Errorf("%w: empty row", ErrRowWidth)
	}
	if f.width == 0 {
		f.width = len(row)
	} else if len(row) != f.width {
		return fmt.Errorf("%w: got %d, want %d", ErrRowWidth, len(row), f.width)
	}

	var idx int
	if f.count < f.height {
		idx = (f.head + f.count) % f.height
		f.count++
	} else {
		idx = f.head
		f.head = (f.head + 1) % f.height
	}
	if cap(f.rows[idx]) < f.width {
		f.rows[idx] = make([]float64, f.width)
	}
	f.rows[idx] = f.rows[idx][:f.width]
	copy(f.rows[idx], row)
	return nil
}

// Filter bandpasses every column to [low, high] Hz given the sampling rate
// fps, and writes the filtered newest row into dst.
func (f *Ideal) Filter(low, high, fps float64, dst []float64) ([]float64, error) {
	if !f.Full() {
		return nil, fmt.Errorf("%w: %d of %d rows", ErrNotFull, f.count, f.height)
	}
	if !(fps > 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRate, fps)
	}
	if cap(dst) < f.width {
		dst = make([]float64, f.width)
	}
	dst = dst[:f.width]

	lo, hi := CutoffBins(f.n, fps, low, high)
	newest := f.height - 1
	c := f.coeff

	for x := 0; x < f.width; x++ {
		for t := 0; t < f.height; t++ {
			c[t] = complex(f.rows[(f.head+t)%f.height][x], 0)
		}
		clear(c[f.height:])

		if err := fourier.Forward(c); err != nil {
			return nil, fmt.Errorf("forward transform: %w", err)
		}
		for k := range c {
			kk := min(k, f.n-k)
			if kk < lo || kk > hi {
				c[k] = 0
				continue
			}
			// The inverse is conj(F(conj(X))) / norm; only the real part is
			// kept, which the outer conjugate leaves unchanged.
			c[k] = complex(real(c[k]), -imag(c[k]))
		}
		if err := fourier.Forward(c); err != nil {
			return nil, fmt.Errorf("inverse transform: %w", err)
		}
		dst[x] = real(c[newest]) / f.norm
	}
	return dst, nil
}

// CutoffBins maps a passband in Hz to the inclusive range of transform bins
// kept for an n point transform sampled at fps. Bin k keeps its coefficient
// when lo <= min(k, n-k) <= hi. The range is empty (lo > hi) when the band
// lies between two bins or is inverted.
func CutoffBins(n int, fps, low, high float64) (lo, hi int) {
	if n <= 0 || !(fps > 0) {
		return 1, 0
	}
	nyquist := n / 2
	lo = clampBin(math.Ceil(low*float64(n)/fps), nyquist)
	hi = clampBin(math.Floor(high*float64(n)/fps), nyquist)
	return lo, hi
}

func clampBin(v float64, maxBin int) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > float64(maxBin) {
		return maxBin
	}
	return int(v)
}
