// Package pyramid implements the multi-resolution transforms used by the
// magnification engine: Gaussian and Laplacian image pyramids and a
// recursive Haar wavelet decomposition.
//
// Every builder comes in two forms. The plain form allocates a new pyramid;
// the Into form accepts a pyramid from the previous frame and reuses its
// level buffers when the shapes still match, so a steady video stream
// allocates its pyramids once.
package pyramid

import (
	"errors"
	"math/bits"

	"github.com/opd-ai/magnify/limits"
)

// MinLevelSize is the smallest width or height any pyramid level may have.
const MinLevelSize = 2

var (
	// ErrTooManyLevels indicates a level count above MaxLevels for the frame.
	ErrTooManyLevels = errors.New("level count exceeds maximum for frame size")

	// ErrEmptyPyramid indicates a pyramid without levels.
	ErrEmptyPyramid = errors.New("pyramid has no levels")
)

// MaxLevels returns the number of times a width x height frame can be halved
// (rounding down) while both dimensions stay at least MinLevelSize. This is
// floor(log2(min(width, height))) - 1, never negative, and never above
// limits.MaxPyramidLevels.
func MaxLevels(width, height int) int {
	m := min(width, height)
	if m < MinLevelSize {
		return 0
	}
	n := bits.Len(uint(m)) - 2
	if n < 0 {
		n = 0
	}
	return limits.ClampLevels(n)
}

// ClampLevels limits levels to [0, MaxLevels(width, height)].
func ClampLevels(levels, width, height int) int {
	if levels < 0 {
		return 0
	}
	return min(levels, MaxLevels(width, height))
}
