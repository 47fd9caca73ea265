// Package limits provides centralized resource limits for the magnification
// pipeline. This ensures consistent validation across frame intake, pyramid
// construction and temporal filtering.
package limits

import (
	"errors"
	"fmt"
)

const (
	// MaxFrameWidth is the widest frame the engine accepts (8K UHD)
	MaxFrameWidth = 7680

	// MaxFrameHeight is the tallest frame the engine accepts (8K UHD)
	MaxFrameHeight = 4320

	// MaxFramePixels bounds the per-frame allocation of every pyramid and
	// filter buffer derived from an input frame
	MaxFramePixels = MaxFrameWidth * MaxFrameHeight

	// MaxPyramidLevels is the absolute ceiling on pyramid depth, independent
	// of the frame size. log2(MaxFrameWidth) rounded up.
	MaxPyramidLevels = 13

	// MinProcessingBuffer is the smallest history that allows a temporal
	// filter to produce anything besides a passthrough
	MinProcessingBuffer = 2

	// MinColorBuffer is the floor applied to recommended colour buffer sizes
	MinColorBuffer = 16

	// MaxTemporalWindow is the largest sample matrix height of the
	// frequency-domain filter (about 34 seconds at 30 fps)
	MaxTemporalWindow = 1024
)

var (
	// ErrFrameEmpty indicates a frame with no pixels was provided
	ErrFrameEmpty = errors.New("empty frame")

	// ErrFrameTooLarge indicates frame dimensions exceed the supported maximum
	ErrFrameTooLarge = errors.New("frame too large")

	// ErrWindowTooSmall indicates a temporal window below MinProcessingBuffer
	ErrWindowTooSmall = errors.New("temporal window too small")

	// ErrWindowTooLarge indicates a temporal window above MaxTemporalWindow
	ErrWindowTooLarge = errors.New("temporal window too large")
)

// ValidateFrameSize validates frame dimensions against the per-axis and total
// pixel limits. Returns an error with context including the actual and
// maximum sizes.
func ValidateFrameSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrFrameEmpty, width, height)
	}
	if width > MaxFrameWidth || height > MaxFrameHeight {
		return fmt.Errorf("%w: %dx%d exceeds limit %dx%d", ErrFrameTooLarge, width, height, MaxFrameWidth, MaxFrameHeight)
	}
	if width*height > MaxFramePixels {
		return fmt.Errorf("%w: %d pixels exceeds limit %d", ErrFrameTooLarge, width*height, MaxFramePixels)
	}
	return nil
}

// ValidateTemporalWindow validates the height of a temporal sample matrix.
func ValidateTemporalWindow(n int) error {
	if n < MinProcessingBuffer {
		return fmt.Errorf("%w: %d below minimum %d", ErrWindowTooSmall, n, MinProcessingBuffer)
	}
	if n > MaxTemporalWindow {
		return fmt.Errorf("%w: %d exceeds limit %d", ErrWindowTooLarge, n, MaxTemporalWindow)
	}
	return nil
}

// ClampLevels limits a requested pyramid depth to [0, MaxPyramidLevels].
func ClampLevels(levels int) int {
	if levels < 0 {
		return 0
	}
	if levels > MaxPyramidLevels {
		return MaxPyramidLevels
	}
	return levels
}

// ClampTemporalWindow limits a temporal window to
// [MinProcessingBuffer, MaxTemporalWindow].
func ClampTemporalWindow(n int) int {
	if n < MinProcessingBuffer {
		return MinProcessingBuffer
	}
	if n > MaxTemporalWindow {
		return MaxTemporalWindow
	}
	return n
}
