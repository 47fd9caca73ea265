package magnify

import (
	"math"
	"math/bits"

	"github.com/opd-ai/magnify/limits"
	"github.com/opd-ai/magnify/pyramid"
)

// RecommendedBufferCapacity returns the processing buffer size suited to the
// colour path at fps frames per second: the smallest power of two holding
// two seconds of video, at least limits.MinColorBuffer and at most
// limits.MaxTemporalWindow.
func RecommendedBufferCapacity(fps float64) int {
	if math.IsNaN(fps) || fps <= 0 {
		return limits.MinColorBuffer
	}
	if 2*fps >= limits.MaxTemporalWindow {
		return limits.MaxTemporalWindow
	}
	need := int(math.Ceil(2 * fps))
	if need <= limits.MinColorBuffer {
		return limits.MinColorBuffer
	}
	return 1 << bits.Len(uint(need-1))
}

// MaxSupportedLevels returns the deepest pyramid a width x height frame
// supports.
func MaxSupportedLevels(width, height int) int {
	return pyramid.MaxLevels(width, height)
}
