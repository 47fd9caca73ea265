package pyramid

import (
	"fmt"

	"github.com/opd-ai/magnify/frame"
)

// Gaussian is a stack of successively reduced frames. Levels[0] is the input
// frame itself (not a copy) and must be treated as read-only.
type Gaussian struct {
	Levels []*frame.Frame
}

// Len returns the number of stored levels, including level 0.
func (g *Gaussian) Len() int {
	return len(g.Levels)
}

// Top returns the coarsest level.
func (g *Gaussian) Top() *frame.Frame {
	if len(g.Levels) == 0 {
		return nil
	}
	return g.Levels[len(g.Levels)-1]
}

// BuildGaussian reduces f levels times. When levels exceeds MaxLevels for
// the frame size the returned pyramid holds only level 0 together with
// ErrTooManyLevels.
func BuildGaussian(f *frame.Frame, levels int) (*Gaussian, error) {
	return BuildGaussianInto(nil, f, levels)
}

// BuildGaussianInto is BuildGaussian reusing the level buffers of dst.
func BuildGaussianInto(dst *Gaussian, f *frame.Frame, levels int) (*Gaussian, error) {
	if f == nil {
		return nil, frame.ErrNilFrame
	}
	if dst == nil {
		dst = &Gaussian{}
	}
	if levels < 0 {
		levels = 0
	}

	if maxLevels := MaxLevels(f.Width, f.Height); levels > maxLevels {
		dst.Levels = append(dst.Levels[:0], f)
		return dst, fmt.Errorf("%w: %d requested, %dx%d supports %d",
			ErrTooManyLevels, levels, f.Width, f.Height, maxLevels)
	}

	old := dst.Levels
	dst.Levels = make([]*frame.Frame, levels+1)
	dst.Levels[0] = f
	for i := 1; i <= levels; i++ {
		var reuse *frame.Frame
		if i < len(old) {
			reuse = old[i]
		}
		next, err := Reduce(reuse, dst.Levels[i-1])
		if err != nil {
			return nil, fmt.Errorf("reduce level %d: %w", i, err)
		}
		dst.Levels[i] = next
	}
	return dst, nil
}

// ExpandFrom doubles top in both dimensions steps times and returns the
// result. bufs holds the intermediate frames of a previous call and is
// returned, possibly reallocated, for the next one. With zero steps the
// result is top itself.
//
// The result has size top*2^steps, which is smaller than the frame the
// pyramid was built from whenever a level was rounded down; callers rescale
// it to the exact size.
func ExpandFrom(bufs []*frame.Frame, top *frame.Frame, steps int) (*frame.Frame, []*frame.Frame, error) {
	if top == nil {
		return nil, bufs, frame.ErrNilFrame
	}
	if steps < 0 {
		steps = 0
	}
	if len(bufs) != steps {
		old := bufs
		bufs = make([]*frame.Frame, steps)
		copy(bufs, old)
	}
	cur := top
	for i := 0; i < steps; i++ {
		next, err := Expand(bufs[i], cur, cur.Width*2, cur.Height*2)
		if err != nil {
			return nil, bufs, fmt.Errorf("expand step %d: %w", i, err)
		}
		bufs[i] = next
		cur = next
	}
	return cur, bufs, nil
}
