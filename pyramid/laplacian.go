package pyramid

import (
	"fmt"

	"github.com/opd-ai/magnify/frame"
)

// Laplacian holds band-pass residuals. For a pyramid built with n levels it
// stores n+1 frames: Levels[i] = G[i] - expand(G[i+1]) for i < n, and
// Levels[n] is a copy of the coarsest Gaussian level.
type Laplacian struct {
	Levels []*frame.Frame

	scratch []*frame.Frame
}

// Len returns the number of stored levels, including the coarse residual.
func (l *Laplacian) Len() int {
	return len(l.Levels)
}

// NewLaplacianLike returns a zeroed Laplacian with the same level shapes as
// ref. It is used for filtered pyramids that live alongside the input one.
func NewLaplacianLike(ref *Laplacian) *Laplacian {
	out := &Laplacian{Levels: make([]*frame.Frame, len(ref.Levels))}
	for i, lvl := range ref.Levels {
		out.Levels[i] = frame.New(lvl.Width, lvl.Height, lvl.Channels())
	}
	return out
}

// SameShape reports whether both pyramids have identical level shapes.
func (l *Laplacian) SameShape(o *Laplacian) bool {
	if l == nil || o == nil || len(l.Levels) != len(o.Levels) {
		return false
	}
	for i := range l.Levels {
		if !l.Levels[i].SameShape(o.Levels[i]) {
			return false
		}
	}
	return true
}

// BuildLaplacian builds the Gaussian pyramid of f and its Laplacian.
func BuildLaplacian(f *frame.Frame, levels int) (*Gaussian, *Laplacian, error) {
	return BuildLaplacianInto(nil, nil, f, levels)
}

// BuildLaplacianInto is BuildLaplacian reusing the buffers of g and l.
func BuildLaplacianInto(g *Gaussian, l *Laplacian, f *frame.Frame, levels int) (*Gaussian, *Laplacian, error) {
	g, err := BuildGaussianInto(g, f, levels)
	if err != nil {
		return g, nil, err
	}
	if l == nil {
		l = &Laplacian{}
	}

	n := g.Len()
	if len(l.Levels) != n {
		old := l.Levels
		l.Levels = make([]*frame.Frame, n)
		copy(l.Levels, old)
	}

	for i := 0; i < n-1; i++ {
		cur := g.Levels[i]
		up, err := Expand(l.Levels[i], g.Levels[i+1], cur.Width, cur.Height)
		if err != nil {
			return nil, nil, fmt.Errorf("expand level %d: %w", i+1, err)
		}
		if _, err := frame.Sub(up, cur, up); err != nil {
			return nil, nil, fmt.Errorf("residual level %d: %w", i, err)
		}
		l.Levels[i] = up
	}
	l.Levels[n-1] = g.Top().CopyInto(l.Levels[n-1])
	return g, l, nil
}

// Collapse reconstructs a frame from a Laplacian pyramid, from the coarsest
// level down to level 0.
func Collapse(l *Laplacian) (*frame.Frame, error) {
	return CollapseInto(nil, l)
}

// CollapseInto is Collapse writing the result into dst.
func CollapseInto(dst *frame.Frame, l *Laplacian) (*frame.Frame, error) {
	if l == nil || len(l.Levels) == 0 {
		return nil, ErrEmptyPyramid
	}
	n := len(l.Levels)
	if n == 1 {
		return l.Levels[0].CopyInto(dst), nil
	}

	if len(l.scratch) != n {
		l.scratch = make([]*frame.Frame, n)
	}
	cur := l.Levels[n-1]
	for i := n - 2; i >= 0; i-- {
		target := l.Levels[i]
		out := l.scratch[i]
		if i == 0 {
			out = dst
		}
		up, err := Expand(out, cur, target.Width, target.Height)
		if err != nil {
			return nil, fmt.Errorf("expand level %d: %w", i+1, err)
		}
		if _, err := frame.Add(up, up, target); err != nil {
			return nil, fmt.Errorf("add level %d: %w", i, err)
		}
		if i > 0 {
			l.scratch[i] = up
		}
		cur = up
	}
	return cur, nil
}
