package pyramid

import (
	"fmt"
	"sync"

	"github.com/opd-ai/magnify/frame"
)

// kernel is the separable 5-tap low-pass used for both REDUCE and EXPAND.
var kernel = [5]float64{0.05, 0.25, 0.4, 0.25, 0.05}

// scratchPool recycles the intermediate row buffers of the separable passes.
var scratchPool = sync.Pool{
	New: func() interface{} {
		s := make([]float64, 0, 1024)
		return &s
	},
}

func getScratch(n int) *[]float64 {
	s := scratchPool.Get().(*[]float64)
	if cap(*s) < n {
		*s = make([]float64, n)
	}
	*s = (*s)[:n]
	return s
}

func putScratch(s *[]float64) {
	scratchPool.Put(s)
}

// mirror reflects i into [0, n) around the borders.
func mirror(i, n int) int {
	if i < 0 {
		i = -i
	}
	if i >= n {
		i = 2*n - i - 2
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Reduce blurs src and keeps every second sample in each direction, writing
// a (width/2) x (height/2) frame into dst.
func Reduce(dst, src *frame.Frame) (*frame.Frame, error) {
	if src == nil {
		return nil, frame.ErrNilFrame
	}
	dw, dh := src.Width/2, src.Height/2
	if dw < 1 || dh < 1 {
		return nil, fmt.Errorf("%w: cannot reduce %dx%d", frame.ErrInvalidDimensions, src.Width, src.Height)
	}
	dst = frame.Ensure(dst, dw, dh, src.Channels())

	sw, sh := src.Width, src.Height
	tmp := getScratch(dw * sh)
	defer putScratch(tmp)
	t := *tmp

	for c := range src.Planes {
		s := src.Planes[c]
		d := dst.Planes[c]

		// Horizontal pass, only at the kept columns.
		for y := 0; y < sh; y++ {
			row := s[y*sw : (y+1)*sw]
			for x := 0; x < dw; x++ {
				var v float64
				for i := -2; i <= 2; i++ {
					v += kernel[i+2] * row[mirror(2*x+i, sw)]
				}
				t[y*dw+x] = v
			}
		}

		// Vertical pass, only at the kept rows.
		for y := 0; y < dh; y++ {
			for x := 0; x < dw; x++ {
				var v float64
				for j := -2; j <= 2; j++ {
					v += kernel[j+2] * t[mirror(2*y+j, sh)*dw+x]
				}
				d[y*dw+x] = v
			}
		}
	}
	return dst, nil
}

// Expand interpolates src up to exactly width x height, writing into dst.
// The target is normally twice the source size, or one more than that when
// the finer level had an odd dimension.
func Expand(dst, src *frame.Frame, width, height int) (*frame.Frame, error) {
	if src == nil {
		return nil, frame.ErrNilFrame
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: cannot expand to %dx%d", frame.ErrInvalidDimensions, width, height)
	}
	if dst == src {
		dst = nil
	}
	dst = frame.Ensure(dst, width, height, src.Channels())

	sw, sh := src.Width, src.Height
	tmp := getScratch(width * sh)
	defer putScratch(tmp)
	t := *tmp

	for c := range src.Planes {
		s := src.Planes[c]
		d := dst.Planes[c]

		for y := 0; y < sh; y++ {
			row := s[y*sw : (y+1)*sw]
			for x := 0; x < width; x++ {
				t[y*width+x] = upsample(row, 1, sw, x)
			}
		}

		for x := 0; x < width; x++ {
			col := t[x:]
			for y := 0; y < height; y++ {
				d[y*width+x] = upsample(col, width, sh, y)
			}
		}
	}
	return dst, nil
}

// upsample evaluates the zero-stuffed, kernel-filtered signal at position p of
// the doubled grid. Only taps that land on an original sample contribute, so
// the weights are doubled to keep the gain at 1.
func upsample(s []float64, stride, n, p int) float64 {
	var v float64
	for i := -2; i <= 2; i++ {
		m := p - i
		if m < 0 {
			m = -m
		}
		if m&1 != 0 {
			continue
		}
		idx := m / 2
		if idx >= n {
			idx = n - 1
		}
		v += 2 * kernel[i+2] * s[idx*stride]
	}
	return v
}
