package pyramid

import (
	"fmt"

	"github.com/opd-ai/magnify/frame"
)

// Subband identifies one of the three detail bands produced per level.
type Subband int

const (
	// Horizontal holds low-pass columns and high-pass rows, L(x)H(y).
	Horizontal Subband = iota
	// Vertical holds high-pass columns and low-pass rows, H(x)L(y).
	Vertical
	// Diagonal holds the high-pass in both directions, H(x)H(y).
	Diagonal
)

// SubbandsPerLevel is the number of detail bands at each level.
const SubbandsPerLevel = 3

func (s Subband) String() string {
	switch s {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	case Diagonal:
		return "diagonal"
	default:
		return fmt.Sprintf("subband(%d)", int(s))
	}
}

// Wavelet is a multi-level averaging Haar decomposition. Level 0 is the finest
// level. A sample pair (x0, x1) maps to the average (x0+x1)/2 and the half
// difference (x0-x1)/2; an odd trailing sample is carried unchanged into the
// low band, so any size down to MinLevelSize reconstructs exactly.
type Wavelet struct {
	Width  int
	Height int

	// Approx is the residual low band after the last level.
	Approx *frame.Frame

	details []*frame.Frame
	lowX    []*frame.Frame
	highX   []*frame.Frame
	lows    []*frame.Frame
}

// Levels returns the number of decomposition levels.
func (w *Wavelet) Levels() int {
	return len(w.details) / SubbandsPerLevel
}

// Detail returns the detail band at the given level.
func (w *Wavelet) Detail(level int, band Subband) *frame.Frame {
	return w.details[level*SubbandsPerLevel+int(band)]
}

// Each calls fn for every detail band, finest level first.
func (w *Wavelet) Each(fn func(level int, band Subband, f *frame.Frame)) {
	for i, d := range w.details {
		fn(i/SubbandsPerLevel, Subband(i%SubbandsPerLevel), d)
	}
}

// SameShape reports whether w and o decompose frames of the same shape to the
// same depth.
func (w *Wavelet) SameShape(o *Wavelet) bool {
	if w == nil || o == nil || len(w.details) != len(o.details) {
		return false
	}
	if !w.Approx.SameShape(o.Approx) {
		return false
	}
	for i := range w.details {
		if !w.details[i].SameShape(o.details[i]) {
			return false
		}
	}
	return true
}

// NewWaveletLike returns a zeroed decomposition with the shape of ref.
func NewWaveletLike(ref *Wavelet) *Wavelet {
	out := &Wavelet{
		Width:   ref.Width,
		Height:  ref.Height,
		Approx:  frame.New(ref.Approx.Width, ref.Approx.Height, ref.Approx.Channels()),
		details: make([]*frame.Frame, len(ref.details)),
	}
	for i, d := range ref.details {
		out.details[i] = frame.New(d.Width, d.Height, d.Channels())
	}
	return out
}

// Decompose splits f into levels detail levels and an approximation.
func Decompose(f *frame.Frame, levels int) (*Wavelet, error) {
	return DecomposeInto(nil, f, levels)
}

// DecomposeInto is Decompose reusing the buffers held by dst.
func DecomposeInto(dst *Wavelet, f *frame.Frame, levels int) (*Wavelet, error) {
	if f == nil {
		return nil, frame.ErrNilFrame
	}
	if levels < 0 {
		levels = 0
	}
	if maxLevels := MaxLevels(f.Width, f.Height); levels > maxLevels {
		return nil, fmt.Errorf("%w: %d requested, %dx%d supports %d",
			ErrTooManyLevels, levels, f.Width, f.Height, maxLevels)
	}
	if dst == nil {
		dst = &Wavelet{}
	}
	dst.Width, dst.Height = f.Width, f.Height
	dst.resize(levels)

	ch := f.Channels()
	cur := f
	for l := 0; l < levels; l++ {
		w, h := cur.Width, cur.Height
		lw, hw := (w+1)/2, w/2
		lh, hh := (h+1)/2, h/2

		lowX := frame.Ensure(dst.lowX[l], lw, h, ch)
		highX := frame.Ensure(dst.highX[l], hw, h, ch)
		dst.lowX[l], dst.highX[l] = lowX, highX

		var ll *frame.Frame
		if l == levels-1 {
			ll = frame.Ensure(dst.Approx, lw, lh, ch)
			dst.Approx = ll
		} else {
			ll = frame.Ensure(dst.lows[l], lw, lh, ch)
			dst.lows[l] = ll
		}
		horiz := frame.Ensure(dst.details[l*3+int(Horizontal)], lw, hh, ch)
		vert := frame.Ensure(dst.details[l*3+int(Vertical)], hw, lh, ch)
		diag := frame.Ensure(dst.details[l*3+int(Diagonal)], hw, hh, ch)
		dst.details[l*3+int(Horizontal)] = horiz
		dst.details[l*3+int(Vertical)] = vert
		dst.details[l*3+int(Diagonal)] = diag

		for c := 0; c < ch; c++ {
			splitRows(lowX.Planes[c], highX.Planes[c], cur.Planes[c], w, h)
			splitCols(ll.Planes[c], horiz.Planes[c], lowX.Planes[c], lw, h)
			splitCols(vert.Planes[c], diag.Planes[c], highX.Planes[c], hw, h)
		}
		cur = ll
	}
	if levels == 0 {
		dst.Approx = f.CopyInto(dst.Approx)
	}
	return dst, nil
}

func (w *Wavelet) resize(levels int) {
	n := levels * SubbandsPerLevel
	if len(w.details) != n {
		old := w.details
		w.details = make([]*frame.Frame, n)
		copy(w.details, old)
	}
	if len(w.lowX) != levels {
		w.lowX = make([]*frame.Frame, levels)
		w.highX = make([]*frame.Frame, levels)
		w.lows = make([]*frame.Frame, levels)
	}
}

// Reconstruct inverts Decompose.
func Reconstruct(w *Wavelet) (*frame.Frame, error) {
	return ReconstructInto(nil, w)
}

// ReconstructInto is Reconstruct writing the result into dst.
func ReconstructInto(dst *frame.Frame, w *Wavelet) (*frame.Frame, error) {
	if w == nil || w.Approx == nil {
		return nil, ErrEmptyPyramid
	}
	levels := w.Levels()
	if levels == 0 {
		return w.Approx.CopyInto(dst), nil
	}
	w.resize(levels)

	ch := w.Approx.Channels()
	cur := w.Approx
	for l := levels - 1; l >= 0; l-- {
		horiz := w.Detail(l, Horizontal)
		vert := w.Detail(l, Vertical)
		diag := w.Detail(l, Diagonal)

		lw, hw := cur.Width, vert.Width
		h := cur.Height + horiz.Height
		width := lw + hw

		lowX := frame.Ensure(w.lowX[l], lw, h, ch)
		highX := frame.Ensure(w.highX[l], hw, h, ch)
		w.lowX[l], w.highX[l] = lowX, highX

		var out *frame.Frame
		if l == 0 {
			out = frame.Ensure(dst, width, h, ch)
		} else {
			out = frame.Ensure(w.lows[l-1], width, h, ch)
			w.lows[l-1] = out
		}
		for c := 0; c < ch; c++ {
			mergeCols(lowX.Planes[c], cur.Planes[c], horiz.Planes[c], lw, h)
			mergeCols(highX.Planes[c], vert.Planes[c], diag.Planes[c], hw, h)
			mergeRows(out.Planes[c], lowX.Planes[c], highX.Planes[c], width, h)
		}
		cur = out
	}
	return cur, nil
}

// splitRows applies one Haar step along x to a w x h plane.
func splitRows(lo, hi, src []float64, w, h int) {
	lw, hw := (w+1)/2, w/2
	for y := 0; y < h; y++ {
		row := src[y*w : (y+1)*w]
		l := lo[y*lw : (y+1)*lw]
		d := hi[y*hw : (y+1)*hw]
		for i := 0; i < hw; i++ {
			a, b := row[2*i], row[2*i+1]
			l[i] = (a + b) / 2
			d[i] = (a - b) / 2
		}
		if w&1 == 1 {
			l[lw-1] = row[w-1]
		}
	}
}

// splitCols applies one Haar step along y to a w x h plane.
func splitCols(lo, hi, src []float64, w, h int) {
	lh, hh := (h+1)/2, h/2
	for j := 0; j < hh; j++ {
		r0 := src[(2*j)*w : (2*j+1)*w]
		r1 := src[(2*j+1)*w : (2*j+2)*w]
		l := lo[j*w : (j+1)*w]
		d := hi[j*w : (j+1)*w]
		for x := 0; x < w; x++ {
			l[x] = (r0[x] + r1[x]) / 2
			d[x] = (r0[x] - r1[x]) / 2
		}
	}
	if h&1 == 1 {
		copy(lo[(lh-1)*w:lh*w], src[(h-1)*w:h*w])
	}
}

// mergeRows inverts splitRows into a w x h plane.
func mergeRows(dst, lo, hi []float64, w, h int) {
	lw, hw := (w+1)/2, w/2
	for y := 0; y < h; y++ {
		row := dst[y*w : (y+1)*w]
		l := lo[y*lw : (y+1)*lw]
		d := hi[y*hw : (y+1)*hw]
		for i := 0; i < hw; i++ {
			row[2*i] = l[i] + d[i]
			row[2*i+1] = l[i] - d[i]
		}
		if w&1 == 1 {
			row[w-1] = l[lw-1]
		}
	}
}

// mergeCols inverts splitCols into a w x h plane.
func mergeCols(dst, lo, hi []float64, w, h int) {
	lh, hh := (h+1)/2, h/2
	for j := 0; j < hh; j++ {
		r0 := dst[(2*j)*w : (2*j+1)*w]
		r1 := dst[(2*j+1)*w : (2*j+2)*w]
		l := lo[j*w : (j+1)*w]
		d := hi[j*w : (j+1)*w]
		for x := 0; x < w; x++ {
			r0[x] = l[x] + d[x]
			r1[x] = l[x] - d[x]
		}
	}
	if h&1 == 1 {
		copy(dst[(h-1)*w:h*w], lo[(lh-1)*w:lh*w])
	}
}
