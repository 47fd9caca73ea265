package pyramid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/magnify/frame"
)

func createTestFrame(width, height, channels int) *frame.Frame {
	f := frame.New(width, height, channels)
	for c := range f.Planes {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				f.Planes[c][y*width+x] = 0.5 + 0.4*math.Sin(float64(x)*0.3+float64(c))*math.Cos(float64(y)*0.2)
			}
		}
	}
	return f
}

func constantFrame(width, height int, v float64) *frame.Frame {
	f := frame.New(width, height, 1)
	for i := range f.Planes[0] {
		f.Planes[0][i] = v
	}
	return f
}

func TestMaxLevels(t *testing.T) {
	tests := []struct {
		w, h int
		want int
	}{
		{1, 1, 0},
		{2, 2, 0},
		{3, 3, 0},
		{4, 4, 1},
		{7, 100, 1},
		{8, 8, 2},
		{640, 480, 7},
		{1920, 1080, 9},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaxLevels(tt.w, tt.h), "%dx%d", tt.w, tt.h)
	}
}

func TestMaxLevelsKeepsMinimumSize(t *testing.T) {
	for _, size := range [][2]int{{4, 4}, {5, 9}, {31, 17}, {64, 48}, {100, 75}, {320, 240}} {
		w, h := size[0], size[1]
		n := MaxLevels(w, h)
		for i := 0; i < n; i++ {
			w, h = w/2, h/2
		}
		assert.GreaterOrEqual(t, min(w, h), MinLevelSize, "%v", size)
		assert.Less(t, min(w/2, h/2), MinLevelSize, "%v could go one level deeper", size)
	}
}

func TestClampLevels(t *testing.T) {
	assert.Equal(t, 0, ClampLevels(-3, 64, 64))
	assert.Equal(t, 3, ClampLevels(3, 64, 64))
	assert.Equal(t, MaxLevels(64, 64), ClampLevels(99, 64, 64))
}

func TestReduceExpandShapes(t *testing.T) {
	src := createTestFrame(13, 9, 3)
	r, err := Reduce(nil, src)
	require.NoError(t, err)
	assert.Equal(t, 6, r.Width)
	assert.Equal(t, 4, r.Height)
	assert.Equal(t, 3, r.Channels())

	e, err := Expand(nil, r, 13, 9)
	require.NoError(t, err)
	assert.Equal(t, 13, e.Width)
	assert.Equal(t, 9, e.Height)

	_, err = Reduce(nil, frame.New(1, 5, 1))
	assert.ErrorIs(t, err, frame.ErrInvalidDimensions)
}

func TestReduceExpandPreserveConstant(t *testing.T) {
	src := constantFrame(16, 12, 0.7)
	r, err := Reduce(nil, src)
	require.NoError(t, err)
	for _, v := range r.Planes[0] {
		assert.InDelta(t, 0.7, v, 1e-12)
	}
	e, err := Expand(nil, r, 16, 12)
	require.NoError(t, err)
	for _, v := range e.Planes[0] {
		assert.InDelta(t, 0.7, v, 1e-12)
	}
}

func TestBuildGaussian(t *testing.T) {
	src := createTestFrame(64, 48, 1)
	g, err := BuildGaussian(src, 3)
	require.NoError(t, err)
	require.Equal(t, 4, g.Len())
	assert.Same(t, src, g.Levels[0])
	assert.Equal(t, 8, g.Top().Width)
	assert.Equal(t, 6, g.Top().Height)
}

func TestBuildGaussianTooManyLevels(t *testing.T) {
	src := createTestFrame(8, 8, 1)
	g, err := BuildGaussian(src, 5)
	assert.ErrorIs(t, err, ErrTooManyLevels)
	require.NotNil(t, g)
	assert.Equal(t, 1, g.Len())
}

func TestBuildGaussianIntoReusesBuffers(t *testing.T) {
	src := createTestFrame(32, 32, 1)
	g, err := BuildGaussian(src, 2)
	require.NoError(t, err)
	level1 := g.Levels[1]

	g2, err := BuildGaussianInto(g, createTestFrame(32, 32, 1), 2)
	require.NoError(t, err)
	assert.Same(t, level1, g2.Levels[1])
}

func TestLaplacianRoundTrip(t *testing.T) {
	sizes := [][2]int{{64, 48}, {37, 29}, {16, 16}, {9, 13}}
	for _, size := range sizes {
		src := createTestFrame(size[0], size[1], 3)
		for levels := 0; levels <= MaxLevels(size[0], size[1]); levels++ {
			_, lap, err := BuildLaplacian(src, levels)
			require.NoError(t, err)
			assert.Equal(t, levels+1, lap.Len())

			out, err := Collapse(lap)
			require.NoError(t, err)
			assert.InDelta(t, 0, frame.MaxAbsDiff(src, out), 1e-9, "%v levels=%d", size, levels)
		}
	}
}

func TestLaplacianTopIsCoarsestGaussian(t *testing.T) {
	src := createTestFrame(32, 32, 1)
	g, lap, err := BuildLaplacian(src, 2)
	require.NoError(t, err)
	top := lap.Levels[2]
	assert.NotSame(t, g.Top(), top)
	assert.Equal(t, g.Top().Planes, top.Planes)
}

func TestLaplacianConstantHasNoDetail(t *testing.T) {
	_, lap, err := BuildLaplacian(constantFrame(32, 24, 0.3), 3)
	require.NoError(t, err)
	for i := 0; i < lap.Len()-1; i++ {
		for _, v := range lap.Levels[i].Planes[0] {
			assert.InDelta(t, 0, v, 1e-12)
		}
	}
}

func TestCollapseEmpty(t *testing.T) {
	_, err := Collapse(nil)
	assert.ErrorIs(t, err, ErrEmptyPyramid)
}

func TestNewLaplacianLike(t *testing.T) {
	_, lap, err := BuildLaplacian(createTestFrame(32, 16, 3), 2)
	require.NoError(t, err)
	like := NewLaplacianLike(lap)
	assert.True(t, like.SameShape(lap))
	assert.Zero(t, like.Levels[0].MeanAbs(0))
}

func TestWaveletRoundTrip(t *testing.T) {
	sizes := [][2]int{{64, 48}, {37, 29}, {8, 8}, {5, 11}, {4, 4}}
	for _, size := range sizes {
		src := createTestFrame(size[0], size[1], 3)
		for levels := 0; levels <= MaxLevels(size[0], size[1]); levels++ {
			w, err := Decompose(src, levels)
			require.NoError(t, err)
			assert.Equal(t, levels, w.Levels())

			out, err := Reconstruct(w)
			require.NoError(t, err)
			assert.InDelta(t, 0, frame.MaxAbsDiff(src, out), 1e-12, "%v levels=%d", size, levels)
		}
	}
}

func TestWaveletSubbandShapes(t *testing.T) {
	w, err := Decompose(createTestFrame(9, 6, 1), 1)
	require.NoError(t, err)

	assert.Equal(t, 5, w.Approx.Width)
	assert.Equal(t, 3, w.Approx.Height)

	h := w.Detail(0, Horizontal)
	assert.Equal(t, [2]int{5, 3}, [2]int{h.Width, h.Height})
	v := w.Detail(0, Vertical)
	assert.Equal(t, [2]int{4, 3}, [2]int{v.Width, v.Height})
	d := w.Detail(0, Diagonal)
	assert.Equal(t, [2]int{4, 3}, [2]int{d.Width, d.Height})
}

func TestWaveletHaarValues(t *testing.T) {
	src := &frame.Frame{Width: 2, Height: 2, Planes: [][]float64{{4, 2, 2, 0}}}
	w, err := Decompose(src, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, w.Levels())

	// A single step on a 2x2 block is checked through the row and column
	// helpers directly since MaxLevels(2, 2) is 0.
	lo, hi := make([]float64, 2), make([]float64, 2)
	splitRows(lo, hi, src.Planes[0], 2, 2)
	assert.Equal(t, []float64{3, 1}, lo)
	assert.Equal(t, []float64{1, 1}, hi)

	ll, lh := make([]float64, 1), make([]float64, 1)
	splitCols(ll, lh, lo, 1, 2)
	assert.Equal(t, []float64{2}, ll)
	assert.Equal(t, []float64{1}, lh)
}

func TestWaveletConstantHasNoDetail(t *testing.T) {
	w, err := Decompose(constantFrame(16, 16, 0.25), 3)
	require.NoError(t, err)
	w.Each(func(level int, band Subband, f *frame.Frame) {
		for _, v := range f.Planes[0] {
			assert.Zero(t, v, "level %d %s", level, band)
		}
	})
	for _, v := range w.Approx.Planes[0] {
		assert.InDelta(t, 0.25, v, 1e-15)
	}
}

func TestWaveletTooManyLevels(t *testing.T) {
	_, err := Decompose(createTestFrame(8, 8, 1), 3)
	assert.ErrorIs(t, err, ErrTooManyLevels)
}

func TestWaveletIntoReuse(t *testing.T) {
	src := createTestFrame(32, 24, 1)
	w, err := Decompose(src, 2)
	require.NoError(t, err)
	first := w.Detail(1, Diagonal)

	w2, err := DecomposeInto(w, createTestFrame(32, 24, 1), 2)
	require.NoError(t, err)
	assert.Same(t, first, w2.Detail(1, Diagonal))

	like := NewWaveletLike(w)
	assert.True(t, like.SameShape(w))
	out, err := Reconstruct(like)
	require.NoError(t, err)
	assert.Zero(t, out.MeanAbs(0))
}

func TestSubbandString(t *testing.T) {
	assert.Equal(t, "horizontal", Horizontal.String())
	assert.Equal(t, "diagonal", Diagonal.String())
	assert.Equal(t, "subband(7)", Subband(7).String())
}

func TestExpandFrom(t *testing.T) {
	top := constantFrame(5, 3, 0.6)
	out, bufs, err := ExpandFrom(nil, top, 2)
	require.NoError(t, err)
	require.Len(t, bufs, 2)
	assert.Equal(t, 20, out.Width)
	assert.Equal(t, 12, out.Height)
	for _, v := range out.Planes[0] {
		assert.InDelta(t, 0.6, v, 1e-12)
	}

	again, bufs2, err := ExpandFrom(bufs, top, 2)
	require.NoError(t, err)
	assert.Same(t, out, again)
	assert.Same(t, bufs[0], bufs2[0])

	same, _, err := ExpandFrom(nil, top, 0)
	require.NoError(t, err)
	assert.Same(t, top, same)
}
