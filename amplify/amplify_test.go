package amplify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/magnify/frame"
	"github.com/opd-ai/magnify/pyramid"
)

func TestMotionParameters(t *testing.T) {
	m := NewMotion(640, 480, 10, 80, 4)
	assert.InDelta(t, 800.0/3, m.Lambda0, 1e-9)
	assert.InDelta(t, 10.0/11, m.Delta, 1e-12)
	assert.InDelta(t, m.Lambda0, m.Lambda(4), 1e-12)
	assert.InDelta(t, m.Lambda0/8, m.Lambda(1), 1e-12)
}

func TestMotionFactor(t *testing.T) {
	m := NewMotion(640, 480, 10, 80, 4)

	assert.Zero(t, m.Factor(0), "finest level")
	assert.Zero(t, m.Factor(4), "coarsest level")
	assert.InDelta(t, 43.0/6, m.Factor(1), 1e-9)
	assert.Equal(t, 10.0, m.Factor(2))
	assert.Equal(t, 10.0, m.Factor(3))
}

func TestMotionFactorBelowCutoff(t *testing.T) {
	m := NewMotion(640, 480, 10, 2000, 4)
	assert.Zero(t, m.Factor(1))
}

func TestMotionFactorZeroAmplification(t *testing.T) {
	m := NewMotion(640, 480, 0, 80, 6)
	for i := 0; i <= 6; i++ {
		assert.Zero(t, m.Factor(i), "level %d", i)
	}
}

func TestMotionFactorZeroWavelength(t *testing.T) {
	m := NewMotion(64, 64, 5, 0, 3)
	assert.Equal(t, 5.0, m.Factor(1))
	assert.Zero(t, m.Factor(3))
}

func TestAttenuate(t *testing.T) {
	tests := []struct {
		name  string
		chrom float64
		want  float64
	}{
		{"remove chroma", 0, 0},
		{"keep chroma", 1, 0.2},
		{"half chroma", 0.5, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := frame.New(2, 2, 3)
			for c := range f.Planes {
				for i := range f.Planes[c] {
					f.Planes[c][i] = 0.2
				}
			}
			Attenuate(f, tt.chrom)
			for i := range f.Planes[0] {
				assert.InDelta(t, 0.2, f.Planes[0][i], 1e-12, "luma untouched")
				assert.InDelta(t, tt.want, f.Planes[1][i], 1e-12)
				assert.InDelta(t, tt.want, f.Planes[2][i], 1e-12)
			}
		})
	}
}

func TestAttenuateGray(t *testing.T) {
	f := frame.New(2, 2, 1)
	f.Planes[0][0] = 0.5
	Attenuate(f, 0)
	assert.Equal(t, 0.5, f.Planes[0][0])
}

func TestSoftThreshold(t *testing.T) {
	assert.InDelta(t, 0.3, SoftThreshold(0.5, 0.2), 1e-12)
	assert.InDelta(t, -0.3, SoftThreshold(-0.5, 0.2), 1e-12)
	assert.Zero(t, SoftThreshold(0.1, 0.2))
	assert.Zero(t, SoftThreshold(-0.2, 0.2))
}

func testWavelet(t *testing.T) *pyramid.Wavelet {
	t.Helper()
	f := frame.New(16, 16, 1)
	for i := range f.Planes[0] {
		f.Planes[0][i] = float64(i%5) * 0.1
	}
	w, err := pyramid.Decompose(f, 2)
	require.NoError(t, err)
	return w
}

func TestDenoise(t *testing.T) {
	w := testWavelet(t)
	approx := w.Approx.Clone()

	Denoise(w, 1)
	w.Each(func(level int, band pyramid.Subband, f *frame.Frame) {
		assert.Zero(t, f.MeanAbs(0), "level %d %s", level, band)
	})
	assert.Equal(t, approx.Planes, w.Approx.Planes)
}

func TestDenoiseNonPositiveThreshold(t *testing.T) {
	w := testWavelet(t)
	before := w.Detail(0, pyramid.Horizontal).Clone()
	Denoise(w, 0)
	assert.Equal(t, before.Planes, w.Detail(0, pyramid.Horizontal).Planes)
}

func TestWaveletClearsEdgeLevels(t *testing.T) {
	w := testWavelet(t)
	Wavelet(w, NewMotion(16, 16, 20, 1, 2))

	assert.Zero(t, w.Approx.MeanAbs(0))
	for _, band := range []pyramid.Subband{pyramid.Horizontal, pyramid.Vertical, pyramid.Diagonal} {
		assert.Zero(t, w.Detail(0, band).MeanAbs(0))
	}
}

func TestLaplacianZeroAmplification(t *testing.T) {
	f := frame.New(32, 32, 1)
	for i := range f.Planes[0] {
		f.Planes[0][i] = float64(i%7) * 0.1
	}
	_, lap, err := pyramid.BuildLaplacian(f, 3)
	require.NoError(t, err)

	Laplacian(lap, NewMotion(32, 32, 0, 10, 3))
	for i, lvl := range lap.Levels {
		assert.Zero(t, lvl.MeanAbs(0), "level %d", i)
	}
}

func TestGaussian(t *testing.T) {
	f := frame.New(1, 1, 3)
	f.Planes[0][0], f.Planes[1][0], f.Planes[2][0] = 0.1, 0.2, -0.1
	Gaussian(f, 50)
	assert.InDelta(t, 5, f.Planes[0][0], 1e-12)
	assert.InDelta(t, 10, f.Planes[1][0], 1e-12)
	assert.InDelta(t, -5, f.Planes[2][0], 1e-12)

	Scale(f, 0)
	assert.Zero(t, f.Planes[1][0])
}
