package frame

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestFrame builds a frame with a deterministic gradient pattern.
func createTestFrame(width, height, channels int) *Frame {
	f := New(width, height, channels)
	for c := range f.Planes {
		for i := range f.Planes[c] {
			f.Planes[c][i] = float64((i*7+c*31)%256) / 255
		}
	}
	return f
}

func TestNew(t *testing.T) {
	f := New(8, 4, 3)
	assert.Equal(t, 8, f.Width)
	assert.Equal(t, 4, f.Height)
	assert.Equal(t, 3, f.Channels())
	assert.Equal(t, 32, f.Pixels())
	for _, p := range f.Planes {
		assert.Len(t, p, 32)
	}
	require.NoError(t, f.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		frame   *Frame
		wantErr error
	}{
		{"nil frame", nil, ErrNilFrame},
		{"zero width", &Frame{Width: 0, Height: 2, Planes: [][]float64{{}}}, ErrInvalidDimensions},
		{"two channels", New(2, 2, 2), ErrInvalidChannels},
		{"short plane", &Frame{Width: 2, Height: 2, Planes: [][]float64{{1, 2, 3}}}, ErrPlaneSize},
		{"valid gray", New(2, 2, 1), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.frame.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEnsureReusesMatchingShape(t *testing.T) {
	f := New(4, 4, 1)
	assert.Same(t, f, Ensure(f, 4, 4, 1))
	assert.NotSame(t, f, Ensure(f, 4, 2, 1))
	assert.NotSame(t, f, Ensure(f, 4, 4, 3))
	assert.NotNil(t, Ensure(nil, 1, 1, 1))
}

func TestCloneIsDeep(t *testing.T) {
	f := createTestFrame(4, 3, 3)
	c := f.Clone()
	c.Planes[1][0] = 42
	assert.NotEqual(t, f.Planes[1][0], c.Planes[1][0])
	assert.Nil(t, (*Frame)(nil).Clone())
}

func TestAddSub(t *testing.T) {
	a := createTestFrame(5, 5, 3)
	b := createTestFrame(5, 5, 3)
	b.Scale(0.5)

	sum, err := Add(nil, a, b)
	require.NoError(t, err)
	diff, err := Sub(nil, sum, b)
	require.NoError(t, err)
	assert.InDelta(t, 0, MaxAbsDiff(a, diff), 1e-12)

	_, err = Add(nil, a, New(4, 5, 3))
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestAddInPlace(t *testing.T) {
	a := createTestFrame(3, 3, 1)
	orig := a.Clone()
	out, err := Add(a, a, a)
	require.NoError(t, err)
	assert.Same(t, a, out)
	for i := range a.Planes[0] {
		assert.InDelta(t, 2*orig.Planes[0][i], a.Planes[0][i], 1e-12)
	}
}

func TestClip(t *testing.T) {
	f := &Frame{Width: 3, Height: 1, Planes: [][]float64{{-0.5, 0.25, 1.5}}}
	f.Clip(0, 1)
	assert.Equal(t, []float64{0, 0.25, 1}, f.Planes[0])
}

func TestFlattenUnflatten(t *testing.T) {
	f := createTestFrame(3, 2, 3)
	flat := f.Flatten(nil)
	assert.Len(t, flat, 18)

	g := New(3, 2, 3)
	require.NoError(t, g.Unflatten(flat))
	assert.Equal(t, f.Planes, g.Planes)

	assert.ErrorIs(t, g.Unflatten(flat[:5]), ErrPlaneSize)
}

func TestMeanAbs(t *testing.T) {
	f := &Frame{Width: 2, Height: 2, Planes: [][]float64{{-1, 1, -1, 1}}}
	assert.InDelta(t, 1.0, f.MeanAbs(0), 1e-12)
}

func TestColorRoundTrip(t *testing.T) {
	f := createTestFrame(16, 9, 3)

	ycc, err := ToYCbCr(nil, f)
	require.NoError(t, err)
	back, err := ToRGB(nil, ycc)
	require.NoError(t, err)

	assert.InDelta(t, 0, MaxAbsDiff(f, back), 1e-9)
}

func TestColorRoundTripInPlace(t *testing.T) {
	f := createTestFrame(7, 5, 3)
	orig := f.Clone()

	_, err := ToYCbCr(f, f)
	require.NoError(t, err)
	_, err = ToRGB(f, f)
	require.NoError(t, err)

	assert.InDelta(t, 0, MaxAbsDiff(orig, f), 1e-9)
}

func TestYCbCrGrayHasNoChroma(t *testing.T) {
	f := New(2, 2, 3)
	for c := range f.Planes {
		for i := range f.Planes[c] {
			f.Planes[c][i] = 0.6
		}
	}
	ycc, err := ToYCbCr(nil, f)
	require.NoError(t, err)
	for i := range ycc.Planes[0] {
		assert.InDelta(t, 0.6, ycc.Planes[0][i], 1e-12)
		assert.InDelta(t, 0, ycc.Planes[1][i], 1e-12)
		assert.InDelta(t, 0, ycc.Planes[2][i], 1e-12)
	}
}

func TestLuma(t *testing.T) {
	f := New(1, 1, 3)
	f.Planes[0][0], f.Planes[1][0], f.Planes[2][0] = 1, 0, 0
	l, err := Luma(nil, f)
	require.NoError(t, err)
	assert.Equal(t, 1, l.Channels())
	assert.InDelta(t, 0.299, l.Planes[0][0], 1e-12)
}

func TestScaler(t *testing.T) {
	scaler := NewScaler()
	src := createTestFrame(32, 24, 3)

	up, err := scaler.Scale(nil, src, 64, 48)
	require.NoError(t, err)
	assert.Equal(t, 64, up.Width)
	assert.Equal(t, 48, up.Height)
	assert.Equal(t, 3, up.Channels())

	same, err := scaler.Scale(nil, src, 32, 24)
	require.NoError(t, err)
	assert.Equal(t, src.Planes, same.Planes)
	assert.NotSame(t, src, same)

	_, err = scaler.Scale(nil, src, 0, 10)
	assert.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = scaler.Scale(nil, nil, 4, 4)
	assert.ErrorIs(t, err, ErrNilFrame)
}

func TestScalerConstantFrame(t *testing.T) {
	src := New(5, 3, 1)
	for i := range src.Planes[0] {
		src.Planes[0][i] = 0.4
	}
	out, err := NewScaler().Scale(nil, src, 11, 7)
	require.NoError(t, err)
	for _, v := range out.Planes[0] {
		assert.InDelta(t, 0.4, v, 1e-12)
	}
}

func TestIsScalingRequired(t *testing.T) {
	s := NewScaler()
	assert.False(t, s.IsScalingRequired(4, 4, 4, 4))
	assert.True(t, s.IsScalingRequired(4, 4, 4, 5))
}

func TestImageConversion(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 40), G: uint8(y * 90), B: 10, A: 255})
		}
	}
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	img.SetRGBA(2, 1, color.RGBA{G: 128, B: 64, A: 255})

	f := FromImage(img, false)
	require.NoError(t, f.Validate())
	assert.Equal(t, 3, f.Channels())
	assert.InDelta(t, 1.0, f.Planes[0][0], 1e-9)

	out := f.ToImage()
	rgba, ok := out.(*image.RGBA)
	require.True(t, ok)
	assert.Equal(t, img.Pix, rgba.Pix)

	gray := FromImage(img, true)
	assert.Equal(t, 1, gray.Channels())
	assert.InDelta(t, 0.299, gray.Planes[0][0], 1e-3)
	_, ok = gray.ToImage().(*image.Gray)
	assert.True(t, ok)
}

func TestGrayImageConversion(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 16)
	}
	f := FromImage(img, false)
	assert.Equal(t, 1, f.Channels())
	back := f.ToImage().(*image.Gray)
	assert.Equal(t, img.Pix, back.Pix)
}

func TestTo8(t *testing.T) {
	assert.Equal(t, uint8(0), to8(-1))
	assert.Equal(t, uint8(255), to8(2))
	assert.Equal(t, uint8(128), to8(128.0/255))
	assert.Equal(t, uint8(0), to8(math.Inf(-1)))
}
