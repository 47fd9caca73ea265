// Package amplify scales temporally filtered bands before they are folded
// back into a frame.
//
// Motion paths use a level-dependent factor derived from a representative
// spatial wavelength, so that only the spatial scales that can carry a
// physically plausible motion are magnified. The colour path scales
// uniformly. Both paths can attenuate chroma, and the wavelet path can
// soft-threshold its detail bands.
package amplify

import (
	"math"

	"github.com/opd-ai/magnify/frame"
	"github.com/opd-ai/magnify/pyramid"
)

// Exaggeration multiplies the wavelength-derived gain of a level.
const Exaggeration = 2.0

// Motion holds the per-frame parameters of the wavelength-limited gain.
type Motion struct {
	Amplification float64
	Levels        int

	// Lambda0 is the representative wavelength of the coarsest level: a
	// third of the frame diagonal.
	Lambda0 float64

	// Delta is the spatial wavelength cutoff, Wavelength/(8*(1+Amplification)).
	Delta float64
}

// NewMotion computes the gain parameters for a width x height frame
// decomposed into levels levels.
func NewMotion(width, height int, amplification, wavelength float64, levels int) Motion {
	w, h := float64(width), float64(height)
	return Motion{
		Amplification: amplification,
		Levels:        levels,
		Lambda0:       math.Sqrt(w*w+h*h) / 3,
		Delta:         wavelength / (8 * (1 + amplification)),
	}
}

// Lambda returns the representative wavelength of level i, halved once per
// level below the coarsest.
func (m Motion) Lambda(i int) float64 {
	return m.Lambda0 / math.Exp2(float64(m.Levels-i))
}

// Factor returns the gain of level i in [0, Levels]. The finest and coarsest
// levels always get 0, as does any level whose wavelength falls below the
// cutoff. Other levels get min(Amplification, alpha) where alpha grows with
// the level's wavelength.
func (m Motion) Factor(i int) float64 {
	if i <= 0 || i >= m.Levels || m.Amplification <= 0 {
		return 0
	}
	var alpha float64
	if m.Delta > 0 {
		alpha = (m.Lambda(i)/(8*m.Delta) - 1) * Exaggeration
	} else {
		alpha = math.Inf(1)
	}
	f := math.Min(m.Amplification, alpha)
	if !(f > 0) {
		return 0
	}
	return f
}

// Scale multiplies every sample of f by factor.
func Scale(f *frame.Frame, factor float64) {
	f.Scale(factor)
}

// Gaussian applies the uniform gain of the colour path.
func Gaussian(f *frame.Frame, amplification float64) {
	Scale(f, amplification)
}

// Laplacian scales every level of a filtered Laplacian pyramid by its motion
// factor.
func Laplacian(lap *pyramid.Laplacian, m Motion) {
	for i, lvl := range lap.Levels {
		Scale(lvl, m.Factor(i))
	}
}

// Wavelet scales every detail band of a filtered decomposition by the motion
// factor of its level. The approximation is treated as the coarsest level
// and cleared.
func Wavelet(w *pyramid.Wavelet, m Motion) {
	w.Each(func(level int, _ pyramid.Subband, f *frame.Frame) {
		Scale(f, m.Factor(level))
	})
	Scale(w.Approx, m.Factor(m.Levels))
}

// Attenuate multiplies the two chroma planes of a YCbCr frame by chrom,
// leaving luma untouched. Single-plane frames are left as they are.
func Attenuate(f *frame.Frame, chrom float64) {
	if f.Channels() < 3 || chrom == 1 {
		return
	}
	f.ScalePlane(1, chrom)
	f.ScalePlane(2, chrom)
}

// SoftThreshold shrinks v toward zero by t, returning 0 when |v| <= t.
func SoftThreshold(v, t float64) float64 {
	switch {
	case v > t:
		return v - t
	case v < -t:
		return v + t
	default:
		return 0
	}
}

// Denoise soft-thresholds every detail coefficient of w. The approximation
// passes through unchanged. A non-positive threshold is a no-op.
func Denoise(w *pyramid.Wavelet, threshold float64) {
	if !(threshold > 0) {
		return
	}
	w.Each(func(_ int, _ pyramid.Subband, f *frame.Frame) {
		for _, p := range f.Planes {
			for i, v := range p {
				p[i] = SoftThreshold(v, threshold)
			}
		}
	})
}
