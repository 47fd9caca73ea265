package magnify

import (
	"fmt"

	"github.com/opd-ai/magnify/amplify"
	"github.com/opd-ai/magnify/frame"
	"github.com/opd-ai/magnify/pyramid"
	"github.com/opd-ai/magnify/temporal"
)

// waveletMagnifier amplifies motion on the detail bands of a Haar
// decomposition. Bank slot level*3+band belongs to one detail band. The
// approximation is never amplified and so is not filtered.
type waveletMagnifier struct {
	phase Phase
	bank  *temporal.Bank

	coeffs   *pyramid.Wavelet
	filtered *pyramid.Wavelet
	residual *frame.Frame
}

func newWaveletMagnifier() *waveletMagnifier {
	return &waveletMagnifier{bank: temporal.NewBank(0, 0)}
}

func (m *waveletMagnifier) Mode() Mode   { return ModeWavelet }
func (m *waveletMagnifier) Phase() Phase { return m.phase }

func (m *waveletMagnifier) Reset() {
	m.phase = PhaseUninitialized
	m.bank.Reset()
	m.filtered = nil
}

func (m *waveletMagnifier) Magnify(c *cycle) (*frame.Frame, error) {
	s := c.settings
	tune(m.bank, s, ModeWavelet)

	var err error
	m.coeffs, err = pyramid.DecomposeInto(m.coeffs, c.input, s.Levels)
	if err != nil {
		return nil, fmt.Errorf("decompose: %w", err)
	}
	if !m.coeffs.SameShape(m.filtered) {
		m.filtered = pyramid.NewWaveletLike(m.coeffs)
	}

	for l := 0; l < m.coeffs.Levels(); l++ {
		for _, band := range []pyramid.Subband{pyramid.Horizontal, pyramid.Vertical, pyramid.Diagonal} {
			slot := l*pyramid.SubbandsPerLevel + int(band)
			if _, err := m.bank.Update(slot, m.coeffs.Detail(l, band), m.filtered.Detail(l, band)); err != nil {
				return nil, fmt.Errorf("filter level %d %s: %w", l, band, err)
			}
		}
	}

	if m.phase == PhaseUninitialized {
		m.phase = PhaseWarmingUp
		return nil, nil
	}

	amplify.Wavelet(m.filtered, amplify.NewMotion(c.input.Width, c.input.Height,
		s.Amplification, s.Wavelength, s.Levels))
	amplify.Denoise(m.filtered, s.Threshold)

	m.residual, err = pyramid.ReconstructInto(m.residual, m.filtered)
	if err != nil {
		return nil, fmt.Errorf("reconstruct: %w", err)
	}
	amplify.Attenuate(m.residual, s.ChromAttenuation)
	m.phase = PhaseSteady
	return m.residual, nil
}
