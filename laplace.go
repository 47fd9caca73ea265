package magnify

import (
	"fmt"

	"github.com/opd-ai/magnify/amplify"
	"github.com/opd-ai/magnify/frame"
	"github.com/opd-ai/magnify/pyramid"
	"github.com/opd-ai/magnify/temporal"
)

// laplaceMagnifier amplifies motion band by band on a Laplacian pyramid. Each
// pyramid level has its own slot in the IIR bank.
type laplaceMagnifier struct {
	phase Phase
	bank  *temporal.Bank

	gauss    *pyramid.Gaussian
	lap      *pyramid.Laplacian
	filtered *pyramid.Laplacian
	residual *frame.Frame
}

func newLaplaceMagnifier() *laplaceMagnifier {
	return &laplaceMagnifier{bank: temporal.NewBank(0, 0)}
}

func (m *laplaceMagnifier) Mode() Mode   { return ModeLaplace }
func (m *laplaceMagnifier) Phase() Phase { return m.phase }

func (m *laplaceMagnifier) Reset() {
	m.phase = PhaseUninitialized
	m.bank.Reset()
	m.filtered = nil
}

func (m *laplaceMagnifier) Magnify(c *cycle) (*frame.Frame, error) {
	s := c.settings
	tune(m.bank, s, ModeLaplace)

	var err error
	m.gauss, m.lap, err = pyramid.BuildLaplacianInto(m.gauss, m.lap, c.input, s.Levels)
	if err != nil {
		return nil, fmt.Errorf("build laplacian: %w", err)
	}
	if !m.lap.SameShape(m.filtered) {
		m.filtered = pyramid.NewLaplacianLike(m.lap)
	}

	primed := m.bank.Primed(0)
	for i, lvl := range m.lap.Levels {
		if m.filtered.Levels[i], err = m.bank.Update(i, lvl, m.filtered.Levels[i]); err != nil {
			return nil, fmt.Errorf("filter level %d: %w", i, err)
		}
	}

	if !primed {
		// The first sample only primes the filters.
		m.phase = PhaseWarmingUp
		return nil, nil
	}

	amplify.Laplacian(m.filtered, amplify.NewMotion(c.input.Width, c.input.Height,
		s.Amplification, s.Wavelength, s.Levels))

	m.residual, err = pyramid.CollapseInto(m.residual, m.filtered)
	if err != nil {
		return nil, fmt.Errorf("collapse: %w", err)
	}
	amplify.Attenuate(m.residual, s.ChromAttenuation)
	m.phase = PhaseSteady
	return m.residual, nil
}
