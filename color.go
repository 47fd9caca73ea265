package magnify

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/magnify/amplify"
	"github.com/opd-ai/magnify/frame"
	"github.com/opd-ai/magnify/limits"
	"github.com/opd-ai/magnify/pyramid"
	"github.com/opd-ai/magnify/temporal"
)

// colorMagnifier amplifies colour variations on the top of a Gaussian
// pyramid. Each frame's downsampled top becomes one row of the temporal
// sample matrix, whose height is the processing buffer capacity.
//
// Until the matrix is full the output is the unmodified input. On a fresh
// session the matrix is seeded from the frames already held by the
// processing buffer, so warm-up only lasts as long as the history is short.
type colorMagnifier struct {
	phase  Phase
	ideal  *temporal.Ideal
	scaler *frame.Scaler

	gauss    *pyramid.Gaussian
	scratch  *frame.Frame
	row      []float64
	filtered []float64
	small    *frame.Frame
	expanded []*frame.Frame
	residual *frame.Frame
}

func newColorMagnifier() *colorMagnifier {
	return &colorMagnifier{scaler: frame.NewScaler()}
}

func (m *colorMagnifier) Mode() Mode   { return ModeColor }
func (m *colorMagnifier) Phase() Phase { return m.phase }

// Reset empties the sample matrix but keeps its row buffers for the next
// session.
func (m *colorMagnifier) Reset() {
	m.phase = PhaseUninitialized
	if m.ideal != nil {
		m.ideal.Reset()
	}
}

func (m *colorMagnifier) Magnify(c *cycle) (*frame.Frame, error) {
	s := c.settings
	if m.phase == PhaseUninitialized {
		if err := m.start(c); err != nil {
			return nil, err
		}
	}

	if err := m.push(c.input, s.Levels); err != nil {
		return nil, err
	}
	if !m.ideal.Full() {
		m.phase = PhaseWarmingUp
		return nil, nil
	}

	var err error
	m.filtered, err = m.ideal.Filter(s.CutoffLow, s.CutoffHigh, s.FrameRate, m.filtered)
	if err != nil {
		return nil, fmt.Errorf("temporal filter: %w", err)
	}
	top := m.gauss.Top()
	m.small = frame.EnsureLike(m.small, top)
	if err := m.small.Unflatten(m.filtered); err != nil {
		return nil, fmt.Errorf("unflatten: %w", err)
	}

	amplify.Gaussian(m.small, s.Amplification)
	amplify.Attenuate(m.small, s.ChromAttenuation)

	up, err := m.expand(m.small, s.Levels)
	if err != nil {
		return nil, err
	}
	m.residual, err = m.scaler.Scale(m.residual, up, c.input.Width, c.input.Height)
	if err != nil {
		return nil, fmt.Errorf("resize residual: %w", err)
	}
	m.phase = PhaseSteady
	return m.residual, nil
}

// start creates the sample matrix and seeds it with the buffered history
// that matches the current frame's shape.
func (m *colorMagnifier) start(c *cycle) error {
	height := limits.ClampTemporalWindow(c.history.Cap())
	if m.ideal == nil || m.ideal.Height() != height {
		ideal, err := temporal.NewIdeal(height)
		if err != nil {
			return fmt.Errorf("create temporal filter: %w", err)
		}
		m.ideal = ideal
	}
	m.ideal.Reset()

	var err error
	n := c.history.Len()
	seeded := 0
	for i := max(0, n-height); i < n-1; i++ {
		raw := c.history.At(i)
		if raw == nil || raw.Width != c.input.Width || raw.Height != c.input.Height {
			continue
		}
		m.scratch, err = c.prepare(m.scratch, raw)
		if err != nil || !m.scratch.SameShape(c.input) {
			continue
		}
		if err := m.push(m.scratch, c.settings.Levels); err != nil {
			return err
		}
		seeded++
	}

	logrus.WithFields(logrus.Fields{
		"function": "colorMagnifier.start",
		"window":   height,
		"seeded":   seeded,
		"levels":   c.settings.Levels,
	}).Debug("Started colour session")
	return nil
}

func (m *colorMagnifier) push(f *frame.Frame, levels int) error {
	var err error
	m.gauss, err = pyramid.BuildGaussianInto(m.gauss, f, levels)
	if err != nil {
		return fmt.Errorf("build gaussian: %w", err)
	}
	m.row = m.gauss.Top().Flatten(m.row)
	if err := m.ideal.Push(m.row); err != nil {
		return fmt.Errorf("push sample: %w", err)
	}
	return nil
}

// expand doubles the filtered top back up once per pyramid level.
func (m *colorMagnifier) expand(top *frame.Frame, levels int) (*frame.Frame, error) {
	var (
		out *frame.Frame
		err error
	)
	out, m.expanded, err = pyramid.ExpandFrom(m.expanded, top, levels)
	if err != nil {
		return nil, fmt.Errorf("expand residual: %w", err)
	}
	return out, nil
}
