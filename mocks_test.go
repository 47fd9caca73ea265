package magnify

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opd-ai/magnify/frame"
)

// MockTimeProvider is a deterministic time provider for testing. Every call
// to Now advances the clock by Step.
type MockTimeProvider struct {
	currentTime time.Time
	Step        time.Duration
}

// Now returns the mock time and advances it by Step.
func (m *MockTimeProvider) Now() time.Time {
	t := m.currentTime
	m.currentTime = m.currentTime.Add(m.Step)
	return t
}

// Since returns the duration between t and the mock time.
func (m *MockTimeProvider) Since(t time.Time) time.Duration {
	return m.currentTime.Sub(t)
}

// Advance moves the mock time forward by the given duration.
func (m *MockTimeProvider) Advance(d time.Duration) {
	m.currentTime = m.currentTime.Add(d)
}

// gratingFrame returns a frame holding a vertical sine grating with a period
// of 16 pixels, shifted right by shift pixels. Values stay within [0.3, 0.7].
func gratingFrame(width, height, channels int, shift float64) *frame.Frame {
	f := frame.New(width, height, channels)
	for c := range f.Planes {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				v := 0.5 + 0.15*math.Sin(2*math.Pi*(float64(x)-shift)/16) + 0.05*float64(c-1)
				f.Planes[c][y*width+x] = v
			}
		}
	}
	return f
}

// uniformFrame returns a frame with every plane set to the given values.
func uniformFrame(width, height int, values ...float64) *frame.Frame {
	f := frame.New(width, height, len(values))
	for c, v := range values {
		for i := range f.Planes[c] {
			f.Planes[c][i] = v
		}
	}
	return f
}

type engineFixture struct {
	engine *Engine
	buffer *RingBuffer
	store  *SettingsStore
}

func newFixture(t *testing.T, capacity int, snap Snapshot, opts ...Option) *engineFixture {
	t.Helper()
	buf, err := NewRingBuffer(capacity)
	require.NoError(t, err)
	store := NewSettingsStore(snap)
	e, err := NewEngine(buf, store, opts...)
	require.NoError(t, err)
	return &engineFixture{engine: e, buffer: buf, store: store}
}

// push appends f and runs one cycle.
func (fx *engineFixture) push(t *testing.T, f *frame.Frame) *frame.Frame {
	t.Helper()
	require.NoError(t, fx.buffer.Append(f))
	out, err := fx.engine.PushFrame()
	require.NoError(t, err)
	require.NotNil(t, out)
	return out
}

func motionSnapshot(mode Mode, amplification float64) Snapshot {
	return Snapshot{
		Settings: Settings{
			Amplification:    amplification,
			CutoffLow:        0.05,
			CutoffHigh:       0.4,
			ChromAttenuation: 1,
			Levels:           4,
			Wavelength:       16,
			FrameRate:        30,
		},
		Flags: Flags{Mode: mode},
	}
}

func colorSnapshot(amplification float64) Snapshot {
	return Snapshot{
		Settings: Settings{
			Amplification:    amplification,
			CutoffLow:        0.5,
			CutoffHigh:       1.5,
			ChromAttenuation: 1,
			Levels:           2,
			FrameRate:        16,
		},
		Flags: Flags{Mode: ModeColor},
	}
}

// sinTurns returns sin(2*pi*x).
func sinTurns(x float64) float64 {
	return math.Sin(2 * math.Pi * x)
}
