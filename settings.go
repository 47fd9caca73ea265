package magnify

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/samber/lo"

	"github.com/opd-ai/magnify/pyramid"
)

// Mode selects the magnification algorithm.
type Mode int

const (
	// ModeOff passes every frame through unchanged.
	ModeOff Mode = iota
	// ModeColor amplifies colour variations with a Gaussian pyramid and a
	// frequency-domain bandpass.
	ModeColor
	// ModeLaplace amplifies motion with a Laplacian pyramid and IIR filters.
	ModeLaplace
	// ModeWavelet amplifies motion with a Haar wavelet decomposition.
	ModeWavelet
)

// String returns the lower-case name used in presets and on the command line.
func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case ModeColor:
		return "color"
	case ModeLaplace:
		return "laplace"
	case ModeWavelet:
		return "wavelet"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Motion reports whether the mode uses the IIR motion filters.
func (m Mode) Motion() bool {
	return m == ModeLaplace || m == ModeWavelet
}

// DefaultFrameRate is assumed when the settings carry no usable frame rate.
const DefaultFrameRate = 30.0

// Settings are the tunable processing parameters.
//
// CutoffLow and CutoffHigh are in Hz for ModeColor and are IIR weights in
// [0, 1] for the motion modes; config.Convert maps raw control values to
// either unit.
type Settings struct {
	Amplification    float64
	CutoffLow        float64
	CutoffHigh       float64
	ChromAttenuation float64
	Levels           int
	Wavelength       float64
	Threshold        float64
	FrameRate        float64
}

// Flags select the algorithm and the colour handling.
type Flags struct {
	Grayscale bool
	Mode      Mode
}

// Snapshot is one consistent view of settings and flags. The engine reads
// exactly one snapshot per frame.
type Snapshot struct {
	Settings Settings
	Flags    Flags
}

// SettingsStore publishes snapshots to a running engine. Writers replace the
// whole snapshot, so a reader never sees fields from two different updates.
type SettingsStore struct {
	current atomic.Pointer[Snapshot]
}

// NewSettingsStore creates a store holding initial.
func NewSettingsStore(initial Snapshot) *SettingsStore {
	s := &SettingsStore{}
	s.Store(initial)
	return s
}

// Load returns the current snapshot.
func (s *SettingsStore) Load() Snapshot {
	if p := s.current.Load(); p != nil {
		return *p
	}
	return Snapshot{}
}

// Store publishes snap.
func (s *SettingsStore) Store(snap Snapshot) {
	s.current.Store(&snap)
}

// Update applies fn to a copy of the current snapshot and publishes the
// result, retrying when another writer got there first.
func (s *SettingsStore) Update(fn func(*Snapshot)) Snapshot {
	for {
		old := s.current.Load()
		next := Snapshot{}
		if old != nil {
			next = *old
		}
		fn(&next)
		if s.current.CompareAndSwap(old, &next) {
			return next
		}
	}
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Sanitize returns a copy of s that is safe to run for mode on a width x
// height frame. Nothing is rejected: negative values become 0, swapped
// cutoffs are reordered, cutoffs are limited to [0, 1] for the motion modes
// and to [0, FrameRate/2] for ModeColor, chroma attenuation is limited to
// [0, 1] and the level count to [1, pyramid.MaxLevels(width, height)].
func (s Settings) Sanitize(mode Mode, width, height int) Settings {
	out := s
	out.Amplification = math.Max(0, finite(s.Amplification))
	out.Wavelength = math.Max(0, finite(s.Wavelength))
	out.Threshold = math.Max(0, finite(s.Threshold))
	out.ChromAttenuation = lo.Clamp(finite(s.ChromAttenuation), 0, 1)

	out.FrameRate = finite(s.FrameRate)
	if out.FrameRate <= 0 {
		out.FrameRate = DefaultFrameRate
	}

	low, high := finite(s.CutoffLow), finite(s.CutoffHigh)
	if low > high {
		low, high = high, low
	}
	upper := 1.0
	if mode == ModeColor {
		upper = out.FrameRate / 2
	}
	out.CutoffLow = lo.Clamp(low, 0, upper)
	out.CutoffHigh = lo.Clamp(high, 0, upper)

	// At least one level whenever the frame allows one.
	out.Levels = pyramid.ClampLevels(max(s.Levels, 1), width, height)
	return out
}
