package magnify

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/magnify/frame"
	"github.com/opd-ai/magnify/temporal"
)

// Phase is the lifecycle state of a magnification strategy.
type Phase int32

const (
	// PhaseUninitialized means no state exists; the next frame starts a session.
	PhaseUninitialized Phase = iota
	// PhaseWarmingUp means the temporal filter has not seen enough frames and
	// output frames are the unmodified input.
	PhaseWarmingUp
	// PhaseSteady means output frames carry the amplified residual.
	PhaseSteady
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseWarmingUp:
		return "warming_up"
	case PhaseSteady:
		return "steady"
	default:
		return fmt.Sprintf("phase(%d)", int32(p))
	}
}

// cycle is everything a strategy needs for one frame.
type cycle struct {
	// input is the newest frame in the working colourspace: one luma plane
	// or three YCbCr planes.
	input *frame.Frame

	settings Settings

	// history is the processing buffer; its newest entry is the raw frame
	// input was derived from.
	history ProcessingBuffer

	// prepare converts a raw history frame into the working colourspace.
	prepare func(dst, src *frame.Frame) (*frame.Frame, error)
}

// magnifier is one magnification algorithm with its persistent state.
//
// Magnify returns the residual to add to c.input, already amplified and
// chroma-attenuated, or nil when the frame should pass through unchanged.
// Returned frames stay owned by the strategy and are only valid until the
// next call.
type magnifier interface {
	Mode() Mode
	Magnify(c *cycle) (*frame.Frame, error)
	Phase() Phase
	Reset()
}

// newMagnifier returns the strategy for mode, or nil for ModeOff.
func newMagnifier(mode Mode) magnifier {
	switch mode {
	case ModeColor:
		return newColorMagnifier()
	case ModeLaplace:
		return newLaplaceMagnifier()
	case ModeWavelet:
		return newWaveletMagnifier()
	default:
		return nil
	}
}

// sessionKey identifies the shape of the state a strategy holds. Any change
// forces a reset.
type sessionKey struct {
	width    int
	height   int
	channels int
	levels   int
	window   int
}

// tune applies the motion cutoffs of s to bank. Filter state is kept, so a
// cutoff change takes effect on the next update.
func tune(bank *temporal.Bank, s Settings, mode Mode) {
	low, high := bank.Cutoffs()
	bank.SetCutoffs(s.CutoffLow, s.CutoffHigh)
	if newLow, newHigh := bank.Cutoffs(); newLow != low || newHigh != high {
		logrus.WithFields(logrus.Fields{
			"function": "tune",
			"mode":     mode.String(),
			"low":      newLow,
			"high":     newHigh,
		}).Debug("Filter cutoffs changed")
	}
}
