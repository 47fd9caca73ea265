package magnify

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/magnify/frame"
	"github.com/opd-ai/magnify/limits"
)

// Engine runs one magnification session over a processing buffer.
//
// PushFrame must be called once for every frame appended to the buffer, from
// a single goroutine. The Magnified Buffer accessors (PopOldest, PopNewest,
// PeekAt, Size) may be called from one other goroutine at the same time;
// they never wait for a running frame.
type Engine struct {
	mu sync.Mutex

	id       string
	buffer   ProcessingBuffer
	store    *SettingsStore
	output   *MagnifiedBuffer
	strategy magnifier
	key      sessionKey

	phase atomic.Int32
	stats statsTracker

	working *frame.Frame
	tp      TimeProvider
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeProvider sets the clock used for frame timing statistics.
func WithTimeProvider(tp TimeProvider) Option {
	return func(e *Engine) {
		e.tp = tp
	}
}

// WithOutputCapacity overrides the magnified buffer capacity, which defaults
// to the processing buffer capacity.
func WithOutputCapacity(n int) Option {
	return func(e *Engine) {
		e.output = NewMagnifiedBuffer(n)
	}
}

// NewEngine creates an engine reading frames from buf and settings from
// store.
func NewEngine(buf ProcessingBuffer, store *SettingsStore, opts ...Option) (*Engine, error) {
	if buf == nil {
		return nil, ErrNilBuffer
	}
	if store == nil {
		return nil, ErrNilStore
	}

	e := &Engine{
		id:     uuid.New().String(),
		buffer: buf,
		store:  store,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.output == nil {
		e.output = NewMagnifiedBuffer(buf.Cap())
	}

	logrus.WithFields(logrus.Fields{
		"function":        "NewEngine",
		"session":         e.id,
		"buffer_capacity": buf.Cap(),
		"output_capacity": e.output.Cap(),
		"mode":            store.Load().Flags.Mode.String(),
	}).Info("Magnification engine created")

	return e, nil
}

// ID returns the session identifier used in log entries.
func (e *Engine) ID() string {
	return e.id
}

// SetTimeProvider sets the clock used for frame timing statistics.
// Passing nil restores the system clock.
func (e *Engine) SetTimeProvider(tp TimeProvider) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tp = tp
}

func (e *Engine) getTimeProvider() TimeProvider {
	if e.tp != nil {
		return e.tp
	}
	return DefaultTimeProvider{}
}

// PushFrame runs one cycle on the newest frame of the processing buffer and
// appends the result to the magnified buffer. The result is also returned.
// When the magnified buffer is full the frame is returned but not stored,
// and counted in Stats().FramesDropped.
func (e *Engine) PushFrame() (out *frame.Frame, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := e.getTimeProvider().Now()
	defer func() {
		if r := recover(); r != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Engine.PushFrame",
				"session":  e.id,
				"panic":    r,
			}).Error("Recovered from engine fault, resetting state")
			e.resetLocked()
			out, err = nil, fmt.Errorf("%w: %v", ErrEngineFault, r)
		}
	}()

	n := e.buffer.Len()
	if n == 0 {
		return nil, ErrEmptyBuffer
	}
	raw := e.buffer.At(n - 1)
	if err := raw.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFrame, err)
	}
	if err := limits.ValidateFrameSize(raw.Width, raw.Height); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFrame, err)
	}

	snap := e.store.Load()
	mode := snap.Flags.Mode

	var movement float64
	switch {
	case mode != ModeColor && !mode.Motion():
		// Off, or a mode this engine does not know.
		e.dropStrategy(mode)
		out, err = e.passthrough(raw, snap.Flags.Grayscale)
		if err != nil {
			return nil, err
		}
		e.stats.passed.Add(1)
	case n < limits.MinProcessingBuffer:
		out, err = e.passthrough(raw, snap.Flags.Grayscale)
		if err != nil {
			return nil, err
		}
		e.stats.passed.Add(1)
	default:
		out, movement, err = e.magnify(raw, snap)
		if err != nil {
			e.resetLocked()
			return nil, err
		}
	}

	e.output.Push(out)
	elapsed := e.getTimeProvider().Since(start)
	e.stats.record(elapsed, mode, movement)

	logrus.WithFields(logrus.Fields{
		"function": "Engine.PushFrame",
		"session":  e.id,
		"mode":     mode.String(),
		"phase":    e.Phase().String(),
		"movement": movement,
		"duration": elapsed,
	}).Debug("Frame processed")

	return out, nil
}

func (e *Engine) newMagnifierNeeded(mode Mode) bool {
	return e.strategy == nil || e.strategy.Mode() != mode
}

// dropStrategy discards the active strategy so that leaving mode later
// starts a fresh session.
func (e *Engine) dropStrategy(mode Mode) {
	if e.strategy == nil {
		return
	}
	logrus.WithFields(logrus.Fields{
		"function": "Engine.dropStrategy",
		"session":  e.id,
		"from":     e.strategy.Mode().String(),
		"to":       mode.String(),
	}).Info("Switching magnification mode")
	e.strategy = nil
	e.key = sessionKey{}
	e.phase.Store(int32(PhaseUninitialized))
}

// passthrough returns the raw frame unchanged, reduced to luma when the
// grayscale flag is set.
func (e *Engine) passthrough(raw *frame.Frame, grayscale bool) (*frame.Frame, error) {
	if grayscale && raw.Channels() == 3 {
		return frame.Luma(nil, raw)
	}
	return raw.Clone(), nil
}

// prepare converts a raw frame to the working colourspace.
func prepare(grayscale bool) func(dst, src *frame.Frame) (*frame.Frame, error) {
	return func(dst, src *frame.Frame) (*frame.Frame, error) {
		switch {
		case src.Channels() == 1:
			return src.CopyInto(dst), nil
		case grayscale:
			return frame.Luma(dst, src)
		default:
			return frame.ToYCbCr(dst, src)
		}
	}
}

func (e *Engine) magnify(raw *frame.Frame, snap Snapshot) (*frame.Frame, float64, error) {
	mode := snap.Flags.Mode
	if e.newMagnifierNeeded(mode) {
		previous := "none"
		if e.strategy != nil {
			previous = e.strategy.Mode().String()
		}
		e.strategy = newMagnifier(mode)
		e.key = sessionKey{}
		logrus.WithFields(logrus.Fields{
			"function": "Engine.magnify",
			"session":  e.id,
			"from":     previous,
			"to":       mode.String(),
		}).Info("Switching magnification mode")
	}

	conv := prepare(snap.Flags.Grayscale)
	working, err := conv(e.working, raw)
	if err != nil {
		return nil, 0, fmt.Errorf("convert input: %w", err)
	}
	e.working = working

	settings := snap.Settings.Sanitize(mode, working.Width, working.Height)
	if settings != snap.Settings {
		logrus.WithFields(logrus.Fields{
			"function": "Engine.magnify",
			"session":  e.id,
			"levels":   settings.Levels,
			"low":      settings.CutoffLow,
			"high":     settings.CutoffHigh,
		}).Trace("Settings clamped")
	}

	key := sessionKey{
		width:    working.Width,
		height:   working.Height,
		channels: working.Channels(),
		levels:   settings.Levels,
		window:   e.buffer.Cap(),
	}
	if key != e.key {
		if e.key != (sessionKey{}) {
			e.stats.resets.Add(1)
			logrus.WithFields(logrus.Fields{
				"function":  "Engine.magnify",
				"session":   e.id,
				"width":     key.width,
				"height":    key.height,
				"channels":  key.channels,
				"levels":    key.levels,
				"old_width": e.key.width,
				"old_level": e.key.levels,
			}).Info("Session shape changed, resetting state")
		}
		e.strategy.Reset()
		e.key = key
	}

	residual, err := e.strategy.Magnify(&cycle{
		input:    working,
		settings: settings,
		history:  e.buffer,
		prepare:  conv,
	})
	e.phase.Store(int32(e.strategy.Phase()))
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", mode, err)
	}

	if residual == nil {
		e.stats.passed.Add(1)
		out, err := e.passthrough(raw, snap.Flags.Grayscale)
		return out, 0, err
	}

	out, err := frame.Add(nil, working, residual)
	if err != nil {
		return nil, 0, fmt.Errorf("add residual: %w", err)
	}
	if out.Channels() == 3 {
		if _, err := frame.ToRGB(out, out); err != nil {
			return nil, 0, fmt.Errorf("convert output: %w", err)
		}
	}
	out.Clip(0, 1)
	e.stats.processed.Add(1)
	return out, residual.MeanAbs(0), nil
}

// Phase returns the phase of the active strategy.
func (e *Engine) Phase() Phase {
	return Phase(e.phase.Load())
}

// LastMovement returns the mean absolute luma residual of the latest
// magnified frame, or 0 for a passed-through frame.
func (e *Engine) LastMovement() float64 {
	return e.stats.lastMovement()
}

// Stats returns the current statistics.
func (e *Engine) Stats() Stats {
	s := e.stats.snapshot()
	s.FramesDropped = e.output.Dropped()
	s.Phase = e.Phase()
	return s
}

// ResetStats zeroes every statistic except the drop counter.
func (e *Engine) ResetStats() {
	e.stats.reset(e.id)
}

// PopOldest removes and returns the oldest magnified frame.
func (e *Engine) PopOldest() (*frame.Frame, bool) {
	return e.output.PopOldest()
}

// PopNewest removes and returns the newest magnified frame.
func (e *Engine) PopNewest() (*frame.Frame, bool) {
	return e.output.PopNewest()
}

// PeekAt returns the i-th oldest magnified frame without removing it.
func (e *Engine) PeekAt(i int) (*frame.Frame, bool) {
	return e.output.PeekAt(i)
}

// Size returns the number of magnified frames waiting.
func (e *Engine) Size() int {
	return e.output.Size()
}

// Clear empties the magnified buffer and discards all pyramid and filter
// state.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "Engine.Clear",
		"session":  e.id,
		"pending":  e.output.Size(),
	}).Info("Clearing engine state")

	e.output.Clear()
	e.resetLocked()
}

func (e *Engine) resetLocked() {
	if e.strategy != nil {
		e.strategy.Reset()
	}
	e.key = sessionKey{}
	e.phase.Store(int32(PhaseUninitialized))
}
