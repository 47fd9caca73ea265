package magnify

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Stats contains per-engine processing statistics.
type Stats struct {
	FramesProcessed   int64         // Frames that went through a magnification strategy
	FramesPassed      int64         // Frames passed through unchanged (mode off, short history, warm-up)
	FramesDropped     uint64        // Output frames refused by a full magnified buffer
	Resets            int64         // State resets caused by shape, level or window changes
	AvgFrameTime      time.Duration // Exponential moving average of PushFrame time
	PeakFrameTime     time.Duration // Maximum observed PushFrame time
	LastMovement      float64       // Mean absolute luma residual of the latest frame
	Phase             Phase         // Phase of the active strategy
	Mode              Mode          // Mode used for the latest frame
	LastFrameDuration time.Duration // Duration of the latest PushFrame
}

// statsTracker accumulates the counters behind Stats. Counters are atomic so
// Stats can be read while a frame is running.
type statsTracker struct {
	processed atomic.Int64
	passed    atomic.Int64
	resets    atomic.Int64

	mu       sync.RWMutex
	avg      time.Duration
	peak     time.Duration
	last     time.Duration
	movement float64
	mode     Mode
}

// record updates the timing metrics with one frame.
func (s *statsTracker) record(d time.Duration, mode Mode, movement float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// EMA with alpha = 0.1 for smooth averaging
	if s.avg == 0 {
		s.avg = d
	} else {
		s.avg = time.Duration(float64(s.avg)*0.9 + float64(d)*0.1)
	}
	if d > s.peak {
		s.peak = d
	}
	s.last = d
	s.movement = movement
	s.mode = mode
}

func (s *statsTracker) lastMovement() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.movement
}

func (s *statsTracker) snapshot() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		FramesProcessed:   s.processed.Load(),
		FramesPassed:      s.passed.Load(),
		Resets:            s.resets.Load(),
		AvgFrameTime:      s.avg,
		PeakFrameTime:     s.peak,
		LastFrameDuration: s.last,
		LastMovement:      s.movement,
		Mode:              s.mode,
	}
}

func (s *statsTracker) reset(session string) {
	logrus.WithFields(logrus.Fields{
		"function": "Engine.ResetStats",
		"session":  session,
	}).Info("Resetting engine statistics")

	s.processed.Store(0)
	s.passed.Store(0)
	s.resets.Store(0)

	s.mu.Lock()
	s.avg = 0
	s.peak = 0
	s.last = 0
	s.movement = 0
	s.mu.Unlock()
}
