// Package playback paces frame display against wall-clock time. The first
// displayed frame anchors an absolute schedule; every later frame waits
// until its anchor-derived deadline, so per-frame overhead never
// accumulates into drift. Late frames display immediately and are never
// dropped.
package playback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Surface is the display capability the scheduler drives. Implementations
// bind a real terminal or a test recorder.
type Surface interface {
	Clear()
	Print(text string)
	Resize(width, height int)
}

// FrameReader yields complete frames in display order and io.EOF at the end
// of the stream. *stream.Decoder satisfies it.
type FrameReader interface {
	NextFrame() ([]string, error)
}

// State is the scheduler lifecycle state.
type State int

// Scheduler states. Idle becomes Playing when the first frame is displayed
// and its display time is captured as the anchor.
const (
	StateIdle State = iota
	StatePlaying
	StateDone
)

// Viewport pixel footprint of one character cell, used to size the display
// surface from the stream's character dimensions.
const (
	cellWidthPx  = 10
	cellHeightPx = 30
)

// Scheduler displays frames from a FrameReader on a Surface with
// anchor-based absolute timing.
type Scheduler struct {
	surface Surface
	clock   Clock
	log     *slog.Logger

	rate   float64
	width  uint32
	height uint32

	state  State
	anchor time.Time
	frames int64
}

// New creates a Scheduler for a stream with the given frame rate and
// character dimensions. If clock is nil the real wall clock is used; if log
// is nil, slog.Default() is used.
func New(rate float64, width, height uint32, surface Surface, clock Clock, log *slog.Logger) *Scheduler {
	if clock == nil {
		clock = realClock{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		surface: surface,
		clock:   clock,
		log:     log.With("component", "scheduler"),
		rate:    rate,
		width:   width,
		height:  height,
	}
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	return s.state
}

// Frames returns the number of frames displayed so far.
func (s *Scheduler) Frames() int64 {
	return s.frames
}

// Run displays frames until the reader is exhausted (clean termination) or
// a read error occurs (fatal, no retry). The context is checked once per
// frame; a pending pacing wait finishes before cancellation is noticed.
func (s *Scheduler) Run(ctx context.Context, frames FrameReader) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := frames.NextFrame()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.state = StateDone
				s.log.Info("playback finished", "frames", s.frames)
				return nil
			}
			return err
		}

		s.show(frame)
	}
}

// show waits for the frame's deadline, then drives the surface: clear,
// print, viewport resize, frame counter.
func (s *Scheduler) show(frame []string) {
	now := s.clock.Now()
	switch s.state {
	case StateIdle:
		s.anchor = now
		s.state = StatePlaying
	case StatePlaying:
		if wait := TargetTime(s.anchor, s.frames, s.rate).Sub(now); wait > 0 {
			s.clock.Sleep(wait)
		}
	}

	w := int(s.width) * cellWidthPx
	h := int(s.height) * cellHeightPx

	s.surface.Clear()
	s.surface.Print(strings.Join(frame, "\n") + "\n")
	// Resize twice, one row apart: hosts that skip no-op resizes still get
	// a repaint at the final geometry.
	s.surface.Resize(w, h+1)
	s.surface.Resize(w, h)
	s.surface.Print(fmt.Sprintf("frame %d", s.frames))

	s.frames++
}
