// Package stream implements the frame-stream wire format: an LZ4 frame
// containing a two-line textual header (frame rate, then width and height)
// followed by rendered frame lines in temporal order. Frame boundaries are
// implicit; every consecutive block of height lines is one frame.
package stream

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/pierrec/lz4/v4"
)

// compressionLevels maps the 0-9 CLI level to lz4 levels, 0 being the fast
// (non-HC) path.
var compressionLevels = []lz4.CompressionLevel{
	lz4.Fast,
	lz4.Level1, lz4.Level2, lz4.Level3,
	lz4.Level4, lz4.Level5, lz4.Level6,
	lz4.Level7, lz4.Level8, lz4.Level9,
}

// Encoder writes the header and successive rendered frames onto a
// compressed byte sink. It must be closed on both normal completion and
// early abort so the prefix written so far remains independently decodable.
type Encoder struct {
	zw     *lz4.Writer
	bw     *bufio.Writer
	height int
	frames int64
	closed bool
}

// EncoderOptions tune the encoder.
type EncoderOptions struct {
	// Level selects the LZ4 compression level, 0 (fast) through 9.
	Level int
}

// NewEncoder writes the stream header for the given frame rate and target
// dimensions onto w and returns an Encoder for the frames that follow.
//
// The frame rate is written with the shortest decimal representation that
// round-trips float64 exactly, so playback pacing sees the producer's exact
// rate.
func NewEncoder(w io.Writer, rate float64, width, height uint32, opts EncoderOptions) (*Encoder, error) {
	if opts.Level < 0 || opts.Level >= len(compressionLevels) {
		return nil, fmt.Errorf("stream: compression level %d out of range", opts.Level)
	}

	zw := lz4.NewWriter(w)
	if err := zw.Apply(lz4.CompressionLevelOption(compressionLevels[opts.Level])); err != nil {
		return nil, fmt.Errorf("stream: configure compressor: %w", err)
	}

	e := &Encoder{
		zw:     zw,
		bw:     bufio.NewWriter(zw),
		height: int(height),
	}

	if _, err := fmt.Fprintf(e.bw, "%s\n%d %d\n",
		strconv.FormatFloat(rate, 'f', -1, 64), width, height); err != nil {
		return nil, fmt.Errorf("stream: write header: %w", err)
	}
	return e, nil
}

// WriteFrame appends one rendered frame, newline-terminating every line.
// Frames with a line count other than the header height are rejected with
// ErrLineCount before anything is written.
func (e *Encoder) WriteFrame(frame []string) error {
	if len(frame) != e.height {
		return fmt.Errorf("%w: got %d lines, want %d", ErrLineCount, len(frame), e.height)
	}
	for _, line := range frame {
		if _, err := e.bw.WriteString(line); err != nil {
			return fmt.Errorf("stream: write frame: %w", err)
		}
		if err := e.bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("stream: write frame: %w", err)
		}
	}
	e.frames++
	return nil
}

// Frames returns the number of frames written so far.
func (e *Encoder) Frames() int64 {
	return e.frames
}

// Close flushes buffered lines and finalizes the LZ4 frame. It is
// idempotent and safe to defer alongside an explicit error-checked call.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if err := e.bw.Flush(); err != nil {
		return fmt.Errorf("stream: flush: %w", err)
	}
	if err := e.zw.Close(); err != nil {
		return fmt.Errorf("stream: finalize: %w", err)
	}
	return nil
}
