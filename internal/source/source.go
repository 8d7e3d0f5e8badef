// Package source drives the external transcoding process that turns a video
// file into a stream of raw fixed-size pixel frames, and exposes
// frame-granular reads over the process's stdout pipe.
//
// The pipe is owned exclusively by the Source; reads are strictly
// sequential. Backpressure is implicit: a slow consumer makes the
// transcoder block on its own output buffer rather than error. That is a
// throughput limit, not a fault.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/inkframe/inkframe/internal/media"
)

// ErrTruncatedFrame reports an end-of-stream in the middle of a frame: the
// transcoder stopped at something other than a frame boundary. This is a
// protocol violation, not a retryable condition.
var ErrTruncatedFrame = errors.New("source: stream ended mid-frame")

// ExitError reports a transcoder process that exited non-zero. It is
// surfaced by Close even when frame consumption completed cleanly.
type ExitError struct {
	Err error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("source: transcoder failed: %v", e.Err)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Process is a running transcoder: the raw frame byte stream, the exit
// status that becomes available once the stream is consumed, and a kill
// switch for abandoning the stream early.
type Process interface {
	io.Reader
	Wait() error
	Kill() error
}

// Starter launches a transcoder for the given source path and target size.
// Tests substitute a canned byte stream; the default is FFmpeg.
type Starter func(ctx context.Context, path string, target media.Size) (Process, error)

type ffmpegProcess struct {
	io.Reader
	cmd *exec.Cmd
}

func (p *ffmpegProcess) Wait() error {
	return p.cmd.Wait()
}

func (p *ffmpegProcess) Kill() error {
	return p.cmd.Process.Kill()
}

// FFmpeg starts ffmpeg decoding path to raw BGRA frames at the target size
// on stdout. Audio is dropped; stderr passes through for diagnostics.
func FFmpeg(ctx context.Context, path string, target media.Size) (Process, error) {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner",
		"-loglevel", "error",
		"-i", path,
		"-vf", fmt.Sprintf("scale=%d:%d", target.Width, target.Height),
		"-f", "rawvideo",
		"-pix_fmt", media.PixelFormat,
		"-an",
		"-",
	)
	cmd.Stderr = os.Stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("source: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("source: start ffmpeg: %w", err)
	}
	return &ffmpegProcess{Reader: stdout, cmd: cmd}, nil
}

// Source reads whole raw frames from a transcoder process.
type Source struct {
	proc   Process
	buf    []byte
	frames int64
	log    *slog.Logger
}

// Open starts a transcoder via start (FFmpeg if nil) and returns a Source
// reading frames of the target size. If log is nil, slog.Default() is used.
func Open(ctx context.Context, path string, target media.Size, start Starter, log *slog.Logger) (*Source, error) {
	if start == nil {
		start = FFmpeg
	}
	if log == nil {
		log = slog.Default()
	}
	proc, err := start(ctx, path, target)
	if err != nil {
		return nil, err
	}
	return &Source{
		proc: proc,
		buf:  make([]byte, target.FrameBytes()),
		log:  log.With("component", "source"),
	}, nil
}

// Next returns the next full frame, or io.EOF at a clean end of stream.
// The returned buffer is reused by the following Next call; the caller owns
// it only until then.
func (s *Source) Next() ([]byte, error) {
	_, err := io.ReadFull(s.proc, s.buf)
	switch {
	case err == nil:
		s.frames++
		return s.buf, nil
	case errors.Is(err, io.EOF):
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return nil, fmt.Errorf("%w (after %d full frames)", ErrTruncatedFrame, s.frames)
	default:
		return nil, fmt.Errorf("source: read frame: %w", err)
	}
}

// Frames returns the number of full frames read so far.
func (s *Source) Frames() int64 {
	return s.frames
}

// Close waits on the transcoder and surfaces a non-zero exit status as an
// ExitError. Callers must Close even after a clean io.EOF: dropping the
// exit status would hide transcoder failures that occurred after the last
// frame was emitted.
//
// Close assumes the stream is exhausted. When abandoning a stream that may
// still be producing, use Abort: a bare Wait would block forever behind the
// transcoder's undrained output pipe.
func (s *Source) Close() error {
	if err := s.proc.Wait(); err != nil {
		return &ExitError{Err: err}
	}
	s.log.Debug("transcoder finished", "frames", s.frames)
	return nil
}

// Abort terminates a still-running transcoder and reaps it. Error paths
// that stop reading frames must use this instead of Close: with nobody
// draining the stdout pipe, the transcoder blocks on its output buffer and
// never exits on its own. Kill and wait failures are irrelevant here; the
// caller is already propagating the error that triggered the abort.
func (s *Source) Abort() {
	s.proc.Kill()
	s.proc.Wait()
	s.log.Debug("transcoder aborted", "frames", s.frames)
}
