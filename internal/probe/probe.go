// Package probe queries source video metadata (pixel dimensions and frame
// rate) through the external ffprobe tool. The tool invocation sits behind
// a narrow Runner interface so tests substitute canned outputs instead of
// spawning real binaries.
package probe

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/inkframe/inkframe/internal/media"
)

// Runner executes an external tool and returns its stdout. The default
// implementation shells out via os/exec.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Error indicates that the probe tool failed or produced output that could
// not be interpreted. It records the source path and what was expected.
type Error struct {
	Path   string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("probe %s: %s: %v", e.Path, e.Detail, e.Err)
	}
	return fmt.Sprintf("probe %s: %s", e.Path, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Probe queries video metadata from ffprobe.
type Probe struct {
	runner Runner
	log    *slog.Logger
}

// New creates a Probe. If runner is nil the real ffprobe binary is invoked;
// if log is nil, slog.Default() is used.
func New(runner Runner, log *slog.Logger) *Probe {
	if runner == nil {
		runner = execRunner{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Probe{
		runner: runner,
		log:    log.With("component", "probe"),
	}
}

// Dimensions returns the pixel width and height of the first video stream.
func (p *Probe) Dimensions(ctx context.Context, path string) (uint32, uint32, error) {
	out, err := p.runner.Run(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v",
		"-show_entries", "stream=width,height",
		"-of", "csv=p=0",
		path,
	)
	if err != nil {
		return 0, 0, &Error{Path: path, Detail: "ffprobe failed", Err: err}
	}
	if !utf8.Valid(out) {
		return 0, 0, &Error{Path: path, Detail: "ffprobe output is not valid UTF-8"}
	}

	fields := strings.Split(strings.TrimSpace(string(out)), ",")
	if len(fields) != 2 {
		return 0, 0, &Error{Path: path, Detail: fmt.Sprintf("expected width,height pair, got %q", strings.TrimSpace(string(out)))}
	}
	w, err := parsePositive(fields[0])
	if err != nil {
		return 0, 0, &Error{Path: path, Detail: fmt.Sprintf("bad width %q", fields[0]), Err: err}
	}
	h, err := parsePositive(fields[1])
	if err != nil {
		return 0, 0, &Error{Path: path, Detail: fmt.Sprintf("bad height %q", fields[1]), Err: err}
	}

	p.log.Debug("probed dimensions", "path", path, "width", w, "height", h)
	return w, h, nil
}

// FrameRate returns the frame rate of the first video stream, computed from
// ffprobe's numerator/denominator rational.
func (p *Probe) FrameRate(ctx context.Context, path string) (float64, error) {
	out, err := p.runner.Run(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=r_frame_rate",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, &Error{Path: path, Detail: "ffprobe failed", Err: err}
	}
	if !utf8.Valid(out) {
		return 0, &Error{Path: path, Detail: "ffprobe output is not valid UTF-8"}
	}

	raw := strings.TrimSpace(string(out))
	num, den, ok := strings.Cut(raw, "/")
	if !ok {
		return 0, &Error{Path: path, Detail: fmt.Sprintf("expected num/den frame rate, got %q", raw)}
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, &Error{Path: path, Detail: fmt.Sprintf("bad frame rate numerator %q", num), Err: err}
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil {
		return 0, &Error{Path: path, Detail: fmt.Sprintf("bad frame rate denominator %q", den), Err: err}
	}
	if d == 0 {
		return 0, &Error{Path: path, Detail: fmt.Sprintf("zero frame rate denominator in %q", raw)}
	}

	rate := n / d
	p.log.Debug("probed frame rate", "path", path, "rate", rate)
	return rate, nil
}

// Describe combines Dimensions and FrameRate into one Descriptor.
func (p *Probe) Describe(ctx context.Context, path string) (media.Descriptor, error) {
	w, h, err := p.Dimensions(ctx, path)
	if err != nil {
		return media.Descriptor{}, err
	}
	rate, err := p.FrameRate(ctx, path)
	if err != nil {
		return media.Descriptor{}, err
	}
	return media.Descriptor{Width: w, Height: h, FrameRate: rate}, nil
}

func parsePositive(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return 0, fmt.Errorf("value must be positive")
	}
	return uint32(v), nil
}
