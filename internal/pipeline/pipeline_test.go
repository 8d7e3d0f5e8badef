package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/inkframe/inkframe/internal/media"
	"github.com/inkframe/inkframe/internal/probe"
	"github.com/inkframe/inkframe/internal/source"
	"github.com/inkframe/inkframe/internal/stream"
)

type fakeRunner struct {
	dimensions string
	rate       string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	for _, a := range args {
		if strings.Contains(a, "r_frame_rate") {
			return []byte(f.rate), nil
		}
	}
	return []byte(f.dimensions), nil
}

type fakeProcess struct {
	io.Reader
	waitErr error
}

func (p *fakeProcess) Wait() error { return p.waitErr }
func (p *fakeProcess) Kill() error { return nil }

// endlessProcess never runs out of frames and only exits once killed, like
// a transcoder blocked on a pipe nobody drains.
type endlessProcess struct {
	killed chan struct{}
}

func (p *endlessProcess) Read(b []byte) (int, error) {
	for i := range b {
		b[i] = 0
	}
	return len(b), nil
}

func (p *endlessProcess) Wait() error {
	<-p.killed
	return errors.New("signal: killed")
}

func (p *endlessProcess) Kill() error {
	close(p.killed)
	return nil
}

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) {
	return 0, errors.New("no space left on device")
}

// fakeStarter records whether a transcoder was spawned.
type fakeStarter struct {
	data    []byte
	waitErr error
	started bool
	target  media.Size
}

func (f *fakeStarter) start(ctx context.Context, path string, target media.Size) (source.Process, error) {
	f.started = true
	f.target = target
	return &fakeProcess{Reader: bytes.NewReader(f.data), waitErr: f.waitErr}, nil
}

func testConfig(starter *fakeStarter) Config {
	return Config{
		Input:  "movie.mp4",
		Target: media.Target{Width: 2, WidthSet: true},
		Style:  "mono",
		Probe:  probe.New(&fakeRunner{dimensions: "4,2\n", rate: "30/1\n"}, nil),
		Start:  starter.start,
	}
}

func TestRun_EndToEnd(t *testing.T) {
	t.Parallel()
	// Source 4x2, target width 2 -> resolved 2x1, 8 bytes per raw frame.
	starter := &fakeStarter{data: make([]byte, 2*8)}
	var buf bytes.Buffer

	stats, err := Run(context.Background(), testConfig(starter), &buf)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Target != (media.Size{Width: 2, Height: 1}) {
		t.Errorf("target = %+v, want 2x1", stats.Target)
	}
	if stats.Frames != 2 {
		t.Errorf("frames = %d, want 2", stats.Frames)
	}
	if starter.target != stats.Target {
		t.Errorf("transcoder spawned at %+v, want resolved target %+v", starter.target, stats.Target)
	}

	dec, err := stream.NewDecoder(&buf)
	if err != nil {
		t.Fatal(err)
	}
	desc := dec.Descriptor()
	if desc.Width != 2 || desc.Height != 1 || desc.FrameRate != 30 {
		t.Errorf("header = %+v, want 2x1@30", desc)
	}
	for i := 0; i < 2; i++ {
		frame, err := dec.NextFrame()
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		// All-zero pixels render as blank mono lines of target width.
		if frame[0] != "  " {
			t.Errorf("frame %d line = %q, want two blanks", i, frame[0])
		}
	}
	if _, err := dec.NextFrame(); !errors.Is(err, io.EOF) {
		t.Errorf("err = %v, want io.EOF", err)
	}
}

func TestRun_InvalidTargetBeforeSpawn(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		target media.Target
		want   error
	}{
		{"neither dimension", media.Target{}, media.ErrNoTarget},
		{"zero width", media.Target{Width: 0, WidthSet: true}, media.ErrZeroTarget},
		{"zero height", media.Target{Height: 0, HeightSet: true}, media.ErrZeroTarget},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			starter := &fakeStarter{}
			cfg := testConfig(starter)
			cfg.Target = tc.target

			var buf bytes.Buffer
			_, err := Run(context.Background(), cfg, &buf)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if starter.started {
				t.Error("transcoder was spawned despite invalid target")
			}
			if buf.Len() != 0 {
				t.Error("output written despite invalid target")
			}
		})
	}
}

func TestRun_TranscoderExitFailure(t *testing.T) {
	t.Parallel()
	// Frames consumed cleanly, then the transcoder reports failure.
	starter := &fakeStarter{data: make([]byte, 8), waitErr: errors.New("exit status 1")}
	var buf bytes.Buffer

	_, err := Run(context.Background(), testConfig(starter), &buf)
	var ee *source.ExitError
	if !errors.As(err, &ee) {
		t.Fatalf("err = %v, want *source.ExitError", err)
	}
}

func TestRun_TruncatedFrame(t *testing.T) {
	t.Parallel()
	// One full frame plus three stray bytes.
	starter := &fakeStarter{data: make([]byte, 8+3)}
	var buf bytes.Buffer

	_, err := Run(context.Background(), testConfig(starter), &buf)
	if !errors.Is(err, source.ErrTruncatedFrame) {
		t.Fatalf("err = %v, want ErrTruncatedFrame", err)
	}

	// The abort path still finalized the compressor: the prefix written
	// before the failure must decode on its own.
	dec, err := stream.NewDecoder(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := dec.NextFrame(); err != nil {
		t.Errorf("prefix frame not decodable after abort: %v", err)
	}
}

func TestRun_SinkFailureAbortsTranscoder(t *testing.T) {
	t.Parallel()
	// Wide frames push the compressor's buffered block through to the
	// failing sink while the transcoder is still producing. Run must kill
	// the transcoder and surface the write error, not wait on it forever.
	proc := &endlessProcess{killed: make(chan struct{})}
	cfg := Config{
		Input:  "movie.mp4",
		Target: media.Target{Width: 1024, WidthSet: true},
		Style:  "mono",
		Probe:  probe.New(&fakeRunner{dimensions: "1024,2\n", rate: "30/1\n"}, nil),
		Start: func(ctx context.Context, path string, target media.Size) (source.Process, error) {
			return proc, nil
		},
	}

	errCh := make(chan error, 1)
	go func() {
		_, err := Run(context.Background(), cfg, failWriter{})
		errCh <- err
	}()

	select {
	case err := <-errCh:
		if err == nil {
			t.Fatal("Run succeeded despite failing sink")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run hung after sink failure instead of aborting the transcoder")
	}

	select {
	case <-proc.killed:
	default:
		t.Error("transcoder was not killed on abort")
	}
}

func TestRun_ProbeFailure(t *testing.T) {
	t.Parallel()
	starter := &fakeStarter{}
	cfg := testConfig(starter)
	cfg.Probe = probe.New(&fakeRunner{dimensions: "abc,def\n", rate: "30/1\n"}, nil)

	var buf bytes.Buffer
	_, err := Run(context.Background(), cfg, &buf)
	var pe *probe.Error
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *probe.Error", err)
	}
	if starter.started {
		t.Error("transcoder was spawned despite probe failure")
	}
}
