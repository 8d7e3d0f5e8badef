// Package pipeline orchestrates the production side: probe the source
// video, resolve the target resolution, drive the transcoder, render each
// raw frame to text art, and encode the result onto the compressed stream.
//
// The pipeline is strictly sequential: one frame is fully read, rendered,
// and encoded before the next read begins.
package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/inkframe/inkframe/internal/media"
	"github.com/inkframe/inkframe/internal/probe"
	"github.com/inkframe/inkframe/internal/render"
	"github.com/inkframe/inkframe/internal/source"
	"github.com/inkframe/inkframe/internal/stream"
)

// Config parameterizes one production run. Probe and Start are seams for
// tests; left nil they bind the real ffprobe and ffmpeg tools.
type Config struct {
	Input  string
	Target media.Target
	Aspect media.Aspect
	Style  string
	Level  int

	Probe *probe.Probe
	Start source.Starter
	Log   *slog.Logger
}

// Stats summarizes a completed run.
type Stats struct {
	Source media.Descriptor
	Target media.Size
	Frames int64
}

// Run executes the production pipeline and writes the compressed frame
// stream to out. The target request is validated before any external
// process is spawned. The encoder is finalized on both success and abort so
// the prefix written so far stays decodable, and the transcoder's exit
// status is always collected.
func Run(ctx context.Context, cfg Config, out io.Writer) (Stats, error) {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "pipeline")

	var stats Stats

	if err := cfg.Target.Validate(); err != nil {
		return stats, err
	}
	aspect := cfg.Aspect
	if aspect == (media.Aspect{}) {
		aspect = media.SquareAspect
	}

	pr := cfg.Probe
	if pr == nil {
		pr = probe.New(nil, log)
	}
	desc, err := pr.Describe(ctx, cfg.Input)
	if err != nil {
		return stats, err
	}
	stats.Source = desc

	target, err := media.ResolveTarget(media.Size{Width: desc.Width, Height: desc.Height}, aspect, cfg.Target)
	if err != nil {
		return stats, err
	}
	stats.Target = target

	log.Info("encoding",
		"input", cfg.Input,
		"source_width", desc.Width,
		"source_height", desc.Height,
		"target_width", target.Width,
		"target_height", target.Height,
		"rate", desc.FrameRate,
	)

	renderer, err := render.New(cfg.Style, target)
	if err != nil {
		return stats, err
	}

	enc, err := stream.NewEncoder(out, desc.FrameRate, target.Width, target.Height, stream.EncoderOptions{Level: cfg.Level})
	if err != nil {
		return stats, err
	}
	defer enc.Close()

	src, err := source.Open(ctx, cfg.Input, target, cfg.Start, log)
	if err != nil {
		return stats, err
	}

	start := time.Now()
	if err := encodeFrames(src, renderer, enc); err != nil {
		// The transcoder may still be producing; Close would wait forever
		// behind its undrained output pipe.
		src.Abort()
		return stats, err
	}

	// The transcoder may fail after its last complete frame; its exit
	// status decides whether the run succeeded.
	if err := src.Close(); err != nil {
		return stats, err
	}
	if err := enc.Close(); err != nil {
		return stats, err
	}

	stats.Frames = enc.Frames()
	log.Info("encoding finished",
		"frames", stats.Frames,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return stats, nil
}

func encodeFrames(src *source.Source, renderer render.Renderer, enc *stream.Encoder) error {
	for {
		raw, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		frame, err := renderer.Render(raw)
		if err != nil {
			return err
		}
		if err := enc.WriteFrame(frame); err != nil {
			return err
		}
	}
}
