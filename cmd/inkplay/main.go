// Command inkplay replays a compressed text-art frame stream produced by
// inkframe, pacing frames against wall-clock time on the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/inkframe/inkframe/internal/playback"
	"github.com/inkframe/inkframe/internal/stream"
	"github.com/inkframe/inkframe/internal/term"
)

var version = "dev"

func main() {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s <stream file, - for stdin>\n", os.Args[0])
		os.Exit(2)
	}
	path := flag.Arg(0)

	in := os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			slog.Error("failed to open stream", "path", path, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	dec, err := stream.NewDecoder(in)
	if err != nil {
		slog.Error("failed to read stream header", "path", path, "error", err)
		os.Exit(1)
	}
	desc := dec.Descriptor()
	slog.Info("inkplay starting",
		"version", version,
		"width", desc.Width,
		"height", desc.Height,
		"rate", desc.FrameRate,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, stopping playback", "signal", sig)
		cancel()
	}()

	sched := playback.New(desc.FrameRate, desc.Width, desc.Height, term.NewSurface(os.Stdout), nil, nil)
	if err := sched.Run(ctx, dec); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		slog.Error("playback failed", "error", err, "frames", sched.Frames())
		os.Exit(1)
	}
}
