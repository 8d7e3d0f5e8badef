// Command inkframe converts a source video into a compressed colored
// text-art frame stream, written to stdout or a file for later playback
// with inkplay.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/inkframe/inkframe/internal/media"
	"github.com/inkframe/inkframe/internal/pipeline"
	"github.com/inkframe/inkframe/internal/term"
)

var version = "dev"

func main() {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	var (
		targetWidth  = flag.Uint32("target-width", 0, "output width in characters")
		targetHeight = flag.Uint32("target-height", 0, "output height in characters")
		charDims     = flag.String("char-dims", "", "character cell aspect as WxH (default 1x1)")
		style        = flag.StringP("style", "s", "color", "rendering style: color or mono")
		compression  = flag.Int("level", 9, "LZ4 compression level, 0 (fast) to 9")
		output       = flag.StringP("output", "o", "-", "output file, - for stdout")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <video>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	input := flag.Arg(0)

	aspect, err := media.ParseAspect(*charDims)
	if err != nil {
		slog.Error("invalid char-dims", "error", err)
		os.Exit(1)
	}

	target := media.Target{
		Width:     *targetWidth,
		Height:    *targetHeight,
		WidthSet:  flag.CommandLine.Changed("target-width"),
		HeightSet: flag.CommandLine.Changed("target-height"),
	}
	// With no explicit target, fall back to the terminal's width so a bare
	// invocation still produces something that fits the screen.
	if !target.WidthSet && !target.HeightSet && term.IsTerminal(os.Stderr) {
		if cols, _, err := term.Size(os.Stderr); err == nil && cols > 0 {
			target.Width = uint32(cols)
			target.WidthSet = true
			slog.Info("defaulting target width to terminal width", "width", cols)
		}
	}

	out := os.Stdout
	if *output != "-" {
		f, err := os.Create(*output)
		if err != nil {
			slog.Error("failed to create output file", "path", *output, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	slog.Info("inkframe starting", "version", version, "input", input, "output", *output)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := pipeline.Run(ctx, pipeline.Config{
			Input:  input,
			Target: target,
			Aspect: aspect,
			Style:  *style,
			Level:  *compression,
		}, out)
		return err
	})

	if err := g.Wait(); err != nil {
		slog.Error("encoding failed", "error", err)
		os.Exit(1)
	}
}
