// Package render converts raw BGRA pixel buffers into colored text-art
// frames. Renderers are deterministic, side-effect-free transforms that
// emit exactly one text line per pixel row, so every frame carries the
// target height's line count.
package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/inkframe/inkframe/internal/media"
)

// ErrFrameSize reports a raw buffer whose length does not match the
// renderer's configured dimensions.
var ErrFrameSize = errors.New("render: raw frame size mismatch")

// Renderer turns one raw frame into its text-art representation.
type Renderer interface {
	Render(raw []byte) (media.RenderedFrame, error)
}

// Styles accepted by New.
const (
	StyleColor = "color"
	StyleMono  = "mono"
)

// New returns the renderer for the given style name at the given frame size.
func New(style string, size media.Size) (Renderer, error) {
	switch style {
	case StyleColor, "":
		return NewColor(size), nil
	case StyleMono:
		return NewMono(size), nil
	default:
		return nil, fmt.Errorf("render: unknown style %q", style)
	}
}

const reset = "\x1b[0m"

// Color renders each pixel as a truecolor background-painted space, one
// character per pixel, with a reset at every line end.
type Color struct {
	size media.Size
}

// NewColor creates a truecolor renderer for frames of the given size.
func NewColor(size media.Size) *Color {
	return &Color{size: size}
}

// Render implements Renderer.
func (c *Color) Render(raw []byte) (media.RenderedFrame, error) {
	if len(raw) != c.size.FrameBytes() {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrFrameSize, len(raw), c.size.FrameBytes())
	}

	width := int(c.size.Width)
	frame := make(media.RenderedFrame, 0, c.size.Height)
	var sb strings.Builder

	for row := 0; row < int(c.size.Height); row++ {
		sb.Reset()
		// Repeat the escape only on color changes; long runs of identical
		// pixels compress to a single sequence.
		prevR, prevG, prevB := -1, -1, -1
		base := row * width * media.BytesPerPixel
		for col := 0; col < width; col++ {
			i := base + col*media.BytesPerPixel
			b, g, r := int(raw[i]), int(raw[i+1]), int(raw[i+2])
			if r != prevR || g != prevG || b != prevB {
				fmt.Fprintf(&sb, "\x1b[48;2;%d;%d;%dm", r, g, b)
				prevR, prevG, prevB = r, g, b
			}
			sb.WriteByte(' ')
		}
		sb.WriteString(reset)
		frame = append(frame, sb.String())
	}
	return frame, nil
}

// monoRamp maps ascending luma to denser glyphs.
const monoRamp = " .-+#"

// Mono renders each pixel as a single grayscale ramp character, no color
// escapes.
type Mono struct {
	size media.Size
}

// NewMono creates a character-ramp renderer for frames of the given size.
func NewMono(size media.Size) *Mono {
	return &Mono{size: size}
}

// Render implements Renderer.
func (m *Mono) Render(raw []byte) (media.RenderedFrame, error) {
	if len(raw) != m.size.FrameBytes() {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrFrameSize, len(raw), m.size.FrameBytes())
	}

	width := int(m.size.Width)
	frame := make(media.RenderedFrame, 0, m.size.Height)
	line := make([]byte, width)

	for row := 0; row < int(m.size.Height); row++ {
		base := row * width * media.BytesPerPixel
		for col := 0; col < width; col++ {
			i := base + col*media.BytesPerPixel
			b, g, r := int(raw[i]), int(raw[i+1]), int(raw[i+2])
			// Rec. 601 luma, integer arithmetic.
			luma := (299*r + 587*g + 114*b) / 1000
			line[col] = monoRamp[luma*len(monoRamp)/256]
		}
		frame = append(frame, string(line))
	}
	return frame, nil
}
