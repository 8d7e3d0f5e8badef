// Package media defines the core types that flow through the inkframe
// pipeline: source video metadata, target-resolution math, and rendered
// text frames.
package media

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// BytesPerPixel is the size of one transcoded pixel sample. The transcoder
// emits packed 4-byte BGRA.
const BytesPerPixel = 4

// PixelFormat is the pixel format requested from the transcoder.
const PixelFormat = "bgra"

// Validation errors for target-resolution requests. These are checked before
// any external process is spawned.
var (
	ErrNoTarget   = errors.New("media: neither target width nor target height specified")
	ErrZeroTarget = errors.New("media: target dimensions must be positive")
	ErrBadAspect  = errors.New("media: malformed character aspect")
)

// Descriptor holds the source video metadata captured once by the probe at
// pipeline start. It is never mutated afterwards.
type Descriptor struct {
	Width     uint32
	Height    uint32
	FrameRate float64
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  uint32
	Height uint32
}

// FrameBytes returns the byte length of one raw frame at this size.
func (s Size) FrameBytes() int {
	return int(s.Width) * int(s.Height) * BytesPerPixel
}

// Aspect is the pixel footprint of one character cell on the display
// surface. Terminal cells are taller than they are wide, so resolving a
// target resolution without compensating for the cell shape produces
// vertically stretched output.
type Aspect struct {
	CharWidth  uint32
	CharHeight uint32
}

// SquareAspect is the 1×1 default used when no character aspect is given.
var SquareAspect = Aspect{CharWidth: 1, CharHeight: 1}

// ParseAspect parses a "WxH" character-aspect string. An empty string
// yields SquareAspect. Both parts must be positive decimal integers.
func ParseAspect(s string) (Aspect, error) {
	if s == "" {
		return SquareAspect, nil
	}
	parts := strings.Split(s, "x")
	if len(parts) != 2 {
		return Aspect{}, fmt.Errorf("%w: %q", ErrBadAspect, s)
	}
	w, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return Aspect{}, fmt.Errorf("%w: %q", ErrBadAspect, s)
	}
	h, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return Aspect{}, fmt.Errorf("%w: %q", ErrBadAspect, s)
	}
	if w == 0 || h == 0 {
		return Aspect{}, fmt.Errorf("%w: %q", ErrBadAspect, s)
	}
	return Aspect{CharWidth: uint32(w), CharHeight: uint32(h)}, nil
}

// Target carries the user's requested output dimensions. A dimension is
// meaningful only when its Set flag is true; a supplied zero is invalid.
type Target struct {
	Width     uint32
	Height    uint32
	WidthSet  bool
	HeightSet bool
}

// Validate rejects requests with neither dimension set or with an explicit
// zero for a set dimension.
func (t Target) Validate() error {
	if !t.WidthSet && !t.HeightSet {
		return ErrNoTarget
	}
	if (t.WidthSet && t.Width == 0) || (t.HeightSet && t.Height == 0) {
		return ErrZeroTarget
	}
	return nil
}

// ResolveTarget computes the output resolution from the source size, the
// character-cell aspect, and the user's request.
//
// Both dimensions given are used verbatim. With only one given, the other
// is derived so the source aspect ratio is preserved after the non-square
// character cells are accounted for, with integer truncation:
//
//	height = srcHeight × width × charHeight ÷ (srcWidth × charWidth)
//
// and symmetrically when only the height is given.
func ResolveTarget(src Size, char Aspect, want Target) (Size, error) {
	if err := want.Validate(); err != nil {
		return Size{}, err
	}

	switch {
	case want.WidthSet && want.HeightSet:
		return Size{Width: want.Width, Height: want.Height}, nil

	case want.WidthSet:
		h := uint64(src.Height) * uint64(want.Width) * uint64(char.CharHeight) /
			(uint64(src.Width) * uint64(char.CharWidth))
		if h == 0 {
			return Size{}, fmt.Errorf("%w: resolved height is zero for width %d", ErrZeroTarget, want.Width)
		}
		return Size{Width: want.Width, Height: uint32(h)}, nil

	default:
		w := uint64(src.Width) * uint64(want.Height) * uint64(char.CharHeight) /
			(uint64(src.Height) * uint64(char.CharWidth))
		if w == 0 {
			return Size{}, fmt.Errorf("%w: resolved width is zero for height %d", ErrZeroTarget, want.Height)
		}
		return Size{Width: uint32(w), Height: want.Height}, nil
	}
}

// RenderedFrame is the colored text-art representation of one raw frame:
// an ordered slice of lines, each already carrying its color escapes.
// A well-formed frame has exactly the target height's line count; the
// stream encoder enforces that contract.
type RenderedFrame []string
