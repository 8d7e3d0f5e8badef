// Package term binds playback display to an ANSI terminal and exposes
// terminal geometry queries used for resolution defaulting.
package term

import (
	"fmt"
	"io"
	"os"

	xterm "golang.org/x/term"
)

// Surface implements playback.Surface on an ANSI terminal writer.
type Surface struct {
	w io.Writer
}

// NewSurface creates a Surface writing escape sequences and frame text to w.
func NewSurface(w io.Writer) *Surface {
	return &Surface{w: w}
}

// Clear erases the screen and homes the cursor.
func (s *Surface) Clear() {
	fmt.Fprint(s.w, "\x1b[H\x1b[2J")
}

// Print writes frame text verbatim. Lines already carry their color
// escapes.
func (s *Surface) Print(text string) {
	io.WriteString(s.w, text)
}

// Resize requests an xterm window resize to the given pixel dimensions
// (CSI 4 t). Terminals that ignore window ops simply keep their size.
func (s *Surface) Resize(width, height int) {
	fmt.Fprintf(s.w, "\x1b[4;%d;%dt", height, width)
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return xterm.IsTerminal(int(f.Fd()))
}

// Size returns the character width and height of the terminal attached to
// f.
func Size(f *os.File) (width, height int, err error) {
	return xterm.GetSize(int(f.Fd()))
}
