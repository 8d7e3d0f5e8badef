package term

import (
	"bytes"
	"testing"
)

func TestSurface_Clear(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	NewSurface(&buf).Clear()
	if got := buf.String(); got != "\x1b[H\x1b[2J" {
		t.Errorf("Clear wrote %q", got)
	}
}

func TestSurface_Print(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	NewSurface(&buf).Print("\x1b[48;2;1;2;3m \x1b[0m\n")
	if got := buf.String(); got != "\x1b[48;2;1;2;3m \x1b[0m\n" {
		t.Errorf("Print wrote %q, want the text verbatim", got)
	}
}

func TestSurface_Resize(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	NewSurface(&buf).Resize(800, 1350)
	if got := buf.String(); got != "\x1b[4;1350;800t" {
		t.Errorf("Resize wrote %q", got)
	}
}
