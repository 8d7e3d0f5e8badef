package stream

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pierrec/lz4/v4"

	"github.com/inkframe/inkframe/internal/media"
)

// Decoder decompresses a frame stream and re-segments it into the header
// plus discrete frames. Reads are strictly sequential; the stream supports
// no seeking.
type Decoder struct {
	br   *bufio.Reader
	desc media.Descriptor
	eof  bool
}

// NewDecoder reads and validates the stream header from r. Malformed or
// missing header lines fail with a FormatError; corrupt compressed data
// fails with a DecodeError.
func NewDecoder(r io.Reader) (*Decoder, error) {
	d := &Decoder{br: bufio.NewReader(lz4.NewReader(r))}

	rateLine, err := d.readLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &FormatError{Field: "frame rate", Err: io.ErrUnexpectedEOF}
		}
		return nil, err
	}
	rate, err := strconv.ParseFloat(rateLine, 64)
	if err != nil || rate <= 0 {
		return nil, &FormatError{Field: "frame rate", Value: rateLine, Err: err}
	}

	dimLine, err := d.readLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &FormatError{Field: "dimensions", Err: io.ErrUnexpectedEOF}
		}
		return nil, err
	}
	fields := strings.Fields(dimLine)
	if len(fields) != 2 {
		return nil, &FormatError{Field: "dimensions", Value: dimLine}
	}
	width, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil || width == 0 {
		return nil, &FormatError{Field: "dimensions", Value: dimLine, Err: err}
	}
	height, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil || height == 0 {
		return nil, &FormatError{Field: "dimensions", Value: dimLine, Err: err}
	}

	d.desc = media.Descriptor{
		Width:     uint32(width),
		Height:    uint32(height),
		FrameRate: rate,
	}
	return d, nil
}

// Descriptor returns the frame rate and dimensions parsed from the header.
func (d *Decoder) Descriptor() media.Descriptor {
	return d.desc
}

// NextFrame returns the next complete frame of exactly height lines, or
// io.EOF at end of stream. A trailing block of fewer than height lines is
// not a complete frame; it is discarded and NextFrame reports io.EOF. An
// aborted producer may legitimately leave such a remainder behind, and
// every complete frame before it is still displayable.
func (d *Decoder) NextFrame() ([]string, error) {
	if d.eof {
		return nil, io.EOF
	}

	frame := make([]string, 0, d.desc.Height)
	for len(frame) < int(d.desc.Height) {
		line, err := d.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				d.eof = true
				return nil, io.EOF
			}
			return nil, err
		}
		frame = append(frame, line)
	}
	return frame, nil
}

// readLine returns the next newline-terminated line without its terminator.
// A final unterminated fragment is treated as end of stream: the producer
// always newline-terminates, so a missing terminator means the line is
// truncated.
func (d *Decoder) readLine() (string, error) {
	line, err := d.br.ReadString('\n')
	if err == nil {
		return strings.TrimSuffix(line, "\n"), nil
	}
	if errors.Is(err, io.EOF) {
		return "", io.EOF
	}
	return "", &DecodeError{Err: fmt.Errorf("read line: %w", err)}
}
