package stream

import (
	"errors"
	"fmt"
)

// ErrLineCount reports a rendered frame whose line count does not match the
// height recorded in the stream header. Writing it would silently
// desynchronize every following frame boundary, so the encoder rejects it.
var ErrLineCount = errors.New("stream: frame line count does not match header height")

// FormatError reports a malformed or missing stream header field.
type FormatError struct {
	Field string
	Value string
	Err   error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stream: bad header %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("stream: bad header %s %q", e.Field, e.Value)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// DecodeError reports corrupt compressed data or a failed read from the
// underlying stream. It is fatal for the playback session.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("stream: decode: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
