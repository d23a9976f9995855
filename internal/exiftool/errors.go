package exiftool

import (
	"errors"
	"fmt"
	"strings"
)

// ErrProcessExited is returned when the worker's output ends before a
// response sentinel arrives.
var ErrProcessExited = errors.New("exiftool exited before completing the response")

// ErrClosed is returned by calls made after Close.
var ErrClosed = errors.New("exiftool client is closed")

// ProcessStartError reports that the exiftool executable could not be
// launched. It is fatal to a session.
type ProcessStartError struct {
	Executable string
	Err        error
}

func (e *ProcessStartError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Executable, e.Err)
}

func (e *ProcessStartError) Unwrap() error { return e.Err }

// MetadataParseError reports a response that could not be decoded into one
// record per requested path.
type MetadataParseError struct {
	Paths []string
	Err   error
}

func (e *MetadataParseError) Error() string {
	return fmt.Sprintf("failed to parse exiftool output for %s: %v", strings.Join(e.Paths, ", "), e.Err)
}

func (e *MetadataParseError) Unwrap() error { return e.Err }
