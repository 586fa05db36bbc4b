package decoder

import (
	"errors"
	"fmt"
)

// FormatError reports a malformed CODA bank or trigger bank segment.
// It is raised by the trigger bank parser and converted into the
// skip-whole-event recovery by the physics event path.
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("CODA format error: %s", e.Msg)
}

func formatErrorf(format string, args ...interface{}) *FormatError {
	return &FormatError{Msg: fmt.Sprintf(format, args...)}
}

// IsFormatError reports whether err is a protocol format error as opposed
// to an argument or I/O error.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// ErrInvalidBlockSize is returned when a caller asks the trigger bank
// parser to decode with a block size of zero. The caller, not the data,
// is at fault.
var ErrInvalidBlockSize = errors.New("CODA block size must be > 0")

// ErrOpenFile represents an error when opening an event file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error { return e.Err }

// ErrReadEvent represents an error while reading an event buffer from a file.
type ErrReadEvent struct {
	Err error
}

func (e *ErrReadEvent) Error() string {
	return fmt.Sprintf("error reading event: %v", e.Err)
}

func (e *ErrReadEvent) Unwrap() error { return e.Err }
