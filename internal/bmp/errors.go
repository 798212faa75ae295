package bmp

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSignature means the first two bytes are not "BM".
	ErrInvalidSignature = errors.New("bmp: invalid signature")

	// ErrUnsupportedFormat covers bit depths other than 8 and 24, compressed
	// files and non-positive dimensions.
	ErrUnsupportedFormat = errors.New("bmp: unsupported format")
)

// IOError records a failed open, read or write. Short input wraps io.ErrUnexpectedEOF.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("bmp: %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("bmp: %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
