package anim

import (
	"errors"
	"fmt"
)

// Domain errors for conversion, encoding and decoding.
var (
	// ErrInvalidDimensions indicates non-positive columns, rows or raster size.
	ErrInvalidDimensions = errors.New("anim: invalid dimensions")

	// ErrBadMagic indicates a binary stream that does not start with "ASCI".
	ErrBadMagic = errors.New("anim: bad magic")

	// ErrTruncatedStream indicates fewer bytes than a header or record declares.
	ErrTruncatedStream = errors.New("anim: truncated stream")

	// ErrUnsupportedFormat indicates a serialized form the decoder does not know.
	ErrUnsupportedFormat = errors.New("anim: unsupported format")

	// ErrUnsupportedRampLength indicates a ramp that does not fit the one byte length field.
	ErrUnsupportedRampLength = errors.New("anim: unsupported ramp length")

	// ErrUnknownFrame indicates a frame record of an unknown kind.
	ErrUnknownFrame = errors.New("anim: unknown frame type")

	// ErrIndexOutOfRange indicates a delta change outside the grid.
	ErrIndexOutOfRange = errors.New("anim: change index out of range")

	// ErrNoKeyframe indicates a delta applied before any full frame.
	ErrNoKeyframe = errors.New("anim: delta frame without preceding full frame")

	// ErrFrameCountMismatch indicates meta.FrameCount disagrees with the frame list.
	ErrFrameCountMismatch = errors.New("anim: frame count mismatch")
)

// FrameError wraps an error with the index of the frame it happened on.
type FrameError struct {
	Index   int
	Wrapped error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d: %v", e.Index, e.Wrapped)
}

func (e *FrameError) Unwrap() error {
	return e.Wrapped
}
