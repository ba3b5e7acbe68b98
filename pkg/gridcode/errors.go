package gridcode

import "errors"

var (
	// ErrOutOfBounds is returned when a coordinate lies outside the codec's bounding box.
	ErrOutOfBounds = errors.New("coordinates out of bounds")
	// ErrInvalidCode is returned when a code cannot be read as 1..Length letters A-Z.
	ErrInvalidCode = errors.New("invalid grid code")
)
