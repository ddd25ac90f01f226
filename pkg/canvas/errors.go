package canvas

import "errors"

var (
	// ErrInvalidEnum is returned when a string is not a canonical token of
	// a closed enumeration.
	ErrInvalidEnum = errors.New("invalid enum value")

	// ErrNilImage is returned when drawing or wrapping a nil image.
	ErrNilImage = errors.New("nil image")
)
