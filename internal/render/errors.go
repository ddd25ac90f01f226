package render

import "errors"

var (
	// ErrInvalidColor is returned when a CSS colour string cannot be parsed.
	ErrInvalidColor = errors.New("invalid color")

	// ErrInvalidFont is returned when a CSS font shorthand cannot be parsed.
	ErrInvalidFont = errors.New("invalid font")

	// ErrUnsupportedSource is returned when an image source has an unknown scheme.
	ErrUnsupportedSource = errors.New("unsupported image source")

	// ErrSurfaceExists is returned when registering a surface id twice.
	ErrSurfaceExists = errors.New("surface already registered")

	// ErrInvalidDataURL is returned when a data: URL is malformed.
	ErrInvalidDataURL = errors.New("invalid data url")
)
