package lua

import "errors"

var (
	// ErrNilRuntime is returned when a nil runtime is passed to a constructor.
	ErrNilRuntime = errors.New("runtime cannot be nil")

	// ErrNilClosure is returned by Execute for a nil chunk.
	ErrNilClosure = errors.New("closure cannot be nil")

	// ErrFunctionNotFound is returned when a called global is unset.
	ErrFunctionNotFound = errors.New("function not found")

	// ErrSurfaceNotFound is returned when a script names an unknown canvas.
	ErrSurfaceNotFound = errors.New("canvas not found")

	// ErrInvalidArgument is returned for arguments of the wrong type.
	ErrInvalidArgument = errors.New("invalid argument")
)
