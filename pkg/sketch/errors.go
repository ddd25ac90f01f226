package sketch

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning is returned by Start and Run while the loop runs.
	ErrAlreadyRunning = errors.New("sketch already running")
	// ErrClosed is returned by operations on a closed sketch.
	ErrClosed = errors.New("sketch closed")
)

// ErrorCategory classifies sketch errors by the stage that failed.
type ErrorCategory int

const (
	// ErrorCategoryUnknown is the default category for uncategorized errors.
	ErrorCategoryUnknown ErrorCategory = iota
	// ErrorCategoryConfig is for configuration parsing and validation errors.
	ErrorCategoryConfig
	// ErrorCategoryScript is for Lua script loading and execution errors.
	ErrorCategoryScript
	// ErrorCategoryRender is for surface and preview window errors.
	ErrorCategoryRender
	// ErrorCategoryIO is for output, file watching and other I/O errors.
	ErrorCategoryIO
)

// String returns a human-readable name for the error category.
func (c ErrorCategory) String() string {
	switch c {
	case ErrorCategoryConfig:
		return "config"
	case ErrorCategoryScript:
		return "script"
	case ErrorCategoryRender:
		return "render"
	case ErrorCategoryIO:
		return "io"
	default:
		return "unknown"
	}
}

// SketchError is an error tagged with the stage that produced it.
type SketchError struct {
	Err      error
	Category ErrorCategory
}

// Error implements the error interface.
func (e *SketchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: (no error)", e.Category)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Err.Error())
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *SketchError) Unwrap() error {
	return e.Err
}

// newError tags err with category. A nil err stays nil and an error that
// already carries a category keeps it.
func newError(category ErrorCategory, err error) error {
	if err == nil {
		return nil
	}
	var se *SketchError
	if errors.As(err, &se) {
		return err
	}
	return &SketchError{Err: err, Category: category}
}

// CategoryOf returns the category of the first SketchError in err's chain.
func CategoryOf(err error) ErrorCategory {
	var se *SketchError
	if errors.As(err, &se) {
		return se.Category
	}
	return ErrorCategoryUnknown
}
