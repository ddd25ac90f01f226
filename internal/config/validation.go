package config

import (
	"fmt"
	"math"
	"strings"
)

// maxDimension is the size above which a surface draws a warning.
const maxDimension = 16384

// ValidationError describes one problem with a field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// ValidationResult collects the problems found by Validate.
type ValidationResult struct {
	// Errors make the config unusable.
	Errors []ValidationError
	// Warnings are reported but do not stop the sketch.
	Warnings []ValidationError
}

// IsValid reports whether there are no errors.
func (vr *ValidationResult) IsValid() bool {
	return len(vr.Errors) == 0
}

// Error returns the errors combined into one, wrapping ErrInvalidConfig,
// or nil if there are none.
func (vr *ValidationResult) Error() error {
	if len(vr.Errors) == 0 {
		return nil
	}
	messages := make([]string, 0, len(vr.Errors))
	for _, e := range vr.Errors {
		messages = append(messages, e.Error())
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(messages, "; "))
}

// AddError records an error.
func (vr *ValidationResult) AddError(field, message string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Message: message})
}

// AddWarning records a warning.
func (vr *ValidationResult) AddWarning(field, message string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Message: message})
}

// Validate checks cfg for values the sketch runner cannot use.
func Validate(cfg *Config) *ValidationResult {
	result := &ValidationResult{}

	if cfg.ID == "" {
		result.AddError("id", "must not be empty")
	}
	validateDimension("width", cfg.Width, result)
	validateDimension("height", cfg.Height, result)

	if cfg.Script == "" {
		result.AddError("script", "is required")
	}
	if !(cfg.FPS > 0) || math.IsInf(cfg.FPS, 0) {
		result.AddError("fps", fmt.Sprintf("must be positive, got %g", cfg.FPS))
	}

	switch {
	case cfg.Output == "", cfg.Output == OutputDataURL:
	case hasImageExt(cfg.Output):
	default:
		result.AddWarning("output", fmt.Sprintf("%q has no .png or .jpg extension, writing PNG", cfg.Output))
	}

	if cfg.CPULimit == 0 {
		result.AddWarning("cpu_limit", "unlimited")
	}
	if cfg.MemoryLimit == 0 {
		result.AddWarning("memory_limit", "unlimited")
	}
	return result
}

func validateDimension(field string, v float64, result *ValidationResult) {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0) || v <= 0:
		result.AddError(field, fmt.Sprintf("must be positive, got %g", v))
	case v > maxDimension:
		result.AddWarning(field, fmt.Sprintf("unusually large value %g", v))
	}
}

func hasImageExt(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range []string{".png", ".jpg", ".jpeg"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
