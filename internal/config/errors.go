package config

import "errors"

// ErrInvalidConfig is wrapped by every error about config contents.
var ErrInvalidConfig = errors.New("invalid config")
