package sketch

import (
	"io"
	"time"
)

// DefaultShutdownTimeout is the default timeout for graceful shutdown.
// This can be overridden via Options.ShutdownTimeout.
const DefaultShutdownTimeout = 5 * time.Second

// Options adjusts a sketch on top of its configuration file.
type Options struct {
	// Output overrides the config's output: a .png or .jpg path, or
	// "data-url" to print a data URL to Stdout.
	Output string

	// Preview forces the preview window on.
	Preview bool

	// Headless forces the preview window off. It wins over Preview and
	// the config file.
	Headless bool

	// Watch forces hot reloading on.
	Watch bool

	// WatchDebounce sets the debounce interval for file change events.
	// Zero means use DefaultWatchDebounce.
	WatchDebounce time.Duration

	// LuaCPULimit overrides the config's Lua instruction limit when
	// non-zero.
	LuaCPULimit uint64

	// LuaMemoryLimit overrides the config's Lua memory limit in bytes
	// when non-zero.
	LuaMemoryLimit uint64

	// ShutdownTimeout sets the maximum time Stop waits for the loop.
	// Zero means use DefaultShutdownTimeout.
	ShutdownTimeout time.Duration

	// Stdout receives data URL output. nil means os.Stdout.
	Stdout io.Writer

	// Logger receives lifecycle messages and script print output.
	// If nil, no logging is performed.
	Logger Logger

	// Metrics collects frame, output and error counts. If nil, a private
	// collector is used; read it with Sketch.Metrics.
	Metrics *Metrics
}

// DefaultOptions returns Options that defer to the config file.
func DefaultOptions() Options {
	return Options{}
}

// Logger interface for custom logging.
// It follows the slog-style signature for compatibility with Go's structured logging.
type Logger interface {
	// Debug logs a debug-level message with optional key-value pairs.
	Debug(msg string, args ...any)
	// Info logs an info-level message with optional key-value pairs.
	Info(msg string, args ...any)
	// Warn logs a warning-level message with optional key-value pairs.
	Warn(msg string, args ...any)
	// Error logs an error-level message with optional key-value pairs.
	Error(msg string, args ...any)
}
