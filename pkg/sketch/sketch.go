package sketch

import (
	"context"
	"fmt"

	"github.com/opd-ai/go-canvas/internal/config"
	"github.com/opd-ai/go-canvas/pkg/canvas"
)

// Sketch is a running Lua drawing script bound to one canvas surface.
type Sketch interface {
	// Start draws the first frame, writes the output and then runs the
	// preview window or watch loop in the background, if enabled.
	Start() error

	// Run is the blocking form of Start. It returns when ctx is done,
	// the preview window is closed, or immediately after the first frame
	// when neither preview nor watch is enabled. The preview window needs
	// the main goroutine on some platforms, so prefer Run there.
	Run(ctx context.Context) error

	// Stop ends the loop started by Start or Run and waits for it.
	Stop() error

	// Restart stops the loop, reloads the config and script, and starts
	// again.
	Restart() error

	// IsRunning reports whether a loop is active.
	IsRunning() bool

	// Done is closed when the current loop ends.
	Done() <-chan struct{}

	// Render draws one frame and writes the configured output.
	Render() error

	// Canvas returns the surface the sketch draws on.
	Canvas() *canvas.CanvasElement

	// Config returns a copy of the effective configuration.
	Config() config.Config

	// Err returns the most recent error, or nil.
	Err() error

	// Metrics returns the sketch's metrics collector.
	Metrics() *Metrics

	// SetErrorHandler sets a callback for errors raised by the background
	// loop. It must not block.
	SetErrorHandler(handler ErrorHandler)

	// Close stops the loop, runs the script's teardown hook and releases
	// the surface and the Lua runtime.
	Close() error
}

// ErrorHandler is a callback for runtime errors.
type ErrorHandler func(err error)

// New loads the config at configPath, creates its surface and runs its
// script once. opts may be nil.
func New(configPath string, opts *Options) (Sketch, error) {
	if opts == nil {
		defaults := DefaultOptions()
		opts = &defaults
	}

	s := newSketch(configPath, *opts)
	cfg, err := s.loadConfig()
	if err != nil {
		return nil, err
	}
	if err := s.load(cfg); err != nil {
		s.baseCancel()
		return nil, fmt.Errorf("load sketch %s: %w", configPath, err)
	}
	s.logger.Info("sketch loaded", "config", configPath, "id", cfg.ID, "script", cfg.Script)
	return s, nil
}
