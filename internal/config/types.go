// Package config loads sketch configuration files. A config is a Lua
// chunk that assigns a table to canvas.config.
package config

import (
	"path/filepath"
	"strings"
)

// OutputDataURL is the output value that prints a data URL to stdout
// instead of writing a file.
const OutputDataURL = "data-url"

// Config describes one sketch: the surface it draws on, the script that
// draws and where the result goes.
type Config struct {
	// ID is the registry id of the surface.
	ID string
	// Width and Height are the declared surface size.
	Width  float64
	Height float64
	// Script is the drawing script. After Load it is absolute or
	// relative to the working directory.
	Script string
	// Output is a .png/.jpg path, OutputDataURL, or empty for none.
	Output string
	// Background is a CSS colour painted before every frame. Empty means
	// the surface is cleared to transparent.
	Background string
	// Font is the initial CSS font of the context.
	Font string
	// Preview opens a window showing the surface.
	Preview bool
	// FPS is the redraw rate of preview and watch mode.
	FPS float64
	// Watch reloads the config and script when they change.
	Watch bool
	// CPULimit and MemoryLimit bound each script call. 0 means unlimited.
	CPULimit    uint64
	MemoryLimit uint64

	// Path is the file the config was loaded from, if any.
	Path string
}

// Dir returns the directory of the config file, or "." for configs not
// loaded from disk.
func (c *Config) Dir() string {
	if c.Path == "" {
		return "."
	}
	return filepath.Dir(c.Path)
}

// OutputFormat returns the MIME type implied by Output.
func (c *Config) OutputFormat() string {
	switch strings.ToLower(filepath.Ext(c.Output)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "image/png"
	}
}

// WatchPaths lists the files whose changes trigger a reload.
func (c *Config) WatchPaths() []string {
	var paths []string
	if c.Path != "" {
		paths = append(paths, c.Path)
	}
	if c.Script != "" {
		paths = append(paths, c.Script)
	}
	return paths
}
