package config

// Default values for configuration options.
const (
	// DefaultID is the surface id used when the config names none.
	DefaultID = "canvas"
	// DefaultWidth and DefaultHeight match an HTML canvas element.
	DefaultWidth  = 300
	DefaultHeight = 150
	// DefaultFont is the initial font of a 2D context.
	DefaultFont = "10px sans-serif"
	// DefaultFPS is the redraw rate of preview and watch mode.
	DefaultFPS = 30
	// DefaultCPULimit is the instruction budget for one script call.
	DefaultCPULimit = 10_000_000
	// DefaultMemoryLimit is the allocation budget for one script call.
	DefaultMemoryLimit = 50 * 1024 * 1024
)

// DefaultConfig returns a Config with default values and no script.
func DefaultConfig() Config {
	return Config{
		ID:          DefaultID,
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		Font:        DefaultFont,
		FPS:         DefaultFPS,
		CPULimit:    DefaultCPULimit,
		MemoryLimit: DefaultMemoryLimit,
	}
}
