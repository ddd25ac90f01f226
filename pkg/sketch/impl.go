package sketch

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	rt "github.com/arnodel/golua/runtime"

	"github.com/opd-ai/go-canvas/internal/config"
	"github.com/opd-ai/go-canvas/internal/lua"
	"github.com/opd-ai/go-canvas/internal/render"
	"github.com/opd-ai/go-canvas/pkg/canvas"
)

// Globals set for every script.
const (
	globalSurface = "surface"
	globalContext = "ctx"
)

// sketchImpl is the private implementation of the Sketch interface.
type sketchImpl struct {
	configPath string
	opts       Options
	logger     Logger
	metrics    *Metrics

	// Image loads started by scripts end when the sketch is closed.
	baseCtx    context.Context
	baseCancel context.CancelFunc

	// mu guards the loaded sketch. Every Lua call happens under mu.
	mu      sync.Mutex
	cfg     *config.Config
	el      *canvas.CanvasElement
	ctx2d   *canvas.Context2D
	runtime *lua.Runtime
	module  *lua.CanvasModule
	hooks   *lua.Hooks
	frame   uint64
	closed  bool

	// runMu guards the loop handles.
	runMu   sync.Mutex
	running atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
	wg      sync.WaitGroup

	lastError    atomic.Value // stores errorBox
	errorHandler atomic.Value // stores ErrorHandler
}

type errorBox struct{ err error }

// Verify interface implementation at compile time.
var _ Sketch = (*sketchImpl)(nil)

func newSketch(configPath string, opts Options) *sketchImpl {
	if opts.Logger == nil {
		opts.Logger = NopLogger()
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}
	if a, ok := opts.Logger.(*SlogAdapter); ok {
		render.SetLogger(a.Slog())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	close(done)
	return &sketchImpl{
		configPath: configPath,
		opts:       opts,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		baseCtx:    ctx,
		baseCancel: cancel,
		done:       done,
	}
}

// loadConfig reads the config file and applies the option overrides.
func (s *sketchImpl) loadConfig() (*config.Config, error) {
	cfg, result, err := config.Load(s.configPath)
	if result != nil {
		for _, w := range result.Warnings {
			s.logger.Warn("config warning", "field", w.Field, "message", w.Message)
		}
	}
	if err != nil {
		return nil, newError(ErrorCategoryConfig, err)
	}

	if s.opts.Output != "" {
		cfg.Output = s.opts.Output
	}
	if s.opts.Preview {
		cfg.Preview = true
	}
	if s.opts.Headless {
		cfg.Preview = false
	}
	if s.opts.Watch {
		cfg.Watch = true
	}
	if s.opts.LuaCPULimit > 0 {
		cfg.CPULimit = s.opts.LuaCPULimit
	}
	if s.opts.LuaMemoryLimit > 0 {
		cfg.MemoryLimit = s.opts.LuaMemoryLimit
	}
	return cfg, nil
}

// load prepares the surface, runs the script and its setup hook, and
// swaps the result in. On failure the previous runtime stays in place and
// a reused surface is rolled back to its pixels and drawing state.
func (s *sketchImpl) load(cfg *config.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	var saved canvas.Checkpoint
	if s.el != nil && s.el.ID() == cfg.ID {
		saved = s.el.Checkpoint()
	}
	el, err := s.surfaceFor(cfg)
	if err != nil {
		return newError(ErrorCategoryRender, err)
	}
	created := el != s.el
	fail := func(err error) error {
		if created {
			canvas.RemoveCanvas(el.ID())
		} else {
			el.Rollback(saved)
		}
		return newError(ErrorCategoryScript, err)
	}
	ctx2d := el.Context2D()
	paintBackground(ctx2d, el, cfg.Background)
	if cfg.Font != "" {
		ctx2d.SetFont(cfg.Font)
	}

	runtime, err := lua.New(lua.RuntimeConfig{
		CPULimit:    cfg.CPULimit,
		MemoryLimit: cfg.MemoryLimit,
	})
	if err != nil {
		return fail(err)
	}
	module, hooks, err := s.prepare(runtime, el, ctx2d, cfg)
	s.forwardOutput(runtime)
	if err != nil {
		runtime.Close()
		return fail(err)
	}

	if s.runtime != nil {
		s.runtime.Close()
	}
	if created && s.el != nil {
		canvas.RemoveCanvas(s.el.ID())
	}
	s.cfg = cfg
	s.el = el
	s.ctx2d = ctx2d
	s.runtime = runtime
	s.module = module
	s.hooks = hooks
	s.frame = 0
	return nil
}

// surfaceFor reuses the current surface when the id is unchanged and
// registers a new one otherwise. The caller unregisters whichever surface
// ends up unused. s.mu must be held.
func (s *sketchImpl) surfaceFor(cfg *config.Config) (*canvas.CanvasElement, error) {
	dims := canvas.Dimensions{Width: cfg.Width, Height: cfg.Height}
	if s.el != nil && s.el.ID() == cfg.ID {
		return s.el.SetDimensions(dims), nil
	}
	el, err := canvas.NewCanvas(cfg.ID, dims.Width, dims.Height)
	if err != nil {
		return nil, fmt.Errorf("create surface %q: %w", cfg.ID, err)
	}
	return el, nil
}

func (s *sketchImpl) prepare(runtime *lua.Runtime, el *canvas.CanvasElement, ctx2d *canvas.Context2D, cfg *config.Config) (*lua.CanvasModule, *lua.Hooks, error) {
	module, err := lua.NewCanvasModule(runtime, lua.WithLoadContext(s.baseCtx))
	if err != nil {
		return nil, nil, err
	}
	hooks, err := lua.NewHooks(runtime)
	if err != nil {
		return nil, nil, err
	}
	runtime.SetGlobal(globalSurface, module.Element(el))
	runtime.SetGlobal(globalContext, module.Context(ctx2d))

	if _, err := runtime.ExecuteFile(cfg.Script); err != nil {
		return nil, nil, err
	}
	if _, err := hooks.Call(lua.HookSetup, module.Context(ctx2d)); err != nil {
		return nil, nil, err
	}
	return module, hooks, nil
}

// paintBackground clears the surface and fills it with background, leaving
// the drawing state untouched.
func paintBackground(ctx2d *canvas.Context2D, el *canvas.CanvasElement, background string) {
	canvas.WithContext(ctx2d, func() struct{} {
		full := canvas.Rectangle{W: el.Width(), H: el.Height()}
		ctx2d.ResetTransform().ClearRect(full)
		if background != "" {
			ctx2d.SetGlobalAlpha(1).
				SetGlobalCompositeOperation(canvas.CompositeSourceOver).
				SetFillStyle(background).
				FillRect(full)
		}
		return struct{}{}
	})
}

// forwardOutput logs what the script printed since the last call.
func (s *sketchImpl) forwardOutput(runtime *lua.Runtime) {
	out := runtime.Output()
	if out == "" {
		return
	}
	runtime.ClearOutput()
	for line := range strings.Lines(out) {
		s.logger.Info("script output", "line", strings.TrimRight(line, "\n"))
	}
}

// drawFrameLocked redraws the surface through the draw hook. Sketches
// without one keep what their top level drew. s.mu must be held.
func (s *sketchImpl) drawFrameLocked() error {
	if s.closed {
		return ErrClosed
	}
	if !s.hooks.Defined(lua.HookDraw) {
		return nil
	}
	start := time.Now()
	paintBackground(s.ctx2d, s.el, s.cfg.Background)
	frame := s.frame
	s.frame++
	_, err := s.hooks.Call(lua.HookDraw, s.module.Context(s.ctx2d), rt.IntValue(int64(frame)))
	s.forwardOutput(s.runtime)
	s.metrics.recordFrame(time.Since(start))
	return newError(ErrorCategoryScript, err)
}

func (s *sketchImpl) drawFrame() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawFrameLocked()
}

// Render draws one frame and writes the configured output.
func (s *sketchImpl) Render() error {
	s.mu.Lock()
	err := s.drawFrameLocked()
	if err == nil {
		err = s.writeOutputLocked()
	}
	s.mu.Unlock()
	if err != nil {
		s.notifyError(err)
	}
	return err
}

// flush writes the output without drawing.
func (s *sketchImpl) flush() {
	s.mu.Lock()
	err := s.writeOutputLocked()
	s.mu.Unlock()
	if err != nil {
		s.notifyError(err)
	}
}

// reload re-reads the config and script. On failure the previous sketch
// keeps running.
func (s *sketchImpl) reload() error {
	cfg, err := s.loadConfig()
	if err != nil {
		return err
	}
	if err := s.load(cfg); err != nil {
		return err
	}
	s.metrics.recordReload()
	s.logger.Info("sketch reloaded", "config", s.configPath)
	return nil
}

func (s *sketchImpl) reloadAndRender() error {
	if err := s.reload(); err != nil {
		return err
	}
	return s.Render()
}

// Canvas returns the surface the sketch draws on.
func (s *sketchImpl) Canvas() *canvas.CanvasElement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.el
}

// Config returns a copy of the effective configuration.
func (s *sketchImpl) Config() config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.cfg
}

// Err returns the most recent error.
func (s *sketchImpl) Err() error {
	if box, ok := s.lastError.Load().(errorBox); ok {
		return box.err
	}
	return nil
}

// Metrics returns the metrics collector.
func (s *sketchImpl) Metrics() *Metrics {
	return s.metrics
}

// SetErrorHandler sets the callback for loop errors.
func (s *sketchImpl) SetErrorHandler(handler ErrorHandler) {
	s.errorHandler.Store(handler)
}

func (s *sketchImpl) notifyError(err error) {
	if err == nil {
		return
	}
	s.lastError.Store(errorBox{err: err})
	s.metrics.recordError(err)
	s.logger.Error("sketch error", "category", CategoryOf(err).String(), "error", err)
	if handler, ok := s.errorHandler.Load().(ErrorHandler); ok && handler != nil {
		handler(err)
	}
}

// Close stops the loop, runs teardown and releases resources.
func (s *sketchImpl) Close() error {
	stopErr := s.Stop()
	s.baseCancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return stopErr
	}
	s.closed = true

	_, err := s.hooks.Call(lua.HookTeardown, s.module.Context(s.ctx2d))
	s.forwardOutput(s.runtime)
	if closeErr := s.runtime.Close(); err == nil {
		err = closeErr
	}
	canvas.RemoveCanvas(s.el.ID())
	if stopErr != nil {
		return stopErr
	}
	return newError(ErrorCategoryScript, err)
}

// surfaceView lets the preview follow the surface across reloads.
type surfaceView struct{ s *sketchImpl }

func (v surfaceView) PixelSize() (int, int) {
	return v.s.Canvas().PixelSize()
}

func (v surfaceView) CopyPremultiplied(dst []byte) {
	el := v.s.Canvas()
	if w, h := el.PixelSize(); w*h*4 != len(dst) {
		// Resized by a reload since the buffer was sized.
		return
	}
	el.CopyPremultiplied(dst)
}

func frameInterval(fps float64) time.Duration {
	if fps <= 0 {
		fps = config.DefaultFPS
	}
	return time.Duration(float64(time.Second) / fps)
}
