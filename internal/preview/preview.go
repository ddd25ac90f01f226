// Package preview shows a drawing surface in an Ebiten window and drives a
// per-tick frame callback.
package preview

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// ErrTerminated is returned by Update once the preview's context is done.
var ErrTerminated = errors.New("preview terminated")

// DefaultTPS is the tick rate used when Config.TPS is not positive.
const DefaultTPS = 30

// Surface is the pixel source shown in the window.
type Surface interface {
	PixelSize() (int, int)
	CopyPremultiplied(dst []byte)
}

// FrameFunc is called once per tick with a counter starting at zero.
type FrameFunc func(frame uint64) error

// ErrorHandler receives frame errors. It must not block.
type ErrorHandler func(err error)

// DefaultErrorHandler writes errors to stderr.
func DefaultErrorHandler(err error) {
	fmt.Fprintf(os.Stderr, "preview frame error: %v\n", err)
}

// Config holds window settings.
type Config struct {
	Title string
	TPS   int
}

// TPSFromFPS rounds a frame rate to a tick rate, falling back to
// DefaultTPS for non-positive or non-finite values.
func TPSFromFPS(fps float64) int {
	if math.IsNaN(fps) || math.IsInf(fps, 0) || fps <= 0 {
		return DefaultTPS
	}
	return max(int(math.Round(fps)), 1)
}

// Game implements ebiten.Game over a Surface.
type Game struct {
	config       Config
	surface      Surface
	frameFunc    FrameFunc
	errorHandler ErrorHandler
	ctx          context.Context
	frame        uint64

	mu      sync.Mutex
	pix     []byte
	img     *ebiten.Image
	imgW    int
	imgH    int
	running bool
}

// New returns a Game showing surface.
func New(surface Surface, config Config) *Game {
	if config.TPS <= 0 {
		config.TPS = DefaultTPS
	}
	if config.Title == "" {
		config.Title = "canvas-go"
	}
	return &Game{
		config:       config,
		surface:      surface,
		errorHandler: DefaultErrorHandler,
	}
}

// SetFrameFunc sets the callback run on every Update.
func (g *Game) SetFrameFunc(fn FrameFunc) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.frameFunc = fn
}

// SetErrorHandler sets the handler for frame errors. nil drops them.
func (g *Game) SetErrorHandler(handler ErrorHandler) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.errorHandler = handler
}

// SetContext ends the game loop when ctx is cancelled.
func (g *Game) SetContext(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ctx = ctx
}

// Config returns the window settings.
func (g *Game) Config() Config {
	return g.config
}

// Frame returns the number of frames run so far.
func (g *Game) Frame() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.frame
}

// Update implements ebiten.Game.Update.
func (g *Game) Update() error {
	g.mu.Lock()
	ctx, fn, handler, frame := g.ctx, g.frameFunc, g.errorHandler, g.frame
	g.frame++
	g.mu.Unlock()

	if ctx != nil {
		select {
		case <-ctx.Done():
			return ErrTerminated
		default:
		}
	}
	// The frame callback draws on the surface, which has its own lock.
	if fn != nil {
		if err := fn(frame); err != nil && handler != nil {
			handler(err)
		}
	}
	return nil
}

// Draw implements ebiten.Game.Draw.
func (g *Game) Draw(screen *ebiten.Image) {
	g.mu.Lock()
	defer g.mu.Unlock()

	pix, w, h := g.refresh()
	if w == 0 || h == 0 {
		return
	}
	if g.img == nil || g.imgW != w || g.imgH != h {
		if g.img != nil {
			g.img.Deallocate()
		}
		g.img = ebiten.NewImage(w, h)
		g.imgW, g.imgH = w, h
	}
	g.img.WritePixels(pix)
	screen.Clear()
	screen.DrawImage(g.img, nil)
}

// refresh copies the surface into the pixel buffer, growing it when the
// surface was resized. g.mu must be held.
func (g *Game) refresh() ([]byte, int, int) {
	w, h := g.surface.PixelSize()
	if w <= 0 || h <= 0 {
		return nil, 0, 0
	}
	if n := w * h * 4; len(g.pix) != n {
		g.pix = make([]byte, n)
	}
	g.surface.CopyPremultiplied(g.pix)
	return g.pix, w, h
}

// Layout implements ebiten.Game.Layout. The logical screen is always the
// surface size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := g.surface.PixelSize()
	return max(w, 1), max(h, 1)
}

// Run opens the window and blocks until it is closed or the context is
// cancelled. Cancellation is reported as a nil error.
func (g *Game) Run() error {
	w, h := g.Layout(0, 0)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(g.config.Title)
	ebiten.SetTPS(g.config.TPS)

	g.mu.Lock()
	g.running = true
	g.mu.Unlock()

	err := ebiten.RunGame(g)

	g.mu.Lock()
	g.running = false
	g.mu.Unlock()

	if errors.Is(err, ErrTerminated) {
		return nil
	}
	return err
}

// IsRunning reports whether the window is open.
func (g *Game) IsRunning() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}
