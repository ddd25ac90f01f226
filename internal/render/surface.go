// Package render is the software drawing host behind the canvas adapter.
// It keeps canvas surfaces in a registry, holds the 2D context state of
// each surface and paints paths, text and images into a straight-alpha
// pixmap using gg for rasterization, brushes, blend modes and fonts.
package render

import (
	"image"
	"math"
	"sync"

	"github.com/gogpu/gg"
)

// DefaultWidth and DefaultHeight are the size of a canvas element that
// was created without explicit dimensions.
const (
	DefaultWidth  = 300
	DefaultHeight = 150
)

// Surface is a drawing target with a single 2D context.
type Surface struct {
	mu     sync.Mutex
	id     string
	width  float64
	height float64
	pix    *gg.Pixmap
	ctx    *Context
}

// NewSurface creates an unregistered surface of the given size.
func NewSurface(id string, width, height float64) *Surface {
	s := &Surface{id: id, width: width, height: height}
	s.pix = gg.NewPixmap(backingSize(width), backingSize(height))
	s.ctx = newContext(s)
	return s
}

// backingSize converts a declared dimension into pixmap pixels. The
// backing store never drops below one pixel.
func backingSize(v float64) int {
	if math.IsNaN(v) || v < 1 {
		return 1
	}
	return int(v)
}

// ID returns the surface identifier.
func (s *Surface) ID() string {
	return s.id
}

// Context returns the surface's 2D context. Every call returns the same
// context.
func (s *Surface) Context() *Context {
	return s.ctx
}

// Width returns the declared width.
func (s *Surface) Width() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width
}

// Height returns the declared height.
func (s *Surface) Height() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.height
}

// SetWidth resizes the surface. Like a canvas element, any assignment
// clears the pixels and resets the context state.
func (s *Surface) SetWidth(w float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = w
	s.reallocLocked()
}

// SetHeight resizes the surface, clearing it.
func (s *Surface) SetHeight(h float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.height = h
	s.reallocLocked()
}

func (s *Surface) reallocLocked() {
	s.pix = gg.NewPixmap(backingSize(s.width), backingSize(s.height))
	s.ctx.resetLocked()
	logger().Debug("surface resized", "id", s.id, "width", s.width, "height", s.height)
}

// PixelSize returns the backing store size in pixels.
func (s *Surface) PixelSize() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pix.Width(), s.pix.Height()
}

// Snapshot copies the surface into a straight-alpha image.
func (s *Surface) Snapshot() *image.NRGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, h := s.pix.Width(), s.pix.Height()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	copy(img.Pix, s.pix.Data())
	return img
}

// CopyPremultiplied writes the surface into dst as premultiplied RGBA.
// dst must hold width*height*4 bytes.
func (s *Surface) CopyPremultiplied(dst []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.pix.Data()
	for i := 0; i+3 < len(src) && i+3 < len(dst); i += 4 {
		dst[i], dst[i+1], dst[i+2], dst[i+3] = premulBytes(src[i], src[i+1], src[i+2], src[i+3])
	}
}

// Checkpoint is a copy of a surface's size, pixels and context state.
type Checkpoint struct {
	width, height float64
	pw, ph        int
	pix           []byte
	st            drawState
	stack         []drawState
	path          *Path
}

// Checkpoint captures the surface so Rollback can return to it.
func (s *Surface) Checkpoint() *Checkpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &Checkpoint{
		width:  s.width,
		height: s.height,
		pw:     s.pix.Width(),
		ph:     s.pix.Height(),
		pix:    append([]byte(nil), s.pix.Data()...),
		st:     s.ctx.st.clone(),
		stack:  cloneStates(s.ctx.stack),
		path:   s.ctx.path.Clone(),
	}
}

// Rollback restores the size, pixels and context state held by cp.
func (s *Surface) Rollback(cp *Checkpoint) {
	if cp == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = cp.width, cp.height
	if s.pix.Width() != cp.pw || s.pix.Height() != cp.ph {
		s.pix = gg.NewPixmap(cp.pw, cp.ph)
	}
	copy(s.pix.Data(), cp.pix)
	s.ctx.st = cp.st.clone()
	s.ctx.stack = cloneStates(cp.stack)
	s.ctx.path = cp.path.Clone()
}

func cloneStates(states []drawState) []drawState {
	if states == nil {
		return nil
	}
	out := make([]drawState, len(states))
	for i, st := range states {
		out[i] = st.clone()
	}
	return out
}
