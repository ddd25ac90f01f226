package canvas

import (
	"image"
	"io"

	"github.com/opd-ai/go-canvas/internal/render"
)

// CanvasElement is a handle to a registered drawing surface.
type CanvasElement struct {
	s *render.Surface
}

// GetCanvasElementByID returns the surface registered under id. The second
// result is false when there is none.
func GetCanvasElementByID(id string) (*CanvasElement, bool) {
	s, ok := render.DefaultRegistry().Lookup(id)
	if !ok {
		return nil, false
	}
	return &CanvasElement{s: s}, true
}

// NewCanvas registers a new surface of the given size and returns its
// handle. It fails if id is already taken.
func NewCanvas(id string, width, height float64) (*CanvasElement, error) {
	s, err := render.DefaultRegistry().Create(id, width, height)
	if err != nil {
		return nil, err
	}
	return &CanvasElement{s: s}, nil
}

// RemoveCanvas unregisters a surface. Handles already obtained keep
// working but can no longer be looked up.
func RemoveCanvas(id string) bool {
	return render.DefaultRegistry().Remove(id)
}

// CanvasIDs lists the registered surface identifiers.
func CanvasIDs() []string {
	return render.DefaultRegistry().IDs()
}

// ID returns the identifier the surface is registered under.
func (e *CanvasElement) ID() string {
	return e.s.ID()
}

// Context2D returns the surface's drawing context. Every call returns a
// handle to the same underlying state.
func (e *CanvasElement) Context2D() *Context2D {
	return &Context2D{c: e.s.Context(), el: e}
}

// Width returns the declared width.
func (e *CanvasElement) Width() float64 {
	return e.s.Width()
}

// SetWidth sets the width. The surface is cleared and the context state
// reset.
func (e *CanvasElement) SetWidth(w float64) *CanvasElement {
	e.s.SetWidth(w)
	return e
}

// Height returns the declared height.
func (e *CanvasElement) Height() float64 {
	return e.s.Height()
}

// SetHeight sets the height. The surface is cleared and the context state
// reset.
func (e *CanvasElement) SetHeight(h float64) *CanvasElement {
	e.s.SetHeight(h)
	return e
}

// Dimensions returns the declared width and height.
func (e *CanvasElement) Dimensions() Dimensions {
	return Dimensions{Width: e.Width(), Height: e.Height()}
}

// SetDimensions applies the height and then the width.
func (e *CanvasElement) SetDimensions(d Dimensions) *CanvasElement {
	return e.SetHeight(d.Height).SetWidth(d.Width)
}

// ToDataURL returns the surface contents as a PNG data URL.
func (e *CanvasElement) ToDataURL() string {
	return e.ToDataURLType(render.MimePNG, -1)
}

// ToDataURLType encodes the surface as the given image type. image/jpeg
// honours quality in [0, 1]; every other type is encoded as PNG. An
// encoding failure yields "data:,".
func (e *CanvasElement) ToDataURLType(mime string, quality float64) string {
	url, err := render.EncodeDataURL(e.s.Snapshot(), mime, quality)
	if err != nil {
		return "data:,"
	}
	return url
}

// Snapshot copies the surface into a straight-alpha image.
func (e *CanvasElement) Snapshot() *image.NRGBA {
	return e.s.Snapshot()
}

// PixelSize returns the backing store size in whole pixels.
func (e *CanvasElement) PixelSize() (int, int) {
	return e.s.PixelSize()
}

// CopyPremultiplied writes the pixels as premultiplied RGBA into dst,
// which must hold PixelSize width*height*4 bytes.
func (e *CanvasElement) CopyPremultiplied(dst []byte) {
	e.s.CopyPremultiplied(dst)
}

// Encode writes the surface to w as image/png or image/jpeg. quality
// applies to JPEG and is in [0, 1].
func (e *CanvasElement) Encode(w io.Writer, mime string, quality float64) error {
	_, err := render.EncodeImage(w, e.s.Snapshot(), mime, quality)
	return err
}

// Checkpoint holds a surface's size, pixels and context state.
type Checkpoint struct {
	cp *render.Checkpoint
}

// Checkpoint captures the surface for a later Rollback.
func (e *CanvasElement) Checkpoint() Checkpoint {
	return Checkpoint{cp: e.s.Checkpoint()}
}

// Rollback returns the surface to the state held by cp. A zero Checkpoint
// does nothing.
func (e *CanvasElement) Rollback(cp Checkpoint) *CanvasElement {
	e.s.Rollback(cp.cp)
	return e
}
