package canvas

import "github.com/opd-ai/go-canvas/internal/render"

// ImageData is a rectangular buffer of straight-alpha RGBA samples,
// detached from any surface.
type ImageData struct {
	d *render.ImageData
}

// Width returns the buffer width in pixels.
func (img *ImageData) Width() int {
	return img.d.Width
}

// Height returns the buffer height in pixels.
func (img *ImageData) Height() int {
	return img.d.Height
}

// Data returns the samples, four bytes per pixel in row-major order.
// Writes through the slice modify the buffer.
func (img *ImageData) Data() []uint8 {
	return img.d.Data
}

// GetImageData copies a rectangle of surface pixels. The transform does
// not apply; pixels outside the surface read as transparent black.
func (ctx *Context2D) GetImageData(r Rectangle) *ImageData {
	return &ImageData{d: ctx.c.GetImageData(r.X, r.Y, r.W, r.H)}
}

// PutImageData writes every pixel of img to the surface with its top-left
// corner at (dx, dy).
func (ctx *Context2D) PutImageData(img *ImageData, dx, dy float64) *Context2D {
	if img == nil {
		return ctx
	}
	return ctx.PutImageDataDirty(img, dx, dy, 0, 0, float64(img.d.Width), float64(img.d.Height))
}

// PutImageDataDirty writes the rectangle (dirtyX, dirtyY, dirtyW, dirtyH)
// of img, positioned as if img's origin were at (dx, dy).
func (ctx *Context2D) PutImageDataDirty(img *ImageData, dx, dy, dirtyX, dirtyY, dirtyW, dirtyH float64) *Context2D {
	if img == nil {
		return ctx
	}
	ctx.c.PutImageData(img.d, dx, dy, dirtyX, dirtyY, dirtyW, dirtyH)
	return ctx
}

// CreateImageData returns a transparent black buffer. Fractional sizes are
// truncated and negative sizes are taken by magnitude.
func (ctx *Context2D) CreateImageData(w, h float64) *ImageData {
	return &ImageData{d: render.NewImageData(int(w), int(h))}
}

// CreateImageDataCopy returns a new buffer with the size and samples of
// img. The copy shares no memory with img. A nil img yields nil.
func (ctx *Context2D) CreateImageDataCopy(img *ImageData) *ImageData {
	if img == nil || img.d == nil {
		return nil
	}
	return &ImageData{d: img.d.Clone()}
}
