package render

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// ImageData is a detached grid of straight-alpha RGBA samples.
type ImageData struct {
	Width  int
	Height int
	Data   []uint8
}

// NewImageData allocates a transparent black buffer. Negative sizes are
// taken by magnitude.
func NewImageData(w, h int) *ImageData {
	if w < 0 {
		w = -w
	}
	if h < 0 {
		h = -h
	}
	return &ImageData{Width: w, Height: h, Data: make([]uint8, w*h*4)}
}

// Clone returns an independent copy.
func (d *ImageData) Clone() *ImageData {
	out := &ImageData{Width: d.Width, Height: d.Height, Data: make([]uint8, len(d.Data))}
	copy(out.Data, d.Data)
	return out
}

// ToImage returns the samples as an NRGBA image sharing no memory with d.
func (d *ImageData) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, d.Width, d.Height))
	copy(img.Pix, d.Data)
	return img
}

// ImageDataFromImage converts any image into straight-alpha samples.
func ImageDataFromImage(img image.Image) *ImageData {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Copy(dst, image.Point{}, img, b, xdraw.Src, nil)
	return &ImageData{Width: b.Dx(), Height: b.Dy(), Data: dst.Pix}
}

// GetImageData copies a device-space rectangle of the surface. Pixels
// outside the surface read as transparent black. The transform is ignored.
func (c *Context) GetImageData(x, y, w, h float64) *ImageData {
	x, w = normalizeSpan(x, w)
	y, h = normalizeSpan(y, h)
	ox, oy := int(math.Floor(x)), int(math.Floor(y))
	d := NewImageData(int(math.Ceil(w)), int(math.Ceil(h)))

	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	pw, ph := c.s.pix.Width(), c.s.pix.Height()
	src := c.s.pix.Data()
	for row := 0; row < d.Height; row++ {
		sy := oy + row
		if sy < 0 || sy >= ph {
			continue
		}
		for col := 0; col < d.Width; col++ {
			sx := ox + col
			if sx < 0 || sx >= pw {
				continue
			}
			si := (sy*pw + sx) * 4
			di := (row*d.Width + col) * 4
			copy(d.Data[di:di+4], src[si:si+4])
		}
	}
	return d
}

// PutImageData writes the dirty rectangle of d to the surface with its
// origin at (dx, dy). Samples replace pixels directly: transform, alpha,
// compositing, shadow and clip do not apply.
func (c *Context) PutImageData(d *ImageData, dx, dy, dirtyX, dirtyY, dirtyW, dirtyH float64) {
	if d == nil || !finite(dx, dy, dirtyX, dirtyY, dirtyW, dirtyH) {
		return
	}
	dirtyX, dirtyW = normalizeSpan(dirtyX, dirtyW)
	dirtyY, dirtyH = normalizeSpan(dirtyY, dirtyH)
	x0 := max(int(math.Floor(dirtyX)), 0)
	y0 := max(int(math.Floor(dirtyY)), 0)
	x1 := min(int(math.Floor(dirtyX+dirtyW)), d.Width)
	y1 := min(int(math.Floor(dirtyY+dirtyH)), d.Height)
	if x0 >= x1 || y0 >= y1 {
		return
	}
	ox, oy := int(math.Floor(dx)), int(math.Floor(dy))

	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	pw, ph := c.s.pix.Width(), c.s.pix.Height()
	dst := c.s.pix.Data()
	for row := y0; row < y1; row++ {
		ty := oy + row
		if ty < 0 || ty >= ph {
			continue
		}
		for col := x0; col < x1; col++ {
			tx := ox + col
			if tx < 0 || tx >= pw {
				continue
			}
			si := (row*d.Width + col) * 4
			di := (ty*pw + tx) * 4
			copy(dst[di:di+4], d.Data[si:si+4])
		}
	}
}
