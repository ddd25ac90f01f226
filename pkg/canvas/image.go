package canvas

import (
	"context"
	"image"
	"sync"

	"github.com/anthonynsimon/bild/clone"

	"github.com/opd-ai/go-canvas/internal/render"
)

// ImageSource is a decoded image that can be drawn onto a surface.
type ImageSource struct {
	src string
	img *image.RGBA
}

// NewImageSource wraps an in-memory image. The pixels are copied.
func NewImageSource(img image.Image) (*ImageSource, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	return &ImageSource{img: clone.AsRGBA(img)}, nil
}

// Src returns the path or URL the image was loaded from, or "" for
// in-memory images.
func (s *ImageSource) Src() string {
	return s.src
}

// Width returns the natural width in pixels.
func (s *ImageSource) Width() int {
	return s.img.Bounds().Dx()
}

// Height returns the natural height in pixels.
func (s *ImageSource) Height() int {
	return s.img.Bounds().Dy()
}

// Image returns the decoded pixels.
func (s *ImageSource) Image() image.Image {
	return s.img
}

// ImageResult is the outcome of an asynchronous load.
type ImageResult struct {
	Image *ImageSource
	Err   error
}

var (
	imageCacheOnce sync.Once
	imageCache     *render.ImageCache
)

func defaultImageCache() *render.ImageCache {
	imageCacheOnce.Do(func() {
		imageCache = render.NewImageCache(nil)
	})
	return imageCache
}

// LoadImage loads and decodes src, which may be a file path, an http(s)
// URL or a data URL. Decoded images are cached by src.
func LoadImage(ctx context.Context, src string) (*ImageSource, error) {
	img, err := defaultImageCache().Load(ctx, src)
	if err != nil {
		return nil, err
	}
	return &ImageSource{src: src, img: clone.AsRGBA(img)}, nil
}

// LoadImageAsync loads src on a new goroutine and calls done with the
// result. Exactly one of the arguments to done is non-nil.
func LoadImageAsync(src string, done func(*ImageSource, error)) {
	go func() {
		img, err := LoadImage(context.Background(), src)
		done(img, err)
	}()
}

// LoadImageFuture loads src on a new goroutine. The returned channel
// receives exactly one result and is then closed.
func LoadImageFuture(src string) <-chan ImageResult {
	ch := make(chan ImageResult, 1)
	LoadImageAsync(src, func(img *ImageSource, err error) {
		ch <- ImageResult{Image: img, Err: err}
		close(ch)
	})
	return ch
}

// DrawImage draws img at its natural size with its top-left corner at
// (dx, dy).
func (ctx *Context2D) DrawImage(img *ImageSource, dx, dy float64) *Context2D {
	if img == nil {
		return ctx
	}
	w, h := float64(img.Width()), float64(img.Height())
	return ctx.DrawImageFull(img, 0, 0, w, h, dx, dy, w, h)
}

// DrawImageScale draws img scaled into the rectangle (dx, dy, dw, dh).
func (ctx *Context2D) DrawImageScale(img *ImageSource, dx, dy, dw, dh float64) *Context2D {
	if img == nil {
		return ctx
	}
	return ctx.DrawImageFull(img, 0, 0, float64(img.Width()), float64(img.Height()), dx, dy, dw, dh)
}

// DrawImageFull draws the source rectangle (sx, sy, sw, sh) of img into the
// destination rectangle (dx, dy, dw, dh).
func (ctx *Context2D) DrawImageFull(img *ImageSource, sx, sy, sw, sh, dx, dy, dw, dh float64) *Context2D {
	if img == nil {
		return ctx
	}
	ctx.c.DrawImage(img.img, sx, sy, sw, sh, dx, dy, dw, dh)
	return ctx
}
