package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	// Register stdlib decoders alongside the x/image ones below.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/sync/singleflight"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageLoader decodes images from file paths, http(s) URLs and data URLs.
type ImageLoader struct {
	client *http.Client
}

// DefaultFetchTimeout bounds http(s) loads made with the default client.
const DefaultFetchTimeout = 30 * time.Second

// NewImageLoader creates a loader. A nil client gets a client with
// DefaultFetchTimeout.
func NewImageLoader(client *http.Client) *ImageLoader {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	return &ImageLoader{client: client}
}

// Load fetches and decodes src.
func (il *ImageLoader) Load(ctx context.Context, src string) (image.Image, error) {
	rc, err := il.open(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("load image %q: %w", shortSource(src), err)
	}
	defer rc.Close()

	img, format, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("decode image %q: %w", shortSource(src), err)
	}
	logger().Debug("image decoded", "source", shortSource(src), "format", format,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return img, nil
}

func (il *ImageLoader) open(ctx context.Context, src string) (io.ReadCloser, error) {
	switch {
	case strings.HasPrefix(src, "data:"):
		data, _, err := DecodeDataURL(src)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(data)), nil

	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, err
		}
		resp, err := il.client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("http status %s", resp.Status)
		}
		return resp.Body, nil

	case strings.Contains(src, "://") && !strings.HasPrefix(src, "file://"):
		return nil, ErrUnsupportedSource
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(strings.TrimPrefix(src, "file://"))
}

// shortSource trims data URLs for log and error messages.
func shortSource(src string) string {
	if len(src) > 64 && strings.HasPrefix(src, "data:") {
		return src[:64] + "..."
	}
	return src
}

// ImageCache memoizes decoded images by source string. Concurrent loads
// of one source share a single fetch.
type ImageCache struct {
	loader *ImageLoader
	mu     sync.RWMutex
	cache  map[string]image.Image
	flight singleflight.Group
}

// NewImageCache creates a cache on top of a loader.
func NewImageCache(loader *ImageLoader) *ImageCache {
	if loader == nil {
		loader = NewImageLoader(nil)
	}
	return &ImageCache{loader: loader, cache: make(map[string]image.Image)}
}

func (ic *ImageCache) lookup(src string) (image.Image, bool) {
	ic.mu.RLock()
	defer ic.mu.RUnlock()
	img, ok := ic.cache[src]
	return img, ok
}

// Load returns the cached image for src, decoding it on first use. No
// lock is held while fetching, so a slow source never delays other
// sources. A caller whose ctx ends stops waiting; the shared fetch itself
// runs to completion, bounded by the loader's client.
func (ic *ImageCache) Load(ctx context.Context, src string) (image.Image, error) {
	if img, ok := ic.lookup(src); ok {
		return img, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load image %q: %w", shortSource(src), err)
	}

	fetch := context.WithoutCancel(ctx)
	ch := ic.flight.DoChan(src, func() (any, error) {
		if img, ok := ic.lookup(src); ok {
			return img, nil
		}
		img, err := ic.loader.Load(fetch, src)
		if err != nil {
			return nil, err
		}
		ic.mu.Lock()
		ic.cache[src] = img
		ic.mu.Unlock()
		return img, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load image %q: %w", shortSource(src), ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(image.Image), nil
	}
}

// Remove evicts src.
func (ic *ImageCache) Remove(src string) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	delete(ic.cache, src)
}

// Len returns the number of cached images.
func (ic *ImageCache) Len() int {
	ic.mu.RLock()
	defer ic.mu.RUnlock()
	return len(ic.cache)
}

// DrawImage draws the source rectangle (sx, sy, sw, sh) of img into the
// destination rectangle (dx, dy, dw, dh) under the current transform.
// Negative sizes flip the rectangle; zero sizes draw nothing.
func (c *Context) DrawImage(img image.Image, sx, sy, sw, sh, dx, dy, dw, dh float64) {
	if img == nil || !finite(sx, sy, sw, sh, dx, dy, dw, dh) {
		return
	}
	sx, sw = normalizeSpan(sx, sw)
	sy, sh = normalizeSpan(sy, sh)
	dx, dw = normalizeSpan(dx, dw)
	dy, dh = normalizeSpan(dy, dh)
	if sw == 0 || sh == 0 || dw == 0 || dh == 0 {
		return
	}

	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	b := img.Bounds()
	sr := image.Rect(
		b.Min.X+int(math.Floor(sx)), b.Min.Y+int(math.Floor(sy)),
		b.Min.X+int(math.Ceil(sx+sw)), b.Min.Y+int(math.Ceil(sy+sh)),
	).Intersect(b)
	if sr.Empty() {
		return
	}

	// image space -> user space -> device space
	place := gg.Translate(dx, dy).
		Multiply(gg.Scale(dw/sw, dh/sh)).
		Multiply(gg.Translate(-sx-float64(b.Min.X), -sy-float64(b.Min.Y)))
	m := c.st.matrix.Multiply(place)

	w, h := c.s.pix.Width(), c.s.pix.Height()
	layer := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Transform(layer, f64.Aff3{m.A, m.B, m.C, m.D, m.E, m.F}, img, sr, xdraw.Over, nil)
	c.paintLocked(layerSource{layer: layer})
}

func normalizeSpan(origin, size float64) (float64, float64) {
	if size < 0 {
		return origin + size, -size
	}
	return origin, size
}
