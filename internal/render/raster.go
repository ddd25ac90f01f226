package render

import (
	"image"

	"github.com/gogpu/gg"
)

// strokeParams describes a stroke in device units.
type strokeParams struct {
	width      float64
	cap        gg.LineCap
	join       gg.LineJoin
	miterLimit float64
	dash       []float64
	dashOffset float64
}

// fillCoverage rasterizes p into an alpha mask holding per-pixel coverage.
func fillCoverage(w, h int, p *Path, rule gg.FillRule) *image.Alpha {
	dc := gg.NewContext(w, h)
	defer dc.Close()
	dc.SetRGBA(1, 1, 1, 1)
	dc.SetFillRule(rule)
	p.replay(dc)
	if err := dc.Fill(); err != nil {
		logger().Warn("fill rasterization failed", "error", err)
	}
	return alphaOf(dc.Image())
}

// strokeCoverage rasterizes the outline of p into an alpha mask.
func strokeCoverage(w, h int, p *Path, sp strokeParams) *image.Alpha {
	dc := gg.NewContext(w, h)
	defer dc.Close()
	dc.SetRGBA(1, 1, 1, 1)
	dc.SetLineWidth(sp.width)
	dc.SetLineCap(sp.cap)
	dc.SetLineJoin(sp.join)
	dc.SetMiterLimit(sp.miterLimit)
	if len(sp.dash) > 0 {
		dc.SetDash(sp.dash...)
		dc.SetDashOffset(sp.dashOffset)
	}
	p.replay(dc)
	if err := dc.Stroke(); err != nil {
		logger().Warn("stroke rasterization failed", "error", err)
	}
	return alphaOf(dc.Image())
}

// alphaOf extracts the alpha channel of a rasterized white shape.
func alphaOf(img image.Image) *image.Alpha {
	b := img.Bounds()
	out := image.NewAlpha(image.Rect(0, 0, b.Dx(), b.Dy()))
	if rgba, ok := img.(*image.RGBA); ok {
		for i, j := 3, 0; i < len(rgba.Pix); i, j = i+4, j+1 {
			out.Pix[j] = rgba.Pix[i]
		}
		return out
	}
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			_, _, _, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			out.Pix[y*out.Stride+x] = uint8(a >> 8)
		}
	}
	return out
}

// intersectMask multiplies two coverage masks. A nil mask covers everything.
func intersectMask(a, b *image.Alpha) *image.Alpha {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	out := image.NewAlpha(a.Rect)
	for i := range out.Pix {
		out.Pix[i] = uint8((uint16(a.Pix[i])*uint16(b.Pix[i]) + 127) / 255)
	}
	return out
}

// offsetMask shifts a mask by whole device pixels.
func offsetMask(m *image.Alpha, dx, dy int) *image.Alpha {
	out := image.NewAlpha(m.Rect)
	w, h := m.Rect.Dx(), m.Rect.Dy()
	for y := 0; y < h; y++ {
		sy := y - dy
		if sy < 0 || sy >= h {
			continue
		}
		for x := 0; x < w; x++ {
			sx := x - dx
			if sx < 0 || sx >= w {
				continue
			}
			out.Pix[y*out.Stride+x] = m.Pix[sy*m.Stride+sx]
		}
	}
	return out
}
