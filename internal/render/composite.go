package render

import (
	"image"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/scene"
)

// compositeOps maps canvas composite operation names to gg blend modes.
var compositeOps = map[string]scene.BlendMode{
	"source-over":      scene.BlendSourceOver,
	"source-in":        scene.BlendSourceIn,
	"source-out":       scene.BlendSourceOut,
	"source-atop":      scene.BlendSourceAtop,
	"destination-over": scene.BlendDestinationOver,
	"destination-in":   scene.BlendDestinationIn,
	"destination-out":  scene.BlendDestinationOut,
	"destination-atop": scene.BlendDestinationAtop,
	"lighter":          scene.BlendPlus,
	"copy":             scene.BlendCopy,
	"xor":              scene.BlendXor,
}

// unbounded operations modify the destination where the source is
// transparent, so every pixel inside the clip must be visited.
var unboundedOps = map[string]bool{
	"source-in":        true,
	"source-out":       true,
	"destination-in":   true,
	"destination-atop": true,
	"copy":             true,
}

// source yields the straight-alpha colour to composite at a device pixel,
// with coverage already folded into alpha.
type source interface {
	at(x, y int) gg.RGBA
}

// shapeSource shades a coverage mask with a brush sampled in user space.
type shapeSource struct {
	cov   *image.Alpha
	brush colorSampler
	inv   gg.Matrix
	solid bool
}

func newShapeSource(cov *image.Alpha, p Paint, m gg.Matrix) shapeSource {
	return shapeSource{
		cov:   cov,
		brush: p.brush(),
		inv:   m.Invert(),
		solid: p.Gradient == nil,
	}
}

func (s shapeSource) at(x, y int) gg.RGBA {
	cov := s.cov.Pix[y*s.cov.Stride+x]
	if cov == 0 {
		return gg.RGBA{}
	}
	var c gg.RGBA
	if s.solid {
		c = s.brush.ColorAt(0, 0)
	} else {
		u := s.inv.TransformPoint(gg.Pt(float64(x)+0.5, float64(y)+0.5))
		c = s.brush.ColorAt(u.X, u.Y)
	}
	c.A *= float64(cov) / 255
	return c
}

// maskSource paints a single colour through a mask.
type maskSource struct {
	mask  *image.Alpha
	color gg.RGBA
}

func (s maskSource) at(x, y int) gg.RGBA {
	c := s.color
	c.A *= float64(s.mask.Pix[y*s.mask.Stride+x]) / 255
	return c
}

// layerSource reads an already rendered premultiplied layer.
type layerSource struct {
	layer *image.RGBA
}

func (s layerSource) at(x, y int) gg.RGBA {
	i := s.layer.PixOffset(x, y)
	p := s.layer.Pix[i : i+4 : i+4]
	if p[3] == 0 {
		return gg.RGBA{}
	}
	a := float64(p[3]) / 255
	return gg.RGBA{
		R: float64(p[0]) / 255 / a,
		G: float64(p[1]) / 255 / a,
		B: float64(p[2]) / 255 / a,
		A: a,
	}
}

// alphaMaskOf renders the alpha of a source into a mask.
func alphaMaskOf(src source, w, h int) *image.Alpha {
	m := image.NewAlpha(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Pix[y*m.Stride+x] = to8(src.at(x, y).A)
		}
	}
	return m
}

// compositeOnto blends src into the straight-alpha pixmap data using the
// named composite operation, scaled by globalAlpha and limited to clip.
func compositeOnto(pix []uint8, w, h int, src source, op string, globalAlpha float64, clip *image.Alpha) {
	mode, ok := compositeOps[op]
	if !ok {
		mode = scene.BlendSourceOver
	}
	blend := mode.GetBlendFunc()
	unbounded := unboundedOps[op]

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			clipCov := uint8(255)
			if clip != nil {
				clipCov = clip.Pix[y*clip.Stride+x]
				if clipCov == 0 {
					continue
				}
			}
			c := src.at(x, y)
			sa := clamp01(c.A * globalAlpha)
			if sa == 0 && !unbounded {
				continue
			}

			i := (y*w + x) * 4
			d := pix[i : i+4 : i+4]
			sr, sg, sb, sa8 := premul(c.R, c.G, c.B, sa)
			dr, dg, db, da := premulBytes(d[0], d[1], d[2], d[3])
			r, g, b, a := blend(sr, sg, sb, sa8, dr, dg, db, da)
			if clipCov != 255 {
				t := float64(clipCov) / 255
				r = lerp8(dr, r, t)
				g = lerp8(dg, g, t)
				b = lerp8(db, b, t)
				a = lerp8(da, a, t)
			}
			d[0], d[1], d[2], d[3] = unpremul(r, g, b, a)
		}
	}
}

func premul(r, g, b, a float64) (byte, byte, byte, byte) {
	return to8(r * a), to8(g * a), to8(b * a), to8(a)
}

func premulBytes(r, g, b, a byte) (byte, byte, byte, byte) {
	if a == 255 {
		return r, g, b, a
	}
	m := func(c byte) byte { return byte((uint16(c)*uint16(a) + 127) / 255) }
	return m(r), m(g), m(b), a
}

func unpremul(r, g, b, a byte) (byte, byte, byte, byte) {
	switch a {
	case 0:
		return 0, 0, 0, 0
	case 255:
		return r, g, b, a
	}
	u := func(c byte) byte {
		v := math.Round(float64(c) * 255 / float64(a))
		if v > 255 {
			v = 255
		}
		return byte(v)
	}
	return u(r), u(g), u(b), a
}

func lerp8(from, to byte, t float64) byte {
	return byte(math.Round(float64(from) + (float64(to)-float64(from))*t))
}
