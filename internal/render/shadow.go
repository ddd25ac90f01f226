package render

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/gogpu/gg"
)

// shadow holds the shadow attributes of a context state.
type shadow struct {
	color   gg.RGBA
	blur    float64
	offsetX float64
	offsetY float64
}

// active reports whether drawing casts a visible shadow.
func (s shadow) active() bool {
	return s.color.A > 0 && (s.blur > 0 || s.offsetX != 0 || s.offsetY != 0)
}

// mask builds the shadow coverage for a source: its alpha shifted by the
// offset and blurred with a Gaussian of sigma blur/2.
func (s shadow) mask(src source, w, h int) *image.Alpha {
	m := offsetMask(alphaMaskOf(src, w, h), int(math.Round(s.offsetX)), int(math.Round(s.offsetY)))
	if s.blur <= 0 {
		return m
	}
	blurred := blur.Gaussian(m, s.blur/2)
	out := image.NewAlpha(m.Rect)
	for i, j := 3, 0; j < len(out.Pix); i, j = i+4, j+1 {
		out.Pix[j] = blurred.Pix[i]
	}
	return out
}
