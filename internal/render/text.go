package render

import "github.com/gogpu/gg/text"

// FillText fills the glyph outlines of s with the baseline origin at (x, y).
func (c *Context) FillText(s string, x, y float64) {
	if s == "" || !finite(x, y) {
		return
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.fillPathLocked(c.textPathLocked(s, x, y))
}

// StrokeText strokes the glyph outlines of s.
func (c *Context) StrokeText(s string, x, y float64) {
	if s == "" || !finite(x, y) {
		return
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.strokePathLocked(c.textPathLocked(s, x, y))
}

// MeasureText returns the advance width of s in the current font.
func (c *Context) MeasureText(s string) float64 {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	w, _ := text.Measure(s, c.fonts.Face(c.st.font, 1))
	return w
}

// alignOffset returns the horizontal shift for a run of the given width.
// Text direction is always left to right.
func alignOffset(align string, width float64) float64 {
	switch align {
	case "right", "end":
		return -width
	case "center":
		return -width / 2
	}
	return 0
}

// textPathLocked converts s into a device-space path under the current
// transform, so text rotates and scales like any other shape.
func (c *Context) textPathLocked(s string, x, y float64) *Path {
	face := c.fonts.Face(c.st.font, 1)
	size := face.Size()
	parsed := face.Source().Parsed()
	x += alignOffset(c.st.textAlign, face.Advance(s))

	m := c.st.matrix
	p := NewPath()
	ex := text.NewOutlineExtractor()
	for g := range face.Glyphs(s) {
		outline, err := ex.ExtractOutline(parsed, g.GID, size)
		if err != nil || outline == nil {
			continue
		}
		ox, oy := x+g.X, y+g.Y
		pt := func(op text.OutlinePoint) (float64, float64) {
			return ox + float64(op.X), oy + float64(op.Y)
		}
		for _, seg := range outline.Segments {
			switch seg.Op {
			case text.OutlineOpMoveTo:
				if !p.Empty() {
					p.close()
				}
				px, py := pt(seg.Points[0])
				p.moveTo(m, px, py)
			case text.OutlineOpLineTo:
				px, py := pt(seg.Points[0])
				p.lineTo(m, px, py)
			case text.OutlineOpQuadTo:
				cx, cy := pt(seg.Points[0])
				px, py := pt(seg.Points[1])
				p.quadTo(m, cx, cy, px, py)
			case text.OutlineOpCubicTo:
				c1x, c1y := pt(seg.Points[0])
				c2x, c2y := pt(seg.Points[1])
				px, py := pt(seg.Points[2])
				p.cubicTo(m, c1x, c1y, c2x, c2y, px, py)
			}
		}
		p.close()
	}
	return p
}
