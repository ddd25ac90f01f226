package render

import (
	"image"
	"math"

	"github.com/gogpu/gg"
)

// BeginPath discards the current path.
func (c *Context) BeginPath() {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.path.Reset()
}

// ClosePath closes the current subpath.
func (c *Context) ClosePath() {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.path.close()
}

// MoveTo starts a new subpath.
func (c *Context) MoveTo(x, y float64) {
	if !finite(x, y) {
		return
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.path.moveTo(c.st.matrix, x, y)
}

// LineTo adds a straight segment.
func (c *Context) LineTo(x, y float64) {
	if !finite(x, y) {
		return
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.path.lineTo(c.st.matrix, x, y)
}

// QuadraticCurveTo adds a quadratic Bézier segment.
func (c *Context) QuadraticCurveTo(cpx, cpy, x, y float64) {
	if !finite(cpx, cpy, x, y) {
		return
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.path.quadTo(c.st.matrix, cpx, cpy, x, y)
}

// BezierCurveTo adds a cubic Bézier segment.
func (c *Context) BezierCurveTo(cp1x, cp1y, cp2x, cp2y, x, y float64) {
	if !finite(cp1x, cp1y, cp2x, cp2y, x, y) {
		return
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.path.cubicTo(c.st.matrix, cp1x, cp1y, cp2x, cp2y, x, y)
}

// Arc adds a circular arc centred on (x, y). Angles are in radians,
// measured clockwise from the positive x axis.
func (c *Context) Arc(x, y, radius, start, end float64, anticlockwise bool) {
	if !finite(x, y, radius, start, end) || radius < 0 {
		return
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.path.arc(c.st.matrix, x, y, radius, start, end, anticlockwise)
}

// Rect adds a closed rectangle subpath.
func (c *Context) Rect(x, y, w, h float64) {
	if !finite(x, y, w, h) {
		return
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.path.rect(c.st.matrix, x, y, w, h)
}

// Fill paints the interior of the current path with the fill style.
func (c *Context) Fill() {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.fillPathLocked(c.path)
}

// Stroke paints the outline of the current path with the stroke style.
func (c *Context) Stroke() {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.strokePathLocked(c.path)
}

// Clip intersects the clip region with the interior of the current path.
func (c *Context) Clip() {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	w, h := c.s.pix.Width(), c.s.pix.Height()
	cov := fillCoverage(w, h, c.path, gg.FillRuleNonZero)
	c.st.clip = intersectMask(c.st.clip, cov)
}

// IsPointInPath reports whether the device point (x, y) lies inside the
// current path.
func (c *Context) IsPointInPath(x, y float64) bool {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	w, h := c.s.pix.Width(), c.s.pix.Height()
	px, py := int(math.Floor(x)), int(math.Floor(y))
	if px < 0 || py < 0 || px >= w || py >= h || c.path.Empty() {
		return false
	}
	cov := fillCoverage(w, h, c.path, gg.FillRuleNonZero)
	return cov.Pix[py*cov.Stride+px] > 0
}

// FillRect paints a rectangle without touching the current path.
func (c *Context) FillRect(x, y, w, h float64) {
	if !finite(x, y, w, h) || w == 0 || h == 0 {
		return
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	p := NewPath()
	p.rect(c.st.matrix, x, y, w, h)
	c.fillPathLocked(p)
}

// StrokeRect outlines a rectangle without touching the current path.
func (c *Context) StrokeRect(x, y, w, h float64) {
	if !finite(x, y, w, h) {
		return
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	p := NewPath()
	p.rect(c.st.matrix, x, y, w, h)
	c.strokePathLocked(p)
}

// ClearRect sets the pixels of a rectangle to transparent black. It honours
// the transform and clip but ignores shadows, alpha and compositing.
func (c *Context) ClearRect(x, y, w, h float64) {
	if !finite(x, y, w, h) || w == 0 || h == 0 {
		return
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	p := NewPath()
	p.rect(c.st.matrix, x, y, w, h)
	pw, ph := c.s.pix.Width(), c.s.pix.Height()
	cov := intersectMask(fillCoverage(pw, ph, p, gg.FillRuleNonZero), c.st.clip)
	src := maskSource{mask: cov, color: gg.RGBA{A: 1}}
	compositeOnto(c.s.pix.Data(), pw, ph, src, "destination-out", 1, nil)
}

func (c *Context) fillPathLocked(p *Path) {
	w, h := c.s.pix.Width(), c.s.pix.Height()
	cov := fillCoverage(w, h, p, gg.FillRuleNonZero)
	c.paintLocked(newShapeSource(cov, c.st.fill, c.st.matrix))
}

func (c *Context) strokePathLocked(p *Path) {
	w, h := c.s.pix.Width(), c.s.pix.Height()
	cov := strokeCoverage(w, h, p, c.strokeParams())
	c.paintLocked(newShapeSource(cov, c.st.stroke, c.st.matrix))
}

func (c *Context) strokeParams() strokeParams {
	k := scaleFactor(c.st.matrix)
	sp := strokeParams{
		width:      c.st.lineWidth * k,
		cap:        lineCaps[c.st.lineCap],
		join:       lineJoins[c.st.lineJoin],
		miterLimit: c.st.miterLimit,
		dashOffset: c.st.dashOffset * k,
	}
	for _, d := range c.st.dash {
		sp.dash = append(sp.dash, d*k)
	}
	return sp
}

// paintLocked composites a source onto the surface, shadow first.
func (c *Context) paintLocked(src source) {
	w, h := c.s.pix.Width(), c.s.pix.Height()
	pix := c.s.pix.Data()
	if c.st.shadow.active() {
		m := c.st.shadow.mask(src, w, h)
		compositeOnto(pix, w, h, maskSource{mask: m, color: c.st.shadow.color}, c.st.composite, c.st.globalAlpha, c.st.clip)
	}
	compositeOnto(pix, w, h, src, c.st.composite, c.st.globalAlpha, c.st.clip)
}

// clipMask returns the current clip mask, nil when nothing is clipped.
func (c *Context) clipMask() *image.Alpha {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.st.clip
}
