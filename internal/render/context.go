package render

import (
	"math"

	"github.com/gogpu/gg"
)

// Context is the 2D drawing context of a surface. Its methods follow the
// canvas rendering model: styles and transforms are state, shapes are
// built on the current path and painted with fill or stroke, and every
// paint goes through the shadow, global alpha, composite operation and
// clip of the current state.
type Context struct {
	s     *Surface
	st    drawState
	stack []drawState
	path  *Path
	fonts *FontManager
}

func newContext(s *Surface) *Context {
	return &Context{
		s:     s,
		st:    defaultState(),
		path:  NewPath(),
		fonts: DefaultFontManager(),
	}
}

// resetLocked restores the initial state; the surface lock must be held.
func (c *Context) resetLocked() {
	c.st = defaultState()
	c.stack = nil
	c.path.Reset()
}

// Surface returns the surface the context draws on.
func (c *Context) Surface() *Surface {
	return c.s
}

// SetFontManager replaces the font resolver used for text.
func (c *Context) SetFontManager(fm *FontManager) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if fm != nil {
		c.fonts = fm
	}
}

// Save pushes a copy of the drawing state.
func (c *Context) Save() {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.stack = append(c.stack, c.st.clone())
}

// Restore pops the drawing state. It does nothing when the stack is empty.
func (c *Context) Restore() {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	n := len(c.stack)
	if n == 0 {
		return
	}
	c.st = c.stack[n-1]
	c.stack = c.stack[:n-1]
}

// SaveDepth returns the number of saved states.
func (c *Context) SaveDepth() int {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return len(c.stack)
}

// Reset clears the surface and restores every default.
func (c *Context) Reset() {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	clear(c.s.pix.Data())
	c.resetLocked()
}

// Scale multiplies the current transform by a scale.
func (c *Context) Scale(x, y float64) {
	c.apply(gg.Scale(x, y))
}

// Rotate multiplies the current transform by a clockwise rotation in radians.
func (c *Context) Rotate(angle float64) {
	c.apply(gg.Rotate(angle))
}

// Translate multiplies the current transform by a translation.
func (c *Context) Translate(x, y float64) {
	c.apply(gg.Translate(x, y))
}

// Transform multiplies the current transform by the matrix
//
//	| a c e |
//	| b d f |
func (c *Context) Transform(a, b, cc, d, e, f float64) {
	c.apply(canvasMatrix(a, b, cc, d, e, f))
}

// SetTransform replaces the current transform.
func (c *Context) SetTransform(a, b, cc, d, e, f float64) {
	if !finite(a, b, cc, d, e, f) {
		return
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.st.matrix = canvasMatrix(a, b, cc, d, e, f)
}

// ResetTransform sets the identity transform.
func (c *Context) ResetTransform() {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.st.matrix = gg.Identity()
}

// GetTransform returns the current transform as (a, b, c, d, e, f).
func (c *Context) GetTransform() [6]float64 {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	m := c.st.matrix
	return [6]float64{m.A, m.D, m.B, m.E, m.C, m.F}
}

func (c *Context) apply(m gg.Matrix) {
	if !finite(m.A, m.B, m.C, m.D, m.E, m.F) {
		return
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.st.matrix = c.st.matrix.Multiply(m)
}

func canvasMatrix(a, b, cc, d, e, f float64) gg.Matrix {
	return gg.Matrix{A: a, B: cc, C: e, D: b, E: d, F: f}
}

// scaleFactor is the factor by which the matrix scales lengths.
func scaleFactor(m gg.Matrix) float64 {
	return math.Sqrt(math.Abs(m.A*m.E - m.B*m.D))
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// SetLineWidth sets the stroke width. Non-positive and non-finite values
// are ignored.
func (c *Context) SetLineWidth(w float64) {
	if !finite(w) || w <= 0 {
		return
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.st.lineWidth = w
}

// LineWidth returns the stroke width.
func (c *Context) LineWidth() float64 {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.st.lineWidth
}

// SetLineCap sets the line cap by name. Unknown names are ignored.
func (c *Context) SetLineCap(name string) {
	if _, ok := lineCaps[name]; !ok {
		logger().Debug("line cap ignored", "value", name)
		return
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.st.lineCap = name
}

// LineCap returns the line cap name.
func (c *Context) LineCap() string {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.st.lineCap
}

// SetLineJoin sets the line join by name. Unknown names are ignored.
func (c *Context) SetLineJoin(name string) {
	if _, ok := lineJoins[name]; !ok {
		logger().Debug("line join ignored", "value", name)
		return
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.st.lineJoin = name
}

// LineJoin returns the line join name.
func (c *Context) LineJoin() string {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.st.lineJoin
}

// SetMiterLimit sets the miter limit. Non-positive values are ignored.
func (c *Context) SetMiterLimit(v float64) {
	if !finite(v) || v <= 0 {
		return
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.st.miterLimit = v
}

// MiterLimit returns the miter limit.
func (c *Context) MiterLimit() float64 {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.st.miterLimit
}

// SetLineDash sets the dash pattern. An odd-length list is repeated to
// make it even. Lists with negative or non-finite entries are ignored.
func (c *Context) SetLineDash(segments []float64) {
	for _, v := range segments {
		if !finite(v) || v < 0 {
			return
		}
	}
	dash := append([]float64(nil), segments...)
	if len(dash)%2 == 1 {
		dash = append(dash, dash...)
	}
	allZero := true
	for _, v := range dash {
		if v != 0 {
			allZero = false
		}
	}
	if allZero {
		dash = nil
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.st.dash = dash
}

// LineDash returns a copy of the dash pattern.
func (c *Context) LineDash() []float64 {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return append([]float64{}, c.st.dash...)
}

// SetLineDashOffset sets the dash phase.
func (c *Context) SetLineDashOffset(v float64) {
	if !finite(v) {
		return
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.st.dashOffset = v
}

// LineDashOffset returns the dash phase.
func (c *Context) LineDashOffset() float64 {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.st.dashOffset
}

// SetFillStyle sets a CSS colour as the fill paint. Unparsable colours
// leave the style unchanged.
func (c *Context) SetFillStyle(color string) {
	p, ok := parsePaint(color)
	if !ok {
		return
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.st.fill = p
}

// SetFillGradient uses a gradient as the fill paint.
func (c *Context) SetFillGradient(g *Gradient) {
	if g == nil {
		return
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.st.fill = Paint{Gradient: g}
}

// FillStyle returns the fill paint.
func (c *Context) FillStyle() Paint {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.st.fill
}

// SetStrokeStyle sets a CSS colour as the stroke paint.
func (c *Context) SetStrokeStyle(color string) {
	p, ok := parsePaint(color)
	if !ok {
		return
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.st.stroke = p
}

// SetStrokeGradient uses a gradient as the stroke paint.
func (c *Context) SetStrokeGradient(g *Gradient) {
	if g == nil {
		return
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.st.stroke = Paint{Gradient: g}
}

// StrokeStyle returns the stroke paint.
func (c *Context) StrokeStyle() Paint {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.st.stroke
}

func parsePaint(color string) (Paint, bool) {
	col, err := ParseColor(color)
	if err != nil {
		logger().Debug("color ignored", "value", color, "error", err)
		return Paint{}, false
	}
	return SolidPaint(col), true
}

// SetShadowColor sets the shadow colour. Unparsable colours are ignored.
func (c *Context) SetShadowColor(color string) {
	col, err := ParseColor(color)
	if err != nil {
		logger().Debug("shadow color ignored", "value", color, "error", err)
		return
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.st.shadow.color = col
}

// ShadowColor returns the serialized shadow colour.
func (c *Context) ShadowColor() string {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return FormatColor(c.st.shadow.color)
}

// SetShadowBlur sets the shadow blur level. Negative values are ignored.
func (c *Context) SetShadowBlur(v float64) {
	if !finite(v) || v < 0 {
		return
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.st.shadow.blur = v
}

// ShadowBlur returns the shadow blur level.
func (c *Context) ShadowBlur() float64 {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.st.shadow.blur
}

// SetShadowOffsetX sets the horizontal shadow offset in device pixels.
func (c *Context) SetShadowOffsetX(v float64) {
	if !finite(v) {
		return
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.st.shadow.offsetX = v
}

// ShadowOffsetX returns the horizontal shadow offset.
func (c *Context) ShadowOffsetX() float64 {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.st.shadow.offsetX
}

// SetShadowOffsetY sets the vertical shadow offset in device pixels.
func (c *Context) SetShadowOffsetY(v float64) {
	if !finite(v) {
		return
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.st.shadow.offsetY = v
}

// ShadowOffsetY returns the vertical shadow offset.
func (c *Context) ShadowOffsetY() float64 {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.st.shadow.offsetY
}

// SetGlobalAlpha sets the alpha applied to every paint. Values outside
// [0,1] are ignored.
func (c *Context) SetGlobalAlpha(a float64) {
	if !finite(a) || a < 0 || a > 1 {
		return
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.st.globalAlpha = a
}

// GlobalAlpha returns the global alpha.
func (c *Context) GlobalAlpha() float64 {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.st.globalAlpha
}

// SetGlobalCompositeOperation selects the blend rule by name. Unknown
// names are ignored.
func (c *Context) SetGlobalCompositeOperation(op string) {
	if _, ok := compositeOps[op]; !ok {
		logger().Debug("composite operation ignored", "value", op)
		return
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.st.composite = op
}

// GlobalCompositeOperation returns the blend rule name.
func (c *Context) GlobalCompositeOperation() string {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.st.composite
}

// SetFont parses a CSS font shorthand. Unparsable values are ignored.
func (c *Context) SetFont(font string) {
	f, err := ParseFont(font)
	if err != nil {
		logger().Debug("font ignored", "value", font, "error", err)
		return
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.st.font = f
}

// Font returns the current font shorthand.
func (c *Context) Font() string {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.st.font.String()
}

// SetTextAlign sets the text alignment by name. Unknown names are ignored.
func (c *Context) SetTextAlign(align string) {
	if !textAligns[align] {
		logger().Debug("text align ignored", "value", align)
		return
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.st.textAlign = align
}

// TextAlign returns the text alignment name.
func (c *Context) TextAlign() string {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.st.textAlign
}
