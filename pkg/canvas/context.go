package canvas

import "github.com/opd-ai/go-canvas/internal/render"

// Context2D is the drawing context of a canvas element. Mutators return
// the receiver so calls can be chained.
type Context2D struct {
	c  *render.Context
	el *CanvasElement
}

// Canvas returns the element the context draws on.
func (ctx *Context2D) Canvas() *CanvasElement {
	return ctx.el
}

// SetLineWidth sets the stroke width.
func (ctx *Context2D) SetLineWidth(w float64) *Context2D {
	ctx.c.SetLineWidth(w)
	return ctx
}

// LineWidth returns the stroke width.
func (ctx *Context2D) LineWidth() float64 {
	return ctx.c.LineWidth()
}

// SetFillStyle sets a CSS colour as the fill style.
func (ctx *Context2D) SetFillStyle(color string) *Context2D {
	ctx.c.SetFillStyle(color)
	return ctx
}

// FillStyle returns the fill colour in canonical form, or "" when the fill
// style is a gradient.
func (ctx *Context2D) FillStyle() string {
	return ctx.c.FillStyle().String()
}

// SetStrokeStyle sets a CSS colour as the stroke style.
func (ctx *Context2D) SetStrokeStyle(color string) *Context2D {
	ctx.c.SetStrokeStyle(color)
	return ctx
}

// StrokeStyle returns the stroke colour in canonical form, or "" when the
// stroke style is a gradient.
func (ctx *Context2D) StrokeStyle() string {
	return ctx.c.StrokeStyle().String()
}

// SetShadowColor sets the shadow colour.
func (ctx *Context2D) SetShadowColor(color string) *Context2D {
	ctx.c.SetShadowColor(color)
	return ctx
}

// ShadowColor returns the shadow colour in canonical form.
func (ctx *Context2D) ShadowColor() string {
	return ctx.c.ShadowColor()
}

// SetShadowBlur sets the shadow blur level.
func (ctx *Context2D) SetShadowBlur(v float64) *Context2D {
	ctx.c.SetShadowBlur(v)
	return ctx
}

// ShadowBlur returns the shadow blur level.
func (ctx *Context2D) ShadowBlur() float64 {
	return ctx.c.ShadowBlur()
}

// SetShadowOffsetX sets the horizontal shadow offset.
func (ctx *Context2D) SetShadowOffsetX(v float64) *Context2D {
	ctx.c.SetShadowOffsetX(v)
	return ctx
}

// ShadowOffsetX returns the horizontal shadow offset.
func (ctx *Context2D) ShadowOffsetX() float64 {
	return ctx.c.ShadowOffsetX()
}

// SetShadowOffsetY sets the vertical shadow offset.
func (ctx *Context2D) SetShadowOffsetY(v float64) *Context2D {
	ctx.c.SetShadowOffsetY(v)
	return ctx
}

// ShadowOffsetY returns the vertical shadow offset.
func (ctx *Context2D) ShadowOffsetY() float64 {
	return ctx.c.ShadowOffsetY()
}

// SetLineCap sets the line cap.
func (ctx *Context2D) SetLineCap(c LineCap) *Context2D {
	ctx.c.SetLineCap(c.String())
	return ctx
}

// LineCap returns the line cap.
func (ctx *Context2D) LineCap() LineCap {
	c, err := ParseLineCap(ctx.c.LineCap())
	if err != nil {
		panic(err)
	}
	return c
}

// SetLineJoin sets the line join.
func (ctx *Context2D) SetLineJoin(j LineJoin) *Context2D {
	ctx.c.SetLineJoin(j.String())
	return ctx
}

// LineJoin returns the line join.
func (ctx *Context2D) LineJoin() LineJoin {
	j, err := ParseLineJoin(ctx.c.LineJoin())
	if err != nil {
		panic(err)
	}
	return j
}

// SetMiterLimit sets the miter length limit, as a multiple of half the
// line width.
func (ctx *Context2D) SetMiterLimit(v float64) *Context2D {
	ctx.c.SetMiterLimit(v)
	return ctx
}

// MiterLimit returns the miter limit.
func (ctx *Context2D) MiterLimit() float64 {
	return ctx.c.MiterLimit()
}

// SetLineDash sets the dash pattern of strokes. An empty list draws solid
// lines.
func (ctx *Context2D) SetLineDash(segments []float64) *Context2D {
	ctx.c.SetLineDash(segments)
	return ctx
}

// LineDash returns the dash pattern.
func (ctx *Context2D) LineDash() []float64 {
	return ctx.c.LineDash()
}

// SetLineDashOffset sets the dash phase.
func (ctx *Context2D) SetLineDashOffset(v float64) *Context2D {
	ctx.c.SetLineDashOffset(v)
	return ctx
}

// LineDashOffset returns the dash phase.
func (ctx *Context2D) LineDashOffset() float64 {
	return ctx.c.LineDashOffset()
}

// SetGlobalAlpha sets the alpha applied to everything drawn.
func (ctx *Context2D) SetGlobalAlpha(a float64) *Context2D {
	ctx.c.SetGlobalAlpha(a)
	return ctx
}

// GlobalAlpha returns the global alpha.
func (ctx *Context2D) GlobalAlpha() float64 {
	return ctx.c.GlobalAlpha()
}

// SetGlobalCompositeOperation sets the blend rule for new drawing.
func (ctx *Context2D) SetGlobalCompositeOperation(op Composite) *Context2D {
	ctx.c.SetGlobalCompositeOperation(op.String())
	return ctx
}

// GlobalCompositeOperation returns the blend rule.
func (ctx *Context2D) GlobalCompositeOperation() Composite {
	op, err := ParseComposite(ctx.c.GlobalCompositeOperation())
	if err != nil {
		panic(err)
	}
	return op
}

// BeginPath discards the current path.
func (ctx *Context2D) BeginPath() *Context2D {
	ctx.c.BeginPath()
	return ctx
}

// ClosePath closes the current subpath.
func (ctx *Context2D) ClosePath() *Context2D {
	ctx.c.ClosePath()
	return ctx
}

// MoveTo starts a new subpath at (x, y).
func (ctx *Context2D) MoveTo(x, y float64) *Context2D {
	ctx.c.MoveTo(x, y)
	return ctx
}

// LineTo adds a straight segment to (x, y).
func (ctx *Context2D) LineTo(x, y float64) *Context2D {
	ctx.c.LineTo(x, y)
	return ctx
}

// QuadraticCurveTo adds a quadratic Bézier segment.
func (ctx *Context2D) QuadraticCurveTo(q QuadraticCurve) *Context2D {
	ctx.c.QuadraticCurveTo(q.CPX, q.CPY, q.X, q.Y)
	return ctx
}

// BezierCurveTo adds a cubic Bézier segment.
func (ctx *Context2D) BezierCurveTo(b BezierCurve) *Context2D {
	ctx.c.BezierCurveTo(b.CP1X, b.CP1Y, b.CP2X, b.CP2Y, b.X, b.Y)
	return ctx
}

// Arc adds a circular arc to the current path.
func (ctx *Context2D) Arc(a Arc) *Context2D {
	ctx.c.Arc(a.X, a.Y, a.Radius, a.Start, a.End, a.Anticlockwise)
	return ctx
}

// Rect adds a closed rectangle to the current path.
func (ctx *Context2D) Rect(r Rectangle) *Context2D {
	ctx.c.Rect(r.X, r.Y, r.W, r.H)
	return ctx
}

// Stroke outlines the current path with the stroke style.
func (ctx *Context2D) Stroke() *Context2D {
	ctx.c.Stroke()
	return ctx
}

// Fill paints the interior of the current path with the fill style.
func (ctx *Context2D) Fill() *Context2D {
	ctx.c.Fill()
	return ctx
}

// Clip intersects the clip region with the current path.
func (ctx *Context2D) Clip() *Context2D {
	ctx.c.Clip()
	return ctx
}

// IsPointInPath reports whether the surface point (x, y) is inside the
// current path.
func (ctx *Context2D) IsPointInPath(x, y float64) bool {
	return ctx.c.IsPointInPath(x, y)
}

// FillRect paints a rectangle with the fill style.
func (ctx *Context2D) FillRect(r Rectangle) *Context2D {
	ctx.c.FillRect(r.X, r.Y, r.W, r.H)
	return ctx
}

// StrokeRect outlines a rectangle with the stroke style.
func (ctx *Context2D) StrokeRect(r Rectangle) *Context2D {
	ctx.c.StrokeRect(r.X, r.Y, r.W, r.H)
	return ctx
}

// ClearRect erases a rectangle to transparent black.
func (ctx *Context2D) ClearRect(r Rectangle) *Context2D {
	ctx.c.ClearRect(r.X, r.Y, r.W, r.H)
	return ctx
}

// Scale scales the user space.
func (ctx *Context2D) Scale(s ScaleTransform) *Context2D {
	ctx.c.Scale(s.ScaleX, s.ScaleY)
	return ctx
}

// Rotate rotates the user space clockwise by angle radians.
func (ctx *Context2D) Rotate(angle float64) *Context2D {
	ctx.c.Rotate(angle)
	return ctx
}

// Translate moves the user space origin.
func (ctx *Context2D) Translate(t TranslateTransform) *Context2D {
	ctx.c.Translate(t.TranslateX, t.TranslateY)
	return ctx
}

// Transform multiplies the current transform by t.
func (ctx *Context2D) Transform(t Transform) *Context2D {
	ctx.c.Transform(t.M11, t.M12, t.M21, t.M22, t.M31, t.M32)
	return ctx
}

// SetTransform replaces the current transform.
func (ctx *Context2D) SetTransform(t Transform) *Context2D {
	ctx.c.SetTransform(t.M11, t.M12, t.M21, t.M22, t.M31, t.M32)
	return ctx
}

// ResetTransform restores the identity transform.
func (ctx *Context2D) ResetTransform() *Context2D {
	ctx.c.ResetTransform()
	return ctx
}

// GetTransform returns the current transform.
func (ctx *Context2D) GetTransform() Transform {
	m := ctx.c.GetTransform()
	return Transform{M11: m[0], M12: m[1], M21: m[2], M22: m[3], M31: m[4], M32: m[5]}
}

// SetFont sets the CSS font shorthand used for text.
func (ctx *Context2D) SetFont(font string) *Context2D {
	ctx.c.SetFont(font)
	return ctx
}

// Font returns the current font shorthand.
func (ctx *Context2D) Font() string {
	return ctx.c.Font()
}

// SetTextAlign sets the horizontal text alignment.
func (ctx *Context2D) SetTextAlign(a TextAlign) *Context2D {
	ctx.c.SetTextAlign(a.String())
	return ctx
}

// TextAlign returns the horizontal text alignment.
func (ctx *Context2D) TextAlign() TextAlign {
	return MustParseTextAlign(ctx.c.TextAlign())
}

// FillText fills s with its baseline origin at (x, y).
func (ctx *Context2D) FillText(s string, x, y float64) *Context2D {
	ctx.c.FillText(s, x, y)
	return ctx
}

// StrokeText outlines s with its baseline origin at (x, y).
func (ctx *Context2D) StrokeText(s string, x, y float64) *Context2D {
	ctx.c.StrokeText(s, x, y)
	return ctx
}

// MeasureText measures s in the current font.
func (ctx *Context2D) MeasureText(s string) TextMetrics {
	return TextMetrics{Width: ctx.c.MeasureText(s)}
}

// Save pushes the style, transform and clip state.
func (ctx *Context2D) Save() *Context2D {
	ctx.c.Save()
	return ctx
}

// Restore pops the most recently saved state. Without a matching Save it
// does nothing.
func (ctx *Context2D) Restore() *Context2D {
	ctx.c.Restore()
	return ctx
}

// Reset clears the surface and restores every default, including an empty
// save stack.
func (ctx *Context2D) Reset() *Context2D {
	ctx.c.Reset()
	return ctx
}
