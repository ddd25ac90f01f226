package canvas

import "github.com/opd-ai/go-canvas/internal/render"

// CanvasGradient is a multi-stop colour ramp usable as a fill or stroke
// style.
type CanvasGradient struct {
	g *render.Gradient
}

// ColorStop is one stop of a gradient.
type ColorStop struct {
	Offset float64
	Color  string
}

// CreateLinearGradient creates a gradient along the given axis.
func (ctx *Context2D) CreateLinearGradient(l LinearGradient) *CanvasGradient {
	return &CanvasGradient{g: render.NewLinearGradient(l.X0, l.Y0, l.X1, l.Y1)}
}

// CreateRadialGradient creates a gradient between two circles.
func (ctx *Context2D) CreateRadialGradient(r RadialGradient) *CanvasGradient {
	return &CanvasGradient{g: render.NewRadialGradient(r.X0, r.Y0, r.R0, r.X1, r.Y1, r.R1)}
}

// AddColorStop appends a stop at offset in [0, 1]. Stops keep the order in
// which they were added.
func (g *CanvasGradient) AddColorStop(offset float64, color string) *CanvasGradient {
	g.g.AddColorStop(offset, color)
	return g
}

// Stops returns the stops in insertion order with canonical colours.
func (g *CanvasGradient) Stops() []ColorStop {
	stops := g.g.Stops()
	out := make([]ColorStop, len(stops))
	for i, s := range stops {
		out[i] = ColorStop{Offset: s.Offset, Color: render.FormatColor(s.Color)}
	}
	return out
}

// SetFillStyleGradient uses g as the fill style.
func (ctx *Context2D) SetFillStyleGradient(g *CanvasGradient) *Context2D {
	if g != nil {
		ctx.c.SetFillGradient(g.g)
	}
	return ctx
}

// SetStrokeStyleGradient uses g as the stroke style.
func (ctx *Context2D) SetStrokeStyleGradient(g *CanvasGradient) *Context2D {
	if g != nil {
		ctx.c.SetStrokeGradient(g.g)
	}
	return ctx
}
