package render

import (
	"math"
	"sync"

	"github.com/gogpu/gg"
)

// GradientKind distinguishes linear from radial gradients.
type GradientKind int

const (
	// GradientLinear interpolates along the line (x0,y0)-(x1,y1).
	GradientLinear GradientKind = iota
	// GradientRadial interpolates between two circles.
	GradientRadial
)

// ColorStop is one colour stop as it was appended.
type ColorStop struct {
	Offset float64
	Color  gg.RGBA
}

// Gradient is a multi-stop colour ramp defined in user space.
type Gradient struct {
	mu     sync.Mutex
	kind   GradientKind
	x0, y0 float64
	r0     float64
	x1, y1 float64
	r1     float64
	stops  []ColorStop
}

// NewLinearGradient creates a gradient along (x0,y0)-(x1,y1).
func NewLinearGradient(x0, y0, x1, y1 float64) *Gradient {
	return &Gradient{kind: GradientLinear, x0: x0, y0: y0, x1: x1, y1: y1}
}

// NewRadialGradient creates a gradient between the circles (x0,y0,r0)
// and (x1,y1,r1).
func NewRadialGradient(x0, y0, r0, x1, y1, r1 float64) *Gradient {
	return &Gradient{kind: GradientRadial, x0: x0, y0: y0, r0: r0, x1: x1, y1: y1, r1: r1}
}

// Kind reports whether the gradient is linear or radial.
func (g *Gradient) Kind() GradientKind {
	return g.kind
}

// AddColorStop appends a stop. Offsets outside [0,1] and unparsable
// colours are ignored.
func (g *Gradient) AddColorStop(offset float64, color string) {
	if offset < 0 || offset > 1 {
		logger().Debug("gradient stop offset out of range", "offset", offset)
		return
	}
	c, err := ParseColor(color)
	if err != nil {
		logger().Debug("gradient stop color ignored", "color", color, "error", err)
		return
	}
	g.mu.Lock()
	g.stops = append(g.stops, ColorStop{Offset: offset, Color: c})
	g.mu.Unlock()
}

// Stops returns a copy of the stops in the order they were appended.
func (g *Gradient) Stops() []ColorStop {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]ColorStop, len(g.stops))
	copy(out, g.stops)
	return out
}

// colorSampler returns the colour of a paint at a user-space point. gg
// brushes satisfy it.
type colorSampler interface {
	ColorAt(x, y float64) gg.RGBA
}

// brush builds a fresh sampler from the current stops. The stored stop
// list is never handed to gg, so sorting there cannot reorder it.
func (g *Gradient) brush() colorSampler {
	ramp := g.ramp()
	if g.kind == GradientRadial {
		return newConicalSampler(g.x0, g.y0, g.r0, g.x1, g.y1, g.r1, ramp)
	}
	ramp.Start = gg.Pt(g.x0, g.y0)
	ramp.End = gg.Pt(g.x1, g.y1)
	return ramp
}

// ramp returns a linear brush over the unit interval holding the stops,
// so ColorAt(t, 0) is the colour at offset t with padding.
func (g *Gradient) ramp() *gg.LinearGradientBrush {
	b := gg.NewLinearGradientBrush(0, 0, 1, 0)
	for _, s := range g.Stops() {
		b.AddColorStop(s.Offset, s.Color)
	}
	return b
}

// conicalSampler evaluates a two-circle radial gradient. A point takes
// the colour of the largest offset t whose interpolated circle, centred
// at c0+t(c1-c0) with radius r0+t(r1-r0) >= 0, passes through it. Points
// on no such circle are transparent.
type conicalSampler struct {
	x0, y0, r0 float64
	dx, dy, dr float64
	a          float64
	ramp       *gg.LinearGradientBrush
}

func newConicalSampler(x0, y0, r0, x1, y1, r1 float64, ramp *gg.LinearGradientBrush) conicalSampler {
	dx, dy, dr := x1-x0, y1-y0, r1-r0
	return conicalSampler{
		x0: x0, y0: y0, r0: r0,
		dx: dx, dy: dy, dr: dr,
		a:    dx*dx + dy*dy - dr*dr,
		ramp: ramp,
	}
}

func (s conicalSampler) ColorAt(x, y float64) gg.RGBA {
	t, ok := s.offset(x, y)
	if !ok {
		return gg.RGBA{}
	}
	return s.ramp.ColorAt(t, 0)
}

// offset solves |p - c(t)| = r(t), which is a*t^2 - 2*b*t + c = 0.
func (s conicalSampler) offset(x, y float64) (float64, bool) {
	px, py := x-s.x0, y-s.y0
	b := px*s.dx + py*s.dy + s.r0*s.dr
	c := px*px + py*py - s.r0*s.r0
	valid := func(t float64) bool { return s.r0+t*s.dr >= 0 }

	if math.Abs(s.a) < 1e-9 {
		if b == 0 {
			return 0, false
		}
		t := c / (2 * b)
		return t, valid(t)
	}
	disc := b*b - s.a*c
	if disc < 0 {
		return 0, false
	}
	root := math.Sqrt(disc)
	hi, lo := (b+root)/s.a, (b-root)/s.a
	if hi < lo {
		hi, lo = lo, hi
	}
	if valid(hi) {
		return hi, true
	}
	if valid(lo) {
		return lo, true
	}
	return 0, false
}

// Paint is a fill or stroke style: a solid colour or a gradient.
type Paint struct {
	Color    gg.RGBA
	Gradient *Gradient
}

// SolidPaint returns a paint of one colour.
func SolidPaint(c gg.RGBA) Paint {
	return Paint{Color: c}
}

// String serializes solid paints as canvas does. Gradients have no
// string form and return "".
func (p Paint) String() string {
	if p.Gradient != nil {
		return ""
	}
	return FormatColor(p.Color)
}

func (p Paint) brush() colorSampler {
	if p.Gradient != nil {
		return p.Gradient.brush()
	}
	return gg.Solid(p.Color)
}
