package render

import (
	"math"

	"github.com/gogpu/gg"
)

// segKind identifies a recorded path segment.
type segKind uint8

const (
	segMove segKind = iota
	segLine
	segQuad
	segCubic
	segClose
)

// segment is one device-space path command. Unused points are zero.
type segment struct {
	kind segKind
	pts  [3]gg.Point
}

// Path is the current path of a context. Points are stored in device
// space, transformed by the matrix in effect when each segment was added.
type Path struct {
	segs  []segment
	start gg.Point
	open  bool
}

// NewPath returns an empty path.
func NewPath() *Path {
	return &Path{}
}

// Reset discards every subpath.
func (p *Path) Reset() {
	p.segs = p.segs[:0]
	p.start = gg.Point{}
	p.open = false
}

// Empty reports whether the path has no segments.
func (p *Path) Empty() bool {
	return len(p.segs) == 0
}

// Len returns the number of recorded segments, including moves and closes.
func (p *Path) Len() int {
	return len(p.segs)
}

// Clone returns an independent copy.
func (p *Path) Clone() *Path {
	return &Path{segs: append([]segment(nil), p.segs...), start: p.start, open: p.open}
}

func (p *Path) add(kind segKind, pts ...gg.Point) {
	seg := segment{kind: kind}
	copy(seg.pts[:], pts)
	p.segs = append(p.segs, seg)
}

func (p *Path) moveTo(m gg.Matrix, x, y float64) {
	pt := m.TransformPoint(gg.Pt(x, y))
	p.add(segMove, pt)
	p.start = pt
	p.open = true
}

// ensure starts a subpath at (x,y) when none is open.
func (p *Path) ensure(m gg.Matrix, x, y float64) bool {
	if p.open {
		return false
	}
	p.moveTo(m, x, y)
	return true
}

func (p *Path) lineTo(m gg.Matrix, x, y float64) {
	if p.ensure(m, x, y) {
		return
	}
	p.add(segLine, m.TransformPoint(gg.Pt(x, y)))
}

func (p *Path) quadTo(m gg.Matrix, cx, cy, x, y float64) {
	p.ensure(m, cx, cy)
	p.add(segQuad, m.TransformPoint(gg.Pt(cx, cy)), m.TransformPoint(gg.Pt(x, y)))
}

func (p *Path) cubicTo(m gg.Matrix, c1x, c1y, c2x, c2y, x, y float64) {
	p.ensure(m, c1x, c1y)
	p.add(segCubic,
		m.TransformPoint(gg.Pt(c1x, c1y)),
		m.TransformPoint(gg.Pt(c2x, c2y)),
		m.TransformPoint(gg.Pt(x, y)),
	)
}

// close ends the subpath and starts a new one at its first point.
func (p *Path) close() {
	if !p.open {
		return
	}
	p.add(segClose)
	p.add(segMove, p.start)
}

func (p *Path) rect(m gg.Matrix, x, y, w, h float64) {
	p.moveTo(m, x, y)
	p.lineTo(m, x+w, y)
	p.lineTo(m, x+w, y+h)
	p.lineTo(m, x, y+h)
	p.close()
}

// arc appends a circular arc. A line joins the current point to the arc
// start when a subpath is open.
func (p *Path) arc(m gg.Matrix, cx, cy, r, start, end float64, ccw bool) {
	sweep := arcSweep(start, end, ccw)
	sx, sy := cx+r*math.Cos(start), cy+r*math.Sin(start)
	if p.open {
		p.lineTo(m, sx, sy)
	} else {
		p.moveTo(m, sx, sy)
	}
	if r == 0 || sweep == 0 {
		return
	}

	n := int(math.Ceil(math.Abs(sweep) / (math.Pi / 2)))
	step := sweep / float64(n)
	k := 4.0 / 3.0 * math.Tan(step/4)
	a := start
	for i := 0; i < n; i++ {
		b := a + step
		cosA, sinA := math.Cos(a), math.Sin(a)
		cosB, sinB := math.Cos(b), math.Sin(b)
		p.cubicTo(m,
			cx+r*(cosA-k*sinA), cy+r*(sinA+k*cosA),
			cx+r*(cosB+k*sinB), cy+r*(sinB-k*cosB),
			cx+r*cosB, cy+r*sinB,
		)
		a = b
	}
}

// arcSweep returns the signed angle an arc covers.
func arcSweep(start, end float64, ccw bool) float64 {
	const tau = 2 * math.Pi
	if !ccw {
		if end-start >= tau {
			return tau
		}
		d := math.Mod(end-start, tau)
		if d < 0 {
			d += tau
		}
		return d
	}
	if start-end >= tau {
		return -tau
	}
	d := math.Mod(start-end, tau)
	if d < 0 {
		d += tau
	}
	return -d
}

// replay feeds the device-space path into a gg context with an identity
// matrix.
func (p *Path) replay(dc *gg.Context) {
	for _, seg := range p.segs {
		a, b, c := seg.pts[0], seg.pts[1], seg.pts[2]
		switch seg.kind {
		case segMove:
			dc.MoveTo(a.X, a.Y)
		case segLine:
			dc.LineTo(a.X, a.Y)
		case segQuad:
			dc.QuadraticTo(a.X, a.Y, b.X, b.Y)
		case segCubic:
			dc.CubicTo(a.X, a.Y, b.X, b.Y, c.X, c.Y)
		case segClose:
			dc.ClosePath()
		}
	}
}
