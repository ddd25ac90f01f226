package render

import (
	"image"

	"github.com/gogpu/gg"
)

var lineCaps = map[string]gg.LineCap{
	"butt":   gg.LineCapButt,
	"round":  gg.LineCapRound,
	"square": gg.LineCapSquare,
}

var lineJoins = map[string]gg.LineJoin{
	"miter": gg.LineJoinMiter,
	"round": gg.LineJoinRound,
	"bevel": gg.LineJoinBevel,
}

var textAligns = map[string]bool{
	"start":  true,
	"end":    true,
	"left":   true,
	"right":  true,
	"center": true,
}

// drawState is the part of a context saved and restored by save/restore.
// The current path is not part of it.
type drawState struct {
	matrix      gg.Matrix
	fill        Paint
	stroke      Paint
	lineWidth   float64
	lineCap     string
	lineJoin    string
	miterLimit  float64
	dash        []float64
	dashOffset  float64
	shadow      shadow
	globalAlpha float64
	composite   string
	font        Font
	textAlign   string
	clip        *image.Alpha
}

func defaultState() drawState {
	f, err := ParseFont(DefaultFont)
	if err != nil {
		panic(err)
	}
	black := gg.RGBA{A: 1}
	return drawState{
		matrix:      gg.Identity(),
		fill:        SolidPaint(black),
		stroke:      SolidPaint(black),
		lineWidth:   1,
		lineCap:     "butt",
		lineJoin:    "miter",
		miterLimit:  10,
		shadow:      shadow{color: gg.RGBA{}},
		globalAlpha: 1,
		composite:   "source-over",
		font:        f,
		textAlign:   "start",
	}
}

// clone copies the state. The clip mask is shared because masks are
// replaced, never mutated.
func (s drawState) clone() drawState {
	c := s
	if s.dash != nil {
		c.dash = append([]float64(nil), s.dash...)
	}
	return c
}
