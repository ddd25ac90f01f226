package canvas

import "fmt"

// LineCap is the shape drawn at the ends of open stroked subpaths.
type LineCap int

const (
	// LineCapButt ends the stroke flush with the endpoint.
	LineCapButt LineCap = iota
	// LineCapRound adds a half disc at each endpoint.
	LineCapRound
	// LineCapSquare extends the stroke by half the line width.
	LineCapSquare
)

var lineCapNames = [...]string{
	LineCapButt:   "butt",
	LineCapRound:  "round",
	LineCapSquare: "square",
}

// String returns the canonical canvas token.
func (c LineCap) String() string {
	if c < 0 || int(c) >= len(lineCapNames) {
		return fmt.Sprintf("LineCap(%d)", int(c))
	}
	return lineCapNames[c]
}

// ParseLineCap decodes a canonical line cap token.
func ParseLineCap(s string) (LineCap, error) {
	for i, name := range lineCapNames {
		if name == s {
			return LineCap(i), nil
		}
	}
	return 0, fmt.Errorf("%w: line cap %q", ErrInvalidEnum, s)
}

// LineJoin is the shape drawn where two stroked segments meet.
type LineJoin int

const (
	// LineJoinMiter extends the outer edges to a point, up to the miter limit.
	LineJoinMiter LineJoin = iota
	// LineJoinRound fills the corner with a disc.
	LineJoinRound
	// LineJoinBevel cuts the corner off.
	LineJoinBevel
)

var lineJoinNames = [...]string{
	LineJoinMiter: "miter",
	LineJoinRound: "round",
	LineJoinBevel: "bevel",
}

// String returns the canonical canvas token.
func (j LineJoin) String() string {
	if j < 0 || int(j) >= len(lineJoinNames) {
		return fmt.Sprintf("LineJoin(%d)", int(j))
	}
	return lineJoinNames[j]
}

// ParseLineJoin decodes a canonical line join token.
func ParseLineJoin(s string) (LineJoin, error) {
	for i, name := range lineJoinNames {
		if name == s {
			return LineJoin(i), nil
		}
	}
	return 0, fmt.Errorf("%w: line join %q", ErrInvalidEnum, s)
}

// Composite is a global composite operation: the Porter-Duff rule used to
// blend new drawing with the existing surface.
type Composite int

const (
	CompositeSourceOver Composite = iota
	CompositeSourceIn
	CompositeSourceOut
	CompositeSourceAtop
	CompositeDestinationOver
	CompositeDestinationIn
	CompositeDestinationOut
	CompositeDestinationAtop
	CompositeLighter
	CompositeCopy
	CompositeXor
)

var compositeNames = [...]string{
	CompositeSourceOver:      "source-over",
	CompositeSourceIn:        "source-in",
	CompositeSourceOut:       "source-out",
	CompositeSourceAtop:      "source-atop",
	CompositeDestinationOver: "destination-over",
	CompositeDestinationIn:   "destination-in",
	CompositeDestinationOut:  "destination-out",
	CompositeDestinationAtop: "destination-atop",
	CompositeLighter:         "lighter",
	CompositeCopy:            "copy",
	CompositeXor:             "xor",
}

// Composites lists every composite operation in declaration order.
func Composites() []Composite {
	out := make([]Composite, len(compositeNames))
	for i := range out {
		out[i] = Composite(i)
	}
	return out
}

// String returns the canonical canvas token.
func (c Composite) String() string {
	if c < 0 || int(c) >= len(compositeNames) {
		return fmt.Sprintf("Composite(%d)", int(c))
	}
	return compositeNames[c]
}

// ParseComposite decodes a canonical composite operation token.
func ParseComposite(s string) (Composite, error) {
	for i, name := range compositeNames {
		if name == s {
			return Composite(i), nil
		}
	}
	return 0, fmt.Errorf("%w: composite operation %q", ErrInvalidEnum, s)
}

// TextAlign positions text horizontally relative to the drawing point.
type TextAlign int

const (
	TextAlignLeft TextAlign = iota
	TextAlignRight
	TextAlignCenter
	TextAlignStart
	TextAlignEnd
)

var textAlignNames = [...]string{
	TextAlignLeft:   "left",
	TextAlignRight:  "right",
	TextAlignCenter: "center",
	TextAlignStart:  "start",
	TextAlignEnd:    "end",
}

// String returns the canonical canvas token.
func (a TextAlign) String() string {
	if a < 0 || int(a) >= len(textAlignNames) {
		return fmt.Sprintf("TextAlign(%d)", int(a))
	}
	return textAlignNames[a]
}

// ParseTextAlign decodes a canonical text alignment token.
func ParseTextAlign(s string) (TextAlign, error) {
	for i, name := range textAlignNames {
		if name == s {
			return TextAlign(i), nil
		}
	}
	return 0, fmt.Errorf("%w: text align %q", ErrInvalidEnum, s)
}

// MustParseTextAlign is like ParseTextAlign but panics on an unknown
// token. The host only ever reports the five canonical values, so a
// failure here means the binding itself is broken.
func MustParseTextAlign(s string) TextAlign {
	a, err := ParseTextAlign(s)
	if err != nil {
		panic(err)
	}
	return a
}
