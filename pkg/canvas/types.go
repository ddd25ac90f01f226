package canvas

// Rectangle is an axis-aligned rectangle in user space.
type Rectangle struct {
	X, Y, W, H float64
}

// Arc describes a circular arc centred on (X, Y). Angles are in radians.
// Arcs run clockwise unless Anticlockwise is set.
type Arc struct {
	X, Y          float64
	Radius        float64
	Start, End    float64
	Anticlockwise bool
}

// QuadraticCurve is a quadratic Bézier segment with one control point.
type QuadraticCurve struct {
	CPX, CPY float64
	X, Y     float64
}

// BezierCurve is a cubic Bézier segment with two control points.
type BezierCurve struct {
	CP1X, CP1Y float64
	CP2X, CP2Y float64
	X, Y       float64
}

// ScaleTransform scales the user space.
type ScaleTransform struct {
	ScaleX, ScaleY float64
}

// TranslateTransform moves the user space origin.
type TranslateTransform struct {
	TranslateX, TranslateY float64
}

// Transform is an affine matrix in canvas order:
//
//	| M11 M21 M31 |
//	| M12 M22 M32 |
//	|  0   0   1  |
type Transform struct {
	M11, M12 float64
	M21, M22 float64
	M31, M32 float64
}

// Identity is the identity transform.
var Identity = Transform{M11: 1, M22: 1}

// LinearGradient is the axis of a linear gradient.
type LinearGradient struct {
	X0, Y0 float64
	X1, Y1 float64
}

// RadialGradient is the start and end circle of a radial gradient.
type RadialGradient struct {
	X0, Y0, R0 float64
	X1, Y1, R1 float64
}

// Dimensions is the declared size of a canvas element.
type Dimensions struct {
	Width  float64
	Height float64
}

// TextMetrics is the result of measuring a run of text.
type TextMetrics struct {
	Width float64
}
