package render

import (
	"math"
	"testing"
)

func newTestContext(t *testing.T, w, h float64) *Context {
	t.Helper()
	return NewSurface("test", w, h).Context()
}

func pixelAt(c *Context, x, y int) [4]uint8 {
	d := c.GetImageData(float64(x), float64(y), 1, 1)
	return [4]uint8{d.Data[0], d.Data[1], d.Data[2], d.Data[3]}
}

func wantPixel(t *testing.T, c *Context, x, y int, want [4]uint8) {
	t.Helper()
	if got := pixelAt(c, x, y); got != want {
		t.Errorf("pixel(%d,%d) = %v, want %v", x, y, got, want)
	}
}

var (
	red         = [4]uint8{255, 0, 0, 255}
	blue        = [4]uint8{0, 0, 255, 255}
	black       = [4]uint8{0, 0, 0, 255}
	transparent = [4]uint8{}
)

func TestFillRectRed(t *testing.T) {
	c := newTestContext(t, 10, 10)
	c.SetFillStyle("red")
	c.FillRect(0, 0, 10, 10)

	d := c.GetImageData(0, 0, 10, 10)
	if d.Width != 10 || d.Height != 10 || len(d.Data) != 400 {
		t.Fatalf("image data = %dx%d with %d bytes", d.Width, d.Height, len(d.Data))
	}
	for i := 0; i < len(d.Data); i += 4 {
		if d.Data[i] != 255 || d.Data[i+1] != 0 || d.Data[i+2] != 0 || d.Data[i+3] != 255 {
			t.Fatalf("pixel %d = %v, want [255 0 0 255]", i/4, d.Data[i:i+4])
		}
	}
}

func TestDefaults(t *testing.T) {
	c := newTestContext(t, 10, 10)
	if got := c.FillStyle().String(); got != "#000000" {
		t.Errorf("FillStyle() = %q, want #000000", got)
	}
	if got := c.LineWidth(); got != 1 {
		t.Errorf("LineWidth() = %v, want 1", got)
	}
	if got := c.LineCap(); got != "butt" {
		t.Errorf("LineCap() = %q, want butt", got)
	}
	if got := c.GlobalCompositeOperation(); got != "source-over" {
		t.Errorf("GlobalCompositeOperation() = %q, want source-over", got)
	}
	if got := c.Font(); got != DefaultFont {
		t.Errorf("Font() = %q, want %q", got, DefaultFont)
	}
	if got := c.TextAlign(); got != "start" {
		t.Errorf("TextAlign() = %q, want start", got)
	}
	if got := c.ShadowColor(); got != "rgba(0, 0, 0, 0)" {
		t.Errorf("ShadowColor() = %q", got)
	}
}

func TestInvalidValuesIgnored(t *testing.T) {
	c := newTestContext(t, 10, 10)
	c.SetFillStyle("red")
	c.SetFillStyle("not a color")
	c.SetLineCap("bogus")
	c.SetLineJoin("pointy")
	c.SetGlobalAlpha(2)
	c.SetGlobalCompositeOperation("multiply-ish")
	c.SetTextAlign("middle")
	c.SetFont("enormous")
	c.SetLineWidth(-3)

	if got := c.FillStyle().String(); got != "#ff0000" {
		t.Errorf("FillStyle() = %q, want #ff0000", got)
	}
	if c.LineCap() != "butt" || c.LineJoin() != "miter" {
		t.Errorf("line cap/join changed: %q %q", c.LineCap(), c.LineJoin())
	}
	if c.GlobalAlpha() != 1 {
		t.Errorf("GlobalAlpha() = %v, want 1", c.GlobalAlpha())
	}
	if c.GlobalCompositeOperation() != "source-over" {
		t.Errorf("GlobalCompositeOperation() = %q", c.GlobalCompositeOperation())
	}
	if c.TextAlign() != "start" {
		t.Errorf("TextAlign() = %q", c.TextAlign())
	}
	if c.Font() != DefaultFont {
		t.Errorf("Font() = %q", c.Font())
	}
	if c.LineWidth() != 1 {
		t.Errorf("LineWidth() = %v", c.LineWidth())
	}
}

func TestSaveRestore(t *testing.T) {
	c := newTestContext(t, 10, 10)
	c.SetFillStyle("red")
	c.Save()
	c.SetFillStyle("blue")
	c.Translate(3, 4)
	c.SetLineDash([]float64{2, 2})
	if c.SaveDepth() != 1 {
		t.Fatalf("SaveDepth() = %d, want 1", c.SaveDepth())
	}
	c.Restore()

	if got := c.FillStyle().String(); got != "#ff0000" {
		t.Errorf("FillStyle() after restore = %q, want #ff0000", got)
	}
	if got := c.GetTransform(); got != [6]float64{1, 0, 0, 1, 0, 0} {
		t.Errorf("GetTransform() after restore = %v", got)
	}
	if len(c.LineDash()) != 0 {
		t.Errorf("LineDash() after restore = %v", c.LineDash())
	}

	// Unbalanced restore is a no-op.
	c.Restore()
	if got := c.FillStyle().String(); got != "#ff0000" {
		t.Errorf("FillStyle() after empty restore = %q", got)
	}
}

func TestTransforms(t *testing.T) {
	c := newTestContext(t, 20, 20)
	c.Translate(10, 20)
	c.Scale(2, 3)
	if got := c.GetTransform(); got != [6]float64{2, 0, 0, 3, 10, 20} {
		t.Errorf("GetTransform() = %v", got)
	}

	c.SetTransform(1, 0, 0, 1, 0, 0)
	c.Transform(1, 0, 0, 1, 5, 5)
	c.Transform(2, 0, 0, 2, 0, 0)
	if got := c.GetTransform(); got != [6]float64{2, 0, 0, 2, 5, 5} {
		t.Errorf("GetTransform() after Transform = %v", got)
	}

	c.ResetTransform()
	c.Rotate(math.Pi / 2)
	m := c.GetTransform()
	if math.Abs(m[0]) > 1e-9 || math.Abs(m[1]-1) > 1e-9 || math.Abs(m[2]+1) > 1e-9 || math.Abs(m[3]) > 1e-9 {
		t.Errorf("GetTransform() after Rotate = %v", m)
	}

	c.Translate(math.NaN(), 1)
	if got := c.GetTransform(); got != m {
		t.Errorf("NaN translate changed the transform: %v", got)
	}
}

func TestTranslatedFill(t *testing.T) {
	c := newTestContext(t, 20, 20)
	c.SetFillStyle("blue")
	c.Translate(5, 5)
	c.FillRect(0, 0, 4, 4)

	wantPixel(t, c, 6, 6, blue)
	wantPixel(t, c, 2, 2, transparent)
	wantPixel(t, c, 10, 10, transparent)
}

func TestClip(t *testing.T) {
	c := newTestContext(t, 10, 10)
	c.BeginPath()
	c.Rect(0, 0, 5, 10)
	c.Clip()
	c.SetFillStyle("red")
	c.FillRect(0, 0, 10, 10)

	wantPixel(t, c, 2, 5, red)
	wantPixel(t, c, 7, 5, transparent)

	c.Save()
	c.BeginPath()
	c.Rect(0, 0, 10, 3)
	c.Clip()
	c.SetFillStyle("blue")
	c.FillRect(0, 0, 10, 10)
	c.Restore()

	wantPixel(t, c, 2, 1, blue)
	wantPixel(t, c, 7, 1, transparent)
	wantPixel(t, c, 2, 5, red)
	if c.clipMask() == nil {
		t.Error("clip mask lost after restore")
	}
}

func TestClearRect(t *testing.T) {
	c := newTestContext(t, 10, 10)
	c.SetFillStyle("red")
	c.FillRect(0, 0, 10, 10)
	c.ClearRect(0, 0, 5, 5)

	wantPixel(t, c, 2, 2, transparent)
	wantPixel(t, c, 7, 7, red)
}

func TestStrokeLine(t *testing.T) {
	c := newTestContext(t, 20, 20)
	c.SetStrokeStyle("blue")
	c.SetLineWidth(4)
	c.BeginPath()
	c.MoveTo(0, 10)
	c.LineTo(20, 10)
	c.Stroke()

	wantPixel(t, c, 10, 9, blue)
	wantPixel(t, c, 10, 2, transparent)
}

func TestStrokeRect(t *testing.T) {
	c := newTestContext(t, 20, 20)
	c.SetStrokeStyle("red")
	c.SetLineWidth(2)
	c.StrokeRect(4, 4, 12, 12)

	wantPixel(t, c, 4, 10, red)
	wantPixel(t, c, 10, 10, transparent)
}

func TestArcFill(t *testing.T) {
	c := newTestContext(t, 20, 20)
	c.SetFillStyle("red")
	c.BeginPath()
	c.Arc(10, 10, 8, 0, 2*math.Pi, false)
	c.Fill()

	wantPixel(t, c, 10, 10, red)
	wantPixel(t, c, 4, 10, red)
	wantPixel(t, c, 1, 1, transparent)
	wantPixel(t, c, 18, 18, transparent)
}

func TestCurves(t *testing.T) {
	c := newTestContext(t, 40, 40)
	c.SetFillStyle("blue")
	c.BeginPath()
	c.MoveTo(0, 40)
	c.QuadraticCurveTo(20, -20, 40, 40)
	c.ClosePath()
	c.Fill()
	wantPixel(t, c, 20, 30, blue)
	wantPixel(t, c, 2, 2, transparent)

	c.ClearRect(0, 0, 40, 40)
	c.BeginPath()
	c.MoveTo(0, 40)
	c.BezierCurveTo(0, 0, 40, 0, 40, 40)
	c.ClosePath()
	c.Fill()
	wantPixel(t, c, 20, 30, blue)
	wantPixel(t, c, 1, 1, transparent)
}

func TestIsPointInPath(t *testing.T) {
	c := newTestContext(t, 20, 20)
	if c.IsPointInPath(5, 5) {
		t.Error("empty path contains a point")
	}
	c.Rect(2, 2, 6, 6)
	if !c.IsPointInPath(5, 5) {
		t.Error("IsPointInPath(5,5) = false, want true")
	}
	if c.IsPointInPath(15, 15) {
		t.Error("IsPointInPath(15,15) = true, want false")
	}
	if c.IsPointInPath(-1, 5) {
		t.Error("IsPointInPath outside surface = true")
	}
}

func TestGlobalAlpha(t *testing.T) {
	c := newTestContext(t, 10, 10)
	c.SetGlobalAlpha(0.5)
	c.SetFillStyle("red")
	c.FillRect(0, 0, 10, 10)

	got := pixelAt(c, 5, 5)
	if got[0] != 255 || got[1] != 0 || got[2] != 0 {
		t.Errorf("colour = %v, want red", got)
	}
	if got[3] < 127 || got[3] > 128 {
		t.Errorf("alpha = %d, want ~128", got[3])
	}
}

func TestCompositeOperations(t *testing.T) {
	t.Run("destination-out", func(t *testing.T) {
		c := newTestContext(t, 10, 10)
		c.SetFillStyle("red")
		c.FillRect(0, 0, 10, 10)
		c.SetGlobalCompositeOperation("destination-out")
		c.FillRect(0, 0, 5, 10)
		wantPixel(t, c, 2, 5, transparent)
		wantPixel(t, c, 7, 5, red)
	})

	t.Run("destination-over", func(t *testing.T) {
		c := newTestContext(t, 10, 10)
		c.SetFillStyle("red")
		c.FillRect(0, 0, 5, 10)
		c.SetGlobalCompositeOperation("destination-over")
		c.SetFillStyle("blue")
		c.FillRect(0, 0, 10, 10)
		wantPixel(t, c, 2, 5, red)
		wantPixel(t, c, 7, 5, blue)
	})

	t.Run("copy clears outside the shape", func(t *testing.T) {
		c := newTestContext(t, 10, 10)
		c.SetFillStyle("red")
		c.FillRect(0, 0, 10, 10)
		c.SetGlobalCompositeOperation("copy")
		c.SetFillStyle("blue")
		c.FillRect(0, 0, 5, 10)
		wantPixel(t, c, 2, 5, blue)
		wantPixel(t, c, 7, 5, transparent)
	})

	t.Run("source-in", func(t *testing.T) {
		c := newTestContext(t, 10, 10)
		c.SetFillStyle("red")
		c.FillRect(0, 0, 5, 10)
		c.SetGlobalCompositeOperation("source-in")
		c.SetFillStyle("blue")
		c.FillRect(0, 0, 10, 10)
		wantPixel(t, c, 2, 5, blue)
		wantPixel(t, c, 7, 5, transparent)
	})

	t.Run("xor", func(t *testing.T) {
		c := newTestContext(t, 10, 10)
		c.SetFillStyle("red")
		c.FillRect(0, 0, 5, 10)
		c.SetGlobalCompositeOperation("xor")
		c.SetFillStyle("blue")
		c.FillRect(3, 0, 7, 10)
		wantPixel(t, c, 1, 5, red)
		wantPixel(t, c, 4, 5, transparent)
		wantPixel(t, c, 8, 5, blue)
	})
}

func TestShadow(t *testing.T) {
	c := newTestContext(t, 20, 20)
	c.SetShadowColor("black")
	c.SetShadowOffsetX(5)
	c.SetFillStyle("red")
	c.FillRect(0, 0, 5, 5)

	wantPixel(t, c, 2, 2, red)
	wantPixel(t, c, 7, 2, black)
	wantPixel(t, c, 15, 15, transparent)
}

func TestShadowBlurSpreads(t *testing.T) {
	c := newTestContext(t, 40, 40)
	c.SetShadowColor("black")
	c.SetShadowBlur(6)
	c.SetFillStyle("red")
	c.FillRect(15, 15, 10, 10)

	if a := pixelAt(c, 13, 20)[3]; a == 0 {
		t.Error("blurred shadow did not spread past the shape edge")
	}
	wantPixel(t, c, 20, 20, red)
}

func TestLineDash(t *testing.T) {
	c := newTestContext(t, 10, 10)
	tests := []struct {
		in   []float64
		want []float64
	}{
		{[]float64{5}, []float64{5, 5}},
		{[]float64{1, 2, 3}, []float64{1, 2, 3, 1, 2, 3}},
		{[]float64{4, 2}, []float64{4, 2}},
		{[]float64{0, 0}, nil},
	}
	for _, tt := range tests {
		c.SetLineDash(tt.in)
		got := c.LineDash()
		if len(got) != len(tt.want) {
			t.Errorf("SetLineDash(%v) -> %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("SetLineDash(%v) -> %v, want %v", tt.in, got, tt.want)
				break
			}
		}
	}

	c.SetLineDash([]float64{3, 3})
	c.SetLineDash([]float64{1, -1})
	if got := c.LineDash(); len(got) != 2 || got[0] != 3 {
		t.Errorf("negative dash was applied: %v", got)
	}
}

func TestLinearGradientFill(t *testing.T) {
	c := newTestContext(t, 100, 10)
	g := NewLinearGradient(0, 0, 100, 0)
	g.AddColorStop(0, "red")
	g.AddColorStop(1, "blue")
	c.SetFillGradient(g)
	c.FillRect(0, 0, 100, 10)

	left := pixelAt(c, 1, 5)
	right := pixelAt(c, 98, 5)
	if left[0] < 200 || left[2] > 55 {
		t.Errorf("left pixel = %v, want mostly red", left)
	}
	if right[2] < 200 || right[0] > 55 {
		t.Errorf("right pixel = %v, want mostly blue", right)
	}
	if c.FillStyle().Gradient != g {
		t.Error("FillStyle() does not report the gradient")
	}
	if c.FillStyle().String() != "" {
		t.Error("gradient paint should not serialize as a colour")
	}
}

func TestRadialGradientOffsets(t *testing.T) {
	tests := []struct {
		name       string
		circles    [6]float64
		x, y       float64
		wantOffset float64
		wantPaint  bool
	}{
		{"concentric", [6]float64{0, 0, 0, 0, 0, 10}, 5, 0, 0.5, true},
		{"concentric inner radius", [6]float64{0, 0, 10, 0, 0, 20}, 15, 0, 0.5, true},
		{"cone end circle", [6]float64{0, 0, 0, 40, 0, 20}, 20, 0, 1, true},
		{"cone largest root", [6]float64{0, 0, 0, 40, 0, 20}, 40, 0, 2, true},
		{"cone mid", [6]float64{0, 0, 0, 40, 0, 20}, 30, 0, 1.5, true},
		{"behind cone apex", [6]float64{0, 0, 0, 40, 0, 20}, -10, 0, 0, false},
		{"equal circles", [6]float64{5, 5, 3, 5, 5, 3}, 5, 8, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.circles
			s := newConicalSampler(c[0], c[1], c[2], c[3], c[4], c[5], nil)
			got, ok := s.offset(tt.x, tt.y)
			if ok != tt.wantPaint {
				t.Fatalf("offset(%v, %v) painted = %v, want %v", tt.x, tt.y, ok, tt.wantPaint)
			}
			if ok && math.Abs(got-tt.wantOffset) > 1e-9 {
				t.Errorf("offset(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.wantOffset)
			}
		})
	}
}

func TestRadialGradientCone(t *testing.T) {
	c := newTestContext(t, 60, 20)
	g := NewRadialGradient(10, 10, 0, 50, 10, 20)
	g.AddColorStop(0, "red")
	g.AddColorStop(1, "blue")
	c.SetFillGradient(g)
	c.FillRect(0, 0, 60, 20)

	wantPixel(t, c, 2, 10, transparent)
	if got := pixelAt(c, 30, 10); got[3] != 255 || got[2] < got[0] {
		t.Errorf("pixel inside the cone = %v, want opaque and mostly blue", got)
	}
}

func TestGradientStopsKeepOrder(t *testing.T) {
	g := NewRadialGradient(0, 0, 0, 0, 0, 10)
	g.AddColorStop(1, "blue")
	g.AddColorStop(0, "red")
	g.AddColorStop(0.5, "lime")
	g.AddColorStop(1.5, "black")
	g.AddColorStop(0.2, "nonsense")

	stops := g.Stops()
	want := []float64{1, 0, 0.5}
	if len(stops) != len(want) {
		t.Fatalf("Stops() = %v, want offsets %v", stops, want)
	}
	for i, s := range stops {
		if s.Offset != want[i] {
			t.Errorf("stop %d offset = %v, want %v", i, s.Offset, want[i])
		}
	}
	if g.Kind() != GradientRadial {
		t.Errorf("Kind() = %v, want GradientRadial", g.Kind())
	}

	// Painting must not reorder the stored stops.
	c := newTestContext(t, 10, 10)
	c.SetFillGradient(g)
	c.FillRect(0, 0, 10, 10)
	if got := g.Stops()[0].Offset; got != 1 {
		t.Errorf("first stop after paint = %v, want 1", got)
	}
}

func TestSurfaceResizeResets(t *testing.T) {
	s := NewSurface("resize", 10, 10)
	c := s.Context()
	c.SetFillStyle("red")
	c.FillRect(0, 0, 10, 10)
	c.Translate(3, 3)

	s.SetWidth(20)
	if w, h := s.PixelSize(); w != 20 || h != 10 {
		t.Fatalf("PixelSize() = %dx%d, want 20x10", w, h)
	}
	wantPixel(t, c, 5, 5, transparent)
	if got := c.FillStyle().String(); got != "#000000" {
		t.Errorf("FillStyle() after resize = %q", got)
	}
	if got := c.GetTransform(); got != [6]float64{1, 0, 0, 1, 0, 0} {
		t.Errorf("GetTransform() after resize = %v", got)
	}
	if s.Context() != c {
		t.Error("resize replaced the context")
	}
}

func TestSurfaceCheckpointRollback(t *testing.T) {
	s := NewSurface("checkpoint", 10, 10)
	c := s.Context()
	c.SetFillStyle("red")
	c.FillRect(0, 0, 10, 10)
	c.Translate(2, 0)
	c.Save()
	c.SetFillStyle("blue")
	c.BeginPath()
	c.Rect(0, 0, 4, 4)

	cp := s.Checkpoint()
	s.SetHeight(30)
	c.SetFillStyle("#00ff00")
	c.FillRect(0, 0, 10, 10)
	c.Restore()
	s.Rollback(cp)

	if w, h := s.PixelSize(); w != 10 || h != 10 {
		t.Fatalf("PixelSize() after rollback = %dx%d, want 10x10", w, h)
	}
	if s.Height() != 10 {
		t.Errorf("Height() after rollback = %v, want 10", s.Height())
	}
	wantPixel(t, c, 5, 5, red)
	if got := c.FillStyle().String(); got != "#0000ff" {
		t.Errorf("FillStyle() after rollback = %q, want #0000ff", got)
	}
	if got := c.GetTransform(); got != [6]float64{1, 0, 0, 1, 2, 0} {
		t.Errorf("GetTransform() after rollback = %v", got)
	}
	if c.SaveDepth() != 1 {
		t.Errorf("SaveDepth() after rollback = %d, want 1", c.SaveDepth())
	}
	if !c.IsPointInPath(3, 1) {
		t.Error("current path was not restored")
	}

	// The checkpoint is independent of later drawing.
	c.SetFillStyle("#00ff00")
	c.FillRect(0, 0, 10, 10)
	s.Rollback(cp)
	wantPixel(t, c, 5, 5, red)
}

func TestSurfaceZeroSize(t *testing.T) {
	s := NewSurface("zero", 0, 0)
	if s.Width() != 0 || s.Height() != 0 {
		t.Errorf("declared size = %vx%v, want 0x0", s.Width(), s.Height())
	}
	if w, h := s.PixelSize(); w != 1 || h != 1 {
		t.Errorf("PixelSize() = %dx%d, want 1x1", w, h)
	}
}

func TestCopyPremultiplied(t *testing.T) {
	s := NewSurface("premul", 2, 1)
	c := s.Context()
	c.SetFillStyle("rgba(255, 0, 0, 0.5)")
	c.FillRect(0, 0, 2, 1)

	dst := make([]byte, 8)
	s.CopyPremultiplied(dst)
	if dst[3] < 127 || dst[3] > 128 {
		t.Fatalf("alpha = %d, want ~128", dst[3])
	}
	if dst[0] != dst[3] {
		t.Errorf("premultiplied red = %d, want %d", dst[0], dst[3])
	}
}

func TestArcSweep(t *testing.T) {
	tests := []struct {
		name       string
		start, end float64
		ccw        bool
		want       float64
	}{
		{"quarter clockwise", 0, math.Pi / 2, false, math.Pi / 2},
		{"quarter anticlockwise", 0, math.Pi / 2, true, -3 * math.Pi / 2},
		{"full circle", 0, 2 * math.Pi, false, 2 * math.Pi},
		{"more than full", 0, 7, false, 2 * math.Pi},
		{"full anticlockwise", 0, -2 * math.Pi, true, -2 * math.Pi},
		{"empty", 1, 1, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := arcSweep(tt.start, tt.end, tt.ccw); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("arcSweep() = %v, want %v", got, tt.want)
			}
		})
	}
}
