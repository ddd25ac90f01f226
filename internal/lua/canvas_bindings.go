package lua

import (
	"fmt"

	rt "github.com/arnodel/golua/runtime"

	"github.com/opd-ai/go-canvas/pkg/canvas"
)

type ctxFunc func(k call, ctx *canvas.Context2D) (rt.Cont, error)

// withCtx resolves the receiver as a drawing context.
func withCtx(fn ctxFunc) goFunc {
	return func(k call) (rt.Cont, error) {
		ctx, err := receiver[*canvas.Context2D](k, "a context")
		if err != nil {
			return nil, err
		}
		return fn(k, ctx)
	}
}

func action(do func(*canvas.Context2D) *canvas.Context2D) goFunc {
	return withCtx(func(k call, ctx *canvas.Context2D) (rt.Cont, error) {
		do(ctx)
		return k.chain()
	})
}

// numbers reads exactly n numeric arguments and passes them to do.
func numbers(n int, do func(ctx *canvas.Context2D, v []float64)) goFunc {
	return withCtx(func(k call, ctx *canvas.Context2D) (rt.Cont, error) {
		v, err := k.args.floats(0, n)
		if err != nil {
			return nil, err
		}
		do(ctx, v)
		return k.chain()
	})
}

func floatSetter(set func(*canvas.Context2D, float64) *canvas.Context2D) goFunc {
	return numbers(1, func(ctx *canvas.Context2D, v []float64) { set(ctx, v[0]) })
}

func floatGetter(get func(*canvas.Context2D) float64) goFunc {
	return withCtx(func(k call, ctx *canvas.Context2D) (rt.Cont, error) {
		return k.ret(rt.FloatValue(get(ctx)))
	})
}

func stringSetter(set func(*canvas.Context2D, string) *canvas.Context2D) goFunc {
	return withCtx(func(k call, ctx *canvas.Context2D) (rt.Cont, error) {
		s, err := k.args.str(0)
		if err != nil {
			return nil, err
		}
		set(ctx, s)
		return k.chain()
	})
}

func stringGetter(get func(*canvas.Context2D) string) goFunc {
	return withCtx(func(k call, ctx *canvas.Context2D) (rt.Cont, error) {
		return k.ret(rt.StringValue(get(ctx)))
	})
}

// enumSetter parses the token argument; unknown tokens are errors.
func enumSetter[E any](parse func(string) (E, error), set func(*canvas.Context2D, E) *canvas.Context2D) goFunc {
	return withCtx(func(k call, ctx *canvas.Context2D) (rt.Cont, error) {
		s, err := k.args.str(0)
		if err != nil {
			return nil, err
		}
		v, err := parse(s)
		if err != nil {
			return nil, err
		}
		set(ctx, v)
		return k.chain()
	})
}

func enumGetter[E fmt.Stringer](get func(*canvas.Context2D) E) goFunc {
	return withCtx(func(k call, ctx *canvas.Context2D) (rt.Cont, error) {
		return k.ret(rt.StringValue(get(ctx).String()))
	})
}

// styleSetter accepts a CSS colour string or a gradient.
func styleSetter(setColor func(*canvas.Context2D, string) *canvas.Context2D, setGradient func(*canvas.Context2D, *canvas.CanvasGradient) *canvas.Context2D) goFunc {
	return withCtx(func(k call, ctx *canvas.Context2D) (rt.Cont, error) {
		if g, ok := userData[*canvas.CanvasGradient](k.args, 0); ok {
			setGradient(ctx, g)
			return k.chain()
		}
		s, err := k.args.str(0)
		if err != nil {
			return nil, fmt.Errorf("%w: style must be a colour or a gradient", ErrInvalidArgument)
		}
		setColor(ctx, s)
		return k.chain()
	})
}

type luaResult struct {
	value rt.Value
	err   error
}

// scoped runs the Lua function argument inside one of the scope helpers
// and returns its first result. The function receives the context.
func scoped(run func(*canvas.Context2D, func() luaResult) luaResult) goFunc {
	return withCtx(func(k call, ctx *canvas.Context2D) (rt.Cont, error) {
		fn, err := k.args.function(0)
		if err != nil {
			return nil, err
		}
		res := run(ctx, func() luaResult {
			v, err := rt.Call1(k.t, fn, k.self)
			return luaResult{value: v, err: err}
		})
		if res.err != nil {
			return nil, res.err
		}
		return k.ret(res.value)
	})
}

func (m *CanvasModule) contextMethods() map[string]goFunc {
	type C = canvas.Context2D
	return map[string]goFunc{
		// Styles
		"line_width":          floatGetter((*C).LineWidth),
		"set_line_width":      floatSetter((*C).SetLineWidth),
		"fill_style":          stringGetter((*C).FillStyle),
		"set_fill_style":      styleSetter((*C).SetFillStyle, (*C).SetFillStyleGradient),
		"stroke_style":        stringGetter((*C).StrokeStyle),
		"set_stroke_style":    styleSetter((*C).SetStrokeStyle, (*C).SetStrokeStyleGradient),
		"shadow_color":        stringGetter((*C).ShadowColor),
		"set_shadow_color":    stringSetter((*C).SetShadowColor),
		"shadow_blur":         floatGetter((*C).ShadowBlur),
		"set_shadow_blur":     floatSetter((*C).SetShadowBlur),
		"shadow_offset_x":     floatGetter((*C).ShadowOffsetX),
		"set_shadow_offset_x": floatSetter((*C).SetShadowOffsetX),
		"shadow_offset_y":     floatGetter((*C).ShadowOffsetY),
		"set_shadow_offset_y": floatSetter((*C).SetShadowOffsetY),
		"line_cap":            enumGetter((*C).LineCap),
		"set_line_cap":        enumSetter(canvas.ParseLineCap, (*C).SetLineCap),
		"line_join":           enumGetter((*C).LineJoin),
		"set_line_join":       enumSetter(canvas.ParseLineJoin, (*C).SetLineJoin),
		"miter_limit":         floatGetter((*C).MiterLimit),
		"set_miter_limit":     floatSetter((*C).SetMiterLimit),
		"line_dash": withCtx(func(k call, ctx *C) (rt.Cont, error) {
			return k.ret(rt.TableValue(floatTable(ctx.LineDash())))
		}),
		"set_line_dash": withCtx(func(k call, ctx *C) (rt.Cont, error) {
			tbl, err := k.args.table(0)
			if err != nil {
				return nil, err
			}
			segments, err := numberList(tbl)
			if err != nil {
				return nil, err
			}
			ctx.SetLineDash(segments)
			return k.chain()
		}),
		"line_dash_offset":               floatGetter((*C).LineDashOffset),
		"set_line_dash_offset":           floatSetter((*C).SetLineDashOffset),
		"global_alpha":                   floatGetter((*C).GlobalAlpha),
		"set_global_alpha":               floatSetter((*C).SetGlobalAlpha),
		"global_composite_operation":     enumGetter((*C).GlobalCompositeOperation),
		"set_global_composite_operation": enumSetter(canvas.ParseComposite, (*C).SetGlobalCompositeOperation),

		// Paths
		"begin_path": action((*C).BeginPath),
		"close_path": action((*C).ClosePath),
		"move_to":    numbers(2, func(ctx *C, v []float64) { ctx.MoveTo(v[0], v[1]) }),
		"line_to":    numbers(2, func(ctx *C, v []float64) { ctx.LineTo(v[0], v[1]) }),
		"quadratic_curve_to": numbers(4, func(ctx *C, v []float64) {
			ctx.QuadraticCurveTo(canvas.QuadraticCurve{CPX: v[0], CPY: v[1], X: v[2], Y: v[3]})
		}),
		"bezier_curve_to": numbers(6, func(ctx *C, v []float64) {
			ctx.BezierCurveTo(canvas.BezierCurve{CP1X: v[0], CP1Y: v[1], CP2X: v[2], CP2Y: v[3], X: v[4], Y: v[5]})
		}),
		"arc": withCtx(func(k call, ctx *C) (rt.Cont, error) {
			v, err := k.args.floats(0, 5)
			if err != nil {
				return nil, err
			}
			ctx.Arc(canvas.Arc{X: v[0], Y: v[1], Radius: v[2], Start: v[3], End: v[4], Anticlockwise: k.args.boolean(5)})
			return k.chain()
		}),
		"rect":   numbers(4, func(ctx *C, v []float64) { ctx.Rect(rectOf(v)) }),
		"stroke": action((*C).Stroke),
		"fill":   action((*C).Fill),
		"clip":   action((*C).Clip),
		"is_point_in_path": withCtx(func(k call, ctx *C) (rt.Cont, error) {
			v, err := k.args.floats(0, 2)
			if err != nil {
				return nil, err
			}
			return k.ret(rt.BoolValue(ctx.IsPointInPath(v[0], v[1])))
		}),
		"fill_rect":   numbers(4, func(ctx *C, v []float64) { ctx.FillRect(rectOf(v)) }),
		"stroke_rect": numbers(4, func(ctx *C, v []float64) { ctx.StrokeRect(rectOf(v)) }),
		"clear_rect":  numbers(4, func(ctx *C, v []float64) { ctx.ClearRect(rectOf(v)) }),
		"stroke_path": scoped(canvas.StrokePath[luaResult]),
		"fill_path":   scoped(canvas.FillPath[luaResult]),

		// Transforms
		"scale": numbers(2, func(ctx *C, v []float64) {
			ctx.Scale(canvas.ScaleTransform{ScaleX: v[0], ScaleY: v[1]})
		}),
		"rotate": numbers(1, func(ctx *C, v []float64) { ctx.Rotate(v[0]) }),
		"translate": numbers(2, func(ctx *C, v []float64) {
			ctx.Translate(canvas.TranslateTransform{TranslateX: v[0], TranslateY: v[1]})
		}),
		"transform":       numbers(6, func(ctx *C, v []float64) { ctx.Transform(transformOf(v)) }),
		"set_transform":   numbers(6, func(ctx *C, v []float64) { ctx.SetTransform(transformOf(v)) }),
		"reset_transform": action((*C).ResetTransform),
		"get_transform": withCtx(func(k call, ctx *C) (rt.Cont, error) {
			tr := ctx.GetTransform()
			return k.ret(
				rt.FloatValue(tr.M11), rt.FloatValue(tr.M12),
				rt.FloatValue(tr.M21), rt.FloatValue(tr.M22),
				rt.FloatValue(tr.M31), rt.FloatValue(tr.M32),
			)
		}),

		// Text
		"font":           stringGetter((*C).Font),
		"set_font":       stringSetter((*C).SetFont),
		"text_align":     enumGetter((*C).TextAlign),
		"set_text_align": enumSetter(canvas.ParseTextAlign, (*C).SetTextAlign),
		"fill_text":      textFunc((*C).FillText),
		"stroke_text":    textFunc((*C).StrokeText),
		"measure_text": withCtx(func(k call, ctx *C) (rt.Cont, error) {
			s, err := k.args.str(0)
			if err != nil {
				return nil, err
			}
			metrics := rt.NewTable()
			metrics.Set(rt.StringValue("width"), rt.FloatValue(ctx.MeasureText(s).Width))
			return k.ret(rt.TableValue(metrics))
		}),

		// State
		"save":         action((*C).Save),
		"restore":      action((*C).Restore),
		"reset":        action((*C).Reset),
		"with_context": scoped(canvas.WithContext[luaResult]),

		// Pixels and images
		"get_image_data": withCtx(func(k call, ctx *C) (rt.Cont, error) {
			v, err := k.args.floats(0, 4)
			if err != nil {
				return nil, err
			}
			return k.ret(m.imageData(ctx.GetImageData(rectOf(v))))
		}),
		"put_image_data": withCtx(func(k call, ctx *C) (rt.Cont, error) {
			data, err := requireUserData[*canvas.ImageData](k.args, 0, "image data")
			if err != nil {
				return nil, err
			}
			v, err := k.args.floats(1, 2)
			if err != nil {
				return nil, err
			}
			if !k.args.present(3) {
				ctx.PutImageData(data, v[0], v[1])
				return k.chain()
			}
			dirty, err := k.args.floats(3, 4)
			if err != nil {
				return nil, err
			}
			ctx.PutImageDataDirty(data, v[0], v[1], dirty[0], dirty[1], dirty[2], dirty[3])
			return k.chain()
		}),
		"create_image_data": withCtx(func(k call, ctx *C) (rt.Cont, error) {
			if data, ok := userData[*canvas.ImageData](k.args, 0); ok {
				return k.ret(m.imageData(ctx.CreateImageDataCopy(data)))
			}
			v, err := k.args.floats(0, 2)
			if err != nil {
				return nil, err
			}
			return k.ret(m.imageData(ctx.CreateImageData(v[0], v[1])))
		}),
		"create_image_data_copy": withCtx(func(k call, ctx *C) (rt.Cont, error) {
			data, err := requireUserData[*canvas.ImageData](k.args, 0, "image data")
			if err != nil {
				return nil, err
			}
			return k.ret(m.imageData(ctx.CreateImageDataCopy(data)))
		}),
		"create_linear_gradient": withCtx(func(k call, ctx *C) (rt.Cont, error) {
			v, err := k.args.floats(0, 4)
			if err != nil {
				return nil, err
			}
			return k.ret(m.gradient(ctx.CreateLinearGradient(canvas.LinearGradient{X0: v[0], Y0: v[1], X1: v[2], Y1: v[3]})))
		}),
		"create_radial_gradient": withCtx(func(k call, ctx *C) (rt.Cont, error) {
			v, err := k.args.floats(0, 6)
			if err != nil {
				return nil, err
			}
			return k.ret(m.gradient(ctx.CreateRadialGradient(canvas.RadialGradient{
				X0: v[0], Y0: v[1], R0: v[2], X1: v[3], Y1: v[4], R1: v[5],
			})))
		}),
		"draw_image": withCtx(func(k call, ctx *C) (rt.Cont, error) {
			img, err := requireUserData[*canvas.ImageSource](k.args, 0, "an image")
			if err != nil {
				return nil, err
			}
			n := len(k.args) - 1
			for n > 0 && k.args[n].IsNil() {
				n--
			}
			v, err := k.args.floats(1, n)
			if err != nil {
				return nil, err
			}
			switch n {
			case 2:
				ctx.DrawImage(img, v[0], v[1])
			case 4:
				ctx.DrawImageScale(img, v[0], v[1], v[2], v[3])
			case 8:
				ctx.DrawImageFull(img, v[0], v[1], v[2], v[3], v[4], v[5], v[6], v[7])
			default:
				return nil, fmt.Errorf("%w: draw_image takes 2, 4 or 8 numbers, got %d", ErrInvalidArgument, n)
			}
			return k.chain()
		}),
		"canvas": withCtx(func(k call, ctx *C) (rt.Cont, error) {
			return k.ret(m.Element(ctx.Canvas()))
		}),
	}
}

func textFunc(draw func(*canvas.Context2D, string, float64, float64) *canvas.Context2D) goFunc {
	return withCtx(func(k call, ctx *canvas.Context2D) (rt.Cont, error) {
		s, err := k.args.str(0)
		if err != nil {
			return nil, err
		}
		v, err := k.args.floats(1, 2)
		if err != nil {
			return nil, err
		}
		draw(ctx, s, v[0], v[1])
		return k.chain()
	})
}

func rectOf(v []float64) canvas.Rectangle {
	return canvas.Rectangle{X: v[0], Y: v[1], W: v[2], H: v[3]}
}

func transformOf(v []float64) canvas.Transform {
	return canvas.Transform{M11: v[0], M12: v[1], M21: v[2], M22: v[3], M31: v[4], M32: v[5]}
}

func (m *CanvasModule) elementMethods() map[string]goFunc {
	type E = canvas.CanvasElement
	el := func(fn func(k call, e *E) (rt.Cont, error)) goFunc {
		return func(k call) (rt.Cont, error) {
			e, err := receiver[*E](k, "a canvas")
			if err != nil {
				return nil, err
			}
			return fn(k, e)
		}
	}
	resize := func(set func(*E, float64) *E) goFunc {
		return el(func(k call, e *E) (rt.Cont, error) {
			v, err := k.args.float(0)
			if err != nil {
				return nil, err
			}
			set(e, v)
			return k.chain()
		})
	}
	return map[string]goFunc{
		"id": el(func(k call, e *E) (rt.Cont, error) {
			return k.ret(rt.StringValue(e.ID()))
		}),
		"width": el(func(k call, e *E) (rt.Cont, error) {
			return k.ret(rt.FloatValue(e.Width()))
		}),
		"height": el(func(k call, e *E) (rt.Cont, error) {
			return k.ret(rt.FloatValue(e.Height()))
		}),
		"set_width":  resize((*E).SetWidth),
		"set_height": resize((*E).SetHeight),
		"set_size": el(func(k call, e *E) (rt.Cont, error) {
			v, err := k.args.floats(0, 2)
			if err != nil {
				return nil, err
			}
			e.SetDimensions(canvas.Dimensions{Width: v[0], Height: v[1]})
			return k.chain()
		}),
		"to_data_url": el(func(k call, e *E) (rt.Cont, error) {
			if !k.args.present(0) {
				return k.ret(rt.StringValue(e.ToDataURL()))
			}
			mime, err := k.args.str(0)
			if err != nil {
				return nil, err
			}
			quality, err := k.args.optFloat(1, -1)
			if err != nil {
				return nil, err
			}
			return k.ret(rt.StringValue(e.ToDataURLType(mime, quality)))
		}),
		"get_context": el(func(k call, e *E) (rt.Cont, error) {
			return k.ret(m.Context(e.Context2D()))
		}),
	}
}

func (m *CanvasModule) gradientMethods() map[string]goFunc {
	return map[string]goFunc{
		"add_color_stop": func(k call) (rt.Cont, error) {
			g, err := receiver[*canvas.CanvasGradient](k, "a gradient")
			if err != nil {
				return nil, err
			}
			offset, err := k.args.float(0)
			if err != nil {
				return nil, err
			}
			color, err := k.args.str(1)
			if err != nil {
				return nil, err
			}
			g.AddColorStop(offset, color)
			return k.chain()
		},
		"stops": func(k call) (rt.Cont, error) {
			g, err := receiver[*canvas.CanvasGradient](k, "a gradient")
			if err != nil {
				return nil, err
			}
			out := rt.NewTable()
			for i, s := range g.Stops() {
				stop := rt.NewTable()
				stop.Set(rt.StringValue("offset"), rt.FloatValue(s.Offset))
				stop.Set(rt.StringValue("color"), rt.StringValue(s.Color))
				out.Set(rt.IntValue(int64(i+1)), rt.TableValue(stop))
			}
			return k.ret(rt.TableValue(out))
		},
	}
}

// imageDataMethods index samples from 1 like Lua arrays.
func (m *CanvasModule) imageDataMethods() map[string]goFunc {
	data := func(fn func(k call, d *canvas.ImageData) (rt.Cont, error)) goFunc {
		return func(k call) (rt.Cont, error) {
			d, err := receiver[*canvas.ImageData](k, "image data")
			if err != nil {
				return nil, err
			}
			return fn(k, d)
		}
	}
	index := func(k call, d *canvas.ImageData) (int, error) {
		f, err := k.args.float(0)
		if err != nil {
			return 0, err
		}
		i := int(f) - 1
		if i < 0 || i >= len(d.Data()) {
			return 0, fmt.Errorf("%w: index %d out of range [1, %d]", ErrInvalidArgument, int(f), len(d.Data()))
		}
		return i, nil
	}
	return map[string]goFunc{
		"width": data(func(k call, d *canvas.ImageData) (rt.Cont, error) {
			return k.ret(rt.IntValue(int64(d.Width())))
		}),
		"height": data(func(k call, d *canvas.ImageData) (rt.Cont, error) {
			return k.ret(rt.IntValue(int64(d.Height())))
		}),
		"len": data(func(k call, d *canvas.ImageData) (rt.Cont, error) {
			return k.ret(rt.IntValue(int64(len(d.Data()))))
		}),
		"get": data(func(k call, d *canvas.ImageData) (rt.Cont, error) {
			i, err := index(k, d)
			if err != nil {
				return nil, err
			}
			return k.ret(rt.IntValue(int64(d.Data()[i])))
		}),
		"set": data(func(k call, d *canvas.ImageData) (rt.Cont, error) {
			i, err := index(k, d)
			if err != nil {
				return nil, err
			}
			v, err := k.args.float(1)
			if err != nil {
				return nil, err
			}
			d.Data()[i] = clampByte(v)
			return k.chain()
		}),
		"data": data(func(k call, d *canvas.ImageData) (rt.Cont, error) {
			out := rt.NewTable()
			for i, b := range d.Data() {
				out.Set(rt.IntValue(int64(i+1)), rt.IntValue(int64(b)))
			}
			return k.ret(rt.TableValue(out))
		}),
	}
}

func (m *CanvasModule) imageMethods() map[string]goFunc {
	img := func(fn func(k call, s *canvas.ImageSource) (rt.Cont, error)) goFunc {
		return func(k call) (rt.Cont, error) {
			s, err := receiver[*canvas.ImageSource](k, "an image")
			if err != nil {
				return nil, err
			}
			return fn(k, s)
		}
	}
	return map[string]goFunc{
		"width": img(func(k call, s *canvas.ImageSource) (rt.Cont, error) {
			return k.ret(rt.IntValue(int64(s.Width())))
		}),
		"height": img(func(k call, s *canvas.ImageSource) (rt.Cont, error) {
			return k.ret(rt.IntValue(int64(s.Height())))
		}),
		"src": img(func(k call, s *canvas.ImageSource) (rt.Cont, error) {
			return k.ret(rt.StringValue(s.Src()))
		}),
	}
}
