// Package canvas is a typed Go binding over the 2D drawing surface in
// internal/render.
//
// A surface is looked up by identifier and yields a single long-lived
// drawing context. Every mutator on *Context2D returns the same context so
// calls can be chained:
//
//	el, ok := canvas.GetCanvasElementByID("main")
//	if !ok {
//		return errors.New("no canvas")
//	}
//	ctx := el.Context2D()
//	ctx.SetFillStyle("red").
//		FillRect(canvas.Rectangle{X: 0, Y: 0, W: 10, H: 10})
//
// Enumerated options (line cap, composite operation, text alignment) are
// closed Go types that encode to the canonical canvas strings. Colours and
// fonts are CSS strings passed through to the host, which ignores values
// it cannot parse.
//
// Structured scopes pair begin/stroke, begin/fill and save/restore:
//
//	area := canvas.FillPath(ctx, func() float64 {
//		ctx.Rect(canvas.Rectangle{W: 4, H: 5})
//		return 20
//	})
//
// Image loading runs on its own goroutine and reports failures through an
// error value; LoadImage is the blocking, cancellable form.
package canvas
