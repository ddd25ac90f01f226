package canvas

// StrokePath begins a new path, runs action to build it and strokes the
// result exactly once. The action's return value is passed through.
func StrokePath[T any](ctx *Context2D, action func() T) T {
	ctx.BeginPath()
	result := action()
	ctx.Stroke()
	return result
}

// FillPath begins a new path, runs action to build it and fills the result
// exactly once. The action's return value is passed through.
func FillPath[T any](ctx *Context2D, action func() T) T {
	ctx.BeginPath()
	result := action()
	ctx.Fill()
	return result
}

// WithContext saves the context state, runs action and restores the state
// when action returns or panics.
func WithContext[T any](ctx *Context2D, action func() T) T {
	ctx.Save()
	defer ctx.Restore()
	return action()
}
