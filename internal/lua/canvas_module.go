package lua

import (
	"context"
	"fmt"

	rt "github.com/arnodel/golua/runtime"

	"github.com/opd-ai/go-canvas/pkg/canvas"
)

// call bundles one invocation of a binding. For methods self is the
// receiver and args holds the remaining arguments; for plain functions
// self is nil.
type call struct {
	t    *rt.Thread
	c    *rt.GoCont
	self rt.Value
	args argList
}

func (k call) ret(vals ...rt.Value) (rt.Cont, error) {
	return k.c.PushingNext(k.t.Runtime, vals...), nil
}

// chain returns the receiver so calls can be strung together.
func (k call) chain() (rt.Cont, error) {
	return k.ret(k.self)
}

type goFunc func(k call) (rt.Cont, error)

// CanvasModule exposes pkg/canvas to scripts as the "canvas" module,
// the ctx_* global functions and methods on the returned userdata.
type CanvasModule struct {
	runtime *Runtime
	loadCtx context.Context

	module     *rt.Table
	canvasMeta *rt.Table
	ctxMeta    *rt.Table
	gradMeta   *rt.Table
	dataMeta   *rt.Table
	imageMeta  *rt.Table
}

// CanvasModuleOption configures a CanvasModule at construction time.
type CanvasModuleOption func(*CanvasModule)

// WithLoadContext bounds image loads started by scripts with ctx.
func WithLoadContext(ctx context.Context) CanvasModuleOption {
	return func(m *CanvasModule) {
		if ctx != nil {
			m.loadCtx = ctx
		}
	}
}

// NewCanvasModule registers the canvas module and the ctx_* globals in
// runtime.
func NewCanvasModule(runtime *Runtime, opts ...CanvasModuleOption) (*CanvasModule, error) {
	if runtime == nil {
		return nil, ErrNilRuntime
	}
	m := &CanvasModule{
		runtime: runtime,
		loadCtx: context.Background(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	elementMethods := m.elementMethods()
	contextMethods := m.contextMethods()

	m.canvasMeta = newMeta("canvas", elementMethods)
	m.ctxMeta = newMeta("ctx", contextMethods)
	m.gradMeta = newMeta("gradient", m.gradientMethods())
	m.dataMeta = newMeta("image_data", m.imageDataMethods())
	m.imageMeta = newMeta("image", m.imageMethods())

	m.module = rt.NewTable()
	for name, fn := range m.moduleFunctions() {
		setTableGoFunction(m.module, name, bindFunc("canvas."+name, fn))
	}
	for _, name := range []string{"width", "height", "set_size", "to_data_url", "get_context"} {
		setTableGoFunction(m.module, name, bindMethod("canvas."+name, elementMethods[name]))
	}
	runtime.RegisterModule("canvas", m.module)

	for name, fn := range contextMethods {
		global := "ctx_" + name
		runtime.SetGoFunction(global, bindMethod(global, fn), 0, true)
	}
	return m, nil
}

// Element wraps a canvas element as a Lua value.
func (m *CanvasModule) Element(el *canvas.CanvasElement) rt.Value {
	if el == nil {
		return rt.NilValue
	}
	return rt.UserDataValue(rt.NewUserData(el, m.canvasMeta))
}

// Context wraps a drawing context as a Lua value.
func (m *CanvasModule) Context(ctx *canvas.Context2D) rt.Value {
	if ctx == nil {
		return rt.NilValue
	}
	return rt.UserDataValue(rt.NewUserData(ctx, m.ctxMeta))
}

func (m *CanvasModule) gradient(g *canvas.CanvasGradient) rt.Value {
	return rt.UserDataValue(rt.NewUserData(g, m.gradMeta))
}

func (m *CanvasModule) imageData(d *canvas.ImageData) rt.Value {
	return rt.UserDataValue(rt.NewUserData(d, m.dataMeta))
}

func (m *CanvasModule) image(img *canvas.ImageSource) rt.Value {
	return rt.UserDataValue(rt.NewUserData(img, m.imageMeta))
}

// moduleFunctions are the receiver-less members of the canvas table.
func (m *CanvasModule) moduleFunctions() map[string]goFunc {
	return map[string]goFunc{
		"get": func(k call) (rt.Cont, error) {
			id, err := k.args.str(0)
			if err != nil {
				return nil, err
			}
			el, ok := canvas.GetCanvasElementByID(id)
			if !ok {
				return k.ret(rt.NilValue)
			}
			return k.ret(m.Element(el))
		},
		"create": func(k call) (rt.Cont, error) {
			id, err := k.args.str(0)
			if err != nil {
				return nil, err
			}
			w, err := k.args.optFloat(1, 300)
			if err != nil {
				return nil, err
			}
			h, err := k.args.optFloat(2, 150)
			if err != nil {
				return nil, err
			}
			el, err := canvas.NewCanvas(id, w, h)
			if err != nil {
				return nil, err
			}
			return k.ret(m.Element(el))
		},
		"remove": func(k call) (rt.Cont, error) {
			id, err := k.args.str(0)
			if err != nil {
				return nil, err
			}
			return k.ret(rt.BoolValue(canvas.RemoveCanvas(id)))
		},
		"ids": func(k call) (rt.Cont, error) {
			return k.ret(rt.TableValue(stringTable(canvas.CanvasIDs())))
		},
		"load_image": func(k call) (rt.Cont, error) {
			src, err := k.args.str(0)
			if err != nil {
				return nil, err
			}
			img, err := canvas.LoadImage(m.loadCtx, src)
			if err != nil {
				return k.ret(rt.NilValue, rt.StringValue(err.Error()))
			}
			return k.ret(m.image(img))
		},
	}
}

// newMeta builds a metatable whose __index holds the methods.
func newMeta(kind string, methods map[string]goFunc) *rt.Table {
	index := rt.NewTable()
	for name, fn := range methods {
		setTableGoFunction(index, name, bindMethod(kind+":"+name, fn))
	}
	meta := rt.NewTable()
	meta.Set(rt.StringValue("__index"), rt.TableValue(index))
	meta.Set(rt.StringValue("__name"), rt.StringValue("canvas."+kind))
	return meta
}

// bindMethod adapts fn to Golua, splitting off the receiver and
// prefixing errors with name.
func bindMethod(name string, fn goFunc) rt.GoFunctionFunc {
	return func(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
		all := getAllArgs(c)
		k := call{t: t, c: c, self: rt.NilValue}
		if len(all) > 0 {
			k.self = all[0]
			k.args = argList(all[1:])
		}
		next, err := fn(k)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return next, nil
	}
}

// bindFunc adapts fn to Golua and prefixes errors with name.
func bindFunc(name string, fn goFunc) rt.GoFunctionFunc {
	return func(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
		next, err := fn(call{t: t, c: c, self: rt.NilValue, args: getAllArgs(c)})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return next, nil
	}
}

func setTableGoFunction(tbl *rt.Table, name string, fn rt.GoFunctionFunc) {
	tbl.Set(rt.StringValue(name), rt.FunctionValue(newGoFunction(fn, name, 0, true)))
}

// receiver extracts the payload of the receiver as T.
func receiver[T any](k call, kind string) (T, error) {
	return requireUserData[T](argList{k.self}, 0, kind)
}
