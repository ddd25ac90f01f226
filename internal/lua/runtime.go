// Package lua hosts sketch scripts in a sandboxed Golua runtime and
// exposes the canvas adapter to them.
package lua

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/arnodel/golua/lib"
	rt "github.com/arnodel/golua/runtime"
)

// RuntimeConfig contains the resource limits for script execution.
type RuntimeConfig struct {
	// CPULimit is the instruction budget for one Execute or Call.
	// 0 means unlimited.
	CPULimit uint64
	// MemoryLimit is the allocation budget in bytes for one Execute or
	// Call. 0 means unlimited.
	MemoryLimit uint64
	// Stdout receives print output in addition to the capture buffer.
	Stdout io.Writer
}

// DefaultConfig returns 10M instructions and 50 MB per call, with print
// output sent to os.Stdout.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		CPULimit:    10_000_000,
		MemoryLimit: 50 * 1024 * 1024,
		Stdout:      os.Stdout,
	}
}

// Runtime wraps a Golua runtime with hard resource limits. Every
// exported method is safe for concurrent use; Go functions called from
// Lua must not call back into the Runtime.
type Runtime struct {
	config  RuntimeConfig
	runtime *rt.Runtime
	output  *bytes.Buffer
	cleanup func()
	mu      sync.RWMutex
}

// New creates a Runtime with the Lua standard libraries loaded.
func New(config RuntimeConfig) (*Runtime, error) {
	output := &bytes.Buffer{}
	var stdout io.Writer = output
	if config.Stdout != nil {
		stdout = io.MultiWriter(config.Stdout, output)
	}

	runtime := rt.New(stdout)
	cleanup := lib.LoadAll(runtime)

	return &Runtime{
		config:  config,
		runtime: runtime,
		output:  output,
		cleanup: cleanup,
	}, nil
}

// LoadString compiles a chunk of Lua source.
func (r *Runtime) LoadString(name, code string) (*rt.Closure, error) {
	return r.load(name, []byte(code))
}

// LoadFile reads and compiles a Lua file.
func (r *Runtime) LoadFile(path string) (*rt.Closure, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script %s: %w", path, err)
	}
	return r.load(path, content)
}

func (r *Runtime) load(name string, code []byte) (*rt.Closure, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	closure, err := r.runtime.CompileAndLoadLuaChunk(
		name,
		code,
		rt.TableValue(r.runtime.GlobalEnv()),
	)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	return closure, nil
}

// Execute runs a compiled chunk within the configured limits.
func (r *Runtime) Execute(closure *rt.Closure) (rt.Value, error) {
	if closure == nil {
		return rt.NilValue, ErrNilClosure
	}
	return r.call(rt.FunctionValue(closure))
}

// ExecuteString compiles and runs a chunk of Lua source.
func (r *Runtime) ExecuteString(name, code string) (rt.Value, error) {
	closure, err := r.LoadString(name, code)
	if err != nil {
		return rt.NilValue, err
	}
	return r.Execute(closure)
}

// ExecuteFile compiles and runs a Lua file.
func (r *Runtime) ExecuteFile(path string) (rt.Value, error) {
	closure, err := r.LoadFile(path)
	if err != nil {
		return rt.NilValue, err
	}
	return r.Execute(closure)
}

// GetGlobal returns a global variable, or nil if it is unset.
func (r *Runtime) GetGlobal(name string) rt.Value {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.runtime.GlobalEnv().Get(rt.StringValue(name))
}

// SetGlobal sets a global variable.
func (r *Runtime) SetGlobal(name string, value rt.Value) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.runtime.GlobalEnv().Set(rt.StringValue(name), value)
}

// SetGoFunction registers fn as a global Lua function.
func (r *Runtime) SetGoFunction(name string, fn rt.GoFunctionFunc, nArgs int, hasVarArgs bool) {
	r.SetGlobal(name, rt.FunctionValue(newGoFunction(fn, name, nArgs, hasVarArgs)))
}

// RegisterModule makes tbl available as the global name and as the
// result of require(name).
func (r *Runtime) RegisterModule(name string, tbl *rt.Table) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := rt.StringValue(name)
	r.runtime.GlobalEnv().Set(key, rt.TableValue(tbl))

	pkg := r.runtime.GlobalEnv().Get(rt.StringValue("package"))
	pkgTable, ok := pkg.TryTable()
	if !ok {
		return
	}
	loaded, ok := pkgTable.Get(rt.StringValue("loaded")).TryTable()
	if !ok {
		return
	}
	loaded.Set(key, rt.TableValue(tbl))
}

// CallFunction calls the global function name within the configured
// limits and returns its first result.
func (r *Runtime) CallFunction(name string, args ...rt.Value) (rt.Value, error) {
	fn := r.GetGlobal(name)
	if fn.IsNil() {
		return rt.NilValue, fmt.Errorf("%w: %s", ErrFunctionNotFound, name)
	}
	result, err := r.call(fn, args...)
	if err != nil {
		return rt.NilValue, fmt.Errorf("call %s: %w", name, err)
	}
	return result, nil
}

// HasFunction reports whether the global name is a function.
func (r *Runtime) HasFunction(name string) bool {
	return r.GetGlobal(name).Type() == rt.FunctionType
}

func (r *Runtime) call(fn rt.Value, args ...rt.Value) (rt.Value, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.runtime.PushContext(rt.RuntimeContextDef{
		HardLimits: rt.RuntimeResources{
			Cpu:    r.config.CPULimit,
			Memory: r.config.MemoryLimit,
		},
	})
	defer r.runtime.PopContext()

	result, err := rt.Call1(r.runtime.MainThread(), fn, args...)
	if err != nil {
		return rt.NilValue, fmt.Errorf("lua: %w", err)
	}
	return result, nil
}

// Output returns everything printed by scripts since the last
// ClearOutput.
func (r *Runtime) Output() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.output.String()
}

// ClearOutput empties the capture buffer.
func (r *Runtime) ClearOutput() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.output.Reset()
}

// Config returns the runtime limits.
func (r *Runtime) Config() RuntimeConfig {
	return r.config
}

// Close releases the standard library resources. The Runtime must not
// be used afterwards.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cleanup != nil {
		r.cleanup()
		r.cleanup = nil
	}
	return nil
}

func newGoFunction(fn rt.GoFunctionFunc, name string, nArgs int, hasVarArgs bool) *rt.GoFunction {
	f := rt.NewGoFunction(fn, name, nArgs, hasVarArgs)
	rt.SolemnlyDeclareCompliance(rt.ComplyMemSafe|rt.ComplyCpuSafe, f)
	return f
}
