package config

import (
	"fmt"
	"io"
	"sync"

	"github.com/arnodel/golua/lib"
	rt "github.com/arnodel/golua/runtime"
)

// LuaConfigParser evaluates config chunks in a sandboxed Golua runtime and
// reads the canvas.config table they leave behind.
type LuaConfigParser struct {
	runtime *rt.Runtime
	cleanup func()
	mu      sync.Mutex
}

// NewLuaConfigParser creates a parser whose print output is discarded.
func NewLuaConfigParser() (*LuaConfigParser, error) {
	return NewLuaConfigParserWithOutput(io.Discard)
}

// NewLuaConfigParserWithOutput creates a parser that sends print output
// to stdout.
func NewLuaConfigParserWithOutput(stdout io.Writer) (*LuaConfigParser, error) {
	if stdout == nil {
		stdout = io.Discard
	}
	runtime := rt.New(stdout)
	cleanup := lib.LoadAll(runtime)
	return &LuaConfigParser{runtime: runtime, cleanup: cleanup}, nil
}

// Parse evaluates content and returns the resulting configuration.
// Fields the chunk does not set keep their defaults.
func (p *LuaConfigParser) Parse(name string, content []byte) (*Config, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.initCanvasGlobal()

	closure, err := p.runtime.CompileAndLoadLuaChunk(
		name,
		content,
		rt.TableValue(p.runtime.GlobalEnv()),
	)
	if err != nil {
		return nil, fmt.Errorf("compile config: %w", err)
	}

	p.runtime.PushContext(rt.RuntimeContextDef{
		HardLimits: rt.RuntimeResources{
			Cpu:    DefaultCPULimit,
			Memory: DefaultMemoryLimit,
		},
	})
	defer p.runtime.PopContext()

	if _, err := rt.Call1(p.runtime.MainThread(), rt.FunctionValue(closure)); err != nil {
		return nil, fmt.Errorf("execute config: %w", err)
	}
	return p.extractConfig()
}

// initCanvasGlobal resets the canvas global to { config = {} }.
func (p *LuaConfigParser) initCanvasGlobal() {
	canvasTable := rt.NewTable()
	canvasTable.Set(rt.StringValue("config"), rt.TableValue(rt.NewTable()))
	p.runtime.GlobalEnv().Set(rt.StringValue("canvas"), rt.TableValue(canvasTable))
}

func (p *LuaConfigParser) extractConfig() (*Config, error) {
	cfg := DefaultConfig()

	canvasVal := p.runtime.GlobalEnv().Get(rt.StringValue("canvas"))
	canvasTable, ok := canvasVal.TryTable()
	if !ok {
		return nil, fmt.Errorf("%w: canvas is not a table", ErrInvalidConfig)
	}
	configTable, ok := canvasTable.Get(rt.StringValue("config")).TryTable()
	if !ok {
		return nil, fmt.Errorf("%w: canvas.config is not a table", ErrInvalidConfig)
	}
	if err := extractConfigTable(&cfg, configTable); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func extractConfigTable(cfg *Config, table *rt.Table) error {
	texts := []struct {
		key    string
		target *string
	}{
		{"id", &cfg.ID},
		{"script", &cfg.Script},
		{"output", &cfg.Output},
		{"background", &cfg.Background},
		{"font", &cfg.Font},
	}
	for _, f := range texts {
		v, err := getTableString(table, f.key)
		if err != nil {
			return err
		}
		if v != nil {
			*f.target = *v
		}
	}

	numbers := []struct {
		key    string
		target *float64
	}{
		{"width", &cfg.Width},
		{"height", &cfg.Height},
		{"fps", &cfg.FPS},
	}
	for _, f := range numbers {
		v, err := getTableFloat(table, f.key)
		if err != nil {
			return err
		}
		if v != nil {
			*f.target = *v
		}
	}

	limits := []struct {
		key    string
		target *uint64
	}{
		{"cpu_limit", &cfg.CPULimit},
		{"memory_limit", &cfg.MemoryLimit},
	}
	for _, f := range limits {
		v, err := getTableFloat(table, f.key)
		if err != nil {
			return err
		}
		if v == nil {
			continue
		}
		if *v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, f.key)
		}
		*f.target = uint64(*v)
	}

	flags := []struct {
		key    string
		target *bool
	}{
		{"preview", &cfg.Preview},
		{"watch", &cfg.Watch},
	}
	for _, f := range flags {
		v, err := getTableBool(table, f.key)
		if err != nil {
			return err
		}
		if v != nil {
			*f.target = *v
		}
	}
	return nil
}

// Close releases the parser's Lua runtime.
func (p *LuaConfigParser) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cleanup != nil {
		p.cleanup()
		p.cleanup = nil
	}
	return nil
}

// getTableBool returns nil if key is unset and an error if it is set to
// something other than a boolean.
func getTableBool(table *rt.Table, key string) (*bool, error) {
	val := table.Get(rt.StringValue(key))
	if val.IsNil() {
		return nil, nil
	}
	if b, ok := val.TryBool(); ok {
		return &b, nil
	}
	return nil, fmt.Errorf("%w: %s must be a boolean", ErrInvalidConfig, key)
}

func getTableString(table *rt.Table, key string) (*string, error) {
	val := table.Get(rt.StringValue(key))
	if val.IsNil() {
		return nil, nil
	}
	if s, ok := val.TryString(); ok {
		return &s, nil
	}
	return nil, fmt.Errorf("%w: %s must be a string", ErrInvalidConfig, key)
}

func getTableFloat(table *rt.Table, key string) (*float64, error) {
	val := table.Get(rt.StringValue(key))
	if val.IsNil() {
		return nil, nil
	}
	if n, ok := val.TryFloat(); ok {
		return &n, nil
	}
	if n, ok := val.TryInt(); ok {
		f := float64(n)
		return &f, nil
	}
	return nil, fmt.Errorf("%w: %s must be a number", ErrInvalidConfig, key)
}
