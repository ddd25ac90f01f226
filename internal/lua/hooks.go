package lua

import (
	"fmt"

	rt "github.com/arnodel/golua/runtime"
)

// HookType identifies a global function a sketch may define.
type HookType int

const (
	// HookInvalid is returned by ParseHookType when parsing fails.
	HookInvalid HookType = iota

	// HookSetup runs once after the script loads, with the context.
	HookSetup

	// HookDraw runs for every frame, with the context and frame number.
	HookDraw

	// HookTeardown runs once before the sketch stops or reloads.
	HookTeardown
)

var hookNames = [...]string{
	HookInvalid:  "invalid",
	HookSetup:    "setup",
	HookDraw:     "draw",
	HookTeardown: "teardown",
}

// String returns the Lua function name of the hook.
func (h HookType) String() string {
	if h < 0 || int(h) >= len(hookNames) {
		return "unknown"
	}
	return hookNames[h]
}

// ParseHookType parses a hook name.
func ParseHookType(s string) (HookType, error) {
	for i, name := range hookNames {
		if i != int(HookInvalid) && name == s {
			return HookType(i), nil
		}
	}
	return HookInvalid, fmt.Errorf("unknown hook type: %s", s)
}

// Hooks calls the lifecycle functions defined by a sketch.
type Hooks struct {
	runtime *Runtime
}

// NewHooks returns a Hooks bound to runtime.
func NewHooks(runtime *Runtime) (*Hooks, error) {
	if runtime == nil {
		return nil, ErrNilRuntime
	}
	return &Hooks{runtime: runtime}, nil
}

// Defined reports whether the script defines the hook as a function.
func (h *Hooks) Defined(hook HookType) bool {
	return h.runtime.HasFunction(hook.String())
}

// Call invokes the hook if the script defines it. A missing hook is not
// an error.
func (h *Hooks) Call(hook HookType, args ...rt.Value) (rt.Value, error) {
	if !h.Defined(hook) {
		return rt.NilValue, nil
	}
	result, err := h.runtime.CallFunction(hook.String(), args...)
	if err != nil {
		return rt.NilValue, fmt.Errorf("hook %s: %w", hook, err)
	}
	return result, nil
}
