package lua

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	rt "github.com/arnodel/golua/runtime"
)

func newTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	config := DefaultConfig()
	config.Stdout = nil
	runtime, err := New(config)
	if err != nil {
		t.Fatalf("failed to create runtime: %v", err)
	}
	t.Cleanup(func() { runtime.Close() })
	return runtime
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.CPULimit != 10_000_000 {
		t.Errorf("expected CPULimit 10000000, got %d", config.CPULimit)
	}
	if config.MemoryLimit != 50*1024*1024 {
		t.Errorf("expected MemoryLimit %d, got %d", 50*1024*1024, config.MemoryLimit)
	}
	if config.Stdout != os.Stdout {
		t.Error("expected Stdout to be os.Stdout")
	}
}

func TestExecuteString(t *testing.T) {
	runtime := newTestRuntime(t)

	tests := []struct {
		name    string
		code    string
		want    rt.Value
		wantErr bool
	}{
		{name: "integer", code: "return 1 + 2", want: rt.IntValue(3)},
		{name: "string", code: `return "a" .. "b"`, want: rt.StringValue("ab")},
		{name: "nil", code: "local x = 1", want: rt.NilValue},
		{name: "syntax error", code: "return +", wantErr: true},
		{name: "runtime error", code: `error("boom")`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runtime.ExecuteString(tt.name, tt.code)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExecuteNilClosure(t *testing.T) {
	runtime := newTestRuntime(t)
	if _, err := runtime.Execute(nil); !errors.Is(err, ErrNilClosure) {
		t.Errorf("expected ErrNilClosure, got %v", err)
	}
}

func TestExecuteFile(t *testing.T) {
	runtime := newTestRuntime(t)

	path := filepath.Join(t.TempDir(), "script.lua")
	if err := os.WriteFile(path, []byte("answer = 42\nreturn answer"), 0o644); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	got, err := runtime.ExecuteFile(path)
	if err != nil {
		t.Fatalf("ExecuteFile failed: %v", err)
	}
	if got != rt.IntValue(42) {
		t.Errorf("got %v, want 42", got)
	}
	if runtime.GetGlobal("answer") != rt.IntValue(42) {
		t.Error("expected global answer to be set")
	}

	if _, err := runtime.ExecuteFile(filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSetAndGetGlobal(t *testing.T) {
	runtime := newTestRuntime(t)

	runtime.SetGlobal("greeting", rt.StringValue("hello"))
	got, err := runtime.ExecuteString("test", "return greeting")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != rt.StringValue("hello") {
		t.Errorf("got %v, want hello", got)
	}
	if !runtime.GetGlobal("undefined_global").IsNil() {
		t.Error("expected nil for undefined global")
	}
}

func TestSetGoFunction(t *testing.T) {
	runtime := newTestRuntime(t)

	runtime.SetGoFunction("double", func(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
		n, err := c.IntArg(0)
		if err != nil {
			return nil, err
		}
		return c.PushingNext1(t.Runtime, rt.IntValue(n*2)), nil
	}, 1, false)

	got, err := runtime.ExecuteString("test", "return double(21)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != rt.IntValue(42) {
		t.Errorf("got %v, want 42", got)
	}
}

func TestCallFunction(t *testing.T) {
	runtime := newTestRuntime(t)

	if _, err := runtime.ExecuteString("test", "function add(a, b) return a + b end"); err != nil {
		t.Fatalf("failed to define function: %v", err)
	}
	if !runtime.HasFunction("add") {
		t.Fatal("expected add to be a function")
	}

	got, err := runtime.CallFunction("add", rt.IntValue(2), rt.IntValue(3))
	if err != nil {
		t.Fatalf("CallFunction failed: %v", err)
	}
	if got != rt.IntValue(5) {
		t.Errorf("got %v, want 5", got)
	}

	_, err = runtime.CallFunction("missing")
	if !errors.Is(err, ErrFunctionNotFound) {
		t.Errorf("expected ErrFunctionNotFound, got %v", err)
	}
}

func TestConfig(t *testing.T) {
	config := RuntimeConfig{CPULimit: 5_000_000, MemoryLimit: 25 * 1024 * 1024}
	runtime, err := New(config)
	if err != nil {
		t.Fatalf("failed to create runtime: %v", err)
	}
	defer runtime.Close()

	if got := runtime.Config(); got.CPULimit != config.CPULimit || got.MemoryLimit != config.MemoryLimit {
		t.Errorf("Config() = %+v, want %+v", got, config)
	}
}

func TestOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	runtime, err := New(RuntimeConfig{Stdout: buf})
	if err != nil {
		t.Fatalf("failed to create runtime: %v", err)
	}
	defer runtime.Close()

	if _, err := runtime.ExecuteString("print", `print("hello canvas")`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(runtime.Output(), "hello canvas") {
		t.Errorf("captured output %q missing print text", runtime.Output())
	}
	if !strings.Contains(buf.String(), "hello canvas") {
		t.Errorf("stdout %q missing print text", buf.String())
	}

	runtime.ClearOutput()
	if runtime.Output() != "" {
		t.Errorf("expected empty output after ClearOutput, got %q", runtime.Output())
	}
}

func TestRegisterModule(t *testing.T) {
	runtime := newTestRuntime(t)

	tbl := rt.NewTable()
	tbl.Set(rt.StringValue("version"), rt.StringValue("1.0"))
	runtime.RegisterModule("mymod", tbl)

	got, err := runtime.ExecuteString("test", `return package.loaded.mymod.version .. mymod.version`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != rt.StringValue("1.01.0") {
		t.Errorf("got %v, want 1.01.0", got)
	}
}

func TestClose(t *testing.T) {
	runtime, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("failed to create runtime: %v", err)
	}
	if err := runtime.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := runtime.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}
