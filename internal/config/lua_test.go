package config

import (
	"errors"
	"testing"
)

func parseLua(t *testing.T, content string) (*Config, error) {
	t.Helper()
	p, err := NewLuaConfigParser()
	if err != nil {
		t.Fatalf("NewLuaConfigParser failed: %v", err)
	}
	defer p.Close()
	return p.Parse("test.lua", []byte(content))
}

func TestLuaConfigParserParse(t *testing.T) {
	cfg, err := parseLua(t, `
canvas.config = {
    id = 'clock',
    width = 640,
    height = 480.5,
    script = 'clock.lua',
    output = 'clock.png',
    background = '#102030',
    font = 'bold 14px monospace',
    preview = true,
    fps = 60,
    watch = true,
    cpu_limit = 1000000,
    memory_limit = 8 * 1024 * 1024,
}
`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := Config{
		ID:          "clock",
		Width:       640,
		Height:      480.5,
		Script:      "clock.lua",
		Output:      "clock.png",
		Background:  "#102030",
		Font:        "bold 14px monospace",
		Preview:     true,
		FPS:         60,
		Watch:       true,
		CPULimit:    1_000_000,
		MemoryLimit: 8 * 1024 * 1024,
	}
	if *cfg != want {
		t.Errorf("Parse() = %+v\nwant %+v", *cfg, want)
	}
}

func TestLuaConfigParserDefaults(t *testing.T) {
	cfg, err := parseLua(t, `canvas.config.script = "draw.lua"`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := DefaultConfig()
	want.Script = "draw.lua"
	if *cfg != want {
		t.Errorf("Parse() = %+v\nwant %+v", *cfg, want)
	}
}

func TestLuaConfigParserComputedValues(t *testing.T) {
	cfg, err := parseLua(t, `
local size = 128
canvas.config = {
    width = size * 2,
    height = size,
    script = string.format("%s.lua", "spiral"),
}
`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Width != 256 || cfg.Height != 128 || cfg.Script != "spiral.lua" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLuaConfigParserErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		invalid bool
	}{
		{"syntax error", `canvas.config = {`, false},
		{"runtime error", `error("nope")`, false},
		{"canvas replaced", `canvas = 5`, true},
		{"config replaced", `canvas.config = "x"`, true},
		{"width not a number", `canvas.config = { width = "wide" }`, true},
		{"script not a string", `canvas.config = { script = {} }`, true},
		{"preview not a boolean", `canvas.config = { preview = "yes" }`, true},
		{"negative limit", `canvas.config = { cpu_limit = -1 }`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseLua(t, tt.content)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.invalid && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLuaConfigParserReuse(t *testing.T) {
	p, err := NewLuaConfigParser()
	if err != nil {
		t.Fatalf("NewLuaConfigParser failed: %v", err)
	}
	defer p.Close()

	if _, err := p.Parse("first", []byte(`canvas.config = { width = 10 }`)); err != nil {
		t.Fatalf("first Parse failed: %v", err)
	}
	cfg, err := p.Parse("second", []byte(`canvas.config.height = 20`))
	if err != nil {
		t.Fatalf("second Parse failed: %v", err)
	}
	if cfg.Width != DefaultWidth {
		t.Errorf("width leaked from previous parse: %g", cfg.Width)
	}
	if cfg.Height != 20 {
		t.Errorf("height = %g, want 20", cfg.Height)
	}
}
