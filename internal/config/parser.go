package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Parser loads config files. It owns a Lua runtime and must be closed.
type Parser struct {
	lua *LuaConfigParser
}

// NewParser creates a Parser.
func NewParser() (*Parser, error) {
	luaParser, err := NewLuaConfigParser()
	if err != nil {
		return nil, fmt.Errorf("create Lua parser: %w", err)
	}
	return &Parser{lua: luaParser}, nil
}

// ParseFile reads, evaluates and validates the config at path.
// Environment variables are expanded and a relative script path is
// resolved against the config's directory.
func (p *Parser) ParseFile(path string) (*Config, *ValidationResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := p.lua.Parse(path, content)
	if err != nil {
		return nil, nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Path = path
	return finish(cfg, cfg.Dir())
}

// ParseReader evaluates and validates a config read from r. A relative
// script path is resolved against dir.
func (p *Parser) ParseReader(r io.Reader, dir string) (*Config, *ValidationResult, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := p.lua.Parse("config", content)
	if err != nil {
		return nil, nil, fmt.Errorf("parse config: %w", err)
	}
	if dir == "" {
		dir = "."
	}
	return finish(cfg, dir)
}

func finish(cfg *Config, dir string) (*Config, *ValidationResult, error) {
	ExpandEnvConfig(cfg)
	if cfg.Script != "" && !filepath.IsAbs(cfg.Script) {
		cfg.Script = filepath.Join(dir, cfg.Script)
	}
	result := Validate(cfg)
	if err := result.Error(); err != nil {
		return nil, result, err
	}
	return cfg, result, nil
}

// Close releases the parser's Lua runtime.
func (p *Parser) Close() error {
	return p.lua.Close()
}

// Load parses the config file at path with a temporary Parser.
func Load(path string) (*Config, *ValidationResult, error) {
	p, err := NewParser()
	if err != nil {
		return nil, nil, err
	}
	defer p.Close()
	return p.ParseFile(path)
}
