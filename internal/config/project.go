package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Project represents the top-level lume.yaml configuration.
type Project struct {
	// Name is the project name, used for emitted-symbol prefixes.
	Name string `yaml:"name,omitempty"`

	// Target selects the output target ("rs" or "js"). Defaults to "rs".
	Target string `yaml:"target,omitempty"`

	// Env holds compile-time environment overrides. These are folded into
	// the process environment snapshot before the first Env{} or Exists{}
	// type operator is evaluated, so feature flags can be pinned per-project
	// instead of leaking in from the shell.
	Env map[string]string `yaml:"env,omitempty"`

	// Bind lists native Go bindings to expose to lume programs.
	Bind []BindDecl `yaml:"bind,omitempty"`
}

// BindDecl declares a single native binding in lume.yaml.
type BindDecl struct {
	// Pkg is the Go import path the symbol lives in.
	Pkg string `yaml:"pkg"`

	// Symbol is the Go function or method name being bound.
	Symbol string `yaml:"symbol"`

	// As is the lume-visible name. Defaults to Symbol if omitted.
	As string `yaml:"as,omitempty"`

	// Shape controls how calls lower: "call", "infix", "prefix", "method",
	// "property" or "cast". Defaults to "call".
	Shape string `yaml:"shape,omitempty"`
}

// LoadProject reads and parses a lume.yaml file.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseProject(data, path)
}

// ParseProject parses lume.yaml content.
func ParseProject(data []byte, path string) (*Project, error) {
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", filepath.Base(path), err)
	}
	return &p, nil
}

// Validate checks the configuration for contradictions.
func (p *Project) Validate() error {
	switch p.Target {
	case "", "rs", "js":
	default:
		return fmt.Errorf("unknown target %q (expected rs or js)", p.Target)
	}
	for i, b := range p.Bind {
		if b.Pkg == "" {
			return fmt.Errorf("bind[%d]: pkg is required", i)
		}
		if b.Symbol == "" {
			return fmt.Errorf("bind[%d]: symbol is required", i)
		}
		switch b.Shape {
		case "", "call", "infix", "prefix", "method", "property", "cast":
		default:
			return fmt.Errorf("bind[%d]: unknown shape %q", i, b.Shape)
		}
	}
	return nil
}

// Apply registers the project's environment overrides. Must run before the
// first compile-time environment read.
func (p *Project) Apply() {
	for k, v := range p.Env {
		SetEnvOverride(k, v)
	}
}
