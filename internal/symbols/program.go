package symbols

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lumelang/lume/internal/config"
)

// Program is the registry of per-file scopes for one compilation. Imports
// resolve through it; loading of not-yet-seen files is delegated to a
// Loader so this package stays parser-free.
type Program struct {
	Target string
	scopes map[string]*Scope
	loader Loader
}

// Loader resolves a dependency path into a populated scope. The pipeline
// installs one backed by the parser and resolver.
type Loader interface {
	LoadScope(p *Program, path string) (*Scope, error)
}

// NewProgram creates an empty program for a target.
func NewProgram(target string, loader Loader) *Program {
	return &Program{
		Target: target,
		scopes: map[string]*Scope{},
		loader: loader,
	}
}

// NewFileScope creates and registers a scope for a source file, parented
// to the target's root prelude scope.
func (p *Program) NewFileScope(file string) *Scope {
	s := NewScope(Root(p.Target), file)
	p.scopes[file] = s
	return s
}

// ScopeByFile returns the scope of an already-loaded file, or loads it.
func (p *Program) ScopeByFile(from, dep string) (*Scope, error) {
	path := importPath(from, dep)
	if s, ok := p.scopes[path]; ok {
		return s, nil
	}
	if p.loader == nil {
		return nil, fmt.Errorf("no scope loaded for %s and no loader installed", path)
	}
	s, err := p.loader.LoadScope(p, path)
	if err != nil {
		return nil, err
	}
	p.scopes[path] = s
	return s, nil
}

// importPath resolves a dependency reference relative to the importing
// file. Dot-relative references join onto the importer's directory; any
// other reference is taken verbatim so package-style paths pass through.
func importPath(from, dep string) string {
	if !strings.HasPrefix(dep, ".") {
		return dep
	}
	base := from
	if config.HasSourceExt(base) {
		base = filepath.Dir(base)
	}
	if base == "" || base == "." {
		return dep
	}
	return filepath.Join(base, dep)
}
