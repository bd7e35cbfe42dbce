package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/lumelang/lume/internal/ast"
	"github.com/lumelang/lume/internal/symbols"
)

// DeclSource produces the declarations of a source file. The front end
// supplies one; this package only cares that declarations come back in
// source order.
type DeclSource func(path string) (types []*ast.TypeDecl, fns []*ast.FnDecl, err error)

// FileLoader satisfies symbols.Loader by running the standard pipeline
// over a dependency file's declarations. Each loaded file gets its own
// context and scope; diagnostics in the dependency fail the load.
type FileLoader struct {
	Source DeclSource
}

func (l *FileLoader) LoadScope(p *symbols.Program, path string) (*symbols.Scope, error) {
	if l.Source == nil {
		return nil, fmt.Errorf("no declaration source installed for %s", path)
	}
	types, fns, err := l.Source(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	ctx := NewContext(p, path)
	ctx.ProjectDir = filepath.Dir(path)
	ctx.TypeDecls = types
	ctx.FnDecls = fns
	ctx = Default().Run(ctx)
	if ctx.Failed() {
		return nil, fmt.Errorf("loading %s: %s", path, ctx.Diagnostics[0].Error())
	}
	return ctx.Scope, nil
}
