package pipeline

import (
	"os"
	"path/filepath"

	"github.com/lumelang/lume/internal/config"
	"github.com/lumelang/lume/internal/ctype"
	"github.com/lumelang/lume/internal/derive"
	"github.com/lumelang/lume/internal/diagnostics"
	"github.com/lumelang/lume/internal/ext"
	"github.com/lumelang/lume/internal/resolver"
)

func newDeriver(ctx *Context) *derive.Deriver {
	return derive.New(ctx.Prog)
}

// ConfigStage loads the project file next to the sources, if one exists,
// and applies its environment overrides before any guard evaluates.
type ConfigStage struct{}

func (s *ConfigStage) Process(ctx *Context) *Context {
	if ctx.ProjectDir == "" || ctx.Project != nil {
		return ctx
	}
	path := filepath.Join(ctx.ProjectDir, config.ProjectFileName)
	if _, err := os.Stat(path); err != nil {
		return ctx
	}
	proj, err := config.LoadProject(path)
	if err != nil {
		ctx.Report(diagnostics.Wrap(diagnostics.ErrT006, diagnostics.Span{File: path}, err))
		return ctx
	}
	if err := proj.Validate(); err != nil {
		ctx.Report(diagnostics.Wrap(diagnostics.ErrT006, diagnostics.Span{File: path}, err))
		return ctx
	}
	proj.Apply()
	ctx.Project = proj
	return ctx
}

// BindStage registers native Bound functions from the project's bind
// declarations. Runs before resolution so user code can reference bound
// names in type expressions.
type BindStage struct{}

func (s *BindStage) Process(ctx *Context) *Context {
	if ctx.Project == nil || len(ctx.Project.Bind) == 0 {
		return ctx
	}
	binder := ext.NewBinder(ctx.Prog)
	ctx.Report(binder.Apply(ctx.Scope, ctx.Project, ctx.ProjectDir))
	return ctx
}

// ResolveStage processes every declaration in source order. Type and
// function declarations are interleaved by position because later
// declarations may reference earlier ones.
type ResolveStage struct{}

func (s *ResolveStage) Process(ctx *Context) *Context {
	ti, fi := 0, 0
	for ti < len(ctx.TypeDecls) || fi < len(ctx.FnDecls) {
		if fi >= len(ctx.FnDecls) || (ti < len(ctx.TypeDecls) && before(ctx.TypeDecls[ti].Pos, ctx.FnDecls[fi].Pos)) {
			_, diag := resolver.ProcessTypeDecl(ctx.Scope, ctx.TypeDecls[ti])
			ctx.Report(diag)
			ti++
			continue
		}
		_, diag := resolver.ProcessFnDecl(ctx.Scope, ctx.FnDecls[fi])
		ctx.Report(diag)
		fi++
	}
	return ctx
}

func before(a, b diagnostics.Span) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Col < b.Col
}

// DeriveStage synthesizes constructors and accessors for every concrete
// named type the resolve stage registered. Elided declarations and generic
// templates resolve to nothing here and are skipped.
type DeriveStage struct{}

func (s *DeriveStage) Process(ctx *Context) *Context {
	der := newDeriver(ctx)
	for _, d := range ctx.TypeDecls {
		t, ok := ctx.Scope.ResolveType(d.Name)
		if !ok {
			continue
		}
		named, ok := t.(ctype.Named)
		if !ok {
			continue
		}
		_, diag := der.ToFunctions(ctx.Scope, named, d.Exported)
		ctx.Report(diag)
	}
	return ctx
}
