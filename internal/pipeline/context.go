package pipeline

import (
	"github.com/lumelang/lume/internal/ast"
	"github.com/lumelang/lume/internal/config"
	"github.com/lumelang/lume/internal/diagnostics"
	"github.com/lumelang/lume/internal/symbols"
)

// Context is the unit of work flowing through the pipeline: one file's
// declarations going in, a populated scope and any diagnostics coming out.
type Context struct {
	// File is the source path, used for spans and import resolution.
	File string

	// ProjectDir is the directory holding lume.yaml, when one exists.
	ProjectDir string

	// Project is the parsed project file. Nil until ConfigStage runs, and
	// may stay nil for bare single-file compilation.
	Project *config.Project

	// TypeDecls and FnDecls are the declarations to process, in source
	// order. Interleaved processing matters: a later type may reference an
	// earlier one.
	TypeDecls []*ast.TypeDecl
	FnDecls   []*ast.FnDecl

	// Prog owns cross-file scope lookup for imports.
	Prog *symbols.Program

	// Scope receives every registered type and function. Stages create it
	// on demand, parented to the target's root scope.
	Scope *symbols.Scope

	// Diagnostics accumulates errors across stages. Stages keep running
	// after a failure so one pass reports everything it can.
	Diagnostics []*diagnostics.Diagnostic
}

// NewContext prepares a context for one file under the given program.
func NewContext(prog *symbols.Program, file string) *Context {
	return &Context{
		File:  file,
		Prog:  prog,
		Scope: prog.NewFileScope(file),
	}
}

// Report appends a diagnostic. Nil is tolerated so stages can pass through
// results unconditionally.
func (c *Context) Report(d *diagnostics.Diagnostic) {
	if d != nil {
		c.Diagnostics = append(c.Diagnostics, d)
	}
}

// Failed reports whether any stage produced a diagnostic.
func (c *Context) Failed() bool {
	return len(c.Diagnostics) > 0
}
