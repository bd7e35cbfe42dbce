// Package ast defines the type-expression AST the resolver consumes.
//
// The parser producing these nodes lives outside this module; the shapes here
// are the interface boundary between it and the type-resolution engine.
package ast

import (
	"fmt"
	"strings"

	"github.com/lumelang/lume/internal/diagnostics"
)

// Node is the base interface for all AST nodes.
type Node interface {
	Span() diagnostics.Span
	String() string
}

// TypeExpr is a Node that can appear inside a type expression.
type TypeExpr interface {
	Node
	typeExprNode()
}

// TypeName references a named type, optionally with generic arguments:
// `int`, `Maybe{int}`.
type TypeName struct {
	Pos  diagnostics.Span
	Name string
	Args []TypeExpr // nil for a bare name
}

func (t *TypeName) typeExprNode()          {}
func (t *TypeName) Span() diagnostics.Span { return t.Pos }
func (t *TypeName) String() string {
	if t.Args == nil {
		return t.Name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s{%s}", t.Name, strings.Join(parts, ", "))
}

// IntLit is an integer literal in type position.
type IntLit struct {
	Pos   diagnostics.Span
	Value int64
}

func (l *IntLit) typeExprNode()          {}
func (l *IntLit) Span() diagnostics.Span { return l.Pos }
func (l *IntLit) String() string         { return fmt.Sprintf("%d", l.Value) }

// FloatLit is a float literal in type position.
type FloatLit struct {
	Pos   diagnostics.Span
	Value float64
}

func (l *FloatLit) typeExprNode()          {}
func (l *FloatLit) Span() diagnostics.Span { return l.Pos }
func (l *FloatLit) String() string         { return fmt.Sprintf("%g", l.Value) }

// BoolLit is a boolean literal in type position.
type BoolLit struct {
	Pos   diagnostics.Span
	Value bool
}

func (l *BoolLit) typeExprNode()          {}
func (l *BoolLit) Span() diagnostics.Span { return l.Pos }
func (l *BoolLit) String() string         { return fmt.Sprintf("%t", l.Value) }

// StrLit is a string literal in type position.
type StrLit struct {
	Pos   diagnostics.Span
	Value string
}

func (l *StrLit) typeExprNode()          {}
func (l *StrLit) Span() diagnostics.Span { return l.Pos }
func (l *StrLit) String() string         { return fmt.Sprintf("%q", l.Value) }

// Group preserves explicit parenthesization.
type Group struct {
	Pos   diagnostics.Span
	Inner TypeExpr
}

func (g *Group) typeExprNode()          {}
func (g *Group) Span() diagnostics.Span { return g.Pos }
func (g *Group) String() string         { return "(" + g.Inner.String() + ")" }

// OpPart is one element of an operator sequence. Op is "" for a bare
// operand; Operand is nil when an infix operator ends the sequence
// (a parse error the resolver reports, not the parser).
type OpPart struct {
	Op      string
	OpPos   diagnostics.Span
	Operand TypeExpr
}

// OpSeq is an operator-infested type expression, kept flat until the
// resolver folds it by operator precedence: `Field{x, int} , Field{y, bool}`.
type OpSeq struct {
	Pos   diagnostics.Span
	Parts []OpPart
}

func (o *OpSeq) typeExprNode()          {}
func (o *OpSeq) Span() diagnostics.Span { return o.Pos }
func (o *OpSeq) String() string {
	var b strings.Builder
	for i, p := range o.Parts {
		if i > 0 {
			b.WriteByte(' ')
		}
		if p.Op != "" {
			b.WriteString(p.Op)
			if p.Operand != nil {
				b.WriteByte(' ')
			}
		}
		if p.Operand != nil {
			b.WriteString(p.Operand.String())
		}
	}
	return b.String()
}

// GenericArg is one entry of a declaration's generic-argument block.
// A named entry declares a type parameter with an optional bound; an
// unnamed entry (Name == "") is a bare guard expression, the conditional
// compilation hook.
type GenericArg struct {
	Pos   diagnostics.Span
	Name  string
	Bound TypeExpr
}

func (g *GenericArg) String() string {
	if g.Name == "" {
		return g.Bound.String()
	}
	if g.Bound == nil {
		return g.Name
	}
	return g.Name + ": " + g.Bound.String()
}

// TypeDecl is a top-level type declaration:
// `export type Pair{T} = Field{x, T} , Field{y, T}`.
type TypeDecl struct {
	Pos      diagnostics.Span
	Name     string
	Exported bool
	Generics []GenericArg
	Body     TypeExpr
}

func (d *TypeDecl) Span() diagnostics.Span { return d.Pos }
func (d *TypeDecl) String() string {
	var b strings.Builder
	if d.Exported {
		b.WriteString("export ")
	}
	b.WriteString("type ")
	b.WriteString(d.Name)
	if len(d.Generics) > 0 {
		parts := make([]string, len(d.Generics))
		for i := range d.Generics {
			parts[i] = d.Generics[i].String()
		}
		b.WriteString("{" + strings.Join(parts, ", ") + "}")
	}
	b.WriteString(" = ")
	b.WriteString(d.Body.String())
	return b.String()
}

// Param is one declared function parameter.
type Param struct {
	Name string
	Type TypeExpr
}

// FnDecl is the signature part of a function declaration; bodies are
// lowered elsewhere. Bind carries the native symbol for bound functions
// and Shape how its calls lower (call, infix, prefix, method, property,
// cast).
type FnDecl struct {
	Pos      diagnostics.Span
	Name     string
	Exported bool
	Generics []GenericArg
	Params   []Param
	Ret      TypeExpr
	Bind     string
	Shape    string
}

func (d *FnDecl) Span() diagnostics.Span { return d.Pos }
func (d *FnDecl) String() string {
	parts := make([]string, len(d.Params))
	for i, p := range d.Params {
		parts[i] = p.Name + ": " + p.Type.String()
	}
	ret := ""
	if d.Ret != nil {
		ret = " -> " + d.Ret.String()
	}
	return fmt.Sprintf("fn %s(%s)%s", d.Name, strings.Join(parts, ", "), ret)
}
