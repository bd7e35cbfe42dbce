// Package ctype implements the compile-time type algebra: the recursive
// type-expression tree, its evaluable operators, generic substitution and
// generic-argument inference.
package ctype

import (
	"github.com/lumelang/lume/internal/ast"
)

// CType is the interface for all compile-time type expressions.
//
// Trees are immutable once constructed; every transformation (Degroup,
// SwapSubtype, operator evaluation) produces a new tree. The children /
// withChildren pair is the single traversal primitive shared by Degroup,
// SwapSubtype and the string renderers.
type CType interface {
	children() []CType
	withChildren([]CType) CType
}

// Resolver lets inference and resolution look up named types without this
// package depending on the scope implementation.
type Resolver interface {
	ResolveType(name string) (CType, bool)
}

// Void is the empty type.
type Void struct{}

func (t Void) children() []CType            { return nil }
func (t Void) withChildren(_ []CType) CType { return t }

// Infer is a still-unresolved generic placeholder. Bound optionally names
// an interface-like constraint. An Infer must never survive into a fully
// resolved type used as a runtime value.
type Infer struct {
	Name  string
	Bound string
}

func (t Infer) children() []CType            { return nil }
func (t Infer) withChildren(_ []CType) CType { return t }

// Named wraps a structural type with a user-facing name.
type Named struct {
	Name  string
	Inner CType
}

func (t Named) children() []CType { return []CType{t.Inner} }
func (t Named) withChildren(c []CType) CType {
	return Named{Name: t.Name, Inner: c[0]}
}

// Generic is an unresolved parameterized type template. The body stays in
// AST form until instantiation resolves it in a child scope.
type Generic struct {
	Name   string
	Params []string
	Body   ast.TypeExpr
}

func (t Generic) children() []CType            { return nil }
func (t Generic) withChildren(_ []CType) CType { return t }

// IntrinsicGeneric is a builtin generic handled directly by the resolver
// (Tuple, Either, Buffer, Array, Field and friends).
type IntrinsicGeneric struct {
	Name  string
	Arity int
}

func (t IntrinsicGeneric) children() []CType            { return nil }
func (t IntrinsicGeneric) withChildren(_ []CType) CType { return t }

// Int is an integer literal type.
type Int struct {
	Value int64
}

func (t Int) children() []CType            { return nil }
func (t Int) withChildren(_ []CType) CType { return t }

// Float is a float literal type.
type Float struct {
	Value float64
}

func (t Float) children() []CType            { return nil }
func (t Float) withChildren(_ []CType) CType { return t }

// Bool is a boolean literal type.
type Bool struct {
	Value bool
}

func (t Bool) children() []CType            { return nil }
func (t Bool) withChildren(_ []CType) CType { return t }

// TString is a string literal type.
type TString struct {
	Value string
}

func (t TString) children() []CType            { return nil }
func (t TString) withChildren(_ []CType) CType { return t }

// Group preserves parenthesization from the source. It is semantically
// transparent: Degroup must run before any structural comparison.
type Group struct {
	Inner CType
}

func (t Group) children() []CType { return []CType{t.Inner} }
func (t Group) withChildren(c []CType) CType {
	return Group{Inner: c[0]}
}

// Function is a function type from an input (usually a Tuple) to an output.
type Function struct {
	In  CType
	Out CType
}

func (t Function) children() []CType { return []CType{t.In, t.Out} }
func (t Function) withChildren(c []CType) CType {
	return Function{In: c[0], Out: c[1]}
}

// CallShape encodes how a native-bound call lowers in generated code.
type CallShape int

const (
	ShapeCall CallShape = iota
	ShapeInfix
	ShapePrefix
	ShapeMethod
	ShapeProperty
	ShapeCast
)

var shapeNames = [...]string{"call", "infix", "prefix", "method", "property", "cast"}

func (s CallShape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return "call"
}

// Call is a native-binding call type: the bound symbol text plus the
// function type it presents to lume code.
type Call struct {
	Bind  string
	Shape CallShape
	Fn    CType
}

func (t Call) children() []CType { return []CType{t.Fn} }
func (t Call) withChildren(c []CType) CType {
	return Call{Bind: t.Bind, Shape: t.Shape, Fn: c[0]}
}

// Binds marks a type as backed by a native symbol rather than a structural
// shape. Named wrappers around Binds are nominal, not transparent.
type Binds struct {
	Symbol string
	Args   []CType
}

func (t Binds) children() []CType { return t.Args }
func (t Binds) withChildren(c []CType) CType {
	return Binds{Symbol: t.Symbol, Args: c}
}

// Import references a symbol from another file's scope.
type Import struct {
	Name string
	Dep  string
}

func (t Import) children() []CType            { return nil }
func (t Import) withChildren(_ []CType) CType { return t }

// Tuple is an ordered product type. Order is semantically significant.
type Tuple struct {
	Elems []CType
}

func (t Tuple) children() []CType { return t.Elems }
func (t Tuple) withChildren(c []CType) CType {
	return Tuple{Elems: c}
}

// Field labels a type, usually inside a Tuple or Either.
type Field struct {
	Label string
	Value CType
}

func (t Field) children() []CType { return []CType{t.Value} }
func (t Field) withChildren(c []CType) CType {
	return Field{Label: t.Label, Value: c[0]}
}

// Either is an ordered sum type. Variant index is semantically significant.
type Either struct {
	Variants []CType
}

func (t Either) children() []CType { return t.Variants }
func (t Either) withChildren(c []CType) CType {
	return Either{Variants: c}
}

// AnyOf is a transient constraint disjunction used during inference. It
// must collapse to a single concrete type before a function body compiles.
type AnyOf struct {
	Options []CType
}

func (t AnyOf) children() []CType { return t.Options }
func (t AnyOf) withChildren(c []CType) CType {
	return AnyOf{Options: c}
}

// Buffer is a fixed-length sequence; Len is an Int once resolved.
type Buffer struct {
	Elem CType
	Len  CType
}

func (t Buffer) children() []CType { return []CType{t.Elem, t.Len} }
func (t Buffer) withChildren(c []CType) CType {
	return Buffer{Elem: c[0], Len: c[1]}
}

// Array is a variable-length sequence.
type Array struct {
	Elem CType
}

func (t Array) children() []CType { return []CType{t.Elem} }
func (t Array) withChildren(c []CType) CType {
	return Array{Elem: c[0]}
}

// Fail marks a type whose resolution was deliberately elided (conditional
// compilation) or failed. It must never be registered in a scope.
type Fail struct {
	Reason string
}

func (t Fail) children() []CType            { return nil }
func (t Fail) withChildren(_ []CType) CType { return t }

// Oper is a symbolic compile-time operator application that could not yet
// be evaluated because an operand is still an Infer placeholder.
type Oper struct {
	Op   Op
	Args []CType
}

func (t Oper) children() []CType { return t.Args }
func (t Oper) withChildren(c []CType) CType {
	return Oper{Op: t.Op, Args: c}
}

// mapChildren rebuilds t with f applied to each direct child. Leaves are
// returned unchanged.
func mapChildren(t CType, f func(CType) CType) CType {
	kids := t.children()
	if len(kids) == 0 {
		return t
	}
	next := make([]CType, len(kids))
	for i, k := range kids {
		next[i] = f(k)
	}
	return t.withChildren(next)
}

// Degroup recursively strips Group wrappers. Idempotent; required before
// any structural comparison, unification or hashing by string key.
func Degroup(t CType) CType {
	if g, ok := t.(Group); ok {
		return Degroup(g.Inner)
	}
	return mapChildren(t, Degroup)
}

// Equal reports structural interchangeability for call matching: canonical
// serialization equality after Degroup.
func Equal(a, b CType) bool {
	return StrictString(Degroup(a), false) == StrictString(Degroup(b), false)
}

// Accepts reports whether candidate satisfies t at a call site. AnyOf on
// either side matches if any member matches; otherwise exact structural
// equality post-degroup. This is intentionally not full subtyping.
func Accepts(t, candidate CType) bool {
	t = Degroup(t)
	candidate = Degroup(candidate)
	if any, ok := t.(AnyOf); ok {
		for _, opt := range any.Options {
			if Accepts(opt, candidate) {
				return true
			}
		}
		return false
	}
	if any, ok := candidate.(AnyOf); ok {
		for _, opt := range any.Options {
			if Accepts(t, opt) {
				return true
			}
		}
		return false
	}
	// A declared field label is transparent: `x: int` takes a plain int.
	// Labels only discriminate when both sides carry one.
	if f, ok := t.(Field); ok {
		if c, ok := candidate.(Field); ok {
			return f.Label == c.Label && Accepts(f.Value, c.Value)
		}
		return Accepts(f.Value, candidate)
	}
	return StrictString(t, false) == StrictString(candidate, false)
}

// HasInfer reports whether any Infer placeholder remains in the tree.
func HasInfer(t CType) bool {
	if _, ok := t.(Infer); ok {
		return true
	}
	for _, k := range t.children() {
		if HasInfer(k) {
			return true
		}
	}
	return false
}
