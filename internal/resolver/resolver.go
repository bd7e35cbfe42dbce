// Package resolver turns operator-infested type-expression ASTs into
// concrete CType trees against a scope chain.
package resolver

import (
	"fmt"

	"github.com/lumelang/lume/internal/ast"
	"github.com/lumelang/lume/internal/config"
	"github.com/lumelang/lume/internal/ctype"
	"github.com/lumelang/lume/internal/diagnostics"
	"github.com/lumelang/lume/internal/symbols"
)

var opByName = map[string]ctype.Op{}

func init() {
	for op := ctype.OpAdd; op <= ctype.OpTupleIf; op++ {
		opByName[op.Name()] = op
	}
}

// ResolveTypeExpr compiles one type expression against a scope.
func ResolveTypeExpr(sc *symbols.Scope, expr ast.TypeExpr) (ctype.CType, *diagnostics.Diagnostic) {
	switch e := expr.(type) {
	case *ast.IntLit:
		return ctype.Int{Value: e.Value}, nil
	case *ast.FloatLit:
		return ctype.Float{Value: e.Value}, nil
	case *ast.BoolLit:
		return ctype.Bool{Value: e.Value}, nil
	case *ast.StrLit:
		return ctype.TString{Value: e.Value}, nil
	case *ast.Group:
		inner, err := ResolveTypeExpr(sc, e.Inner)
		if err != nil {
			return nil, err
		}
		return ctype.Group{Inner: inner}, nil
	case *ast.TypeName:
		if e.Args == nil {
			return resolveName(sc, e)
		}
		return resolveCall(sc, e)
	case *ast.OpSeq:
		folded, err := foldOperators(sc, e)
		if err != nil {
			return nil, err
		}
		return ResolveTypeExpr(sc, folded)
	default:
		return nil, diagnostics.NewError(diagnostics.ErrT003, expr.Span(),
			"unsupported type expression %s", expr)
	}
}

func resolveName(sc *symbols.Scope, e *ast.TypeName) (ctype.CType, *diagnostics.Diagnostic) {
	if t, ok := sc.ResolveType(e.Name); ok {
		return t, nil
	}
	if c, ok := sc.ResolveConst(e.Name); ok {
		return c, nil
	}
	return nil, diagnostics.NewError(diagnostics.ErrT001, e.Span(),
		"unknown type %s", e.Name)
}

// foldOperators repeatedly reduces the highest-precedence operator in a
// flat operator sequence into an equivalent function-call form until one
// operand remains.
func foldOperators(sc *symbols.Scope, seq *ast.OpSeq) (ast.TypeExpr, *diagnostics.Diagnostic) {
	type item struct {
		op      *symbols.OpMapping
		opPos   diagnostics.Span
		operand ast.TypeExpr
	}
	var items []item
	for _, p := range seq.Parts {
		if p.Op != "" {
			m, ok := sc.ResolveTypeOperator(p.Op)
			if !ok {
				return nil, diagnostics.NewError(diagnostics.ErrT003, p.OpPos,
					"unknown type operator %q", p.Op)
			}
			items = append(items, item{op: m, opPos: p.OpPos})
		}
		if p.Operand != nil {
			items = append(items, item{operand: p.Operand})
		}
	}
	if len(items) == 0 {
		return nil, diagnostics.NewError(diagnostics.ErrT003, seq.Span(), "empty type expression")
	}

	for len(items) > 1 {
		best := -1
		for i, it := range items {
			if it.op == nil {
				continue
			}
			if best == -1 || it.op.Precedence > items[best].op.Precedence {
				best = i
			}
		}
		if best == -1 {
			return nil, diagnostics.NewError(diagnostics.ErrT003, seq.Span(),
				"adjacent type operands with no operator")
		}
		m := items[best].op
		if m.Fixity == symbols.Prefix {
			if best+1 >= len(items) || items[best+1].operand == nil {
				return nil, diagnostics.NewError(diagnostics.ErrT003, items[best].opPos,
					"prefix operator %q has no operand", m.Symbol)
			}
			call := &ast.TypeName{
				Pos:  items[best].opPos,
				Name: m.FnName,
				Args: []ast.TypeExpr{items[best+1].operand},
			}
			items = append(items[:best], append([]item{{operand: call}}, items[best+2:]...)...)
			continue
		}
		if best == 0 || best+1 >= len(items) ||
			items[best-1].operand == nil || items[best+1].operand == nil {
			return nil, diagnostics.NewError(diagnostics.ErrT003, items[best].opPos,
				"infix operator %q is missing an operand", m.Symbol)
		}
		left, right := items[best-1].operand, items[best+1].operand
		var call *ast.TypeName
		// Sequence-building operators flatten left-associatively so
		// a, b, c becomes one Tuple{a, b, c}.
		if lt, ok := left.(*ast.TypeName); ok && lt.Name == m.FnName && lt.Args != nil && isVariadicCtor(m.FnName) {
			call = &ast.TypeName{Pos: lt.Pos, Name: m.FnName, Args: append(lt.Args, right)}
		} else {
			call = &ast.TypeName{Pos: items[best].opPos, Name: m.FnName, Args: []ast.TypeExpr{left, right}}
		}
		items = append(items[:best-1], append([]item{{operand: call}}, items[best+2:]...)...)
	}
	if items[0].operand == nil {
		return nil, diagnostics.NewError(diagnostics.ErrT003, seq.Span(),
			"type expression reduces to a bare operator")
	}
	return items[0].operand, nil
}

func isVariadicCtor(name string) bool {
	switch name {
	case config.TupleTypeName, config.EitherTypeName, config.AnyOfTypeName:
		return true
	}
	return false
}

func resolveCall(sc *symbols.Scope, e *ast.TypeName) (ctype.CType, *diagnostics.Diagnostic) {
	// Field takes its label as a bare name, not a type.
	if e.Name == config.FieldTypeName {
		return resolveField(sc, e)
	}
	if e.Name == "Import" {
		return resolveImportCall(e)
	}

	target, ok := sc.ResolveType(e.Name)
	if !ok {
		return nil, diagnostics.NewError(diagnostics.ErrT001, e.Span(),
			"unknown type %s", e.Name)
	}

	switch t := ctype.Degroup(target).(type) {
	case ctype.IntrinsicGeneric:
		return resolveIntrinsic(sc, t, e)
	case ctype.Generic:
		return Instantiate(sc, e.Name, t, e)
	default:
		return nil, diagnostics.NewError(diagnostics.ErrT002, e.Span(),
			"%s is not generic but was given %d type arguments", e.Name, len(e.Args))
	}
}

func resolveField(sc *symbols.Scope, e *ast.TypeName) (ctype.CType, *diagnostics.Diagnostic) {
	if len(e.Args) != 2 {
		return nil, diagnostics.NewError(diagnostics.ErrT002, e.Span(),
			"Field expects a label and a type, got %d arguments", len(e.Args))
	}
	label, ok := fieldLabel(e.Args[0])
	if !ok {
		return nil, diagnostics.NewError(diagnostics.ErrT003, e.Args[0].Span(),
			"Field label must be a bare name or string, got %s", e.Args[0])
	}
	value, err := ResolveTypeExpr(sc, e.Args[1])
	if err != nil {
		return nil, err
	}
	return ctype.Field{Label: label, Value: value}, nil
}

func fieldLabel(e ast.TypeExpr) (string, bool) {
	switch l := e.(type) {
	case *ast.TypeName:
		if l.Args == nil {
			return l.Name, true
		}
	case *ast.StrLit:
		return l.Value, true
	}
	return "", false
}

func resolveImportCall(e *ast.TypeName) (ctype.CType, *diagnostics.Diagnostic) {
	if len(e.Args) != 2 {
		return nil, diagnostics.NewError(diagnostics.ErrT002, e.Span(),
			"Import expects a name and a dependency, got %d arguments", len(e.Args))
	}
	name, ok := fieldLabel(e.Args[0])
	if !ok {
		return nil, diagnostics.NewError(diagnostics.ErrT003, e.Args[0].Span(),
			"imported name must be a bare name")
	}
	dep, ok := fieldLabel(e.Args[1])
	if !ok {
		return nil, diagnostics.NewError(diagnostics.ErrT003, e.Args[1].Span(),
			"import dependency must be a bare name or string")
	}
	return ctype.Import{Name: name, Dep: dep}, nil
}

func resolveIntrinsic(sc *symbols.Scope, g ctype.IntrinsicGeneric, e *ast.TypeName) (ctype.CType, *diagnostics.Diagnostic) {
	if g.Arity >= 0 && len(e.Args) != g.Arity {
		return nil, diagnostics.NewError(diagnostics.ErrT002, e.Span(),
			"%s expects %d type arguments, got %d", g.Name, g.Arity, len(e.Args))
	}

	// Binds and Call carry their native symbol as a leading string literal.
	if g.Name == "Binds" {
		return resolveBinds(sc, e)
	}
	if g.Name == "Call" {
		return resolveNativeCall(sc, e)
	}

	args := make([]ctype.CType, 0, len(e.Args))
	for _, a := range e.Args {
		t, err := ResolveTypeExpr(sc, a)
		if err != nil {
			return nil, err
		}
		args = append(args, ctype.Degroup(t))
	}

	switch g.Name {
	case config.TupleTypeName:
		return ctype.Tuple{Elems: dropElided(args)}, nil
	case config.EitherTypeName:
		return ctype.Either{Variants: dropElided(args)}, nil
	case config.AnyOfTypeName:
		return ctype.AnyOf{Options: args}, nil
	case config.BufferTypeName:
		return ctype.Buffer{Elem: args[0], Len: args[1]}, nil
	case config.ArrayTypeName:
		return ctype.Array{Elem: args[0]}, nil
	case "Function":
		return ctype.Function{In: args[0], Out: args[1]}, nil
	}

	if op, ok := opByName[g.Name]; ok {
		result, err := ctype.Evaluate(op, args)
		if err != nil {
			return nil, diagnostics.Wrap(diagnostics.ErrT005, e.Span(), err)
		}
		return result, nil
	}
	return nil, diagnostics.NewError(diagnostics.ErrT001, e.Span(),
		"unhandled intrinsic %s", g.Name)
}

// dropElided removes Fail markers produced by false If{} conditions so
// conditional members vanish from products and sums.
func dropElided(args []ctype.CType) []ctype.CType {
	kept := args[:0]
	for _, a := range args {
		if _, elided := a.(ctype.Fail); elided {
			continue
		}
		if f, ok := a.(ctype.Field); ok {
			if _, elided := ctype.Degroup(f.Value).(ctype.Fail); elided {
				continue
			}
		}
		kept = append(kept, a)
	}
	return kept
}

func resolveBinds(sc *symbols.Scope, e *ast.TypeName) (ctype.CType, *diagnostics.Diagnostic) {
	if len(e.Args) < 1 {
		return nil, diagnostics.NewError(diagnostics.ErrT002, e.Span(),
			"Binds expects a native symbol")
	}
	sym, ok := e.Args[0].(*ast.StrLit)
	if !ok {
		return nil, diagnostics.NewError(diagnostics.ErrT003, e.Args[0].Span(),
			"native symbol must be a string literal")
	}
	args := make([]ctype.CType, 0, len(e.Args)-1)
	for _, a := range e.Args[1:] {
		t, err := ResolveTypeExpr(sc, a)
		if err != nil {
			return nil, err
		}
		args = append(args, ctype.Degroup(t))
	}
	return ctype.Binds{Symbol: sym.Value, Args: args}, nil
}

func resolveNativeCall(sc *symbols.Scope, e *ast.TypeName) (ctype.CType, *diagnostics.Diagnostic) {
	sym, ok := e.Args[0].(*ast.StrLit)
	if !ok {
		return nil, diagnostics.NewError(diagnostics.ErrT003, e.Args[0].Span(),
			"call binding must be a string literal")
	}
	fn, err := ResolveTypeExpr(sc, e.Args[1])
	if err != nil {
		return nil, err
	}
	if _, isFn := ctype.Degroup(fn).(ctype.Function); !isFn {
		return nil, diagnostics.NewError(diagnostics.ErrT003, e.Args[1].Span(),
			"call binding needs a function type, got %s", ctype.StrictString(fn, true))
	}
	return ctype.Call{Bind: sym.Value, Fn: ctype.Degroup(fn)}, nil
}

// Instantiate specializes a generic template with concrete type arguments
// in an ephemeral child scope, merging the child back on success. The
// instantiation is memoized in the defining scope under its canonical name.
func Instantiate(sc *symbols.Scope, name string, g ctype.Generic, e *ast.TypeName) (ctype.CType, *diagnostics.Diagnostic) {
	if len(e.Args) != len(g.Params) {
		return nil, diagnostics.NewError(diagnostics.ErrT002, e.Span(),
			"%s expects %d type arguments, got %d", name, len(g.Params), len(e.Args))
	}
	args := make([]ctype.CType, len(e.Args))
	for i, a := range e.Args {
		t, err := ResolveTypeExpr(sc, a)
		if err != nil {
			return nil, err
		}
		args[i] = ctype.Degroup(t)
	}

	instName := instantiationName(name, args)
	if cached, ok := sc.ResolveType(instName); ok {
		return cached, nil
	}

	child := sc.Child()
	for i, p := range g.Params {
		child.RegisterType(p, args[i])
	}
	body, err := ResolveTypeExpr(child, g.Body)
	if err != nil {
		return nil, err
	}
	if f, elided := ctype.Degroup(body).(ctype.Fail); elided {
		return nil, diagnostics.NewError(diagnostics.ErrT005, e.Span(),
			"instantiating %s failed: %s", instName, f.Reason)
	}
	named := ctype.Named{Name: instName, Inner: ctype.Degroup(body)}
	child.RegisterType(instName, named)
	sc.Merge(child)
	return named, nil
}

func instantiationName(name string, args []ctype.CType) string {
	argStr := ""
	for i, a := range args {
		if i > 0 {
			argStr += ", "
		}
		argStr += ctype.StrictString(a, true)
	}
	return fmt.Sprintf("%s{%s}", name, argStr)
}
