package resolver

import (
	"github.com/lumelang/lume/internal/ast"
	"github.com/lumelang/lume/internal/ctype"
	"github.com/lumelang/lume/internal/diagnostics"
	"github.com/lumelang/lume/internal/symbols"
)

// evalGuards evaluates a declaration's bare guard expressions. A guard of
// Bool(false) silently elides the declaration; anything but a bool literal
// is a hard error. This is the conditional-compilation mechanism.
func evalGuards(sc *symbols.Scope, generics []ast.GenericArg) (elided bool, diag *diagnostics.Diagnostic) {
	for i := range generics {
		g := &generics[i]
		if g.Name != "" {
			continue
		}
		t, err := ResolveTypeExpr(sc, g.Bound)
		if err != nil {
			return false, err
		}
		b, ok := ctype.Degroup(t).(ctype.Bool)
		if !ok {
			return false, diagnostics.NewError(diagnostics.ErrT004, g.Pos,
				"conditional compilation guard must evaluate to a bool, got %s",
				ctype.StrictString(t, true))
		}
		if !b.Value {
			return true, nil
		}
	}
	return false, nil
}

func namedParams(generics []ast.GenericArg) []ast.GenericArg {
	var out []ast.GenericArg
	for _, g := range generics {
		if g.Name != "" {
			out = append(out, g)
		}
	}
	return out
}

// ProcessTypeDecl resolves one top-level type declaration and registers the
// result in the scope. An elided declaration returns a Fail marker that is
// never registered anywhere.
func ProcessTypeDecl(sc *symbols.Scope, d *ast.TypeDecl) (ctype.CType, *diagnostics.Diagnostic) {
	elided, diag := evalGuards(sc, d.Generics)
	if diag != nil {
		return nil, diag
	}
	if elided {
		return ctype.Fail{Reason: "elided by conditional compilation"}, nil
	}

	params := namedParams(d.Generics)
	if len(params) > 0 {
		names := make([]string, len(params))
		for i, p := range params {
			names[i] = p.Name
		}
		g := ctype.Generic{Name: d.Name, Params: names, Body: d.Body}
		sc.RegisterType(d.Name, g)
		if d.Exported {
			sc.MarkExported(d.Name)
		}
		return g, nil
	}

	body, diag := ResolveTypeExpr(sc, d.Body)
	if diag != nil {
		return nil, diag
	}
	if f, failed := ctype.Degroup(body).(ctype.Fail); failed {
		return nil, diagnostics.NewError(diagnostics.ErrT005, d.Pos,
			"type %s failed to resolve: %s", d.Name, f.Reason)
	}
	named := ctype.Named{Name: d.Name, Inner: ctype.Degroup(body)}
	sc.RegisterType(d.Name, named)
	if d.Exported {
		sc.MarkExported(d.Name)
	}
	return named, nil
}

// ProcessFnDecl resolves a function signature and registers it in the
// scope's overload table. Returns nil for an elided declaration.
func ProcessFnDecl(sc *symbols.Scope, d *ast.FnDecl) (*symbols.Function, *diagnostics.Diagnostic) {
	elided, diag := evalGuards(sc, d.Generics)
	if diag != nil {
		return nil, diag
	}
	if elided {
		return nil, nil
	}

	params := namedParams(d.Generics)
	paramNames := make([]string, len(params))
	child := sc.Child()
	for i, p := range params {
		paramNames[i] = p.Name
		bound := ""
		if p.Bound != nil {
			if b, ok := fieldLabel(p.Bound); ok {
				bound = b
			}
		}
		child.RegisterType(p.Name, ctype.Infer{Name: p.Name, Bound: bound})
	}

	argTypes := make([]ctype.CType, len(d.Params))
	for i, p := range d.Params {
		t, diag := ResolveTypeExpr(child, p.Type)
		if diag != nil {
			return nil, diag
		}
		argTypes[i] = ctype.Field{Label: p.Name, Value: ctype.Degroup(t)}
	}
	var ret ctype.CType = ctype.Void{}
	if d.Ret != nil {
		t, diag := ResolveTypeExpr(child, d.Ret)
		if diag != nil {
			return nil, diag
		}
		ret = ctype.Degroup(t)
	}

	fnType := ctype.Function{In: ctype.Tuple{Elems: argTypes}, Out: ret}
	kind := symbols.Normal
	switch {
	case d.Bind != "" && len(paramNames) > 0:
		kind = symbols.BoundGeneric
	case d.Bind != "":
		kind = symbols.Bound
	case len(paramNames) > 0:
		kind = symbols.Generic
	}

	fn := &symbols.Function{
		Name:          d.Name,
		Type:          fnType,
		Kind:          kind,
		Bind:          d.Bind,
		Shape:         parseShape(d.Shape),
		GenericParams: paramNames,
		Exported:      d.Exported,
	}
	sc.RegisterFunction(fn)
	if d.Exported {
		sc.MarkExported(d.Name)
	}
	return fn, nil
}

func parseShape(s string) ctype.CallShape {
	switch s {
	case "infix":
		return ctype.ShapeInfix
	case "prefix":
		return ctype.ShapePrefix
	case "method":
		return ctype.ShapeMethod
	case "property":
		return ctype.ShapeProperty
	case "cast":
		return ctype.ShapeCast
	default:
		return ctype.ShapeCall
	}
}

// Specialize produces a concrete function from a generic template and the
// inferred generic arguments. Substitution re-evaluates any symbolic
// operator nodes, so buffer lengths and conditional selections collapse to
// concrete values here.
func Specialize(sc *symbols.Scope, fn *symbols.Function, inferred []ctype.CType) (*symbols.Function, *diagnostics.Diagnostic) {
	t := fn.Type
	for i, p := range fn.GenericParams {
		swapped, err := ctype.SwapSubtype(t, ctype.Infer{Name: p}, inferred[i])
		if err != nil {
			return nil, diagnostics.Wrap(diagnostics.ErrT005, diagnostics.Span{}, err)
		}
		t = swapped
	}
	kind := symbols.Normal
	if fn.Kind == symbols.BoundGeneric {
		kind = symbols.Bound
	}
	spec := &symbols.Function{
		Name:     fn.Name,
		Type:     t,
		Kind:     kind,
		Bind:     fn.Bind,
		Shape:    fn.Shape,
		Exported: fn.Exported,
	}
	sc.RegisterFunction(spec)
	return spec, nil
}
