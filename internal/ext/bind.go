package ext

import (
	"go/types"

	"github.com/lumelang/lume/internal/config"
	"github.com/lumelang/lume/internal/ctype"
	"github.com/lumelang/lume/internal/derive"
	"github.com/lumelang/lume/internal/diagnostics"
	"github.com/lumelang/lume/internal/symbols"
)

// Binder turns the bind declarations of a lume.yaml project into native
// Bound functions in a scope. Each declaration is verified against the
// host Go package's actual type information before anything is registered.
type Binder struct {
	insp *Inspector
	der  *derive.Deriver
}

func NewBinder(prog *symbols.Program) *Binder {
	return &Binder{
		insp: NewInspector(),
		der:  derive.New(prog),
	}
}

// Apply loads every Go package the project binds, maps each bound symbol's
// Go signature into the type algebra, and registers the resulting Bound
// functions. Registration happens in an ephemeral child scope that is
// merged back only once every declaration resolved, so a failing project
// leaves the scope untouched.
func (b *Binder) Apply(sc *symbols.Scope, proj *config.Project, dir string) *diagnostics.Diagnostic {
	if len(proj.Bind) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var pkgs []string
	for _, d := range proj.Bind {
		if !seen[d.Pkg] {
			seen[d.Pkg] = true
			pkgs = append(pkgs, d.Pkg)
		}
	}
	if err := b.insp.Load(dir, pkgs); err != nil {
		return diagnostics.Wrap(diagnostics.ErrT006, diagnostics.Span{File: config.ProjectFileName}, err)
	}

	staging := sc.Child()
	for _, d := range proj.Bind {
		if diag := b.bindOne(staging, d); diag != nil {
			return diag
		}
	}
	sc.Merge(staging)
	return nil
}

func (b *Binder) bindOne(sc *symbols.Scope, d config.BindDecl) *diagnostics.Diagnostic {
	span := diagnostics.Span{File: config.ProjectFileName}
	sig, err := b.insp.LookupFunc(d.Pkg, d.Symbol)
	if err != nil {
		return diagnostics.Wrap(diagnostics.ErrT006, span, err)
	}

	name := d.As
	if name == "" {
		name = d.Symbol
	}

	call := ctype.Call{
		Bind:  d.Pkg + "." + d.Symbol,
		Shape: shapeOf(d.Shape),
		Fn:    signatureType(sc, sig),
	}
	named := ctype.Named{Name: name, Inner: call}
	sc.RegisterType(name, named)
	if _, diag := b.der.ToFunctions(sc, named, true); diag != nil {
		return diag
	}
	return nil
}

func shapeOf(s string) ctype.CallShape {
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

// signatureType maps a Go function signature into the type algebra.
// Parameters keep their Go names as field labels. A trailing error result
// turns the return type into an either over the payload and the error.
func signatureType(res ctype.Resolver, sig *types.Signature) ctype.CType {
	params := sig.Params()
	var in ctype.CType = ctype.Void{}
	if params.Len() > 0 {
		elems := make([]ctype.CType, params.Len())
		for i := 0; i < params.Len(); i++ {
			p := params.At(i)
			t := goType(res, p.Type())
			if p.Name() != "" {
				t = ctype.Field{Label: p.Name(), Value: t}
			}
			elems[i] = t
		}
		in = ctype.Tuple{Elems: elems}
	}

	results := sig.Results()
	var out ctype.CType = ctype.Void{}
	switch results.Len() {
	case 0:
	case 1:
		out = goType(res, results.At(0).Type())
	default:
		last := results.At(results.Len() - 1).Type()
		if isError(last) {
			payload := make([]ctype.CType, 0, results.Len())
			for i := 0; i < results.Len()-1; i++ {
				payload = append(payload, goType(res, results.At(i).Type()))
			}
			var ok ctype.CType
			if len(payload) == 1 {
				ok = payload[0]
			} else {
				ok = ctype.Tuple{Elems: payload}
			}
			out = ctype.Either{Variants: []ctype.CType{ok, goType(res, last)}}
			break
		}
		elems := make([]ctype.CType, results.Len())
		for i := range elems {
			elems[i] = goType(res, results.At(i).Type())
		}
		out = ctype.Tuple{Elems: elems}
	}

	return ctype.Function{In: in, Out: out}
}

func isError(t types.Type) bool {
	named, ok := t.(*types.Named)
	return ok && named.Obj().Pkg() == nil && named.Obj().Name() == "error"
}

// goType maps one Go type to its algebra counterpart. Builtin scalars go
// through the scope so they unify with the prelude's named primitives;
// anything without a structural mapping becomes an opaque native marker.
func goType(res ctype.Resolver, t types.Type) ctype.CType {
	switch v := t.(type) {
	case *types.Basic:
		return basicType(res, v)
	case *types.Pointer:
		return goType(res, v.Elem())
	case *types.Slice:
		return ctype.Array{Elem: goType(res, v.Elem())}
	case *types.Array:
		return ctype.Buffer{Elem: goType(res, v.Elem()), Len: ctype.Int{Value: v.Len()}}
	case *types.Signature:
		return signatureType(res, v)
	case *types.Struct:
		var elems []ctype.CType
		for i := 0; i < v.NumFields(); i++ {
			f := v.Field(i)
			if !f.Exported() {
				continue
			}
			elems = append(elems, ctype.Field{Label: f.Name(), Value: goType(res, f.Type())})
		}
		return ctype.Tuple{Elems: elems}
	case *types.Named:
		if isError(t) {
			return ctype.Binds{Symbol: "error"}
		}
		return ctype.Binds{Symbol: v.String()}
	default:
		return ctype.Binds{Symbol: t.String()}
	}
}

func basicType(res ctype.Resolver, b *types.Basic) ctype.CType {
	var name string
	switch b.Info() & (types.IsBoolean | types.IsInteger | types.IsFloat | types.IsString) {
	case types.IsBoolean:
		name = config.BoolTypeName
	case types.IsInteger:
		name = config.IntTypeName
	case types.IsFloat:
		name = config.FloatTypeName
	case types.IsString:
		name = config.StringTypeName
	default:
		return ctype.Binds{Symbol: b.String()}
	}
	if t, ok := res.ResolveType(name); ok {
		return t
	}
	return ctype.Binds{Symbol: b.String()}
}
