package derive

import (
	"fmt"
	"strconv"

	"github.com/lumelang/lume/internal/config"
	"github.com/lumelang/lume/internal/ctype"
	"github.com/lumelang/lume/internal/diagnostics"
	"github.com/lumelang/lume/internal/symbols"
)

// Deriver synthesizes constructor and accessor functions from a named type's
// shape so user code can build and take apart values without hand-written
// glue. Import splicing needs the program to reach other files' scopes.
type Deriver struct {
	Prog *symbols.Program
}

func New(p *symbols.Program) *Deriver {
	return &Deriver{Prog: p}
}

// ToFunctions synthesizes the derived function set for a named type and
// registers every result into the scope. Derived functions are prepended to
// the overload table so user-written overloads of the same name keep
// priority, and inherit the declaration's export mark.
func (d *Deriver) ToFunctions(sc *symbols.Scope, t ctype.Named, exported bool) ([]*symbols.Function, *diagnostics.Diagnostic) {
	var fns []*symbols.Function
	var diag *diagnostics.Diagnostic

	switch inner := ctype.Degroup(t.Inner).(type) {
	case ctype.Tuple:
		fns = deriveTuple(t, inner.Elems)
	case ctype.Field:
		fns = deriveTuple(t, []ctype.CType{inner})
	case ctype.Either:
		fns = deriveEither(t, inner)
	case ctype.Buffer:
		fns, diag = deriveBuffer(t, inner)
	case ctype.Array:
		fns = deriveArray(t, inner)
	case ctype.Int, ctype.Float, ctype.Bool, ctype.TString:
		fns = []*symbols.Function{literalCtor(t.Name, t)}
	case ctype.Call:
		fns, diag = deriveCall(t.Name, inner)
	case ctype.Import:
		fns, diag = d.spliceImport(sc, t.Name, inner)
	case ctype.Binds:
		// A bare native type has no structure to derive from.
	}
	if diag != nil {
		return nil, diag
	}

	for _, fn := range fns {
		sc.PrependFunction(fn)
		if exported {
			fn.Exported = true
			sc.MarkExported(fn.Name)
		}
	}
	return fns, nil
}

// isLiteral reports whether a type is a value-carrying literal, i.e. a
// static tag rather than data a constructor should ask for.
func isLiteral(t ctype.CType) bool {
	switch ctype.Degroup(t).(type) {
	case ctype.Int, ctype.Float, ctype.Bool, ctype.TString:
		return true
	}
	return false
}

func fnType(in []ctype.CType, out ctype.CType) ctype.CType {
	if len(in) == 0 {
		return ctype.Function{In: ctype.Void{}, Out: out}
	}
	return ctype.Function{In: ctype.Tuple{Elems: in}, Out: out}
}

func derived(name string, in []ctype.CType, out ctype.CType) *symbols.Function {
	return &symbols.Function{
		Name: name,
		Type: fnType(in, out),
		Kind: symbols.Derived,
	}
}

func literalCtor(name string, out ctype.CType) *symbols.Function {
	return derived(name, nil, out)
}

// deriveTuple yields one constructor over the non-literal fields in declared
// order, plus one accessor per field. Literal-valued fields are static tags:
// they get a zero-argument accessor and stay out of the constructor.
// Unlabeled fields are addressed by positional index name.
func deriveTuple(t ctype.Named, elems []ctype.CType) []*symbols.Function {
	var fns []*symbols.Function
	var ctorIn []ctype.CType

	for i, e := range elems {
		label := strconv.Itoa(i)
		val := ctype.Degroup(e)
		if f, ok := val.(ctype.Field); ok {
			label = f.Label
			val = ctype.Degroup(f.Value)
		}
		if isLiteral(val) {
			fns = append(fns, derived(label, nil, val))
			continue
		}
		ctorIn = append(ctorIn, e)
		fns = append(fns, derived(label, []ctype.CType{t}, val))
	}

	ctor := derived(t.Name, ctorIn, t)
	return append([]*symbols.Function{ctor}, fns...)
}

// deriveEither yields a constructor per variant, a store function that
// re-wraps an outer value around a new payload, and an optional-style probe
// accessor for variants that carry a name to probe by. A Void variant gets a
// zero-argument constructor instead.
func deriveEither(t ctype.Named, e ctype.Either) []*symbols.Function {
	var fns []*symbols.Function

	for _, v := range e.Variants {
		dv := ctype.Degroup(v)
		switch variant := dv.(type) {
		case ctype.Void:
			fns = append(fns, derived(t.Name, nil, t))
		case ctype.Field:
			payload := ctype.Degroup(variant.Value)
			fns = append(fns,
				derived(t.Name, []ctype.CType{payload}, t),
				derived(config.StoreFuncName, []ctype.CType{t, payload}, t),
				derived(variant.Label, []ctype.CType{t}, probeType(payload)),
			)
		case ctype.Named:
			fns = append(fns,
				derived(t.Name, []ctype.CType{variant}, t),
				derived(config.StoreFuncName, []ctype.CType{t, variant}, t),
				derived(variant.Name, []ctype.CType{t}, probeType(variant)),
			)
		default:
			fns = append(fns,
				derived(t.Name, []ctype.CType{dv}, t),
				derived(config.StoreFuncName, []ctype.CType{t, dv}, t),
			)
		}
	}
	return fns
}

// probeType is the "maybe payload" shape a variant accessor returns.
func probeType(payload ctype.CType) ctype.CType {
	return ctype.Either{Variants: []ctype.CType{payload, ctype.Void{}}}
}

// deriveBuffer yields a broadcast-fill constructor taking one element and,
// for lengths above one, a second constructor taking every element
// positionally.
func deriveBuffer(t ctype.Named, b ctype.Buffer) ([]*symbols.Function, *diagnostics.Diagnostic) {
	n, ok := ctype.Degroup(b.Len).(ctype.Int)
	if !ok {
		return nil, diagnostics.NewError(diagnostics.ErrD001, diagnostics.Span{},
			"buffer type %s has an unresolved length %s",
			t.Name, ctype.StrictString(b.Len, true))
	}
	if n.Value < 0 {
		return nil, diagnostics.NewError(diagnostics.ErrD001, diagnostics.Span{},
			"buffer type %s has negative length %d", t.Name, n.Value)
	}

	fns := []*symbols.Function{
		derived(t.Name, []ctype.CType{b.Elem}, t),
	}
	if n.Value > 1 {
		in := make([]ctype.CType, n.Value)
		for i := range in {
			in[i] = b.Elem
		}
		fns = append(fns, derived(t.Name, in, t))
	}
	return fns, nil
}

func deriveArray(t ctype.Named, a ctype.Array) []*symbols.Function {
	ctor := derived(t.Name, []ctype.CType{a.Elem}, t)
	ctor.Kind = symbols.DerivedVariadic
	return []*symbols.Function{ctor}
}

// deriveCall turns a native-call binding into a Bound function. Literal
// arguments are baked into the generated call text and pruned from the
// declared parameter list, tracked via TrimmedArgs.
func deriveCall(name string, c ctype.Call) ([]*symbols.Function, *diagnostics.Diagnostic) {
	fn, ok := ctype.Degroup(c.Fn).(ctype.Function)
	if !ok {
		return nil, diagnostics.NewError(diagnostics.ErrD002, diagnostics.Span{},
			"native binding %s requires a function type, got %s",
			name, ctype.StrictString(c.Fn, true))
	}

	bind := c.Bind
	var kept []ctype.CType
	trimmed := false
	for _, arg := range argList(fn.In) {
		val := ctype.Degroup(arg)
		if f, ok := val.(ctype.Field); ok {
			val = ctype.Degroup(f.Value)
		}
		if lit, ok := literalText(val); ok {
			bind = fmt.Sprintf("%s!%s", bind, lit)
			trimmed = true
			continue
		}
		kept = append(kept, arg)
	}

	out := &symbols.Function{
		Name:        name,
		Type:        fnType(kept, fn.Out),
		Kind:        symbols.Bound,
		Bind:        bind,
		Shape:       c.Shape,
		TrimmedArgs: trimmed,
	}
	return []*symbols.Function{out}, nil
}

func argList(in ctype.CType) []ctype.CType {
	switch v := ctype.Degroup(in).(type) {
	case ctype.Void:
		return nil
	case ctype.Tuple:
		return v.Elems
	default:
		return []ctype.CType{in}
	}
}

func literalText(t ctype.CType) (string, bool) {
	switch v := t.(type) {
	case ctype.Int:
		return strconv.FormatInt(v.Value, 10), true
	case ctype.Float:
		return strconv.FormatFloat(v.Value, 'g', -1, 64), true
	case ctype.Bool:
		return strconv.FormatBool(v.Value), true
	case ctype.TString:
		return strconv.Quote(v.Value), true
	}
	return "", false
}

// spliceImport resolves a symbol from another file's already-loaded scope
// and re-registers its overload set here. Both the type name and every
// matching function come across.
func (d *Deriver) spliceImport(sc *symbols.Scope, name string, imp ctype.Import) ([]*symbols.Function, *diagnostics.Diagnostic) {
	if d.Prog == nil {
		return nil, diagnostics.NewError(diagnostics.ErrD002, diagnostics.Span{},
			"import of %s from %q outside a program context", imp.Name, imp.Dep)
	}
	dep, err := d.Prog.ScopeByFile(sc.File, imp.Dep)
	if err != nil {
		return nil, diagnostics.Wrap(diagnostics.ErrD002, diagnostics.Span{File: sc.File}, err)
	}

	if t, ok := dep.ResolveType(imp.Name); ok {
		sc.RegisterType(name, t)
	}
	var fns []*symbols.Function
	for _, fn := range dep.Overloads(imp.Name) {
		spliced := *fn
		spliced.Name = name
		fns = append(fns, &spliced)
	}
	if len(fns) == 0 {
		if _, ok := dep.ResolveType(imp.Name); !ok {
			return nil, diagnostics.NewError(diagnostics.ErrD002, diagnostics.Span{File: sc.File},
				"%q does not export %s", imp.Dep, imp.Name)
		}
	}
	return fns, nil
}
