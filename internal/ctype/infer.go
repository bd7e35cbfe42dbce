package ctype

// bindings is an insertion-ordered substitution map from generic-parameter
// name to inferred type. Order matters: the AnyOf multi-candidate merge is
// last-write-wins per key, which is only deterministic because iteration
// follows insertion order.
type bindings struct {
	names []string
	vals  map[string]CType
}

func newBindings() *bindings {
	return &bindings{vals: map[string]CType{}}
}

func (b *bindings) clone() *bindings {
	c := &bindings{
		names: append([]string(nil), b.names...),
		vals:  make(map[string]CType, len(b.vals)),
	}
	for k, v := range b.vals {
		c.vals[k] = v
	}
	return c
}

func (b *bindings) get(name string) (CType, bool) {
	v, ok := b.vals[name]
	return v, ok
}

func (b *bindings) set(name string, t CType) {
	if _, ok := b.vals[name]; !ok {
		b.names = append(b.names, name)
	}
	b.vals[name] = t
}

// InferGenerics solves the generic-parameter bindings of a function by
// structurally unifying its declared argument types against the supplied
// call-argument types. The result is one concrete type per generic
// parameter, in declaration order.
func InferGenerics(res Resolver, params []string, declared, supplied []CType) ([]CType, error) {
	if len(declared) != len(supplied) {
		return nil, inferError("", "argument count mismatch: %d declared vs %d supplied",
			len(declared), len(supplied))
	}
	b := newBindings()
	for i := range declared {
		if err := unifyPair(res, b, declared[i], supplied[i]); err != nil {
			return nil, err
		}
	}
	out := make([]CType, len(params))
	for i, p := range params {
		v, ok := b.get(p)
		if !ok {
			return nil, inferError(p, "no inferred type found for %s", p)
		}
		out[i] = v
	}
	return out, nil
}

func unifyPair(res Resolver, b *bindings, decl, sup CType) error {
	decl = Degroup(decl)
	sup = Degroup(sup)

	// A placeholder on the supplied side means the caller handed us an
	// unresolved type as a concrete argument; that is an engine invariant
	// violation and must fail loudly.
	if inf, ok := sup.(Infer); ok {
		return inferError(inf.Name, "unresolved placeholder %s in supplied argument type", inf.Name)
	}

	if inf, ok := decl.(Infer); ok {
		return bindName(b, inf.Name, sup)
	}

	// Named wrappers are transparent on either side unless the inner type
	// is a Binds, in which case the wrapper name is nominal.
	if n, ok := decl.(Named); ok {
		if bindsInner, nominal := Degroup(n.Inner).(Binds); nominal {
			sn, ok := sup.(Named)
			if !ok {
				return inferError("", "cannot match native type %s against %s", n.Name, StrictString(sup, true))
			}
			supBinds, ok := Degroup(sn.Inner).(Binds)
			if !ok || n.Name != sn.Name {
				return inferError("", "native type mismatch: %s vs %s", n.Name, sn.Name)
			}
			return unifyBinds(res, b, bindsInner, supBinds)
		}
		return unifyPair(res, b, n.Inner, sup)
	}
	// A declared field label is transparent to an unlabeled supplied value.
	// This unwrap must precede the nominal guard below or Field{x, T} could
	// never take a plain native argument.
	if f, ok := decl.(Field); ok {
		if s, ok := sup.(Field); ok {
			if f.Label != s.Label {
				return inferError("", "field label mismatch: %s vs %s", f.Label, s.Label)
			}
			return unifyPair(res, b, f.Value, s.Value)
		}
		return unifyPair(res, b, f.Value, sup)
	}

	if n, ok := sup.(Named); ok {
		if _, nominal := Degroup(n.Inner).(Binds); nominal {
			return inferError("", "cannot match %s against native type %s", StrictString(decl, true), n.Name)
		}
		return unifyPair(res, b, decl, n.Inner)
	}

	// Imports resolve through the scope before matching.
	if imp, ok := decl.(Import); ok {
		resolved, found := resolveImport(res, imp)
		if !found {
			return inferError("", "cannot resolve imported type %s from %s", imp.Name, imp.Dep)
		}
		return unifyPair(res, b, resolved, sup)
	}

	// Declared-side ambiguity set: try each variant against a cloned
	// substitution map; a variant succeeds only if it does not conflict
	// with bindings fixed by other argument positions. Contributions of
	// all successful variants merge in declared order.
	if any, ok := decl.(AnyOf); ok {
		var succeeded []*bindings
		for _, opt := range any.Options {
			trial := b.clone()
			if err := unifyPair(res, trial, opt, sup); err == nil {
				succeeded = append(succeeded, trial)
			}
		}
		if len(succeeded) == 0 {
			return inferError("", "no member of %s matches %s",
				StrictString(any, true), StrictString(sup, true))
		}
		for _, trial := range succeeded {
			for _, name := range trial.names {
				v, _ := trial.get(name)
				b.set(name, v)
			}
		}
		return nil
	}
	// Supplied-side ambiguity: the argument is itself still ambiguous; the
	// first variant that unifies wins.
	if any, ok := sup.(AnyOf); ok {
		for _, opt := range any.Options {
			trial := b.clone()
			if err := unifyPair(res, trial, decl, opt); err == nil {
				*b = *trial
				return nil
			}
		}
		return inferError("", "no member of %s matches %s",
			StrictString(any, true), StrictString(decl, true))
	}

	switch d := decl.(type) {
	case Void:
		if _, ok := sup.(Void); ok {
			return nil
		}
	case Int:
		if s, ok := sup.(Int); ok {
			if d.Value == s.Value {
				return nil
			}
			return inferError("", "literal mismatch: %d vs %d", d.Value, s.Value)
		}
	case Float:
		if s, ok := sup.(Float); ok {
			if d.Value == s.Value {
				return nil
			}
			return inferError("", "literal mismatch: %g vs %g", d.Value, s.Value)
		}
	case Bool:
		if s, ok := sup.(Bool); ok {
			if d.Value == s.Value {
				return nil
			}
			return inferError("", "literal mismatch: %t vs %t", d.Value, s.Value)
		}
	case TString:
		if s, ok := sup.(TString); ok {
			if d.Value == s.Value {
				return nil
			}
			return inferError("", "literal mismatch: %q vs %q", d.Value, s.Value)
		}
	case Tuple:
		s, ok := sup.(Tuple)
		if !ok {
			break
		}
		if len(d.Elems) != len(s.Elems) {
			return inferError("", "tuple arity mismatch: %d vs %d", len(d.Elems), len(s.Elems))
		}
		for i := range d.Elems {
			if err := unifyPair(res, b, d.Elems[i], s.Elems[i]); err != nil {
				return err
			}
		}
		return nil
	case Either:
		s, ok := sup.(Either)
		if !ok {
			break
		}
		if len(d.Variants) != len(s.Variants) {
			return inferError("", "either arity mismatch: %d vs %d", len(d.Variants), len(s.Variants))
		}
		for i := range d.Variants {
			if err := unifyPair(res, b, d.Variants[i], s.Variants[i]); err != nil {
				return err
			}
		}
		return nil
	case Buffer:
		s, ok := sup.(Buffer)
		if !ok {
			break
		}
		if err := unifyPair(res, b, d.Elem, s.Elem); err != nil {
			return err
		}
		return unifyPair(res, b, d.Len, s.Len)
	case Array:
		s, ok := sup.(Array)
		if !ok {
			break
		}
		return unifyPair(res, b, d.Elem, s.Elem)
	case Function:
		s, ok := sup.(Function)
		if !ok {
			break
		}
		if err := unifyPair(res, b, d.In, s.In); err != nil {
			return err
		}
		return unifyPair(res, b, d.Out, s.Out)
	case Binds:
		s, ok := sup.(Binds)
		if !ok {
			break
		}
		return unifyBinds(res, b, d, s)
	case IntrinsicGeneric:
		if s, ok := sup.(IntrinsicGeneric); ok && d.Name == s.Name {
			return nil
		}
	default:
		if Equal(decl, sup) {
			return nil
		}
	}
	return inferError("", "cannot unify %s with %s",
		StrictString(decl, true), StrictString(sup, true))
}

func unifyBinds(res Resolver, b *bindings, d, s Binds) error {
	if d.Symbol != s.Symbol {
		return inferError("", "native symbol mismatch: %s vs %s", d.Symbol, s.Symbol)
	}
	if len(d.Args) != len(s.Args) {
		return inferError("", "native binding arity mismatch: %d vs %d", len(d.Args), len(s.Args))
	}
	for i := range d.Args {
		if err := unifyPair(res, b, d.Args[i], s.Args[i]); err != nil {
			return err
		}
	}
	return nil
}

func resolveImport(res Resolver, imp Import) (CType, bool) {
	if res == nil {
		return nil, false
	}
	return res.ResolveType(imp.Name)
}

// bindName records an observation for a generic parameter. A repeated
// observation must be compatible with the existing binding; AnyOf
// disjunctions narrow by set intersection.
func bindName(b *bindings, name string, observed CType) error {
	existing, ok := b.get(name)
	if !ok {
		b.set(name, observed)
		return nil
	}
	merged, err := mergeBinding(name, existing, observed)
	if err != nil {
		return err
	}
	b.set(name, merged)
	return nil
}

func mergeBinding(name string, existing, observed CType) (CType, error) {
	_, exAny := existing.(AnyOf)
	_, obAny := observed.(AnyOf)
	if !exAny && !obAny {
		if Equal(existing, observed) {
			return existing, nil
		}
		return nil, inferError(name, "conflicting types for %s: %s vs %s",
			name, StrictString(existing, true), StrictString(observed, true))
	}
	inter := intersect(optionsOf(existing), optionsOf(observed))
	switch len(inter) {
	case 0:
		return nil, inferError(name, "no common type for %s between %s and %s",
			name, StrictString(existing, true), StrictString(observed, true))
	case 1:
		return inter[0], nil
	default:
		return AnyOf{Options: inter}, nil
	}
}

func optionsOf(t CType) []CType {
	if any, ok := t.(AnyOf); ok {
		return any.Options
	}
	return []CType{t}
}

func intersect(a, b []CType) []CType {
	var out []CType
	for _, x := range a {
		for _, y := range b {
			if Equal(x, y) {
				out = append(out, x)
				break
			}
		}
	}
	return out
}
