package symbols

import (
	"github.com/google/uuid"

	"github.com/lumelang/lume/internal/ctype"
)

// OpFixity distinguishes infix and prefix type operators.
type OpFixity int

const (
	Infix OpFixity = iota
	Prefix
)

// OpMapping maps a type-operator symbol to the intrinsic or named generic
// it reduces to, with its precedence. Higher precedence binds tighter.
type OpMapping struct {
	Symbol     string
	FnName     string
	Precedence int
	Fixity     OpFixity
}

// Scope is one lexical scope: a chain of name tables. The root scope holds
// the builtin prelude; each source file gets a scope parented to root;
// ephemeral child scopes exist per generic instantiation and merge back
// into their parent on success.
type Scope struct {
	ID     string
	File   string
	Parent *Scope

	Types         map[string]ctype.CType
	Functions     map[string][]*Function
	Consts        map[string]ctype.CType
	TypeOperators map[string]*OpMapping
	Exports       map[string]bool
}

// NewScope creates a scope parented to the given scope (nil for root).
func NewScope(parent *Scope, file string) *Scope {
	return &Scope{
		ID:            uuid.NewString(),
		File:          file,
		Parent:        parent,
		Types:         map[string]ctype.CType{},
		Functions:     map[string][]*Function{},
		Consts:        map[string]ctype.CType{},
		TypeOperators: map[string]*OpMapping{},
		Exports:       map[string]bool{},
	}
}

// Child creates a nested scope for transient generic-argument binding. The
// child is exclusively owned by its creator until merged back.
func (s *Scope) Child() *Scope {
	return NewScope(s, s.File)
}

// String identifies the scope for trace output. Every scope, including the
// ephemeral children created during instantiation and binding, carries its
// own id so merges are distinguishable in logs.
func (s *Scope) String() string {
	if s.File == "" {
		return "scope(root " + s.ID + ")"
	}
	return "scope(" + s.File + " " + s.ID + ")"
}

// Merge folds a child's registered types, functions and operators back into
// this scope. Used after any path that may have synthesized derived
// functions as a side effect of type resolution.
func (s *Scope) Merge(child *Scope) {
	for name, t := range child.Types {
		s.Types[name] = t
	}
	for name, fns := range child.Functions {
		s.Functions[name] = append(fns, s.Functions[name]...)
	}
	for name, c := range child.Consts {
		s.Consts[name] = c
	}
	for sym, op := range child.TypeOperators {
		s.TypeOperators[sym] = op
	}
	for name := range child.Exports {
		s.Exports[name] = true
	}
}

// RegisterType binds a name to a type in this scope.
func (s *Scope) RegisterType(name string, t ctype.CType) {
	s.Types[name] = t
}

// RegisterFunction appends a function to its overload set.
func (s *Scope) RegisterFunction(fn *Function) {
	s.Functions[fn.Name] = append(s.Functions[fn.Name], fn)
}

// PrependFunction registers a derived function at the front of its overload
// set. User-written overloads of the same name still take priority: the
// resolver prefers non-derived matches over derived ones regardless of
// position.
func (s *Scope) PrependFunction(fn *Function) {
	s.Functions[fn.Name] = append([]*Function{fn}, s.Functions[fn.Name]...)
}

// ResolveType walks the scope chain for a named type.
func (s *Scope) ResolveType(name string) (ctype.CType, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		if t, ok := sc.Types[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// ResolveConst walks the scope chain for a named constant.
func (s *Scope) ResolveConst(name string) (ctype.CType, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		if c, ok := sc.Consts[name]; ok {
			return c, true
		}
	}
	return nil, false
}

// ResolveTypeOperator walks the scope chain for an operator mapping, root
// scope last.
func (s *Scope) ResolveTypeOperator(symbol string) (*OpMapping, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		if op, ok := sc.TypeOperators[symbol]; ok {
			return op, true
		}
	}
	return nil, false
}

// Overloads returns the full overload set for a name, nearest scope first.
func (s *Scope) Overloads(name string) []*Function {
	var out []*Function
	for sc := s; sc != nil; sc = sc.Parent {
		out = append(out, sc.Functions[name]...)
	}
	return out
}

// ResolveFunction picks the first structural match for the supplied
// argument types, falling back to generic unification. For a generic match
// the inferred generic arguments are returned alongside the template.
func (s *Scope) ResolveFunction(name string, args []ctype.CType) (*Function, []ctype.CType, bool) {
	overloads := s.Overloads(name)
	// User-written overloads win over derived ones even though derivation
	// prepends to the table.
	for _, derived := range []bool{false, true} {
		for _, fn := range overloads {
			if fn.Kind == Generic || fn.Kind == BoundGeneric {
				continue
			}
			isDerived := fn.Kind == Derived || fn.Kind == DerivedVariadic
			if isDerived != derived {
				continue
			}
			if fn.Matches(args) {
				return fn, nil, true
			}
		}
	}
	for _, fn := range overloads {
		if fn.Kind != Generic && fn.Kind != BoundGeneric {
			continue
		}
		inferred, err := ctype.InferGenerics(s, fn.GenericParams, fn.ArgTypes(), args)
		if err == nil {
			return fn, inferred, true
		}
	}
	return nil, nil, false
}

// MarkExported flags a name as exported from this scope.
func (s *Scope) MarkExported(name string) {
	s.Exports[name] = true
}
