package symbols

import (
	"github.com/lumelang/lume/internal/ctype"
)

// FnKind distinguishes how a function's body exists and how calls lower.
type FnKind int

const (
	// Normal is an ordinary user-written function.
	Normal FnKind = iota
	// Bound is backed by a native symbol instead of compiled code.
	Bound
	// BoundGeneric is a native binding still carrying generic parameters.
	BoundGeneric
	// Generic is an unresolved template re-specialized per instantiation.
	Generic
	// Derived is a compiler-synthesized constructor or accessor.
	Derived
	// DerivedVariadic is a synthesized constructor accepting any number of
	// same-typed arguments; variadic arity matching is a first-class kind,
	// not sugar.
	DerivedVariadic
)

// Function is the descriptor handed to downstream lowering. Downstream code
// reads only the input/output types and the invocation kind; it never needs
// to re-derive type internals.
type Function struct {
	Name string
	// Type is a ctype.Function from an input Tuple to a return type.
	Type ctype.CType
	Kind FnKind
	// Bind is the native symbol or call text for Bound functions. Literal
	// arguments may be baked into it, in which case TrimmedArgs is set and
	// Type has been pruned to the remaining parameters.
	Bind        string
	Shape       ctype.CallShape
	TrimmedArgs bool
	// GenericParams lists unresolved parameter names for Generic kinds.
	GenericParams []string
	Exported      bool
}

// ArgTypes unpacks the declared parameter types from the function type.
func (f *Function) ArgTypes() []ctype.CType {
	fn, ok := ctype.Degroup(f.Type).(ctype.Function)
	if !ok {
		return nil
	}
	if tup, ok := ctype.Degroup(fn.In).(ctype.Tuple); ok {
		return tup.Elems
	}
	if _, ok := ctype.Degroup(fn.In).(ctype.Void); ok {
		return nil
	}
	return []ctype.CType{fn.In}
}

// ReturnType unpacks the declared return type from the function type.
func (f *Function) ReturnType() ctype.CType {
	fn, ok := ctype.Degroup(f.Type).(ctype.Function)
	if !ok {
		return ctype.Void{}
	}
	return fn.Out
}

// Matches reports whether the supplied argument types structurally satisfy
// this function's declared parameters.
func (f *Function) Matches(args []ctype.CType) bool {
	declared := f.ArgTypes()
	if f.Kind == DerivedVariadic {
		if len(declared) != 1 {
			return false
		}
		for _, a := range args {
			if !ctype.Accepts(declared[0], a) {
				return false
			}
		}
		return true
	}
	if len(declared) != len(args) {
		return false
	}
	for i := range declared {
		if !ctype.Accepts(declared[i], args[i]) {
			return false
		}
	}
	return true
}
