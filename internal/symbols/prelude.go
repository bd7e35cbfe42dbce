package symbols

import (
	"sync"

	"github.com/lumelang/lume/internal/config"
	"github.com/lumelang/lume/internal/ctype"
)

var (
	rootMu    sync.Mutex
	rootCache = map[string]*Scope{}
)

// Root returns the memoized root prelude scope for an output target. It is
// compiled once per target and read-only thereafter; file scopes parent to
// it, they never mutate it.
func Root(target string) *Scope {
	if target == "" {
		target = "rs"
	}
	rootMu.Lock()
	defer rootMu.Unlock()
	if s, ok := rootCache[target]; ok {
		return s
	}
	s := buildRoot(target)
	rootCache[target] = s
	return s
}

func buildRoot(target string) *Scope {
	s := NewScope(nil, "<prelude>")

	// Primitive types bind to native representations; the wrapper name is
	// nominal because the inner type is a Binds.
	natives := map[string]string{
		config.IntTypeName:    "i64",
		config.FloatTypeName:  "f64",
		config.BoolTypeName:   "bool",
		config.StringTypeName: "String",
	}
	if target == "js" {
		natives[config.IntTypeName] = "BigInt"
		natives[config.FloatTypeName] = "Number"
		natives[config.BoolTypeName] = "Boolean"
		natives[config.StringTypeName] = "String"
	}
	for name, symbol := range natives {
		s.RegisterType(name, ctype.Named{Name: name, Inner: ctype.Binds{Symbol: symbol}})
	}
	s.RegisterType(config.VoidTypeName, ctype.Void{})

	// Structural intrinsic generics.
	intrinsics := map[string]int{
		config.TupleTypeName:  -1,
		config.EitherTypeName: -1,
		config.AnyOfTypeName:  -1,
		config.FieldTypeName:  2,
		config.BufferTypeName: 2,
		config.ArrayTypeName:  1,
	}
	for name, arity := range intrinsics {
		s.RegisterType(name, ctype.IntrinsicGeneric{Name: name, Arity: arity})
	}

	// Native-binding and import intrinsics. Function is the arrow type
	// constructor Call's second argument is written with.
	s.RegisterType("Binds", ctype.IntrinsicGeneric{Name: "Binds", Arity: -1})
	s.RegisterType("Function", ctype.IntrinsicGeneric{Name: "Function", Arity: 2})
	s.RegisterType("Call", ctype.IntrinsicGeneric{Name: "Call", Arity: 2})
	s.RegisterType("Import", ctype.IntrinsicGeneric{Name: "Import", Arity: 2})

	// Compile-time operator generics, callable as Name{args}.
	for op := ctype.OpAdd; op <= ctype.OpTupleIf; op++ {
		s.RegisterType(op.Name(), ctype.IntrinsicGeneric{Name: op.Name(), Arity: -1})
	}

	// Type operators reduce to the intrinsics above. Higher precedence
	// binds tighter.
	ops := []*OpMapping{
		{Symbol: ",", FnName: config.TupleTypeName, Precedence: 1, Fixity: Infix},
		{Symbol: "|", FnName: config.EitherTypeName, Precedence: 2, Fixity: Infix},
		{Symbol: "&", FnName: config.AnyOfTypeName, Precedence: 2, Fixity: Infix},
		{Symbol: "==", FnName: "Eq", Precedence: 3, Fixity: Infix},
		{Symbol: "!=", FnName: "Neq", Precedence: 3, Fixity: Infix},
		{Symbol: "<", FnName: "Lt", Precedence: 4, Fixity: Infix},
		{Symbol: "<=", FnName: "Lte", Precedence: 4, Fixity: Infix},
		{Symbol: ">", FnName: "Gt", Precedence: 4, Fixity: Infix},
		{Symbol: ">=", FnName: "Gte", Precedence: 4, Fixity: Infix},
		{Symbol: "+", FnName: "Add", Precedence: 5, Fixity: Infix},
		{Symbol: "-", FnName: "Sub", Precedence: 5, Fixity: Infix},
		{Symbol: "++", FnName: "Concat", Precedence: 5, Fixity: Infix},
		{Symbol: "*", FnName: "Mul", Precedence: 6, Fixity: Infix},
		{Symbol: "/", FnName: "Div", Precedence: 6, Fixity: Infix},
		{Symbol: "%", FnName: "Mod", Precedence: 6, Fixity: Infix},
		{Symbol: "^", FnName: "Pow", Precedence: 7, Fixity: Infix},
		{Symbol: "!", FnName: "Not", Precedence: 8, Fixity: Prefix},
		{Symbol: ":", FnName: config.FieldTypeName, Precedence: 9, Fixity: Infix},
		{Symbol: "[]", FnName: config.ArrayTypeName, Precedence: 10, Fixity: Prefix},
	}
	for _, op := range ops {
		s.TypeOperators[op.Symbol] = op
	}

	return s
}

// ResetRootForTesting clears the memoized prelude scopes.
func ResetRootForTesting() {
	rootMu.Lock()
	defer rootMu.Unlock()
	rootCache = map[string]*Scope{}
}
