package ext

import (
	"go/token"
	"go/types"
	"testing"

	"github.com/lumelang/lume/internal/ctype"
	"github.com/lumelang/lume/internal/symbols"
)

var hostPkg = types.NewPackage("example.com/hostlib", "hostlib")

func v(name string, t types.Type) *types.Var {
	return types.NewVar(token.NoPos, hostPkg, name, t)
}

func sig(params, results []*types.Var) *types.Signature {
	return types.NewSignatureType(nil, nil, nil,
		types.NewTuple(params...), types.NewTuple(results...), false)
}

func errorType() types.Type {
	return types.Universe.Lookup("error").Type()
}

func testResolver(t *testing.T) *symbols.Scope {
	t.Helper()
	return symbols.NewScope(symbols.Root("rs"), "test.lm")
}

func TestSignatureTypeScalars(t *testing.T) {
	sc := testResolver(t)
	s := sig(
		[]*types.Var{v("a", types.Typ[types.Int]), v("b", types.Typ[types.Int])},
		[]*types.Var{v("", types.Typ[types.Int])},
	)
	fn, ok := signatureType(sc, s).(ctype.Function)
	if !ok {
		t.Fatal("signatureType did not produce a function")
	}
	in, ok := fn.In.(ctype.Tuple)
	if !ok || len(in.Elems) != 2 {
		t.Fatalf("In = %s", ctype.StrictString(fn.In, false))
	}
	for i, label := range []string{"a", "b"} {
		f, ok := in.Elems[i].(ctype.Field)
		if !ok || f.Label != label {
			t.Errorf("param %d = %s, want field %q", i, ctype.StrictString(in.Elems[i], false), label)
		}
	}
	wantInt, _ := sc.ResolveType("int")
	if !ctype.Equal(fn.Out, wantInt) {
		t.Errorf("Out = %s, want the prelude int", ctype.StrictString(fn.Out, false))
	}
}

func TestSignatureTypeZeroInOut(t *testing.T) {
	fn := signatureType(testResolver(t), sig(nil, nil)).(ctype.Function)
	if _, ok := fn.In.(ctype.Void); !ok {
		t.Errorf("In = %T, want void", fn.In)
	}
	if _, ok := fn.Out.(ctype.Void); !ok {
		t.Errorf("Out = %T, want void", fn.Out)
	}
}

func TestSignatureTypeTrailingError(t *testing.T) {
	sc := testResolver(t)
	s := sig(
		[]*types.Var{v("s", types.Typ[types.String])},
		[]*types.Var{v("", types.Typ[types.Int]), v("", errorType())},
	)
	fn := signatureType(sc, s).(ctype.Function)
	either, ok := fn.Out.(ctype.Either)
	if !ok || len(either.Variants) != 2 {
		t.Fatalf("Out = %s, want a two-variant either", ctype.StrictString(fn.Out, false))
	}
	wantInt, _ := sc.ResolveType("int")
	if !ctype.Equal(either.Variants[0], wantInt) {
		t.Errorf("payload = %s", ctype.StrictString(either.Variants[0], false))
	}
	binds, ok := either.Variants[1].(ctype.Binds)
	if !ok || binds.Symbol != "error" {
		t.Errorf("failure variant = %s", ctype.StrictString(either.Variants[1], false))
	}
}

func TestSignatureTypeMultiPayloadError(t *testing.T) {
	sc := testResolver(t)
	s := sig(nil, []*types.Var{
		v("", types.Typ[types.Int]),
		v("", types.Typ[types.Bool]),
		v("", errorType()),
	})
	fn := signatureType(sc, s).(ctype.Function)
	either, ok := fn.Out.(ctype.Either)
	if !ok {
		t.Fatalf("Out = %T", fn.Out)
	}
	payload, ok := either.Variants[0].(ctype.Tuple)
	if !ok || len(payload.Elems) != 2 {
		t.Errorf("payload = %s, want a two-element tuple", ctype.StrictString(either.Variants[0], false))
	}
}

func TestSignatureTypeMultiResultWithoutError(t *testing.T) {
	sc := testResolver(t)
	s := sig(nil, []*types.Var{
		v("", types.Typ[types.Int]),
		v("", types.Typ[types.Bool]),
	})
	fn := signatureType(sc, s).(ctype.Function)
	tup, ok := fn.Out.(ctype.Tuple)
	if !ok || len(tup.Elems) != 2 {
		t.Errorf("Out = %s, want a plain tuple", ctype.StrictString(fn.Out, false))
	}
}

func TestGoTypeMappings(t *testing.T) {
	sc := testResolver(t)
	wantInt, _ := sc.ResolveType("int")
	wantBool, _ := sc.ResolveType("bool")

	t.Run("pointer unwraps", func(t *testing.T) {
		got := goType(sc, types.NewPointer(types.Typ[types.Int]))
		if !ctype.Equal(got, wantInt) {
			t.Errorf("got %s", ctype.StrictString(got, false))
		}
	})

	t.Run("slice to array", func(t *testing.T) {
		got, ok := goType(sc, types.NewSlice(types.Typ[types.Bool])).(ctype.Array)
		if !ok {
			t.Fatal("not an array")
		}
		if !ctype.Equal(got.Elem, wantBool) {
			t.Errorf("elem = %s", ctype.StrictString(got.Elem, false))
		}
	})

	t.Run("array to sized buffer", func(t *testing.T) {
		got, ok := goType(sc, types.NewArray(types.Typ[types.Int], 4)).(ctype.Buffer)
		if !ok {
			t.Fatal("not a buffer")
		}
		n, ok := got.Len.(ctype.Int)
		if !ok || n.Value != 4 {
			t.Errorf("Len = %s", ctype.StrictString(got.Len, false))
		}
	})

	t.Run("struct keeps exported fields", func(t *testing.T) {
		st := types.NewStruct([]*types.Var{
			types.NewField(token.NoPos, hostPkg, "X", types.Typ[types.Int], false),
			types.NewField(token.NoPos, hostPkg, "hidden", types.Typ[types.Bool], false),
			types.NewField(token.NoPos, hostPkg, "Y", types.Typ[types.Bool], false),
		}, nil)
		got, ok := goType(sc, st).(ctype.Tuple)
		if !ok || len(got.Elems) != 2 {
			t.Fatalf("got %s", ctype.StrictString(got, false))
		}
		for i, label := range []string{"X", "Y"} {
			f := got.Elems[i].(ctype.Field)
			if f.Label != label {
				t.Errorf("field %d = %q, want %q", i, f.Label, label)
			}
		}
	})

	t.Run("named type becomes opaque binding", func(t *testing.T) {
		obj := types.NewTypeName(token.NoPos, hostPkg, "Conn", nil)
		named := types.NewNamed(obj, types.Typ[types.Int], nil)
		got, ok := goType(sc, named).(ctype.Binds)
		if !ok || got.Symbol != "example.com/hostlib.Conn" {
			t.Errorf("got %s", ctype.StrictString(got, false))
		}
	})

	t.Run("universe error binds as error", func(t *testing.T) {
		got, ok := goType(sc, errorType()).(ctype.Binds)
		if !ok || got.Symbol != "error" {
			t.Errorf("got %s", ctype.StrictString(got, false))
		}
	})

	t.Run("unmapped basic stays opaque", func(t *testing.T) {
		got, ok := goType(sc, types.Typ[types.Complex128]).(ctype.Binds)
		if !ok || got.Symbol != "complex128" {
			t.Errorf("got %s", ctype.StrictString(got, false))
		}
	})
}

func TestIsErrorRejectsShadowedName(t *testing.T) {
	// A package-local type called "error" is not the universe error.
	obj := types.NewTypeName(token.NoPos, hostPkg, "error", nil)
	named := types.NewNamed(obj, types.Typ[types.Int], nil)
	if isError(named) {
		t.Error("package-local error type treated as the builtin")
	}
	if !isError(errorType()) {
		t.Error("universe error not recognized")
	}
}

func TestShapeOf(t *testing.T) {
	tests := map[string]ctype.CallShape{
		"":         ctype.ShapeCall,
		"call":     ctype.ShapeCall,
		"infix":    ctype.ShapeInfix,
		"prefix":   ctype.ShapePrefix,
		"method":   ctype.ShapeMethod,
		"property": ctype.ShapeProperty,
		"cast":     ctype.ShapeCast,
	}
	for in, want := range tests {
		if got := shapeOf(in); got != want {
			t.Errorf("shapeOf(%q) = %v, want %v", in, got, want)
		}
	}
}
