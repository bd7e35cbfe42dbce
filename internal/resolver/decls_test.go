package resolver

import (
	"testing"

	"github.com/lumelang/lume/internal/ast"
	"github.com/lumelang/lume/internal/config"
	"github.com/lumelang/lume/internal/ctype"
	"github.com/lumelang/lume/internal/symbols"
)

func TestProcessTypeDecl_Concrete(t *testing.T) {
	sc := testScope(t)
	d := &ast.TypeDecl{
		Name:     "Pair",
		Exported: true,
		Body: call(config.TupleTypeName,
			call(config.FieldTypeName, name("x"), name("int")),
			call(config.FieldTypeName, name("y"), name("bool")),
		),
	}
	got, diag := ProcessTypeDecl(sc, d)
	if diag != nil {
		t.Fatalf("ProcessTypeDecl failed: %v", diag)
	}
	named, ok := got.(ctype.Named)
	if !ok || named.Name != "Pair" {
		t.Fatalf("got %T", got)
	}
	if _, ok := sc.ResolveType("Pair"); !ok {
		t.Errorf("Pair should be registered")
	}
	if !sc.Exports["Pair"] {
		t.Errorf("exported declaration should mark the name exported")
	}
}

func TestProcessTypeDecl_GuardElides(t *testing.T) {
	sc := testScope(t)
	config.ResetEnvForTesting()
	defer config.ResetEnvForTesting()

	d := &ast.TypeDecl{
		Name: "DebugHooks",
		Generics: []ast.GenericArg{
			{Bound: call("EnvExists", &ast.StrLit{Value: "LUME_DEBUG_HOOKS"})},
		},
		Body: name("int"),
	}
	got, diag := ProcessTypeDecl(sc, d)
	if diag != nil {
		t.Fatalf("ProcessTypeDecl failed: %v", diag)
	}
	if _, ok := got.(ctype.Fail); !ok {
		t.Fatalf("false guard should elide, got %T", got)
	}
	if _, ok := sc.ResolveType("DebugHooks"); ok {
		t.Errorf("elided declaration must never be registered")
	}

	// Flip the flag and the same declaration registers. The snapshot is
	// once-per-process, so it must be reset before the override lands.
	config.ResetEnvForTesting()
	config.SetEnvOverride("LUME_DEBUG_HOOKS", "1")
	got, diag = ProcessTypeDecl(sc, d)
	if diag != nil {
		t.Fatalf("ProcessTypeDecl failed: %v", diag)
	}
	if _, ok := got.(ctype.Named); !ok {
		t.Errorf("true guard should register, got %T", got)
	}
}

func TestProcessTypeDecl_NonBoolGuard(t *testing.T) {
	sc := testScope(t)
	d := &ast.TypeDecl{
		Name:     "Bad",
		Generics: []ast.GenericArg{{Bound: intLit(1)}},
		Body:     name("int"),
	}
	if _, diag := ProcessTypeDecl(sc, d); diag == nil {
		t.Errorf("non-bool guard must be a hard error")
	}
}

func TestProcessTypeDecl_GenericTemplate(t *testing.T) {
	sc := testScope(t)
	d := &ast.TypeDecl{
		Name:     "Box",
		Generics: []ast.GenericArg{{Name: "T"}},
		Body:     call(config.FieldTypeName, name("value"), name("T")),
	}
	got, diag := ProcessTypeDecl(sc, d)
	if diag != nil {
		t.Fatalf("ProcessTypeDecl failed: %v", diag)
	}
	g, ok := got.(ctype.Generic)
	if !ok || len(g.Params) != 1 || g.Params[0] != "T" {
		t.Fatalf("got %#v", got)
	}
}

func TestProcessFnDecl_Kinds(t *testing.T) {
	tests := []struct {
		name string
		d    *ast.FnDecl
		want symbols.FnKind
	}{
		{
			"normal",
			&ast.FnDecl{Name: "f", Params: []ast.Param{{Name: "a", Type: name("int")}}},
			symbols.Normal,
		},
		{
			"generic",
			&ast.FnDecl{
				Name:     "g",
				Generics: []ast.GenericArg{{Name: "T"}},
				Params:   []ast.Param{{Name: "a", Type: name("T")}},
			},
			symbols.Generic,
		},
		{
			"bound",
			&ast.FnDecl{
				Name:   "itoa",
				Bind:   "strconv.Itoa",
				Params: []ast.Param{{Name: "n", Type: name("int")}},
				Ret:    name("string"),
			},
			symbols.Bound,
		},
		{
			"bound generic",
			&ast.FnDecl{
				Name:     "first",
				Bind:     "slices.First",
				Generics: []ast.GenericArg{{Name: "T"}},
				Params:   []ast.Param{{Name: "xs", Type: seq(op("[]"), operand(name("T")))}},
				Ret:      name("T"),
			},
			symbols.BoundGeneric,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := testScope(t)
			fn, diag := ProcessFnDecl(sc, tt.d)
			if diag != nil {
				t.Fatalf("ProcessFnDecl failed: %v", diag)
			}
			if fn.Kind != tt.want {
				t.Errorf("kind = %v, want %v", fn.Kind, tt.want)
			}
			if len(sc.Overloads(tt.d.Name)) != 1 {
				t.Errorf("function should be registered once")
			}
		})
	}
}

func TestProcessFnDecl_SignatureShape(t *testing.T) {
	sc := testScope(t)
	d := &ast.FnDecl{
		Name: "dist",
		Params: []ast.Param{
			{Name: "a", Type: name("int")},
			{Name: "b", Type: name("int")},
		},
		Ret: name("float"),
	}
	fn, diag := ProcessFnDecl(sc, d)
	if diag != nil {
		t.Fatalf("ProcessFnDecl failed: %v", diag)
	}
	args := fn.ArgTypes()
	if len(args) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(args))
	}
	f, ok := ctype.Degroup(args[0]).(ctype.Field)
	if !ok || f.Label != "a" {
		t.Errorf("parameter names should become field labels, got %s",
			ctype.StrictString(args[0], true))
	}
	flt, _ := sc.ResolveType("float")
	if !ctype.Equal(fn.ReturnType(), flt) {
		t.Errorf("return type %s", ctype.StrictString(fn.ReturnType(), true))
	}
}

func TestProcessFnDecl_DefaultVoidReturn(t *testing.T) {
	sc := testScope(t)
	fn, diag := ProcessFnDecl(sc, &ast.FnDecl{Name: "log", Params: []ast.Param{
		{Name: "msg", Type: name("string")},
	}})
	if diag != nil {
		t.Fatalf("ProcessFnDecl failed: %v", diag)
	}
	if _, ok := ctype.Degroup(fn.ReturnType()).(ctype.Void); !ok {
		t.Errorf("missing return annotation should default to void")
	}
}

func TestProcessFnDecl_GuardElides(t *testing.T) {
	sc := testScope(t)
	config.ResetEnvForTesting()
	defer config.ResetEnvForTesting()

	fn, diag := ProcessFnDecl(sc, &ast.FnDecl{
		Name:     "trace",
		Generics: []ast.GenericArg{{Bound: &ast.BoolLit{Value: false}}},
		Params:   []ast.Param{{Name: "msg", Type: name("string")}},
	})
	if diag != nil {
		t.Fatalf("ProcessFnDecl failed: %v", diag)
	}
	if fn != nil {
		t.Errorf("elided function should not be produced")
	}
	if len(sc.Overloads("trace")) != 0 {
		t.Errorf("elided function must not be registered")
	}
}

func TestSpecialize(t *testing.T) {
	sc := testScope(t)
	i, _ := sc.ResolveType("int")

	generic, diag := ProcessFnDecl(sc, &ast.FnDecl{
		Name:     "head",
		Generics: []ast.GenericArg{{Name: "T"}},
		Params:   []ast.Param{{Name: "xs", Type: seq(op("[]"), operand(name("T")))}},
		Ret:      name("T"),
	})
	if diag != nil {
		t.Fatalf("ProcessFnDecl failed: %v", diag)
	}

	spec, diag := Specialize(sc, generic, []ctype.CType{i})
	if diag != nil {
		t.Fatalf("Specialize failed: %v", diag)
	}
	if spec.Kind != symbols.Normal {
		t.Errorf("specialized kind = %v", spec.Kind)
	}
	if ctype.HasInfer(spec.Type) {
		t.Errorf("specialization left placeholders: %s", ctype.StrictString(spec.Type, true))
	}
	if !ctype.Equal(spec.ReturnType(), i) {
		t.Errorf("return should specialize to int, got %s",
			ctype.StrictString(spec.ReturnType(), true))
	}
}

func TestSpecialize_BoundedParameter(t *testing.T) {
	sc := testScope(t)
	i, _ := sc.ResolveType("int")

	generic, diag := ProcessFnDecl(sc, &ast.FnDecl{
		Name:     "show",
		Generics: []ast.GenericArg{{Name: "T", Bound: name("Stringable")}},
		Params:   []ast.Param{{Name: "x", Type: name("T")}},
		Ret:      name("T"),
	})
	if diag != nil {
		t.Fatalf("ProcessFnDecl failed: %v", diag)
	}

	spec, diag := Specialize(sc, generic, []ctype.CType{i})
	if diag != nil {
		t.Fatalf("Specialize failed: %v", diag)
	}
	if ctype.HasInfer(spec.Type) {
		t.Errorf("bound kept the placeholder alive: %s", ctype.StrictString(spec.Type, true))
	}
	if !ctype.Equal(spec.ReturnType(), i) {
		t.Errorf("return should specialize to int, got %s",
			ctype.StrictString(spec.ReturnType(), true))
	}
}
