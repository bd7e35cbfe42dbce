package ext

import (
	"fmt"
	"go/types"
	"os"
	"strings"

	"golang.org/x/tools/go/packages"
)

// Inspector loads host Go packages and looks up the symbols a project's
// bind declarations reference. Loaded packages are cached by import path
// so a project binding many symbols from one package loads it once.
type Inspector struct {
	loaded map[string]*packages.Package
}

func NewInspector() *Inspector {
	return &Inspector{loaded: make(map[string]*packages.Package)}
}

// Load type-checks the given Go packages relative to dir (the directory
// containing lume.yaml, so the project's own go.mod governs resolution).
func (ins *Inspector) Load(dir string, pkgPaths []string) error {
	var missing []string
	for _, p := range pkgPaths {
		if _, ok := ins.loaded[p]; !ok {
			missing = append(missing, p)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	cfg := &packages.Config{
		Mode: packages.NeedName |
			packages.NeedTypes |
			packages.NeedImports |
			packages.NeedDeps,
		Dir: dir,
		Env: append(os.Environ(), "GOWORK=off"),
	}
	pkgs, err := packages.Load(cfg, missing...)
	if err != nil {
		return fmt.Errorf("loading packages: %w", err)
	}

	var errs []string
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, fmt.Sprintf("%s: %s", pkg.PkgPath, e.Msg))
		}
		ins.loaded[pkg.PkgPath] = pkg
	}
	if len(errs) > 0 {
		return fmt.Errorf("package errors:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// LookupFunc resolves a package-level function (or method via "Type.Method")
// and returns its signature.
func (ins *Inspector) LookupFunc(pkgPath, symbol string) (*types.Signature, error) {
	pkg, ok := ins.loaded[pkgPath]
	if !ok {
		return nil, fmt.Errorf("package %s not loaded", pkgPath)
	}
	scope := pkg.Types.Scope()

	if typeName, methodName, isMethod := strings.Cut(symbol, "."); isMethod {
		obj := scope.Lookup(typeName)
		if obj == nil {
			return nil, fmt.Errorf("package %s has no type %s", pkgPath, typeName)
		}
		named, ok := obj.Type().(*types.Named)
		if !ok {
			return nil, fmt.Errorf("%s.%s is not a named type", pkgPath, typeName)
		}
		for i := 0; i < named.NumMethods(); i++ {
			m := named.Method(i)
			if m.Name() == methodName {
				return m.Type().(*types.Signature), nil
			}
		}
		// Interface methods are not in the method set above.
		if iface, ok := named.Underlying().(*types.Interface); ok {
			for i := 0; i < iface.NumMethods(); i++ {
				m := iface.Method(i)
				if m.Name() == methodName {
					return m.Type().(*types.Signature), nil
				}
			}
		}
		return nil, fmt.Errorf("type %s.%s has no method %s", pkgPath, typeName, methodName)
	}

	obj := scope.Lookup(symbol)
	if obj == nil {
		return nil, fmt.Errorf("package %s has no symbol %s", pkgPath, symbol)
	}
	sig, ok := obj.Type().(*types.Signature)
	if !ok {
		return nil, fmt.Errorf("%s.%s is not a function (got %s)", pkgPath, symbol, obj.Type())
	}
	return sig, nil
}
