package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/lumelang/lume/internal/config"
	"github.com/lumelang/lume/internal/ctype"
	"github.com/lumelang/lume/internal/diagnostics"
	"github.com/lumelang/lume/internal/ext"
	"github.com/lumelang/lume/internal/symbols"
)

// Version can be set at build time using: -ldflags "-X main.Version=v1.2.3"
var Version = "dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "version", "-version", "--version":
		fmt.Printf("lume %s\n", Version)
	case "env":
		cmdEnv(os.Args[2:])
	case "prelude":
		cmdPrelude(os.Args[2:])
	case "bindings":
		cmdBindings(os.Args[2:])
	case "help", "-help", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: lume <command> [args]

Commands:
  prelude [target]   print the builtin types and operators for a target (rs, js)
  bindings [dir]     verify the native bindings declared in %s
  env <key>          print a compile-time environment value
  version            print the version
`, config.ProjectFileName)
}

// cmdEnv shows the snapshot the compile-time Env operators would see.
func cmdEnv(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: lume env <key>")
		os.Exit(2)
	}
	v, ok := config.Env(args[0])
	if !ok {
		fmt.Fprintf(os.Stderr, "%s is not set\n", args[0])
		os.Exit(1)
	}
	fmt.Println(v)
}

func cmdPrelude(args []string) {
	target := "rs"
	if len(args) > 0 {
		target = args[0]
	}
	root := symbols.Root(target)

	names := make([]string, 0, len(root.Types))
	for name := range root.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Printf("Types (target %s):\n", target)
	for _, name := range names {
		fmt.Printf("  %-8s %s\n", name, ctype.FunctionalString(root.Types[name]))
	}

	type opRow struct {
		symbol string
		m      *symbols.OpMapping
	}
	ops := make([]opRow, 0, len(root.TypeOperators))
	for sym, m := range root.TypeOperators {
		ops = append(ops, opRow{sym, m})
	}
	sort.Slice(ops, func(i, j int) bool {
		if ops[i].m.Precedence != ops[j].m.Precedence {
			return ops[i].m.Precedence < ops[j].m.Precedence
		}
		return ops[i].symbol < ops[j].symbol
	})
	fmt.Println("Type operators:")
	for _, op := range ops {
		fixity := "infix"
		if op.m.Fixity == symbols.Prefix {
			fixity = "prefix"
		}
		fmt.Printf("  %-4s -> %-8s precedence %2d  %s\n", op.symbol, op.m.FnName, op.m.Precedence, fixity)
	}
}

// cmdBindings loads the project file and runs every bind declaration
// through the host package inspector, printing the function each one
// produces. This is the dry-run used to debug a lume.yaml.
func cmdBindings(args []string) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	path := dir + "/" + config.ProjectFileName
	proj, err := config.LoadProject(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		os.Exit(1)
	}
	if err := proj.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		os.Exit(1)
	}
	proj.Apply()

	prog := symbols.NewProgram(proj.Target, nil)
	sc := prog.NewFileScope(path)
	binder := ext.NewBinder(prog)
	if diag := binder.Apply(sc, proj, dir); diag != nil {
		diagnostics.Print(os.Stderr, diag)
		os.Exit(1)
	}

	fmt.Printf("%d binding(s) verified:\n", len(proj.Bind))
	for _, d := range proj.Bind {
		name := d.As
		if name == "" {
			name = d.Symbol
		}
		for _, fn := range sc.Overloads(name) {
			fmt.Printf("  %s: %s  (%s)\n", name, ctype.StrictString(fn.Type, true), fn.Bind)
		}
	}
}
