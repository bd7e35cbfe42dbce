package config

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".lm", ".lume"}

// ProjectFileName is the per-project configuration file consulted for
// compile-time environment overrides and native binding declarations.
const ProjectFileName = "lume.yaml"

// Built-in type names
const (
	VoidTypeName   = "void"
	IntTypeName    = "int"
	FloatTypeName  = "float"
	BoolTypeName   = "bool"
	StringTypeName = "string"
	TupleTypeName  = "Tuple"
	FieldTypeName  = "Field"
	EitherTypeName = "Either"
	BufferTypeName = "Buffer"
	ArrayTypeName  = "Array"
	AnyOfTypeName  = "AnyOf"
)

// Built-in derived-function names
const (
	StoreFuncName = "store"
)

// HasSourceExt reports whether a path ends in a recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) > len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// TrimSourceExt removes a recognized source extension from a name.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) > len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// ClosureArgsCapacity is the fixed capacity of closure-argument memory in
// each handler. Codegen and the VM both depend on this split point; changing
// it is a breaking change to emitted programs.
const ClosureArgsCapacity = 64
