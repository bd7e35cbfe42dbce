package diagnostics

import "fmt"

// ErrorCode identifies a diagnostic category. Codes are stable: tooling and
// tests match on them, messages are free to change.
type ErrorCode string

// Type-resolution errors
const (
	ErrT001 ErrorCode = "T001" // unknown type name
	ErrT002 ErrorCode = "T002" // wrong generic arity
	ErrT003 ErrorCode = "T003" // malformed type operator expression
	ErrT004 ErrorCode = "T004" // non-boolean conditional compilation guard
	ErrT005 ErrorCode = "T005" // compile-time operator failure
	ErrT006 ErrorCode = "T006" // unknown import
)

// Inference errors
const (
	ErrI001 ErrorCode = "I001" // structural mismatch during unification
	ErrI002 ErrorCode = "I002" // conflicting generic binding
	ErrI003 ErrorCode = "I003" // unresolved generic parameter
	ErrI004 ErrorCode = "I004" // AnyOf exhausted
)

// Derivation errors
const (
	ErrD001 ErrorCode = "D001" // cannot derive functions for type shape
	ErrD002 ErrorCode = "D002" // import target not found
)

// Runtime memory errors
const (
	ErrM001 ErrorCode = "M001" // pop from empty fractal
	ErrM002 ErrorCode = "M002" // address out of bounds
	ErrM003 ErrorCode = "M003" // write to global memory
)

// Span locates a diagnostic in a source file. Line and Col are 1-based;
// a zero Span means the location is unknown (a known gap for synthesized
// constructs).
type Span struct {
	File string
	Line int
	Col  int
}

func (s Span) String() string {
	if s.File == "" && s.Line == 0 {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Col)
}

// Diagnostic is a single compiler diagnostic with a stable code.
type Diagnostic struct {
	Code    ErrorCode
	Span    Span
	Message string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("[%s] %s: %s", d.Code, d.Span, d.Message)
}

// NewError creates a diagnostic.
func NewError(code ErrorCode, span Span, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Code:    code,
		Span:    span,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap lifts a plain engine error into a diagnostic, preserving its text.
func Wrap(code ErrorCode, span Span, err error) *Diagnostic {
	return &Diagnostic{Code: code, Span: span, Message: err.Error()}
}
