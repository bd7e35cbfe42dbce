package diagnostics

import (
	"errors"
	"strings"
	"testing"
)

func TestSpanString(t *testing.T) {
	tests := []struct {
		name string
		span Span
		want string
	}{
		{"zero value", Span{}, "<unknown>"},
		{"full location", Span{File: "main.lm", Line: 3, Col: 14}, "main.lm:3:14"},
		{"file only", Span{File: "lib.lume"}, "lib.lume:0:0"},
		{"line without file", Span{Line: 7, Col: 1}, ":7:1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.span.String(); got != tt.want {
				t.Errorf("Span.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDiagnosticError(t *testing.T) {
	tests := []struct {
		name string
		diag *Diagnostic
		want string
	}{
		{
			"type error with location",
			NewError(ErrT001, Span{File: "a.lm", Line: 2, Col: 5}, "unknown type %q", "Pont"),
			`[T001] a.lm:2:5: unknown type "Pont"`,
		},
		{
			"inference error without location",
			NewError(ErrI001, Span{}, "cannot match %s against %s", "int", "bool"),
			"[I001] <unknown>: cannot match int against bool",
		},
		{
			"memory error",
			NewError(ErrM002, Span{}, "address %d out of bounds", 9),
			"[M002] <unknown>: address 9 out of bounds",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.diag.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewErrorNoArgs(t *testing.T) {
	d := NewError(ErrD001, Span{}, "plain message, no verbs")
	if d.Message != "plain message, no verbs" {
		t.Errorf("Message = %q", d.Message)
	}
	if d.Code != ErrD001 {
		t.Errorf("Code = %q, want %q", d.Code, ErrD001)
	}
}

func TestWrap(t *testing.T) {
	inner := errors.New("divide by zero in Div")
	d := Wrap(ErrT005, Span{File: "ops.lm", Line: 1, Col: 1}, inner)
	if d.Message != inner.Error() {
		t.Errorf("Wrap lost the inner message: %q", d.Message)
	}
	if d.Code != ErrT005 {
		t.Errorf("Code = %q, want %q", d.Code, ErrT005)
	}
	if !strings.Contains(d.Error(), "ops.lm:1:1") {
		t.Errorf("Error() missing span: %q", d.Error())
	}
}

func TestDiagnosticIsError(t *testing.T) {
	var err error = NewError(ErrT002, Span{}, "expected %d args, got %d", 1, 3)
	if !strings.Contains(err.Error(), "T002") {
		t.Errorf("diagnostic does not surface its code: %q", err.Error())
	}
}
