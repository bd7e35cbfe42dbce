package ctype

import "fmt"

// OpError reports a compile-time operator misuse: incompatible operand
// kinds, overflow, a missing environment variable or file. These represent
// malformed user type-level programs, not engine bugs, and propagate as
// errors so the driver decides how to exit.
type OpError struct {
	Op      Op
	Message string
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op.Name(), e.Message)
}

// InferError reports a generic-argument inference failure. Callers may
// recover by trying an alternative overload.
type InferError struct {
	Param   string // generic parameter involved, if any
	Message string
}

func (e *InferError) Error() string {
	return e.Message
}

func inferError(param, format string, args ...any) *InferError {
	return &InferError{Param: param, Message: fmt.Sprintf(format, args...)}
}
