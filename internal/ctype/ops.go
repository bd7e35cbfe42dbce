package ctype

import (
	"fmt"
	"math"
	"os"

	"github.com/lumelang/lume/internal/config"
)

// Op identifies a compile-time type operator.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpMin
	OpMax
	OpNeg
	OpLen
	OpSize
	OpFileStr
	OpConcat
	OpEnv
	OpEnvExists
	OpEnvDefault
	OpNot
	OpAnd
	OpOr
	OpXor
	OpNand
	OpNor
	OpXnor
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpIf
	OpTupleIf
)

var opNames = [...]string{
	"Add", "Sub", "Mul", "Div", "Mod", "Pow", "Min", "Max", "Neg",
	"Len", "Size", "FileStr", "Concat", "Env", "EnvExists", "EnvDefault",
	"Not", "And", "Or", "Xor", "Nand", "Nor", "Xnor",
	"Eq", "Neq", "Lt", "Lte", "Gt", "Gte", "If", "TupleIf",
}

// Name returns the canonical prefix-form name used by FunctionalString.
func (op Op) Name() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "Op?"
}

// opArity maps each operator to its expected argument count; -1 means
// variable (If takes 2 or 3 arguments).
var opArity = map[Op]int{
	OpAdd: 2, OpSub: 2, OpMul: 2, OpDiv: 2, OpMod: 2, OpPow: 2,
	OpMin: 2, OpMax: 2, OpNeg: 1, OpLen: 1, OpSize: 1, OpFileStr: 1,
	OpConcat: 2, OpEnv: 1, OpEnvExists: 1, OpEnvDefault: 2,
	OpNot: 1, OpAnd: 2, OpOr: 2, OpXor: 2, OpNand: 2, OpNor: 2, OpXnor: 2,
	OpEq: 2, OpNeq: 2, OpLt: 2, OpLte: 2, OpGt: 2, OpGte: 2,
	OpIf: -1, OpTupleIf: 2,
}

// Evaluate applies a compile-time operator. Concrete literal operands of a
// compatible kind are computed eagerly; if any operand still carries an
// Infer placeholder the symbolic Oper node is returned for re-evaluation
// after substitution; anything else is a hard type error.
func Evaluate(op Op, args []CType) (CType, error) {
	if want := opArity[op]; want >= 0 && len(args) != want {
		return nil, opError(op, "expects %d arguments, got %d", want, len(args))
	}
	if op == OpIf && len(args) != 2 && len(args) != 3 {
		return nil, opError(op, "expects 2 or 3 arguments, got %d", len(args))
	}

	degrouped := make([]CType, len(args))
	for i, a := range args {
		degrouped[i] = Degroup(a)
	}
	for _, a := range degrouped {
		if HasInfer(a) {
			return Oper{Op: op, Args: degrouped}, nil
		}
	}

	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpMin, OpMax:
		return evalArith(op, degrouped[0], degrouped[1])
	case OpPow:
		return evalPow(degrouped[0], degrouped[1])
	case OpNeg:
		switch v := degrouped[0].(type) {
		case Int:
			return Int{Value: -v.Value}, nil
		case Float:
			return Float{Value: -v.Value}, nil
		}
		return nil, opError(op, "operand must be an int or float literal, got %s", StrictString(degrouped[0], true))
	case OpLen:
		return evalLen(degrouped[0])
	case OpSize:
		return evalSize(degrouped[0])
	case OpFileStr:
		s, ok := degrouped[0].(TString)
		if !ok {
			return nil, opError(op, "path must be a string literal")
		}
		data, err := os.ReadFile(s.Value)
		if err != nil {
			return nil, opError(op, "cannot read %s: %v", s.Value, err)
		}
		return TString{Value: string(data)}, nil
	case OpConcat:
		a, aok := degrouped[0].(TString)
		b, bok := degrouped[1].(TString)
		if !aok || !bok {
			return nil, opError(op, "both operands must be string literals")
		}
		return TString{Value: a.Value + b.Value}, nil
	case OpEnv:
		s, ok := degrouped[0].(TString)
		if !ok {
			return nil, opError(op, "variable name must be a string literal")
		}
		v, found := config.Env(s.Value)
		if !found {
			return nil, opError(op, "environment variable %s is not defined", s.Value)
		}
		return TString{Value: v}, nil
	case OpEnvExists:
		s, ok := degrouped[0].(TString)
		if !ok {
			return nil, opError(op, "variable name must be a string literal")
		}
		_, found := config.Env(s.Value)
		return Bool{Value: found}, nil
	case OpEnvDefault:
		s, sok := degrouped[0].(TString)
		d, dok := degrouped[1].(TString)
		if !sok || !dok {
			return nil, opError(op, "both operands must be string literals")
		}
		if v, found := config.Env(s.Value); found {
			return TString{Value: v}, nil
		}
		return TString{Value: d.Value}, nil
	case OpNot:
		b, ok := degrouped[0].(Bool)
		if !ok {
			return nil, opError(op, "operand must be a bool literal, got %s", StrictString(degrouped[0], true))
		}
		return Bool{Value: !b.Value}, nil
	case OpAnd, OpOr, OpXor, OpNand, OpNor, OpXnor:
		return evalLogic(op, degrouped[0], degrouped[1])
	case OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte:
		return evalCompare(op, degrouped[0], degrouped[1])
	case OpIf:
		return evalIf(degrouped)
	case OpTupleIf:
		return evalTupleIf(degrouped[0], degrouped[1])
	}
	return nil, opError(op, "unhandled operator")
}

func evalArith(op Op, a, b CType) (CType, error) {
	if ai, ok := a.(Int); ok {
		bi, ok := b.(Int)
		if !ok {
			return nil, opError(op, "operand kinds differ: int vs %s", StrictString(b, true))
		}
		switch op {
		case OpAdd:
			return Int{Value: ai.Value + bi.Value}, nil
		case OpSub:
			return Int{Value: ai.Value - bi.Value}, nil
		case OpMul:
			return Int{Value: ai.Value * bi.Value}, nil
		case OpDiv:
			if bi.Value == 0 {
				return nil, opError(op, "division by zero")
			}
			return Int{Value: ai.Value / bi.Value}, nil
		case OpMod:
			if bi.Value == 0 {
				return nil, opError(op, "division by zero")
			}
			return Int{Value: ai.Value % bi.Value}, nil
		case OpMin:
			if bi.Value < ai.Value {
				return bi, nil
			}
			return ai, nil
		case OpMax:
			if bi.Value > ai.Value {
				return bi, nil
			}
			return ai, nil
		}
	}
	if af, ok := a.(Float); ok {
		bf, ok := b.(Float)
		if !ok {
			return nil, opError(op, "operand kinds differ: float vs %s", StrictString(b, true))
		}
		switch op {
		case OpAdd:
			return Float{Value: af.Value + bf.Value}, nil
		case OpSub:
			return Float{Value: af.Value - bf.Value}, nil
		case OpMul:
			return Float{Value: af.Value * bf.Value}, nil
		case OpDiv:
			return Float{Value: af.Value / bf.Value}, nil
		case OpMod:
			return nil, opError(op, "modulus is not defined for float literals")
		case OpMin:
			if bf.Value < af.Value {
				return bf, nil
			}
			return af, nil
		case OpMax:
			if bf.Value > af.Value {
				return bf, nil
			}
			return af, nil
		}
	}
	return nil, opError(op, "operands must be int or float literals, got %s and %s",
		StrictString(a, true), StrictString(b, true))
}

// evalPow uses checked exponentiation for ints: overflow is a compile-time
// error, never a silent wrap.
func evalPow(a, b CType) (CType, error) {
	if af, ok := a.(Float); ok {
		bf, ok := b.(Float)
		if !ok {
			return nil, opError(OpPow, "operand kinds differ: float vs %s", StrictString(b, true))
		}
		return Float{Value: math.Pow(af.Value, bf.Value)}, nil
	}
	ai, aok := a.(Int)
	bi, bok := b.(Int)
	if !aok || !bok {
		return nil, opError(OpPow, "operands must be int or float literals, got %s and %s",
			StrictString(a, true), StrictString(b, true))
	}
	if bi.Value < 0 {
		return nil, opError(OpPow, "negative exponent %d", bi.Value)
	}
	result := int64(1)
	base := ai.Value
	exp := bi.Value
	for exp > 0 {
		if exp&1 == 1 {
			next := result * base
			if base != 0 && next/base != result {
				return nil, opError(OpPow, "integer overflow computing %d ^ %d", ai.Value, bi.Value)
			}
			result = next
		}
		exp >>= 1
		if exp > 0 {
			next := base * base
			if base != 0 && next/base != base {
				return nil, opError(OpPow, "integer overflow computing %d ^ %d", ai.Value, bi.Value)
			}
			base = next
		}
	}
	return Int{Value: result}, nil
}

// evalLen operates structurally: tuple arity, buffer length, either variant
// count. Arrays are unbounded so len is an error; everything else is 1.
func evalLen(t CType) (CType, error) {
	switch t := t.(type) {
	case Named:
		return evalLen(Degroup(t.Inner))
	case Tuple:
		return Int{Value: int64(len(t.Elems))}, nil
	case Buffer:
		if n, ok := Degroup(t.Len).(Int); ok {
			return Int{Value: n.Value}, nil
		}
		return nil, opError(OpLen, "buffer length is not a resolved int: %s", StrictString(t.Len, true))
	case Either:
		return Int{Value: int64(len(t.Variants))}, nil
	case Array:
		return nil, opError(OpLen, "arrays have no compile-time length")
	default:
		return Int{Value: 1}, nil
	}
}

// evalSize computes the fixed byte footprint of a type: primitives are one
// 64-bit cell, products sum, sums take the widest variant plus a tag cell.
// Unbounded shapes have no compile-time size.
func evalSize(t CType) (CType, error) {
	switch t := t.(type) {
	case Named:
		return evalSize(Degroup(t.Inner))
	case Void:
		return Int{Value: 0}, nil
	case Int, Float, Bool:
		return Int{Value: 8}, nil
	case TString:
		return Int{Value: int64(len(t.Value))}, nil
	case Field:
		return evalSize(Degroup(t.Value))
	case Tuple:
		var total int64
		for _, e := range t.Elems {
			s, err := evalSize(Degroup(e))
			if err != nil {
				return nil, err
			}
			total += s.(Int).Value
		}
		return Int{Value: total}, nil
	case Either:
		var widest int64
		for _, v := range t.Variants {
			s, err := evalSize(Degroup(v))
			if err != nil {
				return nil, err
			}
			if n := s.(Int).Value; n > widest {
				widest = n
			}
		}
		return Int{Value: widest + 8}, nil
	case Buffer:
		n, ok := Degroup(t.Len).(Int)
		if !ok {
			return nil, opError(OpSize, "buffer length is not a resolved int: %s", StrictString(t.Len, true))
		}
		s, err := evalSize(Degroup(t.Elem))
		if err != nil {
			return nil, err
		}
		return Int{Value: n.Value * s.(Int).Value}, nil
	case Array:
		return nil, opError(OpSize, "arrays have no compile-time size")
	default:
		return nil, opError(OpSize, "no compile-time size for %s", StrictString(t, true))
	}
}

func evalLogic(op Op, a, b CType) (CType, error) {
	ab, aok := a.(Bool)
	bb, bok := b.(Bool)
	if !aok || !bok {
		return nil, opError(op, "operands must be bool literals, got %s and %s",
			StrictString(a, true), StrictString(b, true))
	}
	x, y := ab.Value, bb.Value
	switch op {
	case OpAnd:
		return Bool{Value: x && y}, nil
	case OpOr:
		return Bool{Value: x || y}, nil
	case OpXor:
		return Bool{Value: x != y}, nil
	case OpNand:
		return Bool{Value: !(x && y)}, nil
	case OpNor:
		return Bool{Value: !(x || y)}, nil
	case OpXnor:
		return Bool{Value: x == y}, nil
	}
	return nil, opError(op, "unhandled logic operator")
}

func evalCompare(op Op, a, b CType) (CType, error) {
	cmp, err := compareLiterals(op, a, b)
	if err != nil {
		return nil, err
	}
	switch op {
	case OpEq:
		return Bool{Value: cmp == 0}, nil
	case OpNeq:
		return Bool{Value: cmp != 0}, nil
	case OpLt:
		return Bool{Value: cmp < 0}, nil
	case OpLte:
		return Bool{Value: cmp <= 0}, nil
	case OpGt:
		return Bool{Value: cmp > 0}, nil
	case OpGte:
		return Bool{Value: cmp >= 0}, nil
	}
	return nil, opError(op, "unhandled comparison operator")
}

func compareLiterals(op Op, a, b CType) (int, error) {
	switch av := a.(type) {
	case Int:
		if bv, ok := b.(Int); ok {
			switch {
			case av.Value < bv.Value:
				return -1, nil
			case av.Value > bv.Value:
				return 1, nil
			}
			return 0, nil
		}
	case Float:
		if bv, ok := b.(Float); ok {
			switch {
			case av.Value < bv.Value:
				return -1, nil
			case av.Value > bv.Value:
				return 1, nil
			}
			return 0, nil
		}
	case TString:
		if bv, ok := b.(TString); ok {
			switch {
			case av.Value < bv.Value:
				return -1, nil
			case av.Value > bv.Value:
				return 1, nil
			}
			return 0, nil
		}
	case Bool:
		if bv, ok := b.(Bool); ok {
			if op != OpEq && op != OpNeq {
				return 0, opError(op, "bool literals are not ordered")
			}
			if av.Value == bv.Value {
				return 0, nil
			}
			return 1, nil
		}
	}
	return 0, opError(op, "cannot compare %s with %s", StrictString(a, true), StrictString(b, true))
}

// evalIf selects a type by a boolean condition. The two-argument form
// yields the branch when true and a Fail marker when false, which is how
// conditional members are elided.
func evalIf(args []CType) (CType, error) {
	cond, ok := args[0].(Bool)
	if !ok {
		return nil, opError(OpIf, "condition must be a bool literal, got %s", StrictString(args[0], true))
	}
	if len(args) == 3 {
		if cond.Value {
			return args[1], nil
		}
		return args[2], nil
	}
	if cond.Value {
		return args[1], nil
	}
	return Fail{Reason: "condition evaluated to false"}, nil
}

// evalTupleIf filters a tuple by a parallel tuple of boolean conditions,
// keeping the members whose condition is true.
func evalTupleIf(conds, vals CType) (CType, error) {
	ct, ok := conds.(Tuple)
	if !ok {
		return nil, opError(OpTupleIf, "first operand must be a tuple of bool literals")
	}
	vt, ok := vals.(Tuple)
	if !ok {
		return nil, opError(OpTupleIf, "second operand must be a tuple")
	}
	if len(ct.Elems) != len(vt.Elems) {
		return nil, opError(OpTupleIf, "tuple arity mismatch: %d conditions vs %d members",
			len(ct.Elems), len(vt.Elems))
	}
	kept := []CType{}
	for i, c := range ct.Elems {
		b, ok := Degroup(c).(Bool)
		if !ok {
			return nil, opError(OpTupleIf, "condition %d is not a bool literal", i)
		}
		if b.Value {
			kept = append(kept, vt.Elems[i])
		}
	}
	return Tuple{Elems: kept}, nil
}

func opError(op Op, format string, args ...any) error {
	return &OpError{Op: op, Message: fmt.Sprintf(format, args...)}
}
