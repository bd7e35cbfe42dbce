package ctype

import (
	"fmt"
	"strconv"
	"strings"
)

// StrictString renders the canonical textual form of a type. With
// strict=true named wrapper types render as their name (display form);
// with strict=false aliases unwrap to structural form (equality form).
// Deterministic and side-effect free.
func StrictString(t CType, strict bool) string {
	switch t := t.(type) {
	case Void:
		return "void"
	case Infer:
		if t.Bound != "" {
			return t.Name + ": " + t.Bound
		}
		return t.Name
	case Named:
		if strict {
			return t.Name
		}
		return StrictString(t.Inner, strict)
	case Generic:
		return fmt.Sprintf("%s{%s}", t.Name, strings.Join(t.Params, ", "))
	case IntrinsicGeneric:
		return t.Name
	case Int:
		return strconv.FormatInt(t.Value, 10)
	case Float:
		return strconv.FormatFloat(t.Value, 'g', -1, 64)
	case Bool:
		return strconv.FormatBool(t.Value)
	case TString:
		return strconv.Quote(t.Value)
	case Group:
		return "(" + StrictString(t.Inner, strict) + ")"
	case Function:
		return StrictString(t.In, strict) + " -> " + StrictString(t.Out, strict)
	case Call:
		return fmt.Sprintf("%s :: %s", t.Bind, StrictString(t.Fn, strict))
	case Binds:
		parts := make([]string, 0, len(t.Args)+1)
		parts = append(parts, strconv.Quote(t.Symbol))
		for _, a := range t.Args {
			parts = append(parts, StrictString(a, strict))
		}
		return fmt.Sprintf("Binds{%s}", strings.Join(parts, ", "))
	case Import:
		return fmt.Sprintf("%s <- %s", t.Name, t.Dep)
	case Tuple:
		return joinStrict(t.Elems, ", ", strict)
	case Field:
		return t.Label + ": " + StrictString(t.Value, strict)
	case Either:
		return joinStrict(t.Variants, " | ", strict)
	case AnyOf:
		return joinStrict(t.Options, " & ", strict)
	case Buffer:
		return fmt.Sprintf("%s[%s]", StrictString(t.Elem, strict), StrictString(t.Len, strict))
	case Array:
		return StrictString(t.Elem, strict) + "[]"
	case Fail:
		return "Fail: " + t.Reason
	case Oper:
		return functionalOper(t, func(c CType) string { return StrictString(c, strict) })
	default:
		return fmt.Sprintf("<%T>", t)
	}
}

func joinStrict(ts []CType, sep string, strict bool) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = StrictString(t, strict)
	}
	return strings.Join(parts, sep)
}

// FunctionalString fully expands every combinator to its canonical
// Name{arg, ...} prefix form. This is the interning key for synthesized
// type names and must remain stable within a compilation run.
func FunctionalString(t CType) string {
	switch t := t.(type) {
	case Void:
		return "void"
	case Infer:
		return "Infer{" + t.Name + "}"
	case Named:
		return FunctionalString(t.Inner)
	case Generic:
		return fmt.Sprintf("Generic{%s, %s}", t.Name, strings.Join(t.Params, ", "))
	case IntrinsicGeneric:
		return t.Name
	case Int:
		return strconv.FormatInt(t.Value, 10)
	case Float:
		return strconv.FormatFloat(t.Value, 'g', -1, 64)
	case Bool:
		return strconv.FormatBool(t.Value)
	case TString:
		return strconv.Quote(t.Value)
	case Group:
		return FunctionalString(t.Inner)
	case Function:
		return fmt.Sprintf("Function{%s, %s}", FunctionalString(t.In), FunctionalString(t.Out))
	case Call:
		return fmt.Sprintf("Call{%s, %s}", strconv.Quote(t.Bind), FunctionalString(t.Fn))
	case Binds:
		parts := make([]string, 0, len(t.Args)+1)
		parts = append(parts, strconv.Quote(t.Symbol))
		for _, a := range t.Args {
			parts = append(parts, FunctionalString(a))
		}
		return fmt.Sprintf("Binds{%s}", strings.Join(parts, ", "))
	case Import:
		return fmt.Sprintf("Import{%s, %s}", t.Name, t.Dep)
	case Tuple:
		return "Tuple{" + joinFunctional(t.Elems) + "}"
	case Field:
		return fmt.Sprintf("Field{%s, %s}", t.Label, FunctionalString(t.Value))
	case Either:
		return "Either{" + joinFunctional(t.Variants) + "}"
	case AnyOf:
		return "AnyOf{" + joinFunctional(t.Options) + "}"
	case Buffer:
		return fmt.Sprintf("Buffer{%s, %s}", FunctionalString(t.Elem), FunctionalString(t.Len))
	case Array:
		return "Array{" + FunctionalString(t.Elem) + "}"
	case Fail:
		return "Fail{" + strconv.Quote(t.Reason) + "}"
	case Oper:
		return functionalOper(t, FunctionalString)
	default:
		return fmt.Sprintf("<%T>", t)
	}
}

func joinFunctional(ts []CType) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = FunctionalString(t)
	}
	return strings.Join(parts, ", ")
}

func functionalOper(t Oper, render func(CType) string) string {
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = render(a)
	}
	return t.Op.Name() + "{" + strings.Join(parts, ", ") + "}"
}

// CallableString maps the functional string onto a legal identifier by
// shifting punctuation into ASCII letter ranges. Digits and letters pass
// through unchanged. The transliteration is stable: downstream codegen
// names emitted symbols with it, so any change here breaks generated-code
// stability.
//
// The mapping is not provably injective for arbitrary strings; it is a
// known approximation relied on only for names the grammar can actually
// produce.
func CallableString(t CType) string {
	in := FunctionalString(t)
	var b strings.Builder
	b.Grow(len(in))
	for i := 0; i < len(in); i++ {
		c := in[i]
		switch {
		case c >= '0' && c <= '9', c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z':
			b.WriteByte(c)
		case c >= '!' && c <= '/':
			b.WriteByte(c + 32) // '!'..'/' -> 'A'..'O'
		case c >= ':' && c <= '@':
			b.WriteByte(c + 22) // ':'..'@' -> 'P'..'V'
		case c >= '[' && c <= '`':
			b.WriteByte(c + 6) // '['..'`' -> 'a'..'f'
		case c == '|':
			b.WriteByte('z')
		case c == '~':
			b.WriteByte('y')
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
