package ctype

// SwapSubtype rewrites every subtree structurally equal to old into new.
// Substituted operator nodes are re-evaluated immediately, so Add{N, 1}
// with N := 3 collapses to 4 instead of staying symbolic; buffer sizes and
// conditional type selections depend on this folding.
func SwapSubtype(t, old, new CType) (CType, error) {
	if swapMatch(t, old) {
		return new, nil
	}
	kids := t.children()
	if len(kids) == 0 {
		return t, nil
	}
	next := make([]CType, len(kids))
	for i, k := range kids {
		swapped, err := SwapSubtype(k, old, new)
		if err != nil {
			return nil, err
		}
		next[i] = swapped
	}
	out := t.withChildren(next)
	if op, ok := out.(Oper); ok {
		return Evaluate(op.Op, op.Args)
	}
	return out, nil
}

// swapMatch decides whether a subtree is an occurrence of old. Placeholders
// are identified by name alone: a bound is attached metadata, and the tree
// carries bounded occurrences while substitution sites name the parameter.
func swapMatch(t, old CType) bool {
	if oldInf, ok := old.(Infer); ok {
		inf, ok := Degroup(t).(Infer)
		return ok && inf.Name == oldInf.Name
	}
	return Equal(t, old)
}
