package matcher

import "github.com/coregx/gramask/grammar"

func stepException(sym grammar.Symbol, sub Substate, b byte) (Substate, bool) {
	next, ok := sym.DFA.Step(sub.DFAState, b)
	if !ok {
		return sub, false
	}
	buf := make([]byte, len(sub.Buffer)+1)
	copy(buf, sub.Buffer)
	buf[len(sub.Buffer)] = b
	return Substate{Kind: KindException, DFAState: next, Buffer: buf}, true
}

// exactlyExcluded reports whether the bytes matched since origin are an
// exact member of sym's exclusion set. A prefix or superstring of an
// excluded string does not count — only an exact full-span match. The
// automaton's Find reports the leftmost match, which can shadow a real
// exact match with a shorter overlapping pattern (exclusion set
// {"in","int"}, buffer "int" → Find reports "in" at [0,2), not "int" at
// [0,3)), so the authoritative check is ExclusionSet membership; the
// automaton is used only as a cheap "contains no excluded pattern at
// all" short-circuit before the map lookup.
func exactlyExcluded(sym grammar.Symbol, sub Substate) bool {
	if sym.Exclusions == nil || !sym.Exclusions.IsMatch(sub.Buffer) {
		return false
	}
	_, excluded := sym.ExclusionSet[string(sub.Buffer)]
	return excluded
}
