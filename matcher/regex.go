package matcher

import "github.com/coregx/gramask/grammar"

func stepRegex(sym grammar.Symbol, sub Substate, b byte) (Substate, bool) {
	next, ok := sym.DFA.Step(sub.DFAState, b)
	if !ok {
		return sub, false
	}
	return Substate{Kind: KindRegex, DFAState: next}, true
}
