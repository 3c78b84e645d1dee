package matcher

import "github.com/coregx/gramask/grammar"

func stepLiteral(sym grammar.Symbol, sub Substate, b byte) (Substate, bool) {
	if sub.Index >= len(sym.Literal) || sym.Literal[sub.Index] != b {
		return sub, false
	}
	return Substate{Kind: KindLiteral, Index: sub.Index + 1}, true
}
