package matcher

import "github.com/coregx/gramask/grammar"

// stepRepetition advances the current iteration's inner substate.
// Greedy: a byte that can continue the in-progress iteration always
// does so; only once the in-progress iteration cannot consume b, and it
// was already at an accept, does a fresh iteration begin with b. This
// matches the teacher's general preference for greedy repetition
// (regexp/syntax's own Star/Plus/Repeat default to greedy) and is exact
// for a Literal inner (which can never continue past a full match, so
// the fresh-iteration branch is the only path) — for a Regex inner whose
// accept states are also extendable, it resolves the iteration boundary
// greedily rather than forking, a documented simplification (DESIGN.md).
func stepRepetition(sym grammar.Symbol, sub Substate, b byte) (Substate, bool) {
	inner := *sym.Inner
	nextInner, ok := Step(inner, *sub.Inner, b)
	if !ok {
		if !IsAccept(inner, *sub.Inner) {
			return sub, false
		}
		if sym.Max != -1 && sub.Count >= sym.Max {
			return sub, false
		}
		fresh := Initial(inner)
		nextInner, ok = Step(inner, fresh, b)
		if !ok {
			return sub, false
		}
	}

	// Credit one count whenever the byte just consumed leaves the inner
	// substate accepting, whichever branch produced nextInner. An
	// iteration that stays accepting over several bytes is credited once
	// per such byte.
	count := sub.Count
	if IsAccept(inner, nextInner) {
		count++
	}
	if !withinMax(sym, count) {
		return sub, false
	}
	return Substate{Kind: KindRepetition, Count: count, Inner: &nextInner}, true
}

func canStillAcceptRepetition(sym grammar.Symbol, sub Substate) bool {
	inner := *sym.Inner
	if CanStillAccept(inner, *sub.Inner) {
		return true
	}
	if IsAccept(inner, *sub.Inner) && (sym.Max == -1 || sub.Count < sym.Max) {
		fresh := Initial(inner)
		return CanStillAccept(inner, fresh)
	}
	return false
}
