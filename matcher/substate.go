// Package matcher implements the terminal-matcher substate contract
// (§4.D): a uniform step/is_accept/can_still_accept surface over the
// four terminal kinds a grammar alternative's dot can sit before —
// literal, embedded regex, exception (regex minus a finite exclusion
// set), and bounded repetition.
package matcher

import (
	"github.com/coregx/gramask/grammar"
	"github.com/coregx/gramask/internal/termdfa"
)

// Kind tags which fields of a Substate are meaningful.
type Kind uint8

const (
	// KindLiteral matches grammar.SymbolTerminal.
	KindLiteral Kind = iota
	// KindRegex matches grammar.SymbolRegex.
	KindRegex
	// KindException matches grammar.SymbolException.
	KindException
	// KindRepetition matches grammar.SymbolRepetition.
	KindRepetition
)

// Substate is the terminal matcher's per-item state: the progress of one
// in-flight match against the symbol at an Earley item's dot. Kept as a
// tagged struct (mirroring grammar.Symbol and the teacher's nfa.State)
// rather than an interface, so items can carry it by value.
type Substate struct {
	Kind Kind

	// Index is the literal's matched-prefix length (KindLiteral).
	Index int

	// DFAState is the embedded-regex state (KindRegex, KindException).
	DFAState termdfa.StateID

	// Buffer accumulates the bytes matched since the item's origin
	// (KindException only), so an exact-match check against the
	// exclusion set can be made at any point without an incremental
	// trie-walking API (the exclusion automaton only exposes whole-span
	// Find/IsMatch, mirroring how the teacher itself calls ahoCorasick).
	Buffer []byte

	// Count is the number of bytes after which the inner substate was
	// accepting (KindRepetition). For a Literal inner, which takes no byte
	// past a full match, that is the number of iterations matched so far,
	// the current one included once complete; for a Regex or Exception
	// inner that keeps accepting over several bytes, each such byte of the
	// same iteration adds one.
	Count int

	// Inner is the substate of the current (possibly in-progress)
	// iteration (KindRepetition).
	Inner *Substate
}

// Initial returns the starting substate for sym, i.e. the substate
// consistent with zero bytes consumed since the item's origin. Panics if
// sym is a Nonterminal: that symbol kind is the Earley chart's concern
// (predict/complete), never the terminal matcher's.
func Initial(sym grammar.Symbol) Substate {
	switch sym.Kind {
	case grammar.SymbolTerminal:
		return Substate{Kind: KindLiteral}
	case grammar.SymbolRegex, grammar.SymbolException:
		kind := KindRegex
		if sym.Kind == grammar.SymbolException {
			kind = KindException
		}
		return Substate{Kind: kind, DFAState: sym.DFA.Initial()}
	case grammar.SymbolRepetition:
		inner := Initial(*sym.Inner)
		return Substate{Kind: KindRepetition, Inner: &inner}
	default:
		panic("matcher: Initial called with a non-terminal symbol kind")
	}
}

// Step advances sub by one byte of sym. ok is false iff the byte cannot
// extend this substate toward acceptance under any continuation (a dead
// substate); per §4.B, dead substates are dropped by the caller rather
// than carried forward.
func Step(sym grammar.Symbol, sub Substate, b byte) (Substate, bool) {
	switch sub.Kind {
	case KindLiteral:
		return stepLiteral(sym, sub, b)
	case KindRegex:
		return stepRegex(sym, sub, b)
	case KindException:
		return stepException(sym, sub, b)
	case KindRepetition:
		return stepRepetition(sym, sub, b)
	default:
		panic("matcher: Step called with an invalid substate kind")
	}
}

// IsAccept reports whether sub represents a complete match of sym with
// zero further bytes needed.
func IsAccept(sym grammar.Symbol, sub Substate) bool {
	switch sub.Kind {
	case KindLiteral:
		return sub.Index == len(sym.Literal)
	case KindRegex:
		return sym.DFA.IsAccept(sub.DFAState)
	case KindException:
		return sym.DFA.IsAccept(sub.DFAState) && !exactlyExcluded(sym, sub)
	case KindRepetition:
		return sub.Count >= sym.Min && withinMax(sym, sub.Count) && IsAccept(*sym.Inner, *sub.Inner)
	default:
		panic("matcher: IsAccept called with an invalid substate kind")
	}
}

// CanStillAccept reports whether some continuation of bytes from sub can
// ever reach acceptance. Used to prune a substate before it is ever
// stepped (§4.D's pruning contract); a conservative true is always safe,
// so kinds without a cheap exact answer (Exception's exclusion set,
// Literal's fixed length) answer in terms of the base DFA / position
// alone.
func CanStillAccept(sym grammar.Symbol, sub Substate) bool {
	switch sub.Kind {
	case KindLiteral:
		return true // a live literal substate (never Step-failed) is always either mid-match or exactly done.
	case KindRegex:
		return sym.DFA.CanStillAccept(sub.DFAState)
	case KindException:
		return sym.DFA.CanStillAccept(sub.DFAState)
	case KindRepetition:
		return canStillAcceptRepetition(sym, sub)
	default:
		panic("matcher: CanStillAccept called with an invalid substate kind")
	}
}

func withinMax(sym grammar.Symbol, count int) bool {
	return sym.Max == -1 || count <= sym.Max
}
