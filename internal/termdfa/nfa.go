// Package termdfa compiles a regular expression (via the standard
// library's regexp/syntax parser — the teacher itself parses patterns the
// same way before building its own NFA) into an eagerly-determinized,
// byte-granular DFA.
//
// Unlike the teacher's lazy DFA (whose state cache can be cleared and
// rebuilt mid-search), determinization here happens once, entirely, at
// Compile time: the grammar's terminal DFAs must stay immutable for the
// lifetime of every Engine sharing the grammar, so there is no room for a
// cache that evicts.
package termdfa

import "fmt"

// StateID identifies an NFA state, and also a state of the compiled DFA.
type StateID uint32

// InvalidState marks an uninitialized or absent state reference.
const InvalidState StateID = 0xFFFFFFFF

// stateKind tags which fields of nfaState are valid.
type stateKind uint8

const (
	kindMatch stateKind = iota
	kindByteRange
	kindSplit
	kindEpsilon
)

// nfaState is a single Thompson-construction state. Kept as a tagged
// struct rather than an interface, matching the teacher's nfa.State —
// inlineable and free of heap polymorphism (spec §9 design note).
type nfaState struct {
	kind        stateKind
	lo, hi      byte    // kindByteRange
	next        StateID // kindByteRange, kindEpsilon
	left, right StateID // kindSplit
}

// builder constructs NFA states incrementally.
type builder struct {
	states []nfaState
}

func newBuilder() *builder {
	return &builder{states: make([]nfaState, 0, 16)}
}

func (b *builder) addMatch() StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, nfaState{kind: kindMatch})
	return id
}

func (b *builder) addByteRange(lo, hi byte, next StateID) StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, nfaState{kind: kindByteRange, lo: lo, hi: hi, next: next})
	return id
}

func (b *builder) addSplit(left, right StateID) StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, nfaState{kind: kindSplit, left: left, right: right})
	return id
}

func (b *builder) addEpsilon(next StateID) StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, nfaState{kind: kindEpsilon, next: next})
	return id
}

// patchNext rewrites a placeholder epsilon/byte-range target. The
// compiler has no caller of it: Star, Plus and unbounded Repeat patch
// their forward references with patchSplit.
func (b *builder) patchNext(id, next StateID) {
	switch b.states[id].kind {
	case kindEpsilon:
		b.states[id].next = next
	case kindByteRange:
		b.states[id].next = next
	default:
		panic(fmt.Sprintf("termdfa: cannot patch state kind %d", b.states[id].kind))
	}
}

func (b *builder) patchSplit(id, left, right StateID) {
	if b.states[id].kind != kindSplit {
		panic("termdfa: patchSplit on non-split state")
	}
	b.states[id].left = left
	b.states[id].right = right
}
