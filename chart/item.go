// Package chart implements the incremental Earley chart (§4.B): ordered
// per-byte-position sets of dotted items, built via scan/predict/complete,
// plus Leo's right-recursion memoization (§4.C).
package chart

import (
	"strconv"
	"strings"

	"github.com/coregx/gramask/grammar"
	"github.com/coregx/gramask/matcher"
)

// item is a single Earley item: a dotted alternative plus the origin set
// it was predicted from, and (when the dot precedes a terminal-kind
// symbol) the terminal matcher's in-flight substate.
type item struct {
	rule   grammar.RuleID
	alt    grammar.AltID
	dot    int
	origin int
	sub    matcher.Substate
}

// symbolAt returns the symbol at i's dot and whether the item is
// completed (dot at the end of its alternative).
func symbolAt(g *grammar.Grammar, it item) (sym grammar.Symbol, completed bool) {
	alt := g.Rule(it.rule).Alts[it.alt]
	if it.dot >= len(alt.Symbols) {
		return grammar.Symbol{}, true
	}
	return alt.Symbols[it.dot], false
}

// isTerminalKind reports whether sym is one the terminal matcher (rather
// than the chart's own predict/complete machinery) advances.
func isTerminalKind(k grammar.SymbolKind) bool {
	switch k {
	case grammar.SymbolTerminal, grammar.SymbolRegex, grammar.SymbolException, grammar.SymbolRepetition:
		return true
	default:
		return false
	}
}

// dedupKey is the comparable identity an Earley item is uniqued by
// within a set: the dotted-rule tuple plus an encoded substate (the same
// fixed encoding of the zero substate for every item whose dot is not
// before a terminal-kind symbol, since all such items carry it).
type dedupKey struct {
	rule   grammar.RuleID
	alt    grammar.AltID
	dot    int
	origin int
	sub    string
}

func keyFor(it item) dedupKey {
	return dedupKey{rule: it.rule, alt: it.alt, dot: it.dot, origin: it.origin, sub: encodeSubstate(it.sub)}
}

// encodeSubstate renders a substate into a comparable string. Unlike
// internal/termdfa's NFA-state-set dedup (a small, compile-time-bounded
// integer universe that fits internal/sparse.SparseSet), an item's
// origin is an unbounded byte offset and the Exception substate's
// buffer is variable-length, so there is no fixed universe to size a
// sparse set to — a plain string key is the correct fit here.
func encodeSubstate(s matcher.Substate) string {
	var sb strings.Builder
	sb.WriteByte(byte(s.Kind))
	sb.WriteByte(':')
	sb.WriteString(strconv.Itoa(s.Index))
	sb.WriteByte(':')
	sb.WriteString(strconv.FormatUint(uint64(s.DFAState), 10))
	sb.WriteByte(':')
	sb.Write(s.Buffer)
	sb.WriteByte(':')
	sb.WriteString(strconv.Itoa(s.Count))
	if s.Inner != nil {
		sb.WriteByte(':')
		sb.WriteString(encodeSubstate(*s.Inner))
	}
	return sb.String()
}
