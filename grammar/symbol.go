// Package grammar holds the compiled, read-only view of a context-free
// grammar consumed by the engine: interned rules and alternatives, symbol
// tables, and the precomputed nullability/first-byte/right-recursion
// tables the chart and Leo optimizer need. Grammar-source parsing (the
// textual EBNF-with-regex-and-exceptions dialect) is out of scope — this
// package is the target a grammar compiler (or a test) builds against via
// Builder.
package grammar

import (
	"github.com/coregx/ahocorasick"
	"github.com/coregx/gramask/internal/termdfa"
)

// RuleID identifies an interned nonterminal.
type RuleID uint32

// AltID identifies an alternative within a Rule.
type AltID uint32

// SymbolKind tags which fields of a Symbol are meaningful.
type SymbolKind uint8

const (
	// SymbolTerminal matches an exact literal byte string.
	SymbolTerminal SymbolKind = iota
	// SymbolRegex matches bytes accepted by an embedded regular expression.
	SymbolRegex
	// SymbolNonterminal recurses into another rule via the Earley chart.
	SymbolNonterminal
	// SymbolException matches a regular-expression base language minus a
	// finite set of excluded exact strings.
	SymbolException
	// SymbolRepetition matches its Inner symbol repeated Min..Max times.
	SymbolRepetition
)

// TerminalDFA is the contract a compiled regular expression exposes to the
// terminal matcher: a byte-at-a-time step function plus accept/pruning
// queries. *termdfa.DFA is the only implementation, but the interface
// keeps the matcher package's dependency on this one narrow contract
// rather than the full termdfa API surface.
type TerminalDFA interface {
	Initial() termdfa.StateID
	Step(state termdfa.StateID, b byte) (termdfa.StateID, bool)
	IsAccept(state termdfa.StateID) bool
	CanStillAccept(state termdfa.StateID) bool
}

// Symbol is a tagged variant over the five symbol kinds a grammar
// alternative may reference, following the teacher's tagged-struct-over-
// interface style (nfa.State): a single allocation-free value rather than
// a boxed interface, since Earley items carry a Symbol by value at every
// dot position.
type Symbol struct {
	Kind SymbolKind

	// Literal holds the exact bytes for SymbolTerminal.
	Literal []byte

	// DFA backs SymbolRegex directly, and is the base-language recognizer
	// for SymbolException.
	DFA TerminalDFA

	// Rule identifies the nonterminal for SymbolNonterminal.
	Rule RuleID

	// Exclusions is the compiled Aho-Corasick automaton over the excluded
	// strings for SymbolException, used as a cheap "does the buffer
	// contain any excluded pattern at all" pre-check; IsAccept is true
	// only when DFA accepts and the matched bytes are not an exact member
	// of ExclusionSet.
	Exclusions *ahocorasick.Automaton

	// ExclusionSet holds the same strings as Exclusions, keyed for exact
	// membership testing. Find's leftmost-match semantics can shadow an
	// exact match with a shorter overlapping pattern (exclusion set
	// {"in","int"}, buffer "int" → Find reports "in" first), so the exact
	// "is the whole buffer one excluded string" check needs its own set
	// rather than a derived automaton query.
	ExclusionSet map[string]struct{}

	// Min, Max are the inclusive repetition bounds for SymbolRepetition.
	// Max == -1 means unbounded.
	Min, Max int

	// Inner is the repeated symbol for SymbolRepetition. It must itself
	// be a terminal-matcher symbol (Terminal, Regex, or Exception) — a
	// repeated Nonterminal would require full Earley recursion per
	// iteration, which the matcher's self-contained substate contract
	// cannot express (see DESIGN.md's Repetition note).
	Inner *Symbol
}

// Nonterminal constructs a SymbolNonterminal referencing rule.
func Nonterminal(rule RuleID) Symbol {
	return Symbol{Kind: SymbolNonterminal, Rule: rule}
}

// Terminal constructs a SymbolTerminal matching the exact bytes of s.
func Terminal(s string) Symbol {
	return Symbol{Kind: SymbolTerminal, Literal: []byte(s)}
}

// Regex constructs a SymbolRegex backed by dfa.
func Regex(dfa TerminalDFA) Symbol {
	return Symbol{Kind: SymbolRegex, DFA: dfa}
}

// Exception constructs a SymbolException: dfa's language minus the exact
// strings in patterns. exclusions is the Aho-Corasick automaton built
// over the same patterns (construction is the caller's concern, same as
// Regex's dfa, so this package stays free of a build-error path of its
// own); patterns is kept alongside it for exact membership testing.
func Exception(dfa TerminalDFA, exclusions *ahocorasick.Automaton, patterns []string) Symbol {
	var set map[string]struct{}
	if len(patterns) > 0 {
		set = make(map[string]struct{}, len(patterns))
		for _, p := range patterns {
			set[p] = struct{}{}
		}
	}
	return Symbol{Kind: SymbolException, DFA: dfa, Exclusions: exclusions, ExclusionSet: set}
}

// Repetition constructs a SymbolRepetition of inner, inclusive between min
// and max occurrences. max == -1 means unbounded.
func Repetition(inner Symbol, min, max int) Symbol {
	return Symbol{Kind: SymbolRepetition, Inner: &inner, Min: min, Max: max}
}

// isNullableIn reports whether this symbol alone can match the empty byte
// string, given the grammar's precomputed per-rule nullability table.
func (s Symbol) isNullableIn(g *Grammar) bool {
	switch s.Kind {
	case SymbolNonterminal:
		return g.nullable[s.Rule]
	case SymbolRepetition:
		return s.Min == 0
	default:
		return false
	}
}
