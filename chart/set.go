package chart

import (
	"github.com/coregx/gramask/grammar"
	"github.com/coregx/gramask/matcher"
)

// Set is the ordered collection of Items at one byte position (§3 "Earley
// Set"). Built in three phases — scan, complete, predict — per §4.B;
// idempotent to re-entry until sealed.
type Set struct {
	g          *grammar.Grammar
	items      []item
	index      map[dedupKey]struct{}
	waitingFor map[grammar.RuleID][]int // item indices whose dot precedes Nonterminal(rule)
	leo        map[grammar.RuleID]*leoEntry

	sealed  bool
	fpValid bool
	fp      uint64
}

func newSet(g *grammar.Grammar) *Set {
	return &Set{
		g:          g,
		index:      make(map[dedupKey]struct{}),
		waitingFor: make(map[grammar.RuleID][]int),
		leo:        make(map[grammar.RuleID]*leoEntry),
	}
}

// tryAdd inserts it if no equal item (by dedupKey) is already present.
// Reports whether it was newly added.
func (s *Set) tryAdd(it item) bool {
	k := keyFor(it)
	if _, ok := s.index[k]; ok {
		return false
	}
	s.index[k] = struct{}{}
	idx := len(s.items)
	s.items = append(s.items, it)

	if sym, completed := symbolAt(s.g, it); !completed && sym.Kind == grammar.SymbolNonterminal {
		s.waitingFor[sym.Rule] = append(s.waitingFor[sym.Rule], idx)
	}
	return true
}

// IsEmpty reports whether the set contains no items. Used to implement
// §4.B's scan failure path (byte rejected) without mutating the chart.
func (s *Set) IsEmpty() bool { return len(s.items) == 0 }

// cloneMemo returns a Set sharing s's immutable item collection — items,
// index, and waitingFor are only ever written by tryAdd, before a set is
// sealed, and Chart.Clone is only ever called on a fully-closed chart —
// but with its own Leo memo map and fingerprint cache, the two things
// resolveLeo and fingerprint write lazily *after* sealing. Without this,
// a parent chart and a clone extended concurrently would both write the
// same shared leo map (§5, testable property 6: Clone must yield a
// genuinely independent chart, not one that merely behaves as if it
// were independent single-threaded).
func (s *Set) cloneMemo() *Set {
	leo := make(map[grammar.RuleID]*leoEntry, len(s.leo))
	for k, v := range s.leo {
		leo[k] = v
	}
	return &Set{
		g:          s.g,
		items:      s.items,
		index:      s.index,
		waitingFor: s.waitingFor,
		leo:        leo,
		sealed:     s.sealed,
		fpValid:    s.fpValid,
		fp:         s.fp,
	}
}

// newItemAt builds a fresh item at (rule, alt, dot, origin), initializing
// its terminal-matcher substate when the symbol at dot is a terminal
// kind (the substate consistent with zero bytes consumed since this dot
// position was reached).
func newItemAt(g *grammar.Grammar, rule grammar.RuleID, alt grammar.AltID, dot, origin int) item {
	it := item{rule: rule, alt: alt, dot: dot, origin: origin}
	sym, completed := symbolAt(g, it)
	if !completed && isTerminalKind(sym.Kind) {
		it.sub = matcher.Initial(sym)
	}
	return it
}

// advance returns it with its dot moved one position forward, with a
// freshly initialized substate if the new dot sits before a terminal.
func advance(g *grammar.Grammar, it item) item {
	return newItemAt(g, it.rule, it.alt, it.dot+1, it.origin)
}

// predict adds, for each item whose dot precedes a Nonterminal N: a
// fresh dot-0 item for every alternative of N, and — when N is nullable
// — the immediate epsilon advance past N in the original item. Reports
// whether any item was newly added.
func predict(g *grammar.Grammar, pos int, set *Set) bool {
	changed := false
	for i := 0; i < len(set.items); i++ {
		it := set.items[i]
		sym, completed := symbolAt(g, it)
		if completed || sym.Kind != grammar.SymbolNonterminal {
			continue
		}
		rule := g.Rule(sym.Rule)
		for altID := range rule.Alts {
			fresh := newItemAt(g, sym.Rule, grammar.AltID(altID), 0, pos)
			if set.tryAdd(fresh) {
				changed = true
			}
		}
		if g.Nullable(sym.Rule) {
			adv := advance(g, it)
			if set.tryAdd(adv) {
				changed = true
			}
		}
	}
	return changed
}
