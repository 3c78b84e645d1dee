package chart

import (
	"github.com/coregx/gramask/grammar"
	"github.com/coregx/gramask/matcher"
)

// Chart is the incremental Earley chart (§3, §4.B): one sealed Set per
// byte position consumed so far, plus the byte log itself. Grows
// strictly by appending a new sealed Set per accepted byte; ScanByte
// leaves the chart untouched on rejection.
type Chart struct {
	g          *grammar.Grammar
	sets       []*Set
	bytes      []byte
	leoEnabled bool

	leoInstalls uint64
	leoReuses   uint64
}

// LeoStats returns the number of times this chart's Leo optimizer has
// computed a fresh memoization entry (install) versus served one
// already cached (reuse) — exposed for engine.Stats.
func (c *Chart) LeoStats() (installs, reuses uint64) {
	return c.leoInstalls, c.leoReuses
}

// New builds a Chart for g, seeded at position 0 with one item per
// alternative of the start rule and closed under predict/complete.
func New(g *grammar.Grammar) *Chart {
	c := &Chart{g: g, leoEnabled: true}
	c.sets = []*Set{newSet(g)}

	start := g.Rule(g.Start())
	for altID := range start.Alts {
		c.sets[0].tryAdd(newItemAt(g, g.Start(), grammar.AltID(altID), 0, 0))
	}
	c.close(0)
	return c
}

// SetLeoEnabled toggles Leo's right-recursion memoization, for tests
// comparing recognition results with and without it (testable property
// 7: Leo must never change what is accepted, only how fast).
func (c *Chart) SetLeoEnabled(enabled bool) { c.leoEnabled = enabled }

// InitialSetEmpty reports whether set 0 — the seeded start-rule
// predictions closed under predict/complete — holds no items at all,
// i.e. the grammar accepts no string (§7 GrammarUnsatisfiable).
func (c *Chart) InitialSetEmpty() bool {
	return c.sets[0].IsEmpty()
}

// Bytes returns the sequence of bytes committed to the chart so far.
func (c *Chart) Bytes() []byte { return c.bytes }

// Position returns the number of bytes committed (equivalently, the
// index of the current frontier set).
func (c *Chart) Position() int { return len(c.sets) - 1 }

// IsFinished reports whether the frontier set contains a completion of
// the start rule spanning from position 0 — i.e. whether the bytes
// consumed so far are a complete derivation of the grammar.
func (c *Chart) IsFinished() bool {
	frontier := c.sets[len(c.sets)-1]
	for _, it := range frontier.items {
		if it.origin != 0 || it.rule != c.g.Start() {
			continue
		}
		if _, completed := symbolAt(c.g, it); completed {
			return true
		}
	}
	return false
}

// CanExtend reports whether the frontier set has at least one item
// whose dot sits before a terminal-kind symbol. Such an item may hold a
// terminal that has already matched in full and takes no further byte,
// so true does not guarantee that some next byte is accepted; false
// does mean that no byte can be accepted from here.
func (c *Chart) CanExtend() bool {
	frontier := c.sets[len(c.sets)-1]
	for _, it := range frontier.items {
		sym, completed := symbolAt(c.g, it)
		if !completed && isTerminalKind(sym.Kind) {
			return true
		}
	}
	return false
}

// ScanByte attempts to extend the chart by one byte (§4.B scan). It
// reports whether b was accepted; on rejection the chart is left
// completely unchanged, per §4.B's failure clause.
func (c *Chart) ScanByte(b byte) bool {
	cur := c.sets[len(c.sets)-1]
	next := newSet(c.g)

	for _, it := range cur.items {
		sym, completed := symbolAt(c.g, it)
		if completed || !isTerminalKind(sym.Kind) {
			continue
		}
		stepped, ok := matcher.Step(sym, it.sub, b)
		if !ok {
			continue
		}
		if matcher.CanStillAccept(sym, stepped) {
			next.tryAdd(item{rule: it.rule, alt: it.alt, dot: it.dot, origin: it.origin, sub: stepped})
		}
		if matcher.IsAccept(sym, stepped) {
			next.tryAdd(advance(c.g, item{rule: it.rule, alt: it.alt, dot: it.dot, origin: it.origin, sub: stepped}))
		}
	}

	if next.IsEmpty() {
		return false
	}

	c.sets = append(c.sets, next)
	c.bytes = append(c.bytes, b)
	c.close(len(c.sets) - 1)
	return true
}

// close drives the predict/complete fixpoint for the set at pos until
// neither phase adds a new item.
func (c *Chart) close(pos int) {
	set := c.sets[pos]
	for {
		p := predict(c.g, pos, set)
		comp := c.completePhase(pos)
		if !p && !comp {
			break
		}
	}
	set.sealed = true
}

// completePhase advances, for every completed item in the set at pos,
// the waiting items in that completion's origin set — via Leo's O(1)
// memoized lookup when eligible, otherwise the full scan over the
// origin set's waiting-item index.
func (c *Chart) completePhase(pos int) bool {
	set := c.sets[pos]
	changed := false

	for i := 0; i < len(set.items); i++ {
		it := set.items[i]
		_, completed := symbolAt(c.g, it)
		if !completed {
			continue
		}

		if top, ok := c.resolveLeo(it.origin, it.rule); ok {
			if set.tryAdd(top) {
				changed = true
			}
			continue
		}

		originSet := c.sets[it.origin]
		for _, widx := range originSet.waitingFor[it.rule] {
			w := originSet.items[widx]
			if set.tryAdd(advance(c.g, w)) {
				changed = true
			}
		}
	}
	return changed
}

// Reset discards all consumed bytes, returning the chart to its
// freshly-constructed state at position 0.
func (c *Chart) Reset() {
	leoEnabled := c.leoEnabled
	seed := New(c.g)
	seed.leoEnabled = leoEnabled
	c.sets = seed.sets
	c.bytes = nil
	c.leoEnabled = leoEnabled
}

// Clone returns an independent copy of c: mutating the clone (via
// ScanByte) never affects c, and vice versa — including when the
// parent and the clone are driven concurrently from separate goroutines
// (§5, testable property 6). A sealed Set's item collection never
// changes again, so its items/index/waitingFor are shared by reference;
// its Leo memo map and fingerprint cache are lazily written even after
// sealing, so those are given an independent copy per chart via
// cloneMemo, or a parent and its clone would race on the same map.
func (c *Chart) Clone() *Chart {
	sets := make([]*Set, len(c.sets))
	for i, s := range c.sets {
		sets[i] = s.cloneMemo()
	}
	bytes := make([]byte, len(c.bytes))
	copy(bytes, c.bytes)
	return &Chart{g: c.g, sets: sets, bytes: bytes, leoEnabled: c.leoEnabled, leoInstalls: c.leoInstalls, leoReuses: c.leoReuses}
}

// Fingerprint returns the order-independent identity of the frontier
// set's item collection (see fingerprint.go), the key the token-prefix
// cache indexes on alongside the grammar id and byte-prefix.
func (c *Chart) Fingerprint() uint64 {
	return c.sets[len(c.sets)-1].fingerprint()
}
