package chart

import "github.com/coregx/gramask/grammar"

// leoEntry memoizes the result of resolving the right-recursive
// completion chain for one (rule, origin) pair within a single set: the
// advanced "top" item to complete into, or eligible == false when the
// normal O(n) waiting-item loop must be used instead (§4.C).
type leoEntry struct {
	eligible bool
	top      item
}

// resolveLeo returns the Leo "topmost item" for a completion of rule
// starting at the given origin set, or ok == false when no such
// memoization applies and the caller must fall back to scanning every
// waiting item in the origin set.
//
// A completion of N at origin k is Leo-eligible only when set k holds
// exactly one item waiting on N, and that item's (rule, alt, dot) is
// right-recursive (every symbol trailing the Nonterminal is nullable —
// grammar.Grammar.IsRightRecursive). When the waiting item's own advance
// is itself a completion, the chain is resolved recursively and the
// result is cached at every link, so a chain of n right-recursive
// completions collapses to O(1) amortized per completion instead of
// Earley's native O(n).
func (c *Chart) resolveLeo(origin int, rule grammar.RuleID) (item, bool) {
	if !c.leoEnabled {
		return item{}, false
	}
	originSet := c.sets[origin]

	if entry, ok := originSet.leo[rule]; ok {
		c.leoReuses++
		return entry.top, entry.eligible
	}
	c.leoInstalls++

	waiting := originSet.waitingFor[rule]
	if len(waiting) != 1 {
		originSet.leo[rule] = &leoEntry{eligible: false}
		return item{}, false
	}

	w := originSet.items[waiting[0]]
	if !c.g.IsRightRecursive(w.rule, w.alt, w.dot) {
		originSet.leo[rule] = &leoEntry{eligible: false}
		return item{}, false
	}

	top := advance(c.g, w)
	if _, completed := symbolAt(c.g, top); completed {
		if chained, ok := c.resolveLeo(top.origin, top.rule); ok {
			top = chained
		}
	}

	originSet.leo[rule] = &leoEntry{eligible: true, top: top}
	return top, true
}
