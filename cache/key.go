// Package cache implements the token-prefix cache (§4.F): a bounded,
// sharded LRU mapping (grammar id, chart fingerprint, byte-prefix) to a
// previously computed accept/reject verdict, plus a vocabulary byte-trie
// that lets ComputeAllowedMask walk shared token prefixes once instead
// of once per token.
package cache

import "github.com/coregx/gramask/chart"

// Key identifies one cached verdict: the grammar a chart belongs to, the
// sealed-tail fingerprint of that chart (chart.Chart.Fingerprint), and a
// hash of the candidate byte prefix being tested from that point.
type Key struct {
	GrammarID   uint64
	Fingerprint uint64
	PrefixHash  uint64
}

// Verdict is the cached outcome of trying a byte prefix from a chart
// state: either the prefix is rejected outright, or it is accepted and
// Chart is the replay delta — the chart already advanced past every byte
// of the prefix, ready to be Cloned by the caller and driven further,
// without re-running ScanByte's predict/complete closure over any of
// those bytes again. Chart is never itself mutated after being cached;
// only its clones are.
type Verdict struct {
	Accepted bool
	Chart    *chart.Chart
}

// Rejected is the zero-cost rejected verdict.
var Rejected = Verdict{Accepted: false}

// Accepted builds an accepted verdict replaying directly to ch.
func Accepted(ch *chart.Chart) Verdict {
	return Verdict{Accepted: true, Chart: ch}
}
