package termdfa

import (
	"regexp/syntax"
	"sort"
	"strconv"
	"strings"

	"github.com/coregx/gramask/internal/sparse"
)

// DeadState is the sink state: once reached, no further input can ever
// lead to acceptance. Step reports it via its ok=false return rather than
// callers having to compare against this constant directly, but it is
// exported for callers that keep their own state-transition tables.
const DeadState StateID = 0xFFFFFFFE

// DFA is an eagerly fully-determinized, byte-granular automaton compiled
// from a single regular expression. It never changes shape after Compile
// returns — the grammar it backs must stay immutable for the lifetime of
// every engine sharing it.
type DFA struct {
	classes   *byteClasses
	trans     [][]StateID // trans[state][class]
	accept    []bool
	canAccept []bool
}

// Compile parses pattern and builds its DFA. Returns a descriptive error
// (never a panic) on malformed syntax or unsupported constructs, since
// this runs during grammar compilation where the caller must be able to
// surface a GrammarUnsatisfiable-style diagnostic.
func Compile(pattern string) (dfa *DFA, err error) {
	re, perr := parseRegexp(pattern)
	if perr != nil {
		return nil, perr
	}
	defer func() {
		if r := recover(); r != nil {
			dfa = nil
			err = &syntax.Error{Code: "unsupported construct", Expr: pattern}
		}
	}()
	n := compileToNFA(re)
	return buildDFA(n), nil
}

// Initial returns the DFA's start state.
func (d *DFA) Initial() StateID { return 0 }

// Step consumes one byte from state and returns the resulting state. ok is
// false iff the result is the dead state (no possible completion can ever
// accept from here).
func (d *DFA) Step(state StateID, b byte) (StateID, bool) {
	if int(state) >= len(d.trans) {
		return DeadState, false
	}
	next := d.trans[state][d.classes.classFor(b)]
	return next, next != DeadState
}

// IsAccept reports whether state is an accepting state (zero more bytes
// needed).
func (d *DFA) IsAccept(state StateID) bool {
	if int(state) >= len(d.accept) {
		return false
	}
	return d.accept[state]
}

// CanStillAccept reports whether any continuation of bytes from state can
// ever reach acceptance. Used to prune dead substates before they are ever
// stepped, per the matcher's pruning contract.
func (d *DFA) CanStillAccept(state StateID) bool {
	if int(state) >= len(d.canAccept) {
		return false
	}
	return d.canAccept[state]
}

// subsetKey renders a sorted NFA state-id set as a stable map key. Building
// the DFA happens once, at grammar-compile time, so a string key is
// preferred over a hashed fingerprint (as chart/fingerprint.go uses for
// hot-path chart states) — clarity over speed here, since this never runs
// per token.
func subsetKey(ids []uint32) string {
	var sb strings.Builder
	for i, id := range ids {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatUint(uint64(id), 10))
	}
	return sb.String()
}

func buildDFA(n *nfa) *DFA {
	classes := newByteClasses(n.states)
	canReach := computeCanReachMatch(n)

	type subset struct {
		ids []uint32
	}

	closureBuf := sparse.NewSparseSet(uint32(len(n.states)))
	frontier := func(start []StateID) []uint32 {
		closureBuf.Clear()
		closeEpsilon(n, closureBuf, start)
		ids := append([]uint32(nil), closureBuf.Values()...)
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		return ids
	}

	seen := make(map[string]StateID)
	var subsets []subset
	var transRows [][]StateID
	var accept []bool
	var canAccept []bool

	register := func(ids []uint32) StateID {
		key := subsetKey(ids)
		if id, ok := seen[key]; ok {
			return id
		}
		id := StateID(len(subsets))
		seen[key] = id
		subsets = append(subsets, subset{ids: ids})
		transRows = append(transRows, nil)
		accept = append(accept, false)
		canAccept = append(canAccept, false)
		return id
	}

	startIDs := frontier([]StateID{n.start})
	register(startIDs)

	for i := 0; i < len(subsets); i++ {
		ids := subsets[i].ids
		isAccept := false
		canStill := false
		for _, sid := range ids {
			if n.states[sid].kind == kindMatch {
				isAccept = true
			}
			if canReach[sid] {
				canStill = true
			}
		}
		accept[i] = isAccept
		canAccept[i] = canStill

		row := make([]StateID, classes.numClasses())
		for c := 0; c < classes.numClasses(); c++ {
			rep := classes.reps[c]
			var moved []StateID
			for _, sid := range ids {
				st := n.states[sid]
				if st.kind == kindByteRange && rep >= st.lo && rep <= st.hi {
					moved = append(moved, st.next)
				}
			}
			if len(moved) == 0 {
				row[c] = DeadState
				continue
			}
			nextIDs := frontier(moved)
			row[c] = register(nextIDs)
		}
		transRows[i] = row
	}

	return &DFA{
		classes:   classes,
		trans:     transRows,
		accept:    accept,
		canAccept: canAccept,
	}
}

// closeEpsilon computes the epsilon/split closure of start into out,
// including the frontier states themselves (ByteRange and Match), which
// are the only states a subset construction ever needs to retain.
func closeEpsilon(n *nfa, out *sparse.SparseSet, start []StateID) {
	stack := append([]StateID(nil), start...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if out.Contains(uint32(id)) {
			continue
		}
		out.Insert(uint32(id))
		switch n.states[id].kind {
		case kindEpsilon:
			stack = append(stack, n.states[id].next)
		case kindSplit:
			stack = append(stack, n.states[id].left, n.states[id].right)
		}
	}
}

// computeCanReachMatch runs a reverse BFS from the match state over the
// NFA's edges, so a subset's CanStillAccept can be answered by an O(1) OR
// across its member states instead of a search at query time.
func computeCanReachMatch(n *nfa) []bool {
	reverse := make([][]StateID, len(n.states))
	addEdge := func(from, to StateID) {
		reverse[to] = append(reverse[to], from)
	}
	for id, st := range n.states {
		switch st.kind {
		case kindEpsilon:
			addEdge(StateID(id), st.next)
		case kindByteRange:
			addEdge(StateID(id), st.next)
		case kindSplit:
			addEdge(StateID(id), st.left)
			addEdge(StateID(id), st.right)
		}
	}

	canReach := make([]bool, len(n.states))
	var queue []StateID
	canReach[n.match] = true
	queue = append(queue, n.match)
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range reverse[u] {
			if !canReach[v] {
				canReach[v] = true
				queue = append(queue, v)
			}
		}
	}
	return canReach
}
