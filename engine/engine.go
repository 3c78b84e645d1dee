// Package engine implements the recognizer stepper (§4.E): the public
// contract a language-model decoding loop drives — new, compute the
// allowed-token mask, test or commit a token, reset, clone — backed by
// one owned chart.Chart plus a shared grammar.Grammar and cache.Cache.
package engine

import (
	"sync"

	"github.com/coregx/gramask/cache"
	"github.com/coregx/gramask/chart"
	"github.com/coregx/gramask/grammar"
)

// runState is the Engine's internal state machine (§4.E): Idle between
// calls, Computing only for the duration of ComputeAllowedMask (e.mu is
// held for that whole call, so a concurrent call waits for it to finish
// rather than observing Computing), Committed briefly after
// CommitToken, Dead once the chart can neither extend nor ever finish.
type runState uint8

const (
	stateIdle runState = iota
	stateComputing
	stateCommitted
	stateDead
)

// Engine is the conversation-scoped recognizer state: one owned,
// mutable Chart plus shared, read-only handles to a Grammar and a
// Token-Prefix Cache (§3 Lifecycle). Safe for one goroutine at a time;
// the mutex only guards the state-machine transition, matching §5's
// caller contract that ComputeAllowedMask and CommitToken are never
// interleaved — it is not a substitute for that contract.
type Engine struct {
	mu sync.Mutex

	g         *grammar.Grammar
	grammarID uint64
	vocab     Vocabulary
	trie      *cache.Trie
	store     *cache.Cache
	cfg       Config

	ch    *chart.Chart
	state runState
	stats Stats
}

// New constructs an Engine for grammar g (assigned grammarID by the
// caller, so multiple grammars may safely share one store per §4.F),
// vocabulary vocab, and shared cache store, using cfg (DefaultConfig()
// if the caller has no specific needs). Returns a *Error wrapping
// InvalidInput for a malformed vocabulary or config, or
// GrammarUnsatisfiable if g's start rule derives no string at all.
func New(g *grammar.Grammar, grammarID uint64, vocab Vocabulary, store *cache.Cache, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, newErrorWithCause(InvalidInput, "invalid engine config", err)
	}
	if err := vocab.validate(); err != nil {
		return nil, err
	}
	for _, t := range vocab {
		if len(t.Bytes) > cfg.MaxTokenBytes {
			return nil, newError(InvalidInput, "vocabulary token longer than Config.MaxTokenBytes")
		}
	}

	ch := chart.New(g)
	if ch.InitialSetEmpty() {
		return nil, newError(GrammarUnsatisfiable, "grammar's start rule derives no string")
	}

	trie := cache.NewTrie(func(yield func(cache.TokenID, []byte) bool) {
		for _, t := range vocab {
			if !yield(cache.TokenID(t.ID), t.Bytes) {
				return
			}
		}
	})

	return &Engine{
		g:         g,
		grammarID: grammarID,
		vocab:     vocab,
		trie:      trie,
		store:     store,
		cfg:       cfg,
		ch:        ch,
		state:     stateIdle,
	}, nil
}

func newErrorWithCause(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// IsFinished reports whether the bytes committed so far are a complete
// derivation of the grammar's start rule (§4.E terminal accept).
func (e *Engine) IsFinished() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ch.IsFinished()
}

// ComputeAllowedMask returns a Mask sized to the vocabulary, bit t set
// iff vocab[t]'s bytes extend the current chart without rejection
// anywhere along their length. Never mutates the real chart; every
// candidate is tried against a forked scratch chart (§4.E).
func (e *Engine) ComputeAllowedMask() (Mask, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == stateComputing {
		return nil, newError(Internal, "ComputeAllowedMask re-entered while already computing")
	}
	e.state = stateComputing
	defer func() { e.state = stateIdle }()

	e.stats.MaskComputations++

	n := int(e.vocab.maxID()) + 1
	mask := NewMask(n)
	fp := e.ch.Fingerprint()

	e.walkMask(e.trie.Root(), e.ch, fp, nil, mask)
	return mask, nil
}

// walkMask performs the trie-guided, cache-amortized scratch-chart walk
// that implements both §4.E's "mask computation" (per-token cache
// lookup, fork-and-feed on miss) and its "shared byte prefixes"
// optimization (one Clone+ScanByte per trie edge, not per token that
// happens to share it) in a single pass. An Accepted cache hit replays
// directly from the verdict's stored chart instead of re-running
// ScanByte, so the accepted path is amortized across calls exactly like
// the rejected path already is via markRejectedDescendants.
func (e *Engine) walkMask(node *cache.Node, ch *chart.Chart, fp uint64, prefix []byte, mask Mask) {
	for _, tid := range node.Tokens() {
		mask.Set(int(tid))
	}

	node.Walk(func(b byte, child *cache.Node) {
		childPrefix := append(append([]byte(nil), prefix...), b)
		key := cache.Key{GrammarID: e.grammarID, Fingerprint: fp, PrefixHash: hashBytes(childPrefix)}

		if !e.cfg.DisableCache {
			if v, ok := e.store.Get(key); ok {
				e.stats.CacheHits++
				if !v.Accepted {
					// A prior call already proved this exact byte path
					// dead from this chart state; by testable property 4
					// (monotone acceptance) every descendant is dead too,
					// so the whole subtree is skipped without touching
					// the chart at all.
					return
				}
				e.walkMask(child, v.Chart.Clone(), fp, childPrefix, mask)
				return
			}
			e.stats.CacheMisses++
		}

		next := ch.Clone()
		if !next.ScanByte(b) {
			if !e.cfg.DisableCache {
				e.store.Put(key, cache.Rejected)
			}
			e.markRejectedDescendants(child, fp, childPrefix)
			return
		}
		if !e.cfg.DisableCache {
			e.store.Put(key, cache.Accepted(next))
		}
		e.walkMask(child, next, fp, childPrefix, mask)
	})
}

// markRejectedDescendants populates the cache for every token under a
// subtree whose owning byte prefix has already been proven rejected by
// an actual scan, without touching the chart again for any of them —
// sound by testable property 4 (monotone acceptance): once a prefix is
// rejected, every extension of it is rejected too.
func (e *Engine) markRejectedDescendants(node *cache.Node, fp uint64, prefix []byte) {
	if !e.cfg.DisableCache && len(node.Tokens()) > 0 {
		key := cache.Key{GrammarID: e.grammarID, Fingerprint: fp, PrefixHash: hashBytes(prefix)}
		e.store.Put(key, cache.Rejected)
	}
	node.Walk(func(b byte, child *cache.Node) {
		e.markRejectedDescendants(child, fp, append(append([]byte(nil), prefix...), b))
	})
}

// TryAcceptToken reports whether token id t would be accepted by
// CommitToken right now, without mutating engine state (§4.E). Returns
// an *Error wrapping InvalidInput if t is not a known vocabulary id.
func (e *Engine) TryAcceptToken(t uint32) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, err := e.lookupToken(t)
	if err != nil {
		return false, err
	}

	scratch := e.ch.Clone()
	return feedAll(scratch, entry.Bytes), nil
}

// CommitToken permanently advances the chart by vocab[t]'s bytes. On
// rejection the engine is left completely unchanged and a *Error
// wrapping Rejected is returned (§4.E, §7 "caller violated the mask").
func (e *Engine) CommitToken(t uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, err := e.lookupToken(t)
	if err != nil {
		return err
	}

	scratch := e.ch.Clone()
	if !feedAll(scratch, entry.Bytes) {
		e.stats.TokensRejected++
		return newError(Rejected, "committed token is not grammatically permitted")
	}

	e.ch = scratch
	e.stats.TokensCommitted++
	installs, reuses := e.ch.LeoStats()
	e.stats.LeoInstalls, e.stats.LeoReuses = installs, reuses

	e.state = stateCommitted
	if !e.ch.CanExtend() && !e.ch.IsFinished() {
		e.state = stateDead
	} else {
		e.state = stateIdle
	}
	return nil
}

func (e *Engine) lookupToken(t uint32) (TokenEntry, error) {
	for _, entry := range e.vocab {
		if entry.ID == t {
			return entry, nil
		}
	}
	return TokenEntry{}, newError(InvalidInput, "token id not present in vocabulary")
}

func feedAll(ch *chart.Chart, b []byte) bool {
	for _, c := range b {
		if !ch.ScanByte(c) {
			return false
		}
	}
	return true
}

// Reset truncates the chart back to set 0 (§3 Lifecycle); the shared
// Token-Prefix Cache is retained, since it is pure with respect to
// grammar and chart history.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ch.Reset()
	e.state = stateIdle
}

// Clone returns an independent Engine sharing the immutable grammar and
// cache, with its own copy of the chart (§4.E, testable property 6:
// mutations on a cloned engine never affect the original).
func (e *Engine) Clone() *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	return &Engine{
		g:         e.g,
		grammarID: e.grammarID,
		vocab:     e.vocab,
		trie:      e.trie,
		store:     e.store,
		cfg:       e.cfg,
		ch:        e.ch.Clone(),
		state:     e.state,
		stats:     e.stats,
	}
}
