// Package gramask provides an incremental, grammar-constrained token
// decoding engine for Go.
//
// gramask compiles a context-free grammar (augmented with embedded
// regex/bounded-repetition terminals) into an Earley recognizer
// enhanced with Leo's right-recursion optimization, then drives it one
// committed token at a time to produce, at every generation step, a
// boolean mask over a caller-supplied vocabulary: bit t set means
// "vocabulary token t may legally extend the bytes committed so far."
//
// Basic usage:
//
//	b := grammar.NewBuilder()
//	s := b.AddRule()
//	b.AddAlt(s, grammar.Alternative{Symbols: []grammar.Symbol{grammar.Terminal("yes")}})
//	b.AddAlt(s, grammar.Alternative{Symbols: []grammar.Symbol{grammar.Terminal("no")}})
//	b.SetStart(s)
//	g, err := b.Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	d, err := gramask.New(g, gramask.Vocabulary{{ID: 0, Bytes: []byte("yes")}, {ID: 1, Bytes: []byte("no")}}, gramask.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	mask, err := d.ComputeAllowedMask()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if mask.Test(0) {
//	    d.CommitToken(0)
//	}
//
// Decoders sharing one *cache.Cache amortize mask computation across
// concurrent generation streams driving the same grammar; construct
// the cache once with NewCache and pass it to NewWithCache for every
// Decoder that should share it.
//
// Non-goals (v1.0): grammar authoring tools (text-format parsing),
// probabilistic or weighted parsing, semantic actions/parse-tree
// construction, sub-token streaming, and live grammar editing mid-
// generation. See SPEC_FULL.md for the full rationale.
package gramask

import (
	"sync"
	"sync/atomic"

	"github.com/coregx/gramask/cache"
	"github.com/coregx/gramask/engine"
	"github.com/coregx/gramask/grammar"
)

// Decoder is a conversation-scoped constrained-decoding stepper: one
// compiled Grammar, one Vocabulary, one owned recognition chart.
//
// A Decoder is safe to use from one goroutine at a time; see
// ComputeAllowedMask and CommitToken for the caller contract around
// concurrent use.
type Decoder struct {
	eng *engine.Engine
}

// Vocabulary is the full set of tokens a Decoder masks over. Re-exported
// from engine so callers never need to import that package directly.
type Vocabulary = engine.Vocabulary

// TokenEntry is one vocabulary entry: a dense small integer id (the
// mask bit position) and the raw bytes that id represents.
type TokenEntry = engine.TokenEntry

// Mask is a packed, little-endian vocabulary bit mask: bit t lives at
// byte t/8, bit t%8.
type Mask = engine.Mask

// Config controls Decoder behavior unrelated to grammar semantics.
type Config = engine.Config

// Stats tracks per-Decoder execution statistics for performance
// analysis.
type Stats = engine.Stats

// ErrorKind classifies Decoder errors into the taxonomy: InvalidInput,
// Rejected, GrammarUnsatisfiable, CacheCapacityExhausted, Internal.
type ErrorKind = engine.ErrorKind

// Error is the Decoder's error type: a kind, a human-readable message,
// and an optional wrapped cause.
type Error = engine.Error

const (
	InvalidInput            = engine.InvalidInput
	Rejected                = engine.Rejected
	GrammarUnsatisfiable    = engine.GrammarUnsatisfiable
	CacheCapacityExhausted  = engine.CacheCapacityExhausted
	Internal                = engine.Internal
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return engine.DefaultConfig()
}

// NewCache returns a Token-Prefix Cache holding at most capacity
// verdicts, suitable for sharing across every Decoder driving the same
// pool of grammars (see NewWithCache).
func NewCache(capacity int) *cache.Cache {
	return cache.New(capacity)
}

var grammarIDs sync.Map // *grammar.Grammar -> uint64
var nextGrammarID atomic.Uint64

// grammarID assigns a stable, process-local integer identity to g the
// first time it is seen, so multiple grammars may safely share one
// Token-Prefix Cache without their fingerprints colliding (§4.F's
// cache key is (grammar id, chart fingerprint, token bytes)).
func grammarID(g *grammar.Grammar) uint64 {
	if id, ok := grammarIDs.Load(g); ok {
		return id.(uint64)
	}
	id, _ := grammarIDs.LoadOrStore(g, nextGrammarID.Add(1))
	return id.(uint64)
}

// New compiles a Decoder for g and vocab, backed by a private cache
// sized by cfg.CacheCapacity. Use NewWithCache to share one cache
// across several Decoders.
//
// Returns an *Error wrapping InvalidInput for a malformed vocabulary or
// config, or GrammarUnsatisfiable if g's start rule derives no string
// at all.
func New(g *grammar.Grammar, vocab Vocabulary, cfg Config) (*Decoder, error) {
	return NewWithCache(g, vocab, cache.New(cfg.CacheCapacity), cfg)
}

// NewWithCache is New, but backed by an explicit, possibly shared,
// Token-Prefix Cache (built with NewCache).
func NewWithCache(g *grammar.Grammar, vocab Vocabulary, store *cache.Cache, cfg Config) (*Decoder, error) {
	eng, err := engine.New(g, grammarID(g), vocab, store, cfg)
	if err != nil {
		return nil, err
	}
	return &Decoder{eng: eng}, nil
}

// IsFinished reports whether the bytes committed so far are a complete
// derivation of the grammar's start rule.
func (d *Decoder) IsFinished() bool {
	return d.eng.IsFinished()
}

// ComputeAllowedMask returns a Mask sized to the vocabulary, bit t set
// iff vocab[t]'s bytes extend the current chart without rejection
// anywhere along their length. Never mutates the Decoder; safe to call
// repeatedly between commits.
func (d *Decoder) ComputeAllowedMask() (Mask, error) {
	return d.eng.ComputeAllowedMask()
}

// TryAcceptToken reports whether token id t would be accepted by
// CommitToken right now, without mutating Decoder state.
func (d *Decoder) TryAcceptToken(t uint32) (bool, error) {
	return d.eng.TryAcceptToken(t)
}

// CommitToken permanently advances the Decoder by vocab[t]'s bytes. On
// rejection the Decoder is left completely unchanged and an *Error
// wrapping Rejected is returned — callers are expected to only commit
// tokens ComputeAllowedMask most recently permitted, but a violation is
// reported as an ordinary error rather than a panic.
func (d *Decoder) CommitToken(t uint32) error {
	return d.eng.CommitToken(t)
}

// Reset returns the Decoder to its freshly-constructed recognition
// state; the underlying Token-Prefix Cache is retained.
func (d *Decoder) Reset() {
	d.eng.Reset()
}

// Clone returns an independent Decoder sharing the same grammar and
// cache, with its own copy of the recognition chart — for branching
// generation (e.g. beam search) without recomputing from scratch.
func (d *Decoder) Clone() *Decoder {
	return &Decoder{eng: d.eng.Clone()}
}

// Stats returns a snapshot of the Decoder's execution statistics.
func (d *Decoder) Stats() Stats {
	return d.eng.Stats()
}

// ResetStats zeroes the Decoder's execution statistics.
func (d *Decoder) ResetStats() {
	d.eng.ResetStats()
}
