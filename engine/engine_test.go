package engine

import (
	"errors"
	"testing"

	"github.com/coregx/gramask/cache"
	"github.com/coregx/gramask/grammar"
)

func buildLiteral(t *testing.T, lit string) *grammar.Grammar {
	t.Helper()
	b := grammar.NewBuilder()
	s := b.AddRule()
	b.AddAlt(s, grammar.Alternative{Symbols: []grammar.Symbol{grammar.Terminal(lit)}})
	b.SetStart(s)
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func buildChoice(t *testing.T, a, b string) *grammar.Grammar {
	t.Helper()
	bl := grammar.NewBuilder()
	s := bl.AddRule()
	bl.AddAlt(s, grammar.Alternative{Symbols: []grammar.Symbol{grammar.Terminal(a)}})
	bl.AddAlt(s, grammar.Alternative{Symbols: []grammar.Symbol{grammar.Terminal(b)}})
	bl.SetStart(s)
	g, err := bl.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func vocabFromStrings(strs ...string) Vocabulary {
	v := make(Vocabulary, len(strs))
	for i, s := range strs {
		v[i] = TokenEntry{ID: uint32(i), Bytes: []byte(s)}
	}
	return v
}

// TestEngineLiteralScenario drives the full six-operation contract over a
// single-literal grammar: construct, mask, try, commit, finish.
func TestEngineLiteralScenario(t *testing.T) {
	g := buildLiteral(t, "cat")
	vocab := vocabFromStrings("cat", "dog")
	store := cache.New(1024)

	e, err := New(g, 1, vocab, store, DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	mask, err := e.ComputeAllowedMask()
	if err != nil {
		t.Fatalf("ComputeAllowedMask: %v", err)
	}
	if !mask.Test(0) {
		t.Error("expected token 0 (\"cat\") allowed")
	}
	if mask.Test(1) {
		t.Error("expected token 1 (\"dog\") disallowed")
	}

	ok, err := e.TryAcceptToken(1)
	if err != nil {
		t.Fatalf("TryAcceptToken: %v", err)
	}
	if ok {
		t.Error("expected \"dog\" to not be acceptable")
	}

	if err := e.CommitToken(0); err != nil {
		t.Fatalf("CommitToken(cat): %v", err)
	}
	if !e.IsFinished() {
		t.Error("expected engine finished after committing \"cat\"")
	}
}

// TestEngineCommitRejectedLeavesStateUnchanged covers §7's Rejected kind:
// CommitToken on a token the mask did not permit must fail cleanly and
// leave the engine's chart untouched.
func TestEngineCommitRejectedLeavesStateUnchanged(t *testing.T) {
	g := buildLiteral(t, "cat")
	vocab := vocabFromStrings("cat", "dog")
	e, err := New(g, 1, vocab, cache.New(1024), DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = e.CommitToken(1)
	if err == nil {
		t.Fatal("expected CommitToken(\"dog\") to fail")
	}
	var ee *Error
	if !asError(err, &ee) || ee.Kind != Rejected {
		t.Errorf("expected Rejected error kind, got %v", err)
	}
	if e.IsFinished() {
		t.Error("engine must be unaffected by a rejected commit")
	}
	if e.Stats().TokensRejected != 1 {
		t.Errorf("expected TokensRejected=1, got %d", e.Stats().TokensRejected)
	}

	if err := e.CommitToken(0); err != nil {
		t.Fatalf("CommitToken(cat) after a rejected commit: %v", err)
	}
	if !e.IsFinished() {
		t.Error("expected engine finished after committing \"cat\"")
	}
}

func asError(err error, target **Error) bool {
	e, ok := err.(*Error)
	if ok {
		*target = e
	}
	return ok
}

// TestEngineInvalidTokenID covers §7 InvalidInput for an id absent from
// the vocabulary.
func TestEngineInvalidTokenID(t *testing.T) {
	g := buildLiteral(t, "cat")
	vocab := vocabFromStrings("cat")
	e, err := New(g, 1, vocab, cache.New(1024), DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := e.TryAcceptToken(99); err == nil {
		t.Fatal("expected an error for an unknown token id")
	} else {
		var ee *Error
		if !asError(err, &ee) || ee.Kind != InvalidInput {
			t.Errorf("expected InvalidInput, got %v", err)
		}
	}
}

// TestEngineVocabularyRejectsZeroLengthToken covers the boundary behavior:
// a vocabulary containing a zero-length token must be rejected at
// construction.
func TestEngineVocabularyRejectsZeroLengthToken(t *testing.T) {
	g := buildLiteral(t, "cat")
	vocab := Vocabulary{{ID: 0, Bytes: nil}}
	_, err := New(g, 1, vocab, cache.New(1024), DefaultConfig())
	if err == nil {
		t.Fatal("expected zero-length token to be rejected")
	}
	var ee *Error
	if !asError(err, &ee) || ee.Kind != InvalidInput {
		t.Errorf("expected InvalidInput, got %v", err)
	}
}

// TestEngineVocabularyRejectsDuplicateID covers duplicate-id rejection.
func TestEngineVocabularyRejectsDuplicateID(t *testing.T) {
	g := buildLiteral(t, "cat")
	vocab := Vocabulary{{ID: 0, Bytes: []byte("a")}, {ID: 0, Bytes: []byte("b")}}
	_, err := New(g, 1, vocab, cache.New(1024), DefaultConfig())
	if err == nil {
		t.Fatal("expected duplicate token id to be rejected")
	}
}

// TestEngineGrammarUnsatisfiable covers §7 GrammarUnsatisfiable: a start
// rule with no alternatives derives no string, and is reported at
// construction by grammar.Builder.Build, before any Engine can be built
// from it.
func TestEngineGrammarUnsatisfiable(t *testing.T) {
	b := grammar.NewBuilder()
	s := b.AddRule()
	b.SetStart(s)
	_, err := b.Build()
	if err == nil {
		t.Fatal("expected GrammarUnsatisfiable")
	}
	if !errors.Is(err, grammar.ErrUnsatisfiable) {
		t.Errorf("expected grammar.ErrUnsatisfiable, got %v", err)
	}
}

// TestEngineChoiceScenario covers the "choice" E2E scenario at the engine
// level: the mask allows exactly the tokens beginning with an allowed
// prefix, and narrows correctly after a commit.
func TestEngineChoiceScenario(t *testing.T) {
	g := buildChoice(t, "cat", "dog")
	vocab := vocabFromStrings("c", "d", "cat", "dog", "x")
	e, err := New(g, 1, vocab, cache.New(1024), DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	mask, err := e.ComputeAllowedMask()
	if err != nil {
		t.Fatalf("ComputeAllowedMask: %v", err)
	}
	for id, want := range map[int]bool{0: true, 1: true, 2: true, 3: true, 4: false} {
		if mask.Test(id) != want {
			t.Errorf("token %d: mask=%v want=%v", id, mask.Test(id), want)
		}
	}

	if err := e.CommitToken(0); err != nil {
		t.Fatalf("CommitToken(\"c\"): %v", err)
	}

	mask2, err := e.ComputeAllowedMask()
	if err != nil {
		t.Fatalf("ComputeAllowedMask after commit: %v", err)
	}
	if mask2.Test(1) {
		t.Error("\"d\" must no longer be allowed after committing \"c\"")
	}
}

// TestEngineReset covers §3 Lifecycle: Reset returns the engine to its
// freshly-constructed recognition state.
func TestEngineReset(t *testing.T) {
	g := buildLiteral(t, "cat")
	vocab := vocabFromStrings("cat")
	e, err := New(g, 1, vocab, cache.New(1024), DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := e.CommitToken(0); err != nil {
		t.Fatalf("CommitToken: %v", err)
	}
	if !e.IsFinished() {
		t.Fatal("expected finished before reset")
	}

	e.Reset()
	if e.IsFinished() {
		t.Error("expected not finished after Reset")
	}

	if err := e.CommitToken(0); err != nil {
		t.Fatalf("CommitToken after Reset: %v", err)
	}
	if !e.IsFinished() {
		t.Error("expected finished again after re-committing post-reset")
	}
}

// TestEngineCloneIsolation covers testable property 6: mutating a clone
// must never affect the original, and vice versa.
func TestEngineCloneIsolation(t *testing.T) {
	g := buildChoice(t, "cat", "dog")
	vocab := vocabFromStrings("cat", "dog")
	e, err := New(g, 1, vocab, cache.New(1024), DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	clone := e.Clone()
	if err := clone.CommitToken(0); err != nil {
		t.Fatalf("CommitToken on clone: %v", err)
	}

	if e.IsFinished() {
		t.Error("original must be unaffected by committing on the clone")
	}
	if !clone.IsFinished() {
		t.Error("expected the clone itself to be finished")
	}

	if err := e.CommitToken(1); err != nil {
		t.Fatalf("CommitToken(\"dog\") on original: %v", err)
	}
	if !e.IsFinished() {
		t.Error("expected original finished after committing \"dog\" independently")
	}
}

// TestEngineCacheTransparency covers testable property 3: a cache-disabled
// engine and a cache-enabled engine must compute identical masks.
func TestEngineCacheTransparency(t *testing.T) {
	g := buildChoice(t, "cat", "dog")
	vocab := vocabFromStrings("c", "ca", "cat", "d", "do", "dog", "x")

	cfgEnabled := DefaultConfig()
	cfgDisabled := DefaultConfig()
	cfgDisabled.DisableCache = true

	eEnabled, err := New(g, 1, vocab, cache.New(1024), cfgEnabled)
	if err != nil {
		t.Fatalf("New (enabled): %v", err)
	}
	eDisabled, err := New(g, 1, vocab, cache.New(1024), cfgDisabled)
	if err != nil {
		t.Fatalf("New (disabled): %v", err)
	}

	m1, err := eEnabled.ComputeAllowedMask()
	if err != nil {
		t.Fatalf("ComputeAllowedMask (enabled): %v", err)
	}
	// Compute twice with the cache enabled so warm hits are exercised too.
	m1again, err := eEnabled.ComputeAllowedMask()
	if err != nil {
		t.Fatalf("ComputeAllowedMask (enabled, 2nd): %v", err)
	}
	m2, err := eDisabled.ComputeAllowedMask()
	if err != nil {
		t.Fatalf("ComputeAllowedMask (disabled): %v", err)
	}

	for i := range vocab {
		if m1.Test(i) != m2.Test(i) {
			t.Errorf("token %d: cache-enabled=%v cache-disabled=%v", i, m1.Test(i), m2.Test(i))
		}
		if m1.Test(i) != m1again.Test(i) {
			t.Errorf("token %d: cold=%v warm=%v", i, m1.Test(i), m1again.Test(i))
		}
	}

	hits, _ := func() (uint64, uint64) { return eEnabled.Stats().CacheHits, eEnabled.Stats().CacheMisses }()
	if hits == 0 {
		t.Error("expected at least one cache hit on the second warm computation")
	}
}

// TestEngineRepeatedMaskComputationIsIdempotent covers §5's no-mutation
// guarantee: calling ComputeAllowedMask repeatedly without committing must
// never change what it returns.
func TestEngineRepeatedMaskComputationIsIdempotent(t *testing.T) {
	g := buildChoice(t, "cat", "dog")
	vocab := vocabFromStrings("cat", "dog")
	e, err := New(g, 1, vocab, cache.New(1024), DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	first, err := e.ComputeAllowedMask()
	if err != nil {
		t.Fatalf("ComputeAllowedMask: %v", err)
	}
	second, err := e.ComputeAllowedMask()
	if err != nil {
		t.Fatalf("ComputeAllowedMask: %v", err)
	}
	for i := range vocab {
		if first.Test(i) != second.Test(i) {
			t.Errorf("token %d changed between repeated mask computations", i)
		}
	}
}

// TestEngineNoTokenAllowedAfterCompleteDerivation covers a bounded,
// non-nullable grammar whose derivation is complete after one token:
// IsFinished holds and the mask allows no further token.
func TestEngineNoTokenAllowedAfterCompleteDerivation(t *testing.T) {
	g := buildLiteral(t, "a")
	vocab := vocabFromStrings("a")
	e, err := New(g, 1, vocab, cache.New(1024), DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.CommitToken(0); err != nil {
		t.Fatalf("CommitToken: %v", err)
	}
	if !e.IsFinished() {
		t.Fatal("expected finished after \"a\"")
	}
	mask, err := e.ComputeAllowedMask()
	if err != nil {
		t.Fatalf("ComputeAllowedMask: %v", err)
	}
	if mask.Test(0) {
		t.Error("no further \"a\" should be allowed once the literal grammar is fully consumed")
	}
}

// TestEngineStatsResetStats covers the Stats/ResetStats pair.
func TestEngineStatsResetStats(t *testing.T) {
	g := buildLiteral(t, "cat")
	vocab := vocabFromStrings("cat")
	e, err := New(g, 1, vocab, cache.New(1024), DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := e.ComputeAllowedMask(); err != nil {
		t.Fatalf("ComputeAllowedMask: %v", err)
	}
	if err := e.CommitToken(0); err != nil {
		t.Fatalf("CommitToken: %v", err)
	}
	stats := e.Stats()
	if stats.MaskComputations != 1 || stats.TokensCommitted != 1 {
		t.Errorf("unexpected stats snapshot: %+v", stats)
	}

	e.ResetStats()
	stats = e.Stats()
	if stats.MaskComputations != 0 || stats.TokensCommitted != 0 {
		t.Errorf("expected zeroed stats after ResetStats, got %+v", stats)
	}
}

// TestConfigValidate covers Config.Validate's bounds.
func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}

	bad := cfg
	bad.CacheCapacity = 0
	if err := bad.Validate(); err == nil {
		t.Error("expected CacheCapacity=0 to fail validation")
	}

	bad = cfg
	bad.MaxTokenBytes = 0
	if err := bad.Validate(); err == nil {
		t.Error("expected MaxTokenBytes=0 to fail validation")
	}
}

// TestMask covers Mask's Test/Set/Clear bit operations directly.
func TestMask(t *testing.T) {
	m := NewMask(10)
	if m.Test(3) {
		t.Error("expected bit 3 initially clear")
	}
	m.Set(3)
	if !m.Test(3) {
		t.Error("expected bit 3 set")
	}
	m.Clear(3)
	if m.Test(3) {
		t.Error("expected bit 3 cleared")
	}
}
