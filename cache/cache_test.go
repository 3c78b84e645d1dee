package cache

import (
	"testing"

	"github.com/coregx/gramask/chart"
	"github.com/coregx/gramask/grammar"
)

func mustChart(t *testing.T) *chart.Chart {
	t.Helper()
	b := grammar.NewBuilder()
	s := b.AddRule()
	b.AddAlt(s, grammar.Alternative{Symbols: []grammar.Symbol{grammar.Terminal("ab")}})
	b.SetStart(s)
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return chart.New(g)
}

func TestCacheGetPutHit(t *testing.T) {
	c := New(numShards * 4)
	k := Key{GrammarID: 1, Fingerprint: 2, PrefixHash: 3}

	if _, ok := c.Get(k); ok {
		t.Fatal("expected miss on empty cache")
	}

	replay := mustChart(t)
	replay.ScanByte('a')
	c.Put(k, Accepted(replay))
	v, ok := c.Get(k)
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if !v.Accepted || v.Chart != replay {
		t.Errorf("got %+v, want Accepted(replay)", v)
	}
	if !v.Chart.Clone().ScanByte('b') {
		t.Error("expected the replayed chart to still accept the rest of the literal")
	}
}

func TestCacheEvictsLRU(t *testing.T) {
	// One entry per shard, forcing an eviction on every insert after the
	// first that hashes into the same shard.
	c := New(numShards)
	base := Key{GrammarID: 42}

	var sameShardKeys []Key
	for i := uint64(0); len(sameShardKeys) < 3 && i < 10000; i++ {
		k := base
		k.PrefixHash = i
		s := c.shardFor(k)
		if s == c.shardFor(base) {
			sameShardKeys = append(sameShardKeys, k)
		}
	}
	if len(sameShardKeys) < 3 {
		t.Skip("could not find three colliding keys for this shard count")
	}

	for _, k := range sameShardKeys {
		c.Put(k, Rejected)
	}
	// The shard's maxSize is capacity/numShards == 1, so only the most
	// recently inserted of the three should remain.
	if _, ok := c.Get(sameShardKeys[0]); ok {
		t.Error("expected the oldest colliding key to be evicted")
	}
	if _, ok := c.Get(sameShardKeys[len(sameShardKeys)-1]); !ok {
		t.Error("expected the most recently inserted colliding key to remain")
	}
}

func TestCacheStats(t *testing.T) {
	c := New(numShards * 4)
	k := Key{GrammarID: 7}
	c.Get(k)
	c.Put(k, Rejected)
	c.Get(k)

	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("got hits=%d misses=%d, want 1/1", hits, misses)
	}
}

func TestCacheClear(t *testing.T) {
	c := New(numShards * 4)
	k := Key{GrammarID: 9}
	c.Put(k, Rejected)
	c.Clear()
	if c.Len() != 0 {
		t.Error("expected Clear to empty the cache")
	}
	if _, ok := c.Get(k); ok {
		t.Error("expected cleared cache to miss")
	}
}

func TestTrieSharedPrefix(t *testing.T) {
	entries := map[TokenID]string{
		0: "cat",
		1: "car",
		2: "dog",
	}
	trie := NewTrie(func(yield func(TokenID, []byte) bool) {
		for id, s := range entries {
			if !yield(id, []byte(s)) {
				return
			}
		}
	})

	root := trie.Root()
	c := root.Child('c')
	if c == nil {
		t.Fatal("expected a 'c' child at the root")
	}
	ca := c.Child('a')
	if ca == nil {
		t.Fatal("expected 'ca' to be a shared prefix node")
	}
	t3 := ca.Child('t')
	r3 := ca.Child('r')
	if len(t3.Tokens()) != 1 || t3.Tokens()[0] != 0 {
		t.Errorf("expected \"cat\" to end at token 0, got %v", t3.Tokens())
	}
	if len(r3.Tokens()) != 1 || r3.Tokens()[0] != 1 {
		t.Errorf("expected \"car\" to end at token 1, got %v", r3.Tokens())
	}

	d := root.Child('d')
	if d == nil || d.Child('o') == nil || d.Child('o').Child('g') == nil {
		t.Fatal("expected \"dog\" path to exist independently of the 'c' branch")
	}
}
