package chart

import (
	"testing"

	"github.com/coregx/ahocorasick"
)

func buildExclusions(t *testing.T, patterns ...string) *ahocorasick.Automaton {
	t.Helper()
	builder := ahocorasick.NewBuilder()
	for _, p := range patterns {
		builder.AddPattern([]byte(p))
	}
	automaton, err := builder.Build()
	if err != nil {
		t.Fatalf("ahocorasick build: %v", err)
	}
	return automaton
}
