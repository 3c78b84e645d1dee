package grammar

// Grammar is the immutable, read-only compiled view the engine consumes:
// interned rules and alternatives plus the precomputed nullability,
// first-byte, and right-recursion tables the chart and Leo optimizer
// need. Produced by Builder.Build; never mutated afterward, so it is
// safe to share across any number of Engines without locking (§5).
type Grammar struct {
	start RuleID
	rules []Rule

	nullable   []bool
	firstByte  []ByteSet
	rightRecur [][][]bool // [rule][alt][dot]
}

// Start returns the grammar's start rule id.
func (g *Grammar) Start() RuleID { return g.start }

// NumRules returns the number of interned rules.
func (g *Grammar) NumRules() int { return len(g.rules) }

// Rule returns the rule interned under id. Panics if id is out of range,
// matching the teacher's convention of panicking only on a programming
// error (an id the grammar itself never produced), never on external
// input.
func (g *Grammar) Rule(id RuleID) *Rule { return &g.rules[id] }

// Nullable reports whether rule can derive the empty byte string.
func (g *Grammar) Nullable(id RuleID) bool { return g.nullable[id] }

// FirstByteSet returns the set of bytes that can begin some string
// derivable from rule. It is a hint only: the chart does not consult
// it, and grammar correctness never depends on it.
func (g *Grammar) FirstByteSet(id RuleID) ByteSet { return g.firstByte[id] }

// IsRightRecursive reports whether the symbol at (rule, alt, dot) is a
// Nonterminal and every symbol after it in the alternative is nullable —
// the condition under which completing that Nonterminal leaves the item
// at an effectively-trailing dot, making it eligible for Leo memoization
// (§4.C).
func (g *Grammar) IsRightRecursive(rule RuleID, alt AltID, dot int) bool {
	return g.rightRecur[rule][alt][dot]
}

// symbolIsNullable reports whether the given symbol can match empty,
// given the grammar's own nullability table (exported as SymbolNullable).
func (g *Grammar) symbolIsNullable(s Symbol) bool {
	return s.isNullableIn(g)
}

// SymbolNullable reports whether s can match the empty byte string under
// this grammar's nullability table. Chart's predict phase does not call
// it; it consults Nullable for the predicted rule directly.
func (g *Grammar) SymbolNullable(s Symbol) bool {
	return g.symbolIsNullable(s)
}
