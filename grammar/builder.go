package grammar

// Builder is the programmatic construction surface a grammar compiler (or
// a test) targets, since textual grammar parsing is out of scope here.
// Usage:
//
//	b := grammar.NewBuilder()
//	s := b.AddRule()
//	b.AddAlt(s, grammar.Alternative{Symbols: []grammar.Symbol{grammar.Terminal("abc")}})
//	b.SetStart(s)
//	g, err := b.Build()
type Builder struct {
	rules    []Rule
	start    RuleID
	hasStart bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddRule interns a new, initially alternative-less rule and returns its
// id. Alternatives are attached via AddAlt.
func (b *Builder) AddRule() RuleID {
	id := RuleID(len(b.rules))
	b.rules = append(b.rules, Rule{})
	return id
}

// AddAlt appends alt to rule's alternatives.
func (b *Builder) AddAlt(rule RuleID, alt Alternative) {
	b.rules[rule].Alts = append(b.rules[rule].Alts, alt)
}

// SetStart designates rule as the grammar's start rule.
func (b *Builder) SetStart(rule RuleID) {
	b.start = rule
	b.hasStart = true
}

// Build validates the accumulated rules and symbols, computes the
// nullability/first-byte/right-recursion tables, and returns the
// immutable Grammar. Returns ErrNoStartRule, ErrUnknownRule,
// ErrInvalidRepetition, or ErrUnsatisfiable (each wrapped in a
// *BuildError naming the offending rule, where applicable) on failure.
func (b *Builder) Build() (*Grammar, error) {
	if !b.hasStart {
		return nil, &BuildError{Err: ErrNoStartRule}
	}
	if err := b.validateReferences(); err != nil {
		return nil, err
	}

	g := &Grammar{
		start: b.start,
		rules: append([]Rule(nil), b.rules...),
	}

	g.nullable = computeNullable(g.rules)
	g.firstByte = computeFirstByteSets(g)
	g.rightRecur = computeRightRecursive(g)

	if !isProductive(g, g.start) {
		return nil, &BuildError{Rule: g.start, Err: ErrUnsatisfiable}
	}

	return g, nil
}

func (b *Builder) validateReferences() error {
	n := RuleID(len(b.rules))
	var walk func(rule RuleID, s Symbol) error
	walk = func(rule RuleID, s Symbol) error {
		switch s.Kind {
		case SymbolNonterminal:
			if s.Rule >= n {
				return &BuildError{Rule: rule, Err: ErrUnknownRule}
			}
		case SymbolRepetition:
			if s.Min < 0 || (s.Max != -1 && s.Max < s.Min) {
				return &BuildError{Rule: rule, Err: ErrInvalidRepetition}
			}
			if s.Inner == nil || s.Inner.Kind == SymbolNonterminal || s.Inner.Kind == SymbolRepetition {
				return &BuildError{Rule: rule, Err: ErrInvalidRepetition}
			}
			if err := walk(rule, *s.Inner); err != nil {
				return err
			}
		}
		return nil
	}
	for id, rule := range b.rules {
		for _, alt := range rule.Alts {
			for _, sym := range alt.Symbols {
				if err := walk(RuleID(id), sym); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// computeNullable runs the standard CFG nullable fixpoint: a rule is
// nullable if some alternative's symbols are all individually nullable.
func computeNullable(rules []Rule) []bool {
	nullable := make([]bool, len(rules))
	// A local view is enough here; isNullableIn only consults g.Nullable,
	// so a throwaway Grammar wrapping the in-progress table works.
	g := &Grammar{nullable: nullable}
	for {
		changed := false
		for id, rule := range rules {
			if nullable[id] {
				continue
			}
			for _, alt := range rule.Alts {
				allNullable := true
				for _, sym := range alt.Symbols {
					if !sym.isNullableIn(g) {
						allNullable = false
						break
					}
				}
				if allNullable {
					nullable[id] = true
					changed = true
					break
				}
			}
		}
		if !changed {
			break
		}
	}
	return nullable
}

// isProductive reports whether rule can derive at least one finite
// string, via the standard "useless symbol" fixpoint: a rule is
// productive if some alternative's symbols are all either terminal-kind
// or a Nonterminal whose own rule is already known productive.
func isProductive(g *Grammar, start RuleID) bool {
	productive := make([]bool, len(g.rules))
	for {
		changed := false
		for id, rule := range g.rules {
			if productive[id] {
				continue
			}
			for _, alt := range rule.Alts {
				ok := true
				for _, sym := range alt.Symbols {
					if sym.Kind == SymbolNonterminal && !productive[sym.Rule] {
						ok = false
						break
					}
				}
				if ok {
					productive[id] = true
					changed = true
					break
				}
			}
		}
		if !changed {
			break
		}
	}
	return productive[start]
}

// firstBytesOf computes the set of bytes that can begin a match of s,
// consulting the in-progress per-rule firstByte table for Nonterminal
// symbols.
func firstBytesOf(g *Grammar, s Symbol) ByteSet {
	var set ByteSet
	switch s.Kind {
	case SymbolTerminal:
		if len(s.Literal) > 0 {
			set.Set(s.Literal[0])
		}
	case SymbolRegex, SymbolException:
		addDFAFirstBytes(&set, s.DFA)
	case SymbolNonterminal:
		set.Union(g.firstByte[s.Rule])
	case SymbolRepetition:
		set.Union(firstBytesOf(g, *s.Inner))
	}
	return set
}

func addDFAFirstBytes(set *ByteSet, dfa TerminalDFA) {
	if dfa == nil {
		return
	}
	init := dfa.Initial()
	for b := 0; b < 256; b++ {
		if _, ok := dfa.Step(init, byte(b)); ok {
			set.Set(byte(b))
		}
	}
}

// firstBytesOfSequence folds first-byte sets across a run of symbols:
// once a symbol is not nullable, later symbols can never contribute (the
// byte has already been consumed before reaching them).
func firstBytesOfSequence(g *Grammar, symbols []Symbol) ByteSet {
	var set ByteSet
	for _, sym := range symbols {
		set.Union(firstBytesOf(g, sym))
		if !sym.isNullableIn(g) {
			break
		}
	}
	return set
}

// computeFirstByteSets runs the first-byte-set fixpoint over all rules.
// Bounded like computeNullable: repeats until no rule's set grows.
func computeFirstByteSets(g *Grammar) []ByteSet {
	sets := make([]ByteSet, len(g.rules))
	g.firstByte = sets
	for {
		changed := false
		for id, rule := range g.rules {
			var union ByteSet
			for _, alt := range rule.Alts {
				union.Union(firstBytesOfSequence(g, alt.Symbols))
			}
			before := sets[id]
			sets[id].Union(union)
			if sets[id] != before {
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return sets
}

// computeRightRecursive marks, for every (rule, alt, dot) where the
// symbol at dot is a Nonterminal, whether every symbol after dot is
// nullable — the Leo-eligibility condition (§4.C).
func computeRightRecursive(g *Grammar) [][][]bool {
	table := make([][][]bool, len(g.rules))
	for ruleID, rule := range g.rules {
		table[ruleID] = make([][]bool, len(rule.Alts))
		for altID, alt := range rule.Alts {
			row := make([]bool, len(alt.Symbols))
			for dot, sym := range alt.Symbols {
				if sym.Kind != SymbolNonterminal {
					continue
				}
				suffixNullable := true
				for _, rest := range alt.Symbols[dot+1:] {
					if !rest.isNullableIn(g) {
						suffixNullable = false
						break
					}
				}
				row[dot] = suffixNullable
			}
			table[ruleID][altID] = row
		}
	}
	return table
}
