package termdfa

import (
	"fmt"
	"regexp/syntax"
	"unicode"
)

// nfa is the Thompson construction for a single compiled pattern, prior to
// alphabet reduction and subset construction.
type nfa struct {
	states []nfaState
	start  StateID
	match  StateID
}

// parseRegexp parses pattern the same way the teacher does before handing
// off to its own NFA compiler: via the standard library's regexp/syntax,
// under Perl-compatible flags (the broadest syntax.Parse accepts).
func parseRegexp(pattern string) (*syntax.Regexp, error) {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil, fmt.Errorf("termdfa: parse %q: %w", pattern, err)
	}
	return re, nil
}

// compileToNFA builds a Thompson NFA for re. No capture groups are tracked
// (OpCapture states are transparent) since terminal matching never needs
// submatch extraction — only an accept/reject/can-still-accept verdict.
func compileToNFA(re *syntax.Regexp) *nfa {
	b := newBuilder()
	match := b.addMatch()
	start := compileNode(b, re, match)
	return &nfa{states: b.states, start: start, match: match}
}

func compileNode(b *builder, re *syntax.Regexp, next StateID) StateID {
	switch re.Op {
	case syntax.OpEmptyMatch, syntax.OpBeginLine, syntax.OpEndLine,
		syntax.OpBeginText, syntax.OpEndText, syntax.OpWordBoundary,
		syntax.OpNoWordBoundary:
		// Zero-width assertions: terminal spans are self-delimited by the
		// chart position, not by haystack anchors, so these are always
		// satisfied.
		return b.addEpsilon(next)

	case syntax.OpNoMatch:
		return b.addByteRange(0x01, 0x00, next)

	case syntax.OpLiteral:
		cur := next
		for i := len(re.Rune) - 1; i >= 0; i-- {
			r := re.Rune[i]
			if re.Flags&syntax.FoldCase != 0 {
				cur = compileFoldedRune(b, r, cur)
			} else {
				cur = compileRuneRange(b, r, r, cur)
			}
		}
		return cur

	case syntax.OpCharClass:
		return compileClass(b, re.Rune, next)

	case syntax.OpAnyCharNotNL:
		return compileClass(b, []rune{0x00, 0x09, 0x0B, 0x10FFFF}, next)

	case syntax.OpAnyChar:
		return compileRuneRange(b, 0x00, 0x10FFFF, next)

	case syntax.OpCapture:
		return compileNode(b, re.Sub[0], next)

	case syntax.OpConcat:
		cur := next
		for i := len(re.Sub) - 1; i >= 0; i-- {
			cur = compileNode(b, re.Sub[i], cur)
		}
		return cur

	case syntax.OpAlternate:
		if len(re.Sub) == 0 {
			return b.addEpsilon(next)
		}
		id := compileNode(b, re.Sub[0], next)
		for _, sub := range re.Sub[1:] {
			other := compileNode(b, sub, next)
			id = b.addSplit(id, other)
		}
		return id

	case syntax.OpStar:
		split := b.addSplit(InvalidState, InvalidState)
		body := compileNode(b, re.Sub[0], split)
		b.patchSplit(split, body, next)
		return split

	case syntax.OpPlus:
		split := b.addSplit(InvalidState, InvalidState)
		body := compileNode(b, re.Sub[0], split)
		b.patchSplit(split, body, next)
		return compileNode(b, re.Sub[0], split)

	case syntax.OpQuest:
		body := compileNode(b, re.Sub[0], next)
		return b.addSplit(body, next)

	case syntax.OpRepeat:
		return compileRepeat(b, re, next)

	default:
		panic(fmt.Sprintf("termdfa: unsupported regexp op %v", re.Op))
	}
}

// compileFoldedRune expands a case-folded literal rune into an alternation
// over its orbit of equivalent runes, via unicode.SimpleFold.
func compileFoldedRune(b *builder, r rune, next StateID) StateID {
	orbit := []rune{r}
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		orbit = append(orbit, f)
	}
	id := compileRuneRange(b, orbit[0], orbit[0], next)
	for _, f := range orbit[1:] {
		id = b.addSplit(id, compileRuneRange(b, f, f, next))
	}
	return id
}

// compileClass compiles a flattened [lo,hi,lo,hi,...] rune-pair class.
func compileClass(b *builder, pairs []rune, next StateID) StateID {
	if len(pairs) == 0 {
		return b.addByteRange(0x01, 0x00, next)
	}
	id := compileRuneRange(b, pairs[0], pairs[1], next)
	for i := 2; i < len(pairs); i += 2 {
		id = b.addSplit(id, compileRuneRange(b, pairs[i], pairs[i+1], next))
	}
	return id
}

// compileRepeat expands {min,max} into min mandatory copies followed by
// either a trailing Kleene star (max == -1, unbounded) or (max-min) nested
// optional copies.
func compileRepeat(b *builder, re *syntax.Regexp, next StateID) StateID {
	sub := re.Sub[0]
	cur := next
	if re.Max == -1 {
		star := b.addSplit(InvalidState, InvalidState)
		body := compileNode(b, sub, star)
		b.patchSplit(star, body, next)
		cur = star
	} else {
		for i := 0; i < re.Max-re.Min; i++ {
			body := compileNode(b, sub, cur)
			cur = b.addSplit(body, cur)
		}
	}
	for i := 0; i < re.Min; i++ {
		cur = compileNode(b, sub, cur)
	}
	return cur
}
