package termdfa

// utf8Encode fills buf with the UTF-8 encoding of r and returns the number
// of bytes written. r must already be a valid rune (callers split out
// surrogates before calling this).
func utf8Encode(r rune, buf *[4]byte) int {
	switch {
	case r <= 0x7F:
		buf[0] = byte(r)
		return 1
	case r <= 0x7FF:
		buf[0] = 0xC0 | byte(r>>6)
		buf[1] = 0x80 | byte(r&0x3F)
		return 2
	case r <= 0xFFFF:
		buf[0] = 0xE0 | byte(r>>12)
		buf[1] = 0x80 | byte((r>>6)&0x3F)
		buf[2] = 0x80 | byte(r&0x3F)
		return 3
	default:
		buf[0] = 0xF0 | byte(r>>18)
		buf[1] = 0x80 | byte((r>>12)&0x3F)
		buf[2] = 0x80 | byte((r>>6)&0x3F)
		buf[3] = 0x80 | byte(r&0x3F)
		return 4
	}
}

// lengthSegments are the rune boundaries at which the UTF-8 encoded length
// changes, and the surrogate gap that is never validly encoded.
var lengthSegments = [][2]rune{
	{0x0000, 0x007F},
	{0x0080, 0x07FF},
	{0x0800, 0xD7FF}, // below the surrogate range
	{0xE000, 0xFFFF}, // above the surrogate range, still 3 bytes
	{0x10000, 0x10FFFF},
}

// compileRuneRange adds NFA states accepting the UTF-8 encoding of any rune
// in [lo, hi] and moving to next on completion. Returns the
// start state of the (possibly branching) byte-range chain.
//
// Splits the requested range at UTF-8 encoded-length boundaries (and around
// the surrogate gap, which is never encoded), then recursively compiles
// each same-length segment with compileFixedLen — the classic byte-range
// splitting approach used by UTF-8-aware regex engines to avoid enumerating
// every codepoint individually.
func compileRuneRange(b *builder, lo, hi rune, next StateID) StateID {
	var branches []StateID
	for _, seg := range lengthSegments {
		segLo, segHi := seg[0], seg[1]
		if hi < segLo || lo > segHi {
			continue
		}
		l, h := lo, hi
		if l < segLo {
			l = segLo
		}
		if h > segHi {
			h = segHi
		}
		var loBuf, hiBuf [4]byte
		n := utf8Encode(l, &loBuf)
		utf8Encode(h, &hiBuf)
		branches = append(branches, compileFixedLen(b, loBuf[:n], hiBuf[:n], next))
	}
	switch len(branches) {
	case 0:
		// empty range: a byte range that can never match.
		return b.addByteRange(0x01, 0x00, next)
	case 1:
		return branches[0]
	default:
		id := branches[0]
		for _, other := range branches[1:] {
			id = b.addSplit(id, other)
		}
		return id
	}
}

// compileFixedLen compiles a range [lo, hi] of same-length UTF-8 byte
// sequences into a chain of byte-range states. Standard recursive split:
// if the lead bytes match, recurse on the tail; otherwise split into a
// low edge, a full middle range, and a high edge.
func compileFixedLen(b *builder, lo, hi []byte, next StateID) StateID {
	if len(lo) == 1 {
		return b.addByteRange(lo[0], hi[0], next)
	}
	if lo[0] == hi[0] {
		tail := compileFixedLen(b, lo[1:], hi[1:], next)
		return b.addByteRange(lo[0], lo[0], tail)
	}

	var branches []StateID

	// Low edge: lo[0] paired with [lo[1:], max-continuation-suffix].
	maxSuffix := make([]byte, len(lo)-1)
	for i := range maxSuffix {
		maxSuffix[i] = 0xBF
	}
	lowTail := compileFixedLen(b, lo[1:], maxSuffix, next)
	branches = append(branches, b.addByteRange(lo[0], lo[0], lowTail))

	// Middle: any lead byte strictly between lo[0] and hi[0], full
	// continuation-byte range for every remaining position.
	if hi[0]-lo[0] >= 2 {
		minSuffix := make([]byte, len(lo)-1)
		for i := range minSuffix {
			minSuffix[i] = 0x80
		}
		midTail := compileFixedLen(b, minSuffix, maxSuffix, next)
		branches = append(branches, b.addByteRange(lo[0]+1, hi[0]-1, midTail))
	}

	// High edge: hi[0] paired with [min-continuation-suffix, hi[1:]].
	minSuffix := make([]byte, len(lo)-1)
	for i := range minSuffix {
		minSuffix[i] = 0x80
	}
	highTail := compileFixedLen(b, minSuffix, hi[1:], next)
	branches = append(branches, b.addByteRange(hi[0], hi[0], highTail))

	id := branches[0]
	for _, other := range branches[1:] {
		id = b.addSplit(id, other)
	}
	return id
}
