package chart

import (
	"hash/fnv"

	"github.com/coregx/gramask/internal/conv"
)

// fingerprint returns the order-independent FNV-1a XOR-fold over s's
// items (§9 Open Question 1): each item's dotted-rule-plus-substate
// identity is hashed independently and the hashes are combined with
// XOR, so two sets holding the same items in different insertion orders
// fingerprint identically. Cached after first computation since a
// sealed set's item collection never changes again.
func (s *Set) fingerprint() uint64 {
	if s.fpValid {
		return s.fp
	}
	var acc uint64
	h := fnv.New64a()
	for _, it := range s.items {
		h.Reset()
		writeItemHash(h, it)
		acc ^= h.Sum64()
	}
	s.fp = acc
	s.fpValid = true
	return acc
}

func writeItemHash(h interface{ Write([]byte) (int, error) }, it item) {
	var buf [16]byte
	putUint32(buf[0:4], uint32(it.rule))
	putUint32(buf[4:8], uint32(it.alt))
	// dot and origin are plain ints (byte offsets into the input), so
	// unlike rule/alt ids they are a genuine narrowing conversion.
	putUint32(buf[8:12], conv.IntToUint32(it.dot))
	putUint32(buf[12:16], conv.IntToUint32(it.origin))
	h.Write(buf[:16])
	h.Write([]byte(encodeSubstate(it.sub)))
}

func putUint32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
