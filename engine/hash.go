package engine

import "hash/fnv"

// hashBytes returns the FNV-1a hash of b, used to derive a cache.Key's
// PrefixHash from a candidate token's bytes.
func hashBytes(b []byte) uint64 {
	h := fnv.New64a()
	h.Write(b)
	return h.Sum64()
}
