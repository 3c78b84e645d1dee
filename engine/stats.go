package engine

// Stats tracks per-engine execution statistics for performance analysis,
// styled on the teacher's meta.Stats/Stats()/ResetStats() trio.
type Stats struct {
	// MaskComputations counts calls to ComputeAllowedMask.
	MaskComputations uint64

	// TokensCommitted counts successful CommitToken calls.
	TokensCommitted uint64

	// TokensRejected counts CommitToken calls that failed because the
	// token was not grammatically permitted.
	TokensRejected uint64

	// CacheHits / CacheMisses count Token-Prefix Cache lookups made by
	// this engine's mask computations.
	CacheHits   uint64
	CacheMisses uint64

	// LeoInstalls counts the number of times this engine's chart
	// memoized a fresh Leo entry (a cache miss inside resolveLeo, whether
	// the entry holds a top item or marks the completion ineligible).
	// LeoReuses counts subsequent lookups served from that memoization.
	LeoInstalls uint64
	LeoReuses   uint64
}

// Stats returns a snapshot of e's execution statistics.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// ResetStats zeroes e's execution statistics.
func (e *Engine) ResetStats() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stats = Stats{}
}
