package engine

// Config controls engine behavior unrelated to grammar semantics —
// cache sizing and safety limits. Styled directly on the teacher's
// meta.Config/DefaultConfig/Validate trio (bounded numeric fields, a
// *ConfigError on violation).
type Config struct {
	// CacheCapacity is the total number of verdicts a cache.Cache built
	// for this engine's vocabulary should hold. Callers sharing one
	// cache.Cache across several engines construct it directly with
	// cache.New and pass it to New; this field is only consulted by
	// helpers that build a dedicated cache on an engine's behalf.
	// Default: 65536.
	CacheCapacity int

	// DisableCache routes every mask computation through a fresh scratch
	// chart walk instead of consulting the Token-Prefix Cache. Exists
	// for testable property 3 (cache transparency): results must be
	// identical with the cache disabled and enabled.
	// Default: false.
	DisableCache bool

	// MaxTokenBytes bounds the byte length of any single vocabulary
	// token, guarding against pathological vocabularies inflating mask
	// computation cost (§5: a caller bounds work via vocabulary size and
	// max token byte length).
	// Default: 256.
	MaxTokenBytes int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		CacheCapacity: 65536,
		DisableCache:  false,
		MaxTokenBytes: 256,
	}
}

// Validate checks that c's fields are within valid ranges.
func (c Config) Validate() error {
	if c.CacheCapacity < 1 || c.CacheCapacity > 100_000_000 {
		return &ConfigError{Field: "CacheCapacity", Message: "must be between 1 and 100,000,000"}
	}
	if c.MaxTokenBytes < 1 || c.MaxTokenBytes > 1_000_000 {
		return &ConfigError{Field: "MaxTokenBytes", Message: "must be between 1 and 1,000,000"}
	}
	return nil
}

// ConfigError represents an invalid configuration parameter.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "gramask: invalid config: " + e.Field + ": " + e.Message
}
