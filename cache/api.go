package cache

// Cache is a volatile in-memory byte-key cache backed by a crit-nib index
// and a replacement policy. All methods are safe for concurrent use by
// multiple goroutines.
type Cache[V any] interface {
	// Put inserts key→v only if key is not cached. It never updates an
	// existing entry; a duplicate key (or one that is a byte-wise prefix of
	// a cached key, or vice versa) fails with ErrExists. The key bytes are
	// copied; the caller may reuse its buffer.
	Put(key []byte, v V) error

	// Get returns the value cached under key and a presence flag. On hit
	// the entry is marked as used with the active policy.
	Get(key []byte) (V, bool)

	// Evict removes the entry under key, if any, and reports whether an
	// entry was evicted.
	Evict(key []byte) bool

	// EvictLRU asks the policy for its current victim and removes it.
	// Reports false when the policy has nothing to offer (empty cache, or
	// the None policy).
	EvictLRU() bool

	// Len returns the number of resident entries.
	Len() int

	// Stats returns the lifetime hit, miss and eviction counts.
	Stats() (hits, misses int64, evicts uint64)

	// Close marks the cache closed and releases policy state.
	// Future operations are ignored.
	Close() error
}
