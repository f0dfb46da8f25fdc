package cache

import "github.com/nibcache/nibcache/repl"

// EvictReason explains why an entry was removed.
type EvictReason int

const (
	// EvictCapacity — removed to bring the cache back under MaxEntries.
	EvictCapacity EvictReason = iota
	// EvictExplicit — removed by key through Evict.
	EvictExplicit
	// EvictPolicy — removed as the policy's victim through EvictLRU.
	EvictPolicy
)

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	Size(entries int)
}

// Options configures the cache. Zero values are safe; defaults are applied
// in New():
//   - nil Metrics  => NoopMetrics
//   - Policy       => LRU (the repl.Kind zero value)
//   - ReplBuffer 0 => the policy default (256)
type Options[V any] struct {
	// MaxEntries caps the number of resident entries; Put evicts policy
	// victims until the cache fits. 0 disables the cap. With the None
	// policy the cap cannot be enforced; the caller evicts by its own
	// means.
	MaxEntries int

	// Policy selects the replacement policy variant, fixed for the cache's
	// lifetime.
	Policy repl.Kind

	// ReplBuffer sizes the LRU pending-use buffer (see repl.Config).
	ReplBuffer int

	// OnEvict is called for every eviction, after the entry is gone from
	// both the index and the policy. Keep callbacks lightweight.
	OnEvict func(key []byte, v V, reason EvictReason)

	// Metrics receives Hit/Miss/Evict/Size signals.
	Metrics Metrics
}
