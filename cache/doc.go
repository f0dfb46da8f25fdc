// Package cache wires the crit-nib index and the replacement policy engine
// into a small volatile in-memory cache over byte keys.
//
// Design
//
//   - Lookups: the index package maps variable-length byte keys to entry
//     records through a compressed 4-bit radix trie. Keys that are byte-wise
//     prefixes of one another cannot coexist; Put rejects the second one
//     with ErrExists.
//
//   - Replacement: the repl package tracks recency. The two components never
//     call each other; the cache links them by handing the same back-
//     reference slot (embedded in its entry record) to both, so the policy
//     can null it on eviction and the cache can observe the entry is gone.
//
//   - Concurrency: one cache mutex serializes Put/Evict orchestration. Get
//     takes only the index read lock plus the policy's lock-free use mark,
//     so cache hits never contend on the eviction order.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Evict/Size signals;
//     NoopMetrics is the default, and metrics/prom provides a Prometheus
//     adapter.
//
// Basic usage
//
//	c := cache.New[[]byte](cache.Options[[]byte]{MaxEntries: 10_000})
//	if err := c.Put([]byte("a"), []byte("1")); err != nil {
//	    // key already cached
//	}
//	if v, ok := c.Get([]byte("a")); ok {
//	    _ = v
//	}
//	c.Evict([]byte("a"))
package cache
