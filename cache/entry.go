package cache

import (
	"sync/atomic"

	"github.com/nibcache/nibcache/repl"
)

// entry is the cache-owned record for one resident element: the key bytes
// (the index borrows them from here), the value, and the back-reference
// slot the replacement policy nulls on eviction.
type entry[V any] struct {
	key []byte
	val V

	// ref is written only by the policy: filled on admission, nulled
	// exactly once by whichever eviction path removes the entry.
	ref repl.Ref[*entry[V]]

	// refs counts live references held on the element; the policy takes
	// one while it tracks the entry (via repl.Config.OnAcquire) and the
	// cache releases it on eviction.
	refs atomic.Int32
}
