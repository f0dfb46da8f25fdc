package cache

import (
	"bytes"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/nibcache/nibcache/index"
	"github.com/nibcache/nibcache/internal/util"
	"github.com/nibcache/nibcache/repl"
)

var (
	// ErrExists is returned by Put for a key that is already cached, or one
	// that is a byte-wise prefix of a cached key (or vice versa).
	ErrExists = errors.New("cache: key already cached")
	// ErrClosed is returned by Put after Close.
	ErrClosed = errors.New("cache: closed")
)

// cache wires a crit-nib index and a replacement policy together through a
// shared per-entry back-reference slot.
type cache[V any] struct {
	// mu serializes admission and eviction orchestration. Get stays off it:
	// lookups take only the index read lock, and the LRU use mark is
	// lock-free.
	mu  sync.Mutex
	idx *index.Index[*entry[V]]
	pol repl.Policy[*entry[V]]

	closed atomic.Bool
	opt    Options[V]

	// ---- hot counters (separate cache lines to avoid false sharing) ----
	_      util.CacheLinePad
	hits   util.PaddedAtomicInt64
	misses util.PaddedAtomicInt64
	evicts util.PaddedAtomicUint64
}

// New constructs a cache with the provided Options.
func New[V any](opt Options[V]) Cache[V] {
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	c := &cache[V]{
		idx: index.New[*entry[V]](),
		opt: opt,
	}
	c.pol = repl.New(opt.Policy, repl.Config[*entry[V]]{
		BufferSize: opt.ReplBuffer,
		OnAcquire:  func(e *entry[V]) { e.refs.Add(1) },
	})
	return c
}

// Put inserts key→v only if key is not cached, then evicts policy victims
// until the cache fits under MaxEntries.
func (c *cache[V]) Put(key []byte, v V) error {
	if c.closed.Load() {
		return ErrClosed
	}
	e := &entry[V]{key: bytes.Clone(key), val: v}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.idx.Insert(e.key, e); err != nil {
		return ErrExists
	}
	c.pol.Insert(e, &e.ref)

	if c.opt.MaxEntries > 0 {
		for c.idx.Len() > c.opt.MaxEntries {
			if !c.evictVictimLocked(EvictCapacity) {
				break
			}
		}
	}
	c.opt.Metrics.Size(c.idx.Len())
	return nil
}

// Get returns the value cached under key and marks the entry as used.
func (c *cache[V]) Get(key []byte) (V, bool) {
	var zero V
	if c.closed.Load() {
		return zero, false
	}
	e, ok := c.idx.Get(key)
	if !ok {
		c.misses.Add(1)
		c.opt.Metrics.Miss()
		return zero, false
	}
	c.pol.Use(&e.ref)
	c.hits.Add(1)
	c.opt.Metrics.Hit()
	return e.val, true
}

// Evict removes the entry under key, if any.
func (c *cache[V]) Evict(key []byte) bool {
	if c.closed.Load() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.idx.Remove(key)
	if !ok {
		return false
	}
	// Targeted policy eviction nulls e.ref; with the None policy there is
	// no tracked entry and nothing to release.
	if _, tracked := c.pol.Evict(&e.ref); tracked {
		e.refs.Add(-1)
	}
	c.noteEvictLocked(e, EvictExplicit)
	return true
}

// EvictLRU removes the policy's current victim.
func (c *cache[V]) EvictLRU() bool {
	if c.closed.Load() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictVictimLocked(EvictPolicy)
}

// evictVictimLocked asks the policy for a victim and drops it from the index.
func (c *cache[V]) evictVictimLocked(reason EvictReason) bool {
	e, ok := c.pol.Evict(nil)
	if !ok {
		return false
	}
	e.refs.Add(-1)
	c.idx.Remove(e.key)
	c.noteEvictLocked(e, reason)
	return true
}

func (c *cache[V]) noteEvictLocked(e *entry[V], reason EvictReason) {
	c.evicts.Add(1)
	c.opt.Metrics.Evict(reason)
	c.opt.Metrics.Size(c.idx.Len())
	if cb := c.opt.OnEvict; cb != nil {
		cb(e.key, e.val, reason)
	}
}

// Len returns the number of resident entries.
func (c *cache[V]) Len() int { return c.idx.Len() }

// Stats returns the lifetime hit, miss and eviction counts.
func (c *cache[V]) Stats() (hits, misses int64, evicts uint64) {
	return c.hits.Load(), c.misses.Load(), c.evicts.Load()
}

// Close marks the cache closed and releases policy state.
func (c *cache[V]) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pol.Destroy()
	return nil
}
