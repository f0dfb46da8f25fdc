// Package repl implements replacement policies for a volatile cache.
//
// A Policy maintains an eviction order over opaque cached elements. The
// caller links an element to its policy state through a Ref: a caller-owned
// back-reference slot that the policy fills on Insert and nulls on Evict,
// so the caller can observe "this element is gone" without a lookup.
//
// Two variants are provided: None, which keeps no state and never proposes
// victims, and LRU, which keeps an approximate recency order while staying
// off the policy lock on the access path (see lru.go).
package repl

import "sync/atomic"

// Kind selects a replacement policy variant. The choice is fixed for the
// lifetime of the Policy returned by New.
type Kind int

const (
	// LRU evicts the least recently used element. The zero value of Kind.
	LRU Kind = iota
	// None tracks nothing; the caller evicts by its own means.
	None
)

// Config carries policy construction parameters. The zero value is valid.
type Config[E any] struct {
	// BufferSize is the capacity of the LRU pending-use buffer (rounded up
	// to a power of two). 0 means the default of 256. Ignored by None.
	BufferSize int

	// OnAcquire, when non-nil, is called as the policy begins tracking an
	// element, signaling the memory-reclamation layer that the policy holds
	// a live reference. The matching release on eviction is the caller's
	// responsibility. Called under the policy lock; keep it lightweight.
	OnAcquire func(E)
}

// Policy is the uniform contract of all replacement policy variants.
// All methods are safe for concurrent use.
type Policy[E any] interface {
	// Insert registers a newly cached element and stores its handle into
	// slot. The slot must stay valid until the entry is evicted; it is
	// nulled exactly once, by whichever Evict path removes the entry.
	// None returns nil and leaves the slot untouched.
	Insert(element E, slot *Ref[E]) *Entry[E]

	// Use records that the element referenced through slot was accessed.
	// Cheap enough to call on every cache hit.
	Use(slot *Ref[E])

	// Evict removes the entry referenced through slot and returns its
	// element. A nil slot (or one already nulled) selects the current
	// least-recently-used entry instead, after flushing any pending use
	// marks. Reports false if there is nothing to evict.
	Evict(slot *Ref[E]) (E, bool)

	// Destroy releases every entry still owned by the policy and the policy
	// state itself. It does not touch the cached elements.
	Destroy()
}

// New returns a policy of the given kind.
func New[E any](k Kind, cfg Config[E]) Policy[E] {
	switch k {
	case None:
		return nonePolicy[E]{}
	case LRU:
		return newLRU(cfg)
	default:
		panic("repl: unknown policy kind")
	}
}

// Ref is a caller-owned back-reference slot. The zero value is ready to use.
// Only the policy writes it: Insert fills it, Evict nulls it with a single
// atomic store. Callers may only read it through Load.
type Ref[E any] struct {
	p atomic.Pointer[Entry[E]]
}

// Load returns the policy entry currently tracking the element, or nil once
// the element has been evicted (or was never inserted).
func (r *Ref[E]) Load() *Entry[E] { return r.p.Load() }

// Entry wraps one cached element inside the policy. It is owned by the
// policy and opaque to callers, who only ever hold it through a Ref.
type Entry[E any] struct {
	data E
	slot *Ref[E]

	// Intrusive recency-list links: head = next victim, tail = most
	// recently promoted.
	prev, next *Entry[E]

	// Batched-use bookkeeping, see lru.go.
	wasUsed atomic.Uint32
	iUsed   uint32
}
