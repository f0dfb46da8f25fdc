package repl

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/nibcache/nibcache/internal/util"
)

// Promoting an entry to the recency-list tail on every access would put one
// lock on every read. Instead Use performs a lock-free claim of the entry
// (wasUsed 0→1), reserves a slot in the fixed used[] buffer via an atomic
// counter, records the entry there and finalizes the claim (1→2). Concurrent
// uses of an already-claimed entry are no-ops, so marks of the same entry
// collapse into one per drain cycle. Only when the buffer overflows does the
// detecting thread take the lock and drain every recorded entry to the list
// tail, amortizing the lock over up to maxUsed accesses.
const (
	flagIdle     uint32 = iota // not marked since the last drain
	flagClaiming               // claim won, slot assignment in progress
	flagRecorded               // recorded in the used[] buffer
)

const defaultBufferSize = 256

// lruPolicy is the least-recently-used policy variant.
type lruPolicy[E any] struct {
	mu         sync.Mutex
	head, tail *Entry[E] // recency order: head = LRU victim

	nUsed     atomic.Uint32
	maxUsed   uint32
	used      []atomic.Pointer[Entry[E]]
	onAcquire func(E)
}

func newLRU[E any](cfg Config[E]) *lruPolicy[E] {
	size := cfg.BufferSize
	if size <= 0 {
		size = defaultBufferSize
	}
	n := uint32(util.NextPow2(uint64(size)))
	return &lruPolicy[E]{
		maxUsed:   n,
		used:      make([]atomic.Pointer[Entry[E]], n),
		onAcquire: cfg.OnAcquire,
	}
}

// Insert registers element at the tail of the recency list (most recently
// used) and publishes the entry through the caller's slot.
func (p *lruPolicy[E]) Insert(element E, slot *Ref[E]) *Entry[E] {
	e := &Entry[E]{data: element, slot: slot}
	slot.p.Store(e)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.onAcquire != nil {
		p.onAcquire(element)
	}
	p.pushTailLocked(e)
	return e
}

// Use marks the referenced element as recently accessed. The fast path is
// lock-free; see the batching comment at the top of the file.
func (p *lruPolicy[E]) Use(slot *Ref[E]) {
	if slot == nil {
		return
	}
	e := slot.p.Load()
	if e == nil {
		return
	}

	if !e.wasUsed.CompareAndSwap(flagIdle, flagClaiming) {
		// Already marked in this drain cycle.
		return
	}
	i := p.usedIndex()
	e.iUsed = i
	p.used[i].Store(e)
	if !e.wasUsed.CompareAndSwap(flagClaiming, flagRecorded) {
		// The claim guarantees exclusivity and the drain never resets an
		// unfinalized claim, so any other state here means the batching
		// protocol is broken. Continuing would corrupt the shared list.
		panic("repl: use flag changed under an exclusive claim")
	}
}

// usedIndex reserves a slot in the pending-use buffer. The thread that
// detects overflow drains the buffer under the lock before retrying.
func (p *lruPolicy[E]) usedIndex() uint32 {
	for {
		i := p.nUsed.Add(1) - 1
		if i < p.maxUsed {
			return i
		}
		p.mu.Lock()
		if p.nUsed.Load() >= p.maxUsed {
			p.drainLocked()
		}
		p.mu.Unlock()
	}
}

// drainLocked promotes every recorded entry to the recency-list tail, in
// buffer order, clearing each one's slot and flag.
func (p *lruPolicy[E]) drainLocked() {
	n := min(p.nUsed.Load(), p.maxUsed)
	for i := uint32(0); i < n; i++ {
		e := p.used[i].Swap(nil)
		if e == nil {
			continue
		}
		// A claimer can still sit between its slot store and its finalize;
		// that gap is one atomic op wide, so spinning across it is bounded.
		for !e.wasUsed.CompareAndSwap(flagRecorded, flagIdle) {
			runtime.Gosched()
		}
		// A mark can also land in the buffer while its entry is being
		// evicted; the slot no longer names the entry then, and it must
		// not be spliced back into the list.
		if e.slot.Load() == e {
			p.moveToTailLocked(e)
		}
	}
	p.nUsed.Store(0)
}

// Evict removes the entry referenced through slot, or the current LRU victim
// when slot is nil. Pending use marks are flushed before an untargeted pick
// so the choice reflects the latest recency information.
func (p *lruPolicy[E]) Evict(slot *Ref[E]) (E, bool) {
	var zero E

	p.mu.Lock()
	defer p.mu.Unlock()

	var e *Entry[E]
	if slot != nil {
		e = slot.p.Load()
	} else {
		if p.nUsed.Load() > 0 {
			p.drainLocked()
		}
		e = p.head
	}
	if e == nil {
		return zero, false
	}

	p.removeLocked(e)

	// The one sanctioned cross-ownership write: null the caller's slot so
	// it can observe that the element is gone.
	e.slot.p.Store(nil)

	// Drop the pending mark, if any, so the drain never touches a dead entry.
	if e.wasUsed.Load() == flagRecorded {
		p.used[e.iUsed].CompareAndSwap(e, nil)
	}
	return e.data, true
}

// Destroy drops every entry still on the list and the pending-use buffer.
// Cached elements are untouched; back-reference slots are not nulled, as
// teardown is not an eviction.
func (p *lruPolicy[E]) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for e := p.head; e != nil; {
		next := e.next
		e.prev, e.next = nil, nil
		e = next
	}
	p.head, p.tail = nil, nil
	for i := range p.used {
		p.used[i].Store(nil)
	}
	p.nUsed.Store(0)
}

// ---- intrusive recency list (mu held) ----

func (p *lruPolicy[E]) pushTailLocked(e *Entry[E]) {
	e.prev = p.tail
	e.next = nil
	if p.tail != nil {
		p.tail.next = e
	} else {
		p.head = e
	}
	p.tail = e
}

func (p *lruPolicy[E]) removeLocked(e *Entry[E]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		p.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		p.tail = e.prev
	}
	e.prev, e.next = nil, nil
}

func (p *lruPolicy[E]) moveToTailLocked(e *Entry[E]) {
	if e == p.tail {
		return
	}
	p.removeLocked(e)
	p.pushTailLocked(e)
}
