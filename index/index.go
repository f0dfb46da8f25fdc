package index

import (
	"bytes"
	"errors"
	"math/bits"
	"sync"
)

// ErrConflict is returned by Insert when the key is already present, or when
// the key and an existing key are byte-wise prefixes of each other (a shape
// the trie cannot represent; see the package comment).
var ErrConflict = errors.New("index: key conflicts with an existing key")

// The radix width in bits. One nibble strikes a good balance between tree
// depth and node size (16 child slots).
const (
	slice   = 4
	nib     = 1<<slice - 1
	slnodes = 1 << slice
)

// leaf holds one indexed entry. The key bytes are borrowed from the caller,
// never copied; the caller must keep them alive while the entry is indexed.
type leaf[V any] struct {
	key   []byte
	value V
}

// node branches on the nibble of the key found at byte offset byteOff,
// shifted by bitShift (4 = high nibble, 0 = low nibble).
type node[V any] struct {
	child    [slnodes]ref[V]
	byteOff  int
	bitShift uint8
}

// ref points at either an internal node or a leaf; at most one field is
// non-nil, and the all-nil ref is an empty child slot. This stands in for
// the classic low-bit pointer tagging, which Go cannot express safely.
type ref[V any] struct {
	n *node[V]
	l *leaf[V]
}

func (r ref[V]) empty() bool { return r.n == nil && r.l == nil }

// sliceIndex extracts the child-slot index for b at the given shift.
func sliceIndex(b byte, sh uint8) int { return int(b>>sh) & nib }

// Index is a concurrent associative container mapping byte-string keys to
// values of type V, built as a compressed 4-bit radix trie. All methods are
// safe for concurrent use by multiple goroutines.
type Index[V any] struct {
	mu   sync.RWMutex
	root ref[V]
	len  int
}

// New returns an empty index.
func New[V any]() *Index[V] {
	return &Index[V]{}
}

// anyLeaf returns some leaf under n. All leaves in a subtree agree on every
// nibble the subtree's ancestors discriminate on, so any one of them works
// as a comparison key for divergence finding.
func anyLeaf[V any](n *node[V]) *leaf[V] {
	for i := range n.child {
		switch c := n.child[i]; {
		case c.l != nil:
			return c.l
		case c.n != nil:
			return anyLeaf(c.n)
		}
	}
	return nil
}

// Insert adds a new key. It never updates an existing entry: inserting a key
// that is already present, or one that is a byte-wise prefix of an existing
// key (or vice versa), fails with ErrConflict and leaves the index unchanged.
// The index keeps a reference to key's bytes; the caller must not mutate
// them while the entry is indexed.
func (ix *Index[V]) Insert(key []byte, value V) error {
	lf := &leaf[V]{key: key, value: value}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.root.empty() {
		ix.root = ref[V]{l: lf}
		ix.len++
		return nil
	}

	// First descent: find a leaf whose key agrees with the new key on every
	// nibble the tree has discriminated on so far. Following the new key's
	// nibbles gets us there; hitting an empty slot means every leaf below
	// the current node shares the relevant prefix, so any of them will do.
	n := ix.root
	for n.n != nil && n.n.byteOff < len(key) {
		c := n.n.child[sliceIndex(key[n.n.byteOff], n.n.bitShift)]
		if c.empty() {
			break
		}
		n = c
	}
	cmp := n.l
	if cmp == nil {
		cmp = anyLeaf(n.n)
	}

	// Find the divergence point, accurate to a byte.
	commonLen := min(len(cmp.key), len(key))
	diff := 0
	for diff < commonLen && cmp.key[diff] == key[diff] {
		diff++
	}
	if diff >= commonLen {
		// Equal keys, or one key is a byte-prefix of the other.
		return ErrConflict
	}

	// Narrow the divergence to a nibble boundary within the differing byte.
	at := cmp.key[diff] ^ key[diff]
	sh := uint8(bits.Len8(at)-1) &^ (slice - 1)

	// Second descent: stop at the first edge whose discriminator does not
	// strictly precede (diff, sh) in root-to-leaf order.
	parent := &ix.root
	n = ix.root
	for n.n != nil && (n.n.byteOff < diff || (n.n.byteOff == diff && n.n.bitShift >= sh)) {
		parent = &n.n.child[sliceIndex(key[n.n.byteOff], n.n.bitShift)]
		n = *parent
	}

	// The divergence nibble may land on an existing node that has a free
	// slot for it; the leaf goes straight in.
	if n.empty() {
		*parent = ref[V]{l: lf}
		ix.len++
		return nil
	}

	// Otherwise splice a new node into the middle of the edge, carrying the
	// old subtree and the new leaf keyed by their nibbles at (diff, sh).
	nn := &node[V]{byteOff: diff, bitShift: sh}
	nn.child[sliceIndex(cmp.key[diff], sh)] = *parent
	nn.child[sliceIndex(key[diff], sh)] = ref[V]{l: lf}
	*parent = ref[V]{n: nn}
	ix.len++
	return nil
}

// Get returns the value stored under key, if any.
func (ix *Index[V]) Get(key []byte) (V, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var zero V
	n := ix.root
	for n.n != nil {
		if n.n.byteOff >= len(key) {
			return zero, false
		}
		n = n.n.child[sliceIndex(key[n.n.byteOff], n.n.bitShift)]
	}
	// The descent checked only the nibbles at divergence points; the whole
	// key has to be re-checked against the leaf.
	if n.l == nil || !bytes.Equal(n.l.key, key) {
		return zero, false
	}
	return n.l.value, true
}

// Remove deletes the entry under key and returns its value. Neither the key
// bytes nor the value are touched beyond dropping the index's references.
func (ix *Index[V]) Remove(key []byte) (V, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	var zero V
	var pp *ref[V]
	parent := &ix.root
	n := ix.root
	for n.n != nil {
		if n.n.byteOff >= len(key) {
			return zero, false
		}
		pp = parent
		parent = &n.n.child[sliceIndex(key[n.n.byteOff], n.n.bitShift)]
		n = *parent
	}
	if n.l == nil || !bytes.Equal(n.l.key, key) {
		return zero, false
	}

	value := n.l.value
	*parent = ref[V]{}
	ix.len--

	if pp == nil { // the leaf was the root
		return value, true
	}

	// If the parent node is left with a single child, shorten the edge by
	// replacing the node with that child.
	var only ref[V]
	for i := range pp.n.child {
		if !pp.n.child[i].empty() {
			if !only.empty() {
				return value, true
			}
			only = pp.n.child[i]
		}
	}
	*pp = only
	return value, true
}

// Len returns the number of entries currently indexed.
func (ix *Index[V]) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.len
}
