// Package index implements a concurrent crit-nib radix trie mapping
// variable-length byte keys to values.
//
// Design
//
//   - Structure: a compressed prefix tree branching on 4-bit key slices
//     (nibbles). Each internal node records the (byte offset, bit shift)
//     position of its discriminating nibble and holds 16 child slots;
//     nodes that only one key would pass through are elided, so lookups
//     cost O(key length) nibble reads in the worst case and far fewer in
//     practice.
//
//   - Ownership: the index owns its nodes and leaf records but borrows the
//     key bytes from the caller and treats values as opaque. Removing an
//     entry only drops the index's references.
//
//   - Concurrency: a single RWMutex serializes structural mutation; Get
//     takes the read lock, Insert and Remove the write lock, each held for
//     the whole operation.
//
// Limitation: two keys where one is a byte-wise prefix of the other cannot
// both be stored: the trie has no nibble position to tell them apart, so
// the second Insert fails with ErrConflict. Callers whose key space allows
// prefix pairs should length-prefix the keys.
package index
