package cache

import (
	"bytes"
	"errors"
	"testing"
)

// Fuzz basic Put/Get/Evict semantics under arbitrary byte keys.
// Guards against panics and ensures core invariants hold.
func FuzzCache_PutGetEvict(f *testing.F) {
	f.Add([]byte(""), []byte(""))
	f.Add([]byte("a"), []byte("1"))
	f.Add([]byte{0x00, 0xff, 0x0f}, []byte("bin"))
	f.Add([]byte("αβγ"), []byte("δ"))
	f.Add(bytes.Repeat([]byte("x"), 1024), []byte("long"))

	f.Fuzz(func(t *testing.T, k, v []byte) {
		// Cap key length to keep trie depth bounded during fuzzing.
		const limit = 1 << 12
		if len(k) > limit {
			k = k[:limit]
		}

		c := New[[]byte](Options[[]byte]{})
		t.Cleanup(func() { _ = c.Close() })

		// Put -> Get must return the same value.
		if err := c.Put(k, v); err != nil {
			t.Fatalf("Put into empty cache: %v", err)
		}
		got, ok := c.Get(k)
		if !ok || !bytes.Equal(got, v) {
			t.Fatalf("after Put/Get: want %q, got %q ok=%v", v, got, ok)
		}

		// A duplicate Put must fail and not overwrite.
		if err := c.Put(k, []byte("other")); !errors.Is(err, ErrExists) {
			t.Fatalf("duplicate Put: want ErrExists, got %v", err)
		}
		if got2, ok := c.Get(k); !ok || !bytes.Equal(got2, v) {
			t.Fatalf("after duplicate Put: want %q, got %q ok=%v", v, got2, ok)
		}

		// An extended key is a prefix conflict, never a silent corruption.
		if err := c.Put(append(bytes.Clone(k), 0x41), v); !errors.Is(err, ErrExists) {
			t.Fatalf("prefix Put: want ErrExists, got %v", err)
		}

		// Evict must delete and report true exactly once.
		if !c.Evict(k) {
			t.Fatal("Evict must return true")
		}
		if _, ok := c.Get(k); ok {
			t.Fatal("key must be absent after Evict")
		}
		if c.Evict(k) {
			t.Fatal("second Evict must return false")
		}

		// After eviction, Put succeeds again.
		if err := c.Put(k, v); err != nil {
			t.Fatalf("Put after Evict: %v", err)
		}
	})
}
