package index

import (
	"fmt"
	"testing"
)

func benchKeys(n int) [][]byte {
	keys := make([][]byte, n)
	for i := range keys {
		keys[i] = []byte(fmt.Sprintf("bench-key-%08d", i))
	}
	return keys
}

func BenchmarkIndex_Get(b *testing.B) {
	keys := benchKeys(100_000)
	ix := New[int]()
	for i, k := range keys {
		if err := ix.Insert(k, i); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			ix.Get(keys[i%len(keys)])
			i++
		}
	})
}

func BenchmarkIndex_Insert(b *testing.B) {
	keys := benchKeys(100_000)

	b.ReportAllocs()
	b.ResetTimer()
	var ix *Index[int]
	for i := 0; i < b.N; i++ {
		// Start over once the keyspace is exhausted; the reset is cheap
		// relative to the batch it amortizes over.
		if i%len(keys) == 0 {
			ix = New[int]()
		}
		_ = ix.Insert(keys[i%len(keys)], i)
	}
}

func BenchmarkIndex_Remove(b *testing.B) {
	keys := benchKeys(100_000)

	b.ReportAllocs()
	b.ResetTimer()
	var ix *Index[int]
	for i := 0; i < b.N; i++ {
		if i%len(keys) == 0 {
			b.StopTimer()
			ix = New[int]()
			for j, k := range keys {
				_ = ix.Insert(k, j)
			}
			b.StartTimer()
		}
		ix.Remove(keys[i%len(keys)])
	}
}
