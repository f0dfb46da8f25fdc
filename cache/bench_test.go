package cache

import (
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
)

// benchmarkMix exercises a read/write mix against a warm cache.
// It uses parallel workers (RunParallel spawns GOMAXPROCS goroutines).
// Fixed-width keys keep the trie free of prefix conflicts and make the
// formatting cost uniform across operations.
func benchmarkMix(b *testing.B, readsPct int) {
	c := New[[]byte](Options[[]byte]{MaxEntries: 100_000})
	b.Cleanup(func() { _ = c.Close() })

	val := []byte("v")
	for i := 0; i < 50_000; i++ {
		_ = c.Put([]byte(fmt.Sprintf("k:%08d", i)), val)
	}

	b.ReportAllocs()
	b.ResetTimer()

	var seed int64 = 1
	keyMask := (1 << 16) - 1 // hot keyspace (power of two for fast &-mask)

	b.RunParallel(func(pb *testing.PB) {
		// Independent RNG stream for each worker.
		r := rand.New(rand.NewSource(atomic.AddInt64(&seed, 1)))
		i := 0
		for pb.Next() {
			k := []byte(fmt.Sprintf("k:%08d", i&keyMask))
			if r.Intn(100) < readsPct {
				c.Get(k)
			} else if err := c.Put(k, val); err != nil {
				// Already resident: count as a touch instead.
				c.Get(k)
			}
			i++
		}
	})
}

func BenchmarkCache_90r10w(b *testing.B) { benchmarkMix(b, 90) }
func BenchmarkCache_50r50w(b *testing.B) { benchmarkMix(b, 50) }

// BenchmarkCache_EvictLRU measures the policy-victim path with pending
// marks to drain.
func BenchmarkCache_EvictLRU(b *testing.B) {
	c := New[int](Options[int]{})
	b.Cleanup(func() { _ = c.Close() })

	keys := make([][]byte, 0, 4096)
	for i := 0; i < 4096; i++ {
		k := []byte(fmt.Sprintf("k:%08d", i))
		keys = append(keys, k)
		_ = c.Put(k, i)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !c.EvictLRU() {
			b.StopTimer()
			for _, k := range keys {
				_ = c.Put(k, 0)
			}
			b.StartTimer()
		} else {
			c.Get(keys[i%len(keys)])
		}
	}
}
