package repl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// Many goroutines marking the same entry must collapse into one pending
// mark per drain cycle.
func TestRace_UseSameEntry(t *testing.T) {
	p := newLRU(Config[int]{})
	var ra, rb Ref[int]
	p.Insert(1, &ra)
	p.Insert(2, &rb)

	var g errgroup.Group
	for i := 0; i < 64; i++ {
		g.Go(func() error {
			for j := 0; j < 100; j++ {
				p.Use(&ra)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, uint32(1), p.nUsed.Load(), "concurrent marks must collapse")

	// Entry 1 was promoted exactly once, so entry 2 is the victim.
	v, ok := p.Evict(nil)
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

// Concurrent marks across a small buffer force drains to race with claims.
// Every entry must still be evictable exactly once afterwards.
func TestRace_UseWithOverflowingBuffer(t *testing.T) {
	const n = 128
	p := newLRU(Config[int]{BufferSize: 8})
	refs := make([]Ref[int], n)
	for i := 0; i < n; i++ {
		p.Insert(i, &refs[i])
	}

	var g errgroup.Group
	for w := 0; w < 8; w++ {
		w := w
		g.Go(func() error {
			for j := 0; j < 1000; j++ {
				p.Use(&refs[(w*13+j)%n])
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	seen := make(map[int]bool, n)
	for {
		v, ok := p.Evict(nil)
		if !ok {
			break
		}
		require.False(t, seen[v], "entry %d evicted twice", v)
		seen[v] = true
	}
	assert.Len(t, seen, n)
}

// Marks racing targeted and untargeted evictions: slots end up nulled, no
// entry is yielded twice, and dead entries never resurface via the buffer.
func TestRace_UseVersusEvict(t *testing.T) {
	const n = 256
	p := newLRU(Config[int]{BufferSize: 16})
	refs := make([]Ref[int], n)
	for i := 0; i < n; i++ {
		p.Insert(i, &refs[i])
	}

	var g errgroup.Group
	for w := 0; w < 4; w++ {
		w := w
		g.Go(func() error {
			for j := 0; j < 2000; j++ {
				p.Use(&refs[(w*7+j)%n])
			}
			return nil
		})
	}

	evicted := make(chan int, n)
	g.Go(func() error {
		for i := 0; i < n/2; i++ {
			if v, ok := p.Evict(nil); ok {
				evicted <- v
			}
		}
		return nil
	})
	g.Go(func() error {
		for i := 0; i < n; i += 4 {
			if v, ok := p.Evict(&refs[i]); ok {
				evicted <- v
			}
		}
		return nil
	})
	require.NoError(t, g.Wait())
	close(evicted)

	seen := make(map[int]bool, n)
	for v := range evicted {
		require.False(t, seen[v], "entry %d evicted twice", v)
		seen[v] = true
	}
	for i := range refs {
		if seen[i] {
			assert.Nil(t, refs[i].Load(), "evicted entry %d must have a nulled slot", i)
		}
	}
}
