package repl

// nonePolicy keeps no replacement state at all. Every operation is a no-op
// and eviction never yields a victim; the caller evicts by its own means.
type nonePolicy[E any] struct{}

func (nonePolicy[E]) Insert(E, *Ref[E]) *Entry[E] { return nil }

func (nonePolicy[E]) Use(*Ref[E]) {}

func (nonePolicy[E]) Evict(*Ref[E]) (E, bool) {
	var zero E
	return zero, false
}

func (nonePolicy[E]) Destroy() {}
