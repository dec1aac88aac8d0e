package converter

import (
	"iter"

	"github.com/Faultbox/ketsji/internal/arena"
	"github.com/Faultbox/ketsji/pkg/library"
)

// registry owns converted values in an arena and indexes them by the
// stable ID of the datablock they came from.
type registry[T comparable] struct {
	items arena.Arena[T]
	index map[library.ID]arena.Handle
}

func newRegistry[T comparable]() *registry[T] {
	return &registry[T]{index: make(map[library.ID]arena.Handle)}
}

// register stores v. Values without an ID are owned but not indexed. A
// later registration of the same ID takes over the index entry.
func (r *registry[T]) register(id library.ID, v T) {
	h := r.items.Insert(v)
	if !id.IsZero() {
		r.index[id] = h
	}
}

func (r *registry[T]) find(id library.ID) (T, bool) {
	h, ok := r.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return r.items.Get(h)
}

// unregister drops id only while it still maps to v.
func (r *registry[T]) unregister(id library.ID, v T) bool {
	h, ok := r.index[id]
	if !ok {
		return false
	}
	if cur, ok := r.items.Get(h); !ok || cur != v {
		return false
	}
	delete(r.index, id)
	r.items.Remove(h)
	return true
}

func (r *registry[T]) all() iter.Seq2[arena.Handle, T] { return r.items.All() }

func (r *registry[T]) len() int { return r.items.Len() }

func (r *registry[T]) clear() {
	r.items.Clear()
	clear(r.index)
}
