// Package arena provides a generational arena: values are stored densely and
// addressed through stable handles that detect reuse of their slot.
package arena

import "iter"

// Handle identifies a value stored in an Arena.
// The zero Handle is never returned by Insert.
type Handle struct {
	slot uint32
	gen  uint32
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h.gen == 0 }

// slot maps a handle to its dense position.
type slot struct {
	data int // index into Arena.data, -1 when free
	gen  uint32
}

// entry is what an Arena stores densely.
type entry[T any] struct {
	value T
	slot  uint32
}

// Arena stores values of type T.
// The zero value is an empty arena ready to use.
type Arena[T any] struct {
	slots []slot
	free  []uint32
	data  []entry[T]
}

// Insert stores v and returns its handle.
func (a *Arena[T]) Insert(v T) Handle {
	var s uint32
	if n := len(a.free); n > 0 {
		s = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		s = uint32(len(a.slots))
		a.slots = append(a.slots, slot{})
	}
	a.slots[s].gen++
	if a.slots[s].gen == 0 {
		// Wrapped; skip the zero generation.
		a.slots[s].gen = 1
	}
	a.slots[s].data = len(a.data)
	a.data = append(a.data, entry[T]{v, s})
	return Handle{slot: s, gen: a.slots[s].gen}
}

// Get returns the value identified by h.
// It reports false if h was removed or never belonged to a.
func (a *Arena[T]) Get(h Handle) (T, bool) {
	if !a.valid(h) {
		var zero T
		return zero, false
	}
	return a.data[a.slots[h.slot].data].value, true
}

// Set replaces the value identified by h.
func (a *Arena[T]) Set(h Handle, v T) bool {
	if !a.valid(h) {
		return false
	}
	a.data[a.slots[h.slot].data].value = v
	return true
}

// Remove deletes the value identified by h and returns it.
// The last value is moved into the freed position.
func (a *Arena[T]) Remove(h Handle) (T, bool) {
	var zero T
	if !a.valid(h) {
		return zero, false
	}
	d := a.slots[h.slot].data
	v := a.data[d].value
	last := len(a.data) - 1
	if d < last {
		a.data[d] = a.data[last]
		a.slots[a.data[d].slot].data = d
	}
	a.data[last] = entry[T]{}
	a.data = a.data[:last]
	a.slots[h.slot].data = -1
	a.free = append(a.free, h.slot)
	return v, true
}

// Contains reports whether h identifies a live value.
func (a *Arena[T]) Contains(h Handle) bool { return a.valid(h) }

// Len returns the number of stored values.
func (a *Arena[T]) Len() int { return len(a.data) }

// All iterates over the stored values in storage order.
// The arena must not be modified during iteration.
func (a *Arena[T]) All() iter.Seq2[Handle, T] {
	return func(yield func(Handle, T) bool) {
		for _, e := range a.data {
			if !yield(Handle{slot: e.slot, gen: a.slots[e.slot].gen}, e.value) {
				return
			}
		}
	}
}

// Clear removes every value. Handles issued before Clear become invalid.
func (a *Arena[T]) Clear() {
	for i := range a.slots {
		if a.slots[i].data >= 0 {
			a.slots[i].data = -1
			a.free = append(a.free, uint32(i))
		}
	}
	clear(a.data)
	a.data = a.data[:0]
}

func (a *Arena[T]) valid(h Handle) bool {
	if h.gen == 0 || int(h.slot) >= len(a.slots) {
		return false
	}
	s := a.slots[h.slot]
	return s.gen == h.gen && s.data >= 0
}
