// Package container provides arena-backed growable collections.
//
// [Sequence] is the arena equivalent of a Go slice: push/pop/grow/shrink,
// backed by a [memarena.Adapter] instead of the runtime allocator. Unlike
// the bump-allocator slice this is adapted from, Sequence genuinely
// returns its old backing storage to the arena on [Sequence.Grow] and
// [Sequence.Shrink], because this arena's Alloc/Free (unlike a bump
// arena's Release) actually reclaim the space.
package container

import (
	"unsafe"

	"github.com/vasil-sd/arenagc/internal/debug"
	"github.com/vasil-sd/arenagc/pkg/memarena"
)

// Sequence is a growable, arena-backed sequence of T. A Sequence built by
// [NewSequence] is empty and allocates lazily on the first [Sequence.Push];
// the zero Sequence has no allocator and panics on its first allocation.
type Sequence[T any] struct {
	adapter memarena.Adapter[T]

	ptr              *T
	length, capacity int
}

// NewSequence constructs an empty Sequence allocating out of a.
func NewSequence[T any](a memarena.Allocator) Sequence[T] {
	return Sequence[T]{adapter: memarena.NewAdapter[T](a)}
}

// Len returns the number of elements currently stored.
func (s *Sequence[T]) Len() int { return s.length }

// Cap returns the number of elements the current backing storage can hold
// without growing.
func (s *Sequence[T]) Cap() int { return s.capacity }

// Get returns a pointer to the n-th element. n must be in [0, Len).
func (s *Sequence[T]) Get(n int) *T {
	debug.Require(n >= 0 && n < s.length, "container: index %d out of range [0, %d)", n, s.length)

	return elemAt(s.ptr, n)
}

// raw returns a Go slice over the currently-live elements.
func (s *Sequence[T]) raw() []T {
	if s.ptr == nil {
		return nil
	}

	return unsafe.Slice(s.ptr, s.length)
}

func elemAt[T any](ptr *T, n int) *T {
	var z T

	return (*T)(unsafe.Add(unsafe.Pointer(ptr), n*int(unsafe.Sizeof(z))))
}

// Push appends v, growing the backing storage first if it is already full.
func (s *Sequence[T]) Push(v T) {
	if s.length == s.capacity {
		grow := s.capacity
		if grow == 0 {
			grow = 1
		}

		s.reserve(s.capacity + grow)
	}

	*elemAt(s.ptr, s.length) = v
	s.length++
}

// Pop removes and returns the last element. Fatal if the sequence is
// empty.
func (s *Sequence[T]) Pop() T {
	debug.Require(s.length > 0, "container: Pop called on an empty sequence")

	s.length--

	return *elemAt(s.ptr, s.length)
}

// Empty reports whether the sequence currently holds no elements.
func (s *Sequence[T]) Empty() bool { return s.length == 0 }

// Clear logically empties the sequence without releasing its backing
// storage, so a subsequent Push reuses the existing capacity.
func (s *Sequence[T]) Clear() { s.length = 0 }

// BackingPointer returns the sequence's current backing storage pointer,
// or nil if none has been allocated yet. Unlike [Sequence.Get] this does
// not require the sequence to be non-empty; it is meant for callers that
// need to identify which arena block backs the sequence's storage.
func (s *Sequence[T]) BackingPointer() *T { return s.ptr }

// reserve ensures the backing storage can hold at least n elements,
// allocating a new block, copying live elements across, and freeing the
// old block.
func (s *Sequence[T]) reserve(n int) {
	if n <= s.capacity {
		return
	}

	next := s.adapter.Allocate(n)
	if s.ptr != nil {
		copy(unsafe.Slice(next, n), s.raw())
		s.adapter.Deallocate(s.ptr, s.capacity)
	}

	s.ptr = next
	s.capacity = n
}

// Grow is an explicit form of [Sequence.reserve]: it ensures room for at
// least n more elements than are currently stored.
func (s *Sequence[T]) Grow(n int) {
	s.reserve(s.length + n)
}

// Shrink reallocates the backing storage down to exactly Len elements,
// releasing any spare capacity back to the arena. A no-op if there is no
// spare capacity.
func (s *Sequence[T]) Shrink() {
	if s.capacity == s.length {
		return
	}

	if s.length == 0 {
		if s.ptr != nil {
			s.adapter.Deallocate(s.ptr, s.capacity)
		}

		s.ptr = nil
		s.capacity = 0

		return
	}

	next := s.adapter.Allocate(s.length)
	copy(unsafe.Slice(next, s.length), s.raw())
	s.adapter.Deallocate(s.ptr, s.capacity)

	s.ptr = next
	s.capacity = s.length
}

// Release returns all backing storage to the arena and empties the
// sequence. Equivalent to the sequence's destructor.
func (s *Sequence[T]) Release() {
	if s.ptr != nil {
		s.adapter.Deallocate(s.ptr, s.capacity)
	}

	s.ptr = nil
	s.length = 0
	s.capacity = 0
}
