package memarena

import "unsafe"

// Allocator is the minimal interface an [Arena] satisfies, so code that
// only needs alloc/free need not depend on the concrete type.
type Allocator interface {
	// Alloc allocates size bytes and returns a pointer to the block.
	Alloc(size int) unsafe.Pointer

	// Free returns a pointer previously returned by Alloc to the allocator.
	Free(p unsafe.Pointer)

	// FreeSize returns the number of bytes currently available to satisfy
	// a future Alloc.
	FreeSize() Size
}

// Adapter is a thin, rebindable value type that lets a generic container
// allocate values of T from an [Arena] without depending on [Arena]
// itself. It holds no mutable state of its own — just a reference to the
// arena it was constructed over — and is the sole mechanism by which
// external containers (see
// [github.com/vasil-sd/arenagc/pkg/container]) obtain memory.
type Adapter[T any] struct {
	arena Allocator
}

// NewAdapter constructs an Adapter allocating out of a.
func NewAdapter[T any](a Allocator) Adapter[T] {
	return Adapter[T]{arena: a}
}

// Rebind converts an Adapter[T] over the same underlying arena into an
// Adapter[U], the Go equivalent of the C++ allocator rebind-constructor.
func Rebind[U, T any](a Adapter[T]) Adapter[U] {
	return Adapter[U]{arena: a.arena}
}

// Allocate allocates room for n values of T and returns a pointer to the
// first one.
func (a Adapter[T]) Allocate(n int) *T {
	var z T

	size := int(unsafe.Sizeof(z)) * n

	return (*T)(a.arena.Alloc(size))
}

// Deallocate returns a pointer previously returned by Allocate to the
// arena. n is unused by the underlying [Arena] (block size is recovered
// from its header) but kept to match the adapter contract generic
// containers expect.
func (a Adapter[T]) Deallocate(p *T, n int) {
	_ = n

	a.arena.Free(unsafe.Pointer(p))
}

// MaxSize returns the number of free bytes currently available from the
// underlying arena.
func (a Adapter[T]) MaxSize() Size {
	return a.arena.FreeSize()
}
