// Package xunsafe provides a more convenient interface for performing
// unsafe pointer operations than Go's built-in package unsafe.
//
// It underlies the arena's block header and Address/Size types: block
// headers are placed in-place inside a caller-supplied []byte by casting a
// raw address into a *Block, the same trick this package's Cast/Addr
// machinery is built for.
package xunsafe

import (
	"sync"
	"unsafe"
)

// NoCopy is a type that go vet will complain about having been copied.
//
// It does so by being a zero-length array of [sync.Mutex], which vet's
// copylocks check treats as a lock.
type NoCopy [0]sync.Mutex

// BitCast performs an unsafe bitcast from one type to another.
func BitCast[To, From any](v From) To {
	return *(*To)(unsafe.Pointer(&v))
}
