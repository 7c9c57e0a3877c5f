//go:build go1.20

package xunsafe

import (
	"fmt"
	"math/bits"
	"unsafe"

	"github.com/vasil-sd/arenagc/pkg/xunsafe/layout"
)

// Addr is an untyped, GC-invisible address: a uintptr that happens to point
// at a T. Because it carries no pointer-ness, storing an Addr in a struct
// generates no write barriers and does not keep its target alive — the
// target's lifetime must be pinned some other way (typically by the arena
// that owns the memory it points into).
//
// This is the substrate the arena's Address/Size types and the block header
// are built on: arena memory is addressed by Addr[byte], scaled arithmetic
// by Addr[T] for typed containers.
type Addr[T any] uintptr

// AddrOf returns the address of p.
func AddrOf[T any](p *T) Addr[T] {
	return Addr[T](uintptr(unsafe.Pointer(p)))
}

// EndOf returns the address one past the end of s.
func EndOf[T any](s []T) Addr[T] {
	return AddrOf(unsafe.SliceData(s)).Add(len(s))
}

// AssertValid converts this address back into a pointer.
//
// The caller asserts that the memory this address refers to is still live;
// Addr itself does nothing to guarantee this.
func (a Addr[T]) AssertValid() *T {
	return (*T)(unsafe.Pointer(uintptr(a))) //nolint:govet
}

// Add adds n*sizeof(T) to a.
func (a Addr[T]) Add(n int) Addr[T] {
	size := layout.Size[T]()
	return Addr[T](uintptr(a) + uintptr(n)*uintptr(size))
}

// ByteAdd adds n unscaled bytes to a.
func (a Addr[T]) ByteAdd(n int) Addr[T] {
	return Addr[T](uintptr(a) + uintptr(n))
}

// Sub computes (a-b)/sizeof(T).
func (a Addr[T]) Sub(b Addr[T]) int {
	size := layout.Size[T]()
	return int(uintptr(a)-uintptr(b)) / size
}

// ByteSub computes the unscaled byte difference a-b.
func (a Addr[T]) ByteSub(b Addr[T]) int {
	return int(uintptr(a) - uintptr(b))
}

// Padding returns the number of bytes needed to round a up to align, a power
// of two.
func (a Addr[T]) Padding(align int) int {
	return int(layout.Padding(uintptr(a), uintptr(align)))
}

// RoundUpTo rounds a up to a multiple of align, a power of two.
func (a Addr[T]) RoundUpTo(align int) Addr[T] {
	return Addr[T](layout.RoundUp(uintptr(a), uintptr(align)))
}

// SignBit returns the value of a's most significant bit.
func (a Addr[T]) SignBit() bool {
	return uintptr(a)&(1<<(bits.UintSize-1)) != 0
}

// SignBitMask returns all-ones if a's sign bit is set, all-zeros otherwise.
func (a Addr[T]) SignBitMask() Addr[T] {
	if a.SignBit() {
		return Addr[T](^uintptr(0))
	}

	return Addr[T](0)
}

// ClearSignBit returns a with its most significant bit cleared.
func (a Addr[T]) ClearSignBit() Addr[T] {
	return Addr[T](uintptr(a) &^ (1 << (bits.UintSize - 1)))
}

// String implements [fmt.Stringer].
func (a Addr[T]) String() string {
	return fmt.Sprintf("%#x", uintptr(a))
}

// Format implements [fmt.Formatter], so that %x/%X print the raw hex digits
// (as for any other integer) instead of hex-dumping [Addr.String]'s bytes.
func (a Addr[T]) Format(s fmt.State, verb rune) {
	switch verb {
	case 'x':
		_, _ = fmt.Fprintf(s, "%x", uintptr(a))
	case 'X':
		_, _ = fmt.Fprintf(s, "%X", uintptr(a))
	default:
		_, _ = fmt.Fprintf(s, "%#x", uintptr(a))
	}
}
