// Package memaddr provides typed wrappers around raw arena pointers: a
// bounds-checked [Address], an underflow-checked [Size], and the immutable
// [AddrSpace] that produces addresses from raw pointers after a bounds
// check.
//
// Addresses and sizes are value types; neither owns memory. They exist so
// that the rest of this module never touches unsafe.Pointer or uintptr
// directly outside of this package and [github.com/vasil-sd/arenagc/pkg/xunsafe].
package memaddr

import (
	"fmt"
	"unsafe"

	"github.com/vasil-sd/arenagc/internal/debug"
	"github.com/vasil-sd/arenagc/pkg/xunsafe"
	"github.com/vasil-sd/arenagc/pkg/xunsafe/layout"
)

// DefaultAlign is the alignment [Size.AlignDefault] rounds up to.
const DefaultAlign = 8

// Size is a non-negative byte count.
type Size uintptr

// Zero and Max are the smallest and largest representable sizes.
const (
	Zero Size = 0
	Max  Size = ^Size(0)
)

// Add returns s + o.
func (s Size) Add(o Size) Size { return s + o }

// Sub returns s - o. Subtracting a larger size is a contract violation.
func (s Size) Sub(o Size) Size {
	debug.Require(s >= o, "size underflow: %d - %d", s, o)

	return s - o
}

// Align rounds s up to a multiple of alignment, a power of two.
func (s Size) Align(alignment Size) Size {
	return Size(layout.RoundUp(uintptr(s), uintptr(alignment)))
}

// AlignDefault rounds s up to a multiple of [DefaultAlign].
func (s Size) AlignDefault() Size {
	return s.Align(DefaultAlign)
}

// NonZero reports whether s is greater than zero.
func (s Size) NonZero() bool { return s != Zero }

// String implements [fmt.Stringer].
func (s Size) String() string { return fmt.Sprintf("%d bytes", uintptr(s)) }

// Address is an opaque handle wrapping a raw pointer that lies within some
// [AddrSpace]'s bounds. Addresses are value-copyable and carry no
// ownership; offsetting the null address is a no-op.
type Address struct {
	addr xunsafe.Addr[byte]
}

// addressOf wraps a raw pointer with no bounds check; only [AddrSpace]
// should call this directly.
func addressOf(p unsafe.Pointer) Address {
	return Address{xunsafe.Addr[byte](uintptr(p))}
}

// Of wraps a raw pointer as an [Address] with no bounds check. Most callers
// should go through [AddrSpace.Address] instead; Of exists for code (such
// as the block header) that already knows its pointer lies in-arena
// because the arena itself produced it.
func Of(p unsafe.Pointer) Address {
	return addressOf(p)
}

// IsNull reports whether a is the null address.
func (a Address) IsNull() bool { return a.addr == 0 }

// Ptr converts a back into a raw pointer. The caller asserts that the
// memory it refers to is still live.
func (a Address) Ptr() unsafe.Pointer {
	if a.IsNull() {
		return nil
	}

	return unsafe.Pointer(a.addr.AssertValid())
}

// Add returns a offset by s bytes. Offsetting the null address yields the
// null address.
func (a Address) Add(s Size) Address {
	if a.IsNull() {
		return a
	}

	return Address{a.addr.ByteAdd(int(s))}
}

// Sub returns a offset backward by s bytes. Offsetting the null address
// yields the null address.
func (a Address) Sub(s Size) Address {
	if a.IsNull() {
		return a
	}

	return Address{a.addr.ByteAdd(-int(s))}
}

// Equal, Less, LessEqual, Greater, and GreaterEqual compare two addresses
// by their underlying pointer value.
func (a Address) Equal(b Address) bool        { return a.addr == b.addr }
func (a Address) Less(b Address) bool         { return a.addr < b.addr }
func (a Address) LessEqual(b Address) bool    { return a.addr <= b.addr }
func (a Address) Greater(b Address) bool      { return a.addr > b.addr }
func (a Address) GreaterEqual(b Address) bool { return a.addr >= b.addr }

// String implements [fmt.Stringer].
func (a Address) String() string { return a.addr.String() }

// Distance returns upper - lower as a [Size]. Both addresses must be
// non-null and lower must not come after upper.
func Distance(lower, upper Address) Size {
	debug.Require(!lower.IsNull() && !upper.IsNull(), "distance between null addresses")
	debug.Require(lower.LessEqual(upper), "distance: lower address %v is after upper %v", lower, upper)

	return Size(upper.addr.ByteSub(lower.addr))
}

// AddrSpace is an immutable half-open range [lowest, highest) over which
// addresses may be constructed from raw pointers.
type AddrSpace struct {
	lowest, highest Address
}

// NewAddrSpace constructs the address space [lowest, highest). lowest must
// be non-null and strictly below highest.
func NewAddrSpace(lowest, highest unsafe.Pointer) AddrSpace {
	lo, hi := addressOf(lowest), addressOf(highest)

	debug.Require(!lo.IsNull(), "address space: lowest bound is null")
	debug.Require(lo.Less(hi), "address space: lowest %v must be below highest %v", lo, hi)

	return AddrSpace{lo, hi}
}

// Lowest and Highest return the bounds of the space.
func (s AddrSpace) Lowest() Address  { return s.lowest }
func (s AddrSpace) Highest() Address { return s.highest }

// Size returns the number of bytes spanned by the space.
func (s AddrSpace) Size() Size { return Distance(s.lowest, s.highest) }

// Null returns the null address.
func (s AddrSpace) Null() Address { return Address{} }

// Address bounds-checks p against the space and returns the [Address]
// wrapping it. p must lie in [lowest, highest]; a contract violation
// otherwise.
func (s AddrSpace) Address(p unsafe.Pointer) Address {
	a := addressOf(p)

	debug.Require(a.GreaterEqual(s.lowest), "address %v below arena lowest bound %v", a, s.lowest)
	debug.Require(a.LessEqual(s.highest), "address %v above arena highest bound %v", a, s.highest)

	return a
}

// Contains reports whether a lies in [lowest, highest).
func (s AddrSpace) Contains(a Address) bool {
	return a.GreaterEqual(s.lowest) && a.Less(s.highest)
}
