package xunsafe

import (
	"math"
	"unsafe"

	"github.com/vasil-sd/arenagc/pkg/xunsafe/layout"
)

// BoundsCheck emulates a bounds check on a slice with the given index and
// length, panicking the same way a real slice index would.
func BoundsCheck(n, length int) {
	dummy := unsafe.Slice(&struct{}{}, length&^math.MinInt)
	_ = dummy[n]
}

// Bytes converts a pointer into a slice over its raw contents.
func Bytes[P ~*E, E any](p P) []byte {
	size := layout.Size[E]()
	return unsafe.Slice(Cast[byte](p), size)
}

// LoadSlice loads the n-th element of s without a bounds check.
func LoadSlice[S ~[]E, E any, I Int](s S, n I) E {
	return Load(unsafe.SliceData(s), n)
}
