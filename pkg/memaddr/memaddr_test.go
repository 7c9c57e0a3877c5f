package memaddr_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"

	"github.com/vasil-sd/arenagc/pkg/memaddr"
)

func TestSize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, memaddr.Size(16), memaddr.Size(10).Add(6))
	assert.Equal(t, memaddr.Size(4), memaddr.Size(10).Sub(6))
	assert.Equal(t, memaddr.Size(16), memaddr.Size(9).AlignDefault())
	assert.Equal(t, memaddr.Size(16), memaddr.Size(16).AlignDefault())
	assert.True(t, memaddr.Size(1).NonZero())
	assert.False(t, memaddr.Zero.NonZero())
}

func TestSizeSubUnderflow(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		memaddr.Size(1).Sub(2)
	})
}

func TestAddrSpace(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 64)
	lo := unsafe.Pointer(&buf[0])
	hi := unsafe.Pointer(&buf[64-1])
	hi = unsafe.Add(hi, 1)

	space := memaddr.NewAddrSpace(lo, hi)
	assert.Equal(t, memaddr.Size(64), space.Size())

	a := space.Address(lo)
	assert.False(t, a.IsNull())
	assert.True(t, a.Equal(space.Lowest()))

	b := a.Add(16)
	assert.True(t, b.Greater(a))
	assert.Equal(t, memaddr.Size(16), memaddr.Distance(a, b))
	assert.True(t, space.Contains(a))
}

func TestAddrSpaceInvalidRange(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 8)
	lo := unsafe.Pointer(&buf[0])

	assert.Panics(t, func() {
		memaddr.NewAddrSpace(lo, lo)
	})
}

func TestAddressAddOnNull(t *testing.T) {
	t.Parallel()

	var a memaddr.Address
	assert.True(t, a.IsNull())
	assert.True(t, a.Add(8).IsNull())
}
