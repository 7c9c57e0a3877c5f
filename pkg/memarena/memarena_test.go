package memarena_test

import (
	"testing"
	"unsafe"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"

	"github.com/vasil-sd/arenagc/pkg/block"
	"github.com/vasil-sd/arenagc/pkg/memarena"
)

// blockCount returns the current chain length.
func blockCount(t *testing.T, a *memarena.Arena) int {
	t.Helper()

	n := 0
	a.ForAllBlocks(func(*block.Block) bool {
		n++

		return true
	})

	return n
}

func TestSplitThenCoalesceRoundTrip(t *testing.T) {
	// S1: split then coalesce round trip.
	Convey("Given a 512-byte arena", t, func() {
		a := memarena.New(make([]byte, 512))

		Convey("When 16 bytes are allocated", func() {
			p := a.Alloc(16)

			Convey("Then the chain has at least two blocks", func() {
				So(blockCount(t, a), ShouldBeGreaterThanOrEqualTo, 2)
			})

			Convey("When the allocation is freed", func() {
				a.Free(p)

				Convey("Then the chain returns to a single free block", func() {
					So(blockCount(t, a), ShouldEqual, 1)
					So(uintptr(a.OccupiedSize()), ShouldEqual, 0)
					So(uintptr(a.TotalSize()), ShouldEqual, 512)
				})
			})
		})
	})
}

func TestBestFitBySize(t *testing.T) {
	// S2: best-fit by size, not first-fit. The three candidate free blocks
	// are separated by occupied buffer blocks so that freeing them does not
	// coalesce them back into one.
	Convey("Given an arena with free blocks of size 64, 96, and 128", t, func() {
		a := memarena.New(make([]byte, 512))

		h := int(block.HeaderSize)

		a.Alloc(8) // occupied buffer, kept allocated
		p64 := a.Alloc(64 - h)
		a.Alloc(8)
		p96 := a.Alloc(96 - h)
		a.Alloc(8)
		p128 := a.Alloc(128 - h)
		a.Alloc(512 - 3*(8+h) - 64 - 96 - 128 - h) // occupied remainder

		a.Free(p64)
		a.Free(p96)
		a.Free(p128)

		Convey("When a request that fits 96 but not 64 is made", func() {
			chosen := a.Alloc(72 - h)

			Convey("Then it is carved from the 96-byte block, not the 128-byte one", func() {
				So(chosen, ShouldEqual, p96)
			})
		})
	})
}

func TestDoubleFreeIsFatal(t *testing.T) {
	// S3: double-free detection.
	a := memarena.New(make([]byte, 256))
	p := a.Alloc(32)
	a.Free(p)

	assert.Panics(t, func() {
		a.Free(p)
	})
}

func TestAllocOutOfMemoryIsFatal(t *testing.T) {
	a := memarena.New(make([]byte, 64))

	assert.Panics(t, func() {
		a.Alloc(1 << 20)
	})
}

func TestFreeOfUnownedAddressIsFatal(t *testing.T) {
	a := memarena.New(make([]byte, 64))

	var x int

	assert.Panics(t, func() {
		a.Free(unsafe.Pointer(&x))
	})
}

func TestArenaStaysStructurallyValid(t *testing.T) {
	a := memarena.New(make([]byte, 1024))

	ptrs := make([]unsafe.Pointer, 0, 8)
	for i := 0; i < 8; i++ {
		ptrs = append(ptrs, a.Alloc(16*(i+1)))
		assert.True(t, a.Valid())
	}

	for _, p := range ptrs {
		a.Free(p)
		assert.True(t, a.Valid())
	}

	assert.Equal(t, memarena.Size(0), a.OccupiedSize())
	assert.Equal(t, a.TotalSize(), a.FreeSize())
}
