package block_test

import (
	"testing"
	"unsafe"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/vasil-sd/arenagc/pkg/block"
	"github.com/vasil-sd/arenagc/pkg/memaddr"
)

func TestBlock(t *testing.T) {
	Convey("Given a 256-byte region", t, func() {
		buf := make([]byte, 256)
		lo := unsafe.Pointer(&buf[0])
		hi := unsafe.Add(lo, len(buf))
		space := memaddr.NewAddrSpace(lo, hi)
		addr := space.Lowest()

		Convey("When a block is constructed over the whole region", func() {
			b := block.MakeAt(addr, space.Size())

			Convey("Then it is free and unlinked", func() {
				So(b.IsFree(), ShouldBeTrue)
				So(b.HasNext(), ShouldBeFalse)
				So(b.HasPrev(), ShouldBeFalse)
			})

			Convey("Then its size is 8-byte aligned", func() {
				So(uintptr(b.Size())%8, ShouldEqual, 0)
			})

			Convey("Then it is splittable", func() {
				So(b.Splittable(), ShouldBeTrue)
			})

			Convey("Then NextBlockAddress is size bytes past its own address", func() {
				So(b.NextBlockAddress().Equal(b.Address().Add(b.Size())), ShouldBeTrue)
			})

			Convey("Then user data round-trips back to the same block", func() {
				u := b.ToUserData()
				So(block.FromUserData(u), ShouldEqual, b)
			})

			Convey("Then At recovers the same header from its address", func() {
				So(block.At(b.Address()), ShouldEqual, b)
			})
		})
	})
}
