package container_test

import (
	"testing"
	"unsafe"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/vasil-sd/arenagc/pkg/block"
	"github.com/vasil-sd/arenagc/pkg/container"
	"github.com/vasil-sd/arenagc/pkg/memarena"
)

type pair struct {
	a, b int
}

func TestSequenceRoundTrip(t *testing.T) {
	// S6: container round-trip.
	Convey("Given an arena and a sequence of two-int structs", t, func() {
		a := memarena.New(make([]byte, 1<<16))
		s := container.NewSequence[pair](a)

		Convey("When 100 elements are pushed", func() {
			for i := 0; i < 100; i++ {
				s.Push(pair{i, i * 2})
			}

			So(s.Len(), ShouldEqual, 100)

			Convey("And 70 are popped and the sequence is shrunk", func() {
				for i := 0; i < 70; i++ {
					s.Pop()
				}

				s.Shrink()

				Convey("Then occupied size equals the shrunk sequence's footprint exactly", func() {
					So(s.Len(), ShouldEqual, 30)
					So(s.Cap(), ShouldEqual, 30)

					footprint := block.HeaderSize.Add(memarena.Size(s.Cap() * int(unsafe.Sizeof(pair{})))).AlignDefault()
					So(uintptr(footprint) > 0, ShouldBeTrue)
					So(uintptr(a.OccupiedSize()), ShouldEqual, uintptr(footprint))
				})

				Convey("Then after release, the arena is fully free again", func() {
					s.Release()

					So(uintptr(a.OccupiedSize()), ShouldEqual, 0)
					So(uintptr(a.FreeSize()), ShouldEqual, uintptr(a.TotalSize()))
				})
			})
		})
	})
}

func TestSequencePreservesElements(t *testing.T) {
	a := memarena.New(make([]byte, 4096))
	s := container.NewSequence[int](a)

	for i := 0; i < 50; i++ {
		s.Push(i)
	}

	for i := 0; i < 50; i++ {
		if *s.Get(i) != i {
			t.Fatalf("element %d: got %d, want %d", i, *s.Get(i), i)
		}
	}
}
