package registry_test

import (
	"testing"
	"unsafe"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"

	"github.com/vasil-sd/arenagc/pkg/gc"
	"github.com/vasil-sd/arenagc/pkg/memarena"
	"github.com/vasil-sd/arenagc/pkg/registry"
)

func TestNamesRegisterLookup(t *testing.T) {
	Convey("Given an arena and a name registry over it", t, func() {
		a := memarena.New(make([]byte, 1<<16))
		n := registry.New(a, a)

		Convey("When a handful of names are registered", func() {
			pa := a.Alloc(16)
			pb := a.Alloc(16)

			n.Register("alpha", pa)
			n.Register("beta", pb)

			Convey("Then each resolves to its own pointer", func() {
				got, ok := n.Lookup("alpha")
				So(ok, ShouldBeTrue)
				So(got, ShouldEqual, pa)

				got, ok = n.Lookup("beta")
				So(ok, ShouldBeTrue)
				So(got, ShouldEqual, pb)
			})

			Convey("And an unregistered name is not found", func() {
				_, ok := n.Lookup("gamma")
				So(ok, ShouldBeFalse)
			})

			Convey("And re-registering a name updates its pointer", func() {
				pa2 := a.Alloc(16)
				n.Register("alpha", pa2)

				got, ok := n.Lookup("alpha")
				So(ok, ShouldBeTrue)
				So(got, ShouldEqual, pa2)
				So(n.Len(), ShouldEqual, 2)
			})

			Convey("And unregistering removes it", func() {
				n.Unregister("alpha")

				_, ok := n.Lookup("alpha")
				So(ok, ShouldBeFalse)
				So(n.Len(), ShouldEqual, 1)
			})
		})
	})
}

func TestNamesGrowsPastInitialCapacity(t *testing.T) {
	a := memarena.New(make([]byte, 1<<20))
	n := registry.New(a, a)

	ptrs := make([]unsafe.Pointer, 64)
	for i := range ptrs {
		ptrs[i] = a.Alloc(8)
	}

	for i, p := range ptrs {
		n.Register(name(i), p)
	}

	assert.Equal(t, 64, n.Len())

	for i, p := range ptrs {
		got, ok := n.Lookup(name(i))
		assert.True(t, ok)
		assert.Equal(t, p, got)
	}
}

func TestRegisterRootMarksAndUnregisterUnmarksGCRoot(t *testing.T) {
	// S4/S5 through the registry's naming layer: a named root keeps its
	// payload alive until the name is unregistered.
	a := memarena.New(make([]byte, 4096))
	g := gc.NewNaive(a)
	n := registry.New(a, a)

	p := a.Alloc(16)
	n.RegisterRoot("singleton", p)

	g.FullGC()
	assert.True(t, uintptr(a.OccupiedSize()) > 0)

	n.UnregisterRoot("singleton")
	g.FullGC()
	assert.Equal(t, memarena.Size(0), a.OccupiedSize())
}

func name(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"

	return string(letters[i%len(letters)]) + string(letters[(i/len(letters))%len(letters)])
}
