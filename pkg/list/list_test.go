package list_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/vasil-sd/arenagc/pkg/list"
)

// node is a minimal list.Elem[*node] used to exercise the package in
// isolation from the arena.
type node struct {
	id         int
	prev, next *node
}

func (n *node) HasNext() bool   { return n.next != nil }
func (n *node) HasPrev() bool   { return n.prev != nil }
func (n *node) Next() *node     { return n.next }
func (n *node) Prev() *node     { return n.prev }
func (n *node) SetNext(m *node) { n.next = m }
func (n *node) SetPrev(m *node) { n.prev = m }

func ids(n *node) []int {
	var out []int
	list.ForAll(n, func(e *node) bool {
		out = append(out, e.id)
		return true
	})

	return out
}

func TestList(t *testing.T) {
	Convey("Given a chain of three nodes", t, func() {
		a := &node{id: 1}
		b := &node{id: 2}
		list.InsertAbove(b, a)
		c := &node{id: 3}
		list.InsertAbove(c, b)

		Convey("Then traversal visits them in order", func() {
			So(ids(a), ShouldResemble, []int{1, 2, 3})
		})

		Convey("Then Start/End find the chain's endpoints from any node", func() {
			So(list.Start(c), ShouldEqual, a)
			So(list.End(a), ShouldEqual, c)
		})

		Convey("When a middle node is unlinked", func() {
			list.Unlink(b)

			Convey("Then the remaining nodes are spliced together", func() {
				So(ids(a), ShouldResemble, []int{1, 3})
				So(b.HasNext(), ShouldBeFalse)
				So(b.HasPrev(), ShouldBeFalse)
			})
		})

		Convey("When InsertBelow splices a node before the anchor", func() {
			z := &node{id: 0}
			list.InsertBelow(z, a)

			Convey("Then it becomes the new start", func() {
				So(ids(z), ShouldResemble, []int{0, 1, 2, 3})
				So(list.Start(c), ShouldEqual, z)
			})
		})

		Convey("When the middle node is replaced by two new ones", func() {
			list.ReplaceRange(b, b, func() (head, tail *node) {
				x := &node{id: 20}
				y := &node{id: 21}
				list.InsertAbove(y, x)
				return x, y
			})

			Convey("Then the new nodes take its place in order", func() {
				So(ids(a), ShouldResemble, []int{1, 20, 21, 3})
			})
		})
	})
}

func TestForAllStopsEarly(t *testing.T) {
	Convey("Given a chain of four nodes", t, func() {
		a := &node{id: 1}
		b := &node{id: 2}
		list.InsertAbove(b, a)
		c := &node{id: 3}
		list.InsertAbove(c, b)
		d := &node{id: 4}
		list.InsertAbove(d, c)

		Convey("When the handler returns false on the second node", func() {
			var seen []int
			list.ForAll(a, func(e *node) bool {
				seen = append(seen, e.id)
				return e.id != 2
			})

			Convey("Then traversal stops there", func() {
				So(seen, ShouldResemble, []int{1, 2})
			})
		})
	})
}
