// Package list implements an intrusive doubly-linked list.
//
// A node is a value that knows how to link itself to its neighbors; the
// list itself holds no storage of its own; it only ever rearranges the
// pointers the nodes already carry. This is the primitive the arena's block
// chain is built on: every [block.Block] header embeds its own prev/next
// links, so splitting or coalescing blocks is just relinking existing
// memory, never allocating a separate list node.
//
// Where a C++ version of this would use CRTP to recover the derived type
// from a base-class link, Go has no equivalent mechanism. Elem is an
// F-bounded generic constraint instead: E names itself, so every operation
// below returns E directly rather than some opaque base type.
package list

// Elem is implemented by list nodes. E is normally a pointer type, such as
// *block.Block, with HasNext/HasPrev reporting whether Next/Prev are valid
// to call.
//
// A node's address is its identity: nodes are not meant to be copied, and a
// node with no neighbors (both HasNext and HasPrev false) is considered
// unlinked.
type Elem[E any] interface {
	HasNext() bool
	HasPrev() bool
	Next() E
	Prev() E
	SetNext(E)
	SetPrev(E)
}

// Unlink removes self from whichever chain it is currently part of. Its
// neighbors (if any) are spliced together; self's own links are cleared.
func Unlink[E Elem[E]](self E) {
	var zero E

	if self.HasPrev() {
		p := self.Prev()
		p.SetNext(self.Next())
	}

	if self.HasNext() {
		n := self.Next()
		n.SetPrev(self.Prev())
	}

	self.SetPrev(zero)
	self.SetNext(zero)
}

// InsertAbove splices self immediately after anchor.
func InsertAbove[E Elem[E]](self, anchor E) {
	var zero E

	hasNext := anchor.HasNext()

	next := zero
	if hasNext {
		next = anchor.Next()
	}

	self.SetNext(next)
	if hasNext {
		next.SetPrev(self)
	}

	anchor.SetNext(self)
	self.SetPrev(anchor)
}

// InsertBelow splices self immediately before anchor.
func InsertBelow[E Elem[E]](self, anchor E) {
	var zero E

	hasPrev := anchor.HasPrev()

	prev := zero
	if hasPrev {
		prev = anchor.Prev()
	}

	self.SetPrev(prev)
	if hasPrev {
		prev.SetNext(self)
	}

	anchor.SetPrev(self)
	self.SetNext(anchor)
}

// Start walks prev links from e to the first node of its chain.
func Start[E Elem[E]](e E) E {
	for e.HasPrev() {
		e = e.Prev()
	}

	return e
}

// End walks next links from e to the last node of its chain.
func End[E Elem[E]](e E) E {
	for e.HasNext() {
		e = e.Next()
	}

	return e
}

// ForAll walks the whole chain containing e, starting from its first node,
// calling handler on every node in order. Iteration stops early if handler
// returns false.
func ForAll[E Elem[E]](e E, handler func(E) bool) {
	cur := Start(e)

	for {
		if !handler(cur) {
			return
		}

		if !cur.HasNext() {
			return
		}

		cur = cur.Next()
	}
}

// ReplaceRange detaches the contiguous sub-chain [self..end] (inclusive),
// calls factory to build a replacement, and splices the replacement's
// [head, tail] in where the old range used to be.
//
// factory is called after the old range has been unlinked from its
// surroundings but before the surroundings are linked to the replacement,
// so it may reuse the memory formerly occupied by [self..end].
func ReplaceRange[E Elem[E]](self, end E, factory func() (head, tail E)) {
	var zero E

	before, hasBefore := zero, self.HasPrev()
	if hasBefore {
		before = self.Prev()
	}

	after, hasAfter := zero, end.HasNext()
	if hasAfter {
		after = end.Next()
	}

	self.SetPrev(zero)
	end.SetNext(zero)

	head, tail := factory()

	if hasBefore {
		before.SetNext(head)
		head.SetPrev(before)
	} else {
		head.SetPrev(zero)
	}

	if hasAfter {
		after.SetPrev(tail)
		tail.SetNext(after)
	} else {
		tail.SetNext(zero)
	}
}
