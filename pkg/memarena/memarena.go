// Package memarena implements a best-fit-by-size block allocator over a
// caller-supplied, fixed-range []byte.
//
// An [Arena] carves and coalesces variable-size [block.Block]s out of that
// range, exposing [Arena.Alloc]/[Arena.Free] directly and an [Adapter] for
// plugging the arena into generic containers (see
// [github.com/vasil-sd/arenagc/pkg/container]). It is the source of truth
// for block layout: the garbage collector in
// [github.com/vasil-sd/arenagc/pkg/gc] only ever reads the chain this
// package maintains and calls back into [Arena.Free].
//
// Arenas are single-threaded: no operation here takes a lock, and
// concurrent access from multiple goroutines is a contract violation, not
// a data race this package defends against.
package memarena

import (
	"fmt"
	"io"
	"unsafe"

	"github.com/vasil-sd/arenagc/internal/debug"
	"github.com/vasil-sd/arenagc/pkg/block"
	"github.com/vasil-sd/arenagc/pkg/list"
	"github.com/vasil-sd/arenagc/pkg/memaddr"
	"github.com/vasil-sd/arenagc/pkg/xunsafe"
)

// Size and Address are re-exported from memaddr so most callers of this
// package need not import it directly.
type (
	Size    = memaddr.Size
	Address = memaddr.Address
)

// Arena owns a contiguous, caller-supplied byte range, the ordered chain of
// [block.Block]s carved out of it, and the three running counters the
// chain's sizes must always sum to.
//
// A zero Arena is not usable; construct one with [New].
type Arena struct {
	_ xunsafe.NoCopy

	// buf pins the backing storage space's addresses are computed from.
	// space itself only carries raw addresses (uintptrs), which the
	// garbage collector cannot trace; without this field the backing
	// array would be reachable solely through integers and could be
	// reclaimed out from under a live Arena.
	buf []byte

	space memaddr.AddrSpace

	totalSize, freeSize, occupiedSize Size
}

var _ Allocator = (*Arena)(nil)

// New constructs an arena over buf. buf must be at least twice the size of
// a block header; the whole of buf becomes one free block.
//
// The Arena retains buf itself (it never frees it) precisely so that the
// buffer stays reachable through a traceable Go pointer for as long as the
// Arena is; the block chain inside it is only ever addressed through raw
// uintptrs, which on their own would not keep buf alive.
func New(buf []byte) *Arena {
	debug.Require(len(buf) > 0, "memarena: backing buffer must not be empty")
	debug.Require(len(buf)%memaddr.DefaultAlign == 0,
		"memarena: backing buffer length %d is not a multiple of %d", len(buf), memaddr.DefaultAlign)

	lo := unsafe.Pointer(&buf[0])
	hi := unsafe.Add(lo, len(buf))

	a := &Arena{buf: buf, space: memaddr.NewAddrSpace(lo, hi)}
	a.totalSize = a.space.Size()
	a.freeSize = a.totalSize

	block.MakeAt(a.space.Lowest(), a.totalSize)

	return a
}

// TotalSize, FreeSize, and OccupiedSize return the arena's running counters.
// TotalSize always equals FreeSize+OccupiedSize.
func (a *Arena) TotalSize() Size    { return a.totalSize }
func (a *Arena) FreeSize() Size     { return a.freeSize }
func (a *Arena) OccupiedSize() Size { return a.occupiedSize }

// Lowest and Highest return the arena's address bounds.
func (a *Arena) Lowest() Address  { return a.space.Lowest() }
func (a *Arena) Highest() Address { return a.space.Highest() }

// Contains reports whether addr falls inside the arena's bounds.
func (a *Arena) Contains(addr Address) bool { return a.space.Contains(addr) }

// firstBlock returns the first block in the chain.
func (a *Arena) firstBlock() *block.Block {
	return block.At(a.space.Lowest())
}

// ForAllBlocks walks the chain from its first block, calling f on each in
// ascending address order. Iteration stops early if f returns false.
func (a *Arena) ForAllBlocks(f func(*block.Block) bool) {
	list.ForAll[*block.Block](a.firstBlock(), f)
}

// BlockContaining returns the block whose range contains addr, or nil if
// none does.
func (a *Arena) BlockContaining(addr Address) *block.Block {
	var found *block.Block

	a.ForAllBlocks(func(b *block.Block) bool {
		if b.InBlock(addr) {
			found = b

			return false
		}

		return true
	})

	return found
}

// findSuitable returns the free block of smallest size that is at least
// need bytes, i.e. best-fit by size. On ties the first occurrence in
// chain order wins. Fatal if no block is large enough.
func (a *Arena) findSuitable(need Size) *block.Block {
	var best *block.Block

	a.ForAllBlocks(func(b *block.Block) bool {
		if b.IsFree() && b.Size() >= need {
			if best == nil || best.Size() > b.Size() {
				best = b
			}
		}

		return true
	})

	debug.Require(best != nil, "memarena: out of memory: no free block of at least %v", need)

	return best
}

// Alloc carves need bytes out of the arena and returns a pointer to the
// resulting block's payload. Fatal if no free block is large enough.
func (a *Arena) Alloc(n int) unsafe.Pointer {
	debug.Require(n >= 0, "memarena: Alloc called with negative size %d", n)

	need := block.HeaderSize.Add(Size(n)).AlignDefault()
	chosen := a.findSuitable(need)

	handed := chosen
	if chosen.Size() > need.Add(block.HeaderSize) {
		handed = a.split(chosen, need)
	}

	a.freeSize = a.freeSize.Sub(handed.Size())
	a.occupiedSize = a.occupiedSize.Add(handed.Size())

	handed.SetOccupied(true)

	debug.Log(handed.Address(), "alloc", "requested=%d need=%v handed=%v", n, need, handed.Size())

	return handed.ToUserData().Ptr()
}

// Free returns the block owning p to the arena, coalescing with any free
// neighbors. Fatal if p is not a live payload pointer previously returned
// by [Arena.Alloc], or if the block is already free (double free).
func (a *Arena) Free(p unsafe.Pointer) {
	addr := a.space.Address(p)

	owner := a.BlockContaining(addr)
	debug.Require(owner != nil, "memarena: Free: address %v is not within any block", addr)

	viaUserData := block.FromUserData(addr)
	debug.Require(viaUserData == owner,
		"memarena: Free: user-data translation disagrees with chain search for %v", addr)

	debug.Require(owner.IsOccupied(), "memarena: double free at %v", addr)

	owner.SetOccupied(false)

	a.freeSize = a.freeSize.Add(owner.Size())
	a.occupiedSize = a.occupiedSize.Sub(owner.Size())

	debug.Log(owner.Address(), "free", "size=%v", owner.Size())

	if owner.HasNext() && owner.Next().IsFree() {
		owner = a.join(owner)
	}

	if owner.HasPrev() && owner.Prev().IsFree() {
		a.join(owner.Prev())
	}
}

// split replaces b with two adjacent blocks, the first of size headSize,
// the second covering the remainder, and returns the first. Preconditions:
// b.Splittable() and headSize exceeds a header's worth of bytes.
func (a *Arena) split(b *block.Block, headSize Size) *block.Block {
	debug.Assert(a.Valid(), "memarena: split: arena invalid before split")
	debug.Require(b.Splittable(), "memarena: split of a non-splittable block at %v", b.Address())
	debug.Require(headSize > block.HeaderSize, "memarena: split head size %v too small", headSize)

	oldSize := b.Size()
	addr := b.Address()

	var head, tail *block.Block

	list.ReplaceRange[*block.Block](b, b, func() (h, t *block.Block) {
		head = block.MakeAt(addr, headSize)
		tail = block.MakeAt(head.NextBlockAddress(), oldSize.Sub(headSize))
		tail.InsertAbove(head)

		return head, tail
	})

	debug.Assert(a.Valid(), "memarena: split: arena invalid after split")
	debug.Log(addr, "split", "head=%v tail=%v", headSize, oldSize.Sub(headSize))

	return block.At(addr)
}

// join replaces b and its successor with a single free block covering
// both, and returns it. Precondition: b has a next block.
func (a *Arena) join(b *block.Block) *block.Block {
	debug.Require(b.HasNext(), "memarena: join of non-adjacent blocks: %v has no successor", b.Address())
	debug.Assert(a.Valid(), "memarena: join: arena invalid before join")

	size := b.Size().Add(b.Next().Size())
	addr := b.Address()
	end := b.Next()

	list.ReplaceRange[*block.Block](b, end, func() (head, tail *block.Block) {
		merged := block.MakeAt(addr, size)

		return merged, merged
	})

	debug.Assert(a.Valid(), "memarena: join: arena invalid after join")
	debug.Log(addr, "join", "size=%v", size)

	return block.At(addr)
}

// Ordering reports whether the chain's blocks are in strict ascending
// address order.
func (a *Arena) Ordering() bool {
	ok := true

	var prev *block.Block

	a.ForAllBlocks(func(b *block.Block) bool {
		if prev != nil {
			ok = prev.Address().Less(b.Address())
		}

		prev = b

		return ok
	})

	return ok
}

// Contiguity reports whether every adjacent pair of blocks abuts exactly,
// with no holes and no overlaps.
func (a *Arena) Contiguity() bool {
	ok := true

	var prev *block.Block

	a.ForAllBlocks(func(b *block.Block) bool {
		if prev != nil {
			ok = prev.NextBlockAddress().Equal(b.Address())
		} else {
			ok = !b.HasPrev()
		}

		prev = b

		return ok
	})

	return ok
}

// Boundedness reports whether the chain starts at the arena's lowest
// address and the last block ends exactly at the highest address.
func (a *Arena) Boundedness() bool {
	first := a.firstBlock()
	if !first.Address().Equal(a.space.Lowest()) {
		return false
	}

	last := first

	a.ForAllBlocks(func(b *block.Block) bool {
		last = b

		return true
	})

	return last.NextBlockAddress().Equal(a.space.Highest())
}

// SizeConservation reports whether the sum of every block's size equals
// TotalSize, and TotalSize equals FreeSize+OccupiedSize.
func (a *Arena) SizeConservation() bool {
	var sum Size

	a.ForAllBlocks(func(b *block.Block) bool {
		sum = sum.Add(b.Size())

		return true
	})

	return sum == a.totalSize && a.totalSize == a.freeSize.Add(a.occupiedSize)
}

// NoAdjacentFree reports whether no two adjacent blocks in the chain are
// both free.
func (a *Arena) NoAdjacentFree() bool {
	ok := true

	var prev *block.Block

	a.ForAllBlocks(func(b *block.Block) bool {
		if prev != nil && prev.IsFree() && b.IsFree() {
			ok = false
		}

		prev = b

		return ok
	})

	return ok
}

// Valid reports whether the Ordering, Contiguity, Boundedness, and
// SizeConservation invariants currently hold; [Arena.NoAdjacentFree] is not
// included. It is used by internal self-checks and is exposed for tests.
func (a *Arena) Valid() bool {
	return a.Ordering() && a.Contiguity() && a.Boundedness() && a.SizeConservation()
}

// WriteTo writes a human-readable dump of the arena's totals and per-block
// state to w, implementing [io.WriterTo]. The format is advisory; nothing
// in this module parses it back.
func (a *Arena) WriteTo(w io.Writer) (int64, error) {
	var written int64

	n, err := fmt.Fprintf(w, "=========== MEM DUMP ===========\n"+
		"memory total size: %v\nmemory free size: %v\nmemory occupied size: %v\nblocks:\n",
		a.totalSize, a.freeSize, a.occupiedSize)
	written += int64(n)

	if err != nil {
		return written, err
	}

	idx := 0

	a.ForAllBlocks(func(b *block.Block) bool {
		n, err = fmt.Fprintf(w, "  %4d: %v\n", idx, b)
		written += int64(n)
		idx++

		return err == nil
	})

	if err != nil {
		return written, err
	}

	n, err = fmt.Fprintf(w, "--------------------------------\n")
	written += int64(n)

	return written, err
}
