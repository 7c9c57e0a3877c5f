// Package gc implements a conservative mark-sweep garbage collector layered
// on top of an [github.com/vasil-sd/arenagc/pkg/memarena.Arena].
//
// Two collector implementations share the same root/link surface: [Naive]
// rescans the whole block chain to find the next block to check, and
// [Worklist] (preferred) maintains an explicit pending-work list so it
// never has to rescan blocks it has already decided not to check. Both
// read the same [block.Block] GC flags the arena's chain already carries;
// neither allocates a separate shadow structure for block metadata.
package gc

import (
	"unsafe"

	"github.com/vasil-sd/arenagc/internal/debug"
	"github.com/vasil-sd/arenagc/pkg/block"
	"github.com/vasil-sd/arenagc/pkg/memaddr"
	"github.com/vasil-sd/arenagc/pkg/memarena"
)

// Memory is the subset of *[memarena.Arena] the collector needs: block
// chain traversal, bounds testing, and free.
type Memory interface {
	ForAllBlocks(func(*block.Block) bool)
	BlockContaining(addr memaddr.Address) *block.Block
	Contains(addr memaddr.Address) bool
	Lowest() memaddr.Address
	Highest() memaddr.Address
	Free(p unsafe.Pointer)
}

var _ Memory = (*memarena.Arena)(nil)

// blockOf recovers the [block.Block] owning a payload pointer previously
// handed out by the arena. Fatal if p does not fall within mem's bounds or
// does not land inside any block.
func blockOf(mem Memory, p unsafe.Pointer) *block.Block {
	addr := memaddr.Of(p)
	debug.Require(mem.Contains(addr), "gc: pointer %p is outside the arena's address range", p)

	b := mem.BlockContaining(addr)
	debug.Require(b != nil, "gc: %p does not fall within any block", p)

	return b
}

// RegisterRoot marks the block backing the payload pointer p as a root.
// Registering the same pointer twice is equivalent to registering it once.
func RegisterRoot(mem Memory, p unsafe.Pointer) {
	blockOf(mem, p).SetRoot(true)
}

// UnregisterRoot clears the root flag on the block backing p.
func UnregisterRoot(mem Memory, p unsafe.Pointer) {
	blockOf(mem, p).SetRoot(false)
}

// Link is the write-barrier-like hook mutator code calls when storing a
// pointer to a managed object (to) inside another managed object (from).
// If from's block is currently marked, to's block is scheduled for
// scanning. Link always returns to unchanged, so it is meant to wrap
// stores: obj.field = gc.Link(mem, obj, newValue).
//
// The barrier only fires when from is already marked: it assumes the
// mutator quiesces during a mark phase; it
// gives no guarantee if pointer graphs are mutated freely between
// MarkStep calls outside of a fully drained mark phase.
func Link(mem Memory, from, to unsafe.Pointer) unsafe.Pointer {
	fromBlock := blockOf(mem, from)
	toBlock := blockOf(mem, to)

	if fromBlock.Marked() {
		toBlock.SetToBeChecked(true)
	}

	return to
}

// scanPointers conservatively scans b's payload for word-aligned values
// that fall within mem's address range, calling handler with the block
// each such value lands in. Any word that merely looks like an in-arena
// address is treated as a reference; this is sound (no reachable block is
// ever missed) but not precise (unrelated bit patterns can retain blocks).
func scanPointers(mem Memory, b *block.Block, handler func(*block.Block)) {
	const wordSize = int(unsafe.Sizeof(uintptr(0)))

	userSize := int(b.Size()) - int(block.HeaderSize)
	words := userSize / wordSize

	base := b.ToUserData().Ptr()

	for i := 0; i < words; i++ {
		slot := (*uintptr)(unsafe.Add(base, i*wordSize))
		w := *slot

		candidate := memaddr.Of(unsafe.Pointer(w)) //nolint:govet // conservative scan over raw words

		if !mem.Contains(candidate) {
			continue
		}

		if target := mem.BlockContaining(candidate); target != nil {
			handler(target)
		}
	}
}
