package gc

import (
	"unsafe"

	"github.com/vasil-sd/arenagc/internal/debug"
	"github.com/vasil-sd/arenagc/pkg/block"
	"github.com/vasil-sd/arenagc/pkg/container"
	"github.com/vasil-sd/arenagc/pkg/memarena"
)

// worklistCapacity is the worklist's fixed, pre-reserved capacity.
// Growing it during a collection would mean allocating and freeing blocks
// while [Memory.ForAllBlocks] is mid-traversal of the very chain being
// grown, so capacity is fixed at construction; exceeding it is fatal, per
// the fixed-capacity design this variant is grounded on.
const worklistCapacity = 16

// Worklist is the preferred collector variant: it maintains an explicit
// pending-work list, itself allocated in the arena it collects, so a mark
// step never has to rescan the chain to find the next block to check.
//
// The worklist's own backing block is marked live for the duration of a
// collection so the mark phase cannot free the storage it is using.
type Worklist struct {
	mem Memory

	pending container.Sequence[*block.Block]
}

// NewWorklist constructs a Worklist collector over mem, reserving the
// worklist's fixed backing capacity out of adapter's arena.
func NewWorklist(mem Memory, adapter memarena.Allocator) *Worklist {
	g := &Worklist{mem: mem}
	g.pending = container.NewSequence[*block.Block](adapter)
	g.pending.Grow(worklistCapacity)

	return g
}

// RegisterRoot, UnregisterRoot, and Link forward to the package-level
// functions of the same name over this collector's arena.
func (g *Worklist) RegisterRoot(p unsafe.Pointer)   { RegisterRoot(g.mem, p) }
func (g *Worklist) UnregisterRoot(p unsafe.Pointer) { UnregisterRoot(g.mem, p) }

func (g *Worklist) Link(from, to unsafe.Pointer) unsafe.Pointer { return Link(g.mem, from, to) }

// push schedules b, failing fatally if the worklist's fixed capacity is
// exceeded.
func (g *Worklist) push(b *block.Block) {
	debug.Require(g.pending.Len() < g.pending.Cap(),
		"gc: worklist overflow: exceeded fixed capacity %d", g.pending.Cap())

	g.pending.Push(b)
}

// worklistBlock finds the block backing the worklist's own storage, or nil
// if none has been allocated yet.
func (g *Worklist) worklistBlock() *block.Block {
	backing := g.pending.BackingPointer()
	if backing == nil {
		return nil
	}

	return blockOf(g.mem, unsafe.Pointer(backing))
}

// Init begins a mark phase: every block is unmarked; rooted blocks are
// scheduled and pushed onto the worklist; and the worklist's own backing
// block is marked live, so it cannot be collected out from under the mark
// phase that is using it.
func (g *Worklist) Init() {
	backing := g.worklistBlock()
	g.pending.Clear()

	g.mem.ForAllBlocks(func(b *block.Block) bool {
		b.SetMarked(false)

		if b.Root() {
			b.SetToBeChecked(true)
			g.push(b)
		}

		return true
	})

	if backing != nil {
		backing.SetMarked(true)
	}
}

// MarkStep pops one block from the worklist, marks it, scans its payload,
// and pushes any newly-discovered unmarked, unscheduled blocks. Returns
// false once the worklist is empty.
func (g *Worklist) MarkStep() bool {
	if g.pending.Empty() {
		return false
	}

	b := g.pending.Pop()
	b.SetMarked(true)
	b.SetToBeChecked(false)

	debug.Log(b.Address(), "gc.worklist.mark", "pending=%d", g.pending.Len())

	scanPointers(g.mem, b, func(ref *block.Block) {
		if !ref.Marked() && !ref.ToBeChecked() {
			ref.SetToBeChecked(true)
			g.push(ref)
		}
	})

	return true
}

// Collect sweeps: it clears the worklist, walks the chain once pushing
// every occupied, unmarked block onto the worklist (fatal if that exceeds
// its fixed capacity) while clearing every block's marked flag, copies the
// pushed blocks into a plain (non-arena) slice, clears the worklist, and
// then frees each collected block.
//
// The frees iterate over that plain copy rather than the worklist itself,
// because freeing mutates the chain the worklist's storage lives in.
func (g *Worklist) Collect() {
	g.pending.Clear()

	g.mem.ForAllBlocks(func(b *block.Block) bool {
		if b.IsOccupied() && !b.Marked() {
			g.push(b)
		}

		b.SetMarked(false)

		return true
	})

	victims := make([]*block.Block, g.pending.Len())
	for i := range victims {
		victims[i] = *g.pending.Get(i)
	}

	g.pending.Clear()

	for _, victim := range victims {
		debug.Log(victim.Address(), "gc.worklist.sweep", "size=%v", victim.Size())

		g.mem.Free(victim.ToUserData().Ptr())
	}
}

// FullGC runs Init, drains MarkStep, then Collect.
func (g *Worklist) FullGC() {
	g.Init()
	for g.MarkStep() {
	}

	g.Collect()
}
