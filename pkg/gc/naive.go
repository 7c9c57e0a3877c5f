package gc

import (
	"unsafe"

	"github.com/vasil-sd/arenagc/internal/debug"
	"github.com/vasil-sd/arenagc/pkg/block"
)

// Naive is the chain-scan collector variant: every phase walks the whole
// block chain rather than tracking pending work explicitly. It is O(blocks²)
// per full collection in the worst case; [Worklist] should be preferred.
type Naive struct {
	mem Memory
}

// NewNaive constructs a Naive collector over mem.
func NewNaive(mem Memory) *Naive {
	return &Naive{mem: mem}
}

// RegisterRoot, UnregisterRoot, and Link forward to the package-level
// functions of the same name over this collector's arena.
func (g *Naive) RegisterRoot(p unsafe.Pointer) { RegisterRoot(g.mem, p) }

func (g *Naive) UnregisterRoot(p unsafe.Pointer) { UnregisterRoot(g.mem, p) }

func (g *Naive) Link(from, to unsafe.Pointer) unsafe.Pointer { return Link(g.mem, from, to) }

// Init begins a mark phase: every block's marked flag is cleared, and
// to_be_checked is set for rooted blocks only.
func (g *Naive) Init() {
	g.mem.ForAllBlocks(func(b *block.Block) bool {
		b.SetMarked(false)
		b.SetToBeChecked(b.Root())

		return true
	})
}

// MarkStep advances the mark phase by one block: it finds the first block
// with to_be_checked set, marks it, scans its payload, and schedules any
// newly-discovered blocks for checking. Returns false once no block is
// scheduled, meaning the mark phase is complete.
func (g *Naive) MarkStep() bool {
	didWork := false

	g.mem.ForAllBlocks(func(b *block.Block) bool {
		if !b.ToBeChecked() {
			return true
		}

		didWork = true
		b.SetMarked(true)
		b.SetToBeChecked(false)

		debug.Log(b.Address(), "gc.naive.mark", "")

		scanPointers(g.mem, b, func(ref *block.Block) {
			if !ref.Marked() {
				ref.SetToBeChecked(true)
			}
		})

		return false
	})

	return didWork
}

// Collect sweeps: it repeatedly finds an occupied, unmarked block and
// frees it, clearing marked flags along the way, until a full pass finds
// nothing left to free.
func (g *Naive) Collect() {
	for {
		var victim *block.Block

		g.mem.ForAllBlocks(func(b *block.Block) bool {
			if b.IsOccupied() && !b.Marked() {
				victim = b

				return false
			}

			b.SetMarked(false)

			return true
		})

		if victim == nil {
			return
		}

		debug.Log(victim.Address(), "gc.naive.sweep", "size=%v", victim.Size())

		g.mem.Free(victim.ToUserData().Ptr())
	}
}

// FullGC runs Init, drains MarkStep, then Collect.
func (g *Naive) FullGC() {
	g.Init()
	for g.MarkStep() {
	}

	g.Collect()
}
