// Package block defines the header placed in-place at the start of every
// block the arena manages.
//
// A Block is never heap-allocated by this package: [MakeAt] casts a raw
// address inside the arena's backing []byte into a *Block and constructs
// it there, the same in-place-header trick the teacher's arena package
// uses to place a chunk's owning-arena pointer at the chunk's tail.
package block

import (
	"fmt"
	"unsafe"

	"github.com/vasil-sd/arenagc/internal/debug"
	"github.com/vasil-sd/arenagc/pkg/list"
	"github.com/vasil-sd/arenagc/pkg/memaddr"
	"github.com/vasil-sd/arenagc/pkg/xunsafe/layout"
)

// HeaderSize is the aligned size of a Block header.
var HeaderSize = memaddr.Size(layout.Size[Block]()).AlignDefault()

// Block is the metadata header embedded at the start of every block in an
// arena's chain. It doubles as an intrusive list node: Prev/Next participate
// directly in the arena's single block chain (see [list.Elem]).
//
// Block values are never copied or moved; a Block's address is its
// identity, since it is the header of the memory it describes.
type Block struct {
	size Size

	occupied bool

	// GC flags; only the collectors in package gc set them.
	root        bool
	marked      bool
	toBeChecked bool

	prev, next *Block
}

// Size is re-exported from memaddr so callers of this package rarely need
// to import it directly.
type Size = memaddr.Size

// MakeAt constructs a Block header in place at addr, covering size bytes
// (header included). Preconditions: addr is non-null and size exceeds
// [HeaderSize]. The resulting block is free and unlinked.
func MakeAt(addr memaddr.Address, size Size) *Block {
	debug.Require(!addr.IsNull(), "block: MakeAt called with a null address")
	debug.Require(size > HeaderSize, "block: size %v does not exceed header size %v", size, HeaderSize)

	b := (*Block)(addr.Ptr())
	*b = Block{size: size.AlignDefault()}

	return b
}

// At reinterprets addr as a Block header. addr must have previously been
// produced by [MakeAt] and not been overwritten since.
func At(addr memaddr.Address) *Block {
	debug.Require(!addr.IsNull(), "block: At called with a null address")

	return (*Block)(addr.Ptr())
}

// Address returns the address of the block's own header.
func (b *Block) Address() memaddr.Address {
	return memaddr.Of(unsafe.Pointer(b))
}

// Size returns the block's total size, header included.
func (b *Block) Size() Size { return b.size }

// NextBlockAddress returns the address one past the end of this block,
// i.e. where its successor in a contiguous arena would begin.
func (b *Block) NextBlockAddress() memaddr.Address {
	return b.Address().Add(b.size)
}

// ToUserData returns the address of the block's payload.
func (b *Block) ToUserData() memaddr.Address {
	return b.Address().Add(HeaderSize)
}

// FromUserData recovers the Block owning a payload address previously
// returned by [Block.ToUserData].
func FromUserData(p memaddr.Address) *Block {
	return At(p.Sub(HeaderSize))
}

// InBlock reports whether addr falls within this block's address range,
// header included.
func (b *Block) InBlock(addr memaddr.Address) bool {
	return addr.GreaterEqual(b.Address()) && addr.Less(b.NextBlockAddress())
}

// Splittable reports whether the block is large enough that splitting off
// a minimal-size block still leaves a legal block on both sides.
func (b *Block) Splittable() bool {
	return b.size > HeaderSize.Add(HeaderSize)
}

// IsFree and IsOccupied report the block's occupancy.
func (b *Block) IsFree() bool     { return !b.occupied }
func (b *Block) IsOccupied() bool { return b.occupied }

// SetOccupied sets the block's occupancy flag.
func (b *Block) SetOccupied(occupied bool) { b.occupied = occupied }

// Root reports whether the block has been registered as a GC root.
func (b *Block) Root() bool { return b.root }

// SetRoot sets the block's root flag.
func (b *Block) SetRoot(root bool) { b.root = root }

// Marked reports whether the block was reached in the current mark phase.
func (b *Block) Marked() bool { return b.marked }

// SetMarked sets the block's marked flag.
func (b *Block) SetMarked(marked bool) { b.marked = marked }

// ToBeChecked reports whether the block is scheduled for scanning in the
// current mark phase.
func (b *Block) ToBeChecked() bool { return b.toBeChecked }

// SetToBeChecked sets the block's to-be-checked flag.
func (b *Block) SetToBeChecked(v bool) { b.toBeChecked = v }

// String implements [fmt.Stringer].
func (b *Block) String() string {
	state := "Occupied"
	if b.IsFree() {
		state = "Free"
	}

	return fmt.Sprintf("Addr: %v, Size: %v, %s", b.Address(), b.size, state)
}

// The following methods satisfy [list.Elem][*Block], letting the arena's
// chain operations (see pkg/memarena) work generically over *Block.

func (b *Block) HasNext() bool { return b.next != nil }
func (b *Block) HasPrev() bool { return b.prev != nil }
func (b *Block) Next() *Block  { return b.next }
func (b *Block) Prev() *Block  { return b.prev }

func (b *Block) SetNext(n *Block) { b.next = n }
func (b *Block) SetPrev(p *Block) { b.prev = p }

// InsertAbove splices b immediately after anchor in anchor's chain.
func (b *Block) InsertAbove(anchor *Block) { list.InsertAbove[*Block](b, anchor) }

// InsertBelow splices b immediately before anchor in anchor's chain.
func (b *Block) InsertBelow(anchor *Block) { list.InsertBelow[*Block](b, anchor) }

// Unlink removes b from its chain.
func (b *Block) Unlink() { list.Unlink[*Block](b) }
