// Package registry provides a small, arena-backed name→root table: a
// convenience layer over
// [github.com/vasil-sd/arenagc/pkg/gc.RegisterRoot]/[UnregisterRoot] that
// lets callers register GC roots by name instead of tracking raw payload
// pointers themselves.
//
// It does not change GC semantics; it only adds a name-indexed lookup on
// top of the same root flag the collector reads.
package registry

import (
	"unsafe"

	"github.com/dolthub/maphash"

	"github.com/vasil-sd/arenagc/internal/debug"
	"github.com/vasil-sd/arenagc/pkg/container"
	"github.com/vasil-sd/arenagc/pkg/gc"
	"github.com/vasil-sd/arenagc/pkg/memarena"
)

const (
	initialCapacity = 8
	maxLoadFactor   = 0.75
)

// slot is the arena-resident record: deliberately pointer-free. Go's
// runtime treats the arena's backing storage as an untyped byte buffer
// (see [memarena.Arena]'s own pinning comment on the same hazard one
// level down), so nothing with its own out-of-arena backing pointer —
// a string's data pointer chief among them — may be stored here. root
// is exempt: it addresses payload inside this same arena, which is kept
// alive as a single unit by the arena's pinned buffer, not by tracing
// this individual field.
type slot struct {
	state slotState
	hash  uint64
	root  unsafe.Pointer
}

type slotState uint8

const (
	slotEmpty slotState = iota
	slotOccupied
	slotTombstone
)

// Names is an open-addressing string→root map, linearly probed, backed by
// a [container.Sequence] allocated in the same arena its roots live in.
//
// The strings themselves are never stored in that arena-resident table:
// only their hash is. Each registered name's backing array is pinned in
// the ordinary, Go-GC-visible names map instead, so it stays reachable
// for as long as the registration lives.
type Names struct {
	mem    gc.Memory
	arena  memarena.Allocator
	hasher maphash.Hasher[string]
	slots  container.Sequence[slot]
	names  map[uint64]string
	count  int // occupied, excluding tombstones
	used   int // occupied + tombstones
}

// New constructs an empty Names table allocating its storage out of a.
func New(mem gc.Memory, a memarena.Allocator) *Names {
	n := &Names{
		mem:    mem,
		arena:  a,
		hasher: maphash.NewHasher[string](),
		names:  make(map[uint64]string),
	}
	n.slots = container.NewSequence[slot](a)
	n.reserve(initialCapacity)

	return n
}

// reserve grows the backing slot array to cap slots (rounded up to a power
// of two would be nicer, but linear capacities keep this simple), rehashing
// every currently-occupied entry into the new array.
func (n *Names) reserve(cap int) {
	old := n.slots

	fresh := container.NewSequence[slot](n.arena)
	for i := 0; i < cap; i++ {
		fresh.Push(slot{})
	}

	oldLen := old.Len()
	n.slots = fresh
	n.count, n.used = 0, 0

	for i := 0; i < oldLen; i++ {
		s := old.Get(i)
		if s.state == slotOccupied {
			n.insert(n.names[s.hash], s.root)
		}
	}

	old.Release()
}

// probe finds the slot index for name: either an existing occupied slot
// with that name, or the first empty/tombstone slot suitable for
// insertion. ok reports whether an existing occupied slot was found.
//
// Occupied slots are matched by hash alone; the names map behind them is
// what actually owns each string, so a hash match is treated as identity
// (a 64-bit maphash collision between two live names is not handled).
func (n *Names) probe(name string) (idx int, ok bool) {
	capacity := n.slots.Len()
	debug.Require(capacity > 0, "registry: probe called on an empty table")

	h := n.hasher.Hash(name)
	start := int(h % uint64(capacity))
	firstFree := -1

	for i := 0; i < capacity; i++ {
		j := (start + i) % capacity
		s := n.slots.Get(j)

		switch s.state {
		case slotEmpty:
			if firstFree == -1 {
				firstFree = j
			}

			return firstFree, false
		case slotTombstone:
			if firstFree == -1 {
				firstFree = j
			}
		case slotOccupied:
			if s.hash == h {
				return j, true
			}
		}
	}

	return firstFree, false
}

// insert places (name, root) into the table without checking the load
// factor; used internally by [Names.reserve] to repopulate a fresh array.
func (n *Names) insert(name string, root unsafe.Pointer) {
	idx, found := n.probe(name)
	s := n.slots.Get(idx)

	if !found && s.state != slotOccupied {
		n.used++
	}

	h := n.hasher.Hash(name)
	n.names[h] = name
	*s = slot{state: slotOccupied, hash: h, root: root}
	n.count++
}

// Register associates name with the root flagged payload pointer root,
// growing the table if it has become too full. Registering the same name
// twice updates the associated pointer. This does not itself set the GC
// root flag; pair it with [gc.RegisterRoot] (or call [Names.RegisterRoot]).
func (n *Names) Register(name string, root unsafe.Pointer) {
	if float32(n.used+1) > maxLoadFactor*float32(n.slots.Len()) {
		n.reserve(n.slots.Len() * 2)
	}

	idx, found := n.probe(name)
	s := n.slots.Get(idx)

	if found {
		s.root = root

		return
	}

	if s.state != slotOccupied {
		n.used++
	}

	h := n.hasher.Hash(name)
	n.names[h] = name
	*s = slot{state: slotOccupied, hash: h, root: root}
	n.count++
}

// RegisterRoot is [Names.Register] followed by [gc.RegisterRoot] on the
// same pointer: the common case of naming a pointer and marking it live.
func (n *Names) RegisterRoot(name string, root unsafe.Pointer) {
	n.Register(name, root)
	gc.RegisterRoot(n.mem, root)
}

// Lookup returns the pointer registered under name, and whether it was
// found.
func (n *Names) Lookup(name string) (unsafe.Pointer, bool) {
	if n.slots.Len() == 0 {
		return nil, false
	}

	idx, found := n.probe(name)
	if !found {
		return nil, false
	}

	return n.slots.Get(idx).root, true
}

// Unregister removes name from the table, if present. It does not clear
// the GC root flag on the associated block; call [gc.UnregisterRoot]
// separately if that is desired.
func (n *Names) Unregister(name string) {
	idx, found := n.probe(name)
	if !found {
		return
	}

	s := n.slots.Get(idx)
	delete(n.names, s.hash)
	s.state = slotTombstone
	s.hash = 0
	s.root = nil
	n.count--
}

// UnregisterRoot is [Names.Unregister] followed by [gc.UnregisterRoot].
func (n *Names) UnregisterRoot(name string) {
	p, ok := n.Lookup(name)
	n.Unregister(name)

	if ok {
		gc.UnregisterRoot(n.mem, p)
	}
}

// Len returns the number of names currently registered.
func (n *Names) Len() int { return n.count }
