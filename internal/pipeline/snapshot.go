package pipeline

import (
	"fmt"

	"github.com/solatis/renamer/internal/nbt"
	"github.com/solatis/renamer/internal/types"
)

// Snapshot is a fixed-length window of item slots passed through one
// renaming pass, plus per-slot custom data staged by listeners.
//
// The snapshot owns the slice handed to NewSnapshot: slot writes are visible
// to the caller through that slice once processing returns.
type Snapshot struct {
	id     types.SnapshotID
	slots  []*types.Item
	custom map[int]nbt.Compound
	offset int
}

// NewSnapshot wraps items. Offset locates the first slot within the larger
// structure (window, inventory) the items were taken from.
func NewSnapshot(items []*types.Item, offset int) *Snapshot {
	return &Snapshot{
		id:     types.NewSnapshotID(),
		slots:  items,
		custom: make(map[int]nbt.Compound),
		offset: offset,
	}
}

// ID identifies this renaming pass in logs.
func (s *Snapshot) ID() types.SnapshotID {
	return s.id
}

// Len returns the number of slots.
func (s *Snapshot) Len() int {
	return len(s.slots)
}

// Offset returns the position of slot 0 within the surrounding structure.
func (s *Snapshot) Offset() int {
	return s.offset
}

// Get returns the item in slot i; nil when empty or out of range.
func (s *Snapshot) Get(i int) *types.Item {
	if i < 0 || i >= len(s.slots) {
		return nil
	}
	return s.slots[i]
}

// Set replaces the item in slot i.
func (s *Snapshot) Set(i int, item *types.Item) error {
	if i < 0 || i >= len(s.slots) {
		return fmt.Errorf("%w: %d of %d", types.ErrSlotOutOfRange, i, len(s.slots))
	}
	s.slots[i] = item
	return nil
}

// Slots returns the live slot slice.
func (s *Snapshot) Slots() []*types.Item {
	return s.slots
}

// CustomData returns the staging compound for slot i, creating it on first
// use. Its entries are merged into the slot's extra data when the pass
// completes.
func (s *Snapshot) CustomData(i int) (nbt.Compound, error) {
	if i < 0 || i >= len(s.slots) {
		return nil, fmt.Errorf("%w: %d of %d", types.ErrSlotOutOfRange, i, len(s.slots))
	}
	c, ok := s.custom[i]
	if !ok {
		c = nbt.New()
		s.custom[i] = c
	}
	return c, nil
}

// HasCustomData reports whether slot i has staged, non-empty custom data.
func (s *Snapshot) HasCustomData(i int) bool {
	return !s.custom[i].IsEmpty()
}

// clone returns a deep, detached copy.
func (s *Snapshot) clone() *Snapshot {
	cp := &Snapshot{
		id:     s.id,
		slots:  make([]*types.Item, len(s.slots)),
		custom: make(map[int]nbt.Compound, len(s.custom)),
		offset: s.offset,
	}
	for i, it := range s.slots {
		cp.slots[i] = it.Clone()
	}
	for i, c := range s.custom {
		cp.custom[i] = c.Clone()
	}
	return cp
}

// restore overwrites slots and custom data from a checkpoint taken with
// clone, keeping the caller-visible slice.
func (s *Snapshot) restore(from *Snapshot) {
	for i := range s.slots {
		s.slots[i] = from.slots[i].Clone()
	}
	s.custom = make(map[int]nbt.Compound, len(from.custom))
	for i, c := range from.custom {
		s.custom[i] = c.Clone()
	}
}
