package shelf

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

var (
	// ErrUnknownItem is returned when a patch names an item the store does
	// not hold.
	ErrUnknownItem = errors.New("shelf: unknown item")
	// ErrOccupied is returned when a change would put two grid items in the
	// same slot.
	ErrOccupied = errors.New("shelf: slot occupied")
)

// ItemKind is the kind of thing sitting on a shelf.
type ItemKind uint8

const (
	KindBook ItemKind = iota
	KindRecipe
	KindNote
	KindSticker // free-floating overlay; never occupies a grid slot
)

// String returns the kind name.
func (k ItemKind) String() string {
	switch k {
	case KindBook:
		return "book"
	case KindRecipe:
		return "recipe"
	case KindNote:
		return "note"
	case KindSticker:
		return "sticker"
	default:
		return fmt.Sprintf("ItemKind(%d)", k)
	}
}

// Overlay reports whether items of this kind float above the grid instead of
// occupying a slot.
func (k ItemKind) Overlay() bool {
	return k == KindSticker
}

// SlotRef addresses a grid slot.
type SlotRef struct {
	Position    int
	ContainerID string
}

// GridItem is a shelf item as seen by the grid controller.
type GridItem struct {
	ID          string
	Position    int
	ContainerID string
	Kind        ItemKind
}

// Slot returns the slot the item sits in.
func (it GridItem) Slot() SlotRef {
	return SlotRef{Position: it.Position, ContainerID: it.ContainerID}
}

// ItemPatch moves one item to a new slot.
type ItemPatch struct {
	ID          string
	Position    int
	ContainerID string
}

// ItemStore is the central item collection the grid controller works
// against. Apply must be all-or-nothing: readers never observe a subset of
// the patches.
type ItemStore interface {
	Item(id string) (GridItem, bool)
	ItemAt(position int, containerID string) (GridItem, bool)
	Apply(patches ...ItemPatch) error
}

// MemoryItemStore is an in-memory ItemStore with an occupancy index over
// non-overlay items.
type MemoryItemStore struct {
	items   map[string]GridItem
	index   map[SlotRef]string
	changed listeners[[]GridItem]
}

// NewMemoryItemStore creates an empty store.
func NewMemoryItemStore() *MemoryItemStore {
	return &MemoryItemStore{
		items: make(map[string]GridItem),
		index: make(map[SlotRef]string),
	}
}

// Add inserts an item, assigning a random ID when it has none.
func (s *MemoryItemStore) Add(it GridItem) (GridItem, error) {
	if it.ID == "" {
		it.ID = uuid.New().String()
	}
	if _, dup := s.items[it.ID]; dup {
		return GridItem{}, fmt.Errorf("add item %s: duplicate id", it.ID)
	}
	if !it.Kind.Overlay() {
		if other, taken := s.index[it.Slot()]; taken {
			return GridItem{}, fmt.Errorf("add item %s at %s/%d (held by %s): %w",
				it.ID, it.ContainerID, it.Position, other, ErrOccupied)
		}
		s.index[it.Slot()] = it.ID
	}
	s.items[it.ID] = it
	s.changed.emit([]GridItem{it})
	return it, nil
}

// Remove deletes an item. Removing an unknown id does nothing.
func (s *MemoryItemStore) Remove(id string) {
	it, ok := s.items[id]
	if !ok {
		return
	}
	delete(s.items, id)
	if !it.Kind.Overlay() && s.index[it.Slot()] == id {
		delete(s.index, it.Slot())
	}
}

// Item implements ItemStore.
func (s *MemoryItemStore) Item(id string) (GridItem, bool) {
	it, ok := s.items[id]
	return it, ok
}

// ItemAt implements ItemStore. Overlay items are never returned.
func (s *MemoryItemStore) ItemAt(position int, containerID string) (GridItem, bool) {
	id, ok := s.index[SlotRef{Position: position, ContainerID: containerID}]
	if !ok {
		return GridItem{}, false
	}
	return s.items[id], true
}

// Items returns every item ordered by container then position.
func (s *MemoryItemStore) Items() []GridItem {
	out := make([]GridItem, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	slices.SortFunc(out, func(a, b GridItem) int {
		if c := cmp.Compare(a.ContainerID, b.ContainerID); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Position, b.Position); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Len returns the number of items.
func (s *MemoryItemStore) Len() int {
	return len(s.items)
}

// OnChange registers a callback fired once per Add or Apply with the items
// that changed.
func (s *MemoryItemStore) OnChange(fn func([]GridItem)) CallbackHandle {
	return s.changed.add(fn)
}

// Apply implements ItemStore. The patches are validated as a whole against
// the occupancy invariant before any of them is written.
func (s *MemoryItemStore) Apply(patches ...ItemPatch) error {
	if len(patches) == 0 {
		return nil
	}
	next := make([]GridItem, 0, len(patches))
	moving := make(map[string]bool, len(patches))
	for _, p := range patches {
		it, ok := s.items[p.ID]
		if !ok {
			return fmt.Errorf("apply patch %s: %w", p.ID, ErrUnknownItem)
		}
		if moving[p.ID] {
			return fmt.Errorf("apply patch %s: item patched twice", p.ID)
		}
		moving[p.ID] = true
		it.Position = p.Position
		it.ContainerID = p.ContainerID
		next = append(next, it)
	}

	claimed := make(map[SlotRef]string, len(next))
	for _, it := range next {
		if it.Kind.Overlay() {
			continue
		}
		slot := it.Slot()
		if other, ok := claimed[slot]; ok {
			return fmt.Errorf("apply patch %s: slot %s/%d also claimed by %s: %w",
				it.ID, slot.ContainerID, slot.Position, other, ErrOccupied)
		}
		if holder, ok := s.index[slot]; ok && !moving[holder] {
			return fmt.Errorf("apply patch %s: slot %s/%d held by %s: %w",
				it.ID, slot.ContainerID, slot.Position, holder, ErrOccupied)
		}
		claimed[slot] = it.ID
	}

	for _, it := range next {
		old := s.items[it.ID]
		if !old.Kind.Overlay() && s.index[old.Slot()] == it.ID {
			delete(s.index, old.Slot())
		}
	}
	for _, it := range next {
		s.items[it.ID] = it
		if !it.Kind.Overlay() {
			s.index[it.Slot()] = it.ID
		}
	}
	s.changed.emit(next)
	return nil
}
