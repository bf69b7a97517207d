package shelf

import "time"

const (
	defaultSafetyTimeout = 5 * time.Second
	defaultHoverDebounce = 50 * time.Millisecond
)

// DropResult describes how a drop resolved.
type DropResult uint8

const (
	DropNone    DropResult = iota // nothing changed
	DropMoved                     // the dragged item moved into an empty slot
	DropSwapped                   // the dragged item traded slots with the occupant
	DropFiles                     // the payload carried files, handed to OnFilesAccepted
)

// String returns the result name.
func (r DropResult) String() string {
	switch r {
	case DropMoved:
		return "moved"
	case DropSwapped:
		return "swapped"
	case DropFiles:
		return "files"
	default:
		return "none"
	}
}

// DroppedFile describes a file dropped onto a slot.
type DroppedFile struct {
	Name     string
	MIMEType string
	Size     int64
	Path     string
}

// DropPayload is what a drop carries: either an item id or files.
type DropPayload struct {
	ItemID string
	Files  []DroppedFile
}

// DragSession is the single in-flight grid drag.
type DragSession struct {
	ItemID    string
	Start     Vec2
	Last      Vec2
	Velocity  Vec2
	StartedAt time.Time
}

// GridEvent is passed to Grid.OnEvent callbacks.
type GridEvent struct {
	Type   EventType // EventDragStart, EventDragEnd, EventDrop or EventFilesDropped
	ItemID string
	Target SlotRef
	Result DropResult
	// Forced is set on EventDragEnd when the safety timeout ended the drag.
	Forced bool
}

// GridConfig configures a Grid. Zero fields take defaults.
type GridConfig struct {
	// SafetyTimeout force-ends a drag that never receives an end event.
	SafetyTimeout time.Duration
	// HoverDebounce delays clearing hover feedback after a drag-leave so
	// crossing inner boundaries of the same target does not flicker.
	HoverDebounce time.Duration
	// OnFilesAccepted receives file drops. Nil discards them.
	OnFilesAccepted func(files []DroppedFile, target SlotRef)
}

func (c GridConfig) withDefaults() GridConfig {
	if c.SafetyTimeout <= 0 {
		c.SafetyTimeout = defaultSafetyTimeout
	}
	if c.HoverDebounce <= 0 {
		c.HoverDebounce = defaultHoverDebounce
	}
	return c
}

// Grid moves and swaps shelf items between slots by drag and drop. It owns
// the only drag session; starting a new drag replaces the old one.
type Grid struct {
	cfg   GridConfig
	store ItemStore
	sched *Scheduler

	session *DragSession
	timeout Handle

	hover      SlotRef
	hovering   bool
	hoverClear Handle

	events listeners[GridEvent]
	logf   func(format string, args ...any)
}

// NewGrid creates a Grid over store.
func NewGrid(store ItemStore, sched *Scheduler, cfg GridConfig) *Grid {
	return &Grid{
		cfg:   cfg.withDefaults(),
		store: store,
		sched: sched,
		logf:  func(string, ...any) {},
	}
}

// OnEvent registers a callback for drag starts, drag ends and drops.
func (g *Grid) OnEvent(fn func(GridEvent)) CallbackHandle {
	return g.events.add(fn)
}

// IsDragging reports whether a drag session is active.
func (g *Grid) IsDragging() bool {
	return g.session != nil
}

// Session returns a copy of the active drag session.
func (g *Grid) Session() (DragSession, bool) {
	if g.session == nil {
		return DragSession{}, false
	}
	return *g.session, true
}

// StartDrag begins dragging itemID. Unknown ids are ignored.
func (g *Grid) StartDrag(itemID string) {
	g.StartDragAt(itemID, Vec2{})
}

// StartDragAt begins dragging itemID from pointer position p and arms the
// safety timeout. Any previous session ends first.
func (g *Grid) StartDragAt(itemID string, p Vec2) {
	if itemID == "" {
		return
	}
	if _, ok := g.store.Item(itemID); !ok {
		g.logf("start drag: unknown item %q", itemID)
		return
	}
	g.endDrag(false)
	g.session = &DragSession{
		ItemID:    itemID,
		Start:     p,
		Last:      p,
		StartedAt: g.sched.Now(),
	}
	g.timeout = g.sched.After(g.cfg.SafetyTimeout, g.forceEnd)
	g.events.emit(GridEvent{Type: EventDragStart, ItemID: itemID})
}

// TrackDrag records the pointer position of the active drag.
func (g *Grid) TrackDrag(p Vec2) {
	if g.session == nil {
		return
	}
	g.session.Velocity = p.Sub(g.session.Last)
	g.session.Last = p
}

func (g *Grid) forceEnd() {
	g.timeout = 0
	if g.session != nil {
		g.logf("drag of %s force-ended after %v without a drop", g.session.ItemID, g.cfg.SafetyTimeout)
	}
	g.endDrag(true)
}

// EndDrag clears the drag session, the safety timeout, and hover feedback.
// Calling it with no active session does nothing.
func (g *Grid) EndDrag() {
	g.endDrag(false)
}

func (g *Grid) endDrag(forced bool) {
	g.sched.Cancel(g.timeout)
	g.timeout = 0
	g.sched.Cancel(g.hoverClear)
	g.hoverClear = 0
	g.hovering = false
	g.hover = SlotRef{}
	if g.session == nil {
		return
	}
	id := g.session.ItemID
	g.session = nil
	g.events.emit(GridEvent{Type: EventDragEnd, ItemID: id, Forced: forced})
}

// CanDrop reports whether itemID may be dropped on the target slot: the
// slot is empty, or allowSwap is set and another item occupies it.
func (g *Grid) CanDrop(itemID string, target int, containerID string, allowSwap bool) bool {
	it, ok := g.store.Item(itemID)
	if !ok || target < 0 || containerID == "" {
		return false
	}
	if it.Kind.Overlay() {
		return true
	}
	occ, occupied := g.store.ItemAt(target, containerID)
	if !occupied {
		return true
	}
	return allowSwap && occ.ID != itemID
}

// Drop resolves a drop of itemID on the target slot; see DropData.
func (g *Grid) Drop(itemID string, target int, containerID string) DropResult {
	return g.DropData(DropPayload{ItemID: itemID}, target, containerID)
}

// DropData resolves one drop event and ends the drag session:
//
//   - files are handed to OnFilesAccepted and occupancy is not touched;
//   - an empty target slot receives the item;
//   - an occupied slot swaps the two items in a single store update;
//   - dropping an item on its own slot, or an unrecognised payload, does
//     nothing.
func (g *Grid) DropData(p DropPayload, target int, containerID string) DropResult {
	defer g.endDrag(false)
	slot := SlotRef{Position: target, ContainerID: containerID}

	if len(p.Files) > 0 {
		if g.cfg.OnFilesAccepted != nil {
			g.cfg.OnFilesAccepted(p.Files, slot)
		}
		g.events.emit(GridEvent{Type: EventFilesDropped, Target: slot, Result: DropFiles})
		return DropFiles
	}

	it, ok := g.store.Item(p.ItemID)
	if !ok {
		if p.ItemID != "" {
			g.logf("drop: unknown item %q", p.ItemID)
		}
		return DropNone
	}
	if target < 0 || containerID == "" {
		return DropNone
	}

	occ, occupied := g.store.ItemAt(target, containerID)
	if !occupied || it.Kind.Overlay() {
		if it.Slot() == slot {
			return DropNone
		}
		if err := g.store.Apply(ItemPatch{ID: it.ID, Position: target, ContainerID: containerID}); err != nil {
			g.logf("drop %s: %v", it.ID, err)
			return DropNone
		}
		g.events.emit(GridEvent{Type: EventDrop, ItemID: it.ID, Target: slot, Result: DropMoved})
		return DropMoved
	}
	if occ.ID == it.ID {
		return DropNone
	}

	// The occupant takes the dragged item's old slot, container included,
	// so a swap across shelves keeps both shelves consistent.
	err := g.store.Apply(
		ItemPatch{ID: it.ID, Position: target, ContainerID: containerID},
		ItemPatch{ID: occ.ID, Position: it.Position, ContainerID: it.ContainerID},
	)
	if err != nil {
		g.logf("swap %s with %s: %v", it.ID, occ.ID, err)
		return DropNone
	}
	g.events.emit(GridEvent{Type: EventDrop, ItemID: it.ID, Target: slot, Result: DropSwapped})
	return DropSwapped
}

// --- Hover feedback ---

// DragEnter marks slot as the current drop target.
func (g *Grid) DragEnter(slot SlotRef) {
	g.sched.Cancel(g.hoverClear)
	g.hoverClear = 0
	g.hover = slot
	g.hovering = true
}

// DragLeave clears the hover target after a short debounce, unless the
// pointer enters a slot again first.
func (g *Grid) DragLeave(slot SlotRef) {
	if !g.hovering || g.hover != slot || g.hoverClear != 0 {
		return
	}
	g.hoverClear = g.sched.After(g.cfg.HoverDebounce, func() {
		g.hoverClear = 0
		g.hovering = false
		g.hover = SlotRef{}
	})
}

// HoverTarget returns the slot currently highlighted as drop target.
func (g *Grid) HoverTarget() (SlotRef, bool) {
	return g.hover, g.hovering
}

// Dispose ends any session and cancels all pending timers.
func (g *Grid) Dispose() {
	g.endDrag(false)
	g.events.reset()
}
