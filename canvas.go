package shelf

import (
	"io"
	"time"
)

// Viewport persistence keys in the TransformStore.
const (
	viewportStoreContainer = "__viewport"
	viewportStoreSlot      = 0
)

// StickerTarget marks a pointer target as a sticker. The rendering layer
// sets PointerEvent.Target to a StickerTarget when a press lands on one, and
// the canvas routes the drag to the sticker instead of panning.
type StickerTarget struct {
	Key ItemKey
}

// GridTarget marks a pointer target as a grid item. A press on one starts a
// grid drag session; the release drops the item on the slot under the
// pointer, located with CanvasConfig.SlotAt.
type GridTarget struct {
	ItemID string
}

// CanvasConfig configures a Canvas.
type CanvasConfig struct {
	Viewport ViewportConfig
	Gesture  GestureConfig
	Stickers StickerConfig
	Grid     GridConfig
	// Clock drives the scheduler. Nil uses time.Now.
	Clock func() time.Time
	// Store persists sticker transforms and, when PersistViewport is set, the
	// viewport transform. Nil keeps everything in memory.
	Store TransformStore
	// PersistViewport restores the viewport from Store on creation and writes
	// it back every time a gesture settles.
	PersistViewport bool
	// Sink receives the viewport transform as named properties.
	Sink PropertySink
	// SlotAt reports the grid slot under a canvas-space point. Nil disables
	// pointer-driven grid drops; the Grid API still works.
	SlotAt func(world Vec2) (SlotRef, bool)
}

// Canvas is the top-level object that owns the scheduler, the viewport and
// its gesture core, the stickers, and the grid controller, and routes input
// to them. Drive it by calling the Handle methods from input callbacks and
// Update once per frame.
type Canvas struct {
	sched    *Scheduler
	viewport *Viewport
	gesture  *Gesture
	stickers *StickerSet
	grid     *Grid
	items    ItemStore
	store    TransformStore
	sink     EventSink

	activeSticker *Sticker
	gridPointer   int
	gridKind      PointerKind
	gridByPointer bool
	slotAt        func(world Vec2) (SlotRef, bool)
	prevViewport  ViewportTransform

	injectQueue []syntheticEvent
	runner      *ScriptRunner

	disposers []func()
	disposed  bool
	debug     bool
	debugOut  io.Writer
}

// NewCanvas creates a canvas over the given item store. A nil store gets an
// empty MemoryItemStore.
func NewCanvas(items ItemStore, cfg CanvasConfig) *Canvas {
	if items == nil {
		items = NewMemoryItemStore()
	}
	sched := NewScheduler(cfg.Clock)
	vp := NewViewport(sched, cfg.Viewport)

	stickerCfg := cfg.Stickers
	if stickerCfg.PointerScale == nil {
		stickerCfg.PointerScale = func() float64 { return vp.Transform().Scale }
	}

	c := &Canvas{
		sched:    sched,
		viewport: vp,
		gesture:  NewGesture(vp, sched, cfg.Gesture),
		stickers: NewStickerSet(stickerCfg, cfg.Store),
		grid:     NewGrid(items, sched, cfg.Grid),
		items:    items,
		store:    cfg.Store,
		slotAt:   cfg.SlotAt,
	}

	if cfg.PersistViewport && cfg.Store != nil {
		c.loadViewport()
		c.addHandle(c.gesture.OnSettle(c.saveViewport))
	}
	if cfg.Sink != nil {
		vp.SetPropertySink(cfg.Sink)
	}
	c.prevViewport = vp.Transform()

	c.addHandle(vp.OnChange(c.viewportChanged))
	c.addHandle(c.grid.OnEvent(c.gridEvent))
	c.addHandle(c.stickers.OnDragEnd(c.stickerSettled))
	c.disposers = append(c.disposers,
		c.gesture.Dispose,
		c.grid.Dispose,
		c.stickers.Dispose,
		vp.StopMotion,
	)
	return c
}

func (c *Canvas) addHandle(h CallbackHandle) {
	c.disposers = append(c.disposers, h.Remove)
}

// Scheduler returns the canvas scheduler.
func (c *Canvas) Scheduler() *Scheduler { return c.sched }

// Viewport returns the viewport controller.
func (c *Canvas) Viewport() *Viewport { return c.viewport }

// Gesture returns the gesture core.
func (c *Canvas) Gesture() *Gesture { return c.gesture }

// Stickers returns the sticker set.
func (c *Canvas) Stickers() *StickerSet { return c.stickers }

// Grid returns the drag-and-drop grid controller.
func (c *Canvas) Grid() *Grid { return c.grid }

// Items returns the item store the grid works against.
func (c *Canvas) Items() ItemStore { return c.items }

// SetEventSink sets the optional event fan-out.
func (c *Canvas) SetEventSink(sink EventSink) {
	c.sink = sink
}

// Update consumes one injected input event, advances the test runner, and
// runs due frame callbacks and timers.
func (c *Canvas) Update() {
	if c.disposed {
		return
	}
	if c.runner != nil {
		c.runner.step(c)
	}
	c.processInjectedInput()
	c.sched.Tick()
}

// Dispose releases every subscription, pending frame, and timer. The canvas
// ignores input afterwards. Calling Dispose twice is harmless.
func (c *Canvas) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	for i := len(c.disposers) - 1; i >= 0; i-- {
		c.disposers[i]()
	}
	c.disposers = nil
	c.activeSticker = nil
	c.injectQueue = nil
	c.runner = nil
}

// Disposed reports whether Dispose has been called.
func (c *Canvas) Disposed() bool {
	return c.disposed
}

// --- Input routing ---

// HandlePointerDown routes a press: onto a sticker it starts a sticker drag,
// onto a grid item it starts a grid drag, anywhere else it goes to the
// gesture core. It reports whether the event was consumed.
func (c *Canvas) HandlePointerDown(ev PointerEvent) bool {
	if c.disposed {
		return false
	}
	if t, ok := ev.Target.(GridTarget); ok && !c.grid.IsDragging() {
		c.grid.StartDragAt(t.ItemID, ev.Pos())
		if !c.grid.IsDragging() {
			return false
		}
		c.gridPointer = ev.ID
		c.gridKind = ev.Kind
		c.gridByPointer = true
		return true
	}
	if t, ok := ev.Target.(StickerTarget); ok && c.activeSticker == nil {
		st := c.stickers.Sticker(t.Key)
		if !st.Bound() {
			return false
		}
		st.BeginDrag(ev)
		c.activeSticker = st
		return true
	}
	return c.gesture.PointerDown(ev)
}

// HandlePointerMove routes a move to the grid drag session, the active
// sticker drag, or the gesture core.
func (c *Canvas) HandlePointerMove(ev PointerEvent) bool {
	if c.disposed {
		return false
	}
	if c.pointerDrivesGrid(ev) {
		c.grid.TrackDrag(ev.Pos())
		c.updateHover(ev.Pos())
		return true
	}
	if st := c.activeSticker; st != nil && st.OwnsPointer(ev) {
		st.DragMove(ev)
		return true
	}
	return c.gesture.PointerMove(ev)
}

// HandlePointerUp routes a release.
func (c *Canvas) HandlePointerUp(ev PointerEvent) bool {
	if c.disposed {
		return false
	}
	if c.pointerDrivesGrid(ev) {
		s, _ := c.grid.Session()
		if slot, ok := c.slotUnder(ev.Pos()); ok {
			c.grid.Drop(s.ItemID, slot.Position, slot.ContainerID)
		} else {
			c.grid.EndDrag()
		}
		return true
	}
	if st := c.activeSticker; st != nil && st.OwnsPointer(ev) {
		st.EndDrag(ev)
		c.activeSticker = nil
		return true
	}
	return c.gesture.PointerUp(ev)
}

// HandlePointerCancel abandons whatever the pointer was doing.
func (c *Canvas) HandlePointerCancel() {
	if c.disposed {
		return
	}
	c.grid.EndDrag()
	if c.activeSticker != nil {
		c.activeSticker.CancelDrag()
		c.activeSticker = nil
	}
	c.gesture.Cancel()
}

func (c *Canvas) pointerDrivesGrid(ev PointerEvent) bool {
	return c.gridByPointer && ev.ID == c.gridPointer && ev.Kind == c.gridKind && c.grid.IsDragging()
}

func (c *Canvas) slotUnder(screen Vec2) (SlotRef, bool) {
	if c.slotAt == nil {
		return SlotRef{}, false
	}
	return c.slotAt(c.viewport.ScreenToWorld(screen))
}

func (c *Canvas) updateHover(screen Vec2) {
	cur, hovering := c.grid.HoverTarget()
	slot, ok := c.slotUnder(screen)
	if ok && hovering && slot == cur {
		return
	}
	if hovering {
		c.grid.DragLeave(cur)
	}
	if ok {
		c.grid.DragEnter(slot)
	}
}

// HandleWheel routes a wheel event. It returns false for plain scrolling,
// which the caller handles.
func (c *Canvas) HandleWheel(ev WheelEvent) bool {
	if c.disposed {
		return false
	}
	return c.gesture.Wheel(ev)
}

// HandleKey routes a key press.
func (c *Canvas) HandleKey(ev KeyEvent) bool {
	if c.disposed {
		return false
	}
	return c.gesture.Key(ev)
}

// --- Event fan-out ---

func (c *Canvas) emit(e Event) {
	if c.sink != nil {
		c.sink.EmitEvent(e)
	}
}

func (c *Canvas) viewportChanged(t ViewportTransform) {
	prev := c.prevViewport
	c.prevViewport = t
	typ := EventPan
	switch {
	case t == IdentityViewport && prev != IdentityViewport:
		typ = EventReset
	case t.Scale != prev.Scale:
		typ = EventZoom
	}
	c.emit(Event{Type: typ, Scale: t.Scale, TranslateX: t.TranslateX, TranslateY: t.TranslateY})
}

func (c *Canvas) gridEvent(e GridEvent) {
	if e.Type == EventDragEnd {
		c.gridByPointer = false
	}
	c.emit(Event{
		Type:        e.Type,
		ItemID:      e.ItemID,
		ContainerID: e.Target.ContainerID,
		Position:    e.Target.Position,
	})
}

func (c *Canvas) stickerSettled(ch StickerChange) {
	c.emit(Event{
		Type:        EventStickerMoved,
		ContainerID: ch.Key.ContainerID,
		Position:    ch.Key.Slot,
		Point:       ch.Transform.Position,
		Scale:       ch.Transform.Scale,
	})
}

// --- Viewport persistence ---

func (c *Canvas) loadViewport() {
	t := c.viewport.Transform()
	read := func(field string, dst *float64) {
		v, ok, err := c.store.Get(viewportStoreContainer, viewportStoreSlot, field)
		if err != nil {
			c.debugLog("load viewport %s: %v", field, err)
			return
		}
		if ok {
			*dst = v
		}
	}
	read(FieldScale, &t.Scale)
	read(FieldX, &t.TranslateX)
	read(FieldY, &t.TranslateY)
	c.viewport.SetTransform(TransformPatch{Scale: &t.Scale, TranslateX: &t.TranslateX, TranslateY: &t.TranslateY})
}

func (c *Canvas) saveViewport(t ViewportTransform) {
	for _, f := range []struct {
		name string
		v    float64
	}{{FieldScale, t.Scale}, {FieldX, t.TranslateX}, {FieldY, t.TranslateY}} {
		if err := c.store.Set(viewportStoreContainer, viewportStoreSlot, f.name, f.v); err != nil {
			c.debugLog("save viewport %s: %v", f.name, err)
		}
	}
}
