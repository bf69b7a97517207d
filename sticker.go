package shelf

import (
	"fmt"
	"math"
)

const (
	defaultStickerMinScale     = 0.1
	defaultStickerMaxScale     = 3.0
	defaultStickerRotationStep = 15.0
	defaultExtendedModifier    = ModAlt
)

// Persisted field names for sticker transforms.
const (
	FieldScale    = "scale"
	FieldX        = "x"
	FieldY        = "y"
	FieldRotation = "rotation"
)

// ItemKey addresses a sticker slot: the shelf (container) it sits on and the
// slot index within it.
type ItemKey struct {
	ContainerID string
	Slot        int
}

// Valid reports whether the key names a real slot. Stickers with an invalid
// key are rendered disabled and ignore drags.
func (k ItemKey) Valid() bool {
	return k.ContainerID != "" && k.Slot >= 0
}

// String returns "container/slot".
func (k ItemKey) String() string {
	return fmt.Sprintf("%s/%d", k.ContainerID, k.Slot)
}

// ItemTransform is the free placement of a sticker inside its slot.
// Position is relative to the slot centre; Rotation is in degrees and is not
// normalised.
type ItemTransform struct {
	Scale    float64
	Position Vec2
	Rotation float64
}

// DefaultItemTransform is the transform of an untouched sticker.
var DefaultItemTransform = ItemTransform{Scale: 1}

// TransformStore persists sticker transform fields keyed by
// (containerID, slot, field). Implementations live in package kv.
type TransformStore interface {
	Get(containerID string, slot int, field string) (float64, bool, error)
	Set(containerID string, slot int, field string, value float64) error
	Delete(containerID string, slot int, field string) error
}

// StickerConfig configures a StickerSet. Zero fields take defaults.
type StickerConfig struct {
	MinScale     float64
	MaxScale     float64
	RotationStep float64 // degrees per Rotate call
	// ExtendedModifier enlarges the boundary while held during a drag.
	ExtendedModifier KeyModifiers
	// Boundary sizes the allowed region; zero uses DefaultBoundaryPolicy.
	Boundary BoundaryPolicy
	// HistorySize bounds the per-sticker position undo stack.
	HistorySize int
	// ContainerSize reports the slot size for a key. Nil or a zero result
	// pins stickers to the slot centre unless extended.
	ContainerSize func(ItemKey) Vec2
	// PointerScale converts pointer deltas (screen pixels) into slot units,
	// normally the viewport scale. Nil means 1.
	PointerScale func() float64
}

func (c StickerConfig) withDefaults() StickerConfig {
	if c.MinScale <= 0 {
		c.MinScale = defaultStickerMinScale
	}
	if c.MaxScale <= 0 {
		c.MaxScale = defaultStickerMaxScale
	}
	if c.RotationStep == 0 {
		c.RotationStep = defaultStickerRotationStep
	}
	if c.ExtendedModifier == 0 {
		c.ExtendedModifier = defaultExtendedModifier
	}
	if c.Boundary == (BoundaryPolicy{}) {
		c.Boundary = DefaultBoundaryPolicy
	}
	if c.HistorySize <= 0 {
		c.HistorySize = defaultHistorySize
	}
	return c
}

// StickerChange is passed to StickerSet callbacks.
type StickerChange struct {
	Key       ItemKey
	Transform ItemTransform
}

// StickerSet owns the transforms of every sticker on the canvas and the
// persistence of them.
type StickerSet struct {
	cfg      StickerConfig
	store    TransformStore
	stickers map[ItemKey]*Sticker
	changed  listeners[StickerChange]
	settled  listeners[StickerChange]
	logf     func(format string, args ...any)
}

// NewStickerSet creates a StickerSet. store may be nil, in which case
// transforms live only in memory.
func NewStickerSet(cfg StickerConfig, store TransformStore) *StickerSet {
	return &StickerSet{
		cfg:      cfg.withDefaults(),
		store:    store,
		stickers: make(map[ItemKey]*Sticker),
		logf:     func(string, ...any) {},
	}
}

// Sticker returns the sticker for key, creating it and restoring its
// persisted transform on first use. An invalid key yields a detached,
// disabled sticker that ignores drags.
func (s *StickerSet) Sticker(key ItemKey) *Sticker {
	if !key.Valid() {
		return &Sticker{set: s, t: DefaultItemTransform, history: newPositionHistory(s.cfg.HistorySize)}
	}
	if st, ok := s.stickers[key]; ok {
		return st
	}
	st := &Sticker{
		set:     s,
		key:     key,
		bound:   true,
		t:       DefaultItemTransform,
		history: newPositionHistory(s.cfg.HistorySize),
	}
	s.stickers[key] = st
	st.load()
	return st
}

// Transform returns the transform of an existing sticker.
func (s *StickerSet) Transform(key ItemKey) (ItemTransform, bool) {
	st, ok := s.stickers[key]
	if !ok {
		return ItemTransform{}, false
	}
	return st.t, true
}

// Len returns the number of stickers created so far.
func (s *StickerSet) Len() int {
	return len(s.stickers)
}

// OnChange registers a callback fired after every committed transform,
// including each drag move.
func (s *StickerSet) OnChange(fn func(StickerChange)) CallbackHandle {
	return s.changed.add(fn)
}

// OnDragEnd registers a callback fired with the final clamped position when
// a sticker drag ends.
func (s *StickerSet) OnDragEnd(fn func(StickerChange)) CallbackHandle {
	return s.settled.add(fn)
}

// Dispose abandons in-flight drags and drops all callbacks.
func (s *StickerSet) Dispose() {
	for _, st := range s.stickers {
		st.drag = stickerDrag{}
	}
	s.changed.reset()
	s.settled.reset()
}

func (s *StickerSet) containerSize(key ItemKey) Vec2 {
	if s.cfg.ContainerSize == nil {
		return Vec2{}
	}
	return s.cfg.ContainerSize(key)
}

func (s *StickerSet) pointerScale() float64 {
	if s.cfg.PointerScale == nil {
		return 1
	}
	k := s.cfg.PointerScale()
	if k <= 0 || math.IsNaN(k) || math.IsInf(k, 0) {
		return 1
	}
	return k
}

type stickerDrag struct {
	active   bool
	pointer  int
	kind     PointerKind
	start    Vec2
	initial  Vec2
	extended bool
}

// Sticker is one freely placed decoration. All methods are total: invalid
// input is ignored and out-of-range values are clamped.
type Sticker struct {
	set     *StickerSet
	key     ItemKey
	bound   bool
	t       ItemTransform
	drag    stickerDrag
	history positionHistory
}

// Key returns the slot the sticker is bound to.
func (st *Sticker) Key() ItemKey { return st.key }

// Bound reports whether the sticker is bound to a slot.
func (st *Sticker) Bound() bool { return st.bound }

// Transform returns the current transform.
func (st *Sticker) Transform() ItemTransform { return st.t }

// Dragging reports whether a drag is in progress.
func (st *Sticker) Dragging() bool { return st.drag.active }

// OwnsPointer reports whether ev comes from the contact driving the current
// drag. Mouse and touch ids are separate namespaces.
func (st *Sticker) OwnsPointer(ev PointerEvent) bool {
	return st.drag.active && ev.ID == st.drag.pointer && ev.Kind == st.drag.kind
}

// Extended reports whether the in-progress drag uses the extended boundary.
func (st *Sticker) Extended() bool { return st.drag.active && st.drag.extended }

// Boundary returns the boundary currently in force: the drag's boundary
// while dragging, otherwise the resting boundary.
func (st *Sticker) Boundary() Boundary {
	if st.drag.active {
		return st.boundary(st.drag.extended)
	}
	return st.restingBoundary()
}

// restingBoundary is the widest region a sticker may occupy when no drag is
// in progress: a drag that ended in extended mode may leave it there.
func (st *Sticker) restingBoundary() Boundary {
	return st.boundary(true)
}

func (st *Sticker) boundary(extended bool) Boundary {
	return st.set.cfg.Boundary.Compute(st.set.containerSize(st.key), st.t.Scale, extended)
}

// BeginDrag starts moving the sticker. Ignored when the sticker is not bound
// to a slot.
func (st *Sticker) BeginDrag(ev PointerEvent) {
	if !st.bound {
		return
	}
	st.drag = stickerDrag{
		active:   true,
		pointer:  ev.ID,
		kind:     ev.Kind,
		start:    ev.Pos(),
		initial:  st.t.Position,
		extended: ev.Modifiers.Has(st.set.cfg.ExtendedModifier),
	}
}

// DragMove moves the sticker to its start position plus the pointer
// displacement, clamped to the boundary. The extended-bounds modifier is
// read from every move so pressing or releasing it mid-drag switches the
// boundary immediately.
func (st *Sticker) DragMove(ev PointerEvent) {
	if !st.OwnsPointer(ev) {
		return
	}
	st.drag.extended = ev.Modifiers.Has(st.set.cfg.ExtendedModifier)
	st.commitPosition(st.candidate(ev))
}

// EndDrag finishes the drag, commits and persists the final clamped position
// and returns it. ok is false when no drag was in progress.
func (st *Sticker) EndDrag(ev PointerEvent) (final Vec2, ok bool) {
	if !st.OwnsPointer(ev) {
		return Vec2{}, false
	}
	st.drag.extended = ev.Modifiers.Has(st.set.cfg.ExtendedModifier)
	final = st.boundary(st.drag.extended).Clamp(st.candidate(ev))
	initial := st.drag.initial
	st.drag = stickerDrag{}

	st.t.Position = final
	st.notify()
	if final != initial {
		st.history.push(initial)
	}
	st.persist(FieldX, final.X)
	st.persist(FieldY, final.Y)
	st.set.settled.emit(StickerChange{Key: st.key, Transform: st.t})
	return final, true
}

// CancelDrag abandons a drag and returns the sticker to where it started.
func (st *Sticker) CancelDrag() {
	if !st.drag.active {
		return
	}
	initial := st.drag.initial
	st.drag = stickerDrag{}
	st.t.Position = initial
	st.notify()
}

func (st *Sticker) candidate(ev PointerEvent) Vec2 {
	d := ev.Pos().Sub(st.drag.start).Mul(1 / st.set.pointerScale())
	return st.drag.initial.Add(d)
}

// commitPosition clamps p to the active boundary and notifies.
func (st *Sticker) commitPosition(p Vec2) {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) {
		return
	}
	st.t.Position = st.Boundary().Clamp(p)
	st.notify()
}

// Rotate turns the sticker by one rotation step; a negative direction turns
// counter-clockwise. Rotation is not normalised.
func (st *Sticker) Rotate(direction int) {
	if !st.bound || direction == 0 {
		return
	}
	step := st.set.cfg.RotationStep
	if direction < 0 {
		step = -step
	}
	st.t.Rotation += step
	st.notify()
	st.persist(FieldRotation, st.t.Rotation)
}

// SetScale sets the sticker scale, clamped to [MinScale, MaxScale]. The
// position is re-clamped because a larger sticker has less room.
func (st *Sticker) SetScale(v float64) {
	if !st.bound || math.IsNaN(v) {
		return
	}
	st.t.Scale = Clamp(v, st.set.cfg.MinScale, st.set.cfg.MaxScale)
	st.t.Position = st.restingBoundary().Clamp(st.t.Position)
	st.notify()
	st.persist(FieldScale, st.t.Scale)
	st.persist(FieldX, st.t.Position.X)
	st.persist(FieldY, st.t.Position.Y)
}

// ResetTransform restores the default transform and clears the persisted
// fields and position history.
func (st *Sticker) ResetTransform() {
	if !st.bound {
		return
	}
	st.drag = stickerDrag{}
	st.t = DefaultItemTransform
	st.history.clear()
	st.notify()
	for _, f := range []string{FieldScale, FieldX, FieldY, FieldRotation} {
		st.remove(f)
	}
}

// UndoPosition moves the sticker back to the position it had before its most
// recent completed drag. It reports false when there is nothing to undo.
func (st *Sticker) UndoPosition() bool {
	if !st.bound || st.drag.active {
		return false
	}
	p, ok := st.history.pop()
	if !ok {
		return false
	}
	st.t.Position = st.restingBoundary().Clamp(p)
	st.notify()
	st.persist(FieldX, st.t.Position.X)
	st.persist(FieldY, st.t.Position.Y)
	return true
}

// HistoryLen returns the number of undoable positions.
func (st *Sticker) HistoryLen() int {
	return st.history.len()
}

func (st *Sticker) notify() {
	st.set.changed.emit(StickerChange{Key: st.key, Transform: st.t})
}

// load restores persisted fields. Read errors fall back to defaults.
func (st *Sticker) load() {
	store := st.set.store
	if store == nil {
		return
	}
	read := func(field string, dst *float64) {
		v, ok, err := store.Get(st.key.ContainerID, st.key.Slot, field)
		if err != nil {
			st.set.logf("load sticker %s %s: %v", st.key, field, err)
			return
		}
		if ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
			*dst = v
		}
	}
	read(FieldScale, &st.t.Scale)
	read(FieldX, &st.t.Position.X)
	read(FieldY, &st.t.Position.Y)
	read(FieldRotation, &st.t.Rotation)
	st.t.Scale = Clamp(st.t.Scale, st.set.cfg.MinScale, st.set.cfg.MaxScale)
	// Stored positions may predate a container resize.
	st.t.Position = st.restingBoundary().Clamp(st.t.Position)
}

func (st *Sticker) persist(field string, v float64) {
	if st.set.store == nil {
		return
	}
	if err := st.set.store.Set(st.key.ContainerID, st.key.Slot, field, v); err != nil {
		st.set.logf("save sticker %s %s: %v", st.key, field, err)
	}
}

func (st *Sticker) remove(field string) {
	if st.set.store == nil {
		return
	}
	if err := st.set.store.Delete(st.key.ContainerID, st.key.Slot, field); err != nil {
		st.set.logf("clear sticker %s %s: %v", st.key, field, err)
	}
}
