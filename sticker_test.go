package shelf

import (
	"errors"
	"testing"
)

// memStore is a TransformStore backed by a map, with optional failure
// injection.
type memStore struct {
	values map[ItemKey]map[string]float64
	fail   error
	sets   int
}

func newMemStore() *memStore {
	return &memStore{values: make(map[ItemKey]map[string]float64)}
}

func (m *memStore) Get(containerID string, slot int, field string) (float64, bool, error) {
	if m.fail != nil {
		return 0, false, m.fail
	}
	v, ok := m.values[ItemKey{containerID, slot}][field]
	return v, ok, nil
}

func (m *memStore) Set(containerID string, slot int, field string, value float64) error {
	if m.fail != nil {
		return m.fail
	}
	k := ItemKey{containerID, slot}
	if m.values[k] == nil {
		m.values[k] = make(map[string]float64)
	}
	m.values[k][field] = value
	m.sets++
	return nil
}

func (m *memStore) Delete(containerID string, slot int, field string) error {
	if m.fail != nil {
		return m.fail
	}
	delete(m.values[ItemKey{containerID, slot}], field)
	return nil
}

var stickerKey = ItemKey{ContainerID: "shelf-1", Slot: 2}

// newTestStickers returns a set whose slots are 200x100, so a scale-1
// sticker may move ±50 by ±25, or ±150 by ±75 when extended.
func newTestStickers(store TransformStore) *StickerSet {
	return NewStickerSet(StickerConfig{
		ContainerSize: func(ItemKey) Vec2 { return Vec2{200, 100} },
	}, store)
}

func drag(st *Sticker, from, to Vec2, mods KeyModifiers) Vec2 {
	st.BeginDrag(PointerEvent{X: from.X, Y: from.Y, Modifiers: mods})
	st.DragMove(PointerEvent{X: to.X, Y: to.Y, Modifiers: mods})
	p, _ := st.EndDrag(PointerEvent{X: to.X, Y: to.Y, Modifiers: mods})
	return p
}

func TestSticker_DragClampsToBoundary(t *testing.T) {
	tests := []struct {
		name string
		to   Vec2
		mods KeyModifiers
		want Vec2
	}{
		{"inside", Vec2{20, -10}, 0, Vec2{20, -10}},
		{"past right edge", Vec2{300, 0}, 0, Vec2{50, 0}},
		{"past corner", Vec2{-300, 300}, 0, Vec2{-50, 25}},
		{"extended", Vec2{300, 0}, ModAlt, Vec2{150, 0}},
		{"extended past corner", Vec2{-300, 300}, ModAlt, Vec2{-150, 75}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newTestStickers(nil).Sticker(stickerKey)
			got := drag(st, Vec2{}, tt.to, tt.mods)
			if got != tt.want {
				t.Errorf("EndDrag = %v, want %v", got, tt.want)
			}
			if st.Transform().Position != tt.want {
				t.Errorf("Position = %v, want %v", st.Transform().Position, tt.want)
			}
			if st.Dragging() {
				t.Error("still dragging after EndDrag")
			}
		})
	}
}

func TestSticker_ModifierToggledMidDrag(t *testing.T) {
	st := newTestStickers(nil).Sticker(stickerKey)
	st.BeginDrag(PointerEvent{X: 0, Y: 0})

	st.DragMove(PointerEvent{X: 120, Y: 0, Modifiers: ModAlt})
	if got := st.Transform().Position; got != (Vec2{120, 0}) {
		t.Fatalf("with Alt Position = %v, want (120,0)", got)
	}
	if !st.Extended() {
		t.Error("Extended = false with Alt held")
	}

	st.DragMove(PointerEvent{X: 120, Y: 0})
	if got := st.Transform().Position; got != (Vec2{50, 0}) {
		t.Errorf("after releasing Alt Position = %v, want (50,0)", got)
	}
	if st.Extended() {
		t.Error("Extended = true after releasing Alt")
	}
}

func TestSticker_IgnoresOtherPointerKind(t *testing.T) {
	st := newTestStickers(nil).Sticker(stickerKey)
	st.BeginDrag(PointerEvent{ID: 0, Kind: PointerMouse})
	if st.OwnsPointer(PointerEvent{ID: 0, Kind: PointerTouch}) {
		t.Error("touch 0 owns a mouse drag")
	}
	st.DragMove(PointerEvent{ID: 0, Kind: PointerTouch, X: 30, Y: 10})
	if _, ok := st.EndDrag(PointerEvent{ID: 0, Kind: PointerTouch, X: 30, Y: 10}); ok {
		t.Error("touch ended a mouse drag")
	}
	if st.Transform().Position != (Vec2{}) || !st.Dragging() {
		t.Errorf("Position = %v, Dragging = %v", st.Transform().Position, st.Dragging())
	}
}

func TestSticker_BoundaryAtRestIsExtended(t *testing.T) {
	st := newTestStickers(nil).Sticker(stickerKey)
	rest := Boundary{MinX: -150, MaxX: 150, MinY: -75, MaxY: 75}
	if got := st.Boundary(); got != rest {
		t.Errorf("idle Boundary = %+v, want %+v", got, rest)
	}
	st.BeginDrag(PointerEvent{})
	if got := st.Boundary(); got != (Boundary{MinX: -50, MaxX: 50, MinY: -25, MaxY: 25}) {
		t.Errorf("dragging Boundary = %+v, want the plain box", got)
	}
	// A position left in the extended region is inside the reported boundary.
	st.EndDrag(PointerEvent{X: 120, Y: 0, Modifiers: ModAlt})
	if !st.Boundary().Contains(st.Transform().Position) {
		t.Errorf("Position %v outside Boundary %+v", st.Transform().Position, st.Boundary())
	}
}

func TestSticker_UnboundIgnoresInput(t *testing.T) {
	set := newTestStickers(nil)
	changes := 0
	set.OnChange(func(StickerChange) { changes++ })

	for _, key := range []ItemKey{{}, {ContainerID: "shelf", Slot: -1}} {
		st := set.Sticker(key)
		if st.Bound() {
			t.Fatalf("key %+v reported bound", key)
		}
		st.BeginDrag(PointerEvent{})
		st.DragMove(PointerEvent{X: 40, Y: 40})
		if _, ok := st.EndDrag(PointerEvent{X: 40, Y: 40}); ok {
			t.Error("EndDrag reported a drag on an unbound sticker")
		}
		st.Rotate(1)
		st.SetScale(2)
		st.ResetTransform()
		if st.Transform() != DefaultItemTransform {
			t.Errorf("unbound Transform = %+v", st.Transform())
		}
	}
	if changes != 0 || set.Len() != 0 {
		t.Errorf("changes = %d, Len = %d", changes, set.Len())
	}
}

func TestSticker_PointerScale(t *testing.T) {
	set := NewStickerSet(StickerConfig{
		ContainerSize: func(ItemKey) Vec2 { return Vec2{200, 100} },
		PointerScale:  func() float64 { return 2 },
	}, nil)
	st := set.Sticker(stickerKey)
	if got := drag(st, Vec2{100, 100}, Vec2{140, 120}, 0); got != (Vec2{20, 10}) {
		t.Errorf("EndDrag = %v, want (20,10) in slot units", got)
	}
}

func TestSticker_Rotate(t *testing.T) {
	st := newTestStickers(nil).Sticker(stickerKey)
	for i := 0; i < 30; i++ {
		st.Rotate(1)
	}
	if r := st.Transform().Rotation; r != 450 {
		t.Errorf("Rotation = %v, want 450 (not normalised)", r)
	}
	st.Rotate(-1)
	st.Rotate(0)
	if r := st.Transform().Rotation; r != 435 {
		t.Errorf("Rotation = %v, want 435", r)
	}
}

func TestSticker_SetScale(t *testing.T) {
	st := newTestStickers(nil).Sticker(stickerKey)
	drag(st, Vec2{}, Vec2{50, 25}, 0)

	st.SetScale(1.5)
	// Half extents shrink to 200*(1-0.75)/2 = 25 normally, 125 at rest.
	if got := st.Transform(); got.Scale != 1.5 || got.Position != (Vec2{50, 25}) {
		t.Errorf("Transform = %+v", got)
	}

	st.SetScale(100)
	if s := st.Transform().Scale; s != 3 {
		t.Errorf("Scale = %v, want 3", s)
	}
	st.SetScale(0)
	if s := st.Transform().Scale; s != 0.1 {
		t.Errorf("Scale = %v, want 0.1", s)
	}
}

func TestSticker_SetScaleReclampsPosition(t *testing.T) {
	st := newTestStickers(nil).Sticker(stickerKey)
	drag(st, Vec2{}, Vec2{150, 75}, ModAlt)
	st.SetScale(3)
	// At scale 3 the item covers the slot; only the extension remains.
	if got := st.Transform().Position; got != (Vec2{100, 50}) {
		t.Errorf("Position = %v, want (100,50)", got)
	}
}

func TestSticker_ResetTransform(t *testing.T) {
	store := newMemStore()
	st := newTestStickers(store).Sticker(stickerKey)
	drag(st, Vec2{}, Vec2{10, 10}, 0)
	st.Rotate(1)
	st.SetScale(2)

	st.ResetTransform()
	if st.Transform() != DefaultItemTransform {
		t.Errorf("Transform = %+v, want default", st.Transform())
	}
	if n := len(store.values[stickerKey]); n != 0 {
		t.Errorf("%d persisted fields remain", n)
	}
	if st.HistoryLen() != 0 {
		t.Errorf("HistoryLen = %d, want 0", st.HistoryLen())
	}
}

func TestSticker_UndoPosition(t *testing.T) {
	st := newTestStickers(nil).Sticker(stickerKey)
	if st.UndoPosition() {
		t.Fatal("undo with empty history succeeded")
	}
	drag(st, Vec2{}, Vec2{10, 0}, 0)
	drag(st, Vec2{}, Vec2{0, 20}, 0)
	drag(st, Vec2{}, Vec2{0, 0}, 0) // no movement, not recorded

	if st.HistoryLen() != 2 {
		t.Fatalf("HistoryLen = %d, want 2", st.HistoryLen())
	}
	st.UndoPosition()
	if got := st.Transform().Position; got != (Vec2{10, 0}) {
		t.Errorf("after first undo Position = %v, want (10,0)", got)
	}
	st.UndoPosition()
	if got := st.Transform().Position; got != (Vec2{}) {
		t.Errorf("after second undo Position = %v, want origin", got)
	}
}

func TestSticker_HistoryIsBounded(t *testing.T) {
	set := NewStickerSet(StickerConfig{
		ContainerSize: func(ItemKey) Vec2 { return Vec2{200, 100} },
		HistorySize:   3,
	}, nil)
	st := set.Sticker(stickerKey)
	for i := 1; i <= 5; i++ {
		drag(st, Vec2{}, Vec2{1, 0}, 0)
	}
	if st.HistoryLen() != 3 {
		t.Errorf("HistoryLen = %d, want 3", st.HistoryLen())
	}
}

func TestSticker_EndDragNotifiesAndPersists(t *testing.T) {
	store := newMemStore()
	set := newTestStickers(store)
	var ended []StickerChange
	set.OnDragEnd(func(c StickerChange) { ended = append(ended, c) })

	st := set.Sticker(stickerKey)
	drag(st, Vec2{}, Vec2{400, -7}, 0)

	if len(ended) != 1 || ended[0].Key != stickerKey || ended[0].Transform.Position != (Vec2{50, -7}) {
		t.Fatalf("OnDragEnd got %+v", ended)
	}
	if x, ok, _ := store.Get(stickerKey.ContainerID, stickerKey.Slot, FieldX); !ok || x != 50 {
		t.Errorf("persisted x = %v, %v", x, ok)
	}
	if y, _, _ := store.Get(stickerKey.ContainerID, stickerKey.Slot, FieldY); y != -7 {
		t.Errorf("persisted y = %v", y)
	}
}

func TestSticker_LoadsPersistedTransform(t *testing.T) {
	store := newMemStore()
	store.Set(stickerKey.ContainerID, stickerKey.Slot, FieldScale, 0.5)
	store.Set(stickerKey.ContainerID, stickerKey.Slot, FieldX, 500)
	store.Set(stickerKey.ContainerID, stickerKey.Slot, FieldY, -10)
	store.Set(stickerKey.ContainerID, stickerKey.Slot, FieldRotation, -30)

	got := newTestStickers(store).Sticker(stickerKey).Transform()
	// x is clamped to the resting boundary: 75 + 100.
	want := ItemTransform{Scale: 0.5, Position: Vec2{175, -10}, Rotation: -30}
	if got != want {
		t.Errorf("Transform = %+v, want %+v", got, want)
	}
}

func TestSticker_StoreErrorsFallBack(t *testing.T) {
	store := newMemStore()
	store.fail = errors.New("disk full")
	set := newTestStickers(store)
	var logged []string
	set.logf = func(format string, args ...any) { logged = append(logged, format) }

	st := set.Sticker(stickerKey)
	if st.Transform() != DefaultItemTransform {
		t.Errorf("Transform = %+v, want default", st.Transform())
	}
	drag(st, Vec2{}, Vec2{5, 5}, 0)
	if st.Transform().Position != (Vec2{5, 5}) {
		t.Errorf("Position = %v, want (5,5) despite store errors", st.Transform().Position)
	}
	if len(logged) == 0 {
		t.Error("store errors were not logged")
	}
}

func TestSticker_CancelDrag(t *testing.T) {
	st := newTestStickers(nil).Sticker(stickerKey)
	st.BeginDrag(PointerEvent{})
	st.DragMove(PointerEvent{X: 30, Y: 10})
	st.CancelDrag()
	if st.Dragging() || st.Transform().Position != (Vec2{}) {
		t.Errorf("Dragging = %v, Position = %v", st.Dragging(), st.Transform().Position)
	}
}

func TestSticker_SameInstancePerKey(t *testing.T) {
	set := newTestStickers(nil)
	if set.Sticker(stickerKey) != set.Sticker(stickerKey) {
		t.Error("Sticker returned different instances for one key")
	}
	if _, ok := set.Transform(ItemKey{ContainerID: "other", Slot: 0}); ok {
		t.Error("Transform reported an unknown sticker")
	}
}
