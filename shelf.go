package shelf

import "math"

// Vec2 is a 2D vector used for points, deltas, sizes, and velocities
// throughout the API.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Mul returns v scaled by k.
func (v Vec2) Mul(k float64) Vec2 { return Vec2{v.X * k, v.Y * k} }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Center returns the centre point of the rectangle.
func (r Rect) Center() Vec2 {
	return Vec2{r.X + r.Width/2, r.Y + r.Height/2}
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

// Has reports whether any of the bits in m are set.
func (k KeyModifiers) Has(m KeyModifiers) bool {
	return k&m != 0
}

// PointerKind distinguishes mouse input from touch contacts.
type PointerKind uint8

const (
	PointerMouse PointerKind = iota
	PointerTouch
)

// PointerEvent is a single pointer-down, pointer-move or pointer-up sample.
// Mouse events use ID 0; touch contacts use the platform touch id.
type PointerEvent struct {
	ID        int
	Kind      PointerKind
	X, Y      float64
	Button    MouseButton
	Modifiers KeyModifiers
	// Target is the rendering layer's notion of what lies under the pointer.
	// The engine never inspects it; it is only handed to the interactive
	// predicate.
	Target any
}

// Pos returns the event position.
func (e PointerEvent) Pos() Vec2 { return Vec2{e.X, e.Y} }

// WheelEvent is a mouse wheel or trackpad scroll sample. Positive DeltaY
// scrolls down.
type WheelEvent struct {
	X, Y           float64
	DeltaX, DeltaY float64
	Modifiers      KeyModifiers
}

// Key identifies a keyboard key the engine reacts to.
type Key uint8

const (
	KeyUnknown Key = iota
	KeyArrowLeft
	KeyArrowRight
	KeyArrowUp
	KeyArrowDown
	KeyPlus  // '+' and '='
	KeyMinus // '-' and '_'
	Key0     // resets the viewport
)

// KeyEvent is a key-down sample.
type KeyEvent struct {
	Key       Key
	Modifiers KeyModifiers
}

// EventType identifies a kind of engine event published to an EventSink.
type EventType uint8

const (
	EventPan         EventType = iota // viewport translate changed by a gesture
	EventZoom                         // viewport scale changed
	EventReset                        // viewport reset to identity
	EventDragStart                    // grid drag session started
	EventDragEnd                      // grid drag session ended (any path)
	EventDrop                         // a drop resolved to a move or swap
	EventFilesDropped                 // a drop carried files
	EventStickerMoved                 // a sticker drag settled
)

// Event carries engine event data for an EventSink.
type Event struct {
	Type        EventType
	ItemID      string
	ContainerID string
	Position    int
	Point       Vec2
	Scale       float64
	TranslateX  float64
	TranslateY  float64
}

// EventSink is the interface for optional event fan-out (ECS bridges,
// analytics). When set on a Canvas, engine events are forwarded to it.
type EventSink interface {
	EmitEvent(event Event)
}
