package shelf

import (
	"math"
	"time"
)

const (
	maxContacts             = 2
	defaultWheelZoomStep    = 0.1
	defaultKeyPanStep       = 50.0
	defaultKeyZoomStep      = 0.1
	defaultKeyZoomBoost     = 5.0
	defaultInertiaMinSpeed  = 1.0
	defaultZoomModifierMask = ModCtrl | ModMeta
)

// GestureState is the state of the viewport gesture machine.
type GestureState uint8

const (
	GestureIdle GestureState = iota
	GesturePanning
	GesturePinching
)

// String returns the state name.
func (s GestureState) String() string {
	switch s {
	case GesturePanning:
		return "panning"
	case GesturePinching:
		return "pinching"
	default:
		return "idle"
	}
}

// GestureConfig tunes the gesture core. Zero fields take defaults.
type GestureConfig struct {
	// WheelZoomStep is the scale change per wheel notch while a zoom
	// modifier is held.
	WheelZoomStep float64
	// WheelInterval is the minimum time between applied wheel zooms.
	WheelInterval time.Duration
	// ZoomModifiers turns the wheel into a zoom gesture when any is held.
	ZoomModifiers KeyModifiers
	// KeyPanStep is the pan distance per arrow key press.
	KeyPanStep float64
	// KeyZoomStep is the scale change per '+' or '-' press.
	KeyZoomStep float64
	// KeyZoomBoost multiplies KeyZoomStep while Shift is held.
	KeyZoomBoost float64
	// InertiaMinSpeed is the release speed above which a pan coasts.
	InertiaMinSpeed float64
	// IsInteractive reports whether a pointer landed on a control (button,
	// input, link) that must not start a pan. Nil means nothing is
	// interactive.
	IsInteractive func(target any) bool
}

func (c GestureConfig) withDefaults() GestureConfig {
	if c.WheelZoomStep <= 0 {
		c.WheelZoomStep = defaultWheelZoomStep
	}
	if c.WheelInterval <= 0 {
		c.WheelInterval = defaultWheelInterval
	}
	if c.ZoomModifiers == 0 {
		c.ZoomModifiers = defaultZoomModifierMask
	}
	if c.KeyPanStep <= 0 {
		c.KeyPanStep = defaultKeyPanStep
	}
	if c.KeyZoomStep <= 0 {
		c.KeyZoomStep = defaultKeyZoomStep
	}
	if c.KeyZoomBoost <= 0 {
		c.KeyZoomBoost = defaultKeyZoomBoost
	}
	if c.InertiaMinSpeed <= 0 {
		c.InertiaMinSpeed = defaultInertiaMinSpeed
	}
	return c
}

// --- Per-contact state ---

type contact struct {
	id   int
	kind PointerKind
	pos  Vec2
}

type panState struct {
	contact  int // index into Gesture.contacts
	start    Vec2
	base     Vec2
	last     Vec2
	velocity Vec2
}

type pinchState struct {
	initialDist  float64
	initialScale float64
}

// Gesture turns pointer, touch, wheel and key input into viewport pans,
// zooms and resets.
//
// One contact pans; two contacts pinch-zoom around their midpoint, and
// lifting one of them continues as a pan from the remaining contact. Every
// gesture start stops viewport inertia before applying its first delta.
//
// Pan effects follow the content: dragging the pointer by (dx, dy) moves
// the translate by (dx, dy). Arrow keys move the view in the arrow's
// direction, so the content moves the opposite way.
type Gesture struct {
	cfg   GestureConfig
	vp    *Viewport
	sched *Scheduler

	state    GestureState
	contacts []contact
	pan      panState
	pinch    pinchState

	wheel      throttle
	wheelPoint Vec2
	wheelFlush Handle

	settled listeners[ViewportTransform]
	onReset CallbackHandle
}

// NewGesture creates a gesture core that drives vp.
func NewGesture(vp *Viewport, sched *Scheduler, cfg GestureConfig) *Gesture {
	cfg = cfg.withDefaults()
	g := &Gesture{
		cfg:      cfg,
		vp:       vp,
		sched:    sched,
		contacts: make([]contact, 0, maxContacts),
		wheel:    throttle{interval: cfg.WheelInterval},
	}
	// A reset from any caller discards wheel zoom still waiting to flush.
	g.onReset = vp.OnReset(g.discardWheel)
	return g
}

// State returns the current gesture state.
func (g *Gesture) State() GestureState {
	return g.state
}

// OnSettle registers a callback fired when a gesture's effect on the
// viewport is final: after a pan (and its inertia) comes to rest, a pinch
// ends, a wheel zoom is applied, or a key acts.
func (g *Gesture) OnSettle(fn func(ViewportTransform)) CallbackHandle {
	return g.settled.add(fn)
}

func (g *Gesture) settle() {
	g.settled.emit(g.vp.Transform())
}

func (g *Gesture) interactive(target any) bool {
	return target != nil && g.cfg.IsInteractive != nil && g.cfg.IsInteractive(target)
}

func (g *Gesture) findContact(ev PointerEvent) int {
	for i := range g.contacts {
		if g.contacts[i].id == ev.ID && g.contacts[i].kind == ev.Kind {
			return i
		}
	}
	return -1
}

// PointerDown handles a press or touch start. It reports whether the
// gesture core took the contact.
func (g *Gesture) PointerDown(ev PointerEvent) bool {
	if ev.Kind == PointerMouse && ev.Button != MouseButtonLeft {
		return false
	}
	if g.findContact(ev) >= 0 || len(g.contacts) >= maxContacts {
		return false
	}
	// A second finger may land on a control and still complete a pinch.
	if len(g.contacts) == 0 && g.interactive(ev.Target) {
		return false
	}
	g.contacts = append(g.contacts, contact{id: ev.ID, kind: ev.Kind, pos: ev.Pos()})

	switch len(g.contacts) {
	case 1:
		g.startPan(0)
	case 2:
		g.startPinch()
	}
	return true
}

// PointerMove handles movement of a tracked contact.
func (g *Gesture) PointerMove(ev PointerEvent) bool {
	i := g.findContact(ev)
	if i < 0 {
		return false
	}
	g.contacts[i].pos = ev.Pos()

	switch g.state {
	case GesturePanning:
		if i == g.pan.contact {
			g.movePan(ev.Pos())
		}
	case GesturePinching:
		g.movePinch()
	}
	return true
}

// PointerUp handles a release or touch end.
func (g *Gesture) PointerUp(ev PointerEvent) bool {
	i := g.findContact(ev)
	if i < 0 {
		return false
	}
	g.contacts[i].pos = ev.Pos()
	wasPanContact := g.state == GesturePanning && i == g.pan.contact
	if wasPanContact && ev.Pos() != g.pan.last {
		g.movePan(ev.Pos())
	}
	g.contacts = append(g.contacts[:i], g.contacts[i+1:]...)

	switch g.state {
	case GesturePinching:
		if len(g.contacts) == 1 {
			// Pinch degrades to a pan from the remaining finger.
			g.settle()
			g.startPan(0)
		} else {
			g.state = GestureIdle
			g.settle()
		}
	case GesturePanning:
		if wasPanContact {
			g.endPan()
		}
	}
	return true
}

// Cancel abandons the current gesture without inertia, e.g. on touch-cancel
// or when the canvas loses focus.
func (g *Gesture) Cancel() {
	g.contacts = g.contacts[:0]
	g.state = GestureIdle
	g.pan = panState{}
	g.pinch = pinchState{}
}

// --- Pan ---

func (g *Gesture) startPan(i int) {
	g.vp.StopMotion()
	g.commitWheel()
	p := g.contacts[i].pos
	t := g.vp.Transform()
	g.pan = panState{
		contact: i,
		start:   p,
		base:    Vec2{t.TranslateX, t.TranslateY},
		last:    p,
	}
	g.state = GesturePanning
}

func (g *Gesture) movePan(p Vec2) {
	// Position relative to the start point rather than accumulating
	// per-event deltas, so rounding never drifts.
	d := p.Sub(g.pan.start)
	g.vp.setTranslate(g.pan.base.X+d.X, g.pan.base.Y+d.Y)
	g.pan.velocity = p.Sub(g.pan.last)
	g.pan.last = p
}

func (g *Gesture) endPan() {
	v := g.pan.velocity
	g.state = GestureIdle
	g.pan = panState{}
	if v.Len() > g.cfg.InertiaMinSpeed {
		g.vp.StartInertia(v, g.settle)
		return
	}
	g.settle()
}

// --- Pinch ---

func (g *Gesture) startPinch() {
	g.vp.StopMotion()
	g.commitWheel()
	g.pinch = pinchState{
		initialDist:  Distance(g.contacts[0].pos, g.contacts[1].pos),
		initialScale: g.vp.Transform().Scale,
	}
	g.pan = panState{}
	g.state = GesturePinching
}

func (g *Gesture) movePinch() {
	a, b := g.contacts[0].pos, g.contacts[1].pos
	dist := Distance(a, b)
	if g.pinch.initialDist <= 0 {
		// Both fingers started on the same spot; measure from here on.
		g.pinch.initialDist = dist
		g.pinch.initialScale = g.vp.Transform().Scale
		return
	}
	factor := dist / g.pinch.initialDist
	cfg := g.vp.Config()
	target := Clamp(g.pinch.initialScale*factor, cfg.MinScale, cfg.MaxScale)
	g.vp.ApplyZoomTowardPoint(Midpoint(a, b), target-g.vp.Transform().Scale)
}

// --- Wheel ---

// Wheel handles a wheel event. With a zoom modifier held it zooms toward
// the cursor and returns true; plain and Shift wheel events are scrolling,
// which the caller handles, and return false.
func (g *Gesture) Wheel(ev WheelEvent) bool {
	if !ev.Modifiers.Has(g.cfg.ZoomModifiers) {
		return false
	}
	if ev.DeltaY == 0 || math.IsNaN(ev.DeltaY) {
		return true
	}
	g.vp.StopMotion()

	delta := g.cfg.WheelZoomStep
	if ev.DeltaY > 0 {
		delta = -delta
	}
	g.wheelPoint = Vec2{ev.X, ev.Y}
	total, ok := g.wheel.admit(g.sched.Now(), delta)
	if !ok {
		if g.wheelFlush == 0 {
			g.wheelFlush = g.sched.After(g.cfg.WheelInterval, g.flushWheel)
		}
		return true
	}
	g.sched.Cancel(g.wheelFlush)
	g.wheelFlush = 0
	g.vp.ApplyZoomTowardPoint(g.wheelPoint, total)
	g.settle()
	return true
}

// commitWheel applies any throttled wheel zoom now, so a gesture starting
// next reads its baseline after it.
func (g *Gesture) commitWheel() {
	g.sched.Cancel(g.wheelFlush)
	g.wheelFlush = 0
	if total, ok := g.wheel.flush(g.sched.Now()); ok {
		g.vp.ApplyZoomTowardPoint(g.wheelPoint, total)
	}
}

// discardWheel drops throttled wheel zoom without applying it.
func (g *Gesture) discardWheel() {
	g.sched.Cancel(g.wheelFlush)
	g.wheelFlush = 0
	g.wheel.reset()
}

func (g *Gesture) flushWheel() {
	g.wheelFlush = 0
	total, ok := g.wheel.flush(g.sched.Now())
	if !ok {
		return
	}
	g.vp.ApplyZoomTowardPoint(g.wheelPoint, total)
	g.settle()
}

// --- Keyboard ---

// Key handles a key press and reports whether it was consumed.
func (g *Gesture) Key(ev KeyEvent) bool {
	step := g.cfg.KeyPanStep
	zoom := g.cfg.KeyZoomStep
	if ev.Modifiers.Has(ModShift) {
		zoom *= g.cfg.KeyZoomBoost
	}
	center := g.vp.Config().Bounds.Center()

	switch ev.Key {
	case KeyArrowLeft:
		g.vp.StopMotion()
		g.vp.ApplyPan(step, 0)
	case KeyArrowRight:
		g.vp.StopMotion()
		g.vp.ApplyPan(-step, 0)
	case KeyArrowUp:
		g.vp.StopMotion()
		g.vp.ApplyPan(0, step)
	case KeyArrowDown:
		g.vp.StopMotion()
		g.vp.ApplyPan(0, -step)
	case KeyPlus:
		g.vp.StopMotion()
		g.vp.ApplyZoomTowardPoint(center, zoom)
	case KeyMinus:
		g.vp.StopMotion()
		g.vp.ApplyZoomTowardPoint(center, -zoom)
	case Key0:
		g.Cancel()
		g.discardWheel()
		g.vp.Reset()
	default:
		return false
	}
	g.settle()
	return true
}

// Dispose cancels the pending wheel flush and abandons any gesture.
func (g *Gesture) Dispose() {
	g.discardWheel()
	g.onReset.Remove()
	g.Cancel()
	g.settled.reset()
}
