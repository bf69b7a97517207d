package shelf

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	defaultViewportMinScale = 0.25
	defaultViewportMaxScale = 4.0
)

// ViewportTransform is the zoom and pan applied to the whole canvas. A world
// point w appears on screen at Origin + Translate + w*Scale.
type ViewportTransform struct {
	Scale      float64
	TranslateX float64
	TranslateY float64
}

// IdentityViewport is the transform every canvas starts with.
var IdentityViewport = ViewportTransform{Scale: 1}

// TransformPatch is a partial ViewportTransform. Nil fields are left as they
// are.
type TransformPatch struct {
	Scale      *float64
	TranslateX *float64
	TranslateY *float64
}

// ViewportConfig configures a Viewport. Zero fields take defaults.
type ViewportConfig struct {
	MinScale float64
	MaxScale float64
	// Bounds is the screen-space rectangle of the canvas container. Its
	// top-left corner is the transform origin; its centre is the focal point
	// for keyboard zoom.
	Bounds Rect
	// Inertia tunes pan momentum.
	Inertia InertiaConfig
}

func (c ViewportConfig) withDefaults() ViewportConfig {
	if c.MinScale <= 0 {
		c.MinScale = defaultViewportMinScale
	}
	if c.MaxScale <= 0 {
		c.MaxScale = defaultViewportMaxScale
	}
	if c.MaxScale < c.MinScale {
		c.MinScale, c.MaxScale = c.MaxScale, c.MinScale
	}
	return c
}

// viewportAnim holds an active AnimateTo run.
type viewportAnim struct {
	tweens [3]*gween.Tween
	done   [3]bool
	target ViewportTransform
	last   float64 // scheduler time of the previous frame, in seconds
	frame  Handle
}

// Viewport owns the canvas zoom and pan. Scale is clamped to
// [MinScale, MaxScale] after every mutation; translation is unbounded.
// Every mutation notifies OnChange subscribers and the property sink.
type Viewport struct {
	cfg     ViewportConfig
	t       ViewportTransform
	sched   *Scheduler
	inertia *Inertia
	anim    *viewportAnim
	sink    PropertySink
	changed listeners[ViewportTransform]
	resets  listeners[struct{}]

	matrix    [6]float64
	invMatrix [6]float64
	dirty     bool
}

// NewViewport creates a Viewport at the identity transform.
func NewViewport(sched *Scheduler, cfg ViewportConfig) *Viewport {
	cfg = cfg.withDefaults()
	v := &Viewport{
		cfg:   cfg,
		t:     IdentityViewport,
		sched: sched,
		dirty: true,
	}
	v.t.Scale = v.clampScale(1)
	v.inertia = NewInertia(sched, cfg.Inertia)
	return v
}

// Transform returns the current transform.
func (v *Viewport) Transform() ViewportTransform {
	return v.t
}

// Config returns the effective configuration.
func (v *Viewport) Config() ViewportConfig {
	return v.cfg
}

// SetBounds updates the container rectangle, e.g. after a window resize.
func (v *Viewport) SetBounds(r Rect) {
	v.cfg.Bounds = r
	v.dirty = true
}

// SetPropertySink attaches a sink that mirrors every transform change. The
// current transform is written immediately.
func (v *Viewport) SetPropertySink(sink PropertySink) {
	v.sink = sink
	writeViewportProperties(sink, v.t)
}

// OnChange registers a callback fired after every mutation.
func (v *Viewport) OnChange(fn func(ViewportTransform)) CallbackHandle {
	return v.changed.add(fn)
}

// OnReset registers a callback fired by Reset before the identity transform
// is committed. Owners of deferred viewport mutations use it to drop them.
func (v *Viewport) OnReset(fn func()) CallbackHandle {
	return v.resets.add(func(struct{}) { fn() })
}

func (v *Viewport) clampScale(s float64) float64 {
	if math.IsNaN(s) {
		return v.t.Scale
	}
	return Clamp(s, v.cfg.MinScale, v.cfg.MaxScale)
}

// commit installs t, clamping the scale, and notifies subscribers.
func (v *Viewport) commit(t ViewportTransform) {
	t.Scale = v.clampScale(t.Scale)
	if math.IsNaN(t.TranslateX) || math.IsInf(t.TranslateX, 0) {
		t.TranslateX = v.t.TranslateX
	}
	if math.IsNaN(t.TranslateY) || math.IsInf(t.TranslateY, 0) {
		t.TranslateY = v.t.TranslateY
	}
	v.t = t
	v.dirty = true
	writeViewportProperties(v.sink, t)
	v.changed.emit(t)
}

// ApplyZoomTowardPoint changes the scale by scaleDelta while keeping the
// world point under screen fixed on screen.
func (v *Viewport) ApplyZoomTowardPoint(screen Vec2, scaleDelta float64) {
	v.stopAnimation()
	v.zoomTowardPoint(screen, v.t.Scale+scaleDelta)
}

func (v *Viewport) zoomTowardPoint(screen Vec2, scale float64) {
	old := v.t
	newScale := v.clampScale(scale)
	if newScale == old.Scale {
		return
	}
	ratio := newScale / old.Scale
	ox := screen.X - v.cfg.Bounds.X
	oy := screen.Y - v.cfg.Bounds.Y
	v.commit(ViewportTransform{
		Scale:      newScale,
		TranslateX: ox - (ox-old.TranslateX)*ratio,
		TranslateY: oy - (oy-old.TranslateY)*ratio,
	})
}

// ZoomBy multiplies the scale by factor around the container centre.
func (v *Viewport) ZoomBy(factor float64) {
	if factor <= 0 {
		return
	}
	v.stopAnimation()
	v.zoomTowardPoint(v.cfg.Bounds.Center(), v.t.Scale*factor)
}

// ApplyPan moves the canvas content by (dx, dy) screen pixels.
func (v *Viewport) ApplyPan(dx, dy float64) {
	v.stopAnimation()
	v.applyPan(dx, dy)
}

func (v *Viewport) applyPan(dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	t := v.t
	t.TranslateX += dx
	t.TranslateY += dy
	v.commit(t)
}

// Reset returns to the identity transform and stops inertia, animation and
// any deferred mutation registered with OnReset.
func (v *Viewport) Reset() {
	v.StopMotion()
	v.resets.emit(struct{}{})
	v.commit(IdentityViewport)
}

// SetTransform merges p into the current transform. Scale is clamped.
func (v *Viewport) SetTransform(p TransformPatch) {
	v.stopAnimation()
	t := v.t
	if p.Scale != nil {
		t.Scale = *p.Scale
	}
	if p.TranslateX != nil {
		t.TranslateX = *p.TranslateX
	}
	if p.TranslateY != nil {
		t.TranslateY = *p.TranslateY
	}
	v.commit(t)
}

// setTranslate is used by the pan gesture, which positions the content
// absolutely relative to its start baseline.
func (v *Viewport) setTranslate(x, y float64) {
	if x == v.t.TranslateX && y == v.t.TranslateY {
		return
	}
	v.commit(ViewportTransform{Scale: v.t.Scale, TranslateX: x, TranslateY: y})
}

// --- Motion ---

// StartInertia hands a release velocity to the momentum animation. Each
// frame pans by the decayed velocity until it settles.
func (v *Viewport) StartInertia(vel Vec2, onSettled func()) {
	v.stopAnimation()
	v.inertia.Start(vel, func(d Vec2) { v.applyPan(d.X, d.Y) }, onSettled)
}

// StopMotion synchronously cancels inertia and any AnimateTo run. Every
// gesture start calls this before applying its first delta.
func (v *Viewport) StopMotion() {
	v.inertia.Cancel()
	v.stopAnimation()
}

// InMotion reports whether inertia or an animation is running.
func (v *Viewport) InMotion() bool {
	return v.inertia.Running() || v.anim != nil
}

// AnimateTo tweens the transform to t over duration seconds, one step per
// scheduler frame. The final frame lands exactly on t (with scale clamped).
// A non-positive duration jumps immediately.
func (v *Viewport) AnimateTo(t ViewportTransform, duration float32, fn ease.TweenFunc) {
	v.StopMotion()
	t.Scale = v.clampScale(t.Scale)
	if duration <= 0 {
		v.commit(t)
		return
	}
	if fn == nil {
		fn = ease.Linear
	}
	a := &viewportAnim{target: t, last: v.seconds()}
	a.tweens[0] = gween.New(float32(v.t.Scale), float32(t.Scale), duration, fn)
	a.tweens[1] = gween.New(float32(v.t.TranslateX), float32(t.TranslateX), duration, fn)
	a.tweens[2] = gween.New(float32(v.t.TranslateY), float32(t.TranslateY), duration, fn)
	v.anim = a
	a.frame = v.sched.RequestFrame(v.stepAnimation)
}

// AnimateReset tweens back to the identity transform.
func (v *Viewport) AnimateReset(duration float32) {
	v.AnimateTo(IdentityViewport, duration, ease.OutCubic)
}

func (v *Viewport) stepAnimation() {
	a := v.anim
	if a == nil {
		return
	}
	a.frame = 0
	now := v.seconds()
	dt := float32(now - a.last)
	a.last = now

	vals := [3]float64{v.t.Scale, v.t.TranslateX, v.t.TranslateY}
	allDone := true
	for i, tw := range a.tweens {
		if a.done[i] {
			continue
		}
		val, finished := tw.Update(dt)
		vals[i] = float64(val)
		a.done[i] = finished
		if !finished {
			allDone = false
		}
	}

	if allDone {
		v.anim = nil
		v.commit(a.target)
		return
	}
	v.commit(ViewportTransform{Scale: vals[0], TranslateX: vals[1], TranslateY: vals[2]})
	if v.anim == a {
		a.frame = v.sched.RequestFrame(v.stepAnimation)
	}
}

func (v *Viewport) stopAnimation() {
	if v.anim == nil {
		return
	}
	v.sched.Cancel(v.anim.frame)
	v.anim = nil
}

func (v *Viewport) seconds() float64 {
	return float64(v.sched.Now().UnixNano()) / 1e9
}

// --- Coordinate conversion ---

// computeMatrix recomputes the cached screen-from-world matrix if dirty.
//
//	matrix = Translate(origin + translate) * Scale(scale)
func (v *Viewport) computeMatrix() [6]float64 {
	if !v.dirty {
		return v.matrix
	}
	v.dirty = false
	s := v.t.Scale
	v.matrix = [6]float64{
		s, 0, 0, s,
		v.cfg.Bounds.X + v.t.TranslateX,
		v.cfg.Bounds.Y + v.t.TranslateY,
	}
	v.invMatrix = invertAffine(v.matrix)
	return v.matrix
}

// WorldToScreen converts canvas coordinates to screen coordinates.
func (v *Viewport) WorldToScreen(w Vec2) Vec2 {
	v.computeMatrix()
	x, y := transformPoint(v.matrix, w.X, w.Y)
	return Vec2{x, y}
}

// ScreenToWorld converts screen coordinates to canvas coordinates.
func (v *Viewport) ScreenToWorld(s Vec2) Vec2 {
	v.computeMatrix()
	x, y := transformPoint(v.invMatrix, s.X, s.Y)
	return Vec2{x, y}
}

// VisibleBounds returns the canvas-space rectangle currently on screen.
func (v *Viewport) VisibleBounds() Rect {
	b := v.cfg.Bounds
	tl := v.ScreenToWorld(Vec2{b.X, b.Y})
	br := v.ScreenToWorld(Vec2{b.X + b.Width, b.Y + b.Height})
	return Rect{X: tl.X, Y: tl.Y, Width: br.X - tl.X, Height: br.Y - tl.Y}
}
