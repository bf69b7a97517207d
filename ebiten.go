package shelf

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// defaultWheelPanStep is the pan distance per wheel notch for plain
// scrolling.
const defaultWheelPanStep = 40.0

// EbitenInput polls ebiten's mouse, touch, wheel and keyboard state once per
// tick and feeds it to a Canvas.
type EbitenInput struct {
	// TargetAt reports what lies under a screen point, e.g. a StickerTarget
	// or a UI control. Nil means nothing is under any point.
	TargetAt func(x, y float64) any
	// WheelPanStep is the pan distance per wheel notch when the wheel is not
	// zooming. Zero uses the default.
	WheelPanStep float64

	mouseDown bool
	lastMouse Vec2
	touchIDs  []ebiten.TouchID
	keys      []ebiten.Key
}

// readModifiers returns the currently held modifier keys.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) || ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) || ebiten.IsKeyPressed(ebiten.KeyAltLeft) || ebiten.IsKeyPressed(ebiten.KeyAltRight) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) || ebiten.IsKeyPressed(ebiten.KeyMetaLeft) || ebiten.IsKeyPressed(ebiten.KeyMetaRight) {
		mods |= ModMeta
	}
	return mods
}

// keyFromEbiten maps an ebiten key to the keys the gesture core handles.
func keyFromEbiten(k ebiten.Key) Key {
	switch k {
	case ebiten.KeyArrowLeft:
		return KeyArrowLeft
	case ebiten.KeyArrowRight:
		return KeyArrowRight
	case ebiten.KeyArrowUp:
		return KeyArrowUp
	case ebiten.KeyArrowDown:
		return KeyArrowDown
	case ebiten.KeyEqual, ebiten.KeyNumpadAdd:
		return KeyPlus
	case ebiten.KeyMinus, ebiten.KeyNumpadSubtract:
		return KeyMinus
	case ebiten.KeyDigit0, ebiten.KeyNumpad0:
		return Key0
	default:
		return KeyUnknown
	}
}

func (in *EbitenInput) target(x, y float64) any {
	if in.TargetAt == nil {
		return nil
	}
	return in.TargetAt(x, y)
}

// Poll reads this tick's input and routes it to c.
func (in *EbitenInput) Poll(c *Canvas) {
	mods := readModifiers()
	in.pollMouse(c, mods)
	in.pollTouches(c, mods)
	in.pollWheel(c, mods)
	in.pollKeys(c, mods)
}

func (in *EbitenInput) pollMouse(c *Canvas, mods KeyModifiers) {
	mx, my := ebiten.CursorPosition()
	p := Vec2{float64(mx), float64(my)}
	ev := PointerEvent{Kind: PointerMouse, X: p.X, Y: p.Y, Button: MouseButtonLeft, Modifiers: mods}

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		ev.Target = in.target(p.X, p.Y)
		in.mouseDown = true
		c.HandlePointerDown(ev)
	case in.mouseDown && inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		in.mouseDown = false
		c.HandlePointerUp(ev)
	case in.mouseDown && p != in.lastMouse:
		c.HandlePointerMove(ev)
	}
	in.lastMouse = p
}

func (in *EbitenInput) pollTouches(c *Canvas, mods KeyModifiers) {
	in.touchIDs = inpututil.AppendJustPressedTouchIDs(in.touchIDs[:0])
	for _, id := range in.touchIDs {
		x, y := ebiten.TouchPosition(id)
		ev := touchEvent(id, x, y, mods)
		ev.Target = in.target(ev.X, ev.Y)
		c.HandlePointerDown(ev)
	}

	in.touchIDs = ebiten.AppendTouchIDs(in.touchIDs[:0])
	for _, id := range in.touchIDs {
		if inpututil.TouchPressDuration(id) == 0 {
			continue
		}
		x, y := ebiten.TouchPosition(id)
		px, py := inpututil.TouchPositionInPreviousTick(id)
		if x == px && y == py {
			continue
		}
		c.HandlePointerMove(touchEvent(id, x, y, mods))
	}

	in.touchIDs = inpututil.AppendJustReleasedTouchIDs(in.touchIDs[:0])
	for _, id := range in.touchIDs {
		x, y := inpututil.TouchPositionInPreviousTick(id)
		c.HandlePointerUp(touchEvent(id, x, y, mods))
	}
}

func touchEvent(id ebiten.TouchID, x, y int, mods KeyModifiers) PointerEvent {
	return PointerEvent{
		ID:        int(id),
		Kind:      PointerTouch,
		X:         float64(x),
		Y:         float64(y),
		Modifiers: mods,
	}
}

func (in *EbitenInput) pollWheel(c *Canvas, mods KeyModifiers) {
	dx, dy := ebiten.Wheel()
	if dx == 0 && dy == 0 {
		return
	}
	mx, my := ebiten.CursorPosition()
	// ebiten reports positive dy for scrolling up.
	ev := WheelEvent{X: float64(mx), Y: float64(my), DeltaX: -dx, DeltaY: -dy, Modifiers: mods}
	if c.HandleWheel(ev) {
		return
	}
	step := in.WheelPanStep
	if step <= 0 {
		step = defaultWheelPanStep
	}
	if mods.Has(ModShift) && dx == 0 {
		dx, dy = dy, 0
	}
	c.Viewport().ApplyPan(dx*step, dy*step)
}

func (in *EbitenInput) pollKeys(c *Canvas, mods KeyModifiers) {
	in.keys = inpututil.AppendJustPressedKeys(in.keys[:0])
	for _, k := range in.keys {
		if key := keyFromEbiten(k); key != KeyUnknown {
			c.HandleKey(KeyEvent{Key: key, Modifiers: mods})
		}
	}
}

// GeoM returns the screen-from-world matrix for drawing canvas content with
// ebiten.
func (v *Viewport) GeoM() ebiten.GeoM {
	m := v.computeMatrix()
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	return g
}

// RunConfig configures Run.
type RunConfig struct {
	Title         string
	Width, Height int
}

// errDisposed ends the ebiten loop once the canvas is disposed.
var errDisposed = errors.New("shelf: canvas disposed")

type gameShell struct {
	canvas *Canvas
	input  EbitenInput
	draw   func(screen *ebiten.Image)
}

func (g *gameShell) Update() error {
	if g.canvas.Disposed() {
		return errDisposed
	}
	g.input.Poll(g.canvas)
	g.canvas.Update()
	return nil
}

func (g *gameShell) Draw(screen *ebiten.Image) {
	if g.draw != nil {
		g.draw(screen)
	}
}

func (g *gameShell) Layout(w, h int) (int, int) {
	g.canvas.Viewport().SetBounds(Rect{Width: float64(w), Height: float64(h)})
	return w, h
}

// Run opens a window and drives the canvas with ebiten input until the
// window closes or the canvas is disposed. targetAt may be nil.
func Run(c *Canvas, cfg RunConfig, targetAt func(x, y float64) any, draw func(screen *ebiten.Image)) error {
	if cfg.Width <= 0 {
		cfg.Width = 800
	}
	if cfg.Height <= 0 {
		cfg.Height = 600
	}
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	g := &gameShell{canvas: c, draw: draw}
	g.input.TargetAt = targetAt
	err := ebiten.RunGame(g)
	if errors.Is(err, errDisposed) {
		return nil
	}
	return err
}
