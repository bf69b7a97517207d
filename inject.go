package shelf

type syntheticKind uint8

const (
	synthDown syntheticKind = iota
	synthMove
	synthUp
	synthWheel
	synthKey
)

// syntheticEvent represents a single injected input event. Coordinates are
// screen pixels, identical to real pointer input.
type syntheticEvent struct {
	kind    syntheticKind
	pointer PointerEvent
	wheel   WheelEvent
	key     KeyEvent
}

// InjectPress queues a left-button press at the given screen coordinates.
// Injected events are consumed one per Update.
func (c *Canvas) InjectPress(x, y float64) {
	c.injectPointer(synthDown, PointerEvent{X: x, Y: y})
}

// InjectMove queues a pointer move with the button held down.
func (c *Canvas) InjectMove(x, y float64) {
	c.injectPointer(synthMove, PointerEvent{X: x, Y: y})
}

// InjectRelease queues a pointer release.
func (c *Canvas) InjectRelease(x, y float64) {
	c.injectPointer(synthUp, PointerEvent{X: x, Y: y})
}

// injectPointer queues an arbitrary pointer event (touch contacts, targets,
// modifiers) of the given phase.
func (c *Canvas) injectPointer(kind syntheticKind, ev PointerEvent) {
	c.injectQueue = append(c.injectQueue, syntheticEvent{kind: kind, pointer: ev})
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY), linearly
// interpolated moves over frames-2 intermediate frames, and release at
// (toX, toY). The total sequence consumes frames Updates; the minimum is 2.
func (c *Canvas) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	c.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		c.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	c.InjectRelease(toX, toY)
}

// InjectPinch queues a two-finger pinch centred on (cx, cy) whose finger
// distance changes from fromDist to toDist over frames moves.
func (c *Canvas) InjectPinch(cx, cy, fromDist, toDist float64, frames int) {
	if frames < 1 {
		frames = 1
	}
	touch := func(kind syntheticKind, id int, half float64) {
		x := cx - half
		if id == 2 {
			x = cx + half
		}
		c.injectPointer(kind, PointerEvent{ID: id, Kind: PointerTouch, X: x, Y: cy})
	}
	touch(synthDown, 1, fromDist/2)
	touch(synthDown, 2, fromDist/2)
	for i := 1; i <= frames; i++ {
		d := fromDist + (toDist-fromDist)*float64(i)/float64(frames)
		touch(synthMove, 1, d/2)
		touch(synthMove, 2, d/2)
	}
	touch(synthUp, 1, toDist/2)
	touch(synthUp, 2, toDist/2)
}

// InjectWheel queues a wheel event.
func (c *Canvas) InjectWheel(ev WheelEvent) {
	c.injectQueue = append(c.injectQueue, syntheticEvent{kind: synthWheel, wheel: ev})
}

// InjectKey queues a key press.
func (c *Canvas) InjectKey(key Key, mods KeyModifiers) {
	c.injectQueue = append(c.injectQueue, syntheticEvent{kind: synthKey, key: KeyEvent{Key: key, Modifiers: mods}})
}

// PendingInput returns the number of queued synthetic events.
func (c *Canvas) PendingInput() int {
	return len(c.injectQueue)
}

// processInjectedInput pops one event from the inject queue and routes it
// like real input. Returns true if an event was consumed.
func (c *Canvas) processInjectedInput() bool {
	if len(c.injectQueue) == 0 {
		return false
	}
	evt := c.injectQueue[0]
	copy(c.injectQueue, c.injectQueue[1:])
	c.injectQueue = c.injectQueue[:len(c.injectQueue)-1]

	switch evt.kind {
	case synthDown:
		c.HandlePointerDown(evt.pointer)
	case synthMove:
		c.HandlePointerMove(evt.pointer)
	case synthUp:
		c.HandlePointerUp(evt.pointer)
	case synthWheel:
		c.HandleWheel(evt.wheel)
	case synthKey:
		c.HandleKey(evt.key)
	}
	return true
}
