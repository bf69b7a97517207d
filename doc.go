// Package shelf is the spatial interaction engine of a virtual shelf: a
// pannable, zoomable canvas of shelves whose slots hold books, recipes and
// notes, decorated with freely placed stickers.
//
// Shelf turns raw pointer, touch, wheel and keyboard input into three
// things: a viewport transform (zoom and pan with inertia and pinch), free
// 2D placement of stickers clamped to their slot, and drag-and-drop moves
// and swaps of grid items. Rendering is left to the caller; the engine
// publishes state through callbacks, a [PropertySink], and an optional
// [EventSink].
//
// # Quick start
//
// The simplest way to get started is [Run], which opens an [Ebitengine]
// window and feeds its input to a [Canvas]:
//
//	canvas := shelf.NewCanvas(items, shelf.CanvasConfig{})
//	shelf.Run(canvas, shelf.RunConfig{Title: "Shelf"}, targetAt, draw)
//
// For full control, poll input yourself with [EbitenInput] and call
// [Canvas.Update] once per frame:
//
//	func (g *Game) Update() error {
//		g.input.Poll(g.canvas)
//		g.canvas.Update()
//		return nil
//	}
//
// Outside Ebitengine, call the Canvas Handle methods from your own event
// loop.
//
// # Frames and timers
//
// Nothing in the engine runs on its own goroutine. Inertia, viewport
// animations (via [gween]), the grid drag safety timeout and the hover
// debounce are queued on a [Scheduler] that [Canvas.Update] ticks. Tests
// drive it with a fake clock.
//
// # Persistence
//
// Sticker transforms, and optionally the viewport, are written to a
// [TransformStore]. Package shelf/kv provides in-memory and SQLite
// implementations. Engine events can be forwarded into a [Donburi] world
// with the adapter in shelf/ecs.
//
// # Testing
//
// [Canvas.InjectDrag], [Canvas.InjectPinch] and friends queue synthetic
// input consumed one event per Update, and [LoadGestureScript] replays JSON
// gesture scripts through the same path.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
package shelf
