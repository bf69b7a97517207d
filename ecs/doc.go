// Package ecs provides ECS adapters for shelf's engine events.
//
// The primary adapter is [NewDonburiSink], which forwards viewport, drag
// and drop, and sticker events from a [shelf.Canvas] into a [Donburi] world
// as typed events. Subscribe to [EngineEventType] in your ECS systems to
// receive them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	canvas.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
