package ecs

import (
	"github.com/phanxgames/shelf"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// EngineEventType is the Donburi event type for shelf engine events.
// Subscribe to this in your ECS systems to receive pan, zoom, drop and
// sticker events.
var EngineEventType = events.NewEventType[shelf.Event]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world. Events are
// published to EngineEventType and can be consumed with Subscribe and
// ProcessEvents.
func NewDonburiSink(world donburi.World) shelf.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitEvent(event shelf.Event) {
	EngineEventType.Publish(s.world, event)
}
