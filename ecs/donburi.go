// Package ecs provides ECS adapters for birch.
package ecs

import (
	"github.com/phanxgames/birch"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// ActionEventType is the Donburi event type for birch action events.
var ActionEventType = events.NewEventType[birch.ActionEvent]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EntityStore backed by a Donburi world.
// Events are queued on ActionEventType and delivered by ProcessEvents.
func NewDonburiStore(world donburi.World) birch.EntityStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(event birch.ActionEvent) {
	ActionEventType.Publish(s.world, event)
}
