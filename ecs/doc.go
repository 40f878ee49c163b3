// Package ecs provides ECS adapters for birch's action events.
//
// The primary adapter is [NewDonburiStore], which forwards every pressed
// action (door toggles, camera controls) into a [Donburi] world as a typed
// event. Subscribe to [ActionEventType] in your ECS systems to receive them.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	app.SetEntityStore(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
