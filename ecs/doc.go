// Package ecs connects warpgate to a [Donburi] world.
//
// [NewDonburiStore] keeps the current world in a component and publishes
// [WorldChangedEventType] when a transition commits. [BridgePhases] mirrors
// the machine's phase into a component and publishes every boundary on
// [PhaseChangedEventType].
//
// Usage:
//
//	world := donburi.NewWorld()
//	store := ecs.NewDonburiStore(world, cfg.InitialWorld)
//	engine, _ := warpgate.NewEngine(cfg, warpgate.WithStore(store))
//	ecs.BridgePhases(engine.Machine(), world)
//
// Events are queued; call events.ProcessAllEvents(world) once per frame.
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
