package ecs

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"

	"github.com/phanxgames/warpgate"
)

// WorldData holds the committed world.
type WorldData struct {
	Current warpgate.WorldID
}

// TransitionData mirrors the machine's phase. Destination is empty while idle.
type TransitionData struct {
	Phase       warpgate.Phase
	Destination warpgate.WorldID
}

// WorldChanged is published once per committed transition.
type WorldChanged struct {
	From, To warpgate.WorldID
}

var (
	WorldComponent      = donburi.NewComponentType[WorldData]()
	TransitionComponent = donburi.NewComponentType[TransitionData]()

	// WorldChangedEventType carries commits from DonburiStore.SetWorld.
	WorldChangedEventType = events.NewEventType[WorldChanged]()
	// PhaseChangedEventType carries every phase boundary of a bridged machine.
	PhaseChangedEventType = events.NewEventType[warpgate.PhaseChange]()
)

// DonburiStore is a warpgate.WorldStore backed by an entity in a Donburi
// world.
type DonburiStore struct {
	world  donburi.World
	entity donburi.Entity
}

// NewDonburiStore creates the store entity in world, starting at initial.
func NewDonburiStore(world donburi.World, initial warpgate.WorldID) *DonburiStore {
	e := world.Create(WorldComponent)
	WorldComponent.SetValue(world.Entry(e), WorldData{Current: initial})
	return &DonburiStore{world: world, entity: e}
}

// CurrentWorld returns the committed world.
func (s *DonburiStore) CurrentWorld() warpgate.WorldID {
	return WorldComponent.Get(s.world.Entry(s.entity)).Current
}

// SetWorld commits id and publishes WorldChanged. Setting the current world
// again does nothing.
func (s *DonburiStore) SetWorld(id warpgate.WorldID) {
	data := WorldComponent.Get(s.world.Entry(s.entity))
	if data.Current == id {
		return
	}
	from := data.Current
	data.Current = id
	WorldChangedEventType.Publish(s.world, WorldChanged{From: from, To: id})
}

// Entity returns the entity holding WorldComponent.
func (s *DonburiStore) Entity() donburi.Entity {
	return s.entity
}

// BridgePhases creates an entity holding TransitionComponent and keeps it in
// step with m. Every phase change is also published on PhaseChangedEventType.
func BridgePhases(m *warpgate.Machine, world donburi.World) donburi.Entity {
	e := world.Create(TransitionComponent)
	m.OnPhaseChange(func(c warpgate.PhaseChange) {
		data := TransitionComponent.Get(world.Entry(e))
		data.Phase = c.To
		data.Destination = ""
		if c.To != warpgate.PhaseIdle {
			data.Destination = c.Request.Destination
		}
		PhaseChangedEventType.Publish(world, c)
	})
	return e
}
