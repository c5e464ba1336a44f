package warpgate

import "testing"

func TestMemoryStoreSetWorld(t *testing.T) {
	s := NewMemoryStore(WorldBridge)
	var changes [][2]WorldID
	unsub := s.Subscribe(func(from, to WorldID) {
		changes = append(changes, [2]WorldID{from, to})
	})

	s.SetWorld(WorldBridge)
	if len(changes) != 0 {
		t.Fatalf("setting the current world notified: %v", changes)
	}
	s.SetWorld(WorldGym)
	if s.CurrentWorld() != WorldGym {
		t.Errorf("CurrentWorld = %s, want GYM", s.CurrentWorld())
	}
	if len(changes) != 1 || changes[0] != [2]WorldID{WorldBridge, WorldGym} {
		t.Errorf("changes = %v, want [[BRIDGE GYM]]", changes)
	}

	unsub()
	s.SetWorld(WorldDJ)
	if len(changes) != 1 {
		t.Errorf("unsubscribed callback still called: %v", changes)
	}
}

func TestMemoryStoreZeroValue(t *testing.T) {
	var s MemoryStore
	var got WorldID
	unsub := s.Subscribe(func(_, to WorldID) { got = to })
	s.SetWorld(WorldDJ)
	if got != WorldDJ {
		t.Errorf("subscriber saw %q, want %q", got, WorldDJ)
	}
	unsub()
}
