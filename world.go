package warpgate

// WorldStore holds the world the user is currently in. The Machine calls
// SetWorld exactly once per transition, when the warp completes.
type WorldStore interface {
	CurrentWorld() WorldID
	SetWorld(id WorldID)
}

// MemoryStore is an in-process WorldStore with change subscribers. The zero
// value starts in no world and is ready to use.
type MemoryStore struct {
	world  WorldID
	subs   map[int]func(from, to WorldID)
	nextID int
}

// NewMemoryStore returns a store starting in initial.
func NewMemoryStore(initial WorldID) *MemoryStore {
	return &MemoryStore{world: initial, subs: make(map[int]func(from, to WorldID))}
}

// CurrentWorld returns the current world.
func (s *MemoryStore) CurrentWorld() WorldID {
	return s.world
}

// SetWorld replaces the current world and notifies subscribers. Setting the
// same world again notifies nobody.
func (s *MemoryStore) SetWorld(id WorldID) {
	if id == s.world {
		return
	}
	from := s.world
	s.world = id
	for _, fn := range s.subs {
		fn(from, id)
	}
}

// Subscribe registers fn for world changes and returns a function that
// removes it.
func (s *MemoryStore) Subscribe(fn func(from, to WorldID)) (unsubscribe func()) {
	if s.subs == nil {
		s.subs = make(map[int]func(from, to WorldID))
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() { delete(s.subs, id) }
}
