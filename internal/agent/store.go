package agent

// Store is the arena of agents: an indexable table where events and ledgers
// refer to agents by ID, so a despawned agent is naturally "index not found"
// rather than a dangling pointer.
//
// The store itself is not synchronized; the engine serializes structural
// mutation between stages and the simulation guards reads from the API with
// its own lock.
type Store struct {
	agents []*Agent
	index  map[ID]int
	nextID ID
}

// NewStore creates an empty arena.
func NewStore() *Store {
	return &Store{index: make(map[ID]int), nextID: 1}
}

// Spawn assigns the next ID and adds the agent to the arena.
func (s *Store) Spawn(a *Agent) ID {
	a.ID = s.nextID
	s.nextID++
	a.Alive = true
	s.index[a.ID] = len(s.agents)
	s.agents = append(s.agents, a)
	return a.ID
}

// Get returns the agent with the given ID if it exists and is alive. Stale
// ids simply come back (nil, false); callers skip-and-drop.
func (s *Store) Get(id ID) (*Agent, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	a := s.agents[i]
	if !a.Alive {
		return nil, false
	}
	return a, true
}

// IndexOf returns the arena slot for an ID, alive or not. Stage buffers are
// indexed by slot, so resolving an ID to its slot is the hot path.
func (s *Store) IndexOf(id ID) (int, bool) {
	i, ok := s.index[id]
	return i, ok
}

// Despawn marks the agent inactive. The arena slot is kept so that indexes
// held by in-flight stages stay valid; downstream ledgers prune lazily on
// their next lookup.
func (s *Store) Despawn(id ID) {
	if i, ok := s.index[id]; ok {
		s.agents[i].Alive = false
	}
}

// All returns the backing arena slice, including despawned slots. Callers
// check Alive.
func (s *Store) All() []*Agent {
	return s.agents
}

// Alive returns the living agents.
func (s *Store) Alive() []*Agent {
	out := make([]*Agent, 0, len(s.agents))
	for _, a := range s.agents {
		if a.Alive {
			out = append(out, a)
		}
	}
	return out
}

// Len returns the number of living agents.
func (s *Store) Len() int {
	n := 0
	for _, a := range s.agents {
		if a.Alive {
			n++
		}
	}
	return n
}

// SetNextID raises the ID watermark; used when restoring from a snapshot.
func (s *Store) SetNextID(next ID) {
	if next > s.nextID {
		s.nextID = next
	}
}

// Restore places an already-identified agent back into the arena (snapshot
// load path) and keeps the watermark above it.
func (s *Store) Restore(a *Agent) {
	s.index[a.ID] = len(s.agents)
	s.agents = append(s.agents, a)
	if a.ID >= s.nextID {
		s.nextID = a.ID + 1
	}
}
