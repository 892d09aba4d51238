package engine

import "github.com/aventine/socius/internal/agent"

// Event is a notable occurrence worth surfacing to the log and the API.
type Event struct {
	Tick        uint64   `json:"tick"`
	Category    string   `json:"category"` // "override", "trauma", "stress", "belief", "lifecycle"
	AgentID     agent.ID `json:"agent_id"`
	Description string   `json:"description"`
}

// maxEvents bounds the in-memory event ring.
const maxEvents = 1000

func (s *Simulation) emit(ev Event) {
	s.events = append(s.events, ev)
	s.eventSeq++
	if len(s.events) > maxEvents {
		s.events = s.events[len(s.events)-maxEvents:]
	}
}

// DrainEvents returns events emitted since the previous drain and advances
// the flush mark, so a persistence consumer never writes the same event
// twice. Events evicted from the ring between drains are lost.
func (s *Simulation) DrainEvents() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := s.eventSeq - s.flushedSeq
	if pending > uint64(len(s.events)) {
		pending = uint64(len(s.events))
	}
	s.flushedSeq = s.eventSeq
	if pending == 0 {
		return nil
	}
	out := make([]Event, pending)
	copy(out, s.events[uint64(len(s.events))-pending:])
	return out
}

// RecentEvents returns up to limit most recent events, newest last.
func (s *Simulation) RecentEvents(limit int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.events) {
		limit = len(s.events)
	}
	out := make([]Event, limit)
	copy(out, s.events[len(s.events)-limit:])
	return out
}
