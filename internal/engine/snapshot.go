package engine

import (
	"github.com/aventine/socius/internal/agent"
	"github.com/aventine/socius/internal/belief"
	"github.com/aventine/socius/internal/social"
)

// SnapshotState is a consistent copy of everything a resumed run needs.
// Taken under the simulation lock; plain values, no live pointers.
type SnapshotState struct {
	Tick      uint64
	Agents    []agent.Agent
	Beliefs   []BeliefRow
	Relations []RelationRow
}

// BeliefRow flattens one ledger entry for storage.
type BeliefRow struct {
	Observer agent.ID
	Target   agent.ID
	Belief   belief.Belief
}

// RelationRow flattens one reputation entry for storage.
type RelationRow struct {
	Observer agent.ID
	Target   agent.ID
	Relation social.Relationship
}

// Snapshot copies the current run state.
func (s *Simulation) Snapshot() SnapshotState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := SnapshotState{Tick: s.lastTick}
	for _, a := range s.Store.All() {
		if a.Alive {
			st.Agents = append(st.Agents, *a)
		}
	}
	s.Beliefs.Each(func(obs, tgt agent.ID, b belief.Belief) {
		st.Beliefs = append(st.Beliefs, BeliefRow{Observer: obs, Target: tgt, Belief: b})
	})
	s.Reputation.Each(func(obs, tgt agent.ID, r social.Relationship) {
		st.Relations = append(st.Relations, RelationRow{Observer: obs, Target: tgt, Relation: r})
	})
	return st
}

// RestoreState replaces the population and ledgers with snapshot contents.
// Meant to run before the loop starts, on a freshly constructed simulation.
func (s *Simulation) RestoreState(st SnapshotState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Store = agent.NewStore()
	for i := range st.Agents {
		a := st.Agents[i]
		s.Store.Restore(&a)
	}
	for _, row := range st.Beliefs {
		s.Beliefs.Restore(row.Observer, row.Target, row.Belief)
	}
	for _, row := range st.Relations {
		s.Reputation.Restore(row.Observer, row.Target, row.Relation)
	}
	s.lastTick = st.Tick
	s.refreshLOD()
	s.refreshStats()
}
