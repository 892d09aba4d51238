package engine

import (
	"fmt"

	"github.com/aventine/socius/internal/agent"
	"github.com/aventine/socius/internal/belief"
	"github.com/aventine/socius/internal/expression"
	"github.com/aventine/socius/internal/social"
)

// AgentSummary is the presentation read of an agent: position and apparent
// vector only. Internal state never crosses this boundary.
type AgentSummary struct {
	ID       agent.ID                       `json:"id"`
	Name     string                         `json:"name"`
	Position agent.Position                 `json:"position"`
	Apparent expression.ApparentStateVector `json:"apparent"`
}

// AgentDetail is the debug read: full ground truth. Served only on the debug
// surface.
type AgentDetail struct {
	Agent    agent.Agent                    `json:"agent"`
	Apparent expression.ApparentStateVector `json:"apparent"`
}

// Summaries returns the presentation view of the living population.
func (s *Simulation) Summaries() []AgentSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	arena := s.Store.All()
	out := make([]AgentSummary, 0, len(arena))
	for i, a := range arena {
		if !a.Alive {
			continue
		}
		sum := AgentSummary{ID: a.ID, Name: a.Name, Position: a.Position}
		if i < len(s.apparent) {
			sum.Apparent = s.apparent[i]
		}
		out = append(out, sum)
	}
	return out
}

// Summary returns one agent's presentation view.
func (s *Simulation) Summary(id agent.ID) (AgentSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.Store.Get(id)
	if !ok {
		return AgentSummary{}, false
	}
	sum := AgentSummary{ID: a.ID, Name: a.Name, Position: a.Position}
	if i, ok := s.Store.IndexOf(id); ok && i < len(s.apparent) {
		sum.Apparent = s.apparent[i]
	}
	return sum, true
}

// Detail returns one agent's full ground truth.
func (s *Simulation) Detail(id agent.ID) (AgentDetail, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.Store.Get(id)
	if !ok {
		return AgentDetail{}, false
	}
	d := AgentDetail{Agent: *a}
	if i, ok := s.Store.IndexOf(id); ok && i < len(s.apparent) {
		d.Apparent = s.apparent[i]
	}
	return d, true
}

// BeliefView is one held belief with its nearest-prototype label attached.
type BeliefView struct {
	Target agent.ID      `json:"target"`
	Belief belief.Belief `json:"belief"`
	Intent belief.Intent `json:"intent"`
}

// BeliefsOf returns everything the agent currently believes about others.
func (s *Simulation) BeliefsOf(id agent.ID) []BeliefView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	held := s.Beliefs.About(id)
	out := make([]BeliefView, 0, len(held))
	for target, b := range held {
		out = append(out, BeliefView{
			Target: target,
			Belief: b,
			Intent: belief.Classify(b.Vector),
		})
	}
	return out
}

// RelationsOf returns the agent's reputation ledger entries.
func (s *Simulation) RelationsOf(id agent.ID) map[agent.ID]social.Relationship {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Reputation.Toward(id)
}

// Despawn removes an agent from the run and purges it from every ledger.
func (s *Simulation) Despawn(id agent.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Store.Get(id); !ok {
		return false
	}
	s.Store.Despawn(id)
	s.Beliefs.Forget(id)
	s.Reputation.Forget(id)
	s.decide.Forget(id)
	s.emit(Event{
		Tick:        s.lastTick,
		Category:    "lifecycle",
		AgentID:     id,
		Description: fmt.Sprintf("agent %d despawned", id),
	})
	return true
}

// SetAttribute is the debug write path: named scalar fields, always through
// the clamped setters, never raw assignment past the bounds.
func (s *Simulation) SetAttribute(id agent.ID, field string, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.Store.Get(id)
	if !ok {
		return fmt.Errorf("agent %d not found", id)
	}

	switch field {
	case "hunger":
		a.Needs.Hunger = agent.Clamp01(value)
	case "energy":
		a.Needs.Energy = agent.Clamp01(value)
	case "safety":
		a.Needs.Safety = agent.Clamp01(value)
	case "social":
		a.Needs.Social = agent.Clamp01(value)
	case "valence":
		a.Emotion.Valence = agent.ClampSym(value)
	case "arousal":
		a.Emotion.Arousal = agent.ClampSym(value)
	case "dominance":
		a.Emotion.Dominance = agent.ClampSym(value)
	case "acute_stress":
		a.Stress.Acute = agent.Clamp01(value)
	case "chronic_stress":
		a.Stress.Chronic = agent.Clamp01(value)
	default:
		return fmt.Errorf("unknown attribute %q", field)
	}

	a.Modulators = agent.DeriveModulators(a.Personality, a.Stress, a.Needs)
	return nil
}

// Inject queues a stimulus for the next tick; the debug surface uses this to
// poke the environment.
func (s *Simulation) Inject(st agent.Stimulus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, st)
}
