package engine

import (
	"fmt"
	"math"

	"github.com/aventine/socius/internal/agent"
	"github.com/aventine/socius/internal/decision"
)

// Movement per tick, in plane units. One tick is a sim-minute, so these are
// gentle paces, not teleports.
const (
	paceWander = 0.25
	paceFlee   = 0.6
	paceSocial = 0.35
)

// stageCommit is the single sequential writer for everything cross-agent:
// contagion deltas, action effects, reputation outcomes, queued stimuli, and
// the event/stat counters.
func (s *Simulation) stageCommit(arena []*agent.Agent, tick uint64) {
	for i, a := range arena {
		if !a.Alive {
			continue
		}

		if d := s.deltas[i]; d.Valence != 0 || d.Arousal != 0 {
			a.Emotion.Shift(d.Valence, d.Arousal, 0)
		}

		act := s.actions[i]
		s.applyAction(a, i, act, tick)
		s.decide.Reinforce(a, act)

		s.stats.ActionMix[act.Kind.String()]++
		if act.Conflict {
			s.stats.Conflicts++
		}
		if act.Forced {
			s.stats.Overrides++
			s.emit(Event{
				Tick:     tick,
				Category: "override",
				AgentID:  a.ID,
				Description: fmt.Sprintf("%s lost control: forced %s", a.Name, act.Kind),
			})
		}

		if a.Stress.Phase != s.prevPhase[i] {
			cat := "stress"
			if a.Stress.Phase == agent.PostTraumatic {
				cat = "trauma"
			}
			s.emit(Event{
				Tick:     tick,
				Category: cat,
				AgentID:  a.ID,
				Description: fmt.Sprintf("%s: %s -> %s", a.Name, s.prevPhase[i], a.Stress.Phase),
			})
			s.prevPhase[i] = a.Stress.Phase
		}
	}
}

func (s *Simulation) applyAction(a *agent.Agent, slot int, act decision.Action, tick uint64) {
	switch act.Kind {
	case decision.ActionIdle:
		// Standing still is mildly restful.
		a.Needs.Energy = agent.Clamp01(a.Needs.Energy - 0.002)

	case decision.ActionForage:
		yield := 0.01 + 0.02*s.localResource[slot]
		a.Needs.Hunger = agent.Clamp01(a.Needs.Hunger - yield)
		a.Needs.Energy = agent.Clamp01(a.Needs.Energy + 0.003)
		s.wander(a, paceWander)

	case decision.ActionRest:
		a.Needs.Energy = agent.Clamp01(a.Needs.Energy - 0.01)
		a.Emotion.Shift(0, -0.02, 0)

	case decision.ActionSocialize:
		target, ok := s.Store.Get(act.Target)
		if !ok {
			return // partner despawned mid-tick; the intent just fizzles
		}
		dist := distance(a.Position, target.Position)
		if dist > 1.5 {
			s.moveToward(a, target.Position, paceSocial)
			return
		}
		a.Needs.Social = agent.Clamp01(a.Needs.Social - 0.015)
		a.Emotion.Shift(0.02, 0, 0.005)
		quality := 0.3 + 0.7*agent.Clamp01(target.Emotion.Valence+0.5)
		s.Reputation.RecordOutcome(a.ID, target.ID, quality, tick)
		s.Reputation.RecordOutcome(target.ID, a.ID, quality*0.8, tick)
		// The partner feels approached, next tick.
		s.pending = append(s.pending, agent.Stimulus{
			Kind:      agent.StimulusComfort,
			Target:    target.ID,
			Intensity: 0.2,
		})

	case decision.ActionFlee:
		from := s.threatVector(a, act.Target)
		s.moveAway(a, from, paceFlee)
		a.Needs.Energy = agent.Clamp01(a.Needs.Energy + 0.004)
		a.Needs.Safety = agent.Clamp01(a.Needs.Safety - 0.01)
		a.Emotion.Shift(0, 0.01, 0)

	case decision.ActionConfront:
		target, ok := s.Store.Get(act.Target)
		if !ok {
			return
		}
		dist := distance(a.Position, target.Position)
		if dist > 1.5 {
			s.moveToward(a, target.Position, paceFlee)
			return
		}
		a.Emotion.Shift(0, 0.02, 0.03)
		a.Needs.Energy = agent.Clamp01(a.Needs.Energy + 0.005)
		s.Reputation.RecordOutcome(a.ID, target.ID, -0.4, tick)
		s.Reputation.RecordOutcome(target.ID, a.ID, -0.6, tick)
		// Being confronted is a threat event for the target.
		s.pending = append(s.pending, agent.Stimulus{
			Kind:      agent.StimulusThreat,
			Target:    target.ID,
			Intensity: 0.3 + 0.3*agent.Clamp01(a.Emotion.Dominance),
		})

	case decision.ActionExplore:
		s.wander(a, paceWander*1.5)
		a.Needs.Energy = agent.Clamp01(a.Needs.Energy + 0.003)
		a.Emotion.Shift(0.005*a.Personality.Openness, 0, 0)
	}
}

// threatVector finds where the danger is: the target if known, otherwise the
// hottest nearby threat-field direction is approximated by just wandering off.
func (s *Simulation) threatVector(a *agent.Agent, target agent.ID) agent.Position {
	if t, ok := s.Store.Get(target); ok {
		return t.Position
	}
	// Environmental threat has no single point; flee along a seeded heading.
	ns := s.src.Fork(int64(a.ID)*7_000_003 + int64(s.lastTick))
	angle := ns.Float() * 2 * math.Pi
	return agent.Position{X: a.Position.X + math.Cos(angle), Y: a.Position.Y + math.Sin(angle)}
}

func (s *Simulation) wander(a *agent.Agent, pace float64) {
	ns := s.src.Fork(int64(a.ID)*9_000_011 + int64(s.lastTick))
	angle := ns.Float() * 2 * math.Pi
	s.moveBy(a, math.Cos(angle)*pace, math.Sin(angle)*pace)
}

func (s *Simulation) moveToward(a *agent.Agent, to agent.Position, pace float64) {
	dx, dy := to.X-a.Position.X, to.Y-a.Position.Y
	d := math.Hypot(dx, dy)
	if d < 1e-9 {
		return
	}
	s.moveBy(a, dx/d*pace, dy/d*pace)
}

func (s *Simulation) moveAway(a *agent.Agent, from agent.Position, pace float64) {
	dx, dy := a.Position.X-from.X, a.Position.Y-from.Y
	d := math.Hypot(dx, dy)
	if d < 1e-9 {
		s.wander(a, pace)
		return
	}
	s.moveBy(a, dx/d*pace, dy/d*pace)
}

// moveBy displaces the agent, clamped to the plane.
func (s *Simulation) moveBy(a *agent.Agent, dx, dy float64) {
	a.Position.X = agent.ClampRange(a.Position.X+dx, 0, s.cfg.WorldExtent)
	a.Position.Y = agent.ClampRange(a.Position.Y+dy, 0, s.cfg.WorldExtent)
}

func distance(p, q agent.Position) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}
