// Package decision arbitrates between three competing proposers: habit
// (what has worked before), deliberation (what would relieve the most
// pressure), and emotion (what affect is screaming for). Stress rebiases the
// blend toward the cheap systems, and extreme fear or anger can bypass
// arbitration entirely.
package decision

import (
	"math"
	"sort"

	"github.com/aventine/socius/internal/agent"
	"github.com/aventine/socius/internal/entropy"
	"github.com/aventine/socius/internal/perception"
)

// Params configure arbitration.
type Params struct {
	ImpulseThreshold float64 // acute stress above this rebiases weights
	ConflictEpsilon  float64 // score gap treated as a tie
	FearOverride     float64 // fear above this forces flight
	AngerOverride    float64 // anger above this forces confrontation
	ResistanceMax    float64 // max override-probability reduction from conscientiousness
	HabitSaturation  float64 // repetitions at which habit strength reaches 0.5
}

// DefaultParams returns the standard arbitration configuration.
func DefaultParams() Params {
	return Params{
		ImpulseThreshold: 0.7,
		ConflictEpsilon:  0.02,
		FearOverride:     0.8,
		AngerOverride:    0.8,
		ResistanceMax:    0.3,
		HabitSaturation:  4,
	}
}

// Situation is everything the deciding agent knows this tick: its own state
// plus whatever survived the attention filter, and lookups into the social
// record.
type Situation struct {
	Tick          uint64
	Perceived     []perception.PerceivedAgent
	Trust         func(target agent.ID) float64
	BeliefChanged bool // a belief about someone present was just revised
	Resource      float64
	Threat        float64 // environmental threat level at the agent's position
}

// Engine arbitrates actions and learns habits. Choose is safe to call
// concurrently for distinct agents; Reinforce is not and runs in the commit
// stage.
type Engine struct {
	params Params
	src    *entropy.Source
	habits map[agent.ID]map[habitKey]int
}

// habitKey buckets situations coarsely: habit generalizes over "what was
// pressing", not exact circumstances.
type habitKey struct {
	pressing pressingNeed
	action   ActionKind
}

type pressingNeed uint8

const (
	pressingNone pressingNeed = iota
	pressingHunger
	pressingEnergy
	pressingSafety
	pressingSocial
)

// NewEngine creates a decision engine with its own entropy stream.
func NewEngine(p Params, src *entropy.Source) *Engine {
	return &Engine{params: p, src: src, habits: make(map[agent.ID]map[habitKey]int)}
}

// Choose picks the agent's action for this tick.
func (e *Engine) Choose(a *agent.Agent, sit Situation) Action {
	fear := a.Emotion.Fear()
	anger := a.Emotion.Anger()

	// Emotional override: past the threshold the limbic path preempts
	// arbitration, resisted with probability proportional to discipline.
	if fear > e.params.FearOverride || anger > e.params.AngerOverride {
		resist := a.Personality.Conscientiousness * e.params.ResistanceMax
		roll := e.src.Fork(int64(a.ID)*3_000_017 + int64(sit.Tick)).Chance(1 - resist)
		if roll {
			if fear >= anger {
				return Action{Kind: ActionFlee, Target: e.scariest(sit), Score: fear, Forced: true}
			}
			return Action{Kind: ActionConfront, Target: e.scariest(sit), Score: anger, Forced: true}
		}
	}

	weights := a.Weights.Rebias(a.Stress.Acute, e.params.ImpulseThreshold)
	pressing := pressingOf(a.Needs)
	candidates := e.candidates(a, sit)

	type scored struct {
		action Action
		total  float64
		habit  float64
	}
	results := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		h := e.habitStrength(a.ID, pressing, c.Kind)
		d := e.deliberativeScore(a, c, sit)
		m := e.emotionalScore(a, c, fear, anger)
		total := h*weights.Habitual + d*weights.Deliberative + m*weights.EmotionalIntuitive
		results = append(results, scored{action: c, total: total, habit: h})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].total != results[j].total {
			return results[i].total > results[j].total
		}
		return results[i].action.Kind < results[j].action.Kind
	})

	best := results[0]
	chosen := best.action
	chosen.Score = best.total

	// Near-ties resolve toward the stronger habit: under genuine ambivalence
	// the familiar wins.
	for _, r := range results[1:] {
		if best.total-r.total > e.params.ConflictEpsilon {
			break
		}
		chosen.Conflict = true
		if r.habit > best.habit {
			best = r
			chosen = r.action
			chosen.Score = r.total
			chosen.Conflict = true
		}
	}
	return chosen
}

// Reinforce records that the agent carried out the action under its current
// pressing need, strengthening the habit for next time.
func (e *Engine) Reinforce(a *agent.Agent, act Action) {
	inner := e.habits[a.ID]
	if inner == nil {
		inner = make(map[habitKey]int)
		e.habits[a.ID] = inner
	}
	inner[habitKey{pressing: pressingOf(a.Needs), action: act.Kind}]++
}

// Forget drops a despawned agent's habit table.
func (e *Engine) Forget(id agent.ID) {
	delete(e.habits, id)
}

// habitStrength saturates with repetition: n/(n+k), so early repetitions
// matter most and strength never reaches 1.
func (e *Engine) habitStrength(id agent.ID, pressing pressingNeed, kind ActionKind) float64 {
	n := float64(e.habits[id][habitKey{pressing: pressing, action: kind}])
	return n / (n + e.params.HabitSaturation)
}

// candidates enumerates what is physically on the table this tick. Idle is
// always present.
func (e *Engine) candidates(a *agent.Agent, sit Situation) []Action {
	out := []Action{
		{Kind: ActionIdle},
		{Kind: ActionForage},
		{Kind: ActionRest},
		{Kind: ActionExplore},
	}
	if friend, ok := e.friendliest(sit); ok {
		out = append(out, Action{Kind: ActionSocialize, Target: friend})
	}
	if threat := e.scariest(sit); threat != 0 || sit.Threat > 0.3 {
		out = append(out, Action{Kind: ActionFlee, Target: threat})
		out = append(out, Action{Kind: ActionConfront, Target: threat})
	}
	return out
}

// deliberativeScore is expected pressure relief, degraded by cognitive load:
// a foggy agent plans badly and knows it.
func (e *Engine) deliberativeScore(a *agent.Agent, c Action, sit Situation) float64 {
	var relief float64
	switch c.Kind {
	case ActionForage:
		relief = a.Needs.Hunger * (0.5 + 0.5*agent.Clamp01(sit.Resource))
	case ActionRest:
		relief = a.Needs.Energy
	case ActionSocialize:
		trust := 0.0
		if sit.Trust != nil {
			trust = sit.Trust(c.Target)
		}
		relief = a.Needs.Social * (0.6 + 0.4*agent.Clamp01(trust))
	case ActionFlee:
		relief = a.Needs.Safety * agent.Clamp01(sit.Threat+e.maxTension(sit))
	case ActionConfront:
		relief = a.Needs.Safety * 0.3 * agent.Clamp01(a.Emotion.Dominance+0.5)
	case ActionExplore:
		relief = 0.1 + 0.2*a.Personality.Openness
	case ActionIdle:
		relief = 0.05
	}

	clarity := agent.Clamp01(a.Modulators.CognitiveClarity / agent.ModulatorCeil * 2)
	score := relief * (0.3 + 0.7*clarity)
	if sit.BeliefChanged {
		// A fresh revision of who's who makes the planner re-engage.
		score *= 1.1
	}
	return score
}

// emotionalScore is what affect wants, regardless of what would help.
func (e *Engine) emotionalScore(a *agent.Agent, c Action, fear, anger float64) float64 {
	switch c.Kind {
	case ActionFlee:
		return fear
	case ActionConfront:
		return anger * agent.Clamp01(0.5+a.Emotion.Dominance)
	case ActionSocialize:
		return math.Max(0, a.Emotion.Valence) * a.Personality.Extraversion
	case ActionRest:
		return math.Max(0, -a.Emotion.Arousal) * 0.5
	case ActionExplore:
		return math.Max(0, a.Emotion.Valence) * a.Personality.Openness * 0.5
	case ActionIdle:
		return 0.05
	}
	return 0
}

// maxTension is the hottest read among the perceived, floored at zero.
func (e *Engine) maxTension(sit Situation) float64 {
	max := 0.0
	for _, p := range sit.Perceived {
		if p.Vector.Tension > max {
			max = p.Vector.Tension
		}
	}
	return max
}

// scariest returns the perceived neighbor with the highest tension, zero ID
// when nobody registers as a threat.
func (e *Engine) scariest(sit Situation) agent.ID {
	var best agent.ID
	bestT := 0.2
	for _, p := range sit.Perceived {
		if p.Vector.Tension > bestT {
			best, bestT = p.Target, p.Vector.Tension
		}
	}
	return best
}

// friendliest returns the most approachable perceived neighbor: open, calm,
// and trusted.
func (e *Engine) friendliest(sit Situation) (agent.ID, bool) {
	var best agent.ID
	found := false
	bestScore := math.Inf(-1)
	for _, p := range sit.Perceived {
		trust := 0.0
		if sit.Trust != nil {
			trust = sit.Trust(p.Target)
		}
		score := p.Vector.Openness - p.Vector.Tension*0.5 + trust*0.8
		if score > bestScore {
			best, bestScore, found = p.Target, score, true
		}
	}
	return best, found
}

// pressingOf buckets the dominant pressure for habit lookup.
func pressingOf(n agent.Needs) pressingNeed {
	best, bestV := pressingNone, 0.3
	if n.Hunger > bestV {
		best, bestV = pressingHunger, n.Hunger
	}
	if n.Energy > bestV {
		best, bestV = pressingEnergy, n.Energy
	}
	if n.Safety > bestV {
		best, bestV = pressingSafety, n.Safety
	}
	if n.Social > bestV {
		best = pressingSocial
	}
	return best
}
