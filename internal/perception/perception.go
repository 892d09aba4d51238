// Package perception filters and distorts the apparent vectors of nearby
// agents into what an observer actually registers. Attention is a scarce
// resource: only a handful of neighbors make it through per tick, and what
// does make it through is bent by threat bias, prior beliefs, and noise.
package perception

import (
	"math"
	"sort"

	"github.com/aventine/socius/internal/agent"
	"github.com/aventine/socius/internal/entropy"
	"github.com/aventine/socius/internal/expression"
)

// Observed is one neighbor as carried by the spatial index: who, where, and
// what they currently look like.
type Observed struct {
	ID       agent.ID
	Distance float64
	Vector   expression.ApparentStateVector
}

// PerceivedAgent is one distorted read that survived the attention filter.
// Confidence reflects how trustworthy the observer itself considers the read.
type PerceivedAgent struct {
	Target     agent.ID                       `json:"target"`
	Vector     expression.ApparentStateVector `json:"vector"`
	Distance   float64                        `json:"distance"`
	Confidence float64                        `json:"confidence"`
}

// BeliefLookup supplies the observer's prior about a target, used to pull
// perception toward expectation. Implemented by the belief ledger.
type BeliefLookup interface {
	BeliefFor(observer, target agent.ID) (expression.ApparentStateVector, float64, bool)
}

// Params configure the perception engine.
type Params struct {
	MinSlots        int     // attention floor (degraded observer)
	MaxSlots        int     // attention ceiling (rested, clear observer)
	ThreatSalience  float64 // baseline tension amplification
	FamiliarityPull float64 // max fraction perception moves toward belief
	NoiseScale      float64 // noise half-width at zero attention
}

// DefaultParams returns the standard perception configuration.
func DefaultParams() Params {
	return Params{
		MinSlots:        3,
		MaxSlots:        7,
		ThreatSalience:  1.3,
		FamiliarityPull: 0.2,
		NoiseScale:      0.3,
	}
}

// Engine performs attention filtering and distortion for all observers of a
// run. Read-only with respect to agents; safe to call concurrently for
// distinct observers.
type Engine struct {
	params  Params
	beliefs BeliefLookup
	src     *entropy.Source
}

// NewEngine creates a perception engine.
func NewEngine(p Params, beliefs BeliefLookup, src *entropy.Source) *Engine {
	return &Engine{params: p, beliefs: beliefs, src: src}
}

// Slots returns how many neighbors the observer can attend to this tick.
// Exhaustion and cognitive fog shrink the window.
func (e *Engine) Slots(obs *agent.Agent) int {
	capacity := agent.Clamp01((1-obs.Needs.Energy)*0.6 +
		(obs.Modulators.CognitiveClarity-agent.ModulatorFloor)/
			(agent.ModulatorCeil-agent.ModulatorFloor)*0.4)
	span := float64(e.params.MaxSlots - e.params.MinSlots)
	return e.params.MinSlots + int(math.Round(capacity*span))
}

// Perceive returns the observer's distorted reads of its neighbors, at most
// Slots(obs) of them, highest priority first. Neighbors are expected to be
// alive; the engine never resolves ids itself, so despawned agents simply
// never appear in the input.
func (e *Engine) Perceive(obs *agent.Agent, neighbors []Observed, tick uint64) []PerceivedAgent {
	if len(neighbors) == 0 {
		return nil
	}

	type ranked struct {
		Observed
		priority float64
	}
	cand := make([]ranked, 0, len(neighbors))
	for _, n := range neighbors {
		cand = append(cand, ranked{Observed: n, priority: e.priority(obs, n)})
	}
	sort.Slice(cand, func(i, j int) bool {
		if cand[i].priority != cand[j].priority {
			return cand[i].priority > cand[j].priority
		}
		return cand[i].ID < cand[j].ID
	})

	slots := e.Slots(obs)
	if slots > len(cand) {
		slots = len(cand)
	}

	att := agent.Clamp01(obs.Modulators.AttentionFocus / agent.ModulatorCeil * 2)
	noiseFactor := (1 - att) * e.params.NoiseScale
	ns := e.src.Fork(int64(obs.ID)*2_000_003 + int64(tick))

	out := make([]PerceivedAgent, 0, slots)
	for _, c := range cand[:slots] {
		v := c.Vector

		// Threat bias: tension reads hotter, more so for anxious observers.
		salience := e.params.ThreatSalience * (1 + 0.5*obs.Personality.Neuroticism)
		if v.Tension > 0 {
			v.Tension = agent.ClampSym(v.Tension * salience)
		}

		// Familiarity: certainty about a target pulls the read toward the
		// stored belief.
		if e.beliefs != nil {
			if prior, certainty, ok := e.beliefs.BeliefFor(obs.ID, c.ID); ok {
				v = v.Lerp(prior, certainty*e.params.FamiliarityPull)
			}
		}

		// Residual noise scales with inattention.
		if noiseFactor > 0 {
			v.Tension += ns.Symmetric(noiseFactor)
			v.Openness += ns.Symmetric(noiseFactor)
			v.Dominance += ns.Symmetric(noiseFactor)
			v.Focus += ns.Symmetric(noiseFactor)
			v = v.Clamp()
		}

		out = append(out, PerceivedAgent{
			Target:     c.ID,
			Vector:     v,
			Distance:   c.Distance,
			Confidence: agent.Clamp01(att * (1 - noiseFactor)),
		})
	}
	return out
}

// priority ranks a neighbor for the attention filter: closer, goal-relevant,
// and threatening neighbors win slots.
func (e *Engine) priority(obs *agent.Agent, n Observed) float64 {
	proximity := 1 / (1 + n.Distance)
	relevance := 0.4 + 0.6*agent.Clamp01(obs.Needs.Social*0.7+obs.Needs.Safety*0.3)
	threat := 1 + e.params.ThreatSalience*math.Max(0, n.Vector.Tension)
	return proximity * relevance * threat
}
