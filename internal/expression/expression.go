// Package expression maps an agent's ground truth to its ApparentStateVector,
// the only summary of an agent that other agents (and the presentation layer)
// are ever allowed to read. The mapping is lossy on purpose: it compresses
// needs, emotion, and personality into four bipolar channels and then smears
// them with a little noise, so what an agent shows is never exactly what it
// feels.
package expression

import (
	"math"

	"github.com/aventine/socius/internal/agent"
	"github.com/aventine/socius/internal/entropy"
)

// ApparentStateVector is the externally visible read of an agent. All
// components are bipolar [-1, 1].
type ApparentStateVector struct {
	Tension   float64 `json:"tension"`
	Openness  float64 `json:"openness"`
	Dominance float64 `json:"dominance"`
	Focus     float64 `json:"focus"`
}

// Distance returns the Euclidean distance between two vectors.
func (v ApparentStateVector) Distance(o ApparentStateVector) float64 {
	dt := v.Tension - o.Tension
	do := v.Openness - o.Openness
	dd := v.Dominance - o.Dominance
	df := v.Focus - o.Focus
	return math.Sqrt(dt*dt + do*do + dd*dd + df*df)
}

// Lerp interpolates componentwise from v toward o by t.
func (v ApparentStateVector) Lerp(o ApparentStateVector, t float64) ApparentStateVector {
	return ApparentStateVector{
		Tension:   agent.Lerp(v.Tension, o.Tension, t),
		Openness:  agent.Lerp(v.Openness, o.Openness, t),
		Dominance: agent.Lerp(v.Dominance, o.Dominance, t),
		Focus:     agent.Lerp(v.Focus, o.Focus, t),
	}
}

// Clamp re-bounds every component to [-1, 1].
func (v ApparentStateVector) Clamp() ApparentStateVector {
	return ApparentStateVector{
		Tension:   agent.ClampSym(v.Tension),
		Openness:  agent.ClampSym(v.Openness),
		Dominance: agent.ClampSym(v.Dominance),
		Focus:     agent.ClampSym(v.Focus),
	}
}

// Params configure the transform.
type Params struct {
	// Noise is the half-width of the symmetric per-component expression
	// noise (imperfect self-presentation).
	Noise float64
}

// DefaultParams returns the standard transform configuration.
func DefaultParams() Params {
	return Params{Noise: 0.1}
}

// Transform owns the internal→apparent mapping for a run.
type Transform struct {
	params Params
	src    *entropy.Source
}

// New creates a Transform with its own entropy stream.
func New(p Params, src *entropy.Source) *Transform {
	return &Transform{params: p, src: src}
}

// Raw computes the noiseless apparent vector. Same inputs always yield the
// same output; this is the formula the noise is added on top of.
func (t *Transform) Raw(a *agent.Agent) ApparentStateVector {
	fear := a.Emotion.Fear()
	react := a.Modulators.EmotionalReactivity

	// Tension leaks from hunger and fear, amplified by neuroticism and
	// reactivity, relaxed by pleasant affect.
	tension := (a.Needs.Hunger*3 + fear*5 - math.Max(0, a.Emotion.Valence)*0.5) *
		(1 + a.Personality.Neuroticism) * react

	// Shown openness tracks extraversion and mood, and closes down under
	// fear and social fatigue.
	openness := a.Personality.Extraversion*0.6 + a.Emotion.Valence*0.5 -
		fear*0.8 - a.Needs.Social*0.3

	// Shown dominance is felt dominance colored by extraversion, undercut
	// by fear.
	dominance := a.Emotion.Dominance*0.7 + (a.Personality.Extraversion-0.5)*0.6 - fear*0.4

	// Visible focus follows attention, discipline, and how frayed arousal is.
	focus := (a.Modulators.AttentionFocus - 1) + a.Personality.Conscientiousness*0.4 -
		math.Abs(a.Emotion.Arousal)*0.3 - a.Needs.Energy*0.3

	return ApparentStateVector{
		Tension:   agent.ClampSym(tension),
		Openness:  agent.ClampSym(openness),
		Dominance: agent.ClampSym(dominance),
		Focus:     agent.ClampSym(focus),
	}
}

// Apparent computes the visible vector for this tick: the deterministic Raw
// mapping plus seeded symmetric noise. The (agent, tick) pair fully determines
// the noise, so a run replays identically from its seed.
func (t *Transform) Apparent(a *agent.Agent, tick uint64) ApparentStateVector {
	v := t.Raw(a)
	if t.params.Noise <= 0 {
		return v
	}

	ns := t.src.Fork(int64(a.ID)*1_000_003 + int64(tick))
	v.Tension += ns.Symmetric(t.params.Noise)
	v.Openness += ns.Symmetric(t.params.Noise)
	v.Dominance += ns.Symmetric(t.params.Noise)
	v.Focus += ns.Symmetric(t.params.Noise)
	return v.Clamp()
}
