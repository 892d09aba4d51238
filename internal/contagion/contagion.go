// Package contagion spreads affect between nearby agents. Visible tension
// bleeds into neighbors' arousal and valence, gated by distance, trust in the
// source, and the receiver's openness. Negative affect travels harder than
// positive affect.
package contagion

import (
	"math"

	"github.com/aventine/socius/internal/agent"
)

// Params configure the contagion field.
type Params struct {
	Radius       float64 // beyond this, no transfer at all
	Factor       float64 // base transfer coefficient
	NegativeBias float64 // multiplier on the valence hit from spreading tension
	MinDistance  float64 // distance floor; co-located agents use this instead of zero
}

// DefaultParams returns the standard contagion configuration.
func DefaultParams() Params {
	return Params{
		Radius:       8,
		Factor:       0.1,
		NegativeBias: 1.5,
		MinDistance:  0.25,
	}
}

// Delta is one receiver-side affect adjustment, ready to apply in the commit
// stage. Deltas carry target ids, never pointers, so a source that despawns
// mid-stage costs nothing.
type Delta struct {
	Target  agent.ID
	Valence float64
	Arousal float64
}

// Transfer computes the raw magnitude moved from a source showing srcTension
// to a receiver at the given distance. trust is the receiver's trust in the
// source [-1,1]; openness the receiver's trait openness [0,1]. The sign of
// the result follows the sign of srcTension: calm sources soothe.
func Transfer(srcTension, distance, trust, openness float64, p Params) float64 {
	if distance <= 0 {
		distance = p.MinDistance
	}
	trustMult := 1 + 0.5*agent.ClampSym(trust)      // 0.5 .. 1.5
	openMult := 0.7 + 0.6*agent.Clamp01(openness)   // 0.7 .. 1.3
	return srcTension * p.Factor * trustMult * openMult / math.Pow(distance, 1.5)
}

// Receive accumulates the receiver's total affect delta from every visible
// source this tick. Spreading tension raises arousal and drags valence down,
// with the negative bias applied to the valence channel only; a negative
// (calm) transfer does the reverse, unbiased.
func Receive(receiver *agent.Agent, sources []Source, trustOf func(agent.ID) float64, p Params) Delta {
	d := Delta{Target: receiver.ID}
	for _, s := range sources {
		if s.Distance > p.Radius {
			continue
		}
		t := Transfer(s.Tension, s.Distance, trustOf(s.ID), receiver.Personality.Openness, p)
		if t == 0 {
			continue
		}
		d.Arousal += t
		if t > 0 {
			d.Valence -= t * p.NegativeBias
		} else {
			d.Valence -= t
		}
	}

	// Susceptibility: reactive receivers feel the room more.
	d.Arousal *= receiver.Modulators.EmotionalReactivity
	d.Valence *= receiver.Modulators.EmotionalReactivity
	return d
}

// Source is one visible neighbor as seen by the contagion stage.
type Source struct {
	ID       agent.ID
	Tension  float64
	Distance float64
}

// Apply commits a delta to the receiver's emotion through the clamped write
// path.
func Apply(a *agent.Agent, d Delta) {
	a.Emotion.Shift(d.Valence, d.Arousal, 0)
}
