// Package belief maintains each observer's model of every other agent it has
// perceived. Beliefs are four-channel vectors with a certainty, updated with a
// confirmation bias: evidence that agrees with the prior strengthens it
// cheaply, evidence that disagrees moves it grudgingly and erodes certainty.
package belief

import (
	"math"

	"github.com/aventine/socius/internal/agent"
	"github.com/aventine/socius/internal/expression"
	"github.com/aventine/socius/internal/perception"
)

// Belief is one observer's model of one target.
type Belief struct {
	Vector    expression.ApparentStateVector `json:"vector"`
	Certainty float64                        `json:"certainty"`
	LastSeen  uint64                         `json:"last_seen"`
	// Strong marks beliefs formed under intense affect; they decay slower.
	Strong bool `json:"strong"`
}

// Change reports a belief revision large enough to matter downstream.
type Change struct {
	Observer  agent.ID
	Target    agent.ID
	Label     string
	Certainty float64
	Reversal  bool // the classification flipped
}

// Params configure belief formation and decay.
type Params struct {
	ConfirmTolerance float64 // vector distance inside which evidence confirms
	ConfirmGain      float64 // certainty gained per confirming observation
	MoveRate         float64 // lerp rate toward confirming evidence
	ContradictMove   float64 // fraction of MoveRate used for contradicting evidence
	ContradictLoss   float64 // certainty lost per contradicting observation
	StrongThreshold  float64 // certainty above which updates are damped
	StrongDamping    float64 // update multiplier past StrongThreshold
	HalfLifeDays     float64 // certainty half-life without observation
	StrongHalfLife   float64 // multiplier on half-life for Strong beliefs
	InitialCertainty float64 // certainty granted to a first observation
}

// DefaultParams returns the standard belief configuration.
func DefaultParams() Params {
	return Params{
		ConfirmTolerance: 0.6,
		ConfirmGain:      0.05,
		MoveRate:         0.3,
		ContradictMove:   0.7,
		ContradictLoss:   0.08,
		StrongThreshold:  0.8,
		StrongDamping:    0.5,
		HalfLifeDays:     7,
		StrongHalfLife:   2,
		InitialCertainty: 0.1,
	}
}

// Ledger holds beliefs keyed observer→target. Not synchronized; the engine
// runs the belief stage sequentially and guards API reads with the simulation
// lock.
type Ledger struct {
	params  Params
	beliefs map[agent.ID]map[agent.ID]*Belief
}

// NewLedger creates an empty belief ledger.
func NewLedger(p Params) *Ledger {
	return &Ledger{params: p, beliefs: make(map[agent.ID]map[agent.ID]*Belief)}
}

// BeliefFor returns the observer's prior about target, implementing the
// perception lookup.
func (l *Ledger) BeliefFor(observer, target agent.ID) (expression.ApparentStateVector, float64, bool) {
	if b, ok := l.beliefs[observer][target]; ok {
		return b.Vector, b.Certainty, true
	}
	return expression.ApparentStateVector{}, 0, false
}

// Get returns the stored belief, if any.
func (l *Ledger) Get(observer, target agent.ID) (Belief, bool) {
	if b, ok := l.beliefs[observer][target]; ok {
		return *b, true
	}
	return Belief{}, false
}

// About returns a copy of everything the observer believes.
func (l *Ledger) About(observer agent.ID) map[agent.ID]Belief {
	out := make(map[agent.ID]Belief, len(l.beliefs[observer]))
	for id, b := range l.beliefs[observer] {
		out[id] = *b
	}
	return out
}

// Observe folds one perceived read into the observer's model of the target.
// agreeableness [0,1] tunes how confirmation-prone the observer is, intense
// [0,1] marks observations made under strong affect. Returns a Change when the
// revision crossed a classification boundary or moved certainty meaningfully.
func (l *Ledger) Observe(observer agent.ID, p perception.PerceivedAgent, agreeableness, intense float64, tick uint64) (Change, bool) {
	inner := l.beliefs[observer]
	if inner == nil {
		inner = make(map[agent.ID]*Belief)
		l.beliefs[observer] = inner
	}

	b, ok := inner[p.Target]
	if !ok {
		b = &Belief{
			Vector:    p.Vector,
			Certainty: l.params.InitialCertainty * math.Max(p.Confidence, 0.2),
			LastSeen:  tick,
			Strong:    intense > 0.8,
		}
		inner[p.Target] = b
		return Change{
			Observer:  observer,
			Target:    p.Target,
			Label:     Classify(b.Vector).Label,
			Certainty: b.Certainty,
		}, true
	}

	before := Classify(b.Vector)
	dist := b.Vector.Distance(p.Vector)

	damp := 1.0
	if b.Certainty > l.params.StrongThreshold {
		damp = l.params.StrongDamping
	}

	if dist <= l.params.ConfirmTolerance {
		// Confirming: cheap certainty, easy movement. Agreeable observers
		// fold in agreement faster still.
		gain := l.params.ConfirmGain * (1 + agreeableness) * damp
		b.Certainty = agent.Clamp01(b.Certainty + gain*math.Max(p.Confidence, 0.2))
		b.Vector = b.Vector.Lerp(p.Vector, l.params.MoveRate*damp)
	} else {
		// Contradicting: the vector barely budges and certainty takes the
		// hit. Entrenched beliefs resist in both directions.
		b.Certainty = agent.Clamp01(b.Certainty - l.params.ContradictLoss*p.Confidence*damp)
		b.Vector = b.Vector.Lerp(p.Vector, l.params.MoveRate*l.params.ContradictMove*damp)
	}
	b.LastSeen = tick
	if intense > 0.8 {
		b.Strong = true
	}

	after := Classify(b.Vector)
	if after.Label != before.Label {
		return Change{
			Observer:  observer,
			Target:    p.Target,
			Label:     after.Label,
			Certainty: b.Certainty,
			Reversal:  true,
		}, true
	}
	return Change{}, false
}

// DecayTick is one maintenance pass, run daily: beliefs not refreshed within
// the last day lose one day of certainty on a half-life schedule and their
// vectors relax toward neutral. Beliefs that fade below the noise floor are
// forgotten outright.
func (l *Ledger) DecayTick(tick uint64, ticksPerDay uint64) {
	for _, inner := range l.beliefs {
		for id, b := range inner {
			if b.LastSeen+ticksPerDay > tick {
				continue
			}
			half := l.params.HalfLifeDays
			if b.Strong {
				half *= l.params.StrongHalfLife
			}
			factor := math.Pow(0.5, 1/half)
			b.Certainty *= factor
			b.Vector = b.Vector.Lerp(expression.ApparentStateVector{}, 1-factor)
			if b.Certainty < 0.01 {
				delete(inner, id)
			}
		}
	}
}

// Forget drops everything known about a despawned agent, in both directions.
func (l *Ledger) Forget(id agent.ID) {
	delete(l.beliefs, id)
	for _, inner := range l.beliefs {
		delete(inner, id)
	}
}

// Each visits every stored belief; used by the snapshot writer.
func (l *Ledger) Each(fn func(observer, target agent.ID, b Belief)) {
	for obs, inner := range l.beliefs {
		for tgt, b := range inner {
			fn(obs, tgt, *b)
		}
	}
}

// Restore places a snapshot row back into the ledger.
func (l *Ledger) Restore(observer, target agent.ID, b Belief) {
	inner := l.beliefs[observer]
	if inner == nil {
		inner = make(map[agent.ID]*Belief)
		l.beliefs[observer] = inner
	}
	cp := b
	inner[target] = &cp
}
