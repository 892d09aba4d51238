// Package social tracks pairwise reputation: trust and affiliation scores an
// observer carries about specific others. Reputation moves on interaction
// outcomes, relaxes toward indifference over time, and is consulted by both
// contagion (trust gates susceptibility) and decision making (who is worth
// approaching).
package social

import (
	"github.com/aventine/socius/internal/agent"
)

// Relationship is one observer's standing toward one target. Both channels
// are bipolar [-1, 1]; zero means "no opinion".
type Relationship struct {
	Trust           float64 `json:"trust"`
	Affiliation     float64 `json:"affiliation"`
	LastInteraction uint64  `json:"last_interaction"`
}

// Params configure reputation movement and decay.
type Params struct {
	PositiveMin float64 // smallest positive-outcome delta
	PositiveMax float64 // largest positive-outcome delta
	NegativeMin float64 // smallest negative-outcome delta (magnitude)
	NegativeMax float64 // largest negative-outcome delta (magnitude)
	DailyDecay  float64 // fraction relaxed toward zero per day
}

// DefaultParams returns the standard reputation configuration.
func DefaultParams() Params {
	return Params{
		PositiveMin: 0.05,
		PositiveMax: 0.15,
		NegativeMin: 0.10,
		NegativeMax: 0.30,
		DailyDecay:  0.02,
	}
}

// Ledger holds relationships keyed observer→target. Not synchronized; the
// engine applies outcomes in the sequential commit stage.
type Ledger struct {
	params Params
	rel    map[agent.ID]map[agent.ID]*Relationship
}

// NewLedger creates an empty reputation ledger.
func NewLedger(p Params) *Ledger {
	return &Ledger{params: p, rel: make(map[agent.ID]map[agent.ID]*Relationship)}
}

// Trust returns the observer's trust in target, zero if they have no history.
func (l *Ledger) Trust(observer, target agent.ID) float64 {
	if r, ok := l.rel[observer][target]; ok {
		return r.Trust
	}
	return 0
}

// Affiliation returns the observer's affiliation with target.
func (l *Ledger) Affiliation(observer, target agent.ID) float64 {
	if r, ok := l.rel[observer][target]; ok {
		return r.Affiliation
	}
	return 0
}

// Toward returns a copy of every relationship the observer holds.
func (l *Ledger) Toward(observer agent.ID) map[agent.ID]Relationship {
	out := make(map[agent.ID]Relationship, len(l.rel[observer]))
	for id, r := range l.rel[observer] {
		out[id] = *r
	}
	return out
}

// RecordOutcome folds one interaction into the observer's standing toward
// target. quality is bipolar: +1 a warm, satisfying exchange, -1 an open
// betrayal. Negative outcomes move reputation roughly twice as hard as
// positive ones of the same magnitude.
func (l *Ledger) RecordOutcome(observer, target agent.ID, quality float64, tick uint64) {
	quality = agent.ClampSym(quality)
	if quality == 0 {
		return
	}

	inner := l.rel[observer]
	if inner == nil {
		inner = make(map[agent.ID]*Relationship)
		l.rel[observer] = inner
	}
	r, ok := inner[target]
	if !ok {
		r = &Relationship{}
		inner[target] = r
	}

	var delta float64
	if quality > 0 {
		delta = agent.Lerp(l.params.PositiveMin, l.params.PositiveMax, quality)
	} else {
		delta = -agent.Lerp(l.params.NegativeMin, l.params.NegativeMax, -quality)
	}

	r.Trust = agent.ClampSym(r.Trust + delta)
	r.Affiliation = agent.ClampSym(r.Affiliation + delta*0.8)
	r.LastInteraction = tick
}

// DecayDaily relaxes every relationship toward indifference. Relationships
// that reach the noise floor are dropped entirely.
func (l *Ledger) DecayDaily() {
	for _, inner := range l.rel {
		for id, r := range inner {
			r.Trust *= 1 - l.params.DailyDecay
			r.Affiliation *= 1 - l.params.DailyDecay
			if r.Trust > -0.01 && r.Trust < 0.01 &&
				r.Affiliation > -0.01 && r.Affiliation < 0.01 {
				delete(inner, id)
			}
		}
	}
}

// Forget drops every relationship involving a despawned agent.
func (l *Ledger) Forget(id agent.ID) {
	delete(l.rel, id)
	for _, inner := range l.rel {
		delete(inner, id)
	}
}

// Each visits every stored relationship; used by the snapshot writer.
func (l *Ledger) Each(fn func(observer, target agent.ID, r Relationship)) {
	for obs, inner := range l.rel {
		for tgt, r := range inner {
			fn(obs, tgt, *r)
		}
	}
}

// Restore places a snapshot row back into the ledger.
func (l *Ledger) Restore(observer, target agent.ID, r Relationship) {
	inner := l.rel[observer]
	if inner == nil {
		inner = make(map[agent.ID]*Relationship)
		l.rel[observer] = inner
	}
	cp := r
	inner[target] = &cp
}
