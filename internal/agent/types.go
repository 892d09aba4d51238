// Package agent provides the per-agent ground-truth state model and the
// arena-style store that owns it. Nothing outside an agent's own update
// routines mutates this state directly; cross-agent effects arrive as queued
// deltas applied during the agent's own update slot.
package agent

// ID is a unique identifier for an agent. IDs are dense and monotonically
// assigned; despawned IDs are never reused within a run.
type ID uint64

// Position is a point on the simulation plane.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Agent is the ground truth for one simulated individual. Every bounded field
// is kept in range by the mutators in this package; writes clamp, never
// reject.
type Agent struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`

	Position Position `json:"position"`

	Needs       Needs               `json:"needs"`
	Emotion     EmotionalState      `json:"emotion"`
	Personality Personality         `json:"personality"`
	Stress      StressLevel         `json:"stress"`
	Modulators  CognitiveModulators `json:"modulators"`
	Weights     WeightingProfile    `json:"weights"`

	// SimRate scales dt for agents in reduced-rate regions (level of detail).
	// 1.0 = full rate.
	SimRate float64 `json:"sim_rate"`

	BornTick uint64 `json:"born_tick"`
	Alive    bool   `json:"alive"`
}

// Clamp01 bounds v to [0, 1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ClampSym bounds v to the bipolar range [-1, 1].
func ClampSym(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// ClampRange bounds v to [lo, hi].
func ClampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp interpolates linearly from a toward b by t in [0, 1].
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
