package agent

import "math"

// WeightingProfile holds the non-negative weights of the three decision
// subsystems. After any mutation the weights are renormalized to sum to 1.
type WeightingProfile struct {
	Habitual           float64 `json:"habitual"`
	Deliberative       float64 `json:"deliberative"`
	EmotionalIntuitive float64 `json:"emotional_intuitive"`
}

// DefaultWeights is the neutral profile used when normalization degenerates.
func DefaultWeights() WeightingProfile {
	return WeightingProfile{Habitual: 0.4, Deliberative: 0.35, EmotionalIntuitive: 0.25}
}

// Normalize clamps each weight non-negative and rescales to sum 1.0. A
// degenerate all-zero profile falls back to the defaults rather than dividing
// by zero.
func (w *WeightingProfile) Normalize() {
	w.Habitual = math.Max(0, w.Habitual)
	w.Deliberative = math.Max(0, w.Deliberative)
	w.EmotionalIntuitive = math.Max(0, w.EmotionalIntuitive)

	sum := w.Habitual + w.Deliberative + w.EmotionalIntuitive
	if sum <= 0 {
		*w = DefaultWeights()
		return
	}
	w.Habitual /= sum
	w.Deliberative /= sum
	w.EmotionalIntuitive /= sum
}

// Rebias returns the profile adjusted for the current stress level: past the
// impulse threshold deliberation halves while habit and gut feeling amplify.
// The receiver is not modified; the returned profile is normalized.
func (w WeightingProfile) Rebias(acuteStress, impulseThreshold float64) WeightingProfile {
	out := w
	if acuteStress > impulseThreshold {
		out.Deliberative *= 0.5
		out.Habitual *= 1.5
		out.EmotionalIntuitive *= 1.5
	}
	out.Normalize()
	return out
}

// WeightsForPersonality seeds a profile from traits: conscientious agents
// lean deliberative, neurotic agents lean intuitive.
func WeightsForPersonality(p Personality) WeightingProfile {
	w := WeightingProfile{
		Habitual:           0.35 + 0.1*(1-p.Openness),
		Deliberative:       0.30 + 0.2*p.Conscientiousness,
		EmotionalIntuitive: 0.20 + 0.25*p.Neuroticism,
	}
	w.Normalize()
	return w
}
