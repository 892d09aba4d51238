// Stimulus events are how the environment collaborator reaches into an
// agent's state. Events carry ids and plain values, never references; a
// stimulus aimed at a despawned agent is dropped by the store lookup.
package agent

// StimulusKind enumerates environment-originated events.
type StimulusKind uint8

const (
	// StimulusThreat is a threat marker: raises safety pressure, acute
	// stress, and fear-shaped affect.
	StimulusThreat StimulusKind = iota
	// StimulusResource is resource proximity: relieves hunger pressure a
	// little and lifts valence.
	StimulusResource
	// StimulusComfort is a calm surrounding: relieves safety pressure and
	// arousal.
	StimulusComfort
)

// Stimulus is one environment event targeted at a single agent.
type Stimulus struct {
	Kind      StimulusKind `json:"kind"`
	Target    ID           `json:"target"`
	Intensity float64      `json:"intensity"` // [0, 1]
}

// StimulusParams are the externally supplied response constants.
type StimulusParams struct {
	ThreatSafetyGain float64 // safety pressure per unit threat intensity
	ThreatStressGain float64 // acute stress per unit threat intensity
	TraumaThreshold  float64 // intensity at which an event becomes traumatic
	Stress           StressParams
}

// ApplyStimulus mutates the agent's own state in response to an event. All
// writes clamp. Traumatic-intensity threats leave a permanent mark on
// personality and force the post-traumatic stress phase.
func ApplyStimulus(a *Agent, s Stimulus, p StimulusParams) {
	i := Clamp01(s.Intensity)

	switch s.Kind {
	case StimulusThreat:
		a.Needs.Safety = Clamp01(a.Needs.Safety + i*p.ThreatSafetyGain)
		a.Emotion.Shift(-0.4*i, 0.5*i, -0.3*i)
		if i >= p.TraumaThreshold {
			a.Personality.ApplyTrauma(i)
			a.Stress.MarkTrauma(i, p.Stress)
		} else {
			a.Stress.AddAcute(i*p.ThreatStressGain, p.Stress)
		}

	case StimulusResource:
		a.Needs.Hunger = Clamp01(a.Needs.Hunger - i*0.1)
		a.Emotion.Shift(0.05*i, 0, 0)

	case StimulusComfort:
		a.Needs.Safety = Clamp01(a.Needs.Safety - i*0.2)
		a.Emotion.Shift(0.05*i, -0.1*i, 0)
	}
}
