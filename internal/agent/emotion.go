// EmotionalState uses the valence/arousal/dominance model, each axis bipolar
// [-1, 1]. There is no stored mood label anywhere: discrete-feeling readouts
// like fear and anger are derived projections of the three axes, so an agent
// is always somewhere in the grey area between them.
package agent

// EmotionalState is the continuous affective core of an agent.
type EmotionalState struct {
	Valence   float64 `json:"valence"`   // unpleasant −1 .. +1 pleasant
	Arousal   float64 `json:"arousal"`   // calm −1 .. +1 activated
	Dominance float64 `json:"dominance"` // submissive −1 .. +1 dominant
}

// Fear projects the state onto the fear octant: negative valence, high
// arousal, low dominance. Result in [0, 1].
func (e EmotionalState) Fear() float64 {
	neg := 0.0
	if e.Valence < 0 {
		neg = -e.Valence
	}
	act := 0.0
	if e.Arousal > 0 {
		act = e.Arousal
	}
	return Clamp01(neg * act * (1 - e.Dominance) / 2)
}

// Anger projects the state onto the anger octant: negative valence, high
// arousal, high dominance. Result in [0, 1].
func (e EmotionalState) Anger() float64 {
	neg := 0.0
	if e.Valence < 0 {
		neg = -e.Valence
	}
	act := 0.0
	if e.Arousal > 0 {
		act = e.Arousal
	}
	return Clamp01(neg * act * (1 + e.Dominance) / 2)
}

// Shift applies a delta to each axis and re-clamps. This is the single write
// path for emotional change; contagion, stimuli, and action effects all go
// through it.
func (e *EmotionalState) Shift(dValence, dArousal, dDominance float64) {
	e.Valence = ClampSym(e.Valence + dValence)
	e.Arousal = ClampSym(e.Arousal + dArousal)
	e.Dominance = ClampSym(e.Dominance + dDominance)
}

// DriftToBaseline relaxes each axis toward its personality-derived resting
// point. rate is the fraction of the remaining distance closed per sim-hour.
func (e *EmotionalState) DriftToBaseline(base EmotionalState, rate, dtHours float64) {
	t := Clamp01(rate * dtHours)
	e.Valence = ClampSym(Lerp(e.Valence, base.Valence, t))
	e.Arousal = ClampSym(Lerp(e.Arousal, base.Arousal, t))
	e.Dominance = ClampSym(Lerp(e.Dominance, base.Dominance, t))
}

// Baseline derives the resting emotional point from personality: neurotics
// rest slightly negative and activated, extraverts slightly positive and
// dominant.
func (p Personality) Baseline() EmotionalState {
	return EmotionalState{
		Valence:   ClampSym(0.2*p.Extraversion - 0.3*p.Neuroticism),
		Arousal:   ClampSym(0.2*p.Neuroticism - 0.1*p.Conscientiousness),
		Dominance: ClampSym(0.3*p.Extraversion - 0.2*p.Agreeableness),
	}
}
