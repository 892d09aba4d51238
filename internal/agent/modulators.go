package agent

// CognitiveModulators are positive multipliers in [0.1, 2.0] that gate how
// well the perceptual and decision machinery works this tick. They are
// re-derived from ground truth every tick rather than integrated, so they can
// never drift out of range.
type CognitiveModulators struct {
	AttentionFocus      float64 `json:"attention_focus"`
	CognitiveClarity    float64 `json:"cognitive_clarity"`
	EmotionalReactivity float64 `json:"emotional_reactivity"`
	SocialAcuity        float64 `json:"social_acuity"`
}

const (
	// ModulatorFloor and ModulatorCeil bound every modulator.
	ModulatorFloor = 0.1
	ModulatorCeil  = 2.0
)

func clampMod(v float64) float64 {
	return ClampRange(v, ModulatorFloor, ModulatorCeil)
}

// DeriveModulators computes the modulators from personality, stress, and
// needs. Stress and exhaustion narrow attention and cloud thought; neuroticism
// and acute stress heighten reactivity.
func DeriveModulators(p Personality, s StressLevel, n Needs) CognitiveModulators {
	return CognitiveModulators{
		AttentionFocus:      clampMod(1 + 0.4*p.Conscientiousness - 0.6*s.Acute - 0.3*n.Hunger),
		CognitiveClarity:    clampMod(1 + 0.3*p.Openness - 0.7*s.Chronic - 0.4*n.Energy),
		EmotionalReactivity: clampMod(1 + 0.7*p.Neuroticism + 0.4*s.Acute - 0.2*p.Conscientiousness),
		SocialAcuity:        clampMod(1 + 0.5*p.Extraversion + 0.3*p.Agreeableness - 0.3*s.Chronic),
	}
}
