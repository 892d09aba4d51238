package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aventine/socius/internal/entropy"
)

func TestShiftClampsAllAxes(t *testing.T) {
	e := EmotionalState{Valence: 0.9, Arousal: -0.9, Dominance: 0}
	e.Shift(10, -10, 0.5)
	assert.Equal(t, 1.0, e.Valence)
	assert.Equal(t, -1.0, e.Arousal)
	assert.Equal(t, 0.5, e.Dominance)
}

func TestFearAngerProjection(t *testing.T) {
	// Displeasure + high arousal + submission reads as fear.
	e := EmotionalState{Valence: -1, Arousal: 1, Dominance: -0.8}
	assert.InDelta(t, 0.9, e.Fear(), 1e-9)
	assert.InDelta(t, 0.1, e.Anger(), 1e-9)

	// Same affect with dominance flipped reads as anger.
	e.Dominance = 0.8
	assert.InDelta(t, 0.1, e.Fear(), 1e-9)
	assert.InDelta(t, 0.9, e.Anger(), 1e-9)

	// Pleasant states carry neither.
	e = EmotionalState{Valence: 0.5, Arousal: 0.5}
	assert.Zero(t, e.Fear())
	assert.Zero(t, e.Anger())
}

func TestNeedsDecayHungerAcceleratesWithExhaustion(t *testing.T) {
	p := NeedsDecayParams{HungerRate: 0.1, EnergyRate: 0.05, IsolationRate: 0.02, ThreatRate: 0.3, SafetyRelax: 0.1}

	rested := Needs{Energy: 0}
	tired := Needs{Energy: 1}
	rested.Decay(1, 0, false, p)
	tired.Decay(1, 0, false, p)
	assert.Greater(t, tired.Hunger, rested.Hunger)
}

func TestNeedsDecayBounded(t *testing.T) {
	p := NeedsDecayParams{HungerRate: 5, EnergyRate: 5, IsolationRate: 5, ThreatRate: 5, SafetyRelax: 5}
	n := Needs{}
	for i := 0; i < 100; i++ {
		n.Decay(1, 1, true, p)
	}
	assert.LessOrEqual(t, n.Hunger, 1.0)
	assert.LessOrEqual(t, n.Energy, 1.0)
	assert.LessOrEqual(t, n.Safety, 1.0)
	assert.LessOrEqual(t, n.Social, 1.0)
}

func TestStressHysteresis(t *testing.T) {
	p := StressParams{EnterThreshold: 0.7, ExitThreshold: 0.5, AcuteDecay: 0.15, ChronicGain: 0.02, ChronicDecay: 0.01}

	s := StressLevel{}
	assert.Equal(t, Homeostasis, s.Phase)

	// Cross the enter threshold.
	s.Chronic = 0.75
	s.updatePhase(p)
	assert.Equal(t, Allostasis, s.Phase)

	// Dipping below enter but above exit must NOT flap back.
	s.Chronic = 0.6
	s.updatePhase(p)
	assert.Equal(t, Allostasis, s.Phase)

	// Only below the exit threshold does recovery happen.
	s.Chronic = 0.45
	s.updatePhase(p)
	assert.Equal(t, Homeostasis, s.Phase)
}

func TestMarkTraumaForcesPostTraumatic(t *testing.T) {
	p := StressParams{EnterThreshold: 0.7, ExitThreshold: 0.5, AcuteDecay: 0.15, ChronicGain: 0.02, ChronicDecay: 0.01}
	s := StressLevel{}
	s.MarkTrauma(0.9, p)
	assert.Equal(t, PostTraumatic, s.Phase)
	assert.Greater(t, s.Acute, 0.0)
	assert.Greater(t, s.Chronic, 0.0)

	// Post-traumatic recovery also obeys the exit threshold.
	for i := 0; i < 10000; i++ {
		s.Decay(1, p)
	}
	assert.Equal(t, Homeostasis, s.Phase)
}

func TestRebiasPreservesNormalization(t *testing.T) {
	w := WeightingProfile{Habitual: 0.4, Deliberative: 0.35, EmotionalIntuitive: 0.25}

	calm := w.Rebias(0.3, 0.7)
	assert.InDelta(t, 1.0, calm.Habitual+calm.Deliberative+calm.EmotionalIntuitive, 1e-6)
	// Below the threshold the mix is unchanged.
	assert.InDelta(t, w.Habitual, calm.Habitual, 1e-9)
	assert.InDelta(t, w.Deliberative, calm.Deliberative, 1e-9)
	assert.InDelta(t, w.EmotionalIntuitive, calm.EmotionalIntuitive, 1e-9)

	stressed := w.Rebias(0.9, 0.7)
	assert.InDelta(t, 1.0, stressed.Habitual+stressed.Deliberative+stressed.EmotionalIntuitive, 1e-6)
	assert.Less(t, stressed.Deliberative, w.Deliberative)
	assert.Greater(t, stressed.Habitual, w.Habitual)
	assert.Greater(t, stressed.EmotionalIntuitive, w.EmotionalIntuitive)

	// The receiver must be untouched.
	assert.InDelta(t, 0.35, w.Deliberative, 1e-9)
}

func TestNormalizeDegenerateFallsBack(t *testing.T) {
	w := WeightingProfile{}
	w.Normalize()
	def := DefaultWeights()
	assert.Equal(t, def, w)
}

func TestDeriveModulatorsBounded(t *testing.T) {
	extremes := []struct {
		p Personality
		s StressLevel
		n Needs
	}{
		{Personality{}, StressLevel{}, Needs{}},
		{Personality{1, 1, 1, 1, 1}, StressLevel{Acute: 1, Chronic: 1}, Needs{1, 1, 1, 1}},
		{Personality{Neuroticism: 1}, StressLevel{Acute: 1}, Needs{}},
	}
	for _, tc := range extremes {
		m := DeriveModulators(tc.p, tc.s, tc.n)
		for _, v := range []float64{m.AttentionFocus, m.CognitiveClarity, m.EmotionalReactivity, m.SocialAcuity} {
			assert.GreaterOrEqual(t, v, ModulatorFloor)
			assert.LessOrEqual(t, v, ModulatorCeil)
		}
	}
}

func TestApplyTraumaShiftsPersonality(t *testing.T) {
	p := Personality{Openness: 0.5, Extraversion: 0.5, Neuroticism: 0.5}
	before := p
	p.ApplyTrauma(1.0)
	assert.Greater(t, p.Neuroticism, before.Neuroticism)
	assert.Less(t, p.Openness, before.Openness)
	assert.Less(t, p.Extraversion, before.Extraversion)
}

func TestStimulusTargetsDespawnedIsDropped(t *testing.T) {
	store := NewStore()
	sp := NewSpawner(1, DefaultPopulation())
	sp.SpawnInto(store, 3, 10, 0)

	id := store.All()[1].ID
	store.Despawn(id)

	_, ok := store.Get(id)
	assert.False(t, ok, "despawned agents must not resolve")
	assert.Equal(t, 2, store.Len())
}

func TestSpawnerDeterministic(t *testing.T) {
	a := NewSpawner(7, DefaultPopulation())
	b := NewSpawner(7, DefaultPopulation())

	sa, sb := NewStore(), NewStore()
	a.SpawnInto(sa, 10, 50, 0)
	b.SpawnInto(sb, 10, 50, 0)

	require.Equal(t, sa.Len(), sb.Len())
	for i, ag := range sa.All() {
		bg := sb.All()[i]
		assert.Equal(t, ag.Name, bg.Name)
		assert.Equal(t, ag.Position, bg.Position)
		assert.Equal(t, ag.Personality, bg.Personality)
	}
}

func TestPopulationSampleWithinBounds(t *testing.T) {
	src := entropy.NewSource(3)
	d := DefaultPopulation()
	for i := 0; i < 200; i++ {
		p := d.Sample(src)
		for _, v := range []float64{p.Openness, p.Conscientiousness, p.Extraversion, p.Agreeableness, p.Neuroticism} {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
}

func TestApplyStimulusThreat(t *testing.T) {
	p := StimulusParams{
		ThreatSafetyGain: 0.5,
		ThreatStressGain: 0.6,
		TraumaThreshold:  0.85,
		Stress:           StressParams{EnterThreshold: 0.7, ExitThreshold: 0.5, AcuteDecay: 0.15, ChronicGain: 0.02, ChronicDecay: 0.01},
	}

	a := &Agent{Alive: true}
	ApplyStimulus(a, Stimulus{Kind: StimulusThreat, Intensity: 0.5}, p)
	assert.Greater(t, a.Needs.Safety, 0.0)
	assert.Greater(t, a.Stress.Acute, 0.0)
	assert.NotEqual(t, PostTraumatic, a.Stress.Phase)

	b := &Agent{Alive: true}
	ApplyStimulus(b, Stimulus{Kind: StimulusThreat, Intensity: 0.95}, p)
	assert.Equal(t, PostTraumatic, b.Stress.Phase)
}
