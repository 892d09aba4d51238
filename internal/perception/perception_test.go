package perception

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aventine/socius/internal/agent"
	"github.com/aventine/socius/internal/entropy"
	"github.com/aventine/socius/internal/expression"
)

// stubBeliefs returns a fixed prior for every (observer, target) pair.
type stubBeliefs struct {
	vector    expression.ApparentStateVector
	certainty float64
}

func (s stubBeliefs) BeliefFor(_, _ agent.ID) (expression.ApparentStateVector, float64, bool) {
	if s.certainty == 0 {
		return expression.ApparentStateVector{}, 0, false
	}
	return s.vector, s.certainty, true
}

func observer() *agent.Agent {
	a := &agent.Agent{ID: 1, Alive: true}
	a.Personality = agent.Personality{
		Openness: 0.5, Conscientiousness: 0.5, Extraversion: 0.5,
		Agreeableness: 0.5, Neuroticism: 0,
	}
	a.Modulators = agent.CognitiveModulators{
		AttentionFocus:      agent.ModulatorCeil, // fully attentive: zero noise
		CognitiveClarity:    agent.ModulatorCeil,
		EmotionalReactivity: 1,
		SocialAcuity:        1,
	}
	return a
}

func TestFamiliarityPullsTowardBelief(t *testing.T) {
	raw := expression.ApparentStateVector{Tension: -0.5, Openness: 0.4}
	prior := expression.ApparentStateVector{Tension: 0.5, Openness: -0.6}

	e := NewEngine(Params{
		MinSlots: 3, MaxSlots: 7,
		ThreatSalience:  1.0,
		FamiliarityPull: 0.2,
		NoiseScale:      0,
	}, stubBeliefs{vector: prior, certainty: 0.9}, entropy.NewSource(1))

	got := e.Perceive(observer(), []Observed{{ID: 2, Distance: 2, Vector: raw}}, 0)
	require.Len(t, got, 1)

	// Certainty 0.9 times pull 0.2 moves the read 18% of the way.
	wantT := raw.Tension + (prior.Tension-raw.Tension)*0.18
	wantO := raw.Openness + (prior.Openness-raw.Openness)*0.18
	assert.InDelta(t, wantT, got[0].Vector.Tension, 1e-9)
	assert.InDelta(t, wantO, got[0].Vector.Openness, 1e-9)
}

func TestNoBeliefNoPull(t *testing.T) {
	raw := expression.ApparentStateVector{Tension: -0.5, Openness: 0.4}
	e := NewEngine(Params{
		MinSlots: 3, MaxSlots: 7,
		ThreatSalience:  1.0,
		FamiliarityPull: 0.2,
		NoiseScale:      0,
	}, stubBeliefs{}, entropy.NewSource(1))

	got := e.Perceive(observer(), []Observed{{ID: 2, Distance: 2, Vector: raw}}, 0)
	require.Len(t, got, 1)
	assert.Equal(t, raw, got[0].Vector)
}

func TestThreatSalienceAmplifiesTension(t *testing.T) {
	raw := expression.ApparentStateVector{Tension: 0.4}
	e := NewEngine(Params{
		MinSlots: 3, MaxSlots: 7,
		ThreatSalience:  1.5,
		FamiliarityPull: 0,
		NoiseScale:      0,
	}, nil, entropy.NewSource(1))

	got := e.Perceive(observer(), []Observed{{ID: 2, Distance: 2, Vector: raw}}, 0)
	require.Len(t, got, 1)
	assert.InDelta(t, 0.6, got[0].Vector.Tension, 1e-9)

	// Calm reads are not amplified.
	calm := expression.ApparentStateVector{Tension: -0.4}
	got = e.Perceive(observer(), []Observed{{ID: 2, Distance: 2, Vector: calm}}, 0)
	require.Len(t, got, 1)
	assert.InDelta(t, -0.4, got[0].Vector.Tension, 1e-9)
}

func TestSlotCapacity(t *testing.T) {
	p := Params{MinSlots: 3, MaxSlots: 7, ThreatSalience: 1, NoiseScale: 0}
	e := NewEngine(p, nil, entropy.NewSource(1))

	fresh := observer() // rested and clear
	assert.Equal(t, 7, e.Slots(fresh))

	spent := observer()
	spent.Needs.Energy = 1
	spent.Modulators.CognitiveClarity = agent.ModulatorFloor
	assert.Equal(t, 3, e.Slots(spent))
}

func TestAttentionFilterKeepsHighestPriority(t *testing.T) {
	e := NewEngine(Params{
		MinSlots: 3, MaxSlots: 3,
		ThreatSalience: 1, NoiseScale: 0,
	}, nil, entropy.NewSource(1))

	obs := observer()
	obs.Needs.Energy = 1
	obs.Modulators.CognitiveClarity = agent.ModulatorFloor

	// Ten neighbors; the tense nearby one must always survive the filter.
	neighbors := make([]Observed, 0, 10)
	for i := 2; i <= 10; i++ {
		neighbors = append(neighbors, Observed{ID: agent.ID(i), Distance: float64(i)})
	}
	neighbors = append(neighbors, Observed{
		ID: 99, Distance: 1,
		Vector: expression.ApparentStateVector{Tension: 0.9},
	})

	got := e.Perceive(obs, neighbors, 0)
	require.Len(t, got, 3)
	assert.Equal(t, agent.ID(99), got[0].Target)
}

func TestInattentiveObserverGetsNoisyLowConfidenceReads(t *testing.T) {
	p := Params{MinSlots: 3, MaxSlots: 7, ThreatSalience: 1, NoiseScale: 0.4}
	e := NewEngine(p, nil, entropy.NewSource(5))

	sharp := observer()
	foggy := observer()
	foggy.Modulators.AttentionFocus = agent.ModulatorFloor

	raw := []Observed{{ID: 2, Distance: 2}}
	sharpGot := e.Perceive(sharp, raw, 0)
	foggyGot := e.Perceive(foggy, raw, 0)
	require.Len(t, sharpGot, 1)
	require.Len(t, foggyGot, 1)

	assert.Greater(t, sharpGot[0].Confidence, foggyGot[0].Confidence)
	assert.InDelta(t, 1.0, sharpGot[0].Confidence, 1e-9, "fully attentive observer trusts its read")
}

func TestEmptyNeighborhood(t *testing.T) {
	e := NewEngine(DefaultParams(), nil, entropy.NewSource(1))
	assert.Nil(t, e.Perceive(observer(), nil, 0))
}
