package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aventine/socius/internal/agent"
	"github.com/aventine/socius/internal/entropy"
	"github.com/aventine/socius/internal/expression"
	"github.com/aventine/socius/internal/perception"
)

func calmAgent() *agent.Agent {
	a := &agent.Agent{ID: 1, Alive: true}
	a.Personality = agent.Personality{
		Openness: 0.5, Conscientiousness: 0.5, Extraversion: 0.5,
		Agreeableness: 0.5, Neuroticism: 0.5,
	}
	a.Weights = agent.DefaultWeights()
	a.Modulators = agent.DeriveModulators(a.Personality, a.Stress, a.Needs)
	return a
}

func TestChooseAlwaysReturnsAnAction(t *testing.T) {
	e := NewEngine(DefaultParams(), entropy.NewSource(1))
	a := calmAgent()

	// Nothing pressing, nobody around: still a valid, unforced choice.
	act := e.Choose(a, Situation{})
	assert.False(t, act.Forced)
	assert.GreaterOrEqual(t, act.Score, 0.0)
	assert.NotEmpty(t, act.Kind.String())
	assert.NotEqual(t, "unknown", act.Kind.String())
}

func TestHungryAgentForages(t *testing.T) {
	e := NewEngine(DefaultParams(), entropy.NewSource(1))
	a := calmAgent()
	a.Needs.Hunger = 0.9

	act := e.Choose(a, Situation{Resource: 0.8})
	assert.Equal(t, ActionForage, act.Kind)
}

func TestExhaustedAgentRests(t *testing.T) {
	e := NewEngine(DefaultParams(), entropy.NewSource(1))
	a := calmAgent()
	a.Needs.Energy = 0.95
	a.Emotion.Arousal = -0.5

	act := e.Choose(a, Situation{})
	assert.Equal(t, ActionRest, act.Kind)
}

func TestFearOverrideForcesFlight(t *testing.T) {
	e := NewEngine(DefaultParams(), entropy.NewSource(1))
	a := calmAgent()
	a.Personality.Conscientiousness = 0 // no resistance
	// Fear 0.9: terror well past the override threshold.
	a.Emotion = agent.EmotionalState{Valence: -1, Arousal: 1, Dominance: -0.8}

	threat := perception.PerceivedAgent{
		Target: 7,
		Vector: expression.ApparentStateVector{Tension: 0.9},
	}
	act := e.Choose(a, Situation{Perceived: []perception.PerceivedAgent{threat}})
	assert.True(t, act.Forced)
	assert.Equal(t, ActionFlee, act.Kind)
	assert.Equal(t, agent.ID(7), act.Target)
}

func TestAngerOverrideForcesConfrontation(t *testing.T) {
	e := NewEngine(DefaultParams(), entropy.NewSource(1))
	a := calmAgent()
	a.Personality.Conscientiousness = 0
	a.Emotion = agent.EmotionalState{Valence: -1, Arousal: 1, Dominance: 0.9}

	act := e.Choose(a, Situation{})
	assert.True(t, act.Forced)
	assert.Equal(t, ActionConfront, act.Kind)
}

func TestDisciplineCanResistOverride(t *testing.T) {
	p := DefaultParams()
	p.ResistanceMax = 1.0 // exaggerated so resistance is guaranteed
	e := NewEngine(p, entropy.NewSource(1))

	a := calmAgent()
	a.Personality.Conscientiousness = 1.0
	a.Emotion = agent.EmotionalState{Valence: -1, Arousal: 1, Dominance: -0.8}

	act := e.Choose(a, Situation{})
	assert.False(t, act.Forced, "full resistance must always hold the line")
}

func TestHabitReinforcementShiftsChoices(t *testing.T) {
	e := NewEngine(DefaultParams(), entropy.NewSource(1))
	a := calmAgent()
	a.Weights = agent.WeightingProfile{Habitual: 0.8, Deliberative: 0.1, EmotionalIntuitive: 0.1}
	a.Needs.Social = 0.6 // dominant pressure: the habit bucket

	// Burn in a resting habit under social pressure.
	for i := 0; i < 20; i++ {
		e.Reinforce(a, Action{Kind: ActionRest})
	}
	act := e.Choose(a, Situation{})
	assert.Equal(t, ActionRest, act.Kind, "a strong habit dominates when habit weight is high")
}

func TestSocializeNeedsSomeoneToSocializeWith(t *testing.T) {
	e := NewEngine(DefaultParams(), entropy.NewSource(1))
	a := calmAgent()
	a.Needs.Social = 1.0
	a.Emotion.Valence = 0.5

	alone := e.Choose(a, Situation{})
	assert.NotEqual(t, ActionSocialize, alone.Kind, "no neighbors, no socializing")

	friend := perception.PerceivedAgent{
		Target: 3,
		Vector: expression.ApparentStateVector{Openness: 0.8, Tension: -0.4},
	}
	accompanied := e.Choose(a, Situation{
		Perceived: []perception.PerceivedAgent{friend},
		Trust:     func(agent.ID) float64 { return 0.8 },
	})
	assert.Equal(t, ActionSocialize, accompanied.Kind)
	assert.Equal(t, agent.ID(3), accompanied.Target)
}

func TestChooseDeterministicPerTick(t *testing.T) {
	a := calmAgent()
	a.Needs.Hunger = 0.5

	e1 := NewEngine(DefaultParams(), entropy.NewSource(4))
	e2 := NewEngine(DefaultParams(), entropy.NewSource(4))
	assert.Equal(t, e1.Choose(a, Situation{Tick: 9}), e2.Choose(a, Situation{Tick: 9}))
}

func TestForgetDropsHabits(t *testing.T) {
	e := NewEngine(DefaultParams(), entropy.NewSource(1))
	a := calmAgent()
	for i := 0; i < 10; i++ {
		e.Reinforce(a, Action{Kind: ActionRest})
	}
	require.NotEmpty(t, e.habits[a.ID])
	e.Forget(a.ID)
	assert.Empty(t, e.habits[a.ID])
}

func TestHabitStrengthSaturates(t *testing.T) {
	e := NewEngine(DefaultParams(), entropy.NewSource(1))
	a := calmAgent()

	prev := 0.0
	for i := 0; i < 50; i++ {
		e.Reinforce(a, Action{Kind: ActionForage})
		s := e.habitStrength(a.ID, pressingOf(a.Needs), ActionForage)
		assert.Greater(t, s, prev)
		assert.Less(t, s, 1.0, "habit strength asymptotes below 1")
		prev = s
	}
	assert.Greater(t, prev, 0.9)
}
