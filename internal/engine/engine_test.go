package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/aventine/socius/internal/agent"
	"github.com/aventine/socius/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Agents = 40
	cfg.WorldExtent = 30
	cfg.Parallelism = 4
	return cfg
}

func TestNewSpawnsPopulation(t *testing.T) {
	sim := New(testConfig(t), zap.NewNop())
	assert.Equal(t, 40, sim.Store.Len())
	assert.Equal(t, uint64(0), sim.CurrentTick())
}

func TestStepKeepsEveryFieldBounded(t *testing.T) {
	sim := New(testConfig(t), zap.NewNop())

	for tick := uint64(1); tick <= 300; tick++ {
		sim.Step(tick)
	}

	for _, a := range sim.Store.Alive() {
		for name, v := range map[string]float64{
			"hunger": a.Needs.Hunger, "energy": a.Needs.Energy,
			"safety": a.Needs.Safety, "social": a.Needs.Social,
			"acute": a.Stress.Acute, "chronic": a.Stress.Chronic,
		} {
			assert.GreaterOrEqual(t, v, 0.0, name)
			assert.LessOrEqual(t, v, 1.0, name)
		}
		for name, v := range map[string]float64{
			"valence": a.Emotion.Valence, "arousal": a.Emotion.Arousal,
			"dominance": a.Emotion.Dominance,
		} {
			assert.GreaterOrEqual(t, v, -1.0, name)
			assert.LessOrEqual(t, v, 1.0, name)
		}
		for name, v := range map[string]float64{
			"attention": a.Modulators.AttentionFocus,
			"clarity":   a.Modulators.CognitiveClarity,
			"reactivity": a.Modulators.EmotionalReactivity,
			"acuity":    a.Modulators.SocialAcuity,
		} {
			assert.GreaterOrEqual(t, v, agent.ModulatorFloor, name)
			assert.LessOrEqual(t, v, agent.ModulatorCeil, name)
		}
		sum := a.Weights.Habitual + a.Weights.Deliberative + a.Weights.EmotionalIntuitive
		assert.InDelta(t, 1.0, sum, 1e-6)
	}
	assert.Equal(t, uint64(300), sim.CurrentTick())
}

func TestDeterministicReplay(t *testing.T) {
	a := New(testConfig(t), zap.NewNop())
	b := New(testConfig(t), zap.NewNop())

	for tick := uint64(1); tick <= 50; tick++ {
		a.Step(tick)
		b.Step(tick)
	}

	as, bs := a.Store.Alive(), b.Store.Alive()
	require.Equal(t, len(as), len(bs))
	for i := range as {
		assert.Equal(t, as[i].Position, bs[i].Position, "agent %d position", as[i].ID)
		assert.Equal(t, as[i].Emotion, bs[i].Emotion, "agent %d emotion", as[i].ID)
		assert.Equal(t, as[i].Needs, bs[i].Needs, "agent %d needs", as[i].ID)
	}
}

func TestDespawnMidRunIsHarmless(t *testing.T) {
	sim := New(testConfig(t), zap.NewNop())
	for tick := uint64(1); tick <= 20; tick++ {
		sim.Step(tick)
	}

	victim := sim.Store.Alive()[0].ID
	require.True(t, sim.Despawn(victim))
	assert.False(t, sim.Despawn(victim), "double despawn reports not-found")

	// Stale references in ledgers and grids must not disturb later ticks.
	for tick := uint64(21); tick <= 60; tick++ {
		sim.Step(tick)
	}
	assert.Equal(t, 39, sim.Store.Len())

	_, ok := sim.Summary(victim)
	assert.False(t, ok)
	assert.Empty(t, sim.BeliefsOf(victim))
}

func TestSetAttributeClampsAndRejects(t *testing.T) {
	sim := New(testConfig(t), zap.NewNop())
	id := sim.Store.Alive()[0].ID

	require.NoError(t, sim.SetAttribute(id, "hunger", 5.0))
	detail, ok := sim.Detail(id)
	require.True(t, ok)
	assert.Equal(t, 1.0, detail.Agent.Needs.Hunger, "writes clamp, never overflow")

	require.NoError(t, sim.SetAttribute(id, "valence", -3))
	detail, _ = sim.Detail(id)
	assert.Equal(t, -1.0, detail.Agent.Emotion.Valence)

	assert.Error(t, sim.SetAttribute(id, "charisma", 1))
	assert.Error(t, sim.SetAttribute(99999, "hunger", 0.5))
}

func TestInjectedThreatRaisesStress(t *testing.T) {
	cfg := testConfig(t)
	sim := New(cfg, zap.NewNop())
	id := sim.Store.Alive()[0].ID

	before, _ := sim.Detail(id)
	sim.Inject(agent.Stimulus{Kind: agent.StimulusThreat, Target: id, Intensity: 0.6})
	sim.Step(1)
	after, _ := sim.Detail(id)

	assert.Greater(t, after.Agent.Stress.Acute, before.Agent.Stress.Acute)
	assert.Greater(t, after.Agent.Needs.Safety, before.Agent.Needs.Safety)
}

func TestTraumaticStimulusLeavesPermanentMark(t *testing.T) {
	sim := New(testConfig(t), zap.NewNop())
	id := sim.Store.Alive()[0].ID

	before, _ := sim.Detail(id)
	sim.Inject(agent.Stimulus{Kind: agent.StimulusThreat, Target: id, Intensity: 1.0})
	sim.Step(1)
	after, _ := sim.Detail(id)

	assert.Equal(t, agent.PostTraumatic, after.Agent.Stress.Phase)
	assert.Greater(t, after.Agent.Personality.Neuroticism, before.Agent.Personality.Neuroticism)
}

func TestSummariesExposeOnlyApparentState(t *testing.T) {
	sim := New(testConfig(t), zap.NewNop())
	sim.Step(1)

	sums := sim.Summaries()
	require.Len(t, sums, 40)
	for _, s := range sums {
		assert.NotZero(t, s.ID)
		assert.NotEmpty(t, s.Name)
		assert.GreaterOrEqual(t, s.Apparent.Tension, -1.0)
		assert.LessOrEqual(t, s.Apparent.Tension, 1.0)
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	cfg := testConfig(t)
	sim := New(cfg, zap.NewNop())
	for tick := uint64(1); tick <= 30; tick++ {
		sim.Step(tick)
	}
	st := sim.Snapshot()
	require.Len(t, st.Agents, 40)
	assert.Equal(t, uint64(30), st.Tick)

	resumed := New(cfg, zap.NewNop())
	resumed.RestoreState(st)
	assert.Equal(t, uint64(30), resumed.CurrentTick())
	assert.Equal(t, 40, resumed.Store.Len())

	// A restored run keeps stepping cleanly.
	for tick := uint64(31); tick <= 40; tick++ {
		resumed.Step(tick)
	}
	assert.Equal(t, uint64(40), resumed.CurrentTick())
}

func TestDrainEventsAdvancesFlushMark(t *testing.T) {
	sim := New(testConfig(t), zap.NewNop())
	sim.emit(Event{Tick: 1, Category: "stress"})
	sim.emit(Event{Tick: 2, Category: "belief"})

	first := sim.DrainEvents()
	require.Len(t, first, 2)
	assert.Empty(t, sim.DrainEvents(), "nothing new since the last drain")

	sim.emit(Event{Tick: 3, Category: "trauma"})
	second := sim.DrainEvents()
	require.Len(t, second, 1)
	assert.Equal(t, uint64(3), second[0].Tick)

	// Draining leaves the API-facing ring intact.
	assert.Len(t, sim.RecentEvents(0), 3)
}

func TestDrainEventsCapsAtRingSize(t *testing.T) {
	sim := New(testConfig(t), zap.NewNop())
	for i := 0; i < maxEvents+50; i++ {
		sim.emit(Event{Tick: uint64(i), Category: "stress"})
	}
	assert.Len(t, sim.DrainEvents(), maxEvents)
	assert.Empty(t, sim.DrainEvents())
}

func TestEventRingBounded(t *testing.T) {
	sim := New(testConfig(t), zap.NewNop())
	for i := 0; i < maxEvents+100; i++ {
		sim.emit(Event{Tick: uint64(i), Category: "stress"})
	}
	assert.Len(t, sim.RecentEvents(0), maxEvents)

	recent := sim.RecentEvents(10)
	assert.Len(t, recent, 10)
	assert.Equal(t, uint64(maxEvents+99), recent[9].Tick, "newest last")
}
