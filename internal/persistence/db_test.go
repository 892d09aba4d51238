package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aventine/socius/internal/agent"
	"github.com/aventine/socius/internal/config"
	"github.com/aventine/socius/internal/engine"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "socius.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func simState(t *testing.T) engine.SnapshotState {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Agents = 12
	cfg.WorldExtent = 20
	cfg.Parallelism = 1

	sim := engine.New(cfg, zap.NewNop())
	for tick := uint64(1); tick <= 40; tick++ {
		sim.Step(tick)
	}
	return sim.Snapshot()
}

func TestCreateAndLatestRun(t *testing.T) {
	db := openTestDB(t)

	id, seed, err := db.LatestRun()
	require.NoError(t, err)
	assert.Empty(t, id, "fresh database has no runs")
	assert.Zero(t, seed)

	created, err := db.CreateRun(77)
	require.NoError(t, err)
	require.NotEmpty(t, created)

	id, seed, err = db.LatestRun()
	require.NoError(t, err)
	assert.Equal(t, created, id)
	assert.Equal(t, int64(77), seed)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)
	runID, err := db.CreateRun(42)
	require.NoError(t, err)

	st := simState(t)
	require.NoError(t, db.SaveState(runID, st))

	got, err := db.LoadState(runID)
	require.NoError(t, err)

	assert.Equal(t, st.Tick, got.Tick)
	require.Len(t, got.Agents, len(st.Agents))
	assert.Len(t, got.Beliefs, len(st.Beliefs))
	assert.Len(t, got.Relations, len(st.Relations))

	want := make(map[uint64]int, len(st.Agents))
	for i, a := range st.Agents {
		want[uint64(a.ID)] = i
	}
	for _, a := range got.Agents {
		i, ok := want[uint64(a.ID)]
		require.True(t, ok, "agent %d lost in round trip", a.ID)
		orig := st.Agents[i]
		assert.Equal(t, orig.Name, a.Name)
		assert.InDelta(t, orig.Position.X, a.Position.X, 1e-12)
		assert.InDelta(t, orig.Needs.Hunger, a.Needs.Hunger, 1e-12)
		assert.InDelta(t, orig.Emotion.Valence, a.Emotion.Valence, 1e-12)
		assert.InDelta(t, orig.Personality.Neuroticism, a.Personality.Neuroticism, 1e-12)
		assert.Equal(t, orig.Stress.Phase, a.Stress.Phase)
		assert.True(t, a.Alive)
	}
}

func TestSaveStateIsFullReplace(t *testing.T) {
	db := openTestDB(t)
	runID, err := db.CreateRun(42)
	require.NoError(t, err)

	st := simState(t)
	require.NoError(t, db.SaveState(runID, st))
	// Saving again must not duplicate rows.
	require.NoError(t, db.SaveState(runID, st))

	got, err := db.LoadState(runID)
	require.NoError(t, err)
	assert.Len(t, got.Agents, len(st.Agents))
	assert.Len(t, got.Beliefs, len(st.Beliefs))
}

func TestRunsAreIsolated(t *testing.T) {
	db := openTestDB(t)
	runA, err := db.CreateRun(1)
	require.NoError(t, err)
	runB, err := db.CreateRun(2)
	require.NoError(t, err)

	st := simState(t)
	require.NoError(t, db.SaveState(runA, st))

	got, err := db.LoadState(runB)
	require.NoError(t, err)
	assert.Empty(t, got.Agents, "runs must not leak into each other")
}

func TestPeriodicFlushDoesNotDuplicateEvents(t *testing.T) {
	db := openTestDB(t)
	runID, err := db.CreateRun(42)
	require.NoError(t, err)

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Agents = 8
	cfg.WorldExtent = 20
	cfg.Parallelism = 1

	sim := engine.New(cfg, zap.NewNop())
	id := sim.Store.Alive()[0].ID
	sim.Inject(agent.Stimulus{Kind: agent.StimulusThreat, Target: id, Intensity: 1.0})
	sim.Step(1)

	require.NoError(t, db.AppendEvents(runID, sim.DrainEvents()))
	var first int
	require.NoError(t, db.conn.Get(&first, "SELECT COUNT(*) FROM events WHERE run_id = ?", runID))
	require.Greater(t, first, 0)

	// A second flush cycle with no new activity writes nothing.
	require.NoError(t, db.AppendEvents(runID, sim.DrainEvents()))
	var second int
	require.NoError(t, db.conn.Get(&second, "SELECT COUNT(*) FROM events WHERE run_id = ?", runID))
	assert.Equal(t, first, second)
}

func TestAppendEvents(t *testing.T) {
	db := openTestDB(t)
	runID, err := db.CreateRun(42)
	require.NoError(t, err)

	require.NoError(t, db.AppendEvents(runID, nil))
	require.NoError(t, db.AppendEvents(runID, []engine.Event{
		{Tick: 5, Category: "trauma", AgentID: 3, Description: "x"},
		{Tick: 6, Category: "belief", AgentID: 4, Description: "y"},
	}))

	var n int
	require.NoError(t, db.conn.Get(&n, "SELECT COUNT(*) FROM events WHERE run_id = ?", runID))
	assert.Equal(t, 2, n)
}
