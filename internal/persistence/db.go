// Package persistence stores run snapshots in SQLite. A snapshot is a full
// replace of the run's rows; runs are identified by UUID so several seeds can
// share one database file.
package persistence

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/aventine/socius/internal/agent"
	"github.com/aventine/socius/internal/belief"
	"github.com/aventine/socius/internal/engine"
	"github.com/aventine/socius/internal/social"
)

// DB wraps a SQLite connection for snapshot storage.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		last_tick INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS agents (
		run_id TEXT NOT NULL,
		id INTEGER NOT NULL,
		name TEXT NOT NULL,
		pos_x REAL NOT NULL,
		pos_y REAL NOT NULL,
		born_tick INTEGER NOT NULL,
		sim_rate REAL NOT NULL,
		needs_json TEXT NOT NULL,
		emotion_json TEXT NOT NULL,
		personality_json TEXT NOT NULL,
		stress_json TEXT NOT NULL,
		weights_json TEXT NOT NULL,
		PRIMARY KEY (run_id, id)
	);

	CREATE TABLE IF NOT EXISTS beliefs (
		run_id TEXT NOT NULL,
		observer INTEGER NOT NULL,
		target INTEGER NOT NULL,
		vector_json TEXT NOT NULL,
		certainty REAL NOT NULL,
		last_seen INTEGER NOT NULL,
		strong INTEGER NOT NULL,
		PRIMARY KEY (run_id, observer, target)
	);

	CREATE TABLE IF NOT EXISTS relationships (
		run_id TEXT NOT NULL,
		observer INTEGER NOT NULL,
		target INTEGER NOT NULL,
		trust REAL NOT NULL,
		affiliation REAL NOT NULL,
		last_interaction INTEGER NOT NULL,
		PRIMARY KEY (run_id, observer, target)
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		category TEXT NOT NULL,
		agent_id INTEGER NOT NULL,
		description TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_run_tick ON events(run_id, tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// CreateRun registers a new run and returns its id.
func (db *DB) CreateRun(seed int64) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.Exec("INSERT INTO runs (id, seed) VALUES (?, ?)", id, seed)
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}
	return id, nil
}

// LatestRun returns the most recently created run id and its seed.
func (db *DB) LatestRun() (string, int64, error) {
	var row struct {
		ID   string `db:"id"`
		Seed int64  `db:"seed"`
	}
	err := db.conn.Get(&row, "SELECT id, seed FROM runs ORDER BY created_at DESC, id DESC LIMIT 1")
	if err == sql.ErrNoRows {
		return "", 0, nil
	}
	if err != nil {
		return "", 0, fmt.Errorf("latest run: %w", err)
	}
	return row.ID, row.Seed, nil
}

// SaveState writes a full snapshot for the run (full replace).
func (db *DB) SaveState(runID string, st engine.SnapshotState) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"agents", "beliefs", "relationships"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE run_id = ?", runID); err != nil {
			return err
		}
	}

	stmt, err := tx.Preparex(`INSERT INTO agents
		(run_id, id, name, pos_x, pos_y, born_tick, sim_rate,
		 needs_json, emotion_json, personality_json, stress_json, weights_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range st.Agents {
		needsJSON, _ := json.Marshal(a.Needs)
		emotionJSON, _ := json.Marshal(a.Emotion)
		personalityJSON, _ := json.Marshal(a.Personality)
		stressJSON, _ := json.Marshal(a.Stress)
		weightsJSON, _ := json.Marshal(a.Weights)

		if _, err := stmt.Exec(
			runID, a.ID, a.Name, a.Position.X, a.Position.Y, a.BornTick, a.SimRate,
			string(needsJSON), string(emotionJSON), string(personalityJSON),
			string(stressJSON), string(weightsJSON),
		); err != nil {
			return fmt.Errorf("insert agent %d: %w", a.ID, err)
		}
	}

	for _, row := range st.Beliefs {
		vectorJSON, _ := json.Marshal(row.Belief.Vector)
		strong := 0
		if row.Belief.Strong {
			strong = 1
		}
		if _, err := tx.Exec(`INSERT INTO beliefs
			(run_id, observer, target, vector_json, certainty, last_seen, strong)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, row.Observer, row.Target, string(vectorJSON),
			row.Belief.Certainty, row.Belief.LastSeen, strong,
		); err != nil {
			return fmt.Errorf("insert belief %d->%d: %w", row.Observer, row.Target, err)
		}
	}

	for _, row := range st.Relations {
		if _, err := tx.Exec(`INSERT INTO relationships
			(run_id, observer, target, trust, affiliation, last_interaction)
			VALUES (?, ?, ?, ?, ?, ?)`,
			runID, row.Observer, row.Target,
			row.Relation.Trust, row.Relation.Affiliation, row.Relation.LastInteraction,
		); err != nil {
			return fmt.Errorf("insert relationship %d->%d: %w", row.Observer, row.Target, err)
		}
	}

	if _, err := tx.Exec("UPDATE runs SET last_tick = ? WHERE id = ?", st.Tick, runID); err != nil {
		return err
	}
	return tx.Commit()
}

// AppendEvents adds events to the run's history.
func (db *DB) AppendEvents(runID string, events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		if _, err := tx.Exec(
			"INSERT INTO events (run_id, tick, category, agent_id, description) VALUES (?, ?, ?, ?, ?)",
			runID, e.Tick, e.Category, e.AgentID, e.Description,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadState reads the run's snapshot back.
func (db *DB) LoadState(runID string) (engine.SnapshotState, error) {
	var st engine.SnapshotState

	if err := db.conn.Get(&st.Tick,
		"SELECT last_tick FROM runs WHERE id = ?", runID); err != nil {
		return st, fmt.Errorf("load run %s: %w", runID, err)
	}

	type agentRow struct {
		ID              uint64  `db:"id"`
		Name            string  `db:"name"`
		PosX            float64 `db:"pos_x"`
		PosY            float64 `db:"pos_y"`
		BornTick        uint64  `db:"born_tick"`
		SimRate         float64 `db:"sim_rate"`
		NeedsJSON       string  `db:"needs_json"`
		EmotionJSON     string  `db:"emotion_json"`
		PersonalityJSON string  `db:"personality_json"`
		StressJSON      string  `db:"stress_json"`
		WeightsJSON     string  `db:"weights_json"`
	}
	var agentRows []agentRow
	if err := db.conn.Select(&agentRows,
		"SELECT id, name, pos_x, pos_y, born_tick, sim_rate, needs_json, emotion_json, personality_json, stress_json, weights_json FROM agents WHERE run_id = ?",
		runID); err != nil {
		return st, fmt.Errorf("load agents: %w", err)
	}
	for _, r := range agentRows {
		a := agent.Agent{
			ID:       agent.ID(r.ID),
			Name:     r.Name,
			Position: agent.Position{X: r.PosX, Y: r.PosY},
			BornTick: r.BornTick,
			SimRate:  r.SimRate,
			Alive:    true,
		}
		if err := json.Unmarshal([]byte(r.NeedsJSON), &a.Needs); err != nil {
			return st, fmt.Errorf("agent %d needs: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.EmotionJSON), &a.Emotion); err != nil {
			return st, fmt.Errorf("agent %d emotion: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.PersonalityJSON), &a.Personality); err != nil {
			return st, fmt.Errorf("agent %d personality: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.StressJSON), &a.Stress); err != nil {
			return st, fmt.Errorf("agent %d stress: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.WeightsJSON), &a.Weights); err != nil {
			return st, fmt.Errorf("agent %d weights: %w", r.ID, err)
		}
		a.Modulators = agent.DeriveModulators(a.Personality, a.Stress, a.Needs)
		st.Agents = append(st.Agents, a)
	}

	type beliefRow struct {
		Observer   uint64  `db:"observer"`
		Target     uint64  `db:"target"`
		VectorJSON string  `db:"vector_json"`
		Certainty  float64 `db:"certainty"`
		LastSeen   uint64  `db:"last_seen"`
		Strong     int     `db:"strong"`
	}
	var beliefRows []beliefRow
	if err := db.conn.Select(&beliefRows,
		"SELECT observer, target, vector_json, certainty, last_seen, strong FROM beliefs WHERE run_id = ?",
		runID); err != nil {
		return st, fmt.Errorf("load beliefs: %w", err)
	}
	for _, r := range beliefRows {
		b := belief.Belief{
			Certainty: r.Certainty,
			LastSeen:  r.LastSeen,
			Strong:    r.Strong != 0,
		}
		if err := json.Unmarshal([]byte(r.VectorJSON), &b.Vector); err != nil {
			return st, fmt.Errorf("belief %d->%d: %w", r.Observer, r.Target, err)
		}
		st.Beliefs = append(st.Beliefs, engine.BeliefRow{
			Observer: agent.ID(r.Observer),
			Target:   agent.ID(r.Target),
			Belief:   b,
		})
	}

	type relRow struct {
		Observer        uint64  `db:"observer"`
		Target          uint64  `db:"target"`
		Trust           float64 `db:"trust"`
		Affiliation     float64 `db:"affiliation"`
		LastInteraction uint64  `db:"last_interaction"`
	}
	var relRows []relRow
	if err := db.conn.Select(&relRows,
		"SELECT observer, target, trust, affiliation, last_interaction FROM relationships WHERE run_id = ?",
		runID); err != nil {
		return st, fmt.Errorf("load relationships: %w", err)
	}
	for _, r := range relRows {
		st.Relations = append(st.Relations, engine.RelationRow{
			Observer: agent.ID(r.Observer),
			Target:   agent.ID(r.Target),
			Relation: social.Relationship{
				Trust:           r.Trust,
				Affiliation:     r.Affiliation,
				LastInteraction: r.LastInteraction,
			},
		})
	}

	return st, nil
}
