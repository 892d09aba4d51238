// Package engine drives the simulation: a tick loop over a fixed pipeline of
// stages. Within a stage agents are processed data-parallel; between stages
// there are barriers, and every cross-agent effect travels as a queued value
// (stimulus, contagion delta, reputation outcome) applied in the sequential
// commit stage. No stage ever calls back into another agent's update.
package engine

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aventine/socius/internal/agent"
	"github.com/aventine/socius/internal/belief"
	"github.com/aventine/socius/internal/config"
	"github.com/aventine/socius/internal/contagion"
	"github.com/aventine/socius/internal/decision"
	"github.com/aventine/socius/internal/entropy"
	"github.com/aventine/socius/internal/expression"
	"github.com/aventine/socius/internal/perception"
	"github.com/aventine/socius/internal/social"
	"github.com/aventine/socius/internal/world"
)

// Tick cadence. One tick is one sim-minute.
const (
	TicksPerSimHour = 60
	TicksPerSimDay  = 1440
)

// dtHours is the sim-time advanced by one full-rate tick.
const dtHours = 1.0 / TicksPerSimHour

// Simulation owns all run state and advances it one tick at a time. The
// RWMutex guards the boundary with the API: Step takes the write lock, the
// read accessors take the read lock.
type Simulation struct {
	mu  sync.RWMutex
	log *zap.Logger
	cfg *config.Config

	Store      *agent.Store
	Beliefs    *belief.Ledger
	Reputation *social.Ledger

	express  *expression.Transform
	perceive *perception.Engine
	decide   *decision.Engine
	grid     *world.Grid
	fields   *world.Fields
	src      *entropy.Source

	needsParams    agent.NeedsDecayParams
	stressParams   agent.StressParams
	stimulusParams agent.StimulusParams
	contagionP     contagion.Params

	// Per-arena-slot stage buffers, resized as the arena grows.
	apparent      []expression.ApparentStateVector
	perceived     [][]perception.PerceivedAgent
	deltas        []contagion.Delta
	actions       []decision.Action
	beliefChanged []bool
	localThreat   []float64
	localResource []float64
	prevPhase     []agent.StressPhase

	// Cross-agent effects land here and are drained next tick.
	pending []agent.Stimulus

	events     []Event
	eventSeq   uint64 // total events ever emitted
	flushedSeq uint64 // eventSeq at the last DrainEvents
	stats      SimStats
	lastTick   uint64
}

// New assembles a simulation from configuration. The population is spawned
// immediately; call Step (or run the Loop) to advance it.
func New(cfg *config.Config, log *zap.Logger) *Simulation {
	src := entropy.NewSource(cfg.Seed)
	beliefs := belief.NewLedger(cfg.BeliefParams())

	s := &Simulation{
		log:            log,
		cfg:            cfg,
		Store:          agent.NewStore(),
		Beliefs:        beliefs,
		Reputation:     social.NewLedger(cfg.SocialParams()),
		express:        expression.New(cfg.ExpressionParams(), src.Fork(101)),
		perceive:       perception.NewEngine(cfg.PerceptionParams(), beliefs, src.Fork(103)),
		decide:         decision.NewEngine(cfg.DecisionParams(), src.Fork(107)),
		grid:           world.NewGrid(cfg.PerceptionRadius),
		fields:         world.NewFields(cfg.Seed, cfg.WorldExtent/4),
		src:            src,
		needsParams:    cfg.NeedsParams(),
		stressParams:   cfg.StressParams(),
		stimulusParams: cfg.StimulusParams(),
		contagionP:     cfg.ContagionParams(),
		stats:          SimStats{ActionMix: make(map[string]uint64)},
	}

	spawner := agent.NewSpawner(cfg.Seed, agent.DefaultPopulation())
	spawner.SpawnInto(s.Store, cfg.Agents, cfg.WorldExtent, 0)
	s.refreshLOD()
	s.refreshStats()

	log.Info("population spawned",
		zap.Int("agents", s.Store.Len()),
		zap.Int64("seed", cfg.Seed))
	return s
}

// CurrentTick returns the most recently completed tick.
func (s *Simulation) CurrentTick() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastTick
}

// Step advances the world by one tick.
func (s *Simulation) Step(tick uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	arena := s.Store.All()
	s.resize(len(arena))
	simHours := float64(tick) / TicksPerSimHour

	// Cross-agent effects queued last tick land before anything else.
	s.drainPending()

	s.grid.Rebuild(arena)

	s.stageInternal(arena, tick, simHours)
	s.stageExpression(arena, tick)
	s.stagePerception(arena, tick)
	s.stageBelief(arena, tick)
	s.stageContagion(arena)
	s.stageDecision(arena, tick)
	s.stageCommit(arena, tick)

	if tick%TicksPerSimHour == 0 {
		s.refreshStats()
	}
	if tick%TicksPerSimDay == 0 {
		s.dailyMaintenance(tick)
	}
	s.lastTick = tick
}

// stageInternal updates each agent's private dynamics: queued stimuli already
// landed, so this is decay, drift, stress bleed, and modulator refresh.
func (s *Simulation) stageInternal(arena []*agent.Agent, tick uint64, simHours float64) {
	s.parallel(len(arena), func(i int) {
		a := arena[i]
		if !a.Alive {
			return
		}

		interval := s.lodInterval(a)
		if tick%uint64(interval) != uint64(a.ID)%uint64(interval) {
			return
		}
		dt := dtHours * float64(interval)

		threat := s.fields.Threat(a.Position, simHours)
		resource := s.fields.Resource(a.Position, simHours)
		s.localThreat[i] = threat
		s.localResource[i] = resource
		s.prevPhase[i] = a.Stress.Phase

		isolated := len(s.grid.Query(a.Position, s.contagionP.Radius, a.ID)) == 0

		a.Needs.Decay(dt, threat, isolated, s.needsParams)
		a.Emotion.DriftToBaseline(a.Personality.Baseline(), s.cfg.EmotionDriftRate, dt)
		a.Stress.Decay(dt, s.stressParams)

		// The environment occasionally reaches in: hot threat pockets fire
		// threat stimuli, seeded per (agent, tick).
		if threat > 0.5 {
			ns := s.src.Fork(int64(a.ID)*5_000_011 + int64(tick))
			if ns.Chance(threat * 0.05) {
				agent.ApplyStimulus(a, agent.Stimulus{
					Kind:      agent.StimulusThreat,
					Target:    a.ID,
					Intensity: threat,
				}, s.stimulusParams)
			}
		}

		a.Modulators = agent.DeriveModulators(a.Personality, a.Stress, a.Needs)
	})
}

func (s *Simulation) stageExpression(arena []*agent.Agent, tick uint64) {
	s.parallel(len(arena), func(i int) {
		if !arena[i].Alive {
			return
		}
		s.apparent[i] = s.express.Apparent(arena[i], tick)
	})
}

func (s *Simulation) stagePerception(arena []*agent.Agent, tick uint64) {
	s.parallel(len(arena), func(i int) {
		a := arena[i]
		if !a.Alive {
			s.perceived[i] = nil
			return
		}
		hits := s.grid.Query(a.Position, s.cfg.PerceptionRadius, a.ID)
		obs := make([]perception.Observed, 0, len(hits))
		for _, h := range hits {
			j, ok := s.Store.IndexOf(h.ID)
			if !ok {
				continue
			}
			obs = append(obs, perception.Observed{
				ID:       h.ID,
				Distance: h.Distance,
				Vector:   s.apparent[j],
			})
		}
		s.perceived[i] = s.perceive.Perceive(a, obs, tick)
	})
}

// stageBelief runs sequentially: it is the only writer of the belief ledger,
// and the ledger is read concurrently by the perception stage next tick.
func (s *Simulation) stageBelief(arena []*agent.Agent, tick uint64) {
	for i, a := range arena {
		s.beliefChanged[i] = false
		if !a.Alive {
			continue
		}
		intense := a.Emotion.Fear()
		if ang := a.Emotion.Anger(); ang > intense {
			intense = ang
		}
		for _, p := range s.perceived[i] {
			change, ok := s.Beliefs.Observe(a.ID, p, a.Personality.Agreeableness, intense, tick)
			if !ok {
				continue
			}
			s.beliefChanged[i] = true
			if change.Reversal {
				s.emit(Event{
					Tick:     tick,
					Category: "belief",
					AgentID:  a.ID,
					Description: fmt.Sprintf("%s now reads agent %d as %s (certainty %.2f)",
						a.Name, change.Target, change.Label, change.Certainty),
				})
			}
		}
	}
}

// stageContagion computes each receiver's inbox from the apparent snapshot.
// Receiver-owned accumulation means no two goroutines touch the same delta.
func (s *Simulation) stageContagion(arena []*agent.Agent) {
	s.parallel(len(arena), func(i int) {
		a := arena[i]
		s.deltas[i] = contagion.Delta{}
		if !a.Alive {
			return
		}
		hits := s.grid.Query(a.Position, s.contagionP.Radius, a.ID)
		srcs := make([]contagion.Source, 0, len(hits))
		for _, h := range hits {
			j, ok := s.Store.IndexOf(h.ID)
			if !ok {
				continue
			}
			srcs = append(srcs, contagion.Source{
				ID:       h.ID,
				Tension:  s.apparent[j].Tension,
				Distance: h.Distance,
			})
		}
		s.deltas[i] = contagion.Receive(a, srcs, func(id agent.ID) float64 {
			return s.Reputation.Trust(a.ID, id)
		}, s.contagionP)
	})
}

func (s *Simulation) stageDecision(arena []*agent.Agent, tick uint64) {
	s.parallel(len(arena), func(i int) {
		a := arena[i]
		if !a.Alive {
			return
		}
		s.actions[i] = s.decide.Choose(a, decision.Situation{
			Tick:          tick,
			Perceived:     s.perceived[i],
			Trust:         func(id agent.ID) float64 { return s.Reputation.Trust(a.ID, id) },
			BeliefChanged: s.beliefChanged[i],
			Resource:      s.localResource[i],
			Threat:        s.localThreat[i],
		})
	})
}

// parallel fans fn out over [0, n) across the configured worker count, with
// a serial fast path for small populations.
func (s *Simulation) parallel(n int, fn func(i int)) {
	workers := s.cfg.Parallelism
	if workers <= 1 || n < 32 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	g := new(errgroup.Group)
	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			break
		}
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				fn(i)
			}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors
}

func (s *Simulation) drainPending() {
	for _, st := range s.pending {
		if a, ok := s.Store.Get(st.Target); ok {
			agent.ApplyStimulus(a, st, s.stimulusParams)
		}
	}
	s.pending = s.pending[:0]
}

// lodInterval maps an agent's simulation rate to a tick stride.
func (s *Simulation) lodInterval(a *agent.Agent) int {
	if a.SimRate >= 1 {
		return 1
	}
	n := int(1/a.SimRate + 0.5)
	if n < 1 {
		n = 1
	}
	return n
}

// refreshLOD assigns full rate near the focus point (plane center) and the
// configured reduced rate beyond it. Decay formulas take dt, so slower agents
// stay consistent, just coarser.
func (s *Simulation) refreshLOD() {
	cx, cy := s.cfg.WorldExtent/2, s.cfg.WorldExtent/2
	r2 := s.cfg.LODFocusRadius * s.cfg.LODFocusRadius
	for _, a := range s.Store.All() {
		if !a.Alive {
			continue
		}
		dx, dy := a.Position.X-cx, a.Position.Y-cy
		if dx*dx+dy*dy <= r2 {
			a.SimRate = 1.0
		} else {
			a.SimRate = s.cfg.LODFarRate
		}
	}
}

func (s *Simulation) dailyMaintenance(tick uint64) {
	s.Beliefs.DecayTick(tick, TicksPerSimDay)
	s.Reputation.DecayDaily()
	s.refreshLOD()
	s.refreshStats()

	s.log.Info("daily summary",
		zap.Uint64("tick", tick),
		zap.Int("population", s.stats.Population),
		zap.Float64("avg_valence", s.stats.AvgValence),
		zap.Float64("avg_acute", s.stats.AvgAcute),
		zap.Float64("avg_certainty", s.stats.AvgCertainty),
		zap.Int("allostatic", s.stats.Allostatic),
		zap.Int("post_traumatic", s.stats.PostTraumatic))
}

// resize grows the per-slot stage buffers to match the arena.
func (s *Simulation) resize(n int) {
	if len(s.apparent) >= n {
		return
	}
	s.apparent = append(s.apparent, make([]expression.ApparentStateVector, n-len(s.apparent))...)
	s.perceived = append(s.perceived, make([][]perception.PerceivedAgent, n-len(s.perceived))...)
	s.deltas = append(s.deltas, make([]contagion.Delta, n-len(s.deltas))...)
	s.actions = append(s.actions, make([]decision.Action, n-len(s.actions))...)
	s.beliefChanged = append(s.beliefChanged, make([]bool, n-len(s.beliefChanged))...)
	s.localThreat = append(s.localThreat, make([]float64, n-len(s.localThreat))...)
	s.localResource = append(s.localResource, make([]float64, n-len(s.localResource))...)
	s.prevPhase = append(s.prevPhase, make([]agent.StressPhase, n-len(s.prevPhase))...)
}
