package engine

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Loop paces the simulation against wall-clock time. Speed is a multiplier
// on the base tick interval; zero pauses.
type Loop struct {
	sim      *Simulation
	log      *zap.Logger
	interval time.Duration
	speed    atomic.Value // float64
	tick     atomic.Uint64

	// OnSnapshot, when set, is invoked every SnapshotTicks with the tick
	// just completed. Runs on the loop goroutine; keep it quick or fork.
	OnSnapshot    func(tick uint64)
	SnapshotTicks uint64
}

// NewLoop wraps a simulation in a paced driver.
func NewLoop(sim *Simulation, interval time.Duration, log *zap.Logger) *Loop {
	l := &Loop{sim: sim, log: log, interval: interval}
	l.speed.Store(1.0)
	l.tick.Store(sim.CurrentTick())
	return l
}

// SetSpeed changes the pacing multiplier. 0 pauses, 1 is real-time cadence,
// larger is faster. Negative values are treated as pause.
func (l *Loop) SetSpeed(speed float64) {
	if speed < 0 {
		speed = 0
	}
	l.speed.Store(speed)
	l.log.Info("speed changed", zap.Float64("speed", speed))
}

// Speed returns the current pacing multiplier.
func (l *Loop) Speed() float64 {
	return l.speed.Load().(float64)
}

// Tick returns the last completed tick.
func (l *Loop) Tick() uint64 {
	return l.tick.Load()
}

// Run drives the simulation until the context is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	l.log.Info("loop started",
		zap.Uint64("tick", l.tick.Load()),
		zap.Duration("interval", l.interval))

	for {
		speed := l.Speed()
		if speed <= 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}

		start := time.Now()
		tick := l.tick.Add(1)
		l.sim.Step(tick)

		if l.OnSnapshot != nil && l.SnapshotTicks > 0 && tick%l.SnapshotTicks == 0 {
			l.OnSnapshot(tick)
		}

		target := time.Duration(float64(l.interval) / speed)
		if elapsed := time.Since(start); elapsed < target {
			select {
			case <-ctx.Done():
				l.log.Info("loop stopped", zap.Uint64("tick", tick))
				return ctx.Err()
			case <-time.After(target - elapsed):
			}
		} else if ctx.Err() != nil {
			l.log.Info("loop stopped", zap.Uint64("tick", tick))
			return ctx.Err()
		}
	}
}
