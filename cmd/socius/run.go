package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/aventine/socius/internal/api"
	"github.com/aventine/socius/internal/config"
	"github.com/aventine/socius/internal/engine"
	"github.com/aventine/socius/internal/persistence"
)

func newRunCmd() *cobra.Command {
	var (
		configPath string
		seed       int64
		agents     int
		port       int
		dbPath     string
		resume     bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start a simulation run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed = seed
			}
			if cmd.Flags().Changed("agents") {
				cfg.Agents = agents
			}
			if cmd.Flags().Changed("port") {
				cfg.HTTPPort = port
			}
			if cmd.Flags().Changed("db") {
				cfg.DatabasePath = dbPath
			}
			return runSimulation(cfg, resume)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.Flags().Int64Var(&seed, "seed", 42, "run seed")
	cmd.Flags().IntVar(&agents, "agents", 64, "population size")
	cmd.Flags().IntVar(&port, "port", 8080, "HTTP port")
	cmd.Flags().StringVar(&dbPath, "db", "socius.db", "SQLite snapshot path")
	cmd.Flags().BoolVar(&resume, "resume", false, "resume the latest run in the database")
	return cmd
}

func runSimulation(cfg *config.Config, resume bool) error {
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	db, err := persistence.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	var runID string
	if resume {
		id, seed, err := db.LatestRun()
		if err != nil {
			return err
		}
		if id == "" {
			return errors.New("no run to resume")
		}
		runID = id
		cfg.Seed = seed
	} else {
		runID, err = db.CreateRun(cfg.Seed)
		if err != nil {
			return err
		}
	}
	logger.Info("run ready", zap.String("run_id", runID), zap.Int64("seed", cfg.Seed))

	sim := engine.New(cfg, logger)
	if resume {
		state, err := db.LoadState(runID)
		if err != nil {
			return err
		}
		sim.RestoreState(state)
		logger.Info("state restored",
			zap.Uint64("tick", state.Tick),
			zap.Int("agents", len(state.Agents)))
	}

	loop := engine.NewLoop(sim, cfg.TickInterval, logger)
	loop.SnapshotTicks = uint64(cfg.SnapshotHours) * engine.TicksPerSimHour
	loop.OnSnapshot = func(tick uint64) {
		if err := db.SaveState(runID, sim.Snapshot()); err != nil {
			logger.Error("snapshot failed", zap.Uint64("tick", tick), zap.Error(err))
			return
		}
		if err := db.AppendEvents(runID, sim.DrainEvents()); err != nil {
			logger.Error("event flush failed", zap.Error(err))
		}
		logger.Info("snapshot saved", zap.Uint64("tick", tick))
	}

	server := api.NewServer(sim, loop, cfg.AdminKey, logger)
	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: server.Router(float64(cfg.RateLimit)),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := loop.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		logger.Info("http server starting", zap.Int("port", cfg.HTTPPort))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	// Final snapshot on the way out.
	if err := db.SaveState(runID, sim.Snapshot()); err != nil {
		logger.Error("final snapshot failed", zap.Error(err))
	}
	if err := db.AppendEvents(runID, sim.DrainEvents()); err != nil {
		logger.Error("final event flush failed", zap.Error(err))
	}
	logger.Info("shutdown complete", zap.Uint64("tick", sim.CurrentTick()))
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
