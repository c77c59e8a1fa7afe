package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/eagleglass/airsim/internal/api"
	"github.com/eagleglass/airsim/internal/config"
	"github.com/eagleglass/airsim/internal/dispatcher"
	"github.com/eagleglass/airsim/internal/influx"
	"github.com/eagleglass/airsim/internal/logging"
	"github.com/eagleglass/airsim/internal/monitor"
	"github.com/eagleglass/airsim/internal/rope"
	"github.com/eagleglass/airsim/internal/scenario"
	"github.com/eagleglass/airsim/internal/sim"
	"github.com/eagleglass/airsim/internal/storage"
	"github.com/eagleglass/airsim/internal/worker"
	"github.com/eagleglass/airsim/pkg/core"

	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

func simConfig(c config.SimConfig) sim.Config {
	return sim.Config{
		TicksPerSecond: c.TicksPerSecond,
		ScanInterval:   c.ScanIntervalTicks,
		PoolCacheTicks: c.PoolCacheTicks,
		HaulInterval:   c.HaulIntervalTicks,
		LowThreshold:   c.LowResourceThreshold,
		Seed:           c.Seed,
	}
}

func scenarioDefaults(c config.SimConfig) scenario.Defaults {
	ropeCfg := rope.DefaultConfig()
	ropeCfg.ExtendSpeed = c.RopeExtendSpeed
	ropeCfg.DescentSeconds = c.RopeDescentSeconds
	ropeCfg.TicksPerSecond = c.TicksPerSecond
	return scenario.Defaults{
		HoverAltitude: c.HoverAltitude,
		Ammo:          c.DefaultAmmo,
		PreEntry:      c.PreEntryAllowance,
		Altitude:      c.AltitudeOffset,
		Rope:          ropeCfg,
	}
}

// runScenario loads the scenario, records it to the configured backend and
// steps it until sim.maxTicks or ctx is cancelled.
func runScenario(ctx context.Context, scenarioPath string) (sim.Status, error) {
	sc, err := scenario.Load(scenarioPath)
	if err != nil {
		return sim.Status{}, err
	}
	simCfg := config.GetSimConfig()
	storageCfg := config.GetStorageConfig()

	eventDispatcher, err := dispatcher.New(logging.NewDispatcherLogger(ZLogger))
	if err != nil {
		return sim.Status{}, fmt.Errorf("failed to create dispatcher: %w", err)
	}
	defer eventDispatcher.Close()

	s, err := sc.Build(simConfig(simCfg), scenarioDefaults(simCfg), eventDispatcher, Logger)
	if err != nil {
		return sim.Status{}, err
	}
	Logger.Info("Scenario loaded", "name", sc.Name, "path", scenarioPath, "carriers", len(s.Carriers()))

	backend, err := createStorageBackend(storageCfg)
	if err != nil {
		return sim.Status{}, err
	}
	if err := backend.Init(); err != nil {
		return sim.Status{}, fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			Logger.Error("Failed to close storage backend", "error", err)
		}
	}()

	if viper.GetBool("resume") {
		resume(s, backend)
	}

	influxManager := connectInflux()
	deps := worker.Dependencies{
		Logger:  Logger,
		Session: sessionCtx,
	}
	if influxManager != nil {
		deps.Metrics = influxManager
		defer influxManager.Close()
	}
	workerManager := worker.NewManager(deps, backend)
	workerManager.RegisterHandlers(eventDispatcher)

	sess := &core.Session{
		ID:             core.NewEntityID(),
		Scenario:       sc.Name,
		StartTime:      SessionStartTime,
		TicksPerSecond: simCfg.TicksPerSecond,
	}
	sessionCtx.SetSession(sess, s)
	if err := backend.StartSession(sess); err != nil {
		return sim.Status{}, fmt.Errorf("failed to start session: %w", err)
	}

	monitorService := monitor.NewService(monitor.Dependencies{
		Logger:     Logger,
		Session:    sessionCtx,
		Status:     s.Status,
		Influx:     influxManager,
		StatusFile: viper.GetString("statusFile"),
	})

	started := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancelRun := context.WithCancel(gctx)
	g.Go(func() error {
		return monitorService.Run(runCtx)
	})
	g.Go(func() error {
		defer cancelRun()
		return stepLoop(runCtx, s, backend, simCfg.MaxTicks, storageCfg.SnapshotInterval)
	})
	runErr := g.Wait()
	eventDispatcher.Close()

	if err := backend.SaveSnapshot(s.Tick(), s.Save()); err != nil && !errors.Is(err, storage.ErrNotSupported) {
		Logger.Error("Failed to save final snapshot", "tick", s.Tick(), "error", err)
	}
	if err := monitorService.ReportOnce(context.Background()); err != nil {
		Logger.Warn("Final status report failed", "error", err)
	}
	if err := backend.EndSession(); err != nil {
		Logger.Error("Failed to end session", "error", err)
	}
	if dbManager != nil {
		if err := dbManager.DumpMemoryToDisk(); err != nil {
			Logger.Error("Failed to dump local database", "error", err)
		}
	}

	st := s.Status()
	Logger.Info("Run finished",
		"ticks", st.Tick,
		"elapsed", time.Since(started),
		"recorded", workerManager.Recorded(),
		"metrics", workerManager.Written(),
		"lastWrite", workerManager.GetLastDBWriteDuration(),
	)

	if exp, ok := backend.(storage.Exportable); ok {
		uploadRun(exp.GetExportedFilePath(), api.RunMetadata{
			Scenario:        sc.Name,
			SessionID:       sess.ID.String(),
			Ticks:           st.Tick,
			DurationSeconds: float64(st.Tick) / float64(max(1, simCfg.TicksPerSecond)),
		})
	}

	return st, runErr
}

// stepLoop advances s and saves a snapshot every snapshotInterval ticks.
// Cancellation ends the loop without error.
func stepLoop(ctx context.Context, s *sim.Simulation, backend storage.Backend, maxTicks, snapshotInterval int) error {
	ticks, err := OTelProvider.Meter("github.com/eagleglass/airsim/cmd/airsim").Int64Counter(
		"airsim.sim.ticks",
		metric.WithDescription("Simulation ticks stepped"),
	)
	if err != nil {
		return fmt.Errorf("failed to create tick counter: %w", err)
	}

	for i := 0; maxTicks <= 0 || i < maxTicks; i++ {
		if err := s.Step(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				Logger.Info("Run interrupted", "tick", s.Tick())
				return nil
			}
			return err
		}
		ticks.Add(ctx, 1)

		if snapshotInterval > 0 && s.Tick()%snapshotInterval == 0 {
			if err := backend.SaveSnapshot(s.Tick(), s.Save()); err != nil && !errors.Is(err, storage.ErrNotSupported) {
				Logger.Error("Failed to save snapshot", "tick", s.Tick(), "error", err)
			}
		}
	}
	return nil
}

// resume loads the newest stored snapshot into s.
func resume(s *sim.Simulation, backend storage.Backend) {
	snap, tick, err := backend.LoadSnapshot()
	switch {
	case errors.Is(err, storage.ErrNoSnapshot):
		Logger.Info("No snapshot to resume from, starting fresh")
	case errors.Is(err, storage.ErrNotSupported):
		Logger.Warn("Storage backend cannot resume runs")
	case err != nil:
		Logger.Error("Failed to load snapshot", "error", err)
	default:
		s.Load(snap)
		Logger.Info("Resumed from snapshot", "tick", tick)
	}
}

func connectInflux() *influx.Manager {
	if !viper.GetBool("influx.enabled") {
		return nil
	}
	backupPath := filepath.Join(viper.GetString("logsDir"),
		fmt.Sprintf("influx_backup_%s.lp.gz", SessionStartTime.Format("20060102_150405")))
	m := influx.NewManager(ZLogger, backupPath)
	if err := m.Connect(); err != nil {
		Logger.Error("Failed to connect to InfluxDB, metrics disabled", "error", err)
		return nil
	}
	return m
}

func uploadRun(path string, meta api.RunMetadata) {
	uploadCfg := config.GetUploadConfig()
	if !uploadCfg.Enabled || path == "" {
		return
	}
	client := api.New(uploadCfg.ServerURL, uploadCfg.APIKey)
	if err := client.Healthcheck(); err != nil {
		Logger.Error("Run viewer unreachable, skipping upload", "url", uploadCfg.ServerURL, "error", err)
		return
	}
	if err := client.Upload(path, meta); err != nil {
		Logger.Error("Failed to upload run", "path", path, "error", err)
		return
	}
	Logger.Info("Run uploaded", "path", path, "url", uploadCfg.ServerURL)
}

func writeStatus(w io.Writer, st sim.Status) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(st)
}
