package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/eagleglass/airsim/internal/influx"
	"github.com/eagleglass/airsim/internal/session"
	"github.com/eagleglass/airsim/internal/sim"
)

// DefaultInterval is how often the status is reported.
const DefaultInterval = time.Second

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Logger  *slog.Logger
	Session *session.Context
	Status  func() sim.Status
	// Influx is optional.
	Influx     *influx.Manager
	StatusFile string
	Interval   time.Duration
}

// Service periodically writes the simulation status to a file, the log and
// InfluxDB.
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Interval <= 0 {
		deps.Interval = DefaultInterval
	}
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Report renders the current status as indented JSON.
func (s *Service) Report() (string, sim.Status) {
	st := s.deps.Status()
	out, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		out = []byte(fmt.Sprintf(`{"error": %q}`, err.Error()))
	}
	return string(out), st
}

// ReportOnce writes one report to every sink.
func (s *Service) ReportOnce(ctx context.Context) error {
	report, st := s.Report()

	if s.deps.StatusFile != "" {
		if err := os.WriteFile(s.deps.StatusFile, []byte(report+"\n"), 0644); err != nil {
			return fmt.Errorf("error writing status file: %w", err)
		}
	}

	s.deps.Logger.Debug("Simulation status",
		"tick", st.Tick,
		"units", st.Units,
		"pending", st.Pending,
	)

	if s.deps.Influx != nil {
		scenario := s.deps.Session.GetSession().Scenario
		if err := s.deps.Influx.WritePoints(ctx, influx.BucketMetrics, influx.StatusPoints(scenario, st, time.Now())...); err != nil {
			return fmt.Errorf("error writing status metrics: %w", err)
		}
	}
	return nil
}

// Run reports every interval until ctx is cancelled or Stop is called.
func (s *Service) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		close(done)
	}()

	s.deps.Logger.Debug("Starting status monitor", "interval", s.deps.Interval)
	ticker := time.NewTicker(s.deps.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-stop:
			return nil
		case <-ticker.C:
			if err := s.ReportOnce(ctx); err != nil {
				s.deps.Logger.Error("Status report failed", "error", err)
			}
		}
	}
}

// Start runs the monitor in its own goroutine.
func (s *Service) Start() error {
	go func() { _ = s.Run(context.Background()) }()
	return nil
}

// Stop stops the status monitor and waits for it to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()
	<-done
}
