package worker

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/eagleglass/airsim/internal/session"
	"github.com/eagleglass/airsim/internal/storage"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
)

// PointWriter is satisfied by *influx.Manager.
type PointWriter interface {
	WritePoint(ctx context.Context, bucket string, point *influxdb2_write.Point) error
}

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	Logger  *slog.Logger
	Session *session.Context
	// Metrics is optional; when set every event is also written to the
	// events bucket.
	Metrics PointWriter
}

// Manager connects the event dispatcher to storage and metrics.
type Manager struct {
	deps     Dependencies
	backend  storage.Backend
	recorded atomic.Int64
	written  atomic.Int64
}

// NewManager creates a new worker manager. backend may be nil when nothing
// is persisted.
func NewManager(deps Dependencies, backend storage.Backend) *Manager {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Session == nil {
		deps.Session = session.NewContext()
	}
	return &Manager{
		deps:    deps,
		backend: backend,
	}
}

// Recorded is how many events reached the storage backend.
func (m *Manager) Recorded() int64 {
	return m.recorded.Load()
}

// Written is how many event points reached the metrics writer.
func (m *Manager) Written() int64 {
	return m.written.Load()
}

// DBWriteDurationProvider is an optional interface that backends can implement
// to expose their last DB write duration for monitoring.
type DBWriteDurationProvider interface {
	LastWriteDuration() time.Duration
}

// GetLastDBWriteDuration returns the duration of the last DB write cycle.
// Returns 0 if the backend doesn't support this metric.
func (m *Manager) GetLastDBWriteDuration() time.Duration {
	if p, ok := m.backend.(DBWriteDurationProvider); ok {
		return p.LastWriteDuration()
	}
	return 0
}
