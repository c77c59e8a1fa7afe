package memory

import (
	"maps"
	"sync"
	"time"

	"github.com/eagleglass/airsim/internal/config"
	"github.com/eagleglass/airsim/internal/storage"
	"github.com/eagleglass/airsim/pkg/core"
)

// SnapshotRecord is one saved state together with the tick it was taken at.
type SnapshotRecord struct {
	Tick int
	Time time.Time
	Data core.Snapshot
}

// Backend stores session data in memory and exports to JSON
type Backend struct {
	cfg     config.MemoryConfig
	session *core.Session

	snapshots []SnapshotRecord
	events    []core.Event

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{cfg: cfg}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartSession begins recording a new session and drops anything held from
// the previous one.
func (b *Backend) StartSession(s *core.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.session = s
	b.snapshots = nil
	b.events = nil
	b.lastExportPath = ""
	return nil
}

// EndSession finalizes and exports the session data
func (b *Backend) EndSession() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return storage.ErrNoSession
	}
	return b.exportJSON()
}

// SaveSnapshot keeps a copy of snap.
func (b *Backend) SaveSnapshot(tick int, snap core.Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return storage.ErrNoSession
	}
	b.snapshots = append(b.snapshots, SnapshotRecord{
		Tick: tick,
		Time: time.Now(),
		Data: maps.Clone(snap),
	})
	return nil
}

// LoadSnapshot returns a copy of the latest snapshot.
func (b *Backend) LoadSnapshot() (core.Snapshot, int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.snapshots) == 0 {
		return nil, 0, storage.ErrNoSnapshot
	}
	last := b.snapshots[len(b.snapshots)-1]
	return maps.Clone(last.Data), last.Tick, nil
}

// RecordEvent appends e to the session log.
func (b *Backend) RecordEvent(e *core.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return storage.ErrNoSession
	}
	b.events = append(b.events, *e)
	return nil
}

// Events returns a copy of the recorded events in arrival order.
func (b *Backend) Events() []core.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]core.Event(nil), b.events...)
}

// SnapshotCount reports how many snapshots are held.
func (b *Backend) SnapshotCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.snapshots)
}

// GetExportedFilePath returns the path of the last export, or "" if none.
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
