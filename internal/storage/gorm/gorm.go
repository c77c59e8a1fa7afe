// Package gormstorage implements the storage.Backend interface on GORM with an
// internal event queue and a background DB writer goroutine. The sqlite and
// postgres backends embed it.
package gormstorage

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eagleglass/airsim/internal/database"
	"github.com/eagleglass/airsim/internal/model"
	"github.com/eagleglass/airsim/internal/model/convert"
	"github.com/eagleglass/airsim/internal/queue"
	"github.com/eagleglass/airsim/internal/storage"
	"github.com/eagleglass/airsim/pkg/core"

	"gorm.io/gorm"
)

// DefaultFlushInterval is how often queued events are written.
const DefaultFlushInterval = 2 * time.Second

// ErrNoDB is returned by Init when no connection was injected.
var ErrNoDB = errors.New("no database connection")

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB            *gorm.DB
	Logger        *slog.Logger
	FlushInterval time.Duration
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
type Backend struct {
	deps      Dependencies
	events    *queue.Queue[model.Event]
	sessionID atomic.Pointer[string]

	writeMu           sync.Mutex
	lastWriteDuration atomic.Int64

	stopChan  chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = DefaultFlushInterval
	}
	return &Backend{
		deps:   deps,
		events: queue.New[model.Event](),
	}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// SetDB injects a connection opened after New. It must be called before Init.
func (b *Backend) SetDB(db *gorm.DB) {
	b.deps.DB = db
}

// Init runs schema migration and starts the DB writer goroutine.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return ErrNoDB
	}

	b.deps.Logger.Info("Migrating schema", "dialect", b.deps.DB.Name())
	if err := database.Migrate(b.deps.DB); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})
	go b.writerLoop()
	return nil
}

// Close stops the DB writer goroutine and writes whatever is still queued.
func (b *Backend) Close() error {
	var err error
	b.closeOnce.Do(func() {
		if b.stopChan == nil {
			return
		}
		close(b.stopChan)
		<-b.done
		err = b.Flush()
	})
	return err
}

// StartSession inserts the session row. Events recorded afterwards belong
// to it.
func (b *Backend) StartSession(s *core.Session) error {
	if b.deps.DB == nil {
		return ErrNoDB
	}
	row := convert.SessionToModel(s)
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	b.sessionID.Store(&row.ID)
	return nil
}

// EndSession flushes queued events and stamps the session end time.
func (b *Backend) EndSession() error {
	id := b.currentSession()
	if id == "" {
		return storage.ErrNoSession
	}
	if err := b.Flush(); err != nil {
		return err
	}
	err := b.deps.DB.Model(&model.Session{}).
		Where("id = ?", id).
		Update("end_time", convert.EndedAt(time.Now())).Error
	if err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	b.sessionID.Store(nil)
	return nil
}

// SaveSnapshot writes synchronously; the snapshot is loadable once it returns.
func (b *Backend) SaveSnapshot(tick int, snap core.Snapshot) error {
	id := b.currentSession()
	if id == "" {
		return storage.ErrNoSession
	}
	row := convert.SnapshotToModel(id, tick, time.Now(), snap)
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the newest snapshot of the current session, or of any
// session when none is active.
func (b *Backend) LoadSnapshot() (core.Snapshot, int, error) {
	if b.deps.DB == nil {
		return nil, 0, ErrNoDB
	}
	q := b.deps.DB.Model(&model.Snapshot{})
	if id := b.currentSession(); id != "" {
		q = q.Where("session_id = ?", id)
	}

	var row model.Snapshot
	err := q.Order("tick desc").Order("id desc").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, storage.ErrNoSnapshot
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load snapshot: %w", err)
	}
	snap, tick := convert.SnapshotToCore(row)
	return snap, tick, nil
}

// RecordEvent converts and queues an event.
func (b *Backend) RecordEvent(e *core.Event) error {
	id := b.currentSession()
	if id == "" {
		return storage.ErrNoSession
	}
	b.events.Push(convert.EventToModel(id, e))
	return nil
}

// PendingEvents is the number of events not yet written.
func (b *Backend) PendingEvents() int {
	return b.events.Len()
}

// LastWriteDuration is how long the most recent batch write took.
func (b *Backend) LastWriteDuration() time.Duration {
	return time.Duration(b.lastWriteDuration.Load())
}

// Flush writes every queued event now.
func (b *Backend) Flush() error {
	if b.deps.DB == nil {
		return ErrNoDB
	}
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	start := time.Now()
	err := writeQueue(b.deps.DB, b.events, "events", b.deps.Logger)
	b.lastWriteDuration.Store(int64(time.Since(start)))
	return err
}

func (b *Backend) currentSession() string {
	if id := b.sessionID.Load(); id != nil {
		return *id
	}
	return ""
}

// writeQueue writes all items from a queue to the database in a transaction.
// On failure the items go back on the queue for the next cycle.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log *slog.Logger) error {
	if q.Empty() {
		return nil
	}

	tx := db.Begin()
	items := q.GetAndEmpty()
	if err := tx.Create(&items).Error; err != nil {
		log.Error("Error creating rows", "table", name, "count", len(items), "error", err)
		tx.Rollback()
		q.Push(items...)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	return tx.Commit().Error
}

// writerLoop periodically drains the queue into the DB until Close.
func (b *Backend) writerLoop() {
	defer close(b.done)

	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			// errors are logged by writeQueue and retried next cycle
			_ = b.Flush()
		}
	}
}
