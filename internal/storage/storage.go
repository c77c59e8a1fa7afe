package storage

import (
	"errors"

	"github.com/eagleglass/airsim/pkg/core"
)

var (
	// ErrNotSupported is returned by backends that cannot serve an operation,
	// such as loading a snapshot back from a live stream.
	ErrNotSupported = errors.New("operation not supported by storage backend")
	// ErrNoSnapshot is returned by LoadSnapshot when nothing has been saved.
	ErrNoSnapshot = errors.New("no snapshot stored")
	// ErrNoSession is returned when a write arrives before StartSession.
	ErrNoSession = errors.New("no active session")
)

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Session management
	StartSession(s *core.Session) error
	EndSession() error

	// Snapshots are the flat simulation state at a tick. LoadSnapshot returns
	// the most recent one together with its tick.
	SaveSnapshot(tick int, snap core.Snapshot) error
	LoadSnapshot() (core.Snapshot, int, error)

	RecordEvent(e *core.Event) error
}

// Exportable is an optional interface for storage backends that produce
// a file at the end of a session.
type Exportable interface {
	GetExportedFilePath() string
}
