// Package postgres implements the storage.Backend interface on PostgreSQL
// through the GORM backend.
package postgres

import (
	"fmt"
	"log/slog"

	"github.com/eagleglass/airsim/internal/database"
	gormstorage "github.com/eagleglass/airsim/internal/storage/gorm"
	"gorm.io/gorm"
)

// Dependencies holds all dependencies for the PostgreSQL storage backend.
type Dependencies struct {
	// DB is optional; when nil Init connects using the db.* config keys.
	DB     *gorm.DB
	Logger *slog.Logger
	// Connect opens the connection when DB is nil.
	Connect func() (*gorm.DB, error)
}

// Backend embeds the GORM backend and owns the Postgres connection.
type Backend struct {
	*gormstorage.Backend
	connect func() (*gorm.DB, error)
}

// New creates a new PostgreSQL storage backend.
func New(deps Dependencies) *Backend {
	connect := deps.Connect
	if connect == nil {
		connect = database.GetPostgresDBStandalone
	}
	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{
			DB:     deps.DB,
			Logger: deps.Logger,
		}),
		connect: connect,
	}
}

// Init connects if no DB was injected, then migrates and starts the writer.
func (b *Backend) Init() error {
	if b.DB() == nil {
		db, err := b.connect()
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to access sql interface: %w", err)
		}
		if err = sqlDB.Ping(); err != nil {
			return fmt.Errorf("failed to validate connection: %w", err)
		}
		sqlDB.SetMaxOpenConns(10)
		b.SetDB(db)
	}
	return b.Backend.Init()
}
