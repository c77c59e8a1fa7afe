package main

import (
	"fmt"
	"path/filepath"

	"github.com/eagleglass/airsim/internal/config"
	"github.com/eagleglass/airsim/internal/database"
	"github.com/eagleglass/airsim/internal/storage"
	"github.com/eagleglass/airsim/internal/storage/memory"
	pgstorage "github.com/eagleglass/airsim/internal/storage/postgres"
	sqlitestorage "github.com/eagleglass/airsim/internal/storage/sqlite"
	wsstorage "github.com/eagleglass/airsim/internal/storage/websocket"

	"gorm.io/gorm"
)

// dbManager is set when the postgres backend is selected. It falls back to
// an in-memory SQLite database that is dumped to disk at shutdown.
var dbManager *database.Manager

func createStorageBackend(storageCfg config.StorageConfig) (storage.Backend, error) {
	switch storageCfg.Type {
	case "postgres":
		dbManager = database.NewManager(ZLogger, sqliteDumpPath(storageCfg.SQLite.OutputDir))
		if err := dbManager.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := dbManager.Setup(); err != nil {
			return nil, fmt.Errorf("failed to set up database: %w", err)
		}
		if dbManager.ShouldSaveLocal {
			Logger.Warn("Postgres unreachable, recording to local SQLite", "dumpPath", dbManager.SqliteFilePath)
		}
		Logger.Info("Postgres storage backend initialized")
		db := dbManager.DB
		return pgstorage.New(pgstorage.Dependencies{
			DB:      db,
			Logger:  Logger,
			Connect: func() (*gorm.DB, error) { return db, nil },
		}), nil

	case "sqlite":
		backend, err := sqlitestorage.New(sqlitestorage.Config{
			DumpInterval: storageCfg.SQLite.DumpInterval,
			DumpPath:     sqliteDumpPath(storageCfg.SQLite.OutputDir),
		}, Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		Logger.Info("SQLite storage backend initialized")
		return backend, nil

	case "websocket":
		Logger.Info("WebSocket storage backend initialized", "url", storageCfg.WebSocket.URL)
		return wsstorage.New(wsstorage.Config{
			URL:    storageCfg.WebSocket.URL,
			Secret: storageCfg.WebSocket.Secret,
		}, Logger), nil

	case "memory", "":
		Logger.Info("Memory storage backend initialized", "outputDir", storageCfg.Memory.OutputDir)
		return memory.New(storageCfg.Memory), nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", storageCfg.Type)
	}
}

func sqliteDumpPath(outputDir string) string {
	return filepath.Join(outputDir, fmt.Sprintf("airsim_%s.db", SessionStartTime.Format("20060102_150405")))
}
