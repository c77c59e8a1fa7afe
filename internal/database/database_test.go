package database

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/eagleglass/airsim/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSqliteDBStandalone_InMemoryIsPrivate(t *testing.T) {
	a, err := GetSqliteDBStandalone("")
	require.NoError(t, err)
	b, err := GetSqliteDBStandalone("")
	require.NoError(t, err)

	require.NoError(t, Migrate(a))
	require.NoError(t, a.Create(&model.Session{ID: "s1", StartTime: time.Now()}).Error)

	assert.True(t, a.Migrator().HasTable(&model.Session{}))
	assert.False(t, b.Migrator().HasTable(&model.Session{}))
}

func TestDumpMemoryDBToDisk(t *testing.T) {
	db, err := GetSqliteDBStandalone("")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	require.NoError(t, db.Create(&model.Session{ID: "s1", Scenario: "ridge", StartTime: time.Now()}).Error)

	path := filepath.Join(t.TempDir(), "dump.db")
	require.NoError(t, DumpMemoryDBToDisk(db, path))
	// a second dump replaces the first
	require.NoError(t, DumpMemoryDBToDisk(db, path))

	_, err = os.Stat(path)
	require.NoError(t, err)

	disk, err := GetSqliteDBStandalone(path)
	require.NoError(t, err)
	var got model.Session
	require.NoError(t, disk.First(&got, "id = ?", "s1").Error)
	assert.Equal(t, "ridge", got.Scenario)
}

func TestDumpMemoryDBToDisk_NoPath(t *testing.T) {
	db, err := GetSqliteDBStandalone("")
	require.NoError(t, err)
	assert.ErrorIs(t, DumpMemoryDBToDisk(db, ""), ErrNoDumpPath)
}

func TestManager_SetupRequiresConnection(t *testing.T) {
	m := NewManager(zerolog.Nop(), "")
	assert.Error(t, m.Setup())
}

func TestManager_SqliteFallback(t *testing.T) {
	m := NewManager(zerolog.Nop(), filepath.Join(t.TempDir(), "fallback.db"))
	require.NoError(t, m.useSqlite())
	require.NoError(t, m.Setup())
	assert.True(t, m.IsValid)
	assert.True(t, m.ShouldSaveLocal)

	require.NoError(t, m.DumpMemoryToDisk())
	_, err := os.Stat(m.SqliteFilePath)
	assert.NoError(t, err)
}
