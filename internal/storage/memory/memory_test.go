package memory

import (
	"testing"
	"time"

	"github.com/eagleglass/airsim/internal/config"
	"github.com/eagleglass/airsim/internal/storage"
	"github.com/eagleglass/airsim/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time interface checks
var (
	_ storage.Backend    = (*Backend)(nil)
	_ storage.Exportable = (*Backend)(nil)
)

func testSession() *core.Session {
	return &core.Session{
		ID:             core.NewEntityID(),
		Scenario:       "Ridge Line",
		StartTime:      time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		TicksPerSecond: 60,
	}
}

func TestWritesRequireSession(t *testing.T) {
	b := New(config.MemoryConfig{})
	require.NoError(t, b.Init())
	defer func() { require.NoError(t, b.Close()) }()

	assert.ErrorIs(t, b.RecordEvent(&core.Event{Kind: core.EventUnitSpawned}), storage.ErrNoSession)
	assert.ErrorIs(t, b.SaveSnapshot(1, core.Snapshot{"a": "1"}), storage.ErrNoSession)
	assert.ErrorIs(t, b.EndSession(), storage.ErrNoSession)
}

func TestLoadSnapshot_Empty(t *testing.T) {
	b := New(config.MemoryConfig{})
	_, _, err := b.LoadSnapshot()
	assert.ErrorIs(t, err, storage.ErrNoSnapshot)
}

func TestLoadSnapshot_ReturnsLatestCopy(t *testing.T) {
	b := New(config.MemoryConfig{})
	require.NoError(t, b.StartSession(testSession()))

	first := core.Snapshot{"tick": "10"}
	require.NoError(t, b.SaveSnapshot(10, first))
	require.NoError(t, b.SaveSnapshot(20, core.Snapshot{"tick": "20"}))

	// later mutation of the caller's map must not leak in
	first["tick"] = "changed"

	snap, tick, err := b.LoadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, 20, tick)
	assert.Equal(t, "20", snap["tick"])

	snap["tick"] = "mutated"
	again, _, err := b.LoadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, "20", again["tick"])
	assert.Equal(t, 2, b.SnapshotCount())
}

func TestRecordEvent_KeepsOrder(t *testing.T) {
	b := New(config.MemoryConfig{})
	require.NoError(t, b.StartSession(testSession()))

	for i, k := range []core.EventKind{core.EventUnitSpawned, core.EventUnitImpacted, core.EventUnitDeparted} {
		require.NoError(t, b.RecordEvent(&core.Event{Tick: i, Kind: k}))
	}

	events := b.Events()
	require.Len(t, events, 3)
	assert.Equal(t, core.EventUnitSpawned, events[0].Kind)
	assert.Equal(t, core.EventUnitDeparted, events[2].Kind)
}

func TestStartSession_ResetsState(t *testing.T) {
	b := New(config.MemoryConfig{})
	require.NoError(t, b.StartSession(testSession()))
	require.NoError(t, b.RecordEvent(&core.Event{Kind: core.EventUnitSpawned}))
	require.NoError(t, b.SaveSnapshot(1, core.Snapshot{}))

	require.NoError(t, b.StartSession(testSession()))
	assert.Empty(t, b.Events())
	assert.Zero(t, b.SnapshotCount())
	assert.Empty(t, b.GetExportedFilePath())
}
