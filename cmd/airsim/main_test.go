package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/eagleglass/airsim/internal/config"
	"github.com/eagleglass/airsim/internal/scenario"
	"github.com/eagleglass/airsim/internal/sim"
	"github.com/eagleglass/airsim/internal/storage/memory"
	sqlitestorage "github.com/eagleglass/airsim/internal/storage/sqlite"
	wsstorage "github.com/eagleglass/airsim/internal/storage/websocket"
	"github.com/eagleglass/airsim/pkg/core"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetGlobals(t *testing.T) {
	t.Helper()
	viper.Reset()
	config.LoadDefaults()
	Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	dbManager = nil
	t.Cleanup(func() {
		viper.Reset()
		dbManager = nil
	})
}

// writeConfig writes airsim.cfg.json into a fresh directory and returns
// the directory.
func writeConfig(t *testing.T, cfg map[string]any) string {
	t.Helper()
	dir := t.TempDir()
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), data, 0644))
	return dir
}

func TestRunCLI_Version(t *testing.T) {
	var out, errOut bytes.Buffer
	code := runCLI([]string{"version"}, &out, &errOut)

	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), CurrentVersion)
	assert.Contains(t, out.String(), BuildDate)
}

func TestRunCLI_Help(t *testing.T) {
	var out, errOut bytes.Buffer
	code := runCLI([]string{"help"}, &out, &errOut)

	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "--scenario")
	assert.Contains(t, out.String(), "--storage")
}

func TestRunCLI_NoArgs(t *testing.T) {
	var out, errOut bytes.Buffer
	code := runCLI(nil, &out, &errOut)

	assert.Equal(t, 2, code)
	assert.Contains(t, errOut.String(), "Usage:")
}

func TestRunCLI_UnknownCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	code := runCLI([]string{"fly"}, &out, &errOut)

	assert.Equal(t, 2, code)
	assert.Contains(t, errOut.String(), `unknown command "fly"`)
}

func TestRunCLI_BadFlag(t *testing.T) {
	var out, errOut bytes.Buffer
	code := runCLI([]string{"run", "--no-such-flag"}, &out, &errOut)

	assert.Equal(t, 2, code)
}

func TestCreateStorageBackend(t *testing.T) {
	resetGlobals(t)

	tests := []struct {
		name     string
		typ      string
		wantType any
	}{
		{"default", "", &memory.Backend{}},
		{"memory", "memory", &memory.Backend{}},
		{"sqlite", "sqlite", &sqlitestorage.Backend{}},
		{"websocket", "websocket", &wsstorage.Backend{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.GetStorageConfig()
			cfg.Type = tt.typ
			cfg.SQLite.OutputDir = t.TempDir()

			backend, err := createStorageBackend(cfg)
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, backend)
			assert.NoError(t, backend.Close())
		})
	}
}

func TestCreateStorageBackend_Unknown(t *testing.T) {
	resetGlobals(t)

	cfg := config.GetStorageConfig()
	cfg.Type = "tape"
	_, err := createStorageBackend(cfg)
	assert.ErrorContains(t, err, `unknown storage type "tape"`)
}

func TestScenarioDefaults_FromConfig(t *testing.T) {
	resetGlobals(t)
	viper.Set("rope.extendSpeed", 0.25)
	viper.Set("hover.altitude", 9.0)
	viper.Set("ammo.default", 120)

	d := scenarioDefaults(config.GetSimConfig())
	assert.Equal(t, 0.25, d.Rope.ExtendSpeed)
	assert.Equal(t, 9.0, d.HoverAltitude)
	assert.Equal(t, 120, d.Ammo)
	assert.Equal(t, 60, d.Rope.TicksPerSecond)

	c := simConfig(config.GetSimConfig())
	assert.Equal(t, 15, c.ScanInterval)
	assert.Equal(t, 60, c.HaulInterval)
}

func runArgs(t *testing.T, cfgDir string, extra ...string) (sim.Status, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	args := append([]string{"run", "--config", cfgDir, "--scenario", "testdata/ridge.yaml"}, extra...)
	code := runCLI(args, &out, &errOut)
	require.Equal(t, 0, code, "stderr: %s", errOut.String())

	var st sim.Status
	require.NoError(t, json.Unmarshal(out.Bytes(), &st))
	return st, errOut.String()
}

func TestRun_MemoryExport(t *testing.T) {
	resetGlobals(t)
	runsDir := t.TempDir()
	statusFile := filepath.Join(t.TempDir(), "status.json")
	cfgDir := writeConfig(t, map[string]any{
		"logsDir": t.TempDir(),
		"storage": map[string]any{
			"memory": map[string]any{
				"outputDir":      runsDir,
				"compressOutput": false,
			},
			"snapshotInterval": 30,
		},
	})

	st, _ := runArgs(t, cfgDir, "--ticks", "120", "--storage", "memory", "--status-file", statusFile)

	assert.Equal(t, 120, st.Tick)
	require.Len(t, st.Carriers, 1)
	assert.Equal(t, "outpost", st.Carriers[0].Name)

	exports, err := filepath.Glob(filepath.Join(runsDir, "ridge_*.json"))
	require.NoError(t, err)
	require.Len(t, exports, 1)

	data, err := os.ReadFile(exports[0])
	require.NoError(t, err)
	var export memory.RunExport
	require.NoError(t, json.Unmarshal(data, &export))
	assert.Equal(t, "ridge", export.Session.Scenario)
	assert.Equal(t, 120, export.EndTick)
	assert.NotEmpty(t, export.Events)
	// Every 30 ticks plus the final one.
	assert.Len(t, export.Snapshots, 5)

	statusData, err := os.ReadFile(statusFile)
	require.NoError(t, err)
	var fileStatus sim.Status
	require.NoError(t, json.Unmarshal(statusData, &fileStatus))
	assert.Equal(t, 120, fileStatus.Tick)
}

func TestRun_SQLiteDump(t *testing.T) {
	resetGlobals(t)
	dbDir := t.TempDir()
	cfgDir := writeConfig(t, map[string]any{
		"logsDir": t.TempDir(),
		"storage": map[string]any{
			"sqlite": map[string]any{
				"outputDir":    dbDir,
				"dumpInterval": "1h",
			},
		},
	})

	st, _ := runArgs(t, cfgDir, "--ticks", "60", "--storage", "sqlite")
	assert.Equal(t, 60, st.Tick)

	dumps, err := filepath.Glob(filepath.Join(dbDir, "airsim_*.db"))
	require.NoError(t, err)
	require.Len(t, dumps, 1)
	info, err := os.Stat(dumps[0])
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRun_UploadsExport(t *testing.T) {
	resetGlobals(t)

	var (
		mu     sync.Mutex
		fields = map[string]string{}
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/healthcheck":
			w.WriteHeader(http.StatusOK)
		case "/api/v1/runs":
			if err := r.ParseMultipartForm(10 << 20); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			mu.Lock()
			for k, v := range r.MultipartForm.Value {
				fields[k] = v[0]
			}
			mu.Unlock()
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	cfgDir := writeConfig(t, map[string]any{
		"logsDir": t.TempDir(),
		"storage": map[string]any{
			"memory": map[string]any{"outputDir": t.TempDir()},
		},
		"upload": map[string]any{
			"enabled":   true,
			"serverUrl": server.URL,
			"apiKey":    "s3cret",
		},
	})

	runArgs(t, cfgDir, "--ticks", "30")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "s3cret", fields["secret"])
	assert.Equal(t, "ridge", fields["scenario"])
	assert.Equal(t, "30", fields["ticks"])
	assert.Equal(t, "0.500000", fields["duration"])
}

func TestRun_MissingScenario(t *testing.T) {
	resetGlobals(t)
	cfgDir := writeConfig(t, map[string]any{"logsDir": t.TempDir()})

	var out, errOut bytes.Buffer
	code := runCLI([]string{"run", "--config", cfgDir, "--scenario", "testdata/missing.yaml"}, &out, &errOut)

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "failed to read scenario file")
}

func TestResume(t *testing.T) {
	resetGlobals(t)
	sc, err := scenario.Load("testdata/ridge.yaml")
	require.NoError(t, err)
	defaults := scenarioDefaults(config.GetSimConfig())

	backend := memory.New(config.GetStorageConfig().Memory)
	first, err := sc.Build(simConfig(config.GetSimConfig()), defaults, nil, Logger)
	require.NoError(t, err)

	// Nothing stored yet: the run starts from tick 0.
	resume(first, backend)
	assert.Equal(t, 0, first.Tick())

	require.NoError(t, first.Run(context.Background(), 25))
	require.NoError(t, backend.StartSession(&core.Session{ID: core.NewEntityID(), Scenario: sc.Name}))
	require.NoError(t, backend.SaveSnapshot(first.Tick(), first.Save()))

	second, err := sc.Build(simConfig(config.GetSimConfig()), defaults, nil, Logger)
	require.NoError(t, err)
	resume(second, backend)
	assert.Equal(t, 25, second.Tick())
	assert.Equal(t, first.Status().Carriers, second.Status().Carriers)
}

func TestResume_Unsupported(t *testing.T) {
	resetGlobals(t)
	sc, err := scenario.Load("testdata/ridge.yaml")
	require.NoError(t, err)
	s, err := sc.Build(simConfig(config.GetSimConfig()), scenarioDefaults(config.GetSimConfig()), nil, Logger)
	require.NoError(t, err)

	resume(s, wsstorage.New(wsstorage.Config{URL: "ws://127.0.0.1:1/ws"}, Logger))
	assert.Equal(t, 0, s.Tick())
}
