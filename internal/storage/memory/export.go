package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/eagleglass/airsim/internal/geo"
	"github.com/eagleglass/airsim/pkg/core"
)

// RunExport is the root JSON structure
type RunExport struct {
	Session   *core.Session          `json:"session"`
	EndTick   int                    `json:"endTick"`
	Summary   map[core.EventKind]int `json:"summary"`
	Events    []core.Event           `json:"events"`
	Snapshots []SnapshotJSON         `json:"snapshots"`
	Tracks    []TrackJSON            `json:"tracks"`
}

// SnapshotJSON is one saved state.
type SnapshotJSON struct {
	Tick int           `json:"tick"`
	Data core.Snapshot `json:"data"`
}

// TrackJSON is the path of one unit in EPSG:3857, altitude as the third
// coordinate.
type TrackJSON struct {
	Unit        string      `json:"unit"`
	Coordinates [][]float64 `json:"coordinates"`
	Length      float64     `json:"length"`
}

// exportJSON writes the session data to a JSON file, gzipped if configured
func (b *Backend) exportJSON() error {
	export := b.buildExport()

	name := strings.ReplaceAll(b.session.Scenario, " ", "_")
	name = strings.ReplaceAll(name, ":", "_")
	if name == "" {
		name = "run"
	}
	timestamp := b.session.StartTime.Format("20060102_150405")

	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("%s_%s.json.gz", name, timestamp)
	} else {
		filename = fmt.Sprintf("%s_%s.json", name, timestamp)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if b.cfg.CompressOutput {
		if err := writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport() RunExport {
	export := RunExport{
		Session:   b.session,
		Summary:   make(map[core.EventKind]int),
		Events:    b.events,
		Snapshots: make([]SnapshotJSON, 0, len(b.snapshots)),
		Tracks:    []TrackJSON{},
	}
	if export.Events == nil {
		export.Events = []core.Event{}
	}

	for _, e := range b.events {
		export.Summary[e.Kind]++
		export.EndTick = max(export.EndTick, e.Tick)
	}
	for _, s := range b.snapshots {
		export.Snapshots = append(export.Snapshots, SnapshotJSON{Tick: s.Tick, Data: s.Data})
		export.EndTick = max(export.EndTick, s.Tick)
	}

	origin := geo.Origin{Longitude: b.cfg.OriginLongitude, Latitude: b.cfg.OriginLatitude}
	for _, t := range unitTracks(b.events) {
		ls, err := geo.TrackLineString(origin, t.points)
		if err != nil {
			continue
		}
		seq := ls.Coordinates()
		coords := make([][]float64, seq.Length())
		for i := range coords {
			c := seq.Get(i)
			coords[i] = []float64{c.X, c.Y, c.Z}
		}
		export.Tracks = append(export.Tracks, TrackJSON{
			Unit:        t.unit.String(),
			Coordinates: coords,
			Length:      ls.Length(),
		})
	}
	return export
}

type track struct {
	unit   core.EntityID
	points []core.Vec3
}

// unitTracks collects the positions each unit reported about itself, in
// first-seen order, dropping consecutive repeats. Burst and projectile events
// carry the target position and are left out.
func unitTracks(events []core.Event) []track {
	var out []track
	index := make(map[core.EntityID]int)
	for _, e := range events {
		if e.Source.IsNil() || !isUnitEvent(e.Kind) {
			continue
		}
		i, ok := index[e.Source]
		if !ok {
			i = len(out)
			index[e.Source] = i
			out = append(out, track{unit: e.Source})
		}
		pts := out[i].points
		if n := len(pts); n > 0 && pts[n-1] == e.Position {
			continue
		}
		out[i].points = append(pts, e.Position)
	}
	return out
}

func isUnitEvent(k core.EventKind) bool {
	return strings.HasPrefix(string(k), "unit.") || k == core.EventWeaponOutOfAmmo
}

func writeJSON(path string, data RunExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func writeGzipJSON(path string, data RunExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	return encoder.Encode(data)
}
