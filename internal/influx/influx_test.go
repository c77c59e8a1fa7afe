package influx

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eagleglass/airsim/internal/sim"
	"github.com/eagleglass/airsim/pkg/core"
)

func line(t *testing.T, p *influxdb2_write.Point) string {
	t.Helper()
	var sb strings.Builder
	_, err := newEncoder(&sb).Encode(p)
	require.NoError(t, err)
	return sb.String()
}

func TestStatusPoints(t *testing.T) {
	at := time.Unix(1700000000, 0)
	st := sim.Status{
		Tick:       120,
		Units:      2,
		Spawned:    3,
		Departed:   1,
		Casualties: map[core.Faction]int{"pirates": 4},
		Carriers: []sim.CarrierStatus{{
			Name:      "outpost",
			Resources: map[core.ResourceType]int{"fuel": 40, "steel": 10},
		}},
	}

	points := StatusPoints("ridge", st, at)
	require.Len(t, points, 3)

	run := line(t, points[0])
	assert.Contains(t, run, "simulation,scenario=ridge ")
	assert.Contains(t, run, "tick=120i")
	assert.Contains(t, run, "spawned=3i")
	assert.Contains(t, run, "casualties_pirates=4i")
	assert.Contains(t, run, "1700000000000000000")

	pools := line(t, points[1]) + line(t, points[2])
	assert.Contains(t, pools, "carrier=outpost")
	assert.Contains(t, pools, "resource=fuel")
	assert.Contains(t, pools, "count=40i")
	assert.Contains(t, pools, "count=10i")
}

func TestEventPoint(t *testing.T) {
	ev := core.Event{
		Tick:     7,
		Time:     time.Unix(1700000000, 0),
		Kind:     core.EventResourceLoaded,
		Source:   core.NewEntityID(),
		Position: core.Vec3{X: 5, Z: 6},
		Message:  "fuel",
		Data:     map[string]string{"count": "25", "note": "depot"},
	}
	l := line(t, EventPoint("ridge", ev))

	assert.Contains(t, l, "event,kind=resource.loaded,scenario=ridge ")
	assert.Contains(t, l, "tick=7i")
	assert.Contains(t, l, "count=25i")
	assert.Contains(t, l, `note="depot"`)
	assert.Contains(t, l, `message="fuel"`)
	assert.Contains(t, l, ev.Source.String())
}

func TestWritePoint_Backup(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager(zerolog.Nop(), "")
	m.BackupWriter = gzip.NewWriter(&buf)

	p := influxdb2_write.NewPointWithMeasurement("simulation").AddField("tick", 1).SetTime(time.Unix(1, 0))
	require.NoError(t, m.WritePoints(context.Background(), BucketMetrics, p, p))
	require.NoError(t, m.Close())

	r, err := gzip.NewReader(&buf)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "simulation tick=1i 1000000000\nsimulation tick=1i 1000000000\n", string(data))
}

func TestWritePoint_BackupKeepsTagsSorted(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager(zerolog.Nop(), "")
	m.BackupWriter = gzip.NewWriter(&buf)

	ev := core.Event{Tick: 3, Time: time.Unix(2, 0), Kind: core.EventResourceLoaded}
	require.NoError(t, m.WritePoint(context.Background(), BucketEvents, EventPoint("ridge", ev)))
	require.NoError(t, m.Close())

	r, err := gzip.NewReader(&buf)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "event,kind=resource.loaded,scenario=ridge "), lines[0])
	assert.True(t, strings.HasSuffix(lines[0], " 2000000000"), lines[0])
}

func TestWritePoint_NoSink(t *testing.T) {
	m := NewManager(zerolog.Nop(), "")
	err := m.WritePoint(context.Background(), BucketMetrics, influxdb2_write.NewPointWithMeasurement("x").AddField("v", 1))
	assert.Error(t, err)
}

func TestConnect_Disabled(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("influx.enabled", false)

	m := NewManager(zerolog.Nop(), "")
	assert.ErrorIs(t, m.Connect(), ErrDisabled)
}
