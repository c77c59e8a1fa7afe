package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	lp "github.com/influxdata/line-protocol"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/eagleglass/airsim/internal/sim"
	"github.com/eagleglass/airsim/pkg/core"
)

const (
	BucketMetrics = "sim_metrics"
	BucketEvents  = "sim_events"
)

// DefaultBucketNames are the buckets created on connect.
var DefaultBucketNames = []string{BucketMetrics, BucketEvents}

// ErrDisabled is returned by Connect when influx.enabled is false.
var ErrDisabled = errors.New("influx disabled")

// Manager handles InfluxDB connections and writes.
type Manager struct {
	Client       influxdb2.Client
	Writers      map[string]influxdb2_api.WriteAPI
	BackupWriter *gzip.Writer
	IsValid      bool
	BucketNames  []string
	Logger       zerolog.Logger
	BackupPath   string

	backupFile *os.File
}

// NewManager creates a new InfluxDB manager.
func NewManager(log zerolog.Logger, backupPath string) *Manager {
	return &Manager{
		Writers:     make(map[string]influxdb2_api.WriteAPI),
		IsValid:     false,
		BucketNames: DefaultBucketNames,
		Logger:      log,
		BackupPath:  backupPath,
	}
}

// Connect establishes a connection to InfluxDB.
func (m *Manager) Connect() error {
	if !viper.GetBool("influx.enabled") {
		return ErrDisabled
	}

	m.Client = influxdb2.NewClientWithOptions(
		fmt.Sprintf(
			"%s://%s:%s",
			viper.GetString("influx.protocol"),
			viper.GetString("influx.host"),
			viper.GetString("influx.port"),
		),
		viper.GetString("influx.token"),
		influxdb2.DefaultOptions().
			SetBatchSize(2500).
			SetFlushInterval(1000),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	running, err := m.Client.Ping(ctx)

	if err != nil || !running {
		m.IsValid = false
		// create backup writer
		if m.BackupWriter == nil {
			m.Logger.Info().Str("backupPath", m.BackupPath).
				Msg("Failed to initialize InfluxDB client, writing to backup file")

			file, err := os.OpenFile(m.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				return fmt.Errorf("error creating backup file: %v", err)
			}
			m.backupFile = file
			m.BackupWriter = gzip.NewWriter(file)
		}
	} else {
		m.IsValid = true
	}

	if m.IsValid {
		err = m.setupOrganizationAndBuckets()
		if err != nil {
			return err
		}
		m.CreateWriters()
		m.Logger.Info().Msg("InfluxDB client initialized")
	} else {
		m.Logger.Warn().Msg("InfluxDB client failed to initialize, using backup writer")
	}

	return nil
}

func (m *Manager) setupOrganizationAndBuckets() error {
	ctx := context.Background()
	orgName := viper.GetString("influx.org")

	// ensure org exists
	_, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.Logger.Info().Str("org", orgName).Msg("Organization not found, creating")
		_, err = m.Client.OrganizationsAPI().CreateOrganizationWithName(ctx, orgName)
		if err != nil {
			m.Logger.Error().Err(err).Str("org", orgName).Msg("Error creating organization")
			return err
		}
	}

	// get influxOrg
	influxOrg, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.Logger.Error().Err(err).Str("org", orgName).Msg("Error getting organization")
		return err
	}

	// ensure buckets exist with 90 day retention
	for _, bucket := range m.BucketNames {
		_, err = m.Client.BucketsAPI().FindBucketByName(ctx, bucket)
		if err != nil {
			m.Logger.Info().Str("bucket", bucket).Msg("Bucket not found, creating")

			rule := domain.RetentionRuleTypeExpire
			_, err = m.Client.BucketsAPI().CreateBucketWithName(ctx, influxOrg, bucket, domain.RetentionRule{
				Type:         &rule,
				EverySeconds: 60 * 60 * 24 * 90, // 90 days
			})
			if err != nil {
				m.Logger.Error().Err(err).Str("bucket", bucket).Msg("Error creating bucket")
				return err
			}
		}
	}

	return nil
}

// CreateWriters creates write APIs for all configured buckets.
func (m *Manager) CreateWriters() {
	orgName := viper.GetString("influx.org")
	for _, bucket := range m.BucketNames {
		m.Logger.Trace().Str("bucket", bucket).Msg("Creating InfluxDB writer")
		m.Writers[bucket] = m.Client.WriteAPI(orgName, bucket)

		errorsCh := m.Writers[bucket].Errors()
		go func(bucketName string, errorsCh <-chan error) {
			for writeErr := range errorsCh {
				m.Logger.Error().Err(writeErr).Str("bucket", bucketName).
					Msg("Error sending data to InfluxDB")
			}
		}(bucket, errorsCh)

		m.Logger.Trace().Str("bucket", bucket).Msg("InfluxDB writer created")
	}

	m.Logger.Debug().Msg("InfluxDB writers initialized")
}

// WritePoint writes a point to InfluxDB or backup file.
func (m *Manager) WritePoint(ctx context.Context, bucket string, point *influxdb2_write.Point) error {
	if m.IsValid {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, ok := m.Writers[bucket]; !ok {
			return fmt.Errorf("influxDB bucket '%s' not registered", bucket)
		}
		m.Writers[bucket].WritePoint(point)
	} else {
		if m.BackupWriter == nil {
			return fmt.Errorf("influxDB client not initialized and backup writer not available")
		}

		if _, err := newEncoder(m.BackupWriter).Encode(point); err != nil {
			return fmt.Errorf("error writing to InfluxDB backup file: %s", err)
		}
	}

	return nil
}

// newEncoder writes line protocol the way the client's write service does.
func newEncoder(w io.Writer) *lp.Encoder {
	e := lp.NewEncoder(w)
	e.SetFieldTypeSupport(lp.UintSupport)
	e.FailOnFieldErr(true)
	return e
}

// StatusPoints turns a simulation status into one point for the run and
// one per carrier pool.
func StatusPoints(scenario string, st sim.Status, at time.Time) []*influxdb2_write.Point {
	run := influxdb2.NewPoint("simulation",
		map[string]string{"scenario": scenario},
		map[string]any{
			"tick":      st.Tick,
			"units":     st.Units,
			"spawned":   st.Spawned,
			"departed":  st.Departed,
			"destroyed": st.Destroyed,
			"pending":   st.Pending,
		},
		at,
	)
	for faction, n := range st.Casualties {
		run.AddField("casualties_"+string(faction), n)
	}

	points := []*influxdb2_write.Point{run}
	for _, c := range st.Carriers {
		for t, n := range c.Resources {
			points = append(points, influxdb2.NewPoint("pool",
				map[string]string{"scenario": scenario, "carrier": c.Name, "resource": string(t)},
				map[string]any{"count": n, "tick": st.Tick},
				at,
			))
		}
	}
	return points
}

// EventPoint records one simulation event in the events bucket.
func EventPoint(scenario string, ev core.Event) *influxdb2_write.Point {
	p := influxdb2_write.NewPointWithMeasurement("event").
		AddTag("scenario", scenario).
		AddTag("kind", string(ev.Kind)).
		AddField("tick", ev.Tick).
		AddField("x", ev.Position.X).
		AddField("z", ev.Position.Z).
		SetTime(ev.Time)
	if !ev.Source.IsNil() {
		p.AddField("source", ev.Source.String())
	}
	if ev.Message != "" {
		p.AddField("message", ev.Message)
	}
	for k, v := range ev.Data {
		if n, err := strconv.Atoi(v); err == nil {
			p.AddField(k, n)
			continue
		}
		p.AddField(k, v)
	}
	return p.SortTags()
}

// WritePoints writes every point, stopping at the first error.
func (m *Manager) WritePoints(ctx context.Context, bucket string, points ...*influxdb2_write.Point) error {
	for _, p := range points {
		if err := m.WritePoint(ctx, bucket, p); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes pending writes and closes the client and backup file.
func (m *Manager) Close() error {
	for _, w := range m.Writers {
		w.Flush()
	}
	if m.Client != nil {
		m.Client.Close()
	}
	var errs []error
	if m.BackupWriter != nil {
		errs = append(errs, m.BackupWriter.Close())
		m.BackupWriter = nil
	}
	if m.backupFile != nil {
		errs = append(errs, m.backupFile.Close())
		m.backupFile = nil
	}
	return errors.Join(errs...)
}
