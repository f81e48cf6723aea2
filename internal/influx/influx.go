// Package influx writes run summaries to InfluxDB, or to a gzipped line
// protocol backup file when the server can't be reached.
package influx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"

	"github.com/jumprun/formationsim/internal/config"
	"github.com/jumprun/formationsim/pkg/core"
)

// Measurements written per run.
const (
	MeasurementRun    = "run"
	MeasurementJumper = "jumper_summary"
)

// Manager handles InfluxDB connections and writes.
type Manager struct {
	Client       influxdb2.Client
	Writers      map[string]influxdb2_api.WriteAPI
	BackupWriter *gzip.Writer
	IsValid      bool
	BucketNames  []string
	Logger       zerolog.Logger
	BackupPath   string

	cfg        config.InfluxConfig
	backupFile *os.File
}

// NewManager creates a new InfluxDB manager.
func NewManager(cfg config.InfluxConfig, log zerolog.Logger, backupPath string) *Manager {
	return &Manager{
		Writers:     make(map[string]influxdb2_api.WriteAPI),
		IsValid:     false,
		BucketNames: []string{cfg.Bucket},
		Logger:      log,
		BackupPath:  backupPath,
		cfg:         cfg,
	}
}

// Connect establishes a connection to InfluxDB. When the server does not
// answer, points go to the backup file instead.
func (m *Manager) Connect(ctx context.Context) error {
	if !m.cfg.Enabled {
		return errors.New("influx.enabled is false")
	}

	m.Client = influxdb2.NewClientWithOptions(
		m.cfg.URL(),
		m.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(2500).
			SetFlushInterval(1000),
	)

	// validate client connection health
	running, err := m.Client.Ping(ctx)
	m.IsValid = err == nil && running

	if !m.IsValid {
		m.Logger.Warn().Err(err).Str("backupPath", m.BackupPath).
			Msg("InfluxDB client failed to initialize, using backup writer")
		return m.openBackup()
	}

	if err := m.setupOrganizationAndBuckets(ctx); err != nil {
		return err
	}
	m.CreateWriters()
	m.Logger.Info().Str("url", m.cfg.URL()).Msg("InfluxDB client initialized")
	return nil
}

func (m *Manager) openBackup() error {
	if m.BackupWriter != nil {
		return nil
	}
	file, err := os.OpenFile(m.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}
	m.backupFile = file
	m.BackupWriter = gzip.NewWriter(file)
	return nil
}

func (m *Manager) setupOrganizationAndBuckets(ctx context.Context) error {
	orgName := m.cfg.Org

	// ensure org exists
	influxOrg, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.Logger.Info().Str("org", orgName).Msg("Organization not found, creating")
		influxOrg, err = m.Client.OrganizationsAPI().CreateOrganizationWithName(ctx, orgName)
		if err != nil {
			m.Logger.Error().Err(err).Str("org", orgName).Msg("Error creating organization")
			return err
		}
	}

	// ensure buckets exist with 90 day retention
	for _, bucket := range m.BucketNames {
		if _, err = m.Client.BucketsAPI().FindBucketByName(ctx, bucket); err == nil {
			continue
		}
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

	return nil
}

// CreateWriters creates write APIs for all configured buckets.
func (m *Manager) CreateWriters() {
	for _, bucket := range m.BucketNames {
		m.Writers[bucket] = m.Client.WriteAPI(m.cfg.Org, bucket)

		errorsCh := m.Writers[bucket].Errors()
		go func(bucketName string, errorsCh <-chan error) {
			for writeErr := range errorsCh {
				m.Logger.Error().Err(writeErr).Str("bucket", bucketName).
					Msg("Error sending data to InfluxDB")
			}
		}(bucket, errorsCh)
	}

	m.Logger.Debug().Strs("buckets", m.BucketNames).Msg("InfluxDB writers initialized")
}

// WritePoint writes a point to InfluxDB or backup file.
func (m *Manager) WritePoint(bucket string, point *influxdb2_write.Point) error {
	if m.IsValid {
		w, ok := m.Writers[bucket]
		if !ok {
			return fmt.Errorf("influxDB bucket '%s' not registered", bucket)
		}
		w.WritePoint(point)
		return nil
	}

	if m.BackupWriter == nil {
		return fmt.Errorf("influxDB client not initialized and backup writer not available")
	}
	lineProtocol := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
	if _, err := m.BackupWriter.Write([]byte(lineProtocol)); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
	}
	return nil
}

// WriteRun writes the run point and one point per jumper to the
// configured bucket.
func (m *Manager) WriteRun(run *core.Run, tracks []core.EntityTrack, elapsed time.Duration) error {
	var errs []error
	for _, p := range RunPoints(run, tracks, elapsed) {
		if err := m.WritePoint(m.cfg.Bucket, p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close flushes pending writes and releases the client or backup file.
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

// RunPoints turns a finished run into points stamped with the run's start
// time. Transitions that never happened are left out of the fields.
func RunPoints(run *core.Run, tracks []core.EntityTrack, elapsed time.Duration) []*influxdb2_write.Point {
	runID := run.ID.String()
	points := make([]*influxdb2_write.Point, 0, len(tracks)+1)

	jumpers, landed := 0, 0
	for _, t := range tracks {
		if t.Kind != core.KindJumper || t.Summary == nil {
			continue
		}
		jumpers++
		s := t.Summary
		if s.Landed() {
			landed++
		}

		p := influxdb2_write.NewPointWithMeasurement(MeasurementJumper).
			AddTag("run", runID).
			AddTag("dropzone", run.Dropzone.Name).
			AddTag("name", t.Name).
			AddTag("style", string(t.FlyingStyle)).
			AddField("freefall", s.FreefallTime()).
			AddField("maxVerticalSpeed", s.MaxVerticalSpeed).
			SetTime(run.StartTime)
		if t.FormationID != "" {
			p.AddTag("formation", t.FormationID)
		}
		addTime(p, "exit", s.ExitTime)
		addTime(p, "separation", s.SeparationTime)
		addTime(p, "tracking", s.TrackingTime)
		addTime(p, "deploy", s.DeployTime)
		addTime(p, "landing", s.LandingTime)
		if s.Landed() {
			p.AddField("landingX", s.LandingPosition.X())
			p.AddField("landingZ", s.LandingPosition.Z())
		}
		points = append(points, p)
	}

	points = append(points, influxdb2_write.NewPointWithMeasurement(MeasurementRun).
		AddTag("run", runID).
		AddTag("dropzone", run.Dropzone.Name).
		AddField("jumpers", jumpers).
		AddField("landed", landed).
		AddField("duration", run.Duration).
		AddField("step", run.Step).
		AddField("windLayers", len(run.WindLayers)).
		AddField("elapsedMs", elapsed.Milliseconds()).
		SetTime(run.StartTime))
	return points
}

func addTime(p *influxdb2_write.Point, name string, t float64) {
	if t >= 0 {
		p.AddField(name, t)
	}
}
