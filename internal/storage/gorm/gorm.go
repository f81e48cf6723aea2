// Package gormstorage stores runs in a relational database through GORM.
// Each saved track is written synchronously in its own transaction.
package gormstorage

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jumprun/formationsim/internal/database"
	"github.com/jumprun/formationsim/internal/geo"
	"github.com/jumprun/formationsim/internal/model"
	"github.com/jumprun/formationsim/internal/model/convert"
	"github.com/jumprun/formationsim/pkg/core"
)

// sampleBatchSize is the number of track samples per INSERT.
const sampleBatchSize = 2000

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB     *gorm.DB
	Logger zerolog.Logger
}

// Backend implements storage.Backend using GORM.
type Backend struct {
	db  *gorm.DB
	log zerolog.Logger

	mu     sync.Mutex
	run    *model.Run
	georef *geo.Georef
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	return &Backend{
		db:  deps.DB,
		log: deps.Logger,
	}
}

// DB returns the underlying database handle.
func (b *Backend) DB() *gorm.DB {
	return b.db
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if b.db == nil {
		return errors.New("database not set")
	}
	if err := database.Setup(b.db); err != nil {
		return err
	}
	b.log.Debug().Str("dialect", b.db.Dialector.Name()).Msg("GORM backend initialized")
	return nil
}

// Close closes the database connection.
func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// StartRun inserts the run with its wind layers.
func (b *Backend) StartRun(run *core.Run) error {
	if run == nil {
		return errors.New("run is nil")
	}
	g, err := geo.ForDropzone(run.Dropzone)
	if err != nil {
		return fmt.Errorf("dropzone %q: %w", run.Dropzone.Name, err)
	}

	row := convert.CoreToRun(*run, g)
	if err := b.db.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	b.mu.Lock()
	b.run = &row
	b.georef = g
	b.mu.Unlock()

	b.log.Info().Str("run", row.RunUUID).Uint("id", row.ID).Msg("Run stored")
	return nil
}

// SaveTrack inserts the entity and all of its samples.
func (b *Backend) SaveTrack(t *core.EntityTrack) error {
	b.mu.Lock()
	run, g := b.run, b.georef
	b.mu.Unlock()
	if run == nil {
		return core.ErrNoRun
	}

	entity := convert.CoreToEntity(*t, g)
	entity.RunID = run.ID

	start := time.Now()
	err := b.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&entity).Error; err != nil {
			return fmt.Errorf("failed to create entity: %w", err)
		}
		samples := convert.CoreToTrackSamples(entity.ID, t.Samples)
		if len(samples) == 0 {
			return nil
		}
		if err := tx.Omit(clause.Associations).CreateInBatches(samples, sampleBatchSize).Error; err != nil {
			return fmt.Errorf("failed to create samples: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("entity %s: %w", t.EntityID, err)
	}

	b.log.Debug().
		Str("entity", entity.EntityUUID).
		Int("samples", entity.SampleCount).
		Dur("duration", time.Since(start)).
		Msg("Track stored")
	return nil
}

// EndRun stamps the run's end time.
func (b *Backend) EndRun() error {
	b.mu.Lock()
	run := b.run
	b.run, b.georef = nil, nil
	b.mu.Unlock()
	if run == nil {
		return core.ErrNoRun
	}

	now := time.Now()
	if err := b.db.Model(run).Update("end_time", now).Error; err != nil {
		return fmt.Errorf("failed to end run: %w", err)
	}
	return nil
}

// LoadSamples reads back the stored track of an entity in time order.
func (b *Backend) LoadSamples(entityUUID string) ([]core.Sample, error) {
	var entity model.Entity
	if err := b.db.Where("entity_uuid = ?", entityUUID).First(&entity).Error; err != nil {
		return nil, err
	}

	var rows []model.TrackSample
	if err := b.db.Where("entity_id = ?", entity.ID).Order("time").Find(&rows).Error; err != nil {
		return nil, err
	}

	samples := make([]core.Sample, len(rows))
	for i, r := range rows {
		samples[i] = convert.TrackSampleToCore(r)
	}
	return samples, nil
}
