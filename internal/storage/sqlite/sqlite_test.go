package sqlitestorage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jumprun/formationsim/internal/config"
	"github.com/jumprun/formationsim/internal/database"
	"github.com/jumprun/formationsim/internal/model"
	"github.com/jumprun/formationsim/pkg/core"
)

func testRun() *core.Run {
	return &core.Run{
		ID:        uuid.New(),
		Name:      "sqlite load",
		StartTime: time.Now(),
		Duration:  2,
		Step:      1,
	}
}

func track() *core.EntityTrack {
	return &core.EntityTrack{
		EntityID:  uuid.New(),
		Kind:      core.KindAircraft,
		Name:      "aircraft",
		SlotIndex: -1,
		Samples: []core.Sample{
			{Time: 0, Position: mgl64.Vec3{0, 4000, 0}, Orientation: mgl64.QuatIdent()},
			{Time: 1, Position: mgl64.Vec3{46, 4000, 0}, Orientation: mgl64.QuatIdent()},
		},
	}
}

func TestEndRun_DumpsToDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	var logs bytes.Buffer
	b, err := New(config.SQLiteConfig{Path: path}, zerolog.New(&logs).Level(zerolog.DebugLevel))
	require.NoError(t, err)
	require.NoError(t, b.Init())

	run := testRun()
	require.NoError(t, b.StartRun(run))
	require.NoError(t, b.SaveTrack(track()))
	require.NoError(t, b.EndRun())
	require.NoError(t, b.Close())
	assert.Contains(t, logs.String(), "Dumped to disk")

	disk, err := database.GetSqliteDB(path)
	require.NoError(t, err)
	var stored model.Run
	require.NoError(t, disk.Where("run_uuid = ?", run.ID.String()).First(&stored).Error)
	assert.Equal(t, "sqlite load", stored.Name)

	var count int64
	disk.Model(&model.TrackSample{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestDump_NoPath(t *testing.T) {
	b, err := New(config.SQLiteConfig{}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, b.Init())
	assert.NoError(t, b.Dump())
	assert.NoError(t, b.Close())
}

func TestDumpLoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "periodic.db")
	b, err := New(config.SQLiteConfig{Path: path, DumpInterval: 20 * time.Millisecond}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, b.Init())
	defer b.Close()

	require.NoError(t, b.StartRun(testRun()))
	assert.Eventually(t, func() bool {
		if _, err := os.Stat(path); err != nil {
			return false
		}
		disk, err := database.GetSqliteDB(path)
		if err != nil {
			return false
		}
		defer func() {
			if sqlDB, err := disk.DB(); err == nil {
				sqlDB.Close()
			}
		}()
		var count int64
		if err := disk.Model(&model.Run{}).Count(&count).Error; err != nil {
			return false
		}
		return count == 1
	}, 2*time.Second, 20*time.Millisecond)
}
