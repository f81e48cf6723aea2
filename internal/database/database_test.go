package database

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jumprun/formationsim/internal/logging"
	"github.com/jumprun/formationsim/internal/model"
)

func TestManager_ConnectSqliteInMemory(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager(logging.NewComponentLogger(&buf, "debug", "database"))

	require.NoError(t, m.Connect("sqlite", ""))
	assert.True(t, m.IsValid)
	assert.Equal(t, "sqlite", m.DB.Dialector.Name())
	assert.Contains(t, buf.String(), "Connected to database")

	require.NoError(t, m.Setup())
	for _, mdl := range model.DatabaseModels {
		assert.True(t, m.DB.Migrator().HasTable(mdl), "%T", mdl)
	}

	var info model.AppInfo
	require.NoError(t, m.DB.First(&info).Error)
	assert.Equal(t, uint(SchemaVersion), info.SchemaVersion)

	// setup is idempotent
	require.NoError(t, m.Setup())
	var count int64
	m.DB.Model(&model.AppInfo{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestManager_UnknownKind(t *testing.T) {
	m := NewManager(logging.NewComponentLogger(nil, "info", "database"))
	assert.Error(t, m.Connect("oracle", ""))
	assert.False(t, m.IsValid)
}

func TestGetSqliteDB_InMemoryDatabasesAreSeparate(t *testing.T) {
	a, err := GetSqliteDB("")
	require.NoError(t, err)
	b, err := GetSqliteDB("")
	require.NoError(t, err)

	require.NoError(t, Setup(a))
	assert.True(t, a.Migrator().HasTable(&model.Run{}))
	assert.False(t, b.Migrator().HasTable(&model.Run{}))
}

func TestDumpMemoryDBToDisk(t *testing.T) {
	db, err := GetSqliteDB("")
	require.NoError(t, err)
	require.NoError(t, Setup(db))
	require.NoError(t, db.Create(&model.Run{RunUUID: "abc", Name: "dump"}).Error)

	path := filepath.Join(t.TempDir(), "runs.db")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))
	require.NoError(t, DumpMemoryDBToDisk(db, path))

	disk, err := GetSqliteDB(path)
	require.NoError(t, err)
	var run model.Run
	require.NoError(t, disk.Where("run_uuid = ?", "abc").First(&run).Error)
	assert.Equal(t, "dump", run.Name)

	assert.Error(t, DumpMemoryDBToDisk(db, ""))
}
