package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jumprun/formationsim/internal/config"
	"github.com/jumprun/formationsim/internal/storage"
	gormstorage "github.com/jumprun/formationsim/internal/storage/gorm"
	"github.com/jumprun/formationsim/internal/storage/memory"
	sqlitestorage "github.com/jumprun/formationsim/internal/storage/sqlite"
	"github.com/jumprun/formationsim/pkg/core"
)

// Compile-time interface checks
var (
	_ storage.Backend  = (*memory.Backend)(nil)
	_ storage.Exporter = (*memory.Backend)(nil)
	_ storage.Backend  = (*gormstorage.Backend)(nil)
	_ storage.Backend  = (*sqlitestorage.Backend)(nil)
)

func TestNewBackend(t *testing.T) {
	dir := t.TempDir()

	b, err := storage.NewBackend(config.StorageConfig{
		Type:   "memory",
		Memory: config.MemoryConfig{OutputDir: dir, Format: "json"},
	}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &memory.Backend{}, b)

	b, err = storage.NewBackend(config.StorageConfig{
		Type:   "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(dir, "runs.db")},
	}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &sqlitestorage.Backend{}, b)
	require.NoError(t, b.Close())

	_, err = storage.NewBackend(config.StorageConfig{Type: "cassandra"}, zerolog.Nop())
	assert.Error(t, err)

	_, err = storage.NewBackend(config.StorageConfig{Type: "memory", Memory: config.MemoryConfig{Format: "xml"}}, zerolog.Nop())
	assert.Error(t, err)
}

func TestErrNoRun(t *testing.T) {
	assert.ErrorIs(t, storage.ErrNoRun, core.ErrNoRun)
}
