package storage

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jumprun/formationsim/internal/config"
	"github.com/jumprun/formationsim/internal/database"
	gormstorage "github.com/jumprun/formationsim/internal/storage/gorm"
	"github.com/jumprun/formationsim/internal/storage/memory"
	sqlitestorage "github.com/jumprun/formationsim/internal/storage/sqlite"
)

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, log zerolog.Logger) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		db, err := database.GetPostgresDB()
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres DB: %w", err)
		}
		return gormstorage.New(gormstorage.Dependencies{DB: db, Logger: log}), nil
	case "sqlite":
		return sqlitestorage.New(cfg.SQLite, log)
	case "memory":
		return memory.New(cfg.Memory, log)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
