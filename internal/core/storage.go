package core

import (
	"fmt"
	"io"

	"psibridge/internal/infra/persistence/memory"
	"psibridge/internal/infra/persistence/postgres"
	"psibridge/internal/infra/persistence/sqlite"
	"psibridge/pkg/domain"
)

// StorageDriver identifies a concrete entry store implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// StorageConfig selects and configures the entry store.
type StorageConfig struct {
	Driver      StorageDriver
	SQLitePath  string
	PostgresDSN string
}

// OpenEntryStore opens the configured backend. Defaults to sqlite when the
// driver is unset. Stores holding a connection also implement io.Closer.
func OpenEntryStore(cfg StorageConfig) (domain.EntryStore, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = StorageSQLite
	}
	switch driver {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		store, err := sqlite.NewStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StoragePostgres:
		store, err := postgres.NewStore(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}

var (
	_ io.Closer = (*sqlite.Store)(nil)
	_ io.Closer = (*postgres.Store)(nil)
)
