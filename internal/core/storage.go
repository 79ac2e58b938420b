package core

import (
	"fmt"
	"os"

	"standcore/internal/infra/persistence/memory"
	"standcore/internal/infra/persistence/postgres"
	"standcore/internal/infra/persistence/sqlite"
)

// StorageDriver identifies a concrete run-store implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// OpenRunStore selects a backend using environment variables.
// Defaults to sqlite when unset.
//
//	STANDCORE_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	STANDCORE_SQLITE_PATH: path to sqlite file (default ./standcore.db)
//	STANDCORE_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenRunStore() (RunStore, error) {
	driver := os.Getenv("STANDCORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		path := os.Getenv("STANDCORE_SQLITE_PATH")
		return sqlite.NewStore(path)
	case StoragePostgres:
		dsn := os.Getenv("STANDCORE_POSTGRES_DSN")
		return postgres.NewStore(dsn)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
